package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// VarIntSize returns the number of bytes WriteVarInt would emit for v,
// needed up front when a caller must prefix a payload with its own length.
func VarIntSize(v int32) int {
	u := uint32(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}

// WriteVarInt writes v using the protocol's 7-bit group encoding.
func WriteVarInt(w io.Writer, v int32) error {
	u := uint32(v)
	var buf [5]byte
	n := 0
	for {
		b := byte(u & 0x7f)
		u >>= 7
		if u != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if u == 0 {
			break
		}
	}
	if _, err := w.Write(buf[:n]); err != nil {
		return fmt.Errorf("writing varint: %w", err)
	}
	return nil
}

// WriteVarLong writes v using the protocol's 7-bit group encoding.
func WriteVarLong(w io.Writer, v int64) error {
	u := uint64(v)
	var buf [10]byte
	n := 0
	for {
		b := byte(u & 0x7f)
		u >>= 7
		if u != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if u == 0 {
			break
		}
	}
	if _, err := w.Write(buf[:n]); err != nil {
		return fmt.Errorf("writing varlong: %w", err)
	}
	return nil
}

// WriteString writes s prefixed with its UTF-8 byte length as a VarInt.
func WriteString(w io.Writer, s string) error {
	if len(s) > MaxStringLength {
		return ErrStringTooLarge
	}
	if err := WriteVarInt(w, int32(len(s))); err != nil {
		return fmt.Errorf("writing string length: %w", err)
	}
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("writing string body: %w", err)
	}
	return nil
}

// WriteBytes writes b prefixed with its length as a VarInt.
func WriteBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, int32(len(b))); err != nil {
		return fmt.Errorf("writing byte array length: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("writing byte array body: %w", err)
	}
	return nil
}

// WriteBool writes a single-byte boolean.
func WriteBool(w io.Writer, v bool) error {
	var b byte
	if v {
		b = 1
	}
	if _, err := w.Write([]byte{b}); err != nil {
		return fmt.Errorf("writing bool: %w", err)
	}
	return nil
}

// WriteUnsignedShort writes a big-endian uint16.
func WriteUnsignedShort(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("writing unsigned short: %w", err)
	}
	return nil
}

// WriteLong writes a big-endian int64.
func WriteLong(w io.Writer, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("writing long: %w", err)
	}
	return nil
}

// WriteDouble writes a big-endian IEEE-754 double.
func WriteDouble(w io.Writer, v float64) error {
	return WriteLong(w, int64(math.Float64bits(v)))
}

// WriteUUID writes a 128-bit UUID as 16 raw bytes.
func WriteUUID(w io.Writer, v [16]byte) error {
	if _, err := w.Write(v[:]); err != nil {
		return fmt.Errorf("writing uuid: %w", err)
	}
	return nil
}
