package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ReadVarInt reads a protocol VarInt: 7 bits of payload per byte, MSB set
// on every byte but the last.
func ReadVarInt(r io.Reader) (int32, error) {
	var value uint32
	var buf [1]byte
	for i := 0; ; i++ {
		if i >= 5 {
			return 0, ErrVarIntTooLarge
		}
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, fmt.Errorf("reading varint byte %d: %w", i, err)
		}
		b := buf[0]
		value |= uint32(b&0x7f) << (7 * uint(i))
		if b&0x80 == 0 {
			break
		}
	}
	return int32(value), nil
}

// ReadVarLong reads a protocol VarLong, the 64-bit counterpart of VarInt.
func ReadVarLong(r io.Reader) (int64, error) {
	var value uint64
	var buf [1]byte
	for i := 0; ; i++ {
		if i >= 10 {
			return 0, ErrVarLongTooLarge
		}
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, fmt.Errorf("reading varlong byte %d: %w", i, err)
		}
		b := buf[0]
		value |= uint64(b&0x7f) << (7 * uint(i))
		if b&0x80 == 0 {
			break
		}
	}
	return int64(value), nil
}

// ReadString reads a UTF-8 string prefixed with its byte length as a VarInt.
func ReadString(r io.Reader) (string, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return "", fmt.Errorf("reading string length: %w", err)
	}
	if n < 0 {
		return "", ErrNegativeLength
	}
	if int(n) > MaxStringLength {
		return "", ErrStringTooLarge
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("reading string body: %w", err)
	}
	return string(buf), nil
}

// ReadBytes reads a byte array prefixed with its length as a VarInt.
func ReadBytes(r io.Reader) ([]byte, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("reading byte array length: %w", err)
	}
	if n < 0 {
		return nil, ErrNegativeLength
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading byte array body: %w", err)
	}
	return buf, nil
}

// ReadBool reads a single-byte boolean (0x00 = false, any other value true).
func ReadBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, fmt.Errorf("reading bool: %w", err)
	}
	return buf[0] != 0, nil
}

// ReadUnsignedShort reads a big-endian uint16.
func ReadUnsignedShort(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("reading unsigned short: %w", err)
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// ReadLong reads a big-endian int64.
func ReadLong(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("reading long: %w", err)
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

// ReadDouble reads a big-endian IEEE-754 double.
func ReadDouble(r io.Reader) (float64, error) {
	v, err := ReadLong(r)
	if err != nil {
		return 0, fmt.Errorf("reading double: %w", err)
	}
	return math.Float64frombits(uint64(v)), nil
}

// ReadUUID reads a 128-bit UUID as 16 raw bytes.
func ReadUUID(r io.Reader) ([16]byte, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return buf, fmt.Errorf("reading uuid: %w", err)
	}
	return buf, nil
}
