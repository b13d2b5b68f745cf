package protocol

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// State identifies where a connection sits in the Handshake/Status/Login/Play
// state machine. Packet ids are only unique within a (State, Direction) pair.
type State int

const (
	StateHandshake State = iota
	StateStatus
	StateLogin
	StatePlay
)

func (s State) String() string {
	switch s {
	case StateHandshake:
		return "handshake"
	case StateStatus:
		return "status"
	case StateLogin:
		return "login"
	case StatePlay:
		return "play"
	default:
		return "unknown"
	}
}

// Direction identifies which peer a packet travels toward.
type Direction int

const (
	Serverbound Direction = iota
	Clientbound
)

// Frame is a decoded, still-opaque packet: an id plus its raw payload bytes.
// The registry turns a Frame into a concrete packet value.
type Frame struct {
	ID      int32
	Payload []byte
}

// ReadFrame reads one length-prefixed frame from r. When threshold > 0, the
// connection is assumed to have negotiated compression (post Set Compression)
// and frames use the two-VarInt compressed layout; threshold <= 0 means the
// uncompressed layout is in effect.
func ReadFrame(r io.Reader, threshold int32) (Frame, error) {
	frameLen, err := ReadVarInt(r)
	if err != nil {
		return Frame{}, fmt.Errorf("reading frame length: %w", err)
	}
	if frameLen < 0 {
		return Frame{}, ErrNegativeLength
	}
	if frameLen > MaxFrameLength {
		return Frame{}, ErrFrameTooLarge
	}

	body := make([]byte, frameLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return Frame{}, fmt.Errorf("reading frame body: %w", err)
	}
	br := bytes.NewReader(body)

	if threshold > 0 {
		dataLen, err := ReadVarInt(br)
		if err != nil {
			return Frame{}, fmt.Errorf("reading compressed data length: %w", err)
		}
		var payload io.Reader = br
		if dataLen != 0 {
			zr, err := zlib.NewReader(br)
			if err != nil {
				return Frame{}, fmt.Errorf("opening zlib reader: %w", err)
			}
			defer zr.Close()
			decompressed, err := io.ReadAll(zr)
			if err != nil {
				return Frame{}, fmt.Errorf("decompressing frame: %w", err)
			}
			if int32(len(decompressed)) != dataLen {
				return Frame{}, ErrDecompressed
			}
			payload = bytes.NewReader(decompressed)
		}
		id, err := ReadVarInt(payload)
		if err != nil {
			return Frame{}, fmt.Errorf("reading packet id: %w", err)
		}
		rest, err := io.ReadAll(payload)
		if err != nil {
			return Frame{}, fmt.Errorf("reading packet payload: %w", err)
		}
		return Frame{ID: id, Payload: rest}, nil
	}

	id, err := ReadVarInt(br)
	if err != nil {
		return Frame{}, fmt.Errorf("reading packet id: %w", err)
	}
	rest, err := io.ReadAll(br)
	if err != nil {
		return Frame{}, fmt.Errorf("reading packet payload: %w", err)
	}
	return Frame{ID: id, Payload: rest}, nil
}

// WriteFrame writes f to w using the uncompressed or compressed layout
// depending on threshold, mirroring ReadFrame's rules. In the compressed
// layout, payloads shorter than threshold are sent with dataLen=0 (declared
// uncompressed) rather than compressed, per the negotiated threshold policy.
func WriteFrame(w io.Writer, f Frame, threshold int32) error {
	var idAndPayload bytes.Buffer
	if err := WriteVarInt(&idAndPayload, f.ID); err != nil {
		return err
	}
	idAndPayload.Write(f.Payload)

	if threshold <= 0 {
		var body bytes.Buffer
		if err := WriteVarInt(&body, int32(idAndPayload.Len())); err != nil {
			return err
		}
		body.Write(idAndPayload.Bytes())
		_, err := w.Write(body.Bytes())
		return err
	}

	var body bytes.Buffer
	if int32(idAndPayload.Len()) < threshold {
		if err := WriteVarInt(&body, 0); err != nil {
			return err
		}
		body.Write(idAndPayload.Bytes())
	} else {
		if err := WriteVarInt(&body, int32(idAndPayload.Len())); err != nil {
			return err
		}
		zw := zlib.NewWriter(&body)
		if _, err := zw.Write(idAndPayload.Bytes()); err != nil {
			zw.Close()
			return fmt.Errorf("compressing frame: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("closing zlib writer: %w", err)
		}
	}

	var frame bytes.Buffer
	if err := WriteVarInt(&frame, int32(body.Len())); err != nil {
		return err
	}
	frame.Write(body.Bytes())
	_, err := w.Write(frame.Bytes())
	return err
}
