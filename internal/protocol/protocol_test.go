package protocol

import (
	"bytes"
	"testing"
)

func TestVarInt_RoundTrip(t *testing.T) {
	tests := []int32{0, 1, 2, 127, 128, 255, 25565, 2097151, -1, -2147483648, 2147483647}

	for _, v := range tests {
		var buf bytes.Buffer
		if err := WriteVarInt(&buf, v); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", v, err)
		}
		if buf.Len() != VarIntSize(v) {
			t.Errorf("VarIntSize(%d) = %d, wrote %d bytes", v, VarIntSize(v), buf.Len())
		}
		got, err := ReadVarInt(&buf)
		if err != nil {
			t.Fatalf("ReadVarInt(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
	}
}

func TestVarInt_TooLarge(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	if _, err := ReadVarInt(buf); err != ErrVarIntTooLarge {
		t.Fatalf("expected ErrVarIntTooLarge, got %v", err)
	}
}

func TestVarLong_RoundTrip(t *testing.T) {
	tests := []int64{0, 1, -1, 1 << 40, -(1 << 40)}
	for _, v := range tests {
		var buf bytes.Buffer
		if err := WriteVarLong(&buf, v); err != nil {
			t.Fatalf("WriteVarLong(%d): %v", v, err)
		}
		got, err := ReadVarLong(&buf)
		if err != nil {
			t.Fatalf("ReadVarLong(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
	}
}

func TestString_RoundTrip(t *testing.T) {
	tests := []string{"", "hello", "127.0.0.1", "éèê unicode"}
	for _, s := range tests {
		var buf bytes.Buffer
		if err := WriteString(&buf, s); err != nil {
			t.Fatalf("WriteString(%q): %v", s, err)
		}
		got, err := ReadString(&buf)
		if err != nil {
			t.Fatalf("ReadString(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("round trip %q: got %q", s, got)
		}
	}
}

func TestHandshake_RoundTrip(t *testing.T) {
	h := Handshake{
		ProtocolVersion: 766,
		ServerAddress:   "127.0.0.1",
		ServerPort:      25565,
		NextState:       NextStateStatus,
	}

	var buf bytes.Buffer
	if err := WriteVarInt(&buf, h.ProtocolVersion); err != nil {
		t.Fatal(err)
	}
	if err := WriteString(&buf, h.ServerAddress); err != nil {
		t.Fatal(err)
	}
	if err := WriteUnsignedShort(&buf, h.ServerPort); err != nil {
		t.Fatal(err)
	}
	if err := WriteVarInt(&buf, int32(h.NextState)); err != nil {
		t.Fatal(err)
	}

	got, err := DecodeHandshake(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeHandshake: %v", err)
	}
	if got != h {
		t.Errorf("expected %+v, got %+v", h, got)
	}
}

func TestFrame_RoundTripUncompressed(t *testing.T) {
	f := Frame{ID: PacketStatusRequest, Payload: nil}
	var buf bytes.Buffer
	if err := WriteFrame(&buf, f, 0); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	got, err := ReadFrame(&buf, 0)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if got.ID != f.ID || len(got.Payload) != 0 {
		t.Errorf("expected %+v, got %+v", f, got)
	}
}

func TestFrame_RoundTripCompressed(t *testing.T) {
	payload := bytes.Repeat([]byte("chunk-data"), 100)
	f := Frame{ID: PacketKeepAliveOut, Payload: payload}

	var buf bytes.Buffer
	threshold := int32(64)
	if err := WriteFrame(&buf, f, threshold); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	got, err := ReadFrame(&buf, threshold)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if got.ID != f.ID || !bytes.Equal(got.Payload, f.Payload) {
		t.Errorf("round trip mismatch: got id=%d payload_len=%d", got.ID, len(got.Payload))
	}
}

func TestFrame_CompressedBelowThresholdStaysUncompressed(t *testing.T) {
	f := Frame{ID: 0x01, Payload: []byte{0x00}}
	var buf bytes.Buffer
	if err := WriteFrame(&buf, f, 256); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	// Frame is [frame_length, data_length, id, payload...]; data_length 0
	// marks the body as sent uncompressed.
	if raw := buf.Bytes(); len(raw) < 2 || raw[1] != 0x00 {
		t.Fatalf("expected data_length 0 for below-threshold frame, got bytes %v", raw)
	}
	got, err := ReadFrame(&buf, 256)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if got.ID != f.ID || !bytes.Equal(got.Payload, f.Payload) {
		t.Errorf("round trip mismatch: got %+v", got)
	}
}

func TestKeepAlive_RoundTrip(t *testing.T) {
	payload, err := EncodeKeepAlive(42)
	if err != nil {
		t.Fatalf("EncodeKeepAlive: %v", err)
	}
	got, err := DecodeKeepAlive(payload)
	if err != nil {
		t.Fatalf("DecodeKeepAlive: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestStatusResponse_Encode(t *testing.T) {
	resp := StatusResponse{
		Version:     StatusVersion{Name: "1.20.6", Protocol: ProtocolVersion},
		Players:     StatusPlayers{Max: 20, Online: 0, Sample: nil},
		Description: StatusDescription{Text: "A Ferrumc Server"},
	}
	payload, err := EncodeStatusResponse(resp)
	if err != nil {
		t.Fatalf("EncodeStatusResponse: %v", err)
	}
	s, err := ReadString(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if len(s) == 0 {
		t.Error("expected non-empty JSON body")
	}
}
