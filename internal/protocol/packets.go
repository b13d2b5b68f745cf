package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Packet ids used by this server. Only the subset of the real protocol this
// server implements is listed; everything else in Play is unknown-and-skip
// per the registry's dispatch rule.
const (
	PacketHandshake      int32 = 0x00 // serverbound, state Handshake
	PacketStatusRequest  int32 = 0x00 // serverbound, state Status
	PacketStatusResponse int32 = 0x00 // clientbound, state Status
	PacketPingRequest    int32 = 0x01 // serverbound, state Status
	PacketPongResponse   int32 = 0x01 // clientbound, state Status
	PacketLoginStart     int32 = 0x00 // serverbound, state Login
	PacketSetCompression int32 = 0x03 // clientbound, state Login
	PacketLoginSuccess   int32 = 0x02 // clientbound, state Login
	PacketKeepAliveIn    int32 = 0x18 // serverbound, state Play
	PacketKeepAliveOut   int32 = 0x26 // clientbound, state Play
	PacketDisconnectPlay int32 = 0x1d // clientbound, state Play
)

// NextState is the value of Handshake.NextState.
type NextState int32

const (
	NextStateStatus NextState = 1
	NextStateLogin  NextState = 2
)

// Handshake is the first packet on every connection.
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       NextState
}

// DecodeHandshake decodes a Handshake packet payload.
func DecodeHandshake(payload []byte) (Handshake, error) {
	r := bytes.NewReader(payload)
	var h Handshake
	var err error
	if h.ProtocolVersion, err = ReadVarInt(r); err != nil {
		return h, fmt.Errorf("decoding handshake protocol_version: %w", err)
	}
	if h.ServerAddress, err = ReadString(r); err != nil {
		return h, fmt.Errorf("decoding handshake server_address: %w", err)
	}
	if h.ServerPort, err = ReadUnsignedShort(r); err != nil {
		return h, fmt.Errorf("decoding handshake server_port: %w", err)
	}
	next, err := ReadVarInt(r)
	if err != nil {
		return h, fmt.Errorf("decoding handshake next_state: %w", err)
	}
	h.NextState = NextState(next)
	return h, nil
}

// StatusVersion is the `version` object of a Status Response.
type StatusVersion struct {
	Name     string `json:"name"`
	Protocol int32  `json:"protocol"`
}

// StatusPlayerSample is one entry of `players.sample`.
type StatusPlayerSample struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// StatusPlayers is the `players` object of a Status Response.
type StatusPlayers struct {
	Max    int                  `json:"max"`
	Online int                  `json:"online"`
	Sample []StatusPlayerSample `json:"sample"`
}

// StatusDescription is the `description` chat component of a Status Response.
type StatusDescription struct {
	Text string `json:"text"`
}

// StatusResponse is the JSON body a server sends in reply to Status Request.
type StatusResponse struct {
	Version     StatusVersion      `json:"version"`
	Players     StatusPlayers      `json:"players"`
	Description StatusDescription  `json:"description"`
	Favicon     string             `json:"favicon,omitempty"`
}

// EncodeStatusResponse marshals r as the JSON payload of a Status Response
// packet (a single length-prefixed String).
func EncodeStatusResponse(r StatusResponse) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshaling status response: %w", err)
	}
	var buf bytes.Buffer
	if err := WriteString(&buf, string(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoginStart is the client's Login state username announcement.
type LoginStart struct {
	Username string
	UUID     [16]byte
}

// DecodeLoginStart decodes a Login Start packet payload.
func DecodeLoginStart(payload []byte) (LoginStart, error) {
	r := bytes.NewReader(payload)
	var l LoginStart
	var err error
	if l.Username, err = ReadString(r); err != nil {
		return l, fmt.Errorf("decoding login start username: %w", err)
	}
	if l.UUID, err = ReadUUID(r); err != nil {
		return l, fmt.Errorf("decoding login start uuid: %w", err)
	}
	return l, nil
}

// LoginSuccess is sent once a player's entity has been created.
type LoginSuccess struct {
	UUID     [16]byte
	Username string
}

// EncodeLoginSuccess encodes a Login Success packet payload.
func EncodeLoginSuccess(l LoginSuccess) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteUUID(&buf, l.UUID); err != nil {
		return nil, err
	}
	if err := WriteString(&buf, l.Username); err != nil {
		return nil, err
	}
	if err := WriteVarInt(&buf, 0); err != nil { // number of properties: none
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeSetCompression encodes a Set Compression packet payload.
func EncodeSetCompression(threshold int32) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteVarInt(&buf, threshold); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeKeepAlive decodes the client's Keep Alive response payload.
func DecodeKeepAlive(payload []byte) (int64, error) {
	r := bytes.NewReader(payload)
	v, err := ReadLong(r)
	if err != nil {
		return 0, fmt.Errorf("decoding keep alive id: %w", err)
	}
	return v, nil
}

// EncodeKeepAlive encodes a server-sent Keep Alive payload.
func EncodeKeepAlive(id int64) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteLong(&buf, id); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeDisconnect encodes a Disconnect (Play) packet payload from a plain
// reason string, wrapped as a chat component.
func EncodeDisconnect(reason string) ([]byte, error) {
	data, err := json.Marshal(StatusDescription{Text: reason})
	if err != nil {
		return nil, fmt.Errorf("marshaling disconnect reason: %w", err)
	}
	var buf bytes.Buffer
	if err := WriteString(&buf, string(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
