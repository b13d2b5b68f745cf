// Package protocol implements the Minecraft Java Edition wire protocol:
// VarInt/VarLong encoding, length-prefixed primitives, and packet framing
// with optional zlib compression.
package protocol

import "errors"

// Errors returned by the codec and frame reader/writer.
var (
	ErrVarIntTooLarge  = errors.New("protocol: varint exceeds 5 bytes")
	ErrVarLongTooLarge = errors.New("protocol: varlong exceeds 10 bytes")
	ErrStringTooLarge  = errors.New("protocol: string exceeds maximum length")
	ErrFrameTooLarge   = errors.New("protocol: frame exceeds maximum length")
	ErrNegativeLength  = errors.New("protocol: negative length prefix")
	ErrDecompressed    = errors.New("protocol: decompressed size does not match declared data length")
)

// ProtocolVersion is the Minecraft 1.20.6 protocol version number.
const ProtocolVersion int32 = 766

// MaxFrameLength bounds an incoming frame's declared length, guarding
// against a hostile peer advertising an unbounded allocation.
const MaxFrameLength = 2 * 1024 * 1024

// MaxStringLength bounds incoming String payloads, in UTF-8 bytes.
const MaxStringLength = 32767 * 4
