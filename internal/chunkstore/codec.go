package chunkstore

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// encodeChunk serializes c into a self-describing blob: no external schema
// is needed to decode it later, matching the store's job of round-tripping
// whatever shape of Chunk a given world version produces.
func encodeChunk(c Chunk) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("chunkstore: encoding chunk: %w: %w", ErrSerialize, err)
	}
	return buf.Bytes(), nil
}

func decodeChunk(data []byte) (Chunk, error) {
	var c Chunk
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&c); err != nil {
		return Chunk{}, fmt.Errorf("chunkstore: decoding chunk: %w: %w", ErrDeserialize, err)
	}
	return c, nil
}
