// Package chunkstore persists world chunks in an embedded key-value store,
// one bucket ("tree") per dimension, keyed by "{x},{z}".
package chunkstore

import "errors"

// Errors returned by Store operations. Io, Serialize, and Deserialize
// categorize the underlying bbolt/gob failure a caller is looking at without
// requiring them to know which library produced it; callers that only care
// about "did this fail" can still just check err != nil.
var (
	ErrClosed      = errors.New("chunkstore: store is closed")
	ErrUnavailable = errors.New("chunkstore: chunk unavailable after retries")

	ErrIO          = errors.New("chunkstore: storage i/o failure")
	ErrSerialize   = errors.New("chunkstore: chunk serialization failure")
	ErrDeserialize = errors.New("chunkstore: chunk deserialization failure")
)
