package chunkstore

import (
	"context"
	"time"
)

// RetryPolicy is the exponential backoff schedule used when a chunk fetch
// fails: wait Initial, then double (capped at Max) before each retry, up to
// MaxAttempts total tries.
type RetryPolicy struct {
	Initial     time.Duration
	Factor      float64
	Max         time.Duration
	MaxAttempts int
}

// DefaultRetryPolicy is the store's standard schedule: 100ms initial,
// doubling, capped at 5s, 5 attempts total.
var DefaultRetryPolicy = RetryPolicy{
	Initial:     100 * time.Millisecond,
	Factor:      2,
	Max:         5 * time.Second,
	MaxAttempts: 5,
}

// GetChunkWithRetry retries GetChunk under policy until it succeeds and
// finds the chunk, or attempts are exhausted. Returns ErrUnavailable (not
// the underlying store error) once attempts run out, so callers can
// uniformly treat "never showed up" as one condition regardless of whether
// the last attempt errored or simply found nothing.
func (s *Store) GetChunkWithRetry(ctx context.Context, dimension string, x, z int32, policy RetryPolicy) (Chunk, error) {
	delay := policy.Initial
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		c, found, err := s.GetChunk(ctx, dimension, x, z)
		if err == nil && found {
			return c, nil
		}
		if attempt == policy.MaxAttempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Chunk{}, ctx.Err()
		}
		delay = time.Duration(float64(delay) * policy.Factor)
		if delay > policy.Max {
			delay = policy.Max
		}
	}
	return Chunk{}, ErrUnavailable
}
