package chunkstore

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"
)

// Store persists chunks in an embedded bbolt database, one bucket per
// dimension named "chunks/<dimension>", one record per chunk keyed by
// "{x},{z}". All bbolt access is routed through a worker pool since bbolt
// transactions are synchronous and this store's callers are cooperative
// goroutines that must not block on file I/O directly.
type Store struct {
	db   *bbolt.DB
	pool *pool
}

// Open opens (creating if needed) the bbolt file at path, with workers
// goroutines servicing blocking transactions.
func Open(path string, workers int) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("chunkstore: opening %s: %w: %w", path, ErrIO, err)
	}
	return &Store{db: db, pool: newPool(workers)}, nil
}

// Close stops the worker pool and closes the underlying database file.
func (s *Store) Close() error {
	s.pool.close()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("chunkstore: closing database: %w: %w", ErrIO, err)
	}
	return nil
}

// InsertChunk stores c under its own (x_pos, z_pos) in dimension's bucket.
// Returns true if a record already existed at that key (and was replaced),
// false on first insert.
func (s *Store) InsertChunk(ctx context.Context, dimension string, c Chunk) (bool, error) {
	var existed bool
	err := s.pool.submit(ctx, func() error {
		encoded, err := encodeChunk(c)
		if err != nil {
			return err
		}
		return s.db.Update(func(tx *bbolt.Tx) error {
			b, err := tx.CreateBucketIfNotExists(BucketName(dimension))
			if err != nil {
				return fmt.Errorf("opening bucket: %w: %w", ErrIO, err)
			}
			key := []byte(Key(c.XPos, c.ZPos))
			existed = b.Get(key) != nil
			if err := b.Put(key, encoded); err != nil {
				return fmt.Errorf("writing chunk: %w: %w", ErrIO, err)
			}
			return nil
		})
	})
	return existed, err
}

// GetChunk retrieves the chunk at (x, z) in dimension, if present.
func (s *Store) GetChunk(ctx context.Context, dimension string, x, z int32) (Chunk, bool, error) {
	var (
		c     Chunk
		found bool
	)
	err := s.pool.submit(ctx, func() error {
		return s.db.View(func(tx *bbolt.Tx) error {
			b := tx.Bucket(BucketName(dimension))
			if b == nil {
				return nil
			}
			data := b.Get([]byte(Key(x, z)))
			if data == nil {
				return nil
			}
			decoded, err := decodeChunk(data)
			if err != nil {
				return err
			}
			c, found = decoded, true
			return nil
		})
	})
	return c, found, err
}

// ChunkExists reports whether a record is present at (x, z) in dimension.
func (s *Store) ChunkExists(ctx context.Context, dimension string, x, z int32) (bool, error) {
	var exists bool
	err := s.pool.submit(ctx, func() error {
		return s.db.View(func(tx *bbolt.Tx) error {
			b := tx.Bucket(BucketName(dimension))
			if b == nil {
				return nil
			}
			exists = b.Get([]byte(Key(x, z))) != nil
			return nil
		})
	})
	return exists, err
}

// UpdateChunk replaces the record at c's own coordinates in dimension's
// bucket. Semantically identical to InsertChunk: both operations key off
// the chunk's own (x_pos, z_pos) and overwrite whatever was there.
func (s *Store) UpdateChunk(ctx context.Context, dimension string, c Chunk) (bool, error) {
	return s.InsertChunk(ctx, dimension, c)
}

// GetChunkRange retrieves every chunk in the half-open rectangle
// [start.X,end.X) x [start.Z,end.Z) within dimension, in row-major order
// (x outermost, z innermost). The result always has exactly
// (end.X-start.X)*(end.Z-start.Z) entries; a missing chunk contributes a
// nil entry rather than shrinking the slice.
func (s *Store) GetChunkRange(ctx context.Context, dimension string, startX, startZ, endX, endZ int32) ([]*Chunk, error) {
	results := make([]*Chunk, 0, int(endX-startX)*int(endZ-startZ))
	for x := startX; x < endX; x++ {
		for z := startZ; z < endZ; z++ {
			c, found, err := s.GetChunk(ctx, dimension, x, z)
			if err != nil {
				return nil, fmt.Errorf("chunkstore: range fetch (%d,%d): %w", x, z, err)
			}
			if !found {
				results = append(results, nil)
				continue
			}
			cc := c
			results = append(results, &cc)
		}
	}
	return results, nil
}
