package chunkstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunks.db")
	s, err := Open(path, 2)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_InsertGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := Chunk{
		XPos:       3,
		ZPos:       -7,
		YPos:       0,
		Sections:   [][]byte{{1, 2, 3}},
		Heightmaps: map[string][]int64{"WORLD_SURFACE": {1, 2, 3}},
	}

	existed, err := s.InsertChunk(ctx, "overworld", c)
	if err != nil {
		t.Fatalf("InsertChunk: %v", err)
	}
	if existed {
		t.Error("expected first insert to report existed=false")
	}

	got, found, err := s.GetChunk(ctx, "overworld", 3, -7)
	if err != nil {
		t.Fatalf("GetChunk: %v", err)
	}
	if !found {
		t.Fatal("expected chunk to be found")
	}
	if got.XPos != c.XPos || got.ZPos != c.ZPos {
		t.Errorf("expected coords (%d,%d), got (%d,%d)", c.XPos, c.ZPos, got.XPos, got.ZPos)
	}

	existed, err = s.InsertChunk(ctx, "overworld", c)
	if err != nil {
		t.Fatalf("InsertChunk (2nd): %v", err)
	}
	if !existed {
		t.Error("expected second insert to report existed=true")
	}
}

func TestStore_ChunkExists(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	exists, err := s.ChunkExists(ctx, "overworld", 0, 0)
	if err != nil {
		t.Fatalf("ChunkExists: %v", err)
	}
	if exists {
		t.Fatal("expected chunk not to exist yet")
	}

	if _, err := s.InsertChunk(ctx, "overworld", Chunk{XPos: 0, ZPos: 0}); err != nil {
		t.Fatalf("InsertChunk: %v", err)
	}

	exists, err = s.ChunkExists(ctx, "overworld", 0, 0)
	if err != nil {
		t.Fatalf("ChunkExists: %v", err)
	}
	if !exists {
		t.Fatal("expected chunk to exist")
	}
}

func TestStore_GetChunkRange_RowMajorOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for x := int32(0); x < 2; x++ {
		for z := int32(0); z < 3; z++ {
			if _, err := s.InsertChunk(ctx, "overworld", Chunk{XPos: x, ZPos: z}); err != nil {
				t.Fatalf("InsertChunk(%d,%d): %v", x, z, err)
			}
		}
	}

	results, err := s.GetChunkRange(ctx, "overworld", 0, 0, 2, 3)
	if err != nil {
		t.Fatalf("GetChunkRange: %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("expected 6 entries, got %d", len(results))
	}

	want := [][2]int32{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}
	for i, c := range results {
		if c == nil {
			t.Fatalf("entry %d: unexpected nil", i)
		}
		if c.XPos != want[i][0] || c.ZPos != want[i][1] {
			t.Errorf("entry %d: expected (%d,%d), got (%d,%d)", i, want[i][0], want[i][1], c.XPos, c.ZPos)
		}
	}
}

func TestStore_GetChunkRange_MissingEntriesAreNil(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	results, err := s.GetChunkRange(ctx, "overworld", 0, 0, 1, 2)
	if err != nil {
		t.Fatalf("GetChunkRange: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(results))
	}
	for i, c := range results {
		if c != nil {
			t.Errorf("entry %d: expected nil, got %+v", i, c)
		}
	}
}

func TestGetChunkWithRetry_EventuallyFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		time.Sleep(50 * time.Millisecond)
		_, _ = s.InsertChunk(ctx, "overworld", Chunk{XPos: 5, ZPos: 5})
		close(done)
	}()

	policy := RetryPolicy{Initial: 20 * time.Millisecond, Factor: 2, Max: 100 * time.Millisecond, MaxAttempts: 5}
	c, err := s.GetChunkWithRetry(ctx, "overworld", 5, 5, policy)
	if err != nil {
		t.Fatalf("GetChunkWithRetry: %v", err)
	}
	if c.XPos != 5 || c.ZPos != 5 {
		t.Errorf("expected (5,5), got (%d,%d)", c.XPos, c.ZPos)
	}
	<-done
}

func TestGetChunkWithRetry_Unavailable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	policy := RetryPolicy{Initial: time.Millisecond, Factor: 2, Max: 5 * time.Millisecond, MaxAttempts: 3}
	_, err := s.GetChunkWithRetry(ctx, "overworld", 99, 99, policy)
	if err != ErrUnavailable {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
