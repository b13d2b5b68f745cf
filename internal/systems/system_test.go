package systems

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/43d9ab5/ferrumc/internal/config"
	"github.com/43d9ab5/ferrumc/internal/ecs"
	"github.com/43d9ab5/ferrumc/internal/netconn"
)

func testDeps() *Deps {
	return &Deps{
		World:  ecs.NewWorld(),
		Conns:  netconn.NewTable(),
		Config: &config.Config{},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

type countingSystem struct {
	runs    atomic.Int32
	panics  bool
	failing bool
}

func (s *countingSystem) Name() string { return "counting" }

func (s *countingSystem) Run(ctx context.Context, deps *Deps) error {
	s.runs.Add(1)
	if s.panics {
		panic("boom")
	}
	if s.failing {
		return errors.New("intentional failure")
	}
	<-ctx.Done()
	return nil
}

func TestRuntime_StopsAllSystemsOnCancel(t *testing.T) {
	deps := testDeps()
	sys := &countingSystem{}
	rt := NewRuntime(deps, sys)

	ctx, cancel := context.WithCancel(context.Background())
	rt.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		rt.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runtime did not stop after cancel")
	}
}

func TestRuntime_RestartsPanickingSystem(t *testing.T) {
	t.Parallel()
	deps := testDeps()
	sys := &countingSystem{panics: true}
	rt := NewRuntime(deps, sys)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rt.Start(ctx)

	deadline := time.After(3 * time.Second)
	for sys.runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 2 runs after restart, got %d", sys.runs.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestTickSystem_StopsOnCancel(t *testing.T) {
	deps := testDeps()
	deps.Config.Systems.TickInterval = 5 * time.Millisecond
	sys := NewTickSystem()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := sys.Run(ctx, deps)
	if err != nil {
		t.Fatalf("expected nil error on context cancellation, got %v", err)
	}
	if sys.count == 0 {
		t.Error("expected at least one tick to have run")
	}
}
