package systems

import (
	"net"
	"testing"

	"github.com/43d9ab5/ferrumc/internal/ecs"
	"github.com/43d9ab5/ferrumc/internal/netconn"
)

func TestChunkSenderSystem_CollectJobsSkipsUnmovedPlayers(t *testing.T) {
	world := ecs.NewWorld()
	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close() })
	c := netconn.New(serverConn, discardLogger())
	t.Cleanup(func() { c.Close() })

	e := world.Spawn()
	mustSet(t, world, e, ecs.Position{Dimension: "overworld", X: 10, Y: 64, Z: 10})
	mustSet(t, world, e, ecs.ViewDistance{Chunks: 2})
	mustSet(t, world, e, ecs.ConnectionHandle{Conn: c})

	s := NewChunkSenderSystem()
	jobs := s.collectJobs(world)
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job on first pass, got %d", len(jobs))
	}

	jobsAgain := s.collectJobs(world)
	if len(jobsAgain) != 0 {
		t.Errorf("expected 0 jobs when player hasn't crossed a chunk boundary, got %d", len(jobsAgain))
	}
}

func mustSet[T any](t *testing.T, world *ecs.World, e ecs.Entity, c T) {
	t.Helper()
	if err := ecs.SetComponent(world, e, c); err != nil {
		t.Fatalf("SetComponent: %v", err)
	}
}

func discardLogger() *discardingLogger { return &discardingLogger{} }

type discardingLogger struct{}

func (discardingLogger) Debug(string, ...any) {}
func (discardingLogger) Info(string, ...any)  {}
func (discardingLogger) Warn(string, ...any)  {}
func (discardingLogger) Error(string, ...any) {}
