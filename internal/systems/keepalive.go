package systems

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/43d9ab5/ferrumc/internal/ecs"
	"github.com/43d9ab5/ferrumc/internal/netconn"
	"github.com/43d9ab5/ferrumc/internal/protocol"
	"github.com/robfig/cron/v3"
)

// KeepAliveSenderSystem periodically stamps every connected player with a
// fresh keep-alive id and writes it out. Collection and I/O are split in
// two passes on purpose: the world lock is released before any socket
// write, so a slow or stuck client can never stall the query that every
// other system also needs. Scheduling is a single cron job on an
// "@every <interval>" schedule rather than a raw ticker, guarded against
// overlap the same way a scheduled job guards against a slow previous run.
type KeepAliveSenderSystem struct {
	mu      sync.Mutex
	running bool
}

func NewKeepAliveSenderSystem() *KeepAliveSenderSystem { return &KeepAliveSenderSystem{} }

func (s *KeepAliveSenderSystem) Name() string { return "keepalive-sender" }

type keepAliveTarget struct {
	conn *netconn.Connection
	id   int64
}

func (s *KeepAliveSenderSystem) Run(ctx context.Context, deps *Deps) error {
	interval := deps.Config.Systems.KeepAliveSendInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	c := cron.New(cron.WithLogger(cronLogAdapter{deps.Logger}))
	_, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		s.tick(deps)
	})
	if err != nil {
		return fmt.Errorf("scheduling keep-alive sender: %w", err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// tick is guarded against overlap: if a previous pass is still writing to a
// slow client, the next scheduled firing skips rather than piling up a
// second concurrent pass over the same connections.
func (s *KeepAliveSenderSystem) tick(deps *Deps) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		deps.Logger.Warn("keep-alive sender already running, skipping this tick")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	now := time.Now()
	targets := collectKeepAliveTargets(deps.World, now)
	for _, t := range targets {
		payload, err := protocol.EncodeKeepAlive(t.id)
		if err != nil {
			deps.Logger.Error("encoding keep alive", "error", err)
			continue
		}
		if err := t.conn.WritePacket(protocol.PacketKeepAliveOut, payload); err != nil {
			deps.Logger.Warn("writing keep alive, dropping connection", "conn", t.conn.ID, "error", err)
			deps.Conns.Remove(t.conn)
			_ = t.conn.Close()
		}
	}
}

// collectKeepAliveTargets takes the world's write lock exactly once to bump
// every player's KeepAlive component and snapshot the connections to write
// to, then releases the lock before any I/O happens.
func collectKeepAliveTargets(world *ecs.World, now time.Time) []keepAliveTarget {
	var targets []keepAliveTarget
	ecs.QueryMut2[ecs.KeepAlive, ecs.ConnectionHandle](world, func(_ ecs.Entity, ka *ecs.KeepAlive, ch *ecs.ConnectionHandle) {
		ka.Data++
		ka.LastSent = now
		conn, ok := ch.Conn.(*netconn.Connection)
		if !ok || conn == nil {
			return
		}
		targets = append(targets, keepAliveTarget{conn: conn, id: ka.Data})
	})
	return targets
}

// KeepAliveReaperSystem drops connections that have gone silent past the
// configured timeout.
type KeepAliveReaperSystem struct {
	mu      sync.Mutex
	running bool
}

func NewKeepAliveReaperSystem() *KeepAliveReaperSystem { return &KeepAliveReaperSystem{} }

func (s *KeepAliveReaperSystem) Name() string { return "keepalive-reaper" }

func (s *KeepAliveReaperSystem) Run(ctx context.Context, deps *Deps) error {
	checkInterval := deps.Config.Systems.KeepAliveCheckInterval
	if checkInterval <= 0 {
		checkInterval = 5 * time.Second
	}
	timeout := deps.Config.Systems.KeepAliveTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := cron.New(cron.WithLogger(cronLogAdapter{deps.Logger}))
	_, err := c.AddFunc(fmt.Sprintf("@every %s", checkInterval), func() {
		s.tick(deps, timeout)
	})
	if err != nil {
		return fmt.Errorf("scheduling keep-alive reaper: %w", err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (s *KeepAliveReaperSystem) tick(deps *Deps, timeout time.Duration) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	stale := collectStaleConnections(deps.World, time.Now(), timeout)
	for _, row := range stale {
		if row.conn != nil {
			deps.Conns.Remove(row.conn)
			if err := row.conn.Close(); err != nil {
				deps.Logger.Warn("closing stale connection", "conn", row.conn.ID, "error", err)
			}
		}
		if err := deps.World.Despawn(row.entity); err != nil {
			// The acceptor's teardown may have already despawned this entity
			// (its connection dropped between collectStaleConnections and
			// here); ErrInvalidGeneration in that race is expected, not a bug.
			deps.Logger.Warn("despawning stale entity", "error", err)
		}
	}
}

type staleRow struct {
	entity ecs.Entity
	conn   *netconn.Connection
}

func collectStaleConnections(world *ecs.World, now time.Time, timeout time.Duration) []staleRow {
	var stale []staleRow
	for _, r := range ecs.Query2[ecs.KeepAlive, ecs.ConnectionHandle](world) {
		if now.Sub(r.A.LastSent) <= timeout {
			continue
		}
		conn, _ := r.B.Conn.(*netconn.Connection)
		stale = append(stale, staleRow{entity: r.Entity, conn: conn})
	}
	return stale
}

// cronLogAdapter routes robfig/cron's internal logging through slog instead
// of its default stdlib logger.
type cronLogAdapter struct {
	logger *slog.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.logger.Error(msg, append(keysAndValues, "error", err)...)
}
