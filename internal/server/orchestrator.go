package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"

	"github.com/43d9ab5/ferrumc/internal/chunkstore"
	"github.com/43d9ab5/ferrumc/internal/config"
	"github.com/43d9ab5/ferrumc/internal/ecs"
	"github.com/43d9ab5/ferrumc/internal/netconn"
	"github.com/43d9ab5/ferrumc/internal/registry"
	"github.com/43d9ab5/ferrumc/internal/systems"
)

// chunkStoreWorkers sizes the chunk store's worker pool; bbolt transactions
// are synchronous, so this bounds how many are in flight at once regardless
// of how many systems/connections are asking for chunks concurrently.
const chunkStoreWorkers = 8

// Run opens the chunk store, builds the ECS world and systems runtime, and
// blocks until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Listen, err)
	}
	defer ln.Close()

	logger.Info("server listening", "address", cfg.Server.Listen)
	return RunWithListener(ctx, ln, cfg, logger)
}

// RunWithListener is Run with an already-open listener, for tests that need
// an ephemeral port.
func RunWithListener(ctx context.Context, ln net.Listener, cfg *config.Config, logger *slog.Logger) error {
	storePath := cfg.Database.Path
	if cfg.Database.Mode == "memory" {
		storePath = inMemoryStorePath()
	}

	store, err := chunkstore.Open(storePath, chunkStoreWorkers)
	if err != nil {
		return fmt.Errorf("opening chunk store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("closing chunk store", "error", err)
		}
	}()

	world := ecs.NewWorld()
	conns := netconn.NewTable()
	reg := registry.New()
	registerHandlers(reg, newHandlerEnv(world, conns, cfg, logger))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	deps := &systems.Deps{
		World:    world,
		Conns:    conns,
		Store:    store,
		Registry: reg,
		Config:   cfg,
		Logger:   logger,
	}

	rt := systems.NewRuntime(deps,
		systems.NewTickSystem(),
		systems.NewKeepAliveSenderSystem(),
		systems.NewKeepAliveReaperSystem(),
		systems.NewChunkSenderSystem(),
		systems.NewAcceptorSystem(ln),
		systems.NewCommandSystem(cancel),
	)

	rt.Start(runCtx)

	<-runCtx.Done()
	logger.Info("shutting down server")
	rt.Wait()
	logger.Info("server shutdown complete")
	return nil
}

// inMemoryStorePath gives bbolt a throwaway file even in "memory" mode:
// bbolt has no true in-memory backend, so memory mode trades durability
// for a scratch file in the OS temp directory instead of the configured
// path.
func inMemoryStorePath() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("ferrumc-memory-%d.db", os.Getpid()))
}
