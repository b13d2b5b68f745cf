// Package systems implements the cooperative periodic tasks that drive the
// world forward: tick, keep-alive sender and reaper, chunk sender, and the
// connection acceptor, all sharing one ecs.World and netconn.Table.
package systems

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/43d9ab5/ferrumc/internal/chunkstore"
	"github.com/43d9ab5/ferrumc/internal/config"
	"github.com/43d9ab5/ferrumc/internal/ecs"
	"github.com/43d9ab5/ferrumc/internal/netconn"
	"github.com/43d9ab5/ferrumc/internal/registry"
)

// Deps is the shared state every system is handed at Run time. Nothing in
// Deps is system-owned; it is the world the whole runtime operates on.
type Deps struct {
	World    *ecs.World
	Conns    *netconn.Table
	Store    *chunkstore.Store
	Registry *registry.Registry
	Config   *config.Config
	Logger   *slog.Logger
}

// System is one independent cooperative task bound to the runtime's task
// group. Run blocks until ctx is cancelled or an unrecoverable error
// occurs; a returned error triggers the runtime's restart-with-cooldown
// policy rather than tearing down the whole process.
type System interface {
	Name() string
	Run(ctx context.Context, deps *Deps) error
}

// restartCooldown is how long the runtime waits before relaunching a
// system whose Run call returned (by error, or by recovering from a
// panic) instead of by ctx cancellation.
const restartCooldown = 1 * time.Second

// Runtime launches every registered System as an independent goroutine and
// waits for all of them to exit. kill_all in spec terms is simply
// cancelling the context passed to Start.
type Runtime struct {
	deps    *Deps
	systems []System
	wg      sync.WaitGroup
}

// NewRuntime returns a Runtime that will drive systems against deps.
func NewRuntime(deps *Deps, systems ...System) *Runtime {
	return &Runtime{deps: deps, systems: systems}
}

// Start launches every system and returns immediately. Call Wait to block
// until they have all exited (which only happens once ctx is cancelled).
func (r *Runtime) Start(ctx context.Context) {
	for _, s := range r.systems {
		r.wg.Add(1)
		go r.runWithRestart(ctx, s)
	}
}

// Wait blocks until every system has exited.
func (r *Runtime) Wait() {
	r.wg.Wait()
}

// runWithRestart keeps a system alive across panics and returned errors:
// neither is allowed to bring down the process, per the never-panic
// requirement on systems. Only ctx cancellation ends the loop.
func (r *Runtime) runWithRestart(ctx context.Context, s System) {
	defer r.wg.Done()
	logger := r.deps.Logger.With("system", s.Name())

	for {
		if ctx.Err() != nil {
			return
		}

		err := runOnce(ctx, s, r.deps)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Error("system failed, restarting after cooldown", "error", err)
		}

		select {
		case <-time.After(restartCooldown):
		case <-ctx.Done():
			return
		}
	}
}

// runOnce invokes s.Run, converting a panic into an error so the caller's
// restart policy applies uniformly to both failure modes.
func runOnce(ctx context.Context, s System, deps *Deps) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &panicError{system: s.Name(), recovered: rec}
		}
	}()
	return s.Run(ctx, deps)
}

type panicError struct {
	system    string
	recovered any
}

func (e *panicError) Error() string {
	return "system " + e.system + " panicked: " + errString(e.recovered)
}

func errString(v any) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "unknown panic value"
}
