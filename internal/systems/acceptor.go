package systems

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/43d9ab5/ferrumc/internal/netconn"
	"github.com/43d9ab5/ferrumc/internal/protocol"
)

// maxAcceptBackoff caps the delay the accept loop will wait after a run of
// consecutive Accept errors, so a persistently broken listener degrades to
// a slow poll instead of a hot loop, but never stalls indefinitely.
const maxAcceptBackoff = 1 * time.Second

// AcceptorSystem owns the listening socket: it accepts connections and
// spawns one reader goroutine per connection to drive that connection's
// state machine via the packet registry.
type AcceptorSystem struct {
	Listener net.Listener
}

func NewAcceptorSystem(ln net.Listener) *AcceptorSystem {
	return &AcceptorSystem{Listener: ln}
}

func (s *AcceptorSystem) Name() string { return "acceptor" }

func (s *AcceptorSystem) Run(ctx context.Context, deps *Deps) error {
	go func() {
		<-ctx.Done()
		_ = s.Listener.Close()
	}()

	consecutiveErrors := 0
	for {
		conn, err := s.Listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			consecutiveErrors++
			deps.Logger.Error("accepting connection", "error", err, "consecutive_errors", consecutiveErrors)
			delay := time.Duration(consecutiveErrors) * 100 * time.Millisecond
			if delay > maxAcceptBackoff {
				delay = maxAcceptBackoff
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		consecutiveErrors = 0

		c := netconn.New(conn, deps.Logger)
		deps.Conns.Add(c)
		go readLoop(ctx, deps, c)
	}
}

// readLoop owns one connection end to end: it reads frames, dispatches them
// through the registry, and unregisters + closes the connection once the
// loop ends for any reason. Unknown packet ids are skipped in Play and
// treated as a protocol error everywhere else, per the registry's dispatch
// contract.
func readLoop(ctx context.Context, deps *Deps, c *netconn.Connection) {
	defer func() {
		deps.Conns.Remove(c)
		_ = c.Close()
		if c.HasEntity() {
			if err := deps.World.Despawn(c.Entity); err != nil {
				deps.Logger.Warn("despawning connection entity", "conn", c.ID, "error", err)
			}
		}
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		frame, err := c.ReadFrame()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				deps.Logger.Debug("connection read ended", "conn", c.ID, "error", err)
			}
			return
		}

		state := c.State()
		found, err := deps.Registry.Dispatch(c, state, protocol.Serverbound, frame)
		if err != nil {
			deps.Logger.Warn("handling packet", "conn", c.ID, "state", state, "packet_id", frame.ID, "error", err)
			return
		}
		if !found {
			if state == protocol.StatePlay {
				deps.Logger.Debug("skipping unknown play packet", "conn", c.ID, "packet_id", frame.ID)
				continue
			}
			deps.Logger.Warn("unknown packet outside play state, terminating", "conn", c.ID, "state", state, "packet_id", frame.ID)
			return
		}
	}
}
