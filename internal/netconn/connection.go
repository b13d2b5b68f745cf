// Package netconn owns a single client connection: its socket, its place in
// the Handshake/Status/Login/Play state machine, and the single-writer
// discipline that lets many goroutines enqueue outgoing packets safely.
package netconn

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/43d9ab5/ferrumc/internal/ecs"
	"github.com/43d9ab5/ferrumc/internal/protocol"
)

// Errors a Connection's read/write path can return.
var (
	ErrClosed         = errors.New("netconn: connection closed")
	ErrWrongState     = errors.New("netconn: packet not legal in current state")
	ErrKeepAliveStale = errors.New("netconn: keep-alive id did not match")
)

var nextConnID uint64

// Connection is one client's socket plus its protocol state. The socket and
// outgoing path are exclusively owned by at most one writer at a time,
// enforced by writeMu; many goroutines may hold a *Connection and call
// WritePacket concurrently; only one will be inside the critical section at
// once, mirroring the per-connection lock described for the systems that
// share this handle.
type Connection struct {
	ID     uint64
	Entity ecs.Entity
	// hasEntity is false until login assigns Entity a real value. A
	// connection that drops before logging in (Handshake/Status/Login)
	// must never be despawned: Entity's zero value is {0,0}, indistinguishable
	// from the very first entity ever spawned.
	hasEntity atomic.Bool

	conn   net.Conn
	logger Logger

	stateMu sync.RWMutex
	state   protocol.State

	protocolVersion int32

	compressionThreshold int32 // <=0 until Set Compression is sent

	writeMu sync.Mutex
	closed  atomic.Bool
}

// Logger is the narrow logging surface Connection needs, satisfied by
// *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// New wraps a freshly accepted socket in a Connection, starting in the
// Handshake state with no entity assigned yet.
func New(conn net.Conn, logger Logger) *Connection {
	return &Connection{
		ID:                   atomic.AddUint64(&nextConnID, 1),
		conn:                 conn,
		logger:               logger,
		state:                protocol.StateHandshake,
		compressionThreshold: -1,
	}
}

// State returns the connection's current protocol state.
func (c *Connection) State() protocol.State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// SetState transitions the connection to s.
func (c *Connection) SetState(s protocol.State) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.state = s
}

// SetEntity records the entity assigned to this connection at login. Must
// be called exactly once, after which HasEntity reports true.
func (c *Connection) SetEntity(e ecs.Entity) {
	c.Entity = e
	c.hasEntity.Store(true)
}

// HasEntity reports whether SetEntity has been called, i.e. whether this
// connection reached Play and was given a real ECS entity. Connections
// that drop during Handshake/Status/Login never have one.
func (c *Connection) HasEntity() bool {
	return c.hasEntity.Load()
}

// SetProtocolVersion records the version the client announced in Handshake.
func (c *Connection) SetProtocolVersion(v int32) { c.protocolVersion = v }

// ProtocolVersion returns the version the client announced in Handshake.
func (c *Connection) ProtocolVersion() int32 { return c.protocolVersion }

// EnableCompression sets the frame compression threshold for all further
// reads and writes. threshold<=0 disables compression.
func (c *Connection) EnableCompression(threshold int32) {
	c.compressionThreshold = threshold
}

// ReadFrame blocks for the next frame from the socket, honoring whatever
// compression threshold is currently in effect. Only the connection's
// owning read loop should call this — there is no read-side lock.
func (c *Connection) ReadFrame() (protocol.Frame, error) {
	return protocol.ReadFrame(c.conn, c.compressionThreshold)
}

// WritePacket frames and writes a single packet, serialized against any
// other concurrent writer via writeMu. Systems that enqueue writes (the
// keep-alive sender, the chunk sender) acquire this lock only for the
// duration of one frame, never across a blocking wait.
func (c *Connection) WritePacket(id int32, payload []byte) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	f := protocol.Frame{ID: id, Payload: payload}
	if err := protocol.WriteFrame(c.conn, f, c.compressionThreshold); err != nil {
		return fmt.Errorf("writing packet 0x%02x: %w", id, err)
	}
	return nil
}

// Close closes the underlying socket. Safe to call more than once.
func (c *Connection) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}

// RemoteAddr returns the peer address, for logging.
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
