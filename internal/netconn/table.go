package netconn

import "sync"

// Table is the process-wide registry of live connections, indexed by
// Connection.ID. Systems that need to reach a connection by id (rather
// than by walking an ECS query) go through here. Lock ordering: callers
// that also hold the ecs.World lock must acquire the world lock first, to
// avoid the inverse order deadlocking against a goroutine that does the
// reverse.
type Table struct {
	mu    sync.RWMutex
	conns map[uint64]*Connection
}

// NewTable returns an empty connection table.
func NewTable() *Table {
	return &Table{conns: make(map[uint64]*Connection)}
}

// Add registers a connection.
func (t *Table) Add(c *Connection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conns[c.ID] = c
}

// Remove drops a connection from the table. Safe to call more than once.
func (t *Table) Remove(c *Connection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, c.ID)
}

// Get returns the connection for id, if still registered.
func (t *Table) Get(id uint64) (*Connection, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.conns[id]
	return c, ok
}

// Len returns the number of registered connections.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.conns)
}

// Snapshot returns a copy of every registered connection, safe to range
// over after the table's lock is released.
func (t *Table) Snapshot() []*Connection {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Connection, 0, len(t.conns))
	for _, c := range t.conns {
		out = append(out, c)
	}
	return out
}
