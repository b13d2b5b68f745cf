// Package registry holds the boot-time table mapping (state, direction,
// packet id) to a handler, generalizing the fixed dispatch switch a
// single-protocol server would otherwise hard-code.
package registry

import (
	"fmt"

	"github.com/43d9ab5/ferrumc/internal/protocol"
)

// Handler decodes and reacts to one packet's payload. ctx is whatever the
// caller needs threaded through (a *netconn.Connection, typically), kept as
// `any` here so registry has no dependency on netconn and can be imported
// by both netconn and systems without a cycle.
type Handler func(ctx any, payload []byte) error

type key struct {
	state     protocol.State
	direction protocol.Direction
	id        int32
}

// Registry is a boot-time-populated, read-only-after-init dispatch table.
type Registry struct {
	entries map[key]Handler
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[key]Handler)}
}

// Register adds a handler for (state, direction, id). Registering the same
// key twice panics: that is a programming error caught at boot, not a
// runtime condition to recover from.
func (r *Registry) Register(state protocol.State, direction protocol.Direction, id int32, h Handler) {
	k := key{state, direction, id}
	if _, exists := r.entries[k]; exists {
		panic(fmt.Sprintf("registry: duplicate handler for state=%v direction=%v id=0x%02x", state, direction, id))
	}
	r.entries[k] = h
}

// Lookup returns the handler for (state, direction, id), if registered.
func (r *Registry) Lookup(state protocol.State, direction protocol.Direction, id int32) (Handler, bool) {
	h, ok := r.entries[key{state, direction, id}]
	return h, ok
}

// Dispatch looks up and invokes the handler for f in the given state and
// direction. Unknown ids in Play are the caller's responsibility to skip
// silently (per the registry's dispatch contract); Dispatch itself always
// reports whether a handler was found so the caller can apply that policy.
func (r *Registry) Dispatch(ctx any, state protocol.State, direction protocol.Direction, f protocol.Frame) (found bool, err error) {
	h, ok := r.Lookup(state, direction, f.ID)
	if !ok {
		return false, nil
	}
	return true, h(ctx, f.Payload)
}
