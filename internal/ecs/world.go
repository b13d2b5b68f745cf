package ecs

import (
	"reflect"
	"sync"
)

// World owns the entity allocator and every component column. All access
// goes through its RWMutex: Query/Get-style operations take the read lock,
// Spawn/Despawn/Set-style operations take the write lock, so many readers
// (e.g. systems running concurrently) can observe the world at once but a
// mutation is always exclusive.
type World struct {
	mu        sync.RWMutex
	allocator EntityAllocator
	storage   *componentStorage
}

// NewWorld returns an empty World ready to use.
func NewWorld() *World {
	return &World{storage: newComponentStorage()}
}

// Spawn allocates a new entity with no components.
func (w *World) Spawn() Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.allocator.Allocate()
}

// Despawn frees e and drops every component attached to it. Returns
// ErrEntityNotFound if e.ID is out of range, or ErrInvalidGeneration if e's
// generation no longer matches the live entity at that id (already
// deallocated, or the id has since been reused). Components are cleared
// only on success, matching the allocator's own liveness check.
func (w *World) Despawn(e Entity) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.allocator.Deallocate(e); err != nil {
		return err
	}
	w.storage.removeAll(e.ID)
	return nil
}

// IsLive reports whether e still refers to a live entity.
func (w *World) IsLive(e Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.allocator.IsLive(e)
}

// EntityCount returns the number of ids ever allocated (including freed
// ones still in the generation table).
func (w *World) EntityCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.allocator.Len()
}

// SetComponent attaches or replaces a component of type T on e. Returns
// ErrEntityNotFound if e is not live.
func SetComponent[T any](w *World, e Entity, c T) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.allocator.IsLive(e) {
		return ErrEntityNotFound
	}
	w.storage.set(e.ID, reflect.TypeOf(c), c)
	return nil
}

// GetComponent returns e's component of type T, if both e is live and the
// component is present.
func GetComponent[T any](w *World, e Entity) (T, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var zero T
	if !w.allocator.IsLive(e) {
		return zero, false
	}
	v, ok := w.storage.get(e.ID, reflect.TypeOf(zero))
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// RemoveComponent drops e's component of type T, if present.
func RemoveComponent[T any](w *World, e Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var zero T
	w.storage.remove(e.ID, reflect.TypeOf(zero))
}

// WithRLock runs fn under the world's read lock, for callers that need to
// take a consistent snapshot across several Get calls without an
// intervening writer (e.g. a system collecting a batch of work before
// releasing the query and doing I/O).
func (w *World) WithRLock(fn func()) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	fn()
}

// WithLock runs fn under the world's write lock.
func (w *World) WithLock(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn()
}
