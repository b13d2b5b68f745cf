package ecs

// Entity is a lightweight handle: an index into the allocator's generation
// table plus the generation it was allocated at. A handle is live only as
// long as its generation matches the table's current value for that index —
// once freed and possibly reused, a stale handle comparing against the new
// generation is rejected rather than aliasing a different entity.
type Entity struct {
	ID         uint64
	Generation uint64
}

// EntityAllocator hands out Entity values, reusing freed ids LIFO and
// bumping an id's generation only when it is freed (not when it is reused).
// A zero-value EntityAllocator is ready to use.
type EntityAllocator struct {
	generations []uint64
	freeIDs     []uint64
	nextID      uint64
}

// Allocate returns a fresh Entity, reusing the most recently freed id if one
// is available, otherwise growing the table.
func (a *EntityAllocator) Allocate() Entity {
	if n := len(a.freeIDs); n > 0 {
		id := a.freeIDs[n-1]
		a.freeIDs = a.freeIDs[:n-1]
		return Entity{ID: id, Generation: a.generations[id]}
	}

	id := a.nextID
	a.nextID++
	a.generations = append(a.generations, 0)
	return Entity{ID: id, Generation: 0}
}

// Deallocate frees e's id for reuse and bumps its generation, invalidating
// every other live handle for that id. Returns ErrEntityNotFound if e.ID is
// out of range, or ErrInvalidGeneration if e's generation is already stale
// (e.g. a double deallocate, or a handle outlived by a reused id).
func (a *EntityAllocator) Deallocate(e Entity) error {
	if e.ID >= uint64(len(a.generations)) {
		return ErrEntityNotFound
	}
	if a.generations[e.ID] != e.Generation {
		return ErrInvalidGeneration
	}
	a.generations[e.ID]++
	a.freeIDs = append(a.freeIDs, e.ID)
	return nil
}

// IsLive reports whether e still refers to a live entity: its id is in
// range and its generation matches the table's current value.
func (a *EntityAllocator) IsLive(e Entity) bool {
	if e.ID >= uint64(len(a.generations)) {
		return false
	}
	return a.generations[e.ID] == e.Generation
}

// Len returns the number of ids the allocator has ever handed out,
// including currently-freed ones (i.e. the size of the generation table).
func (a *EntityAllocator) Len() int {
	return len(a.generations)
}
