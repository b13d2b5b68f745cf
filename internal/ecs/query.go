package ecs

import "reflect"

// Go generics have no variadic type parameter list, so queries over more
// than one component type are exposed as fixed-arity helpers (Query1..3,
// QueryMut1..3) rather than a single variadic Query function. Three is
// enough for every query this server's systems need (the chunk sender's
// Position+ViewDistance+ConnectionHandle being the widest).

// Result1 is one row of a single-component query.
type Result1[A any] struct {
	Entity Entity
	A      A
}

// Query1 returns a snapshot of every live entity carrying a component of
// type A, taken under the world's read lock. The caller should finish
// using the snapshot (and in particular do any blocking I/O) after the
// query has returned, not while holding it open.
func Query1[A any](w *World) []Result1[A] {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var zeroA A
	col := w.storage.columns[reflect.TypeOf(zeroA)]
	out := make([]Result1[A], 0, len(col))
	for id, av := range col {
		e := Entity{ID: id, Generation: w.allocator.generations[id]}
		out = append(out, Result1[A]{Entity: e, A: av.(A)})
	}
	return out
}

// QueryMut1 runs fn once per live entity carrying a component of type A,
// under the world's write lock, passing a pointer the callback may mutate
// in place. No I/O should happen inside fn; the lock is held for its
// entire duration.
func QueryMut1[A any](w *World, fn func(e Entity, a *A)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var zeroA A
	col := w.storage.column(reflect.TypeOf(zeroA))
	for id, av := range col {
		a := av.(A)
		e := Entity{ID: id, Generation: w.allocator.generations[id]}
		fn(e, &a)
		col[id] = a
	}
}

// Result2 is one row of a two-component query.
type Result2[A, B any] struct {
	Entity Entity
	A      A
	B      B
}

// Query2 returns a snapshot of every live entity carrying components of
// both type A and type B.
func Query2[A, B any](w *World) []Result2[A, B] {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var zeroA A
	var zeroB B
	colA := w.storage.columns[reflect.TypeOf(zeroA)]
	colB := w.storage.columns[reflect.TypeOf(zeroB)]
	out := make([]Result2[A, B], 0, len(colA))
	for id, av := range colA {
		bv, ok := colB[id]
		if !ok {
			continue
		}
		e := Entity{ID: id, Generation: w.allocator.generations[id]}
		out = append(out, Result2[A, B]{Entity: e, A: av.(A), B: bv.(B)})
	}
	return out
}

// QueryMut2 runs fn once per live entity carrying both A and B, under the
// world's write lock.
func QueryMut2[A, B any](w *World, fn func(e Entity, a *A, b *B)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var zeroA A
	var zeroB B
	colA := w.storage.column(reflect.TypeOf(zeroA))
	colB := w.storage.column(reflect.TypeOf(zeroB))
	for id, av := range colA {
		bv, ok := colB[id]
		if !ok {
			continue
		}
		a := av.(A)
		b := bv.(B)
		e := Entity{ID: id, Generation: w.allocator.generations[id]}
		fn(e, &a, &b)
		colA[id] = a
		colB[id] = b
	}
}

// Result3 is one row of a three-component query.
type Result3[A, B, C any] struct {
	Entity Entity
	A      A
	B      B
	C      C
}

// Query3 returns a snapshot of every live entity carrying components of
// types A, B, and C.
func Query3[A, B, C any](w *World) []Result3[A, B, C] {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var zeroA A
	var zeroB B
	var zeroC C
	colA := w.storage.columns[reflect.TypeOf(zeroA)]
	colB := w.storage.columns[reflect.TypeOf(zeroB)]
	colC := w.storage.columns[reflect.TypeOf(zeroC)]
	out := make([]Result3[A, B, C], 0, len(colA))
	for id, av := range colA {
		bv, ok := colB[id]
		if !ok {
			continue
		}
		cv, ok := colC[id]
		if !ok {
			continue
		}
		e := Entity{ID: id, Generation: w.allocator.generations[id]}
		out = append(out, Result3[A, B, C]{Entity: e, A: av.(A), B: bv.(B), C: cv.(C)})
	}
	return out
}

// QueryMut3 runs fn once per live entity carrying A, B, and C, under the
// world's write lock.
func QueryMut3[A, B, C any](w *World, fn func(e Entity, a *A, b *B, c *C)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var zeroA A
	var zeroB B
	var zeroC C
	colA := w.storage.column(reflect.TypeOf(zeroA))
	colB := w.storage.column(reflect.TypeOf(zeroB))
	colC := w.storage.column(reflect.TypeOf(zeroC))
	for id, av := range colA {
		bv, ok := colB[id]
		if !ok {
			continue
		}
		cv, ok := colC[id]
		if !ok {
			continue
		}
		a := av.(A)
		b := bv.(B)
		c := cv.(C)
		e := Entity{ID: id, Generation: w.allocator.generations[id]}
		fn(e, &a, &b, &c)
		colA[id] = a
		colB[id] = b
		colC[id] = c
	}
}
