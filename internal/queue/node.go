package queue

import "sync/atomic"

// node is a cell of the lock-free queue's linked list.
type node[T any] struct {
	value T
	next  atomic.Pointer[node[T]]
}

// countedPtr is an immutable (node, version) snapshot.
//
// The queue swaps whole snapshots with a single CAS on an
// atomic.Pointer[countedPtr], so pointer and version always change
// together. Snapshots are never reused, which means a stale snapshot can
// never compare equal to the current one even if its node has been
// recycled and relinked in the meantime (ABA).
type countedPtr[T any] struct {
	node    *node[T]
	version uint64
}

// countedRef is a shared head or tail reference.
type countedRef[T any] struct {
	p atomic.Pointer[countedPtr[T]]
}

func (r *countedRef[T]) init(n *node[T]) {
	r.p.Store(&countedPtr[T]{node: n})
}

func (r *countedRef[T]) load() *countedPtr[T] {
	return r.p.Load()
}

// swing replaces old with (to, old.version+1) if old is still current.
func (r *countedRef[T]) swing(old *countedPtr[T], to *node[T]) bool {
	if r.p.Load() != old {
		return false
	}
	return r.p.CompareAndSwap(old, &countedPtr[T]{node: to, version: old.version + 1})
}
