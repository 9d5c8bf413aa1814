// Package epoch provides epoch-based memory reclamation for lock-free
// data structures.
//
// A goroutine pins a Guard before it dereferences shared nodes and unpins it
// when done. Nodes unlinked from a structure are retired through the guard
// and handed to the free callback only after a grace period: the global epoch
// must advance twice past the epoch in which the node was retired. The epoch
// can only advance when every pinned guard has observed the current epoch,
// so a goroutine holding a stale pointer always blocks the reuse of what it
// may still read.
//
// Usage:
//
//	g := c.Pin()
//	defer g.Unpin()
//	// load shared pointers, unlink a node ...
//	g.Retire(old)
//
// Guards are cheap value types but they are NOT safe to share between
// goroutines. Each goroutine pins its own.
package epoch

import (
	"sync/atomic"
)

// RetireThreshold is how many retirements a record buffers before it tries
// to advance the global epoch and collect.
const RetireThreshold = 64

// pinned marks a record's state word as active.
const pinned = 1

// Collector tracks the global epoch and the participant records.
type Collector[T any] struct {
	global atomic.Uint64

	_pad0 [56]byte //nolint:unused

	head atomic.Pointer[record[T]]
	free func(*T)
}

// record is a participant slot. A record is owned by at most one goroutine
// at a time (inUse), which gives that goroutine exclusive access to garbage.
type record[T any] struct {
	// state is epoch<<1 | pinned.
	state atomic.Uint64
	inUse atomic.Bool

	// next is written before the record is published and never again.
	next *record[T]

	garbage []retired[T]

	retiredCount atomic.Uint64
	freedCount   atomic.Uint64
}

type retired[T any] struct {
	item  *T
	epoch uint64
}

// Stats reports reclamation counters summed over all records.
type Stats struct {
	Epoch     uint64
	Records   int
	Retired   uint64
	Reclaimed uint64
}

// Pending is the number of retired items still waiting for a grace period.
func (s Stats) Pending() uint64 {
	return s.Retired - s.Reclaimed
}

// New creates a Collector. free is called exactly once for every retired
// item after its grace period expires. A nil free simply drops the item.
func New[T any](free func(*T)) *Collector[T] {
	return &Collector[T]{free: free}
}

// Epoch returns the current global epoch.
func (c *Collector[T]) Epoch() uint64 {
	return c.global.Load()
}

// Stats returns a snapshot of the reclamation counters.
func (c *Collector[T]) Stats() Stats {
	s := Stats{Epoch: c.global.Load()}
	for r := c.head.Load(); r != nil; r = r.next {
		s.Records++
		s.Retired += r.retiredCount.Load()
		s.Reclaimed += r.freedCount.Load()
	}
	return s
}

// Pin claims a participant record and publishes the current epoch on it.
// The returned guard must be unpinned by the same goroutine.
func (c *Collector[T]) Pin() Guard[T] {
	r := c.acquire()
	for {
		e := c.global.Load()
		r.state.Store(e<<1 | pinned)
		// Re-validate: if the epoch moved between the load and the publish,
		// publish again so we never pin behind an epoch we did not see.
		if c.global.Load() == e {
			break
		}
	}
	return Guard[T]{c: c, r: r}
}

// acquire returns a record owned by the caller, reusing an idle one when
// possible and otherwise pushing a new one onto the registry.
func (c *Collector[T]) acquire() *record[T] {
	for r := c.head.Load(); r != nil; r = r.next {
		if !r.inUse.Load() && r.inUse.CompareAndSwap(false, true) {
			return r
		}
	}

	r := &record[T]{}
	r.inUse.Store(true)
	for {
		h := c.head.Load()
		r.next = h
		if c.head.CompareAndSwap(h, r) {
			return r
		}
	}
}

// tryAdvance moves the global epoch forward by one if every pinned record
// has observed it. It returns the epoch after the attempt.
func (c *Collector[T]) tryAdvance() uint64 {
	e := c.global.Load()
	for r := c.head.Load(); r != nil; r = r.next {
		s := r.state.Load()
		if s&pinned != 0 && s>>1 != e {
			return e
		}
	}
	if c.global.CompareAndSwap(e, e+1) {
		return e + 1
	}
	return c.global.Load()
}

// collect frees the prefix of r's garbage whose grace period has expired.
// Garbage is appended in non-decreasing epoch order.
func (c *Collector[T]) collect(r *record[T], global uint64) {
	n := 0
	for _, g := range r.garbage {
		if g.epoch+2 > global {
			break
		}
		if c.free != nil {
			c.free(g.item)
		}
		n++
	}
	if n == 0 {
		return
	}

	rest := copy(r.garbage, r.garbage[n:])
	clear(r.garbage[rest:])
	r.garbage = r.garbage[:rest]
	r.freedCount.Add(uint64(n))
}

// sweep collects the garbage of records nobody holds. Acquire only hands
// out the first idle record, so records deeper in the registry would
// otherwise keep their garbage until a burst of contention reaches them.
func (c *Collector[T]) sweep(own *record[T], global uint64) {
	for r := c.head.Load(); r != nil; r = r.next {
		// The counters are atomic; garbage itself is only read once owned.
		if r == own || r.retiredCount.Load() == r.freedCount.Load() {
			continue
		}
		if r.inUse.Load() || !r.inUse.CompareAndSwap(false, true) {
			continue
		}
		c.collect(r, global)
		r.inUse.Store(false)
	}
}

// Guard is a pinned participant. The zero Guard is not usable.
type Guard[T any] struct {
	c *Collector[T]
	r *record[T]
}

// Unpin clears the pinned state and releases the record for reuse.
// Items retired through this guard stay buffered on the record until a
// later holder collects them.
func (g Guard[T]) Unpin() {
	g.r.state.Store(g.r.state.Load() &^ pinned)
	g.r.inUse.Store(false)
}

// Retire schedules p to be freed after the grace period. p must already
// be unreachable for goroutines that pin after this call.
func (g Guard[T]) Retire(p *T) {
	r := g.r
	r.garbage = append(r.garbage, retired[T]{item: p, epoch: g.c.global.Load()})
	r.retiredCount.Add(1)
	if len(r.garbage)%RetireThreshold == 0 {
		g.Flush()
	}
}

// Flush tries to advance the global epoch and frees whatever garbage has
// become safe, on this guard's record and on every idle record.
func (g Guard[T]) Flush() {
	e := g.c.tryAdvance()
	g.c.collect(g.r, e)
	g.c.sweep(g.r, e)
}
