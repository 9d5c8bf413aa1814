package queue

import (
	"sync"

	"github.com/randomizedcoder/msqueue/internal/epoch"
)

// LockFreeQueue is the Michael-Scott lock-free MPMC queue.
//
// The list always starts with a sentinel node; real values start at
// head.next. Head and tail are versioned references swapped with a single
// CAS each. Dequeued sentinels are retired to an epoch collector and
// recycled only after every goroutine that could still hold them has left
// its operation.
//
// Progress is lock-free: a failed CAS means another goroutine succeeded.
// Individual calls may retry under contention but never block.
//
// Typical performance (uncontended, amd64):
//   - Enqueue+Dequeue: ~60-90ns
type LockFreeQueue[T any] struct {
	head countedRef[T]

	// Cache line padding to prevent false sharing
	_pad0 [56]byte //nolint:unused

	tail countedRef[T]

	_pad1 [56]byte //nolint:unused

	reclaim *epoch.Collector[node[T]]
	nodes   sync.Pool
}

// NewLockFree creates an empty LockFreeQueue.
func NewLockFree[T any]() *LockFreeQueue[T] {
	q := &LockFreeQueue[T]{}
	q.reclaim = epoch.New(q.recycle)

	sentinel := &node[T]{}
	q.head.init(sentinel)
	q.tail.init(sentinel)
	return q
}

// recycle resets a node whose grace period has expired and makes it
// available to Enqueue again.
func (q *LockFreeQueue[T]) recycle(n *node[T]) {
	var zero T
	n.value = zero
	n.next.Store(nil)
	q.nodes.Put(n)
}

func (q *LockFreeQueue[T]) newNode(v T) *node[T] {
	n, _ := q.nodes.Get().(*node[T])
	if n == nil {
		n = &node[T]{}
	}
	n.value = v
	return n
}

// Enqueue adds an item to the tail of the queue.
func (q *LockFreeQueue[T]) Enqueue(v T) {
	n := q.newNode(v)

	g := q.reclaim.Pin()
	defer g.Unpin()

	for {
		tail := q.tail.load()
		next := tail.node.next.Load()

		// Tail moved while we were reading it
		if tail != q.tail.load() {
			continue
		}

		if next == nil {
			if tail.node.next.CompareAndSwap(nil, n) {
				// Best effort: whoever sees the lagging tail next will
				// swing it on our behalf.
				q.tail.swing(tail, n)
				return
			}
			continue
		}

		// Tail is lagging behind the last node; help it along.
		q.tail.swing(tail, next)
	}
}

// Dequeue removes and returns the item at the head of the queue.
// Returns false if the queue is empty.
func (q *LockFreeQueue[T]) Dequeue() (T, bool) {
	g := q.reclaim.Pin()
	defer g.Unpin()

	for {
		head := q.head.load()
		tail := q.tail.load()
		next := head.node.next.Load()

		if head != q.head.load() {
			continue
		}

		if head.node == tail.node {
			if next == nil {
				var zero T
				return zero, false
			}
			q.tail.swing(tail, next)
			continue
		}

		// Copy the value out before unlinking: once head moves, next
		// becomes the sentinel and is only protected by our guard.
		v := next.value
		if q.head.swing(head, next) {
			g.Retire(head.node)
			return v, true
		}
	}
}

// Close is a no-op. Completion of a lock-free run is signalled outside
// the queue.
func (q *LockFreeQueue[T]) Close() {}

// Values returns a copy of the items currently in the queue, head first.
//
// The walk is not linearizable with concurrent Enqueue/Dequeue; it is
// meant for debugging and tests on a quiescent queue.
func (q *LockFreeQueue[T]) Values() []T {
	g := q.reclaim.Pin()
	defer g.Unpin()

	var out []T
	for n := q.head.load().node.next.Load(); n != nil; n = n.next.Load() {
		out = append(out, n.value)
	}
	return out
}

// Stats returns node reclamation counters.
func (q *LockFreeQueue[T]) Stats() epoch.Stats {
	return q.reclaim.Stats()
}
