package queue

import "sync"

// BlockingQueue is an unbounded FIFO queue guarded by a single mutex.
//
// This is the baseline approach. Dequeue parks the calling goroutine on a
// condition variable while the queue is empty, so waiting consumers burn
// no CPU. Close wakes every waiter so consumers can exit once the queue
// has drained.
type BlockingQueue[T any] struct {
	mu       sync.Mutex
	notEmpty sync.Cond
	items    []T
	closed   bool
}

// NewBlocking creates an empty BlockingQueue.
func NewBlocking[T any]() *BlockingQueue[T] {
	q := &BlockingQueue[T]{}
	q.notEmpty.L = &q.mu
	return q
}

// Enqueue appends an item and wakes one waiting consumer.
// Items are accepted even after Close.
func (q *BlockingQueue[T]) Enqueue(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()

	q.notEmpty.Signal()
}

// Dequeue removes and returns the item at the head of the queue, waiting
// while the queue is empty and not closed.
// Returns false only if the queue is closed and empty.
func (q *BlockingQueue[T]) Dequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.notEmpty.Wait()
	}

	if len(q.items) == 0 {
		var zero T
		return zero, false
	}

	v := q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) == 0 {
		// Drop the consumed backing array
		q.items = nil
	}
	return v, true
}

// Close marks the queue closed and wakes all waiting consumers.
// Safe to call multiple times.
func (q *BlockingQueue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.notEmpty.Broadcast()
}

// Len returns the current number of items in the queue.
func (q *BlockingQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Values returns a copy of the items currently in the queue, head first.
func (q *BlockingQueue[T]) Values() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]T(nil), q.items...)
}
