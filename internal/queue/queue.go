// Package queue provides unbounded MPMC FIFO queue implementations for
// benchmarking.
//
// This package offers two implementations of the Queue interface:
//   - LockFreeQueue: Michael-Scott lock-free linked queue with versioned
//     head/tail and epoch-based node reclamation
//   - BlockingQueue: mutex + condition variable baseline
//
// # Completion
//
// Dequeue reports an empty queue with ok=false. Whether "empty" means
// "producers are still working" or "done for good" is decided by the
// caller through its own completion signal, not by the queue:
//   - BlockingQueue: call Close() once production is finished; blocked
//     consumers wake and return ok=false when nothing is left.
//   - LockFreeQueue: Dequeue never blocks; Close() is a no-op and callers
//     poll a shared counter (see internal/signal).
//
// All methods are safe for concurrent use by any number of producers
// and consumers. No external locking is needed.
package queue

import (
	"errors"
	"fmt"
	"strings"
)

// Queue is an unbounded multi-producer multi-consumer FIFO queue.
type Queue[T any] interface {
	// Enqueue adds an item to the tail of the queue.
	// It always succeeds.
	Enqueue(T)

	// Dequeue removes and returns the item at the head of the queue.
	// Returns false if the queue is empty.
	Dequeue() (T, bool)

	// Close signals that no more items will be produced.
	Close()
}

// ErrUnknownKind is returned for a Kind outside {LockFree, Blocking}.
var ErrUnknownKind = errors.New("queue: unknown kind")

// Kind selects a queue implementation.
type Kind int

const (
	// LockFree selects LockFreeQueue.
	LockFree Kind = iota
	// Blocking selects BlockingQueue.
	Blocking
)

func (k Kind) String() string {
	switch k {
	case LockFree:
		return "lockfree"
	case Blocking:
		return "blocking"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses a queue kind name. The numeric forms 0 and 1 are
// accepted for compatibility with older benchmark scripts.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lockfree", "lock-free", "nonblocking", "0":
		return LockFree, nil
	case "blocking", "1":
		return Blocking, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// New creates an empty queue of the given kind.
func New[T any](k Kind) (Queue[T], error) {
	switch k {
	case LockFree:
		return NewLockFree[T](), nil
	case Blocking:
		return NewBlocking[T](), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownKind, k)
}
