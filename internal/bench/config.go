// Package bench drives producer/consumer throughput runs against the
// queue implementations and records the results.
//
// A run spawns P producers, each enqueuing a disjoint range of a fixed
// total, and C consumers draining until production is finished and the
// queue is empty. Completion is signalled the way each queue expects:
// Close() for the blocking queue, a shared latch for the lock-free one.
// The driver owns all of that state; the queues know nothing about it.
package bench

import (
	"errors"
	"fmt"
	"time"

	"github.com/randomizedcoder/msqueue/internal/queue"
)

// Config validation errors
var (
	ErrInvalidProducers = errors.New("producers must be positive")
	ErrInvalidConsumers = errors.New("consumers must be positive")
	ErrInvalidElements  = errors.New("elements out of range")
	ErrInvalidProgress  = errors.New("progress interval must not be negative")
)

// Run verification errors
var (
	ErrLostElements = errors.New("dequeued count does not match enqueued count")
	ErrChecksum     = errors.New("dequeued checksum does not match enqueued checksum")
)

// MaxElements bounds a run so that the checksum 0+1+...+(elements-1) fits
// in an int64.
const MaxElements = 1 << 30

// Config describes a single benchmark run.
type Config struct {
	Kind      queue.Kind
	Producers int
	Consumers int
	Elements  int

	// Pin locks each worker to an OS thread bound to one CPU core.
	Pin bool

	// Verify checks that every element was dequeued exactly once.
	Verify bool

	// ProgressInterval controls progress logging; 0 disables it.
	ProgressInterval time.Duration
}

// DefaultConfig mirrors the classic 4x4, one million element run.
func DefaultConfig() Config {
	return Config{
		Kind:      queue.LockFree,
		Producers: 4,
		Consumers: 4,
		Elements:  1_000_000,
		Verify:    true,
	}
}

// Validate returns an error if the configuration cannot be run.
func (c Config) Validate() error {
	if c.Kind != queue.LockFree && c.Kind != queue.Blocking {
		return fmt.Errorf("%w: %v", queue.ErrUnknownKind, c.Kind)
	}
	if c.Producers <= 0 {
		return ErrInvalidProducers
	}
	if c.Consumers <= 0 {
		return ErrInvalidConsumers
	}
	if c.Elements <= 0 || c.Elements > MaxElements {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidElements, c.Elements, MaxElements)
	}
	if c.ProgressInterval < 0 {
		return ErrInvalidProgress
	}
	return nil
}

// share returns the first value and the count of values producer i of n
// enqueues out of total. The remainder goes to the first producers so
// that exactly total values are produced.
func share(total, n, i int) (first, count int64) {
	base, rem := total/n, total%n
	count = int64(base)
	if i < rem {
		count++
	}
	first = int64(i*base + min(i, rem))
	return first, count
}
