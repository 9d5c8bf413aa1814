// Package signal provides completion signalling for producer/consumer runs.
//
// This package offers two implementations of the Signal interface:
//   - Latch: atomic countdown that is done once every producer finished
//   - Flag: atomic.Bool raised once to abort a run
//
// Both are polled from consumer hot loops, so Done() is a single atomic
// load. Queues never own these signals; the driver does.
package signal

// Signal reports whether some condition has been reached.
//
// Implementations must be safe for concurrent use:
//   - Multiple goroutines may call Done() concurrently
//   - The triggering method may be called concurrently with Done()
type Signal interface {
	// Done returns true once the condition has been reached.
	Done() bool
}
