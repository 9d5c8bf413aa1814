// Package tick provides cheap periodic triggers for hot loops.
//
// This package offers three implementations of the Ticker interface:
//   - AtomicTicker: CAS on a high-resolution timestamp, safe for many pollers
//   - BatchTicker: a per-goroutine wrapper polling a shared ticker every N calls
//   - Never: a ticker that never fires, for disabling periodic work
//
// Benchmark consumers poll Tick() on every empty dequeue to decide whether
// to report progress. Going through the runtime timer heap there would
// distort the very throughput being measured.
package tick

import "time"

// Ticker signals when a time interval has elapsed.
//
// All implementations are safe for concurrent use from multiple goroutines.
type Ticker interface {
	// Tick returns true if the interval has elapsed since the last tick.
	// This is a non-blocking check. When several goroutines poll the same
	// ticker, exactly one of them observes each tick.
	Tick() bool

	// Reset resets the ticker to start a new interval from now.
	Reset()

	// Stop releases any resources held by the ticker.
	// After Stop, the ticker should not be used.
	Stop()
}

// DefaultInterval is a reasonable default for progress reporting.
const DefaultInterval = time.Second

// New returns an AtomicTicker for interval, or Never() if interval <= 0.
func New(interval time.Duration) Ticker {
	if interval <= 0 {
		return Never()
	}
	return NewAtomicTicker(interval)
}

type never struct{}

// Never returns a Ticker that never fires.
func Never() Ticker { return never{} }

func (never) Tick() bool { return false }
func (never) Reset()     {}
func (never) Stop()      {}
