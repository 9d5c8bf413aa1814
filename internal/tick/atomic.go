package tick

import (
	"sync/atomic"
	"time"

	"github.com/loov/hrtime"
)

// AtomicTicker uses atomic operations and hrtime for fast tick checks.
//
// hrtime.Now() returns a monotonic time.Duration since process start,
// which avoids constructing a time.Time on every poll.
//
// Typical performance:
//   - time.Ticker select: ~20-40ns
//   - AtomicTicker.Tick(): ~3-5ns
type AtomicTicker struct {
	interval time.Duration
	lastTick atomic.Int64
}

// NewAtomicTicker creates an AtomicTicker with the specified interval.
func NewAtomicTicker(interval time.Duration) *AtomicTicker {
	t := &AtomicTicker{
		interval: interval,
	}
	t.lastTick.Store(int64(hrtime.Now()))
	return t
}

// Tick returns true if the interval has elapsed since the last tick.
//
// Uses a compare-and-swap so that when many goroutines poll, only one
// of them triggers each tick.
func (a *AtomicTicker) Tick() bool {
	now := int64(hrtime.Now())
	last := a.lastTick.Load()

	if now-last >= int64(a.interval) {
		// CAS to prevent multiple triggers
		if a.lastTick.CompareAndSwap(last, now) {
			return true
		}
	}
	return false
}

// Reset resets the ticker to start a new interval from now.
func (a *AtomicTicker) Reset() {
	a.lastTick.Store(int64(hrtime.Now()))
}

// Stop is a no-op for AtomicTicker (no resources to release).
func (a *AtomicTicker) Stop() {}

// Interval returns the ticker's interval.
func (a *AtomicTicker) Interval() time.Duration {
	return a.interval
}
