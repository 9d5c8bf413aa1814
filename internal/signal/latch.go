package signal

import "sync/atomic"

// Latch counts down from n and is done when it reaches zero.
//
// A producer calls CountDown after its last Enqueue. The atomic decrement
// orders those enqueues before any Done() that observes zero, so a consumer
// that sees Done() and then finds the queue empty has seen everything.
type Latch struct {
	remaining atomic.Int64
}

// NewLatch creates a Latch waiting for n CountDown calls.
// n <= 0 creates a latch that is already done.
func NewLatch(n int) *Latch {
	l := &Latch{}
	if n > 0 {
		l.remaining.Store(int64(n))
	}
	return l
}

// CountDown records one finished participant and reports whether this
// call was the one that brought the latch to zero.
// Extra calls after the latch is done are no-ops and return false.
func (l *Latch) CountDown() bool {
	for {
		n := l.remaining.Load()
		if n <= 0 {
			return false
		}
		if l.remaining.CompareAndSwap(n, n-1) {
			return n == 1
		}
	}
}

// Remaining returns how many CountDown calls are still outstanding.
func (l *Latch) Remaining() int {
	return int(l.remaining.Load())
}

// Done returns true once every participant has counted down.
func (l *Latch) Done() bool {
	return l.remaining.Load() <= 0
}
