package tick

// BatchTicker polls a shared Ticker only every N calls to Tick().
//
// This reduces the overhead of time checks by amortizing them across
// multiple loop iterations. A consumer that dequeues millions of items
// per second does not need to look at the clock on each one.
//
// Example: With every=4096 around an AtomicTicker with a 1s interval,
// the shared ticker is polled once per 4096 calls and fires at most
// once a second across all goroutines.
//
// A BatchTicker is owned by one goroutine. Each goroutine wraps the
// shared ticker in its own BatchTicker.
type BatchTicker struct {
	t     Ticker
	every uint64
	count uint64
}

// NewBatch creates a BatchTicker that polls t every N operations.
//
// Parameters:
//   - t: The shared ticker to poll
//   - every: Poll only every N calls to Tick(); values below 1 mean 1
func NewBatch(t Ticker, every int) *BatchTicker {
	if every < 1 {
		every = 1
	}
	return &BatchTicker{
		t:     t,
		every: uint64(every),
	}
}

// Tick returns true if the shared ticker fired on this call.
//
// On calls between polls this returns false immediately.
func (b *BatchTicker) Tick() bool {
	b.count++
	if b.count%b.every != 0 {
		return false
	}
	return b.t.Tick()
}

// Reset clears the call count and resets the shared ticker.
func (b *BatchTicker) Reset() {
	b.count = 0
	b.t.Reset()
}

// Stop is a no-op; the shared ticker belongs to its creator.
func (b *BatchTicker) Stop() {}

// Every returns the batch size.
func (b *BatchTicker) Every() int {
	return int(b.every)
}
