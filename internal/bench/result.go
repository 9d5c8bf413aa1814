package bench

import (
	"time"

	"github.com/google/uuid"

	"github.com/randomizedcoder/msqueue/internal/queue"
)

// Result is the outcome of one run.
type Result struct {
	RunID     uuid.UUID
	Kind      queue.Kind
	Producers int
	Consumers int
	Elements  int

	Enqueued int64
	Dequeued int64
	Elapsed  time.Duration
	Pinned   bool
}

// ElapsedMillis returns the wall-clock time in fractional milliseconds.
func (r Result) ElapsedMillis() float64 {
	return float64(r.Elapsed) / float64(time.Millisecond)
}

// Throughput returns dequeued elements per second, or 0 for an empty run.
func (r Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Dequeued) / r.Elapsed.Seconds()
}
