package bench

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/loov/hrtime"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/randomizedcoder/msqueue/internal/queue"
	"github.com/randomizedcoder/msqueue/internal/signal"
	"github.com/randomizedcoder/msqueue/internal/tick"
)

const (
	// abortCheckMask: producers look at the abort flag every 1024 items.
	abortCheckMask = 1<<10 - 1

	// progressEvery: consumers poll the shared progress ticker once per
	// this many successful dequeues, and on every empty poll.
	progressEvery = 4096
)

// Driver runs benchmark configurations.
type Driver struct {
	log     zerolog.Logger
	metrics *Metrics
}

// NewDriver creates a Driver. metrics may be nil.
//
//nolint:gocritic // Logger passed by value for constructor simplicity
func NewDriver(log zerolog.Logger, metrics *Metrics) *Driver {
	return &Driver{
		log:     log,
		metrics: metrics,
	}
}

// Run executes one benchmark run and returns its result.
//
// Cancelling ctx aborts the run: producers stop enqueuing, the queue is
// closed so parked consumers wake up, and Run returns the context error
// together with the partial counts.
func (d *Driver) Run(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid config: %w", err)
	}

	q, err := queue.New[int64](cfg.Kind)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		RunID:     uuid.New(),
		Kind:      cfg.Kind,
		Producers: cfg.Producers,
		Consumers: cfg.Consumers,
		Elements:  cfg.Elements,
		Pinned:    cfg.Pin,
	}
	log := d.log.With().
		Str("run_id", res.RunID.String()).
		Stringer("queue", cfg.Kind).
		Int("producers", cfg.Producers).
		Int("consumers", cfg.Consumers).
		Logger()

	produced := signal.NewLatch(cfg.Producers)
	abort := signal.NewFlag()
	progress := tick.New(cfg.ProgressInterval)
	defer progress.Stop()

	// Abort: raise the flag first so consumers woken by Close see it.
	stop := context.AfterFunc(ctx, func() {
		abort.Set()
		q.Close()
	})
	defer stop()

	if err := ctx.Err(); err != nil {
		d.metrics.ObserveFailure(cfg.Kind)
		return res, fmt.Errorf("run %s: %w", res.RunID, err)
	}

	var enqueued, dequeued, checksum atomic.Int64

	log.Debug().Int("elements", cfg.Elements).Bool("pin", cfg.Pin).Msg("run starting")
	start := hrtime.Now()

	var g errgroup.Group

	for p := 0; p < cfg.Producers; p++ {
		first, count := share(cfg.Elements, cfg.Producers, p)
		g.Go(func() error {
			var i int64
			defer func() {
				enqueued.Add(i)
				// The last producer out tells the blocking consumers.
				if produced.CountDown() {
					q.Close()
				}
			}()

			pinWorker(log, cfg.Pin, "producer", p)

			for ; i < count; i++ {
				if i&abortCheckMask == 0 && abort.Done() {
					return ctx.Err()
				}
				q.Enqueue(first + i)
			}
			return nil
		})
	}

	for c := 0; c < cfg.Consumers; c++ {
		g.Go(func() error {
			var n, sum int64
			defer func() {
				dequeued.Add(n)
				checksum.Add(sum)
			}()

			pinWorker(log, cfg.Pin, "consumer", c)
			batch := tick.NewBatch(progress, progressEvery)

			for {
				v, ok := q.Dequeue()
				if ok {
					n++
					sum += v
					if batch.Tick() {
						logProgress(log, c, n, start)
					}
					continue
				}

				if produced.Done() {
					// Every enqueue happened before the last CountDown,
					// so one more pass drains whatever is left.
					for {
						v, ok := q.Dequeue()
						if !ok {
							return nil
						}
						n++
						sum += v
					}
				}
				if abort.Done() {
					return ctx.Err()
				}
				if progress.Tick() {
					logProgress(log, c, n, start)
				}
				runtime.Gosched()
			}
		})
	}

	err = g.Wait()
	res.Elapsed = hrtime.Since(start)
	res.Enqueued = enqueued.Load()
	res.Dequeued = dequeued.Load()

	if err == nil && cfg.Verify {
		err = verify(cfg.Elements, res.Enqueued, res.Dequeued, checksum.Load())
	}
	if err != nil {
		d.metrics.ObserveFailure(cfg.Kind)
		log.Error().Err(err).
			Int64("enqueued", res.Enqueued).
			Int64("dequeued", res.Dequeued).
			Msg("run failed")
		return res, fmt.Errorf("run %s: %w", res.RunID, err)
	}

	if lf, ok := q.(*queue.LockFreeQueue[int64]); ok {
		s := lf.Stats()
		log.Debug().
			Uint64("epoch", s.Epoch).
			Int("records", s.Records).
			Uint64("retired", s.Retired).
			Uint64("reclaimed", s.Reclaimed).
			Msg("node reclamation")
	}

	d.metrics.Observe(res)
	log.Info().
		Int("elements", cfg.Elements).
		Float64("elapsed_ms", res.ElapsedMillis()).
		Float64("elements_per_sec", res.Throughput()).
		Msg("run finished")

	return res, nil
}

func logProgress(log zerolog.Logger, consumer int, n int64, start time.Duration) {
	log.Info().
		Int("consumer", consumer).
		Int64("dequeued", n).
		Dur("elapsed", hrtime.Since(start)).
		Msg("progress")
}

// verify checks no-loss/no-duplication: the count must match and the sum
// of the dequeued values must equal 0+1+...+(elements-1).
func verify(elements int, enqueued, dequeued, sum int64) error {
	n := int64(elements)
	if enqueued != n || dequeued != n {
		return fmt.Errorf("%w: elements %d, enqueued %d, dequeued %d",
			ErrLostElements, n, enqueued, dequeued)
	}
	if want := n * (n - 1) / 2; sum != want {
		return fmt.Errorf("%w: got %d, want %d", ErrChecksum, sum, want)
	}
	return nil
}
