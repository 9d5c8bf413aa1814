package queue_test

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomizedcoder/msqueue/internal/epoch"
	"github.com/randomizedcoder/msqueue/internal/queue"
	"github.com/randomizedcoder/msqueue/internal/signal"
)

var kinds = []queue.Kind{queue.LockFree, queue.Blocking}

// runMPMC drives q with producers enqueuing disjoint ranges of perProducer
// values each and consumers draining until production is finished and the
// queue is empty. It returns what each consumer received, in order.
func runMPMC(t *testing.T, q queue.Queue[int], producers, consumers, perProducer int) [][]int {
	t.Helper()

	done := signal.NewLatch(producers)
	start := make(chan struct{})

	var pwg sync.WaitGroup
	for p := 0; p < producers; p++ {
		pwg.Add(1)
		go func(p int) {
			defer pwg.Done()
			defer done.CountDown()
			<-start
			base := p * perProducer
			for i := 0; i < perProducer; i++ {
				q.Enqueue(base + i)
			}
		}(p)
	}

	received := make([][]int, consumers)
	var cwg sync.WaitGroup
	for c := 0; c < consumers; c++ {
		cwg.Add(1)
		go func(c int) {
			defer cwg.Done()
			<-start
			for {
				v, ok := q.Dequeue()
				if ok {
					received[c] = append(received[c], v)
					continue
				}
				if done.Done() {
					// Final drain: anything enqueued before the last
					// CountDown is visible now.
					for {
						v, ok := q.Dequeue()
						if !ok {
							return
						}
						received[c] = append(received[c], v)
					}
				}
				runtime.Gosched()
			}
		}(c)
	}

	close(start)
	pwg.Wait()
	q.Close()

	finished := make(chan struct{})
	go func() {
		cwg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(30 * time.Second):
		t.Fatalf("consumers did not finish (likely missed wakeup)")
	}
	return received
}

func assertExactlyOnce(t *testing.T, received [][]int, total int) {
	t.Helper()

	seen := make([]bool, total)
	count := 0
	for _, vals := range received {
		for _, v := range vals {
			require.True(t, v >= 0 && v < total, "value %d out of range", v)
			require.False(t, seen[v], "value %d dequeued twice", v)
			seen[v] = true
			count++
		}
	}
	assert.Equal(t, total, count, "lost values")
}

func TestNoLossNoDuplication(t *testing.T) {
	perProducer := 250_000
	if testing.Short() {
		perProducer = 10_000
	}

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			q, err := queue.New[int](kind)
			require.NoError(t, err)

			received := runMPMC(t, q, 4, 4, perProducer)
			assertExactlyOnce(t, received, 4*perProducer)
		})
	}
}

// TestPerProducerOrder checks that a single consumer sees each producer's
// values in the order that producer enqueued them.
func TestPerProducerOrder(t *testing.T) {
	const producers, perProducer = 4, 20_000

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			q, err := queue.New[int](kind)
			require.NoError(t, err)

			received := runMPMC(t, q, producers, 1, perProducer)

			last := make([]int, producers)
			for i := range last {
				last[i] = -1
			}
			for _, v := range received[0] {
				p, seq := v/perProducer, v%perProducer
				require.Greater(t, seq, last[p], "producer %d out of order", p)
				last[p] = seq
			}
			assertExactlyOnce(t, received, producers*perProducer)
		})
	}
}

// TestConsumerOrder checks that each consumer, in a multi-consumer run,
// also sees every producer's values in increasing order.
func TestConsumerOrder(t *testing.T) {
	const producers, consumers, perProducer = 4, 4, 20_000

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			q, err := queue.New[int](kind)
			require.NoError(t, err)

			received := runMPMC(t, q, producers, consumers, perProducer)
			for c, vals := range received {
				last := make(map[int]int)
				for _, v := range vals {
					p, seq := v/perProducer, v%perProducer
					if prev, ok := last[p]; ok {
						require.Greater(t, seq, prev, "consumer %d saw producer %d out of order", c, p)
					}
					last[p] = seq
				}
			}
		})
	}
}

func TestStress_HighContention(t *testing.T) {
	const producers, consumers, total = 8, 8, 400_000
	runs := 3
	if testing.Short() {
		runs = 1
	}

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			for run := 0; run < runs; run++ {
				q, err := queue.New[int](kind)
				require.NoError(t, err)

				received := runMPMC(t, q, producers, consumers, total/producers)
				assertExactlyOnce(t, received, total)
			}
		})
	}
}

func TestIdempotentDrain(t *testing.T) {
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			q, err := queue.New[int](kind)
			require.NoError(t, err)

			q.Enqueue(1)
			q.Close()
			q.Close()

			v, ok := q.Dequeue()
			require.True(t, ok)
			require.Equal(t, 1, v)

			for i := 0; i < 1000; i++ {
				_, ok := q.Dequeue()
				require.False(t, ok)
			}
		})
	}
}

// TestBlockingQueue_CloseWakesWaiters verifies that consumers parked on an
// empty queue all return within bounded time after Close, across many runs.
func TestBlockingQueue_CloseWakesWaiters(t *testing.T) {
	const consumers, runs = 8, 50

	for run := 0; run < runs; run++ {
		q := queue.NewBlocking[int]()

		results := make(chan bool, consumers)
		for c := 0; c < consumers; c++ {
			go func() {
				_, ok := q.Dequeue()
				results <- ok
			}()
		}

		// Give consumers a chance to park; correctness does not depend on it.
		time.Sleep(time.Millisecond)
		q.Close()

		deadline := time.After(5 * time.Second)
		for c := 0; c < consumers; c++ {
			select {
			case ok := <-results:
				assert.False(t, ok, "run %d: expected empty result after Close", run)
			case <-deadline:
				t.Fatalf("run %d: consumer still blocked after Close", run)
			}
		}
	}
}

func TestBlockingQueue_WakesOnEnqueue(t *testing.T) {
	q := queue.NewBlocking[int]()
	got := make(chan int, 1)

	go func() {
		v, ok := q.Dequeue()
		if ok {
			got <- v
		}
	}()

	time.Sleep(time.Millisecond)
	q.Enqueue(99)

	select {
	case v := <-got:
		assert.Equal(t, 99, v)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer not woken by Enqueue")
	}
}

func TestLockFreeQueue_Reclaims(t *testing.T) {
	q := queue.NewLockFree[int]()
	received := runMPMC(t, q, 4, 4, 50_000)
	assertExactlyOnce(t, received, 200_000)

	s := q.Stats()
	assert.EqualValues(t, 200_000, s.Retired, "every dequeue retires one sentinel")
	assert.Positive(t, s.Reclaimed, "nodes should be recycled during the run")
	assert.LessOrEqual(t, s.Reclaimed, s.Retired)
}

// TestLockFreeQueue_PendingDrainsAfterBurst leaves retired nodes spread over
// many epoch records, then keeps the queue busy from one goroutine. That
// goroutine always reuses the same record, so the others only drain if its
// flushes collect idle records too.
func TestLockFreeQueue_PendingDrainsAfterBurst(t *testing.T) {
	const (
		workers   = 8
		perWorker = 20_000
		tail      = 100_000
	)
	q := queue.NewLockFree[int]()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				q.Enqueue(i)
				q.Dequeue()
				if i%128 == 0 {
					runtime.Gosched()
				}
			}
		}()
	}
	wg.Wait()

	for i := 0; i < tail; i++ {
		q.Enqueue(i)
		_, ok := q.Dequeue()
		require.True(t, ok)
	}

	s := q.Stats()
	require.Positive(t, s.Records)
	assert.EqualValues(t, workers*perWorker+tail, s.Retired)
	assert.LessOrEqual(t, s.Pending(), uint64(epoch.RetireThreshold*s.Records),
		"records=%d retired=%d reclaimed=%d", s.Records, s.Retired, s.Reclaimed)
}
