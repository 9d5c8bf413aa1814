package combined_test

import (
	"sync/atomic"
	"testing"

	ring "github.com/randomizedcoder/go-lock-free-ring"

	"github.com/randomizedcoder/msqueue/internal/queue"
)

// ============================================================================
// Comparison Benchmarks: MPMC queues vs go-lock-free-ring (MPSC)
// ============================================================================
//
// KEY DIFFERENCE:
// - LockFreeQueue / BlockingQueue: unbounded MPMC, any goroutine may dequeue
// - go-lock-free-ring: bounded MPSC with one shard per producer
//
// The ring drops the multi-consumer guarantee, so it is the upper bound
// for an N producer, 1 consumer workload, not a drop-in replacement.

// drain runs a single consumer until done is closed.
func drain(done <-chan struct{}, consumerDone chan<- struct{}, poll func()) {
	defer close(consumerDone)
	for {
		select {
		case <-done:
			return
		default:
			poll()
		}
	}
}

// BenchmarkLFR_MPSC_ShardedRing_4P_4S - 4 producers, 4 shards
func BenchmarkLFR_MPSC_ShardedRing_4P_4S(b *testing.B) {
	r, _ := ring.NewShardedRing(1024, 4)
	done := make(chan struct{})
	consumerDone := make(chan struct{})

	go drain(done, consumerDone, func() { r.TryRead() })

	var producerID atomic.Uint64
	b.SetParallelism(4)
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		pid := producerID.Add(1) - 1
		i := 0
		for pb.Next() {
			for !r.Write(pid, i) {
			}
			i++
		}
	})

	b.StopTimer()
	close(done)
	<-consumerDone
}

// BenchmarkLFR_MPSC_ShardedRing_8P_8S - 8 producers, 8 shards
func BenchmarkLFR_MPSC_ShardedRing_8P_8S(b *testing.B) {
	r, _ := ring.NewShardedRing(2048, 8) // Larger capacity for 8 producers
	done := make(chan struct{})
	consumerDone := make(chan struct{})

	go drain(done, consumerDone, func() { r.TryRead() })

	var producerID atomic.Uint64
	b.SetParallelism(8)
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		pid := producerID.Add(1) - 1
		i := 0
		for pb.Next() {
			for !r.Write(pid, i) {
			}
			i++
		}
	})

	b.StopTimer()
	close(done)
	<-consumerDone
}

// BenchmarkLFR_MPSC_LockFree_4P - 4 producers into the MS queue
func BenchmarkLFR_MPSC_LockFree_4P(b *testing.B) {
	benchMPSCQueue(b, queue.NewLockFree[int](), 4)
}

// BenchmarkLFR_MPSC_LockFree_8P - 8 producers into the MS queue
func BenchmarkLFR_MPSC_LockFree_8P(b *testing.B) {
	benchMPSCQueue(b, queue.NewLockFree[int](), 8)
}

// BenchmarkLFR_MPSC_Blocking_4P - 4 producers into the mutex queue
func BenchmarkLFR_MPSC_Blocking_4P(b *testing.B) {
	benchMPSCQueue(b, queue.NewBlocking[int](), 4)
}

// BenchmarkLFR_MPSC_Blocking_8P - 8 producers into the mutex queue
func BenchmarkLFR_MPSC_Blocking_8P(b *testing.B) {
	benchMPSCQueue(b, queue.NewBlocking[int](), 8)
}

func benchMPSCQueue(b *testing.B, q queue.Queue[int], producers int) {
	done := make(chan struct{})
	consumerDone := make(chan struct{})

	// The blocking consumer parks on an empty queue; Close below wakes it.
	go drain(done, consumerDone, func() {
		if v, ok := q.Dequeue(); ok {
			sinkInt = v
		}
	})

	b.SetParallelism(producers)
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			q.Enqueue(i)
			i++
		}
	})

	b.StopTimer()
	close(done)
	q.Close()
	<-consumerDone
}
