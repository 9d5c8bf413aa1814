// Package combined provides interaction benchmarks that exercise the
// queues together with the signal and tick primitives the benchmark
// driver polls in its hot loops.
//
// These benchmarks are closer to what the driver actually measures than
// the isolated queue micro-benchmarks: they include the per-item cost of
// the completion and progress checks, and cross-goroutine handoff.
// The lock-free ring comparison places the MPMC queues next to a sharded
// MPSC ring, which trades the multi-consumer guarantee for throughput.
package combined
