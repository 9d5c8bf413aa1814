package bench

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/randomizedcoder/msqueue/internal/queue"
)

// Metrics exports run results to Prometheus. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// RunsTotal counts completed runs
	RunsTotal *prometheus.CounterVec

	// RunFailuresTotal counts runs that were aborted or failed verification
	RunFailuresTotal *prometheus.CounterVec

	// ElementsTotal counts elements moved through the queue, by op
	ElementsTotal *prometheus.CounterVec

	// RunSeconds measures wall-clock time per run
	RunSeconds *prometheus.HistogramVec

	// Throughput is the last observed throughput for a queue/thread mix
	Throughput *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queuebench_runs_total",
				Help: "Total number of completed benchmark runs",
			},
			[]string{"queue"},
		),
		RunFailuresTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queuebench_run_failures_total",
				Help: "Total number of aborted or unverified benchmark runs",
			},
			[]string{"queue"},
		),
		ElementsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queuebench_elements_total",
				Help: "Total number of elements enqueued or dequeued",
			},
			[]string{"queue", "op"},
		),
		RunSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "queuebench_run_seconds",
				Help:    "Wall-clock duration of benchmark runs",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{"queue"},
		),
		Throughput: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "queuebench_throughput_ops",
				Help: "Elements dequeued per second in the last run",
			},
			[]string{"queue", "producers", "consumers"},
		),
	}
}

// Observe records a successful run.
func (m *Metrics) Observe(r Result) {
	if m == nil {
		return
	}
	kind := r.Kind.String()
	m.RunsTotal.WithLabelValues(kind).Inc()
	m.ElementsTotal.WithLabelValues(kind, "enqueue").Add(float64(r.Enqueued))
	m.ElementsTotal.WithLabelValues(kind, "dequeue").Add(float64(r.Dequeued))
	m.RunSeconds.WithLabelValues(kind).Observe(r.Elapsed.Seconds())
	m.Throughput.WithLabelValues(kind, strconv.Itoa(r.Producers), strconv.Itoa(r.Consumers)).Set(r.Throughput())
}

// ObserveFailure records a failed run.
func (m *Metrics) ObserveFailure(kind queue.Kind) {
	if m == nil {
		return
	}
	m.RunFailuresTotal.WithLabelValues(kind.String()).Inc()
}
