package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for the operations counter.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
)

// Metrics holds the engine's Prometheus instruments.
// A nil *Metrics records nothing.
type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	QueueDepth prometheus.Gauge
}

// NewMetrics creates the engine instruments and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "todo",
			Subsystem: "engine",
			Name:      "operations_total",
			Help:      "Operations processed, by kind and outcome.",
		}, []string{"op", "outcome"}),

		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "todo",
			Subsystem: "engine",
			Name:      "operation_duration_seconds",
			Help:      "Time spent applying an operation to the store.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"op"}),

		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "todo",
			Subsystem: "engine",
			Name:      "queue_depth",
			Help:      "Operations waiting to be applied.",
		}),
	}

	for _, c := range []prometheus.Collector{m.Operations, m.Duration, m.QueueDepth} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// WithMetrics sets the instruments the engine records into.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func (m *Metrics) observe(kind OpKind, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(string(kind), outcome).Inc()
	if outcome != OutcomeSkipped {
		m.Duration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
	}
}

func (m *Metrics) setQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}
