package pool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes pool activity as Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	submitted  prometheus.Counter
	rejected   *prometheus.CounterVec
	completed  prometheus.Counter
	panics     prometheus.Counter
	inFlight   prometheus.Gauge
	queueDepth prometheus.Gauge
	duration   prometheus.Histogram
}

// NewMetrics creates the pool collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weft_pool_submitted_total",
			Help: "Total number of units accepted by the pool",
		}),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_pool_rejected_total",
				Help: "Total number of units refused by the pool",
			},
			[]string{"reason"},
		),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weft_pool_completed_total",
			Help: "Total number of units that finished running",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weft_pool_panics_total",
			Help: "Total number of units that panicked",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weft_pool_in_flight",
			Help: "Number of units currently running",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weft_pool_queue_depth",
			Help: "Number of units waiting for a worker",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "weft_pool_unit_duration_seconds",
			Help:    "Duration of unit executions",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.submitted, m.rejected, m.completed, m.panics, m.inFlight, m.queueDepth, m.duration)
	}
	return m
}

func (m *Metrics) accepted(depth int) {
	if m == nil {
		return
	}
	m.submitted.Inc()
	m.queueDepth.Set(float64(depth))
}

func (m *Metrics) refused(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) started(depth int) {
	if m == nil {
		return
	}
	m.inFlight.Inc()
	m.queueDepth.Set(float64(depth))
}

func (m *Metrics) finished(d time.Duration, panicked bool) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	m.completed.Inc()
	m.duration.Observe(d.Seconds())
	if panicked {
		m.panics.Inc()
	}
}
