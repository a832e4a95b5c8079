package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons reported on the dropped counter.
const (
	DropQueueFull   = "queue_full"
	DropClosed      = "closed"
	DropCircuitOpen = "circuit_open"
	DropEncode      = "encode"
)

// Metrics holds Prometheus metrics for the audit pipeline. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Persisted           prometheus.Counter
	Dropped             *prometheus.CounterVec
	PersistFailures     prometheus.Counter
	SinkFailures        *prometheus.CounterVec
	CircuitBreakerState prometheus.Gauge
	PersistDuration     prometheus.Histogram
}

// NewMetrics registers the audit metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Persisted: f.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_audit_events_persisted_total",
			Help: "Total number of audit events persisted",
		}),
		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_audit_events_dropped_total",
			Help: "Total number of audit events dropped before persistence, by reason",
		}, []string{"reason"}),
		PersistFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_audit_persist_failures_total",
			Help: "Total number of audit event persistence failures",
		}),
		SinkFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_audit_sink_failures_total",
			Help: "Total number of failed deliveries to downstream audit sinks",
		}, []string{"sink"}),
		CircuitBreakerState: f.NewGauge(prometheus.GaugeOpts{
			Name: "rollcall_audit_circuit_breaker_state",
			Help: "Current audit store circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
		PersistDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "rollcall_audit_persist_duration_seconds",
			Help:    "Duration of audit event persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) IncPersisted() {
	if m != nil {
		m.Persisted.Inc()
	}
}

func (m *Metrics) IncDropped(reason string) {
	if m != nil {
		m.Dropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncPersistFailures() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}

func (m *Metrics) IncSinkFailures(sink string) {
	if m != nil {
		m.SinkFailures.WithLabelValues(sink).Inc()
	}
}

func (m *Metrics) ObservePersistDuration(seconds float64) {
	if m != nil {
		m.PersistDuration.Observe(seconds)
	}
}

// SetCircuitBreakerState sets the circuit breaker state gauge.
func (m *Metrics) SetCircuitBreakerState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitBreakerState.Set(1)
	} else {
		m.CircuitBreakerState.Set(0)
	}
}
