package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collusion detection results.
const (
	CollusionFlagged   = "flagged"
	CollusionUnmatched = "unmatched"
	CollusionFailed    = "failed"
)

// Metrics provides observability for the attendance module. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	// Submission outcomes, including storage_failure
	SubmissionOutcomes *prometheus.CounterVec

	// Collusion handling by result
	CollusionResults *prometheus.CounterVec

	SubmitLatency prometheus.Histogram
}

// New registers the attendance metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SubmissionOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_attendance_submissions_total",
			Help: "Total attendance submissions by outcome",
		}, []string{"outcome"}),

		CollusionResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_attendance_collusion_total",
			Help: "Origin collisions handled by the detector, by result",
		}, []string{"result"}), // result: "flagged", "unmatched", "failed"

		SubmitLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rollcall_attendance_submit_duration_seconds",
			Help:    "Duration of a submission including collusion handling",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncOutcome records a submission outcome.
func (m *Metrics) IncOutcome(outcome string) {
	if m != nil {
		m.SubmissionOutcomes.WithLabelValues(outcome).Inc()
	}
}

// IncCollusion records how a collision was handled.
func (m *Metrics) IncCollusion(result string) {
	if m != nil {
		m.CollusionResults.WithLabelValues(result).Inc()
	}
}

// ObserveSubmitLatency records the total submission duration.
func (m *Metrics) ObserveSubmitLatency(d time.Duration) {
	if m != nil {
		m.SubmitLatency.Observe(d.Seconds())
	}
}
