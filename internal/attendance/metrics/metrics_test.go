package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncOutcome("accepted")
	m.IncOutcome("accepted")
	m.IncCollusion(CollusionFlagged)
	m.ObserveSubmitLatency(3 * time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.SubmissionOutcomes.WithLabelValues("accepted")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CollusionResults.WithLabelValues(CollusionFlagged)), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.SubmitLatency))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncOutcome("accepted")
		m.IncCollusion(CollusionFailed)
		m.ObserveSubmitLatency(time.Second)
	})
}
