package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	assert.NoError(t, m.Track("audit:record").End(nil))
	boom := errors.New("db down")
	assert.ErrorIs(t, m.Track("audit:record").End(boom), boom)
	m.AddItems("idempotency:cleanup", 3)
	m.AddItems("idempotency:cleanup", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("audit:record", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("audit:record", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("audit:record")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.items.WithLabelValues("idempotency:cleanup")))
}

func TestNilMetricsTrackerIsNoop(t *testing.T) {
	var m *Metrics
	boom := errors.New("x")
	assert.ErrorIs(t, m.Track("job").End(boom), boom)
	assert.NotPanics(t, func() { m.AddItems("job", 1) })
}
