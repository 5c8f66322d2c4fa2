package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observe(t *testing.T) {
	m := New("appointments", prometheus.NewRegistry())

	m.ObserveDecision("service", "accepted")
	m.ObserveDecision("service", "accepted")
	m.ObserveDecision("team", "rejected")
	m.ObserveRetry("stale_conflict")
	m.ObserveTransientFailure()
	m.ObserveCapacityCache(true)
	m.ObserveCapacityCache(false)
	m.ObserveHTTPRequest("POST", "/api/v1/appointments", 201, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SchedulingDecisions.WithLabelValues("service", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchedulingDecisions.WithLabelValues("team", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchedulingRetries.WithLabelValues("stale_conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchedulingTransientFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CapacityCacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/appointments", "201")))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New("a", prometheus.NewRegistry())
		New("a", prometheus.NewRegistry())
	})
}
