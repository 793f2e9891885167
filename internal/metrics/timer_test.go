package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTimerDuration(t *testing.T) {
	timer := NewTimer()
	time.Sleep(20 * time.Millisecond)

	assert.GreaterOrEqual(t, timer.Duration(), 20*time.Millisecond)
}

func TestTimerObserveDurationVec(t *testing.T) {
	histogramVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "test_duration_vec_seconds",
			Help:    "Test duration histogram vec",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	timer := NewTimer()
	timer.ObserveDurationVec(histogramVec, "get")
	timer.ObserveDurationVec(histogramVec, "get")

	assert.Equal(t, 1, testutil.CollectAndCount(histogramVec))
}

func TestCountersRegistered(t *testing.T) {
	before := testutil.ToFloat64(ResponseCountFailuresTotal)
	ResponseCountFailuresTotal.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ResponseCountFailuresTotal))
}
