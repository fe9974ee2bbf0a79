package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordAnalysis("MAINTAIN", "ASSIST", 2*time.Millisecond)
	m.RecordAnalysis("MAINTAIN", "ASSIST", time.Millisecond)
	m.RecordCacheLookup(CacheHit)
	m.RecordCacheLookup(CacheMiss)
	m.RecordCacheLookup(CacheMiss)
	m.RecordAlert("CRITICAL")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.analysesTotal.WithLabelValues("MAINTAIN", "ASSIST")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheHit)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.alertsTotal.WithLabelValues("CRITICAL")))

	count, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordAnalysis("MAINTAIN", "OBSERVE", time.Millisecond)
		m.RecordCacheLookup(CacheError)
		m.RecordAlert("HIGH")
	})
}
