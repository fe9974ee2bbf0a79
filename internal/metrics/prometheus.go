package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 决策引擎指标
//
// 所有方法对 nil 接收者安全，未启用指标时直接传 nil
type Metrics struct {
	analysesTotal    *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	alertsTotal      *prometheus.CounterVec
}

// New 创建并注册指标；reg 为 nil 时使用默认注册表
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acdss_analyses_total",
				Help: "Total number of computed patient analyses",
			},
			[]string{"recommendation", "mode"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acdss_cache_lookups_total",
				Help: "Total number of analysis cache lookups",
			},
			[]string{"result"},
		),
		analysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "acdss_analysis_duration_seconds",
				Help:    "Analysis computation duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
		),
		alertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acdss_alerts_total",
				Help: "Total number of analyses that raised an alert",
			},
			[]string{"urgency"},
		),
	}

	reg.MustRegister(m.analysesTotal, m.cacheLookups, m.analysisDuration, m.alertsTotal)
	return m
}

// 缓存查询结果标签
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// RecordAnalysis 记录一次完整计算
func (m *Metrics) RecordAnalysis(recommendation, mode string, duration time.Duration) {
	if m == nil {
		return
	}
	m.analysesTotal.WithLabelValues(recommendation, mode).Inc()
	m.analysisDuration.Observe(duration.Seconds())
}

// RecordCacheLookup 记录缓存查询
func (m *Metrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordAlert 记录报警
func (m *Metrics) RecordAlert(urgency string) {
	if m == nil {
		return
	}
	m.alertsTotal.WithLabelValues(urgency).Inc()
}
