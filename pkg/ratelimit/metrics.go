package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements Metrics with client_golang collectors.
type PrometheusMetrics struct {
	requestsTotal  *prometheus.CounterVec
	checkDuration  *prometheus.HistogramVec
	activeKeys     *prometheus.GaugeVec
	storeFailures  *prometheus.CounterVec
	evictionsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics registers the limiter collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_rate_limit_requests_total",
			Help: "Rate limit checks by limiter type and outcome",
		}, []string{"limiter_type", "status"}),
		checkDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_rate_limit_check_duration_seconds",
			Help:    "Duration of rate limit checks",
			Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.025, 0.05, 0.1},
		}, []string{"limiter_type"}),
		activeKeys: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_rate_limit_active_keys",
			Help: "Tracked keys by limiter type",
		}, []string{"limiter_type"}),
		storeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_rate_limit_store_failures_total",
			Help: "Store failures that caused a fail-open decision",
		}, []string{"limiter_type"}),
		evictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_rate_limit_evictions_total",
			Help: "LRU evictions by limiter type",
		}, []string{"limiter_type"}),
	}
	reg.MustRegister(m.requestsTotal, m.checkDuration, m.activeKeys, m.storeFailures, m.evictionsTotal)
	return m
}

func (m *PrometheusMetrics) RecordAllowed(limiterType string) {
	m.requestsTotal.WithLabelValues(limiterType, "allowed").Inc()
}

func (m *PrometheusMetrics) RecordDenied(limiterType string) {
	m.requestsTotal.WithLabelValues(limiterType, "denied").Inc()
}

func (m *PrometheusMetrics) RecordCheckDuration(limiterType string, d time.Duration) {
	m.checkDuration.WithLabelValues(limiterType).Observe(d.Seconds())
}

func (m *PrometheusMetrics) SetActiveKeys(limiterType string, count int) {
	m.activeKeys.WithLabelValues(limiterType).Set(float64(count))
}

func (m *PrometheusMetrics) RecordStoreFailure(limiterType string) {
	m.storeFailures.WithLabelValues(limiterType).Inc()
}

func (m *PrometheusMetrics) RecordEviction(limiterType string, count int) {
	m.evictionsTotal.WithLabelValues(limiterType).Add(float64(count))
}

// NoOpMetrics discards everything.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordAllowed(string) {}
func (NoOpMetrics) RecordDenied(string) {}
func (NoOpMetrics) RecordCheckDuration(string, time.Duration) {}
func (NoOpMetrics) SetActiveKeys(string, int) {}
func (NoOpMetrics) RecordStoreFailure(string) {}
func (NoOpMetrics) RecordEviction(string, int) {}
