package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// Backend (Supabase) metrics.
var (
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "supabase_request_duration_seconds",
			Help:    "Duration of calls to the Supabase backend",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "status"},
	)

	BackendErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supabase_errors_total",
			Help: "Backend calls that returned an error, by PostgREST/GoTrue code",
		},
		[]string{"operation", "code"},
	)

	EntityRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entity_requests_total",
			Help: "Entity route requests by table, method and status",
		},
		[]string{"table", "method", "status"},
	)

	ProxyRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rest_proxy_requests_total",
			Help: "Requests passed through to PostgREST by method and upstream status",
		},
		[]string{"method", "status"},
	)
)

// Locale metrics.
var (
	LocaleBundlesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "i18n_bundles_loaded",
			Help: "Number of locale message bundles currently loaded",
		},
	)

	LocaleReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "i18n_reloads_total",
			Help: "Message bundle reloads by outcome",
		},
		[]string{"result"},
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordBackendCall records a Supabase call. code is empty on success.
func RecordBackendCall(operation string, status int, code string, duration time.Duration) {
	BackendRequestDuration.WithLabelValues(operation, statusLabel(status)).Observe(duration.Seconds())
	if code != "" {
		BackendErrorsTotal.WithLabelValues(operation, code).Inc()
	}
}

func statusLabel(status int) string {
	switch {
	case status == 0:
		return "error"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
