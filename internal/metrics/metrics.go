package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Session lifecycle metrics
	SessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "deepwork_sessions_started_total",
			Help: "Total number of sessions started",
		},
	)

	SessionsStopped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "deepwork_sessions_stopped_total",
			Help: "Total number of sessions stopped",
		},
	)

	SessionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deepwork_session_duration_seconds",
			Help:    "Duration of completed sessions in seconds",
			Buckets: []float64{300, 900, 1800, 3600, 7200, 14400, 28800},
		},
	)

	// Request metrics
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deepwork_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deepwork_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Register registers all metrics with the default Prometheus registry.
func Register() {
	prometheus.MustRegister(
		SessionsStarted,
		SessionsStopped,
		SessionDuration,
		RequestsTotal,
		RequestDuration,
	)
}

// Handler returns the HTTP handler that serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
