// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the cargoport gateway.
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cargoport_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cargoport_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// RequestsInflight tracks the number of requests currently being handled.
	RequestsInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cargoport_requests_inflight",
			Help: "Requests currently in flight",
		},
	)

	// AuthAttemptsTotal counts identity resolutions by credential kind
	// (cookie, token, any) and result (ok, forbidden, revoked, error).
	AuthAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cargoport_auth_attempts_total",
			Help: "Authentication attempts",
		},
		[]string{"credential", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		RequestsInflight,
		AuthAttemptsTotal,
	)
}
