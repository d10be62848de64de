package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks the admin HTTP API.
//
// Metrics:
//   - mcla_http_requests_total: request count by method, route, status
//   - mcla_http_request_duration_seconds: request duration histogram
//   - mcla_http_requests_in_flight: requests currently being served
type RequestMetrics struct {
	// Total request count
	requestsTotal *prometheus.CounterVec

	// Request duration histogram
	requestDuration *prometheus.HistogramVec

	// Requests currently being served
	inFlight prometheus.Gauge
}

// NewRequestMetrics creates and registers HTTP request metrics with the
// provided registry.
func NewRequestMetrics(registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of admin API requests",
			},
			[]string{"method", "route", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of admin API requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of admin API requests currently being served",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.inFlight,
	)

	return rm
}

// RecordRequest records a completed request.
//
// Parameters:
//   - method: HTTP method
//   - route: route pattern, e.g. "/admin/accounts/{id}"
//   - status: HTTP status code
//   - duration: total request duration
func (rm *RequestMetrics) RecordRequest(method, route string, status int, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	rm.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncInFlight increments the in-flight gauge.
func (rm *RequestMetrics) IncInFlight() {
	rm.inFlight.Inc()
}

// DecInFlight decrements the in-flight gauge.
func (rm *RequestMetrics) DecInFlight() {
	rm.inFlight.Dec()
}
