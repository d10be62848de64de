package middleware

import (
	"net/http"
	"time"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/telemetry/metrics"
)

// MetricsMiddleware records request counts, durations, and the in-flight
// gauge through the collector. It must sit inside any middleware that swaps
// the request (RequestID does), because the route label is read from
// Request.Pattern after the mux has matched.
func MetricsMiddleware(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			collector.IncRequestsInFlight()
			defer collector.DecRequestsInFlight()

			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			// Matched requests carry the registered pattern; unmatched ones
			// fall back to the raw path, which the collector caps.
			route := r.Pattern
			if route == "" {
				route = r.URL.Path
			}

			collector.RecordHTTPRequest(r.Method, route, rw.statusCode, time.Since(startTime))
		})
	}
}
