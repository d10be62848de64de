// Package middleware provides HTTP middleware for the admin server.
//
// The middleware chain, outermost first:
//
//   - Recovery: catches handler panics and returns a JSON 500
//   - RequestID: assigns or propagates X-Request-ID and threads it into
//     the logging context
//   - Logging: structured request completion logs with latency and status
//   - Metrics: per-route request counters, duration histograms, and the
//     in-flight gauge
//
// Example:
//
//	var handler http.Handler = mux
//	handler = middleware.MetricsMiddleware(collector)(handler)
//	handler = middleware.LoggingMiddleware(handler)
//	handler = middleware.RequestIDMiddleware(handler)
//	handler = middleware.RecoveryMiddleware(handler)
package middleware
