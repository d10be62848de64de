// Package telemetry provides observability for the retention service.
//
// # Overview
//
// The telemetry package implements structured logging, Prometheus metrics,
// and health check endpoints. It provides visibility into deletion, restore,
// and sweep activity while maintaining low overhead.
//
// # Components
//
//   - logging: Structured logging with PII redaction
//   - metrics: Prometheus metrics collection
//   - health: Liveness, readiness, and version endpoints
//
// # Usage
//
//	// Build the logger from configuration and install it globally
//	logger, err := logging.New(logging.FromTelemetry(cfg.Telemetry.Logging))
//	if err != nil {
//		return err
//	}
//	slog.SetDefault(logger)
//
//	// Record metrics
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordDeletion(metrics.OutcomeCommitted)
//
//	// Expose health probes
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("storage", health.StorageCheck(store))
//	health.RegisterEndpoints(mux, checker, version, commit, buildTime)
//
// # PII Protection
//
// By default, PII is automatically redacted from logs:
//
//   - API keys: sk-abc123 → sk-***
//   - Emails: user@example.com → u***@example.com
//   - Bearer tokens: Bearer eyJhb... → Bearer ***
//
// Redaction applies to messages, attribute values, and values attached
// through Logger.With.
package telemetry
