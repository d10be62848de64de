// Package metrics provides Prometheus metrics for the retention service.
//
// # Overview
//
// The metrics package exposes three metric families through a single
// Collector:
//
//   - Retention: soft deletions, restores, sweep runs, purge counts,
//     pending deletion backlog, and the configured recovery window
//   - HTTP: admin API request counts, durations, and in-flight gauge
//   - History: call record appends, drops, and recorder buffer occupancy
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	// Record lifecycle events
//	collector.RecordDeletion(metrics.OutcomeCommitted)
//	collector.RecordRestore(metrics.OutcomeExpired)
//	collector.RecordSweep(metrics.SweepClean, 120*time.Millisecond, 3, 0)
//
//	// Expose the scrape endpoint
//	http.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// # Cardinality
//
// Counter labels are drawn from small fixed sets (outcomes, results,
// route patterns). Routes that fall outside the known set, such as raw
// paths from unmatched requests, are collapsed into "other" once the
// cardinality limit is reached.
//
// All metrics use the "mcla" namespace.
package metrics
