package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for deletion and restore counters.
const (
	OutcomeCommitted = "committed"
	OutcomeRestored  = "restored"
	OutcomeConflict  = "conflict"
	OutcomeExpired   = "expired"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
)

// Result label values for sweep counters.
const (
	SweepClean   = "clean"
	SweepPartial = "partial"
	SweepFailed  = "failed"
)

// RetentionMetrics tracks the account retention lifecycle.
//
// Metrics:
//   - mcla_retention_deletions_total: soft-delete cascades by outcome
//   - mcla_retention_restores_total: restore attempts by outcome
//   - mcla_retention_sweeps_total: sweep runs by result
//   - mcla_retention_purged_accounts_total: accounts physically removed
//   - mcla_retention_purge_failures_total: purge attempts that failed
//   - mcla_retention_sweep_duration_seconds: sweep duration histogram
//   - mcla_retention_pending_deletions: tombstoned accounts awaiting sweep
//   - mcla_retention_recovery_window_seconds: the active recovery window
type RetentionMetrics struct {
	// Soft-delete cascades by outcome
	deletionsTotal *prometheus.CounterVec

	// Restore attempts by outcome
	restoresTotal *prometheus.CounterVec

	// Sweep runs by result
	sweepsTotal *prometheus.CounterVec

	// Accounts physically removed across all sweeps
	purgedTotal prometheus.Counter

	// Individual purge failures across all sweeps
	purgeFailuresTotal prometheus.Counter

	// Sweep duration histogram
	sweepDuration prometheus.Histogram

	// Tombstoned accounts currently awaiting the sweeper
	pendingDeletions prometheus.Gauge

	// Configured recovery window in seconds
	recoveryWindow prometheus.Gauge
}

// NewRetentionMetrics creates and registers retention metrics with the
// provided registry.
func NewRetentionMetrics(registry *prometheus.Registry) *RetentionMetrics {
	rm := &RetentionMetrics{
		deletionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retention",
				Name:      "deletions_total",
				Help:      "Total number of soft-delete cascades by outcome",
			},
			[]string{"outcome"},
		),

		restoresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retention",
				Name:      "restores_total",
				Help:      "Total number of restore attempts by outcome",
			},
			[]string{"outcome"},
		),

		sweepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retention",
				Name:      "sweeps_total",
				Help:      "Total number of sweep runs by result",
			},
			[]string{"result"},
		),

		purgedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retention",
				Name:      "purged_accounts_total",
				Help:      "Total number of accounts physically removed by sweeps",
			},
		),

		purgeFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retention",
				Name:      "purge_failures_total",
				Help:      "Total number of failed purge attempts",
			},
		),

		sweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "retention",
				Name:      "sweep_duration_seconds",
				Help:      "Duration of sweep runs in seconds",
				// Sweeps scan the database, so allow for seconds rather
				// than milliseconds on large backlogs.
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
			},
		),

		pendingDeletions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "retention",
				Name:      "pending_deletions",
				Help:      "Tombstoned accounts currently awaiting the sweeper",
			},
		),

		recoveryWindow: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "retention",
				Name:      "recovery_window_seconds",
				Help:      "Configured recovery window in seconds",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		rm.deletionsTotal,
		rm.restoresTotal,
		rm.sweepsTotal,
		rm.purgedTotal,
		rm.purgeFailuresTotal,
		rm.sweepDuration,
		rm.pendingDeletions,
		rm.recoveryWindow,
	)

	return rm
}

// RecordDeletion records the outcome of a soft-delete cascade.
func (rm *RetentionMetrics) RecordDeletion(outcome string) {
	rm.deletionsTotal.WithLabelValues(outcome).Inc()
}

// RecordRestore records the outcome of a restore attempt.
func (rm *RetentionMetrics) RecordRestore(outcome string) {
	rm.restoresTotal.WithLabelValues(outcome).Inc()
}

// RecordSweep records a completed sweep run.
//
// Parameters:
//   - result: "clean" when every expired account purged, "partial" when
//     some purges failed, "failed" when the run aborted
//   - duration: total sweep duration
//   - purged: accounts physically removed in this run
//   - failed: purge attempts that failed in this run
func (rm *RetentionMetrics) RecordSweep(result string, duration time.Duration, purged, failed int) {
	rm.sweepsTotal.WithLabelValues(result).Inc()
	rm.sweepDuration.Observe(duration.Seconds())

	if purged > 0 {
		rm.purgedTotal.Add(float64(purged))
	}
	if failed > 0 {
		rm.purgeFailuresTotal.Add(float64(failed))
	}
}

// SetPendingDeletions updates the pending deletion gauge.
func (rm *RetentionMetrics) SetPendingDeletions(count int) {
	rm.pendingDeletions.Set(float64(count))
}

// SetRecoveryWindow publishes the active recovery window.
func (rm *RetentionMetrics) SetRecoveryWindow(window time.Duration) {
	rm.recoveryWindow.Set(window.Seconds())
}
