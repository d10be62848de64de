package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// namespace prefixes every metric exposed by this package.
const namespace = "mcla"

// Collector is the orchestrator for all Prometheus metrics. It manages
// metric registration and provides a unified recording interface for the
// retention engine, the admin HTTP API, and the history pipeline.
//
// All Record* methods are no-ops when metrics are disabled, so callers
// never need to guard their own call sites.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Retention lifecycle metrics
	retention *RetentionMetrics

	// Admin HTTP API metrics
	request *RequestMetrics

	// Call history pipeline metrics
	history *HistoryMetrics

	// Cardinality tracking for the route label
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Path: "/metrics"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}

	// Initialize metric subsystems
	c.retention = NewRetentionMetrics(registry)
	c.request = NewRequestMetrics(registry)
	c.history = NewHistoryMetrics(registry)

	return c
}

// RecordDeletion records the outcome of a soft-delete cascade.
//
// Parameters:
//   - outcome: one of the Outcome* constants ("committed", "conflict",
//     "not_found", "error")
func (c *Collector) RecordDeletion(outcome string) {
	if !c.config.Enabled {
		return
	}

	c.retention.RecordDeletion(outcome)
}

// RecordRestore records the outcome of a restore attempt.
//
// Parameters:
//   - outcome: one of the Outcome* constants ("restored", "conflict",
//     "expired", "not_found", "error")
func (c *Collector) RecordRestore(outcome string) {
	if !c.config.Enabled {
		return
	}

	c.retention.RecordRestore(outcome)
}

// RecordSweep records a completed sweep run.
//
// Parameters:
//   - result: one of the Sweep* constants ("clean", "partial", "failed")
//   - duration: total sweep duration
//   - purged: number of accounts physically removed
//   - failed: number of purge attempts that failed
func (c *Collector) RecordSweep(result string, duration time.Duration, purged, failed int) {
	if !c.config.Enabled {
		return
	}

	c.retention.RecordSweep(result, duration, purged, failed)
}

// SetPendingDeletions updates the gauge of tombstoned accounts that are
// waiting for the sweeper.
func (c *Collector) SetPendingDeletions(count int) {
	if !c.config.Enabled {
		return
	}

	c.retention.SetPendingDeletions(count)
}

// SetRecoveryWindow publishes the currently configured recovery window.
func (c *Collector) SetRecoveryWindow(window time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.retention.SetRecoveryWindow(window)
}

// RecordHTTPRequest records a completed admin API request.
//
// Parameters:
//   - method: HTTP method
//   - route: route pattern (not the raw URL path)
//   - status: HTTP status code
//   - duration: total request duration
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	// Unmatched routes carry the raw path, so cap their cardinality.
	labelSet := fmt.Sprintf("http:%s:%s", method, route)
	if !c.cardinalityLimiter.Allow(labelSet) {
		route = "other"
	}

	c.request.RecordRequest(method, route, status, duration)
}

// IncRequestsInFlight increments the in-flight request gauge.
func (c *Collector) IncRequestsInFlight() {
	if !c.config.Enabled {
		return
	}

	c.request.IncInFlight()
}

// DecRequestsInFlight decrements the in-flight request gauge.
func (c *Collector) DecRequestsInFlight() {
	if !c.config.Enabled {
		return
	}

	c.request.DecInFlight()
}

// RecordHistoryAppend records one call record landing in storage.
//
// Parameters:
//   - status: append status ("success", "error")
func (c *Collector) RecordHistoryAppend(status string) {
	if !c.config.Enabled {
		return
	}

	c.history.RecordAppend(status)
}

// RecordHistoryDropped records a call record rejected because the
// recorder buffer was full or closed.
func (c *Collector) RecordHistoryDropped() {
	if !c.config.Enabled {
		return
	}

	c.history.RecordDropped()
}

// SetHistoryBufferEntries updates the recorder buffer occupancy gauge.
func (c *Collector) SetHistoryBufferEntries(count int) {
	if !c.config.Enabled {
		return
	}

	c.history.SetBufferEntries(count)
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if the cardinality limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
