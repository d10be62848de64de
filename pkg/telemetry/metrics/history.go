package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HistoryMetrics tracks the asynchronous call history pipeline.
//
// Metrics:
//   - mcla_history_records_total: appended call records by status
//   - mcla_history_dropped_total: records dropped by the recorder
//   - mcla_history_buffer_entries: recorder buffer occupancy
type HistoryMetrics struct {
	// Appended call records by append status
	recordsTotal *prometheus.CounterVec

	// Records rejected because the buffer was full or closed
	droppedTotal prometheus.Counter

	// Current recorder buffer occupancy
	bufferEntries prometheus.Gauge
}

// NewHistoryMetrics creates and registers history metrics with the
// provided registry.
func NewHistoryMetrics(registry *prometheus.Registry) *HistoryMetrics {
	hm := &HistoryMetrics{
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "history",
				Name:      "records_total",
				Help:      "Total number of call records appended to storage",
			},
			[]string{"status"},
		),

		droppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "history",
				Name:      "dropped_total",
				Help:      "Total number of call records dropped by the recorder",
			},
		),

		bufferEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "history",
				Name:      "buffer_entries",
				Help:      "Call records currently queued in the recorder buffer",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		hm.recordsTotal,
		hm.droppedTotal,
		hm.bufferEntries,
	)

	return hm
}

// RecordAppend records one call record landing in storage.
//
// Parameters:
//   - status: "success" when the write landed, "error" when storage
//     rejected it
func (hm *HistoryMetrics) RecordAppend(status string) {
	hm.recordsTotal.WithLabelValues(status).Inc()
}

// RecordDropped records a call record the recorder had to drop.
func (hm *HistoryMetrics) RecordDropped() {
	hm.droppedTotal.Inc()
}

// SetBufferEntries updates the buffer occupancy gauge.
func (hm *HistoryMetrics) SetBufferEntries(count int) {
	hm.bufferEntries.Set(float64(count))
}
