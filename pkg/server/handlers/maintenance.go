package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/telemetry/metrics"
)

// MaintenanceHandler serves operational endpoints, currently the manual
// sweep trigger.
type MaintenanceHandler struct {
	sweeper   *retention.Sweeper
	scheduler *retention.Scheduler
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewMaintenanceHandler creates a new maintenance handler. The scheduler may
// be nil when no sweep schedule is configured.
func NewMaintenanceHandler(sweeper *retention.Sweeper, scheduler *retention.Scheduler, collector *metrics.Collector) *MaintenanceHandler {
	return &MaintenanceHandler{
		sweeper:   sweeper,
		scheduler: scheduler,
		collector: collector,
		logger:    slog.Default().With("component", "server.maintenance"),
	}
}

// Sweep handles POST /admin/maintenance/sweep: one immediate sweep pass,
// independent of the schedule.
//
// A pass that purged some accounts and failed on others is a 200 with
// status "partial": the pass itself completed, and the next sweep retries
// the failures. Only a pass that could not run at all is an error response.
func (h *MaintenanceHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result, err := h.sweeper.Sweep(r.Context())
	duration := time.Since(start)

	var partial *retention.PartialSweepError
	switch {
	case err == nil:
		h.collector.RecordSweep(metrics.SweepClean, duration, result.PurgedCount, 0)
		h.writeSweepResponse(w, SweepStatusClean, result)
	case errors.As(err, &partial):
		h.collector.RecordSweep(metrics.SweepPartial, duration, result.PurgedCount, len(result.Failures))
		h.logger.WarnContext(r.Context(), "manual sweep completed with failures",
			"purged", result.PurgedCount,
			"failed", len(result.Failures),
		)
		h.writeSweepResponse(w, SweepStatusPartial, result)
	default:
		h.collector.RecordSweep(metrics.SweepFailed, duration, 0, 0)
		HandleError(w, r, err)
	}
}

func (h *MaintenanceHandler) writeSweepResponse(w http.ResponseWriter, status string, result *retention.SweepResult) {
	resp := &SweepResponse{
		Status: status,
		Result: result,
	}
	if h.scheduler != nil {
		resp.NextSweep = h.scheduler.NextSweep()
	}
	WriteJSON(w, http.StatusOK, resp)
}
