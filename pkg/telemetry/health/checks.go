package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/history"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
)

// StorageCheck builds a CheckFunc that probes the retention storage
// backend with a cheap read. A reachable backend answers the tombstone
// listing quickly; anything else marks the component unhealthy.
func StorageCheck(storage retention.Storage) CheckFunc {
	return func(ctx context.Context) error {
		if _, err := storage.ListDeleted(ctx); err != nil {
			return fmt.Errorf("storage unreachable: %w", err)
		}
		return nil
	}
}

// SchedulerCheck builds a CheckFunc that reports whether the sweep
// scheduler is armed. Register it only when a sweep schedule is
// configured; an intentionally idle scheduler is not a failure.
func SchedulerCheck(scheduler *retention.Scheduler) CheckFunc {
	return func(ctx context.Context) error {
		if !scheduler.IsRunning() {
			return errors.New("sweep scheduler not running")
		}
		return nil
	}
}

// RecorderCheck builds a CheckFunc that reports whether the call history
// recorder still accepts records. A closed recorder silently drops every
// call record, so it counts as an unhealthy component.
func RecorderCheck(recorder *history.Recorder) CheckFunc {
	return func(ctx context.Context) error {
		if !recorder.Running() {
			return errors.New("history recorder closed")
		}
		return nil
	}
}
