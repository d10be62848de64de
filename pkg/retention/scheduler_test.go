package retention_test

import (
	"context"
	"testing"
	"time"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention/store"
)

// newTestScheduler builds a scheduler over a fresh store with the given
// sweep schedule.
func newTestScheduler(t *testing.T, schedule string) (*retention.Scheduler, *store.MemoryStore) {
	t.Helper()

	s := store.NewMemoryStore()
	config := retention.DefaultConfig()
	config.SweepSchedule = schedule
	engine := retention.NewEngine(s, config)
	sweeper := retention.NewSweeper(s, engine)

	return retention.NewScheduler(sweeper), s
}

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{
			name:        "valid daily schedule",
			schedule:    "0 3 * * *",
			wantRunning: true,
			wantError:   false,
		},
		{
			name:        "valid hourly schedule",
			schedule:    "0 * * * *",
			wantRunning: true,
			wantError:   false,
		},
		{
			name:        "empty schedule - no error, not running",
			schedule:    "",
			wantRunning: false,
			wantError:   false,
		},
		{
			name:        "invalid schedule",
			schedule:    "invalid cron",
			wantRunning: false,
			wantError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler, _ := newTestScheduler(t, tt.schedule)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := scheduler.Start(ctx)

			if (err != nil) != tt.wantError {
				t.Errorf("Start() error = %v, wantError %v", err, tt.wantError)
			}

			if scheduler.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", scheduler.IsRunning(), tt.wantRunning)
			}

			if tt.wantRunning {
				next := scheduler.NextSweep()
				if next == nil {
					t.Error("NextSweep() returned nil for running scheduler")
				} else if !next.After(time.Now()) {
					t.Errorf("NextSweep() = %v, want time in future", next)
				}
			}

			scheduler.Stop()

			if scheduler.IsRunning() {
				t.Error("scheduler still running after Stop()")
			}
		})
	}
}

func TestScheduler_RunsScheduledSweep(t *testing.T) {
	scheduler, s := newTestScheduler(t, "@every 1s")
	ctx := context.Background()

	// An account well past its recovery window.
	account := seedAccountWithData(t, s, "expired-account", 1, 2)
	stamp := time.Now().UTC().Add(-8 * 24 * time.Hour)
	if _, err := s.ApplyCascade(ctx, account.ID, retention.CascadeSoftDelete, stamp); err != nil {
		t.Fatalf("ApplyCascade() failed: %v", err)
	}

	results := make(chan *retention.SweepResult, 1)
	scheduler.OnResult = func(result *retention.SweepResult, duration time.Duration, err error) {
		if err != nil {
			t.Errorf("Scheduled sweep failed: %v", err)
			return
		}
		if duration < 0 {
			t.Errorf("Sweep duration = %v, want >= 0", duration)
		}
		select {
		case results <- result:
		default:
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := scheduler.Start(runCtx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer scheduler.Stop()

	select {
	case result := <-results:
		if result.PurgedCount != 1 {
			t.Errorf("Expected 1 purged account, got %d", result.PurgedCount)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for a scheduled sweep")
	}

	if s.Size() != 0 {
		t.Errorf("Expected empty store after scheduled sweep, got %d accounts", s.Size())
	}
}

func TestScheduler_GracefulShutdown(t *testing.T) {
	scheduler, _ := newTestScheduler(t, "0 3 * * *")

	ctx, cancel := context.WithCancel(context.Background())

	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	// Cancelling the context must stop the scheduler.
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for scheduler.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	if scheduler.IsRunning() {
		t.Error("scheduler still running after context cancelled")
	}
}

func TestScheduler_NextSweep(t *testing.T) {
	scheduler, _ := newTestScheduler(t, "0 3 * * *")

	// Before starting, NextSweep should return nil.
	if next := scheduler.NextSweep(); next != nil {
		t.Errorf("NextSweep() before start = %v, want nil", next)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer scheduler.Stop()

	next := scheduler.NextSweep()
	if next == nil {
		t.Fatal("NextSweep() after start returned nil")
	}
	if !next.After(time.Now()) {
		t.Errorf("NextSweep() = %v, want time in future", next)
	}
}

func TestScheduler_Reschedule(t *testing.T) {
	scheduler, _ := newTestScheduler(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// An empty schedule leaves the scheduler idle.
	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if scheduler.IsRunning() {
		t.Fatal("Expected idle scheduler with empty schedule")
	}

	// Rescheduling arms it.
	if err := scheduler.Reschedule("0 4 * * *"); err != nil {
		t.Fatalf("Reschedule() failed: %v", err)
	}
	if !scheduler.IsRunning() {
		t.Error("Expected running scheduler after Reschedule()")
	}
	if scheduler.NextSweep() == nil {
		t.Error("Expected a next sweep time after Reschedule()")
	}

	// An invalid expression is rejected and the old one stays armed.
	if err := scheduler.Reschedule("not a schedule"); err == nil {
		t.Error("Expected error for invalid schedule")
	}
	if scheduler.NextSweep() == nil {
		t.Error("Expected previous schedule to stay armed after a rejected update")
	}

	// Clearing the schedule disarms the job.
	if err := scheduler.Reschedule(""); err != nil {
		t.Fatalf("Reschedule(\"\") failed: %v", err)
	}
	if scheduler.NextSweep() != nil {
		t.Error("Expected no next sweep after clearing the schedule")
	}

	scheduler.Stop()
}

func TestScheduler_MultipleStartStop(t *testing.T) {
	scheduler, _ := newTestScheduler(t, "0 * * * *")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < 3; i++ {
		if err := scheduler.Start(ctx); err != nil {
			t.Fatalf("Start() iteration %d failed: %v", i, err)
		}

		if !scheduler.IsRunning() {
			t.Errorf("IsRunning() = false after Start() iteration %d", i)
		}

		scheduler.Stop()

		if scheduler.IsRunning() {
			t.Errorf("IsRunning() = true after Stop() iteration %d", i)
		}

		time.Sleep(50 * time.Millisecond)
	}
}
