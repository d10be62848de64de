package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the sweeper on a cron schedule (e.g. daily at 3 AM).
// Manual sweeps through the maintenance API keep working alongside it;
// sweeping is idempotent, so overlap is harmless.
type Scheduler struct {
	sweeper *Sweeper
	cron    *cron.Cron
	logger  *slog.Logger

	// OnResult, if set before Start, is invoked after every scheduled
	// sweep pass with the pass's wall time. The server uses it to export
	// sweep metrics.
	OnResult func(result *SweepResult, duration time.Duration, err error)

	mu       sync.Mutex
	ctx      context.Context
	entryID  cron.EntryID
	schedule string
	running  bool
}

// NewScheduler creates a new sweep scheduler.
func NewScheduler(sweeper *Sweeper) *Scheduler {
	return &Scheduler{
		sweeper: sweeper,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "retention.scheduler"),
	}
}

// Start begins scheduled sweeping using the engine's configured cron
// expression. An empty schedule leaves the scheduler idle; Reschedule can
// arm it later. The scheduler stops itself when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx = ctx

	schedule := s.sweeper.engine.Config().SweepSchedule
	if schedule == "" {
		s.logger.Info("sweep schedule not configured, scheduler idle")
		return nil
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	// A previous Start may have left an entry behind.
	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
		s.entryID = 0
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.entryID = entryID
	s.schedule = schedule
	s.cron.Start()
	s.running = true

	s.logger.Info("retention scheduler started",
		"schedule", schedule,
		"recovery_window", s.sweeper.engine.Config().RecoveryWindow,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Reschedule swaps the cron expression at runtime. An empty schedule
// disarms the job; a valid one replaces it. Used by configuration hot
// reload.
func (s *Scheduler) Reschedule(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if schedule == s.schedule {
		return nil
	}

	if schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
		}
	}

	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
		s.entryID = 0
	}

	if schedule == "" {
		s.schedule = ""
		s.logger.Info("sweep schedule cleared")
		return nil
	}

	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.entryID = entryID
	s.schedule = schedule

	if !s.running {
		s.cron.Start()
		s.running = true
	}

	s.logger.Info("sweep schedule updated", "schedule", schedule)
	return nil
}

// runSweep executes one scheduled sweep pass.
func (s *Scheduler) runSweep(ctx context.Context) {
	s.logger.Info("starting scheduled retention sweep")

	start := time.Now()
	result, err := s.sweeper.Sweep(ctx)
	duration := time.Since(start)

	if s.OnResult != nil {
		s.OnResult(result, duration, err)
	}

	if err != nil {
		s.logger.Error("scheduled sweep failed", "error", err)
		return
	}

	if result.PurgedCount > 0 {
		s.logger.Info("scheduled sweep completed",
			"purged", result.PurgedCount,
			"skipped", result.Skipped,
		)
	} else {
		s.logger.Debug("scheduled sweep completed, nothing to purge")
	}
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done() // Wait for a running sweep to finish
		s.running = false
		s.logger.Info("retention scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is armed and running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextSweep returns the time of the next scheduled sweep, or nil when the
// scheduler is idle.
func (s *Scheduler) NextSweep() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil || s.entryID == 0 {
		return nil
	}

	entry := s.cron.Entry(s.entryID)
	if entry.ID == 0 {
		return nil
	}

	next := entry.Next
	return &next
}
