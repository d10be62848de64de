package retention

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Sweeper permanently removes accounts whose recovery window has passed.
// It shares the engine's live configuration, so a hot-reloaded recovery
// window applies to the next pass without restarting anything.
type Sweeper struct {
	storage Storage
	engine  *Engine
	logger  *slog.Logger

	// OnProgress, if set before Sweep, is called after each expired
	// account is handled (purged, skipped, or failed) with the running
	// count and the total listed for this pass. The CLI uses it to drive
	// a progress bar.
	OnProgress func(done, total int)
}

// NewSweeper creates a new sweeper backed by the same storage as the engine.
func NewSweeper(storage Storage, engine *Engine) *Sweeper {
	return &Sweeper{
		storage: storage,
		engine:  engine,
		logger:  slog.Default().With("component", "retention.sweeper"),
	}
}

// Sweep purges every account tombstoned strictly before now minus the
// recovery window, each in its own transaction. One account's failure does
// not stop the pass: failures are collected and reported together as a
// PartialSweepError alongside the partial result.
//
// Sweep is idempotent. Accounts that leave the expired set between listing
// and purging, typically because a restore won the race, are skipped
// silently and counted in the result.
func (s *Sweeper) Sweep(ctx context.Context) (*SweepResult, error) {
	cfg := s.engine.Config()

	now := time.Now().UTC()
	cutoff := now.Add(-cfg.RecoveryWindow)

	s.logger.Debug("starting sweep",
		"cutoff", cutoff,
		"recovery_window", cfg.RecoveryWindow,
		"archive_before_sweep", cfg.ArchiveBeforeSweep,
	)

	expired, err := s.storage.ListExpired(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{
		Purged:   make([]uuid.UUID, 0, len(expired)),
		Failures: make([]SweepFailure, 0),
	}

	for i, account := range expired {
		select {
		case <-ctx.Done():
			result.PurgedCount = len(result.Purged)
			return result, ctx.Err()
		default:
		}

		s.sweepAccount(ctx, cfg, account, cutoff, result)

		if s.OnProgress != nil {
			s.OnProgress(i+1, len(expired))
		}
	}

	result.PurgedCount = len(result.Purged)

	if result.PurgedCount == 0 && len(result.Failures) == 0 {
		s.logger.Debug("no expired accounts to sweep", "cutoff", cutoff)
	} else {
		s.logger.Info("sweep completed",
			"purged", result.PurgedCount,
			"skipped", result.Skipped,
			"failed", len(result.Failures),
			"cutoff", cutoff,
		)
	}

	if len(result.Failures) > 0 {
		return result, NewPartialSweepError(result.Failures)
	}

	return result, nil
}

// sweepAccount archives (when configured) and purges one expired account,
// recording the outcome in result.
func (s *Sweeper) sweepAccount(ctx context.Context, cfg *Config, account *Account, cutoff time.Time, result *SweepResult) {
	// An archive failure blocks this account's purge; the account stays
	// expired and the next sweep tries it again.
	if cfg.ArchiveBeforeSweep {
		if err := s.archiveAccount(ctx, account, cfg.ArchivePath); err != nil {
			s.logger.Error("failed to archive account before purge",
				"account_id", account.ID,
				"error", err,
			)
			result.Failures = append(result.Failures, SweepFailure{
				AccountID: account.ID,
				Reason:    "archive failed: " + err.Error(),
			})
			return
		}
	}

	purged, err := s.storage.Purge(ctx, account.ID, cutoff)
	if err != nil {
		s.logger.Error("failed to purge expired account",
			"account_id", account.ID,
			"error", err,
		)
		result.Failures = append(result.Failures, SweepFailure{
			AccountID: account.ID,
			Reason:    err.Error(),
		})
		return
	}
	if !purged {
		result.Skipped++
		s.logger.Debug("account left expired set before purge",
			"account_id", account.ID,
		)
		return
	}

	result.Purged = append(result.Purged, account.ID)
}
