package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config contains configuration for the retention engine, sweeper, and
// scheduler.
type Config struct {
	// RecoveryWindow is how long a tombstoned account stays restorable.
	// Default: 168h (7 days)
	RecoveryWindow time.Duration

	// SweepSchedule is a cron expression for scheduling sweeps.
	// Example: "0 3 * * *" (daily at 3 AM)
	// An empty schedule disables automatic sweeping.
	SweepSchedule string

	// ArchiveBeforeSweep enables writing a JSON archive of each account
	// before the sweeper purges it.
	ArchiveBeforeSweep bool

	// ArchivePath is the directory for sweep archives.
	ArchivePath string

	// MaxRetries is how many times an operation is retried after a
	// transient storage failure.
	MaxRetries int

	// RetryBackoff is the fixed delay between retries.
	RetryBackoff time.Duration
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RecoveryWindow:     168 * time.Hour,
		SweepSchedule:      "0 3 * * *",
		ArchiveBeforeSweep: false,
		ArchivePath:        "data/archives/",
		MaxRetries:         3,
		RetryBackoff:       100 * time.Millisecond,
	}
}

// Engine coordinates the soft-deletion lifecycle: preview, cascade deletion,
// restore, and the pending-deletion listing. It owns the retention
// configuration; Configure swaps it at runtime for hot reload.
type Engine struct {
	storage Storage
	logger  *slog.Logger

	mu     sync.RWMutex
	config *Config
}

// NewEngine creates a new retention engine.
func NewEngine(storage Storage, config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}

	return &Engine{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "retention.engine"),
	}
}

// Config returns the current configuration. Callers must not mutate it.
func (e *Engine) Config() *Config {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.config
}

// Configure replaces the engine's configuration. Tombstone states are
// re-derived against the new recovery window on the next read; nothing is
// rewritten in storage.
func (e *Engine) Configure(config *Config) {
	if config == nil {
		config = DefaultConfig()
	}

	e.mu.Lock()
	e.config = config
	e.mu.Unlock()

	e.logger.Info("retention configuration updated",
		"recovery_window", config.RecoveryWindow,
		"sweep_schedule", config.SweepSchedule,
		"archive_before_sweep", config.ArchiveBeforeSweep,
	)
}

// Preview reports what deleting an account would take with it. For an
// account that is already tombstoned it reports the pending deletion
// instead: the rows stamped by its cascade and the real recovery deadline.
// Preview never mutates anything and succeeds in every lifecycle state.
func (e *Engine) Preview(ctx context.Context, accountID uuid.UUID) (*DeletionPreview, error) {
	cfg := e.Config()

	var preview *DeletionPreview
	err := e.withRetry(ctx, "preview", func() error {
		account, err := e.storage.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		state := ResolveState(account.DeletedAt, now, cfg.RecoveryWindow)

		// Live counts for an active account, stamp-matched counts for a
		// tombstoned one. Dependents tombstoned independently before the
		// account deletion carry a different stamp and are not part of
		// this cascade.
		counts, err := e.storage.CountDependents(ctx, accountID, account.DeletedAt)
		if err != nil {
			return err
		}

		preview = &DeletionPreview{
			AccountID:      account.ID,
			Username:       account.Username,
			State:          state,
			Counts:         counts,
			RecoveryWindow: cfg.RecoveryWindow,
		}

		if account.DeletedAt != nil {
			deletedAt := account.DeletedAt.UTC()
			deadline := RecoveryDeadline(deletedAt, cfg.RecoveryWindow)
			preview.DeletedAt = &deletedAt
			preview.RecoveryDeadline = &deadline
		}

		preview.Summary = buildSummary(preview, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return preview, nil
}

// SoftDelete tombstones an account and cascades to all of its live
// dependents with one shared timestamp, inside one transaction. When two
// deletions race, exactly one wins; the loser receives an
// AlreadyDeletedError carrying the winner's timestamp.
func (e *Engine) SoftDelete(ctx context.Context, accountID uuid.UUID) (*DeletionResult, error) {
	cfg := e.Config()

	var result *DeletionResult
	err := e.withRetry(ctx, "soft_delete", func() error {
		account, err := e.storage.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}

		stamp := time.Now().UTC()
		counts, err := e.storage.ApplyCascade(ctx, accountID, CascadeSoftDelete, stamp)
		if err != nil {
			return err
		}

		result = &DeletionResult{
			AccountID:        account.ID,
			Username:         account.Username,
			DeletedAt:        stamp,
			RecoveryDeadline: RecoveryDeadline(stamp, cfg.RecoveryWindow),
			Counts:           counts,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("account soft-deleted",
		"account_id", result.AccountID,
		"username", result.Username,
		"calls", result.Counts.Calls,
		"configs", result.Counts.Configs,
		"recovery_deadline", result.RecoveryDeadline,
	)

	return result, nil
}

// Restore clears an account's tombstone and those of the dependents stamped
// by the same cascade. Dependents tombstoned independently keep their
// tombstones. Restore fails with a NotDeletedError when the account is live
// and a RecoveryExpiredError once the deadline has passed.
func (e *Engine) Restore(ctx context.Context, accountID uuid.UUID) (*RestoreResult, error) {
	cfg := e.Config()

	var result *RestoreResult
	err := e.withRetry(ctx, "restore", func() error {
		account, err := e.storage.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if account.DeletedAt == nil {
			return NewNotDeletedError(accountID)
		}

		now := time.Now().UTC()
		stamp := account.DeletedAt.UTC()
		deadline := RecoveryDeadline(stamp, cfg.RecoveryWindow)
		if ResolveState(account.DeletedAt, now, cfg.RecoveryWindow) == StateExpired {
			return NewRecoveryExpiredError(accountID, stamp, deadline)
		}

		// The cascade re-checks the tombstone inside its transaction, so
		// a concurrent sweep or delete surfaces as a typed error rather
		// than a partial restore.
		counts, err := e.storage.ApplyCascade(ctx, accountID, CascadeRestore, stamp)
		if err != nil {
			return err
		}

		result = &RestoreResult{
			AccountID:  account.ID,
			Username:   account.Username,
			RestoredAt: now,
			Counts:     counts,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("account restored",
		"account_id", result.AccountID,
		"username", result.Username,
		"calls", result.Counts.Calls,
		"configs", result.Counts.Configs,
	)

	return result, nil
}

// SoftDeleteConfig tombstones a single hyperparameter configuration without
// touching its account. The configuration's stamp differs from any later
// account cascade, so an account restore leaves it deleted. The account must
// be live; a tombstoned account hides its configurations.
func (e *Engine) SoftDeleteConfig(ctx context.Context, accountID uuid.UUID, configID int64) (time.Time, error) {
	var stamp time.Time
	err := e.withRetry(ctx, "soft_delete_config", func() error {
		account, err := e.storage.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if account.DeletedAt != nil {
			return NewAccountNotFoundError(accountID)
		}

		stamp = time.Now().UTC()
		return e.storage.TombstoneConfig(ctx, accountID, configID, stamp)
	})
	if err != nil {
		return time.Time{}, err
	}

	e.logger.Info("configuration soft-deleted",
		"account_id", accountID,
		"config_id", configID,
	)

	return stamp, nil
}

// ListPendingDeletion returns every tombstoned account with its recovery
// deadline and whether that deadline has passed, oldest tombstone first.
func (e *Engine) ListPendingDeletion(ctx context.Context) ([]*PendingDeletion, error) {
	cfg := e.Config()

	var pending []*PendingDeletion
	err := e.withRetry(ctx, "list_pending_deletion", func() error {
		accounts, err := e.storage.ListDeleted(ctx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		pending = make([]*PendingDeletion, 0, len(accounts))
		for _, account := range accounts {
			deletedAt := account.DeletedAt.UTC()
			deadline := RecoveryDeadline(deletedAt, cfg.RecoveryWindow)
			pending = append(pending, &PendingDeletion{
				AccountID:        account.ID,
				Username:         account.Username,
				Email:            account.Email,
				DeletedAt:        deletedAt,
				RecoveryDeadline: deadline,
				Expired:          now.After(deadline),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return pending, nil
}

// withRetry runs fn, retrying transient storage failures up to MaxRetries
// times with a fixed backoff. Typed lifecycle errors and conflicts pass
// through untouched; retrying them without a fresh read would be wrong.
func (e *Engine) withRetry(ctx context.Context, operation string, fn func() error) error {
	cfg := e.Config()

	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || attempt >= cfg.MaxRetries || !isTransient(err) {
			return err
		}

		e.logger.Warn("retrying after transient storage failure",
			"operation", operation,
			"attempt", attempt+1,
			"max_retries", cfg.MaxRetries,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.RetryBackoff):
		}
	}
}

// isTransient reports whether an error is a retryable storage failure.
func isTransient(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr) && storageErr.Transient
}

// buildSummary renders the human-readable preview text for each lifecycle
// state.
func buildSummary(p *DeletionPreview, now time.Time) string {
	const stampLayout = "2006-01-02 15:04:05"

	switch p.State {
	case StateRecoverable:
		return fmt.Sprintf("Account '%s' was deleted at %s UTC along with:\n"+
			"- %d LLM call history records\n"+
			"- %d hyperparameter configurations\n\n"+
			"The data can be restored until %s UTC.\n"+
			"After this deadline, all data will be permanently deleted.",
			p.Username, p.DeletedAt.Format(stampLayout),
			p.Counts.Calls, p.Counts.Configs,
			p.RecoveryDeadline.Format(stampLayout))

	case StateExpired:
		return fmt.Sprintf("Account '%s' was deleted at %s UTC along with:\n"+
			"- %d LLM call history records\n"+
			"- %d hyperparameter configurations\n\n"+
			"The recovery deadline passed at %s UTC. The data is no longer\n"+
			"restorable and will be permanently deleted by the next sweep.",
			p.Username, p.DeletedAt.Format(stampLayout),
			p.Counts.Calls, p.Counts.Configs,
			p.RecoveryDeadline.Format(stampLayout))

	default:
		deadline := now.Add(p.RecoveryWindow)
		return fmt.Sprintf("Account '%s' will be deleted along with:\n"+
			"- %d LLM call history records\n"+
			"- %d hyperparameter configurations\n\n"+
			"The data will be retained for %s and can be restored until %s UTC.\n"+
			"After this period, all data will be permanently deleted.",
			p.Username,
			p.Counts.Calls, p.Counts.Configs,
			formatWindow(p.RecoveryWindow), deadline.Format(stampLayout))
	}
}

// formatWindow renders a recovery window as whole days when possible.
func formatWindow(window time.Duration) string {
	if window >= 24*time.Hour && window%(24*time.Hour) == 0 {
		days := int(window / (24 * time.Hour))
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	return window.String()
}
