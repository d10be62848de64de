package retention

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Account represents a proxy account that owns hyperparameter configurations
// and LLM call history. A non-nil DeletedAt marks the account as tombstoned.
type Account struct {
	// Identity
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`

	// IsActive is forced to false while the account is tombstoned and
	// restored to true when the tombstone is cleared.
	IsActive bool `json:"is_active"`

	// Timestamps
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// UsageConfig is a named set of model hyperparameters owned by an account.
type UsageConfig struct {
	ID          int64     `json:"id"`
	AccountID   uuid.UUID `json:"account_id"`
	Name        string    `json:"name"`
	Model       string    `json:"model"`
	Description string    `json:"description,omitempty"`

	// Parameters holds numeric sampling settings such as temperature,
	// top_p, or max_tokens.
	Parameters map[string]float64 `json:"parameters"`

	// IsDefault marks the configuration applied when a call names none.
	IsDefault bool `json:"is_default"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// CallStatus is the terminal status of a recorded LLM call.
type CallStatus string

const (
	// CallSuccess marks a call that returned a completion.
	CallSuccess CallStatus = "success"
	// CallError marks a call that failed at the provider.
	CallError CallStatus = "error"
	// CallTimeout marks a call that the provider never answered in time.
	CallTimeout CallStatus = "timeout"
)

// CallRecord is one entry in an account's LLM call history.
type CallRecord struct {
	ID        int64     `json:"id"`
	AccountID uuid.UUID `json:"account_id"`

	// Request
	Provider   string             `json:"provider"`
	Model      string             `json:"model"`
	Prompt     string             `json:"prompt"`
	Parameters map[string]float64 `json:"parameters,omitempty"`

	// Response
	Response     string     `json:"response,omitempty"`
	Status       CallStatus `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`

	// Usage
	TokensIn    int64   `json:"tokens_in"`
	TokensOut   int64   `json:"tokens_out"`
	TotalTokens int64   `json:"total_tokens"`
	Cost        float64 `json:"cost"`

	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// DependentCounts reports how many dependent rows a cascade touches or
// would touch.
type DependentCounts struct {
	Calls   int64 `json:"calls"`
	Configs int64 `json:"configs"`
}

// Total returns the combined number of dependent rows.
func (c DependentCounts) Total() int64 {
	return c.Calls + c.Configs
}

// DeletionPreview describes what a soft deletion would take with it, or, for
// an already tombstoned account, what its pending deletion holds.
type DeletionPreview struct {
	AccountID uuid.UUID       `json:"account_id"`
	Username  string          `json:"username"`
	State     State           `json:"state"`
	Counts    DependentCounts `json:"counts"`

	// RecoveryWindow is the window the preview was computed against.
	RecoveryWindow time.Duration `json:"recovery_window"`

	// DeletedAt and RecoveryDeadline are set when the account is already
	// tombstoned. For an active account the deadline is hypothetical and
	// both fields are nil.
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
	RecoveryDeadline *time.Time `json:"recovery_deadline,omitempty"`

	// Summary is a human-readable description of the pending deletion.
	Summary string `json:"summary"`
}

// DeletionResult reports a completed soft-delete cascade.
type DeletionResult struct {
	AccountID uuid.UUID `json:"account_id"`
	Username  string    `json:"username"`

	// DeletedAt is the shared tombstone timestamp written to the account
	// and every cascaded dependent.
	DeletedAt        time.Time       `json:"deleted_at"`
	RecoveryDeadline time.Time       `json:"recovery_deadline"`
	Counts           DependentCounts `json:"counts"`
}

// RestoreResult reports a completed restore cascade.
type RestoreResult struct {
	AccountID  uuid.UUID `json:"account_id"`
	Username   string    `json:"username"`
	RestoredAt time.Time `json:"restored_at"`

	// Counts reports the dependent rows whose tombstones were cleared.
	// Dependents tombstoned independently of the account keep theirs.
	Counts DependentCounts `json:"counts"`
}

// PendingDeletion is one entry in the list of tombstoned accounts.
type PendingDeletion struct {
	AccountID        uuid.UUID `json:"account_id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	DeletedAt        time.Time `json:"deleted_at"`
	RecoveryDeadline time.Time `json:"recovery_deadline"`

	// Expired is true once the recovery deadline has passed and the
	// account is awaiting permanent removal.
	Expired bool `json:"expired"`
}

// SweepFailure records one account the sweeper could not purge.
type SweepFailure struct {
	AccountID uuid.UUID `json:"account_id"`
	Reason    string    `json:"reason"`
}

// SweepResult reports one sweep pass over expired accounts.
type SweepResult struct {
	// Purged lists the accounts permanently removed by this pass.
	Purged      []uuid.UUID `json:"purged"`
	PurgedCount int         `json:"purged_count"`

	// Skipped counts accounts that left the expired set between listing
	// and purging, usually because a concurrent restore won.
	Skipped int `json:"skipped"`

	// Failures lists accounts whose purge failed. The pass continues past
	// individual failures; a later sweep retries them.
	Failures []SweepFailure `json:"failures,omitempty"`
}

// AccountStats aggregates an account's live, completed call history.
type AccountStats struct {
	AccountID   uuid.UUID `json:"account_id"`
	TotalCalls  int64     `json:"total_calls"`
	FailedCalls int64     `json:"failed_calls"`
	TotalTokens int64     `json:"total_tokens"`
	TotalCost   float64   `json:"total_cost"`

	// SuccessRate is a percentage in [0, 100]; 0 when there are no calls.
	SuccessRate float64 `json:"success_rate"`
}

// CascadeOp selects the direction of an atomic cascade.
type CascadeOp string

const (
	// CascadeSoftDelete stamps the account and its live dependents with
	// one shared tombstone timestamp.
	CascadeSoftDelete CascadeOp = "soft_delete"
	// CascadeRestore clears the account's tombstone and those of
	// dependents stamped with the same timestamp.
	CascadeRestore CascadeOp = "restore"
)

// Storage defines the persistence contract for the retention engine and its
// collaborators. Implementations must be safe for concurrent use, and
// ApplyCascade and Purge must be atomic: concurrent callers observe either
// none or all of their effects.
type Storage interface {
	// CreateAccount persists a new account. The caller supplies the ID.
	CreateAccount(ctx context.Context, account *Account) error

	// GetAccount returns an account regardless of its tombstone state.
	// Returns a NotFoundError if no row exists at all.
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetAccountByUsername returns a live account by username.
	// Tombstoned accounts are invisible to this lookup.
	GetAccountByUsername(ctx context.Context, username string) (*Account, error)

	// ListAccounts returns accounts filtered by visibility, ordered by
	// creation time.
	ListAccounts(ctx context.Context, vis Visibility) ([]*Account, error)

	// SaveConfig inserts or updates a hyperparameter configuration.
	// Inserts assign Config.ID.
	SaveConfig(ctx context.Context, config *UsageConfig) error

	// ListConfigs returns an account's configurations filtered by
	// visibility.
	ListConfigs(ctx context.Context, accountID uuid.UUID, vis Visibility) ([]*UsageConfig, error)

	// AppendCall appends a call record to an account's history and
	// assigns its ID.
	AppendCall(ctx context.Context, record *CallRecord) error

	// ListCalls returns an account's call history filtered by visibility,
	// newest first. A limit <= 0 returns all records from offset.
	ListCalls(ctx context.Context, accountID uuid.UUID, vis Visibility, limit, offset int) ([]*CallRecord, error)

	// AccountStats aggregates the live call history of an account.
	AccountStats(ctx context.Context, accountID uuid.UUID) (*AccountStats, error)

	// CountDependents counts an account's dependent rows. A nil stamp
	// counts live rows; a non-nil stamp counts rows tombstoned at exactly
	// that timestamp.
	CountDependents(ctx context.Context, accountID uuid.UUID, stamp *time.Time) (DependentCounts, error)

	// ApplyCascade atomically applies a cascade to an account and its
	// dependents, returning the dependent rows affected.
	//
	// For CascadeSoftDelete, stamp is the tombstone timestamp to write.
	// The account must be live; otherwise an AlreadyDeletedError carrying
	// the existing tombstone is returned.
	//
	// For CascadeRestore, stamp is the tombstone the caller read before
	// deciding to restore. The account must still be tombstoned at exactly
	// that timestamp: a live account yields a NotDeletedError, any other
	// tombstone a ConflictError. The compare keeps concurrent mutations
	// serialized without leaking partial cascades.
	ApplyCascade(ctx context.Context, accountID uuid.UUID, op CascadeOp, stamp time.Time) (DependentCounts, error)

	// TombstoneConfig tombstones a single configuration independently of
	// its account. The configuration must exist, belong to the account,
	// and be live. Because its stamp differs from any later account
	// cascade, a restore of the account leaves it deleted.
	TombstoneConfig(ctx context.Context, accountID uuid.UUID, configID int64, stamp time.Time) error

	// ListDeleted returns all tombstoned accounts, oldest tombstone first.
	ListDeleted(ctx context.Context) ([]*Account, error)

	// ListExpired returns tombstoned accounts whose tombstone is strictly
	// older than cutoff, oldest first.
	ListExpired(ctx context.Context, cutoff time.Time) ([]*Account, error)

	// Purge permanently removes an account and all rows referencing it,
	// in one transaction. The expiry check is repeated inside the
	// transaction: the account row is removed only if it is still
	// tombstoned strictly before cutoff. Returns false with no error when
	// the account no longer qualifies, so sweeps stay idempotent under
	// concurrent restores.
	Purge(ctx context.Context, accountID uuid.UUID, cutoff time.Time) (bool, error)

	// Close releases resources held by the storage backend.
	Close() error
}
