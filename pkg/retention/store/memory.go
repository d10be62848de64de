package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
)

// MemoryStore implements retention.Storage using in-memory maps. It mirrors
// the SQLite backend's semantics, including tombstone visibility, cascade
// atomicity, and typed errors, and is intended for tests and local runs.
type MemoryStore struct {
	mu           sync.RWMutex
	accounts     map[uuid.UUID]*retention.Account
	configs      map[int64]*retention.UsageConfig
	calls        map[int64]*retention.CallRecord
	nextConfigID int64
	nextCallID   int64
}

// NewMemoryStore creates a new in-memory storage backend.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:     make(map[uuid.UUID]*retention.Account),
		configs:      make(map[int64]*retention.UsageConfig),
		calls:        make(map[int64]*retention.CallRecord),
		nextConfigID: 1,
		nextCallID:   1,
	}
}

// CreateAccount persists a new account. Usernames are unique across live and
// tombstoned accounts, matching the SQLite schema constraint.
func (s *MemoryStore) CreateAccount(ctx context.Context, account *retention.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.ID]; ok {
		return retention.NewStorageError("memory", "create_account",
			fmt.Errorf("account %s already exists", account.ID))
	}
	for _, existing := range s.accounts {
		if existing.Username == account.Username {
			return retention.NewDuplicateUsernameError(account.Username)
		}
	}

	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = account.CreatedAt
	}

	s.accounts[account.ID] = cloneAccount(account)
	return nil
}

// GetAccount returns an account regardless of its tombstone state.
func (s *MemoryStore) GetAccount(ctx context.Context, id uuid.UUID) (*retention.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, retention.NewAccountNotFoundError(id)
	}
	return cloneAccount(account), nil
}

// GetAccountByUsername returns a live account by username. Tombstoned
// accounts are invisible to this lookup.
func (s *MemoryStore) GetAccountByUsername(ctx context.Context, username string) (*retention.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.accounts {
		if account.Username == username && account.DeletedAt == nil {
			return cloneAccount(account), nil
		}
	}
	return nil, &retention.NotFoundError{Kind: "account", Ref: username}
}

// ListAccounts returns accounts filtered by visibility, ordered by creation
// time.
func (s *MemoryStore) ListAccounts(ctx context.Context, vis retention.Visibility) ([]*retention.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]*retention.Account, 0)
	for _, account := range s.accounts {
		if vis.Includes(account.DeletedAt) {
			accounts = append(accounts, cloneAccount(account))
		}
	}

	sort.Slice(accounts, func(i, j int) bool {
		if !accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
		}
		return accounts[i].Username < accounts[j].Username
	})

	return accounts, nil
}

// ListDeleted returns all tombstoned accounts, oldest tombstone first.
func (s *MemoryStore) ListDeleted(ctx context.Context) ([]*retention.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]*retention.Account, 0)
	for _, account := range s.accounts {
		if account.DeletedAt != nil {
			accounts = append(accounts, cloneAccount(account))
		}
	}

	sortByTombstone(accounts)
	return accounts, nil
}

// ListExpired returns tombstoned accounts whose tombstone is strictly older
// than cutoff, oldest first.
func (s *MemoryStore) ListExpired(ctx context.Context, cutoff time.Time) ([]*retention.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]*retention.Account, 0)
	for _, account := range s.accounts {
		if account.DeletedAt != nil && account.DeletedAt.Before(cutoff) {
			accounts = append(accounts, cloneAccount(account))
		}
	}

	sortByTombstone(accounts)
	return accounts, nil
}

// SaveConfig inserts or updates a hyperparameter configuration. Inserts
// assign config.ID. Updates only touch live configurations.
func (s *MemoryStore) SaveConfig(ctx context.Context, config *retention.UsageConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[config.AccountID]; !ok {
		return retention.NewStorageError("memory", "save_config",
			fmt.Errorf("account %s does not exist", config.AccountID))
	}

	now := time.Now().UTC()

	if config.ID == 0 {
		if config.CreatedAt.IsZero() {
			config.CreatedAt = now
		}
		if config.UpdatedAt.IsZero() {
			config.UpdatedAt = config.CreatedAt
		}
		config.ID = s.nextConfigID
		s.nextConfigID++
		s.configs[config.ID] = cloneConfig(config)
		return nil
	}

	existing, ok := s.configs[config.ID]
	if !ok || existing.AccountID != config.AccountID || existing.DeletedAt != nil {
		return retention.NewConfigNotFoundError(config.ID)
	}

	config.CreatedAt = existing.CreatedAt
	config.UpdatedAt = now
	s.configs[config.ID] = cloneConfig(config)
	return nil
}

// ListConfigs returns an account's configurations filtered by visibility.
func (s *MemoryStore) ListConfigs(ctx context.Context, accountID uuid.UUID, vis retention.Visibility) ([]*retention.UsageConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	configs := make([]*retention.UsageConfig, 0)
	for _, config := range s.configs {
		if config.AccountID == accountID && vis.Includes(config.DeletedAt) {
			configs = append(configs, cloneConfig(config))
		}
	}

	sort.Slice(configs, func(i, j int) bool {
		if !configs[i].CreatedAt.Equal(configs[j].CreatedAt) {
			return configs[i].CreatedAt.Before(configs[j].CreatedAt)
		}
		return configs[i].ID < configs[j].ID
	})

	return configs, nil
}

// AppendCall appends a call record to an account's history.
func (s *MemoryStore) AppendCall(ctx context.Context, record *retention.CallRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[record.AccountID]; !ok {
		return retention.NewStorageError("memory", "append_call",
			fmt.Errorf("account %s does not exist", record.AccountID))
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	record.ID = s.nextCallID
	s.nextCallID++
	s.calls[record.ID] = cloneCall(record)
	return nil
}

// ListCalls returns an account's call history filtered by visibility, newest
// first.
func (s *MemoryStore) ListCalls(ctx context.Context, accountID uuid.UUID, vis retention.Visibility, limit, offset int) ([]*retention.CallRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*retention.CallRecord, 0)
	for _, record := range s.calls {
		if record.AccountID == accountID && vis.Includes(record.DeletedAt) {
			records = append(records, cloneCall(record))
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})

	if offset > 0 {
		if offset >= len(records) {
			return []*retention.CallRecord{}, nil
		}
		records = records[offset:]
	}
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}

	return records, nil
}

// AccountStats aggregates the live call history of an account.
func (s *MemoryStore) AccountStats(ctx context.Context, accountID uuid.UUID) (*retention.AccountStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &retention.AccountStats{AccountID: accountID}
	for _, record := range s.calls {
		if record.AccountID != accountID || record.DeletedAt != nil {
			continue
		}
		stats.TotalCalls++
		if record.Status != retention.CallSuccess {
			stats.FailedCalls++
		}
		stats.TotalTokens += record.TotalTokens
		stats.TotalCost += record.Cost
	}

	if stats.TotalCalls > 0 {
		stats.SuccessRate = float64(stats.TotalCalls-stats.FailedCalls) / float64(stats.TotalCalls) * 100
	}

	return stats, nil
}

// CountDependents counts an account's dependent rows. A nil stamp counts
// live rows; a non-nil stamp counts rows tombstoned at exactly that
// timestamp.
func (s *MemoryStore) CountDependents(ctx context.Context, accountID uuid.UUID, stamp *time.Time) (retention.DependentCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var counts retention.DependentCounts
	for _, record := range s.calls {
		if record.AccountID == accountID && matchesStamp(record.DeletedAt, stamp) {
			counts.Calls++
		}
	}
	for _, config := range s.configs {
		if config.AccountID == accountID && matchesStamp(config.DeletedAt, stamp) {
			counts.Configs++
		}
	}

	return counts, nil
}

// ApplyCascade atomically applies a soft-delete or restore cascade under the
// store lock, re-checking the account's tombstone like the SQLite
// transaction does.
func (s *MemoryStore) ApplyCascade(ctx context.Context, accountID uuid.UUID, op retention.CascadeOp, stamp time.Time) (retention.DependentCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var counts retention.DependentCounts

	account, ok := s.accounts[accountID]
	if !ok {
		return counts, retention.NewAccountNotFoundError(accountID)
	}

	stamp = stamp.UTC()

	switch op {
	case retention.CascadeSoftDelete:
		if account.DeletedAt != nil {
			return counts, retention.NewAccountAlreadyDeletedError(accountID, *account.DeletedAt)
		}

		for _, record := range s.calls {
			if record.AccountID == accountID && record.DeletedAt == nil {
				ts := stamp
				record.DeletedAt = &ts
				counts.Calls++
			}
		}
		for _, config := range s.configs {
			if config.AccountID == accountID && config.DeletedAt == nil {
				ts := stamp
				config.DeletedAt = &ts
				config.UpdatedAt = stamp
				counts.Configs++
			}
		}

		ts := stamp
		account.DeletedAt = &ts
		account.IsActive = false
		account.UpdatedAt = stamp

	case retention.CascadeRestore:
		if account.DeletedAt == nil {
			return counts, retention.NewNotDeletedError(accountID)
		}
		if !account.DeletedAt.Equal(stamp) {
			return counts, retention.NewConflictError(accountID)
		}

		now := time.Now().UTC()

		for _, record := range s.calls {
			if record.AccountID == accountID && record.DeletedAt != nil && record.DeletedAt.Equal(stamp) {
				record.DeletedAt = nil
				counts.Calls++
			}
		}
		for _, config := range s.configs {
			if config.AccountID == accountID && config.DeletedAt != nil && config.DeletedAt.Equal(stamp) {
				config.DeletedAt = nil
				config.UpdatedAt = now
				counts.Configs++
			}
		}

		account.DeletedAt = nil
		account.IsActive = true
		account.UpdatedAt = now

	default:
		return counts, retention.NewStorageError("memory", "apply_cascade",
			fmt.Errorf("unknown cascade operation %q", op))
	}

	return counts, nil
}

// TombstoneConfig tombstones a single configuration independently of its
// account.
func (s *MemoryStore) TombstoneConfig(ctx context.Context, accountID uuid.UUID, configID int64, stamp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, ok := s.configs[configID]
	if !ok || config.AccountID != accountID {
		return retention.NewConfigNotFoundError(configID)
	}
	if config.DeletedAt != nil {
		return retention.NewConfigAlreadyDeletedError(configID, *config.DeletedAt)
	}

	ts := stamp.UTC()
	config.DeletedAt = &ts
	config.UpdatedAt = ts
	return nil
}

// Purge permanently removes an account and all rows referencing it. The
// expiry check is repeated under the lock; when the account no longer
// qualifies nothing is removed and Purge reports false.
func (s *MemoryStore) Purge(ctx context.Context, accountID uuid.UUID, cutoff time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return false, nil
	}
	if account.DeletedAt == nil || !account.DeletedAt.Before(cutoff) {
		return false, nil
	}

	for id, record := range s.calls {
		if record.AccountID == accountID {
			delete(s.calls, id)
		}
	}
	for id, config := range s.configs {
		if config.AccountID == accountID {
			delete(s.configs, id)
		}
	}
	delete(s.accounts, accountID)

	return true, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make(map[uuid.UUID]*retention.Account)
	s.configs = make(map[int64]*retention.UsageConfig)
	s.calls = make(map[int64]*retention.CallRecord)
	return nil
}

// matchesStamp reports whether a tombstone matches the requested filter: nil
// selects live rows, non-nil selects rows stamped at exactly that time.
func matchesStamp(deletedAt, stamp *time.Time) bool {
	if stamp == nil {
		return deletedAt == nil
	}
	return deletedAt != nil && deletedAt.Equal(*stamp)
}

// sortByTombstone orders tombstoned accounts oldest tombstone first.
func sortByTombstone(accounts []*retention.Account) {
	sort.Slice(accounts, func(i, j int) bool {
		if !accounts[i].DeletedAt.Equal(*accounts[j].DeletedAt) {
			return accounts[i].DeletedAt.Before(*accounts[j].DeletedAt)
		}
		return accounts[i].Username < accounts[j].Username
	})
}

// cloneAccount returns a deep copy so callers cannot mutate stored state.
func cloneAccount(a *retention.Account) *retention.Account {
	accountCopy := *a
	if a.DeletedAt != nil {
		ts := *a.DeletedAt
		accountCopy.DeletedAt = &ts
	}
	return &accountCopy
}

// cloneConfig returns a deep copy of a configuration.
func cloneConfig(c *retention.UsageConfig) *retention.UsageConfig {
	configCopy := *c
	if c.Parameters != nil {
		configCopy.Parameters = make(map[string]float64, len(c.Parameters))
		for k, v := range c.Parameters {
			configCopy.Parameters[k] = v
		}
	}
	if c.DeletedAt != nil {
		ts := *c.DeletedAt
		configCopy.DeletedAt = &ts
	}
	return &configCopy
}

// cloneCall returns a deep copy of a call record.
func cloneCall(r *retention.CallRecord) *retention.CallRecord {
	recordCopy := *r
	if r.Parameters != nil {
		recordCopy.Parameters = make(map[string]float64, len(r.Parameters))
		for k, v := range r.Parameters {
			recordCopy.Parameters[k] = v
		}
	}
	if r.DeletedAt != nil {
		ts := *r.DeletedAt
		recordCopy.DeletedAt = &ts
	}
	return &recordCopy
}

// Size returns the number of accounts in storage (for testing).
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.accounts)
}
