package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
)

// timeLayout is the fixed-width storage format for timestamps. Fixed-width
// fractional seconds keep lexicographic order chronological, which the
// expiry queries rely on for their < comparisons.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/mcla.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements retention.Storage using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite storage backend. It creates the
// database directory and schema as needed.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "retention.store.sqlite")

	if dir := filepath.Dir(config.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, retention.NewStorageError("sqlite", "create_dir", err)
		}
	}

	db, err := sql.Open(sqliteDriver, sqliteDSN(config))
	if err != nil {
		return nil, retention.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store initialized",
		"path", config.Path,
		"driver", sqliteDriver,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize creates the schema and verifies its version.
func (s *SQLiteStore) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return retention.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return retention.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return retention.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return retention.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// CreateAccount persists a new account.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *retention.Account) error {
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = account.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, username, email, is_active, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		account.ID.String(), account.Username, account.Email, account.IsActive,
		formatTime(account.CreatedAt), formatTime(account.UpdatedAt), formatNullableTime(account.DeletedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "accounts.username") {
			return retention.NewDuplicateUsernameError(account.Username)
		}
		return s.wrap("create_account", err)
	}

	return nil
}

const accountColumns = "id, username, email, is_active, created_at, updated_at, deleted_at"

// GetAccount returns an account regardless of its tombstone state.
func (s *SQLiteStore) GetAccount(ctx context.Context, id uuid.UUID) (*retention.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ?", id.String())

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, retention.NewAccountNotFoundError(id)
	}
	if err != nil {
		return nil, s.wrap("get_account", err)
	}

	return account, nil
}

// GetAccountByUsername returns a live account by username. Tombstoned
// accounts are invisible to this lookup.
func (s *SQLiteStore) GetAccountByUsername(ctx context.Context, username string) (*retention.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE username = ? AND deleted_at IS NULL", username)

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &retention.NotFoundError{Kind: "account", Ref: username}
	}
	if err != nil {
		return nil, s.wrap("get_account_by_username", err)
	}

	return account, nil
}

// ListAccounts returns accounts filtered by visibility, ordered by creation
// time.
func (s *SQLiteStore) ListAccounts(ctx context.Context, vis retention.Visibility) ([]*retention.Account, error) {
	query := "SELECT " + accountColumns + " FROM accounts"
	if p := visibilityPredicate(vis); p != "" {
		query += " WHERE " + p
	}
	query += " ORDER BY created_at, username"

	return s.queryAccounts(ctx, "list_accounts", query)
}

// ListDeleted returns all tombstoned accounts, oldest tombstone first.
func (s *SQLiteStore) ListDeleted(ctx context.Context) ([]*retention.Account, error) {
	return s.queryAccounts(ctx, "list_deleted",
		"SELECT "+accountColumns+" FROM accounts WHERE deleted_at IS NOT NULL ORDER BY deleted_at, username")
}

// ListExpired returns tombstoned accounts whose tombstone is strictly older
// than cutoff, oldest first.
func (s *SQLiteStore) ListExpired(ctx context.Context, cutoff time.Time) ([]*retention.Account, error) {
	return s.queryAccounts(ctx, "list_expired",
		"SELECT "+accountColumns+" FROM accounts WHERE deleted_at IS NOT NULL AND deleted_at < ? ORDER BY deleted_at, username",
		formatTime(cutoff))
}

// SaveConfig inserts or updates a hyperparameter configuration. Inserts
// assign config.ID. Updates only touch live configurations.
func (s *SQLiteStore) SaveConfig(ctx context.Context, config *retention.UsageConfig) error {
	parameters, _ := json.Marshal(config.Parameters)
	now := time.Now().UTC()

	if config.ID == 0 {
		if config.CreatedAt.IsZero() {
			config.CreatedAt = now
		}
		if config.UpdatedAt.IsZero() {
			config.UpdatedAt = config.CreatedAt
		}

		result, err := s.db.ExecContext(ctx, `
			INSERT INTO usage_configs (account_id, name, model, description, parameters, is_default, created_at, updated_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			config.AccountID.String(), config.Name, config.Model, config.Description,
			string(parameters), config.IsDefault,
			formatTime(config.CreatedAt), formatTime(config.UpdatedAt), formatNullableTime(config.DeletedAt),
		)
		if err != nil {
			return s.wrap("save_config", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return s.wrap("save_config", err)
		}
		config.ID = id
		return nil
	}

	config.UpdatedAt = now
	result, err := s.db.ExecContext(ctx, `
		UPDATE usage_configs
		SET name = ?, model = ?, description = ?, parameters = ?, is_default = ?, updated_at = ?
		WHERE id = ? AND account_id = ? AND deleted_at IS NULL`,
		config.Name, config.Model, config.Description, string(parameters), config.IsDefault,
		formatTime(config.UpdatedAt), config.ID, config.AccountID.String(),
	)
	if err != nil {
		return s.wrap("save_config", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return s.wrap("save_config", err)
	}
	if rows == 0 {
		return retention.NewConfigNotFoundError(config.ID)
	}

	return nil
}

const configColumns = "id, account_id, name, model, description, parameters, is_default, created_at, updated_at, deleted_at"

// ListConfigs returns an account's configurations filtered by visibility.
func (s *SQLiteStore) ListConfigs(ctx context.Context, accountID uuid.UUID, vis retention.Visibility) ([]*retention.UsageConfig, error) {
	query := "SELECT " + configColumns + " FROM usage_configs WHERE account_id = ?"
	if p := visibilityPredicate(vis); p != "" {
		query += " AND " + p
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, accountID.String())
	if err != nil {
		return nil, s.wrap("list_configs", err)
	}
	defer rows.Close()

	configs := make([]*retention.UsageConfig, 0)
	for rows.Next() {
		config, err := scanConfig(rows)
		if err != nil {
			return nil, s.wrap("list_configs", err)
		}
		configs = append(configs, config)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("list_configs", err)
	}

	return configs, nil
}

// AppendCall appends a call record to an account's history.
func (s *SQLiteStore) AppendCall(ctx context.Context, record *retention.CallRecord) error {
	parameters, _ := json.Marshal(record.Parameters)
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO call_records (account_id, provider, model, prompt, parameters, response, status, error_message,
			tokens_in, tokens_out, total_tokens, cost, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.AccountID.String(), record.Provider, record.Model, record.Prompt,
		string(parameters), record.Response, string(record.Status), record.ErrorMessage,
		record.TokensIn, record.TokensOut, record.TotalTokens, record.Cost,
		formatTime(record.CreatedAt), formatNullableTime(record.DeletedAt),
	)
	if err != nil {
		return s.wrap("append_call", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return s.wrap("append_call", err)
	}
	record.ID = id

	return nil
}

const callColumns = "id, account_id, provider, model, prompt, parameters, response, status, error_message, tokens_in, tokens_out, total_tokens, cost, created_at, deleted_at"

// ListCalls returns an account's call history filtered by visibility, newest
// first.
func (s *SQLiteStore) ListCalls(ctx context.Context, accountID uuid.UUID, vis retention.Visibility, limit, offset int) ([]*retention.CallRecord, error) {
	query := "SELECT " + callColumns + " FROM call_records WHERE account_id = ?"
	if p := visibilityPredicate(vis); p != "" {
		query += " AND " + p
	}
	query += " ORDER BY created_at DESC, id DESC"

	args := []any{accountID.String()}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	} else if offset > 0 {
		// A negative limit means unlimited in SQLite.
		query += " LIMIT -1 OFFSET ?"
		args = append(args, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.wrap("list_calls", err)
	}
	defer rows.Close()

	records := make([]*retention.CallRecord, 0)
	for rows.Next() {
		record, err := scanCall(rows)
		if err != nil {
			return nil, s.wrap("list_calls", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("list_calls", err)
	}

	return records, nil
}

// AccountStats aggregates the live call history of an account.
func (s *SQLiteStore) AccountStats(ctx context.Context, accountID uuid.UUID) (*retention.AccountStats, error) {
	stats := &retention.AccountStats{AccountID: accountID}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status != ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(total_tokens), 0),
			COALESCE(SUM(cost), 0)
		FROM call_records
		WHERE account_id = ? AND deleted_at IS NULL`,
		string(retention.CallSuccess), accountID.String(),
	).Scan(&stats.TotalCalls, &stats.FailedCalls, &stats.TotalTokens, &stats.TotalCost)
	if err != nil {
		return nil, s.wrap("account_stats", err)
	}

	if stats.TotalCalls > 0 {
		stats.SuccessRate = float64(stats.TotalCalls-stats.FailedCalls) / float64(stats.TotalCalls) * 100
	}

	return stats, nil
}

// CountDependents counts an account's dependent rows. A nil stamp counts
// live rows; a non-nil stamp counts rows tombstoned at exactly that
// timestamp.
func (s *SQLiteStore) CountDependents(ctx context.Context, accountID uuid.UUID, stamp *time.Time) (retention.DependentCounts, error) {
	var counts retention.DependentCounts

	predicate := "deleted_at IS NULL"
	args := []any{accountID.String()}
	if stamp != nil {
		predicate = "deleted_at = ?"
		args = append(args, formatTime(*stamp))
	}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM call_records WHERE account_id = ? AND "+predicate, args...,
	).Scan(&counts.Calls)
	if err != nil {
		return counts, s.wrap("count_dependents", err)
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM usage_configs WHERE account_id = ? AND "+predicate, args...,
	).Scan(&counts.Configs)
	if err != nil {
		return counts, s.wrap("count_dependents", err)
	}

	return counts, nil
}

// ApplyCascade atomically applies a soft-delete or restore cascade. The
// account's current tombstone is re-read inside the transaction, making the
// operation a compare-and-set: concurrent writers get a typed error instead
// of a partial cascade.
func (s *SQLiteStore) ApplyCascade(ctx context.Context, accountID uuid.UUID, op retention.CascadeOp, stamp time.Time) (retention.DependentCounts, error) {
	var counts retention.DependentCounts

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, s.wrap("apply_cascade", err)
	}
	defer tx.Rollback()

	var deletedAt sql.NullString
	err = tx.QueryRowContext(ctx,
		"SELECT deleted_at FROM accounts WHERE id = ?", accountID.String()).Scan(&deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return counts, retention.NewAccountNotFoundError(accountID)
	}
	if err != nil {
		return counts, s.wrap("apply_cascade", err)
	}

	id := accountID.String()
	stampStr := formatTime(stamp)

	switch op {
	case retention.CascadeSoftDelete:
		if deletedAt.Valid {
			existing, perr := parseTime(deletedAt.String)
			if perr != nil {
				return counts, s.wrap("apply_cascade", perr)
			}
			return counts, retention.NewAccountAlreadyDeletedError(accountID, existing)
		}

		counts.Calls, err = execCount(ctx, tx,
			"UPDATE call_records SET deleted_at = ? WHERE account_id = ? AND deleted_at IS NULL",
			stampStr, id)
		if err != nil {
			return counts, s.wrap("apply_cascade", err)
		}

		counts.Configs, err = execCount(ctx, tx,
			"UPDATE usage_configs SET deleted_at = ?, updated_at = ? WHERE account_id = ? AND deleted_at IS NULL",
			stampStr, stampStr, id)
		if err != nil {
			return counts, s.wrap("apply_cascade", err)
		}

		rows, err := execCount(ctx, tx,
			"UPDATE accounts SET deleted_at = ?, is_active = 0, updated_at = ? WHERE id = ? AND deleted_at IS NULL",
			stampStr, stampStr, id)
		if err != nil {
			return counts, s.wrap("apply_cascade", err)
		}
		if rows != 1 {
			return counts, &retention.ConflictError{Kind: "account", Ref: id}
		}

	case retention.CascadeRestore:
		if !deletedAt.Valid {
			return counts, retention.NewNotDeletedError(accountID)
		}
		existing, perr := parseTime(deletedAt.String)
		if perr != nil {
			return counts, s.wrap("apply_cascade", perr)
		}
		if !existing.Equal(stamp) {
			return counts, &retention.ConflictError{Kind: "account", Ref: id}
		}

		nowStr := formatTime(time.Now().UTC())

		counts.Calls, err = execCount(ctx, tx,
			"UPDATE call_records SET deleted_at = NULL WHERE account_id = ? AND deleted_at = ?",
			id, stampStr)
		if err != nil {
			return counts, s.wrap("apply_cascade", err)
		}

		counts.Configs, err = execCount(ctx, tx,
			"UPDATE usage_configs SET deleted_at = NULL, updated_at = ? WHERE account_id = ? AND deleted_at = ?",
			nowStr, id, stampStr)
		if err != nil {
			return counts, s.wrap("apply_cascade", err)
		}

		rows, err := execCount(ctx, tx,
			"UPDATE accounts SET deleted_at = NULL, is_active = 1, updated_at = ? WHERE id = ? AND deleted_at = ?",
			nowStr, id, stampStr)
		if err != nil {
			return counts, s.wrap("apply_cascade", err)
		}
		if rows != 1 {
			return counts, &retention.ConflictError{Kind: "account", Ref: id}
		}

	default:
		return counts, retention.NewStorageError("sqlite", "apply_cascade",
			fmt.Errorf("unknown cascade operation %q", op))
	}

	if err := tx.Commit(); err != nil {
		return retention.DependentCounts{}, s.wrap("apply_cascade", err)
	}

	return counts, nil
}

// TombstoneConfig tombstones a single configuration independently of its
// account.
func (s *SQLiteStore) TombstoneConfig(ctx context.Context, accountID uuid.UUID, configID int64, stamp time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrap("tombstone_config", err)
	}
	defer tx.Rollback()

	var deletedAt sql.NullString
	err = tx.QueryRowContext(ctx,
		"SELECT deleted_at FROM usage_configs WHERE id = ? AND account_id = ?",
		configID, accountID.String()).Scan(&deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return retention.NewConfigNotFoundError(configID)
	}
	if err != nil {
		return s.wrap("tombstone_config", err)
	}

	if deletedAt.Valid {
		existing, perr := parseTime(deletedAt.String)
		if perr != nil {
			return s.wrap("tombstone_config", perr)
		}
		return retention.NewConfigAlreadyDeletedError(configID, existing)
	}

	stampStr := formatTime(stamp)
	rows, err := execCount(ctx, tx,
		"UPDATE usage_configs SET deleted_at = ?, updated_at = ? WHERE id = ? AND account_id = ? AND deleted_at IS NULL",
		stampStr, stampStr, configID, accountID.String())
	if err != nil {
		return s.wrap("tombstone_config", err)
	}
	if rows != 1 {
		return &retention.ConflictError{Kind: "configuration", Ref: fmt.Sprintf("%d", configID)}
	}

	if err := tx.Commit(); err != nil {
		return s.wrap("tombstone_config", err)
	}

	return nil
}

// Purge permanently removes an account and all rows referencing it. The
// expiry check is repeated inside the transaction; when the account no
// longer qualifies the whole removal rolls back and Purge reports false.
func (s *SQLiteStore) Purge(ctx context.Context, accountID uuid.UUID, cutoff time.Time) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, s.wrap("purge", err)
	}
	defer tx.Rollback()

	id := accountID.String()

	// Children first: the guarded parent delete below decides whether any
	// of this sticks.
	if _, err := tx.ExecContext(ctx, "DELETE FROM call_records WHERE account_id = ?", id); err != nil {
		return false, s.wrap("purge", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM usage_configs WHERE account_id = ?", id); err != nil {
		return false, s.wrap("purge", err)
	}

	rows, err := execCount(ctx, tx,
		"DELETE FROM accounts WHERE id = ? AND deleted_at IS NOT NULL AND deleted_at < ?",
		id, formatTime(cutoff))
	if err != nil {
		return false, s.wrap("purge", err)
	}
	if rows == 0 {
		// Restored, re-deleted later, or already purged. Roll back the
		// child deletes and leave everything as found.
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, s.wrap("purge", err)
	}

	return true, nil
}

// Close checkpoints the WAL and closes the database.
func (s *SQLiteStore) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// queryAccounts runs an account query and scans all rows.
func (s *SQLiteStore) queryAccounts(ctx context.Context, op, query string, args ...any) ([]*retention.Account, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.wrap(op, err)
	}
	defer rows.Close()

	accounts := make([]*retention.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, s.wrap(op, err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(op, err)
	}

	return accounts, nil
}

// visibilityPredicate returns the SQL form of the tombstone filter, or an
// empty string for VisibilityAll.
func visibilityPredicate(vis retention.Visibility) string {
	switch vis {
	case retention.VisibilityDeleted:
		return "deleted_at IS NOT NULL"
	case retention.VisibilityAll:
		return ""
	default:
		return "deleted_at IS NULL"
	}
}

// wrap converts a database error into a StorageError, marking lock
// contention as transient so the engine retries it.
func (s *SQLiteStore) wrap(op string, err error) error {
	if isBusy(err) {
		return retention.NewTransientStorageError("sqlite", op, err)
	}
	return retention.NewStorageError("sqlite", op, err)
}

// isBusy detects lock contention without depending on either driver's error
// types, which cannot both be imported in one build.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}

// execCount executes a statement and returns the number of affected rows.
func execCount(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAccount scans one account row.
func scanAccount(sc rowScanner) (*retention.Account, error) {
	var (
		account              retention.Account
		id                   string
		createdAt, updatedAt string
		deletedAt            sql.NullString
	)

	err := sc.Scan(&id, &account.Username, &account.Email, &account.IsActive,
		&createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	account.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid account id %q: %w", id, err)
	}
	if account.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if account.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if account.DeletedAt, err = parseNullableTime(deletedAt); err != nil {
		return nil, err
	}

	return &account, nil
}

// scanConfig scans one configuration row.
func scanConfig(sc rowScanner) (*retention.UsageConfig, error) {
	var (
		config               retention.UsageConfig
		accountID            string
		parameters           sql.NullString
		description          sql.NullString
		createdAt, updatedAt string
		deletedAt            sql.NullString
	)

	err := sc.Scan(&config.ID, &accountID, &config.Name, &config.Model, &description,
		&parameters, &config.IsDefault, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	config.AccountID, err = uuid.Parse(accountID)
	if err != nil {
		return nil, fmt.Errorf("invalid account id %q: %w", accountID, err)
	}
	config.Description = description.String
	if parameters.Valid && parameters.String != "" {
		if err := json.Unmarshal([]byte(parameters.String), &config.Parameters); err != nil {
			return nil, fmt.Errorf("invalid parameters for config %d: %w", config.ID, err)
		}
	}
	if config.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if config.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if config.DeletedAt, err = parseNullableTime(deletedAt); err != nil {
		return nil, err
	}

	return &config, nil
}

// scanCall scans one call-record row.
func scanCall(sc rowScanner) (*retention.CallRecord, error) {
	var (
		record       retention.CallRecord
		accountID    string
		parameters   sql.NullString
		prompt       sql.NullString
		response     sql.NullString
		errorMessage sql.NullString
		status       string
		createdAt    string
		deletedAt    sql.NullString
	)

	err := sc.Scan(&record.ID, &accountID, &record.Provider, &record.Model, &prompt,
		&parameters, &response, &status, &errorMessage,
		&record.TokensIn, &record.TokensOut, &record.TotalTokens, &record.Cost,
		&createdAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	record.AccountID, err = uuid.Parse(accountID)
	if err != nil {
		return nil, fmt.Errorf("invalid account id %q: %w", accountID, err)
	}
	record.Prompt = prompt.String
	record.Response = response.String
	record.ErrorMessage = errorMessage.String
	record.Status = retention.CallStatus(status)
	if parameters.Valid && parameters.String != "" {
		if err := json.Unmarshal([]byte(parameters.String), &record.Parameters); err != nil {
			return nil, fmt.Errorf("invalid parameters for call %d: %w", record.ID, err)
		}
	}
	if record.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if record.DeletedAt, err = parseNullableTime(deletedAt); err != nil {
		return nil, err
	}

	return &record, nil
}

// formatTime renders a timestamp in the fixed-width storage format.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// formatNullableTime renders an optional timestamp, mapping nil to SQL NULL.
func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// parseTime parses a stored timestamp.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}

// parseNullableTime parses an optional stored timestamp.
func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
