package store

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the retention database schema.
// Foreign keys are declared without ON DELETE CASCADE: the purge path deletes
// children explicitly inside its transaction so that the guarded parent
// delete can roll the whole removal back.
const Schema = `
-- Accounts table
CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT 1,

    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    deleted_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_accounts_deleted_at ON accounts(deleted_at);

-- Hyperparameter configurations table
CREATE TABLE IF NOT EXISTS usage_configs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id TEXT NOT NULL REFERENCES accounts(id),
    name TEXT NOT NULL,
    model TEXT NOT NULL,
    description TEXT,
    parameters TEXT,
    is_default BOOLEAN NOT NULL DEFAULT 0,

    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    deleted_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_usage_configs_account ON usage_configs(account_id);
CREATE INDEX IF NOT EXISTS idx_usage_configs_deleted_at ON usage_configs(deleted_at);

-- LLM call history table
CREATE TABLE IF NOT EXISTS call_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id TEXT NOT NULL REFERENCES accounts(id),
    provider TEXT NOT NULL,
    model TEXT NOT NULL,
    prompt TEXT,
    parameters TEXT,
    response TEXT,
    status TEXT NOT NULL,
    error_message TEXT,
    tokens_in INTEGER NOT NULL DEFAULT 0,
    tokens_out INTEGER NOT NULL DEFAULT 0,
    total_tokens INTEGER NOT NULL DEFAULT 0,
    cost REAL NOT NULL DEFAULT 0,

    created_at TEXT NOT NULL,
    deleted_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_call_records_account ON call_records(account_id, created_at);
CREATE INDEX IF NOT EXISTS idx_call_records_deleted_at ON call_records(deleted_at);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_info (
    version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion is the SQL statement to record the schema version.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_info (version) VALUES (?)`

// GetSchemaVersion is the SQL statement to read the schema version.
const GetSchemaVersion = `SELECT version FROM schema_info LIMIT 1`
