package config

import "time"

// Config is the root configuration structure for the retention service.
// It contains all configuration sections for the admin HTTP server, the
// storage backend, the retention engine, call history recording, and
// telemetry settings.
type Config struct {
	// Server contains admin HTTP server configuration including listen
	// address, timeouts, and header limits.
	Server ServerConfig `yaml:"server"`

	// Database contains storage backend configuration including backend
	// selection and SQLite settings.
	Database DatabaseConfig `yaml:"database"`

	// Retention contains retention engine configuration including the
	// recovery window, sweep schedule, and archive settings.
	Retention RetentionConfig `yaml:"retention"`

	// History contains call history recorder configuration.
	History HistoryConfig `yaml:"history"`

	// Telemetry contains configuration for observability including logging
	// and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the admin HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. A zero or negative value means no timeout.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. If IdleTimeout is zero, ReadTimeout is used.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// If requests are still in-flight after this timeout, the server will
	// force shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values, including the
	// request line. It does not limit the size of the request body.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// TLS contains TLS configuration for the admin server.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains TLS settings for the admin HTTP server.
type TLSConfig struct {
	// Enabled controls whether the server terminates TLS itself.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the PEM-encoded server certificate.
	// Required when Enabled is true.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded private key.
	// Required when Enabled is true.
	KeyFile string `yaml:"key_file"`
}

// DatabaseConfig contains storage backend configuration.
type DatabaseConfig struct {
	// Backend specifies the storage backend for account data.
	// Options: "sqlite", "memory"
	// The memory backend keeps everything in-process and loses all data on
	// restart; it exists for tests and local experiments.
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/mcla.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains retention engine configuration.
type RetentionConfig struct {
	// RecoveryWindow is how long a soft-deleted account remains restorable.
	// After the window passes, the account can only be physically removed by
	// the sweep.
	// Default: 168h (7 days)
	RecoveryWindow time.Duration `yaml:"recovery_window"`

	// SweepSchedule is a cron expression for scheduling physical sweeps of
	// expired accounts. An empty string leaves the scheduler idle.
	// Default: "0 3 * * *" (daily at 3 AM)
	SweepSchedule string `yaml:"sweep_schedule"`

	// ArchiveBeforeSweep enables writing a JSON archive of each account
	// before it is physically removed.
	// Default: false
	ArchiveBeforeSweep bool `yaml:"archive_before_sweep"`

	// ArchivePath is the directory to store sweep archives.
	// Default: "data/archives/"
	ArchivePath string `yaml:"archive_path"`

	// MaxRetries is the maximum number of retry attempts after a transient
	// storage failure.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// RetryBackoff is the fixed delay between retry attempts.
	// Default: 100ms
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// Watch enables automatic reloading when the configuration file changes.
	// Retention settings take effect without a restart.
	// Default: false
	Watch bool `yaml:"watch"`
}

// HistoryConfig contains call history recorder configuration.
type HistoryConfig struct {
	// Enabled controls whether call history recording is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing a call record to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII enables automatic redaction of emails and API keys in logs.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether the Prometheus metrics endpoint is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
