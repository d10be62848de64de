package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Database defaults
	DefaultDatabaseBackend    = "sqlite"
	DefaultSQLitePath         = "data/mcla.db"
	DefaultSQLiteMaxOpenConns = 10
	DefaultSQLiteMaxIdleConns = 5
	DefaultSQLiteWALMode      = true
	DefaultSQLiteBusyTimeout  = 5 * time.Second

	// Retention defaults
	DefaultRecoveryWindow     = 168 * time.Hour // 7 days
	DefaultSweepSchedule      = "0 3 * * *"
	DefaultArchiveBeforeSweep = false
	DefaultArchivePath        = "data/archives/"
	DefaultMaxRetries         = 3
	DefaultRetryBackoff       = 100 * time.Millisecond
	DefaultRetentionWatch     = false

	// History defaults
	DefaultHistoryEnabled      = true
	DefaultHistoryAsyncBuffer  = 1000
	DefaultHistoryWriteTimeout = 5 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultLoggingRedactPII = true
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// Database defaults
	if cfg.Database.Backend == "" {
		cfg.Database.Backend = DefaultDatabaseBackend
	}
	if cfg.Database.SQLite.Path == "" {
		cfg.Database.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Database.SQLite.MaxOpenConns == 0 {
		cfg.Database.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.Database.SQLite.MaxIdleConns == 0 {
		cfg.Database.SQLite.MaxIdleConns = DefaultSQLiteMaxIdleConns
	}
	if !cfg.Database.SQLite.WALMode {
		cfg.Database.SQLite.WALMode = DefaultSQLiteWALMode
	}
	if cfg.Database.SQLite.BusyTimeout == 0 {
		cfg.Database.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	// Retention defaults
	if cfg.Retention.RecoveryWindow == 0 {
		cfg.Retention.RecoveryWindow = DefaultRecoveryWindow
	}
	if cfg.Retention.SweepSchedule == "" {
		cfg.Retention.SweepSchedule = DefaultSweepSchedule
	}
	if cfg.Retention.ArchivePath == "" {
		cfg.Retention.ArchivePath = DefaultArchivePath
	}
	if cfg.Retention.MaxRetries == 0 {
		cfg.Retention.MaxRetries = DefaultMaxRetries
	}
	if cfg.Retention.RetryBackoff == 0 {
		cfg.Retention.RetryBackoff = DefaultRetryBackoff
	}
	// ArchiveBeforeSweep and Watch default to false (zero value)

	// History defaults
	applyHistoryDefaults(cfg)
	if cfg.History.AsyncBuffer == 0 {
		cfg.History.AsyncBuffer = DefaultHistoryAsyncBuffer
	}
	if cfg.History.WriteTimeout == 0 {
		cfg.History.WriteTimeout = DefaultHistoryWriteTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	// RedactPII defaults to true; the MCLA_TELEMETRY_LOGGING_REDACT_PII
	// environment variable is the off switch.
	if !cfg.Telemetry.Logging.RedactPII {
		cfg.Telemetry.Logging.RedactPII = DefaultLoggingRedactPII
	}
	applyMetricsDefaults(cfg)
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}

// applyHistoryDefaults applies the enabled default to the history section.
func applyHistoryDefaults(cfg *Config) {
	history := &cfg.History

	// Enabled defaults to true when the section is untouched. If any
	// sibling field is set, the user configured the section deliberately
	// and an unset enabled flag means false.
	if !history.Enabled {
		hasAnyConfig := history.AsyncBuffer > 0 || history.WriteTimeout > 0
		if !hasAnyConfig {
			history.Enabled = DefaultHistoryEnabled
		}
	}
}

// applyMetricsDefaults applies the enabled default to the metrics section.
func applyMetricsDefaults(cfg *Config) {
	metrics := &cfg.Telemetry.Metrics

	if !metrics.Enabled {
		hasAnyConfig := metrics.Path != ""
		if !hasAnyConfig {
			metrics.Enabled = DefaultMetricsEnabled
		}
	}
}
