package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for testing.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	cfg := Config{}
	ApplyDefaults(&cfg)

	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithListenAddress sets the server listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

// WithReadTimeout sets the server read timeout.
func (b *ConfigBuilder) WithReadTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Server.ReadTimeout = d
	return b
}

// WithBackend sets the database backend.
func (b *ConfigBuilder) WithBackend(backend string) *ConfigBuilder {
	b.cfg.Database.Backend = backend
	return b
}

// WithSQLitePath sets the SQLite database path.
func (b *ConfigBuilder) WithSQLitePath(path string) *ConfigBuilder {
	b.cfg.Database.SQLite.Path = path
	b.cfg.Database.Backend = "sqlite"
	return b
}

// WithRecoveryWindow sets the retention recovery window.
func (b *ConfigBuilder) WithRecoveryWindow(d time.Duration) *ConfigBuilder {
	b.cfg.Retention.RecoveryWindow = d
	return b
}

// WithSweepSchedule sets the sweep cron schedule.
func (b *ConfigBuilder) WithSweepSchedule(schedule string) *ConfigBuilder {
	b.cfg.Retention.SweepSchedule = schedule
	return b
}

// WithArchive enables pre-sweep archiving into the given directory.
func (b *ConfigBuilder) WithArchive(path string) *ConfigBuilder {
	b.cfg.Retention.ArchiveBeforeSweep = true
	b.cfg.Retention.ArchivePath = path
	return b
}

// WithHistoryEnabled sets whether call history recording is enabled.
func (b *ConfigBuilder) WithHistoryEnabled(enabled bool) *ConfigBuilder {
	b.cfg.History.Enabled = enabled
	return b
}

// WithLoggingLevel sets the logging level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithLoggingFormat sets the logging format.
func (b *ConfigBuilder) WithLoggingFormat(format string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Format = format
	return b
}

// WithMetricsEnabled sets whether metrics are enabled.
func (b *ConfigBuilder) WithMetricsEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Telemetry.Metrics.Enabled = enabled
	return b
}

// MinimalConfig returns a minimal valid configuration for testing.
// This is useful for tests that don't care about most configuration values.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}
