package config

import (
	"os"
	"path/filepath"
	"testing"
)

// BenchmarkLoadConfig benchmarks loading a typical configuration file.
// Target: <10ms p99 latency
func BenchmarkLoadConfig(b *testing.B) {
	// Create a temporary config file
	tmpDir := b.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  listen_address: "127.0.0.1:8080"
  read_timeout: "30s"
  write_timeout: "30s"
  idle_timeout: "120s"

database:
  backend: "sqlite"
  sqlite:
    path: "./accounts.db"
    max_open_conns: 10
    max_idle_conns: 5
    wal_mode: true

retention:
  recovery_window: "168h"
  sweep_schedule: "0 3 * * *"
  archive_before_sweep: false
  max_retries: 3

history:
  enabled: true
  async_buffer: 1000
  write_timeout: "5s"

telemetry:
  logging:
    level: "info"
    format: "json"
  metrics:
    enabled: true
    path: "/metrics"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		b.Fatalf("failed to write config file: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := LoadConfig(configPath)
		if err != nil {
			b.Fatalf("failed to load config: %v", err)
		}
	}
}

// BenchmarkLoadConfigWithEnvOverrides benchmarks loading with environment variable overrides.
func BenchmarkLoadConfigWithEnvOverrides(b *testing.B) {
	tmpDir := b.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  listen_address: "127.0.0.1:8080"

telemetry:
  logging:
    level: "info"
    format: "json"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		b.Fatalf("failed to write config file: %v", err)
	}

	// Set some environment variables
	os.Setenv("MCLA_SERVER_LISTEN_ADDRESS", "0.0.0.0:9090")
	os.Setenv("MCLA_RETENTION_RECOVERY_WINDOW", "72h")
	defer func() {
		os.Unsetenv("MCLA_SERVER_LISTEN_ADDRESS")
		os.Unsetenv("MCLA_RETENTION_RECOVERY_WINDOW")
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := LoadConfigWithEnvOverrides(configPath)
		if err != nil {
			b.Fatalf("failed to load config: %v", err)
		}
	}
}

// BenchmarkValidate benchmarks configuration validation.
// Target: <1ms for full validation
func BenchmarkValidate(b *testing.B) {
	cfg := NewTestConfig().Build()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		err := Validate(cfg)
		if err != nil {
			b.Fatalf("validation failed: %v", err)
		}
	}
}

// BenchmarkApplyDefaults benchmarks applying default values.
func BenchmarkApplyDefaults(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cfg := Config{}
		ApplyDefaults(&cfg)
	}
}

// BenchmarkGetConfig benchmarks singleton config access.
// Target: <1µs (simple pointer return)
func BenchmarkGetConfig(b *testing.B) {
	// Set up config
	SetConfig(MinimalConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GetConfig()
	}
}
