package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/config"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention/store"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/server"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/telemetry/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestRetentionConfigMapping(t *testing.T) {
	cfg := testConfig()
	cfg.Retention.RecoveryWindow = 48 * time.Hour
	cfg.Retention.SweepSchedule = "30 2 * * *"
	cfg.Retention.ArchiveBeforeSweep = true
	cfg.Retention.ArchivePath = "archive/expired"
	cfg.Retention.MaxRetries = 7
	cfg.Retention.RetryBackoff = 250 * time.Millisecond

	rc := retentionConfig(cfg)

	if rc.RecoveryWindow != 48*time.Hour {
		t.Errorf("RecoveryWindow = %v, want %v", rc.RecoveryWindow, 48*time.Hour)
	}
	if rc.SweepSchedule != "30 2 * * *" {
		t.Errorf("SweepSchedule = %q, want %q", rc.SweepSchedule, "30 2 * * *")
	}
	if !rc.ArchiveBeforeSweep {
		t.Error("ArchiveBeforeSweep not carried over")
	}
	if rc.ArchivePath != "archive/expired" {
		t.Errorf("ArchivePath = %q, want %q", rc.ArchivePath, "archive/expired")
	}
	if rc.MaxRetries != 7 {
		t.Errorf("MaxRetries = %d, want 7", rc.MaxRetries)
	}
	if rc.RetryBackoff != 250*time.Millisecond {
		t.Errorf("RetryBackoff = %v, want %v", rc.RetryBackoff, 250*time.Millisecond)
	}
}

func TestOpenStoreMemory(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Backend = "memory"

	storage, err := openStore(cfg)
	if err != nil {
		t.Fatalf("openStore() failed: %v", err)
	}
	defer storage.Close()

	if _, ok := storage.(*store.MemoryStore); !ok {
		t.Errorf("openStore() = %T, want *store.MemoryStore", storage)
	}
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Backend = "postgres"

	_, err := openStore(cfg)
	if err == nil {
		t.Fatal("Expected error for unsupported backend")
	}
	if !strings.Contains(err.Error(), "postgres") {
		t.Errorf("Error %q should name the rejected backend", err)
	}
}

func TestObserveSweepRefreshesPendingGauge(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	engine := retention.NewEngine(s, retention.DefaultConfig())
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Path: "/metrics"}, nil)

	ctx := context.Background()
	account := &retention.Account{
		ID:       uuid.New(),
		Username: "frank",
		Email:    "frank@example.com",
		IsActive: true,
	}
	if err := s.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	if _, err := engine.SoftDelete(ctx, account.ID); err != nil {
		t.Fatalf("SoftDelete() failed: %v", err)
	}

	observeSweep(ctx, collector, engine, &retention.SweepResult{}, time.Millisecond, nil)

	expected := `# HELP mcla_retention_pending_deletions Tombstoned accounts currently awaiting the sweeper
# TYPE mcla_retention_pending_deletions gauge
mcla_retention_pending_deletions 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "mcla_retention_pending_deletions"); err != nil {
		t.Errorf("Unexpected pending gauge state: %v", err)
	}
}

func TestObserveSweepFailedRunWithoutResult(t *testing.T) {
	// A sweep that aborts before listing anything reports a nil result.
	s := store.NewMemoryStore()
	defer s.Close()
	engine := retention.NewEngine(s, retention.DefaultConfig())
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Path: "/metrics"}, nil)

	observeSweep(context.Background(), collector, engine, nil, time.Millisecond, errors.New("listing failed"))

	expected := `# HELP mcla_retention_sweeps_total Total number of sweep runs by result
# TYPE mcla_retention_sweeps_total counter
mcla_retention_sweeps_total{result="failed"} 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "mcla_retention_sweeps_total"); err != nil {
		t.Errorf("Unexpected sweep counter state: %v", err)
	}
}

func TestWaitForServerReadySurfacesStartupError(t *testing.T) {
	srv := server.NewServer(testConfig(), server.Components{})

	errChan := make(chan error, 1)
	errChan <- errors.New("bind failed")

	err := waitForServerReady(srv, errChan, time.Second)
	if err == nil || !strings.Contains(err.Error(), "bind failed") {
		t.Errorf("waitForServerReady() error = %v, want the startup failure", err)
	}
}

func TestWaitForServerReadyTimesOut(t *testing.T) {
	srv := server.NewServer(testConfig(), server.Components{})

	err := waitForServerReady(srv, make(chan error, 1), 60*time.Millisecond)
	if err == nil {
		t.Error("Expected timeout error for a server that never starts")
	}
}
