package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/cli"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/config"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/history"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention/store"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/server"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/telemetry/health"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/telemetry/logging"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/telemetry/metrics"
	"github.com/spf13/cobra"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the MCLA admin server",
	Long: `Start the MCLA admin server with the specified configuration.

The server exposes the account lifecycle API (accounts, configurations,
call history, deletion and restore) together with health checks and
Prometheus metrics, and runs the scheduled retention sweep in the
background.

Examples:
  # Start with built-in defaults
  mcla run

  # Start with custom config
  mcla run --config /etc/mcla/config.yaml

  # Override listen address
  mcla run --listen 0.0.0.0:8080

  # Validate config without starting server
  mcla run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	// Initialize logging before any component captures the default logger.
	logger, err := logging.New(logging.FromTelemetry(cfg.Telemetry.Logging))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	// Print startup banner
	printBanner(cfg)

	// Storage backend
	storage, err := openStore(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer storage.Close()
	fmt.Printf("✓ Storage initialized (%s)\n", cfg.Database.Backend)

	// Retention engine and sweeper
	engine := retention.NewEngine(storage, retentionConfig(cfg))
	sweeper := retention.NewSweeper(storage, engine)

	// Metrics
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	collector.SetRecoveryWindow(cfg.Retention.RecoveryWindow)

	// Call history
	historyService := history.NewService(storage)
	var recorder *history.Recorder
	if cfg.History.Enabled {
		recorder = history.NewRecorder(storage, &history.Config{
			Enabled:      true,
			AsyncBuffer:  cfg.History.AsyncBuffer,
			WriteTimeout: cfg.History.WriteTimeout,
		})
		recorder.Observer = collector
		defer recorder.Close()
		fmt.Println("✓ Call history recorder started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Scheduled sweeps. An empty schedule leaves the scheduler idle so that
	// a hot reload can arm it later.
	scheduler := retention.NewScheduler(sweeper)
	scheduler.OnResult = func(result *retention.SweepResult, duration time.Duration, err error) {
		observeSweep(ctx, collector, engine, result, duration, err)
	}
	if err := scheduler.Start(ctx); err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to start sweep scheduler: %w", err))
	}
	defer scheduler.Stop()
	if next := scheduler.NextSweep(); next != nil {
		fmt.Printf("✓ Sweep scheduler started (next sweep %s)\n", next.Format(time.RFC3339))
	}

	// Health checks
	checker := health.New(0)
	checker.RegisterCheck("storage", health.StorageCheck(storage))
	if cfg.Retention.SweepSchedule != "" {
		checker.RegisterCheck("scheduler", health.SchedulerCheck(scheduler))
	}
	if recorder != nil {
		checker.RegisterCheck("history", health.RecorderCheck(recorder))
	}

	// Configuration hot reload
	if cfg.Retention.Watch && cfgFile != "" {
		watcherConfig := config.DefaultFileWatcherConfig()
		watcherConfig.Path = cfgFile
		watcher, err := config.NewFileWatcher(watcherConfig, logger)
		if err != nil {
			slog.Warn("config watcher unavailable", "error", err)
		} else {
			defer watcher.Stop()
			go func() {
				if err := watcher.Watch(ctx, func() error {
					return reloadRuntime(cfgFile, engine, scheduler, collector)
				}); err != nil {
					slog.Warn("config watcher stopped", "error", err)
				}
			}()
			fmt.Println("✓ Watching configuration for changes")
		}
	}

	// Create HTTP server
	slog.Info("creating admin server")
	srv := server.NewServer(cfg, server.Components{
		Storage:   storage,
		Engine:    engine,
		Sweeper:   sweeper,
		Scheduler: scheduler,
		History:   historyService,
		Collector: collector,
		Checker:   checker,
		Build: server.BuildInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildTime: BuildDate,
		},
	})

	// Start server in background goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	if err := waitForServerReady(srv, errChan, 5*time.Second); err != nil {
		return cli.NewCommandError("run", fmt.Errorf("server failed to start: %w", err))
	}

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for shutdown signal or server error. The server also watches for
	// signals itself, so either path ends in the same graceful shutdown.
	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		fmt.Println("✓ Server stopped")
		return nil
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		srv.Stop()
		if err := <-errChan; err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}
		fmt.Println("✓ Server stopped")
		return nil
	}
}

// openStore creates the storage backend named by the configuration.
func openStore(cfg *config.Config) (retention.Storage, error) {
	switch cfg.Database.Backend {
	case "sqlite":
		return store.NewSQLiteStore(&store.SQLiteConfig{
			Path:         cfg.Database.SQLite.Path,
			MaxOpenConns: cfg.Database.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Database.SQLite.MaxIdleConns,
			WALMode:      cfg.Database.SQLite.WALMode,
			BusyTimeout:  cfg.Database.SQLite.BusyTimeout,
		})
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database backend: %s (supported: sqlite, memory)", cfg.Database.Backend)
	}
}

// retentionConfig maps the file configuration onto the engine's runtime
// configuration.
func retentionConfig(cfg *config.Config) *retention.Config {
	return &retention.Config{
		RecoveryWindow:     cfg.Retention.RecoveryWindow,
		SweepSchedule:      cfg.Retention.SweepSchedule,
		ArchiveBeforeSweep: cfg.Retention.ArchiveBeforeSweep,
		ArchivePath:        cfg.Retention.ArchivePath,
		MaxRetries:         cfg.Retention.MaxRetries,
		RetryBackoff:       cfg.Retention.RetryBackoff,
	}
}

// observeSweep publishes a scheduled sweep's outcome to the metrics
// collector and refreshes the pending-deletions gauge.
func observeSweep(ctx context.Context, collector *metrics.Collector, engine *retention.Engine, result *retention.SweepResult, duration time.Duration, err error) {
	var partial *retention.PartialSweepError
	switch {
	case err == nil:
		collector.RecordSweep(metrics.SweepClean, duration, result.PurgedCount, 0)
	case errors.As(err, &partial):
		collector.RecordSweep(metrics.SweepPartial, duration, result.PurgedCount, len(result.Failures))
	default:
		collector.RecordSweep(metrics.SweepFailed, duration, 0, 0)
		return
	}

	pending, err := engine.ListPendingDeletion(ctx)
	if err != nil {
		slog.Warn("failed to refresh pending-deletions gauge", "error", err)
		return
	}
	collector.SetPendingDeletions(len(pending))
}

// reloadRuntime reapplies a changed configuration file to the running
// components. Server settings such as the listen address and timeouts
// need a restart.
func reloadRuntime(path string, engine *retention.Engine, scheduler *retention.Scheduler, collector *metrics.Collector) error {
	if err := config.ReloadConfig(path); err != nil {
		return err
	}
	cfg := config.GetConfig()

	engine.Configure(retentionConfig(cfg))
	collector.SetRecoveryWindow(cfg.Retention.RecoveryWindow)

	if err := scheduler.Reschedule(cfg.Retention.SweepSchedule); err != nil {
		return fmt.Errorf("failed to reschedule sweeps: %w", err)
	}

	slog.Info("configuration reloaded",
		"recovery_window", cfg.Retention.RecoveryWindow,
		"sweep_schedule", cfg.Retention.SweepSchedule,
	)
	return nil
}

func printBanner(cfg *config.Config) {
	fmt.Printf("MCLA v%s\n", Version)
	if cfgFile != "" {
		fmt.Printf("Loading configuration from: %s\n", cfgFile)
	} else {
		fmt.Println("Using built-in configuration defaults")
	}
	fmt.Println("✓ Configuration loaded")

	slog.Debug("retention configured",
		"recovery_window", cfg.Retention.RecoveryWindow,
		"sweep_schedule", cfg.Retention.SweepSchedule,
		"archive_before_sweep", cfg.Retention.ArchiveBeforeSweep,
	)
	if cfg.History.Enabled {
		slog.Debug("call history enabled", "async_buffer", cfg.History.AsyncBuffer)
	}
}

// waitForServerReady waits for the listener to come up, surfacing startup
// failures that would otherwise race the readiness banner.
func waitForServerReady(srv *server.Server, errChan <-chan error, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		select {
		case err := <-errChan:
			if err == nil {
				err = errors.New("server exited during startup")
			}
			return err
		case <-time.After(25 * time.Millisecond):
		}
		if srv.IsRunning() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("server not ready after %s", timeout)
		}
	}
}
