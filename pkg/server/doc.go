// Package server provides the admin HTTP server for the account retention
// API.
//
// This package ties together the handlers, middleware, and routing and
// provides server lifecycle management including start, shutdown, and health
// checks.
//
// # Architecture
//
// The server package is the top-level orchestrator that:
//   - Sets up HTTP routes and handlers
//   - Chains middleware for cross-cutting concerns
//   - Configures TLS termination
//   - Manages graceful shutdown
//   - Handles OS signals (SIGTERM, SIGINT)
//
// # Basic Usage
//
// Creating and starting a server:
//
//	import (
//	    "context"
//
//	    "github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/config"
//	    "github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/history"
//	    "github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
//	    "github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention/store"
//	    "github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/server"
//	    "github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/telemetry/health"
//	    "github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/telemetry/metrics"
//	)
//
//	cfg := config.GetConfig()
//
//	storage := store.NewMemoryStore()
//	defer storage.Close()
//
//	engine := retention.NewEngine(storage, retention.DefaultConfig())
//	sweeper := retention.NewSweeper(storage, engine)
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	checker := health.New(0)
//	checker.RegisterCheck("storage", health.StorageCheck(storage))
//
//	srv := server.NewServer(cfg, server.Components{
//	    Storage:   storage,
//	    Engine:    engine,
//	    Sweeper:   sweeper,
//	    History:   history.NewService(storage),
//	    Collector: collector,
//	    Checker:   checker,
//	})
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The server shuts down gracefully when receiving SIGTERM or SIGINT, when
// its context is cancelled, or when Stop is called:
//
//	srv.Stop() // Start unblocks once in-flight requests drain
//
// The shutdown process:
//  1. Stops accepting new connections
//  2. Waits for active connections to complete (up to shutdown timeout)
//  3. Forces connection closure if timeout exceeded
//
// # Routes
//
// The server exposes the following HTTP endpoints:
//
//   - GET    /admin/accounts - List accounts (?include_deleted=true)
//   - POST   /admin/accounts - Create an account
//   - GET    /admin/accounts/deleted - List tombstoned accounts with deadlines
//   - GET    /admin/accounts/{id} - Account detail, tombstoned included
//   - DELETE /admin/accounts/{id} - Soft-delete cascade
//   - GET    /admin/accounts/{id}/deletion-preview - What a deletion takes
//   - POST   /admin/accounts/{id}/restore - Restore inside the recovery window
//   - GET    /admin/accounts/{id}/configs - Live configurations
//   - POST   /admin/accounts/{id}/configs - Save a configuration
//   - DELETE /admin/accounts/{id}/configs/{configID} - Independent tombstone
//   - GET    /admin/accounts/{id}/history - Call history, newest first
//   - GET    /admin/accounts/{id}/stats - Usage aggregates
//   - POST   /admin/maintenance/sweep - Trigger a sweep pass now
//   - GET    /health - Liveness probe (always returns 200)
//   - GET    /ready - Readiness probe (storage and scheduler checks)
//   - GET    /version - Build information
//   - GET    /metrics - Prometheus metrics (path configurable)
//
// # Middleware Chain
//
// Requests pass through the following middleware (outermost to innermost):
//  1. Recovery: Recovers from panics and returns 500 error
//  2. RequestID: Attaches a request ID to context, logs, and the response
//  3. Logging: Logs request/response details
//  4. Metrics: Records request counts, durations, and in-flight gauge
//
// # TLS Support
//
// The server supports TLS 1.3 with configurable certificates:
//
//	server:
//	  tls:
//	    enabled: true
//	    cert_file: "/path/to/cert.pem"
//	    key_file: "/path/to/key.pem"
//
// # Thread Safety
//
// All server operations are thread-safe and can be called concurrently from
// multiple goroutines.
package server
