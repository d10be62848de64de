package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/config"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/history"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/server/handlers"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/server/middleware"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/telemetry/health"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/telemetry/metrics"
)

// BuildInfo identifies the running binary on the version endpoint.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Components carries the wired subsystems the server exposes over HTTP.
// Storage, Engine, Sweeper, History, Collector, and Checker must be non-nil;
// Scheduler may be nil when no sweep schedule is configured.
type Components struct {
	Storage   retention.Storage
	Engine    *retention.Engine
	Sweeper   *retention.Sweeper
	Scheduler *retention.Scheduler
	History   *history.Service
	Collector *metrics.Collector
	Checker   *health.Checker
	Build     BuildInfo
}

// Server is the admin HTTP server for the account retention API.
type Server struct {
	config       *config.Config
	components   Components
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new admin server.
func NewServer(cfg *config.Config, components Components) *Server {
	return &Server{
		config:       cfg,
		components:   components,
		shutdownChan: make(chan struct{}),
		isRunning:    false,
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	if s.config.Server.TLS.Enabled {
		tlsConfig, err := s.configureTLS()
		if err != nil {
			s.setRunning(false)
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
		s.httpServer.TLSConfig = tlsConfig
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting admin server",
			"address", s.config.Server.ListenAddress,
			"tls_enabled", s.config.Server.TLS.Enabled,
		)

		var err error
		if s.config.Server.TLS.Enabled {
			err = s.httpServer.ListenAndServeTLS(
				s.config.Server.TLS.CertFile,
				s.config.Server.TLS.KeyFile,
			)
		} else {
			err = s.httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.setRunning(false)
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

func (s *Server) setRunning(running bool) {
	s.mu.Lock()
	s.isRunning = running
	s.mu.Unlock()
}

// Stop requests a graceful shutdown of a running server. It returns
// immediately; Start unblocks once the shutdown completes.
func (s *Server) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)
	})
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight requests to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	slog.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during server shutdown", "error", err)
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	slog.Info("admin server stopped")
	return nil
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	accounts := handlers.NewAccountsHandler(s.components.Storage, s.components.Engine, s.components.Collector)
	configs := handlers.NewConfigsHandler(s.components.Storage, s.components.Engine, s.components.History)
	callHistory := handlers.NewHistoryHandler(s.components.History)
	maintenance := handlers.NewMaintenanceHandler(s.components.Sweeper, s.components.Scheduler, s.components.Collector)

	// Account lifecycle. The literal "deleted" segment must be registered
	// alongside the {id} wildcard; the mux prefers the literal match.
	mux.HandleFunc("GET /admin/accounts", accounts.List)
	mux.HandleFunc("POST /admin/accounts", accounts.Create)
	mux.HandleFunc("GET /admin/accounts/deleted", accounts.ListDeleted)
	mux.HandleFunc("GET /admin/accounts/{id}", accounts.Get)
	mux.HandleFunc("DELETE /admin/accounts/{id}", accounts.Delete)
	mux.HandleFunc("GET /admin/accounts/{id}/deletion-preview", accounts.Preview)
	mux.HandleFunc("POST /admin/accounts/{id}/restore", accounts.Restore)

	// Configurations and call history
	mux.HandleFunc("GET /admin/accounts/{id}/configs", configs.List)
	mux.HandleFunc("POST /admin/accounts/{id}/configs", configs.Save)
	mux.HandleFunc("DELETE /admin/accounts/{id}/configs/{configID}", configs.DeleteConfig)
	mux.HandleFunc("GET /admin/accounts/{id}/history", callHistory.History)
	mux.HandleFunc("GET /admin/accounts/{id}/stats", callHistory.Stats)

	// Operations
	mux.HandleFunc("POST /admin/maintenance/sweep", maintenance.Sweep)

	build := s.components.Build
	health.RegisterEndpoints(mux, s.components.Checker, build.Version, build.Commit, build.BuildTime)

	if s.config.Telemetry.Metrics.Enabled {
		mux.Handle("GET "+s.config.Telemetry.Metrics.Path, s.components.Collector.Handler())
	}

	// Metrics sits innermost so it reads the route pattern the mux stamped
	// on the request; RequestID swaps the request, so anything inside it
	// sees the same instance the mux mutates.
	var handler http.Handler = mux
	handler = middleware.MetricsMiddleware(s.components.Collector)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// configureTLS builds the TLS settings for the admin listener.
func (s *Server) configureTLS() (*tls.Config, error) {
	tlsCfg := s.config.Server.TLS

	if tlsCfg.CertFile == "" {
		return nil, fmt.Errorf("TLS cert file not specified")
	}
	if tlsCfg.KeyFile == "" {
		return nil, fmt.Errorf("TLS key file not specified")
	}

	if _, err := os.Stat(tlsCfg.CertFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS cert file not found: %s", tlsCfg.CertFile)
	}
	if _, err := os.Stat(tlsCfg.KeyFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS key file not found: %s", tlsCfg.KeyFile)
	}

	return &tls.Config{
		MinVersion: tls.VersionTLS13,
		CipherSuites: []uint16{
			tls.TLS_AES_128_GCM_SHA256,
			tls.TLS_AES_256_GCM_SHA384,
			tls.TLS_CHACHA20_POLY1305_SHA256,
		},
	}, nil
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Health reports whether the server is running and its readiness checks
// pass.
func (s *Server) Health(ctx context.Context) error {
	if !s.IsRunning() {
		return fmt.Errorf("server is not running")
	}

	status := s.components.Checker.CheckReadiness(ctx)
	if status.Status == "degraded" {
		for name, result := range status.Checks {
			if result.Status == "unhealthy" {
				return fmt.Errorf("component %s is unhealthy: %s", name, result.Message)
			}
		}
	}
	return nil
}
