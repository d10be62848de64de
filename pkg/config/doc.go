// Package config provides configuration management for the retention service.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with comprehensive validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention MCLA_SECTION_FIELD.
// For example:
//
//   - MCLA_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - MCLA_DATABASE_SQLITE_PATH overrides database.sqlite.path
//   - MCLA_RETENTION_RECOVERY_WINDOW overrides retention.recovery_window
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Server.ListenAddress)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Hot Reload
//
// When retention.watch is enabled, a FileWatcher observes the configuration
// file and reloads it on change. Retention settings (the recovery window and
// the sweep schedule) take effect without a restart; server and database
// settings require one.
//
// # Validation
//
// All configuration is validated automatically during loading. Validation includes:
//
//   - Required field checks (e.g., listen address, database path)
//   - Range validation (e.g., connection pool sizes)
//   - Logical validation (e.g., archiving requires an archive path)
//
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - server.listen_address: listen address is required
//	  - retention.recovery_window: recovery window must be positive
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//
//	database:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/mcla.db"
//
//	retention:
//	  recovery_window: 168h
//	  sweep_schedule: "0 3 * * *"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses read-write
// locks to allow concurrent reads while protecting against concurrent writes during
// reload operations.
package config
