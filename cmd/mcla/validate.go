package main

import (
	"errors"
	"fmt"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/cli"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate a configuration file",
	Long: `Load a configuration file exactly as the server would, including
defaults and MCLA_* environment overrides, and report every validation
error instead of stopping at the first.

Without a file argument the persistent --config flag is used; with
neither, the built-in defaults are validated.

Examples:
  # Validate the file the server would load
  mcla validate --config /etc/mcla/config.yaml

  # Validate a candidate file before deploying it
  mcla validate config/staging.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if len(args) == 1 {
		path = args[0]
	}

	if path != "" {
		fmt.Printf("Validating configuration: %s\n", path)
	} else {
		fmt.Println("Validating built-in configuration defaults")
	}
	fmt.Println()

	cfg, err := config.LoadConfigOrDefaults(path)
	if err != nil {
		var validationErr config.ValidationError
		if errors.As(err, &validationErr) {
			noun := "errors"
			if len(validationErr.Errors) == 1 {
				noun = "error"
			}
			fmt.Printf("✗ Configuration invalid (%d %s):\n", len(validationErr.Errors), noun)
			for _, fieldErr := range validationErr.Errors {
				fmt.Printf("  - %s: %s\n", fieldErr.Field, fieldErr.Message)
			}
			return cli.NewConfigError("", fmt.Sprintf("%d validation %s", len(validationErr.Errors), noun))
		}
		return cli.NewConfigError("", err.Error())
	}

	fmt.Println("✓ Configuration valid")
	fmt.Println()

	fmt.Printf("Server: %s", cfg.Server.ListenAddress)
	if cfg.Server.TLS.Enabled {
		fmt.Print(" (TLS)")
	}
	fmt.Println()

	fmt.Printf("Database: %s", cfg.Database.Backend)
	if cfg.Database.Backend == "sqlite" {
		fmt.Printf(" (%s)", cfg.Database.SQLite.Path)
	}
	fmt.Println()

	fmt.Printf("Recovery window: %s\n", cfg.Retention.RecoveryWindow)
	if cfg.Retention.SweepSchedule != "" {
		fmt.Printf("Sweep schedule: %s\n", cfg.Retention.SweepSchedule)
	} else {
		fmt.Println("Sweep schedule: none (manual sweeps only)")
	}
	if cfg.Retention.ArchiveBeforeSweep {
		fmt.Printf("Archive path: %s\n", cfg.Retention.ArchivePath)
	}

	if cfg.History.Enabled {
		fmt.Printf("Call history: enabled (buffer %d)\n", cfg.History.AsyncBuffer)
	} else {
		fmt.Println("Call history: disabled")
	}

	fmt.Printf("Logging: %s/%s\n", cfg.Telemetry.Logging.Level, cfg.Telemetry.Logging.Format)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("Metrics: %s\n", cfg.Telemetry.Metrics.Path)
	} else {
		fmt.Println("Metrics: disabled")
	}

	return nil
}
