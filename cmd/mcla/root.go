package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "mcla",
	Short: "MCLA - account lifecycle and data-retention service",
	Long: `MCLA manages proxy accounts for the multi-cloud LLM abstraction backend,
including their hyperparameter configurations and LLM call history.

Account deletion is soft: a deleted account is tombstoned together with its
configurations and call history, stays recoverable for a configured window,
and is only purged permanently by a scheduled sweep once the window expires.

The server exposes an admin HTTP API with health checks and Prometheus
metrics; the retention subcommands operate on the same storage directly.

For more information, visit: https://github.com/bharathkommuri5/multi-cloud-llm-abstraction`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (built-in defaults when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Keep cobra's default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
