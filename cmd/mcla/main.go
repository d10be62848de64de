// mcla is the account lifecycle and data-retention service for the
// multi-cloud LLM abstraction backend.
//
// It manages proxy accounts, their hyperparameter configurations, and their
// LLM call history, providing:
//   - Soft deletion with a recovery window instead of immediate destruction
//   - Cascading tombstones across an account's configurations and call history
//   - Restore of tombstoned accounts within the recovery window
//   - Scheduled sweeps that permanently purge expired accounts
//   - An admin HTTP API with health checks and Prometheus metrics
//
// Usage:
//
//	# Start server with default configuration
//	mcla run
//
//	# Start with custom configuration file
//	mcla run --config /path/to/config.yaml
//
//	# Inspect what deleting an account would take with it
//	mcla retention preview <account>
//
//	# Soft-delete and later restore an account
//	mcla retention delete <account>
//	mcla retention restore <account-id>
//
//	# List tombstoned accounts and purge the expired ones
//	mcla retention pending
//	mcla retention sweep
//
//	# Validate a configuration file
//	mcla validate --config /path/to/config.yaml
//
//	# Show version information
//	mcla version
//
// For complete documentation, see: https://github.com/bharathkommuri5/multi-cloud-llm-abstraction
package main

func main() {
	Execute()
}
