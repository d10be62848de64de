// Package retention implements the account data-retention lifecycle for the
// abstraction backend. Accounts and their dependent rows (hyperparameter
// configurations and LLM call history) are never removed immediately: deletion
// tombstones them, a recovery window keeps them restorable, and a background
// sweeper permanently removes whatever outlives the window.
//
// # Lifecycle
//
// Every account is in exactly one of three states, derived from its tombstone
// and the configured recovery window:
//
//	Active      - no tombstone; visible to normal reads
//	Recoverable - tombstoned less than one recovery window ago; restorable
//	Expired     - tombstoned at least one recovery window ago; awaiting sweep
//
// State is never stored. It is resolved on demand from the deletion timestamp,
// so a change to the recovery window immediately reclassifies existing
// tombstones.
//
// # Cascade
//
// Soft deletion stamps the account and all of its live dependents with a
// single shared timestamp inside one transaction. Restore reverses exactly
// that cascade: it clears tombstones only on rows whose deletion timestamp
// equals the account's, so dependents that were tombstoned independently
// before the account deletion stay deleted after a restore.
//
// # Basic Usage
//
//	store, err := store.NewSQLiteStore(&store.SQLiteConfig{Path: "data/mcla.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	engine := retention.NewEngine(store, retention.DefaultConfig())
//
//	// Preview what a deletion would take with it
//	preview, err := engine.Preview(ctx, accountID)
//
//	// Tombstone the account and cascade to its dependents
//	result, err := engine.SoftDelete(ctx, accountID)
//
//	// Undo within the recovery window
//	restored, err := engine.Restore(ctx, accountID)
//
// # Sweeping
//
// The sweeper permanently deletes accounts whose recovery window has passed:
//
//	sweeper := retention.NewSweeper(store, engine)
//	result, err := sweeper.Sweep(ctx)
//
// A scheduler runs the sweeper on a cron schedule (default: daily at 3 AM):
//
//	scheduler := retention.NewScheduler(sweeper)
//	if err := scheduler.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer scheduler.Stop()
//
// Sweeping is idempotent and re-entrant. Each account is purged in its own
// transaction with a repeated expiry check, so a concurrent restore always
// either fully wins or fully loses.
//
// # Thread Safety
//
// Engine, Sweeper, and Scheduler are safe for concurrent use. Same-account
// mutations are serialized by the storage layer's compare-and-set discipline;
// conflicting writers receive a typed error instead of partial effects.
package retention
