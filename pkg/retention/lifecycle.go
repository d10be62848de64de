package retention

import "time"

// State is the retention lifecycle state of an account. It is derived from
// the tombstone timestamp and the configured recovery window, never stored.
type State string

const (
	// StateActive means the account has no tombstone.
	StateActive State = "active"

	// StateRecoverable means the account is tombstoned and still inside
	// its recovery window.
	StateRecoverable State = "recoverable"

	// StateExpired means the recovery deadline has passed. The account is
	// no longer restorable and will be removed by the next sweep.
	StateExpired State = "expired"
)

// RecoveryDeadline returns the instant until which a tombstoned account can
// be restored.
func RecoveryDeadline(deletedAt time.Time, window time.Duration) time.Time {
	return deletedAt.Add(window)
}

// ResolveState derives the lifecycle state of a record from its tombstone.
// The deadline itself still counts as recoverable; the state flips to expired
// strictly after it, matching the sweeper's strict cutoff so that an account
// is never simultaneously restorable and purgeable.
func ResolveState(deletedAt *time.Time, now time.Time, window time.Duration) State {
	if deletedAt == nil {
		return StateActive
	}
	if now.After(RecoveryDeadline(*deletedAt, window)) {
		return StateExpired
	}
	return StateRecoverable
}

// Visibility selects which rows a read returns with respect to tombstones.
// All read paths share this one filter so that logical deletion is decided in
// exactly one place.
type Visibility string

const (
	// VisibilityLive returns only rows without a tombstone. This is the
	// default for every collaborator-facing read.
	VisibilityLive Visibility = "live"

	// VisibilityDeleted returns only tombstoned rows.
	VisibilityDeleted Visibility = "deleted"

	// VisibilityAll returns rows regardless of tombstone state.
	VisibilityAll Visibility = "all"
)

// Includes reports whether a row with the given tombstone passes the filter.
// Unknown visibility values behave like VisibilityLive.
func (v Visibility) Includes(deletedAt *time.Time) bool {
	switch v {
	case VisibilityDeleted:
		return deletedAt != nil
	case VisibilityAll:
		return true
	default:
		return deletedAt == nil
	}
}
