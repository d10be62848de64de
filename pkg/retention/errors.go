package retention

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotFoundError indicates that a referenced record does not exist. For
// collaborator reads it also covers records hidden by a tombstone.
type NotFoundError struct {
	Kind string // Record kind ("account", "configuration")
	Ref  string // Identifier as given by the caller
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Ref)
}

// NewAccountNotFoundError creates a NotFoundError for an account.
func NewAccountNotFoundError(id uuid.UUID) *NotFoundError {
	return &NotFoundError{Kind: "account", Ref: id.String()}
}

// NewConfigNotFoundError creates a NotFoundError for a configuration.
func NewConfigNotFoundError(id int64) *NotFoundError {
	return &NotFoundError{Kind: "configuration", Ref: fmt.Sprintf("%d", id)}
}

// DuplicateError indicates a creation that collides with an existing record,
// live or tombstoned. A username stays taken until its account is purged.
type DuplicateError struct {
	Kind string
	Ref  string
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %q is already taken", e.Kind, e.Ref)
}

// NewDuplicateUsernameError creates a DuplicateError for a username collision.
func NewDuplicateUsernameError(username string) *DuplicateError {
	return &DuplicateError{Kind: "username", Ref: username}
}

// AlreadyDeletedError indicates a deletion attempt against a record that is
// already tombstoned. DeletedAt carries the existing tombstone.
type AlreadyDeletedError struct {
	Kind      string
	Ref       string
	DeletedAt time.Time
}

// Error implements the error interface.
func (e *AlreadyDeletedError) Error() string {
	return fmt.Sprintf("%s %q already deleted at %s", e.Kind, e.Ref, e.DeletedAt.UTC().Format(time.RFC3339))
}

// NewAccountAlreadyDeletedError creates an AlreadyDeletedError for an account.
func NewAccountAlreadyDeletedError(id uuid.UUID, deletedAt time.Time) *AlreadyDeletedError {
	return &AlreadyDeletedError{Kind: "account", Ref: id.String(), DeletedAt: deletedAt}
}

// NewConfigAlreadyDeletedError creates an AlreadyDeletedError for a configuration.
func NewConfigAlreadyDeletedError(id int64, deletedAt time.Time) *AlreadyDeletedError {
	return &AlreadyDeletedError{Kind: "configuration", Ref: fmt.Sprintf("%d", id), DeletedAt: deletedAt}
}

// NotDeletedError indicates a restore attempt against an account that has no
// tombstone.
type NotDeletedError struct {
	Ref string
}

// Error implements the error interface.
func (e *NotDeletedError) Error() string {
	return fmt.Sprintf("account %q is not deleted", e.Ref)
}

// NewNotDeletedError creates a new NotDeletedError.
func NewNotDeletedError(id uuid.UUID) *NotDeletedError {
	return &NotDeletedError{Ref: id.String()}
}

// RecoveryExpiredError indicates a restore attempt after the recovery
// deadline passed. The account's data is no longer restorable and awaits the
// next sweep.
type RecoveryExpiredError struct {
	Ref       string
	DeletedAt time.Time
	Deadline  time.Time
}

// Error implements the error interface.
func (e *RecoveryExpiredError) Error() string {
	return fmt.Sprintf("recovery window for account %q expired at %s", e.Ref, e.Deadline.UTC().Format(time.RFC3339))
}

// NewRecoveryExpiredError creates a new RecoveryExpiredError.
func NewRecoveryExpiredError(id uuid.UUID, deletedAt, deadline time.Time) *RecoveryExpiredError {
	return &RecoveryExpiredError{Ref: id.String(), DeletedAt: deletedAt, Deadline: deadline}
}

// ConflictError indicates that a concurrent writer changed a record between
// the caller's read and its conditional write. The operation had no effect
// and can be retried against fresh state.
type ConflictError struct {
	Kind string
	Ref  string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q was concurrently modified", e.Kind, e.Ref)
}

// NewConflictError creates a ConflictError for an account.
func NewConflictError(id uuid.UUID) *ConflictError {
	return &ConflictError{Kind: "account", Ref: id.String()}
}

// StorageError represents an error from the storage backend.
type StorageError struct {
	Backend   string // Storage backend type ("sqlite", "memory")
	Operation string // Operation that failed ("get_account", "apply_cascade", etc.)
	Transient bool   // True when a retry may succeed (lock contention, busy database)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// NewTransientStorageError creates a StorageError marked as retryable.
func NewTransientStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Transient: true,
		Cause:     cause,
	}
}

// PartialSweepError reports a sweep pass in which some accounts could not be
// purged. The pass itself completed; the failed accounts remain tombstoned
// and are retried by the next sweep.
type PartialSweepError struct {
	Failures []SweepFailure
}

// Error implements the error interface.
func (e *PartialSweepError) Error() string {
	return fmt.Sprintf("sweep completed with %d failed account(s)", len(e.Failures))
}

// NewPartialSweepError creates a new PartialSweepError.
func NewPartialSweepError(failures []SweepFailure) *PartialSweepError {
	return &PartialSweepError{Failures: failures}
}
