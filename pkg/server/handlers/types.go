package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
)

// ErrorResponse is the JSON error envelope returned for every error
// condition.
type ErrorResponse struct {
	// Error contains the error details.
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains detailed error information.
type ErrorDetail struct {
	// Message is a human-readable error message.
	Message string `json:"message"`

	// Type categorizes the error.
	// Possible values: "invalid_request_error", "not_found", "conflict",
	// "server_error".
	Type string `json:"type"`

	// Param is the name of the parameter that caused the error (if applicable).
	Param string `json:"param,omitempty"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`
}

// Error type constants.
const (
	// ErrorTypeInvalidRequest indicates a client-side error (400).
	ErrorTypeInvalidRequest = "invalid_request_error"

	// ErrorTypeNotFound indicates a resource was not found (404).
	ErrorTypeNotFound = "not_found"

	// ErrorTypeConflict indicates the request lost against the resource's
	// current lifecycle state (409).
	ErrorTypeConflict = "conflict"

	// ErrorTypeServerError indicates an internal server error (500).
	ErrorTypeServerError = "server_error"
)

// Error code constants for common error scenarios.
const (
	// CodeInvalidID indicates a malformed account or configuration ID.
	CodeInvalidID = "invalid_id"

	// CodeInvalidJSON indicates the request body is not valid JSON.
	CodeInvalidJSON = "invalid_json"

	// CodeMissingField indicates a required field is missing.
	CodeMissingField = "missing_field"

	// CodeInvalidValue indicates a field has an invalid value.
	CodeInvalidValue = "invalid_value"

	// CodeUsernameTaken indicates a creation with a username another
	// account owns, live or tombstoned.
	CodeUsernameTaken = "username_taken"

	// CodeAlreadyDeleted indicates a deletion of an already tombstoned record.
	CodeAlreadyDeleted = "already_deleted"

	// CodeNotDeleted indicates a restore of a record that has no tombstone.
	CodeNotDeleted = "not_deleted"

	// CodeRecoveryExpired indicates a restore after the recovery deadline.
	CodeRecoveryExpired = "recovery_expired"

	// CodeConcurrentModification indicates the record changed underneath
	// the request.
	CodeConcurrentModification = "concurrent_modification"

	// CodeInternalError indicates an internal server error.
	CodeInternalError = "internal_error"
)

// NewErrorResponse creates a new error response with the given details.
func NewErrorResponse(message, errorType, param, code string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errorType,
			Param:   param,
			Code:    code,
		},
	}
}

// NewInvalidRequestError creates an error response for invalid requests (400).
func NewInvalidRequestError(message, param, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, param, code)
}

// NewNotFoundError creates an error response for missing resources (404).
func NewNotFoundError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeNotFound, "", "")
}

// NewConflictError creates an error response for lifecycle conflicts (409).
func NewConflictError(message, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeConflict, "", code)
}

// NewServerError creates an error response for internal server errors (500).
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServerError, "", CodeInternalError)
}

// HTTPStatusCode returns the appropriate HTTP status code for the error type.
func (e *ErrorDetail) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return 400
	case ErrorTypeNotFound:
		return 404
	case ErrorTypeConflict:
		return 409
	case ErrorTypeServerError:
		return 500
	default:
		return 500
	}
}

// CreateAccountRequest is the body of POST /admin/accounts.
type CreateAccountRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SaveConfigRequest is the body of POST /admin/accounts/{id}/configs.
type SaveConfigRequest struct {
	Name        string             `json:"name"`
	Model       string             `json:"model"`
	Description string             `json:"description,omitempty"`
	Parameters  map[string]float64 `json:"parameters,omitempty"`
	IsDefault   bool               `json:"is_default,omitempty"`
}

// AccountListResponse is the envelope for account listings.
type AccountListResponse struct {
	Total    int                  `json:"total"`
	Accounts []*retention.Account `json:"accounts"`
}

// DeletedAccountsResponse is the envelope for the pending-deletion listing.
type DeletedAccountsResponse struct {
	Total    int                          `json:"total"`
	Accounts []*retention.PendingDeletion `json:"accounts"`
}

// ConfigListResponse is the envelope for configuration listings.
type ConfigListResponse struct {
	Total   int                      `json:"total"`
	Configs []*retention.UsageConfig `json:"configs"`
}

// ConfigDeletedResponse reports an independent configuration tombstone.
type ConfigDeletedResponse struct {
	ConfigID  int64     `json:"config_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// HistoryResponse is the envelope for call history reads.
type HistoryResponse struct {
	AccountID uuid.UUID               `json:"account_id"`
	Count     int                     `json:"count"`
	Limit     int                     `json:"limit"`
	Offset    int                     `json:"offset"`
	Records   []*retention.CallRecord `json:"records"`
}

// Sweep status values reported by the maintenance endpoint.
const (
	// SweepStatusClean means every expired account was purged.
	SweepStatusClean = "clean"

	// SweepStatusPartial means some accounts failed to purge; the result
	// carries the failures and the next sweep retries them.
	SweepStatusPartial = "partial"
)

// SweepResponse is the body of POST /admin/maintenance/sweep. Partial
// failures are reported here rather than as a transport error: the sweep
// pass itself completed.
type SweepResponse struct {
	Status    string                 `json:"status"`
	Result    *retention.SweepResult `json:"result"`
	NextSweep *time.Time             `json:"next_sweep,omitempty"`
}
