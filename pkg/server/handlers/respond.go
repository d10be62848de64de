package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
)

// WriteJSON writes a JSON response with the given status code. Encoding
// failures are logged but not surfaced: the status line is already on the
// wire by then.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// WriteError writes an error envelope using the status code implied by its
// error type.
func WriteError(w http.ResponseWriter, resp *ErrorResponse) {
	WriteJSON(w, resp.Error.HTTPStatusCode(), resp)
}

// HandleError translates a retention error into an HTTP error response.
//
// Lifecycle errors keep their message: the caller needs to know which record
// and which deadline. Storage errors are collapsed to a generic message and
// logged with full detail, so backend internals never reach the client.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound       *retention.NotFoundError
		duplicate      *retention.DuplicateError
		alreadyDeleted *retention.AlreadyDeletedError
		notDeleted     *retention.NotDeletedError
		expired        *retention.RecoveryExpiredError
		conflict       *retention.ConflictError
		storage        *retention.StorageError
	)

	switch {
	case errors.As(err, &notFound):
		WriteError(w, NewNotFoundError(notFound.Error()))
	case errors.As(err, &duplicate):
		WriteError(w, NewConflictError(duplicate.Error(), CodeUsernameTaken))
	case errors.As(err, &alreadyDeleted):
		WriteError(w, NewConflictError(alreadyDeleted.Error(), CodeAlreadyDeleted))
	case errors.As(err, &notDeleted):
		WriteError(w, NewConflictError(notDeleted.Error(), CodeNotDeleted))
	case errors.As(err, &expired):
		WriteError(w, NewConflictError(expired.Error(), CodeRecoveryExpired))
	case errors.As(err, &conflict):
		WriteError(w, NewConflictError(conflict.Error(), CodeConcurrentModification))
	case errors.As(err, &storage):
		slog.ErrorContext(r.Context(), "storage error",
			"backend", storage.Backend,
			"operation", storage.Operation,
			"transient", storage.Transient,
			"error", storage.Cause,
		)
		WriteError(w, NewServerError("A storage error occurred. Please try again later."))
	default:
		slog.ErrorContext(r.Context(), "unhandled error", "error", err)
		WriteError(w, NewServerError("An internal error occurred. Please try again later."))
	}
}
