package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/telemetry/metrics"
)

// AccountsHandler serves the account lifecycle endpoints: create, list, and
// inspect accounts, and drive them through soft deletion and recovery.
type AccountsHandler struct {
	storage   retention.Storage
	engine    *retention.Engine
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(storage retention.Storage, engine *retention.Engine, collector *metrics.Collector) *AccountsHandler {
	return &AccountsHandler{
		storage:   storage,
		engine:    engine,
		collector: collector,
		logger:    slog.Default().With("component", "server.accounts"),
	}
}

// List handles GET /admin/accounts. By default only live accounts are
// returned; ?include_deleted=true widens the listing to tombstoned rows.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	vis := retention.VisibilityLive
	if raw := r.URL.Query().Get("include_deleted"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			WriteError(w, NewInvalidRequestError(
				"include_deleted must be a boolean", "include_deleted", CodeInvalidValue))
			return
		}
		if include {
			vis = retention.VisibilityAll
		}
	}

	accounts, err := h.storage.ListAccounts(r.Context(), vis)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, &AccountListResponse{
		Total:    len(accounts),
		Accounts: accounts,
	})
}

// Create handles POST /admin/accounts.
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid JSON in request body", "", CodeInvalidJSON))
		return
	}
	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required", "username", CodeMissingField))
		return
	}
	if req.Email == "" {
		WriteError(w, NewInvalidRequestError("email is required", "email", CodeMissingField))
		return
	}

	// Live accounts own their username exclusively; checking here turns the
	// common duplicate into a clean conflict instead of a storage error.
	_, err := h.storage.GetAccountByUsername(r.Context(), req.Username)
	if err == nil {
		WriteError(w, NewConflictError(
			"an account with this username already exists", CodeUsernameTaken))
		return
	}
	var notFound *retention.NotFoundError
	if !errors.As(err, &notFound) {
		HandleError(w, r, err)
		return
	}

	account := &retention.Account{
		ID:       uuid.New(),
		Username: req.Username,
		Email:    req.Email,
		IsActive: true,
	}
	if err := h.storage.CreateAccount(r.Context(), account); err != nil {
		HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "account created",
		"account_id", account.ID,
		"username", account.Username,
	)
	WriteJSON(w, http.StatusCreated, account)
}

// Get handles GET /admin/accounts/{id}. Tombstoned accounts are visible
// here: the admin surface needs to inspect pending deletions.
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDFromPath(w, r)
	if !ok {
		return
	}

	account, err := h.storage.GetAccount(r.Context(), id)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, account)
}

// Preview handles GET /admin/accounts/{id}/deletion-preview. For a live
// account it reports what a deletion would take with it; for a tombstoned
// one, what the pending deletion holds and when recovery ends.
func (h *AccountsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDFromPath(w, r)
	if !ok {
		return
	}

	preview, err := h.engine.Preview(r.Context(), id)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, preview)
}

// Delete handles DELETE /admin/accounts/{id}: the soft-delete cascade.
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDFromPath(w, r)
	if !ok {
		return
	}

	result, err := h.engine.SoftDelete(r.Context(), id)
	if err != nil {
		h.collector.RecordDeletion(deletionOutcome(err))
		HandleError(w, r, err)
		return
	}
	h.collector.RecordDeletion(metrics.OutcomeCommitted)

	h.logger.InfoContext(r.Context(), "account soft-deleted",
		"account_id", result.AccountID,
		"username", result.Username,
		"recovery_deadline", result.RecoveryDeadline,
	)
	WriteJSON(w, http.StatusOK, result)
}

// Restore handles POST /admin/accounts/{id}/restore.
func (h *AccountsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDFromPath(w, r)
	if !ok {
		return
	}

	result, err := h.engine.Restore(r.Context(), id)
	if err != nil {
		h.collector.RecordRestore(restoreOutcome(err))
		HandleError(w, r, err)
		return
	}
	h.collector.RecordRestore(metrics.OutcomeRestored)

	h.logger.InfoContext(r.Context(), "account restored",
		"account_id", result.AccountID,
		"username", result.Username,
	)
	WriteJSON(w, http.StatusOK, result)
}

// ListDeleted handles GET /admin/accounts/deleted: every tombstoned account
// with its recovery deadline, oldest tombstone first. ?include_expired=false
// narrows the listing to accounts that can still be restored.
func (h *AccountsHandler) ListDeleted(w http.ResponseWriter, r *http.Request) {
	includeExpired := true
	if raw := r.URL.Query().Get("include_expired"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			WriteError(w, NewInvalidRequestError(
				"include_expired must be a boolean", "include_expired", CodeInvalidValue))
			return
		}
		includeExpired = v
	}

	pending, err := h.engine.ListPendingDeletion(r.Context())
	if err != nil {
		HandleError(w, r, err)
		return
	}

	if !includeExpired {
		recoverable := pending[:0]
		for _, p := range pending {
			if !p.Expired {
				recoverable = append(recoverable, p)
			}
		}
		pending = recoverable
	}

	WriteJSON(w, http.StatusOK, &DeletedAccountsResponse{
		Total:    len(pending),
		Accounts: pending,
	})
}

// deletionOutcome maps a failed soft delete to its metric label.
func deletionOutcome(err error) string {
	var (
		notFound       *retention.NotFoundError
		alreadyDeleted *retention.AlreadyDeletedError
		conflict       *retention.ConflictError
	)
	switch {
	case errors.As(err, &notFound):
		return metrics.OutcomeNotFound
	case errors.As(err, &alreadyDeleted), errors.As(err, &conflict):
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeError
	}
}

// restoreOutcome maps a failed restore to its metric label.
func restoreOutcome(err error) string {
	var (
		notFound   *retention.NotFoundError
		notDeleted *retention.NotDeletedError
		expired    *retention.RecoveryExpiredError
		conflict   *retention.ConflictError
	)
	switch {
	case errors.As(err, &notFound):
		return metrics.OutcomeNotFound
	case errors.As(err, &expired):
		return metrics.OutcomeExpired
	case errors.As(err, &notDeleted), errors.As(err, &conflict):
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeError
	}
}

// accountIDFromPath parses the {id} path segment. On failure it writes a 400
// response and returns ok=false.
func accountIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, NewInvalidRequestError(
			"account ID must be a UUID", "id", CodeInvalidID))
		return uuid.Nil, false
	}
	return id, true
}
