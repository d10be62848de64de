package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/history"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
)

// ConfigsHandler serves an account's hyperparameter configurations.
type ConfigsHandler struct {
	storage retention.Storage
	engine  *retention.Engine
	service *history.Service
	logger  *slog.Logger
}

// NewConfigsHandler creates a new configurations handler.
func NewConfigsHandler(storage retention.Storage, engine *retention.Engine, service *history.Service) *ConfigsHandler {
	return &ConfigsHandler{
		storage: storage,
		engine:  engine,
		service: service,
		logger:  slog.Default().With("component", "server.configs"),
	}
}

// List handles GET /admin/accounts/{id}/configs. Only live configurations of
// a live account are returned; a tombstoned account reads as missing.
func (h *ConfigsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDFromPath(w, r)
	if !ok {
		return
	}

	configs, err := h.service.AccountConfigs(r.Context(), id)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, &ConfigListResponse{
		Total:   len(configs),
		Configs: configs,
	})
}

// Save handles POST /admin/accounts/{id}/configs.
func (h *ConfigsHandler) Save(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDFromPath(w, r)
	if !ok {
		return
	}

	var req SaveConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid JSON in request body", "", CodeInvalidJSON))
		return
	}
	if req.Name == "" {
		WriteError(w, NewInvalidRequestError("name is required", "name", CodeMissingField))
		return
	}
	if req.Model == "" {
		WriteError(w, NewInvalidRequestError("model is required", "model", CodeMissingField))
		return
	}

	// Writes against a tombstoned account behave like writes against a
	// missing one.
	account, err := h.storage.GetAccount(r.Context(), id)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	if account.DeletedAt != nil {
		HandleError(w, r, retention.NewAccountNotFoundError(id))
		return
	}

	config := &retention.UsageConfig{
		AccountID:   id,
		Name:        req.Name,
		Model:       req.Model,
		Description: req.Description,
		Parameters:  req.Parameters,
		IsDefault:   req.IsDefault,
	}
	if err := h.storage.SaveConfig(r.Context(), config); err != nil {
		HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "configuration saved",
		"account_id", id,
		"config_id", config.ID,
		"name", config.Name,
	)
	WriteJSON(w, http.StatusCreated, config)
}

// DeleteConfig handles DELETE /admin/accounts/{id}/configs/{configID}. The
// tombstone written here is independent of any account cascade: restoring
// the account later leaves this configuration deleted.
func (h *ConfigsHandler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDFromPath(w, r)
	if !ok {
		return
	}

	configID, err := strconv.ParseInt(r.PathValue("configID"), 10, 64)
	if err != nil {
		WriteError(w, NewInvalidRequestError(
			"configuration ID must be an integer", "configID", CodeInvalidID))
		return
	}

	deletedAt, err := h.engine.SoftDeleteConfig(r.Context(), id, configID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "configuration soft-deleted",
		"account_id", id,
		"config_id", configID,
	)
	WriteJSON(w, http.StatusOK, &ConfigDeletedResponse{
		ConfigID:  configID,
		DeletedAt: deletedAt,
	})
}
