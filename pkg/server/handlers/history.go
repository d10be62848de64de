package handlers

import (
	"net/http"
	"strconv"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/history"
)

// defaultHistoryLimit caps unpaginated history reads.
const defaultHistoryLimit = 50

// HistoryHandler serves an account's call history and usage aggregates.
type HistoryHandler struct {
	service *history.Service
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(service *history.Service) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// History handles GET /admin/accounts/{id}/history. Records are returned
// newest first; ?limit= and ?offset= page through them.
func (h *HistoryHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDFromPath(w, r)
	if !ok {
		return
	}

	limit, ok := queryInt(w, r, "limit", defaultHistoryLimit)
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset", 0)
	if !ok {
		return
	}

	records, err := h.service.AccountHistory(r.Context(), id, limit, offset)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, &HistoryResponse{
		AccountID: id,
		Count:     len(records),
		Limit:     limit,
		Offset:    offset,
		Records:   records,
	})
}

// Stats handles GET /admin/accounts/{id}/stats.
func (h *HistoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDFromPath(w, r)
	if !ok {
		return
	}

	stats, err := h.service.AccountStats(r.Context(), id)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// queryInt parses a non-negative integer query parameter, falling back to
// def when absent. On failure it writes a 400 response and returns ok=false.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		WriteError(w, NewInvalidRequestError(
			name+" must be a non-negative integer", name, CodeInvalidValue))
		return 0, false
	}
	return v, true
}
