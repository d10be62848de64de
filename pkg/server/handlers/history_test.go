package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/history"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention/store"
)

func newHistoryFixture(t *testing.T) (*HistoryHandler, *store.MemoryStore, *retention.Engine) {
	t.Helper()

	s := store.NewMemoryStore()
	t.Cleanup(func() { s.Close() })

	engine := retention.NewEngine(s, retention.DefaultConfig())
	return NewHistoryHandler(history.NewService(s)), s, engine
}

func seedCall(t *testing.T, s *store.MemoryStore, accountID uuid.UUID, status retention.CallStatus) *retention.CallRecord {
	t.Helper()

	record := &retention.CallRecord{
		AccountID:   accountID,
		Provider:    "openai",
		Model:       "gpt-4o",
		Prompt:      "Explain polymorphism",
		Status:      status,
		TokensIn:    100,
		TokensOut:   150,
		TotalTokens: 250,
		Cost:        0.25,
	}
	if status == retention.CallError {
		record.ErrorMessage = "rate limited"
	} else {
		record.Response = "Polymorphism lets one interface cover many types."
	}
	if err := s.AppendCall(t.Context(), record); err != nil {
		t.Fatalf("AppendCall() error = %v", err)
	}
	return record
}

func TestHistoryHandler_History(t *testing.T) {
	t.Run("returns history newest first", func(t *testing.T) {
		h, s, _ := newHistoryFixture(t)
		account := seedAccount(t, s, "alice")
		for i := 0; i < 3; i++ {
			seedCall(t, s, account.ID, retention.CallSuccess)
		}

		req := httptest.NewRequest(http.MethodGet, "/admin/accounts/"+account.ID.String()+"/history", nil)
		req.SetPathValue("id", account.ID.String())
		rec := httptest.NewRecorder()
		h.History(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var resp HistoryResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Count != 3 {
			t.Fatalf("Count = %d, want 3", resp.Count)
		}
		if resp.Limit != defaultHistoryLimit {
			t.Errorf("Limit = %d, want %d", resp.Limit, defaultHistoryLimit)
		}
		for i := 1; i < len(resp.Records); i++ {
			if resp.Records[i-1].ID < resp.Records[i].ID {
				t.Errorf("records out of order: ID %d before %d", resp.Records[i-1].ID, resp.Records[i].ID)
			}
		}
	})

	t.Run("pages through history", func(t *testing.T) {
		h, s, _ := newHistoryFixture(t)
		account := seedAccount(t, s, "alice")
		for i := 0; i < 5; i++ {
			seedCall(t, s, account.ID, retention.CallSuccess)
		}

		req := httptest.NewRequest(http.MethodGet, "/admin/accounts/"+account.ID.String()+"/history?limit=2&offset=1", nil)
		req.SetPathValue("id", account.ID.String())
		rec := httptest.NewRecorder()
		h.History(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var resp HistoryResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Count != 2 {
			t.Errorf("Count = %d, want 2", resp.Count)
		}
		if resp.Limit != 2 || resp.Offset != 1 {
			t.Errorf("Limit, Offset = %d, %d, want 2, 1", resp.Limit, resp.Offset)
		}
	})

	t.Run("rejects a negative limit", func(t *testing.T) {
		h, s, _ := newHistoryFixture(t)
		account := seedAccount(t, s, "alice")

		req := httptest.NewRequest(http.MethodGet, "/admin/accounts/"+account.ID.String()+"/history?limit=-1", nil)
		req.SetPathValue("id", account.ID.String())
		rec := httptest.NewRecorder()
		h.History(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
		if resp := decodeErrorResponse(t, rec); resp.Error.Param != "limit" {
			t.Errorf("Param = %q, want %q", resp.Error.Param, "limit")
		}
	})

	t.Run("rejects a malformed offset", func(t *testing.T) {
		h, s, _ := newHistoryFixture(t)
		account := seedAccount(t, s, "alice")

		req := httptest.NewRequest(http.MethodGet, "/admin/accounts/"+account.ID.String()+"/history?offset=abc", nil)
		req.SetPathValue("id", account.ID.String())
		rec := httptest.NewRecorder()
		h.History(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("treats a tombstoned account as missing", func(t *testing.T) {
		h, s, engine := newHistoryFixture(t)
		account := seedAccount(t, s, "alice")
		seedCall(t, s, account.ID, retention.CallSuccess)
		if _, err := engine.SoftDelete(t.Context(), account.ID); err != nil {
			t.Fatalf("SoftDelete() error = %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/admin/accounts/"+account.ID.String()+"/history", nil)
		req.SetPathValue("id", account.ID.String())
		rec := httptest.NewRecorder()
		h.History(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestHistoryHandler_Stats(t *testing.T) {
	t.Run("aggregates live call history", func(t *testing.T) {
		h, s, _ := newHistoryFixture(t)
		account := seedAccount(t, s, "alice")
		for i := 0; i < 3; i++ {
			seedCall(t, s, account.ID, retention.CallSuccess)
		}
		seedCall(t, s, account.ID, retention.CallError)

		req := httptest.NewRequest(http.MethodGet, "/admin/accounts/"+account.ID.String()+"/stats", nil)
		req.SetPathValue("id", account.ID.String())
		rec := httptest.NewRecorder()
		h.Stats(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var stats retention.AccountStats
		if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if stats.TotalCalls != 4 {
			t.Errorf("TotalCalls = %d, want 4", stats.TotalCalls)
		}
		if stats.FailedCalls != 1 {
			t.Errorf("FailedCalls = %d, want 1", stats.FailedCalls)
		}
		if stats.TotalTokens != 1000 {
			t.Errorf("TotalTokens = %d, want 1000", stats.TotalTokens)
		}
		if stats.TotalCost != 1.0 {
			t.Errorf("TotalCost = %v, want 1.0", stats.TotalCost)
		}
		if stats.SuccessRate != 75.0 {
			t.Errorf("SuccessRate = %v, want 75.0", stats.SuccessRate)
		}
	})

	t.Run("returns zeroes for an account without calls", func(t *testing.T) {
		h, s, _ := newHistoryFixture(t)
		account := seedAccount(t, s, "alice")

		req := httptest.NewRequest(http.MethodGet, "/admin/accounts/"+account.ID.String()+"/stats", nil)
		req.SetPathValue("id", account.ID.String())
		rec := httptest.NewRecorder()
		h.Stats(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var stats retention.AccountStats
		if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if stats.TotalCalls != 0 {
			t.Errorf("TotalCalls = %d, want 0", stats.TotalCalls)
		}
		if stats.SuccessRate != 0 {
			t.Errorf("SuccessRate = %v, want 0", stats.SuccessRate)
		}
	})

	t.Run("treats a tombstoned account as missing", func(t *testing.T) {
		h, s, engine := newHistoryFixture(t)
		account := seedAccount(t, s, "alice")
		if _, err := engine.SoftDelete(t.Context(), account.ID); err != nil {
			t.Fatalf("SoftDelete() error = %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/admin/accounts/"+account.ID.String()+"/stats", nil)
		req.SetPathValue("id", account.ID.String())
		rec := httptest.NewRecorder()
		h.Stats(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func BenchmarkHistoryHandler_History(b *testing.B) {
	s := store.NewMemoryStore()
	defer s.Close()
	h := NewHistoryHandler(history.NewService(s))

	account := &retention.Account{
		ID:       uuid.New(),
		Username: "bench",
		Email:    "bench@example.com",
		IsActive: true,
	}
	if err := s.CreateAccount(b.Context(), account); err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		record := &retention.CallRecord{
			AccountID:   account.ID,
			Provider:    "openai",
			Model:       "gpt-4o",
			Prompt:      "bench",
			Status:      retention.CallSuccess,
			TotalTokens: 100,
		}
		if err := s.AppendCall(b.Context(), record); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/admin/accounts/"+account.ID.String()+"/history?limit=50", nil)
		req.SetPathValue("id", account.ID.String())
		rec := httptest.NewRecorder()
		h.History(rec, req)
	}
}
