package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/config"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention/store"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/telemetry/metrics"
)

// failingPurgeStore fails Purge for one account and delegates everything
// else, so a sweep pass ends partial.
type failingPurgeStore struct {
	*store.MemoryStore
	failID uuid.UUID
}

func (f *failingPurgeStore) Purge(ctx context.Context, accountID uuid.UUID, cutoff time.Time) (bool, error) {
	if accountID == f.failID {
		return false, retention.NewStorageError("memory", "purge", errors.New("disk full"))
	}
	return f.MemoryStore.Purge(ctx, accountID, cutoff)
}

func newMaintenanceFixture(t *testing.T, storage retention.Storage) (*MaintenanceHandler, *retention.Engine, *metrics.Collector) {
	t.Helper()

	engine := retention.NewEngine(storage, retention.DefaultConfig())
	sweeper := retention.NewSweeper(storage, engine)
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Path: "/metrics"}, nil)
	return NewMaintenanceHandler(sweeper, nil, collector), engine, collector
}

func triggerSweep(t *testing.T, h *MaintenanceHandler) (*httptest.ResponseRecorder, *SweepResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/admin/maintenance/sweep", nil)
	rec := httptest.NewRecorder()
	h.Sweep(rec, req)

	if rec.Code != http.StatusOK {
		return rec, nil
	}
	var resp SweepResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return rec, &resp
}

func scrapeCollector(t *testing.T, collector *metrics.Collector) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, req)

	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("failed to read metrics: %v", err)
	}
	return string(body)
}

func TestMaintenanceHandler_Sweep(t *testing.T) {
	t.Run("purges expired accounts", func(t *testing.T) {
		s := store.NewMemoryStore()
		t.Cleanup(func() { s.Close() })
		h, engine, collector := newMaintenanceFixture(t, s)

		expired := seedExpiredAccount(t, s, "alice")
		recoverable := seedAccount(t, s, "bob")
		if _, err := engine.SoftDelete(t.Context(), recoverable.ID); err != nil {
			t.Fatalf("SoftDelete() error = %v", err)
		}

		rec, resp := triggerSweep(t, h)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if resp.Status != SweepStatusClean {
			t.Errorf("Status = %q, want %q", resp.Status, SweepStatusClean)
		}
		if resp.Result.PurgedCount != 1 {
			t.Errorf("PurgedCount = %d, want 1", resp.Result.PurgedCount)
		}
		if len(resp.Result.Purged) != 1 || resp.Result.Purged[0] != expired.ID {
			t.Errorf("Purged = %v, want [%s]", resp.Result.Purged, expired.ID)
		}

		// The expired account is gone; the recoverable one survived.
		if _, err := s.GetAccount(t.Context(), expired.ID); err == nil {
			t.Error("expired account still exists after sweep")
		}
		if _, err := s.GetAccount(t.Context(), recoverable.ID); err != nil {
			t.Errorf("recoverable account was purged: %v", err)
		}

		exposition := scrapeCollector(t, collector)
		if !strings.Contains(exposition, `mcla_retention_sweeps_total{result="clean"} 1`) {
			t.Error("clean sweep was not recorded in metrics")
		}
	})

	t.Run("reports nothing to do as clean", func(t *testing.T) {
		s := store.NewMemoryStore()
		t.Cleanup(func() { s.Close() })
		h, _, _ := newMaintenanceFixture(t, s)
		seedAccount(t, s, "alice")

		rec, resp := triggerSweep(t, h)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if resp.Status != SweepStatusClean {
			t.Errorf("Status = %q, want %q", resp.Status, SweepStatusClean)
		}
		if resp.Result.PurgedCount != 0 {
			t.Errorf("PurgedCount = %d, want 0", resp.Result.PurgedCount)
		}
	})

	t.Run("reports partial failures with the result", func(t *testing.T) {
		mem := store.NewMemoryStore()
		t.Cleanup(func() { mem.Close() })

		stuck := seedExpiredAccount(t, mem, "alice")
		seedExpiredAccount(t, mem, "bob")

		s := &failingPurgeStore{MemoryStore: mem, failID: stuck.ID}
		h, _, collector := newMaintenanceFixture(t, s)

		rec, resp := triggerSweep(t, h)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if resp.Status != SweepStatusPartial {
			t.Errorf("Status = %q, want %q", resp.Status, SweepStatusPartial)
		}
		if resp.Result.PurgedCount != 1 {
			t.Errorf("PurgedCount = %d, want 1", resp.Result.PurgedCount)
		}
		if len(resp.Result.Failures) != 1 {
			t.Fatalf("Failures = %d, want 1", len(resp.Result.Failures))
		}
		if resp.Result.Failures[0].AccountID != stuck.ID {
			t.Errorf("failed account = %s, want %s", resp.Result.Failures[0].AccountID, stuck.ID)
		}

		// The failed account is still there for the next pass.
		if _, err := mem.GetAccount(t.Context(), stuck.ID); err != nil {
			t.Errorf("failed account should survive the pass: %v", err)
		}

		exposition := scrapeCollector(t, collector)
		if !strings.Contains(exposition, `mcla_retention_sweeps_total{result="partial"} 1`) {
			t.Error("partial sweep was not recorded in metrics")
		}
		if !strings.Contains(exposition, "mcla_retention_purge_failures_total 1") {
			t.Error("purge failure was not recorded in metrics")
		}
	})

	t.Run("skips accounts restored between passes", func(t *testing.T) {
		s := store.NewMemoryStore()
		t.Cleanup(func() { s.Close() })
		h, engine, _ := newMaintenanceFixture(t, s)

		account := seedAccount(t, s, "alice")
		if _, err := engine.SoftDelete(t.Context(), account.ID); err != nil {
			t.Fatalf("SoftDelete() error = %v", err)
		}
		if _, err := engine.Restore(t.Context(), account.ID); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}

		rec, resp := triggerSweep(t, h)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if resp.Result.PurgedCount != 0 {
			t.Errorf("PurgedCount = %d, want 0", resp.Result.PurgedCount)
		}
		if _, err := s.GetAccount(t.Context(), account.ID); err != nil {
			t.Errorf("restored account was purged: %v", err)
		}
	})
}

func BenchmarkMaintenanceHandler_Sweep(b *testing.B) {
	s := store.NewMemoryStore()
	defer s.Close()

	engine := retention.NewEngine(s, retention.DefaultConfig())
	sweeper := retention.NewSweeper(s, engine)
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Path: "/metrics"}, nil)
	h := NewMaintenanceHandler(sweeper, nil, collector)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/admin/maintenance/sweep", nil)
		rec := httptest.NewRecorder()
		h.Sweep(rec, req)
	}
}
