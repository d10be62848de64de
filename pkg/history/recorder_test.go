package history

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention/store"
)

// captureObserver collects pipeline events for assertions. Events arrive
// from both the caller and the worker goroutine.
type captureObserver struct {
	mu      sync.Mutex
	appends map[string]int
	dropped int
	buffer  int
}

func (o *captureObserver) RecordHistoryAppend(status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.appends == nil {
		o.appends = make(map[string]int)
	}
	o.appends[status]++
}

func (o *captureObserver) RecordHistoryDropped() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dropped++
}

func (o *captureObserver) SetHistoryBufferEntries(count int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buffer = count
}

func (o *captureObserver) snapshot() (map[string]int, int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	appends := make(map[string]int, len(o.appends))
	for k, v := range o.appends {
		appends[k] = v
	}
	return appends, o.dropped, o.buffer
}

// newTestAccount creates a live account in the given store.
func newTestAccount(t *testing.T, s retention.Storage, username string) *retention.Account {
	t.Helper()

	account := &retention.Account{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		IsActive: true,
	}
	if err := s.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return account
}

// TestRecorder_RecordAndFlush tests that records reach storage after Close.
func TestRecorder_RecordAndFlush(t *testing.T) {
	s := store.NewMemoryStore()
	config := DefaultConfig()
	config.AsyncBuffer = 10

	recorder := NewRecorder(s, config)

	ctx := context.Background()
	account := newTestAccount(t, s, "alice")

	for i := 0; i < 3; i++ {
		record := &retention.CallRecord{
			AccountID: account.ID,
			Provider:  "openai",
			Model:     "gpt-4",
			Prompt:    "hello",
			Response:  "world",
			TokensIn:  10,
			TokensOut: 20,
			Cost:      0.003,
		}
		if err := recorder.Record(ctx, record); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}

	// Close drains the channel; afterwards everything is persisted.
	if err := recorder.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	records, err := s.ListCalls(ctx, account.ID, retention.VisibilityLive, 0, 0)
	if err != nil {
		t.Fatalf("ListCalls() failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 stored records, got %d", len(records))
	}

	// Missing fields were filled in.
	for _, record := range records {
		if record.CreatedAt.IsZero() {
			t.Error("Expected created_at to be filled in")
		}
		if record.TotalTokens != 30 {
			t.Errorf("Expected total tokens 30, got %d", record.TotalTokens)
		}
		if record.Status != retention.CallSuccess {
			t.Errorf("Expected derived success status, got %s", record.Status)
		}
	}
}

// TestRecorder_StatusDerivation tests status defaulting from the error field.
func TestRecorder_StatusDerivation(t *testing.T) {
	tests := []struct {
		name         string
		status       retention.CallStatus
		errorMessage string
		expected     retention.CallStatus
	}{
		{name: "no error defaults to success", status: "", errorMessage: "", expected: retention.CallSuccess},
		{name: "error message defaults to error", status: "", errorMessage: "provider timeout", expected: retention.CallError},
		{name: "explicit status is preserved", status: retention.CallError, errorMessage: "", expected: retention.CallError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.NewMemoryStore()
			recorder := NewRecorder(s, DefaultConfig())

			ctx := context.Background()
			account := newTestAccount(t, s, "bob")

			record := &retention.CallRecord{
				AccountID:    account.ID,
				Provider:     "openai",
				Model:        "gpt-4",
				Status:       tt.status,
				ErrorMessage: tt.errorMessage,
			}
			if err := recorder.Record(ctx, record); err != nil {
				t.Fatalf("Record() failed: %v", err)
			}
			if err := recorder.Close(); err != nil {
				t.Fatalf("Close() failed: %v", err)
			}

			records, err := s.ListCalls(ctx, account.ID, retention.VisibilityLive, 0, 0)
			if err != nil {
				t.Fatalf("ListCalls() failed: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("Expected 1 record, got %d", len(records))
			}
			if records[0].Status != tt.expected {
				t.Errorf("Expected status %s, got %s", tt.expected, records[0].Status)
			}
		})
	}
}

// TestRecorder_Disabled tests that a disabled recorder drops nothing into
// storage.
func TestRecorder_Disabled(t *testing.T) {
	s := store.NewMemoryStore()
	config := DefaultConfig()
	config.Enabled = false

	recorder := NewRecorder(s, config)

	ctx := context.Background()
	account := newTestAccount(t, s, "carol")

	record := &retention.CallRecord{AccountID: account.ID, Provider: "openai", Model: "gpt-4"}
	if err := recorder.Record(ctx, record); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	records, err := s.ListCalls(ctx, account.ID, retention.VisibilityLive, 0, 0)
	if err != nil {
		t.Fatalf("ListCalls() failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records from a disabled recorder, got %d", len(records))
	}
}

// TestRecorder_DropsAfterClose tests the typed error for records arriving
// after shutdown.
func TestRecorder_DropsAfterClose(t *testing.T) {
	s := store.NewMemoryStore()
	config := DefaultConfig()
	config.AsyncBuffer = 0 // Unbuffered so the closed worker cannot absorb the send

	recorder := NewRecorder(s, config)
	if err := recorder.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	account := newTestAccount(t, s, "dave")
	record := &retention.CallRecord{AccountID: account.ID, Provider: "openai", Model: "gpt-4"}

	err := recorder.Record(context.Background(), record)
	var dropped *DroppedError
	if !errors.As(err, &dropped) {
		t.Fatalf("Expected DroppedError after Close, got %v", err)
	}
	if dropped.AccountID != account.ID {
		t.Errorf("Expected account %s in the error, got %s", account.ID, dropped.AccountID)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("Expected the drop cause to unwrap to context.Canceled")
	}
}

// TestRecorder_ObserverSeesPipeline tests that the observer receives append
// outcomes and the drained buffer gauge.
func TestRecorder_ObserverSeesPipeline(t *testing.T) {
	s := store.NewMemoryStore()
	recorder := NewRecorder(s, DefaultConfig())
	observer := &captureObserver{}
	recorder.Observer = observer

	ctx := context.Background()
	account := newTestAccount(t, s, "frank")

	for i := 0; i < 2; i++ {
		record := &retention.CallRecord{AccountID: account.ID, Provider: "openai", Model: "gpt-4"}
		if err := recorder.Record(ctx, record); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}

	// A record for a missing account fails in the worker.
	orphan := &retention.CallRecord{AccountID: uuid.New(), Provider: "openai", Model: "gpt-4"}
	if err := recorder.Record(ctx, orphan); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	if err := recorder.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	appends, dropped, buffer := observer.snapshot()
	if appends["success"] != 2 {
		t.Errorf("Expected 2 successful appends, got %d", appends["success"])
	}
	if appends["error"] != 1 {
		t.Errorf("Expected 1 failed append, got %d", appends["error"])
	}
	if dropped != 0 {
		t.Errorf("Expected no drops, got %d", dropped)
	}
	if buffer != 0 {
		t.Errorf("Expected the buffer gauge to end at 0, got %d", buffer)
	}
}

// TestRecorder_ObserverCountsDrops tests that drops reach the observer.
func TestRecorder_ObserverCountsDrops(t *testing.T) {
	s := store.NewMemoryStore()
	config := DefaultConfig()
	config.AsyncBuffer = 0

	recorder := NewRecorder(s, config)
	observer := &captureObserver{}
	recorder.Observer = observer

	if err := recorder.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	record := &retention.CallRecord{AccountID: uuid.New(), Provider: "openai", Model: "gpt-4"}
	if err := recorder.Record(context.Background(), record); err == nil {
		t.Fatal("Expected a drop error after Close")
	}

	_, dropped, _ := observer.snapshot()
	if dropped != 1 {
		t.Errorf("Expected 1 drop, got %d", dropped)
	}
}

// TestRecorder_Running tests the liveness probe used by health checks.
func TestRecorder_Running(t *testing.T) {
	s := store.NewMemoryStore()
	recorder := NewRecorder(s, DefaultConfig())

	if !recorder.Running() {
		t.Error("Expected a fresh recorder to be running")
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if recorder.Running() {
		t.Error("Expected a closed recorder to report not running")
	}
}

// TestRecorder_SurvivesStorageFailure tests that a failed write is logged,
// not fatal.
func TestRecorder_SurvivesStorageFailure(t *testing.T) {
	s := store.NewMemoryStore()
	recorder := NewRecorder(s, DefaultConfig())

	// Record for an account that does not exist; the write fails in the
	// worker without affecting later records.
	orphan := &retention.CallRecord{AccountID: uuid.New(), Provider: "openai", Model: "gpt-4"}
	if err := recorder.Record(context.Background(), orphan); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	account := newTestAccount(t, s, "erin")
	record := &retention.CallRecord{AccountID: account.ID, Provider: "openai", Model: "gpt-4"}
	if err := recorder.Record(context.Background(), record); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	if err := recorder.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	records, err := s.ListCalls(context.Background(), account.ID, retention.VisibilityLive, 0, 0)
	if err != nil {
		t.Fatalf("ListCalls() failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected the valid record to be stored, got %d", len(records))
	}
}
