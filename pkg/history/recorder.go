// Package history captures LLM call records into retention storage and
// serves collaborator-facing history reads. Writes are asynchronous so call
// handling never blocks on the database.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/retention"
)

// Config contains configuration for the history recorder.
type Config struct {
	// Enabled enables call history recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Observer receives recorder pipeline events. The server points it at the
// metrics collector. Methods are called from the recorder's worker
// goroutine and must not block.
type Observer interface {
	// RecordHistoryAppend is called after each storage write attempt with
	// "success" or "error".
	RecordHistoryAppend(status string)

	// RecordHistoryDropped is called when a record is lost before reaching
	// storage.
	RecordHistoryDropped()

	// SetHistoryBufferEntries is called with the current buffer occupancy.
	SetHistoryBufferEntries(count int)
}

// DroppedError indicates a call record could not be enqueued and was lost.
type DroppedError struct {
	AccountID uuid.UUID
	Cause     error
}

// Error implements the error interface.
func (e *DroppedError) Error() string {
	return fmt.Sprintf("call record for account %q dropped: %v", e.AccountID, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *DroppedError) Unwrap() error {
	return e.Cause
}

// Recorder appends call records to storage asynchronously. Records are
// buffered in a channel and written by a background worker; Close drains the
// buffer before returning.
type Recorder struct {
	storage    retention.Storage
	config     *Config
	recordChan chan *retention.CallRecord
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger

	// Observer, if set before the first Record call, receives pipeline
	// events: append outcomes, drops, and buffer occupancy.
	Observer Observer
}

// NewRecorder creates a new history recorder with the provided storage
// backend and configuration.
func NewRecorder(storage retention.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *retention.CallRecord, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "history.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("history recorder initialized",
		"enabled", config.Enabled,
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record enqueues a call record for async writing. Missing fields are
// filled in: the creation time, the token total, and the status derived from
// the presence of an error message.
//
// Record returns immediately and does not block on storage writes.
func (r *Recorder) Record(ctx context.Context, record *retention.CallRecord) error {
	if !r.config.Enabled {
		return nil
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.TotalTokens == 0 {
		record.TotalTokens = record.TokensIn + record.TokensOut
	}
	if record.Status == "" {
		if record.ErrorMessage != "" {
			record.Status = retention.CallError
		} else {
			record.Status = retention.CallSuccess
		}
	}

	select {
	case r.recordChan <- record:
		r.observeBuffer()
		return nil
	case <-time.After(r.config.WriteTimeout):
		r.logger.Error("call record channel full, dropping record",
			"account_id", record.AccountID,
			"provider", record.Provider,
			"channel_capacity", r.config.AsyncBuffer,
		)
		r.observeDrop()
		return &DroppedError{AccountID: record.AccountID, Cause: context.DeadlineExceeded}
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping record",
			"account_id", record.AccountID,
		)
		r.observeDrop()
		return &DroppedError{AccountID: record.AccountID, Cause: context.Canceled}
	}
}

// Running reports whether the recorder still accepts records. It returns
// false once Close has been called.
func (r *Recorder) Running() bool {
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// Close gracefully shuts down the recorder by draining the async channel and
// waiting for all pending writes to complete.
func (r *Recorder) Close() error {
	r.logger.Info("shutting down history recorder")

	close(r.done)
	r.wg.Wait()

	r.logger.Info("history recorder shut down complete")
	return nil
}

// worker drains the record channel and writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)
			r.observeBuffer()

		case <-r.done:
			// Drain remaining records from the channel before exit.
			pending := len(r.recordChan)
			if pending > 0 {
				r.logger.Info("draining record channel before shutdown",
					"pending_count", pending,
				)
			}

			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
					r.observeBuffer()
				default:
					return
				}
			}
		}
	}
}

// writeRecord writes a single call record to storage.
func (r *Recorder) writeRecord(record *retention.CallRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	if err := r.storage.AppendCall(ctx, record); err != nil {
		r.logger.Error("failed to store call record",
			"account_id", record.AccountID,
			"provider", record.Provider,
			"model", record.Model,
			"error", err,
		)
		r.observeAppend("error")
		return
	}

	duration := time.Since(start)
	r.observeAppend("success")

	r.logger.Debug("call recorded",
		"record_id", record.ID,
		"account_id", record.AccountID,
		"provider", record.Provider,
		"status", record.Status,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow call record write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}

func (r *Recorder) observeAppend(status string) {
	if r.Observer != nil {
		r.Observer.RecordHistoryAppend(status)
	}
}

func (r *Recorder) observeDrop() {
	if r.Observer != nil {
		r.Observer.RecordHistoryDropped()
	}
}

func (r *Recorder) observeBuffer() {
	if r.Observer != nil {
		r.Observer.SetHistoryBufferEntries(len(r.recordChan))
	}
}
