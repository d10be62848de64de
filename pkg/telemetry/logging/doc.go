// Package logging provides structured logging with PII redaction.
//
// # Overview
//
// The logging package builds a standard *slog.Logger whose handler chain
// provides:
//   - Structured logging in JSON or text format
//   - Automatic PII redaction (emails, API keys, bearer tokens)
//   - Context-aware logging with request and account identifiers
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	// Create a logger
//	logger, err := logging.New(logging.Config{
//	    Level:     "info",
//	    Format:    "json",
//	    RedactPII: true,
//	})
//
//	// Log structured data
//	logger.Info("Account tombstoned",
//	    "account_id", accountID,
//	    "email", "user@example.com", // Automatically redacted
//	    "dependent_rows", 42,
//	)
//
//	// Context fields flow through the *Context methods
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "Restore requested") // Includes request_id
//
// # PII Redaction
//
// PII is automatically redacted from log messages and attributes when
// RedactPII is enabled:
//
//   - Emails: user@example.com -> u***@example.com
//   - API keys: sk-abc123xyz -> sk-***
//   - Bearer tokens: Bearer eyJhb... -> Bearer ***
//   - Values under sensitive keys (password, token, secret) are masked
//
// Redaction happens inside the handler, so components holding the logger
// need no knowledge of it.
package logging
