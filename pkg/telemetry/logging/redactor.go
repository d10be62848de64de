package logging

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// Redactor redacts PII (Personally Identifiable Information) from log fields.
type Redactor struct {
	patterns map[string]*redactPattern
}

// redactPattern contains a compiled regex and its replacement. When
// transform is set it is applied to each match instead of the static
// replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
	transform   func(string) string
}

// Common PII pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternEmail       = "email"
	PatternBearerToken = "bearer_token"
	PatternPassword    = "password"
)

// NewRedactor creates a Redactor with the built-in pattern set.
func NewRedactor() *Redactor {
	r := &Redactor{
		patterns: make(map[string]*redactPattern),
	}
	r.addDefaultPatterns()
	return r
}

// addDefaultPatterns adds built-in PII redaction patterns.
func (r *Redactor) addDefaultPatterns() {
	// API keys (OpenAI, Anthropic, generic)
	r.patterns[PatternAPIKey] = &redactPattern{
		name:        PatternAPIKey,
		regex:       regexp.MustCompile(`(sk-[a-zA-Z0-9]+|api[-_]?key[-_:]\s*[a-zA-Z0-9]+)`),
		replacement: "sk-***",
	}

	// Email addresses keep their first character and domain so log
	// lines about a specific account stay traceable.
	r.patterns[PatternEmail] = &redactPattern{
		name:      PatternEmail,
		regex:     regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		transform: RedactEmail,
	}

	// Bearer tokens
	r.patterns[PatternBearerToken] = &redactPattern{
		name:        PatternBearerToken,
		regex:       regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
		replacement: "Bearer ***",
	}

	// Generic password fields
	r.patterns[PatternPassword] = &redactPattern{
		name:        PatternPassword,
		regex:       regexp.MustCompile(`(password|passwd|pwd)[:=]\s*[^\s]+`),
		replacement: "$1: ***",
	}
}

// RedactString redacts PII from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}

	redacted := value
	for _, pattern := range r.patterns {
		if pattern.transform != nil {
			redacted = pattern.regex.ReplaceAllStringFunc(redacted, pattern.transform)
			continue
		}
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}

	return redacted
}

// redactAttr rewrites a single attribute. Values under sensitive key
// names are masked entirely; string values elsewhere are pattern-scrubbed.
func (r *Redactor) redactAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() == slog.KindGroup {
		members := attr.Value.Group()
		redacted := make([]slog.Attr, len(members))
		for i, member := range members {
			redacted[i] = r.redactAttr(member)
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(redacted...)}
	}

	if r.isSensitiveKey(attr.Key) {
		return slog.String(attr.Key, maskValue(attr.Value.String()))
	}

	if attr.Value.Kind() == slog.KindString {
		return slog.String(attr.Key, r.RedactString(attr.Value.String()))
	}

	return attr
}

// isSensitiveKey checks if a key name indicates sensitive data.
func (r *Redactor) isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)

	sensitiveKeys := []string{
		"password", "passwd", "pwd",
		"secret", "token", "api_key", "apikey",
		"auth", "authorization",
		"private_key", "privatekey",
	}

	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}

	return false
}

// maskValue masks a sensitive value, keeping a short prefix for
// identification.
func maskValue(v string) string {
	if len(v) <= 4 {
		return "***"
	}
	return v[:4] + "***"
}

// RedactEmail redacts an email address partially (shows first char and domain).
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	username := parts[0]
	domain := parts[1]

	if len(username) == 0 {
		return "***@" + domain
	}

	return string(username[0]) + "***@" + domain
}

// RedactAPIKey redacts an API key, keeping only a prefix.
func RedactAPIKey(apiKey string) string {
	if len(apiKey) <= 4 {
		return "***"
	}

	return apiKey[:4] + "***"
}

// RedactingHandler is a slog.Handler that scrubs PII from every record
// before passing it to the wrapped handler.
type RedactingHandler struct {
	next     slog.Handler
	redactor *Redactor
}

// NewRedactingHandler wraps next so records are redacted before output.
// A nil redactor gets the built-in pattern set.
func NewRedactingHandler(next slog.Handler, redactor *Redactor) *RedactingHandler {
	if redactor == nil {
		redactor = NewRedactor()
	}
	return &RedactingHandler{
		next:     next,
		redactor: redactor,
	}
}

// Enabled reports whether the wrapped handler handles records at the
// given level.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle rebuilds the record with redacted message and attributes.
func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.NewRecord(record.Time, record.Level, h.redactor.RedactString(record.Message), record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		clean.AddAttrs(h.redactor.redactAttr(attr))
		return true
	})
	return h.next.Handle(ctx, clean)
}

// WithAttrs redacts the attributes before attaching them downstream.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		redacted[i] = h.redactor.redactAttr(attr)
	}
	return &RedactingHandler{
		next:     h.next.WithAttrs(redacted),
		redactor: h.redactor,
	}
}

// WithGroup opens a group on the wrapped handler.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{
		next:     h.next.WithGroup(name),
		redactor: h.redactor,
	}
}
