package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// internalErrorBody is written verbatim after a panic. The handler state is
// unknown at that point, so nothing is marshaled.
const internalErrorBody = `{"error":{"message":"An internal error occurred. Please try again later.","type":"server_error","code":"internal_error"}}` + "\n"

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a 500
// response in the admin API's JSON error format. The panic is logged with a
// stack trace; no internal details reach the client.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()

				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(stack),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, internalErrorBody)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
