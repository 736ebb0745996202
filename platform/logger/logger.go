// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSessionID returns a logger with the import session ID attached.
func (l *Logger) WithSessionID(sessionID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("session_id", sessionID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// HTTPError logs an HTTP error
func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.Error("http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("client_ip", clientIP),
	)
}

// ImportEvent logs import pipeline lifecycle events for one session.
func (l *Logger) ImportEvent(event, sessionID string, current, total int) {
	l.Info("import_event",
		slog.String("event", event),
		slog.String("session_id", sessionID),
		slog.Int("current", current),
		slog.Int("total", total),
	)
}

// ImportRowError logs a non-fatal per-row import failure.
func (l *Logger) ImportRowError(sessionID string, row int, reason string, err error) {
	attrs := []any{
		slog.String("session_id", sessionID),
		slog.Int("row", row),
		slog.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.Warn("import_row_error", attrs...)
}

// EmailEvent logs outreach email delivery outcomes.
func (l *Logger) EmailEvent(event, recipient string, success bool, reason string) {
	if success {
		l.Info("email_event",
			slog.String("event", event),
			slog.String("recipient", recipient),
			slog.Bool("success", success),
		)
	} else {
		l.Warn("email_event",
			slog.String("event", event),
			slog.String("recipient", recipient),
			slog.Bool("success", success),
			slog.String("reason", reason),
		)
	}
}

// DatastoreError logs remote datastore errors
func (l *Logger) DatastoreError(operation string, err error) {
	l.Error("datastore_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
