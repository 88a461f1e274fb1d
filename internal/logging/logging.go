// Package logging provides structured logging for lectio on top of slog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey ContextKey = "request_id"
)

var defaultLogger atomic.Pointer[slog.Logger]

func init() {
	InitLogger(LevelInfo, FormatText)
}

// Level represents a log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel accepts debug, info, warn (or warning) and error, in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "text"
}

// ParseFormat accepts json or text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "", "text":
		return FormatText, nil
	}
	return FormatText, fmt.Errorf("unknown log format %q", s)
}

// InitLogger initializes the global logger writing to stderr. Stdout is
// left to command output.
func InitLogger(level Level, format Format) {
	InitLoggerTo(os.Stderr, level, format)
}

// InitLoggerTo initializes the global logger writing to w.
func InitLoggerTo(w io.Writer, level Level, format Format) {
	logger := NewLogger(w, level, format)
	defaultLogger.Store(logger)
	slog.SetDefault(logger)
}

// NewLogger builds a logger without installing it.
func NewLogger(w io.Writer, level Level, format Format) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// GetLogger returns the global logger instance.
func GetLogger() *slog.Logger {
	return defaultLogger.Load()
}

// SetLogger replaces the global logger and returns the previous one.
func SetLogger(l *slog.Logger) *slog.Logger {
	return defaultLogger.Swap(l)
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// LoggerFromContext returns a logger with context values attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()
	if requestID := GetRequestID(ctx); requestID != "" {
		logger = logger.With("request_id", requestID)
	}
	return logger
}

func Debug(msg string, args ...any) { GetLogger().Debug(msg, args...) }
func Info(msg string, args ...any)  { GetLogger().Info(msg, args...) }
func Warn(msg string, args ...any)  { GetLogger().Warn(msg, args...) }
func Error(msg string, args ...any) { GetLogger().Error(msg, args...) }

// DebugContext logs a debug message with context.
func DebugContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Debug(msg, args...)
}

// InfoContext logs an info message with context.
func InfoContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Info(msg, args...)
}

// WarnContext logs a warning message with context.
func WarnContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Warn(msg, args...)
}

// ErrorContext logs an error message with context.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Error(msg, args...)
}

// logEvent logs msg with the fixed attributes followed by the caller's extras.
func logEvent(l *slog.Logger, level slog.Level, msg string, extra []any, fixed ...any) {
	l.Log(context.Background(), level, msg, append(fixed, extra...)...)
}

// HTTPRequestContext logs one served request. Server errors log at error
// level and client errors at warn.
func HTTPRequestContext(ctx context.Context, method, path, remoteAddr string, statusCode int, duration time.Duration, args ...any) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}
	logEvent(LoggerFromContext(ctx), level, "http_request", args,
		"method", method,
		"path", path,
		"remote_addr", remoteAddr,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds())
}

// CatalogLoaded logs a catalog becoming available.
func CatalogLoaded(name, source string, books int, fingerprint string, args ...any) {
	logEvent(GetLogger(), slog.LevelInfo, "catalog_loaded", args,
		"catalog", name, "source", source, "books", books, "fingerprint", fingerprint)
}

// CatalogReloaded logs a hot swap of the serving catalog. changed is false
// when the new file had the same fingerprint and the swap was skipped.
func CatalogReloaded(path, fingerprint string, changed bool, args ...any) {
	logEvent(GetLogger(), slog.LevelInfo, "catalog_reloaded", args,
		"path", path, "fingerprint", fingerprint, "changed", changed)
}

// CitationParsed logs a successful parse at debug level.
func CitationParsed(ctx context.Context, citation string, locations int, args ...any) {
	logEvent(LoggerFromContext(ctx), slog.LevelDebug, "citation_parsed", args,
		"citation", citation, "locations", locations)
}

// CitationRejected logs a citation that failed validation or resolved to
// nothing.
func CitationRejected(ctx context.Context, citation string, err error, args ...any) {
	logEvent(LoggerFromContext(ctx), slog.LevelWarn, "citation_rejected", args,
		"citation", citation, "error", err.Error())
}

// WebSocketEvent logs a hub event such as "connect" or "disconnect".
func WebSocketEvent(name string, clientCount int, args ...any) {
	logEvent(GetLogger(), slog.LevelInfo, "websocket_event", args,
		"event", name, "client_count", clientCount)
}

func ServerStartup(serverType, protocol string, port int, args ...any) {
	logEvent(GetLogger(), slog.LevelInfo, "server_startup", args,
		"server_type", serverType, "protocol", protocol, "port", port)
}
