package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
)

// Initialize sets up the process logger writing to stdout.
func Initialize(level, format string) {
	InitializeWithWriter(os.Stdout, level, format)
}

// InitializeWithWriter sets up the process logger on an arbitrary writer.
// Tests use it to capture output.
func InitializeWithWriter(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler).With("app", "shopbooking")

	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	slog.SetDefault(l)
}

// ParseLevel maps a config string onto a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get returns the process logger, initializing a text/info logger on first use.
func Get() *slog.Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l == nil {
		Initialize("info", "text")
		mu.RLock()
		l = defaultLogger
		mu.RUnlock()
	}
	return l
}

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }
func Info(msg string, args ...any)  { Get().Info(msg, args...) }
func Warn(msg string, args ...any)  { Get().Warn(msg, args...) }
func Error(msg string, args ...any) { Get().Error(msg, args...) }

func DebugContext(ctx context.Context, msg string, args ...any) {
	Get().DebugContext(ctx, msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	Get().InfoContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	Get().WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	Get().ErrorContext(ctx, msg, args...)
}

// WithComponent returns a logger tagged with the owning component
// (e.g. "reconciliation", "dispatcher").
func WithComponent(name string) *slog.Logger {
	return Get().With("component", name)
}

// WithBooking returns a logger tagged with a booking id.
func WithBooking(bookingID string) *slog.Logger {
	return Get().With("booking_id", bookingID)
}

// EnterMethod logs method entry at debug level.
func EnterMethod(methodName string, args ...any) {
	Get().Debug("→ Method entered", prepend(args, "method", methodName, "event", "enter")...)
}

// ExitMethod logs a successful method exit at debug level.
func ExitMethod(methodName string, args ...any) {
	Get().Debug("← Method exited", prepend(args, "method", methodName, "event", "exit")...)
}

// ExitMethodWithError logs a failed method exit at error level.
func ExitMethodWithError(methodName string, err error, args ...any) {
	Get().Error("← Method exited with error", prepend(args, "method", methodName, "event", "exit", "error", err)...)
}

// DatabaseCall logs an outgoing store operation.
func DatabaseCall(operation, query string, args ...any) {
	Get().Debug("→ Database call", prepend(args, "operation", operation, "query", query)...)
}

// DatabaseResult logs the outcome of a store operation.
func DatabaseResult(operation string, rowsAffected int64, err error, args ...any) {
	all := prepend(args, "operation", operation, "rows_affected", rowsAffected)
	if err != nil {
		Get().Error("← Database call failed", append(all, "error", err)...)
		return
	}
	Get().Debug("← Database call succeeded", all...)
}

// ExternalServiceCall logs a call to a processor, mail provider or broker.
func ExternalServiceCall(service, operation string, args ...any) {
	Get().Debug("→ External service call", prepend(args, "service", service, "operation", operation)...)
}

// ExternalServiceResult logs the outcome of an external call.
func ExternalServiceResult(service, operation string, err error, args ...any) {
	all := prepend(args, "service", service, "operation", operation)
	if err != nil {
		Get().Warn("← External service call failed", append(all, "error", err)...)
		return
	}
	Get().Debug("← External service call succeeded", all...)
}

func prepend(args []any, head ...any) []any {
	out := make([]any, 0, len(head)+len(args))
	out = append(out, head...)
	return append(out, args...)
}
