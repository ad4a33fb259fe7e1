// Package logger provides structured logging utilities for the application.
// It wraps log/slog with JSON formatting and supports context-based logging
// with request IDs and module names.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	slogbetterstack "github.com/samber/slog-betterstack"
)

// Logger is the application logger
type Logger struct {
	*slog.Logger
	level slog.Level
	async *AsyncHandler // nil unless remote shipping is enabled
}

// Options configures optional log sinks.
type Options struct {
	// BetterStackToken enables shipping logs to Better Stack when set.
	BetterStackToken string
	// BetterStackEndpoint overrides the Better Stack ingesting host.
	BetterStackEndpoint string
	// Async tunes the buffer used for remote shipping.
	Async AsyncOptions
}

// New creates a new logger instance with JSON formatting
func New(level string) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter creates a new logger instance with JSON formatting writing to the provided writer
func NewWithWriter(level string, w io.Writer) *Logger {
	return NewWithOptions(level, w, Options{})
}

// NewWithOptions creates a logger writing JSON to w and, when configured,
// shipping the same records to Better Stack in the background.
func NewWithOptions(level string, w io.Writer, opts Options) *Logger {
	logLevel := parseLevel(level)

	handlerOpts := &slog.HandlerOptions{
		Level:       logLevel,
		ReplaceAttr: replaceAttr,
	}

	var handler slog.Handler = slog.NewJSONHandler(w, handlerOpts)

	var async *AsyncHandler
	if opts.BetterStackToken != "" {
		remote := slogbetterstack.Option{
			Level:    logLevel,
			Token:    opts.BetterStackToken,
			Endpoint: opts.BetterStackEndpoint,
			Timeout:  10 * time.Second,
		}.NewBetterstackHandler()
		async = NewAsyncHandler(remote, opts.Async)
		handler = NewMultiHandler(handler, async)
	}

	return &Logger{
		Logger: slog.New(NewContextHandler(handler)),
		level:  logLevel,
		async:  async,
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		a.Key = "timestamp"
	}
	if a.Key == slog.LevelKey {
		a.Key = "level"
		a.Value = slog.StringValue(levelName(a.Value.String()))
	}
	if a.Key == slog.MessageKey {
		a.Key = "message"
	}
	return a
}

func levelName(level string) string {
	if level == "WARN" {
		return "warning"
	}
	return strings.ToLower(level)
}

// Level returns the configured minimum level name ("debug", "info", "warning", "error").
func (l *Logger) Level() string {
	return levelName(l.level.String())
}

func (l *Logger) derive(next *slog.Logger) *Logger {
	return &Logger{Logger: next, level: l.level, async: l.async}
}

// WithModule creates a new entry with module field
func (l *Logger) WithModule(module string) *Logger {
	return l.derive(l.With("module", module))
}

// WithRequestID creates a new entry with request ID field
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.derive(l.With("request_id", requestID))
}

// WithError creates a new entry with error field
func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.With("error", err))
}

// WithField creates a new entry with a single field
func (l *Logger) WithField(key string, value any) *Logger {
	return l.derive(l.With(key, value))
}

// WithFields creates a new entry with multiple fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return l.derive(l.With(args...))
}

// Shutdown flushes logs queued for remote shipping.
func (l *Logger) Shutdown(ctx context.Context) error {
	if l == nil || l.async == nil {
		return nil
	}
	return l.async.Shutdown(ctx)
}

// RemoteEnabled reports whether records are shipped to Better Stack.
func (l *Logger) RemoteEnabled() bool {
	return l != nil && l.async != nil
}

// DroppedRemote returns how many records never reached Better Stack.
func (l *Logger) DroppedRemote() uint64 {
	if l == nil {
		return 0
	}
	return l.async.Dropped()
}

// Compatibility methods for logrus-style formatting

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.Debug(fmt.Sprintf(format, args...))
}
