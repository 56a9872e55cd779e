// Package logger provides logging utilities for the news clipper.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Logger provides structured logging functionality.
type Logger struct {
	internal *slog.Logger
	level    *slog.LevelVar
	runLog   io.Writer
	closer   io.Closer
}

// NewLogger creates a new logger instance with the specified level.
func NewLogger(level string) *Logger {
	return newLogger(os.Stderr, level)
}

// NewLoggerWithWriter creates a logger that writes to w instead of stderr.
func NewLoggerWithWriter(w io.Writer, level string) *Logger {
	return newLogger(w, level)
}

// NewFileLogger creates a logger that writes structured records to stderr and
// keeps an append-only plain-text run log at runLogPath.
func NewFileLogger(level, runLogPath string) (*Logger, error) {
	l := newLogger(os.Stderr, level)

	if runLogPath == "" {
		return l, nil
	}

	if err := os.MkdirAll(filepath.Dir(runLogPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create run log directory: %w", err)
	}

	f, err := os.OpenFile(runLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}

	l.runLog = f
	l.closer = f

	return l, nil
}

func newLogger(w io.Writer, level string) *Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(ParseLevel(level))

	opts := &slog.HandlerOptions{
		Level: lvl,
	}

	handler := slog.NewTextHandler(w, opts)
	internal := slog.New(handler)

	return &Logger{
		internal: internal,
		level:    lvl,
	}
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Info logs an info level message.
func (l *Logger) Info(msg string, args ...any) {
	l.internal.Info(msg, args...)
}

// Error logs an error level message.
func (l *Logger) Error(msg string, args ...any) {
	l.internal.Error(msg, args...)
}

// Debug logs a debug level message.
func (l *Logger) Debug(msg string, args ...any) {
	l.internal.Debug(msg, args...)
}

// Warn logs a warning level message.
func (l *Logger) Warn(msg string, args ...any) {
	l.internal.Warn(msg, args...)
}

// With creates a child logger with the given attributes.
// The child shares the parent's run log.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		internal: l.internal.With(args...),
		level:    l.level,
		runLog:   l.runLog,
	}
}

// Log logs a message with the given level and attributes.
func (l *Logger) Log(ctx context.Context, level slog.Level, msg string, args ...any) {
	l.internal.Log(ctx, level, msg, args...)
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(level string) {
	l.level.Set(ParseLevel(level))
}

// Record appends a timestamped line to the run log, if one is configured.
// Lines look like "Script started at 2024-05-01 09:00:00".
func (l *Logger) Record(format string, args ...any) {
	if l.runLog == nil {
		return
	}

	line := fmt.Sprintf(format, args...)
	stamp := time.Now().Format("2006-01-02 15:04:05.000000")

	if _, err := fmt.Fprintf(l.runLog, "%s at %s\n", line, stamp); err != nil {
		l.internal.Warn("failed to append to run log", "error", err)
	}
}

// RecordError appends "<event> at <time>: <err>" to the run log.
func (l *Logger) RecordError(event string, err error) {
	if l.runLog == nil || err == nil {
		return
	}

	stamp := time.Now().Format("2006-01-02 15:04:05.000000")

	if _, werr := fmt.Fprintf(l.runLog, "%s at %s: %v\n", event, stamp, err); werr != nil {
		l.internal.Warn("failed to append to run log", "error", werr)
	}
}

// Close releases the run log file.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}

	return l.closer.Close()
}
