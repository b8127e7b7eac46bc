// Package logging provides run logging for the av1an CLI: a timestamped
// log file per invocation, built on log/slog so the on-disk format matches
// the rest of the ecosystem's structured-logging convention while the
// call sites keep the printf-style signatures the CLI was written against.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Level aliases slog's level type so callers never import log/slog directly.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger writes leveled, printf-style messages to a run log file.
type Logger struct {
	level    Level
	slog     *slog.Logger
	file     *os.File
	filePath string
}

// Setup creates a new logger that writes to a timestamped log file under
// logDir. Returns nil, nil if logging is disabled (noLog=true); callers
// must treat a nil *Logger as usable since every method is nil-safe.
func Setup(logDir string, verbose, noLog bool) (*Logger, error) {
	if noLog {
		return nil, nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("av1an_encode_run_%s.log", timestamp)
	filePath := filepath.Join(logDir, filename)

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", filePath, err)
	}

	level := LevelInfo
	if verbose {
		level = LevelDebug
	}

	handler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: level})

	l := &Logger{
		level:    level,
		slog:     slog.New(handler),
		file:     file,
		filePath: filePath,
	}

	l.Info("av1an encoder starting")
	if verbose {
		l.Info("Debug level logging enabled")
	}
	l.Info("Log file: %s", filePath)

	return l, nil
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// FilePath returns the path to the log file.
func (l *Logger) FilePath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// Info logs an info-level message.
func (l *Logger) Info(format string, args ...any) {
	if l == nil {
		return
	}
	l.slog.Info(fmt.Sprintf(format, args...))
}

// Debug logs a debug-level message (only if verbose mode is enabled).
func (l *Logger) Debug(format string, args ...any) {
	if l == nil || l.level > LevelDebug {
		return
	}
	l.slog.Debug(fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	if l == nil {
		return
	}
	l.slog.Warn(fmt.Sprintf(format, args...))
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	if l == nil {
		return
	}
	l.slog.Error(fmt.Sprintf(format, args...))
}

// Writer returns an io.Writer that writes to the log file. Useful for
// redirecting other loggers or capturing subprocess output.
func (l *Logger) Writer() io.Writer {
	if l == nil || l.file == nil {
		return io.Discard
	}
	return l.file
}
