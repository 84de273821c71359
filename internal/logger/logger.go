package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

func options(level log.Level) log.Options {
	return log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	}
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	return &Logger{Logger: log.NewWithOptions(w, options(log.InfoLevel))}
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	return &Logger{Logger: log.NewWithOptions(w, options(level))}
}

// NewFileLogger creates a logger that appends to a file
func NewFileLogger(path string, level log.Level) (*Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		f.Close()
	}

	return NewWithLevel(f, level), cleanup, nil
}

// NewMultiLogger creates a logger that writes to multiple outputs
func NewMultiLogger(level log.Level, writers ...io.Writer) *Logger {
	return NewWithLevel(io.MultiWriter(writers...), level)
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// ParseLevel maps a config level name to a charm level. Unknown names
// fall back to info.
func ParseLevel(name string) log.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ParseCompleted logs a Markdown to blocks conversion
func (l *Logger) ParseCompleted(source string, blocks int, duration time.Duration) {
	l.Debug("parse completed",
		"source", source,
		"blocks", blocks,
		"duration", duration.Round(time.Microsecond))
}

// RenderCompleted logs a blocks to Markdown conversion
func (l *Logger) RenderCompleted(source string, bytes int, duration time.Duration) {
	l.Debug("render completed",
		"source", source,
		"bytes", bytes,
		"duration", duration.Round(time.Microsecond))
}

// ConversionError logs a conversion error
func (l *Logger) ConversionError(source, dest string, err error) {
	l.Error("conversion failed",
		"source", source,
		"dest", dest,
		"error", err)
}

func (l *Logger) PullStarted(pageID string) {
	l.Info("pull started", "page", pageID)
}

func (l *Logger) PullCompleted(pageID string, blocks int, duration time.Duration) {
	l.Info("pull completed",
		"page", pageID,
		"blocks", blocks,
		"duration", duration.Round(time.Millisecond))
}

func (l *Logger) PushStarted(pageID, source string) {
	l.Info("push started",
		"page", pageID,
		"source", source)
}

func (l *Logger) PushCompleted(pageID string, blocks int, duration time.Duration) {
	l.Info("push completed",
		"page", pageID,
		"blocks", blocks,
		"duration", duration.Round(time.Millisecond))
}

// PushSkipped logs a note that sync did not push
func (l *Logger) PushSkipped(file, reason string) {
	l.Debug("push skipped",
		"file", file,
		"reason", reason)
}

// FileError logs an error for a specific file
func (l *Logger) FileError(file string, err error) {
	l.Error("file error",
		"file", file,
		"error", err)
}

// SyncStarted logs the start of a sync run
func (l *Logger) SyncStarted(notesDir string) {
	l.Info("sync started", "notes_dir", notesDir)
}

// SyncCompleted logs the completion of a sync run
func (l *Logger) SyncCompleted(filesPushed int, errors int, duration time.Duration) {
	l.Info("sync completed",
		"files_synced", filesPushed,
		"errors", errors,
		"duration", duration.Round(time.Millisecond))
}

// ResolveFailed logs a mention lookup that fell back to the raw value
func (l *Logger) ResolveFailed(kind, value string) {
	l.Debug("mention not resolved",
		"kind", kind,
		"value", value)
}

// StateError logs a state-related error
func (l *Logger) StateError(operation string, err error) {
	l.Error("state error",
		"operation", operation,
		"error", err)
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(notesDir string, pageSize int, timeout time.Duration) {
	l.Debug("config loaded",
		"notes_dir", notesDir,
		"page_size", pageSize,
		"request_timeout", timeout)
}
