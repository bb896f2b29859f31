package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the slog handler used for output
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Logger wraps slog.Logger with consistent field names for row decoding.
type Logger struct {
	*slog.Logger
}

// ParseLevel maps a config level name to a slog.Level. An empty name means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %q", level)
	}
}

// ParseFormat maps a config format name to a Format. An empty name means text.
func ParseFormat(format string) (Format, error) {
	switch Format(strings.ToLower(format)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid log format: %q", format)
	}
}

// New creates a Logger writing to w (os.Stderr when nil).
func New(level, format string, w io.Writer) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if f == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}, nil
}

// Noop creates a Logger that discards all log output.
func Noop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))}
}

// WithDataset adds a dataset field to the logger.
func (l *Logger) WithDataset(id string) *Logger {
	return &Logger{Logger: l.Logger.With("dataset", id)}
}

// LogDecode logs a decode operation.
func (l *Logger) LogDecode(ctx context.Context, typeTag string, variants, rows, dropped int, err error) {
	if err != nil {
		l.WarnContext(ctx, "decode failed",
			"type", typeTag,
			"variants", variants,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "decode completed",
		"type", typeTag,
		"variants", variants,
		"rows", rows,
		"dropped_bytes", dropped,
	)
}

// LogPut logs a dataset write.
func (l *Logger) LogPut(ctx context.Context, id string, rows, size, stored int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dataset write failed", "error", err)
		return
	}
	l.InfoContext(ctx, "dataset stored",
		"dataset", id,
		"rows", rows,
		"size", size,
		"stored_size", stored,
	)
}

// LogDelete logs a dataset removal.
func (l *Logger) LogDelete(ctx context.Context, id string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dataset delete failed",
			"dataset", id,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "dataset deleted", "dataset", id)
}
