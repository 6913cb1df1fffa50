// Package logger builds the process-wide structured event sink. Components
// receive the *slog.Logger by injection instead of reaching for a package
// singleton.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Config holds logger configuration.
type Config struct {
	Level string // debug, info, warn, error
	File  string // optional log file, duplicated alongside stderr
}

// New creates a structured logger writing to stderr and, if configured, a
// log file. The returned closer owns the file handle; it is a no-op when no
// file is configured.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
		closer = f
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
