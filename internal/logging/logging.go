// Package logging configures the slog logger. The terminal belongs to the
// UI, so records go to a file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options selects the log destination and verbosity.
type Options struct {
	// Path of the log file. Empty discards records.
	Path  string
	Debug bool
}

// New builds a text logger and returns a func that closes its file.
func New(opts Options) (*slog.Logger, func() error, error) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: opts.Debug,
	}

	if opts.Path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, handlerOpts)), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, handlerOpts)), f.Close, nil
}

// Init builds the logger and installs it as the slog default.
func Init(opts Options) (*slog.Logger, func() error, error) {
	logger, closeFn, err := New(opts)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return logger, closeFn, nil
}
