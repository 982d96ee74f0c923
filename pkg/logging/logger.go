// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging sets up structured logging for the betting panel.
//
// Logs always go to stderr so container runtimes and the CLI capture
// them. When a log directory is configured the same records are also
// appended, as JSON, to a per-service daily file for later inspection.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Config controls log destinations and verbosity.
type Config struct {
	// Level is the minimum level written. Zero value is slog.LevelInfo.
	Level slog.Level

	// LogDir, when non-empty, enables a daily JSON log file named
	// "{service}_{YYYY-MM-DD}.log" in that directory. A leading ~ is
	// expanded to the user's home directory.
	LogDir string

	// Service is attached to every record as the "service" attribute
	// and names the log file. Defaults to "panel".
	Service string

	// JSON switches the stderr stream from text to JSON output.
	// File output is always JSON.
	JSON bool
}

// Logger owns the configured slog handler chain and the optional
// log file. Close it when the process shuts down.
type Logger struct {
	slog *slog.Logger
	file *os.File
}

// New builds a Logger from cfg. File logging failures are not fatal:
// the panel must come up even when the log volume is read-only, so a
// broken LogDir degrades to stderr-only output.
func New(cfg Config) *Logger {
	if cfg.Service == "" {
		cfg.Service = "panel"
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var stderr slog.Handler
	if cfg.JSON {
		stderr = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		stderr = slog.NewTextHandler(os.Stderr, opts)
	}

	l := &Logger{}
	handler := stderr
	if cfg.LogDir != "" {
		if f := openLogFile(expandPath(cfg.LogDir), cfg.Service); f != nil {
			l.file = f
			handler = &teeHandler{stderr, slog.NewJSONHandler(f, opts)}
		}
	}

	handler = handler.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	l.slog = slog.New(handler)
	return l
}

// Default returns an info-level stderr logger for the panel.
func Default() *Logger {
	return New(Config{})
}

// Slog returns the underlying slog.Logger, suitable for
// slog.SetDefault.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Close syncs and closes the log file, if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		l.file.Close()
		return fmt.Errorf("sync log file: %w", err)
	}
	return l.file.Close()
}

func openLogFile(dir, service string) *os.File {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil
	}
	name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return nil
	}
	return f
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// teeHandler duplicates records onto the stderr and file handlers.
type teeHandler struct {
	a, b slog.Handler
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.a.Enabled(ctx, level) || h.b.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.a.Enabled(ctx, r.Level) {
		if err := h.a.Handle(ctx, r); err != nil {
			return err
		}
	}
	if h.b.Enabled(ctx, r.Level) {
		return h.b.Handle(ctx, r.Clone())
	}
	return nil
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{h.a.WithAttrs(attrs), h.b.WithAttrs(attrs)}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{h.a.WithGroup(name), h.b.WithGroup(name)}
}
