// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package predictions

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tireder/betting-tips/services/panel/merge"
)

// defaultDebounce batches rapid rewrites of the CSV (editors and
// uploaders often write in several chunks) into one reload.
const defaultDebounce = 500 * time.Millisecond

// ReloadHandler receives the freshly loaded rows after a change.
type ReloadHandler func(rows []merge.PredictionRow)

// Watcher reloads a prediction CSV whenever it changes on disk.
//
// # Thread Safety
//
// Safe for concurrent use. The handler is called from a single
// goroutine.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	handler  ReloadHandler
	debounce time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for the given CSV path. The parent
// directory is watched, not the file itself, so atomic replace
// (write temp, rename over) is picked up too.
func NewWatcher(path string, handler ReloadHandler) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("predictions watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("predictions watcher: watch %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{
		path:     path,
		watcher:  fw,
		handler:  handler,
		debounce: defaultDebounce,
		done:     make(chan struct{}),
	}, nil
}

// Start watches until the context is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Stop shuts the watcher down. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("predictions watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	rows, err := Load(w.path)
	if err != nil {
		slog.Warn("predictions reload failed", "path", w.path, "error", err)
		return
	}
	slog.Info("predictions reloaded", "path", w.path, "rows", len(rows))
	w.handler(rows)
}
