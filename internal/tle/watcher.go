package tle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the quiet period after the last filesystem event
// before a reload fires, so an editor's write-then-rename sequence
// coalesces into a single reload.
const defaultDebounce = 500 * time.Millisecond

// Watcher monitors a local TLE feed file and reloads the Store whenever the
// file changes. The parent directory is watched because many writers
// replace the file atomically via rename.
type Watcher struct {
	path     string
	debounce time.Duration
	store    *Store
	logger   *slog.Logger

	// OnLoad, if set, is called after each successful reload.
	OnLoad func(*Dataset)
}

// NewWatcher creates a Watcher for the feed file at path.
func NewWatcher(path string, debounce time.Duration, store *Store, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		store:    store,
		logger:   logger,
	}
}

// Run loads the file once, then blocks watching for changes until ctx is
// canceled. Reload failures are logged, not fatal: the previous dataset
// stays in place.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.reload(); err != nil {
		w.logger.Warn("initial feed load failed", "path", w.path, "error", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "path", w.path, "error", err)

		case <-timerC:
			timer = nil
			timerC = nil
			if err := w.reload(); err != nil {
				w.logger.Warn("feed reload failed", "path", w.path, "error", err)
			}
		}
	}
}

func (w *Watcher) reload() error {
	f, err := os.Open(w.path)
	if err != nil {
		return fmt.Errorf("opening feed file: %w", err)
	}
	defer f.Close()

	entries, err := ParseCatalog(f, w.logger)
	if err != nil {
		return err
	}

	w.store.Lock()
	defer w.store.Unlock()

	ds := NewDataset("file:"+w.path, time.Now().UTC(), entries)
	w.store.Set(ds)
	w.logger.Info("feed reloaded", "path", w.path, "satellites", len(entries))
	if w.OnLoad != nil {
		w.OnLoad(ds)
	}
	return nil
}
