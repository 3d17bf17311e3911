package tle

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestWatcherInitialLoadAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.tle")
	if err := os.WriteFile(path, []byte(golden()), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewStore()
	loads := make(chan *Dataset, 16)
	w := NewWatcher(path, 50*time.Millisecond, store, testLogger)
	w.OnLoad = func(ds *Dataset) { loads <- ds }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	if !waitFor(t, 5*time.Second, func() bool {
		ds := store.Get()
		return ds != nil && len(ds.Satellites) == 1
	}) {
		cancel()
		t.Fatal("initial load did not populate the store")
	}
	select {
	case <-loads:
	default:
		t.Error("OnLoad not called for initial load")
	}

	// Rewrite the feed with a second satellite and wait for the debounce
	// to flush the reload.
	van1, van2 := vanguardLines()
	feed := golden() + "VANGUARD 1\n" + van1 + "\n" + van2 + "\n"
	if err := os.WriteFile(path, []byte(feed), 0644); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 5*time.Second, func() bool {
		ds := store.Get()
		return ds != nil && len(ds.Satellites) == 2
	}) {
		cancel()
		t.Fatal("rewrite did not trigger a reload")
	}
	if ds := store.Get(); ds.Source != "file:"+path {
		t.Errorf("source = %q", ds.Source)
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}

// A missing file is not fatal: the watcher logs the failure and keeps
// waiting for the file to appear.
func TestWatcherMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.tle")

	store := NewStore()
	w := NewWatcher(path, 50*time.Millisecond, store, testLogger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	if err := os.WriteFile(path, []byte(golden()), 0644); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 5*time.Second, func() bool { return store.Get() != nil }) {
		cancel()
		t.Fatal("created file was not picked up")
	}

	cancel()
	<-done
}

func TestWatcherDefaultDebounce(t *testing.T) {
	w := NewWatcher("feed.tle", 0, NewStore(), testLogger)
	if w.debounce != defaultDebounce {
		t.Errorf("debounce = %v, want %v", w.debounce, defaultDebounce)
	}
}
