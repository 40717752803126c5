package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitForEvent(t *testing.T, w *Watcher, path string, timeout time.Duration) *ChangeEvent {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				t.Fatal("event channel closed unexpectedly")
			}
			if ev.Path == path {
				return &ev
			}
		case <-deadline:
			return nil
		}
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.mk")

	w, err := NewWatcher(nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("content"), 0o660); err != nil {
		t.Fatal(err)
	}

	ev := waitForEvent(t, w, path, 3*time.Second)
	if ev == nil {
		t.Fatal("no change event arrived")
	}
	if ev.Type != ChangeWrite {
		t.Errorf("event type = %s, want write", ev.Type)
	}
}

func TestWatcherFiltersToLockedPaths(t *testing.T) {
	dir := t.TempDir()
	locked := filepath.Join(dir, "locked.mk")
	unlocked := filepath.Join(dir, "unlocked.mk")

	l := NewLocker()
	if err := l.Acquire(locked); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer l.ReleaseAll()

	w, err := NewWatcher(l)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	// A write to an unheld path must not be reported, a write to a held one
	// must.
	if err := os.WriteFile(unlocked, []byte("x"), 0o660); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(locked, []byte("y"), 0o660); err != nil {
		t.Fatal(err)
	}

	ev := waitForEvent(t, w, locked, 3*time.Second)
	if ev == nil {
		t.Fatal("no change event for the locked path arrived")
	}

	select {
	case ev := <-w.Events():
		if ev.Path == unlocked {
			t.Errorf("unexpected event for unheld path: %+v", ev)
		}
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherClose(t *testing.T) {
	w, err := NewWatcher(nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Closing twice is safe.
	if err := w.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	select {
	case _, ok := <-w.Events():
		if ok {
			// A buffered event may still drain; the channel must close after.
			for range w.Events() {
			}
		}
	case <-time.After(time.Second):
		t.Fatal("event channel did not close after Close")
	}
}

func TestUnwatchUnknownPath(t *testing.T) {
	w, err := NewWatcher(nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := w.Unwatch(filepath.Join(t.TempDir(), "never-watched")); err != nil {
		t.Errorf("Unwatch of an unknown path should be a no-op, got: %v", err)
	}
}
