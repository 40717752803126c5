package store

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ChangeType classifies an external modification to a watched file.
type ChangeType int

const (
	ChangeWrite ChangeType = iota
	ChangeRemove
	ChangeRename
)

func (c ChangeType) String() string {
	switch c {
	case ChangeWrite:
		return "write"
	case ChangeRemove:
		return "remove"
	case ChangeRename:
		return "rename"
	default:
		return "unknown"
	}
}

// ChangeEvent reports that a watched file was modified by another actor.
type ChangeEvent struct {
	Path string
	Type ChangeType
}

// Watcher reports external modifications to watched files. With a non-nil
// Locker it only reports paths that Locker currently holds — another actor
// writing to a file we have locked means someone is not honoring the
// advisory lock protocol. With a nil Locker every watched path is reported.
type Watcher struct {
	locker *Locker
	fsw    *fsnotify.Watcher
	events chan ChangeEvent

	done      chan struct{}
	closeOnce sync.Once
}

// NewWatcher starts a watcher. Close it when done.
func NewWatcher(locker *Locker) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &Watcher{
		locker: locker,
		fsw:    fsw,
		events: make(chan ChangeEvent, 16),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Watch adds a file or directory to the watch set.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path %s: %w", path, err)
	}
	if err := w.fsw.Add(abs); err != nil {
		return fmt.Errorf("watching %s: %w", abs, err)
	}
	return nil
}

// Unwatch removes a path from the watch set. Unknown paths are a no-op.
func (w *Watcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path %s: %w", path, err)
	}
	if err := w.fsw.Remove(abs); err != nil && !fsnotifyNotWatched(err) {
		return err
	}
	return nil
}

// Events returns the channel change reports arrive on. It is closed when the
// Watcher shuts down.
func (w *Watcher) Events() <-chan ChangeEvent { return w.events }

// Close stops the watcher and releases its OS resources.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.events)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	var ct ChangeType
	switch {
	case ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create):
		ct = ChangeWrite
	case ev.Op.Has(fsnotify.Remove):
		ct = ChangeRemove
	case ev.Op.Has(fsnotify.Rename):
		ct = ChangeRename
	default:
		return
	}

	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}
	if w.locker != nil {
		if !w.locker.HasLock(abs) {
			return
		}
		slog.Warn("External modification of locked file", "path", abs, "event", ct.String())
	}

	select {
	case w.events <- ChangeEvent{Path: abs, Type: ct}:
	case <-w.done:
	}
}

func fsnotifyNotWatched(err error) bool {
	return err == fsnotify.ErrNonExistentWatch
}
