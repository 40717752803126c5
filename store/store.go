// Package store provides crash-safe, cross-process-coordinated access to
// on-disk configuration files. Writers serialize through exclusive advisory
// file locks and every save goes through an atomic temp-file-plus-rename
// protocol, so a reader never observes a partially written file.
//
// A Store bundles a per-worker lock registry with the typed load/save
// helpers. Construct one Store per worker:
//
//	s := store.New()
//	defer s.Locker().ReleaseAll()
//
//	err := s.Locker().WithLock(path, func() error {
//		v, err := s.LoadObject(path, map[string]any{}, false)
//		if err != nil {
//			return err
//		}
//		// mutate v ...
//		return s.SaveObject(path, v, true)
//	})
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mkstore/store/literal"
)

// Store is the load/save facade over the lock manager and the atomic writer.
// Like its Locker, a Store belongs to a single worker.
type Store struct {
	locker  *Locker
	backups *BackupManager
}

// Option configures a Store.
type Option func(*Store)

// WithLocker makes the Store use an existing lock registry instead of a
// fresh one.
func WithLocker(l *Locker) Option {
	return func(s *Store) { s.locker = l }
}

// WithBackupRetention makes every save keep a copy of the previous file
// content, pruned to the n most recent copies.
func WithBackupRetention(n int) Option {
	return func(s *Store) { s.backups = NewBackupManager(n) }
}

// New creates a Store for the calling worker.
func New(opts ...Option) *Store {
	s := &Store{locker: NewLocker()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Locker exposes the Store's lock registry.
func (s *Store) Locker() *Locker { return s.locker }

// loadData reads the raw content of path. A missing file yields nil content
// and no error. With lock=true the path's lock is held for the duration of
// the read only, and released before any error propagates.
func (s *Store) loadData(path string, lock bool) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	if lock {
		if err := s.locker.Acquire(abs); err != nil {
			return nil, &ReadError{Path: abs, Err: err}
		}
		defer s.locker.Release(abs)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &ReadError{Path: abs, Err: err}
	}
	return data, nil
}

// LoadBytes returns the content of path, or def when the file is missing or
// empty.
func (s *Store) LoadBytes(path string, def []byte, lock bool) ([]byte, error) {
	data, err := s.loadData(path, lock)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return def, nil
	}
	return data, nil
}

// LoadText returns the content of path decoded as UTF-8, or def when the
// file is missing or empty.
func (s *Store) LoadText(path string, def string, lock bool) (string, error) {
	data, err := s.loadData(path, lock)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return def, nil
	}
	return string(data), nil
}

// LoadObject parses the literal value stored at path, as written by
// SaveObject. A missing or empty file yields def.
func (s *Store) LoadObject(path string, def any, lock bool) (any, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	data, err := s.loadData(abs, lock)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return def, nil
	}
	v, err := literal.Parse(string(data))
	if err != nil {
		return nil, &ReadError{Path: abs, Err: err}
	}
	return v, nil
}

// LoadMKFile applies the config script at path to the caller-supplied
// defaults map and returns it. The defaults map must carry every variable the
// script may reference, with its default value set.
func (s *Store) LoadMKFile(path string, defaults map[string]any, lock bool) (map[string]any, error) {
	if defaults == nil {
		return nil, fmt.Errorf("loading %s: a defaults map with all expected keys is required", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	data, err := s.loadData(abs, lock)
	if err != nil {
		return nil, err
	}
	if err := ApplyScript(string(data), defaults); err != nil {
		return nil, &ReadError{Path: abs, Err: err}
	}
	return defaults, nil
}

// LoadFromMKFile reads a single variable from a config script file.
func (s *Store) LoadFromMKFile(path, key string, def any) (any, error) {
	vars, err := s.LoadMKFile(path, map[string]any{key: def}, false)
	if err != nil {
		return nil, err
	}
	return vars[key], nil
}

// SaveBytes persists content at path atomically with the given permission
// bits.
func (s *Store) SaveBytes(path string, content []byte, mode os.FileMode) error {
	return s.saveData(path, content, mode)
}

// SaveText persists text content at path atomically.
func (s *Store) SaveText(path string, content string, mode os.FileMode) error {
	return s.saveData(path, []byte(content), mode)
}

// SaveObject renders value in the literal format and persists it atomically.
// With pretty=true large containers are written one element per line.
func (s *Store) SaveObject(path string, value any, pretty bool) error {
	var rendered string
	var err error
	if pretty {
		rendered, err = literal.RenderPretty(value)
	} else {
		rendered, err = literal.Render(value)
	}
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return s.saveData(path, []byte(rendered+"\n"), FileMode)
}

// SaveMKFile persists a config script fragment, optionally prefixed with the
// generator header comment.
func (s *Store) SaveMKFile(path, content string, header bool) error {
	var out string
	if header {
		out = "# Written by mkstore\n\n"
	}
	out += content + "\n"
	return s.saveData(path, []byte(out), FileMode)
}

// SaveToMKFile persists a single-variable config script: maps are stored as
// "key.update({...})", everything else as "key += value".
func (s *Store) SaveToMKFile(path, key string, value any, pretty bool) error {
	stmt, err := FormatAssignment(key, value, pretty)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return s.SaveMKFile(path, stmt, true)
}
