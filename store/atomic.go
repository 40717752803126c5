package store

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
)

// saveData writes content to path atomically: the bytes go to a temporary
// sibling file, then a rename switches readers over in one indivisible step,
// so a concurrent reader sees either the fully old or the fully new content.
//
// The path lock is (re-)acquired for the duration of the write. Callers are
// expected to hold it already when coordinating a read-modify-write; the
// defensive acquisition is a no-op in that case and covers callers that
// forgot. Note that acquiring the lock creates the file with 0 bytes when it
// did not exist yet; loads treat an empty file like a missing one.
//
// There is deliberately no fsync before the rename: the contract is atomic
// visibility between cooperating processes, not durability across an OS
// crash. Flushing the disk cache on every config write costs more than the
// narrow crash window is worth.
func (s *Store) saveData(path string, content []byte, mode os.FileMode) (err error) {
	abs, absErr := filepath.Abs(path)
	if absErr != nil {
		return &WriteError{Path: path, Err: absErr}
	}

	if lockErr := s.locker.Acquire(abs); lockErr != nil {
		return &WriteError{Path: abs, Err: lockErr}
	}
	defer s.locker.Release(abs)

	tmp, tmpErr := os.CreateTemp(filepath.Dir(abs), "."+filepath.Base(abs)+".new*")
	if tmpErr != nil {
		return &WriteError{Path: abs, Err: tmpErr}
	}
	tmpName := tmp.Name()
	defer func() {
		if err == nil {
			return
		}
		tmp.Close()
		if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.Warn("Failed to remove temporary file", "path", tmpName, "error", rmErr)
		}
	}()

	// Explicit permission bits; CreateTemp uses 0600 and we must not depend
	// on the umask either.
	if chmodErr := tmp.Chmod(mode); chmodErr != nil {
		return &WriteError{Path: abs, Err: chmodErr}
	}
	if _, writeErr := tmp.Write(content); writeErr != nil {
		return &WriteError{Path: abs, Err: writeErr}
	}
	if closeErr := tmp.Close(); closeErr != nil {
		return &WriteError{Path: abs, Err: closeErr}
	}

	if s.backups != nil {
		if _, backupErr := s.backups.CreateBackup(abs); backupErr != nil {
			return &WriteError{Path: abs, Err: backupErr}
		}
	}

	if renameErr := os.Rename(tmpName, abs); renameErr != nil {
		return &WriteError{Path: abs, Err: renameErr}
	}

	if s.backups != nil {
		if pruneErr := s.backups.CleanupOldBackups(abs); pruneErr != nil {
			// The new content is already in place; losing a prune is not
			// worth failing the save.
			slog.Warn("Failed to prune old backups", "path", abs, "error", pruneErr)
		}
	}
	return nil
}
