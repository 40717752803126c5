package store

import (
	"errors"
	"os"
)

// Default permission bits for configuration files and the directories that
// hold them.
const (
	FileMode os.FileMode = 0o660
	DirMode  os.FileMode = 0o770
)

// Mkdir creates a single directory level. An already existing directory is
// not an error.
func Mkdir(path string, mode os.FileMode) error {
	if err := os.Mkdir(path, mode); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	return nil
}

// MakeDirs creates a directory and all missing parents.
func MakeDirs(path string, mode os.FileMode) error {
	return os.MkdirAll(path, mode)
}
