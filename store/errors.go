package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by lock operations.
var (
	// ErrWouldBlock is returned by a non-blocking acquisition when the lock
	// is held by another process or worker.
	ErrWouldBlock = errors.New("file is locked by another process")

	// ErrLockTimeout is returned when a bounded wait for the subsystem-wide
	// configuration lock expires. It is distinct from context cancellation
	// so callers never swallow it alongside an interrupt.
	ErrLockTimeout = errors.New("timed out waiting for configuration lock")
)

// ReadError wraps any failure to read or decode a file. A missing file is not
// a ReadError; loads return the caller-supplied default instead.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("cannot read file %q: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps any failure while persisting a file: temporary file
// creation, the write itself, or the final rename.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot write file %q: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
