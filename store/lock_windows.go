//go:build windows
// +build windows

package store

import (
	"os"

	"golang.org/x/sys/windows"
)

// flockExclusive acquires an exclusive lock on f via LockFileEx, waiting
// until the OS grants it.
func flockExclusive(f *os.File) error {
	var ol windows.Overlapped
	return windows.LockFileEx(windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK, 0, 1, 0, &ol)
}

// tryFlockExclusive is the non-blocking variant. It reports ErrWouldBlock
// when the lock is held elsewhere.
func tryFlockExclusive(f *os.File) error {
	var ol windows.Overlapped
	err := windows.LockFileEx(windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY, 0, 1, 0, &ol)
	if err == windows.ERROR_LOCK_VIOLATION {
		return ErrWouldBlock
	}
	return err
}

// funlock drops the lock taken by flockExclusive.
func funlock(f *os.File) error {
	var ol windows.Overlapped
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, &ol)
}
