//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly
// +build linux darwin freebsd netbsd openbsd dragonfly

package store

import (
	"os"

	"golang.org/x/sys/unix"
)

// flockExclusive acquires an exclusive advisory lock on f, waiting until the
// OS grants it.
func flockExclusive(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

// tryFlockExclusive is the non-blocking variant. It reports ErrWouldBlock
// when the lock is held elsewhere.
func tryFlockExclusive(f *os.File) error {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == unix.EWOULDBLOCK || err == unix.EAGAIN {
		return ErrWouldBlock
	}
	return err
}

// funlock drops the advisory lock. Closing the descriptor has the same
// effect, so failures here are not fatal.
func funlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
