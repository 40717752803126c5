package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Locker tracks the exclusive advisory file locks held by one worker. Each
// worker (goroutine, job, request handler) should own its Locker; locks held
// by one Locker are invisible to every other Locker, and coordination between
// workers happens through the OS-level lock itself. The registry map is
// mutex-guarded so a mistakenly shared Locker corrupts nothing, but lock
// ownership semantics are per-worker.
//
// Acquisition is re-entrant and non-counting: acquiring a path already held
// by this Locker is a no-op, and a single Release fully unlocks it no matter
// how many times it was acquired.
type Locker struct {
	mu   sync.Mutex
	held map[string]*os.File
}

// NewLocker returns an empty lock registry.
func NewLocker() *Locker {
	return &Locker{held: make(map[string]*os.File)}
}

// Acquire takes an exclusive lock on path, waiting indefinitely until the OS
// grants it. The lock file (and its parent directories) are created when
// absent. Acquiring a path this Locker already holds returns immediately.
func (l *Locker) Acquire(path string) error {
	return l.acquire(path, true)
}

// TryAcquire is the non-blocking variant of Acquire. It reports false,
// without error, when the lock is held elsewhere.
func (l *Locker) TryAcquire(path string) (bool, error) {
	err := l.acquire(path, false)
	if errors.Is(err, ErrWouldBlock) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *Locker) acquire(path string, blocking bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path %s: %w", path, err)
	}

	if l.HasLock(abs) {
		return nil
	}

	slog.Debug("Trying to acquire lock", "path", abs)

	// The lock file may predate any data file, so make sure it can be
	// created.
	if err := MakeDirs(filepath.Dir(abs), DirMode); err != nil {
		return fmt.Errorf("creating lock file directory for %s: %w", abs, err)
	}

	f, err := openLockFile(abs)
	if err != nil {
		return fmt.Errorf("opening lock file %s: %w", abs, err)
	}

	// Another writer may rename a fresh file over the path between our open
	// and the flock. Re-open after locking and keep going until the locked
	// descriptor and the path name the same file; otherwise we would hold a
	// lock on an unlinked stale inode.
	for {
		if err := lockFile(f, blocking); err != nil {
			f.Close()
			if errors.Is(err, ErrWouldBlock) {
				return fmt.Errorf("%w: %s", ErrWouldBlock, abs)
			}
			return fmt.Errorf("locking %s: %w", abs, err)
		}

		cur, err := openLockFile(abs)
		if err != nil {
			f.Close()
			return fmt.Errorf("reopening lock file %s: %w", abs, err)
		}
		same, err := sameOpenFile(f, cur)
		if err != nil {
			f.Close()
			cur.Close()
			return fmt.Errorf("comparing lock file descriptors for %s: %w", abs, err)
		}
		if same {
			cur.Close()
			break
		}
		f.Close()
		f = cur
	}

	l.mu.Lock()
	l.held[abs] = f
	l.mu.Unlock()

	slog.Debug("Got lock", "path", abs)
	return nil
}

func lockFile(f *os.File, blocking bool) error {
	if blocking {
		return flockExclusive(f)
	}
	return tryFlockExclusive(f)
}

func openLockFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDONLY|os.O_CREATE, FileMode)
}

// sameOpenFile reports whether two open descriptors refer to the same
// underlying file, regardless of what the path currently names.
func sameOpenFile(a, b *os.File) (bool, error) {
	ai, err := a.Stat()
	if err != nil {
		return false, err
	}
	bi, err := b.Stat()
	if err != nil {
		return false, err
	}
	return os.SameFile(ai, bi), nil
}

// Release drops the lock on path. Releasing a path this Locker does not hold
// is a no-op. An already-closed descriptor is not an error; any other close
// failure propagates.
func (l *Locker) Release(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path %s: %w", path, err)
	}

	l.mu.Lock()
	f, ok := l.held[abs]
	if ok {
		delete(l.held, abs)
	}
	l.mu.Unlock()
	if !ok {
		return nil
	}

	slog.Debug("Releasing lock", "path", abs)

	if err := funlock(f); err != nil && !errors.Is(err, os.ErrClosed) {
		// Closing the descriptor below drops the lock anyway.
		slog.Warn("Failed to unlock file", "path", abs, "error", err)
	}
	if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("closing lock file %s: %w", abs, err)
	}
	return nil
}

// HasLock reports whether this Locker currently holds the lock on path. It
// says nothing about locks held by other workers or processes.
func (l *Locker) HasLock(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[abs]
	return ok
}

// Paths returns the canonical paths of all locks this Locker holds, sorted.
func (l *Locker) Paths() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	paths := make([]string, 0, len(l.held))
	for p := range l.held {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ReleaseAll releases every lock this Locker holds. It keeps going on error
// and returns the first one encountered. Idempotent, intended for end-of-work
// cleanup paths.
func (l *Locker) ReleaseAll() error {
	slog.Debug("Releasing all locks")

	var firstErr error
	for _, p := range l.Paths() {
		if err := l.Release(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WithLock runs fn while holding the lock on path, releasing it on every exit
// path. The release also runs when fn panics.
func (l *Locker) WithLock(path string, fn func() error) error {
	if err := l.Acquire(path); err != nil {
		return err
	}
	defer l.Release(path)
	return fn()
}

// TryWithLock runs fn with held reporting whether the non-blocking
// acquisition succeeded. Any lock taken is released on exit.
func (l *Locker) TryWithLock(path string, fn func(held bool) error) error {
	held, err := l.TryAcquire(path)
	if err != nil {
		return err
	}
	defer l.Release(path)
	return fn(held)
}

// AcquireContext waits for the lock on path until ctx is done. The OS
// blocking wait has no timeout, so bounded waiting polls the non-blocking
// primitive with backoff. Returns ctx.Err() when the context expires first.
func (l *Locker) AcquireContext(ctx context.Context, path string) error {
	backoff := 10 * time.Millisecond
	for {
		ok, err := l.TryAcquire(path)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 500*time.Millisecond {
			backoff *= 2
		}
	}
}

// ConfigurationLockFile returns the subsystem-wide lock file under dir.
func ConfigurationLockFile(dir string) string {
	return filepath.Join(dir, "global.mk")
}

// LockConfiguration takes the subsystem-wide configuration lock. When ctx
// carries a deadline and it expires, the error is ErrLockTimeout so callers
// can tell a slow lock holder apart from cancellation or an interrupt.
func (l *Locker) LockConfiguration(ctx context.Context, dir string) error {
	path := ConfigurationLockFile(dir)
	err := l.AcquireContext(ctx, path)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: another process holds %s", ErrLockTimeout, path)
	}
	return err
}
