package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// ErrWouldBlock is returned when a lock cannot be acquired without waiting.
//
// It is returned by [Locker.TryLock] when the lock is held by another process,
// and by [Locker.LockWithTimeout] when the acquisition timeout expires.
var ErrWouldBlock = errors.New("lock would block")

// ErrInvalidTimeout is returned when a timeout is <= 0.
var ErrInvalidTimeout = errors.New("invalid lock timeout")

// Locker provides exclusive advisory locks using flock(2).
//
// flock applies to an inode, not a pathname. The notebook locks a dedicated
// lock file that is never renamed or unlinked, so the inode behind the path
// stays stable for the lifetime of the directory.
//
// This implementation is Unix-only.
type Locker struct {
	fs    FS
	flock func(fd int, how int) error
}

// NewLocker creates a Locker that uses the given filesystem for file operations.
// Panics if fs is nil.
func NewLocker(fs FS) *Locker {
	if fs == nil {
		panic("fs is nil")
	}

	return &Locker{
		fs:    fs,
		flock: unix.Flock,
	}
}

// Lock represents a held file lock. Call [Lock.Close] to release it.
type Lock struct {
	mu    sync.Mutex
	file  File
	flock func(fd int, how int) error
}

// Close releases the lock and closes the underlying file descriptor.
//
// Close is idempotent; subsequent calls return nil. If both unlocking and
// closing fail, the returned error wraps both (see [errors.Join]).
func (lk *Lock) Close() error {
	lk.mu.Lock()
	defer lk.mu.Unlock()

	if lk.file == nil {
		return nil
	}

	unlockErr := flockRetryEINTR(lk.flock, int(lk.file.Fd()), unix.LOCK_UN)
	closeErr := lk.file.Close()
	lk.file = nil

	if unlockErr != nil {
		unlockErr = fmt.Errorf("unlocking lock: %w", unlockErr)
	}

	if closeErr != nil {
		closeErr = fmt.Errorf("closing lock fd: %w", closeErr)
	}

	return errors.Join(unlockErr, closeErr)
}

// TryLock attempts to acquire an exclusive lock without blocking.
//
// Returns immediately with [ErrWouldBlock] if another process holds the lock.
func (l *Locker) TryLock(path string) (*Lock, error) {
	return l.lockPolling(path, 0)
}

// LockWithTimeout attempts to acquire an exclusive lock, retrying with
// exponential backoff (1ms to 25ms) until the timeout expires.
//
// Returns an error satisfying [errors.Is] with [ErrWouldBlock] if the timeout
// expires before the lock is acquired, and [ErrInvalidTimeout] if
// timeout <= 0.
func (l *Locker) LockWithTimeout(path string, timeout time.Duration) (*Lock, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be > 0", ErrInvalidTimeout)
	}

	return l.lockPolling(path, timeout)
}

const maxBackoff = 25 * time.Millisecond

func (l *Locker) lockPolling(path string, timeout time.Duration) (*Lock, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	backoff := time.Millisecond

	for {
		file, err := l.openLockFile(path)
		if err != nil {
			return nil, fmt.Errorf("opening lockfile: %w", err)
		}

		err = flockRetryEINTR(l.flock, int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return &Lock{file: file, flock: l.flock}, nil
		}

		_ = file.Close()

		if !isWouldBlock(err) {
			return nil, fmt.Errorf("flock: %w", err)
		}

		if timeout == 0 {
			return nil, ErrWouldBlock
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: timed out after %s", ErrWouldBlock, timeout)
		}

		time.Sleep(min(backoff, remaining))

		backoff = min(backoff*2, maxBackoff)
	}
}

const (
	lockFilePerm = 0o600
	lockDirPerm  = 0o755
)

func (l *Locker) openLockFile(path string) (File, error) {
	f, err := l.fs.OpenFile(path, os.O_RDWR|os.O_CREATE, lockFilePerm)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return f, err
	}

	if err := l.fs.MkdirAll(filepath.Dir(path), lockDirPerm); err != nil {
		return nil, err
	}

	return l.fs.OpenFile(path, os.O_RDWR|os.O_CREATE, lockFilePerm)
}

func isWouldBlock(err error) bool {
	return errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN)
}

// flockRetryEINTR wraps flock, retrying when a signal interrupts the syscall.
// Retries are capped so a signal storm cannot spin forever.
func flockRetryEINTR(flock func(fd int, how int) error, fd int, how int) error {
	const maxEINTRRetries = 10000

	var err error
	for attempt := 0; attempt < maxEINTRRetries; attempt++ {
		err = flock(fd, how)
		if err == nil || !errors.Is(err, unix.EINTR) {
			return err
		}
	}

	return err
}
