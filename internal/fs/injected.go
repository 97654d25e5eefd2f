package fs

import (
	"errors"
	"os"
	"sync"
)

// Op names a [FS] method that [Faulty] can fail.
type Op string

// Operations that can be failed by [Faulty].
const (
	OpOpenFile        Op = "OpenFile"
	OpReadFile        Op = "ReadFile"
	OpWriteFileAtomic Op = "WriteFileAtomic"
	OpMkdirAll        Op = "MkdirAll"
	OpExists          Op = "Exists"
	OpRemove          Op = "Remove"
)

// InjectedError marks an error as intentionally injected by [Faulty].
//
// It wraps the underlying error so errors.Is/As continue to work.
type InjectedError struct {
	Op  Op
	Err error
}

// Error returns the underlying error's message prefixed with the operation.
func (e *InjectedError) Error() string {
	return "injected " + string(e.Op) + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *InjectedError) Unwrap() error {
	return e.Err
}

// IsInjected reports whether err (or any wrapped error) was injected by [Faulty].
func IsInjected(err error) bool {
	var injected *InjectedError

	return errors.As(err, &injected)
}

// Faulty wraps an [FS] and fails the operations registered with [Faulty.Fail].
//
// Operations that are not failed are forwarded to the wrapped filesystem.
// Safe for concurrent use.
type Faulty struct {
	inner FS

	mu    sync.Mutex
	fails map[Op]error
	calls map[Op]int
}

// NewFaulty wraps inner. Panics if inner is nil.
func NewFaulty(inner FS) *Faulty {
	if inner == nil {
		panic("inner fs is nil")
	}

	return &Faulty{
		inner: inner,
		fails: make(map[Op]error),
		calls: make(map[Op]int),
	}
}

// Fail makes every later call of op return err wrapped in [InjectedError].
// A nil err clears the failure.
func (f *Faulty) Fail(op Op, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err == nil {
		delete(f.fails, op)

		return
	}

	f.fails[op] = err
}

// Calls returns how often op was invoked, failed or not.
func (f *Faulty) Calls(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[op]
}

func (f *Faulty) check(op Op) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[op]++

	if err, ok := f.fails[op]; ok {
		return &InjectedError{Op: op, Err: err}
	}

	return nil
}

func (f *Faulty) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	if err := f.check(OpOpenFile); err != nil {
		return nil, err
	}

	return f.inner.OpenFile(path, flag, perm)
}

func (f *Faulty) ReadFile(path string) ([]byte, error) {
	if err := f.check(OpReadFile); err != nil {
		return nil, err
	}

	return f.inner.ReadFile(path)
}

func (f *Faulty) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := f.check(OpWriteFileAtomic); err != nil {
		return err
	}

	return f.inner.WriteFileAtomic(path, data, perm)
}

func (f *Faulty) MkdirAll(path string, perm os.FileMode) error {
	if err := f.check(OpMkdirAll); err != nil {
		return err
	}

	return f.inner.MkdirAll(path, perm)
}

func (f *Faulty) Exists(path string) (bool, error) {
	if err := f.check(OpExists); err != nil {
		return false, err
	}

	return f.inner.Exists(path)
}

func (f *Faulty) Remove(path string) error {
	if err := f.check(OpRemove); err != nil {
		return err
	}

	return f.inner.Remove(path)
}

// Compile-time interface check.
var _ FS = (*Faulty)(nil)
