package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calvinalkan/notebook/internal/fs"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// FileSlot stores each key as <dir>/<key>.json.
//
// Writes go through [fs.FS.WriteFileAtomic], so a crash leaves either the old
// or the new value on disk, never a torn file.
type FileSlot struct {
	fs  fs.FS
	dir string
}

// NewFileSlot returns a slot rooted at dir. The directory is created lazily
// on the first Put.
func NewFileSlot(fsys fs.FS, dir string) *FileSlot {
	if fsys == nil {
		panic("fs is nil")
	}

	return &FileSlot{fs: fsys, dir: filepath.Clean(dir)}
}

// Path returns the file backing key.
func (s *FileSlot) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads the file for key.
func (s *FileSlot) Get(ctx context.Context, key string) ([]byte, error) {
	err := ctx.Err()
	if err != nil {
		return nil, err
	}

	data, err := s.fs.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	return data, nil
}

// Put atomically replaces the file for key.
func (s *FileSlot) Put(ctx context.Context, key string, value []byte) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	err = s.fs.MkdirAll(s.dir, dirPerm)
	if err != nil {
		return fmt.Errorf("write %s: create dir: %w", key, err)
	}

	err = s.fs.WriteFileAtomic(s.Path(key), value, filePerm)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	return nil
}

// Close is a no-op.
func (*FileSlot) Close() error {
	return nil
}
