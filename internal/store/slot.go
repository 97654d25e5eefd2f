// Package store persists the notebook into a single-value key/value slot.
//
// A [Slot] holds opaque values under string keys. Two backends exist:
//   - [FileSlot]: one JSON file per key, replaced atomically on every write
//   - [SQLiteSlot]: a single kv table in a SQLite database
//
// [Store] sits on top of a Slot and implements notebook.Storage: it encodes
// the whole collection as one JSON array under [KeyDocuments] and the active
// selection under [KeyActive].
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/calvinalkan/notebook/internal/fs"
	"github.com/calvinalkan/notebook/internal/notebook"
)

// Slot keys.
const (
	KeyDocuments = "notebook.files.v1"
	KeyActive    = "notebook.active.v1"
)

// ErrNotFound is returned by [Slot.Get] when no value is stored under key.
var ErrNotFound = errors.New("not found")

// Slot is a minimal key/value store.
type Slot interface {
	// Get returns the value stored under key or [ErrNotFound].
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases the backend.
	Close() error
}

// OpenSlot opens the slot backend named by backend inside dir.
func OpenSlot(ctx context.Context, fsys fs.FS, backend, dir string) (Slot, error) {
	switch backend {
	case notebook.BackendFile:
		return NewFileSlot(fsys, dir), nil
	case notebook.BackendSQLite:
		err := fsys.MkdirAll(dir, dirPerm)
		if err != nil {
			return nil, fmt.Errorf("open slot: create dir: %w", err)
		}

		return OpenSQLiteSlot(ctx, filepath.Join(dir, SQLiteFileName))
	default:
		return nil, fmt.Errorf("%w: %s", notebook.ErrUnknownBackend, backend)
	}
}
