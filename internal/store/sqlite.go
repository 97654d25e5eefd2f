package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// SQLiteFileName is the database file created inside the notebook directory.
const SQLiteFileName = "notebook.sqlite"

// sqliteBusyTimeout is the time SQLite waits when the database is locked.
// After this, operations return SQLITE_BUSY.
const sqliteBusyTimeout = 10000 // milliseconds

// SQLiteSlot stores values in a single kv table.
type SQLiteSlot struct {
	db *sql.DB
}

// OpenSQLiteSlot opens (or creates) the database at path.
func OpenSQLiteSlot(ctx context.Context, path string) (*SQLiteSlot, error) {
	if path == "" {
		return nil, errors.New("open sqlite: path is empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	err = applyPragmas(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create kv table: %w", err)
	}

	return &SQLiteSlot{db: db}, nil
}

// applyPragmas configures the SQLite connection using a single batch statement.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		PRAGMA busy_timeout = %d;
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = FULL;
		PRAGMA temp_store = MEMORY;
	`, sqliteBusyTimeout))
	if err != nil {
		return fmt.Errorf("apply pragmas: %w", err)
	}

	return nil
}

// Get returns the stored value for key.
func (s *SQLiteSlot) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	return value, nil
}

// Put upserts the value for key.
func (s *SQLiteSlot) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	return nil
}

// Close closes the database.
func (s *SQLiteSlot) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}

	return nil
}
