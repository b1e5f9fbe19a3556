package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS items (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	list       TEXT NOT NULL,
	name       TEXT NOT NULL,
	completed  INTEGER NOT NULL DEFAULT 0,
	due        TIMESTAMP,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_list ON items(list);
`

// SQLiteDB wraps one embedded database file shared by every list.
type SQLiteDB struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) the database at path and applies
// the schema.
func OpenSQLite(path string) (*SQLiteDB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &SQLiteDB{db: db}, nil
}

// Close closes the underlying database.
func (d *SQLiteDB) Close() error {
	return d.db.Close()
}

// List returns a ListStore view over the named list.
func (d *SQLiteDB) List(name string) *SQLiteStore {
	return &SQLiteStore{db: d.db, list: name, now: time.Now}
}

// SQLiteStore is a ListStore over one named list in a SQLiteDB.
type SQLiteStore struct {
	mu   sync.Mutex
	db   *sql.DB
	list string
	now  func() time.Time
}

var _ ListStore = (*SQLiteStore)(nil)

// Add implements ListStore.
func (s *SQLiteStore) Add(ctx context.Context, items ...Item) error {
	if len(items) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer tx.Rollback()

	for _, it := range items {
		created := it.CreatedAt
		if created.IsZero() {
			created = s.now()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO items (list, name, completed, due, created_at) VALUES (?, ?, ?, ?, ?)`,
			s.list, it.Name, it.Completed, it.Due, created,
		); err != nil {
			return fmt.Errorf("storage: insert %q: %w", it.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}

// Items implements ListStore.
func (s *SQLiteStore) Items(ctx context.Context) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, completed, due, created_at FROM items WHERE list = ? ORDER BY id`, s.list)
	if err != nil {
		return nil, fmt.Errorf("storage: query: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var due sql.NullTime
		if err := rows.Scan(&it.Name, &it.Completed, &due, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan: %w", err)
		}
		if due.Valid {
			t := due.Time
			it.Due = &t
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: rows: %w", err)
	}
	return items, nil
}

// MarkCompleted implements ListStore.
func (s *SQLiteStore) MarkCompleted(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET completed = 1
		 WHERE id = (
			SELECT id FROM items
			WHERE list = ? AND completed = 0 AND name = ? COLLATE NOCASE
			ORDER BY id LIMIT 1
		 )`, s.list, name)
	if err != nil {
		return fmt.Errorf("storage: mark completed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrItemNotFound, name)
	}
	return nil
}

// ClearCompleted implements ListStore.
func (s *SQLiteStore) ClearCompleted(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM items WHERE list = ? AND completed = 1`, s.list)
	if err != nil {
		return 0, fmt.Errorf("storage: clear completed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: rows affected: %w", err)
	}
	return int(n), nil
}
