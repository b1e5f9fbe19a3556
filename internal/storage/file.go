package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileStore is a ListStore backed by a single JSON file. Writes go through a
// temp file and an atomic rename so a crash mid-write never corrupts the
// list.
type FileStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

var _ ListStore = (*FileStore)(nil)

// NewFileStore creates a FileStore at path, creating parent directories as
// needed. A missing file is an empty list.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: file store path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create %s: %w", dir, err)
		}
	}
	return &FileStore{path: path, now: time.Now}, nil
}

// Add implements ListStore.
func (s *FileStore) Add(ctx context.Context, items ...Item) error {
	if len(items) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load()
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.CreatedAt.IsZero() {
			it.CreatedAt = s.now()
		}
		existing = append(existing, it)
	}
	return s.save(existing)
}

// Items implements ListStore.
func (s *FileStore) Items(ctx context.Context) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// MarkCompleted implements ListStore.
func (s *FileStore) MarkCompleted(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	for i := range items {
		if !items[i].Completed && strings.EqualFold(items[i].Name, name) {
			items[i].Completed = true
			return s.save(items)
		}
	}
	return fmt.Errorf("%w: %q", ErrItemNotFound, name)
}

// ClearCompleted implements ListStore.
func (s *FileStore) ClearCompleted(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return 0, err
	}
	kept := items[:0:0]
	removed := 0
	for _, it := range items {
		if it.Completed {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save(kept)
}

// load reads the list from disk. Callers hold the mutex.
func (s *FileStore) load() ([]Item, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("storage: parse %s: %w", s.path, err)
	}
	return items, nil
}

// save writes the list atomically. Callers hold the mutex.
func (s *FileStore) save(items []Item) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("storage: rename %s: %w", tmp, err)
	}
	return nil
}
