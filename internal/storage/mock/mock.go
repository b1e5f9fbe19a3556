// Package mock provides an in-memory ListStore test double with error
// injection.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hemanthsagarb9/LemmeTalk/internal/storage"
)

// Store is a mock storage.ListStore. The zero value is an empty usable list;
// set Err to make every operation fail.
type Store struct {
	mu sync.Mutex

	// Err, if non-nil, is returned by every operation.
	Err error

	// Stored holds the current items. May be pre-seeded before the test.
	Stored []storage.Item
}

var _ storage.ListStore = (*Store)(nil)

// Add implements storage.ListStore.
func (s *Store) Add(ctx context.Context, items ...storage.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Stored = append(s.Stored, items...)
	return nil
}

// Items implements storage.ListStore.
func (s *Store) Items(ctx context.Context) ([]storage.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]storage.Item, len(s.Stored))
	copy(out, s.Stored)
	return out, nil
}

// MarkCompleted implements storage.ListStore.
func (s *Store) MarkCompleted(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Stored {
		if !s.Stored[i].Completed && strings.EqualFold(s.Stored[i].Name, name) {
			s.Stored[i].Completed = true
			return nil
		}
	}
	return fmt.Errorf("%w: %q", storage.ErrItemNotFound, name)
}

// ClearCompleted implements storage.ListStore.
func (s *Store) ClearCompleted(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	kept := s.Stored[:0:0]
	removed := 0
	for _, it := range s.Stored {
		if it.Completed {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	s.Stored = kept
	return removed, nil
}
