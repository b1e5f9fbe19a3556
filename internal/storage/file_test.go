package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hemanthsagarb9/LemmeTalk/internal/storage"
)

func newFileStore(t *testing.T) *storage.FileStore {
	t.Helper()
	s, err := storage.NewFileStore(filepath.Join(t.TempDir(), "list.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s
}

func TestFileStoreAddAndItems(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newFileStore(t)

	if err := s.Add(ctx, storage.Item{Name: "milk"}, storage.Item{Name: "eggs"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(ctx, storage.Item{Name: "bread"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	items, err := s.Items(ctx)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	want := []string{"milk", "eggs", "bread"}
	if len(items) != len(want) {
		t.Fatalf("len(items) = %d, want %d", len(items), len(want))
	}
	for i, name := range want {
		if items[i].Name != name {
			t.Errorf("items[%d].Name = %q, want %q", i, items[i].Name, name)
		}
		if items[i].Completed {
			t.Errorf("items[%d] completed on insert", i)
		}
		if items[i].CreatedAt.IsZero() {
			t.Errorf("items[%d].CreatedAt not stamped", i)
		}
	}
}

func TestFileStoreMarkCompleted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newFileStore(t)
	if err := s.Add(ctx, storage.Item{Name: "Milk"}, storage.Item{Name: "eggs"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Case-insensitive match.
	if err := s.MarkCompleted(ctx, "milk"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	items, _ := s.Items(ctx)
	if !items[0].Completed || items[1].Completed {
		t.Errorf("items = %+v, want only milk completed", items)
	}

	err := s.MarkCompleted(ctx, "caviar")
	if !errors.Is(err, storage.ErrItemNotFound) {
		t.Errorf("MarkCompleted(caviar) = %v, want ErrItemNotFound", err)
	}

	// Already-completed items are not matched again.
	err = s.MarkCompleted(ctx, "milk")
	if !errors.Is(err, storage.ErrItemNotFound) {
		t.Errorf("second MarkCompleted(milk) = %v, want ErrItemNotFound", err)
	}
}

func TestFileStoreClearCompleted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newFileStore(t)
	if err := s.Add(ctx,
		storage.Item{Name: "milk", Completed: true},
		storage.Item{Name: "eggs"},
		storage.Item{Name: "bread", Completed: true},
	); err != nil {
		t.Fatalf("Add: %v", err)
	}

	n, err := s.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted: %v", err)
	}
	if n != 2 {
		t.Errorf("removed %d, want 2", n)
	}
	items, _ := s.Items(ctx)
	if len(items) != 1 || items[0].Name != "eggs" {
		t.Errorf("items = %+v, want only eggs", items)
	}

	n, err = s.ClearCompleted(ctx)
	if err != nil || n != 0 {
		t.Errorf("second ClearCompleted = (%d, %v), want (0, nil)", n, err)
	}
}

func TestFileStoreSurvivesReload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "list.json")

	s1, err := storage.NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	due := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	if err := s1.Add(ctx, storage.Item{Name: "water the plants", Due: &due}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// A fresh store over the same path sees the prior write.
	s2, err := storage.NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	items, err := s2.Items(ctx)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 1 || items[0].Name != "water the plants" {
		t.Fatalf("items = %+v", items)
	}
	if items[0].Due == nil || !items[0].Due.Equal(due) {
		t.Errorf("Due = %v, want %v", items[0].Due, due)
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	s := newFileStore(t)
	items, err := s.Items(context.Background())
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %+v, want empty", items)
	}
}
