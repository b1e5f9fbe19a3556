package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hemanthsagarb9/LemmeTalk/internal/storage"
)

func openTestDB(t *testing.T) *storage.SQLiteDB {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "assistant.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	s := db.List("shopping")

	due := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	if err := s.Add(ctx,
		storage.Item{Name: "milk"},
		storage.Item{Name: "call dentist", Due: &due},
	); err != nil {
		t.Fatalf("Add: %v", err)
	}

	items, err := s.Items(ctx)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Name != "milk" || items[1].Name != "call dentist" {
		t.Errorf("order not preserved: %+v", items)
	}
	if items[0].Due != nil {
		t.Errorf("milk Due = %v, want nil", items[0].Due)
	}
	if items[1].Due == nil || !items[1].Due.Equal(due) {
		t.Errorf("Due = %v, want %v", items[1].Due, due)
	}
}

func TestSQLiteStoreListsAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)

	if err := db.List("shopping").Add(ctx, storage.Item{Name: "milk"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := db.List("reminders").Add(ctx, storage.Item{Name: "call mom"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	shopping, _ := db.List("shopping").Items(ctx)
	if len(shopping) != 1 || shopping[0].Name != "milk" {
		t.Errorf("shopping = %+v", shopping)
	}
	reminders, _ := db.List("reminders").Items(ctx)
	if len(reminders) != 1 || reminders[0].Name != "call mom" {
		t.Errorf("reminders = %+v", reminders)
	}
}

func TestSQLiteStoreMarkAndClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestDB(t).List("shopping")

	if err := s.Add(ctx, storage.Item{Name: "Milk"}, storage.Item{Name: "eggs"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.MarkCompleted(ctx, "milk"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if err := s.MarkCompleted(ctx, "caviar"); !errors.Is(err, storage.ErrItemNotFound) {
		t.Errorf("MarkCompleted(caviar) = %v, want ErrItemNotFound", err)
	}

	n, err := s.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted: %v", err)
	}
	if n != 1 {
		t.Errorf("removed %d, want 1", n)
	}
	items, _ := s.Items(ctx)
	if len(items) != 1 || items[0].Name != "eggs" {
		t.Errorf("items = %+v, want only eggs", items)
	}
}
