// Package storage persists the assistant's user-facing lists (shopping
// items, reminders) across restarts.
//
// Two backends implement ListStore: a JSON flat file per list and an
// embedded SQLite database shared by all lists. Both are synchronous and
// mutex-guarded, so a read issued after a completed write within the same
// process always observes that write.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrItemNotFound is returned by MarkCompleted when no open item matches.
var ErrItemNotFound = errors.New("storage: item not found")

// Item is one entry in a list.
type Item struct {
	// Name is the item text ("milk", "water the plants"). Matching for
	// MarkCompleted is case-insensitive on this field.
	Name string `json:"name"`

	// Completed marks the item as done. Completed items remain listed until
	// ClearCompleted.
	Completed bool `json:"completed"`

	// Due is an optional due date, used by reminders. Nil for undated items.
	Due *time.Time `json:"due,omitempty"`

	// CreatedAt is when the item was added.
	CreatedAt time.Time `json:"created_at"`
}

// ListStore is a persistent ordered list of items.
//
// Implementations must be safe for concurrent use. Insertion order is
// preserved by Items.
type ListStore interface {
	// Add appends items to the list. Items with zero CreatedAt are stamped
	// with the current time.
	Add(ctx context.Context, items ...Item) error

	// Items returns all items, open and completed, in insertion order.
	Items(ctx context.Context) ([]Item, error)

	// MarkCompleted marks the first open item whose name matches
	// case-insensitively. Returns ErrItemNotFound when nothing matches.
	MarkCompleted(ctx context.Context, name string) error

	// ClearCompleted removes all completed items and returns how many were
	// removed.
	ClearCompleted(ctx context.Context) (int, error)
}
