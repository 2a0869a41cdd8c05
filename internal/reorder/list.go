package reorder

import (
	"context"
	"errors"
	"fmt"
)

// Kind names the list an ordering group belongs to.
type Kind string

const (
	KindAccount     Kind = "account"
	KindCategory    Kind = "category"
	KindSubcategory Kind = "subcategory"
)

// Kinds lists every ordered kind, in the order maintenance visits them.
var Kinds = []Kind{KindAccount, KindCategory, KindSubcategory}

// ErrNotFound is returned by a List when an ID does not name a visible item.
var ErrNotFound = errors.New("item not found")

// Item is the ordering view of an account, category or subcategory.
type Item struct {
	ID       string
	Group    string
	Position float64
}

// Update is one row of an atomic write. A non-empty Group moves the item into
// that group in the same write.
type Update struct {
	ID       string
	Position float64
	Group    string
}

// List is the read/write view of one kind inside a single transaction.
//
// Display order within a group is position descending, then ID ascending.
// Archived items are not visible through a List.
type List interface {
	Kind() Kind

	// Item returns the visible item with the given ID, or an error wrapping
	// ErrNotFound.
	Item(ctx context.Context, id string) (Item, error)

	// First and Last return the edges of a group; ok is false if it is empty.
	First(ctx context.Context, group string) (it Item, ok bool, err error)
	Last(ctx context.Context, group string) (it Item, ok bool, err error)

	// Prev returns the item displayed immediately before ref in ref.Group,
	// Next the one immediately after. ref need not belong to the group.
	Prev(ctx context.Context, ref Item) (it Item, ok bool, err error)
	Next(ctx context.Context, ref Item) (it Item, ok bool, err error)

	// Items returns the whole group in display order.
	Items(ctx context.Context, group string) ([]Item, error)

	// Groups returns every group holding at least one visible item, sorted.
	Groups(ctx context.Context) ([]string, error)

	// Apply writes all updates together.
	Apply(ctx context.Context, updates ...Update) error
}

// Before reports whether a is displayed before b in the same group.
func Before(a, b Item) bool {
	if a.Position != b.Position {
		return a.Position > b.Position
	}
	return a.ID < b.ID
}

// NotFoundError wraps ErrNotFound with the missing ID.
func NotFoundError(kind Kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
