package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tallybook/tally/internal/reorder"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedCategories inserts one category per item, using Group as the kind.
func seedCategories(t *testing.T, s *Store, items ...reorder.Item) {
	t.Helper()
	ctx := context.Background()
	err := s.InTx(ctx, func(tx *Tx) error {
		for _, it := range items {
			c := Category{ID: it.ID, Name: "cat " + it.ID, Kind: it.Group, Position: it.Position}
			if err := tx.InsertCategory(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed categories: %v", err)
	}
}

// withList runs fn against the category list inside a transaction.
func withList(t *testing.T, s *Store, fn func(ctx context.Context, tx *Tx, l reorder.List) error) error {
	t.Helper()
	ctx := context.Background()
	return s.InTx(ctx, func(tx *Tx) error {
		l, err := tx.List(reorder.KindCategory)
		if err != nil {
			return err
		}
		return fn(ctx, tx, l)
	})
}
