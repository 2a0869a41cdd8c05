package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/tallybook/tally/internal/reorder"
	"github.com/tallybook/tally/internal/store"
)

// CreateCategory validates and inserts a category at an edge of its kind.
func (s *Service) CreateCategory(ctx context.Context, in NewCategory) (Category, error) {
	name, err := NormalizeName(in.Name)
	if err != nil {
		return Category{}, err
	}
	kind, err := ParseCategoryKind(in.Kind)
	if err != nil {
		return Category{}, err
	}

	row := store.Category{ID: s.ids.Generate(), Name: name, Kind: string(kind)}
	err = s.store.InTx(ctx, func(tx *store.Tx) error {
		if row.Position, err = s.edgePosition(ctx, tx, reorder.KindCategory, row.Kind, in.Edge); err != nil {
			return err
		}
		return tx.InsertCategory(ctx, row)
	})
	if err != nil {
		return Category{}, err
	}
	s.logger.Info("created category", "id", row.ID, "kind", row.Kind, "position", row.Position)
	return categoryFromRow(row), nil
}

// ListCategories returns categories ordered by kind (income first), each
// with its subcategories in display order.
func (s *Service) ListCategories(ctx context.Context, includeArchived bool) ([]Category, error) {
	var categories []Category
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		rows, err := tx.Categories(ctx, includeArchived)
		if err != nil {
			return err
		}
		subs, err := tx.Subcategories(ctx, "", includeArchived)
		if err != nil {
			return err
		}
		byParent := make(map[string][]Subcategory)
		for _, sub := range subs {
			byParent[sub.CategoryID] = append(byParent[sub.CategoryID], subcategoryFromRow(sub))
		}
		categories = make([]Category, len(rows))
		for i, r := range rows {
			categories[i] = categoryFromRow(r)
			categories[i].Subcategories = byParent[r.ID]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(categories, func(a, b Category) int {
		return slices.Index(CategoryKinds, a.Kind) - slices.Index(CategoryKinds, b.Kind)
	})
	return categories, nil
}

// RenameCategory changes a category's display name.
func (s *Service) RenameCategory(ctx context.Context, id, name string) error {
	return s.rename(ctx, reorder.KindCategory, id, name)
}

// ArchiveCategory hides a category from its kind's list. Its subcategories
// keep their state.
func (s *Service) ArchiveCategory(ctx context.Context, id string) error {
	return s.archive(ctx, reorder.KindCategory, id)
}

// UnarchiveCategory brings a category back at an edge of its kind.
func (s *Service) UnarchiveCategory(ctx context.Context, id, edge string) (float64, error) {
	return s.unarchive(ctx, reorder.KindCategory, id, edge)
}

// MoveCategory places a category right before or after another. A target of
// the other kind changes the category's kind.
func (s *Service) MoveCategory(ctx context.Context, id, targetID string, placement reorder.Placement) (reorder.Outcome, error) {
	return s.move(ctx, reorder.KindCategory, id, targetID, placement)
}

// MoveCategoryToEdge moves a category to the first or last slot of kind. An
// empty kind keeps the category's kind.
func (s *Service) MoveCategoryToEdge(ctx context.Context, id, kind string, edge reorder.Edge) (reorder.Outcome, error) {
	group := ""
	if kind != "" {
		k, err := ParseCategoryKind(kind)
		if err != nil {
			return reorder.Outcome{}, err
		}
		group = string(k)
	}
	var out reorder.Outcome
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		var err error
		out, err = s.moveToEdge(ctx, tx, reorder.KindCategory, id, group, edge)
		return err
	})
	return out, err
}

// CreateSubcategory inserts a subcategory at an edge of its parent's list.
func (s *Service) CreateSubcategory(ctx context.Context, in NewSubcategory) (Subcategory, error) {
	name, err := NormalizeName(in.Name)
	if err != nil {
		return Subcategory{}, err
	}
	if in.CategoryID == "" {
		return Subcategory{}, invalidf("category id must not be empty")
	}

	row := store.Subcategory{CategoryID: in.CategoryID, Name: name}
	err = s.store.InTx(ctx, func(tx *store.Tx) error {
		if err := requireActive(ctx, tx, reorder.KindCategory, in.CategoryID); err != nil {
			return fmt.Errorf("parent: %w", err)
		}
		row.ID = s.ids.Generate()
		if row.Position, err = s.edgePosition(ctx, tx, reorder.KindSubcategory, row.CategoryID, in.Edge); err != nil {
			return err
		}
		return tx.InsertSubcategory(ctx, row)
	})
	if err != nil {
		return Subcategory{}, err
	}
	s.logger.Info("created subcategory", "id", row.ID, "category", row.CategoryID, "position", row.Position)
	return subcategoryFromRow(row), nil
}

// ListSubcategories returns the subcategories of one category in display
// order.
func (s *Service) ListSubcategories(ctx context.Context, categoryID string, includeArchived bool) ([]Subcategory, error) {
	var subs []Subcategory
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		if _, err := tx.Category(ctx, categoryID); err != nil {
			return err
		}
		rows, err := tx.Subcategories(ctx, categoryID, includeArchived)
		if err != nil {
			return err
		}
		subs = make([]Subcategory, len(rows))
		for i, r := range rows {
			subs[i] = subcategoryFromRow(r)
		}
		return nil
	})
	return subs, err
}

// RenameSubcategory changes a subcategory's display name.
func (s *Service) RenameSubcategory(ctx context.Context, id, name string) error {
	return s.rename(ctx, reorder.KindSubcategory, id, name)
}

// ArchiveSubcategory hides a subcategory from its parent's list.
func (s *Service) ArchiveSubcategory(ctx context.Context, id string) error {
	return s.archive(ctx, reorder.KindSubcategory, id)
}

// UnarchiveSubcategory brings a subcategory back at an edge of its parent's
// list. The parent must be active.
func (s *Service) UnarchiveSubcategory(ctx context.Context, id, edge string) (float64, error) {
	return s.unarchive(ctx, reorder.KindSubcategory, id, edge)
}

// MoveSubcategory places a subcategory right before or after another. A
// target under another category re-parents the subcategory.
func (s *Service) MoveSubcategory(ctx context.Context, id, targetID string, placement reorder.Placement) (reorder.Outcome, error) {
	return s.move(ctx, reorder.KindSubcategory, id, targetID, placement)
}

// MoveSubcategoryToEdge moves a subcategory to the first or last slot of
// categoryID. An empty categoryID keeps the current parent.
func (s *Service) MoveSubcategoryToEdge(ctx context.Context, id, categoryID string, edge reorder.Edge) (reorder.Outcome, error) {
	var out reorder.Outcome
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		if categoryID != "" {
			if err := requireActive(ctx, tx, reorder.KindCategory, categoryID); err != nil {
				return fmt.Errorf("parent: %w", err)
			}
		}
		var err error
		out, err = s.moveToEdge(ctx, tx, reorder.KindSubcategory, id, categoryID, edge)
		return err
	})
	return out, err
}
