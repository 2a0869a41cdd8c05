package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tallybook/tally/internal/reorder"
)

// table describes how one kind is stored.
type table struct {
	kind  reorder.Kind
	name  string
	group string
}

var (
	accountsTable      = table{kind: reorder.KindAccount, name: "accounts", group: "account_type"}
	categoriesTable    = table{kind: reorder.KindCategory, name: "categories", group: "kind"}
	subcategoriesTable = table{kind: reorder.KindSubcategory, name: "subcategories", group: "category_id"}
)

func tableFor(kind reorder.Kind) (table, error) {
	switch kind {
	case reorder.KindAccount:
		return accountsTable, nil
	case reorder.KindCategory:
		return categoriesTable, nil
	case reorder.KindSubcategory:
		return subcategoriesTable, nil
	}
	return table{}, fmt.Errorf("unknown kind %q", kind)
}

// sqlList is the reorder.List of one table inside a transaction.
type sqlList struct {
	tx *sql.Tx
	t  table
}

var _ reorder.List = (*sqlList)(nil)

func (l *sqlList) Kind() reorder.Kind {
	return l.t.kind
}

// selectItem is the column list shared by every ordering query.
func (l *sqlList) selectItem() string {
	return fmt.Sprintf("SELECT id, %s, position FROM %s", l.t.group, l.t.name)
}

func (l *sqlList) Item(ctx context.Context, id string) (reorder.Item, error) {
	it, ok, err := l.queryOne(ctx,
		l.selectItem()+" WHERE id = ? AND archived = 0", id)
	if err != nil {
		return reorder.Item{}, err
	}
	if !ok {
		return reorder.Item{}, reorder.NotFoundError(l.t.kind, id)
	}
	return it, nil
}

func (l *sqlList) First(ctx context.Context, group string) (reorder.Item, bool, error) {
	return l.queryOne(ctx, l.selectItem()+fmt.Sprintf(`
		WHERE %s = ? AND archived = 0
		ORDER BY position DESC, id ASC
		LIMIT 1`, l.t.group), group)
}

func (l *sqlList) Last(ctx context.Context, group string) (reorder.Item, bool, error) {
	return l.queryOne(ctx, l.selectItem()+fmt.Sprintf(`
		WHERE %s = ? AND archived = 0
		ORDER BY position ASC, id DESC
		LIMIT 1`, l.t.group), group)
}

func (l *sqlList) Prev(ctx context.Context, ref reorder.Item) (reorder.Item, bool, error) {
	return l.queryOne(ctx, l.selectItem()+fmt.Sprintf(`
		WHERE %s = ? AND archived = 0 AND id <> ?
		  AND (position > ? OR (position = ? AND id < ?))
		ORDER BY position ASC, id DESC
		LIMIT 1`, l.t.group),
		ref.Group, ref.ID, ref.Position, ref.Position, ref.ID)
}

func (l *sqlList) Next(ctx context.Context, ref reorder.Item) (reorder.Item, bool, error) {
	return l.queryOne(ctx, l.selectItem()+fmt.Sprintf(`
		WHERE %s = ? AND archived = 0 AND id <> ?
		  AND (position < ? OR (position = ? AND id > ?))
		ORDER BY position DESC, id ASC
		LIMIT 1`, l.t.group),
		ref.Group, ref.ID, ref.Position, ref.Position, ref.ID)
}

func (l *sqlList) Items(ctx context.Context, group string) ([]reorder.Item, error) {
	rows, err := l.tx.QueryContext(ctx, l.selectItem()+fmt.Sprintf(`
		WHERE %s = ? AND archived = 0
		ORDER BY position DESC, id ASC`, l.t.group), group)
	if err != nil {
		return nil, fmt.Errorf("query %s group %q: %w", l.t.name, group, err)
	}
	defer rows.Close()

	items := []reorder.Item{}
	for rows.Next() {
		var it reorder.Item
		if err := rows.Scan(&it.ID, &it.Group, &it.Position); err != nil {
			return nil, fmt.Errorf("scan %s: %w", l.t.name, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (l *sqlList) Groups(ctx context.Context) ([]string, error) {
	rows, err := l.tx.QueryContext(ctx, fmt.Sprintf(`
		SELECT DISTINCT %s FROM %s
		WHERE archived = 0
		ORDER BY %s ASC`, l.t.group, l.t.name, l.t.group))
	if err != nil {
		return nil, fmt.Errorf("query %s groups: %w", l.t.name, err)
	}
	defer rows.Close()

	groups := []string{}
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("scan %s group: %w", l.t.name, err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Apply writes every update inside the enclosing transaction. An error leaves
// earlier updates pending; InTx rolls them back.
func (l *sqlList) Apply(ctx context.Context, updates ...reorder.Update) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET position = ?, %s = COALESCE(NULLIF(?, ''), %s)
		WHERE id = ? AND archived = 0`, l.t.name, l.t.group, l.t.group)
	for _, u := range updates {
		res, err := l.tx.ExecContext(ctx, query, u.Position, u.Group, u.ID)
		if err != nil {
			return fmt.Errorf("update %s %q: %w", l.t.name, u.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update %s %q: %w", l.t.name, u.ID, err)
		}
		if n == 0 {
			return fmt.Errorf("update: %w", reorder.NotFoundError(l.t.kind, u.ID))
		}
	}
	return nil
}

func (l *sqlList) queryOne(ctx context.Context, query string, args ...any) (reorder.Item, bool, error) {
	var it reorder.Item
	err := l.tx.QueryRowContext(ctx, query, args...).Scan(&it.ID, &it.Group, &it.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return reorder.Item{}, false, nil
	}
	if err != nil {
		return reorder.Item{}, false, fmt.Errorf("query %s: %w", l.t.name, err)
	}
	return it, true, nil
}
