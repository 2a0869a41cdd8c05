package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tallybook/tally/internal/reorder"
)

// Tx is a unit of work opened by Store.InTx.
type Tx struct {
	tx *sql.Tx
}

// Account is a row of the accounts table. Type is the ordering group.
type Account struct {
	ID       string
	Name     string
	Type     string
	Currency string
	Balance  decimal.Decimal
	Position float64
	Archived bool
}

// Category is a row of the categories table. Kind is the ordering group.
type Category struct {
	ID       string
	Name     string
	Kind     string
	Position float64
	Archived bool
}

// Subcategory is a row of the subcategories table. CategoryID is the
// ordering group.
type Subcategory struct {
	ID         string
	CategoryID string
	Name       string
	Position   float64
	Archived   bool
}

// Entry is the ordering state of any row, archived or not.
type Entry struct {
	ID       string
	Group    string
	Position float64
	Archived bool
}

// List returns the ordering view of kind inside this transaction.
func (t *Tx) List(kind reorder.Kind) (reorder.List, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	return &sqlList{tx: t.tx, t: tbl}, nil
}

// Entry looks up a row of kind by ID, including archived rows.
func (t *Tx) Entry(ctx context.Context, kind reorder.Kind, id string) (Entry, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	err = t.tx.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT id, %s, position, archived FROM %s WHERE id = ?", tbl.group, tbl.name), id,
	).Scan(&e.ID, &e.Group, &e.Position, &e.Archived)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, reorder.NotFoundError(kind, id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("read %s %q: %w", kind, id, err)
	}
	return e, nil
}

// Rename sets the name of a row of kind.
func (t *Tx) Rename(ctx context.Context, kind reorder.Kind, id, name string) error {
	tbl, err := tableFor(kind)
	if err != nil {
		return err
	}
	return t.execOne(ctx, kind, id,
		fmt.Sprintf("UPDATE %s SET name = ? WHERE id = ?", tbl.name), name, id)
}

// Archive hides a row from its group. The position is kept as-is.
func (t *Tx) Archive(ctx context.Context, kind reorder.Kind, id string) error {
	tbl, err := tableFor(kind)
	if err != nil {
		return err
	}
	return t.execOne(ctx, kind, id,
		fmt.Sprintf("UPDATE %s SET archived = 1 WHERE id = ?", tbl.name), id)
}

// Restore makes an archived row visible again at position.
func (t *Tx) Restore(ctx context.Context, kind reorder.Kind, id string, position float64) error {
	tbl, err := tableFor(kind)
	if err != nil {
		return err
	}
	return t.execOne(ctx, kind, id,
		fmt.Sprintf("UPDATE %s SET archived = 0, position = ? WHERE id = ?", tbl.name), position, id)
}

// InsertAccount stores a new account.
func (t *Tx) InsertAccount(ctx context.Context, a Account) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO accounts (id, name, account_type, currency, balance, position, archived)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Name, a.Type, a.Currency, a.Balance.String(), a.Position, a.Archived)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// Account returns one account, archived or not.
func (t *Tx) Account(ctx context.Context, id string) (Account, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, name, account_type, currency, balance, position, archived
		FROM accounts
		WHERE id = ?
	`, id)
	if err != nil {
		return Account{}, fmt.Errorf("query account: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Account{}, fmt.Errorf("query account: %w", err)
		}
		return Account{}, reorder.NotFoundError(reorder.KindAccount, id)
	}
	return scanAccount(rows)
}

// Accounts returns accounts grouped by type, each group in display order.
func (t *Tx) Accounts(ctx context.Context, includeArchived bool) ([]Account, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, name, account_type, currency, balance, position, archived
		FROM accounts
		WHERE archived = 0 OR ?
		ORDER BY account_type ASC, archived ASC, position DESC, id ASC
	`, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// InsertCategory stores a new category.
func (t *Tx) InsertCategory(ctx context.Context, c Category) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO categories (id, name, kind, position, archived)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Kind, c.Position, c.Archived)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// Category returns one category, archived or not.
func (t *Tx) Category(ctx context.Context, id string) (Category, error) {
	var c Category
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, name, kind, position, archived
		FROM categories
		WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.Kind, &c.Position, &c.Archived)
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, reorder.NotFoundError(reorder.KindCategory, id)
	}
	if err != nil {
		return Category{}, fmt.Errorf("query category: %w", err)
	}
	return c, nil
}

// Categories returns categories grouped by kind, each group in display order.
func (t *Tx) Categories(ctx context.Context, includeArchived bool) ([]Category, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, name, kind, position, archived
		FROM categories
		WHERE archived = 0 OR ?
		ORDER BY kind ASC, archived ASC, position DESC, id ASC
	`, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind, &c.Position, &c.Archived); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// InsertSubcategory stores a new subcategory. The parent category must exist.
func (t *Tx) InsertSubcategory(ctx context.Context, s Subcategory) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO subcategories (id, category_id, name, position, archived)
		VALUES (?, ?, ?, ?, ?)
	`, s.ID, s.CategoryID, s.Name, s.Position, s.Archived)
	if err != nil {
		return fmt.Errorf("insert subcategory: %w", err)
	}
	return nil
}

// Subcategory returns one subcategory, archived or not.
func (t *Tx) Subcategory(ctx context.Context, id string) (Subcategory, error) {
	var s Subcategory
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, category_id, name, position, archived
		FROM subcategories
		WHERE id = ?
	`, id).Scan(&s.ID, &s.CategoryID, &s.Name, &s.Position, &s.Archived)
	if errors.Is(err, sql.ErrNoRows) {
		return Subcategory{}, reorder.NotFoundError(reorder.KindSubcategory, id)
	}
	if err != nil {
		return Subcategory{}, fmt.Errorf("query subcategory: %w", err)
	}
	return s, nil
}

// Subcategories returns the subcategories of categoryID in display order, or
// of every category when categoryID is empty.
func (t *Tx) Subcategories(ctx context.Context, categoryID string, includeArchived bool) ([]Subcategory, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, category_id, name, position, archived
		FROM subcategories
		WHERE (category_id = ? OR ? = '') AND (archived = 0 OR ?)
		ORDER BY category_id ASC, archived ASC, position DESC, id ASC
	`, categoryID, categoryID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("query subcategories: %w", err)
	}
	defer rows.Close()

	subs := []Subcategory{}
	for rows.Next() {
		var s Subcategory
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Position, &s.Archived); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (t *Tx) execOne(ctx context.Context, kind reorder.Kind, id, query string, args ...any) error {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s %q: %w", kind, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s %q: %w", kind, id, err)
	}
	if n == 0 {
		return reorder.NotFoundError(kind, id)
	}
	return nil
}

// scanAccount scans the current row into an Account.
func scanAccount(rows *sql.Rows) (Account, error) {
	var a Account
	var balance string
	if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Currency, &balance, &a.Position, &a.Archived); err != nil {
		return Account{}, fmt.Errorf("scan account: %w", err)
	}
	b, err := decimal.NewFromString(balance)
	if err != nil {
		return Account{}, fmt.Errorf("scan account %q: balance: %w", a.ID, err)
	}
	a.Balance = b
	return a, nil
}
