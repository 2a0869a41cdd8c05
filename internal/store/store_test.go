package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"accounts", "categories", "subcategories"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// Two transactions must see the same private database.
	ctx := context.Background()
	err = s.InTx(ctx, func(tx *Tx) error {
		return tx.InsertCategory(ctx, Category{ID: "c1", Name: "Salary", Kind: "income", Position: 1})
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	err = s.InTx(ctx, func(tx *Tx) error {
		_, err := tx.Category(ctx, "c1")
		return err
	})
	if err != nil {
		t.Errorf("category not visible in second transaction: %v", err)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
		{"user_version", "1"},
	}
	for _, tt := range tests {
		if err := s.verifyPragma(tt.name, tt.expected); err != nil {
			t.Error(err)
		}
	}
}

func TestSchema_Tables(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		table   string
		columns []string
	}{
		{"accounts", []string{"id", "name", "account_type", "currency", "balance", "position", "archived"}},
		{"categories", []string{"id", "name", "kind", "position", "archived"}},
		{"subcategories", []string{"id", "category_id", "name", "position", "archived"}},
	}
	for _, tt := range tests {
		columns := getTableColumns(t, s.db, tt.table)
		for _, col := range tt.columns {
			if !slices.Contains(columns, col) {
				t.Errorf("%s table missing column %q", tt.table, col)
			}
		}
	}
}

func TestSchema_OrderIndexes(t *testing.T) {
	s := createTestStore(t)

	for _, table := range []string{"accounts", "categories", "subcategories"} {
		indexes := getTableIndexes(t, s.db, table)
		want := "idx_" + table + "_order"
		if !slices.Contains(indexes, want) {
			t.Errorf("%s table missing index %q", table, want)
		}
	}
}

func TestMigration_FromVersionZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	// Simulate a database created before the ordering indexes.
	for _, stmt := range []string{
		"DROP INDEX idx_accounts_order",
		"DROP INDEX idx_categories_order",
		"DROP INDEX idx_subcategories_order",
		"PRAGMA user_version = 0",
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	if err := s.verifyPragma("user_version", "1"); err != nil {
		t.Error(err)
	}
	if !slices.Contains(getTableIndexes(t, s.db, "accounts"), "idx_accounts_order") {
		t.Error("migration did not restore idx_accounts_order")
	}
}

func TestConstraint_SubcategoryNeedsCategory(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(tx *Tx) error {
		return tx.InsertSubcategory(ctx, Subcategory{ID: "s1", CategoryID: "missing", Name: "Rent", Position: 1})
	})
	if err == nil {
		t.Error("expected foreign key violation, got nil")
	}
}

func TestInTx_RollsBackOnError(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx *Tx) error {
		if err := tx.InsertCategory(ctx, Category{ID: "c1", Name: "Food", Kind: "expense", Position: 1}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx() error = %v, want %v", err, boom)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("rolled back insert is visible: %d rows", count)
	}
}

func TestInTx_CancelledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.InTx(ctx, func(tx *Tx) error {
		return tx.InsertCategory(ctx, Category{ID: "c1", Name: "Food", Kind: "expense", Position: 1})
	})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("cancelled insert is visible: %d rows", count)
	}
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue any
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}
