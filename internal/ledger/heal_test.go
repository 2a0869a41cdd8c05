package ledger

import (
	"bytes"
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook/tally/internal/reorder"
	"github.com/tallybook/tally/internal/store"
)

func TestCheckAndHealAll(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, nil)

	// Two devices wrote the same position for a and b; c was never healed.
	err := st.InTx(ctx, func(tx *store.Tx) error {
		for _, c := range []store.Category{
			{ID: "a", Name: "A", Kind: "expense", Position: 1},
			{ID: "b", Name: "B", Kind: "expense", Position: 1},
			{ID: "c", Name: "C", Kind: "expense", Position: 0},
			{ID: "x", Name: "X", Kind: "income", Position: 1},
		} {
			if err := tx.InsertCategory(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	reports, err := svc.CheckHealth(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, reorder.HealReport{Kind: reorder.KindCategory, Group: "expense", Items: 3}, reports[0])

	reports, err = svc.HealAll(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 3, reports[0].Updated)

	reports, err = svc.CheckHealth(ctx)
	require.NoError(t, err)
	assert.Empty(t, reports)

	categories, err := svc.ListCategories(ctx, false)
	require.NoError(t, err)
	var got []string
	var positions []float64
	for _, c := range categories {
		if c.Kind == CategoryExpense {
			got = append(got, c.ID)
			positions = append(positions, c.Position)
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, []float64{3, 2, 1}, positions)
}

func TestRenderAccounts_Golden(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, []string{"wallet", "everyday", "rainy", "visa", "jar"})

	for _, in := range []NewAccount{
		{Name: "Wallet", Type: "cash", Currency: "USD", Balance: "40"},
		{Name: "Everyday", Type: "checking", Currency: "USD", Balance: "1234.5"},
		{Name: "Rainy Day", Type: "savings", Currency: "USD", Balance: "10000"},
		{Name: "Visa", Type: "credit", Currency: "USD", Balance: "-250.75"},
		{Name: "Cash Jar", Type: "cash", Currency: "USD"},
	} {
		_, err := svc.CreateAccount(ctx, in)
		require.NoError(t, err)
	}
	_, err := svc.MoveAccount(ctx, "wallet", "jar", reorder.PlaceBefore)
	require.NoError(t, err)
	require.NoError(t, svc.ArchiveAccount(ctx, "visa"))

	accounts, err := svc.ListAccounts(ctx, true)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderAccounts(&buf, accounts))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "accounts_table", buf.Bytes())
}

func TestRenderCategories(t *testing.T) {
	var buf bytes.Buffer
	err := RenderCategories(&buf, []Category{
		{ID: "s", Name: "Salary", Kind: CategoryIncome, Position: 1},
		{ID: "f", Name: "Food", Kind: CategoryExpense, Position: 2, Subcategories: []Subcategory{
			{ID: "g", CategoryID: "f", Name: "Groceries", Position: 1},
			{ID: "d", CategoryID: "f", Name: "Dining", Position: 0.5, Archived: true},
		}},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "Salary")
	assert.Contains(t, out, "  - Groceries")
	assert.Contains(t, out, "Dining (archived)")
	assert.Contains(t, out, "0.5")
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("one", "two")
	assert.Equal(t, "one", g.Generate())
	assert.Equal(t, "two", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestUUIDv7Generator(t *testing.T) {
	var g UUIDv7Generator
	a, b := g.Generate(), g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Equal(t, "7", a[14:15], "version nibble")
}
