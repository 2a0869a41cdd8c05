package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook/tally/internal/reorder"
)

func TestCreateAccount_DefaultsToFirst(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, []string{"a1", "a2", "a3"})

	a1, err := svc.CreateAccount(ctx, NewAccount{Name: "Wallet", Type: "cash", Currency: "usd", Balance: "12.5"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, a1.Position)
	assert.Equal(t, "USD", a1.Currency)
	assert.True(t, decimal.RequireFromString("12.5").Equal(a1.Balance))

	a2, err := svc.CreateAccount(ctx, NewAccount{Name: "Jar", Type: "cash", Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, a2.Position)
	assert.True(t, a2.Balance.IsZero())

	a3, err := svc.CreateAccount(ctx, NewAccount{Name: "Coins", Type: "cash", Currency: "USD", Edge: "last"})
	require.NoError(t, err)
	assert.Equal(t, 0.5, a3.Position)

	accounts, err := svc.ListAccounts(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a2", "a1", "a3"}, accountIDs(accounts))
}

func TestCreateAccount_InsertEdgeOption(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, []string{"a1", "a2"}, WithInsertEdge(reorder.EdgeLast))

	_, err := svc.CreateAccount(ctx, NewAccount{Name: "One", Type: "savings", Currency: "EUR"})
	require.NoError(t, err)
	a2, err := svc.CreateAccount(ctx, NewAccount{Name: "Two", Type: "savings", Currency: "EUR"})
	require.NoError(t, err)
	assert.Equal(t, 0.5, a2.Position)

	accounts, err := svc.ListAccounts(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, accountIDs(accounts))
}

func TestCreateAccount_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, []string{"x1", "x2", "x3", "x4", "x5", "x6", "x7", "x8"})

	tests := []struct {
		name string
		in   NewAccount
	}{
		{"empty name", NewAccount{Name: "   ", Type: "cash", Currency: "USD"}},
		{"unknown type", NewAccount{Name: "A", Type: "piggybank", Currency: "USD"}},
		{"unknown currency", NewAccount{Name: "A", Type: "cash", Currency: "XYZ"}},
		{"bad balance", NewAccount{Name: "A", Type: "cash", Currency: "USD", Balance: "ten"}},
		{"too many decimals", NewAccount{Name: "A", Type: "cash", Currency: "USD", Balance: "1.234"}},
		{"yen has no cents", NewAccount{Name: "A", Type: "cash", Currency: "JPY", Balance: "1.5"}},
		{"bad edge", NewAccount{Name: "A", Type: "cash", Currency: "USD", Edge: "middle"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAccount(ctx, tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	accounts, err := svc.ListAccounts(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestCreateAccount_NormalizesName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, []string{"a1"})

	// "e" followed by a combining acute accent composes to "\u00e9".
	a, err := svc.CreateAccount(ctx, NewAccount{Name: "  Cafe\u0301 Fund ", Type: "cash", Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9 Fund", a.Name)

	require.NoError(t, svc.RenameAccount(ctx, "a1", "\tRe\u0301serve"))
	got, err := svc.GetAccount(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "R\u00e9serve", got.Name)

	assert.ErrorIs(t, svc.RenameAccount(ctx, "a1", ""), ErrInvalidInput)
	assert.ErrorIs(t, svc.RenameAccount(ctx, "nope", "x"), ErrNotFound)
}

func TestMoveAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, []string{"a", "b", "c", "s"}, WithInsertEdge(reorder.EdgeLast))
	for _, name := range []string{"A", "B", "C"} {
		_, err := svc.CreateAccount(ctx, NewAccount{Name: name, Type: "checking", Currency: "USD"})
		require.NoError(t, err)
	}
	_, err := svc.CreateAccount(ctx, NewAccount{Name: "S", Type: "savings", Currency: "USD"})
	require.NoError(t, err)

	// a(1) b(0.5) c(1/3): c before a lands above everything.
	out, err := svc.MoveAccount(ctx, "c", "a", reorder.PlaceBefore)
	require.NoError(t, err)
	assert.Equal(t, reorder.StrategySearch, out.Strategy)
	assert.Equal(t, 2.0, out.Position)

	out, err = svc.MoveAccount(ctx, "c", "a", reorder.PlaceBefore)
	require.NoError(t, err)
	assert.Equal(t, reorder.StrategySkip, out.Strategy)

	// A target of another type moves the account across.
	out, err = svc.MoveAccount(ctx, "b", "s", reorder.PlaceAfter)
	require.NoError(t, err)
	assert.Equal(t, "savings", out.Group)

	b, err := svc.GetAccount(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, AccountSavings, b.Type)

	accounts, err := svc.ListAccounts(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "s", "b"}, accountIDs(accounts))

	_, err = svc.MoveAccount(ctx, "nope", "a", reorder.PlaceAfter)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoveAccountToEdge_ChangesType(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, []string{"a", "b"})
	_, err := svc.CreateAccount(ctx, NewAccount{Name: "A", Type: "credit", Currency: "USD"})
	require.NoError(t, err)
	_, err = svc.CreateAccount(ctx, NewAccount{Name: "B", Type: "loan", Currency: "USD"})
	require.NoError(t, err)

	out, err := svc.MoveAccountToEdge(ctx, "a", "loan", reorder.EdgeLast)
	require.NoError(t, err)
	assert.Equal(t, "loan", out.Group)
	assert.Equal(t, 0.5, out.Position)

	_, err = svc.MoveAccountToEdge(ctx, "a", "boat", reorder.EdgeLast)
	assert.ErrorIs(t, err, ErrInvalidInput)

	out, err = svc.MoveAccountToEdge(ctx, "a", "", reorder.EdgeFirst)
	require.NoError(t, err)
	assert.Equal(t, reorder.StrategySwap, out.Strategy)
}

func TestArchiveAndUnarchiveAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, []string{"x", "y", "z"})
	for _, name := range []string{"X", "Y", "Z"} {
		_, err := svc.CreateAccount(ctx, NewAccount{Name: name, Type: "cash", Currency: "USD"})
		require.NoError(t, err)
	}
	// z(3) y(2) x(1)

	require.NoError(t, svc.ArchiveAccount(ctx, "z"))
	require.NoError(t, svc.ArchiveAccount(ctx, "z"), "archiving twice is a no-op")

	active, err := svc.ListAccounts(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x"}, accountIDs(active))

	all, err := svc.ListAccounts(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x", "z"}, accountIDs(all))

	_, err = svc.MoveAccount(ctx, "z", "x", reorder.PlaceAfter)
	assert.ErrorIs(t, err, ErrArchived)
	_, err = svc.MoveAccount(ctx, "x", "z", reorder.PlaceAfter)
	assert.ErrorIs(t, err, ErrArchived)

	// The archived row's own position (3) is ignored: y(2) is the first
	// active account, so z comes back at 3 rather than 4.
	pos, err := svc.UnarchiveAccount(ctx, "z", "")
	require.NoError(t, err)
	assert.Equal(t, 3.0, pos)

	require.NoError(t, svc.ArchiveAccount(ctx, "x"))
	pos, err = svc.UnarchiveAccount(ctx, "x", "last")
	require.NoError(t, err)
	assert.Equal(t, 1.0, pos)

	pos, err = svc.UnarchiveAccount(ctx, "x", "first")
	require.NoError(t, err)
	assert.Equal(t, 1.0, pos, "unarchiving an active account changes nothing")

	_, err = svc.UnarchiveAccount(ctx, "nope", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateAccount_HealsWhenSearchExhausted(t *testing.T) {
	ctx := context.Background()
	_, st := newTestService(t, nil)
	svc := New(st, reorder.New(reorder.WithMaxDepth(3), reorder.WithLogger(quietLogger())),
		WithIDGenerator(NewFixedGenerator("a", "b", "c", "d", "e")),
		WithInsertEdge(reorder.EdgeLast),
		WithLogger(quietLogger()),
	)

	// 1, 1/2, 1/3 and 1/4 fit in three steps; 1/5 does not, so the fifth
	// insert renumbers the group first.
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		_, err := svc.CreateAccount(ctx, NewAccount{Name: name, Type: "cash", Currency: "USD"})
		require.NoError(t, err)
	}

	accounts, err := svc.ListAccounts(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, accountIDs(accounts))

	positions := make([]float64, len(accounts))
	for i, a := range accounts {
		positions[i] = a.Position
	}
	assert.Equal(t, []float64{4, 3, 2, 1, 0.5}, positions)
}
