package ledger

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tallybook/tally/internal/reorder"
	"github.com/tallybook/tally/internal/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService opens an in-memory store and a service handing out ids in
// order.
func newTestService(t *testing.T, ids []string, opts ...Option) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	r := reorder.New(reorder.WithLogger(quietLogger()))
	opts = append([]Option{WithIDGenerator(NewFixedGenerator(ids...)), WithLogger(quietLogger())}, opts...)
	return New(st, r, opts...), st
}

func accountIDs(accounts []Account) []string {
	out := make([]string, len(accounts))
	for i, a := range accounts {
		out[i] = a.ID
	}
	return out
}

func subcategoryIDs(subs []Subcategory) []string {
	out := make([]string, len(subs))
	for i, s := range subs {
		out[i] = s.ID
	}
	return out
}
