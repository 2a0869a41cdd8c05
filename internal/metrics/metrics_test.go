package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook/tally/internal/reorder"
	"github.com/tallybook/tally/internal/reorder/memlist"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	m.ObserveMove(reorder.KindAccount, reorder.StrategySearch, 3)
	m.ObserveMove(reorder.KindAccount, reorder.StrategySearch, 5)
	m.ObserveMove(reorder.KindAccount, reorder.StrategySwap, 0)
	m.ObserveExhausted(reorder.KindCategory)
	m.ObserveHeal(reorder.KindCategory, 4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReorderOperations.WithLabelValues("account", "search")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReorderOperations.WithLabelValues("account", "swap")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchExhausted.WithLabelValues("category")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HealRuns.WithLabelValues("category")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.HealedPositions.WithLabelValues("category")))

	// Swaps carry no depth.
	assert.Equal(t, 1, testutil.CollectAndCount(m.SearchDepth))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveExhausted(reorder.KindAccount)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.SearchExhausted.WithLabelValues("account")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SearchExhausted.WithLabelValues("account")))
}

func TestMetrics_RecordsReorderer(t *testing.T) {
	ctx := context.Background()
	m := New()
	r := reorder.New(reorder.WithRecorder(m))
	l := memlist.New(reorder.KindSubcategory)
	l.Insert(
		reorder.Item{ID: "a", Group: "p", Position: 3},
		reorder.Item{ID: "b", Group: "p", Position: 2},
		reorder.Item{ID: "c", Group: "p", Position: 1},
	)

	_, err := r.Move(ctx, l, reorder.MoveRequest{ID: "c", TargetID: "a", Placement: reorder.PlaceBefore})
	require.NoError(t, err)
	_, err = r.MoveToEdge(ctx, l, "c", "", reorder.EdgeFirst)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReorderOperations.WithLabelValues("subcategory", "search")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReorderOperations.WithLabelValues("subcategory", "skip")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveMove(reorder.KindCategory, reorder.StrategySkip, 0)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `tally_reorder_operations_total{kind="category",strategy="skip"} 1`)
}

func TestMetrics_ServeStopsOnCancel(t *testing.T) {
	m := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.Serve(ctx, "127.0.0.1:0", quietLogger())
	}()
	cancel()
	assert.NoError(t, <-done)
}
