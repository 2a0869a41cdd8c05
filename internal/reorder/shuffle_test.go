package reorder_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook/tally/internal/reorder"
	"github.com/tallybook/tally/internal/reorder/memlist"
)

// referenceMove is the naive flat-list implementation: remove the item and
// reinsert it next to the target.
func referenceMove(ids []string, id, target string, placement reorder.Placement) []string {
	if id == target {
		return ids
	}
	out := slices.DeleteFunc(slices.Clone(ids), func(s string) bool { return s == id })
	at := slices.Index(out, target)
	if placement == reorder.PlaceAfter {
		at++
	}
	return slices.Insert(out, at, id)
}

func referenceEdge(ids []string, id string, edge reorder.Edge) []string {
	out := slices.DeleteFunc(slices.Clone(ids), func(s string) bool { return s == id })
	if edge == reorder.EdgeFirst {
		return slices.Insert(out, 0, id)
	}
	return append(out, id)
}

func TestShuffle_MatchesFlatListReference(t *testing.T) {
	const (
		items = 40
		moves = 20000
	)
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(2024, 11))

	l := memlist.New(reorder.KindAccount)
	want := make([]string, items)
	for i := range want {
		want[i] = fmt.Sprintf("item-%02d", i)
		l.Insert(reorder.Item{ID: want[i], Group: "g", Position: float64(items - i)})
	}

	rec := newCountingRecorder()
	r := reorder.New(reorder.WithLogger(quietLogger()), reorder.WithRecorder(rec))

	for step := 0; step < moves; step++ {
		id := want[rng.IntN(items)]
		switch rng.IntN(10) {
		case 0:
			edge := reorder.Edge(rng.IntN(2))
			_, err := r.MoveToEdge(ctx, l, id, "", edge)
			require.NoError(t, err, "step %d", step)
			want = referenceEdge(want, id, edge)
		default:
			// Favour short hops, the common drag-by-one-row case.
			idx := slices.Index(want, id)
			var target string
			if rng.IntN(2) == 0 {
				target = want[clamp(idx+rng.IntN(5)-2, 0, items-1)]
			} else {
				target = want[rng.IntN(items)]
			}
			placement := reorder.Placement(rng.IntN(2))
			_, err := r.Move(ctx, l, reorder.MoveRequest{ID: id, TargetID: target, Placement: placement})
			require.NoError(t, err, "step %d", step)
			want = referenceMove(want, id, target, placement)
		}
		require.Equal(t, want, l.IDs("g"), "order diverged at step %d", step)
	}

	report, err := r.Check(ctx, l, "g")
	require.NoError(t, err)
	assert.True(t, report.Healthy)
	assert.Positive(t, rec.moves[reorder.StrategySwap], "swap shortcut should fire")
	assert.Positive(t, rec.moves[reorder.StrategySearch])
	assert.Positive(t, rec.moves[reorder.StrategySkip])
}

func TestShuffle_CrossGroup(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(7, 7))
	groups := []string{"cash", "savings", "credit"}

	l := memlist.New(reorder.KindAccount)
	want := map[string][]string{}
	for gi, g := range groups {
		for i := 0; i < 8; i++ {
			id := fmt.Sprintf("%s-%d", g, i)
			want[g] = append(want[g], id)
			l.Insert(reorder.Item{ID: id, Group: g, Position: float64(8 - i + gi)})
		}
	}
	groupOf := func(id string) string {
		for g, ids := range want {
			if slices.Contains(ids, id) {
				return g
			}
		}
		return ""
	}
	all := func() []string {
		var ids []string
		for _, g := range groups {
			ids = append(ids, want[g]...)
		}
		return ids
	}

	r := reorder.New(reorder.WithLogger(quietLogger()))
	for step := 0; step < 5000; step++ {
		ids := all()
		id := ids[rng.IntN(len(ids))]
		target := ids[rng.IntN(len(ids))]
		placement := reorder.Placement(rng.IntN(2))

		_, err := r.Move(ctx, l, reorder.MoveRequest{ID: id, TargetID: target, Placement: placement})
		require.NoError(t, err, "step %d", step)

		from, to := groupOf(id), groupOf(target)
		if from == to {
			want[to] = referenceMove(want[to], id, target, placement)
		} else {
			want[from] = slices.DeleteFunc(want[from], func(s string) bool { return s == id })
			want[to] = referenceMove(append(slices.Clone(want[to]), id), id, target, placement)
		}
		for _, g := range groups {
			require.Equal(t, want[g], l.IDs(g), "group %s diverged at step %d", g, step)
		}
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
