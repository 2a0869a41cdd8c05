package memlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook/tally/internal/reorder"
)

func TestList_Neighbours(t *testing.T) {
	ctx := context.Background()
	l := New(reorder.KindAccount)
	l.Insert(
		reorder.Item{ID: "b", Group: "g", Position: 2},
		reorder.Item{ID: "a", Group: "g", Position: 2},
		reorder.Item{ID: "c", Group: "g", Position: 1},
		reorder.Item{ID: "top", Group: "g", Position: 9},
	)

	// Ties sort by ID.
	assert.Equal(t, []string{"top", "a", "b", "c"}, l.IDs("g"))

	first, ok, err := l.First(ctx, "g")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "top", first.ID)

	last, ok, err := l.Last(ctx, "g")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c", last.ID)

	b, err := l.Item(ctx, "b")
	require.NoError(t, err)
	prev, ok, err := l.Prev(ctx, b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", prev.ID)

	next, ok, err := l.Next(ctx, b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c", next.ID)

	_, ok, err = l.Prev(ctx, first)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = l.Next(ctx, last)
	require.NoError(t, err)
	assert.False(t, ok)

	// A reference outside the group still finds its would-be neighbours.
	ghost := reorder.Item{ID: "ghost", Group: "g", Position: 1.5}
	prev, ok, err = l.Prev(ctx, ghost)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", prev.ID)
}

func TestList_EmptyGroup(t *testing.T) {
	ctx := context.Background()
	l := New(reorder.KindCategory)

	_, ok, err := l.First(ctx, "income")
	require.NoError(t, err)
	assert.False(t, ok)

	items, err := l.Items(ctx, "income")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	_, err = l.Item(ctx, "nope")
	assert.ErrorIs(t, err, reorder.ErrNotFound)
}

func TestList_ApplyIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	l := New(reorder.KindAccount)
	l.Insert(reorder.Item{ID: "a", Group: "g", Position: 1})

	err := l.Apply(ctx,
		reorder.Update{ID: "a", Position: 5},
		reorder.Update{ID: "missing", Position: 3},
	)
	assert.ErrorIs(t, err, reorder.ErrNotFound)

	a, err := l.Item(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1.0, a.Position)
	assert.Zero(t, l.Applies())
}

func TestList_ApplyMovesGroups(t *testing.T) {
	ctx := context.Background()
	l := New(reorder.KindSubcategory)
	l.Insert(
		reorder.Item{ID: "x", Group: "p1", Position: 1},
		reorder.Item{ID: "y", Group: "p2", Position: 1},
	)

	require.NoError(t, l.Apply(ctx, reorder.Update{ID: "x", Position: 2, Group: "p2"}))
	assert.Equal(t, []string{"x", "y"}, l.IDs("p2"))
	assert.Empty(t, l.IDs("p1"))

	groups, err := l.Groups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, groups)
}
