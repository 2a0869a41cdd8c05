// Package memlist is an in-memory reorder.List backed by B-trees, one per
// group. It serves the shuffle simulator and the policy tests.
package memlist

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/btree"

	"github.com/tallybook/tally/internal/reorder"
)

const degree = 16

// List holds the items of one kind. It is safe for concurrent use, but
// unlike the SQLite store it has no transactions: Apply validates every
// update before changing anything, which is enough for a single writer.
type List struct {
	kind reorder.Kind

	mu     sync.Mutex
	items  map[string]reorder.Item
	groups map[string]*btree.BTreeG[reorder.Item]

	// FailApply, when set, is returned by Apply without writing.
	FailApply error

	applies int
}

var _ reorder.List = (*List)(nil)

// New creates an empty list of the given kind.
func New(kind reorder.Kind) *List {
	return &List{
		kind:   kind,
		items:  make(map[string]reorder.Item),
		groups: make(map[string]*btree.BTreeG[reorder.Item]),
	}
}

// Insert adds or replaces items as-is, without any position check.
func (l *List) Insert(items ...reorder.Item) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range items {
		l.put(it)
	}
}

// IDs returns the IDs of group in display order.
func (l *List) IDs(group string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := []string{}
	if t, ok := l.groups[group]; ok {
		t.Ascend(func(it reorder.Item) bool {
			ids = append(ids, it.ID)
			return true
		})
	}
	return ids
}

// Applies returns how many successful Apply calls were made.
func (l *List) Applies() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.applies
}

func (l *List) Kind() reorder.Kind {
	return l.kind
}

func (l *List) Item(_ context.Context, id string) (reorder.Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	it, ok := l.items[id]
	if !ok {
		return reorder.Item{}, reorder.NotFoundError(l.kind, id)
	}
	return it, nil
}

func (l *List) First(_ context.Context, group string) (reorder.Item, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.groups[group]
	if !ok {
		return reorder.Item{}, false, nil
	}
	it, ok := t.Min()
	return it, ok, nil
}

func (l *List) Last(_ context.Context, group string) (reorder.Item, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.groups[group]
	if !ok {
		return reorder.Item{}, false, nil
	}
	it, ok := t.Max()
	return it, ok, nil
}

func (l *List) Prev(_ context.Context, ref reorder.Item) (reorder.Item, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var found reorder.Item
	var ok bool
	if t, exists := l.groups[ref.Group]; exists {
		t.DescendLessOrEqual(ref, func(it reorder.Item) bool {
			if it.ID == ref.ID {
				return true
			}
			found, ok = it, true
			return false
		})
	}
	return found, ok, nil
}

func (l *List) Next(_ context.Context, ref reorder.Item) (reorder.Item, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var found reorder.Item
	var ok bool
	if t, exists := l.groups[ref.Group]; exists {
		t.AscendGreaterOrEqual(ref, func(it reorder.Item) bool {
			if it.ID == ref.ID {
				return true
			}
			found, ok = it, true
			return false
		})
	}
	return found, ok, nil
}

func (l *List) Items(_ context.Context, group string) ([]reorder.Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []reorder.Item{}
	if t, ok := l.groups[group]; ok {
		t.Ascend(func(it reorder.Item) bool {
			out = append(out, it)
			return true
		})
	}
	return out, nil
}

func (l *List) Groups(_ context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	groups := make([]string, 0, len(l.groups))
	for g, t := range l.groups {
		if t.Len() > 0 {
			groups = append(groups, g)
		}
	}
	sort.Strings(groups)
	return groups, nil
}

func (l *List) Apply(_ context.Context, updates ...reorder.Update) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.FailApply != nil {
		return l.FailApply
	}
	for _, u := range updates {
		if _, ok := l.items[u.ID]; !ok {
			return fmt.Errorf("apply: %w", reorder.NotFoundError(l.kind, u.ID))
		}
	}
	for _, u := range updates {
		it := l.items[u.ID]
		it.Position = u.Position
		if u.Group != "" {
			it.Group = u.Group
		}
		l.put(it)
	}
	l.applies++
	return nil
}

func (l *List) put(it reorder.Item) {
	if old, ok := l.items[it.ID]; ok {
		l.groups[old.Group].Delete(old)
	}
	t, ok := l.groups[it.Group]
	if !ok {
		t = btree.NewG(degree, reorder.Before)
		l.groups[it.Group] = t
	}
	t.ReplaceOrInsert(it)
	l.items[it.ID] = it
}
