package position

import "math"

// Assignment pairs an item with the position Heal computed for it.
type Assignment[T any] struct {
	Item     T
	Position float64
}

// IsHealthy reports whether positions are pairwise distinct, finite and
// strictly positive. An empty group is always healthy.
func IsHealthy(positions []float64) bool {
	seen := make(map[float64]struct{}, len(positions))
	for _, p := range positions {
		if !(p > 0) || math.IsInf(p, 0) {
			return false
		}
		if _, dup := seen[p]; dup {
			return false
		}
		seen[p] = struct{}{}
	}
	return true
}

// Healthy is IsHealthy over arbitrary items.
func Healthy[T any](items []T, positionOf func(T) float64) bool {
	positions := make([]float64, len(items))
	for i, it := range items {
		positions[i] = positionOf(it)
	}
	return IsHealthy(positions)
}

// Heal computes fresh positions for items given in desired display order,
// first item first.
//
// The last item receives 1, the one above it 2, and so on, so the first item
// ends up with the largest integer. Integers are the simplest rationals, which
// also resets the precision consumed by earlier fractional inserts.
//
// Only items whose position changes are returned, in display order. The
// result is not minimal: every item is renumbered even if most were fine.
func Heal[T any](items []T, positionOf func(T) float64) []Assignment[T] {
	fresh := make([]float64, len(items))
	s := NewSearch()
	for i := len(items) - 1; i >= 0; i-- {
		fresh[i] = s.Value()
		s.GoRight()
	}

	var out []Assignment[T]
	for i, it := range items {
		if positionOf(it) != fresh[i] {
			out = append(out, Assignment[T]{Item: it, Position: fresh[i]})
		}
	}
	return out
}
