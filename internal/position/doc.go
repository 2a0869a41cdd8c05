// Package position manufactures and repairs fractional sort keys.
//
// A position is a finite, strictly positive float64. Items of one ordering
// group are displayed in descending position order: the greatest position is
// the first row. Moving an item only rewrites that item's position, which
// keeps edits local under eventually consistent replication.
//
// New positions come from a binary search over the Stern–Brocot tree (see
// Search). The search always returns the rational with the smallest
// numerator and denominator inside the requested interval, so repeated
// insertions at the same boundary consume double precision slowly.
//
// When a group degenerates (duplicate or non-positive positions), Heal
// reassigns the consecutive integers 1..n in the desired order.
//
// Nothing in this package holds shared state; every Search is scoped to the
// call that created it.
package position
