package reorder

import (
	"fmt"
	"strings"
)

// Placement says on which side of the target a moved item lands.
type Placement int

const (
	PlaceBefore Placement = iota
	PlaceAfter
)

func (p Placement) String() string {
	switch p {
	case PlaceBefore:
		return "before"
	case PlaceAfter:
		return "after"
	default:
		return fmt.Sprintf("Placement(%d)", int(p))
	}
}

// ParsePlacement accepts "before" or "after", case-insensitively.
func ParsePlacement(s string) (Placement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "before":
		return PlaceBefore, nil
	case "after":
		return PlaceAfter, nil
	}
	return 0, fmt.Errorf("invalid placement %q: must be before or after", s)
}

// Edge is the first or last slot of a group.
type Edge int

const (
	EdgeFirst Edge = iota
	EdgeLast
)

func (e Edge) String() string {
	switch e {
	case EdgeFirst:
		return "first"
	case EdgeLast:
		return "last"
	default:
		return fmt.Sprintf("Edge(%d)", int(e))
	}
}

// ParseEdge accepts "first"/"top" or "last"/"bottom", case-insensitively.
func ParseEdge(s string) (Edge, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first", "top":
		return EdgeFirst, nil
	case "last", "bottom":
		return EdgeLast, nil
	}
	return 0, fmt.Errorf("invalid edge %q: must be first or last", s)
}

// Strategy is how an operation was carried out.
type Strategy string

const (
	// StrategySkip: the item was already in place; nothing was written.
	StrategySkip Strategy = "skip"

	// StrategySwap: the item exchanged positions with its neighbour.
	StrategySwap Strategy = "swap"

	// StrategySearch: a fresh position was found between the new neighbours.
	StrategySearch Strategy = "search"

	// StrategyRenumber: no usable position existed between the neighbours, so
	// the whole group was renumbered with the item in its new slot.
	StrategyRenumber Strategy = "renumber"
)

// MoveRequest asks for item ID to be displayed immediately before or after
// TargetID. The target's group becomes the item's group.
type MoveRequest struct {
	ID        string
	TargetID  string
	Placement Placement
}

// Outcome reports what an operation did.
type Outcome struct {
	Strategy Strategy `json:"strategy"`
	Position float64  `json:"position"`
	Group    string   `json:"group"`

	// Exhausted is set when the search depth ran out; the group was renumbered.
	Exhausted bool `json:"exhausted,omitempty"`

	// Renumbered counts rows rewritten by a renumber.
	Renumbered int `json:"renumbered,omitempty"`
}

// HealReport describes one group's health check.
type HealReport struct {
	Kind    Kind   `json:"kind"`
	Group   string `json:"group"`
	Items   int    `json:"items"`
	Healthy bool   `json:"healthy"`
	Updated int    `json:"updated"`
}
