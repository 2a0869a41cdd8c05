package reorder

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/tallybook/tally/internal/position"
)

// Recorder receives reorder telemetry. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveMove(kind Kind, strategy Strategy, depth int)
	ObserveExhausted(kind Kind)
	ObserveHeal(kind Kind, updated int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveMove(Kind, Strategy, int) {}
func (nopRecorder) ObserveExhausted(Kind)           {}
func (nopRecorder) ObserveHeal(Kind, int)           {}

// Reorderer turns reordering intents into position writes.
//
// It holds configuration only. Every operation receives the List of the
// caller's transaction, reads the neighbours it needs, then issues a single
// Apply, so a failed operation leaves nothing behind once the transaction is
// rolled back.
type Reorderer struct {
	maxDepth int
	logger   *slog.Logger
	recorder Recorder
}

// Option configures a Reorderer.
type Option func(*Reorderer)

// WithMaxDepth bounds each position search. Values <= 0 keep the default.
func WithMaxDepth(depth int) Option {
	return func(r *Reorderer) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithLogger sets the logger used for debug traces and drift warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reorderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder sets the telemetry sink.
func WithRecorder(rec Recorder) Option {
	return func(r *Reorderer) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// New creates a Reorderer.
func New(opts ...Option) *Reorderer {
	r := &Reorderer{
		maxDepth: position.DefaultMaxDepth,
		logger:   slog.Default(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxDepth returns the configured search depth.
func (r *Reorderer) MaxDepth() int {
	return r.maxDepth
}

// slot is the place an item should end up: between above and below in group.
type slot struct {
	group    string
	above    Item
	hasAbove bool
	below    Item
	hasBelow bool
}

func (s slot) bounds() (lower, upper float64) {
	lower, upper = 0, math.Inf(1)
	if s.hasBelow {
		lower = s.below.Position
	}
	if s.hasAbove {
		upper = s.above.Position
	}
	return lower, upper
}

func (s slot) occupiedBy(id string) bool {
	return (s.hasAbove && s.above.ID == id) || (s.hasBelow && s.below.ID == id)
}

// Move places req.ID immediately before or after req.TargetID.
//
// Moving next to an item of another group is a cross-group move: the item
// takes the target's group and its new position in one write.
func (r *Reorderer) Move(ctx context.Context, l List, req MoveRequest) (Outcome, error) {
	item, err := l.Item(ctx, req.ID)
	if err != nil {
		return Outcome{}, fmt.Errorf("move: %w", err)
	}
	if req.TargetID == req.ID {
		return r.skip(l, item), nil
	}
	target, err := l.Item(ctx, req.TargetID)
	if err != nil {
		return Outcome{}, fmt.Errorf("move: target: %w", err)
	}

	s := slot{group: target.Group}
	// swapWith is set when the item currently sits right next to the target
	// on the far side, so exchanging the two positions yields the request.
	var swapWith bool
	switch req.Placement {
	case PlaceBefore:
		s.below, s.hasBelow = target, true
		if s.above, s.hasAbove, err = l.Prev(ctx, target); err != nil {
			return Outcome{}, fmt.Errorf("move: read neighbour: %w", err)
		}
		next, ok, err := l.Next(ctx, target)
		if err != nil {
			return Outcome{}, fmt.Errorf("move: read neighbour: %w", err)
		}
		swapWith = ok && next.ID == item.ID
	case PlaceAfter:
		s.above, s.hasAbove = target, true
		if s.below, s.hasBelow, err = l.Next(ctx, target); err != nil {
			return Outcome{}, fmt.Errorf("move: read neighbour: %w", err)
		}
		prev, ok, err := l.Prev(ctx, target)
		if err != nil {
			return Outcome{}, fmt.Errorf("move: read neighbour: %w", err)
		}
		swapWith = ok && prev.ID == item.ID
	default:
		return Outcome{}, fmt.Errorf("move: invalid placement %v", req.Placement)
	}

	if item.Group == s.group {
		if s.occupiedBy(item.ID) {
			return r.skip(l, item), nil
		}
		if swapWith && item.Position != target.Position {
			return r.swap(ctx, l, item, target)
		}
	}
	return r.place(ctx, l, item, s)
}

// MoveToEdge moves an item to the first or last slot of group. An empty
// group keeps the item's current group.
func (r *Reorderer) MoveToEdge(ctx context.Context, l List, id, group string, edge Edge) (Outcome, error) {
	item, err := l.Item(ctx, id)
	if err != nil {
		return Outcome{}, fmt.Errorf("move to %s: %w", edge, err)
	}
	if group == "" {
		group = item.Group
	}
	same := group == item.Group
	s := slot{group: group}

	switch edge {
	case EdgeFirst:
		first, ok, err := l.First(ctx, group)
		if err != nil {
			return Outcome{}, fmt.Errorf("move to %s: %w", edge, err)
		}
		if same && ok {
			if first.ID == item.ID {
				return r.skip(l, item), nil
			}
			prev, hasPrev, err := l.Prev(ctx, item)
			if err != nil {
				return Outcome{}, fmt.Errorf("move to %s: %w", edge, err)
			}
			if hasPrev && prev.ID == first.ID && item.Position != first.Position {
				return r.swap(ctx, l, item, first)
			}
		}
		s.below, s.hasBelow = first, ok
	case EdgeLast:
		last, ok, err := l.Last(ctx, group)
		if err != nil {
			return Outcome{}, fmt.Errorf("move to %s: %w", edge, err)
		}
		if same && ok {
			if last.ID == item.ID {
				return r.skip(l, item), nil
			}
			next, hasNext, err := l.Next(ctx, item)
			if err != nil {
				return Outcome{}, fmt.Errorf("move to %s: %w", edge, err)
			}
			if hasNext && next.ID == last.ID && item.Position != last.Position {
				return r.swap(ctx, l, item, last)
			}
		}
		s.above, s.hasAbove = last, ok
	default:
		return Outcome{}, fmt.Errorf("move: invalid edge %v", edge)
	}
	return r.place(ctx, l, item, s)
}

// EdgePosition returns the position a new or reactivated item needs to
// become the first or last of group. Nothing is written unless the group had
// to be renumbered to make room.
func (r *Reorderer) EdgePosition(ctx context.Context, l List, group string, edge Edge) (Outcome, error) {
	var exhausted bool
	for attempt := 0; ; attempt++ {
		var lower, upper float64
		switch edge {
		case EdgeFirst:
			first, ok, err := l.First(ctx, group)
			if err != nil {
				return Outcome{}, fmt.Errorf("edge position: %w", err)
			}
			lower, upper = 0, math.Inf(1)
			if ok {
				lower = first.Position
			}
		case EdgeLast:
			last, ok, err := l.Last(ctx, group)
			if err != nil {
				return Outcome{}, fmt.Errorf("edge position: %w", err)
			}
			lower, upper = 0, math.Inf(1)
			if ok {
				upper = last.Position
			}
		default:
			return Outcome{}, fmt.Errorf("edge position: invalid edge %v", edge)
		}

		s, err := position.Locate(lower, upper, r.maxDepth)
		if err == nil {
			r.recorder.ObserveMove(l.Kind(), StrategySearch, s.Depth())
			return Outcome{
				Strategy:  StrategySearch,
				Position:  s.Value(),
				Group:     group,
				Exhausted: exhausted,
			}, nil
		}
		if attempt > 0 || !(position.IsExhausted(err) || position.IsInvalidRange(err)) {
			return Outcome{}, fmt.Errorf("edge position: %w", err)
		}

		if position.IsExhausted(err) {
			exhausted = true
			r.recorder.ObserveExhausted(l.Kind())
		}
		r.logger.Warn("no room at group edge, renumbering",
			"kind", l.Kind(), "group", group, "edge", edge, "error", err)
		if _, err := r.renumberGroup(ctx, l, group); err != nil {
			return Outcome{}, fmt.Errorf("edge position: %w", err)
		}
	}
}

// Check reports the health of group without writing.
func (r *Reorderer) Check(ctx context.Context, l List, group string) (HealReport, error) {
	items, err := l.Items(ctx, group)
	if err != nil {
		return HealReport{}, fmt.Errorf("check %s group %q: %w", l.Kind(), group, err)
	}
	return HealReport{
		Kind:    l.Kind(),
		Group:   group,
		Items:   len(items),
		Healthy: position.Healthy(items, itemPosition),
	}, nil
}

// Heal renumbers group if its positions collide or are not positive.
// Healthy groups are left untouched.
func (r *Reorderer) Heal(ctx context.Context, l List, group string) (HealReport, error) {
	report, err := r.Check(ctx, l, group)
	if err != nil || report.Healthy {
		return report, err
	}
	updated, err := r.renumberGroup(ctx, l, group)
	if err != nil {
		return report, err
	}
	report.Updated = updated
	r.logger.Info("healed group",
		"kind", l.Kind(), "group", group, "items", report.Items, "updated", updated)
	return report, nil
}

func (r *Reorderer) skip(l List, item Item) Outcome {
	r.recorder.ObserveMove(l.Kind(), StrategySkip, 0)
	r.logger.Debug("reorder skipped", "kind", l.Kind(), "id", item.ID)
	return Outcome{Strategy: StrategySkip, Position: item.Position, Group: item.Group}
}

func (r *Reorderer) swap(ctx context.Context, l List, item, other Item) (Outcome, error) {
	err := l.Apply(ctx,
		Update{ID: item.ID, Position: other.Position},
		Update{ID: other.ID, Position: item.Position},
	)
	if err != nil {
		return Outcome{}, fmt.Errorf("swap: %w", err)
	}
	r.recorder.ObserveMove(l.Kind(), StrategySwap, 0)
	r.logger.Debug("reorder swapped", "kind", l.Kind(), "id", item.ID, "with", other.ID)
	return Outcome{Strategy: StrategySwap, Position: other.Position, Group: item.Group}, nil
}

func (r *Reorderer) place(ctx context.Context, l List, item Item, s slot) (Outcome, error) {
	lower, upper := s.bounds()
	cursor, err := position.Locate(lower, upper, r.maxDepth)
	switch {
	case err == nil:
	case position.IsExhausted(err):
		r.recorder.ObserveExhausted(l.Kind())
		r.logger.Warn("position search exhausted, renumbering group",
			"kind", l.Kind(), "group", s.group, "id", item.ID, "error", err)
		return r.renumberInto(ctx, l, item, s, true)
	case position.IsInvalidRange(err):
		r.logger.Warn("neighbour positions collide, renumbering group",
			"kind", l.Kind(), "group", s.group, "id", item.ID, "error", err)
		return r.renumberInto(ctx, l, item, s, false)
	default:
		return Outcome{}, err
	}

	u := Update{ID: item.ID, Position: cursor.Value()}
	if s.group != item.Group {
		u.Group = s.group
	}
	if err := l.Apply(ctx, u); err != nil {
		return Outcome{}, fmt.Errorf("write position: %w", err)
	}
	r.recorder.ObserveMove(l.Kind(), StrategySearch, cursor.Depth())
	num, den := cursor.Fraction()
	r.logger.Debug("reorder placed", "kind", l.Kind(), "id", item.ID, "group", s.group,
		"num", num, "den", den, "depth", cursor.Depth())
	return Outcome{Strategy: StrategySearch, Position: cursor.Value(), Group: s.group}, nil
}

// renumberInto lays group out as integers with item inserted right below
// s.above (or at the top when there is none), in a single write.
func (r *Reorderer) renumberInto(ctx context.Context, l List, item Item, s slot, exhausted bool) (Outcome, error) {
	items, err := l.Items(ctx, s.group)
	if err != nil {
		return Outcome{}, fmt.Errorf("renumber: %w", err)
	}

	order := make([]Item, 0, len(items)+1)
	inserted := false
	if !s.hasAbove {
		order = append(order, item)
		inserted = true
	}
	for _, it := range items {
		if it.ID == item.ID {
			continue
		}
		order = append(order, it)
		if !inserted && it.ID == s.above.ID {
			order = append(order, item)
			inserted = true
		}
	}
	if !inserted {
		order = append(order, item)
	}

	cross := s.group != item.Group
	pos := item.Position
	var wroteItem bool
	assignments := position.Heal(order, itemPosition)
	updates := make([]Update, 0, len(assignments)+1)
	for _, a := range assignments {
		u := Update{ID: a.Item.ID, Position: a.Position}
		if a.Item.ID == item.ID {
			pos = a.Position
			wroteItem = true
			if cross {
				u.Group = s.group
			}
		}
		updates = append(updates, u)
	}
	if cross && !wroteItem {
		updates = append(updates, Update{ID: item.ID, Position: item.Position, Group: s.group})
	}
	if err := l.Apply(ctx, updates...); err != nil {
		return Outcome{}, fmt.Errorf("renumber: %w", err)
	}

	r.recorder.ObserveMove(l.Kind(), StrategyRenumber, 0)
	r.recorder.ObserveHeal(l.Kind(), len(updates))
	return Outcome{
		Strategy:   StrategyRenumber,
		Position:   pos,
		Group:      s.group,
		Exhausted:  exhausted,
		Renumbered: len(updates),
	}, nil
}

func (r *Reorderer) renumberGroup(ctx context.Context, l List, group string) (int, error) {
	items, err := l.Items(ctx, group)
	if err != nil {
		return 0, fmt.Errorf("renumber %s group %q: %w", l.Kind(), group, err)
	}
	assignments := position.Heal(items, itemPosition)
	if len(assignments) == 0 {
		return 0, nil
	}
	updates := make([]Update, len(assignments))
	for i, a := range assignments {
		updates[i] = Update{ID: a.Item.ID, Position: a.Position}
	}
	if err := l.Apply(ctx, updates...); err != nil {
		return 0, fmt.Errorf("renumber %s group %q: %w", l.Kind(), group, err)
	}
	r.recorder.ObserveHeal(l.Kind(), len(updates))
	return len(updates), nil
}

func itemPosition(it Item) float64 {
	return it.Position
}
