package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/tallybook/tally/internal/reorder"
	"github.com/tallybook/tally/internal/store"
)

// Harness runs one scenario against its own store.
type Harness struct {
	store     *store.Store
	reorderer *reorder.Reorderer
	kind      reorder.Kind
	logger    *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Open an in-memory store
//  2. Write the setup items (and parent categories for subcategory runs)
//  3. Run every step in its own transaction, recording a trace event
//  4. Read back the final order and check the expectations
//
// A failing step is recorded in the result and does not stop the run. The
// returned error is reserved for infrastructure failures.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &Harness{
		store: st,
		reorderer: reorder.New(
			reorder.WithMaxDepth(scenario.MaxDepth),
			reorder.WithLogger(logger),
		),
		kind:   scenario.Kind,
		logger: logger,
	}

	if err := h.executeSetup(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		result.Trace = append(result.Trace, h.executeStep(ctx, i, step))
	}

	if err := h.snapshot(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to read final order: %w", err)
	}
	checkExpectations(scenario, result)
	return result, nil
}

// executeSetup writes the setup items with their literal positions.
func (h *Harness) executeSetup(ctx context.Context, s *Scenario) error {
	return h.store.InTx(ctx, func(tx *store.Tx) error {
		if h.kind == reorder.KindSubcategory {
			for i, g := range scenarioGroups(s) {
				parent := store.Category{ID: g, Name: g, Kind: "expense", Position: float64(i + 1)}
				if err := tx.InsertCategory(ctx, parent); err != nil {
					return fmt.Errorf("parent %q: %w", g, err)
				}
			}
		}
		for _, it := range s.Setup {
			if err := h.insert(ctx, tx, it); err != nil {
				return fmt.Errorf("setup %q: %w", it.ID, err)
			}
		}
		return nil
	})
}

func (h *Harness) insert(ctx context.Context, tx *store.Tx, it SetupItem) error {
	switch h.kind {
	case reorder.KindAccount:
		return tx.InsertAccount(ctx, store.Account{
			ID: it.ID, Name: it.ID, Type: it.Group, Currency: "USD",
			Position: it.Position, Archived: it.Archived,
		})
	case reorder.KindCategory:
		return tx.InsertCategory(ctx, store.Category{
			ID: it.ID, Name: it.ID, Kind: it.Group,
			Position: it.Position, Archived: it.Archived,
		})
	case reorder.KindSubcategory:
		return tx.InsertSubcategory(ctx, store.Subcategory{
			ID: it.ID, CategoryID: it.Group, Name: it.ID,
			Position: it.Position, Archived: it.Archived,
		})
	}
	return fmt.Errorf("unknown kind %q", h.kind)
}

// executeStep runs one step in its own transaction and describes it.
func (h *Harness) executeStep(ctx context.Context, index int, step Step) TraceEvent {
	ev := TraceEvent{Step: index, Op: step.Op()}
	err := h.store.InTx(ctx, func(tx *store.Tx) error {
		l, err := tx.List(h.kind)
		if err != nil {
			return err
		}
		switch {
		case step.Move != nil:
			ev.ID = step.Move.ID
			placement, err := reorder.ParsePlacement(step.Move.Placement)
			if err != nil {
				return err
			}
			out, err := h.reorderer.Move(ctx, l, reorder.MoveRequest{
				ID: step.Move.ID, TargetID: step.Move.Target, Placement: placement,
			})
			if err != nil {
				return err
			}
			ev.recordOutcome(out)
		case step.Edge != nil:
			ev.ID = step.Edge.ID
			edge, err := reorder.ParseEdge(step.Edge.Edge)
			if err != nil {
				return err
			}
			out, err := h.reorderer.MoveToEdge(ctx, l, step.Edge.ID, step.Edge.Group, edge)
			if err != nil {
				return err
			}
			ev.recordOutcome(out)
		case step.Insert != nil:
			ev.ID = step.Insert.ID
			edge, err := reorder.ParseEdge(step.Insert.Edge)
			if err != nil {
				return err
			}
			out, err := h.reorderer.EdgePosition(ctx, l, step.Insert.Group, edge)
			if err != nil {
				return err
			}
			ev.recordOutcome(out)
			return h.insert(ctx, tx, SetupItem{ID: step.Insert.ID, Group: step.Insert.Group, Position: out.Position})
		case step.Heal != nil:
			report, err := h.reorderer.Heal(ctx, l, step.Heal.Group)
			if err != nil {
				return err
			}
			ev.Group = report.Group
			ev.Strategy = reorder.StrategySkip
			if !report.Healthy {
				ev.Strategy = reorder.StrategyRenumber
				ev.Updated = report.Updated
			}
		}
		return nil
	})
	if err != nil {
		ev.Strategy = ""
		ev.Error = err.Error()
		h.logger.Debug("step failed", "step", index, "op", ev.Op, "error", err)
	}
	return ev
}

func (ev *TraceEvent) recordOutcome(out reorder.Outcome) {
	ev.Group = out.Group
	ev.Strategy = out.Strategy
	ev.Position = out.Position
	ev.Exhausted = out.Exhausted
	ev.Updated = out.Renumbered
}

// snapshot reads every visible group in display order.
func (h *Harness) snapshot(ctx context.Context, result *Result) error {
	return h.store.InTx(ctx, func(tx *store.Tx) error {
		l, err := tx.List(h.kind)
		if err != nil {
			return err
		}
		groups, err := l.Groups(ctx)
		if err != nil {
			return err
		}
		for _, g := range groups {
			items, err := l.Items(ctx, g)
			if err != nil {
				return err
			}
			ids := make([]string, len(items))
			for i, it := range items {
				ids[i] = it.ID
				result.Positions[it.ID] = it.Position
			}
			result.Order[g] = ids
		}
		return nil
	})
}

// checkExpectations compares the run against the scenario's expect block.
func checkExpectations(s *Scenario, result *Result) {
	for _, ev := range result.Trace {
		if ev.Error != "" {
			result.AddError(fmt.Sprintf("step %d (%s): %s", ev.Step, ev.Op, ev.Error))
		}
	}
	for i, want := range s.Expect.Strategies {
		if got := result.Trace[i].Strategy; got != want {
			result.AddError(fmt.Sprintf("step %d (%s): strategy %q, want %q", i, result.Trace[i].Op, got, want))
		}
	}

	groups := make([]string, 0, len(s.Expect.Order))
	for g := range s.Expect.Order {
		groups = append(groups, g)
	}
	slices.Sort(groups)
	for _, g := range groups {
		want, got := s.Expect.Order[g], result.Order[g]
		if len(want) == 0 && len(got) == 0 {
			continue
		}
		if !slices.Equal(got, want) {
			result.AddError(fmt.Sprintf("group %q: order %v, want %v", g, got, want))
		}
	}

	ids := make([]string, 0, len(s.Expect.Positions))
	for id := range s.Expect.Positions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		want := s.Expect.Positions[id]
		got, ok := result.Positions[id]
		switch {
		case !ok:
			result.AddError(fmt.Sprintf("item %q: not visible after run", id))
		case got != want:
			result.AddError(fmt.Sprintf("item %q: position %v, want %v", id, got, want))
		}
	}
}

// scenarioGroups lists every group a scenario names, in first-seen order.
func scenarioGroups(s *Scenario) []string {
	var groups []string
	add := func(g string) {
		if g != "" && !slices.Contains(groups, g) {
			groups = append(groups, g)
		}
	}
	for _, it := range s.Setup {
		add(it.Group)
	}
	for _, step := range s.Steps {
		switch {
		case step.Edge != nil:
			add(step.Edge.Group)
		case step.Insert != nil:
			add(step.Insert.Group)
		case step.Heal != nil:
			add(step.Heal.Group)
		}
	}
	return groups
}
