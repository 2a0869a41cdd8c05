package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tallybook/tally/internal/reorder"
	"github.com/tallybook/tally/internal/store"
)

// Service runs ledger operations against a store.
type Service struct {
	store      *store.Store
	reorderer  *reorder.Reorderer
	ids        IDGenerator
	logger     *slog.Logger
	insertEdge reorder.Edge
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator replaces the UUIDv7 generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(s *Service) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithInsertEdge sets where new items go when the caller does not say.
func WithInsertEdge(edge reorder.Edge) Option {
	return func(s *Service) {
		s.insertEdge = edge
	}
}

// New creates a Service. A nil reorderer gets the defaults.
func New(st *store.Store, r *reorder.Reorderer, opts ...Option) *Service {
	if r == nil {
		r = reorder.New()
	}
	s := &Service{
		store:      st,
		reorderer:  r,
		ids:        UUIDv7Generator{},
		logger:     slog.Default(),
		insertEdge: reorder.EdgeFirst,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// move places an active item next to an active target of the same kind.
func (s *Service) move(ctx context.Context, kind reorder.Kind, id, targetID string, placement reorder.Placement) (reorder.Outcome, error) {
	var out reorder.Outcome
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		for _, ref := range []string{id, targetID} {
			if err := requireActive(ctx, tx, kind, ref); err != nil {
				return err
			}
		}
		l, err := tx.List(kind)
		if err != nil {
			return err
		}
		out, err = s.reorderer.Move(ctx, l, reorder.MoveRequest{ID: id, TargetID: targetID, Placement: placement})
		if err != nil {
			return err
		}
		return s.settle(ctx, l, out)
	})
	if err != nil {
		return reorder.Outcome{}, err
	}
	s.logger.Debug("moved", "kind", kind, "id", id, "target", targetID,
		"placement", placement, "strategy", out.Strategy, "position", out.Position)
	return out, nil
}

// moveToEdge moves an active item to an edge of group. An empty group keeps
// the item's own.
func (s *Service) moveToEdge(ctx context.Context, tx *store.Tx, kind reorder.Kind, id, group string, edge reorder.Edge) (reorder.Outcome, error) {
	if err := requireActive(ctx, tx, kind, id); err != nil {
		return reorder.Outcome{}, err
	}
	l, err := tx.List(kind)
	if err != nil {
		return reorder.Outcome{}, err
	}
	out, err := s.reorderer.MoveToEdge(ctx, l, id, group, edge)
	if err != nil {
		return reorder.Outcome{}, err
	}
	return out, s.settle(ctx, l, out)
}

// edgePosition returns the position a new item of kind gets at the edge of
// group. edgeName may be empty for the service default.
func (s *Service) edgePosition(ctx context.Context, tx *store.Tx, kind reorder.Kind, group, edgeName string) (float64, error) {
	edge := s.insertEdge
	if edgeName != "" {
		var err error
		if edge, err = reorder.ParseEdge(edgeName); err != nil {
			return 0, invalidf("%v", err)
		}
	}
	l, err := tx.List(kind)
	if err != nil {
		return 0, err
	}
	out, err := s.reorderer.EdgePosition(ctx, l, group, edge)
	if err != nil {
		return 0, err
	}
	return out.Position, nil
}

// settle heals the group an exhausted operation landed in.
func (s *Service) settle(ctx context.Context, l reorder.List, out reorder.Outcome) error {
	if !out.Exhausted {
		return nil
	}
	if _, err := s.reorderer.Heal(ctx, l, out.Group); err != nil {
		return fmt.Errorf("heal after exhausted search: %w", err)
	}
	return nil
}

func (s *Service) rename(ctx context.Context, kind reorder.Kind, id, name string) error {
	name, err := NormalizeName(name)
	if err != nil {
		return err
	}
	return s.store.InTx(ctx, func(tx *store.Tx) error {
		return tx.Rename(ctx, kind, id, name)
	})
}

// archive hides an item from its group. Archiving twice is a no-op.
func (s *Service) archive(ctx context.Context, kind reorder.Kind, id string) error {
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		e, err := tx.Entry(ctx, kind, id)
		if err != nil {
			return err
		}
		if e.Archived {
			return nil
		}
		return tx.Archive(ctx, kind, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("archived", "kind", kind, "id", id)
	return nil
}

// unarchive reinserts an archived item at an edge of its group. The edge is
// computed while the item is still hidden, so its stale position plays no
// part. Unarchiving an active item is a no-op.
func (s *Service) unarchive(ctx context.Context, kind reorder.Kind, id string, edgeName string) (float64, error) {
	var pos float64
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		e, err := tx.Entry(ctx, kind, id)
		if err != nil {
			return err
		}
		if !e.Archived {
			pos = e.Position
			return nil
		}
		if kind == reorder.KindSubcategory {
			if err := requireActive(ctx, tx, reorder.KindCategory, e.Group); err != nil {
				return fmt.Errorf("parent: %w", err)
			}
		}
		if pos, err = s.edgePosition(ctx, tx, kind, e.Group, edgeName); err != nil {
			return err
		}
		return tx.Restore(ctx, kind, id, pos)
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("unarchived", "kind", kind, "id", id, "position", pos)
	return pos, nil
}

// requireActive fails with ErrNotFound or ErrArchived unless id names an
// active item of kind.
func requireActive(ctx context.Context, tx *store.Tx, kind reorder.Kind, id string) error {
	e, err := tx.Entry(ctx, kind, id)
	if err != nil {
		return err
	}
	if e.Archived {
		return archivedError(kind, id)
	}
	return nil
}

// IsNotFound reports whether err means a missing item.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
