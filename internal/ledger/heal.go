package ledger

import (
	"context"

	"github.com/tallybook/tally/internal/reorder"
	"github.com/tallybook/tally/internal/store"
)

// HealAll renumbers every unhealthy group of every kind in one transaction
// and returns a report per group it rewrote.
func (s *Service) HealAll(ctx context.Context) ([]reorder.HealReport, error) {
	return s.sweep(ctx, true)
}

// CheckHealth reports the unhealthy groups of every kind without writing.
func (s *Service) CheckHealth(ctx context.Context) ([]reorder.HealReport, error) {
	return s.sweep(ctx, false)
}

func (s *Service) sweep(ctx context.Context, heal bool) ([]reorder.HealReport, error) {
	reports := []reorder.HealReport{}
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		for _, kind := range reorder.Kinds {
			l, err := tx.List(kind)
			if err != nil {
				return err
			}
			groups, err := l.Groups(ctx)
			if err != nil {
				return err
			}
			for _, group := range groups {
				var report reorder.HealReport
				if heal {
					report, err = s.reorderer.Heal(ctx, l, group)
				} else {
					report, err = s.reorderer.Check(ctx, l, group)
				}
				if err != nil {
					return err
				}
				if !report.Healthy {
					reports = append(reports, report)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(reports) > 0 {
		s.logger.Info("health sweep", "heal", heal, "unhealthy_groups", len(reports))
	}
	return reports, nil
}
