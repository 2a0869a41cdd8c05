package ledger

import (
	"context"
	"slices"

	"github.com/tallybook/tally/internal/reorder"
	"github.com/tallybook/tally/internal/store"
)

// CreateAccount validates and inserts an account at an edge of its type.
func (s *Service) CreateAccount(ctx context.Context, in NewAccount) (Account, error) {
	name, err := NormalizeName(in.Name)
	if err != nil {
		return Account{}, err
	}
	typ, err := ParseAccountType(in.Type)
	if err != nil {
		return Account{}, err
	}
	currency, err := ParseCurrency(in.Currency)
	if err != nil {
		return Account{}, err
	}
	balance, err := ParseBalance(in.Balance, currency)
	if err != nil {
		return Account{}, err
	}

	row := store.Account{
		ID:       s.ids.Generate(),
		Name:     name,
		Type:     string(typ),
		Currency: currency,
		Balance:  balance,
	}
	err = s.store.InTx(ctx, func(tx *store.Tx) error {
		if row.Position, err = s.edgePosition(ctx, tx, reorder.KindAccount, row.Type, in.Edge); err != nil {
			return err
		}
		return tx.InsertAccount(ctx, row)
	})
	if err != nil {
		return Account{}, err
	}
	s.logger.Info("created account", "id", row.ID, "type", row.Type, "position", row.Position)
	return accountFromRow(row), nil
}

// GetAccount returns one account, archived or not.
func (s *Service) GetAccount(ctx context.Context, id string) (Account, error) {
	var a Account
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		row, err := tx.Account(ctx, id)
		if err != nil {
			return err
		}
		a = accountFromRow(row)
		return nil
	})
	return a, err
}

// ListAccounts returns accounts ordered by type, then display order within
// each type. Archived accounts follow the active ones of their type.
func (s *Service) ListAccounts(ctx context.Context, includeArchived bool) ([]Account, error) {
	var accounts []Account
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		rows, err := tx.Accounts(ctx, includeArchived)
		if err != nil {
			return err
		}
		accounts = make([]Account, len(rows))
		for i, r := range rows {
			accounts[i] = accountFromRow(r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(accounts, func(a, b Account) int {
		return slices.Index(AccountTypes, a.Type) - slices.Index(AccountTypes, b.Type)
	})
	return accounts, nil
}

// RenameAccount changes an account's display name.
func (s *Service) RenameAccount(ctx context.Context, id, name string) error {
	return s.rename(ctx, reorder.KindAccount, id, name)
}

// ArchiveAccount hides an account from its type's list.
func (s *Service) ArchiveAccount(ctx context.Context, id string) error {
	return s.archive(ctx, reorder.KindAccount, id)
}

// UnarchiveAccount brings an account back at an edge of its type.
func (s *Service) UnarchiveAccount(ctx context.Context, id, edge string) (float64, error) {
	return s.unarchive(ctx, reorder.KindAccount, id, edge)
}

// MoveAccount places an account right before or after another. A target of
// another type changes the account's type.
func (s *Service) MoveAccount(ctx context.Context, id, targetID string, placement reorder.Placement) (reorder.Outcome, error) {
	return s.move(ctx, reorder.KindAccount, id, targetID, placement)
}

// MoveAccountToEdge moves an account to the first or last slot of typ. An
// empty typ keeps the account's type.
func (s *Service) MoveAccountToEdge(ctx context.Context, id, typ string, edge reorder.Edge) (reorder.Outcome, error) {
	group := ""
	if typ != "" {
		t, err := ParseAccountType(typ)
		if err != nil {
			return reorder.Outcome{}, err
		}
		group = string(t)
	}
	var out reorder.Outcome
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		var err error
		out, err = s.moveToEdge(ctx, tx, reorder.KindAccount, id, group, edge)
		return err
	})
	return out, err
}
