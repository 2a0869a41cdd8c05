package ledger

import (
	"errors"
	"fmt"

	"github.com/tallybook/tally/internal/reorder"
)

var (
	// ErrNotFound means the ID names no item of the expected kind.
	ErrNotFound = reorder.ErrNotFound

	// ErrInvalidInput wraps every validation failure.
	ErrInvalidInput = errors.New("invalid input")

	// ErrArchived means the operation needs an active item.
	ErrArchived = errors.New("item is archived")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func archivedError(kind reorder.Kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrArchived)
}
