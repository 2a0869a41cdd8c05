// Package seed loads a starting budget layout from a CUE file and creates it
// through the ledger service.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/tallybook/tally/internal/ledger"
)

//go:embed schema.cue
var schemaCUE string

// File is a decoded seed document.
type File struct {
	Accounts   []Account  `json:"accounts"`
	Categories []Category `json:"categories"`
}

// Account is one account entry. Balance is a decimal string in major units.
type Account struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
}

// Category is one category entry with the names of its subcategories.
type Category struct {
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	Subcategories []string `json:"subcategories"`
}

// Error is a seed file that does not satisfy the schema.
type Error struct {
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Load reads and validates a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return Parse(path, data)
}

// Parse validates src against the seed schema and decodes it. filename is
// used in error positions only.
func Parse(filename string, src []byte) (*File, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling seed schema: %w", err)
	}

	doc := ctx.CompileBytes(src, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Seed")).Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var f File
	if err := v.Decode(&f); err != nil {
		return nil, formatCUEError(err)
	}
	return &f, nil
}

// Summary counts what Apply created.
type Summary struct {
	Accounts      int `json:"accounts"`
	Categories    int `json:"categories"`
	Subcategories int `json:"subcategories"`
}

// Apply creates every entry of f in file order. Each entry goes to the last
// slot of its group, so the file order becomes the display order. Entries are
// created one transaction each; on error, those already created remain.
func Apply(ctx context.Context, svc *ledger.Service, f *File) (Summary, error) {
	var sum Summary
	for _, a := range f.Accounts {
		_, err := svc.CreateAccount(ctx, ledger.NewAccount{
			Name:     a.Name,
			Type:     a.Type,
			Currency: a.Currency,
			Balance:  a.Balance,
			Edge:     "last",
		})
		if err != nil {
			return sum, fmt.Errorf("account %q: %w", a.Name, err)
		}
		sum.Accounts++
	}
	for _, c := range f.Categories {
		cat, err := svc.CreateCategory(ctx, ledger.NewCategory{Name: c.Name, Kind: c.Kind, Edge: "last"})
		if err != nil {
			return sum, fmt.Errorf("category %q: %w", c.Name, err)
		}
		sum.Categories++
		for _, name := range c.Subcategories {
			_, err := svc.CreateSubcategory(ctx, ledger.NewSubcategory{CategoryID: cat.ID, Name: name, Edge: "last"})
			if err != nil {
				return sum, fmt.Errorf("subcategory %q of %q: %w", name, c.Name, err)
			}
			sum.Subcategories++
		}
	}
	return sum, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &Error{Message: first.Error(), Pos: positions[0]}
	}
	return &Error{Message: first.Error()}
}
