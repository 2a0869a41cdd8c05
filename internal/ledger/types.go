package ledger

import (
	"slices"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/tallybook/tally/internal/store"
)

// AccountType is the ordering group of an account.
type AccountType string

const (
	AccountCash       AccountType = "cash"
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCredit     AccountType = "credit"
	AccountInvestment AccountType = "investment"
	AccountLoan       AccountType = "loan"
)

// AccountTypes lists every account type in display order.
var AccountTypes = []AccountType{
	AccountCash, AccountChecking, AccountSavings, AccountCredit, AccountInvestment, AccountLoan,
}

// ParseAccountType accepts an account type name, case-insensitively.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(AccountTypes, t) {
		return "", invalidf("account type %q: must be one of %s", s, joinNames(AccountTypes))
	}
	return t, nil
}

// CategoryKind is the ordering group of a category.
type CategoryKind string

const (
	CategoryIncome  CategoryKind = "income"
	CategoryExpense CategoryKind = "expense"
)

// CategoryKinds lists every category kind in display order.
var CategoryKinds = []CategoryKind{CategoryIncome, CategoryExpense}

// ParseCategoryKind accepts "income" or "expense", case-insensitively.
func ParseCategoryKind(s string) (CategoryKind, error) {
	k := CategoryKind(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(CategoryKinds, k) {
		return "", invalidf("category kind %q: must be one of %s", s, joinNames(CategoryKinds))
	}
	return k, nil
}

// Account is a money account.
type Account struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Type     AccountType     `json:"type"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
	Position float64         `json:"position"`
	Archived bool            `json:"archived"`
}

// DisplayBalance formats the balance in the account's currency.
func (a Account) DisplayBalance() string {
	return formatMoney(a.Balance, a.Currency)
}

// Category groups transactions as income or expense.
type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Kind          CategoryKind  `json:"kind"`
	Position      float64       `json:"position"`
	Archived      bool          `json:"archived"`
	Subcategories []Subcategory `json:"subcategories,omitempty"`
}

// Subcategory refines a category. Its ordering group is CategoryID.
type Subcategory struct {
	ID         string  `json:"id"`
	CategoryID string  `json:"category_id"`
	Name       string  `json:"name"`
	Position   float64 `json:"position"`
	Archived   bool    `json:"archived"`
}

// NewAccount describes an account to create. An empty Edge uses the
// service's default insertion edge.
type NewAccount struct {
	Name     string
	Type     string
	Currency string
	Balance  string
	Edge     string
}

// NewCategory describes a category to create.
type NewCategory struct {
	Name string
	Kind string
	Edge string
}

// NewSubcategory describes a subcategory to create under CategoryID.
type NewSubcategory struct {
	CategoryID string
	Name       string
	Edge       string
}

// NormalizeName trims and NFC-normalizes a display name, so names typed on
// different platforms compare equal.
func NormalizeName(s string) (string, error) {
	name := norm.NFC.String(strings.TrimSpace(s))
	if name == "" {
		return "", invalidf("name must not be empty")
	}
	return name, nil
}

// ParseCurrency validates an ISO 4217 code known to go-money.
func ParseCurrency(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if money.GetCurrency(code) == nil {
		return "", invalidf("unknown currency %q", s)
	}
	return code, nil
}

// ParseBalance parses an amount in major units. Empty means zero. The amount
// may not carry more decimals than the currency allows.
func ParseBalance(s, currency string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, invalidf("balance %q: %v", s, err)
	}
	cur := money.GetCurrency(currency)
	if cur == nil {
		return decimal.Decimal{}, invalidf("unknown currency %q", currency)
	}
	if !d.Equal(d.Round(int32(cur.Fraction))) {
		return decimal.Decimal{}, invalidf("balance %s: %s allows %d decimal places", s, currency, cur.Fraction)
	}
	return d, nil
}

// formatMoney renders a major-unit amount with the currency's symbol and
// separators.
func formatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.String() + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

func joinNames[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func accountFromRow(r store.Account) Account {
	return Account{
		ID:       r.ID,
		Name:     r.Name,
		Type:     AccountType(r.Type),
		Currency: r.Currency,
		Balance:  r.Balance,
		Position: r.Position,
		Archived: r.Archived,
	}
}

func categoryFromRow(r store.Category) Category {
	return Category{
		ID:       r.ID,
		Name:     r.Name,
		Kind:     CategoryKind(r.Kind),
		Position: r.Position,
		Archived: r.Archived,
	}
}

func subcategoryFromRow(r store.Subcategory) Subcategory {
	return Subcategory{
		ID:         r.ID,
		CategoryID: r.CategoryID,
		Name:       r.Name,
		Position:   r.Position,
		Archived:   r.Archived,
	}
}
