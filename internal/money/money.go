// Package money holds the value types the ledger accumulates: a single
// currency-tagged amount and a per-currency balance.
package money

import (
	"fmt"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/model"
)

// UnsupportedCurrencyError reports a currency outside the configured set.
type UnsupportedCurrencyError struct {
	Currency model.Currency
}

func (e *UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("unsupported currency %q", e.Currency)
}

// Money is an immutable currency-tagged decimal amount.
type Money struct {
	currency model.Currency
	amount   decimal.Decimal
}

// New returns a Money value.
func New(currency model.Currency, amount decimal.Decimal) Money {
	return Money{currency: currency, amount: amount}
}

// FromEntry returns the amount carried by a journal leg.
func FromEntry(e model.JournalEntry) Money {
	return New(e.Currency, e.Amount)
}

func (m Money) Currency() model.Currency { return m.currency }
func (m Money) Amount() decimal.Decimal  { return m.amount }
func (m Money) IsZero() bool             { return m.amount.IsZero() }
func (m Money) Neg() Money               { return Money{currency: m.currency, amount: m.amount.Neg()} }

// Equal compares currency and numeric value; "1.0" equals "1.00".
func (m Money) Equal(o Money) bool {
	return m.currency == o.currency && m.amount.Equal(o.amount)
}

// String formats the amount with the currency's ISO template, e.g. "$12.50".
// Currencies unknown to the ISO table fall back to "12.50 XYZ".
func (m Money) String() string {
	cur := gomoney.GetCurrency(string(m.currency))
	if cur == nil {
		return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
	}
	minor := m.amount.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.Round(0).IntPart())
}

// IsISOCurrency reports whether code is a known ISO 4217 currency.
func IsISOCurrency(code model.Currency) bool {
	return gomoney.GetCurrency(string(code)) != nil
}
