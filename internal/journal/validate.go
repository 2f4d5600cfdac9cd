package journal

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/id"
	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/money"
)

// MinLegs is the smallest leg count a double-entry transaction may have.
const MinLegs = 2

// AccountingEquationError reports a transaction whose legs do not net to zero
// in some currency, or that has fewer than MinLegs legs. For the leg-count
// case Currency is empty and Residual is zero.
type AccountingEquationError struct {
	TransactionID int
	Currency      model.Currency
	Residual      decimal.Decimal
	LegCount      int
}

func (e *AccountingEquationError) Error() string {
	if e.Currency == "" {
		return fmt.Sprintf("transaction %d: %d leg(s), need at least %d", e.TransactionID, e.LegCount, MinLegs)
	}
	return fmt.Sprintf("transaction %d: %s legs sum to %s, expected 0 (%d legs)",
		e.TransactionID, e.Currency, e.Residual.StringFixed(2), e.LegCount)
}

// ValidationError describes a malformed leg, or a malformed transaction when
// EntryID is the bare transaction ID.
type ValidationError struct {
	EntryID     string
	Description string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("leg [%s]: %s", e.EntryID, e.Description)
}

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id int) bool
}

// Validator checks the double-entry invariant on complete transactions.
type Validator struct {
	Currencies model.CurrencySet
	// Accounts is optional; when set, legs must reference known accounts.
	Accounts AccountChecker
}

// NewValidator returns a Validator for the given currency set.
func NewValidator(currencies model.CurrencySet, accounts AccountChecker) *Validator {
	return &Validator{Currencies: currencies, Accounts: accounts}
}

// Validate reports every violation in tx joined into one error, or nil.
// errors.As extracts *AccountingEquationError, *money.UnsupportedCurrencyError
// and *ValidationError from the result. tx is not modified.
func (v *Validator) Validate(tx model.Transaction) error {
	var errs []error

	if parsed, err := model.ParseTransactionType(string(tx.Type)); err != nil || parsed != tx.Type {
		errs = append(errs, &ValidationError{
			EntryID:     id.FormatTransactionID(tx.ID),
			Description: fmt.Sprintf("unknown transaction type %q", tx.Type),
		})
	}

	if len(tx.Entries) < MinLegs {
		errs = append(errs, &AccountingEquationError{TransactionID: tx.ID, LegCount: len(tx.Entries)})
	}

	sums := make(map[model.Currency]decimal.Decimal)
	for _, e := range tx.Entries {
		if !v.Currencies.Contains(e.Currency) {
			errs = append(errs, &money.UnsupportedCurrencyError{Currency: e.Currency})
			continue
		}
		if !e.Amount.Equal(e.Amount.Round(2)) {
			errs = append(errs, &ValidationError{
				EntryID:     e.ID,
				Description: fmt.Sprintf("amount %s has more than 2 decimal places", e.Amount),
			})
		}
		if v.Accounts != nil && !v.Accounts.Exists(e.AccountID) {
			errs = append(errs, &ValidationError{
				EntryID:     e.ID,
				Description: fmt.Sprintf("unknown account %d", e.AccountID),
			})
		}
		if e.TransactionID != 0 && tx.ID != 0 && e.TransactionID != tx.ID {
			errs = append(errs, &ValidationError{
				EntryID:     e.ID,
				Description: fmt.Sprintf("belongs to transaction %d, not %d", e.TransactionID, tx.ID),
			})
		}
		sums[e.Currency] = sums[e.Currency].Add(e.Amount)
	}

	// Report residuals in configured currency order.
	for _, c := range v.Currencies.Codes() {
		sum, ok := sums[c]
		if !ok || sum.IsZero() {
			continue
		}
		errs = append(errs, &AccountingEquationError{
			TransactionID: tx.ID,
			Currency:      c,
			Residual:      sum,
			LegCount:      len(tx.Entries),
		})
	}

	return errors.Join(errs...)
}

// Validate checks tx against the given currencies without an account check.
func Validate(tx model.Transaction, currencies model.CurrencySet) error {
	return NewValidator(currencies, nil).Validate(tx)
}
