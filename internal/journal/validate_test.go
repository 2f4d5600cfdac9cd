package journal

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/money"
)

// mockAccounts implements AccountChecker for testing.
type mockAccounts struct {
	ids map[int]bool
}

func (m *mockAccounts) Exists(id int) bool {
	return m.ids[id]
}

func newMockAccounts(ids ...int) *mockAccounts {
	m := &mockAccounts{ids: make(map[int]bool)}
	for _, id := range ids {
		m.ids[id] = true
	}
	return m
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// leg builds an entry for account 1 unless told otherwise.
func leg(currency model.Currency, amount string) model.JournalEntry {
	return model.JournalEntry{AccountID: 1, Currency: currency, Amount: dec(amount)}
}

func tx(entries ...model.JournalEntry) model.Transaction {
	return model.Transaction{ID: 9, Type: model.TransactionTypeExpense, Entries: entries}
}

func equationErrors(err error) []*AccountingEquationError {
	var out []*AccountingEquationError
	var walk func(error)
	walk = func(err error) {
		if e, ok := err.(*AccountingEquationError); ok {
			out = append(out, e)
			return
		}
		if j, ok := err.(interface{ Unwrap() []error }); ok {
			for _, inner := range j.Unwrap() {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}

func TestValidate_Balanced(t *testing.T) {
	err := Validate(tx(leg(model.USD, "50"), leg(model.USD, "-50")), model.DefaultCurrencies)
	assert.NoError(t, err)
}

func TestValidate_BalancedMultiCurrency(t *testing.T) {
	err := Validate(tx(
		leg(model.USD, "50"), leg(model.USD, "-50"),
		leg(model.IQD, "65000"), leg(model.IQD, "-65000"),
	), model.DefaultCurrencies)
	assert.NoError(t, err)
}

func TestValidate_ZeroAmountLegsAllowed(t *testing.T) {
	err := Validate(tx(leg(model.USD, "0"), leg(model.USD, "0.00")), model.DefaultCurrencies)
	assert.NoError(t, err)
}

func TestValidate_Unbalanced(t *testing.T) {
	err := Validate(tx(leg(model.USD, "50"), leg(model.USD, "-30")), model.DefaultCurrencies)
	require.Error(t, err)

	var aee *AccountingEquationError
	require.ErrorAs(t, err, &aee)
	assert.Equal(t, model.USD, aee.Currency)
	assert.True(t, aee.Residual.Equal(dec("20")), "residual %s", aee.Residual)
	assert.Equal(t, 2, aee.LegCount)
	assert.Equal(t, 9, aee.TransactionID)
	assert.Contains(t, err.Error(), "USD legs sum to 20.00")
}

func TestValidate_PerCurrencyIndependence(t *testing.T) {
	err := Validate(tx(leg(model.USD, "50"), leg(model.USD, "-50"), leg(model.IQD, "5")), model.DefaultCurrencies)
	require.Error(t, err)

	errs := equationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, model.IQD, errs[0].Currency)
	assert.True(t, errs[0].Residual.Equal(dec("5")))
	assert.Equal(t, 3, errs[0].LegCount)
}

func TestValidate_CrossCurrencyDoesNotNet(t *testing.T) {
	// +50 USD and -50 IQD sum to zero numerically but not per currency.
	err := Validate(tx(leg(model.USD, "50"), leg(model.IQD, "-50")), model.DefaultCurrencies)
	errs := equationErrors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, model.USD, errs[0].Currency, "residuals follow configured currency order")
	assert.Equal(t, model.IQD, errs[1].Currency)
	assert.True(t, errs[1].Residual.Equal(dec("-50")))
}

func TestValidate_SingleLeg(t *testing.T) {
	for _, amount := range []string{"0", "10", "-3.25"} {
		err := Validate(tx(leg(model.USD, amount)), model.DefaultCurrencies)
		require.Error(t, err, "single leg of %s", amount)

		errs := equationErrors(err)
		require.NotEmpty(t, errs)
		assert.Equal(t, 1, errs[0].LegCount)
		assert.Empty(t, errs[0].Currency)
	}
}

func TestValidate_NoLegs(t *testing.T) {
	err := Validate(tx(), model.DefaultCurrencies)
	var aee *AccountingEquationError
	require.ErrorAs(t, err, &aee)
	assert.Equal(t, 0, aee.LegCount)
}

func TestValidate_UnsupportedCurrency(t *testing.T) {
	err := Validate(tx(leg(model.USD, "5"), leg("EUR", "-5")), model.DefaultCurrencies)
	var uce *money.UnsupportedCurrencyError
	require.ErrorAs(t, err, &uce)
	assert.Equal(t, model.Currency("EUR"), uce.Currency)
}

func TestValidate_Precision(t *testing.T) {
	err := Validate(tx(leg(model.USD, "1.005"), leg(model.USD, "-1.005")), model.DefaultCurrencies)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Description, "more than 2 decimal places")

	assert.NoError(t, Validate(tx(leg(model.USD, "1.50"), leg(model.USD, "-1.5")), model.DefaultCurrencies))
}

func TestValidate_UnknownAccount(t *testing.T) {
	v := NewValidator(model.DefaultCurrencies, newMockAccounts(1))
	bad := leg(model.USD, "-5")
	bad.AccountID = 77
	bad.ID = "000009b"

	err := v.Validate(tx(leg(model.USD, "5"), bad))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "000009b", ve.EntryID)
	assert.Contains(t, ve.Description, "unknown account 77")
}

func TestValidate_ForeignLeg(t *testing.T) {
	other := leg(model.USD, "-5")
	other.TransactionID = 3
	err := Validate(tx(leg(model.USD, "5"), other), model.DefaultCurrencies)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	v := NewValidator(model.DefaultCurrencies, newMockAccounts(1))
	bad := leg(model.USD, "1.001")
	bad.AccountID = 2
	err := v.Validate(tx(bad))
	require.Error(t, err)

	j, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok, "expected a joined error")
	// leg count, precision, unknown account, USD residual
	assert.Len(t, j.Unwrap(), 4)
}

func TestValidate_TransactionType(t *testing.T) {
	for _, tt := range model.TransactionTypes() {
		in := tx(leg(model.USD, "1"), leg(model.USD, "-1"))
		in.Type = tt
		assert.NoError(t, Validate(in, model.DefaultCurrencies), "type %q", tt)
	}

	for _, bad := range []model.TransactionType{"refund", "", "INCOME"} {
		in := tx(leg(model.USD, "1"), leg(model.USD, "-1"))
		in.Type = bad
		err := Validate(in, model.DefaultCurrencies)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "type %q", bad)
		assert.Equal(t, "000009", ve.EntryID)
		assert.Contains(t, ve.Description, "unknown transaction type")
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	in := tx(leg(model.USD, "1"), leg(model.USD, "2"))
	before := in.Entries[0]
	_ = Validate(in, model.DefaultCurrencies)
	assert.Equal(t, before, in.Entries[0])
	assert.Len(t, in.Entries, 2)
}

func TestAccountingEquationError_Is(t *testing.T) {
	err := Validate(tx(leg(model.USD, "1"), leg(model.USD, "1")), model.DefaultCurrencies)
	var aee *AccountingEquationError
	assert.True(t, errors.As(err, &aee))
}
