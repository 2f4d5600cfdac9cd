package journal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledger/internal/model"
)

func newTestService(t *testing.T, ids ...int) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	return NewService(dir, NewValidator(model.DefaultCurrencies, newMockAccounts(ids...))), dir
}

func transfer(from, to int, currency model.Currency, amount string) PostParams {
	return PostParams{
		Type:        model.TransactionTypeExpense,
		Description: "transfer",
		Legs: []Leg{
			{AccountID: to, Currency: currency, Amount: dec(amount)},
			{AccountID: from, Currency: currency, Amount: dec(amount).Neg()},
		},
	}
}

func TestPost_NewJournal(t *testing.T) {
	svc, dir := newTestService(t, 11, 40)

	tx, err := svc.Post(transfer(11, 40, model.USD, "4.00"))
	require.NoError(t, err)
	assert.Equal(t, 1, tx.ID)
	require.Len(t, tx.Entries, 2)
	assert.Equal(t, "000001a", tx.Entries[0].ID)
	assert.Equal(t, "000001b", tx.Entries[1].ID)

	_, err = os.Stat(filepath.Join(dir, Path))
	require.NoError(t, err)

	txs, err := svc.Transactions()
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "transfer", txs[0].Description)
	assert.True(t, txs[0].Entries[0].Amount.Equal(dec("4")))
}

func TestPost_Sequential(t *testing.T) {
	svc, _ := newTestService(t, 11, 40)

	_, err := svc.Post(transfer(11, 40, model.USD, "10"))
	require.NoError(t, err)
	tx, err := svc.Post(transfer(11, 40, model.IQD, "20000"))
	require.NoError(t, err)
	assert.Equal(t, 2, tx.ID)

	txs, err := svc.Transactions()
	require.NoError(t, err)
	require.Len(t, txs, 2)

	next, err := svc.NextTransactionID()
	require.NoError(t, err)
	assert.Equal(t, 3, next)
}

func TestPost_ValidationFailureWritesNothing(t *testing.T) {
	svc, dir := newTestService(t, 11, 40)

	params := transfer(11, 40, model.USD, "50")
	params.Legs[1].Amount = dec("-30")
	_, err := svc.Post(params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	var aee *AccountingEquationError
	require.ErrorAs(t, err, &aee)
	assert.True(t, aee.Residual.Equal(dec("20")))

	_, err = os.Stat(filepath.Join(dir, Path))
	assert.True(t, os.IsNotExist(err), "journal must not be created")
}

func TestPost_UnknownAccount(t *testing.T) {
	svc, _ := newTestService(t, 11)
	_, err := svc.Post(transfer(11, 40, model.USD, "1"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	txs, err := svc.Transactions()
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestPost_UnknownTransactionType(t *testing.T) {
	svc, dir := newTestService(t, 11, 40)

	params := transfer(11, 40, model.USD, "5")
	params.Type = "refund"
	_, err := svc.Post(params)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = os.Stat(filepath.Join(dir, Path))
	assert.True(t, os.IsNotExist(err), "journal must not be created")

	// The journal stays readable for later posts.
	_, err = svc.Post(transfer(11, 40, model.USD, "5"))
	require.NoError(t, err)
	entries, err := svc.EntriesForAccount(40)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	next, err := svc.NextTransactionID()
	require.NoError(t, err)
	assert.Equal(t, 2, next)
}

func TestEntriesForAccount(t *testing.T) {
	svc, _ := newTestService(t, 11, 40, 41)

	_, err := svc.Post(transfer(11, 40, model.USD, "10"))
	require.NoError(t, err)
	_, err = svc.Post(transfer(11, 41, model.USD, "3"))
	require.NoError(t, err)

	entries, err := svc.EntriesForAccount(11)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Amount.Equal(dec("-10")))
	assert.True(t, entries[1].Amount.Equal(dec("-3")))

	entries, err = svc.EntriesForAccount(99)
	require.NoError(t, err)
	assert.Empty(t, entries)

	has, err := svc.HasEntries(41)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestCheck(t *testing.T) {
	svc, dir := newTestService(t, 11, 40)
	_, err := svc.Post(transfer(11, 40, model.USD, "10"))
	require.NoError(t, err)

	failures, err := svc.Check()
	require.NoError(t, err)
	assert.Empty(t, failures)

	// Append an unbalanced transaction behind the service's back.
	f, err := os.OpenFile(filepath.Join(dir, Path), os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("000002a,2,bill,hand edit,40,USD,5.00\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	failures, err = svc.Check()
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, 2, failures[0].Transaction.ID)
	var aee *AccountingEquationError
	assert.ErrorAs(t, failures[0].Err, &aee)
}

func TestInit(t *testing.T) {
	svc, dir := newTestService(t)
	require.NoError(t, svc.Init())

	data, err := os.ReadFile(filepath.Join(dir, Path))
	require.NoError(t, err)
	assert.Equal(t, Header+"\n", string(data))

	// Existing journals are left alone.
	require.NoError(t, os.WriteFile(filepath.Join(dir, Path), []byte(Header+"\n000001a,1,bill,x,1,USD,1.00\n"), 0o644))
	require.NoError(t, svc.Init())
	txs, err := svc.Transactions()
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestReadEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	txs, err := svc.Transactions()
	require.NoError(t, err)
	assert.Empty(t, txs)

	next, err := svc.NextTransactionID()
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}
