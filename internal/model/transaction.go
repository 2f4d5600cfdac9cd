package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction by its business origin.
type TransactionType string

const (
	TransactionTypeInvoice TransactionType = "invoice"
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeBill    TransactionType = "bill"
)

// TransactionTypes returns the supported transaction types.
func TransactionTypes() []TransactionType {
	return []TransactionType{
		TransactionTypeInvoice,
		TransactionTypeIncome,
		TransactionTypeExpense,
		TransactionTypeBill,
	}
}

// ParseTransactionType accepts the stored value case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	tt := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range TransactionTypes() {
		if tt == known {
			return tt, nil
		}
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Transaction groups the legs that must net to zero per currency.
type Transaction struct {
	ID          int
	Type        TransactionType
	Description string
	Entries     []JournalEntry
}

// JournalEntry is one leg of a transaction, attributed to exactly one account.
type JournalEntry struct {
	ID            string // "NNNNNNx" where x = a,b,c...
	TransactionID int
	AccountID     int
	Amount        decimal.Decimal // signed, two fractional digits
	Currency      Currency
}

func (e JournalEntry) String() string {
	return fmt.Sprintf("%s - %s", e.Amount.StringFixed(2), e.Currency)
}
