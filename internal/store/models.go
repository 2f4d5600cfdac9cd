package store

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/model"
)

// Account is the accounts table.
type Account struct {
	ID       int  `gorm:"primaryKey"`
	ParentID *int `gorm:"index"`
	Type     string
	Name     string
	Code     string            `gorm:"size:20"`
	FullCode string            `gorm:"size:25;index"`
	Extra    map[string]string `gorm:"serializer:json"`
}

// Transaction is the transactions table.
type Transaction struct {
	ID          int `gorm:"primaryKey"`
	Type        string
	Description string
	Entries     []JournalEntry `gorm:"foreignKey:TransactionID"`
}

// JournalEntry is the journal_entries table. Legs are never updated.
// Amount is TEXT: a NUMERIC column would let SQLite coerce it to a float.
type JournalEntry struct {
	ID            int    `gorm:"primaryKey"`
	LegID         string `gorm:"uniqueIndex"`
	TransactionID int    `gorm:"index"`
	AccountID     int    `gorm:"index"`
	Amount        decimal.Decimal `gorm:"type:TEXT"`
	Currency      string          `gorm:"size:3"`
}

func (a Account) toModel() model.Account {
	parentID := 0
	if a.ParentID != nil {
		parentID = *a.ParentID
	}
	return model.Account{
		ID:       a.ID,
		Type:     model.AccountType(a.Type),
		Name:     a.Name,
		ParentID: parentID,
		Code:     a.Code,
		FullCode: a.FullCode,
		Extra:    a.Extra,
	}
}

func accountFromModel(m model.Account) Account {
	var parentID *int
	if m.ParentID != 0 {
		p := m.ParentID
		parentID = &p
	}
	return Account{
		ID:       m.ID,
		ParentID: parentID,
		Type:     string(m.Type),
		Name:     m.Name,
		Code:     m.Code,
		FullCode: m.FullCode,
		Extra:    m.Extra,
	}
}

func (e JournalEntry) toModel() model.JournalEntry {
	return model.JournalEntry{
		ID:            e.LegID,
		TransactionID: e.TransactionID,
		AccountID:     e.AccountID,
		Amount:        e.Amount,
		Currency:      model.Currency(e.Currency),
	}
}

func (t Transaction) toModel() model.Transaction {
	entries := make([]model.JournalEntry, len(t.Entries))
	for i, e := range t.Entries {
		entries[i] = e.toModel()
	}
	return model.Transaction{
		ID:          t.ID,
		Type:        model.TransactionType(t.Type),
		Description: t.Description,
		Entries:     entries,
	}
}
