// Package store keeps accounts and journal entries in SQLite through gorm.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cleared-dev/ledger/internal/accounts"
	"github.com/cleared-dev/ledger/internal/id"
	"github.com/cleared-dev/ledger/internal/journal"
	"github.com/cleared-dev/ledger/internal/model"
)

// ErrAccountHasEntries is returned when deleting an account that still owns legs.
var ErrAccountHasEntries = errors.New("account has journal entries")

// Store is a SQLite-backed ledger repository.
type Store struct {
	db         *gorm.DB
	currencies model.CurrencySet
}

// Connect opens the SQLite database at dsn and migrates the schema.
func Connect(dsn string, currencies model.CurrencySet) (*Store, error) {
	config := &gorm.Config{
		Logger: &logger{
			Logger: log.Logger,
		},
	}

	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	// Get new connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	// A single connection avoids SQLITE_BUSY between writers.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	log.Debug().Str("dsn", dsn).Msg("connected to sqlite")
	return &Store{db: db, currencies: currencies}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Account{}, Transaction{}, JournalEntry{}); err != nil {
		return fmt.Errorf("error during DB migration: %w", err)
	}
	return nil
}

// ListAccounts returns every account ordered by ID.
func (s *Store) ListAccounts() ([]model.Account, error) {
	var rows []Account
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	out := make([]model.Account, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// GetAccount returns one account.
func (s *Store) GetAccount(accountID int) (model.Account, error) {
	var row Account
	err := s.db.First(&row, accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Account{}, fmt.Errorf("account %d: %w", accountID, accounts.ErrAccountNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("loading account %d: %w", accountID, err)
	}
	return row.toModel(), nil
}

// CreateAccount inserts acct and assigns its codes from the stored parent.
// A zero ID lets the database pick one.
func (s *Store) CreateAccount(acct model.Account) (model.Account, error) {
	if !accounts.ValidType(acct.Type) {
		return model.Account{}, fmt.Errorf("creating account %q: %w", acct.Name,
			&accounts.InvalidAccountTypeError{AccountID: acct.ID, Type: acct.Type})
	}

	var created model.Account
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var parent *model.Account
		if acct.HasParent() {
			var p Account
			err := tx.First(&p, acct.ParentID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &accounts.DanglingParentError{AccountID: acct.ID, ParentID: acct.ParentID}
			}
			if err != nil {
				return err
			}
			pm := p.toModel()
			parent = &pm
		}

		row := accountFromModel(acct)
		row.Code, row.FullCode = "", ""
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		// Codes depend on the ID, which is only known after the insert.
		created = accounts.AssignCodes(row.toModel(), parent)
		return tx.Model(&Account{}).Where("id = ?", row.ID).
			Updates(map[string]interface{}{"code": created.Code, "full_code": created.FullCode}).Error
	})
	if err != nil {
		return model.Account{}, fmt.Errorf("creating account %q: %w", acct.Name, err)
	}
	log.Debug().Int("account", created.ID).Str("full_code", created.FullCode).Msg("created account")
	return created, nil
}

// DeleteAccount removes an account without entries. Its children become
// top-level accounts; their stored codes are left as they were.
func (s *Store) DeleteAccount(accountID int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&JournalEntry{}).Where("account_id = ?", accountID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("account %d: %w", accountID, ErrAccountHasEntries)
		}

		if err := tx.Model(&Account{}).Where("parent_id = ?", accountID).Update("parent_id", nil).Error; err != nil {
			return fmt.Errorf("detaching children of %d: %w", accountID, err)
		}

		res := tx.Delete(&Account{}, accountID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("account %d: %w", accountID, accounts.ErrAccountNotFound)
		}
		return nil
	})
}

// EntriesForAccount returns the legs posted directly to accountID.
func (s *Store) EntriesForAccount(accountID int) ([]model.JournalEntry, error) {
	var rows []JournalEntry
	if err := s.db.Where("account_id = ?", accountID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing entries for account %d: %w", accountID, err)
	}
	out := make([]model.JournalEntry, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// Transactions returns every transaction with its legs.
func (s *Store) Transactions() ([]model.Transaction, error) {
	var rows []Transaction
	err := s.db.Preload("Entries", orderByID).Order("id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	out := make([]model.Transaction, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// PostTransaction writes a transaction and its legs, then validates the
// stored leg set inside the same database transaction. A validation failure
// rolls back every row.
func (s *Store) PostTransaction(params journal.PostParams) (model.Transaction, error) {
	var posted model.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		row := Transaction{Type: string(params.Type), Description: params.Description}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		entries := make([]JournalEntry, len(params.Legs))
		for i, leg := range params.Legs {
			entries[i] = JournalEntry{
				LegID:         id.FormatLegID(row.ID, i),
				TransactionID: row.ID,
				AccountID:     leg.AccountID,
				Amount:        leg.Amount,
				Currency:      string(leg.Currency),
			}
		}
		if len(entries) > 0 {
			if err := tx.Create(&entries).Error; err != nil {
				return err
			}
		}

		var stored Transaction
		if err := tx.Preload("Entries", orderByID).First(&stored, row.ID).Error; err != nil {
			return err
		}
		posted = stored.toModel()

		v := journal.NewValidator(s.currencies, accountChecker{tx})
		if err := v.Validate(posted); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Transaction{}, err
	}
	log.Debug().Int("transaction", posted.ID).Int("legs", len(posted.Entries)).Msg("posted transaction")
	return posted, nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// accountChecker answers existence queries inside a database transaction.
type accountChecker struct {
	db *gorm.DB
}

func (c accountChecker) Exists(accountID int) bool {
	var n int64
	if err := c.db.Model(&Account{}).Where("id = ?", accountID).Count(&n).Error; err != nil {
		log.Error().Err(err).Int("account", accountID).Msg("account lookup failed")
		return false
	}
	return n > 0
}
