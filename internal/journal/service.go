package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/id"
	"github.com/cleared-dev/ledger/internal/model"
)

// Path is the journal location relative to a ledger root.
const Path = "journal/journal.csv"

// Service appends and reads transactions in a ledger's journal.csv.
type Service struct {
	repoRoot  string
	validator *Validator
}

// NewService creates a journal Service.
func NewService(repoRoot string, validator *Validator) *Service {
	return &Service{repoRoot: repoRoot, validator: validator}
}

// Leg is one requested leg of a new transaction.
type Leg struct {
	AccountID int
	Currency  model.Currency
	Amount    decimal.Decimal
}

// PostParams holds parameters for recording a transaction.
type PostParams struct {
	Type        model.TransactionType
	Description string
	Legs        []Leg
}

// Post assigns the next transaction ID, validates the complete leg set and
// appends it to journal.csv. Nothing is written when validation fails.
func (s *Service) Post(params PostParams) (model.Transaction, error) {
	txID, err := s.NextTransactionID()
	if err != nil {
		return model.Transaction{}, err
	}

	tx := model.Transaction{
		ID:          txID,
		Type:        params.Type,
		Description: params.Description,
		Entries:     make([]model.JournalEntry, len(params.Legs)),
	}
	for i, leg := range params.Legs {
		tx.Entries[i] = model.JournalEntry{
			ID:            id.FormatLegID(txID, i),
			TransactionID: txID,
			AccountID:     leg.AccountID,
			Amount:        leg.Amount,
			Currency:      leg.Currency,
		}
	}

	if err := s.validator.Validate(tx); err != nil {
		return model.Transaction{}, fmt.Errorf("validation failed: %w", err)
	}

	path := filepath.Join(s.repoRoot, Path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return model.Transaction{}, fmt.Errorf("creating journal dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return model.Transaction{}, fmt.Errorf("writing header: %w", err)
		}
	}

	if err := AppendTransactions(f, []model.Transaction{tx}); err != nil {
		return model.Transaction{}, fmt.Errorf("appending legs: %w", err)
	}

	log.Debug().Int("transaction", tx.ID).Int("legs", len(tx.Entries)).Str("type", string(tx.Type)).Msg("posted transaction")
	return tx, nil
}

// Transactions reads every transaction in the journal.
func (s *Service) Transactions() ([]model.Transaction, error) {
	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}
	return Group(rows), nil
}

// EntriesForAccount returns the legs posted directly to accountID.
func (s *Service) EntriesForAccount(accountID int) ([]model.JournalEntry, error) {
	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}
	var entries []model.JournalEntry
	for _, row := range rows {
		if row.Entry.AccountID == accountID {
			entries = append(entries, row.Entry)
		}
	}
	return entries, nil
}

// HasEntries reports whether any leg references accountID.
func (s *Service) HasEntries(accountID int) (bool, error) {
	entries, err := s.EntriesForAccount(accountID)
	return len(entries) > 0, err
}

// NextTransactionID returns one past the highest transaction ID in the journal.
func (s *Service) NextTransactionID() (int, error) {
	rows, err := s.readRows()
	if err != nil {
		return 0, err
	}
	maxID := 0
	for _, row := range rows {
		if row.Entry.TransactionID > maxID {
			maxID = row.Entry.TransactionID
		}
	}
	return maxID + 1, nil
}

// Failure pairs a stored transaction with its validation error.
type Failure struct {
	Transaction model.Transaction
	Err         error
}

// Check re-validates every stored transaction.
func (s *Service) Check() ([]Failure, error) {
	txs, err := s.Transactions()
	if err != nil {
		return nil, err
	}
	var failures []Failure
	for _, tx := range txs {
		if err := s.validator.Validate(tx); err != nil {
			failures = append(failures, Failure{Transaction: tx, Err: err})
		}
	}
	return failures, nil
}

// Init writes an empty journal with only the header, if none exists.
func (s *Service) Init() error {
	path := filepath.Join(s.repoRoot, Path)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Header+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing journal: %w", err)
	}
	return nil
}

func (s *Service) readRows() ([]Row, error) {
	path := filepath.Join(s.repoRoot, Path)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return rows, nil
}
