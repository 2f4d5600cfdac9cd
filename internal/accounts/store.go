package accounts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/cleared-dev/ledger/internal/model"
)

// ChartPath is the chart of accounts location relative to a ledger root.
const ChartPath = "accounts/chart-of-accounts.csv"

// FileStore keeps the chart of accounts as CSV under a ledger directory.
type FileStore struct {
	root string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// ListAccounts reads the chart of accounts.
func (s *FileStore) ListAccounts() ([]model.Account, error) {
	path := filepath.Join(s.root, ChartPath)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	log.Debug().Str("path", path).Int("accounts", len(accts)).Msg("loaded chart of accounts")
	return accts, nil
}

// Load reads and indexes the chart of accounts from a ledger root.
func Load(root string) (*Hierarchy, error) {
	accts, err := NewFileStore(root).ListAccounts()
	if err != nil {
		return nil, err
	}
	return New(accts)
}

// Save writes the chart of accounts to accounts/chart-of-accounts.csv.
func (s *FileStore) Save(accounts []model.Account) error {
	dir := filepath.Join(s.root, filepath.Dir(ChartPath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	path := filepath.Join(s.root, ChartPath)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, accounts); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}
