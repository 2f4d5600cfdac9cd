package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/accounts"
	"github.com/cleared-dev/ledger/internal/auditlog"
	"github.com/cleared-dev/ledger/internal/config"
	"github.com/cleared-dev/ledger/internal/gitops"
	"github.com/cleared-dev/ledger/internal/journal"
	"github.com/cleared-dev/ledger/internal/ledger"
	"github.com/cleared-dev/ledger/internal/logging"
	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store"
)

// backend is the storage a ledger directory is configured for.
type backend interface {
	ledger.Repository
	Transactions() ([]model.Transaction, error)
	Post(params journal.PostParams) (model.Transaction, error)
	AddAccount(acct model.Account) (model.Account, error)
	Close() error
}

// fileBackend keeps accounts and journal as CSV files.
type fileBackend struct {
	root       string
	currencies model.CurrencySet
	chart      *accounts.FileStore
}

func newFileBackend(root string, currencies model.CurrencySet) *fileBackend {
	return &fileBackend{root: root, currencies: currencies, chart: accounts.NewFileStore(root)}
}

func (b *fileBackend) ListAccounts() ([]model.Account, error) {
	return b.chart.ListAccounts()
}

func (b *fileBackend) EntriesForAccount(accountID int) ([]model.JournalEntry, error) {
	return journal.NewService(b.root, nil).EntriesForAccount(accountID)
}

func (b *fileBackend) Transactions() ([]model.Transaction, error) {
	return journal.NewService(b.root, nil).Transactions()
}

func (b *fileBackend) Post(params journal.PostParams) (model.Transaction, error) {
	h, err := accounts.Load(b.root)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("loading accounts: %w", err)
	}
	return journal.NewService(b.root, journal.NewValidator(b.currencies, h)).Post(params)
}

func (b *fileBackend) AddAccount(acct model.Account) (model.Account, error) {
	h, err := accounts.Load(b.root)
	if err != nil {
		return model.Account{}, fmt.Errorf("loading accounts: %w", err)
	}
	next, created, err := h.Add(acct)
	if err != nil {
		return model.Account{}, err
	}
	if err := b.chart.Save(next.All()); err != nil {
		return model.Account{}, err
	}
	return created, nil
}

func (b *fileBackend) Close() error { return nil }

// sqliteBackend adapts store.Store to the CLI's backend.
type sqliteBackend struct {
	*store.Store
}

func (b sqliteBackend) Post(params journal.PostParams) (model.Transaction, error) {
	return b.PostTransaction(params)
}

func (b sqliteBackend) AddAccount(acct model.Account) (model.Account, error) {
	return b.CreateAccount(acct)
}

// repo is an opened ledger directory.
type repo struct {
	root       string
	cfg        *config.Config
	currencies model.CurrencySet
	backend    backend
}

// openRepo loads ledger.yaml from the --repo directory and connects its backend.
func openRepo(cmd *cobra.Command, opts *globalOptions) (*repo, error) {
	root, err := filepath.Abs(opts.repo)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, err
	}

	// Config log settings apply unless overridden on the command line.
	level, format := opts.logLevel, opts.logFormat
	if !cmd.Flags().Changed("log-level") && cfg.Log.Level != "" {
		level = cfg.Log.Level
	}
	if !cmd.Flags().Changed("log-format") && cfg.Log.Format != "" {
		format = cfg.Log.Format
	}
	if err := logging.Setup(cmd.ErrOrStderr(), level, format); err != nil {
		return nil, err
	}

	currencies, err := cfg.CurrencySet()
	if err != nil {
		return nil, err
	}
	b, err := openBackend(root, cfg, currencies)
	if err != nil {
		return nil, err
	}
	return &repo{root: root, cfg: cfg, currencies: currencies, backend: b}, nil
}

func openBackend(root string, cfg *config.Config, currencies model.CurrencySet) (backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		dsn := cfg.Storage.DSN
		if !filepath.IsAbs(dsn) {
			dsn = filepath.Join(root, dsn)
		}
		s, err := store.Connect(dsn, currencies)
		if err != nil {
			return nil, err
		}
		return sqliteBackend{s}, nil
	case "", config.BackendCSV:
		return newFileBackend(root, currencies), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func (r *repo) Close() error {
	return r.backend.Close()
}

// ledger opens a balance snapshot over the backend.
func (r *repo) ledger() (*ledger.Ledger, error) {
	return ledger.Open(r.backend, ledger.Options{
		Currencies:  r.currencies,
		Parallelism: r.cfg.Balance.Parallelism,
	})
}

// record commits pending changes when auto-commit is on and appends an audit
// log entry carrying that commit's hash. The audit row is committed right
// after, so the working tree is clean once a mutation returns.
func (r *repo) record(action, details, transactionID string) error {
	_, err := recordChange(r.root, r.cfg, action, details, transactionID)
	return err
}

func recordChange(root string, cfg *config.Config, action, details, transactionID string) (string, error) {
	git := gitops.Repo{Dir: root, AuthorName: cfg.Git.AuthorName, AuthorEmail: cfg.Git.AuthorEmail}
	commit := cfg.Git.AutoCommit && git.IsRepo()

	var hash string
	if commit {
		var err error
		hash, err = git.CommitAll(fmt.Sprintf("%s: %s", action, details))
		if err != nil {
			return "", fmt.Errorf("committing: %w", err)
		}
	}

	err := auditlog.Append(root, auditlog.Entry{
		Timestamp:     nowFunc(),
		Actor:         cfg.Git.AuthorName,
		Action:        action,
		Details:       details,
		TransactionID: transactionID,
		CommitHash:    hash,
	})
	if err != nil {
		return "", fmt.Errorf("writing audit log: %w", err)
	}

	if commit {
		if _, err := git.CommitAll(fmt.Sprintf("audit: %s %s", action, hash)); err != nil {
			return "", fmt.Errorf("committing audit log: %w", err)
		}
	}
	return hash, nil
}

// closeRepo closes r, logging rather than masking an earlier error.
func closeRepo(r *repo, err *error) {
	if cerr := r.Close(); cerr != nil {
		if *err == nil {
			*err = cerr
			return
		}
		log.Warn().Err(cerr).Msg("closing ledger storage")
	}
}

// nowFunc stamps audit log entries.
var nowFunc = time.Now

var errInvalidJournal = errors.New("journal has invalid transactions")
