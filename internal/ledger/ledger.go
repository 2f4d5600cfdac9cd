// Package ledger ties a storage backend to the balance engine. A Ledger is a
// snapshot: the account hierarchy is read and checked once in Open, while
// journal entries are re-read on every balance query.
package ledger

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/cleared-dev/ledger/internal/accounts"
	"github.com/cleared-dev/ledger/internal/balance"
	"github.com/cleared-dev/ledger/internal/journal"
	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/money"
)

// Repository is what a storage backend must provide.
type Repository interface {
	ListAccounts() ([]model.Account, error)
	EntriesForAccount(accountID int) ([]model.JournalEntry, error)
}

// Ledger answers balance and validation queries over one repository snapshot.
type Ledger struct {
	hierarchy  *accounts.Hierarchy
	aggregator *balance.Aggregator
	validator  *journal.Validator
}

// Options tune a Ledger.
type Options struct {
	Currencies  model.CurrencySet
	Parallelism int
}

// Open reads the account list and builds the hierarchy. Dangling parents and
// cycles fail here rather than during a balance query.
func Open(repo Repository, opts Options) (*Ledger, error) {
	accts, err := repo.ListAccounts()
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	h, err := accounts.New(accts)
	if err != nil {
		return nil, fmt.Errorf("building account hierarchy: %w", err)
	}

	currencies := opts.Currencies
	if currencies.Len() == 0 {
		currencies = model.DefaultCurrencies
	}

	log.Debug().Int("accounts", len(accts)).Int("currencies", currencies.Len()).Msg("opened ledger")
	return &Ledger{
		hierarchy:  h,
		aggregator: balance.NewAggregator(h, repo, currencies, balance.WithParallelism(opts.Parallelism)),
		validator:  journal.NewValidator(currencies, h),
	}, nil
}

// Hierarchy returns the account tree snapshot.
func (l *Ledger) Hierarchy() *accounts.Hierarchy {
	return l.hierarchy
}

// BalanceOf returns the roll-up balance of one account.
func (l *Ledger) BalanceOf(accountID int) (money.Balance, error) {
	if !l.hierarchy.Exists(accountID) {
		return money.Balance{}, fmt.Errorf("account %d: %w", accountID, accounts.ErrAccountNotFound)
	}
	return l.aggregator.BalanceOf(accountID)
}

// BalancesOf returns roll-up balances for several accounts, in order.
func (l *Ledger) BalancesOf(accountIDs []int) ([]money.Balance, error) {
	for _, id := range accountIDs {
		if !l.hierarchy.Exists(id) {
			return nil, fmt.Errorf("account %d: %w", id, accounts.ErrAccountNotFound)
		}
	}
	return l.aggregator.BalancesOf(accountIDs)
}

// Report returns subtree balance lines for the given roots, or for every
// top-level account when none are given.
func (l *Ledger) Report(rootIDs ...int) ([]balance.Line, error) {
	if len(rootIDs) == 0 {
		for _, a := range l.hierarchy.Roots() {
			rootIDs = append(rootIDs, a.ID)
		}
	}
	for _, id := range rootIDs {
		if !l.hierarchy.Exists(id) {
			return nil, fmt.Errorf("account %d: %w", id, accounts.ErrAccountNotFound)
		}
	}
	return l.aggregator.Report(rootIDs)
}

// Validate checks tx's double-entry invariant against this ledger's
// currencies and accounts.
func (l *Ledger) Validate(tx model.Transaction) error {
	return l.validator.Validate(tx)
}

// Validator returns the validator bound to this snapshot.
func (l *Ledger) Validator() *journal.Validator {
	return l.validator
}
