// Package balance rolls journal entries up the account hierarchy.
//
// A leaf's balance is the fold of its own entries. A parent's balance is its
// own entries merged with the balance of every child, recursively. Every call
// recomputes from the entry source; nothing is cached between calls.
package balance

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/ledger/internal/accounts"
	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/money"
)

// Tree resolves parent/child structure. *accounts.Hierarchy implements it.
type Tree interface {
	IsLeaf(id int) bool
	ChildrenOf(id int) []model.Account
}

// EntrySource lists the journal entries owned directly by an account.
type EntrySource interface {
	EntriesForAccount(accountID int) ([]model.JournalEntry, error)
}

// Aggregator computes per-currency balances over a Tree.
type Aggregator struct {
	tree        Tree
	entries     EntrySource
	currencies  model.CurrencySet
	parallelism int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithParallelism bounds the goroutines used by BalancesOf. Values below 1 mean 1.
func WithParallelism(n int) Option {
	return func(a *Aggregator) {
		if n < 1 {
			n = 1
		}
		a.parallelism = n
	}
}

// NewAggregator returns an Aggregator over tree and entries.
func NewAggregator(tree Tree, entries EntrySource, currencies model.CurrencySet, opts ...Option) *Aggregator {
	a := &Aggregator{tree: tree, entries: entries, currencies: currencies, parallelism: 1}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BalanceOf returns the balance of accountID including all its descendants.
func (a *Aggregator) BalanceOf(accountID int) (money.Balance, error) {
	return a.walk(accountID, nil, nil)
}

// Own returns the balance of accountID's direct entries only.
func (a *Aggregator) Own(accountID int) (money.Balance, error) {
	entries, err := a.entries.EntriesForAccount(accountID)
	if err != nil {
		return money.Balance{}, fmt.Errorf("listing entries for account %d: %w", accountID, err)
	}
	b := money.Zero(a.currencies)
	for _, e := range entries {
		if b, err = b.Add(money.FromEntry(e)); err != nil {
			return money.Balance{}, fmt.Errorf("account %d entry %s: %w", accountID, e.ID, err)
		}
	}
	return b, nil
}

// BalancesOf computes several balances concurrently. Results are returned in
// the order of ids; the first failure aborts the rest.
func (a *Aggregator) BalancesOf(ids []int) ([]money.Balance, error) {
	out := make([]money.Balance, len(ids))
	var g errgroup.Group
	g.SetLimit(a.parallelism)
	for i, id := range ids {
		g.Go(func() error {
			b, err := a.BalanceOf(id)
			if err != nil {
				return err
			}
			out[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// walk computes the subtree balance of id. path holds the accounts on the
// current descent; a repeat means the tree changed under us into a cycle.
// When lines is set, every visited account gets a line in depth-first order.
func (a *Aggregator) walk(id int, path []int, lines *[]Line) (money.Balance, error) {
	for _, p := range path {
		if p == id {
			cycle := append(append([]int{}, path...), id)
			return money.Balance{}, &accounts.CyclicHierarchyError{Path: cycle}
		}
	}

	slot := -1
	if lines != nil {
		slot = len(*lines)
		*lines = append(*lines, Line{AccountID: id, Depth: len(path)})
	}

	total, err := a.Own(id)
	if err != nil {
		return money.Balance{}, err
	}
	if !a.tree.IsLeaf(id) {
		path = append(path, id)
		for _, child := range a.tree.ChildrenOf(id) {
			sub, err := a.walk(child.ID, path, lines)
			if err != nil {
				return money.Balance{}, err
			}
			total = total.Merge(sub)
		}
	}

	if slot >= 0 {
		(*lines)[slot].Balance = total
	}
	return total, nil
}
