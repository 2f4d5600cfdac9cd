package accounts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cleared-dev/ledger/internal/id"
	"github.com/cleared-dev/ledger/internal/model"
)

// Hierarchy is a read-only view over a snapshot of the chart of accounts.
// Children are resolved through ParentID only; full codes are never parsed.
type Hierarchy struct {
	accounts []model.Account
	byID     map[int]model.Account
	children map[int][]int
}

// New indexes accounts and checks the tree eagerly: every type must be known,
// every parent must exist, parent chains must terminate, and stored full codes
// must extend the parent's.
func New(accounts []model.Account) (*Hierarchy, error) {
	h := &Hierarchy{
		accounts: accounts,
		byID:     make(map[int]model.Account, len(accounts)),
		children: make(map[int][]int),
	}
	for _, a := range accounts {
		if _, dup := h.byID[a.ID]; dup {
			return nil, &DuplicateAccountError{AccountID: a.ID}
		}
		h.byID[a.ID] = a
	}

	for _, a := range accounts {
		if !ValidType(a.Type) {
			return nil, &InvalidAccountTypeError{AccountID: a.ID, Type: a.Type}
		}
		if !a.HasParent() {
			continue
		}
		if _, ok := h.byID[a.ParentID]; !ok {
			return nil, &DanglingParentError{AccountID: a.ID, ParentID: a.ParentID}
		}
		h.children[a.ParentID] = append(h.children[a.ParentID], a.ID)
	}

	for _, ids := range h.children {
		sort.Ints(ids)
	}

	// Structure first, so a loop is reported as a cycle rather than as the
	// code mismatch it also produces.
	if err := h.checkAcyclic(); err != nil {
		return nil, err
	}

	for _, a := range accounts {
		if !a.HasParent() {
			continue
		}
		parent := h.byID[a.ParentID]
		if a.FullCode != "" && parent.FullCode != "" &&
			(len(a.FullCode) <= len(parent.FullCode) || !strings.HasPrefix(a.FullCode, parent.FullCode)) {
			return nil, &CodeMismatchError{AccountID: a.ID, FullCode: a.FullCode, ParentFullCode: parent.FullCode}
		}
	}
	return h, nil
}

// checkAcyclic walks every parent chain once. Accounts already proven to reach
// a root are skipped on later walks.
func (h *Hierarchy) checkAcyclic() error {
	rooted := make(map[int]bool, len(h.byID))
	for _, a := range h.accounts {
		onPath := make(map[int]bool)
		var path []int
		cur := a.ID
		for cur != 0 && !rooted[cur] {
			if onPath[cur] {
				return &CyclicHierarchyError{Path: append(path, cur)}
			}
			onPath[cur] = true
			path = append(path, cur)
			cur = h.byID[cur].ParentID
		}
		for _, p := range path {
			rooted[p] = true
		}
	}
	return nil
}

// All returns all accounts in snapshot order.
func (h *Hierarchy) All() []model.Account {
	return h.accounts
}

// Get returns an account by ID.
func (h *Hierarchy) Get(id int) (model.Account, bool) {
	a, ok := h.byID[id]
	return a, ok
}

// Exists reports whether an account ID exists.
func (h *Hierarchy) Exists(id int) bool {
	_, ok := h.byID[id]
	return ok
}

// ByType returns all accounts of the given type.
func (h *Hierarchy) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range h.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// Roots returns the top-level accounts ordered by ID.
func (h *Hierarchy) Roots() []model.Account {
	var roots []model.Account
	for _, a := range h.accounts {
		if !a.HasParent() {
			roots = append(roots, a)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].ID < roots[j].ID })
	return roots
}

// ChildrenOf returns the accounts whose parent is id, ordered by ID.
func (h *Hierarchy) ChildrenOf(id int) []model.Account {
	ids := h.children[id]
	out := make([]model.Account, len(ids))
	for i, cid := range ids {
		out[i] = h.byID[cid]
	}
	return out
}

// IsLeaf reports whether id has no children.
func (h *Hierarchy) IsLeaf(id int) bool {
	return len(h.children[id]) == 0
}

// AncestorChainOf returns the chain from the root down to id itself.
func (h *Hierarchy) AncestorChainOf(id int) ([]model.Account, error) {
	a, ok := h.byID[id]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", id, ErrAccountNotFound)
	}

	seen := map[int]bool{a.ID: true}
	visited := []int{a.ID}
	chain := []model.Account{a}
	for a.HasParent() {
		parent, ok := h.byID[a.ParentID]
		if !ok {
			return nil, &DanglingParentError{AccountID: a.ID, ParentID: a.ParentID}
		}
		if seen[parent.ID] {
			return nil, &CyclicHierarchyError{Path: append(visited, parent.ID)}
		}
		seen[parent.ID] = true
		visited = append(visited, parent.ID)
		chain = append(chain, parent)
		a = parent
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// NextID returns one past the highest account ID.
func (h *Hierarchy) NextID() int {
	maxID := 0
	for id := range h.byID {
		if id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// ValidType reports whether t is exactly one of the stored account type values.
func ValidType(t model.AccountType) bool {
	parsed, err := model.ParseAccountType(string(t))
	return err == nil && parsed == t
}

// AssignCodes fills Code and FullCode for a new account. parent is nil for a
// top-level account.
func AssignCodes(acct model.Account, parent *model.Account) model.Account {
	acct.Code = id.Code(acct.ID)
	if parent == nil {
		acct.ParentID = 0
		acct.FullCode = acct.Code
		return acct
	}
	acct.ParentID = parent.ID
	acct.FullCode = id.FullCode(parent.FullCode, acct.ID)
	return acct
}

// Add returns a new hierarchy containing acct with its codes assigned.
// The receiver is left untouched.
func (h *Hierarchy) Add(acct model.Account) (*Hierarchy, model.Account, error) {
	if acct.ID == 0 {
		acct.ID = h.NextID()
	}
	if h.Exists(acct.ID) {
		return nil, model.Account{}, &DuplicateAccountError{AccountID: acct.ID}
	}

	var parent *model.Account
	if acct.HasParent() {
		p, ok := h.byID[acct.ParentID]
		if !ok {
			return nil, model.Account{}, &DanglingParentError{AccountID: acct.ID, ParentID: acct.ParentID}
		}
		parent = &p
	}
	acct = AssignCodes(acct, parent)

	all := make([]model.Account, 0, len(h.accounts)+1)
	all = append(all, h.accounts...)
	all = append(all, acct)
	next, err := New(all)
	if err != nil {
		return nil, model.Account{}, err
	}
	return next, acct, nil
}
