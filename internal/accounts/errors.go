package accounts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/ledger/internal/model"
)

// ErrAccountNotFound is returned when a lookup names an unknown account.
var ErrAccountNotFound = errors.New("account not found")

// DanglingParentError reports a parent reference that does not resolve.
type DanglingParentError struct {
	AccountID int
	ParentID  int
}

func (e *DanglingParentError) Error() string {
	return fmt.Sprintf("account %d references missing parent %d", e.AccountID, e.ParentID)
}

// CyclicHierarchyError reports a parent chain that loops back on itself.
// Path lists the account IDs in traversal order, ending with the repeated ID.
type CyclicHierarchyError struct {
	Path []int
}

func (e *CyclicHierarchyError) Error() string {
	ids := make([]string, len(e.Path))
	for i, id := range e.Path {
		ids[i] = fmt.Sprint(id)
	}
	return "cyclic account hierarchy: " + strings.Join(ids, " -> ")
}

// DuplicateAccountError reports two accounts sharing an ID.
type DuplicateAccountError struct {
	AccountID int
}

func (e *DuplicateAccountError) Error() string {
	return fmt.Sprintf("duplicate account %d", e.AccountID)
}

// CodeMismatchError reports a child whose full code does not extend its parent's.
type CodeMismatchError struct {
	AccountID      int
	FullCode       string
	ParentFullCode string
}

func (e *CodeMismatchError) Error() string {
	return fmt.Sprintf("account %d full code %q does not extend parent code %q", e.AccountID, e.FullCode, e.ParentFullCode)
}

// InvalidAccountTypeError reports an account whose type is outside the closed set.
type InvalidAccountTypeError struct {
	AccountID int
	Type      model.AccountType
}

func (e *InvalidAccountTypeError) Error() string {
	return fmt.Sprintf("account %d has unknown account type %q", e.AccountID, e.Type)
}
