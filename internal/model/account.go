package model

import (
	"fmt"
	"strings"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAssets      AccountType = "ASSETS"
	AccountTypeLiabilities AccountType = "LIABILITIES"
	AccountTypeIncome      AccountType = "INCOME"
	AccountTypeExpenses    AccountType = "EXPENSES"
)

// AccountTypes returns the supported account types in display order.
func AccountTypes() []AccountType {
	return []AccountType{
		AccountTypeAssets,
		AccountTypeLiabilities,
		AccountTypeIncome,
		AccountTypeExpenses,
	}
}

// ParseAccountType accepts the stored value case-insensitively.
func ParseAccountType(s string) (AccountType, error) {
	at := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AccountTypes() {
		if at == known {
			return at, nil
		}
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

// Account is one node of the ledger hierarchy.
type Account struct {
	ID       int
	Type     AccountType
	Name     string
	ParentID int    // 0 = top-level
	Code     string // the account's own identifier
	FullCode string // parent's FullCode + Code; Code for top-level accounts
	Extra    map[string]string
}

// HasParent reports whether the account sits below another account.
func (a Account) HasParent() bool {
	return a.ParentID != 0
}

func (a Account) String() string {
	return fmt.Sprintf("%s - %s", a.FullCode, a.Name)
}
