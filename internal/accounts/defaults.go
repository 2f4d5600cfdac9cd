package accounts

import "github.com/cleared-dev/ledger/internal/model"

// DefaultChart returns a starter chart: one top-level account per type with a
// few sub-accounts. Codes are assigned as they would be at creation.
func DefaultChart() []model.Account {
	tops := []model.Account{
		{ID: 1, Name: "Assets", Type: model.AccountTypeAssets},
		{ID: 2, Name: "Liabilities", Type: model.AccountTypeLiabilities},
		{ID: 3, Name: "Income", Type: model.AccountTypeIncome},
		{ID: 4, Name: "Expenses", Type: model.AccountTypeExpenses},
	}
	subs := []model.Account{
		{ID: 10, Name: "Cash", Type: model.AccountTypeAssets, ParentID: 1},
		{ID: 11, Name: "Bank", Type: model.AccountTypeAssets, ParentID: 1},
		{ID: 12, Name: "Accounts Receivable", Type: model.AccountTypeAssets, ParentID: 1},
		{ID: 20, Name: "Accounts Payable", Type: model.AccountTypeLiabilities, ParentID: 2},
		{ID: 30, Name: "Sales", Type: model.AccountTypeIncome, ParentID: 3},
		{ID: 40, Name: "Rent", Type: model.AccountTypeExpenses, ParentID: 4},
		{ID: 41, Name: "Salaries", Type: model.AccountTypeExpenses, ParentID: 4},
	}

	byID := make(map[int]model.Account)
	chart := make([]model.Account, 0, len(tops)+len(subs))
	for _, a := range tops {
		a = AssignCodes(a, nil)
		byID[a.ID] = a
		chart = append(chart, a)
	}
	for _, a := range subs {
		parent := byID[a.ParentID]
		a = AssignCodes(a, &parent)
		byID[a.ID] = a
		chart = append(chart, a)
	}
	return chart
}
