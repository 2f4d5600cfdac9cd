package balance

import "github.com/cleared-dev/ledger/internal/money"

// Line is one row of a balance report.
type Line struct {
	AccountID int
	Depth     int // 0 for the report's root accounts
	Balance   money.Balance
}

// Report walks each root's subtree once and returns one line per account in
// depth-first order, parents before children. Each line carries the subtree
// balance, so a root's line equals BalanceOf(root).
func (a *Aggregator) Report(rootIDs []int) ([]Line, error) {
	var lines []Line
	for _, root := range rootIDs {
		if _, err := a.walk(root, nil, &lines); err != nil {
			return nil, err
		}
	}
	return lines, nil
}
