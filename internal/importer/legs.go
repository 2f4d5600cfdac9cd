package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/journal"
	"github.com/cleared-dev/ledger/internal/model"
)

// LegsParser reads one leg per row. Rows sharing a ref form one transaction;
// the first row of each ref supplies its type and description.
//
//	ref,type,description,account_id,currency,amount
type LegsParser struct{}

// LegsHeader is the expected first row of a legs file.
const LegsHeader = "ref,type,description,account_id,currency,amount"

const (
	legsNumFields   = 6
	legsColRef      = 0
	legsColType     = 1
	legsColDesc     = 2
	legsColAccount  = 3
	legsColCurrency = 4
	legsColAmount   = 5
)

// Format returns the parser name.
func (p *LegsParser) Format() string { return "legs" }

// Parse groups rows by ref, in order of first appearance.
func (p *LegsParser) Parse(r io.Reader) ([]journal.PostParams, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = legsNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading legs CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var txs []journal.PostParams
	byRef := make(map[string]int)
	for i, rec := range records[1:] {
		ref := strings.TrimSpace(rec[legsColRef])
		if ref == "" {
			return nil, fmt.Errorf("row %d: empty ref", i+2)
		}

		leg, err := parseLegRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		idx, ok := byRef[ref]
		if !ok {
			txType, err := model.ParseTransactionType(rec[legsColType])
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+2, err)
			}
			idx = len(txs)
			byRef[ref] = idx
			txs = append(txs, journal.PostParams{Type: txType, Description: rec[legsColDesc]})
		}
		txs[idx].Legs = append(txs[idx].Legs, leg)
	}
	return txs, nil
}

func parseLegRow(rec []string) (journal.Leg, error) {
	accountID, err := strconv.Atoi(strings.TrimSpace(rec[legsColAccount]))
	if err != nil {
		return journal.Leg{}, fmt.Errorf("parsing account_id %q: %w", rec[legsColAccount], err)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(rec[legsColAmount]))
	if err != nil {
		return journal.Leg{}, fmt.Errorf("parsing amount %q: %w", rec[legsColAmount], err)
	}
	return journal.Leg{
		AccountID: accountID,
		Currency:  model.Currency(strings.ToUpper(strings.TrimSpace(rec[legsColCurrency]))),
		Amount:    amount,
	}, nil
}

// JournalParser reads a journal.csv exported from another ledger. Source
// transaction and leg IDs are dropped; the target ledger assigns its own.
type JournalParser struct{}

// Format returns the parser name.
func (p *JournalParser) Format() string { return "journal" }

// Parse reads journal rows and regroups them into transactions.
func (p *JournalParser) Parse(r io.Reader) ([]journal.PostParams, error) {
	txs, err := journal.ReadTransactions(r)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, nil
	}

	out := make([]journal.PostParams, len(txs))
	for i, tx := range txs {
		params := journal.PostParams{Type: tx.Type, Description: tx.Description}
		for _, e := range tx.Entries {
			params.Legs = append(params.Legs, journal.Leg{AccountID: e.AccountID, Currency: e.Currency, Amount: e.Amount})
		}
		out[i] = params
	}
	return out, nil
}
