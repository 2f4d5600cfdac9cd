package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/id"
	"github.com/cleared-dev/ledger/internal/model"
)

// Header is the CSV header for journal.csv.
const Header = "entry_id,transaction_id,transaction_type,description,account_id,currency,amount"

const (
	numFields   = 7
	colEntryID  = 0
	colTxID     = 1
	colTxType   = 2
	colDesc     = 3
	colAcctID   = 4
	colCurrency = 5
	colAmount   = 6
)

// Row is one line of journal.csv: a leg plus its transaction's header fields.
type Row struct {
	Entry       model.JournalEntry
	Type        model.TransactionType
	Description string
}

// ReadRows reads all rows from a journal.csv reader.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var rows []Row
	for i, rec := range records[1:] {
		row, err := UnmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadTransactions reads journal.csv and groups legs by transaction in file order.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}
	return Group(rows), nil
}

// Group folds rows into transactions, keeping first-seen order.
func Group(rows []Row) []model.Transaction {
	index := make(map[int]int)
	var txs []model.Transaction
	for _, row := range rows {
		txID := row.Entry.TransactionID
		i, ok := index[txID]
		if !ok {
			i = len(txs)
			index[txID] = i
			txs = append(txs, model.Transaction{ID: txID, Type: row.Type, Description: row.Description})
		}
		txs[i].Entries = append(txs[i].Entries, row.Entry)
	}
	return txs
}

// WriteTransactions writes transactions to a journal.csv writer (including header).
func WriteTransactions(w io.Writer, txs []model.Transaction) error {
	if _, err := fmt.Fprintln(w, Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return AppendTransactions(w, txs)
}

// AppendTransactions appends the legs of txs to an existing journal.csv writer (no header).
func AppendTransactions(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	n := 0
	for _, tx := range txs {
		for _, e := range tx.Entries {
			n++
			if err := cw.Write(MarshalRow(Row{Entry: e, Type: tx.Type, Description: tx.Description})); err != nil {
				return fmt.Errorf("writing row %d: %w", n, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRow converts a Row to a CSV record.
func MarshalRow(row Row) []string {
	rec := make([]string, numFields)
	rec[colEntryID] = row.Entry.ID
	rec[colTxID] = strconv.Itoa(row.Entry.TransactionID)
	rec[colTxType] = string(row.Type)
	rec[colDesc] = row.Description
	rec[colAcctID] = strconv.Itoa(row.Entry.AccountID)
	rec[colCurrency] = string(row.Entry.Currency)
	rec[colAmount] = row.Entry.Amount.StringFixed(2)
	return rec
}

// UnmarshalRow converts a CSV record to a Row.
func UnmarshalRow(record []string) (Row, error) {
	if len(record) != numFields {
		return Row{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	txID, err := strconv.Atoi(record[colTxID])
	if err != nil {
		return Row{}, fmt.Errorf("parsing transaction_id %q: %w", record[colTxID], err)
	}

	if legTx, err := id.ParseLegID(record[colEntryID]); err != nil {
		return Row{}, err
	} else if legTx != txID {
		return Row{}, fmt.Errorf("entry %q does not belong to transaction %d", record[colEntryID], txID)
	}

	txType, err := model.ParseTransactionType(record[colTxType])
	if err != nil {
		return Row{}, err
	}

	accountID, err := strconv.Atoi(record[colAcctID])
	if err != nil {
		return Row{}, fmt.Errorf("parsing account_id %q: %w", record[colAcctID], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return Row{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return Row{
		Entry: model.JournalEntry{
			ID:            record[colEntryID],
			TransactionID: txID,
			AccountID:     accountID,
			Amount:        amount,
			Currency:      model.Currency(strings.ToUpper(record[colCurrency])),
		},
		Type:        txType,
		Description: record[colDesc],
	}, nil
}
