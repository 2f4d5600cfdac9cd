package accounts

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/cleared-dev/ledger/internal/model"
)

const (
	numFields   = 7
	colID       = 0
	colName     = 1
	colType     = 2
	colParent   = 3
	colCode     = 4
	colFullCode = 5
	colExtra    = 6
)

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"account_id", "account_name", "account_type", "parent_id", "code", "full_code", "extra"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = strconv.Itoa(acct.ID)
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	if acct.ParentID != 0 {
		row[colParent] = strconv.Itoa(acct.ParentID)
	}
	row[colCode] = acct.Code
	row[colFullCode] = acct.FullCode
	row[colExtra] = marshalExtra(acct.Extra)
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := strconv.Atoi(record[colID])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing account_id %q: %w", record[colID], err)
	}

	var parentID int
	if record[colParent] != "" {
		parentID, err = strconv.Atoi(record[colParent])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing parent_id %q: %w", record[colParent], err)
		}
	}

	accountType, err := model.ParseAccountType(record[colType])
	if err != nil {
		return model.Account{}, err
	}

	extra, err := unmarshalExtra(record[colExtra])
	if err != nil {
		return model.Account{}, err
	}

	return model.Account{
		ID:       id,
		Name:     record[colName],
		Type:     accountType,
		ParentID: parentID,
		Code:     record[colCode],
		FullCode: record[colFullCode],
		Extra:    extra,
	}, nil
}

// marshalExtra renders extra as a JSON object; encoding/json sorts the keys.
func marshalExtra(extra map[string]string) string {
	if len(extra) == 0 {
		return ""
	}
	data, err := json.Marshal(extra)
	if err != nil {
		// A map[string]string always marshals.
		panic(err)
	}
	return string(data)
}

func unmarshalExtra(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}
	var extra map[string]string
	if err := json.Unmarshal([]byte(s), &extra); err != nil {
		return nil, fmt.Errorf("parsing extra %q: %w", s, err)
	}
	return extra, nil
}
