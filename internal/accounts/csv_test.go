package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledger/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{ID: 1, Name: "Assets", Type: model.AccountTypeAssets, Code: "1", FullCode: "1"},
		{ID: 10, Name: "Cash", Type: model.AccountTypeAssets, ParentID: 1, Code: "10", FullCode: "110",
			Extra: map[string]string{"bank": "RAFIDAIN", "branch": "Erbil"}},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, accounts[0].ID, got[0].ID)
	assert.Equal(t, accounts[0].Name, got[0].Name)
	assert.Equal(t, accounts[0].Type, got[0].Type)
	assert.Equal(t, 0, got[0].ParentID)
	assert.Nil(t, got[0].Extra)

	assert.Equal(t, 1, got[1].ParentID)
	assert.Equal(t, "10", got[1].Code)
	assert.Equal(t, "110", got[1].FullCode)
	assert.Equal(t, accounts[1].Extra, got[1].Extra)
}

func TestMarshalAccount_ExtraSorted(t *testing.T) {
	row := MarshalAccount(model.Account{ID: 5, Type: model.AccountTypeIncome, Extra: map[string]string{"z": "1", "a": "2"}})
	assert.Equal(t, `{"a":"2","z":"1"}`, row[colExtra])
	assert.Equal(t, "", row[colParent])
}

func TestRoundTrip_ExtraSpecialCharacters(t *testing.T) {
	extra := map[string]string{
		"note":        "petty; front desk",
		"k=v":         "a=b;c=d",
		`say "hi"`:    `it's "quoted", with commas`,
		"multi\nline": "x\ny",
	}
	accts := []model.Account{{ID: 1, Name: "Cash", Type: model.AccountTypeAssets, Code: "1", FullCode: "1", Extra: extra}}

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, accts))

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, extra, got[0].Extra)
}

func TestUnmarshalAccount_Errors(t *testing.T) {
	tests := []struct {
		name   string
		record []string
	}{
		{"short row", []string{"1", "Assets"}},
		{"bad id", []string{"x", "Assets", "ASSETS", "", "", "", ""}},
		{"bad parent", []string{"2", "Cash", "ASSETS", "y", "", "", ""}},
		{"bad type", []string{"3", "Equity", "EQUITY", "", "", "", ""}},
		{"bad extra", []string{"4", "Bank", "ASSETS", "", "", "", "novalue"}},
		{"extra not an object", []string{"4", "Bank", "ASSETS", "", "", "", `["a"]`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalAccount(tt.record)
			assert.Error(t, err)
		})
	}
}

func TestReadAccounts_Empty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadAccounts_RowNumberInError(t *testing.T) {
	data := "account_id,account_name,account_type,parent_id,code,full_code,extra\n" +
		"1,Assets,ASSETS,,1,1,\n" +
		"oops,Cash,ASSETS,1,,,\n"
	_, err := ReadAccounts(strings.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}

func TestAllAccountTypes(t *testing.T) {
	for _, at := range model.AccountTypes() {
		acct := model.Account{
			ID:   1000,
			Name: "Test",
			Type: at,
		}

		var buf bytes.Buffer
		err := WriteAccounts(&buf, []model.Account{acct})
		require.NoError(t, err)

		got, err := ReadAccounts(&buf)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, at, got[0].Type, "account type %q should survive round-trip", at)
	}
}

func TestDefaultChartRoundTrip(t *testing.T) {
	chart := DefaultChart()

	var buf bytes.Buffer
	err := WriteAccounts(&buf, chart)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(chart))

	for i := range chart {
		assert.Equal(t, chart[i].ID, got[i].ID)
		assert.Equal(t, chart[i].Name, got[i].Name)
		assert.Equal(t, chart[i].Type, got[i].Type)
		assert.Equal(t, chart[i].ParentID, got[i].ParentID)
		assert.Equal(t, chart[i].FullCode, got[i].FullCode)
	}
}
