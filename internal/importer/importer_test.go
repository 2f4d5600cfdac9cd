package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledger/internal/journal"
	"github.com/cleared-dev/ledger/internal/model"
)

const legsCSV = LegsHeader + `
inv-1,invoice,Invoice 1042,12,USD,3500.00
inv-1,invoice,ignored,30,USD,-3500.00
fx-1,expense,Rent,40,IQD,1500000
inv-1,invoice,ignored,12,IQD,0
fx-1,expense,Rent,11,iqd,-1500000
`

func TestLegsParser_Parse(t *testing.T) {
	txs, err := (&LegsParser{}).Parse(strings.NewReader(legsCSV))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, model.TransactionTypeInvoice, txs[0].Type)
	assert.Equal(t, "Invoice 1042", txs[0].Description)
	require.Len(t, txs[0].Legs, 3)
	assert.Equal(t, 12, txs[0].Legs[0].AccountID)
	assert.Equal(t, "3500.00", txs[0].Legs[0].Amount.StringFixed(2))
	assert.Equal(t, "-3500.00", txs[0].Legs[1].Amount.StringFixed(2))

	assert.Equal(t, model.TransactionTypeExpense, txs[1].Type)
	require.Len(t, txs[1].Legs, 2)
	assert.Equal(t, model.IQD, txs[1].Legs[1].Currency)
}

func TestLegsParser_EmptyFile(t *testing.T) {
	txs, err := (&LegsParser{}).Parse(strings.NewReader(LegsHeader + "\n"))
	require.NoError(t, err)
	assert.Nil(t, txs)
}

func TestLegsParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"bad amount", "a,income,x,10,USD,NOTANUMBER", "parsing amount"},
		{"bad account", "a,income,x,ten,USD,1", "parsing account_id"},
		{"bad type", "a,refund,x,10,USD,1", "unknown transaction type"},
		{"empty ref", " ,income,x,10,USD,1", "empty ref"},
		{"short row", "a,income,x,10,USD", "wrong number of fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&LegsParser{}).Parse(strings.NewReader(LegsHeader + "\n" + tt.row + "\n"))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestJournalParser_Parse(t *testing.T) {
	data := journal.Header + `
000007a,7,income,Consulting,10,USD,150.00
000007b,7,income,Consulting,30,USD,-150.00
000008a,8,bill,Power,40,IQD,9000.00
000008b,8,bill,Power,20,IQD,-9000.00
`
	txs, err := (&JournalParser{}).Parse(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, model.TransactionTypeIncome, txs[0].Type)
	assert.Equal(t, "Consulting", txs[0].Description)
	assert.Len(t, txs[0].Legs, 2)
	assert.Equal(t, model.TransactionTypeBill, txs[1].Type)
	assert.Equal(t, 20, txs[1].Legs[1].AccountID)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("legs"))

	r.Register(&LegsParser{})
	p := r.Get("LEGS")
	require.NotNil(t, p)
	assert.Equal(t, "legs", p.Format())

	assert.Panics(t, func() { r.Register(&LegsParser{}) })
}

func TestDefaultRegistry(t *testing.T) {
	assert.Equal(t, []string{"journal", "legs"}, DefaultRegistry().Formats())
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	importPath := filepath.Join(dir, Dir)
	require.NoError(t, os.MkdirAll(filepath.Join(importPath, "subdir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importPath, "legs.csv"), []byte(legsCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importPath, "OTHER.CSV"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importPath, "notes.txt"), []byte("x"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	names := []string{files[0].Name, files[1].Name}
	assert.ElementsMatch(t, []string{"legs.csv", "OTHER.CSV"}, names)
}

func TestScan_NoDir(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legs.csv")
	require.NoError(t, os.WriteFile(path, []byte(legsCSV), 0o644))

	txs, err := ParseFile(&LegsParser{}, path)
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	_, err = ParseFile(&JournalParser{}, path)
	assert.ErrorContains(t, err, "as journal")
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, Dir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, Dir, "legs.csv"), []byte(legsCSV), 0o644))

	require.NoError(t, MarkProcessed(dir, "legs.csv"))

	_, err := os.Stat(filepath.Join(dir, Dir, "legs.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, ProcessedDir, "legs.csv"))
	assert.NoError(t, err)
}
