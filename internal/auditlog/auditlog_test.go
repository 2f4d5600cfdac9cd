package auditlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp:     testTime,
		Actor:         "alice",
		Action:        ActionPostTransaction,
		Details:       "Invoice 42, settled",
		TransactionID: "000042",
		CommitHash:    "abc1234",
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].Actor)
	assert.Equal(t, "Invoice 42, settled", entries[0].Details)
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	e2 := testEntry()
	e2.Action = ActionAddAccount
	e2.TransactionID = ""
	require.NoError(t, Append(dir, e2))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionPostTransaction, entries[0].Action)
	assert.Equal(t, ActionAddAccount, entries[1].Action)
	assert.Empty(t, entries[1].TransactionID)

	raw, err := os.ReadFile(filepath.Join(dir, Path))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(raw), Header))
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_HeaderOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, Path), []byte(Header+"\n"), 0o644))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry(t *testing.T) {
	e := testEntry()
	row := MarshalEntry(e)
	assert.Equal(t, "2025-01-15T10:30:00Z", row[colTimestamp])

	got, err := UnmarshalEntry(row)
	require.NoError(t, err)
	assert.True(t, e.Timestamp.Equal(got.Timestamp))
	got.Timestamp = e.Timestamp
	assert.Equal(t, e, got)
}

func TestUnmarshalEntry_BadFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	assert.ErrorContains(t, err, "expected 6 fields")
}

func TestUnmarshalEntry_BadTimestamp(t *testing.T) {
	row := MarshalEntry(testEntry())
	row[colTimestamp] = "yesterday"
	_, err := UnmarshalEntry(row)
	assert.ErrorContains(t, err, "parsing timestamp")
}
