package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repository.csv")
	// #nosec G306 -- test file permissions are acceptable for temporary test files
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestReadCSV tests reading a repository export with header and rows
func TestReadCSV(t *testing.T) {
	path := writeCSV(t, "Case ID,Case,Folder,State,Status (latest)\n"+
		"100,Login works,Auth,Active,Passed\n"+
		"101,Logout works,Auth,Active,Failed\n")

	table, err := ReadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, StdFields, table.Columns())
	assert.Equal(t, 2, table.Len())

	value, ok := table.Get(1, "Case")
	require.True(t, ok)
	assert.Equal(t, "Logout works", value)
}

// TestReadCSV_BOM tests that a UTF-8 BOM does not leak into the first column name
func TestReadCSV_BOM(t *testing.T) {
	path := writeCSV(t, "\uFEFFCase ID,Case\n100,Login works\n")

	table, err := ReadCSV(path)
	require.NoError(t, err)
	assert.True(t, table.HasColumn("Case ID"))
}

// TestReadCSV_Missing tests the error for a missing export file
func TestReadCSV_Missing(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open repository CSV")
}

// TestReadCSV_Empty tests the error for an export without a header row
func TestReadCSV_Empty(t *testing.T) {
	path := writeCSV(t, "")
	_, err := ReadCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

// TestGet_MissingColumn tests the ok=false contract for unknown columns
func TestGet_MissingColumn(t *testing.T) {
	table := NewTable([]string{"Case ID", "Case"}, [][]string{{"100", "Login works"}})

	_, ok := table.Get(0, "Safety")
	assert.False(t, ok)

	_, ok = table.Get(5, "Case")
	assert.False(t, ok)
}

// TestSortByFolderAndCase tests folder-then-case ordering
func TestSortByFolderAndCase(t *testing.T) {
	table := NewTable([]string{"Case ID", "Case", "Folder"}, [][]string{
		{"1", "Zeta", "Checkout"},
		{"2", "Alpha", "Auth"},
		{"3", "Beta", "Checkout"},
		{"4", "Gamma", "Auth"},
	})

	sorted := table.SortByFolderAndCase()

	var order []string
	for row := 0; row < sorted.Len(); row++ {
		id, _ := sorted.Get(row, "Case ID")
		order = append(order, id)
	}
	assert.Equal(t, []string{"2", "4", "3", "1"}, order)

	// the original table keeps its row order
	first, _ := table.Get(0, "Case ID")
	assert.Equal(t, "1", first)
}

// TestSelect tests row selection by predicate
func TestSelect(t *testing.T) {
	table := NewTable([]string{"State"}, [][]string{{"Active"}, {"Retired"}, {"Active"}})

	active := table.Select(func(row int) bool {
		state, _ := table.Get(row, "State")
		return state == "Active"
	})

	assert.Equal(t, 2, active.Len())
	assert.Equal(t, 3, table.Len())
}
