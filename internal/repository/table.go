// Package repository provides the case repository table read from a Testmo
// CSV export, together with the case filters that narrow it down before a
// sheet is built.
package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/qa-tooling/testmo-overview/internal/core"
)

// StdFields are the repository columns every overview carries, in sheet
// order. Additional columns chosen during export append after them.
var StdFields = []string{"Case ID", "Case", "Folder", "State", "Status (latest)"}

// Table is a column-ordered view of a repository CSV export. Tables are
// immutable, operations return new tables sharing the row data.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewTable creates a table from column names and rows.
func NewTable(columns []string, rows [][]string) *Table {
	index := make(map[string]int, len(columns))
	for i, column := range columns {
		index[column] = i
	}
	return &Table{columns: columns, index: index, rows: rows}
}

// ReadCSV reads a repository export. The first record is the header.
func ReadCSV(path string) (*Table, error) {
	file, err := os.Open(path) // #nosec G304 -- the export path is supplied by the caller on purpose
	if err != nil {
		return nil, fmt.Errorf("failed to open repository CSV '%s': %w", path, err)
	}
	defer core.LogDeferredError(file.Close)

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read repository CSV '%s': %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("repository CSV '%s' has no header row", path)
	}

	columns := records[0]
	// spreadsheet tools like to prepend a UTF-8 BOM
	columns[0] = strings.TrimPrefix(columns[0], "\uFEFF")

	return NewTable(columns, records[1:]), nil
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return t.columns
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumn reports whether the table has a column of that name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Get returns the cell value at row/column. ok is false when the column does
// not exist or the row is out of range.
func (t *Table) Get(row int, column string) (value string, ok bool) {
	col, exists := t.index[column]
	if !exists || row < 0 || row >= len(t.rows) {
		return "", false
	}
	record := t.rows[row]
	if col >= len(record) {
		return "", false
	}
	return record[col], true
}

// Select returns a table with the rows for which keep returns true.
func (t *Table) Select(keep func(row int) bool) *Table {
	var rows [][]string
	for i := range t.rows {
		if keep(i) {
			rows = append(rows, t.rows[i])
		}
	}
	return NewTable(t.columns, rows)
}

// SortByFolderAndCase returns a table ordered by the Folder column, then the
// Case column. The sort is stable, rows in the same folder keep their export
// order when case names collide.
func (t *Table) SortByFolderAndCase() *Table {
	rows := slices.Clone(t.rows)
	folderCol, hasFolder := t.index["Folder"]
	caseCol, hasCase := t.index["Case"]

	key := func(record []string, col int, has bool) string {
		if !has || col >= len(record) {
			return ""
		}
		return record[col]
	}

	slices.SortStableFunc(rows, func(a, b []string) int {
		if by := strings.Compare(key(a, folderCol, hasFolder), key(b, folderCol, hasFolder)); by != 0 {
			return by
		}
		return strings.Compare(key(a, caseCol, hasCase), key(b, caseCol, hasCase))
	})

	return NewTable(t.columns, rows)
}
