package sheet

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qa-tooling/testmo-overview/internal/repository"
	"github.com/qa-tooling/testmo-overview/internal/testmo"
)

func sheetFixture() *repository.Table {
	return repository.NewTable(
		[]string{"Case ID", "Case", "Folder", "State", "Status (latest)"},
		[][]string{
			{"101", "Login works", "Auth", "Active", "Passed"},
			{"102", "Logout works", "Auth", "Active", "Failed"},
			{"103", "Export works", "Reports", "Active", "Blocked"},
			{"104", "Import works", "Reports", "Active", "Untested"},
		},
	)
}

func cellValue(t *testing.T, b *Builder, cell string) string {
	t.Helper()
	value, err := b.File().GetCellValue(b.sheet, cell)
	require.NoError(t, err)
	return value
}

// TestNewBuilder_SheetName tests sheet naming including Excel's length limit
func TestNewBuilder_SheetName(t *testing.T) {
	b, err := NewBuilder("Gateway", "(No filter)", Options{})
	require.NoError(t, err)
	assert.Equal(t, "Gateway Overview", b.sheet)

	long, err := NewBuilder(strings.Repeat("x", 40), "", Options{})
	require.NoError(t, err)
	assert.Len(t, long.sheet, 31)
}

// TestWriteCaseTable tests headers, case rows and latest-status handling
func TestWriteCaseTable(t *testing.T) {
	b, err := NewBuilder("Gateway", "(No filter)", Options{})
	require.NoError(t, err)

	require.NoError(t, b.WriteCaseTable(sheetFixture(), repository.StdFields))

	// bold header row at the table start
	assert.Equal(t, "Case ID", cellValue(t, b, "A9"))
	assert.Equal(t, "Status (latest)", cellValue(t, b, "E9"))

	// one row per case below the header
	assert.Equal(t, "101", cellValue(t, b, "A10"))
	assert.Equal(t, "Login works", cellValue(t, b, "B10"))
	assert.Equal(t, "Passed", cellValue(t, b, "E10"))
	assert.Equal(t, "Untested", cellValue(t, b, "E13"))

	// conclusive statuses are counted, Blocked is queued for tracing
	stats := b.Stats()
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Passed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Other)
	assert.Equal(t, 1, b.TracedCount())
}

// TestWriteCaseTable_MissingColumn tests the "--" fallback for absent cells
func TestWriteCaseTable_MissingColumn(t *testing.T) {
	table := repository.NewTable(
		[]string{"Case ID", "Case", "Folder", "State", "Status (latest)"},
		[][]string{{"7", "Short row", "Misc", "Active", "Passed"}},
	)

	b, err := NewBuilder("Gateway", "", Options{})
	require.NoError(t, err)

	columns := append([]string{}, repository.StdFields...)
	columns = append(columns, "Priority")
	require.NoError(t, b.WriteCaseTable(table, columns))

	assert.Equal(t, "--", cellValue(t, b, "F10"))
}

// TestWriteRun tests run columns, latest-only filtering and unknown cases
func TestWriteRun(t *testing.T) {
	b, err := NewBuilder("Gateway", "", Options{})
	require.NoError(t, err)
	require.NoError(t, b.WriteCaseTable(sheetFixture(), repository.StdFields))

	run := testmo.Run{ID: 55, Name: "Sprint 12", CreatedAt: time.Now()}
	results := []testmo.Result{
		{CaseID: 101, StatusID: testmo.StatusPassed, IsLatest: true},
		{CaseID: 101, StatusID: testmo.StatusFailed, IsLatest: false},
		{CaseID: 999, StatusID: testmo.StatusPassed, IsLatest: true},
	}

	var added, missing []int64
	require.NoError(t, b.WriteRun(0, run, results, func(id int64, inProject bool) {
		if inProject {
			added = append(added, id)
		} else {
			missing = append(missing, id)
		}
	}))

	// one column after the repository columns, run name as header
	assert.Equal(t, "Sprint 12", cellValue(t, b, "F9"))
	assert.Equal(t, "Passed", cellValue(t, b, "F10"))
	// superseded result ignored
	assert.Equal(t, []int64{101}, added)
	assert.Equal(t, []int64{999}, missing)
	assert.Equal(t, 1, b.Stats().NotInProject)
}

// TestWriteRun_RequiresTable tests the phase ordering guard
func TestWriteRun_RequiresTable(t *testing.T) {
	b, err := NewBuilder("Gateway", "", Options{})
	require.NoError(t, err)

	err = b.WriteRun(0, testmo.Run{Name: "Sprint 1"}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "case table")
}

// TestTraceInconclusive tests resolving a blocked case to its newest conclusive status
func TestTraceInconclusive(t *testing.T) {
	b, err := NewBuilder("Gateway", "", Options{})
	require.NoError(t, err)
	require.NoError(t, b.WriteCaseTable(sheetFixture(), repository.StdFields))
	require.Equal(t, 1, b.TracedCount())

	// runs are written oldest first: the case passed in an old run, was
	// blocked in the newest -- tracing must pick Passed
	oldRun := testmo.Run{ID: 1, Name: "Run 1"}
	newRun := testmo.Run{ID: 2, Name: "Run 2"}
	require.NoError(t, b.WriteRun(0, oldRun, []testmo.Result{
		{CaseID: 103, StatusID: testmo.StatusPassed, IsLatest: true},
	}, nil))
	require.NoError(t, b.WriteRun(1, newRun, []testmo.Result{
		{CaseID: 103, StatusID: testmo.StatusBlocked, IsLatest: true},
	}, nil))

	require.NoError(t, b.TraceInconclusive())

	assert.Equal(t, "Passed", cellValue(t, b, "E12"))
	assert.Equal(t, 2, b.Stats().Passed)
}

// TestTraceInconclusive_NeverConclusive tests a case that stays inconclusive
func TestTraceInconclusive_NeverConclusive(t *testing.T) {
	b, err := NewBuilder("Gateway", "", Options{})
	require.NoError(t, err)
	require.NoError(t, b.WriteCaseTable(sheetFixture(), repository.StdFields))

	require.NoError(t, b.WriteRun(0, testmo.Run{ID: 1, Name: "Run 1"}, []testmo.Result{
		{CaseID: 103, StatusID: testmo.StatusRetest, IsLatest: true},
	}, nil))

	require.NoError(t, b.TraceInconclusive())

	// the cell is cleared and the case counts as other
	assert.Equal(t, "", cellValue(t, b, "E12"))
	assert.Equal(t, 2, b.Stats().Other)
}

// TestTraceInconclusive_NoAppearance tests clearing a case absent from every run
func TestTraceInconclusive_NoAppearance(t *testing.T) {
	b, err := NewBuilder("Gateway", "", Options{})
	require.NoError(t, err)
	require.NoError(t, b.WriteCaseTable(sheetFixture(), repository.StdFields))

	before := b.Stats()
	require.NoError(t, b.TraceInconclusive())

	assert.Equal(t, "", cellValue(t, b, "E12"))
	// nothing is counted for a case with no appearance at all
	assert.Equal(t, before, b.Stats())
}

// TestFinish tests the title row and the statistics block
func TestFinish(t *testing.T) {
	b, err := NewBuilder("Gateway", "(State = Active)", Options{})
	require.NoError(t, err)
	require.NoError(t, b.WriteCaseTable(sheetFixture(), repository.StdFields))
	require.NoError(t, b.TraceInconclusive())
	require.NoError(t, b.Finish())

	assert.Equal(t, "Test Overview Gateway (State = Active)", cellValue(t, b, "B1"))

	assert.Equal(t, "total", cellValue(t, b, "A2"))
	assert.Equal(t, "4", cellValue(t, b, "B2"))
	assert.Equal(t, "passed", cellValue(t, b, "A3"))
	assert.Equal(t, "1 / 25.00%", cellValue(t, b, "B3"))
	assert.Equal(t, "not_in_project", cellValue(t, b, "A6"))

	// autofit never narrows below the floor
	width, err := b.File().GetColWidth(b.sheet, "E")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, width, float64(MinColumnWidth))
}

// TestSaveAs tests writing the workbook to disk
func TestSaveAs(t *testing.T) {
	b, err := NewBuilder("Gateway", "", Options{})
	require.NoError(t, err)
	require.NoError(t, b.WriteCaseTable(sheetFixture(), repository.StdFields))
	require.NoError(t, b.Finish())

	path := filepath.Join(t.TempDir(), "Gateway.xlsx")
	require.NoError(t, b.SaveAs(path))
	assert.FileExists(t, path)
}
