// Package sheet renders the overview workbook: the filtered case table, one
// column per selected run, the resolved latest-status column and the summary
// statistics block, colored by result status.
package sheet

import (
	"fmt"
	"image"
	"os"
	"slices"
	"strconv"

	// registered so the logo header can size PNG and JPEG files
	_ "image/jpeg"
	_ "image/png"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/qa-tooling/testmo-overview/internal/core"
	"github.com/qa-tooling/testmo-overview/internal/repository"
	"github.com/qa-tooling/testmo-overview/internal/testmo"
)

// Sheet geometry. The case table leaves room above itself for the title row
// and the statistics block.
const (
	titleRow      = 1
	statsStartRow = 2
	tableStartRow = 9
	tableStartCol = 1

	// MinColumnWidth is the narrowest a column gets, autofit only widens.
	MinColumnWidth = 18

	// maxSheetNameLength is Excel's hard limit on sheet names.
	maxSheetNameLength = 31

	latestStatusColumn = "Status (latest)"
)

// Options configure workbook rendering.
type Options struct {
	// LogoFile is an image placed in the title row. Empty or missing files
	// are skipped.
	LogoFile string
}

// Builder assembles one overview workbook. The phases are ordered:
// WriteCaseTable once, WriteRun per selected run, TraceInconclusive, Finish,
// SaveAs.
type Builder struct {
	file       *excelize.File
	sheet      string
	project    string
	filterText string
	opts       Options

	stats         Statistics
	columns       []string
	rowByCaseID   map[int64]int
	latestCol     int
	runsStartCol  int
	tableRows     int
	tracedCases   mapset.Set[int64]
	tracedResults map[int64][]testmo.Result

	// longest cell text per sheet column, tracked while the table and run
	// cells are written so autofit ignores the title and statistics
	colWidths map[int]int
	styles    map[string]int
}

// NewBuilder creates a workbook with a single overview sheet for the project.
// filterText is the applied-filter description shown in the title.
func NewBuilder(project, filterText string, opts Options) (*Builder, error) {
	file := excelize.NewFile()
	name := truncateSheetName(project + " Overview")
	if err := file.SetSheetName(file.GetSheetName(0), name); err != nil {
		return nil, fmt.Errorf("failed to name overview sheet: %w", err)
	}

	return &Builder{
		file:          file,
		sheet:         name,
		project:       project,
		filterText:    filterText,
		opts:          opts,
		rowByCaseID:   map[int64]int{},
		tracedCases:   mapset.NewSet[int64](),
		tracedResults: map[int64][]testmo.Result{},
		colWidths:     map[int]int{},
		styles:        map[string]int{},
	}, nil
}

func truncateSheetName(name string) string {
	runes := []rune(name)
	if len(runes) <= maxSheetNameLength {
		return name
	}
	return string(runes[:maxSheetNameLength])
}

// Stats returns the counters accumulated so far.
func (b *Builder) Stats() Statistics {
	return b.stats
}

// TracedCount returns how many cases carry an inconclusive latest status.
func (b *Builder) TracedCount() int {
	return b.tracedCases.Cardinality()
}

// WriteCaseTable writes the column headers and one row per case of the
// filtered, sorted table. columns are the repository columns to show, in
// order; cells the table cannot provide render as "--". Cases whose latest
// status is inconclusive are queued for tracing instead of being counted.
func (b *Builder) WriteCaseTable(table *repository.Table, columns []string) error {
	b.columns = slices.Clone(columns)
	b.runsStartCol = tableStartCol + len(columns)
	b.tableRows = table.Len()
	b.stats.Total = table.Len()

	for i, column := range columns {
		col := tableStartCol + i
		if column == latestStatusColumn {
			b.latestCol = col
		}
		if err := b.setCell(tableStartRow, col, column, "bold", nil); err != nil {
			return err
		}
	}

	traced := testmo.TracedStatuses()
	for row := 0; row < table.Len(); row++ {
		sheetRow := tableStartRow + 1 + row

		if id, ok := caseID(table, row); ok {
			b.rowByCaseID[id] = sheetRow
		}

		for i, column := range columns {
			value, ok := table.Get(row, column)
			if !ok {
				value = "--"
			}
			col := tableStartCol + i

			if column != latestStatusColumn {
				if err := b.setCell(sheetRow, col, value, "left", nil); err != nil {
					return err
				}
				continue
			}

			// latest status cells are colored and feed either the
			// statistics or the tracing queue
			var fill string
			if status, known := testmo.StatusFromName(value); known {
				fill = status.Color()
				if traced.Contains(status) {
					if id, idOK := caseID(table, row); idOK {
						b.tracedCases.Add(id)
					}
					if err := b.setCell(sheetRow, col, value, "left", &fill); err != nil {
						return err
					}
					continue
				}
			}
			b.stats.CountName(value)
			if err := b.setCell(sheetRow, col, value, "left", &fill); err != nil {
				return err
			}
		}
	}

	return nil
}

func caseID(table *repository.Table, row int) (int64, bool) {
	raw, ok := table.Get(row, "Case ID")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// WriteRun writes one run column: the run name as header and the latest
// result of each case as a colored cell. index is the zero-based position of
// the run among the selected runs. onCase, when non-nil, is notified per
// latest result, with inProject false when the case is missing from the
// repository export.
func (b *Builder) WriteRun(index int, run testmo.Run, results []testmo.Result, onCase func(id int64, inProject bool)) error {
	if b.runsStartCol == 0 {
		return fmt.Errorf("run columns require the case table to be written first")
	}

	col := b.runsStartCol + index
	if err := b.setCell(tableStartRow, col, run.Name, "bold", nil); err != nil {
		return err
	}

	for _, result := range results {
		if !result.IsLatest {
			continue
		}

		if b.tracedCases.Contains(result.CaseID) {
			// runs are written oldest first, prepending keeps the
			// newest run at the front for tracing
			b.tracedResults[result.CaseID] = append([]testmo.Result{result}, b.tracedResults[result.CaseID]...)
		}

		row, ok := b.rowByCaseID[result.CaseID]
		if !ok {
			b.stats.NotInProject++
			if onCase != nil {
				onCase(result.CaseID, false)
			}
			continue
		}
		if onCase != nil {
			onCase(result.CaseID, true)
		}

		fill := result.StatusID.Color()
		if err := b.setCell(row, col, result.StatusID.String(), "", &fill); err != nil {
			return err
		}
	}

	return nil
}

// TraceInconclusive resolves the queued cases: the newest conclusive status
// across the selected runs replaces the latest-status cell and is counted
// into the statistics. Cases that appeared but never concluded count as
// other with a cleared cell; cases that appeared in no selected run are
// cleared without counting.
func (b *Builder) TraceInconclusive() error {
	traced := testmo.TracedStatuses()

	ids := b.tracedCases.ToSlice()
	slices.Sort(ids)

	for _, id := range ids {
		results, seen := b.tracedResults[id]

		var resolved testmo.Status
		var hasResolved bool
		if seen {
			for _, result := range results {
				if traced.Contains(result.StatusID) {
					continue
				}
				resolved = result.StatusID
				hasResolved = true
				break
			}
			if hasResolved {
				b.stats.CountName(resolved.String())
			} else {
				b.stats.CountName("")
			}
		}

		row, ok := b.rowByCaseID[id]
		if !ok {
			continue
		}

		if !hasResolved {
			if err := b.setCell(row, b.latestCol, "", "left", nil); err != nil {
				return err
			}
			continue
		}
		fill := resolved.Color()
		if err := b.setCell(row, b.latestCol, resolved.String(), "left", &fill); err != nil {
			return err
		}
	}

	return nil
}

// Finish applies the column widths and inserts the title row and the
// statistics block. Call after the table, runs and tracing are written.
func (b *Builder) Finish() error {
	if err := b.autofitColumns(); err != nil {
		return err
	}
	if err := b.insertHeader(); err != nil {
		return err
	}
	return b.insertStatistics()
}

// SaveAs writes the workbook to path.
func (b *Builder) SaveAs(path string) error {
	defer core.LogDeferredError(b.file.Close)
	if err := b.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook '%s': %w", path, err)
	}
	return nil
}

// File exposes the underlying workbook for tests.
func (b *Builder) File() *excelize.File {
	return b.file
}

func (b *Builder) autofitColumns() error {
	for col, longest := range b.colWidths {
		width := float64(longest + 2)
		if width < MinColumnWidth {
			width = MinColumnWidth
		}
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return fmt.Errorf("failed to autofit column %d: %w", col, err)
		}
		if err := b.file.SetColWidth(b.sheet, name, name, width); err != nil {
			return fmt.Errorf("failed to autofit column %s: %w", name, err)
		}
	}
	return nil
}

func (b *Builder) insertHeader() error {
	b.insertLogo()

	if err := b.file.SetColWidth(b.sheet, "A", "A", 30); err != nil {
		return fmt.Errorf("failed to widen logo column: %w", err)
	}
	if err := b.file.MergeCell(b.sheet, "B1", "D1"); err != nil {
		return fmt.Errorf("failed to merge title cells: %w", err)
	}

	title := fmt.Sprintf("Test Overview %s %s", b.project, b.filterText)
	if err := b.file.SetCellValue(b.sheet, "B1", title); err != nil {
		return fmt.Errorf("failed to write title: %w", err)
	}

	style, err := b.styleID("title", &excelize.Style{
		Font:      &excelize.Font{Family: "Calibri", Size: 20, Bold: true, Color: "000000"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	if err := b.file.SetCellStyle(b.sheet, "B1", "B1", style); err != nil {
		return fmt.Errorf("failed to style title: %w", err)
	}
	return nil
}

// insertLogo places the configured logo image at half size in the title row.
// A missing or unreadable logo only logs, overviews work without branding.
func (b *Builder) insertLogo() {
	if b.opts.LogoFile == "" {
		return
	}

	heightPx, err := imageHeight(b.opts.LogoFile)
	if err != nil {
		zap.L().Warn("Skipping logo", zap.String("file", b.opts.LogoFile), zap.Error(err))
		return
	}

	scale := 0.5
	if err := b.file.AddPicture(b.sheet, "A1", b.opts.LogoFile, &excelize.GraphicOptions{
		ScaleX: scale,
		ScaleY: scale,
	}); err != nil {
		zap.L().Warn("Skipping logo", zap.String("file", b.opts.LogoFile), zap.Error(err))
		return
	}

	// row heights are in points, the decoded height in pixels
	points := float64(heightPx) * scale * 0.75
	if err := b.file.SetRowHeight(b.sheet, titleRow, points); err != nil {
		zap.L().Warn("Failed to size logo row", zap.Error(err))
	}
}

func imageHeight(path string) (int, error) {
	file, err := os.Open(path) // #nosec G304 -- the logo path comes from the user's own config
	if err != nil {
		return 0, err
	}
	defer core.LogDeferredError(file.Close)

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, fmt.Errorf("failed to decode image: %w", err)
	}
	return config.Height, nil
}

func (b *Builder) insertStatistics() error {
	for i, row := range b.stats.Rows() {
		sheetRow := statsStartRow + i

		if err := b.statCell(sheetRow, tableStartCol, row.Name, "bold"); err != nil {
			return err
		}

		value := strconv.Itoa(row.Count)
		if row.Name != "total" {
			value = fmt.Sprintf("%d / %s%%", row.Count, b.stats.Percentage(row.Count))
		}
		if err := b.statCell(sheetRow, tableStartCol+1, value, "left"); err != nil {
			return err
		}
	}
	return nil
}

// statCell writes a summary cell without feeding the autofit tracking.
func (b *Builder) statCell(row, col int, value, kind string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to locate cell (%d,%d): %w", col, row, err)
	}
	if err := b.file.SetCellValue(b.sheet, cell, value); err != nil {
		return fmt.Errorf("failed to write cell %s: %w", cell, err)
	}
	style, err := b.kindStyle(kind, "")
	if err != nil {
		return err
	}
	if err := b.file.SetCellStyle(b.sheet, cell, cell, style); err != nil {
		return fmt.Errorf("failed to style cell %s: %w", cell, err)
	}
	return nil
}

// setCell writes a table-area cell, tracking its width for autofit. kind
// selects the base style ("bold", "left" or ""), fill an optional status
// color.
func (b *Builder) setCell(row, col int, value, kind string, fill *string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to locate cell (%d,%d): %w", col, row, err)
	}
	if err := b.file.SetCellValue(b.sheet, cell, value); err != nil {
		return fmt.Errorf("failed to write cell %s: %w", cell, err)
	}

	if length := len(value); length > b.colWidths[col] {
		b.colWidths[col] = length
	}

	color := ""
	if fill != nil {
		color = *fill
	}
	style, err := b.kindStyle(kind, color)
	if err != nil {
		return err
	}
	if style == 0 {
		return nil
	}
	if err := b.file.SetCellStyle(b.sheet, cell, cell, style); err != nil {
		return fmt.Errorf("failed to style cell %s: %w", cell, err)
	}
	return nil
}

// kindStyle resolves the cached style for a base kind plus an optional fill
// color. The zero ID means no styling is needed.
func (b *Builder) kindStyle(kind, color string) (int, error) {
	if kind == "" && color == "" {
		return 0, nil
	}

	style := &excelize.Style{}
	switch kind {
	case "bold":
		style.Font = &excelize.Font{Bold: true}
	case "left":
		style.Alignment = &excelize.Alignment{Horizontal: "left"}
	}
	if color != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
	}

	return b.styleID(kind+"+"+color, style)
}

func (b *Builder) styleID(key string, style *excelize.Style) (int, error) {
	if id, ok := b.styles[key]; ok {
		return id, nil
	}
	id, err := b.file.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("failed to create cell style: %w", err)
	}
	b.styles[key] = id
	return id, nil
}
