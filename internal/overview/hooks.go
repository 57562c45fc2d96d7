// Package overview orchestrates the generation of one project's overview
// workbook: resolve the project, export its repository, load and filter the
// case table, collect runs and results, render the sheet and open it. The
// stages run strictly in order and the first failure stops the pipeline.
package overview

import (
	"reflect"

	"github.com/qa-tooling/testmo-overview/internal/sheet"
	"github.com/qa-tooling/testmo-overview/internal/testmo"
)

// Hooks registers functions to be called over the life of a pipeline run.
// Any field may be nil. Hooks observe progress, they cannot alter it; the
// interactive decision points are the pipeline's ChooseFields and
// ConfirmFilters callbacks.
type Hooks struct {
	// ProjectStarted is called once the project is resolved.
	ProjectStarted func(project testmo.Project)
	// ExportStarted is called before the GUI export begins.
	ExportStarted func(project testmo.Project)
	// FieldsReceived is called with the exportable fields scraped from the
	// export dialog.
	FieldsReceived func(available []string)
	// ExportComplete is called with the path of the downloaded CSV.
	ExportComplete func(csvPath string)
	// FilterUnknown is called for each selected filter name that does not
	// exist. Unknown filters are skipped, not fatal.
	FilterUnknown func(name string)
	// TableLoaded is called with the filtered case count and the applied
	// filter description.
	TableLoaded func(total int, filters string)
	// CollectingRuns is called before the run listing is fetched.
	CollectingRuns func()
	// RunsCollected is called with the total number of runs found.
	RunsCollected func(count int)
	// RunStarted is called before a selected run's results are written.
	RunStarted func(index int, run testmo.Run)
	// CaseAdded is called per result written into the run's column.
	CaseAdded func(run testmo.Run, caseID int64)
	// CaseNotInProject is called per result whose case is missing from the
	// repository export.
	CaseNotInProject func(run testmo.Run, caseID int64)
	// RunComplete is called after a selected run's results are written.
	RunComplete func(index int, run testmo.Run)
	// Tracing is called with the number of inconclusive cases to resolve.
	Tracing func(count int)
	// SavingSheet is called with the workbook path before it is written.
	SavingSheet func(path string)
	// LaunchingViewer is called before the workbook is opened.
	LaunchingViewer func(path string)
	// Done is called with the final statistics after the project finished.
	Done func(stats sheet.Statistics)
}

// Merge returns a Hooks that calls the receiver's hooks first, then the
// other's. Nil fields on either side are skipped.
func (h Hooks) Merge(other Hooks) Hooks {
	merged := h
	mergedValue := reflect.ValueOf(&merged).Elem()
	otherValue := reflect.ValueOf(&other).Elem()

	for i := 0; i < mergedValue.NumField(); i++ {
		first := mergedValue.Field(i)
		second := otherValue.Field(i)
		if second.IsNil() {
			continue
		}
		if first.IsNil() {
			first.Set(second)
			continue
		}

		// detach the current values so the combined closure does not call
		// through the field it is about to replace
		firstFn := reflect.ValueOf(first.Interface())
		secondFn := reflect.ValueOf(second.Interface())
		combined := reflect.MakeFunc(first.Type(), func(args []reflect.Value) []reflect.Value {
			firstFn.Call(args)
			return secondFn.Call(args)
		})
		first.Set(combined)
	}

	return merged
}
