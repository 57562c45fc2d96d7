package overview

import "github.com/qa-tooling/testmo-overview/internal/testmo"

// Run window values with special meaning.
const (
	// AllRuns selects every run of the project.
	AllRuns = -1
	// ActiveRuns selects only runs that are started and not closed.
	ActiveRuns = 0
)

// SelectRuns applies the run window to a project's runs and returns the
// selection ordered oldest first, the column order of the sheet. A positive
// window keeps the last N runs by creation time; a window of at least the
// run count collapses to all runs.
func SelectRuns(runs []testmo.Run, window int) []testmo.Run {
	sorted := testmo.SortRunsByCreation(runs)

	switch {
	case window < 0 || window >= len(sorted):
		return sorted
	case window == ActiveRuns:
		var active []testmo.Run
		for _, run := range sorted {
			if run.Active() {
				active = append(active, run)
			}
		}
		return active
	default:
		return sorted[len(sorted)-window:]
	}
}
