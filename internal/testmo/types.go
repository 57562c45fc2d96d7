package testmo

import (
	"slices"
	"strings"
	"time"
)

// Project is a single project entry of the project listing. The API reply
// carries many more fields, only the ones the overview needs are modeled.
type Project struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Run is a single test run of a project.
type Run struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
	IsStarted      bool      `json:"is_started"`
	IsClosed       bool      `json:"is_closed"`
	CompletedCount int64     `json:"completed_count"`
}

// Active reports whether the run is currently being worked on: started but
// not closed yet.
func (r Run) Active() bool {
	return r.IsStarted && !r.IsClosed
}

// Result is a single test case result inside a run. A case can have several
// results in one run, only the one with IsLatest set counts.
type Result struct {
	CaseID    int64     `json:"case_id"`
	StatusID  Status    `json:"status_id"`
	IsLatest  bool      `json:"is_latest"`
	CreatedAt time.Time `json:"created_at"`
}

// SortRunsByCreation returns a copy of runs ordered oldest first, the column
// order of the overview sheet.
func SortRunsByCreation(runs []Run) []Run {
	sorted := slices.Clone(runs)
	slices.SortStableFunc(sorted, func(a, b Run) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return sorted
}

// SortProjectsByName returns a copy of projects ordered by name, the order
// project choices are presented in.
func SortProjectsByName(projects []Project) []Project {
	sorted := slices.Clone(projects)
	slices.SortStableFunc(sorted, func(a, b Project) int {
		return strings.Compare(a.Name, b.Name)
	})
	return sorted
}
