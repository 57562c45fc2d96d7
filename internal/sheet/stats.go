package sheet

import "fmt"

// Statistics are the counters of the overview summary block. Total counts the
// filtered case rows, NotInProject counts run results whose case is missing
// from the repository export.
type Statistics struct {
	Total        int
	Passed       int
	Failed       int
	Other        int
	NotInProject int
}

// CountName books a latest-status display name into the matching counter.
// Everything besides Passed and Failed lands in Other, including an empty
// name (a traced case that never resolved).
func (s *Statistics) CountName(name string) {
	switch name {
	case "Passed":
		s.Passed++
	case "Failed":
		s.Failed++
	default:
		s.Other++
	}
}

// StatRow is one rendered row of the summary block.
type StatRow struct {
	Name  string
	Count int
}

// Rows returns the summary rows in sheet order.
func (s Statistics) Rows() []StatRow {
	return []StatRow{
		{"total", s.Total},
		{"passed", s.Passed},
		{"failed", s.Failed},
		{"other", s.Other},
		{"not_in_project", s.NotInProject},
	}
}

// Percentage renders count as a share of the total, "--" when there is no
// total to relate to.
func (s Statistics) Percentage(count int) string {
	if s.Total == 0 {
		return "--"
	}
	return fmt.Sprintf("%.2f", 100.0*float64(count)/float64(s.Total))
}
