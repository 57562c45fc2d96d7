package testmo

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// Status is a test result status code as reported by the Testmo API.
type Status int

// Result status codes of the Testmo API.
const (
	StatusUntested Status = iota + 1
	StatusPassed
	StatusFailed
	StatusRetest
	StatusBlocked
	StatusSkipped
)

var statusNames = map[Status]string{
	StatusUntested: "Untested",
	StatusPassed:   "Passed",
	StatusFailed:   "Failed",
	StatusRetest:   "Retest",
	StatusBlocked:  "Blocked",
	StatusSkipped:  "Skipped",
}

// statusColors holds the cell fill colors of the overview sheet as RGB hex
// without the leading '#'. Untested has no entry, those cells stay unfilled.
var statusColors = map[Status]string{
	StatusPassed:  "36ab51",
	StatusFailed:  "f44b25",
	StatusRetest:  "ffaa00",
	StatusBlocked: "9a9b9c",
	StatusSkipped: "16abc5",
}

// String returns the display name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Color returns the sheet fill color for the status, or an empty string when
// cells with this status stay unfilled.
func (s Status) Color() string {
	return statusColors[s]
}

// Known reports whether the status is one of the documented API codes.
func (s Status) Known() bool {
	_, ok := statusNames[s]
	return ok
}

// StatusFromName resolves a display name back to its status code.
func StatusFromName(name string) (Status, bool) {
	for status, statusName := range statusNames {
		if statusName == name {
			return status, true
		}
	}
	return 0, false
}

// TracedStatuses returns the statuses that are inconclusive on their own.
// Results in one of these states are traced back through older runs until a
// conclusive outcome is found.
func TracedStatuses() mapset.Set[Status] {
	return mapset.NewSet(StatusBlocked, StatusSkipped, StatusRetest)
}
