package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCountName tests booking latest-status names into the counters
func TestCountName(t *testing.T) {
	var stats Statistics
	stats.CountName("Passed")
	stats.CountName("Passed")
	stats.CountName("Failed")
	stats.CountName("Blocked")
	stats.CountName("Untested")
	stats.CountName("")

	assert.Equal(t, 2, stats.Passed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 3, stats.Other)
}

// TestRows tests the summary rows order
func TestRows(t *testing.T) {
	stats := Statistics{Total: 10, Passed: 5, Failed: 2, Other: 3, NotInProject: 1}

	rows := stats.Rows()
	assert.Equal(t, []StatRow{
		{"total", 10},
		{"passed", 5},
		{"failed", 2},
		{"other", 3},
		{"not_in_project", 1},
	}, rows)
}

// TestPercentage tests share rendering including the zero-total case
func TestPercentage(t *testing.T) {
	stats := Statistics{Total: 8}
	assert.Equal(t, "25.00", stats.Percentage(2))
	assert.Equal(t, "0.00", stats.Percentage(0))
	assert.Equal(t, "100.00", stats.Percentage(8))

	empty := Statistics{}
	assert.Equal(t, "--", empty.Percentage(3))
}
