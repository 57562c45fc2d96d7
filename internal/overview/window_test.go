package overview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qa-tooling/testmo-overview/internal/testmo"
)

func windowFixture() []testmo.Run {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return []testmo.Run{
		{ID: 3, Name: "Run 3", CreatedAt: base.Add(2 * time.Hour), IsStarted: true, IsClosed: false},
		{ID: 1, Name: "Run 1", CreatedAt: base, IsStarted: true, IsClosed: true},
		{ID: 4, Name: "Run 4", CreatedAt: base.Add(3 * time.Hour), IsStarted: false, IsClosed: false},
		{ID: 2, Name: "Run 2", CreatedAt: base.Add(time.Hour), IsStarted: true, IsClosed: false},
	}
}

func runIDs(runs []testmo.Run) []int64 {
	ids := make([]int64, 0, len(runs))
	for _, run := range runs {
		ids = append(ids, run.ID)
	}
	return ids
}

// TestSelectRuns_All tests the all-runs window and the creation-time order
func TestSelectRuns_All(t *testing.T) {
	selected := SelectRuns(windowFixture(), AllRuns)
	assert.Equal(t, []int64{1, 2, 3, 4}, runIDs(selected))
}

// TestSelectRuns_Active tests keeping only started, unclosed runs
func TestSelectRuns_Active(t *testing.T) {
	selected := SelectRuns(windowFixture(), ActiveRuns)
	assert.Equal(t, []int64{2, 3}, runIDs(selected))
}

// TestSelectRuns_LastN tests the last-N window
func TestSelectRuns_LastN(t *testing.T) {
	selected := SelectRuns(windowFixture(), 2)
	assert.Equal(t, []int64{3, 4}, runIDs(selected))
}

// TestSelectRuns_WindowLargerThanCount tests the collapse to all runs
func TestSelectRuns_WindowLargerThanCount(t *testing.T) {
	selected := SelectRuns(windowFixture(), 10)
	assert.Equal(t, []int64{1, 2, 3, 4}, runIDs(selected))

	selected = SelectRuns(windowFixture(), 4)
	assert.Equal(t, []int64{1, 2, 3, 4}, runIDs(selected))
}

// TestSelectRuns_Empty tests the windows against no runs at all
func TestSelectRuns_Empty(t *testing.T) {
	assert.Empty(t, SelectRuns(nil, AllRuns))
	assert.Empty(t, SelectRuns(nil, ActiveRuns))
	assert.Empty(t, SelectRuns(nil, 3))
}
