package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberedChoices(t *testing.T) {
	choices := NumberedChoices([]string{"Priority", "Owner"})

	assert.Equal(t, []Choice{
		{Index: "1", Text: "Priority"},
		{Index: "2", Text: "Owner"},
	}, choices)
}

func TestFormatChoices_Empty(t *testing.T) {
	assert.Equal(t, "No choices available.\n", FormatChoices(nil, 120))
}

func TestFormatChoices_SingleColumn(t *testing.T) {
	choices := NumberedChoices([]string{"Gateway", "Backend"})

	// entries are 12 characters, plus padding nothing fits twice into 20
	output := FormatChoices(choices, 20)
	assert.Equal(t, "   1. Gateway\n   2. Backend\n", output)
}

func TestFormatChoices_ColumnMajor(t *testing.T) {
	choices := NumberedChoices([]string{"a", "b", "c", "d", "e"})

	// entries are 7 wide, column width 11, three columns fit into 40:
	// the grid fills columns first
	output := FormatChoices(choices, 40)
	assert.Equal(t, "   1. a       3. c       5. e\n   2. b       4. d\n", output)
}

func TestFormatChoices_ExplicitIndices(t *testing.T) {
	choices := []Choice{
		{Index: "44", Text: "Gateway"},
		{Index: "1455", Text: "Backend"},
	}

	output := FormatChoices(choices, 20)
	assert.Equal(t, "  44. Gateway\n1455. Backend\n", output)
}
