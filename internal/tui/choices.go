package tui

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// indexWidth right-aligns choice indices so single and four digit numbers
// line up in the grid.
const indexWidth = 4

// Choice is one entry of a selection grid. Index is the token the user types
// to pick the entry, Text its display name.
type Choice struct {
	Index string
	Text  string
}

// NumberedChoices wraps plain texts into choices indexed 1-based.
func NumberedChoices(texts []string) []Choice {
	choices := make([]Choice, len(texts))
	for i, text := range texts {
		choices[i] = Choice{Index: fmt.Sprintf("%d", i+1), Text: text}
	}
	return choices
}

// FormatChoices lays the choices out in as many columns as fit into width,
// filled column-major. The result ends with a newline unless there are no
// choices.
func FormatChoices(choices []Choice, width int) string {
	if len(choices) == 0 {
		return "No choices available.\n"
	}

	entries := make([]string, len(choices))
	maxLen := 0
	for i, choice := range choices {
		entries[i] = fmt.Sprintf("%*s. %s", indexWidth, choice.Index, choice.Text)
		if len(entries[i]) > maxLen {
			maxLen = len(entries[i])
		}
	}

	colWidth := maxLen + 4 // padding between columns
	numColumns := max(1, width/colWidth)
	numRows := (len(entries) + numColumns - 1) / numColumns

	var builder strings.Builder
	for row := 0; row < numRows; row++ {
		var line strings.Builder
		for col := 0; col < numColumns; col++ {
			idx := col*numRows + row
			if idx < len(entries) {
				line.WriteString(fmt.Sprintf("%-*s", colWidth, entries[idx]))
			}
		}
		builder.WriteString(strings.TrimRight(line.String(), " "))
		builder.WriteString("\n")
	}
	return builder.String()
}

// DisplayChoices prints the choice grid to stdout, sized to the terminal.
func (u *UI) DisplayChoices(choices []Choice) {
	fmt.Fprint(os.Stdout, FormatChoices(choices, terminalWidth()))
}

// terminalWidth returns the width the choice grid may use. The exact default
// width of 80 reads as "no real terminal size" and widens to 120 so the grid
// keeps at least two columns.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	if width == 80 {
		width = 120
	}
	return width
}
