package export

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// ExtractFieldNames pulls the exportable field names out of the export
// dialog's field table HTML. Each field row carries an avatar cell whose
// sibling div holds the display name.
func ExtractFieldNames(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse field table: %w", err)
	}

	var names []string
	doc.Find("td.table__field__avatar-text").Each(func(_ int, cell *goquery.Selection) {
		name := strings.TrimSpace(cell.Find("div.avatar").First().Next().Text())
		if name != "" {
			names = append(names, name)
		}
	})
	return names, nil
}

// SanitizeProjectName reduces a project name to a safe file name stem:
// letters and digits survive, spaces are dropped, everything else is removed.
func SanitizeProjectName(name string) string {
	kept := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			return r
		}
		return -1
	}, name)
	return strings.ReplaceAll(strings.TrimRight(kept, " "), " ", "")
}
