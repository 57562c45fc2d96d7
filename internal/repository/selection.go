package repository

import (
	"regexp"
	"strconv"
)

// selectionPattern tokenizes selection input: double- or single-quoted
// strings keep their spaces, everything else splits on commas and
// whitespace.
var selectionPattern = regexp.MustCompile(`"([^"]*)"|'([^']*)'|([^,\s]+)`)

// ParseSelection splits a selection line the user typed (projects, fields or
// filters) into tokens.
func ParseSelection(line string) []string {
	var entries []string
	for _, match := range selectionPattern.FindAllStringSubmatch(line, -1) {
		for _, group := range match[1:] {
			if group != "" {
				entries = append(entries, group)
				break
			}
		}
	}
	return entries
}

// SelectFilters resolves a filter selection line. Tokens pick filters by
// their 1-based position in the choice list or by name. Unknown tokens are
// returned separately so callers can warn without failing.
func SelectFilters(selection string) (selected []Filter, unknown []string) {
	all := AllFilters()
	seen := map[string]struct{}{}
	for _, token := range ParseSelection(selection) {
		if _, duplicate := seen[token]; duplicate {
			continue
		}
		seen[token] = struct{}{}

		f, ok := lookupFilterToken(token, all)
		if !ok {
			unknown = append(unknown, token)
			continue
		}
		selected = append(selected, f)
	}
	return selected, unknown
}

func lookupFilterToken(token string, all []Filter) (Filter, bool) {
	if position, err := strconv.Atoi(token); err == nil && position >= 1 && position <= len(all) {
		return all[position-1], true
	}
	return Lookup(token)
}
