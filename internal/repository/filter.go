package repository

import "strings"

// Filter narrows the repository table down to the cases an overview should
// include.
type Filter interface {
	// Name is the unique name the filter is selected by.
	Name() string
	// Description is the short text shown in choice lists and the sheet title.
	Description() string
	// Apply returns the filtered table.
	Apply(*Table) *Table
}

var (
	registered    []Filter
	filtersByName = map[string]Filter{}
)

// Register adds a filter to the registry. Filters are presented in
// registration order; registering a name twice keeps the first entry.
func Register(f Filter) {
	if _, exists := filtersByName[f.Name()]; exists {
		return
	}
	registered = append(registered, f)
	filtersByName[f.Name()] = f
}

// Lookup returns the filter registered under name.
func Lookup(name string) (Filter, bool) {
	f, ok := filtersByName[name]
	return f, ok
}

// AllFilters returns the registered filters in presentation order.
func AllFilters() []Filter {
	result := make([]Filter, len(registered))
	copy(result, registered)
	return result
}

func init() {
	Register(noFilter{})
	Register(activeFilter{})
	Register(safetyFilter{})
	Register(removeRetiredAndRejected{})
}

// RemoveDeleted drops cases in deleted folders. It has no name and is not
// registered: it is applied to every table before the selected filters.
var RemoveDeleted Filter = removeDeletedFilter{}

type removeDeletedFilter struct{}

func (removeDeletedFilter) Name() string        { return "" }
func (removeDeletedFilter) Description() string { return "not deleted" }

// Apply excludes rows whose folder name begins with "(Deleted)".
func (removeDeletedFilter) Apply(t *Table) *Table {
	return t.Select(func(row int) bool {
		folder, _ := t.Get(row, "Folder")
		return !strings.HasPrefix(folder, "(Deleted)")
	})
}

type noFilter struct{}

func (noFilter) Name() string        { return "none" }
func (noFilter) Description() string { return "No filter" }
func (noFilter) Apply(t *Table) *Table {
	return t
}

type activeFilter struct{}

func (activeFilter) Name() string        { return "active" }
func (activeFilter) Description() string { return "State = Active" }

// Apply includes rows whose state is "Active".
func (activeFilter) Apply(t *Table) *Table {
	return t.Select(func(row int) bool {
		state, _ := t.Get(row, "State")
		return state == "Active"
	})
}

type safetyFilter struct{}

func (safetyFilter) Name() string        { return "safety" }
func (safetyFilter) Description() string { return "Safety = Yes" }

// Apply includes rows marked safety-relevant. Repositories without a Safety
// column pass through unchanged.
func (safetyFilter) Apply(t *Table) *Table {
	if !t.HasColumn("Safety") {
		return t
	}
	return t.Select(func(row int) bool {
		safety, _ := t.Get(row, "Safety")
		return safety == "Yes"
	})
}

type removeRetiredAndRejected struct{}

func (removeRetiredAndRejected) Name() string        { return "not_retired_or_rejected" }
func (removeRetiredAndRejected) Description() string { return "State ≠ Retired,Rejected" }

// Apply excludes rows whose state is "Retired" or "Rejected".
func (removeRetiredAndRejected) Apply(t *Table) *Table {
	return t.Select(func(row int) bool {
		state, _ := t.Get(row, "State")
		return state != "Retired" && state != "Rejected"
	})
}

// DescribeFilters renders the filter list the way the sheet title shows it.
func DescribeFilters(filters []Filter) string {
	if len(filters) == 0 {
		return "(no filter)"
	}
	descriptions := make([]string, 0, len(filters))
	for _, f := range filters {
		descriptions = append(descriptions, f.Description())
	}
	return "(" + strings.Join(descriptions, " | ") + ")"
}
