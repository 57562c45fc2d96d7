package testmo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/qa-tooling/testmo-overview/internal/jsontree"
)

// ProjectNotFoundError is returned when a project cannot be resolved by name
// or ID. Suggestion carries the closest existing project name when one is
// close enough to look like a typo.
type ProjectNotFoundError struct {
	Query      string
	Suggestion string
}

func (e *ProjectNotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("project '%s' not found. Did you mean: %s?", e.Query, e.Suggestion)
	}
	return fmt.Sprintf("project '%s' not found", e.Query)
}

// Interface guard for ProjectNotFoundError
var _ error = &ProjectNotFoundError{}

// FindProject resolves a project by display name or numeric ID. The lookup
// walks the raw project listing, so it keeps working when the API adds fields
// the Project model does not carry.
func (c *Client) FindProject(ctx context.Context, nameOrID string) (*Project, error) {
	entries, err := Collect[any](ctx, c, c.ProjectsRequest())
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	match := jsontree.New(entries).Search(func(node *jsontree.Cursor) bool {
		if !node.OnObject() {
			return false
		}
		if value, err := objectValue(node, "name"); err == nil && value == nameOrID {
			return true
		}
		if value, err := objectValue(node, "id"); err == nil && numberString(value) == nameOrID {
			return true
		}
		return false
	})
	if match == nil {
		return nil, &ProjectNotFoundError{
			Query:      nameOrID,
			Suggestion: SuggestProjectName(projectNames(entries), nameOrID),
		}
	}

	data, err := json.Marshal(match.Node())
	if err != nil {
		return nil, fmt.Errorf("failed to decode project entry: %w", err)
	}
	var project Project
	if err := json.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("failed to decode project entry: %w", err)
	}
	return &project, nil
}

func objectValue(node *jsontree.Cursor, key string) (any, error) {
	child, err := node.Key(key)
	if err != nil {
		return nil, err
	}
	return child.Value()
}

// numberString renders a decoded JSON number the way it reads in the reply.
// Non-numbers render as an empty string.
func numberString(value any) string {
	number, ok := value.(float64)
	if !ok {
		return ""
	}
	return strconv.FormatFloat(number, 'f', -1, 64)
}

func projectNames(entries []any) []string {
	var names []string
	for _, entry := range entries {
		object, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := object["name"].(string); ok {
			names = append(names, name)
		}
	}
	return names
}

// SuggestProjectName finds the project name most similar to name for typo
// detection using Levenshtein distance. An empty string means nothing was
// close enough.
func SuggestProjectName(names []string, name string) string {
	if len(names) == 0 {
		return ""
	}

	var bestName string
	bestDistance := 3 // Only consider distances <= 2

	nameLower := strings.ToLower(name)

	for _, candidate := range names {
		distance := levenshtein.ComputeDistance(nameLower, strings.ToLower(candidate))
		if distance < bestDistance {
			bestDistance = distance
			bestName = candidate
		}
	}

	return bestName
}
