package export

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/qa-tooling/testmo-overview/internal/core"
	"github.com/qa-tooling/testmo-overview/internal/jsontree"
)

//go:embed selectors.yaml
var embeddedSelectors []byte

// Selectors is the manifest of XPath expressions the export flow clicks and
// reads. A built-in manifest is embedded; users can override it with a file
// when the Testmo GUI markup changes.
type Selectors struct {
	Login struct {
		// Path is the login page path below the GUI base URL.
		Path     string `yaml:"path" validate:"required,startswith=/"`
		Email    string `yaml:"email" validate:"required"`
		Password string `yaml:"password" validate:"required"`
		Button   string `yaml:"button" validate:"required"`
	} `yaml:"login"`

	Repository struct {
		ExportMenu  string `yaml:"export_menu" validate:"required"`
		ExportToCSV string `yaml:"export_to_csv" validate:"required"`
		Dialog      struct {
			Window       string `yaml:"window" validate:"required"`
			Table        string `yaml:"table" validate:"required"`
			ColumnHeader string `yaml:"column_header" validate:"required"`
			// ColumnSelected matches the header checkbox only while fields
			// are selected, so clicking it deselects everything.
			ColumnSelected string `yaml:"column_selected" validate:"required"`
			// Field is a template, the %s placeholder receives the field name.
			Field             string `yaml:"field" validate:"required,contains=%s"`
			AdditionalDetails string `yaml:"additional_details" validate:"required"`
			ExportButton      string `yaml:"export_button" validate:"required"`
		} `yaml:"dialog"`
	} `yaml:"repository"`
}

// FieldSelector returns the selector for a field checkbox in the export
// dialog.
func (s *Selectors) FieldSelector(name string) string {
	return fmt.Sprintf(s.Repository.Dialog.Field, name)
}

// LoadSelectors loads the selector manifest. An empty path loads the embedded
// manifest.
func LoadSelectors(path string) (*Selectors, error) {
	data := embeddedSelectors
	if path != "" {
		var err error
		data, err = os.ReadFile(path) // #nosec G304 -- the manifest override path comes from the user's own config
		if err != nil {
			return nil, fmt.Errorf("failed to read selector manifest '%s': %w", path, err)
		}
	}

	var selectors Selectors
	if err := yaml.Unmarshal(data, &selectors); err != nil {
		return nil, manifestError(path, fmt.Errorf("failed to parse selector manifest: %w", err))
	}

	if err := checkEmptySelectors(data); err != nil {
		return nil, manifestError(path, err)
	}
	if err := validator.New().Struct(&selectors); err != nil {
		return nil, manifestError(path, fmt.Errorf("invalid selector manifest: %w", err))
	}

	return &selectors, nil
}

// manifestError tags manifest problems. A broken embedded manifest cannot be
// fixed by the user, so it carries the bug report note.
func manifestError(path string, err error) error {
	if path == "" {
		return fmt.Errorf("%w%s", err, core.BugReportMessage())
	}
	return err
}

// checkEmptySelectors walks the raw manifest and reports empty entries by
// their path, which reads better than the validator's struct field names.
func checkEmptySelectors(data []byte) error {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("failed to parse selector manifest: %w", err)
	}

	var empty []string
	jsontree.New(tree).Visit(func(c *jsontree.Cursor, entering bool) bool {
		if !entering || !c.OnValue() {
			return true
		}
		if value, err := c.Value(); err == nil {
			if text, ok := value.(string); !ok || strings.TrimSpace(text) == "" {
				empty = append(empty, pathString(c.Path()))
			}
		}
		return true
	})

	if len(empty) > 0 {
		return fmt.Errorf("selector manifest has empty entries: %s", strings.Join(empty, ", "))
	}
	return nil
}

func pathString(path []any) string {
	parts := make([]string, 0, len(path))
	for _, step := range path {
		parts = append(parts, fmt.Sprintf("%v", step))
	}
	return strings.Join(parts, ".")
}
