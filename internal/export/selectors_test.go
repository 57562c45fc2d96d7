package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadSelectors_Embedded tests loading the built-in manifest
func TestLoadSelectors_Embedded(t *testing.T) {
	selectors, err := LoadSelectors("")
	require.NoError(t, err)

	assert.Equal(t, "/auth/login", selectors.Login.Path)
	assert.NotEmpty(t, selectors.Login.Email)
	assert.NotEmpty(t, selectors.Repository.Dialog.ExportButton)
}

// TestLoadSelectors_Override tests loading a manifest from a file
func TestLoadSelectors_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	manifest := `
login:
  path: /login
  email: //input[@id="email"]
  password: //input[@id="pw"]
  button: //button
repository:
  export_menu: //a[1]
  export_to_csv: //a[2]
  dialog:
    window: //div[1]
    table: //table
    column_header: //th
    column_selected: //th[@selected]
    field: //td[text()="%s"]
    additional_details: //input
    export_button: //button[2]
`
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0600))

	selectors, err := LoadSelectors(path)
	require.NoError(t, err)
	assert.Equal(t, "/login", selectors.Login.Path)
	assert.Equal(t, `//td[text()="Priority"]`, selectors.FieldSelector("Priority"))
}

// TestLoadSelectors_MissingFile tests the error for an absent override file
func TestLoadSelectors_MissingFile(t *testing.T) {
	_, err := LoadSelectors(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read selector manifest")
}

// TestLoadSelectors_EmptyEntry tests that empty entries are reported by path
func TestLoadSelectors_EmptyEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	manifest := `
login:
  path: /login
  email: ""
  password: //input[@id="pw"]
  button: //button
repository:
  export_menu: //a[1]
  export_to_csv: //a[2]
  dialog:
    window: //div[1]
    table: //table
    column_header: //th
    column_selected: //th[@selected]
    field: //td[text()="%s"]
    additional_details: //input
    export_button: //button[2]
`
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0600))

	_, err := LoadSelectors(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty entries")
	assert.Contains(t, err.Error(), "login.email")
}

// TestLoadSelectors_BadYAML tests the parse error path
func TestLoadSelectors_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("login: ["), 0600))

	_, err := LoadSelectors(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse selector manifest")
}

// TestFieldSelector tests the field template substitution of the embedded manifest
func TestFieldSelector(t *testing.T) {
	selectors, err := LoadSelectors("")
	require.NoError(t, err)

	selector := selectors.FieldSelector("Case ID")
	assert.Contains(t, selector, `"Case ID"`)
	assert.NotContains(t, selector, "%s")
}
