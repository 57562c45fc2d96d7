package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qa-tooling/testmo-overview/internal/testmo"
)

func exporterFixture(t *testing.T, driver *MockDriver) (*Exporter, string) {
	t.Helper()
	selectors, err := LoadSelectors("")
	require.NoError(t, err)

	dir := t.TempDir()
	return NewExporter(driver, selectors, "https://example.testmo.net", dir, 5*time.Second), dir
}

// TestLogin tests the login sequence against the mock driver
func TestLogin(t *testing.T) {
	driver := &MockDriver{}
	exporter, _ := exporterFixture(t, driver)

	require.NoError(t, exporter.Login(context.Background(), "qa@example.com", "secret"))

	selectors := exporter.selectors
	assert.Equal(t, [][]string{
		{"navigate", "https://example.testmo.net/auth/login"},
		{"wait", selectors.Login.Email},
		{"sendkeys", selectors.Login.Email, "qa@example.com"},
		{"sendkeys", selectors.Login.Password, "secret"},
		{"click", selectors.Login.Button},
	}, driver.Calls)
}

// TestLogin_Failure tests surfacing a failed login step
func TestLogin_Failure(t *testing.T) {
	driver := &MockDriver{}
	exporter, _ := exporterFixture(t, driver)
	driver.Errors = map[string]error{
		"click:" + exporter.selectors.Login.Button: fmt.Errorf("no such element"),
	}

	err := exporter.Login(context.Background(), "qa@example.com", "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such element")
}

// TestExport tests the full dialog flow: scrape, choose, select, download
func TestExport(t *testing.T) {
	driver := &MockDriver{HTML: fieldTableHTML}
	exporter, dir := exporterFixture(t, driver)

	// the export lands while the flow waits for the download
	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "repository-export.csv"), []byte("Case ID\n"), 0600)
	}()

	var received []string
	project := testmo.Project{ID: 7, Name: "My Gateway"}
	path, err := exporter.Export(context.Background(), project, func(available []string) ([]string, error) {
		received = available
		return []string{"Priority"}, nil
	})
	require.NoError(t, err)

	// the callback sees every scraped field
	assert.Equal(t, []string{"Case ID", "Priority"}, received)

	// the download is renamed to the sanitized project name
	assert.Equal(t, filepath.Join(dir, "MyGateway.csv"), path)
	assert.FileExists(t, path)

	selectors := exporter.selectors
	clicked := driver.ClickedSelectors()
	assert.Contains(t, clicked, selectors.Repository.ExportMenu)
	assert.Contains(t, clicked, selectors.Repository.ExportToCSV)
	// deselect-all clicks the header twice, then the selected header
	assert.Contains(t, clicked, selectors.Repository.Dialog.ColumnSelected)
	// standard columns plus the chosen additional field
	assert.Contains(t, clicked, selectors.FieldSelector("Case ID"))
	assert.Contains(t, clicked, selectors.FieldSelector("Status (latest)"))
	assert.Contains(t, clicked, selectors.FieldSelector("Priority"))
	assert.Contains(t, clicked, selectors.Repository.Dialog.ExportButton)

	// it navigated to the project repository page
	assert.Equal(t, []string{"navigate", "https://example.testmo.net/repositories/7"}, driver.Calls[0])
}

// TestExport_FieldMissSoftFails tests that an unclickable field does not fail the export
func TestExport_FieldMissSoftFails(t *testing.T) {
	driver := &MockDriver{HTML: fieldTableHTML}
	exporter, dir := exporterFixture(t, driver)
	driver.Errors = map[string]error{
		"click:" + exporter.selectors.FieldSelector("Priority"): fmt.Errorf("not found"),
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "export.csv"), []byte("Case ID\n"), 0600)
	}()

	_, err := exporter.Export(context.Background(), testmo.Project{ID: 1, Name: "P"}, func([]string) ([]string, error) {
		return []string{"Priority"}, nil
	})
	assert.NoError(t, err)
}

// TestExport_ChooseFieldsError tests aborting when the field selection fails
func TestExport_ChooseFieldsError(t *testing.T) {
	driver := &MockDriver{HTML: fieldTableHTML}
	exporter, _ := exporterFixture(t, driver)

	_, err := exporter.Export(context.Background(), testmo.Project{ID: 1, Name: "P"}, func([]string) ([]string, error) {
		return nil, fmt.Errorf("selection aborted")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selection aborted")

	// nothing was clicked inside the dialog after the abort
	assert.NotContains(t, driver.ClickedSelectors(), exporter.selectors.Repository.Dialog.ExportButton)
}

// TestExport_DialogStepFails tests surfacing a failed dialog step
func TestExport_DialogStepFails(t *testing.T) {
	driver := &MockDriver{HTML: fieldTableHTML}
	exporter, _ := exporterFixture(t, driver)
	driver.Errors = map[string]error{
		"click:" + exporter.selectors.Repository.ExportToCSV: fmt.Errorf("menu never opened"),
	}

	_, err := exporter.Export(context.Background(), testmo.Project{ID: 1, Name: "P"}, func([]string) ([]string, error) {
		return nil, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "menu never opened")
}
