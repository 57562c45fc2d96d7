package export

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/qa-tooling/testmo-overview/internal/repository"
	"github.com/qa-tooling/testmo-overview/internal/testmo"
)

// Exporter runs the repository CSV export for one logged-in GUI session. The
// same Exporter can export several projects in sequence.
type Exporter struct {
	driver    Driver
	selectors *Selectors
	guiURL    string
	outputDir string
	timeout   time.Duration
	clock     clockwork.Clock
}

// NewExporter creates an Exporter driving the GUI at guiURL. Downloads land
// in outputDir; timeout bounds the wait for each export download.
func NewExporter(driver Driver, selectors *Selectors, guiURL, outputDir string, timeout time.Duration) *Exporter {
	return &Exporter{
		driver:    driver,
		selectors: selectors,
		guiURL:    guiURL,
		outputDir: outputDir,
		timeout:   timeout,
		clock:     clockwork.NewRealClock(),
	}
}

// Login signs in to the Testmo GUI with the user's credentials.
func (e *Exporter) Login(ctx context.Context, user, password string) error {
	login := e.selectors.Login
	if err := e.driver.Navigate(ctx, e.guiURL+login.Path); err != nil {
		return err
	}
	if err := e.driver.WaitVisible(ctx, login.Email); err != nil {
		return err
	}
	if err := e.driver.SendKeys(ctx, login.Email, user); err != nil {
		return err
	}
	if err := e.driver.SendKeys(ctx, login.Password, password); err != nil {
		return err
	}
	if err := e.driver.Click(ctx, login.Button); err != nil {
		return err
	}
	return nil
}

// Export downloads the project's case repository as CSV and returns the path
// of the export, named after the sanitized project name. chooseFields is
// called with every exportable field of the repository and returns the
// additional columns to include beyond the standard ones.
func (e *Exporter) Export(ctx context.Context, project testmo.Project, chooseFields func(available []string) ([]string, error)) (string, error) {
	repo := e.selectors.Repository
	dialog := repo.Dialog

	url := fmt.Sprintf("%s/repositories/%d", e.guiURL, project.ID)
	if err := e.driver.Navigate(ctx, url); err != nil {
		return "", err
	}

	if err := e.driver.WaitVisible(ctx, repo.ExportMenu); err != nil {
		return "", err
	}
	if err := e.driver.Click(ctx, repo.ExportMenu); err != nil {
		return "", err
	}
	if err := e.driver.Click(ctx, repo.ExportToCSV); err != nil {
		return "", err
	}
	if err := e.driver.WaitVisible(ctx, dialog.Window); err != nil {
		return "", err
	}

	html, err := e.driver.OuterHTML(ctx, dialog.Table)
	if err != nil {
		return "", err
	}
	available, err := ExtractFieldNames(html)
	if err != nil {
		return "", err
	}

	chosen, err := chooseFields(available)
	if err != nil {
		return "", err
	}

	e.deselectAll(ctx)
	e.selectFields(ctx, chosen)

	// skip the bulky per-project detail block when it is preselected
	if err := e.driver.Click(ctx, dialog.AdditionalDetails); err != nil {
		zap.L().Debug("Additional details not preselected", zap.Error(err))
	}

	if err := e.driver.Click(ctx, dialog.ExportButton); err != nil {
		return "", err
	}

	downloadPath, err := WaitForDownload(ctx, e.clock, e.outputDir, e.timeout)
	if err != nil {
		return "", err
	}

	finalPath := filepath.Join(e.outputDir, SanitizeProjectName(project.Name)+".csv")
	if err := renameDownload(downloadPath, finalPath); err != nil {
		return "", err
	}
	return finalPath, nil
}

// deselectAll clears the dialog's field selection. Clicking the column header
// twice selects everything, clicking the selected header then clears it; each
// click is best-effort since the dialog may start out empty.
func (e *Exporter) deselectAll(ctx context.Context) {
	dialog := e.selectors.Repository.Dialog
	for _, selector := range []string{dialog.ColumnHeader, dialog.ColumnHeader, dialog.ColumnSelected} {
		if err := e.driver.Click(ctx, selector); err != nil {
			zap.L().Debug("Deselect click skipped", zap.Error(err))
		}
	}
}

// selectFields ticks the standard columns plus the chosen additional ones.
// Misses are expected: custom fields are not present in every repository.
func (e *Exporter) selectFields(ctx context.Context, chosen []string) {
	selection := slices.Clone(repository.StdFields)
	for _, field := range chosen {
		if !slices.Contains(selection, field) {
			selection = append(selection, field)
		}
	}

	for _, field := range selection {
		if err := e.driver.Click(ctx, e.selectors.FieldSelector(field)); err != nil {
			zap.L().Debug("Field not present in this repository",
				zap.String("field", field), zap.Error(err))
		}
	}
}
