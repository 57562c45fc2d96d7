package overview

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/qa-tooling/testmo-overview/internal/core"
	"github.com/qa-tooling/testmo-overview/internal/export"
	"github.com/qa-tooling/testmo-overview/internal/repository"
	"github.com/qa-tooling/testmo-overview/internal/sheet"
	"github.com/qa-tooling/testmo-overview/internal/testmo"
)

// resultWorkers bounds how many run result listings are fetched at once.
const resultWorkers = 4

// Pipeline generates overview workbooks. One Pipeline processes its projects
// sequentially; Run handles a single project end to end.
type Pipeline struct {
	// Client reads projects, runs and results from the API.
	Client *testmo.Client
	// Exporter drives the GUI export. It may be nil when CSVPath is set.
	Exporter *export.Exporter
	// CSVPath points at an existing repository export. When set, the export
	// stage is skipped.
	CSVPath string

	// Fields are the additional repository columns beyond the standard ones.
	Fields []string
	// ChooseFields picks additional columns from the exportable fields when
	// Fields is empty. Nil keeps Fields as provided.
	ChooseFields func(available []string) ([]string, error)

	// FilterSelection is the case filter selection line.
	FilterSelection string
	// ConfirmFilters lets the user adjust the filter selection before it is
	// applied. Nil keeps FilterSelection as provided.
	ConfirmFilters func(preset string) (string, error)

	// Window is the run window: N>0 last N runs, 0 active runs, -1 all.
	Window int
	// OutputDir receives the CSV export and the workbook.
	OutputDir string
	// LogoFile is an optional image for the sheet title row.
	LogoFile string
	// Launch opens the finished workbook with the default application.
	Launch bool

	Hooks Hooks
}

// Run generates the overview workbook for one project, identified by name or
// numeric ID. Every stage error is tagged with its stage; the first failing
// stage ends the run.
func (p *Pipeline) Run(ctx context.Context, projectQuery string) error {
	project, err := p.resolve(ctx, projectQuery)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}

	csvPath, err := p.export(ctx, *project)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	table, filterText, err := p.loadTable(csvPath)
	if err != nil {
		return fmt.Errorf("table: %w", err)
	}

	selected, err := p.collectRuns(ctx, *project)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	builder, err := p.render(ctx, *project, table, filterText, selected)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if err := p.launch(ctx, *project, builder); err != nil {
		return fmt.Errorf("launch: %w", err)
	}

	return nil
}

func (p *Pipeline) resolve(ctx context.Context, projectQuery string) (*testmo.Project, error) {
	project, err := p.Client.FindProject(ctx, projectQuery)
	if err != nil {
		return nil, err
	}
	if p.Hooks.ProjectStarted != nil {
		p.Hooks.ProjectStarted(*project)
	}
	return project, nil
}

// export produces the repository CSV, either by downloading it through the
// GUI or by using the caller-provided file.
func (p *Pipeline) export(ctx context.Context, project testmo.Project) (string, error) {
	if p.CSVPath != "" {
		zap.L().Debug("Using provided repository CSV", zap.String("path", p.CSVPath))
		return p.CSVPath, nil
	}
	if p.Exporter == nil {
		return "", fmt.Errorf("no repository CSV available and no browser session to export one")
	}

	if p.Hooks.ExportStarted != nil {
		p.Hooks.ExportStarted(project)
	}

	csvPath, err := p.Exporter.Export(ctx, project, p.chooseFields)
	if err != nil {
		return "", err
	}

	if p.Hooks.ExportComplete != nil {
		p.Hooks.ExportComplete(csvPath)
	}
	return csvPath, nil
}

// chooseFields is handed to the exporter as the field selection callback.
// The additional columns asked for once are reused for every later project.
func (p *Pipeline) chooseFields(available []string) ([]string, error) {
	if p.Hooks.FieldsReceived != nil {
		p.Hooks.FieldsReceived(available)
	}
	if len(p.Fields) > 0 || p.ChooseFields == nil {
		return p.Fields, nil
	}

	chosen, err := p.ChooseFields(available)
	if err != nil {
		return nil, err
	}
	p.Fields = chosen
	return chosen, nil
}

// loadTable reads the repository CSV and applies the deleted-folder rule, the
// selected filters and the Folder/Case sort.
func (p *Pipeline) loadTable(csvPath string) (*repository.Table, string, error) {
	table, err := repository.ReadCSV(csvPath)
	if err != nil {
		return nil, "", err
	}
	table = repository.RemoveDeleted.Apply(table)

	selection := p.FilterSelection
	if p.ConfirmFilters != nil {
		confirmed, err := p.ConfirmFilters(selection)
		if err != nil {
			return nil, "", err
		}
		selection = confirmed
	}

	filters, unknown := repository.SelectFilters(selection)
	for _, name := range unknown {
		zap.L().Warn("Unknown filter not applied", zap.String("filter", name))
		if p.Hooks.FilterUnknown != nil {
			p.Hooks.FilterUnknown(name)
		}
	}
	for _, filter := range filters {
		table = filter.Apply(table)
	}
	table = table.SortByFolderAndCase()

	filterText := repository.DescribeFilters(filters)
	if p.Hooks.TableLoaded != nil {
		p.Hooks.TableLoaded(table.Len(), filterText)
	}
	return table, filterText, nil
}

func (p *Pipeline) collectRuns(ctx context.Context, project testmo.Project) ([]testmo.Run, error) {
	if p.Hooks.CollectingRuns != nil {
		p.Hooks.CollectingRuns()
	}

	runs, err := p.Client.Runs(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	if p.Hooks.RunsCollected != nil {
		p.Hooks.RunsCollected(len(runs))
	}
	return SelectRuns(runs, p.Window), nil
}

// render builds the workbook: the case table, one column per selected run
// (results fetched concurrently, written in order), tracing and the summary.
func (p *Pipeline) render(ctx context.Context, project testmo.Project, table *repository.Table, filterText string, selected []testmo.Run) (*sheet.Builder, error) {
	builder, err := sheet.NewBuilder(project.Name, filterText, sheet.Options{LogoFile: p.LogoFile})
	if err != nil {
		return nil, err
	}

	columns := slices.Clone(repository.StdFields)
	for _, field := range p.Fields {
		if !slices.Contains(columns, field) {
			columns = append(columns, field)
		}
	}
	if err := builder.WriteCaseTable(table, columns); err != nil {
		return nil, err
	}

	results, err := p.fetchResults(ctx, selected)
	if err != nil {
		return nil, err
	}

	for index, run := range selected {
		if p.Hooks.RunStarted != nil {
			p.Hooks.RunStarted(index, run)
		}

		runResults, _ := results.Load(run.ID)
		err := builder.WriteRun(index, run, runResults, func(caseID int64, inProject bool) {
			if inProject {
				if p.Hooks.CaseAdded != nil {
					p.Hooks.CaseAdded(run, caseID)
				}
			} else if p.Hooks.CaseNotInProject != nil {
				p.Hooks.CaseNotInProject(run, caseID)
			}
		})
		if err != nil {
			return nil, err
		}

		if p.Hooks.RunComplete != nil {
			p.Hooks.RunComplete(index, run)
		}
	}

	if p.Hooks.Tracing != nil {
		p.Hooks.Tracing(builder.TracedCount())
	}
	if err := builder.TraceInconclusive(); err != nil {
		return nil, err
	}
	if err := builder.Finish(); err != nil {
		return nil, err
	}
	return builder, nil
}

// fetchResults loads the result listings of the selected runs with a bounded
// worker pool. The map is keyed by run ID so the render order stays the
// selection order regardless of fetch completion order.
func (p *Pipeline) fetchResults(ctx context.Context, selected []testmo.Run) (*xsync.MapOf[int64, []testmo.Result], error) {
	results := xsync.NewMapOf[int64, []testmo.Result]()

	var wg sync.WaitGroup
	sem := make(chan struct{}, resultWorkers)
	var mu sync.Mutex
	var firstErr error

	for _, run := range selected {
		wg.Add(1)
		go func(run testmo.Run) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			runResults, err := p.Client.Results(ctx, run.ID)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("failed to collect results of run %d: %w", run.ID, err)
				}
				mu.Unlock()
				return
			}
			results.Store(run.ID, runResults)
		}(run)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// launch saves the workbook and opens it with the platform default
// application.
func (p *Pipeline) launch(ctx context.Context, project testmo.Project, builder *sheet.Builder) error {
	path := filepath.Join(p.OutputDir, export.SanitizeProjectName(project.Name)+".xlsx")
	if p.Hooks.SavingSheet != nil {
		p.Hooks.SavingSheet(path)
	}
	if err := builder.SaveAs(path); err != nil {
		return err
	}

	if p.Launch {
		if p.Hooks.LaunchingViewer != nil {
			p.Hooks.LaunchingViewer(path)
		}
		if err := core.OpenWithDefaultApp(ctx, path); err != nil {
			return err
		}
	}

	if p.Hooks.Done != nil {
		p.Hooks.Done(builder.Stats())
	}
	return nil
}
