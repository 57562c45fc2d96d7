package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qa-tooling/testmo-overview/internal/config"
	"github.com/qa-tooling/testmo-overview/internal/core"
	"github.com/qa-tooling/testmo-overview/internal/export"
	"github.com/qa-tooling/testmo-overview/internal/overview"
	"github.com/qa-tooling/testmo-overview/internal/repository"
	"github.com/qa-tooling/testmo-overview/internal/sheet"
	"github.com/qa-tooling/testmo-overview/internal/testmo"
	"github.com/qa-tooling/testmo-overview/internal/tui"
)

// overviewOptions are the root command's flags.
type overviewOptions struct {
	projects   string
	guiURL     string
	apiURL     string
	user       string
	password   string
	token      string
	fields     string
	filter     string
	runs       int
	csvPath    string
	outputDir  string
	noInput    bool
	noLaunch   bool
	configPath string
	pretty     bool
	verbose    bool
}

// runOverview generates one overview workbook per selected project.
func runOverview(cmd *cobra.Command, opts *overviewOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := core.Init(opts.pretty, opts.verbose); err != nil {
		fmt.Printf("Failed to initialize logger: %v", err)
		return err
	}
	defer zap.L().Sync() //nolint:errcheck // sync errors on stderr are common and harmless

	ui := tui.Default()
	prompter := tui.NewPrompter(opts.noInput)

	// First run: create the config interactively, then ask for a rerun.
	if opts.configPath == "" && !opts.noInput {
		if _, found := config.FindConfigFile(); !found {
			fmt.Printf("Configuration file \"%s\" not found - Setup required.\n", config.ConfigFileName)
			if err := runSetup(ctx, prompter); err != nil {
				return err
			}
			fmt.Println("Config created. Restart the program.")
			return nil
		}
	}

	cfg, err := loadOverviewConfig(cmd, opts)
	if err != nil {
		return err
	}
	if cfg.APIURL == "" || cfg.Token == "" {
		return fmt.Errorf("API URL and token are required, run 'testmo-overview setup' or pass --gui-url and --token")
	}

	client := testmo.NewClient(cfg.APIURL, cfg.Token)

	projectQueries, err := selectProjects(ctx, client, prompter, opts.projects)
	if err != nil {
		return err
	}

	outputDir, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory: %w", err)
	}
	// #nosec G301 -- workbooks are meant to be shared
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	pipeline := &overview.Pipeline{
		Client:          client,
		CSVPath:         opts.csvPath,
		Fields:          repository.ParseSelection(opts.fields),
		FilterSelection: cfg.Filter,
		Window:          cfg.Runs,
		OutputDir:       outputDir,
		LogoFile:        cfg.LogoFile,
		Launch:          !opts.noLaunch,
		Hooks:           progressHooks(ui),
	}
	if !opts.noInput {
		pipeline.ChooseFields = fieldChooser(prompter)
		pipeline.ConfirmFilters = filterConfirmer(prompter)
	}

	// one browser session serves every selected project
	if opts.csvPath == "" {
		if cfg.User == "" || cfg.Password == "" {
			return fmt.Errorf("GUI user and password are required to export the repository, pass --csv to use an existing export")
		}

		selectors, err := export.LoadSelectors(cfg.SelectorsFile)
		if err != nil {
			return err
		}
		driver, err := export.NewChromeDriver(ctx, export.ChromeOptions{
			DownloadDir: outputDir,
			Headless:    cfg.Headless,
		})
		if err != nil {
			return err
		}
		defer core.LogDeferredError(driver.Close)

		exporter := export.NewExporter(driver, selectors, cfg.GUIURL, outputDir,
			time.Duration(cfg.Timeout)*time.Second)

		ui.Progress("Logging in to Testmo...")
		if err := exporter.Login(ctx, cfg.User, cfg.Password); err != nil {
			return err
		}
		ui.ProgressSuccess("Logged in to Testmo.")

		pipeline.Exporter = exporter
	}

	for _, query := range projectQueries {
		if err := pipeline.Run(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// loadOverviewConfig loads the configuration and applies the flag overrides.
func loadOverviewConfig(cmd *cobra.Command, opts *overviewOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.guiURL != "" {
		cfg.GUIURL = opts.guiURL
		// the API URL follows an overridden GUI URL unless set explicitly
		if opts.apiURL == "" {
			cfg.APIURL = config.DeriveAPIURL(opts.guiURL)
		}
	}
	if opts.apiURL != "" {
		cfg.APIURL = opts.apiURL
	}
	if opts.user != "" {
		cfg.User = opts.user
	}
	if opts.password != "" {
		cfg.Password = opts.password
	}
	if opts.token != "" {
		cfg.Token = opts.token
	}
	if opts.filter != "" {
		cfg.Filter = opts.filter
	}
	if cmd.Flags().Changed("runs") {
		cfg.Runs = opts.runs
	}
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}
	return cfg, nil
}

// selectProjects resolves the --project selection, prompting with the
// project listing when nothing was selected.
func selectProjects(ctx context.Context, client *testmo.Client, prompter *tui.Prompter, selection string) ([]string, error) {
	queries := repository.ParseSelection(selection)
	if len(queries) > 0 {
		return queries, nil
	}

	projects, err := client.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	projects = testmo.SortProjectsByName(projects)

	choices := make([]tui.Choice, len(projects))
	for i, project := range projects {
		choices[i] = tui.Choice{Index: strconv.FormatInt(project.ID, 10), Text: project.Name}
	}

	line, err := prompter.SelectProjects(choices)
	if err != nil {
		return nil, err
	}
	queries = repository.ParseSelection(line)
	if len(queries) == 0 {
		return nil, fmt.Errorf("no project selected")
	}
	return queries, nil
}

// fieldChooser prompts for additional repository columns from the exportable
// fields. Numeric answers pick by position in the grid.
func fieldChooser(prompter *tui.Prompter) func(available []string) ([]string, error) {
	return func(available []string) ([]string, error) {
		line, err := prompter.SelectFields(tui.NumberedChoices(available))
		if err != nil {
			return nil, err
		}

		var fields []string
		for _, token := range repository.ParseSelection(line) {
			if position, convErr := strconv.Atoi(token); convErr == nil && position >= 1 && position <= len(available) {
				fields = append(fields, available[position-1])
				continue
			}
			fields = append(fields, token)
		}
		return fields, nil
	}
}

// filterConfirmer lets the user adjust the case filter selection before it
// is applied.
func filterConfirmer(prompter *tui.Prompter) func(preset string) (string, error) {
	return func(preset string) (string, error) {
		filters := repository.AllFilters()
		names := make([]string, len(filters))
		for i, filter := range filters {
			names[i] = filter.Name()
		}
		return prompter.SelectFilters(tui.NumberedChoices(names), preset)
	}
}

// progressHooks wires the pipeline's lifecycle into the terminal UI.
func progressHooks(ui *tui.UI) overview.Hooks {
	var counter *tui.Counter
	return overview.Hooks{
		ProjectStarted: func(project testmo.Project) {
			ui.Info("\nProcessing project %s\n", project.Name)
		},
		ExportStarted: func(project testmo.Project) {
			ui.Info("Scraping project info from Testmo...\n")
		},
		ExportComplete: func(csvPath string) {
			ui.Info("Project info from Testmo received.\n")
		},
		FilterUnknown: func(name string) {
			ui.Info("Warning: filter '%s' is unknown -- filter not applied.\n", name)
		},
		TableLoaded: func(total int, filters string) {
			ui.Info("%d cases selected %s\n", total, filters)
		},
		CollectingRuns: func() {
			ui.Progress("Collecting test runs...")
		},
		RunsCollected: func(count int) {
			ui.ProgressSuccess(fmt.Sprintf("%d runs found.", count))
		},
		RunStarted: func(index int, run testmo.Run) {
			counter = ui.StartCounter(fmt.Sprintf("Run %d (%d)", index+1, run.ID), run.CompletedCount)
		},
		CaseAdded: func(run testmo.Run, caseID int64) {
			counter.Add(1)
		},
		RunComplete: func(index int, run testmo.Run) {
			counter.Done()
		},
		Tracing: func(count int) {
			ui.Info("Resolving %d inconclusive cases...\n", count)
		},
		SavingSheet: func(path string) {
			ui.Info("Saving workbook %s\n", path)
		},
		LaunchingViewer: func(path string) {
			ui.Info("Opening %s\n", path)
		},
		Done: func(stats sheet.Statistics) {
			ui.Summary(statsMarkdown(stats))
		},
	}
}

// statsMarkdown renders the summary statistics as a small markdown table.
func statsMarkdown(stats sheet.Statistics) string {
	var builder strings.Builder
	builder.WriteString("\n| statistic | count |\n|---|---|\n")
	for _, row := range stats.Rows() {
		if row.Name == "total" {
			fmt.Fprintf(&builder, "| %s | %d |\n", row.Name, row.Count)
			continue
		}
		fmt.Fprintf(&builder, "| %s | %d / %s%% |\n", row.Name, row.Count, stats.Percentage(row.Count))
	}
	return builder.String()
}
