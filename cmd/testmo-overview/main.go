package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	// build time date
	buildDate = "unknown"
)

func main() {
	opts := &overviewOptions{}

	rootCmd := &cobra.Command{
		Use:   "testmo-overview",
		Short: "Create overview Excel sheets for Testmo projects",
		Long: `testmo-overview collects the test runs of Testmo projects and renders them
into one overview workbook per project: the filtered case table, one colored
column per run, a resolved latest-status column and summary statistics.

The repository export comes either from the Testmo GUI through a headless
browser session or from an existing CSV file (--csv).`,
		Version: fmt.Sprintf("%s (built: %s)", version, buildDate),
		// The overview generation is the default operation.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOverview(cmd, opts)
		},
	}

	rootCmd.Flags().StringVar(&opts.projects, "project", "", "Project names or numeric IDs (comma or space separated, quoted names honored)")
	rootCmd.Flags().StringVar(&opts.guiURL, "gui-url", "", "Testmo GUI base URL")
	rootCmd.Flags().StringVar(&opts.apiURL, "api-url", "", "Testmo API base URL (derived from the GUI URL when empty)")
	rootCmd.Flags().StringVar(&opts.user, "user", "", "Testmo GUI user name")
	rootCmd.Flags().StringVar(&opts.password, "password", "", "Testmo GUI password")
	rootCmd.Flags().StringVar(&opts.token, "token", "", "Testmo API token")
	rootCmd.Flags().StringVar(&opts.fields, "fields", "", "Additional repository columns to export")
	rootCmd.Flags().StringVar(&opts.filter, "filter", "", "Case filters to apply (default from config)")
	rootCmd.Flags().IntVar(&opts.runs, "runs", 0, "Run window: N>0 last N runs, 0 active runs only, -1 all runs (default from config)")
	rootCmd.Flags().StringVar(&opts.csvPath, "csv", "", "Use an existing repository CSV instead of exporting one")
	rootCmd.Flags().StringVar(&opts.outputDir, "output", "", "Directory for exports and workbooks (default from config)")
	rootCmd.Flags().BoolVar(&opts.noInput, "no-input", false, "Fail instead of prompting for missing input")
	rootCmd.Flags().BoolVar(&opts.noLaunch, "no-launch", false, "Do not open the finished workbook")
	rootCmd.Flags().StringVar(&opts.configPath, "config", "", "Path to the config file")
	rootCmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Use pretty-printed logs instead of JSON")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newProjectsCmd())
	rootCmd.AddCommand(newFiltersCmd())
	rootCmd.AddCommand(newConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
