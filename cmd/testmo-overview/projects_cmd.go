package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qa-tooling/testmo-overview/internal/config"
	"github.com/qa-tooling/testmo-overview/internal/testmo"
)

// newProjectsCmd creates the projects command
func newProjectsCmd() *cobra.Command {
	var jsonOutput bool
	var configPath string

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the projects of the Testmo instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjects(cmd.Context(), configPath, jsonOutput, os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to the config file")

	return cmd
}

func runProjects(ctx context.Context, configPath string, jsonOutput bool, w io.Writer) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.APIURL == "" || cfg.Token == "" {
		return fmt.Errorf("API URL and token are required, run 'testmo-overview setup' first")
	}

	client := testmo.NewClient(cfg.APIURL, cfg.Token)
	projects, err := client.Projects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	projects = testmo.SortProjectsByName(projects)

	if jsonOutput {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(projects)
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, project := range projects {
		fmt.Fprintf(tw, "%d\t%s\n", project.ID, project.Name)
	}
	return tw.Flush()
}
