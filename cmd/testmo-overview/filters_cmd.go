package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qa-tooling/testmo-overview/internal/repository"
)

// newFiltersCmd creates the filters command
func newFiltersCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "filters",
		Short: "List the available case filters",
		Long: `List the case filters that --filter accepts. Cases in deleted folders are
always excluded, independent of the selected filters.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilters(jsonOutput, os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runFilters(jsonOutput bool, w io.Writer) error {
	filters := repository.AllFilters()

	if jsonOutput {
		type filterInfo struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		infos := make([]filterInfo, len(filters))
		for i, filter := range filters {
			infos[i] = filterInfo{Name: filter.Name(), Description: filter.Description()}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(infos)
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDESCRIPTION")
	for _, filter := range filters {
		fmt.Fprintf(tw, "%s\t%s\n", filter.Name(), filter.Description())
	}
	return tw.Flush()
}
