package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qa-tooling/testmo-overview/internal/config"
)

// newConfigCmd creates the config command with its subcommands
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change the stored configuration",
		Long: `Read and write configuration values. Values come from environment variables
(TESTMO_OVERVIEW_ prefix), the project config file, the user config file or
the built-in defaults; get and list show which source won.

Credential keys (password, token) are managed by 'testmo-overview setup' and
are shown redacted.`,
	}

	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigListCmd())

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print one configuration value and its source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0], os.Stdout)
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value in the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SetConfigValue(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Set %s = %s\n", args[0], args[1])
			return nil
		},
	}
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values with their sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(os.Stdout)
		},
	}
}

func runConfigGet(key string, w io.Writer) error {
	value, err := config.GetConfigValue(key)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s (source: %s)\n", displayValue(key, value.Value), value.Source)
	return nil
}

func runConfigList(w io.Writer) error {
	values, err := config.ListConfig()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
	for _, key := range keys {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", key, displayValue(key, values[key].Value), values[key].Source)
	}
	return tw.Flush()
}

// displayValue renders a config value for output, redacting credentials.
func displayValue(key string, value any) string {
	if !config.IsSecretKey(key) {
		return fmt.Sprintf("%v", value)
	}
	if fmt.Sprintf("%v", value) == "" {
		return "(not set)"
	}
	return "(set)"
}
