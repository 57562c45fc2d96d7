package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qa-tooling/testmo-overview/internal/config"
	"github.com/qa-tooling/testmo-overview/internal/tui"
)

// newSetupCmd creates the setup command
func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Store the Testmo credentials interactively",
		Long: `Ask for the Testmo instance URL, the GUI login and the API token and write
them to the per-user config file. The file is restricted to its owner because
it carries the password and the token.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.Context(), tui.NewPrompter(false))
		},
	}
}

// runSetup asks for the credentials and writes the config file. An empty
// answer aborts without writing anything.
func runSetup(ctx context.Context, prompter *tui.Prompter) error {
	fmt.Println("Please provide your Testmo credentials:")

	cfg := &config.Config{
		OutputDir: config.DefaultOutputDir,
		Filter:    config.DefaultFilter,
		Runs:      config.DefaultRuns,
		Timeout:   config.DefaultTimeout,
		Headless:  true,
	}

	guiURL, err := askRequired(prompter.Input, "Your Testmo URL (e.g. https://company.testmo.net)")
	if err != nil {
		return err
	}
	cfg.GUIURL = guiURL
	cfg.APIURL = config.DeriveAPIURL(guiURL)

	if cfg.User, err = askRequired(prompter.Input, "Your Testmo Username"); err != nil {
		return err
	}
	if cfg.Password, err = askRequiredSecret(prompter, "Your Testmo Password"); err != nil {
		return err
	}
	if cfg.Token, err = askRequiredSecret(prompter, "Your Testmo API Token"); err != nil {
		return err
	}

	path, err := config.GetUserConfigPath()
	if err != nil {
		return err
	}
	if err := config.SaveCredentials(ctx, path, cfg); err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s\n", path)
	return nil
}

func askRequired(ask func(prompt, preset string) (string, error), prompt string) (string, error) {
	answer, err := ask(prompt, "")
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", fmt.Errorf("configuration aborted")
	}
	return answer, nil
}

func askRequiredSecret(prompter *tui.Prompter, prompt string) (string, error) {
	answer, err := prompter.Password(prompt)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", fmt.Errorf("configuration aborted")
	}
	return answer, nil
}
