package tui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

// PromptDisabledError is returned when a prompt is needed but prompting was
// switched off with --no-input.
type PromptDisabledError struct {
	Prompt string
}

func (e *PromptDisabledError) Error() string {
	return fmt.Sprintf("input required but prompting is disabled: %s", e.Prompt)
}

// Interface guard for PromptDisabledError
var _ error = &PromptDisabledError{}

// Prompter asks the user questions. Interactive terminals get huh forms,
// everything else falls back to plain line input on In. NoInput turns every
// prompt into a PromptDisabledError.
type Prompter struct {
	NoInput bool

	// In and Out carry the plain fallback dialogue, os.Stdin/os.Stdout
	// when created through NewPrompter.
	In  io.Reader
	Out io.Writer

	// interactive selects huh forms over the plain fallback
	interactive bool

	// reader buffers In across prompts so no input is lost between them
	reader *bufio.Reader
}

// NewPrompter creates a prompter on the process terminal.
func NewPrompter(noInput bool) *Prompter {
	return &Prompter{
		NoInput:     noInput,
		In:          os.Stdin,
		Out:         os.Stdout,
		interactive: IsTerminal(os.Stdin) && IsTerminal(os.Stdout),
	}
}

// Input asks for one line of input. The preset is prefilled in the
// interactive form and returned when the fallback answer is empty.
func (p *Prompter) Input(prompt, preset string) (string, error) {
	if p.NoInput {
		return "", &PromptDisabledError{Prompt: prompt}
	}

	if p.interactive {
		value := preset
		input := huh.NewInput().Title(prompt).Value(&value)
		if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
			return "", fmt.Errorf("prompt '%s' failed: %w", prompt, err)
		}
		return value, nil
	}

	if preset != "" {
		fmt.Fprintf(p.Out, "%s [%s]: ", prompt, preset)
	} else {
		fmt.Fprintf(p.Out, "%s: ", prompt)
	}
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return preset, nil
	}
	return answer, nil
}

// Password asks for a secret without echoing it in the interactive form.
// The plain fallback reads the line as-is, it cannot suppress echo.
func (p *Prompter) Password(prompt string) (string, error) {
	if p.NoInput {
		return "", &PromptDisabledError{Prompt: prompt}
	}

	if p.interactive {
		var value string
		input := huh.NewInput().Title(prompt).EchoMode(huh.EchoModePassword).Value(&value)
		if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
			return "", fmt.Errorf("prompt '%s' failed: %w", prompt, err)
		}
		return value, nil
	}

	fmt.Fprintf(p.Out, "%s: ", prompt)
	return p.readLine()
}

// SelectFrom shows the choices and returns the user's selection line:
// a huh multi-select on interactive terminals, the numbered grid plus a
// line prompt otherwise. The returned line carries the chosen entries the
// way the user would have typed them.
func (p *Prompter) SelectFrom(prompt string, choices []Choice, preset string) (string, error) {
	if p.NoInput {
		return "", &PromptDisabledError{Prompt: prompt}
	}

	if p.interactive {
		preselected := presetTokens(preset)
		options := make([]huh.Option[string], len(choices))
		for i, choice := range choices {
			selected := preselected[choice.Text] || preselected[choice.Index]
			options[i] = huh.NewOption(choice.Text, choice.Text).Selected(selected)
		}

		var selection []string
		selector := huh.NewMultiSelect[string]().Title(prompt).Options(options...).Value(&selection)
		if err := huh.NewForm(huh.NewGroup(selector)).Run(); err != nil {
			return "", fmt.Errorf("prompt '%s' failed: %w", prompt, err)
		}
		return strings.Join(selection, ", "), nil
	}

	fmt.Fprint(p.Out, FormatChoices(choices, terminalWidth()))
	return p.Input(prompt, preset)
}

// SelectProjects asks which projects to process.
func (p *Prompter) SelectProjects(choices []Choice) (string, error) {
	return p.SelectFrom("Enter one or more projects", choices, "")
}

// SelectFields asks which additional repository columns to export.
func (p *Prompter) SelectFields(choices []Choice) (string, error) {
	return p.SelectFrom("Choose additional fields", choices, "")
}

// SelectFilters confirms the case filter selection.
func (p *Prompter) SelectFilters(choices []Choice, preset string) (string, error) {
	return p.SelectFrom("Choose filters to apply", choices, preset)
}

func (p *Prompter) readLine() (string, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// presetTokens splits a selection preset into a lookup set.
func presetTokens(preset string) map[string]bool {
	tokens := map[string]bool{}
	for _, token := range strings.FieldsFunc(preset, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}) {
		tokens[token] = true
	}
	return tokens
}
