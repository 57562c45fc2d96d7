// Package tui provides the terminal surface of the overview generator.
// It detects terminal capabilities and disables rich output when piping or
// redirecting, so the tool stays script-friendly:
//   - Progress output only appears when stderr is a TTY
//   - Colors are disabled when piping or when NO_COLOR is set
//   - Interactive prompts fall back to plain line input outside a TTY
//
// Environment variables:
//   - NO_COLOR or TESTMO_OVERVIEW_NO_COLOR: disable colors
//     (respects https://no-color.org/)
//   - TERM=dumb: disable colors
//   - TESTMO_OVERVIEW_QUIET: disable progress output
package tui

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var (
	colorGreen = lipgloss.ANSIColor(2)
	colorBlue  = lipgloss.ANSIColor(4)
)

// UI provides terminal output with automatic TTY detection.
type UI struct {
	// stdoutIsTTY indicates if stdout is connected to a terminal
	stdoutIsTTY bool
	// stderrIsTTY indicates if stderr is connected to a terminal
	stderrIsTTY bool
	// enabled indicates if progress output should be shown
	enabled bool
	// colorEnabled indicates if colors should be used
	colorEnabled bool
	// currentSpinner tracks the current spinner state
	currentSpinner *spinnerState
	// markdownRenderer renders the per-project summary
	markdownRenderer *glamour.TermRenderer
}

type spinnerState struct {
	started time.Time
	ticker  clockwork.Ticker
	message string
	done    chan struct{}
}

var (
	defaultUI    *UI
	spinnerClock clockwork.Clock = clockwork.NewRealClock()

	// stderrRenderer is a renderer that uses stderr for TTY detection.
	// This allows colors to work on stderr even when stdout is piped.
	stderrRenderer = lipgloss.NewRenderer(os.Stderr)

	successStyle = lipgloss.NewStyle().Renderer(stderrRenderer).Foreground(colorGreen).Bold(true)
	spinnerStyle = lipgloss.NewStyle().Renderer(stderrRenderer).Foreground(colorBlue)
)

func init() {
	defaultUI = New()
}

// New creates a UI instance with automatic TTY detection.
func New() *UI {
	stdoutIsTTY := IsTerminal(os.Stdout)
	stderrIsTTY := IsTerminal(os.Stderr)
	stdinIsTTY := IsTerminal(os.Stdin)

	// Progress goes to stderr, so stderr decides. Piped stdin means
	// script usage, which also suppresses progress.
	enabled := stderrIsTTY && stdinIsTTY && !isDisabled()
	colorEnabled := stderrIsTTY && !isColorDisabled()

	ui := &UI{
		stdoutIsTTY:  stdoutIsTTY,
		stderrIsTTY:  stderrIsTTY,
		enabled:      enabled,
		colorEnabled: colorEnabled,
	}

	if colorEnabled && stdoutIsTTY {
		width := 80
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}

		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			ui.markdownRenderer = renderer
		}
	}

	return ui
}

// IsTerminal checks if a file is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// isDisabled checks if progress output is explicitly disabled.
func isDisabled() bool {
	if val := os.Getenv("TESTMO_OVERVIEW_QUIET"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
		return true // any other non-empty value means disabled
	}
	return false
}

// isColorDisabled checks if colors are explicitly disabled.
func isColorDisabled() bool {
	// standard NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	if os.Getenv("TESTMO_OVERVIEW_NO_COLOR") != "" {
		return true
	}
	if os.Getenv("TERM") == "dumb" {
		return true
	}
	return false
}

// Enabled returns whether progress output should be shown.
func (u *UI) Enabled() bool {
	return u.enabled
}

// ColorEnabled returns whether colors should be used.
func (u *UI) ColorEnabled() bool {
	return u.colorEnabled
}

// StdoutIsTTY returns whether stdout is a terminal.
func (u *UI) StdoutIsTTY() bool {
	return u.stdoutIsTTY
}

// StderrIsTTY returns whether stderr is a terminal.
func (u *UI) StderrIsTTY() bool {
	return u.stderrIsTTY
}

// Progress shows a progress message with an animated spinner on stderr.
// Calling it again with the same message only advances the spinner frame.
func (u *UI) Progress(message string) {
	if !u.enabled {
		return
	}

	if u.currentSpinner != nil && u.currentSpinner.message == message {
		u.printSpinnerFrame(u.currentSpinner)
		return
	}

	if u.currentSpinner != nil {
		u.stopSpinner()
	}

	u.currentSpinner = &spinnerState{
		started: time.Now(),
		message: message,
		done:    make(chan struct{}),
		ticker:  spinnerClock.NewTicker(100 * time.Millisecond),
	}

	// capture the state in the closure, u.currentSpinner may be replaced
	state := u.currentSpinner
	u.printSpinnerFrame(state)

	go func() {
		for {
			select {
			case <-state.ticker.Chan():
				u.printSpinnerFrame(state)
			case <-state.done:
				return
			}
		}
	}()
}

func (u *UI) printSpinnerFrame(state *spinnerState) {
	elapsed := time.Since(state.started)
	frame := int(elapsed/spinner.Line.FPS) % len(spinner.Line.Frames)
	spinnerChar := spinner.Line.Frames[frame]

	if !u.colorEnabled {
		fmt.Fprintf(os.Stderr, "\r... %s", state.message)
		return
	}
	fmt.Fprintf(os.Stderr, "\r%s %s", spinnerStyle.Render(spinnerChar), state.message)
}

func (u *UI) stopSpinner() {
	if u.currentSpinner.ticker != nil {
		u.currentSpinner.ticker.Stop()
	}
	if u.currentSpinner.done != nil {
		close(u.currentSpinner.done)
	}
	// give the animation goroutine time to stop printing
	time.Sleep(10 * time.Millisecond)
	fmt.Fprint(os.Stderr, "\r", ansi.EraseLine(2))
	u.currentSpinner = nil
}

// ProgressSuccess stops the spinner and shows a checkmarked success message.
// An empty message keeps the spinner's message.
func (u *UI) ProgressSuccess(message string) {
	if !u.enabled {
		return
	}
	if u.currentSpinner == nil {
		zap.L().Error("ProgressSuccess called without a spinner")
		return
	}

	if message == "" {
		message = u.currentSpinner.message
	}
	u.stopSpinner()

	if message == "" {
		return
	}
	symbol := "✓"
	if u.colorEnabled {
		fmt.Fprintf(os.Stderr, "%s %s\n", successStyle.Render(symbol), message)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", symbol, message)
}

// Info prints an informational message to stderr. It writes even when
// stderr is not a TTY, only TESTMO_OVERVIEW_QUIET silences it.
func (u *UI) Info(format string, args ...any) {
	if isDisabled() {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

// RenderMarkdown renders markdown content for the terminal. Outside a TTY
// or with colors disabled the content passes through unchanged.
func (u *UI) RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		return "", fmt.Errorf("width must be greater than 0")
	}

	if !u.stdoutIsTTY || !u.colorEnabled {
		return content, nil
	}

	renderer := u.markdownRenderer
	if renderer == nil {
		var err error
		renderer, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content, err
		}
	}

	return renderer.Render(content)
}

// Summary prints a markdown block to stdout, rendered when rich output is
// available and verbatim otherwise.
func (u *UI) Summary(markdown string) {
	rendered, err := u.RenderMarkdown(markdown, terminalWidth())
	if err != nil {
		rendered = markdown
	}
	fmt.Fprint(os.Stdout, rendered)
}

// Default returns the default UI instance.
func Default() *UI {
	return defaultUI
}

// Reset resets the default UI instance (useful for testing).
func Reset() {
	defaultUI = New()
}

// Convenience functions using the default UI instance.

// Info prints an informational message using the default UI.
func Info(format string, args ...any) {
	defaultUI.Info(format, args...)
}

// Progress prints a progress message using the default UI.
func Progress(message string) {
	defaultUI.Progress(message)
}

// ProgressSuccess stops the spinner and shows success using the default UI.
func ProgressSuccess(message string) {
	defaultUI.ProgressSuccess(message)
}

// RenderMarkdown renders markdown content using the default UI.
func RenderMarkdown(content string, width int) (string, error) {
	return defaultUI.RenderMarkdown(content, width)
}

// Summary prints a markdown block using the default UI.
func Summary(markdown string) {
	defaultUI.Summary(markdown)
}
