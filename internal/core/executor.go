// Package core implements the core functionality for testmo-overview that is shared across all components.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// CommandRunner is an interface for running commands, allowing for testing with mocks
type CommandRunner interface {
	CommandContext(ctx context.Context, name string, arg ...string) Command
}

// Command is an interface for exec.Cmd, allowing for testing with mocks
type Command interface {
	StdinPipe() (io.WriteCloser, error)
	StdoutPipe() (io.ReadCloser, error)
	StderrPipe() (io.ReadCloser, error)
	SetStdin(io.Reader)
	Start() error
	Wait() error
}

// execCommand wraps exec.Cmd to implement Command interface
type execCommand struct {
	*exec.Cmd
}

func (e *execCommand) SetStdin(r io.Reader) {
	e.Stdin = r
}

// Explicitly forward methods from *exec.Cmd to satisfy the Command interface
// (even though they're already available through embedding, this makes it explicit for the linter)
func (e *execCommand) Start() error {
	return e.Cmd.Start()
}

func (e *execCommand) Wait() error {
	return e.Cmd.Wait()
}

func (e *execCommand) StdinPipe() (io.WriteCloser, error) {
	return e.Cmd.StdinPipe()
}

func (e *execCommand) StdoutPipe() (io.ReadCloser, error) {
	return e.Cmd.StdoutPipe()
}

func (e *execCommand) StderrPipe() (io.ReadCloser, error) {
	return e.Cmd.StderrPipe()
}

// Interface guard for execCommand
var _ Command = &execCommand{}

// execCommandRunner wraps exec.CommandContext to implement CommandRunner
type execCommandRunner struct{}

func (e *execCommandRunner) CommandContext(ctx context.Context, name string, arg ...string) Command {
	return &execCommand{Cmd: exec.CommandContext(ctx, name, arg...)}
}

// Interface guard for execCommandRunner
var _ CommandRunner = &execCommandRunner{}

// defaultCommandRunner is the CommandRunner used by Run when none is injected
var defaultCommandRunner CommandRunner = &execCommandRunner{}

// DefaultCommandRunner returns the default CommandRunner (exported for testing)
func DefaultCommandRunner() CommandRunner {
	return defaultCommandRunner
}

// SetCommandRunner sets the CommandRunner implementation (used for testing)
func SetCommandRunner(runner CommandRunner) {
	defaultCommandRunner = runner
}

// RunResult represents the outcome of a command run
type RunResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// MockCommandRunner is a mock implementation of CommandRunner for testing.
// It records every command line and serves canned output. It can be used
// across packages to test code that shells out through the default runner.
type MockCommandRunner struct {
	Calls      [][]string
	Stdout     string
	Stderr     string
	StartErr   error
	WaitErr    error
	OutputFunc func(name string, arg ...string) (stdout, stderr string, startErr, waitErr error)
}

func (m *MockCommandRunner) CommandContext(ctx context.Context, name string, arg ...string) Command {
	argv := append([]string{name}, arg...)
	m.Calls = append(m.Calls, argv)

	stdout, stderr, startErr, waitErr := m.Stdout, m.Stderr, m.StartErr, m.WaitErr
	if m.OutputFunc != nil {
		stdout, stderr, startErr, waitErr = m.OutputFunc(name, arg...)
	}

	return &mockCommand{stdout: stdout, stderr: stderr, startErr: startErr, waitErr: waitErr}
}

// Interface guard
var _ CommandRunner = &MockCommandRunner{}

type mockCommand struct {
	stdout   string
	stderr   string
	startErr error
	waitErr  error
	stdin    io.Reader
}

func (m *mockCommand) StdinPipe() (io.WriteCloser, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *mockCommand) StdoutPipe() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(m.stdout)), nil
}

func (m *mockCommand) StderrPipe() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(m.stderr)), nil
}

func (m *mockCommand) SetStdin(r io.Reader) {
	m.stdin = r
}

func (m *mockCommand) Start() error {
	return m.startErr
}

func (m *mockCommand) Wait() error {
	return m.waitErr
}

// Interface guard
var _ Command = &mockCommand{}

// Run runs a command to completion through the default CommandRunner and
// captures its output. A non-zero exit status is reported through
// RunResult.ExitCode rather than as an error; errors are reserved for
// failures to start or wire up the command.
func Run(ctx context.Context, name string, args ...string) (*RunResult, error) {
	cmd := defaultCommandRunner.CommandContext(ctx, name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start command: %w", err)
	}

	var stdoutBuf, stderrBuf strings.Builder
	done := make(chan error, 2)

	go func() {
		_, copyErr := io.Copy(&stdoutBuf, stdout)
		done <- copyErr
	}()

	go func() {
		_, copyErr := io.Copy(&stderrBuf, stderr)
		done <- copyErr
	}()

	// Wait for output reading to complete
	<-done
	<-done

	err = cmd.Wait()

	result := &RunResult{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		ExitCode: 0,
	}

	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			result.ExitCode = exitError.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}
