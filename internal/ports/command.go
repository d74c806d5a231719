// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"fmt"
	"strings"
)

// CommandResult represents the result of executing a shell command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// CommandCall records a command invocation.
type CommandCall struct {
	Command string
	Args    []string
}

// String returns the command line as it would be typed in a shell.
func (c CommandCall) String() string {
	if len(c.Args) == 0 {
		return c.Command
	}
	return c.Command + " " + strings.Join(c.Args, " ")
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(ctx context.Context, command string, args ...string) (CommandResult, error)
}

// CommandError is returned by RunChecked when a command exits non-zero.
type CommandError struct {
	Call   CommandCall
	Result CommandResult
}

// Error returns the failing command line, its exit code and stderr.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q exited with code %d", e.Call.String(), e.Result.ExitCode)
	if stderr := strings.TrimSpace(e.Result.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// RunChecked runs a command and turns a non-zero exit code into a *CommandError.
func RunChecked(ctx context.Context, runner CommandRunner, command string, args ...string) (CommandResult, error) {
	result, err := runner.Run(ctx, command, args...)
	if err != nil {
		return result, fmt.Errorf("failed to run %s: %w", command, err)
	}
	if !result.Success() {
		return result, &CommandError{
			Call:   CommandCall{Command: command, Args: args},
			Result: result,
		}
	}
	return result, nil
}
