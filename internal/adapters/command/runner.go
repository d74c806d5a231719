// Package command provides command execution adapters.
package command

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

// RealRunner executes actual shell commands.
// Commands run with a C locale so package manager output stays parseable.
type RealRunner struct {
	logger ports.Logger
	env    []string
}

// RunnerOption configures a RealRunner.
type RunnerOption func(*RealRunner)

// WithLogger logs every command line at debug level and failures at warn level.
func WithLogger(logger ports.Logger) RunnerOption {
	return func(r *RealRunner) {
		r.logger = logger
	}
}

// WithEnv appends KEY=VALUE pairs to the command environment.
func WithEnv(env ...string) RunnerOption {
	return func(r *RealRunner) {
		r.env = append(r.env, env...)
	}
}

// NewRealRunner creates a new RealRunner.
func NewRealRunner(opts ...RunnerOption) *RealRunner {
	r := &RealRunner{env: []string{"LC_ALL=C"}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a command and returns the result.
// A non-zero exit code is reported in the result, not as an error.
func (r *RealRunner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Env = append(os.Environ(), r.env...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	call := ports.CommandCall{Command: command, Args: args}
	if r.logger != nil {
		r.logger.Debug(ctx, "running command", ports.F("cmd", call.String()))
	}

	err := cmd.Run()

	result := ports.CommandResult{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			if r.logger != nil {
				r.logger.Warn(ctx, "command exited with non-zero code",
					ports.F("cmd", call.String()),
					ports.F("exit_code", result.ExitCode))
			}
			return result, nil
		}
		return result, err
	}

	return result, nil
}

var _ ports.CommandRunner = (*RealRunner)(nil)
