// Package app wires the conversion engine to the host: it builds the stages
// and checks, holds the run lock, and runs a flow alongside its progress
// reporter.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/centos2alma/internal/adapters/command"
	"github.com/felixgeelhaar/centos2alma/internal/adapters/filesystem"
	"github.com/felixgeelhaar/centos2alma/internal/adapters/status"
	"github.com/felixgeelhaar/centos2alma/internal/domain/action"
	"github.com/felixgeelhaar/centos2alma/internal/domain/config"
	"github.com/felixgeelhaar/centos2alma/internal/domain/flow"
	"github.com/felixgeelhaar/centos2alma/internal/domain/progress"
	"github.com/felixgeelhaar/centos2alma/internal/domain/state"
	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

// CheckFailedError is returned by Convert when pre-flight checks fail.
type CheckFailedError struct {
	Report flow.CheckReport
}

// Error lists every failed check.
func (e *CheckFailedError) Error() string {
	names := make([]string, len(e.Report.Failures))
	for i, f := range e.Report.Failures {
		names[i] = f.Name
	}
	return fmt.Sprintf("%d of %d checks failed: %s", len(e.Report.Failures), e.Report.Total, strings.Join(names, ", "))
}

// PassError reports the stage a failed pass stopped in.
type PassError struct {
	Mode  action.Mode
	Stage string
	Err   error
}

// Error returns the failed stage with the reason.
func (e *PassError) Error() string {
	return fmt.Sprintf("%s failed in stage %q. The reason: %v", e.Mode, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *PassError) Unwrap() error {
	return e.Err
}

// Option configures a Converter.
type Option func(*Converter)

// WithRunner sets the command runner used by the actions.
func WithRunner(runner ports.CommandRunner) Option {
	return func(c *Converter) {
		c.runner = runner
	}
}

// WithFileSystem sets the file system used by the actions and writers.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(c *Converter) {
		c.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(logger ports.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithStages replaces the built-in stages.
func WithStages(stages []action.Stage) Option {
	return func(c *Converter) {
		c.stages = stages
	}
}

// WithChecks replaces the built-in checks.
func WithChecks(checks []action.CheckAction) Option {
	return func(c *Converter) {
		c.checks = checks
	}
}

// WithConsoleProgress echoes progress lines to the output writer.
func WithConsoleProgress(enabled bool) Option {
	return func(c *Converter) {
		c.console = enabled
	}
}

// Converter runs conversion passes.
type Converter struct {
	cfg     *config.Config
	out     io.Writer
	runner  ports.CommandRunner
	fs      ports.FileSystem
	logger  ports.Logger
	stages  []action.Stage
	checks  []action.CheckAction
	console bool
	runID   string
}

// New creates a Converter. Stages and checks not supplied through options
// are built from cfg.
func New(cfg *config.Config, out io.Writer, opts ...Option) *Converter {
	c := &Converter{
		cfg:    cfg,
		out:    out,
		runID:  uuid.NewString(),
		logger: ports.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fs == nil {
		c.fs = filesystem.NewRealFileSystem()
	}
	if c.runner == nil {
		c.runner = command.NewRealRunner(command.WithLogger(c.logger))
	}
	c.logger = c.logger.With(ports.F("run_id", c.runID))
	if c.stages == nil {
		c.stages = BuildStages(cfg, c.runner, c.fs, c.logger)
	}
	if c.checks == nil {
		c.checks = BuildChecks(cfg, c.fs)
	}
	return c
}

// RunID identifies this invocation in the logs.
func (c *Converter) RunID() string {
	return c.runID
}

// Stages returns the stages in declared order.
func (c *Converter) Stages() []action.Stage {
	return c.stages
}

// Check runs every pre-flight check.
func (c *Converter) Check(ctx context.Context) (flow.CheckReport, error) {
	checks := flow.NewCheckFlow(c.checks, flow.WithLogger(c.logger))
	if err := checks.Validate(); err != nil {
		return flow.CheckReport{}, err
	}
	return checks.Run(ctx)
}

// Convert runs the checks and, when they all pass, the prepare pass. The
// last prepare action schedules the reboot.
func (c *Converter) Convert(ctx context.Context) error {
	report, err := c.Check(ctx)
	if err != nil {
		return err
	}
	if !report.Passed() {
		return &CheckFailedError{Report: report}
	}
	return c.run(ctx, action.ModePrepare)
}

// Finish runs the finish pass. On success the state file is removed.
func (c *Converter) Finish(ctx context.Context) error {
	return c.run(ctx, action.ModeFinish)
}

// Revert runs the revert pass.
func (c *Converter) Revert(ctx context.Context) error {
	return c.run(ctx, action.ModeRevert)
}

// run executes one pass: the flow on one goroutine and the reporter on
// another, both joined before returning.
func (c *Converter) run(ctx context.Context, mode action.Mode) (err error) {
	logger := c.logger.With(ports.F("mode", mode.String()))

	lock, err := state.AcquireLock(c.cfg.LockPath)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, lock.Release())
	}()

	store, err := state.Open(c.cfg.StatePath)
	if err != nil {
		return &flow.EnvironmentError{Op: "open state", Err: err}
	}

	var (
		failedStage string
		mu          sync.Mutex
	)
	f, err := flow.New(mode, c.stages, store,
		flow.WithLogger(logger),
		flow.WithObserver(func(e flow.Event) {
			if e.Kind == flow.KindStageFailed {
				mu.Lock()
				failedStage = e.Stage
				mu.Unlock()
			}
		}))
	if err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	writers := c.writers()
	defer func() {
		for _, w := range writers {
			err = errors.Join(err, w.Close())
		}
	}()

	reporter := progress.NewReporter(f, writers,
		progress.WithInterval(c.cfg.ReportInterval.Duration),
		progress.WithLogger(logger))

	var (
		wg     sync.WaitGroup
		runErr error
	)
	done := make(chan struct{})
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer close(done)
		runErr = f.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		reporter.Run(ctx, done)
	}()
	wg.Wait()

	if runErr != nil {
		mu.Lock()
		defer mu.Unlock()
		return &PassError{Mode: mode, Stage: failedStage, Err: runErr}
	}
	logger.Info(ctx, "pass completed")
	return nil
}

func (c *Converter) writers() []progress.Writer {
	writers := []progress.Writer{status.NewFileWriter(c.cfg.StatusPath, c.fs)}
	if c.console {
		writers = append(writers, status.NewConsoleWriter(c.out))
	}
	return writers
}

// PrintCheckReport writes the remediation text of every failed check.
func (c *Converter) PrintCheckReport(report flow.CheckReport) {
	if report.Passed() {
		c.printf("All %d checks passed.\n", report.Total)
		return
	}

	c.printf("%d of %d checks failed:\n", len(report.Failures), report.Total)
	for _, failure := range report.Failures {
		c.printf("  ✗ %s: %s\n", failure.Name, failure.Description)
	}
}

// PrintStages writes the stages and their actions in prepare order.
func (c *Converter) PrintStages() {
	for _, stage := range c.stages {
		c.printf("%s\n", stage.Name)
		for _, a := range stage.Actions {
			c.printf("  - %s: %s\n", a.Name(), a.Description())
		}
	}
}

// printf is a helper that writes to the output writer, ignoring errors.
func (c *Converter) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}
