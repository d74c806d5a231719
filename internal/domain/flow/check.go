package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/centos2alma/internal/domain/action"
	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

// CheckFailure is a check that returned false, with its remediation text.
type CheckFailure struct {
	Name        string
	Description string
}

// CheckReport collects every failed check of a pass.
type CheckReport struct {
	Total    int
	Failures []CheckFailure
}

// Passed reports whether no check failed.
func (r CheckReport) Passed() bool {
	return len(r.Failures) == 0
}

// CheckFlow evaluates every check and reports all failures together.
type CheckFlow struct {
	checks    []action.CheckAction
	logger    ports.Logger
	validated bool
}

// NewCheckFlow creates a check flow. Only WithLogger applies.
func NewCheckFlow(checks []action.CheckAction, opts ...Option) *CheckFlow {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = ports.NewNopLogger()
	}
	return &CheckFlow{checks: checks, logger: o.logger}
}

// Validate checks that every check is non-nil with a unique non-empty name.
func (c *CheckFlow) Validate() error {
	seen := make(map[string]struct{}, len(c.checks))
	var errs []error
	for i, check := range c.checks {
		if check == nil {
			errs = append(errs, fmt.Errorf("%w at position %d", ErrNilAction, i))
			continue
		}
		name := check.Name()
		if name == "" {
			errs = append(errs, fmt.Errorf("%w at position %d", ErrEmptyActionName, i))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateAction, name))
			continue
		}
		seen[name] = struct{}{}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid checks: %w", errors.Join(errs...))
	}
	c.validated = true
	return nil
}

// Run evaluates every check, including after failures. A check that cannot
// be evaluated aborts the pass with an EnvironmentError.
func (c *CheckFlow) Run(ctx context.Context) (CheckReport, error) {
	if !c.validated {
		return CheckReport{}, ErrNotValidated
	}

	report := CheckReport{Total: len(c.checks)}
	for _, check := range c.checks {
		name := check.Name()
		ok, err := evaluate(ctx, check)
		if err != nil {
			c.logger.Error(ctx, "check could not be evaluated", ports.F("check", name), ports.Err(err))
			return report, &EnvironmentError{Op: fmt.Sprintf("evaluate check %q", name), Err: err}
		}
		if ok {
			c.logger.Debug(ctx, "check passed", ports.F("check", name))
			continue
		}

		description := check.Description()
		if description == "" {
			description = fmt.Sprintf("check %q failed", name)
		}
		c.logger.Warn(ctx, "check failed", ports.F("check", name), ports.F("description", description))
		report.Failures = append(report.Failures, CheckFailure{Name: name, Description: description})
	}

	return report, nil
}

func evaluate(ctx context.Context, check action.CheckAction) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &action.PanicError{Value: r}
		}
	}()
	return check.Check(ctx)
}
