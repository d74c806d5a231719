package flow

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Validate and Run.
var (
	ErrNotValidated    = errors.New("flow must be validated before it runs")
	ErrAlreadyRun      = errors.New("flow has already run")
	ErrEmptyStageName  = errors.New("stage name is empty")
	ErrDuplicateStage  = errors.New("duplicate stage name")
	ErrNilAction       = errors.New("nil action")
	ErrEmptyActionName = errors.New("action name is empty")
	ErrDuplicateAction = errors.New("duplicate action name")
	ErrRebootPoint     = errors.New("reboot point must be the last action of the flow")
)

// EnvironmentError reports a failure of the machinery around the actions:
// the state store could not be written, or a check could not be evaluated.
// It is fatal to the current pass and distinct from an ordinary failure.
type EnvironmentError struct {
	Op  string
	Err error
}

// Error returns the failed operation with its cause.
func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *EnvironmentError) Unwrap() error {
	return e.Err
}

// IsEnvironmentError reports whether err is or wraps an EnvironmentError.
func IsEnvironmentError(err error) bool {
	var envErr *EnvironmentError
	return errors.As(err, &envErr)
}
