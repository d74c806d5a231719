package action

import (
	"fmt"
)

// Error wraps a failure raised by an action phase with the action name.
type Error struct {
	Name string
	Mode Mode
	Err  error
}

// Error returns the failure with the action name and phase attached.
func (e *Error) Error() string {
	return fmt.Sprintf("action %q failed during %s: %v", e.Name, e.Mode, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// PanicError reports a panic raised inside an action phase.
type PanicError struct {
	Value interface{}
}

// Error describes the recovered panic value.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
