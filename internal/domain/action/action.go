// Package action defines the contracts the conversion engine drives: mutating
// actions with prepare, finish and revert phases, read-only checks, and the
// ordered stages that group actions.
package action

import (
	"context"
	"fmt"
	"time"
)

// Mode selects which phase of every action a flow invokes.
type Mode string

const (
	// ModePrepare applies actions. It runs on the first boot, before the reboot.
	ModePrepare Mode = "prepare"
	// ModeFinish completes actions after the reboot.
	ModeFinish Mode = "finish"
	// ModeRevert undoes what a prepare pass did.
	ModeRevert Mode = "revert"
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	return string(m)
}

// IsValid reports whether m is one of the known modes.
func (m Mode) IsValid() bool {
	switch m {
	case ModePrepare, ModeFinish, ModeRevert:
		return true
	default:
		return false
	}
}

// Reversed reports whether stages are walked last-declared first in this mode.
// Finishing and undoing happen outermost-in, because later stages depend on
// state established by earlier ones.
func (m Mode) Reversed() bool {
	return m == ModeFinish || m == ModeRevert
}

// ParseMode parses a string into a Mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid mode: %q (valid: prepare, finish, revert)", s)
	}
	return mode, nil
}

// Action is a named unit of mutating work.
//
// Implementations are constructed fresh on every invocation of the program.
// Only Name and the last outcome survive a process restart, so Finish and
// Revert must not depend on fields set during Prepare.
type Action interface {
	// Name returns the persistence key. It must stay stable between releases;
	// renaming an action orphans its recorded outcome.
	Name() string

	// Description returns a human-readable summary.
	Description() string

	// IsRequired reports whether the action applies to this host.
	// It must be free of side effects.
	IsRequired(ctx context.Context) bool

	// Prepare applies the change.
	Prepare(ctx context.Context) error

	// Finish completes the change after Prepare succeeded, possibly in a new
	// process after a reboot.
	Finish(ctx context.Context) error

	// Revert undoes Prepare. It must tolerate a partially applied or never
	// applied Prepare.
	Revert(ctx context.Context) error

	// Estimate returns the expected duration of the phase run in mode.
	// Estimates only drive progress reporting.
	Estimate(mode Mode) time.Duration
}

// CheckAction is a read-only validation of the host.
type CheckAction interface {
	// Name identifies the check in logs and reports.
	Name() string

	// Description returns remediation text. After Check returns false it
	// carries the specifics of the failure.
	Description() string

	// Check evaluates the host. A non-nil error means the check could not be
	// evaluated at all, which is different from a failed check.
	Check(ctx context.Context) (bool, error)
}

// RebootPoint is implemented by the action that reboots the host at the end
// of a prepare pass. A flow contains at most one.
type RebootPoint interface {
	Action
	RequestsReboot() bool
}

// IsRebootPoint reports whether a requests a reboot.
func IsRebootPoint(a Action) bool {
	r, ok := a.(RebootPoint)
	return ok && r.RequestsReboot()
}

// Stage is a named, ordered group of actions.
type Stage struct {
	Name    string
	Actions []Action
}

// NewStage creates a stage from actions in the order they must run.
func NewStage(name string, actions ...Action) Stage {
	return Stage{Name: name, Actions: actions}
}

// Invoke runs the phase of a that corresponds to mode.
func Invoke(ctx context.Context, a Action, mode Mode) error {
	switch mode {
	case ModePrepare:
		return a.Prepare(ctx)
	case ModeFinish:
		return a.Finish(ctx)
	case ModeRevert:
		return a.Revert(ctx)
	default:
		return fmt.Errorf("invalid mode: %q", mode)
	}
}
