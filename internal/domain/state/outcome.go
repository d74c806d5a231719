// Package state persists the outcome of every conversion action so a later
// process, typically the one started after the reboot, knows what the
// previous passes actually did.
package state

import (
	"fmt"
)

// Outcome is the durable result of the last execution of an action.
type Outcome string

const (
	// OutcomeNotRecorded is the implicit outcome of an action absent from the store.
	OutcomeNotRecorded Outcome = ""
	// OutcomeSuccess means the last invoked phase returned without error.
	OutcomeSuccess Outcome = "success"
	// OutcomeSkipped means the action did not apply and no phase was invoked.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the last invoked phase returned an error.
	OutcomeFailed Outcome = "failed"
)

// legacySkipped is the spelling older releases wrote for a skipped action.
const legacySkipped = "skip"

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	if o == OutcomeNotRecorded {
		return "not-recorded"
	}
	return string(o)
}

// Committed reports whether a finish or revert pass may act on the action.
// Skipped and failed actions never committed anything, so there is nothing
// to complete or undo.
func (o Outcome) Committed() bool {
	return o != OutcomeSkipped && o != OutcomeFailed
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	switch o {
	case OutcomeSuccess, OutcomeSkipped, OutcomeFailed:
		return []byte(o), nil
	default:
		return nil, fmt.Errorf("cannot persist outcome %q", o.String())
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch s := string(text); s {
	case string(OutcomeSuccess), string(OutcomeSkipped), string(OutcomeFailed):
		*o = Outcome(s)
	case legacySkipped:
		*o = OutcomeSkipped
	default:
		return fmt.Errorf("unknown action state %q", s)
	}
	return nil
}
