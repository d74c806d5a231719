package action

import (
	"context"
	"time"
)

// Base carries the name, description and estimates shared by concrete
// actions. Embedding it provides no-op phases, so an action only implements
// the phases it needs.
type Base struct {
	name        string
	description string
	estimates   map[Mode]time.Duration
}

// NewBase creates a Base with the given name and description.
func NewBase(name, description string) Base {
	return Base{name: name, description: description}
}

// WithEstimate returns a copy of b with the estimate for mode set.
func (b Base) WithEstimate(mode Mode, d time.Duration) Base {
	estimates := make(map[Mode]time.Duration, len(b.estimates)+1)
	for k, v := range b.estimates {
		estimates[k] = v
	}
	estimates[mode] = d
	b.estimates = estimates
	return b
}

// Name returns the action name.
func (b *Base) Name() string {
	return b.name
}

// Description returns the action description.
func (b *Base) Description() string {
	return b.description
}

// SetDescription replaces the description, typically with failure details.
func (b *Base) SetDescription(description string) {
	b.description = description
}

// IsRequired returns true.
func (b *Base) IsRequired(_ context.Context) bool {
	return true
}

// Prepare does nothing.
func (b *Base) Prepare(_ context.Context) error {
	return nil
}

// Finish does nothing.
func (b *Base) Finish(_ context.Context) error {
	return nil
}

// Revert does nothing.
func (b *Base) Revert(_ context.Context) error {
	return nil
}

// Estimate returns the configured estimate for mode, or zero.
func (b *Base) Estimate(mode Mode) time.Duration {
	return b.estimates[mode]
}
