// Package progress reports the advance of a running flow against the summed
// action estimates. It only observes: nothing here mutates the flow.
package progress

import (
	"time"
)

// Source is the read-only view of a running flow.
type Source interface {
	TotalEstimate() time.Duration
	CurrentStage() string
	CurrentAction() string
}

// Writer is a sink for progress lines.
type Writer interface {
	Write(line string) error
	Close() error
}

// Snapshot is the progress at one instant.
type Snapshot struct {
	Elapsed time.Duration
	Total   time.Duration
	Stage   string
	Action  string
}

// Percent returns elapsed over total, clamped to [0, 100]. It is -1 when no
// estimate is known.
func (s Snapshot) Percent() int {
	if s.Total <= 0 {
		return -1
	}
	p := int(s.Elapsed * 100 / s.Total)
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// Overtime reports whether the pass is running longer than estimated.
func (s Snapshot) Overtime() bool {
	return s.Total > 0 && s.Elapsed > s.Total
}
