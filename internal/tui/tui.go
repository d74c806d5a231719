// Package tui provides terminal user interface entry points for centos2alma.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

// MonitorOptions configures the monitor TUI.
type MonitorOptions struct {
	// Interval between status file reads.
	Interval time.Duration
}

// NewMonitorOptions creates default monitor options.
func NewMonitorOptions() MonitorOptions {
	return MonitorOptions{
		Interval: time.Second,
	}
}

// WithInterval sets the polling interval.
func (o MonitorOptions) WithInterval(interval time.Duration) MonitorOptions {
	o.Interval = interval
	return o
}

// MonitorResult holds the result of a monitor session.
type MonitorResult struct {
	// LastLine is the last progress line seen.
	LastLine string
	// Finished reports whether the status file disappeared while watching.
	Finished bool
}

// RunMonitor follows the status file at path until the conversion stops
// writing it or the user quits.
func RunMonitor(ctx context.Context, fs ports.FileSystem, path string, opts MonitorOptions) (*MonitorResult, error) {
	if opts.Interval <= 0 {
		opts.Interval = NewMonitorOptions().Interval
	}

	model := newMonitorModel(fs, path, opts.Interval)

	p := tea.NewProgram(model, tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("monitor failed: %w", err)
	}

	m, ok := finalModel.(monitorModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	if m.err != nil {
		return nil, fmt.Errorf("failed to read status: %w", m.err)
	}

	return &MonitorResult{
		LastLine: m.line,
		Finished: m.finished,
	}, nil
}
