package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/centos2alma/internal/adapters/status"
	"github.com/felixgeelhaar/centos2alma/internal/ports"
	"github.com/felixgeelhaar/centos2alma/internal/tui/ui"
)

// StatusMsg carries the result of one status file read.
type StatusMsg struct {
	Line string
	Err  error
}

// monitorModel is the Bubble Tea model that follows the status file of a
// running conversion.
type monitorModel struct {
	fs       ports.FileSystem
	path     string
	interval time.Duration
	spinner  spinner.Model
	styles   ui.Styles
	keys     ui.KeyMap
	width    int
	line     string
	err      error
	finished bool
	stopped  bool
}

func newMonitorModel(fs ports.FileSystem, path string, interval time.Duration) monitorModel {
	styles := ui.DefaultStyles()
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	return monitorModel{
		fs:       fs,
		path:     path,
		interval: interval,
		spinner:  s,
		styles:   styles,
		keys:     ui.DefaultKeyMap(),
		width:    80,
	}
}

// Init reads the status file right away and starts the spinner.
func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.read)
}

func (m monitorModel) read() tea.Msg {
	line, err := status.ReadStatus(m.fs, m.path)
	return StatusMsg{Line: line, Err: err}
}

func (m monitorModel) poll() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return m.read()
	})
}

// Update handles messages.
func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.styles = m.styles.WithWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.stopped = true
			return m, tea.Quit
		}
		return m, nil

	case StatusMsg:
		switch {
		case errors.Is(msg.Err, status.ErrNotRunning):
			m.finished = true
			return m, tea.Quit
		case msg.Err != nil:
			m.err = msg.Err
			return m, tea.Quit
		}
		m.line = msg.Line
		return m, m.poll()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the model.
func (m monitorModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("CentOS 7 to AlmaLinux 8 conversion"))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(m.styles.Error.Render("Unable to read the status: " + m.err.Error()))
		b.WriteString("\n")
		return b.String()
	case m.finished:
		b.WriteString(m.styles.Success.Render("The conversion is not running."))
		b.WriteString("\n")
		return b.String()
	}

	line := m.line
	if line == "" {
		line = "waiting for progress..."
	}
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.styles.Paragraph.Render(line))
	b.WriteString("\n\n")

	if !m.stopped {
		quit := m.keys.Quit.Help()
		b.WriteString(m.styles.Help.Render(quit.Key + " " + quit.Desc))
		b.WriteString("\n")
	}

	return b.String()
}
