// Package status provides the progress writers: a console echo for the
// operator running the conversion and a status file that a separate status
// or monitor invocation can read.
package status

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/felixgeelhaar/centos2alma/internal/domain/progress"
)

var (
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#89b4fa"})
	overtimeStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#df8e1d", Dark: "#f9e2af"}).Bold(true)
)

// ConsoleWriter echoes every progress line to an output stream.
type ConsoleWriter struct {
	mu     sync.Mutex
	out    io.Writer
	styled bool
}

// ConsoleOption configures a ConsoleWriter.
type ConsoleOption func(*ConsoleWriter)

// WithStyle forces styling on or off.
func WithStyle(styled bool) ConsoleOption {
	return func(w *ConsoleWriter) {
		w.styled = styled
	}
}

// NewConsoleWriter creates a writer for out. Lines are styled when out is a
// terminal.
func NewConsoleWriter(out io.Writer, opts ...ConsoleOption) *ConsoleWriter {
	w := &ConsoleWriter{out: out}
	if f, ok := out.(*os.File); ok {
		w.styled = term.IsTerminal(int(f.Fd()))
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write prints line followed by a newline.
func (w *ConsoleWriter) Write(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.styled {
		line = style(line)
	}
	if _, err := fmt.Fprintln(w.out, line); err != nil {
		return fmt.Errorf("failed to write progress to console: %w", err)
	}
	return nil
}

// Close does nothing; the stream is owned by the caller.
func (w *ConsoleWriter) Close() error {
	return nil
}

// style colours the bar, and the whole line once the estimate is exceeded.
func style(line string) string {
	if strings.Contains(line, progress.OvertimeNotice) {
		return overtimeStyle.Render(line)
	}
	if end := strings.Index(line, "]"); strings.HasPrefix(line, "[") && end > 0 {
		return barStyle.Render(line[:end+1]) + line[end+1:]
	}
	return line
}

var _ progress.Writer = (*ConsoleWriter)(nil)
