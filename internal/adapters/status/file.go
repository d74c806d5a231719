package status

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/centos2alma/internal/domain/progress"
	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

// FileWriter keeps the latest progress line in a file. The file exists only
// while a conversion is running: Close removes it.
type FileWriter struct {
	path string
	fs   ports.FileSystem
}

// NewFileWriter creates a writer for the status file at path.
func NewFileWriter(path string, fs ports.FileSystem) *FileWriter {
	return &FileWriter{path: path, fs: fs}
}

// Path returns the status file location.
func (w *FileWriter) Path() string {
	return w.path
}

// Write replaces the file content with line.
func (w *FileWriter) Write(line string) error {
	if err := w.fs.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}
	if err := w.fs.WriteFile(w.path, []byte(line+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write status file: %w", err)
	}
	return nil
}

// Close removes the status file.
func (w *FileWriter) Close() error {
	if err := w.fs.Remove(w.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove status file: %w", err)
	}
	return nil
}

// ErrNotRunning is returned by ReadStatus when no status file exists.
var ErrNotRunning = errors.New("conversion is not running")

// ReadStatus returns the latest progress line from the status file at path.
func ReadStatus(fs ports.FileSystem, path string) (string, error) {
	data, err := fs.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotRunning
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status file: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

var _ progress.Writer = (*FileWriter)(nil)
