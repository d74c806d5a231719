package status

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/centos2alma/internal/adapters/filesystem"
	"github.com/felixgeelhaar/centos2alma/internal/domain/progress"
)

func TestConsoleWriter_Plain(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewConsoleWriter(&buf)

	require.NoError(t, w.Write("[###...] 50%  00:30 / 01:00"))
	require.NoError(t, w.Write("second"))
	require.NoError(t, w.Close())

	assert.Equal(t, "[###...] 50%  00:30 / 01:00\nsecond\n", buf.String())
}

func TestConsoleWriter_StyledKeepsText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewConsoleWriter(&buf, WithStyle(true))

	line := "[###...] 50%  00:30 / 01:00  Conversion: run leapp"
	require.NoError(t, w.Write(line))
	assert.Contains(t, buf.String(), "50%  00:30 / 01:00  Conversion: run leapp")

	buf.Reset()
	require.NoError(t, w.Write("elapsed 12:00  "+progress.OvertimeNotice))
	assert.Contains(t, buf.String(), progress.OvertimeNotice)
}

func TestFileWriter_LifeCycle(t *testing.T) {
	t.Parallel()

	fs := filesystem.NewRealFileSystem()
	path := filepath.Join(t.TempDir(), "run", "centos2alma.status")
	w := NewFileWriter(path, fs)
	assert.Equal(t, path, w.Path())

	_, err := ReadStatus(fs, path)
	assert.ErrorIs(t, err, ErrNotRunning)

	require.NoError(t, w.Write("first"))
	require.NoError(t, w.Write("second"))

	line, err := ReadStatus(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "second", line, "only the latest line is kept")

	require.NoError(t, w.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	_, err = ReadStatus(fs, path)
	assert.ErrorIs(t, err, ErrNotRunning)

	require.NoError(t, w.Close(), "closing twice is not an error")
}
