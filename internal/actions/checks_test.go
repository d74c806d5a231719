package actions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/felixgeelhaar/centos2alma/internal/adapters/filesystem"
)

func TestAssertRoot(t *testing.T) {
	t.Parallel()

	c := NewAssertRoot()
	c.euid = func() int { return 0 }
	ok, err := c.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	c.euid = func() int { return 1000 }
	ok, err = c.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, c.Description(), "root")
}

func TestAssertOSVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		ok      bool
		detail  string
	}{
		{"centos 7", "ID=\"centos\"\nVERSION_ID=\"7\"\n", true, ""},
		{"almalinux 8", "ID=\"almalinux\"\nVERSION_ID=\"8.9\"\nPRETTY_NAME=\"AlmaLinux 8.9 (Midnight Oncilla)\"\n", false, "AlmaLinux 8.9 (Midnight Oncilla)"},
		{"centos 8", "ID=\"centos\"\nVERSION_ID=\"8\"\n", false, "centos 8"},
		{"unparseable version", "ID=centos\nVERSION_ID=seven\n", false, "centos seven"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "os-release")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			c := NewAssertOSVersion(filesystem.NewRealFileSystem(), path)
			ok, err := c.Check(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			if tt.detail != "" {
				assert.Contains(t, c.Description(), tt.detail)
			}
		})
	}
}

func TestAssertOSVersion_MissingFile(t *testing.T) {
	t.Parallel()

	c := NewAssertOSVersion(filesystem.NewRealFileSystem(), filepath.Join(t.TempDir(), "missing"))
	_, err := c.Check(context.Background())
	assert.Error(t, err)
}

func TestAssertFreeSpace(t *testing.T) {
	t.Parallel()

	statfs := func(freeMB uint64) func(string, *unix.Statfs_t) error {
		return func(_ string, st *unix.Statfs_t) error {
			st.Bsize = 4096
			st.Bavail = freeMB * 1024 * 1024 / 4096
			return nil
		}
	}

	c := NewAssertFreeSpace("/var", 5120)
	c.statfs = statfs(6000)
	ok, err := c.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	c.statfs = statfs(1000)
	ok, err = c.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, c.Description(), "Only 1000 MiB are free on /var")
	assert.Contains(t, c.Description(), "Free up 4120 MiB")

	broken := errors.New("no such file or directory")
	c.statfs = func(string, *unix.Statfs_t) error { return broken }
	_, err = c.Check(context.Background())
	assert.ErrorIs(t, err, broken)
}

func TestAssertFreeSpace_RealFilesystem(t *testing.T) {
	t.Parallel()

	ok, err := NewAssertFreeSpace(t.TempDir(), 0).Check(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAssertSystemd(t *testing.T) {
	t.Parallel()

	c := NewAssertSystemd()
	c.running = func() bool { return false }
	ok, err := c.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotEmpty(t, c.Description())

	c.running = func() bool { return true }
	ok, err = c.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}
