package actions

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"

	"github.com/felixgeelhaar/centos2alma/internal/adapters/filesystem"
	"github.com/felixgeelhaar/centos2alma/internal/domain/action"
	"github.com/felixgeelhaar/centos2alma/internal/domain/flow"
	"github.com/felixgeelhaar/centos2alma/internal/domain/state"
	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

const epelRepo = `[epel]
name=Extra Packages for Enterprise Linux 7 - $basearch
metalink=https://mirrors.fedoraproject.org/metalink?repo=epel-7&arch=$basearch
enabled=1
gpgcheck=1

[epel-testing]
name=Extra Packages for Enterprise Linux 7 - Testing
enabled=0
`

const baseRepo = `[base]
name=CentOS-$releasever - Base
gpgcheck=1
`

func setupRepos(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "epel.repo"), []byte(epelRepo), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CentOS-Base.repo"), []byte(baseRepo), 0o644))
	return dir
}

func repoEnabled(t *testing.T, path, section string) string {
	t.Helper()
	cfg, err := ini.Load(path)
	require.NoError(t, err)
	return cfg.Section(section).Key("enabled").String()
}

func newDisableRepos(dir string, repos ...string) *DisableRepos {
	return NewDisableRepos(filesystem.NewRealFileSystem(), dir, repos, ports.NewNopLogger())
}

func TestDisableRepos_IsRequired(t *testing.T) {
	t.Parallel()

	dir := setupRepos(t)
	ctx := context.Background()

	assert.True(t, newDisableRepos(dir, "epel").IsRequired(ctx))
	assert.False(t, newDisableRepos(dir, "epel-testing").IsRequired(ctx), "already disabled")
	assert.True(t, newDisableRepos(dir, "base").IsRequired(ctx), "missing enabled key means enabled")
	assert.False(t, newDisableRepos(dir, "remi").IsRequired(ctx))
}

func TestDisableRepos_PrepareAndRevert(t *testing.T) {
	t.Parallel()

	dir := setupRepos(t)
	ctx := context.Background()
	epel := filepath.Join(dir, "epel.repo")
	a := newDisableRepos(dir, "epel", "epel-testing")

	require.NoError(t, a.Prepare(ctx))
	assert.Equal(t, "0", repoEnabled(t, epel, "epel"))
	assert.Equal(t, "0", repoEnabled(t, epel, "epel-testing"))
	assert.FileExists(t, epel+RepoBackupSuffix)
	assert.NoFileExists(t, filepath.Join(dir, "CentOS-Base.repo"+RepoBackupSuffix), "untouched files are not backed up")
	assert.True(t, a.IsRequired(ctx), "pending backups keep the action required")

	require.NoError(t, a.Revert(ctx))
	data, err := os.ReadFile(epel)
	require.NoError(t, err)
	assert.Equal(t, epelRepo, string(data))
	assert.NoFileExists(t, epel+RepoBackupSuffix)
}

func TestDisableRepos_PrepareTwiceKeepsOriginalBackup(t *testing.T) {
	t.Parallel()

	dir := setupRepos(t)
	ctx := context.Background()
	epel := filepath.Join(dir, "epel.repo")

	require.NoError(t, newDisableRepos(dir, "epel").Prepare(ctx))

	// Someone re-enabled the repo before the retry.
	cfg, err := ini.Load(epel)
	require.NoError(t, err)
	cfg.Section("epel").Key("enabled").SetValue("1")
	require.NoError(t, cfg.SaveTo(epel))

	require.NoError(t, newDisableRepos(dir, "epel").Prepare(ctx))

	backup, err := os.ReadFile(epel + RepoBackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, epelRepo, string(backup))
}

func TestDisableRepos_FinishDropsBackups(t *testing.T) {
	t.Parallel()

	dir := setupRepos(t)
	ctx := context.Background()
	epel := filepath.Join(dir, "epel.repo")
	a := newDisableRepos(dir, "epel")

	require.NoError(t, a.Prepare(ctx))
	require.NoError(t, a.Finish(ctx))

	assert.NoFileExists(t, epel+RepoBackupSuffix)
	assert.Equal(t, "0", repoEnabled(t, epel, "epel"))
}

func TestDisableRepos_RevertWithoutPrepare(t *testing.T) {
	t.Parallel()

	dir := setupRepos(t)
	require.NoError(t, newDisableRepos(dir, "epel").Revert(context.Background()))

	data, err := os.ReadFile(filepath.Join(dir, "epel.repo"))
	require.NoError(t, err)
	assert.Equal(t, epelRepo, string(data))
}

func TestDisableRepos_PrepareInvalidFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.repo"), []byte("[epel\nenabled=1\n"), 0o644))

	err := newDisableRepos(dir, "epel").Prepare(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.repo")
}

func TestDisableRepos_PrepareOnlyFlipsEnabled(t *testing.T) {
	t.Parallel()

	dir := setupRepos(t)
	epel := filepath.Join(dir, "epel.repo")

	require.NoError(t, newDisableRepos(dir, "epel").Prepare(context.Background()))

	data, err := os.ReadFile(epel)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "name=Extra Packages for Enterprise Linux 7 - $basearch\n")
	assert.Contains(t, content, "metalink=https://mirrors.fedoraproject.org/metalink?repo=epel-7&arch=$basearch\n")
	assert.Contains(t, content, "enabled=0\ngpgcheck=1\n")
	assert.NotContains(t, content, " = ")
}

// runReposPass runs one pass of a single-action flow over dir, recording
// outcomes in the state file at statePath.
func runReposPass(t *testing.T, mode action.Mode, dir, statePath string) state.Outcome {
	t.Helper()

	store, err := state.Open(statePath)
	require.NoError(t, err)

	a := newDisableRepos(dir, "epel")
	f, err := flow.New(mode, []action.Stage{action.NewStage("repositories", a)}, store)
	require.NoError(t, err)
	require.NoError(t, f.Validate())
	require.NoError(t, f.Run(context.Background()))
	outcome := store.Outcome(a.Name())
	require.NoError(t, f.Close())
	return outcome
}

func TestDisableRepos_FlowPrepareThenRevert(t *testing.T) {
	t.Parallel()

	dir := setupRepos(t)
	statePath := filepath.Join(t.TempDir(), "actions.json")
	epel := filepath.Join(dir, "epel.repo")

	assert.Equal(t, state.OutcomeSuccess, runReposPass(t, action.ModePrepare, dir, statePath))
	assert.Equal(t, "0", repoEnabled(t, epel, "epel"))

	assert.Equal(t, state.OutcomeSuccess, runReposPass(t, action.ModeRevert, dir, statePath))

	data, err := os.ReadFile(epel)
	require.NoError(t, err)
	assert.Equal(t, epelRepo, string(data))
	assert.NoFileExists(t, epel+RepoBackupSuffix)
}

func TestDisableRepos_FlowPrepareThenFinish(t *testing.T) {
	t.Parallel()

	dir := setupRepos(t)
	statePath := filepath.Join(t.TempDir(), "actions.json")
	epel := filepath.Join(dir, "epel.repo")

	assert.Equal(t, state.OutcomeSuccess, runReposPass(t, action.ModePrepare, dir, statePath))
	assert.Equal(t, state.OutcomeSuccess, runReposPass(t, action.ModeFinish, dir, statePath))

	assert.NoFileExists(t, epel+RepoBackupSuffix)
	assert.Equal(t, "0", repoEnabled(t, epel, "epel"))
	assert.NoFileExists(t, statePath)
}
