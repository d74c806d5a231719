package app

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/centos2alma/internal/adapters/filesystem"
	"github.com/felixgeelhaar/centos2alma/internal/domain/action"
	"github.com/felixgeelhaar/centos2alma/internal/domain/flow"
	"github.com/felixgeelhaar/centos2alma/internal/domain/state"
	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

func TestBuildStages(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	stages := BuildStages(cfg, ports.NewMockCommandRunner(), filesystem.NewRealFileSystem(), ports.NewNopLogger())

	var names []string
	var actionNames []string
	for _, s := range stages {
		names = append(names, s.Name)
		for _, a := range s.Actions {
			actionNames = append(actionNames, a.Name())
		}
	}
	assert.Equal(t, []string{StageLeappInstallation, StageRepositories, StageResume, StageConversion}, names)
	assert.Equal(t, []string{"install leapp", "disable repositories", "resume service", "run leapp", "reboot"}, actionNames)

	last := stages[len(stages)-1].Actions
	assert.True(t, action.IsRebootPoint(last[len(last)-1]))

	store, err := state.Open(cfg.StatePath)
	require.NoError(t, err)
	for _, mode := range []action.Mode{action.ModePrepare, action.ModeFinish, action.ModeRevert} {
		f, err := flow.New(mode, stages, store)
		require.NoError(t, err)
		assert.NoError(t, f.Validate(), mode.String())
		assert.Positive(t, f.TotalEstimate(), mode.String())
	}
}

func TestLeappMarkerPath(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	assert.Equal(t, filepath.Join(filepath.Dir(cfg.StatePath), "leapp-installed"), LeappMarkerPath(cfg))
}

func TestBuildChecks(t *testing.T) {
	t.Parallel()

	checks := BuildChecks(testConfig(t), filesystem.NewRealFileSystem())
	cf := flow.NewCheckFlow(checks)
	require.NoError(t, cf.Validate())
	assert.Len(t, checks, 4)
}

func TestConverter_PrintStages(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	c := New(testConfig(t), &out, WithRunner(ports.NewMockCommandRunner()))
	c.PrintStages()

	assert.Contains(t, out.String(), "leapp installation\n  - install leapp: Installing leapp\n")
	assert.Contains(t, out.String(), "  - reboot:")
}
