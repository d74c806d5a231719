package app

import (
	"path/filepath"

	"github.com/felixgeelhaar/centos2alma/internal/actions"
	"github.com/felixgeelhaar/centos2alma/internal/domain/action"
	"github.com/felixgeelhaar/centos2alma/internal/domain/config"
	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

// Stage names. They are shown in progress lines and must stay stable.
const (
	StageLeappInstallation = "leapp installation"
	StageRepositories      = "repositories"
	StageResume            = "resume"
	StageConversion        = "conversion"
)

// FreeSpacePath is the filesystem leapp downloads the target packages to.
const FreeSpacePath = "/var"

// LeappMarkerPath returns where InstallLeapp records that it installed the
// leapp packages. It lives next to the state file.
func LeappMarkerPath(cfg *config.Config) string {
	return filepath.Join(filepath.Dir(cfg.StatePath), actions.LeappMarkerName)
}

// BuildStages assembles the conversion stages in prepare order.
func BuildStages(cfg *config.Config, runner ports.CommandRunner, fs ports.FileSystem, logger ports.Logger) []action.Stage {
	return []action.Stage{
		action.NewStage(StageLeappInstallation,
			actions.NewInstallLeapp(runner, fs, cfg.Leapp.Package, LeappMarkerPath(cfg), logger),
		),
		action.NewStage(StageRepositories,
			actions.NewDisableRepos(fs, cfg.Leapp.RepoDir, cfg.Leapp.DisableRepos, logger),
		),
		action.NewStage(StageResume,
			actions.NewResumeService(runner, fs, cfg.ResumeUnit.Name, cfg.ResumeUnit.Path(), cfg.ResumeUnit.Binary),
		),
		action.NewStage(StageConversion,
			actions.NewRunLeapp(runner, fs),
			actions.NewReboot(runner),
		),
	}
}

// BuildChecks assembles the pre-flight checks.
func BuildChecks(cfg *config.Config, fs ports.FileSystem) []action.CheckAction {
	return []action.CheckAction{
		actions.NewAssertRoot(),
		actions.NewAssertSystemd(),
		actions.NewAssertOSVersion(fs, actions.OSReleasePath),
		actions.NewAssertFreeSpace(FreeSpacePath, cfg.MinFreeSpaceMB),
	}
}
