package actions

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/ini.v1"

	"github.com/felixgeelhaar/centos2alma/internal/domain/action"
	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

// RepoBackupSuffix is appended to a .repo file saved before it is edited.
const RepoBackupSuffix = ".centos2alma-backup"

func init() {
	// Keep "key=value" as yum writes it; only the enabled keys change.
	ini.PrettyFormat = false
}

// DisableRepos turns off yum repositories leapp cannot upgrade through.
// Every edited file is backed up first; Revert restores the backups and
// Finish discards them.
type DisableRepos struct {
	action.Base
	fs     ports.FileSystem
	dir    string
	repos  map[string]struct{}
	logger ports.Logger
}

// NewDisableRepos creates the action for the repository ids in dir.
func NewDisableRepos(fs ports.FileSystem, dir string, repos []string, logger ports.Logger) *DisableRepos {
	set := make(map[string]struct{}, len(repos))
	for _, r := range repos {
		set[r] = struct{}{}
	}
	return &DisableRepos{
		Base: action.NewBase("disable repositories", "Disabling repositories unsupported by leapp").
			WithEstimate(action.ModePrepare, 5*time.Second).
			WithEstimate(action.ModeFinish, time.Second).
			WithEstimate(action.ModeRevert, 5*time.Second),
		fs:     fs,
		dir:    dir,
		repos:  set,
		logger: logger,
	}
}

// IsRequired reports whether any listed repository is enabled or a backup
// from an earlier Prepare is still on disk. The backups keep the answer true
// for the finish and revert passes after the repositories were disabled.
func (a *DisableRepos) IsRequired(_ context.Context) bool {
	if backups, err := a.backups(); err != nil || len(backups) > 0 {
		return true
	}

	files, err := a.repoFiles()
	if err != nil {
		return true
	}
	for _, path := range files {
		cfg, err := a.load(path)
		if err != nil {
			return true
		}
		if len(a.enabledSections(cfg)) > 0 {
			return true
		}
	}
	return false
}

// Prepare sets enabled=0 on every listed repository.
func (a *DisableRepos) Prepare(ctx context.Context) error {
	files, err := a.repoFiles()
	if err != nil {
		return err
	}

	for _, path := range files {
		cfg, err := a.load(path)
		if err != nil {
			return err
		}
		sections := a.enabledSections(cfg)
		if len(sections) == 0 {
			continue
		}

		backup := path + RepoBackupSuffix
		if !a.fs.Exists(backup) {
			if err := a.fs.CopyFile(path, backup); err != nil {
				return fmt.Errorf("failed to back up %s: %w", path, err)
			}
		}

		for _, section := range sections {
			section.Key("enabled").SetValue("0")
			a.logger.Info(ctx, "disabled repository", ports.F("repo", section.Name()), ports.F("file", path))
		}

		var buf bytes.Buffer
		if _, err := cfg.WriteTo(&buf); err != nil {
			return fmt.Errorf("failed to render %s: %w", path, err)
		}
		if err := a.fs.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// Finish discards the backups.
func (a *DisableRepos) Finish(_ context.Context) error {
	backups, err := a.backups()
	if err != nil {
		return err
	}
	for _, backup := range backups {
		if err := a.fs.Remove(backup); err != nil {
			return fmt.Errorf("failed to remove %s: %w", backup, err)
		}
	}
	return nil
}

// Revert puts every backed-up file back in place.
func (a *DisableRepos) Revert(ctx context.Context) error {
	backups, err := a.backups()
	if err != nil {
		return err
	}
	for _, backup := range backups {
		original := backup[:len(backup)-len(RepoBackupSuffix)]
		if err := a.fs.Rename(backup, original); err != nil {
			return fmt.Errorf("failed to restore %s: %w", original, err)
		}
		a.logger.Info(ctx, "restored repository file", ports.F("file", original))
	}
	return nil
}

func (a *DisableRepos) repoFiles() ([]string, error) {
	files, err := a.fs.Glob(filepath.Join(a.dir, "*.repo"))
	if err != nil {
		return nil, fmt.Errorf("failed to list repository files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func (a *DisableRepos) backups() ([]string, error) {
	backups, err := a.fs.Glob(filepath.Join(a.dir, "*.repo"+RepoBackupSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list repository backups: %w", err)
	}
	sort.Strings(backups)
	return backups, nil
}

func (a *DisableRepos) load(path string) (*ini.File, error) {
	data, err := a.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// enabledSections returns the listed repositories that are enabled. yum
// treats a missing enabled key as enabled.
func (a *DisableRepos) enabledSections(cfg *ini.File) []*ini.Section {
	var out []*ini.Section
	for _, section := range cfg.Sections() {
		if _, listed := a.repos[section.Name()]; !listed {
			continue
		}
		if section.Key("enabled").MustString("1") != "0" {
			out = append(out, section)
		}
	}
	return out
}
