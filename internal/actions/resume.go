package actions

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/coreos/go-systemd/v22/unit"

	"github.com/felixgeelhaar/centos2alma/internal/domain/action"
	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

// ResumeService installs a oneshot systemd unit that runs the finish pass
// on the first boot of the converted system.
type ResumeService struct {
	action.Base
	runner ports.CommandRunner
	fs     ports.FileSystem
	name   string
	path   string
	binary string
}

// NewResumeService creates the action for the unit name written to path.
// binary is the conversion tool executable the unit runs.
func NewResumeService(runner ports.CommandRunner, fs ports.FileSystem, name, path, binary string) *ResumeService {
	return &ResumeService{
		Base: action.NewBase("resume service", "Installing the service that finishes the conversion after the reboot").
			WithEstimate(action.ModePrepare, 2*time.Second).
			WithEstimate(action.ModeFinish, 2*time.Second).
			WithEstimate(action.ModeRevert, 2*time.Second),
		runner: runner,
		fs:     fs,
		name:   name,
		path:   path,
		binary: binary,
	}
}

// UnitOptions returns the unit definition.
func (a *ResumeService) UnitOptions() []*unit.UnitOption {
	return []*unit.UnitOption{
		unit.NewUnitOption("Unit", "Description", "Finish the CentOS 7 to AlmaLinux 8 conversion"),
		unit.NewUnitOption("Unit", "After", "network.target"),
		unit.NewUnitOption("Service", "Type", "oneshot"),
		unit.NewUnitOption("Service", "ExecStart", a.binary+" finish --yes"),
		unit.NewUnitOption("Service", "RemainAfterExit", "no"),
		unit.NewUnitOption("Install", "WantedBy", "multi-user.target"),
	}
}

// Prepare writes and enables the unit.
func (a *ResumeService) Prepare(ctx context.Context) error {
	content, err := io.ReadAll(unit.Serialize(a.UnitOptions()))
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", a.name, err)
	}
	if err := a.fs.WriteFile(a.path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.path, err)
	}
	if _, err := ports.RunChecked(ctx, a.runner, "systemctl", "daemon-reload"); err != nil {
		return err
	}
	if _, err := ports.RunChecked(ctx, a.runner, "systemctl", "enable", a.name); err != nil {
		return fmt.Errorf("failed to enable %s: %w", a.name, err)
	}
	return nil
}

// Finish removes the unit; the conversion no longer needs resuming.
func (a *ResumeService) Finish(ctx context.Context) error {
	return a.remove(ctx)
}

// Revert removes the unit if it was installed.
func (a *ResumeService) Revert(ctx context.Context) error {
	return a.remove(ctx)
}

func (a *ResumeService) remove(ctx context.Context) error {
	if !a.fs.Exists(a.path) {
		return nil
	}
	if _, err := ports.RunChecked(ctx, a.runner, "systemctl", "disable", a.name); err != nil {
		return fmt.Errorf("failed to disable %s: %w", a.name, err)
	}
	if err := a.fs.Remove(a.path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", a.path, err)
	}
	if _, err := ports.RunChecked(ctx, a.runner, "systemctl", "daemon-reload"); err != nil {
		return err
	}
	return nil
}
