// Package actions is the catalogue of conversion steps and pre-flight checks
// the engine drives. Each type implements action.Action or
// action.CheckAction; the engine knows nothing else about them.
package actions

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/centos2alma/internal/domain/action"
	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

// LeappReportPath is where leapp writes the findings of a failed upgrade.
const LeappReportPath = "/var/log/leapp/leapp-report.txt"

// upgradeKernel is the boot entry leapp installs to run the upgrade.
const upgradeKernel = "/boot/vmlinuz-upgrade.x86_64"

// leappPackages are installed alongside the data package.
var leappPackages = []string{"leapp", "python2-leapp"}

// LeappMarkerName is the file InstallLeapp leaves in the state directory
// when it installed the packages itself.
const LeappMarkerName = "leapp-installed"

// InstallLeapp installs the leapp tooling and removes it once the
// conversion is finished or reverted. Packages the administrator had
// installed before the conversion are left alone.
type InstallLeapp struct {
	action.Base
	runner ports.CommandRunner
	fs     ports.FileSystem
	pkg    string
	marker string
	logger ports.Logger
}

// NewInstallLeapp creates the action for the given data package. marker is
// the path recording that the packages were installed by this action.
func NewInstallLeapp(runner ports.CommandRunner, fs ports.FileSystem, pkg, marker string, logger ports.Logger) *InstallLeapp {
	return &InstallLeapp{
		Base: action.NewBase("install leapp", "Installing leapp").
			WithEstimate(action.ModePrepare, 2*time.Minute).
			WithEstimate(action.ModeFinish, 30*time.Second).
			WithEstimate(action.ModeRevert, 30*time.Second),
		runner: runner,
		fs:     fs,
		pkg:    pkg,
		marker: marker,
		logger: logger,
	}
}

// Prepare installs the packages unless they are already present.
func (a *InstallLeapp) Prepare(ctx context.Context) error {
	if installed(ctx, a.runner, a.pkg) {
		a.logger.Info(ctx, "leapp is already installed", ports.F("package", a.pkg))
		return nil
	}

	// The marker goes down first so a partial install is cleaned up too.
	if err := a.fs.MkdirAll(filepath.Dir(a.marker), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(a.marker), err)
	}
	if err := a.fs.WriteFile(a.marker, []byte(a.pkg+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.marker, err)
	}

	args := append([]string{"install", "-y", a.pkg}, leappPackages...)
	if _, err := ports.RunChecked(ctx, a.runner, "yum", args...); err != nil {
		return fmt.Errorf("failed to install %s: %w", a.pkg, err)
	}
	return nil
}

// Finish removes the packages; they are of no use on the converted system.
func (a *InstallLeapp) Finish(ctx context.Context) error {
	return a.remove(ctx)
}

// Revert removes the packages if Prepare got as far as installing them.
func (a *InstallLeapp) Revert(ctx context.Context) error {
	return a.remove(ctx)
}

func (a *InstallLeapp) remove(ctx context.Context) error {
	if !a.fs.Exists(a.marker) {
		a.logger.Debug(ctx, "leapp was not installed by the conversion", ports.F("package", a.pkg))
		return nil
	}

	var present []string
	for _, pkg := range append([]string{a.pkg}, leappPackages...) {
		if installed(ctx, a.runner, pkg) {
			present = append(present, pkg)
		}
	}
	if len(present) > 0 {
		args := append([]string{"-e", "--nodeps"}, present...)
		if _, err := ports.RunChecked(ctx, a.runner, "rpm", args...); err != nil {
			return fmt.Errorf("failed to remove leapp packages: %w", err)
		}
	}

	if err := a.fs.Remove(a.marker); err != nil {
		return fmt.Errorf("failed to remove %s: %w", a.marker, err)
	}
	return nil
}

// RunLeapp prepares the upgrade with leapp. The actual upgrade happens in
// the leapp initramfs on the next boot.
type RunLeapp struct {
	action.Base
	runner ports.CommandRunner
	fs     ports.FileSystem
}

// NewRunLeapp creates the action.
func NewRunLeapp(runner ports.CommandRunner, fs ports.FileSystem) *RunLeapp {
	return &RunLeapp{
		Base: action.NewBase("run leapp", "Preparing the upgrade with leapp").
			WithEstimate(action.ModePrepare, 10*time.Minute).
			WithEstimate(action.ModeRevert, 10*time.Second),
		runner: runner,
		fs:     fs,
	}
}

// Prepare runs the leapp upgrade preparation.
func (a *RunLeapp) Prepare(ctx context.Context) error {
	_, err := ports.RunChecked(ctx, a.runner, "leapp", "upgrade")
	if err == nil {
		return nil
	}
	var cmdErr *ports.CommandError
	if errors.As(err, &cmdErr) && a.fs.Exists(LeappReportPath) {
		return fmt.Errorf("%w; see %s for the reasons", err, LeappReportPath)
	}
	return err
}

// Revert drops the upgrade boot entry so the next boot is a normal one.
func (a *RunLeapp) Revert(ctx context.Context) error {
	if !a.fs.Exists(upgradeKernel) {
		return nil
	}
	if _, err := ports.RunChecked(ctx, a.runner, "grubby", "--remove-kernel="+upgradeKernel); err != nil {
		return fmt.Errorf("failed to remove the upgrade boot entry: %w", err)
	}
	return nil
}

func installed(ctx context.Context, runner ports.CommandRunner, pkg string) bool {
	result, err := runner.Run(ctx, "rpm", "-q", pkg)
	return err == nil && result.Success()
}
