package actions

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/centos2alma/internal/domain/action"
	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

// RebootMessage is broadcast to logged-in users before the reboot.
const RebootMessage = "centos2alma: rebooting to continue the conversion"

// Reboot schedules the reboot into the leapp upgrade environment. The
// reboot is delayed by a minute so the state file and the progress writers
// are flushed before the system goes down.
type Reboot struct {
	action.Base
	runner ports.CommandRunner
}

// NewReboot creates the action.
func NewReboot(runner ports.CommandRunner) *Reboot {
	return &Reboot{
		Base:   action.NewBase("reboot", "Rebooting to run the upgrade"),
		runner: runner,
	}
}

// RequestsReboot marks the action as the reboot point of a flow.
func (a *Reboot) RequestsReboot() bool {
	return true
}

// Prepare schedules the reboot.
func (a *Reboot) Prepare(ctx context.Context) error {
	if _, err := ports.RunChecked(ctx, a.runner, "shutdown", "-r", "+1", RebootMessage); err != nil {
		return fmt.Errorf("failed to schedule the reboot: %w", err)
	}
	return nil
}

// Revert cancels a reboot that is still pending. Nothing pending is fine.
func (a *Reboot) Revert(ctx context.Context) error {
	_, err := a.runner.Run(ctx, "shutdown", "-c")
	return err
}

var _ action.RebootPoint = (*Reboot)(nil)

