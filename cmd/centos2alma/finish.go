package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/centos2alma/internal/app"
)

var finishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Complete the conversion after the reboot",
	Long: `Finish runs the finish pass: it cleans up what the prepare pass set up,
in reverse order. Actions that were skipped or failed during preparation are
left alone. The resume service runs this command on boot.`,
	RunE: runFinish,
}

func init() {
	rootCmd.AddCommand(finishCmd)
}

func runFinish(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	converter, closeLog, err := newConverter(out, true, app.WithConsoleProgress(true))
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	if err := converter.Finish(context.Background()); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, "The conversion to AlmaLinux 8 is complete.")
	return nil
}
