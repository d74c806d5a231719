package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/centos2alma/internal/app"
)

var revertCmd = &cobra.Command{
	Use:   "revert",
	Short: "Undo the preparation of a conversion",
	Long: `Revert runs the revert pass: every action the prepare pass completed is
undone, in reverse order. Use it when 'centos2alma convert' failed before
the reboot.`,
	RunE: runRevert,
}

func init() {
	rootCmd.AddCommand(revertCmd)
}

func runRevert(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	converter, closeLog, err := newConverter(out, true, app.WithConsoleProgress(true))
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	if !confirm(cmd.InOrStdin(), out, "Revert the changes made by the conversion?") {
		_, _ = fmt.Fprintln(out, "Revert cancelled.")
		return nil
	}

	if err := converter.Revert(context.Background()); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, "The changes were reverted.")
	return nil
}
