package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/centos2alma/internal/app"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Check the server and start the conversion",
	Long: `Convert checks that the server can be converted, prepares it and
reboots into the upgrade environment. After the reboot the resume service
runs 'centos2alma finish' to complete the conversion.

If a check fails nothing is changed. If preparation fails, the error names
the stage that failed; run 'centos2alma revert' to undo the preparation.

Examples:
  centos2alma convert        # Ask for confirmation, then convert
  centos2alma convert --yes  # Convert without asking`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	converter, closeLog, err := newConverter(out, true, app.WithConsoleProgress(true))
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	_, _ = fmt.Fprintln(out, "The conversion will run these stages:")
	converter.PrintStages()
	_, _ = fmt.Fprintln(out)
	if !confirm(cmd.InOrStdin(), out, "The server reboots at the end of preparation. Proceed?") {
		_, _ = fmt.Fprintln(out, "Conversion cancelled.")
		return nil
	}

	if err := converter.Convert(ctx); err != nil {
		var checkErr *app.CheckFailedError
		if errors.As(err, &checkErr) {
			converter.PrintCheckReport(checkErr.Report)
		}
		return err
	}

	_, _ = fmt.Fprintln(out, "\nThe server is prepared and reboots in a minute.")
	_, _ = fmt.Fprintln(out, "The conversion finishes after the reboot; follow it with 'centos2alma monitor'.")
	return nil
}
