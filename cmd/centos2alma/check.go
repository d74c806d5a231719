package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/centos2alma/internal/app"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether the server can be converted",
	Long: `Check runs every pre-conversion check without changing anything and
prints what to fix for each one that fails.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	converter, closeLog, err := newConverter(cmd.OutOrStdout(), false)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	report, err := converter.Check(context.Background())
	if err != nil {
		return err
	}

	converter.PrintCheckReport(report)
	if !report.Passed() {
		return &app.CheckFailedError{Report: report}
	}
	return nil
}
