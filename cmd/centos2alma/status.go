package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/centos2alma/internal/adapters/filesystem"
	"github.com/felixgeelhaar/centos2alma/internal/adapters/status"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the progress of a running conversion",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	line, err := status.ReadStatus(filesystem.NewRealFileSystem(), cfg.StatusPath)
	if errors.Is(err, status.ErrNotRunning) {
		_, _ = fmt.Fprintln(out, "The conversion is not running.")
		return nil
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, line)
	return nil
}
