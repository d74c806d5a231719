package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/centos2alma/internal/adapters/filesystem"
	"github.com/felixgeelhaar/centos2alma/internal/tui"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Follow the progress of a running conversion",
	Long: `Monitor shows the progress line of a running conversion and refreshes it
until the conversion stops or you quit. The conversion keeps running when
the monitor exits.`,
	RunE: runMonitor,
}

var monitorInterval time.Duration

func init() {
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 0, "refresh interval (default: report_interval from the config)")

	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	interval := monitorInterval
	if interval <= 0 {
		interval = cfg.ReportInterval.Duration
	}

	opts := tui.NewMonitorOptions().WithInterval(interval)
	result, err := tui.RunMonitor(ctx, filesystem.NewRealFileSystem(), cfg.StatusPath, opts)
	if err != nil {
		return err
	}

	if result.Finished && result.LastLine != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Last progress: %s\n", result.LastLine)
	}
	return nil
}
