package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/centos2alma/internal/adapters/logging"
	"github.com/felixgeelhaar/centos2alma/internal/app"
	"github.com/felixgeelhaar/centos2alma/internal/domain/config"
	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	yesFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "centos2alma",
	Short: "Convert a CentOS 7 server to AlmaLinux 8",
	Long: `centos2alma converts a CentOS 7 server to AlmaLinux 8 in place.

The conversion runs in passes:
  convert   checks the server, prepares it and reboots into the upgrade
  finish    completes the conversion after the reboot (run automatically)
  revert    undoes whatever the prepare pass managed to do

Progress of a running pass is available through 'centos2alma status'
and 'centos2alma monitor'.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in settings)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "auto-confirm all prompts")

	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "toml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the --config file, or the defaults when it is not set.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger builds the logger for a command. Warnings and errors go to
// stderr (everything with --verbose); with toFile the conversion log at
// cfg.LogPath receives entries at the configured level.
func newLogger(cfg *config.Config, toFile bool) (ports.Logger, func() error, error) {
	consoleLevel := ports.LevelWarn
	if verbose {
		consoleLevel = ports.LevelDebug
	}
	console := logging.NewConsoleLogger(
		logging.WithOutput(os.Stderr),
		logging.WithLevel(consoleLevel),
		logging.WithTimeFormat(logging.ConsoleTimeFormat),
	)
	if !toFile {
		return console, func() error { return nil }, nil
	}

	file, closeFile, err := logging.OpenFile(cfg.LogPath, logging.WithLevel(ports.ParseLevel(cfg.LogLevel)))
	if err != nil {
		return nil, nil, err
	}
	return logging.NewTee(file, console), closeFile, nil
}

// newConverter loads the configuration and builds the application service
// writing to out. The returned function closes the conversion log.
func newConverter(out io.Writer, toFile bool, opts ...app.Option) (*app.Converter, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger, closeLog, err := newLogger(cfg, toFile)
	if err != nil {
		return nil, nil, err
	}

	opts = append([]app.Option{app.WithLogger(logger)}, opts...)
	return app.New(cfg, out, opts...), closeLog, nil
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var list *config.ErrorList
	if errors.As(err, &list) && len(list.Errors()) > 1 {
		return list.Error()
	}

	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}
