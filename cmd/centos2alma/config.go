package main

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/centos2alma/internal/domain/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Config prints the settings in effect: the built-in defaults overlaid with
the --config file. The output is a valid configuration file.

Examples:
  centos2alma config                          # Defaults as YAML
  centos2alma config --format toml            # Defaults as TOML
  centos2alma config --config /etc/c2a.yaml   # Effective settings`,
	RunE: runConfig,
}

var configFormat string

func init() {
	configCmd.Flags().StringVar(&configFormat, "format", string(config.FormatYAML), "output format (yaml, toml)")

	_ = configCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(config.FormatYAML), string(config.FormatTOML)}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := config.Marshal(cfg, config.Format(configFormat))
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
