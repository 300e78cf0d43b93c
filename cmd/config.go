package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jsassist/internal/config"
	"github.com/oakwood-commons/jsassist/internal/ui"
	"github.com/oakwood-commons/jsassist/pkg/settings"
)

var configOutput string

// configCmd prints the merged configuration; subcommands cover the defaults,
// the resolved file and the REPL themes.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the merged jsassist configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(rootCtx)
		if err != nil {
			return err
		}
		asTOML, err := configAsTOML()
		if err != nil {
			return err
		}
		data, err := config.Marshal(cfg, asTOML)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configDefaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Print the built-in default configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		asTOML, err := configAsTOML()
		if err != nil {
			return err
		}
		if !asTOML {
			_, err = cmd.OutOrStdout().Write(config.DefaultYAML())
			return err
		}
		cfg, err := config.Default()
		if err != nil {
			return err
		}
		data, err := config.Marshal(cfg, true)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := settings.FromContextOrDefault(rootCtx).ConfigPath
		if path == "" {
			path = "(none, using defaults)"
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	},
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available REPL themes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(rootCtx)
		if err != nil {
			return err
		}
		for _, name := range ui.ThemeNames() {
			marker := "  "
			if name == cfg.UI.Theme {
				marker = "* "
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), marker+name); err != nil {
				return err
			}
		}
		return nil
	},
}

func configAsTOML() (bool, error) {
	switch configOutput {
	case "yaml", "":
		return false, nil
	case "toml":
		return true, nil
	default:
		return false, unsupportedOutput(configOutput, "yaml", "toml")
	}
}

func init() { //nolint:gochecknoinits
	configCmd.PersistentFlags().StringVarP(&configOutput, "output", "o", "yaml", "output format: yaml|toml")
	configCmd.AddCommand(configDefaultCmd, configPathCmd, configThemesCmd)
}
