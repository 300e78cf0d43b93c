package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jsassist/pkg/logger"
	"github.com/oakwood-commons/jsassist/pkg/settings"
)

var (
	rootCtx = context.Background()

	configFile string
	debug      bool
	noColor    bool
	quiet      bool
)

// Log levels follow zapcore: -1 debug, 0 info, 2 error.
const (
	levelDebug int8 = -1
	levelInfo  int8 = 0
	levelError int8 = 2
)

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName,
	Short: fmt.Sprintf("%s - code completion for embedded JavaScript", settings.CliBinaryName),
	Long: `jsassist proposes context-sensitive completions for a line of JavaScript typed
against a committed script. The script is evaluated in an embedded runtime with
the host types installed, so proposals reflect live values: scope variables,
members of native objects and host values, method signatures and constructors,
static members of host types, and package and type names from the universe.`,
	Example: `
  jsassist complete --line 'p.tr' session.js
  jsassist complete --line 'var r = new Runnable(' -o json
  echo 'var p = new geom.Point(3, 4);' | jsassist complete - --line 'p.' -o lsp
  jsassist repl session.js
  jsassist watch session.js
  jsassist types --filter 'pkg == "geom"'`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level := levelInfo
		switch {
		case debug:
			level = levelDebug
		case quiet:
			level = levelError
		}
		lgr := logger.Get(level)
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

		run := settings.NewCliParams()
		run.MinLogLevel = level
		run.NoColor = noColor
		run.IsQuiet = quiet
		run.ConfigPath = resolveConfigPath(configFile)
		rootCtx = settings.IntoContext(logger.WithLogger(context.Background(), lgr), run)
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

func init() { //nolint:gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "path to a YAML or TOML config file (default $XDG_CONFIG_HOME/jsassist/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors and suppress status lines")
	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(versionCmd, completeCmd, replCmd, watchCmd, typesCmd, configCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
