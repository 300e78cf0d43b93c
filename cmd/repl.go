package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/jsassist/internal/ui"
	"github.com/oakwood-commons/jsassist/pkg/logger"
	"github.com/oakwood-commons/jsassist/pkg/settings"
)

var (
	replTheme      string
	replMaxVisible int

	// stdoutIsTerminal is swapped in tests.
	stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	runREPL          = ui.Run
)

var errNotTerminal = errors.WithHint(errors.New("repl needs an interactive terminal"),
	"use `jsassist complete` to script completions")

var replCmd = &cobra.Command{
	Use:   "repl [script-file|-]",
	Short: "Edit a script line by line with completion",
	Long: `Starts an interactive prompt. The optional script is evaluated first. Tab lists
proposals for the line (Tab, Shift+Tab and the arrow keys move through them),
Enter inserts the selected proposal or commits the line, Ctrl+T toggles code
assist and Esc or Ctrl+C quits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := rootCtx
		if !stdoutIsTerminal() {
			return errNotTerminal
		}
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		themeName := cfg.UI.Theme
		if replTheme != "" {
			themeName = replTheme
		}
		if settings.FromContextOrDefault(ctx).NoColor {
			themeName = "plain"
		}
		theme, err := ui.ThemeByName(themeName)
		if err != nil {
			return errors.WithHintf(err, "available themes: %s", strings.Join(ui.ThemeNames(), ", "))
		}
		src, err := readScript(ctx, args)
		if err != nil {
			return err
		}
		a, err := newAssistant(ctx, cfg, assistantOverrides{})
		if err != nil {
			return err
		}

		// stderr belongs to the terminal UI, so nothing is logged unless
		// --debug sends it to a file.
		lgr := logger.GetNoopLogger()
		if debug {
			f, err := os.CreateTemp("", settings.CliBinaryName+"-repl-*.log")
			if err != nil {
				return err
			}
			defer f.Close()
			lgr = logger.New(f, levelDebug)
			fmt.Fprintf(cmd.ErrOrStderr(), "debug log: %s\n", f.Name())
		}
		ctx = logger.WithLogger(ctx, lgr)

		m, err := runREPL(ctx, a, ui.Options{
			Script:       src,
			Theme:        theme,
			PreviewWidth: cfg.Output.PreviewWidth,
			MaxVisible:   replMaxVisible,
		})
		if err != nil {
			return err
		}
		if !quiet && m != nil {
			fmt.Fprintln(cmd.OutOrStdout(), m.Status())
		}
		return nil
	},
}

func init() { //nolint:gochecknoinits
	replCmd.Flags().StringVar(&replTheme, "theme", "", "theme name: dark|light|plain (default from config)")
	replCmd.Flags().IntVar(&replMaxVisible, "max-visible", 0, "proposals listed at once (default 8)")
}
