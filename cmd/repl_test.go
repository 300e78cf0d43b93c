package cmd

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jsassist/internal/ui"
	"github.com/oakwood-commons/jsassist/pkg/logger"
)

func stubREPL(t *testing.T, terminal bool) *ui.Options {
	t.Helper()
	prevTerm, prevRun := stdoutIsTerminal, runREPL
	t.Cleanup(func() { stdoutIsTerminal, runREPL = prevTerm, prevRun })

	got := &ui.Options{}
	stdoutIsTerminal = func() bool { return terminal }
	runREPL = func(ctx context.Context, a ui.Assistant, opts ui.Options, _ ...tea.ProgramOption) (*ui.Model, error) {
		*got = opts
		return ui.NewModel(ctx, a, opts), nil
	}
	return got
}

func TestREPLNeedsTerminal(t *testing.T) {
	stubREPL(t, false)
	_, _, err := runCLI(t, "repl")
	assert.True(t, errors.Is(err, errNotTerminal), err)
}

func TestREPLEvaluatesScriptAndPrintsStatus(t *testing.T) {
	opts := stubREPL(t, true)
	script := writeScript(t, pointScript)
	out, _, err := runCLI(t, "repl", script, "--max-visible", "3")
	require.NoError(t, err)
	assert.Equal(t, "Parsed successfully.\n", out)
	assert.Equal(t, pointScript, opts.Script)
	assert.Equal(t, 3, opts.MaxVisible)
	assert.Equal(t, 60, opts.PreviewWidth)

	dark, err := ui.ThemeByName("dark")
	require.NoError(t, err)
	assert.Equal(t, dark, opts.Theme)
}

func TestREPLThemeSelection(t *testing.T) {
	opts := stubREPL(t, true)
	home, _ := writeUserConfig(t, "ui:\n  theme: light\n")

	_, _, err := runCLIIn(t, home, "repl")
	require.NoError(t, err)
	light, _ := ui.ThemeByName("light")
	assert.Equal(t, light, opts.Theme)

	_, _, err = runCLIIn(t, home, "repl", "--no-color")
	require.NoError(t, err)
	assert.Equal(t, ui.Theme{}, opts.Theme)

	_, _, err = runCLIIn(t, home, "repl", "--theme", "neon")
	assert.Error(t, err)
}

func TestREPLDiscardsLogsWithoutDebug(t *testing.T) {
	stubREPL(t, true)
	var got context.Context
	inner := runREPL
	runREPL = func(ctx context.Context, a ui.Assistant, opts ui.Options, po ...tea.ProgramOption) (*ui.Model, error) {
		got = ctx
		return inner(ctx, a, opts, po...)
	}

	_, _, err := runCLI(t, "repl", "-q")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Same(t, logger.GetNoopLogger(), logger.FromContext(got))
}
