package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetRootCmdState restores every flag of every command to its default so
// tests do not leak state through the package-level flag variables.
func resetRootCmdState() {
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		reset(c.Flags())
		reset(c.PersistentFlags())
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
	rootCtx = context.Background()
	stdinReader = os.Stdin
}

// runCLI executes the root command with args in an empty config home and
// returns what it wrote to stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLIIn(t, t.TempDir(), args...)
}

// runCLIIn is runCLI with XDG_CONFIG_HOME set to home.
func runCLIIn(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	resetRootCmdState()
	t.Cleanup(resetRootCmdState)
	t.Setenv("XDG_CONFIG_HOME", home)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeUserConfig writes config.yaml into a fresh config home and returns
// the home and the file.
func writeUserConfig(t *testing.T, body string) (string, string) {
	t.Helper()
	home := t.TempDir()
	dir := filepath.Join(home, "jsassist")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return home, path
}

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.js")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestRootShowsHelp(t *testing.T) {
	out, _, err := runCLI(t)
	require.NoError(t, err)
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "repl")
	assert.Contains(t, out, "watch")
	assert.Contains(t, out, "types")
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "jsassist "), out)

	out, _, err = runCLI(t, "version", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "jsassist"`)
	assert.Contains(t, out, `"goVersion"`)

	_, _, err = runCLI(t, "version", "-o", "xml")
	assert.Error(t, err)
}

func TestBuildVersionData(t *testing.T) {
	d := buildVersionData()
	assert.Equal(t, "jsassist", d.Name)
	assert.NotEmpty(t, d.Version)
	assert.NotEmpty(t, d.GoVersion)
	assert.NotEmpty(t, d.BuildOS)
	assert.Contains(t, cliVersionString(), d.Version)
}

func TestPersistentFlagsPopulateSettings(t *testing.T) {
	home, path := writeUserConfig(t, "ui:\n  theme: light\n")
	out, _, err := runCLIIn(t, home, "config", "path", "--no-color", "-q")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
	assert.True(t, noColor)
	assert.True(t, quiet)
}

func writeFile(path, body string) error {
	return os.WriteFile(path, []byte(body), 0o600)
}
