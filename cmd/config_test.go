package cmd

import (
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jsassist/internal/config"
)

func TestConfigShowsMergedConfig(t *testing.T) {
	home, _ := writeUserConfig(t, "engine:\n  eval_timeout: 750ms\nui:\n  theme: light\n")
	out, _, err := runCLIIn(t, home, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "eval_timeout: 750ms")
	assert.Contains(t, out, "theme: light")
	assert.Contains(t, out, "max_signature_variants: 64")

	out, _, err = runCLIIn(t, home, "config", "-o", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, "[engine]")
	assert.Regexp(t, `eval_timeout = ['"]750ms['"]`, out)
}

func TestConfigExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assist.toml")
	require.NoError(t, writeFile(path, "[output]\nformat = 'lsp'\n"))
	out, _, err := runCLI(t, "config", "--config-file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "format: lsp")
}

func TestConfigInvalid(t *testing.T) {
	home, _ := writeUserConfig(t, "output:\n  format: xml\n")
	_, _, err := runCLIIn(t, home, "config")
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalid), err)

	_, _, err = runCLIIn(t, home, "complete", "--line", "x")
	assert.True(t, errors.Is(err, config.ErrInvalid), err)
}

func TestConfigDefault(t *testing.T) {
	out, _, err := runCLI(t, "config", "default")
	require.NoError(t, err)
	assert.Equal(t, string(config.DefaultYAML()), out)

	out, _, err = runCLI(t, "config", "default", "-o", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, "[ui]")

	_, _, err = runCLI(t, "config", "default", "-o", "ini")
	assert.Error(t, err)
}

func TestConfigPathWithoutFile(t *testing.T) {
	out, _, err := runCLI(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, "(none, using defaults)\n", out)
}

func TestConfigThemes(t *testing.T) {
	out, _, err := runCLI(t, "config", "themes")
	require.NoError(t, err)
	assert.Equal(t, "* dark\n  light\n  plain\n", out)
}
