// Package config loads jsassist settings: an embedded default YAML document
// with a user YAML or TOML file merged on top.
package config

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/jsassist/pkg/settings"
)

//go:embed default_config.yaml
var defaultConfig []byte

// ErrInvalid is returned when a merged configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Output formats.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatLSP     = "lsp"
	FormatEncoded = "encoded"
)

// Themes understood by the REPL.
var Themes = []string{"dark", "light", "plain"}

// Config is the merged configuration.
type Config struct {
	Engine   Engine   `yaml:"engine" toml:"engine"`
	Universe Universe `yaml:"universe" toml:"universe"`
	Output   Output   `yaml:"output" toml:"output"`
	UI       UI       `yaml:"ui" toml:"ui"`
}

type Engine struct {
	EvalTimeout          Duration `yaml:"eval_timeout" toml:"eval_timeout"`
	ResetScope           bool     `yaml:"reset_scope" toml:"reset_scope"`
	MaxSignatureVariants int      `yaml:"max_signature_variants" toml:"max_signature_variants"`
}

type Universe struct {
	File   string `yaml:"file" toml:"file"`
	Filter string `yaml:"filter" toml:"filter"`
}

type Output struct {
	Format       string `yaml:"format" toml:"format"`
	PreviewWidth int    `yaml:"preview_width" toml:"preview_width"`
	Limit        int    `yaml:"limit" toml:"limit"`
}

type UI struct {
	Theme string `yaml:"theme" toml:"theme"`
}

// Duration is a time.Duration written as "2s" or "500ms".
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return errors.Wrapf(err, "duration %q", b)
	}
	*d = Duration(v)
	return nil
}

// DefaultYAML returns a copy of the embedded default document.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultConfig...)
}

// Default returns the embedded defaults.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultConfig, cfg); err != nil {
		return nil, errors.Wrap(err, "decode default config")
	}
	return cfg, nil
}

// Load merges the file at path over the defaults. An empty path yields the
// defaults. Files ending in .toml are read as TOML, anything else as YAML.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		if err := decode(data, IsTOML(path), cfg); err != nil {
			return nil, errors.Wrapf(err, "decode %s", path)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsTOML reports whether path names a TOML document.
func IsTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func decode(data []byte, isTOML bool, cfg *Config) error {
	if isTOML {
		return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	switch c.Output.Format {
	case FormatText, FormatJSON, FormatLSP, FormatEncoded:
	default:
		errs = append(errs, errors.Newf("output.format %q is not one of text, json, lsp, encoded", c.Output.Format))
	}
	if c.Output.PreviewWidth < 0 {
		errs = append(errs, errors.Newf("output.preview_width must not be negative, got %d", c.Output.PreviewWidth))
	}
	if c.Output.Limit < 0 {
		errs = append(errs, errors.Newf("output.limit must not be negative, got %d", c.Output.Limit))
	}
	if c.Engine.EvalTimeout < 0 {
		errs = append(errs, errors.Newf("engine.eval_timeout must not be negative, got %s", c.Engine.EvalTimeout))
	}
	if !validTheme(c.UI.Theme) {
		errs = append(errs, errors.Newf("ui.theme %q is not one of %s", c.UI.Theme, strings.Join(Themes, ", ")))
	}
	if len(errs) == 0 {
		return nil
	}
	err := errors.Mark(errs[0], ErrInvalid)
	for _, e := range errs[1:] {
		err = errors.CombineErrors(err, e)
	}
	return err
}

func validTheme(name string) bool {
	for _, t := range Themes {
		if t == name {
			return true
		}
	}
	return false
}

// Marshal renders cfg as YAML, or TOML when asTOML is set.
func Marshal(cfg *Config, asTOML bool) ([]byte, error) {
	if asTOML {
		return toml.Marshal(cfg)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ResolvePath returns explicit when set, otherwise the XDG config file
// ($XDG_CONFIG_HOME/jsassist/config.yaml, or the same under ~/.config) if it
// exists. A config.toml next to it is used when no YAML file is present.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	dir := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dir = filepath.Join(xdg, settings.CliBinaryName)
	} else if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".config", settings.CliBinaryName)
	}
	if dir == "" {
		return ""
	}
	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		candidate := filepath.Join(dir, name)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}
