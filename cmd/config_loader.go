package cmd

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/oakwood-commons/jsassist/internal/config"
	"github.com/oakwood-commons/jsassist/internal/universe"
	"github.com/oakwood-commons/jsassist/pkg/assist"
	"github.com/oakwood-commons/jsassist/pkg/logger"
	"github.com/oakwood-commons/jsassist/pkg/settings"
)

// stdinReader is swapped in tests.
var stdinReader io.Reader = os.Stdin

// resolveConfigPath returns the explicit config file if set, otherwise the
// XDG config file when one exists.
func resolveConfigPath(explicit string) string {
	return config.ResolvePath(explicit)
}

// loadConfig merges the embedded defaults with the config file of this run.
func loadConfig(ctx context.Context) (*config.Config, error) {
	run := settings.FromContextOrDefault(ctx)
	cfg, err := config.Load(run.ConfigPath)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	logger.FromContext(ctx).V(1).Info("config loaded", "path", run.ConfigPath)
	return cfg, nil
}

// assistantOverrides carries per-command settings that win over the config.
type assistantOverrides struct {
	filter    string
	filterSet bool
	status    assist.StatusSink
}

// newAssistant builds an assistant over the host library, using the universe
// file, filter and engine settings of cfg.
func newAssistant(ctx context.Context, cfg *config.Config, o assistantOverrides) (*assist.Assistant, error) {
	opts := []assist.Option{
		assist.WithEvalTimeout(time.Duration(cfg.Engine.EvalTimeout)),
		assist.WithResetScope(cfg.Engine.ResetScope),
		assist.WithMaxSignatureVariants(cfg.Engine.MaxSignatureVariants),
	}
	if cfg.Universe.File != "" {
		idx, err := universe.LoadFile(cfg.Universe.File)
		if err != nil {
			return nil, err
		}
		logger.FromContext(ctx).V(1).Info("universe loaded", "path", cfg.Universe.File, "types", idx.Len())
		opts = append(opts, assist.WithUniverse(idx))
	}
	filter := cfg.Universe.Filter
	if o.filterSet {
		filter = o.filter
	}
	if filter != "" {
		opts = append(opts, assist.WithUniverseFilter(filter))
	}
	if o.status != nil {
		opts = append(opts, assist.WithStatusSink(o.status))
	}
	return assist.New(opts...)
}

// readScript returns the committed script named by args: a file path, "-"
// for stdin, or nothing for an empty script.
func readScript(ctx context.Context, args []string) (string, error) {
	run := settings.FromContextOrDefault(ctx)
	if len(args) == 0 {
		return "", nil
	}
	if args[0] == "-" {
		run.Script = settings.ScriptSource{FromStdin: true}
		data, err := io.ReadAll(stdinReader)
		if err != nil {
			return "", errors.Wrap(err, "read script from stdin")
		}
		return string(data), nil
	}
	run.Script = settings.ScriptSource{Path: args[0]}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", errors.Wrap(err, "read script")
	}
	return string(data), nil
}

// unsupportedOutput reports an unknown -o value with the accepted ones as a hint.
func unsupportedOutput(got string, valid ...string) error {
	return errors.WithHint(errors.Newf("unsupported output %q", got), "use one of: "+strings.Join(valid, ", "))
}
