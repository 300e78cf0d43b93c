package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jsassist/internal/completion"
	"github.com/oakwood-commons/jsassist/pkg/logger"
)

// watchDebounce coalesces the bursts of events a single save produces.
var watchDebounce = 100 * time.Millisecond

// evaluator is the part of the assistant the watcher needs.
type evaluator interface {
	Evaluate(ctx context.Context, src string) (*completion.Result, error)
}

var watchCmd = &cobra.Command{
	Use:   "watch script-file",
	Short: "Re-evaluate a script whenever it changes",
	Long: `Evaluates the script and prints its status, then prints the status again every
time the file is written. The parent directory is watched so editors that save
by renaming a temporary file are followed. Stops on Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		a, err := newAssistant(ctx, cfg, assistantOverrides{})
		if err != nil {
			return err
		}
		return watchScript(ctx, a, args[0], cmd.OutOrStdout(), nil)
	},
}

// watchScript evaluates path now and after every settled write until ctx is done.
// ready, when set, is called once the watcher is installed.
func watchScript(ctx context.Context, ev evaluator, path string, out io.Writer, ready func()) error {
	lgr := logger.Component(ctx, "watch")
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "watch %s", filepath.Dir(target))
	}
	if err := evaluateFile(ctx, ev, target, path, out); err != nil {
		return err
	}
	if ready != nil {
		ready()
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pending:
			pending = nil
			if err := evaluateFile(ctx, ev, target, path, out); err != nil {
				return err
			}
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			lgr.V(1).Info("script changed", logger.ScriptKey, path, "op", event.Op.String())
			pending = time.After(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			lgr.Error(err, "watcher error", logger.ScriptKey, path)
		}
	}
}

// evaluateFile prints "label: status". A file that vanished between the
// event and the read is reported rather than ending the watch.
func evaluateFile(ctx context.Context, ev evaluator, target, label string, out io.Writer) error {
	data, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			_, werr := fmt.Fprintf(out, "%s: missing\n", label)
			return werr
		}
		return errors.Wrap(err, "read script")
	}
	res, err := ev.Evaluate(ctx, string(data))
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	_, err = fmt.Fprintf(out, "%s: %s\n", label, res.Status)
	return err
}
