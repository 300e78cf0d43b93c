package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jsassist/internal/completion"
	"github.com/oakwood-commons/jsassist/internal/config"
	"github.com/oakwood-commons/jsassist/internal/limiter"
	"github.com/oakwood-commons/jsassist/internal/present"
	"github.com/oakwood-commons/jsassist/pkg/logger"
)

var (
	completeLine       string
	completeCursor     int // -1 = end of line
	completeLineNumber uint32
	completeOutput     string // empty = config
	completeWidth      int    // 0 = config
	limitRecords       int
	offsetRecords      int
	tailRecords        int
)

var completeCmd = &cobra.Command{
	Use:   "complete [script-file|-]",
	Short: "Propose completions for a line typed after a script",
	Long: `Evaluates the committed script (a file, "-" for stdin, or nothing) and proposes
completions for --line at --cursor. The cursor is a byte offset into the line and
defaults to its end; text after the cursor is ignored.

Output formats:
  text     aligned rows of proposal, kind and context
  json     the proposals with the replacement offset and evaluation status
  lsp      an LSP CompletionList whose text edits target --line-number
  encoded  one "text|kind|context" record per line`,
	Example: `  jsassist complete session.js --line 'p.tr'
  jsassist complete --line 'var c = new geom.' -o json
  jsassist complete - --line 'print(b.app' --cursor 10 -o lsp --line-number 4`,
	Args: cobra.MaximumNArgs(1),
	RunE: runComplete,
}

func runComplete(cmd *cobra.Command, args []string) error {
	ctx := rootCtx
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	format := cfg.Output.Format
	if completeOutput != "" {
		format = completeOutput
	}
	width := cfg.Output.PreviewWidth
	if completeWidth != 0 {
		width = completeWidth
	}
	lim := limiter.Config{Limit: cfg.Output.Limit, Offset: offsetRecords, Tail: tailRecords}
	if cmd.Flags().Changed("limit") || tailRecords > 0 {
		lim.Limit = limitRecords
	}
	if err := lim.Validate(); err != nil {
		return err
	}

	src, err := readScript(ctx, args)
	if err != nil {
		return err
	}
	a, err := newAssistant(ctx, cfg, assistantOverrides{})
	if err != nil {
		return err
	}

	cursor := completeCursor
	if cursor < 0 {
		cursor = len(completeLine)
	}
	req := completion.Request{Script: src, Line: completeLine, Cursor: cursor}
	res, err := a.Complete(ctx, req)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).V(1).Info("complete",
		logger.LineKey, completeLine,
		logger.CursorKey, cursor,
		logger.CandidatesKey, len(res.Candidates))

	shown := limiter.Apply(lim, res.Candidates)
	edit := present.Edit{Line: completeLineNumber, Text: completeLine, Cursor: cursor}
	if err := renderCompletion(cmd.OutOrStdout(), format, res, shown, edit, width); err != nil {
		return err
	}
	if !quiet && (format == config.FormatText || format == config.FormatEncoded) {
		fmt.Fprintf(cmd.ErrOrStderr(), "status: %s\n", res.Status)
	}
	return nil
}

func init() { //nolint:gochecknoinits
	completeCmd.Flags().StringVarP(&completeLine, "line", "l", "", "the unfinished line, from its start")
	completeCmd.Flags().IntVarP(&completeCursor, "cursor", "c", -1, "byte offset of the cursor in --line (default end of line)")
	completeCmd.Flags().Uint32Var(&completeLineNumber, "line-number", 0, "zero-based line of --line in the editor buffer (lsp output)")
	completeCmd.Flags().StringVarP(&completeOutput, "output", "o", "", "output format: text|json|lsp|encoded (default from config)")
	completeCmd.Flags().IntVar(&completeWidth, "width", 0, "preview columns for long proposals (default from config; negative = unlimited)")
	completeCmd.Flags().IntVar(&limitRecords, "limit", 0, "show at most N proposals (default from config)")
	completeCmd.Flags().IntVar(&offsetRecords, "offset", 0, "skip the first N proposals")
	completeCmd.Flags().IntVar(&tailRecords, "tail", 0, "show the last N proposals (ignores --offset and --limit)")
	_ = completeCmd.MarkFlagRequired("line")
}
