package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/jsassist/internal/completion"
	"github.com/oakwood-commons/jsassist/internal/config"
	"github.com/oakwood-commons/jsassist/internal/present"
)

// completionJSON is the -o json document.
type completionJSON struct {
	ReplaceFrom int                    `json:"replaceFrom"`
	Status      string                 `json:"status"`
	Total       int                    `json:"total"`
	Candidates  []completion.Candidate `json:"candidates"`
}

// renderCompletion writes res in the given format. shown is the limited
// slice of res.Candidates; total counts are taken from res.
func renderCompletion(w io.Writer, format string, res *completion.Result, shown []completion.Candidate, edit present.Edit, previewWidth int) error {
	switch format {
	case config.FormatText:
		return renderCompletionText(w, shown, previewWidth)
	case config.FormatJSON:
		if shown == nil {
			shown = []completion.Candidate{}
		}
		return writeJSON(w, completionJSON{
			ReplaceFrom: res.ReplaceFrom,
			Status:      res.Status,
			Total:       len(res.Candidates),
			Candidates:  shown,
		})
	case config.FormatLSP:
		limited := *res
		limited.Candidates = shown
		list := present.List(&limited, edit, previewWidth)
		list.IsIncomplete = len(shown) < len(res.Candidates)
		return writeJSON(w, list)
	case config.FormatEncoded:
		for _, line := range completion.EncodeAll(shown) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	default:
		return unsupportedOutput(format, config.FormatText, config.FormatJSON, config.FormatLSP, config.FormatEncoded)
	}
}

// renderCompletionText prints one aligned row per candidate: the preview,
// the kind and the context.
func renderCompletionText(w io.Writer, cs []completion.Candidate, previewWidth int) error {
	previews := make([]string, len(cs))
	textW, kindW := 0, 0
	for i, c := range cs {
		previews[i] = present.Preview(c.Text, previewWidth)
		textW = max(textW, runewidth.StringWidth(previews[i]))
		kindW = max(kindW, runewidth.StringWidth(c.Kind.String()))
	}
	for i, c := range cs {
		row := runewidth.FillRight(previews[i], textW) + "  " + runewidth.FillRight(c.Kind.String(), kindW)
		if c.Context != "" {
			row += "  " + c.Context
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(row, " ")); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
