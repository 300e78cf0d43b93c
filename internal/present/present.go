// Package present renders completion candidates for people and editors:
// list previews, documentation popups and LSP completion items.
package present

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mattn/go-runewidth"
	"go.lsp.dev/protocol"

	"github.com/oakwood-commons/jsassist/internal/completion"
)

// DefaultPreviewWidth is the column budget of a list preview.
const DefaultPreviewWidth = 60

const ellipsis = "…"

// Preview flattens text onto one line and truncates it to width columns.
func Preview(text string, width int) string {
	flat := strings.Join(strings.Fields(text), " ")
	if width <= 0 || runewidth.StringWidth(flat) <= width {
		return flat
	}
	return runewidth.Truncate(flat, width, ellipsis)
}

// Tooltip is the hint shown for a highlighted candidate.
func Tooltip(c completion.Candidate) string {
	return fmt.Sprintf("Press Enter to insert %q", c.Text)
}

// Documentation describes a candidate in Markdown: its kind, where it comes
// from and the exact text it inserts.
func Documentation(c completion.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n---\n\n", c.Kind)
	if c.Context != "" {
		fmt.Fprintf(&b, "`%s`\n\n", c.Context)
	}
	fmt.Fprintf(&b, "Completion proposal:\n\n```javascript\n%s\n```\n", c.Text)
	return b.String()
}

// DocumentationHTML renders Documentation for HTML popups.
func DocumentationHTML(c completion.Candidate) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(Documentation(c)))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.Render(doc, renderer))
}

var lspKinds = map[completion.Kind]protocol.CompletionItemKind{
	completion.KindField:         protocol.CompletionItemKindField,
	completion.KindMethod:        protocol.CompletionItemKindMethod,
	completion.KindStaticField:   protocol.CompletionItemKindConstant,
	completion.KindStaticMethod:  protocol.CompletionItemKindFunction,
	completion.KindConstructor:   protocol.CompletionItemKindConstructor,
	completion.KindClass:         protocol.CompletionItemKindClass,
	completion.KindInterface:     protocol.CompletionItemKindInterface,
	completion.KindPackage:       protocol.CompletionItemKindModule,
	completion.KindObject:        protocol.CompletionItemKindVariable,
	completion.KindFunction:      protocol.CompletionItemKindFunction,
	completion.KindInterfaceStub: protocol.CompletionItemKindSnippet,
}

// LSPKind maps a candidate kind to the closest LSP item kind.
func LSPKind(k completion.Kind) protocol.CompletionItemKind {
	if lk, ok := lspKinds[k]; ok {
		return lk
	}
	return protocol.CompletionItemKindText
}

// Edit locates a completion inside an editor buffer.
type Edit struct {
	Line   uint32 // zero-based line of the request
	Text   string // the full line
	Cursor int    // byte offset of the cursor in Text
}

// Range converts the byte span [from, e.Cursor) into an LSP range, whose
// characters count UTF-16 code units.
func (e Edit) Range(from int) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: e.Line, Character: utf16Len(e.Text[:from])},
		End:   protocol.Position{Line: e.Line, Character: utf16Len(e.Text[:e.Cursor])},
	}
}

// Item builds an LSP completion item replacing the range from replaceFrom to
// the cursor with the candidate text. order keeps the engine's ordering.
func Item(c completion.Candidate, e Edit, replaceFrom, order, previewWidth int) protocol.CompletionItem {
	return protocol.CompletionItem{
		Label:  Preview(c.Text, previewWidth),
		Kind:   LSPKind(c.Kind),
		Detail: c.Context,
		Documentation: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: Documentation(c),
		},
		FilterText:       c.Text,
		SortText:         fmt.Sprintf("%05d", order),
		InsertTextFormat: protocol.InsertTextFormatPlainText,
		TextEdit: &protocol.TextEdit{
			Range:   e.Range(replaceFrom),
			NewText: c.Text,
		},
	}
}

// List converts a completion result for the request at e.
func List(res *completion.Result, e Edit, previewWidth int) *protocol.CompletionList {
	items := make([]protocol.CompletionItem, 0, len(res.Candidates))
	for i, c := range res.Candidates {
		items = append(items, Item(c, e, res.ReplaceFrom, i, previewWidth))
	}
	return &protocol.CompletionList{Items: items}
}

func utf16Len(s string) uint32 {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return uint32(n)
}
