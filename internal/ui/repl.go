// Package ui implements the interactive jsassist REPL: a single input line
// with Tab completion over the script committed so far.
package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/cockroachdb/errors"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/oakwood-commons/jsassist/internal/completion"
	"github.com/oakwood-commons/jsassist/internal/limiter"
	"github.com/oakwood-commons/jsassist/internal/present"
	"github.com/oakwood-commons/jsassist/pkg/assist"
)

const (
	defaultMaxVisible = 8
	historyLines      = 10
	footerText        = "tab complete • enter accept/commit • ctrl+t toggle assist • esc quit"
)

// Assistant is what the REPL drives; *assist.Assistant implements it.
type Assistant interface {
	Complete(ctx context.Context, req completion.Request) (*completion.Result, error)
	Evaluate(ctx context.Context, src string) (*completion.Result, error)
	Enabled() bool
	Toggle() bool
}

// Options configures the REPL.
type Options struct {
	Script       string // committed before the first prompt
	Theme        Theme
	PreviewWidth int // candidate preview columns
	MaxVisible   int // candidates listed at once
}

// Model is the bubbletea model of the REPL.
type Model struct {
	ctx       context.Context
	assistant Assistant
	opts      Options
	styles    styles
	input     textinput.Model
	lines     []string

	candidates  []completion.Candidate
	replaceFrom int
	cursor      int // byte cursor the candidates were computed for
	selected    int
	top         int

	status   string
	failed   bool
	width    int
	quitting bool
}

// NewModel creates a REPL model. A non-empty opts.Script is evaluated right away.
func NewModel(ctx context.Context, a Assistant, opts Options) *Model {
	if opts.PreviewWidth <= 0 {
		opts.PreviewWidth = present.DefaultPreviewWidth
	}
	if opts.MaxVisible <= 0 {
		opts.MaxVisible = defaultMaxVisible
	}
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "type script, Tab to complete"
	ti.CharLimit = 2000
	ti.SetWidth(80)
	ti.Focus()

	m := &Model{
		ctx:       ctx,
		assistant: a,
		opts:      opts,
		styles:    newStyles(opts.Theme),
		input:     ti,
	}
	if strings.TrimSpace(opts.Script) != "" {
		m.lines = strings.Split(strings.TrimRight(opts.Script, "\n"), "\n")
		m.evaluate()
	}
	return m
}

// Script returns the committed lines.
func (m *Model) Script() string { return strings.Join(m.lines, "\n") }

// Status returns the last status message.
func (m *Model) Status() string { return m.status }

// Candidates returns the candidates currently listed.
func (m *Model) Candidates() []completion.Candidate { return m.candidates }

// Line returns the text being edited.
func (m *Model) Line() string { return m.input.Value() }

// SetLine replaces the text being edited and moves the cursor to its end.
func (m *Model) SetLine(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
	m.clearCandidates()
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.SetWidth(max(msg.Width-4, 10))
		return m, nil
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			m.quitting = true
			return m, tea.Quit
		case "esc":
			if m.listing() {
				m.clearCandidates()
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.listing() {
				m.move(1)
			} else {
				m.complete()
			}
			return m, nil
		case "shift+tab", "up":
			if m.listing() {
				m.move(-1)
				return m, nil
			}
		case "down":
			if m.listing() {
				m.move(1)
				return m, nil
			}
		case "enter":
			if m.listing() {
				m.accept()
			} else {
				m.commit()
			}
			return m, nil
		case "ctrl+t":
			m.clearCandidates()
			m.failed = false
			if m.assistant.Toggle() {
				m.status = "Code assist is enabled"
			} else {
				m.status = assist.DisabledStatus
			}
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.clearCandidates()
	}
	return m, cmd
}

func (m *Model) listing() bool { return len(m.candidates) > 0 }

func (m *Model) clearCandidates() {
	m.candidates = nil
	m.selected, m.top = 0, 0
}

func (m *Model) complete() {
	line := m.input.Value()
	cursor := byteOffset(line, m.input.Position())
	res, err := m.assistant.Complete(m.ctx, completion.Request{Script: m.Script(), Line: line, Cursor: cursor})
	if err != nil {
		m.fail(err)
		return
	}
	m.setStatus(res)
	if len(res.Candidates) == 0 {
		return
	}
	m.candidates = res.Candidates
	m.replaceFrom = res.ReplaceFrom
	m.cursor = cursor
	m.selected, m.top = 0, 0
}

func (m *Model) move(delta int) {
	n := len(m.candidates)
	m.selected = ((m.selected+delta)%n + n) % n
	if m.selected < m.top {
		m.top = m.selected
	}
	if m.selected >= m.top+m.opts.MaxVisible {
		m.top = m.selected - m.opts.MaxVisible + 1
	}
}

// accept replaces the text between the replacement start and the cursor with
// the selected candidate. Multi-line proposals are flattened onto the line.
func (m *Model) accept() {
	c := m.candidates[m.selected]
	m.clearCandidates()
	line := m.input.Value()
	if m.replaceFrom > m.cursor || m.cursor > len(line) {
		return
	}
	head := line[:m.replaceFrom] + present.Preview(c.Text, 0)
	m.input.SetValue(head + line[m.cursor:])
	m.input.SetCursor(utf8.RuneCountInString(head))
}

func (m *Model) commit() {
	m.lines = append(m.lines, m.input.Value())
	m.input.SetValue("")
	m.evaluate()
}

func (m *Model) evaluate() {
	res, err := m.assistant.Evaluate(m.ctx, m.Script())
	if err != nil {
		m.fail(err)
		return
	}
	m.setStatus(res)
}

func (m *Model) setStatus(res *completion.Result) {
	m.status = res.Status
	m.failed = res.EvalErr != nil
}

func (m *Model) fail(err error) {
	if errors.Is(err, assist.ErrDisabled) {
		m.status, m.failed = assist.DisabledStatus, false
		return
	}
	m.status, m.failed = err.Error(), true
}

func (m *Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	var b strings.Builder
	for _, l := range m.lines[max(len(m.lines)-historyLines, 0):] {
		b.WriteString(m.styles.history.Render("  " + l))
		b.WriteByte('\n')
	}
	b.WriteString(m.styles.prompt.Render("❯ "))
	b.WriteString(m.input.View())
	b.WriteByte('\n')

	if m.listing() {
		m.renderCandidates(&b)
	}

	switch {
	case m.failed:
		b.WriteString(m.styles.statusErr.Render(m.status))
	case m.status == completion.StatusOK:
		b.WriteString(m.styles.statusOK.Render(m.status))
	default:
		b.WriteString(m.styles.status.Render(m.status))
	}
	b.WriteByte('\n')
	b.WriteString(m.styles.footer.Render(footerText))
	return tea.NewView(b.String())
}

func (m *Model) renderCandidates(b *strings.Builder) {
	window := limiter.Apply(limiter.Config{Offset: m.top, Limit: m.opts.MaxVisible}, m.candidates)
	width := 0
	previews := make([]string, len(window))
	for i, c := range window {
		previews[i] = present.Preview(c.Text, m.opts.PreviewWidth)
		width = max(width, runewidth.StringWidth(previews[i]))
	}
	for i, c := range window {
		text := runewidth.FillRight(previews[i], width)
		if m.top+i == m.selected {
			b.WriteString("  " + m.styles.selected.Render(text+"  "+c.Kind.String()))
		} else {
			b.WriteString("  " + m.styles.candidate.Render(text) + "  " + m.styles.kind.Render(c.Kind.String()))
		}
		b.WriteByte('\n')
	}
	if len(m.candidates) > len(window) {
		fmt.Fprintf(b, "  %s\n", m.styles.footer.Render(fmt.Sprintf("%d/%d", m.selected+1, len(m.candidates))))
	}
	if ctx := m.candidates[m.selected].Context; ctx != "" {
		b.WriteString("  " + m.styles.kind.Render(ctx))
		b.WriteByte('\n')
	}
}

// byteOffset converts a rune position in s to a byte offset.
func byteOffset(s string, runePos int) int {
	off := 0
	for i := 0; i < runePos && off < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[off:])
		off += size
	}
	return off
}

// Run starts the REPL on the terminal and returns the final model.
func Run(ctx context.Context, a Assistant, opts Options, teaOpts ...tea.ProgramOption) (*Model, error) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		teaOpts = append(teaOpts, tea.WithWindowSize(w, h))
	}
	m := NewModel(ctx, a, opts)
	final, err := tea.NewProgram(m, teaOpts...).Run()
	if fm, ok := final.(*Model); ok && fm != nil {
		m = fm
	}
	return m, err
}
