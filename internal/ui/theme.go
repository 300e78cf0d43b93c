package ui

import (
	"image/color"
	"sort"

	"charm.land/lipgloss/v2"
	"github.com/cockroachdb/errors"
)

// Theme defines the colors of the REPL.
type Theme struct {
	PromptFG      color.Color // prompt marker
	HistoryFG     color.Color // committed script lines
	CandidateFG   color.Color // candidate preview
	KindFG        color.Color // candidate kind column
	SelectedFG    color.Color // highlighted candidate
	SelectedBG    color.Color
	StatusColor   color.Color // neutral status text
	StatusError   color.Color // evaluation failures
	StatusSuccess color.Color // clean evaluation
	FooterFG      color.Color // key hints
}

var themes = map[string]Theme{
	"dark": {
		PromptFG:      lipgloss.Color("81"),  // cyan accent
		HistoryFG:     lipgloss.Color("246"), // muted gray
		CandidateFG:   lipgloss.Color("250"),
		KindFG:        lipgloss.Color("244"),
		SelectedFG:    lipgloss.Color("250"),
		SelectedBG:    lipgloss.Color("24"), // deep teal
		StatusColor:   lipgloss.Color("81"),
		StatusError:   lipgloss.Color("203"), // soft red
		StatusSuccess: lipgloss.Color("114"), // mint
		FooterFG:      lipgloss.Color("244"),
	},
	"light": {
		PromptFG:      lipgloss.Color("25"),
		HistoryFG:     lipgloss.Color("240"),
		CandidateFG:   lipgloss.Color("235"),
		KindFG:        lipgloss.Color("242"),
		SelectedFG:    lipgloss.Color("231"),
		SelectedBG:    lipgloss.Color("31"),
		StatusColor:   lipgloss.Color("25"),
		StatusError:   lipgloss.Color("160"),
		StatusSuccess: lipgloss.Color("28"),
		FooterFG:      lipgloss.Color("242"),
	},
	"plain": {},
}

// ThemeNames lists the built-in themes.
func ThemeNames() []string {
	out := make([]string, 0, len(themes))
	for name := range themes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ThemeByName returns a built-in theme.
func ThemeByName(name string) (Theme, error) {
	if t, ok := themes[name]; ok {
		return t, nil
	}
	return Theme{}, errors.Newf("unknown theme %q", name)
}

type styles struct {
	prompt, history, candidate, kind, selected, status, statusErr, statusOK, footer lipgloss.Style
}

func newStyles(t Theme) styles {
	fg := func(c color.Color) lipgloss.Style {
		s := lipgloss.NewStyle()
		if c != nil {
			s = s.Foreground(c)
		}
		return s
	}
	sel := fg(t.SelectedFG)
	if t.SelectedBG != nil {
		sel = sel.Background(t.SelectedBG)
	} else {
		sel = sel.Reverse(true)
	}
	return styles{
		prompt:    fg(t.PromptFG).Bold(true),
		history:   fg(t.HistoryFG),
		candidate: fg(t.CandidateFG),
		kind:      fg(t.KindFG).Italic(true),
		selected:  sel,
		status:    fg(t.StatusColor),
		statusErr: fg(t.StatusError),
		statusOK:  fg(t.StatusSuccess),
		footer:    fg(t.FooterFG),
	}
}
