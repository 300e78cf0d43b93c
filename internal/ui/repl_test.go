package ui

import (
	"context"
	"fmt"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jsassist/internal/completion"
	"github.com/oakwood-commons/jsassist/pkg/assist"
)

type fakeAssistant struct {
	enabled   bool
	requests  []completion.Request
	evaluated []string
	result    *completion.Result
	evalErr   error
}

func (f *fakeAssistant) Complete(_ context.Context, req completion.Request) (*completion.Result, error) {
	if !f.enabled {
		return nil, assist.ErrDisabled
	}
	f.requests = append(f.requests, req)
	return f.result, nil
}

func (f *fakeAssistant) Evaluate(_ context.Context, src string) (*completion.Result, error) {
	if !f.enabled {
		return nil, assist.ErrDisabled
	}
	f.evaluated = append(f.evaluated, src)
	res := &completion.Result{Status: completion.StatusOK}
	if f.evalErr != nil {
		res.Status, res.EvalErr = f.evalErr.Error(), f.evalErr
	}
	return res, nil
}

func (f *fakeAssistant) Enabled() bool { return f.enabled }

func (f *fakeAssistant) Toggle() bool {
	f.enabled = !f.enabled
	return f.enabled
}

func press(t *testing.T, m *Model, key tea.KeyPressMsg) {
	t.Helper()
	_, _ = m.Update(key)
}

func view(m *Model) string {
	return ansi.Strip(fmt.Sprint(m.View().Content))
}

func memberResult() *completion.Result {
	return &completion.Result{
		Status: completion.StatusOK,
		Candidates: []completion.Candidate{
			completion.NewCandidate("obj.getName(", completion.KindMethod, "(Native object)"),
			completion.NewCandidate("obj.name", completion.KindField, "(Native object)"),
		},
		ReplaceFrom: 6,
	}
}

func TestTabListsAndEnterAccepts(t *testing.T) {
	fake := &fakeAssistant{enabled: true, result: memberResult()}
	m := NewModel(context.Background(), fake, Options{Script: "var obj = {};"})
	require.Equal(t, []string{"var obj = {};"}, fake.evaluated)

	m.SetLine("print(obj.na")
	press(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	require.Len(t, fake.requests, 1)
	assert.Equal(t, completion.Request{Script: "var obj = {};", Line: "print(obj.na", Cursor: 12}, fake.requests[0])
	require.Len(t, m.Candidates(), 2)

	out := view(m)
	assert.Contains(t, out, "obj.getName(  Method")
	assert.Contains(t, out, "obj.name      Field")
	assert.Contains(t, out, "(Native object)")

	press(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	press(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "print(obj.name", m.Line())
	assert.Empty(t, m.Candidates())
}

func TestEnterCommitsLine(t *testing.T) {
	fake := &fakeAssistant{enabled: true, result: &completion.Result{Status: completion.StatusOK}}
	m := NewModel(context.Background(), fake, Options{})

	m.SetLine("var a = 1;")
	press(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "var a = 1;", m.Script())
	assert.Empty(t, m.Line())
	assert.Equal(t, completion.StatusOK, m.Status())

	fake.evalErr = errors.New("SyntaxError: boom")
	m.SetLine("var (")
	press(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "var a = 1;\nvar (", fake.evaluated[len(fake.evaluated)-1])
	assert.Equal(t, "SyntaxError: boom", m.Status())
	assert.Contains(t, view(m), "SyntaxError: boom")
}

func TestToggleDisablesAssist(t *testing.T) {
	fake := &fakeAssistant{enabled: true, result: memberResult()}
	m := NewModel(context.Background(), fake, Options{})

	press(t, m, tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl})
	assert.Equal(t, assist.DisabledStatus, m.Status())

	m.SetLine("obj.")
	press(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Empty(t, m.Candidates())
	assert.Equal(t, assist.DisabledStatus, m.Status())

	press(t, m, tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl})
	press(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Len(t, m.Candidates(), 2)
}

func TestEscapeClosesListThenQuits(t *testing.T) {
	fake := &fakeAssistant{enabled: true, result: memberResult()}
	m := NewModel(context.Background(), fake, Options{})
	m.SetLine("obj.")
	press(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	require.NotEmpty(t, m.Candidates())

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
	assert.Empty(t, m.Candidates())

	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestCandidateWindowScrolls(t *testing.T) {
	res := &completion.Result{Status: completion.StatusOK}
	for i := 0; i < 5; i++ {
		res.Candidates = append(res.Candidates, completion.NewCandidate(fmt.Sprintf("item%d", i), completion.KindObject, "(Engine scope)"))
	}
	fake := &fakeAssistant{enabled: true, result: res}
	m := NewModel(context.Background(), fake, Options{MaxVisible: 2})
	m.SetLine("item")
	press(t, m, tea.KeyPressMsg{Code: tea.KeyTab})

	out := view(m)
	assert.Contains(t, out, "item1")
	assert.NotContains(t, out, "item2")
	assert.Contains(t, out, "1/5")

	for i := 0; i < 3; i++ {
		press(t, m, tea.KeyPressMsg{Code: tea.KeyDown})
	}
	out = view(m)
	assert.Contains(t, out, "item3")
	assert.NotContains(t, out, "item1")
	assert.Contains(t, out, "4/5")

	press(t, m, tea.KeyPressMsg{Code: tea.KeyUp})
	press(t, m, tea.KeyPressMsg{Code: tea.KeyUp})
	press(t, m, tea.KeyPressMsg{Code: tea.KeyUp})
	press(t, m, tea.KeyPressMsg{Code: tea.KeyUp})
	out = view(m)
	assert.Contains(t, out, "item4", "wraps to the last candidate")
	assert.Contains(t, out, "5/5")
}

func TestByteOffset(t *testing.T) {
	assert.Equal(t, 0, byteOffset("café", 0))
	assert.Equal(t, 5, byteOffset("café", 4))
	assert.Equal(t, 5, byteOffset("café", 9))
	assert.Equal(t, 2, byteOffset("a.é", 2))
}

func TestThemes(t *testing.T) {
	assert.Equal(t, []string{"dark", "light", "plain"}, ThemeNames())
	_, err := ThemeByName("neon")
	assert.Error(t, err)
	plain, err := ThemeByName("plain")
	require.NoError(t, err)
	assert.Nil(t, plain.PromptFG)
}
