package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/oakwood-commons/jsassist/internal/completion"
	"github.com/oakwood-commons/jsassist/internal/limiter"
)

const pointScript = "var p = new geom.Point(3, 4);\n"

func decodeCompletion(t *testing.T, out string) completionJSON {
	t.Helper()
	var doc completionJSON
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	return doc
}

func textsOf(cs []completion.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Text
	}
	return out
}

func TestCompleteText(t *testing.T) {
	script := writeScript(t, pointScript)
	out, errOut, err := runCLI(t, "complete", script, "--line", "p.tr")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "p.translate(  Method"), lines[0])
	assert.Equal(t, "status: Parsed successfully.\n", errOut)
}

func TestCompleteQuietSkipsStatus(t *testing.T) {
	script := writeScript(t, pointScript)
	_, errOut, err := runCLI(t, "complete", script, "--line", "p.tr", "-q")
	require.NoError(t, err)
	assert.Empty(t, errOut)
}

func TestCompleteJSON(t *testing.T) {
	script := writeScript(t, pointScript)
	out, _, err := runCLI(t, "complete", script, "--line", "var q = p.", "-o", "json")
	require.NoError(t, err)

	doc := decodeCompletion(t, out)
	assert.Equal(t, 8, doc.ReplaceFrom)
	assert.Equal(t, completion.StatusOK, doc.Status)
	assert.Equal(t, len(doc.Candidates), doc.Total)
	assert.Contains(t, doc.Candidates, completion.Candidate{Text: "p.x", Kind: completion.KindField, Context: "geom.Point"})
	assert.Contains(t, textsOf(doc.Candidates), "p.distance(")
}

func TestCompleteCursorIgnoresTrailingText(t *testing.T) {
	script := writeScript(t, pointScript)
	out, _, err := runCLI(t, "complete", script, "--line", "p.tr + 1", "--cursor", "4", "-o", "json")
	require.NoError(t, err)
	doc := decodeCompletion(t, out)
	assert.Equal(t, []string{"p.translate("}, textsOf(doc.Candidates))
}

func TestCompleteLSP(t *testing.T) {
	script := writeScript(t, pointScript)
	out, _, err := runCLI(t, "complete", script, "--line", "var d = p.di", "-o", "lsp", "--line-number", "3")
	require.NoError(t, err)

	var list protocol.CompletionList
	require.NoError(t, json.Unmarshal([]byte(out), &list), out)
	require.Len(t, list.Items, 1)
	item := list.Items[0]
	assert.Equal(t, "p.distance(", item.Label)
	assert.Equal(t, protocol.CompletionItemKindMethod, item.Kind)
	require.NotNil(t, item.TextEdit)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 3, Character: 8},
		End:   protocol.Position{Line: 3, Character: 12},
	}, item.TextEdit.Range)
	assert.False(t, list.IsIncomplete)
}

func TestCompleteEncoded(t *testing.T) {
	out, _, err := runCLI(t, "complete", "--line", "geom.Point.OR", "-o", "encoded")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	c, err := completion.Decode(lines[0])
	require.NoError(t, err)
	assert.Equal(t, "geom.Point.ORIGIN", c.Text)
	assert.Equal(t, completion.KindStaticField, c.Kind)
}

func TestCompleteFromStdin(t *testing.T) {
	resetRootCmdState()
	stdinReader = strings.NewReader("var greeting = 'hi';")
	// runCLI resets stdinReader, so drive the command directly.
	var out strings.Builder
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&strings.Builder{})
	rootCmd.SetArgs([]string{"complete", "-", "--line", "gree", "-o", "json"})
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetRootCmdState()
	})
	require.NoError(t, rootCmd.Execute())

	doc := decodeCompletion(t, out.String())
	assert.Equal(t, []string{"greeting"}, textsOf(doc.Candidates))
}

func TestCompleteReportsScriptErrors(t *testing.T) {
	script := writeScript(t, "var ok = 1;\nthrow new Error('boom');\n")
	out, errOut, err := runCLI(t, "complete", script, "--line", "o")
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
	assert.Equal(t, "status: Error: boom\n", errOut)
}

func TestCompleteLimiting(t *testing.T) {
	script := writeScript(t, pointScript)

	out, _, err := runCLI(t, "complete", script, "--line", "p.", "-o", "json", "--limit", "2")
	require.NoError(t, err)
	doc := decodeCompletion(t, out)
	assert.Len(t, doc.Candidates, 2)
	assert.Greater(t, doc.Total, 2)

	out, _, err = runCLI(t, "complete", script, "--line", "p.", "-o", "json", "--tail", "1")
	require.NoError(t, err)
	tail := decodeCompletion(t, out)
	require.Len(t, tail.Candidates, 1)

	out, _, err = runCLI(t, "complete", script, "--line", "p.", "-o", "json")
	require.NoError(t, err)
	all := decodeCompletion(t, out)
	assert.Equal(t, all.Candidates[len(all.Candidates)-1], tail.Candidates[0])

	_, _, err = runCLI(t, "complete", script, "--line", "p.", "--limit", "1", "--tail", "1")
	assert.True(t, errors.Is(err, limiter.ErrInvalid), err)
}

func TestCompleteConfigLimitAndFormat(t *testing.T) {
	home, _ := writeUserConfig(t, "output:\n  format: json\n  limit: 1\n")
	script := writeScript(t, pointScript)
	out, _, err := runCLIIn(t, home, "complete", script, "--line", "p.")
	require.NoError(t, err)
	doc := decodeCompletion(t, out)
	assert.Len(t, doc.Candidates, 1)
}

func TestCompleteUniverseFile(t *testing.T) {
	universeFile := writeScript(t, "# extra names\nutil.Helper\n")
	home, _ := writeUserConfig(t, "universe:\n  file: "+universeFile+"\n")
	out, _, err := runCLIIn(t, home, "complete", "--line", "ut", "-o", "json")
	require.NoError(t, err)
	doc := decodeCompletion(t, out)
	assert.Equal(t, []completion.Candidate{{Text: "util.", Kind: completion.KindPackage, Context: "util"}}, doc.Candidates)
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing_line", args: []string{"complete"}},
		{name: "bad_format", args: []string{"complete", "--line", "p.", "-o", "xml"}},
		{name: "bad_cursor", args: []string{"complete", "--line", "p.", "--cursor", "9"}},
		{name: "missing_script", args: []string{"complete", "/does/not/exist.js", "--line", "p."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestRenderCompletionText(t *testing.T) {
	var b strings.Builder
	cs := []completion.Candidate{
		{Text: "obj.getName(", Kind: completion.KindMethod, Context: "(Native object)"},
		{Text: "obj.name", Kind: completion.KindField},
		{Text: "{\n\trun: function ( ) { }\n})", Kind: completion.KindInterfaceStub, Context: "lang.Runnable"},
	}
	require.NoError(t, renderCompletionText(&b, cs, 14))
	assert.Equal(t, strings.Join([]string{
		"obj.getName(    Method                    (Native object)",
		"obj.name        Field",
		"{ run: functi…  Interface implementation  lang.Runnable",
	}, "\n")+"\n", b.String())
}
