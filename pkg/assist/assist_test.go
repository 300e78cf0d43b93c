package assist

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jsassist/internal/completion"
)

type fakeCompleter struct {
	calls int
	res   *completion.Result
	err   error
}

func (f *fakeCompleter) Complete(context.Context, completion.Request) (*completion.Result, error) {
	f.calls++
	return f.res, f.err
}

func (f *fakeCompleter) Evaluate(context.Context, string) (*completion.Result, error) {
	f.calls++
	return f.res, f.err
}

type recorder []string

func (r *recorder) Status(msg string) { *r = append(*r, msg) }

func TestDisabledNeverReachesEngine(t *testing.T) {
	fake := &fakeCompleter{res: &completion.Result{Status: completion.StatusOK}}
	var statuses recorder
	a, err := New(WithCompleter(fake), WithStatusSink(&statuses), WithEnabled(false))
	require.NoError(t, err)

	_, err = a.Complete(context.Background(), Request{Line: "a", Cursor: 1})
	assert.True(t, errors.Is(err, ErrDisabled))
	_, err = a.Evaluate(context.Background(), "1")
	assert.True(t, errors.Is(err, ErrDisabled))
	assert.Zero(t, fake.calls)
	assert.Equal(t, recorder{DisabledStatus, DisabledStatus}, statuses)

	assert.True(t, a.Toggle())
	res, err := a.Complete(context.Background(), Request{Line: "a", Cursor: 1})
	require.NoError(t, err)
	assert.Equal(t, completion.StatusOK, res.Status)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, completion.StatusOK, statuses[len(statuses)-1])

	a.SetEnabled(false)
	assert.False(t, a.Enabled())
}

func TestEngineErrorsPassThrough(t *testing.T) {
	boom := errors.New("boom")
	var statuses recorder
	a, err := New(WithCompleter(&fakeCompleter{err: boom}), WithStatusSink(&statuses))
	require.NoError(t, err)

	_, err = a.Complete(context.Background(), Request{})
	assert.True(t, errors.Is(err, boom))
	assert.Empty(t, statuses)
}

func TestDefaultAssistant(t *testing.T) {
	var statuses recorder
	a, err := New(WithStatusSink(StatusFunc(func(msg string) { statuses.Status(msg) })), WithEvalTimeout(time.Second))
	require.NoError(t, err)

	line := "p.tr"
	res, err := a.Complete(context.Background(), Request{Script: "var p = new geom.Point(1, 2);", Line: line, Cursor: len(line)})
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "p.translate(", res.Candidates[0].Text)
	assert.Equal(t, completion.KindMethod, res.Candidates[0].Kind)
	assert.Equal(t, recorder{completion.StatusOK}, statuses)

	res, err = a.Evaluate(context.Background(), "nope(")
	require.NoError(t, err)
	assert.NotEqual(t, completion.StatusOK, res.Status)
	assert.Equal(t, res.Status, statuses[len(statuses)-1])
}

func TestEvalTimeoutReportsStatus(t *testing.T) {
	a, err := New(WithEvalTimeout(20 * time.Millisecond))
	require.NoError(t, err)

	res, err := a.Evaluate(context.Background(), "while (true) {}")
	require.NoError(t, err)
	assert.Error(t, res.EvalErr)
	assert.Contains(t, res.Status, "interrupted")
}

func TestUniverseFilter(t *testing.T) {
	a, err := New(WithUniverseFilter(`pkg == "geom"`))
	require.NoError(t, err)

	var names []string
	for _, typ := range a.Types() {
		names = append(names, typ.Name)
	}
	assert.Equal(t, []string{"geom.Point", "geom.Rect", "geom.Shape"}, names)

	_, err = New(WithUniverseFilter(`pkg +`))
	assert.Error(t, err)
}
