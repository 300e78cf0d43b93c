package hostlib

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRuntime(t *testing.T) *goja.Runtime {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())
	require.NoError(t, r.Install(vm))
	return vm
}

func TestCatalog(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	assert.Equal(t, []string{"geom.Point", "geom.Rect", "geom.Shape", "lang.Runnable", "text.Builder"}, r.Names())

	shape, err := r.Load("geom.Shape")
	require.NoError(t, err)
	assert.True(t, shape.IsInterface())

	builder, err := r.Load("text.Builder")
	require.NoError(t, err)
	assert.Len(t, builder.Constructors, 2)

	assert.Error(t, Register(r), "registering twice")
}

func TestScriptsUseCatalog(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want any
	}{
		{"point distance", "new geom.Point(3, 4).distance(geom.Point.ORIGIN)", 5.0},
		{"static factory", "geom.Point.of(1, 2).translate(1, 1).y", 3.0},
		{"rect area", "new geom.Rect(0, 0, 2, 3).area()", 6.0},
		{"rect contains", "geom.Rect.of(geom.Point.of(0, 0), geom.Point.of(2, 2)).contains(geom.Point.of(1, 1))", true},
		{"builder", `new text.Builder("a").append("b").appendLine("c").string()`, "abc\n"},
		{"join", `text.Builder.join(["a", "b"], "-")`, "a-b"},
		{"runnable", "var ran = false; new lang.Runnable({run: function () { ran = true; }}).run(); ran", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newRuntime(t)
			v, err := vm.RunString(tt.src)
			require.NoError(t, err)
			assert.EqualValues(t, tt.want, v.Export())
		})
	}
}

func TestRectGeometry(t *testing.T) {
	r := NewRect(1, 1, 2, 2)
	assert.Equal(t, 2.0, r.Width())
	assert.True(t, r.Contains(NewPoint(3, 3)))
	assert.False(t, r.Contains(NewPoint(3.5, 1)))

	u := r.Union(NewRect(-1, 0, 1, 1))
	assert.Equal(t, Point{X: -1, Y: 0}, u.Min)
	assert.Equal(t, Point{X: 3, Y: 3}, u.Max)
	assert.Equal(t, "(1, 2)", NewPoint(1, 2).String())
}
