// Package hostlib is the default catalog of host types exposed to scripts by
// the jsassist command line.
package hostlib

import (
	"fmt"
	"math"
	"strings"

	"github.com/oakwood-commons/jsassist/internal/hosttype"
)

// Point is a position in the plane.
type Point struct {
	X, Y float64
}

// NewPoint returns the point (x, y).
func NewPoint(x, y float64) *Point { return &Point{X: x, Y: y} }

// Translate returns p moved by (dx, dy).
func (p *Point) Translate(dx, dy float64) *Point { return &Point{X: p.X + dx, Y: p.Y + dy} }

// Distance returns the euclidean distance between p and o.
func (p *Point) Distance(o *Point) float64 { return math.Hypot(p.X-o.X, p.Y-o.Y) }

func (p *Point) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

// Shape is implemented by scripts that describe custom figures.
type Shape interface {
	Area() float64
	Bounds() *Rect
	Contains(p *Point) bool
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min, Max Point
}

// NewRect returns the rectangle at (x, y) with the given size.
func NewRect(x, y, w, h float64) *Rect {
	return RectOf(NewPoint(x, y), NewPoint(x+w, y+h))
}

// RectOf returns the smallest rectangle holding both corners.
func RectOf(a, b *Point) *Rect {
	return &Rect{
		Min: Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

func (r *Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r *Rect) Height() float64 { return r.Max.Y - r.Min.Y }
func (r *Rect) Area() float64   { return r.Width() * r.Height() }
func (r *Rect) Bounds() *Rect   { return r }

// Contains reports whether p lies inside r, edges included.
func (r *Rect) Contains(p *Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Union returns the smallest rectangle covering r and o.
func (r *Rect) Union(o *Rect) *Rect {
	return RectOf(
		NewPoint(math.Min(r.Min.X, o.Min.X), math.Min(r.Min.Y, o.Min.Y)),
		NewPoint(math.Max(r.Max.X, o.Max.X), math.Max(r.Max.Y, o.Max.Y)),
	)
}

// Runnable is a unit of work a script hands to the host.
type Runnable interface {
	Run()
}

// Builder accumulates text. Scripts chain its methods.
type Builder struct {
	sb strings.Builder
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder { return &Builder{} }

// NewBuilderOf returns a builder holding s.
func NewBuilderOf(s string) *Builder {
	b := &Builder{}
	b.sb.WriteString(s)
	return b
}

func (b *Builder) Append(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

func (b *Builder) AppendLine(s string) *Builder {
	b.sb.WriteString(s)
	b.sb.WriteByte('\n')
	return b
}

func (b *Builder) Len() int       { return b.sb.Len() }
func (b *Builder) Reset()         { b.sb.Reset() }
func (b *Builder) String() string { return b.sb.String() }

// Register adds the catalog to r.
func Register(r *hosttype.Registry) error {
	if _, err := hosttype.Register[Point](r, "geom.Point",
		hosttype.WithConstructor(NewPoint),
		hosttype.WithConstructor(func() *Point { return &Point{} }),
		hosttype.WithStaticField("ORIGIN", &Point{}),
		hosttype.WithStaticMethod("of", NewPoint),
	); err != nil {
		return err
	}
	if _, err := hosttype.Register[Rect](r, "geom.Rect",
		hosttype.WithConstructor(NewRect),
		hosttype.WithStaticMethod("of", RectOf),
	); err != nil {
		return err
	}
	if _, err := hosttype.Register[Shape](r, "geom.Shape"); err != nil {
		return err
	}
	if _, err := hosttype.Register[Runnable](r, "lang.Runnable"); err != nil {
		return err
	}
	if _, err := hosttype.Register[Builder](r, "text.Builder",
		hosttype.WithConstructor(NewBuilder),
		hosttype.WithConstructor(NewBuilderOf),
		hosttype.WithStaticField("NEWLINE", "\n"),
		hosttype.WithStaticMethod("join", strings.Join),
	); err != nil {
		return err
	}
	return nil
}

// New returns a registry holding the catalog.
func New() (*hosttype.Registry, error) {
	r := hosttype.NewRegistry()
	if err := Register(r); err != nil {
		return nil, err
	}
	return r, nil
}
