// Package hosttype describes Go types exposed to scripts: their constructors,
// static members and instance members, and how they are named on the script side.
package hosttype

import (
	"reflect"
	"sort"
	"strings"
)

// Member is a field or a callable (method, static method, constructor) of a host type.
type Member struct {
	Name   string         // script-facing name
	GoName string         // Go identifier; empty for registered statics
	Owner  string         // qualified name of the declaring type
	Type   reflect.Type   // field type; nil for callables
	Params []reflect.Type // callable parameter types, receiver excluded
	Value  reflect.Value  // static field value or static/constructor function
}

// Signature renders the member like "geom.Canvas.draw(geom.Point, geom.Point)".
// Constructors render as "geom.Point(int, int)".
func (m Member) Signature(names func(reflect.Type) string) string {
	head := m.Owner + "." + m.Name
	if m.Name == m.Owner {
		head = m.Owner
	}
	if m.Type != nil {
		return names(m.Type) + " " + head
	}
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = names(p)
	}
	return head + "(" + strings.Join(params, ", ") + ")"
}

// Type is a host type registered under a qualified dot-separated name.
type Type struct {
	Name          string
	GoType        reflect.Type
	Constructors  []Member
	StaticFields  []Member
	StaticMethods []Member
}

// SimpleName returns the segment after the last dot.
func (t *Type) SimpleName() string {
	return t.Name[strings.LastIndex(t.Name, ".")+1:]
}

// Package returns the qualified name without its last segment.
func (t *Type) Package() string {
	if i := strings.LastIndex(t.Name, "."); i >= 0 {
		return t.Name[:i]
	}
	return ""
}

// IsInterface reports whether scripts implement the type rather than construct it.
func (t *Type) IsInterface() bool {
	return t.GoType.Kind() == reflect.Interface
}

// Fields returns the exported instance fields of a struct type, sorted by name.
func (t *Type) Fields() []Member {
	return structFields(t.Name, t.GoType)
}

// Methods returns the instance methods of the type, sorted by name. For struct
// types the pointer method set is used, since scripts hold pointers.
func (t *Type) Methods() []Member {
	rt := t.GoType
	if rt.Kind() != reflect.Interface && rt.Kind() != reflect.Ptr {
		rt = reflect.PointerTo(rt)
	}
	return methodSet(t.Name, rt)
}

// MethodsNamed returns the instance methods with the given script name.
func (t *Type) MethodsNamed(name string) []Member {
	return named(t.Methods(), name)
}

// StaticMethodsNamed returns every registered overload of a static method.
func (t *Type) StaticMethodsNamed(name string) []Member {
	return named(t.StaticMethods, name)
}

func named(members []Member, name string) []Member {
	var out []Member
	for _, m := range members {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

// MembersOf lists exported fields and methods of an arbitrary Go value's type.
// owner labels the members; it is usually the registered name or the Go type string.
func MembersOf(owner string, rt reflect.Type) (fields, methods []Member) {
	return structFields(owner, rt), methodSet(owner, rt)
}

func structFields(owner string, rt reflect.Type) []Member {
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil
	}
	var out []Member
	for _, f := range reflect.VisibleFields(rt) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		out = append(out, Member{Name: JSName(f.Name), GoName: f.Name, Owner: owner, Type: f.Type})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func methodSet(owner string, rt reflect.Type) []Member {
	var out []Member
	receiver := rt.Kind() != reflect.Interface
	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)
		if !m.IsExported() {
			continue
		}
		ft := m.Type
		start := 0
		if receiver {
			start = 1
		}
		params := make([]reflect.Type, 0, ft.NumIn()-start)
		for j := start; j < ft.NumIn(); j++ {
			params = append(params, ft.In(j))
		}
		out = append(out, Member{Name: JSName(m.Name), GoName: m.Name, Owner: owner, Params: params})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
