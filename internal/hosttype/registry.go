package hosttype

import (
	"reflect"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

var (
	// ErrTypeNotFound is returned when a name does not resolve to a registered type.
	ErrTypeNotFound = errors.New("type not found")
	// ErrInvalidType is returned when a Go type cannot be exposed to scripts.
	ErrInvalidType = errors.New("invalid host type")
	// ErrDuplicateType is returned when a qualified name is registered twice.
	ErrDuplicateType = errors.New("duplicate host type")
)

// Loader resolves a qualified type name to its description.
type Loader interface {
	Load(name string) (*Type, error)
}

// Option customizes a type while it is registered.
type Option func(*Type) error

// WithConstructor adds a constructor. fn must be a function returning the
// type (or a pointer to it), optionally followed by an error.
func WithConstructor(fn any) Option {
	return func(t *Type) error {
		fv := reflect.ValueOf(fn)
		if err := checkFactory(t, fv); err != nil {
			return err
		}
		t.Constructors = append(t.Constructors, Member{
			Name:   t.Name,
			Owner:  t.Name,
			Params: inParams(fv.Type()),
			Value:  fv,
		})
		return nil
	}
}

// WithStaticField exposes value as a static field of the type.
func WithStaticField(name string, value any) Option {
	return func(t *Type) error {
		if name == "" {
			return errors.Wrap(ErrInvalidType, "static field name is empty")
		}
		v := reflect.ValueOf(value)
		if !v.IsValid() {
			return errors.Wrapf(ErrInvalidType, "static field %s.%s has no value", t.Name, name)
		}
		t.StaticFields = append(t.StaticFields, Member{Name: name, Owner: t.Name, Type: v.Type(), Value: v})
		return nil
	}
}

// WithStaticMethod exposes fn as a static method. Registering the same name
// more than once declares overloads; calls dispatch on argument count.
func WithStaticMethod(name string, fn any) Option {
	return func(t *Type) error {
		fv := reflect.ValueOf(fn)
		if fv.Kind() != reflect.Func {
			return errors.Wrapf(ErrInvalidType, "static method %s.%s is a %s, not a func", t.Name, name, fv.Kind())
		}
		t.StaticMethods = append(t.StaticMethods, Member{Name: name, Owner: t.Name, Params: inParams(fv.Type()), Value: fv})
		return nil
	}
}

// Registry holds the host types visible to scripts. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
	byGo  map[reflect.Type]*Type
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]*Type),
		byGo:  make(map[reflect.Type]*Type),
	}
}

// Register adds T under the qualified name. T must be a struct or an interface.
func Register[T any](r *Registry, name string, opts ...Option) (*Type, error) {
	return r.RegisterType(name, reflect.TypeOf((*T)(nil)).Elem(), opts...)
}

// RegisterType adds rt under the qualified name.
func (r *Registry) RegisterType(name string, rt reflect.Type, opts ...Option) (*Type, error) {
	if name == "" || name[0] == '.' || name[len(name)-1] == '.' {
		return nil, errors.Wrapf(ErrInvalidType, "malformed type name %q", name)
	}
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct && rt.Kind() != reflect.Interface {
		return nil, errors.Wrapf(ErrInvalidType, "%s: %s is neither a struct nor an interface", name, rt)
	}
	t := &Type{Name: name, GoType: rt}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	if t.IsInterface() && len(t.Constructors) > 0 {
		return nil, errors.Wrapf(ErrInvalidType, "interface %s cannot have constructors", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[name]; ok {
		return nil, errors.Wrapf(ErrDuplicateType, "%s", name)
	}
	r.types[name] = t
	if _, ok := r.byGo[rt]; !ok {
		r.byGo[rt] = t
	}
	return t, nil
}

// MustRegister is like Register but panics on error. It is meant for
// package-level catalogs whose definitions are static.
func MustRegister[T any](r *Registry, name string, opts ...Option) *Type {
	t, err := Register[T](r, name, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Load returns the type registered under exactly name.
func (r *Registry) Load(name string) (*Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.types[name]; ok {
		return t, nil
	}
	return nil, errors.Wrapf(ErrTypeNotFound, "%q", name)
}

// Lookup finds the registered type for a Go type, dereferencing pointers.
func (r *Registry) Lookup(rt reflect.Type) (*Type, bool) {
	if rt == nil {
		return nil, false
	}
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byGo[rt]
	return t, ok
}

// Names returns every registered qualified name in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for name := range r.types {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Types returns every registered type ordered by name.
func (r *Registry) Types() []*Type {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Type, len(names))
	for i, n := range names {
		out[i] = r.types[n]
	}
	return out
}

// TypeName renders rt for signatures, preferring registered names.
func (r *Registry) TypeName(rt reflect.Type) string {
	if rt.Kind() == reflect.Slice {
		return r.TypeName(rt.Elem()) + "[]"
	}
	if t, ok := r.Lookup(rt); ok {
		return t.Name
	}
	return rt.String()
}

func checkFactory(t *Type, fv reflect.Value) error {
	if fv.Kind() != reflect.Func {
		return errors.Wrapf(ErrInvalidType, "constructor for %s is a %s, not a func", t.Name, fv.Kind())
	}
	ft := fv.Type()
	errType := reflect.TypeOf((*error)(nil)).Elem()
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errType:
	default:
		return errors.Wrapf(ErrInvalidType, "constructor for %s must return the value and an optional error", t.Name)
	}
	out := ft.Out(0)
	if out != t.GoType && !(out.Kind() == reflect.Ptr && out.Elem() == t.GoType) {
		return errors.Wrapf(ErrInvalidType, "constructor for %s returns %s", t.Name, out)
	}
	return nil
}

func inParams(ft reflect.Type) []reflect.Type {
	out := make([]reflect.Type, ft.NumIn())
	for i := range out {
		out[i] = ft.In(i)
	}
	return out
}
