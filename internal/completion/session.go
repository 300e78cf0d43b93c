package completion

import (
	"reflect"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/dop251/goja"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/jsassist/internal/bridge"
	"github.com/oakwood-commons/jsassist/internal/hosttype"
	"github.com/oakwood-commons/jsassist/internal/script"
)

type targetKind int

const (
	noTarget       targetKind = iota
	sentinelTarget            // a call or type reference owns the line
	typeTarget                // a host type, for static access
	valueTarget               // a live value
)

// target is the receiver identified for the current line.
type target struct {
	kind  targetKind
	typ   *hosttype.Type
	value goja.Value
}

func (t target) set() bool { return t.kind != noTarget }

// session is the per-request view rules read from. It never changes bindings.
type session struct {
	engine   *Engine
	log      logr.Logger
	scope    *script.Scope
	bindings map[string]goja.Value
	binder   *binder
}

// resolveType loads name exactly, then falls back to the first universe entry
// ending in "." + name.
func (s *session) resolveType(name string) (*hosttype.Type, error) {
	if name == "" {
		return nil, hosttype.ErrTypeNotFound
	}
	t, err := s.engine.loader.Load(name)
	if err == nil {
		return t, nil
	}
	if full, ok := s.engine.universe.WithSuffix(name); ok {
		return s.engine.loader.Load(full)
	}
	return nil, err
}

// resolveValue reads a live binding and follows the rest of path from it.
func (s *session) resolveValue(path []string) (goja.Value, error) {
	if len(path) == 0 {
		return nil, bridge.ErrUnresolved
	}
	root, ok := s.bindings[path[0]]
	if !ok {
		return nil, errors.Wrapf(bridge.ErrUnresolved, "no binding %q", path[0])
	}
	return bridge.Walk(s.scope, root, path[1:])
}

// callable probes whether the value at path is a function. Probe failures
// count as not callable.
func (s *session) callable(path ...string) bool {
	ok, err := s.scope.IsCallable(path...)
	if err != nil {
		s.log.V(1).Info("probe failed", "path", path, "error", err.Error())
		return false
	}
	return ok
}

func (s *session) typeName(rt reflect.Type) string {
	return s.engine.typeNames(rt)
}

// signatures proposes argument lists for params, each prefixed with head.
func (s *session) signatures(head string, m hosttype.Member, kind Kind) []Candidate {
	texts, truncated := s.binder.expand(head, m.Params)
	if truncated {
		s.log.V(1).Info("argument lists truncated", "signature", m.Signature(s.typeName), "max", s.binder.max)
	}
	label := m.Signature(s.typeName)
	out := make([]Candidate, len(texts))
	for i, t := range texts {
		out[i] = NewCandidate(t, kind, label)
	}
	return out
}

// bindingNames returns live binding names in ascending order.
func (s *session) bindingNames() []string {
	out := make([]string, 0, len(s.bindings))
	for k := range s.bindings {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
