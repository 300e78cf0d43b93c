package completion

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dop251/goja"

	"github.com/oakwood-commons/jsassist/internal/bridge"
	"github.com/oakwood-commons/jsassist/internal/hosttype"
)

const (
	nativeContext = "(Native object)"
	scopeContext  = "(Engine scope)"
)

// ruleInput is what every rule sees: the re-anchored line and the receiver
// resolved by earlier rules.
type ruleInput struct {
	prefix string
	buffer string
	part   Partition
	target target
}

// ruleResult is a rule's verdict. A zero value means "no opinion"; next, when
// non-nil, replaces the receiver seen by later rules.
type ruleResult struct {
	claimed    string
	candidates []Candidate
	next       *target
}

type rule interface {
	name() string
	match(s *session, in ruleInput) ruleResult
}

// chain is evaluated in order. Once a rule sets a receiver, the rules that
// only apply to fresh identifiers stand down.
var chain = [...]rule{
	methodSignatureRule{},
	staticMemberRule{},
	instanceMemberRule{},
	interfaceStubRule{},
	scopeRule{},
}

// receiverText is the typed text before the trailing fragment, e.g. "a.b."
// for "a.b.c".
func receiverText(p Partition) string {
	return p.Text[:len(p.Text)-len(p.Last())]
}

// methodSignatureRule proposes argument lists right after "recv.method(".
type methodSignatureRule struct{}

func (methodSignatureRule) name() string { return "method-signature" }

func (methodSignatureRule) match(s *session, in ruleInput) ruleResult {
	if in.target.set() || in.buffer != "" {
		return ruleResult{}
	}
	tok := callToken(in.prefix)
	dot := strings.LastIndex(tok, ".")
	if dot <= 0 {
		return ruleResult{}
	}
	recv, method := tok[:dot], tok[dot+1:len(tok)-1]

	var cands []Candidate
	if v, err := s.resolveValue(strings.Split(recv, ".")); err == nil {
		if hv, ok := bridge.HostValue(v); ok {
			_, methods := bridge.Members(hv, s.typeName)
			for _, m := range methods {
				if m.Name == method {
					cands = append(cands, s.signatures("", m, KindMethod)...)
				}
			}
		}
	} else if t, err := s.resolveType(recv); err == nil {
		for _, m := range t.StaticMethodsNamed(method) {
			cands = append(cands, s.signatures("", m, KindStaticMethod)...)
		}
	} else {
		return ruleResult{}
	}
	return ruleResult{candidates: cands, next: &target{kind: sentinelTarget}}
}

// staticMemberRule lists static members after "Type." where the fragment
// before the last dot is capitalized.
type staticMemberRule struct{}

func (staticMemberRule) name() string { return "static-member" }

func (staticMemberRule) match(s *session, in ruleInput) ruleResult {
	segs := in.part.Segments
	if in.target.set() || len(segs) < 2 {
		return ruleResult{}
	}
	if r, _ := utf8.DecodeRuneInString(segs[len(segs)-2]); !unicode.IsUpper(r) {
		return ruleResult{}
	}
	className := strings.Join(segs[:len(segs)-1], ".")
	t, err := s.resolveType(className)
	if err != nil {
		return ruleResult{}
	}

	recv := receiverText(in.part)
	last := in.part.Last()
	var cands []Candidate
	for _, f := range t.StaticFields {
		if strings.HasPrefix(f.Name, last) {
			cands = append(cands, NewCandidate(recv+f.Name, KindStaticField, f.Signature(s.typeName)))
		}
	}
	for _, m := range t.StaticMethods {
		if strings.HasPrefix(m.Name, last) {
			cands = append(cands, s.signatures(recv+m.Name+"(", m, KindStaticMethod)...)
		}
	}
	return ruleResult{claimed: recv, candidates: cands, next: &target{kind: typeTarget, typ: t}}
}

// instanceMemberRule lists members of a live value after "value.". When an
// earlier rule already owns the receiver it only claims the trailing fragment.
type instanceMemberRule struct{}

func (instanceMemberRule) name() string { return "instance-member" }

func (instanceMemberRule) match(s *session, in ruleInput) ruleResult {
	last := in.part.Last()
	if in.target.set() {
		return ruleResult{claimed: last}
	}
	path := in.part.Receiver()
	if path == nil || strings.HasSuffix(in.prefix, "(") {
		return ruleResult{}
	}

	recv := receiverText(in.part)
	v, err := s.resolveValue(path)
	if err != nil {
		// fall back to a binding named by the fragment before the last dot
		path = path[len(path)-1:]
		if v, err = s.resolveValue(path); err != nil {
			return ruleResult{}
		}
		recv = path[0] + "."
	}
	return ruleResult{
		claimed:    recv + last,
		candidates: s.members(v, path, recv, last),
		next:       &target{kind: valueTarget, value: v},
	}
}

func (s *session) members(v goja.Value, path []string, recv, last string) []Candidate {
	var out []Candidate
	if hv, ok := bridge.HostValue(v); ok {
		owner := s.typeName(reflect.TypeOf(hv))
		fields, methods := bridge.Members(hv, s.typeName)
		for _, f := range fields {
			if strings.HasPrefix(f.Name, last) {
				out = append(out, NewCandidate(recv+f.Name, KindField, owner))
			}
		}
		for _, m := range methods {
			if strings.HasPrefix(m.Name, last) {
				out = append(out, NewCandidate(recv+m.Name+"(", KindMethod, m.Signature(s.typeName)))
			}
		}
		return out
	}

	vm := s.scope.Runtime()
	native, err := bridge.Resolve(s.scope, v)
	if err != nil {
		// primitives expose the members of their wrapper objects
		if native, err = bridge.Resolve(s.scope, v.ToObject(vm)); err != nil {
			s.log.V(1).Info("receiver skipped", "path", path, "error", err.Error())
			return nil
		}
	}
	s.log.V(1).Info("listing native members", "path", path, "class", native.ClassName())
	for _, name := range native.PropertyNames() {
		if !isIdentifier(name) || !strings.HasPrefix(name, last) {
			continue
		}
		if _, err := native.Get(name); err != nil {
			s.log.V(1).Info("member skipped", "path", path, "member", name, "error", err.Error())
			continue
		}
		probe := append(append(make([]string, 0, len(path)+1), path...), name)
		if s.callable(probe...) {
			out = append(out, NewCandidate(recv+name+"(", KindMethod, nativeContext))
		} else {
			out = append(out, NewCandidate(recv+name, KindField, nativeContext))
		}
	}
	return out
}

// interfaceStubRule fires right after "Type(". Interfaces get an object
// literal implementing every method; classes get constructor argument lists.
// Once an argument is being typed the scope rule completes it instead.
type interfaceStubRule struct{}

func (interfaceStubRule) name() string { return "interface-stub" }

func (interfaceStubRule) match(s *session, in ruleInput) ruleResult {
	if in.target.set() || in.buffer != "" {
		return ruleResult{}
	}
	tok := callToken(in.prefix)
	if tok == "" {
		return ruleResult{}
	}
	t, err := s.resolveType(tok[:len(tok)-1])
	if err != nil {
		return ruleResult{}
	}
	var cands []Candidate
	if t.IsInterface() {
		cands = append(cands, NewCandidate(implementationStub(t), KindInterfaceStub, t.Name))
	} else {
		for _, c := range t.Constructors {
			cands = append(cands, s.signatures("", c, KindConstructor)...)
		}
	}
	return ruleResult{candidates: cands, next: &target{kind: sentinelTarget}}
}

// implementationStub renders an object literal for t, closing the call:
//
//	{
//		run: function ( ) { },
//		accept: function ( strings, point, pointI ) { }
//	})
func implementationStub(t *hosttype.Type) string {
	var b strings.Builder
	b.WriteString("{")
	for i, m := range t.Methods() {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n\t")
		b.WriteString(m.Name)
		b.WriteString(": function ( ")
		if names := hosttype.ParamNames(m.Params); len(names) > 0 {
			b.WriteString(strings.Join(names, ", "))
			b.WriteString(" ")
		}
		b.WriteString(") { }")
	}
	b.WriteString("\n})")
	return b.String()
}

// scopeRule is the fallback: class and package names from the universe, and
// live bindings when a bare identifier is being typed.
type scopeRule struct{}

func (scopeRule) name() string { return "scope" }

func (scopeRule) match(s *session, in ruleInput) ruleResult {
	if in.target.set() {
		return ruleResult{}
	}
	text := in.part.Text
	cands := s.classNames(text)

	if len(in.part.Segments) <= 1 && !strings.HasSuffix(strings.TrimSpace(in.prefix), "new") {
		last := in.part.Last()
		for _, name := range s.bindingNames() {
			if !strings.HasPrefix(name, last) {
				continue
			}
			if s.callable(name) {
				cands = append(cands, NewCandidate(name+"(", KindFunction, scopeContext))
			} else {
				cands = append(cands, NewCandidate(name, KindObject, scopeContext))
			}
		}
	}
	return ruleResult{claimed: text, candidates: cands}
}

// classNames matches text against the universe. Entries that are not type
// names are cut after the next dot so packages complete one level at a time.
func (s *session) classNames(text string) []Candidate {
	var matches []string
	seen := make(map[string]struct{})
	for _, name := range s.engine.universe.Names() {
		isClass := s.isClassName(name, text)
		if !isClass && !strings.HasPrefix(name, text) {
			continue
		}
		if !isClass {
			if i := strings.Index(name[len(text):], "."); i >= 0 {
				name = name[:len(text)+i+1]
			}
		}
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			matches = append(matches, name)
		}
	}

	var out []Candidate
	for _, name := range matches {
		if !s.isClassName(name, text) {
			out = append(out, NewCandidate(name, KindPackage, strings.TrimSuffix(name, ".")))
			continue
		}
		t, err := s.resolveType(name)
		if err != nil {
			s.log.V(1).Info("universe entry does not load", "type", name, "error", err.Error())
			continue
		}
		if t.IsInterface() {
			out = append(out, NewCandidate(name+"(", KindInterface, t.Name))
			continue
		}
		out = append(out, NewCandidate(t.Name, KindClass, t.Name))
		for _, c := range t.Constructors {
			out = append(out, s.signatures(t.Name+"(", c, KindConstructor)...)
		}
	}
	return out
}

// isClassName reports whether a universe entry names a type for text: the
// entry equals text, ends in "."+text, or loads once text is removed and no
// dot remains.
func (s *session) isClassName(name, text string) bool {
	if name == text {
		return true
	}
	if text != "" && strings.HasSuffix(name, "."+text) {
		return true
	}
	if !strings.Contains(strings.ReplaceAll(name, text, ""), ".") {
		_, err := s.resolveType(name)
		return err == nil
	}
	return false
}
