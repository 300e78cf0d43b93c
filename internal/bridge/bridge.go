// Package bridge extracts member names from script values. Runtime-native
// objects are read through the HostNativeObject adapter; Go values wrapped
// by the runtime are read with reflection.
package bridge

import (
	"reflect"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/dop251/goja"

	"github.com/oakwood-commons/jsassist/internal/hosttype"
)

var (
	// ErrNotScriptable is returned for values that are not runtime-native objects.
	ErrNotScriptable = errors.New("value is not a runtime-native object")
	// ErrUnresolved is returned when a property path does not lead to a value.
	ErrUnresolved = errors.New("property path does not resolve")
)

// Runtime is the script runtime adapters read through. Guard runs fn and
// returns a script exception or interruption raised inside it as an error;
// every property read goes through it because reads may run script getters.
type Runtime interface {
	Runtime() *goja.Runtime
	Guard(fn func()) error
}

// HostNativeObject is a runtime-native object whose members are only
// reachable through the runtime's own property protocol.
type HostNativeObject interface {
	// ClassName is the runtime class, e.g. "Object", "Array" or "Function".
	ClassName() string
	// OwnPropertyNames lists the object's own enumerable property names.
	OwnPropertyNames() []string
	// PropertyNames adds names inherited from prototypes below Object.prototype.
	PropertyNames() []string
	// Get reads a property. Arrays are expanded into []any recursively.
	Get(name string) (any, error)
}

type nativeObject struct {
	rt  Runtime
	obj *goja.Object
}

// Resolve adapts v when it is a runtime-native object.
func Resolve(rt Runtime, v goja.Value) (HostNativeObject, error) {
	obj, ok := v.(*goja.Object)
	if !ok || obj == nil {
		return nil, errors.Wrapf(ErrNotScriptable, "%s", describe(v))
	}
	if hv, host := HostValue(v); host {
		return nil, errors.Wrapf(ErrNotScriptable, "wrapped Go value %T", hv)
	}
	return &nativeObject{rt: rt, obj: obj}, nil
}

// Export types of runtime-native objects that still report class "Object".
var (
	plainObjectType = reflect.TypeOf(map[string]any(nil))
	proxyType       = reflect.TypeOf(goja.Proxy{})
)

// HostValue returns the Go value behind v when v wraps an ordinary Go value
// rather than a runtime-native object. Arrays, functions, dates and primitive
// wrappers report their own class and always count as native. The decision is
// made on the export type, so no script getter runs.
func HostValue(v goja.Value) (any, bool) {
	obj, ok := v.(*goja.Object)
	if !ok || obj == nil || obj.ClassName() != "Object" {
		return nil, false
	}
	switch obj.ExportType() {
	case nil, plainObjectType, proxyType:
		return nil, false
	}
	return obj.Export(), true
}

func (n *nativeObject) ClassName() string { return n.obj.ClassName() }

// OwnPropertyNames returns nil when a proxy trap throws.
func (n *nativeObject) OwnPropertyNames() []string {
	var keys []string
	if err := n.rt.Guard(func() { keys = n.obj.Keys() }); err != nil {
		return nil
	}
	return keys
}

// PropertyNames stops at the first prototype whose names cannot be listed.
func (n *nativeObject) PropertyNames() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(name string) {
		if _, ok := seen[name]; ok || name == "constructor" {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, k := range n.OwnPropertyNames() {
		add(k)
	}
	vm := n.rt.Runtime()
	objectProto := vm.NewObject().Prototype()
	_ = n.rt.Guard(func() {
		list, ok := goja.AssertFunction(vm.Get("Object").ToObject(vm).Get("getOwnPropertyNames"))
		if !ok {
			return
		}
		for p := n.obj.Prototype(); p != nil && p != objectProto; p = p.Prototype() {
			names, err := list(goja.Undefined(), p)
			if err != nil {
				return
			}
			var keys []string
			if err := vm.ExportTo(names, &keys); err != nil {
				return
			}
			for _, k := range keys {
				add(k)
			}
		}
	})
	return out
}

func (n *nativeObject) Get(name string) (any, error) {
	var out any
	err := n.rt.Guard(func() {
		if v := n.obj.Get(name); v != nil {
			out = expand(v)
		}
	})
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "reading %q", name), ErrUnresolved)
	}
	if out == nil {
		return nil, errors.Wrapf(ErrUnresolved, "%s has no property %q", n.obj.ClassName(), name)
	}
	return out, nil
}

// property reads obj[name] without array expansion, for walking paths.
func (n *nativeObject) property(name string) (goja.Value, error) {
	var v goja.Value
	if err := n.rt.Guard(func() { v = n.obj.Get(name) }); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "reading %q", name), ErrUnresolved)
	}
	return v, nil
}

// expand turns native arrays into []any, recursing into nested arrays. It
// must run under Guard.
func expand(v goja.Value) any {
	obj, ok := v.(*goja.Object)
	if !ok || obj.ClassName() != "Array" {
		return v
	}
	length := int(obj.Get("length").ToInteger())
	out := make([]any, 0, length)
	for i := 0; i < length; i++ {
		el := obj.Get(strconv.Itoa(i))
		if el == nil {
			out = append(out, goja.Undefined())
			continue
		}
		out = append(out, expand(el))
	}
	return out
}

// Walk follows a property path from root, e.g. ["b", "c"] from a reads a.b.c.
// A getter that throws or is interrupted ends the walk with ErrUnresolved.
func Walk(rt Runtime, root goja.Value, path []string) (goja.Value, error) {
	cur := root
	for _, seg := range path {
		if cur == nil || goja.IsUndefined(cur) || goja.IsNull(cur) {
			return nil, errors.Wrapf(ErrUnresolved, "before %q", seg)
		}
		obj, ok := cur.(*goja.Object)
		if !ok {
			return nil, errors.Wrapf(ErrUnresolved, "%q on primitive %s", seg, describe(cur))
		}
		v, err := (&nativeObject{rt: rt, obj: obj}).property(seg)
		if err != nil {
			return nil, err
		}
		cur = v
	}
	if cur == nil || goja.IsUndefined(cur) || goja.IsNull(cur) {
		return nil, errors.Wrap(ErrUnresolved, "path ends in no value")
	}
	return cur, nil
}

// Members lists exported fields and methods of an ordinary Go value, named as
// scripts see them. owner labels the members, usually via Registry.TypeName.
func Members(v any, owner func(reflect.Type) string) (fields, methods []hosttype.Member) {
	rt := reflect.TypeOf(v)
	if rt == nil {
		return nil, nil
	}
	return hosttype.MembersOf(owner(rt), rt)
}

func describe(v goja.Value) string {
	if v == nil {
		return "nil"
	}
	if goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	return v.ExportType().String()
}
