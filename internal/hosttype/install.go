package hosttype

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dop251/goja"
)

// Install exposes every registered type inside vm. Each qualified name becomes
// a chain of namespace objects on the global object ending in a constructor
// function that carries the static members. Namespace roots are defined as
// non-enumerable so they never show up as script bindings.
func (r *Registry) Install(vm *goja.Runtime) error {
	for _, t := range r.Types() {
		if err := install(vm, t); err != nil {
			return errors.Wrapf(err, "installing %s", t.Name)
		}
	}
	return nil
}

func install(vm *goja.Runtime, t *Type) error {
	parts := strings.Split(t.Name, ".")
	parent := vm.GlobalObject()
	for i, part := range parts[:len(parts)-1] {
		next, err := namespace(vm, parent, part, i == 0)
		if err != nil {
			return err
		}
		parent = next
	}

	var ctor *goja.Object
	if t.IsInterface() {
		ctor = vm.ToValue(func(call goja.ConstructorCall) *goja.Object {
			impl := call.Argument(0)
			if goja.IsUndefined(impl) || goja.IsNull(impl) {
				panic(vm.NewTypeError("%s expects an object implementing it", t.Name))
			}
			return impl.ToObject(vm)
		}).ToObject(vm)
	} else {
		ctor = vm.ToValue(func(call goja.ConstructorCall) *goja.Object {
			res := construct(vm, t, call.Arguments)
			return vm.ToValue(res).ToObject(vm)
		}).ToObject(vm)
	}

	for _, f := range t.StaticFields {
		if err := ctor.Set(f.Name, f.Value.Interface()); err != nil {
			return err
		}
	}
	byName := make(map[string][]Member)
	var order []string
	for _, m := range t.StaticMethods {
		if _, ok := byName[m.Name]; !ok {
			order = append(order, m.Name)
		}
		byName[m.Name] = append(byName[m.Name], m)
	}
	for _, name := range order {
		if err := ctor.Set(name, dispatcher(vm, t.Name+"."+name, byName[name])); err != nil {
			return err
		}
	}

	last := parts[len(parts)-1]
	if len(parts) == 1 {
		return parent.DefineDataProperty(last, ctor, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE)
	}
	return parent.Set(last, ctor)
}

func namespace(vm *goja.Runtime, parent *goja.Object, name string, root bool) (*goja.Object, error) {
	if existing := parent.Get(name); existing != nil && !goja.IsUndefined(existing) {
		if obj, ok := existing.(*goja.Object); ok {
			return obj, nil
		}
		return nil, errors.Newf("%s is already bound to a non-object value", name)
	}
	obj := vm.NewObject()
	if root {
		return obj, parent.DefineDataProperty(name, obj, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE)
	}
	return obj, parent.Set(name, obj)
}

func construct(vm *goja.Runtime, t *Type, args []goja.Value) any {
	if len(t.Constructors) == 0 {
		if len(args) > 0 {
			panic(vm.NewTypeError("%s has no constructor taking %d arguments", t.Name, len(args)))
		}
		return reflect.New(t.GoType).Interface()
	}
	return invoke(vm, t.Name, t.Constructors, args)
}

// dispatcher wraps overloads of one static method in a single script function.
func dispatcher(vm *goja.Runtime, label string, overloads []Member) any {
	if len(overloads) == 1 {
		return overloads[0].Value.Interface()
	}
	return func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(invoke(vm, label, overloads, call.Arguments))
	}
}

// invoke calls the first overload whose arity matches the arguments.
func invoke(vm *goja.Runtime, label string, overloads []Member, args []goja.Value) any {
	for _, m := range overloads {
		if len(m.Params) != len(args) {
			continue
		}
		in := make([]reflect.Value, len(args))
		for i, p := range m.Params {
			ptr := reflect.New(p)
			if err := vm.ExportTo(args[i], ptr.Interface()); err != nil {
				panic(vm.NewTypeError("%s: argument %d: %v", label, i, err))
			}
			in[i] = ptr.Elem()
		}
		out := m.Value.Call(in)
		if len(out) == 2 && !out[1].IsNil() {
			panic(vm.NewGoError(out[1].Interface().(error)))
		}
		return out[0].Interface()
	}
	panic(vm.NewTypeError("%s: no overload takes %d arguments", label, len(args)))
}
