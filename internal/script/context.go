// Package script owns the embedded JavaScript runtime that completion reads
// bindings from. Every access goes through a single exclusive slot so that
// overlapping requests queue instead of interleaving evaluations.
package script

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dop251/goja"
)

var (
	// ErrTimeout is the interrupt value used when evaluation exceeds its budget.
	ErrTimeout = errors.New("script evaluation timed out")
	// ErrInterrupted marks evaluations stopped by a timeout or cancellation.
	ErrInterrupted = errors.New("script evaluation interrupted")
)

// SetupFunc prepares a fresh runtime, e.g. by installing host types.
type SetupFunc func(vm *goja.Runtime) error

// Option configures a Context.
type Option func(*Context)

// WithTimeout bounds each evaluation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Context) { c.timeout = d }
}

// WithSetup registers functions run against every fresh runtime, in order.
func WithSetup(fns ...SetupFunc) Option {
	return func(c *Context) { c.setup = append(c.setup, fns...) }
}

// Context is a live script evaluation context.
type Context struct {
	slot    chan struct{}
	vm      *goja.Runtime
	removed map[string]struct{}
	setup   []SetupFunc
	timeout time.Duration
}

// New creates a context with a prepared runtime.
func New(opts ...Option) (*Context, error) {
	c := &Context{slot: make(chan struct{}, 1)}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.reset(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Context) reset() error {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())
	for _, fn := range c.setup {
		if err := fn(vm); err != nil {
			return errors.Wrap(err, "preparing script runtime")
		}
	}
	c.vm = vm
	c.removed = make(map[string]struct{})
	return nil
}

// Do runs fn while holding the exclusive slot. It waits for the slot until
// ctx is done. The Scope handed to fn must not be retained after fn returns.
func (c *Context) Do(ctx context.Context, fn func(*Scope) error) error {
	select {
	case c.slot <- struct{}{}:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for script context")
	}
	defer func() { <-c.slot }()
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "waiting for script context")
	}
	return fn(&Scope{c: c, ctx: ctx})
}

// Scope is the view of a Context available inside Do.
type Scope struct {
	c   *Context
	ctx context.Context
}

// Runtime exposes the underlying runtime for introspection.
func (s *Scope) Runtime() *goja.Runtime { return s.c.vm }

// Reset replaces the runtime with a fresh one and reruns setup.
func (s *Scope) Reset() error { return s.c.reset() }

// Evaluate runs src in the global scope. Evaluation is interrupted when the
// context of the enclosing Do call is done or the configured timeout elapses.
func (s *Scope) Evaluate(src string) (goja.Value, error) {
	stop := s.watch()
	v, err := s.c.vm.RunString(src)
	stop()
	if err != nil {
		return nil, interruption(err)
	}
	return v, nil
}

// Guard runs fn under the same interruption rules as Evaluate. fn may read
// properties or call functions on runtime objects; a script exception or an
// interruption raised inside it is returned as an error instead of a panic.
func (s *Scope) Guard(fn func()) (err error) {
	if cerr := s.ctx.Err(); cerr != nil {
		return errors.Mark(errors.Wrap(cerr, "script evaluation interrupted"), ErrInterrupted)
	}
	stop := s.watch()
	defer stop()
	defer func() {
		x := recover()
		if x == nil {
			return
		}
		ie, ok := x.(*goja.InterruptedError)
		if !ok {
			panic(x)
		}
		err = interruption(ie)
	}()
	if ex := s.c.vm.Try(fn); ex != nil {
		return ex
	}
	return nil
}

// Get reads obj[name] under Guard.
func (s *Scope) Get(obj *goja.Object, name string) (v goja.Value, err error) {
	err = s.Guard(func() { v = obj.Get(name) })
	return v, err
}

// watch interrupts the runtime once the Do context is done or the timeout
// elapses. The returned func stops watching and clears any pending interrupt.
func (s *Scope) watch() func() {
	vm := s.c.vm
	var timer *time.Timer
	var timeout <-chan time.Time
	if s.c.timeout > 0 {
		timer = time.NewTimer(s.c.timeout)
		timeout = timer.C
	}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-s.ctx.Done():
			vm.Interrupt(s.ctx.Err())
		case <-timeout:
			vm.Interrupt(ErrTimeout)
		case <-done:
		}
	}()
	return func() {
		close(done)
		wg.Wait()
		if timer != nil {
			timer.Stop()
		}
		vm.ClearInterrupt()
	}
}

// interruption marks err with ErrInterrupted when it stems from vm.Interrupt.
func interruption(err error) error {
	var ie *goja.InterruptedError
	if !errors.As(err, &ie) {
		return err
	}
	cause, ok := ie.Value().(error)
	if !ok {
		cause = errors.Newf("%v", ie.Value())
	}
	return errors.Mark(errors.Wrap(cause, "script evaluation interrupted"), ErrInterrupted)
}

// Bindings returns the script-defined global bindings. Built-ins and
// installed host namespaces are not enumerable and therefore excluded.
// Bindings whose read throws or is interrupted are left out.
func (s *Scope) Bindings() map[string]goja.Value {
	global := s.c.vm.GlobalObject()
	out := make(map[string]goja.Value)
	for _, k := range global.Keys() {
		if _, gone := s.c.removed[k]; gone {
			continue
		}
		if v, err := s.Get(global, k); err == nil {
			out[k] = v
		}
	}
	return out
}

// Names returns the binding names in ascending order.
func (s *Scope) Names() []string {
	b := s.Bindings()
	out := make([]string, 0, len(b))
	for k := range b {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Binding returns the value bound to name.
func (s *Scope) Binding(name string) (goja.Value, bool) {
	if _, gone := s.c.removed[name]; gone {
		return nil, false
	}
	global := s.c.vm.GlobalObject()
	for _, k := range global.Keys() {
		if k != name {
			continue
		}
		v, err := s.Get(global, k)
		return v, err == nil
	}
	return nil, false
}

// Remove drops a binding. Bindings declared with var cannot be deleted from
// the global object; those are hidden instead.
func (s *Scope) Remove(name string) {
	global := s.c.vm.GlobalObject()
	_ = global.Delete(name)
	if v, err := s.Get(global, name); err != nil || v != nil {
		s.c.removed[name] = struct{}{}
	}
}

// SetBindings replaces every script binding with the given values.
func (s *Scope) SetBindings(values map[string]any) error {
	for name := range s.Bindings() {
		s.Remove(name)
	}
	global := s.c.vm.GlobalObject()
	for name, v := range values {
		delete(s.c.removed, name)
		val := s.c.vm.ToValue(v)
		if err := global.DefineDataProperty(name, val, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_TRUE); err != nil {
			// var declarations are not configurable but stay writable
			if err := global.Set(name, val); err != nil {
				return errors.Wrapf(err, "binding %s", name)
			}
		}
	}
	return nil
}

// Probe evaluates a short boolean expression against the live runtime under
// the same interruption rules as Evaluate.
func (s *Scope) Probe(expr string) (bool, error) {
	if err := s.ctx.Err(); err != nil {
		return false, errors.Mark(errors.Wrap(err, "script evaluation interrupted"), ErrInterrupted)
	}
	stop := s.watch()
	v, err := s.c.vm.RunString(expr)
	stop()
	if err != nil {
		return false, interruption(err)
	}
	return v.ToBoolean(), nil
}

// IsCallable probes whether the value reached through path from the global
// object is a function, e.g. path ["a", "b"] probes typeof this["a"]["b"].
func (s *Scope) IsCallable(path ...string) (bool, error) {
	return s.Probe("typeof " + Accessor(path...) + " === 'function'")
}

// Accessor builds a property access expression rooted at the global object.
func Accessor(path ...string) string {
	var b strings.Builder
	b.WriteString("this")
	for _, p := range path {
		q, _ := json.Marshal(p)
		b.WriteByte('[')
		b.Write(q)
		b.WriteByte(']')
	}
	return b.String()
}

// Message renders an evaluation error for a status line. A thrown value
// whose string conversion itself throws falls back to the Go error text.
func Message(err error) (msg string) {
	if err == nil {
		return ""
	}
	var ex *goja.Exception
	if !errors.As(err, &ex) {
		return err.Error()
	}
	defer func() {
		if recover() != nil {
			msg = "script threw an unprintable value"
		}
	}()
	return ex.Value().String()
}
