// Package assist is the embedding API for jsassist: it wires a host type
// catalog, the type universe and a script context into a completion engine,
// and adds the enable toggle and status reporting editors integrate with.
package assist

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/oakwood-commons/jsassist/internal/completion"
	"github.com/oakwood-commons/jsassist/internal/hostlib"
	"github.com/oakwood-commons/jsassist/internal/hosttype"
	"github.com/oakwood-commons/jsassist/internal/script"
	"github.com/oakwood-commons/jsassist/internal/universe"
	"github.com/oakwood-commons/jsassist/pkg/logger"
)

// DisabledStatus is reported instead of evaluating while assistance is off.
const DisabledStatus = "Code assist is disabled"

// ErrDisabled is returned by requests made while assistance is off.
var ErrDisabled = errors.New("code assist is disabled")

// Aliases for the engine types so integrations stay outside internal packages.
type (
	Request   = completion.Request
	Result    = completion.Result
	Candidate = completion.Candidate
	Kind      = completion.Kind
)

// Completer runs completion and evaluation requests.
type Completer interface {
	Complete(ctx context.Context, req completion.Request) (*completion.Result, error)
	Evaluate(ctx context.Context, src string) (*completion.Result, error)
}

// StatusSink receives the evaluation status after every request.
type StatusSink interface {
	Status(msg string)
}

// StatusFunc adapts a function to StatusSink.
type StatusFunc func(msg string)

func (f StatusFunc) Status(msg string) { f(msg) }

// Assistant is the entry point for editor integrations. It is safe for
// concurrent use; requests are serialized on the script context.
type Assistant struct {
	Registry  *hosttype.Registry
	Universe  *universe.Index
	Completer Completer

	status      StatusSink
	enabled     atomic.Bool
	filter      string
	timeout     time.Duration
	resetScope  bool
	maxVariants int
	setup       []script.SetupFunc
}

// Option configures the Assistant.
type Option func(*Assistant)

// WithRegistry sets the host type catalog. The default is the hostlib catalog.
func WithRegistry(r *hosttype.Registry) Option {
	return func(a *Assistant) {
		a.Registry = r
	}
}

// WithUniverse adds type names to the universe beyond the registered ones.
func WithUniverse(idx *universe.Index) Option {
	return func(a *Assistant) {
		a.Universe = idx
	}
}

// WithUniverseFilter restricts the universe with a CEL predicate.
func WithUniverseFilter(expr string) Option {
	return func(a *Assistant) {
		a.filter = expr
	}
}

// WithCompleter replaces the engine, typically in tests.
func WithCompleter(c Completer) Option {
	return func(a *Assistant) {
		a.Completer = c
	}
}

// WithStatusSink sets where evaluation status messages go.
func WithStatusSink(s StatusSink) Option {
	return func(a *Assistant) {
		a.status = s
	}
}

// WithEvalTimeout bounds script evaluation. Zero disables the bound.
func WithEvalTimeout(d time.Duration) Option {
	return func(a *Assistant) {
		a.timeout = d
	}
}

// WithResetScope controls whether each request starts from a fresh runtime.
func WithResetScope(reset bool) Option {
	return func(a *Assistant) {
		a.resetScope = reset
	}
}

// WithMaxSignatureVariants caps the argument lists proposed per signature.
func WithMaxSignatureVariants(n int) Option {
	return func(a *Assistant) {
		a.maxVariants = n
	}
}

// WithSetup runs fns on every fresh runtime after host types are installed,
// e.g. to predefine helper functions.
func WithSetup(fns ...script.SetupFunc) Option {
	return func(a *Assistant) {
		a.setup = append(a.setup, fns...)
	}
}

// WithEnabled sets the initial toggle state. Assistance starts enabled.
func WithEnabled(on bool) Option {
	return func(a *Assistant) {
		a.enabled.Store(on)
	}
}

// New creates an Assistant with defaults.
func New(opts ...Option) (*Assistant, error) {
	a := &Assistant{
		resetScope:  true,
		maxVariants: completion.DefaultMaxSignatureVariants,
	}
	a.enabled.Store(true)
	for _, opt := range opts {
		opt(a)
	}
	if a.Registry == nil {
		r, err := hostlib.New()
		if err != nil {
			return nil, errors.Wrap(err, "building host catalog")
		}
		a.Registry = r
	}
	a.Universe = universe.New(a.Registry.Names()...).Merge(a.Universe)
	if a.filter != "" {
		f, err := universe.NewFilter(a.filter)
		if err != nil {
			return nil, err
		}
		if a.Universe, err = f.Apply(a.Universe, a.Registry); err != nil {
			return nil, err
		}
	}
	if a.Completer == nil {
		setup := append([]script.SetupFunc{a.Registry.Install}, a.setup...)
		sc, err := script.New(script.WithTimeout(a.timeout), script.WithSetup(setup...))
		if err != nil {
			return nil, err
		}
		a.Completer = completion.NewEngine(sc, a.Registry, a.Universe,
			completion.WithResetScope(a.resetScope),
			completion.WithMaxSignatureVariants(a.maxVariants),
		)
	}
	return a, nil
}

// Enabled reports whether requests reach the engine.
func (a *Assistant) Enabled() bool { return a.enabled.Load() }

// SetEnabled turns assistance on or off.
func (a *Assistant) SetEnabled(on bool) { a.enabled.Store(on) }

// Toggle flips the enable state and returns the new one.
func (a *Assistant) Toggle() bool {
	for {
		old := a.enabled.Load()
		if a.enabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Complete proposes completions for req. While disabled it reports
// DisabledStatus and returns ErrDisabled without evaluating anything.
func (a *Assistant) Complete(ctx context.Context, req Request) (*Result, error) {
	if !a.Enabled() {
		a.report(DisabledStatus)
		return nil, ErrDisabled
	}
	res, err := a.Completer.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).V(1).Info("completed", logger.CandidatesKey, len(res.Candidates), "status", res.Status)
	a.report(res.Status)
	return res, nil
}

// Evaluate runs src and reports its status.
func (a *Assistant) Evaluate(ctx context.Context, src string) (*Result, error) {
	if !a.Enabled() {
		a.report(DisabledStatus)
		return nil, ErrDisabled
	}
	res, err := a.Completer.Evaluate(ctx, src)
	if err != nil {
		return nil, err
	}
	a.report(res.Status)
	return res, nil
}

// Types returns the host types visible through the universe, by name.
func (a *Assistant) Types() []*hosttype.Type {
	var out []*hosttype.Type
	for _, name := range a.Universe.Names() {
		if t, err := a.Registry.Load(name); err == nil {
			out = append(out, t)
		}
	}
	return out
}

func (a *Assistant) report(msg string) {
	if a.status != nil {
		a.status.Status(msg)
	}
}
