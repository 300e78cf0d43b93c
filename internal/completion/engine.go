// Package completion proposes context-sensitive completions for a line of
// script. The unfinished line is re-anchored at its last syntactic boundary,
// partitioned into dotted fragments and passed through a fixed chain of
// resolution rules evaluated against the live script runtime.
package completion

import (
	"context"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/jsassist/internal/hosttype"
	"github.com/oakwood-commons/jsassist/internal/script"
	"github.com/oakwood-commons/jsassist/internal/universe"
	"github.com/oakwood-commons/jsassist/pkg/logger"
)

const (
	// StatusOK is reported when the committed script evaluated cleanly.
	StatusOK = "Parsed successfully."
	// ReservedBinding is removed from the runtime before rules run.
	ReservedBinding = "context"
)

// ErrInvalidCursor is returned when the cursor lies outside the line.
var ErrInvalidCursor = errors.New("cursor out of range")

// Request is a single completion request.
type Request struct {
	Script string // committed text preceding the line
	Line   string // the unfinished line, from line start
	Cursor int    // byte offset into Line
}

// Result is the outcome of a completion request.
type Result struct {
	Candidates  []Candidate
	ReplaceFrom int    // byte offset into Line where the chosen text starts
	Status      string // StatusOK or the evaluation failure message
	EvalErr     error  // set when the committed script failed to evaluate
}

// Option configures an Engine.
type Option func(*Engine)

// WithResetScope controls whether every request evaluates into a fresh
// runtime. It defaults to true; disabling it lets bindings accumulate.
func WithResetScope(reset bool) Option {
	return func(e *Engine) { e.resetScope = reset }
}

// WithMaxSignatureVariants caps the bound argument lists per signature.
// Zero or a negative value removes the cap.
func WithMaxSignatureVariants(n int) Option {
	return func(e *Engine) { e.maxVariants = n }
}

// WithTypeNames sets how Go types are rendered in candidate contexts.
func WithTypeNames(fn func(reflect.Type) string) Option {
	return func(e *Engine) { e.typeNames = fn }
}

// Engine runs completion requests against one script context.
type Engine struct {
	script      *script.Context
	loader      hosttype.Loader
	universe    *universe.Index
	typeNames   func(reflect.Type) string
	resetScope  bool
	maxVariants int
}

// NewEngine creates an engine. The loader resolves qualified type names; idx
// is the catalog used for class and package name completion.
func NewEngine(sc *script.Context, loader hosttype.Loader, idx *universe.Index, opts ...Option) *Engine {
	e := &Engine{
		script:      sc,
		loader:      loader,
		universe:    idx,
		typeNames:   reflect.Type.String,
		resetScope:  true,
		maxVariants: DefaultMaxSignatureVariants,
	}
	if namer, ok := loader.(interface{ TypeName(reflect.Type) string }); ok {
		e.typeNames = namer.TypeName
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Complete evaluates req.Script and proposes completions for req.Line at
// req.Cursor. A failing script is reported through Result.Status; only an
// invalid cursor or a cancelled ctx produce an error.
func (e *Engine) Complete(ctx context.Context, req Request) (*Result, error) {
	if req.Cursor < 0 || req.Cursor > len(req.Line) {
		return nil, errors.Wrapf(ErrInvalidCursor, "cursor %d, line length %d", req.Cursor, len(req.Line))
	}
	prefix, buffer := anchor(req.Line, req.Cursor)
	log := logger.Component(ctx, "completion").WithValues(logger.LineKey, req.Line, logger.CursorKey, req.Cursor)

	res := &Result{}
	err := e.script.Do(ctx, func(scope *script.Scope) error {
		if err := e.prepare(scope, req.Script, res); err != nil {
			return err
		}
		if res.EvalErr != nil {
			log.V(1).Info("completing over partially evaluated script", "error", res.Status)
		}

		s := e.newSession(log, scope)
		in := ruleInput{
			prefix: prefix,
			buffer: buffer,
			part:   PartitionBuffer(buffer, len(buffer)),
		}
		claimed := 0
		for _, r := range chain {
			out := r.match(s, in)
			claimed += len(out.claimed)
			res.Candidates = append(res.Candidates, out.candidates...)
			if out.next != nil {
				in.target = *out.next
			}
			if out.claimed != "" || len(out.candidates) > 0 {
				log.V(1).Info("rule matched", logger.RuleKey, r.name(), "claimed", out.claimed, logger.CandidatesKey, len(out.candidates))
			}
		}
		if claimed > len(buffer) {
			log.Info("rules claimed more than the buffer", "claimed", claimed, "buffer", buffer)
			claimed = len(buffer)
		}
		res.ReplaceFrom = len(prefix) + len(buffer) - claimed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Evaluate runs src the way Complete does before resolving, and reports the
// resulting status.
func (e *Engine) Evaluate(ctx context.Context, src string) (*Result, error) {
	res := &Result{}
	err := e.script.Do(ctx, func(scope *script.Scope) error {
		return e.prepare(scope, src, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) prepare(scope *script.Scope, src string, res *Result) error {
	if e.resetScope {
		if err := scope.Reset(); err != nil {
			return err
		}
	}
	res.Status = StatusOK
	if strings.TrimSpace(src) != "" {
		if _, err := scope.Evaluate(src); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			res.Status = script.Message(err)
			res.EvalErr = err
		}
	}
	scope.Remove(ReservedBinding)
	return nil
}

func (e *Engine) newSession(log logr.Logger, scope *script.Scope) *session {
	bindings := scope.Bindings()
	return &session{
		engine:   e,
		log:      log,
		scope:    scope,
		bindings: bindings,
		binder:   newBinder(bindings, e.maxVariants),
	}
}
