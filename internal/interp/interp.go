// Package interp implements the Evaluator: a tree-walking visitor over
// the AST that carries out Lox's dynamic semantics (spec.md §4.5).
package interp

import (
	"fmt"
	"io"
	"time"

	"github.com/loxlang/loxi/internal/ast"
	loxerrors "github.com/loxlang/loxi/internal/errors"
	"github.com/loxlang/loxi/internal/resolver"
	"github.com/loxlang/loxi/internal/runtime"
)

// controlReturn is the non-error half of spec.md §9's ControlFlow sum
// type: a `return` statement unwinds the Go call stack as this sentinel
// error until it reaches the function-call boundary that is waiting for
// it (internal/interp/call.go), at which point it stops propagating.
// Ordinary runtime errors use *errors.RuntimeError the same way, so both
// "exits" share one mechanism: a typed error returned up through the
// statement/expression visitors.
type controlReturn struct {
	Value *runtime.Value
}

func (controlReturn) Error() string { return "return" }

// Interp is the evaluator's execution context: globals, the current
// environment, the resolver's side-table, the GC, and the output sink
// `print` writes to (spec.md §4.5).
type Interp struct {
	gc      *runtime.GC
	globals *runtime.Environment
	env     *runtime.Environment
	locals  map[ast.Expr]resolver.Binding

	out io.Writer

	startTime                    time.Time
	interactive                  bool
	uninitializedVariableIsError bool
}

// New returns an Interp with a fresh GC configured by cfg, writing
// `print` output to out. locals is the resolver's populated side-table
// for the program about to run. uninitializedIsError selects between
// spec.md §4.2's default (reading an uninitialized `var` yields Nil) and
// the stricter configuration-surface mode (SPEC_FULL.md §10, Open
// Question 2).
func New(cfg runtime.Config, locals map[ast.Expr]resolver.Binding, out io.Writer, interactive, uninitializedIsError bool) *Interp {
	gc := runtime.New(cfg)
	it := &Interp{
		gc:                           gc,
		globals:                      gc.Globals(),
		env:                          gc.Globals(),
		locals:                       locals,
		out:                          out,
		startTime:                    time.Time{},
		interactive:                  interactive,
		uninitializedVariableIsError: uninitializedIsError,
	}
	it.defineNatives()
	return it
}

// GC exposes the underlying collector, mainly for --dump-env and tests
// asserting GC invariants.
func (it *Interp) GC() *runtime.GC {
	return it.gc
}

// MergeLocals folds a freshly resolved side-table into the running
// interpreter's own. Each REPL line is parsed and resolved independently
// (spec.md §6: "each line is parsed and executed independently but
// shares the globals"), so its bindings are keyed by that line's own
// distinct AST node pointers and can never collide with an earlier
// line's entries.
func (it *Interp) MergeLocals(locals map[ast.Expr]resolver.Binding) {
	for k, v := range locals {
		it.locals[k] = v
	}
}

// Environment returns the interpreter's current environment.
func (it *Interp) Environment() *runtime.Environment {
	return it.env
}

// Interpret runs every statement in program in order. A runtime error
// unwinds to here: the current environment resets to globals and the
// pin stack is cleared (spec.md §4.5 "Non-local exits"). The returned
// error is either nil, a *errors.RuntimeError, or the quitRequested
// sentinel from the `quit()` native — callers check QuitRequested(err)
// before treating a non-nil result as a runtime error to report.
func (it *Interp) Interpret(program *ast.Program) error {
	for _, stmt := range program.Statements {
		if err := it.execute(stmt); err != nil {
			it.env = it.globals
			it.gc.ClearPins()
			if QuitRequested(err) {
				return err
			}
			if rt, ok := err.(*loxerrors.RuntimeError); ok {
				return rt
			}
			// A controlReturn escaping every function call is a bug in the
			// resolver (it should have rejected top-level return), not
			// something a caller needs to see as a distinct case.
			return loxerrors.NewRuntimeError(stmt.Line(), "%v", err)
		}
		it.gc.MaybeCollect()
	}
	return nil
}

func (it *Interp) runtimeErrorf(line int, format string, args ...any) *loxerrors.RuntimeError {
	return loxerrors.NewRuntimeError(line, format, args...)
}

func (it *Interp) print(s string) {
	fmt.Fprintln(it.out, s)
}
