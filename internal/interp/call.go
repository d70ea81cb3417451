package interp

import (
	"github.com/loxlang/loxi/internal/ast"
	"github.com/loxlang/loxi/internal/runtime"
)

// call implements spec.md §4.5's call protocol: the callee must be a
// Native, Function, or Class; arity must match exactly; anything else
// is a type error.
func (it *Interp) call(line int, callee *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	switch callee.Kind {
	case runtime.KindNative:
		n := callee.Native
		if len(args) != n.Arity {
			return nil, it.runtimeErrorf(line, "Expected %d arguments but got %d.", n.Arity, len(args))
		}
		v, err := n.Fn(it.gc, args)
		if err != nil {
			if QuitRequested(err) {
				return nil, err
			}
			return nil, it.runtimeErrorf(line, "%s", err.Error())
		}
		return v, nil
	case runtime.KindFunction:
		return it.callFunction(line, callee.Func, args)
	case runtime.KindClass:
		return it.instantiate(line, callee.Class, args)
	default:
		return nil, it.runtimeErrorf(line, "Can only call functions and classes.")
	}
}

// callFunction implements spec.md §4.5's function invocation protocol: a
// child environment enclosing the function's closure, one slot per
// parameter bound in order, the body executed directly in that same
// environment (params and body share one scope, mirroring the
// resolver's combined beginScope in resolveFunction), and controlReturn
// caught right here. An initializer discards its returned value and
// always yields `this` (slot 0 of the bound closure, one level above the
// environment callFunction just built) instead; a return-less function
// yields Nil.
func (it *Interp) callFunction(line int, fn *runtime.Function, args []*runtime.Value) (*runtime.Value, error) {
	if len(args) != fn.Arity() {
		return nil, it.runtimeErrorf(line, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}
	if it.gc.EnvironmentCount() >= it.gc.MaxEnvironments() {
		return nil, it.runtimeErrorf(line, "Stack overflow.")
	}

	env := it.gc.NewEnclosedEnvironment(fn.Closure)
	for _, arg := range args {
		if _, err := env.Define(arg); err != nil {
			return nil, it.runtimeErrorf(line, "%s", err.Error())
		}
	}

	previous := it.env
	it.env = env
	defer func() {
		env.Deactivate()
		it.env = previous
	}()

	err := it.executeBody(fn.Declaration.Body)
	if ret, ok := err.(controlReturn); ok {
		if fn.IsInitializer {
			return env.GetAt(1, 0), nil
		}
		return ret.Value, nil
	}
	if err != nil {
		return nil, err
	}
	if fn.IsInitializer {
		return env.GetAt(1, 0), nil
	}
	return runtime.Nil, nil
}

// executeBody runs statements in the current environment without
// introducing a further child scope.
func (it *Interp) executeBody(statements []ast.Stmt) error {
	for _, stmt := range statements {
		if err := it.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

// instantiate implements spec.md §4.5's class invocation protocol:
// allocate an Instance, call its `init` (if any) bound to the new
// instance, and return the instance regardless of what init returns.
func (it *Interp) instantiate(line int, class *runtime.Class, args []*runtime.Value) (*runtime.Value, error) {
	instance := runtime.NewInstance(class)
	instanceValue := it.gc.NewInstanceValue(instance)

	if init, ok := class.FindMethod("init"); ok {
		if len(args) != init.Arity() {
			return nil, it.runtimeErrorf(line, "Expected %d arguments but got %d.", init.Arity(), len(args))
		}
		bound := runtime.Bind(it.gc, init, instance)
		if _, err := it.callFunction(line, bound, args); err != nil {
			return nil, err
		}
	} else if len(args) != 0 {
		return nil, it.runtimeErrorf(line, "Expected 0 arguments but got %d.", len(args))
	}

	return instanceValue, nil
}
