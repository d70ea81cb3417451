package interp

import (
	"github.com/loxlang/loxi/internal/ast"
	"github.com/loxlang/loxi/internal/runtime"
)

// execute dispatches a single statement. It returns either nil, a
// *errors.RuntimeError, or the controlReturn sentinel carrying a
// `return` value back toward the nearest function call boundary
// (spec.md §4.5 "Statement semantics").
func (it *Interp) execute(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.Block:
		child := it.gc.NewEnclosedEnvironment(it.env)
		return it.executeBlock(s.Statements, child)
	case *ast.Class:
		return it.executeClass(s)
	case *ast.Expression:
		_, err := it.evaluate(s.Expr)
		return err
	case *ast.Function:
		fn := &runtime.Function{Declaration: s, Closure: it.env}
		return it.declareName(s.Name.Line, s.Name.Lexeme, it.gc.NewFunctionValue(fn))
	case *ast.If:
		cond, err := it.evaluate(s.Condition)
		if err != nil {
			return err
		}
		if cond.Truthy() {
			return it.execute(s.Then)
		}
		if s.Else != nil {
			return it.execute(s.Else)
		}
		return nil
	case *ast.Print:
		v, err := it.evaluate(s.Expr)
		if err != nil {
			return err
		}
		it.print(v.String())
		return nil
	case *ast.Return:
		value := runtime.Nil
		if s.Value != nil {
			v, err := it.evaluate(s.Value)
			if err != nil {
				return err
			}
			value = v
		}
		return controlReturn{Value: value}
	case *ast.Var:
		value := runtime.Uninitialized
		if s.Initializer != nil {
			v, err := it.evaluate(s.Initializer)
			if err != nil {
				return err
			}
			value = v
		}
		return it.declareName(s.Name.Line, s.Name.Lexeme, value)
	case *ast.While:
		for {
			cond, err := it.evaluate(s.Condition)
			if err != nil {
				return err
			}
			if !cond.Truthy() {
				return nil
			}
			if err := it.execute(s.Body); err != nil {
				return err
			}
			it.gc.MaybeCollect()
		}
	}
	return nil
}

// executeBlock runs statements in env, restoring the previous
// environment and deactivating env on the way out regardless of how the
// block exits (spec.md §4.5 "Block"): normal completion, a runtime
// error, or a propagating controlReturn all take this same path.
func (it *Interp) executeBlock(statements []ast.Stmt, env *runtime.Environment) error {
	previous := it.env
	it.env = env
	defer func() {
		env.Deactivate()
		it.env = previous
	}()

	for _, stmt := range statements {
		if err := it.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

// declareName binds name to value in the current environment: the
// global hash table if at top level, else the next Local slot. Capacity
// overflow surfaces as the verbatim "Too many constants in one chunk."
// runtime error (spec.md §4.2).
func (it *Interp) declareName(line int, name string, value *runtime.Value) error {
	if it.env.IsGlobal() {
		it.env.DefineGlobal(name, value)
		return nil
	}
	if _, err := it.env.Define(value); err != nil {
		return it.runtimeErrorf(line, "%s", err.Error())
	}
	return nil
}

// executeClass implements spec.md §4.5's class-declaration algorithm:
// evaluate and validate the superclass, declare the name as Nil so
// methods can self-reference it, build each method's (unbound)
// Function, assemble the Class, and rebind the name over its Nil
// placeholder. The superclass is evaluated before the name is declared,
// so a "Superclass must be a class." error leaves the name unbound.
func (it *Interp) executeClass(s *ast.Class) error {
	var superclass *runtime.Class
	var superclassValue *runtime.Value
	if s.Superclass != nil {
		v, err := it.evaluate(s.Superclass)
		if err != nil {
			return err
		}
		if v.Kind != runtime.KindClass {
			return it.runtimeErrorf(s.Superclass.Name.Line, "Superclass must be a class.")
		}
		superclass = v.Class
		superclassValue = v
	}

	isGlobal := it.env.IsGlobal()
	var slot int
	if isGlobal {
		it.env.DefineGlobal(s.Name.Lexeme, runtime.Nil)
	} else {
		defined, err := it.env.Define(runtime.Nil)
		if err != nil {
			return it.runtimeErrorf(s.Name.Line, "%s", err.Error())
		}
		slot = defined
	}

	closureEnv := it.env
	if superclass != nil {
		closureEnv = it.gc.NewEnclosedEnvironment(it.env)
		closureEnv.DefineAt(0, superclassValue)
		closureEnv.Deactivate()
	}

	methods := make(map[string]*runtime.Function, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = &runtime.Function{
			Declaration:   m,
			Closure:       closureEnv,
			IsInitializer: m.Name.Lexeme == "init",
		}
	}

	classValue := it.gc.NewClassValue(&runtime.Class{
		Name:       s.Name.Lexeme,
		Superclass: superclass,
		Methods:    methods,
	})

	if isGlobal {
		it.env.DefineGlobal(s.Name.Lexeme, classValue)
	} else {
		it.env.AssignAt(0, slot, classValue)
	}
	return nil
}
