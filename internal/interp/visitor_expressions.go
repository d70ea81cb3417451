package interp

import (
	"github.com/loxlang/loxi/internal/ast"
	"github.com/loxlang/loxi/internal/lexer"
	"github.com/loxlang/loxi/internal/runtime"
)

// evaluate dispatches a single expression (spec.md §4.5 "Expression
// semantics").
func (it *Interp) evaluate(expr ast.Expr) (*runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.Assign:
		return it.evalAssign(e)
	case *ast.Binary:
		return it.evalBinary(e)
	case *ast.Call:
		return it.evalCall(e)
	case *ast.Get:
		return it.evalGet(e)
	case *ast.Grouping:
		return it.evaluate(e.Expression)
	case *ast.Literal:
		return it.evalLiteral(e), nil
	case *ast.Logical:
		return it.evalLogical(e)
	case *ast.Set:
		return it.evalSet(e)
	case *ast.Super:
		return it.evalSuper(e)
	case *ast.This:
		return it.lookupVariable(e, "this"), nil
	case *ast.Unary:
		return it.evalUnary(e)
	case *ast.Variable:
		return it.evalVariable(e)
	}
	return runtime.Nil, nil
}

func (it *Interp) evalLiteral(e *ast.Literal) *runtime.Value {
	switch v := e.Value.(type) {
	case nil:
		return runtime.Nil
	case bool:
		return runtime.Bool(v)
	case float64:
		return it.gc.NewNumber(v)
	case string:
		return it.gc.NewString(v)
	default:
		return runtime.Nil
	}
}

// lookupVariable resolves name either through the side-table (local) or
// the globals table, returning Nil for an unbound local slot — evaluate
// only routes `this` through this path, which is always defined by the
// time it is read (`super` goes through evalSuper).
func (it *Interp) lookupVariable(expr ast.Expr, name string) *runtime.Value {
	if binding, ok := it.locals[expr]; ok {
		return it.env.GetAt(binding.Depth, binding.Slot)
	}
	if v, ok := it.globals.GetGlobal(name); ok {
		return v
	}
	return runtime.Nil
}

func (it *Interp) evalVariable(e *ast.Variable) (*runtime.Value, error) {
	var v *runtime.Value
	if binding, ok := it.locals[e]; ok {
		v = it.env.GetAt(binding.Depth, binding.Slot)
	} else {
		gv, ok := it.globals.GetGlobal(e.Name.Lexeme)
		if !ok {
			return nil, it.runtimeErrorf(e.Name.Line, "Undefined variable '%s'.", e.Name.Lexeme)
		}
		v = gv
	}
	if v == runtime.Uninitialized {
		if it.uninitializedVariableIsError {
			return nil, it.runtimeErrorf(e.Name.Line, "Accessing uninitialized variable '%s'.", e.Name.Lexeme)
		}
		return runtime.Nil, nil
	}
	return v, nil
}

func (it *Interp) evalAssign(e *ast.Assign) (*runtime.Value, error) {
	value, err := it.evaluate(e.Value)
	if err != nil {
		return nil, err
	}

	if binding, ok := it.locals[e]; ok {
		it.env.AssignAt(binding.Depth, binding.Slot, value)
		return value, nil
	}
	if !it.globals.AssignGlobal(e.Name.Lexeme, value) {
		return nil, it.runtimeErrorf(e.Name.Line, "Undefined variable '%s'.", e.Name.Lexeme)
	}
	return value, nil
}

func (it *Interp) evalLogical(e *ast.Logical) (*runtime.Value, error) {
	left, err := it.evaluate(e.Left)
	if err != nil {
		return nil, err
	}

	if e.Operator.Type == lexer.OR {
		if left.Truthy() {
			return left, nil
		}
	} else {
		if !left.Truthy() {
			return left, nil
		}
	}
	return it.evaluate(e.Right)
}

func (it *Interp) evalUnary(e *ast.Unary) (*runtime.Value, error) {
	right, err := it.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Type {
	case lexer.MINUS:
		if right.Kind != runtime.KindNumber {
			return nil, it.runtimeErrorf(e.Operator.Line, "Operand must be a number.")
		}
		return it.gc.NewNumber(-right.Number), nil
	case lexer.BANG:
		return runtime.Bool(!right.Truthy()), nil
	}
	return runtime.Nil, nil
}

// evalBinary pins the left operand while the right is evaluated (spec.md
// §4.3's pin stack discipline: "operand of a binary expression while the
// other side is evaluated").
func (it *Interp) evalBinary(e *ast.Binary) (*runtime.Value, error) {
	left, err := it.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	if err := it.gc.Pin(left); err != nil {
		return nil, it.runtimeErrorf(e.Operator.Line, "%s", err.Error())
	}
	defer it.gc.Unpin()

	right, err := it.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Type {
	case lexer.PLUS:
		return it.evalAdd(e.Operator.Line, left, right)
	case lexer.MINUS:
		return it.numericBinary(e.Operator.Line, left, right, func(a, b float64) float64 { return a - b })
	case lexer.STAR:
		return it.numericBinary(e.Operator.Line, left, right, func(a, b float64) float64 { return a * b })
	case lexer.SLASH:
		if left.Kind == runtime.KindNumber && right.Kind == runtime.KindNumber && right.Number == 0 {
			return nil, it.runtimeErrorf(e.Operator.Line, "Division by zero.")
		}
		return it.numericBinary(e.Operator.Line, left, right, func(a, b float64) float64 { return a / b })
	case lexer.GREATER:
		return it.comparisonBinary(e.Operator.Line, left, right, func(a, b float64) bool { return a > b })
	case lexer.GREATER_EQUAL:
		return it.comparisonBinary(e.Operator.Line, left, right, func(a, b float64) bool { return a >= b })
	case lexer.LESS:
		return it.comparisonBinary(e.Operator.Line, left, right, func(a, b float64) bool { return a < b })
	case lexer.LESS_EQUAL:
		return it.comparisonBinary(e.Operator.Line, left, right, func(a, b float64) bool { return a <= b })
	case lexer.EQUAL_EQUAL:
		return runtime.Bool(left.Equals(right)), nil
	case lexer.BANG_EQUAL:
		return runtime.Bool(!left.Equals(right)), nil
	}
	return runtime.Nil, nil
}

// evalAdd implements spec.md §4.1's concatenation rule: number+number
// adds; string+string concatenates; exactly one string side stringifies
// the other operand and concatenates; anything else is a type error.
func (it *Interp) evalAdd(line int, left, right *runtime.Value) (*runtime.Value, error) {
	if left.Kind == runtime.KindNumber && right.Kind == runtime.KindNumber {
		return it.gc.NewNumber(left.Number + right.Number), nil
	}
	if left.Kind == runtime.KindString && right.Kind == runtime.KindString {
		return it.gc.NewString(left.Str + right.Str), nil
	}
	if left.Kind == runtime.KindString && right.Kind == runtime.KindNumber {
		return it.gc.NewString(left.Str + right.String()), nil
	}
	if left.Kind == runtime.KindNumber && right.Kind == runtime.KindString {
		return it.gc.NewString(left.String() + right.Str), nil
	}
	return nil, it.runtimeErrorf(line, "Operands must be two numbers or two strings.")
}

func (it *Interp) numericBinary(line int, left, right *runtime.Value, op func(a, b float64) float64) (*runtime.Value, error) {
	if left.Kind != runtime.KindNumber || right.Kind != runtime.KindNumber {
		return nil, it.runtimeErrorf(line, "Operands must be numbers.")
	}
	return it.gc.NewNumber(op(left.Number, right.Number)), nil
}

func (it *Interp) comparisonBinary(line int, left, right *runtime.Value, op func(a, b float64) bool) (*runtime.Value, error) {
	if left.Kind != runtime.KindNumber || right.Kind != runtime.KindNumber {
		return nil, it.runtimeErrorf(line, "Operands must be numbers.")
	}
	return runtime.Bool(op(left.Number, right.Number)), nil
}

// evalCall pins the callee while arguments evaluate left-to-right, per
// spec.md §4.3's pin stack discipline ("callee of a call during argument
// evaluation").
func (it *Interp) evalCall(e *ast.Call) (*runtime.Value, error) {
	callee, err := it.evaluate(e.Callee)
	if err != nil {
		return nil, err
	}
	if err := it.gc.Pin(callee); err != nil {
		return nil, it.runtimeErrorf(e.Paren.Line, "%s", err.Error())
	}
	defer it.gc.Unpin()

	args := make([]*runtime.Value, 0, len(e.Arguments))
	for _, a := range e.Arguments {
		v, err := it.evaluate(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	return it.call(e.Paren.Line, callee, args)
}

func (it *Interp) evalGet(e *ast.Get) (*runtime.Value, error) {
	obj, err := it.evaluate(e.Object)
	if err != nil {
		return nil, err
	}
	if obj.Kind != runtime.KindInstance {
		return nil, it.runtimeErrorf(e.Name.Line, "Only instances have properties.")
	}
	v, ok := obj.Instance.GetField(it.gc, e.Name.Lexeme)
	if !ok {
		return nil, it.runtimeErrorf(e.Name.Line, "Undefined property '%s'.", e.Name.Lexeme)
	}
	return v, nil
}

// evalSet pins the receiver while the right-hand side evaluates, per
// spec.md §4.3's pin stack discipline ("receiver of a property set while
// its right-hand side is evaluated").
func (it *Interp) evalSet(e *ast.Set) (*runtime.Value, error) {
	obj, err := it.evaluate(e.Object)
	if err != nil {
		return nil, err
	}
	if obj.Kind != runtime.KindInstance {
		return nil, it.runtimeErrorf(e.Name.Line, "Only instances have fields.")
	}
	if err := it.gc.Pin(obj); err != nil {
		return nil, it.runtimeErrorf(e.Name.Line, "%s", err.Error())
	}
	defer it.gc.Unpin()

	value, err := it.evaluate(e.Value)
	if err != nil {
		return nil, err
	}
	if err := obj.Instance.SetField(e.Name.Lexeme, value); err != nil {
		return nil, it.runtimeErrorf(e.Name.Line, "%s", err.Error())
	}
	return value, nil
}

// evalSuper implements spec.md §4.5's `super.method`: resolve `super` at
// the recorded depth, `this` one level nearer at slot 0, then walk the
// superclass's method table and its ancestors.
func (it *Interp) evalSuper(e *ast.Super) (*runtime.Value, error) {
	binding, ok := it.locals[e]
	if !ok {
		return nil, it.runtimeErrorf(e.Keyword.Line, "Cannot use 'super' outside of a class.")
	}

	superVal := it.env.GetAt(binding.Depth, binding.Slot)
	thisVal := it.env.GetAt(binding.Depth-1, 0)

	if superVal.Kind != runtime.KindClass || thisVal.Kind != runtime.KindInstance {
		return nil, it.runtimeErrorf(e.Keyword.Line, "Undefined property '%s'.", e.Method.Lexeme)
	}

	method, ok := superVal.Class.FindMethod(e.Method.Lexeme)
	if !ok {
		return nil, it.runtimeErrorf(e.Method.Line, "Undefined property '%s'.", e.Method.Lexeme)
	}
	return it.gc.NewFunctionValue(runtime.Bind(it.gc, method, thisVal.Instance)), nil
}
