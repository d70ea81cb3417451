package resolver

import (
	"testing"

	"github.com/loxlang/loxi/internal/ast"
	loxerrors "github.com/loxlang/loxi/internal/errors"
	"github.com/loxlang/loxi/internal/lexer"
	"github.com/loxlang/loxi/internal/parser"
)

func resolveSource(t *testing.T, source string) (*ast.Program, *Resolver, *loxerrors.Reporter) {
	t.Helper()
	reporter := loxerrors.NewReporter()
	l := lexer.New(source, reporter)
	p := parser.New(l.ScanTokens(), reporter)
	program := p.Parse()
	if reporter.HadError() {
		t.Fatalf("unexpected scan/parse errors: %v", reporter.Errors())
	}
	r := New(reporter)
	r.Resolve(program)
	return program, r, reporter
}

// exprOf digs out the lone expression inside the nth top-level
// expression statement.
func exprOf(t *testing.T, program *ast.Program, i int) ast.Expr {
	t.Helper()
	return program.Statements[i].(*ast.Expression).Expr
}

func TestResolveGlobalIsUnbound(t *testing.T) {
	program, r, reporter := resolveSource(t, "var a = 1;\na;")
	if reporter.HadError() {
		t.Fatalf("unexpected resolve errors: %v", reporter.Errors())
	}
	expr := exprOf(t, program, 1)
	if _, ok := r.Locals()[expr]; ok {
		t.Fatal("expected a top-level global reference to be absent from the side-table")
	}
}

func TestResolveLocalDepthAndSlot(t *testing.T) {
	program, r, reporter := resolveSource(t, `{
		var a = 1;
		var b = 2;
		b;
	}`)
	if reporter.HadError() {
		t.Fatalf("unexpected resolve errors: %v", reporter.Errors())
	}
	block := program.Statements[0].(*ast.Block)
	expr := block.Statements[2].(*ast.Expression).Expr
	binding, ok := r.Locals()[expr]
	if !ok {
		t.Fatal("expected a binding for 'b'")
	}
	if binding.Depth != 0 || binding.Slot != 1 {
		t.Fatalf("got (depth=%d, slot=%d), want (depth=0, slot=1)", binding.Depth, binding.Slot)
	}
}

func TestResolveNestedBlockDepth(t *testing.T) {
	program, r, reporter := resolveSource(t, `{
		var a = 1;
		{
			a;
		}
	}`)
	if reporter.HadError() {
		t.Fatalf("unexpected resolve errors: %v", reporter.Errors())
	}
	outer := program.Statements[0].(*ast.Block)
	inner := outer.Statements[1].(*ast.Block)
	expr := inner.Statements[0].(*ast.Expression).Expr
	binding, ok := r.Locals()[expr]
	if !ok {
		t.Fatal("expected a binding for 'a' referenced from the nested block")
	}
	if binding.Depth != 1 || binding.Slot != 0 {
		t.Fatalf("got (depth=%d, slot=%d), want (depth=1, slot=0)", binding.Depth, binding.Slot)
	}
}

func TestResolveThisDepthInsideMethod(t *testing.T) {
	program, r, reporter := resolveSource(t, `class A {
		m() { this; }
	}`)
	if reporter.HadError() {
		t.Fatalf("unexpected resolve errors: %v", reporter.Errors())
	}
	class := program.Statements[0].(*ast.Class)
	expr := class.Methods[0].Body[0].(*ast.Expression).Expr
	binding, ok := r.Locals()[expr]
	if !ok {
		t.Fatal("expected a binding for 'this'")
	}
	if binding.Depth != 1 {
		t.Fatalf("got depth %d, want 1 (params/body scope is one level inside the 'this' scope)", binding.Depth)
	}
}

func TestResolveSuperDepthWithSubclass(t *testing.T) {
	program, r, reporter := resolveSource(t, `class A { m() {} }
	class B < A {
		m() { super.m(); }
	}`)
	if reporter.HadError() {
		t.Fatalf("unexpected resolve errors: %v", reporter.Errors())
	}
	class := program.Statements[1].(*ast.Class)
	call := class.Methods[0].Body[0].(*ast.Expression).Expr.(*ast.Call)
	super := call.Callee.(*ast.Super)
	binding, ok := r.Locals()[super]
	if !ok {
		t.Fatal("expected a binding for 'super'")
	}
	if binding.Depth != 2 {
		t.Fatalf("got depth %d, want 2 (params/body scope is two levels inside the 'super' scope)", binding.Depth)
	}
}

func TestResolveSelfReferentialInitializerIsError(t *testing.T) {
	_, _, reporter := resolveSource(t, "{ var a = a; }")
	if !reporter.HadError() {
		t.Fatal("expected an error for reading a local in its own initializer")
	}
	if reporter.Errors()[0].Message != "Cannot read local variable in its own initializer." {
		t.Fatalf("got message %q", reporter.Errors()[0].Message)
	}
}

func TestResolveDuplicateLocalIsError(t *testing.T) {
	_, _, reporter := resolveSource(t, "{ var a = 1; var a = 2; }")
	if !reporter.HadError() {
		t.Fatal("expected an error for a duplicate local declaration")
	}
}

func TestResolveReturnOutsideFunctionIsError(t *testing.T) {
	_, _, reporter := resolveSource(t, "return 1;")
	if !reporter.HadError() {
		t.Fatal("expected an error for a top-level return")
	}
	if reporter.Errors()[0].Message != "Cannot return from top-level code." {
		t.Fatalf("got message %q", reporter.Errors()[0].Message)
	}
}

func TestResolveReturnValueFromInitializerIsError(t *testing.T) {
	_, _, reporter := resolveSource(t, `class A { init() { return 1; } }`)
	if !reporter.HadError() {
		t.Fatal("expected an error for returning a value from an initializer")
	}
}

func TestResolveThisOutsideClassIsError(t *testing.T) {
	_, _, reporter := resolveSource(t, "this;")
	if !reporter.HadError() {
		t.Fatal("expected an error for 'this' outside a class")
	}
}

func TestResolveSuperOutsideClassIsError(t *testing.T) {
	_, _, reporter := resolveSource(t, "super.m();")
	if !reporter.HadError() {
		t.Fatal("expected an error for 'super' outside a class")
	}
}

func TestResolveSuperWithNoSuperclassIsError(t *testing.T) {
	_, _, reporter := resolveSource(t, "class A { m() { super.m(); } }")
	if !reporter.HadError() {
		t.Fatal("expected an error for 'super' in a class with no superclass")
	}
}

func TestResolveClassInheritingFromItselfIsError(t *testing.T) {
	_, _, reporter := resolveSource(t, "class A < A {}")
	if !reporter.HadError() {
		t.Fatal("expected an error for a class inheriting from itself")
	}
}

func TestResolveTooManyLocalsIsError(t *testing.T) {
	var source string
	source = "{\n"
	for i := 0; i < maxLocals+1; i++ {
		source += "var v" + itoa(i) + " = 0;\n"
	}
	source += "}\n"

	_, _, reporter := resolveSource(t, source)
	if !reporter.HadError() {
		t.Fatal("expected an error for exceeding the local variable cap")
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := ""
	for i > 0 {
		digits = string(rune('0'+i%10)) + digits
		i /= 10
	}
	return digits
}

func TestResolveFunctionDeclaredAtTopLevelIsGlobal(t *testing.T) {
	program, r, reporter := resolveSource(t, `fun f() { return 1; }
	f();`)
	if reporter.HadError() {
		t.Fatalf("unexpected resolve errors: %v", reporter.Errors())
	}
	call := exprOf(t, program, 1).(*ast.Call)
	if _, ok := r.Locals()[call.Callee]; ok {
		t.Fatal("expected a top-level function reference to be a global, not a local binding")
	}
}

func TestResolveParameterShadowsOuter(t *testing.T) {
	program, r, reporter := resolveSource(t, `var a = 1;
	fun f(a) { a; }`)
	if reporter.HadError() {
		t.Fatalf("unexpected resolve errors: %v", reporter.Errors())
	}
	fn := program.Statements[1].(*ast.Function)
	expr := fn.Body[0].(*ast.Expression).Expr
	binding, ok := r.Locals()[expr]
	if !ok {
		t.Fatal("expected the parameter reference to resolve locally")
	}
	if binding.Depth != 0 || binding.Slot != 0 {
		t.Fatalf("got (depth=%d, slot=%d), want (depth=0, slot=0)", binding.Depth, binding.Slot)
	}
}
