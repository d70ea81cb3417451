// Package resolver implements the static pass that binds every variable
// reference to a lexical depth and slot index, rejects semantically
// invalid constructs, and desugars the scope entries for `this` and
// `super` (spec.md §4.4). It walks the AST exactly once, after parsing
// and before evaluation.
package resolver

import (
	"github.com/loxlang/loxi/internal/ast"
	loxerrors "github.com/loxlang/loxi/internal/errors"
	"github.com/loxlang/loxi/internal/lexer"
)

// functionType tracks what kind of function body the resolver is
// currently inside, needed to validate `return` and initializer rules.
type functionType int

const (
	fnNone functionType = iota
	fnFunction
	fnInitializer
	fnMethod
)

// classType tracks whether the resolver is inside a class body and
// whether that class has a superclass, needed to validate `this`/`super`.
type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

const maxLocals = 256
const maxParams = 8

// Binding is the side-table entry the evaluator consults for a resolved
// local reference: walk Depth enclosing links from the active
// environment, then index Slot within it.
type Binding struct {
	Depth int
	Slot  int
}

// scope is a single lexical scope: a name maps to whether it has been
// merely declared (false) or fully defined (true) yet, needed to catch
// self-referential initializers, plus the slot index it will occupy.
type scope struct {
	entries map[string]*scopeEntry
	next    int
}

type scopeEntry struct {
	defined bool
	slot    int
}

func newScope() *scope {
	return &scope{entries: make(map[string]*scopeEntry)}
}

// Resolver performs the static pass. Locals maps AST node identity
// (pointer identity of the Expr) to its resolved Binding; absence means
// the name is global, per spec.md §6's side-table contract.
type Resolver struct {
	scopes          []*scope
	locals          map[ast.Expr]Binding
	currentFunction functionType
	currentClass    classType
	reporter        *loxerrors.Reporter
}

// New returns a Resolver reporting diagnostics to reporter.
func New(reporter *loxerrors.Reporter) *Resolver {
	return &Resolver{
		locals:   make(map[ast.Expr]Binding),
		reporter: reporter,
	}
}

// Locals returns the populated side-table after Resolve has run.
func (r *Resolver) Locals() map[ast.Expr]Binding {
	return r.locals
}

// Resolve walks an entire program's top-level statements. The global
// scope is never pushed onto r.scopes (spec.md §4.4: "The global scope
// is not on the stack"), so any name left unresolved at depth 0 falls
// through to the globals table at evaluation time.
func (r *Resolver) Resolve(program *ast.Program) {
	r.resolveStmts(program.Statements)
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		r.beginScope()
		r.resolveStmts(s.Statements)
		r.endScope()
	case *ast.Class:
		r.resolveClass(s)
	case *ast.Expression:
		r.resolveExpr(s.Expr)
	case *ast.Function:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, fnFunction)
	case *ast.If:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}
	case *ast.Print:
		r.resolveExpr(s.Expr)
	case *ast.Return:
		if r.currentFunction == fnNone {
			r.report(s.Keyword.Line, "Cannot return from top-level code.")
		}
		if s.Value != nil {
			if r.currentFunction == fnInitializer {
				r.report(s.Keyword.Line, "Cannot return a value from an initializer.")
			}
			r.resolveExpr(s.Value)
		}
	case *ast.Var:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name)
	case *ast.While:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)
	}
}

// resolveClass implements spec.md §4.4's class resolution details: the
// class name is declared+defined in the enclosing scope first (so
// methods can refer to it), then an optional `super` scope, then a
// mandatory `this` scope, each method resolved inside both.
func (r *Resolver) resolveClass(s *ast.Class) {
	enclosingClass := r.currentClass
	r.currentClass = classClass

	r.declare(s.Name)
	r.define(s.Name)

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme == s.Name.Lexeme {
			r.report(s.Superclass.Name.Line, "A class cannot inherit from itself.")
		}
		r.currentClass = classSubclass
		r.resolveExpr(s.Superclass)

		r.beginScope()
		r.declareNamed("super")
	}

	r.beginScope()
	r.declareNamed("this")

	for _, method := range s.Methods {
		fnType := fnMethod
		if method.Name.Lexeme == "init" {
			fnType = fnInitializer
		}
		r.resolveFunction(method, fnType)
	}

	r.endScope()

	if s.Superclass != nil {
		r.endScope()
	}

	r.currentClass = enclosingClass
}

func (r *Resolver) resolveFunction(fn *ast.Function, kind functionType) {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind

	r.beginScope()
	if len(fn.Params) > maxParams {
		r.report(fn.Name.Line, "Cannot have more than 8 parameters.")
	}
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fn.Body)
	r.endScope()

	r.currentFunction = enclosingFunction
}

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Assign:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name.Lexeme)
	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Call:
		r.resolveExpr(e.Callee)
		if len(e.Arguments) > maxParams {
			r.report(e.Paren.Line, "Cannot have more than 8 arguments.")
		}
		for _, arg := range e.Arguments {
			r.resolveExpr(arg)
		}
	case *ast.Get:
		r.resolveExpr(e.Object)
	case *ast.Grouping:
		r.resolveExpr(e.Expression)
	case *ast.Literal:
		// no identifiers to resolve
	case *ast.Logical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Set:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)
	case *ast.Super:
		switch r.currentClass {
		case classNone:
			r.report(e.Keyword.Line, "Cannot use 'super' outside of a class.")
		case classClass:
			r.report(e.Keyword.Line, "Cannot use 'super' in a class with no superclass.")
		}
		r.resolveLocal(e, "super")
	case *ast.This:
		if r.currentClass == classNone {
			r.report(e.Keyword.Line, "Cannot use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e, "this")
	case *ast.Unary:
		r.resolveExpr(e.Right)
	case *ast.Variable:
		if len(r.scopes) > 0 {
			if entry, ok := r.currentScope().entries[e.Name.Lexeme]; ok && !entry.defined {
				r.report(e.Name.Line, "Cannot read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name.Lexeme)
	}
}

func (r *Resolver) report(line int, message string) {
	r.reporter.Report(line, message)
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, newScope())
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) currentScope() *scope {
	return r.scopes[len(r.scopes)-1]
}

// declare registers name in the innermost scope as declared-but-not-yet-
// defined. A name already present in that exact scope is a redeclaration
// error; the prior entry is left in place rather than overwritten.
func (r *Resolver) declare(name lexer.Token) {
	if len(r.scopes) == 0 {
		return
	}
	s := r.currentScope()
	if _, ok := s.entries[name.Lexeme]; ok {
		r.report(name.Line, "Variable with this name already declared in this scope.")
		return
	}
	if s.next >= maxLocals {
		r.report(name.Line, "Too many local variables in function.")
		return
	}
	s.entries[name.Lexeme] = &scopeEntry{defined: false, slot: s.next}
	s.next++
}

// declareNamed inserts name into the innermost scope as declared-but-not-
// defined, assigning it the next free slot. Used for the synthetic
// `this`/`super` scope entries, which have no source token of their own.
func (r *Resolver) declareNamed(name string) {
	if len(r.scopes) == 0 {
		return
	}
	s := r.currentScope()
	if s.next >= maxLocals {
		r.report(0, "Too many local variables in function.")
		return
	}
	s.entries[name] = &scopeEntry{defined: false, slot: s.next}
	s.next++
}

func (r *Resolver) define(name lexer.Token) {
	if len(r.scopes) == 0 {
		return
	}
	if entry, ok := r.currentScope().entries[name.Lexeme]; ok {
		entry.defined = true
	}
}

// resolveLocal walks the scope stack from innermost outward; on the
// first match it records (depth, slot) against expr's identity. No match
// means the name is global and nothing is recorded, per spec.md §6.
func (r *Resolver) resolveLocal(expr ast.Expr, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if entry, ok := r.scopes[i].entries[name]; ok {
			r.locals[expr] = Binding{Depth: len(r.scopes) - 1 - i, Slot: entry.slot}
			return
		}
	}
}
