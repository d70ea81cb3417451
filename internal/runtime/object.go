package runtime

import "github.com/loxlang/loxi/internal/ast"

// MaxFields bounds the number of distinct field names a single Instance
// may carry (spec.md §3: "a static upper bound on the number of fields
// per instance").
const MaxFields = 256

// Function is the payload shared by every Value wrapper of kind
// KindFunction: a declaration, a captured closure, and whether it is a
// class initializer (spec.md §3).
type Function struct {
	Declaration   *ast.Function
	Closure       *Environment
	IsInitializer bool

	gcMark     int
	gcRecycled int
}

// Name returns the function's declared name, or "" for an anonymous
// function (loxi has none today, but bound methods still share this
// field so nothing special-cases them).
func (f *Function) Name() string {
	if f.Declaration == nil {
		return ""
	}
	return f.Declaration.Name.Lexeme
}

// Arity is the number of declared parameters.
func (f *Function) Arity() int {
	return len(f.Declaration.Params)
}

// Class is the payload shared by every Value wrapper of kind KindClass
// (spec.md §3).
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function

	gcMark     int
	gcRecycled int
}

// FindMethod looks up name in this class's method table and, if absent,
// walks the superclass chain (spec.md §4.5 "super.method" / property
// lookup).
func (c *Class) FindMethod(name string) (*Function, bool) {
	if fn, ok := c.Methods[name]; ok {
		return fn, true
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil, false
}

// InitArity returns the arity of this class's `init` method, walking the
// superclass chain, or 0 if there is none.
func (c *Class) InitArity() int {
	if fn, ok := c.FindMethod("init"); ok {
		return fn.Arity()
	}
	return 0
}

// Instance is the payload shared by every Value wrapper of kind
// KindInstance (spec.md §3).
type Instance struct {
	Class  *Class
	Fields map[string]*Value

	gcMark     int
	gcRecycled int
}

// NewInstance allocates an Instance for class with an empty field table.
func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: make(map[string]*Value)}
}

// GetField looks up name on the instance: fields shadow methods, and a
// method hit is bound to this instance before being returned (spec.md
// §4.5 "Property lookup on an instance").
func (i *Instance) GetField(gc *GC, name string) (*Value, bool) {
	if v, ok := i.Fields[name]; ok {
		return v, true
	}
	if method, ok := i.Class.FindMethod(name); ok {
		return gc.NewFunctionValue(Bind(gc, method, i)), true
	}
	return nil, false
}

// SetField assigns name on the instance, enforcing MaxFields on first
// assignment to a new name.
func (i *Instance) SetField(name string, value *Value) error {
	if _, exists := i.Fields[name]; !exists && len(i.Fields) >= MaxFields {
		return errTooManyFields
	}
	i.Fields[name] = value
	return nil
}

// Bind produces a fresh Function whose closure introduces `this` at slot
// 0 ahead of method's declaring closure, per spec.md §4.5 ("Property
// lookup on an instance" and "super.method" both bind this way).
func Bind(gc *GC, method *Function, instance *Instance) *Function {
	env := gc.NewEnclosedEnvironment(method.Closure)
	env.DefineAt(0, gc.NewInstanceValue(instance))
	env.Deactivate()
	return &Function{Declaration: method.Declaration, Closure: env, IsInitializer: method.IsInitializer}
}
