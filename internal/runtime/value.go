// Package runtime implements the core of loxi: the Value heap, the
// Environment chain, and the mark-and-sweep Garbage Collector that owns
// them both (spec.md §3, §4.1-§4.3).
package runtime

import (
	"fmt"
	"math"
	"strconv"
)

// Kind discriminates the Value tagged union (spec.md §3).
type Kind int

const (
	KindNil Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindNative
	KindFunction
	KindClass
	KindInstance
)

// Value is a heap-allocated, GC-tracked tagged union. Only one payload
// field is meaningful for a given Kind. Values are always handled as
// *Value; duplication (assignment, argument passing) allocates a fresh
// wrapper that shares the same Func/Class/Instance/Native pointer for
// reference-kind variants, per spec.md §3.
type Value struct {
	Kind     Kind
	Boolean  bool
	Number   float64
	Str      string
	Native   *Native
	Func     *Function
	Class    *Class
	Instance *Instance

	gcMark int // rotating visited-mark, compared against GC.visitedMark
	gcNext *Value
}

// Native is a built-in callable (spec.md §4.6).
type Native struct {
	Name  string
	Arity int
	Fn    func(gc *GC, args []*Value) (*Value, error)
}

// Nil is a shared singleton for the Nil variant; it needs no payload and
// no identity, so there is no reason to allocate one per use.
var Nil = &Value{Kind: KindNil}

// Uninitialized is a distinct Nil-kind singleton used to mark a `var`
// declared without an initializer (spec.md §4.2). It stringifies and
// behaves exactly like Nil everywhere except the evaluator's variable
// read, which checks for this exact pointer to decide whether to honor
// the `uninitializedVariableIsError` configuration toggle
// (SPEC_FULL.md §10, Open Question 2).
var Uninitialized = &Value{Kind: KindNil}

// True and False are shared singletons, mirroring the teacher's
// pool.go approach of pre-allocating the two boolean values instead of
// allocating one per evaluation (internal/interp/runtime/pool.go).
var (
	True  = &Value{Kind: KindBoolean, Boolean: true}
	False = &Value{Kind: KindBoolean, Boolean: false}
)

// Bool returns the shared True or False singleton.
func Bool(b bool) *Value {
	if b {
		return True
	}
	return False
}

// Truthy implements Lox truthiness: Nil and false are falsey, everything
// else is truthy (spec.md §4.1).
func (v *Value) Truthy() bool {
	switch v.Kind {
	case KindNil:
		return false
	case KindBoolean:
		return v.Boolean
	default:
		return true
	}
}

// Equals implements spec.md §4.1's equality table: structural comparison
// for Nil/Boolean/Number/String, identity comparison for the reference
// kinds, and no cross-kind equality.
func (v *Value) Equals(other *Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNil:
		return true
	case KindBoolean:
		return v.Boolean == other.Boolean
	case KindNumber:
		return v.Number == other.Number // NaN != NaN falls out of this naturally
	case KindString:
		return v.Str == other.Str
	case KindNative:
		return v.Native == other.Native
	case KindFunction:
		return v.Func == other.Func
	case KindClass:
		return v.Class == other.Class
	case KindInstance:
		return v.Instance == other.Instance
	default:
		return false
	}
}

// String renders the value the way `print` and string concatenation do
// (spec.md §4.1's stringification rules — must match byte for byte).
func (v *Value) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBoolean:
		if v.Boolean {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.Number)
	case KindString:
		return v.Str
	case KindNative:
		return "<fn >"
	case KindFunction:
		return "<fn " + v.Func.Name() + ">"
	case KindClass:
		return v.Class.Name
	case KindInstance:
		return v.Instance.Class.Name + " instance"
	default:
		return "<invalid>"
	}
}

// Describe renders a diagnostic form of the value; for every kind but
// String it matches String() — only strings get their own diagnostic
// quoting, which nothing in this interpreter currently exercises since
// the evaluator never needs to tell a string value apart from its
// contents in an error message, but the distinct entry point is kept so
// future diagnostics (e.g. a `describe()` native) have a place to hang.
func (v *Value) Describe() string {
	if v.Kind == KindString {
		return strconv.Quote(v.Str)
	}
	return v.String()
}

// formatNumber implements spec.md §4.1's exact number formatting rule:
// signed zero, integral doubles as plain integers, otherwise DBL_DIG (15)
// significant digits.
func formatNumber(f float64) string {
	if f == 0 {
		if math.Signbit(f) {
			return "-0"
		}
		return "0"
	}
	if i := int64(f); float64(i) == f && f >= math.MinInt64 && f <= math.MaxInt64 {
		return strconv.FormatInt(i, 10)
	}
	return strconv.FormatFloat(f, 'g', 15, 64)
}

// TypeName names a Kind for runtime type-mismatch diagnostics.
func (k Kind) TypeName() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindNative:
		return "native function"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}
