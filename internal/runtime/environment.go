package runtime

// MaxLocalSlots bounds a single Local environment's slot array (spec.md
// §3: "a bounded slot array (≤ 256 entries)"). It mirrors the resolver's
// own per-scope cap (internal/resolver.maxLocals) since both enforce the
// same structural limit from opposite ends of the pipeline.
const MaxLocalSlots = 256

// Environment is either the single Global frame (name-keyed, uncapped —
// see SPEC_FULL.md §10's Open Question decision) or a Local frame
// (slot-indexed, capped, linked to its enclosing frame). Local frames
// never look anything up by name: the resolver has already turned every
// local reference into a (depth, slot) pair.
type Environment struct {
	enclosing *Environment
	isGlobal  bool
	active    bool

	slots []*Value // Local: positional; Global: parallel to names' indices

	names map[string]int // Global only: name -> index into slots

	gcMark int
	gcNext *Environment
}

// newGlobalEnvironment returns the root environment. Its enclosing link
// is nil per spec.md §3 invariant 1.
func newGlobalEnvironment() *Environment {
	return &Environment{isGlobal: true, active: true, names: make(map[string]int)}
}

// newLocalEnvironment returns a Local frame enclosed by parent. parent is
// never nil for a well-formed program (invariant 1).
func newLocalEnvironment(parent *Environment) *Environment {
	return &Environment{enclosing: parent, active: true}
}

// IsGlobal reports whether this is the root environment.
func (e *Environment) IsGlobal() bool {
	return e.isGlobal
}

// Enclosing returns the enclosing environment, or nil for the global
// environment.
func (e *Environment) Enclosing() *Environment {
	return e.enclosing
}

// UsedSlotCount returns the number of Local slots currently occupied,
// mainly for tests of the side-table (depth, slot) invariant (spec.md
// §8).
func (e *Environment) UsedSlotCount() int {
	return len(e.slots)
}

// Active reports the GC-relevant active flag (spec.md §3 invariant 5 /
// §4.5 Block semantics).
func (e *Environment) Active() bool {
	return e.active
}

// Deactivate marks the environment inactive, as done when a block
// exits; closures that captured it keep it reachable through their
// Closure field regardless (spec.md §4.5 "Block").
func (e *Environment) Deactivate() {
	e.active = false
}

// Define appends v as a new Local slot and returns its index. Used for
// `var` declarations and function parameter binding, both of which the
// resolver assigns sequential slot indices to within a fresh scope.
func (e *Environment) Define(v *Value) (int, error) {
	if e.isGlobal {
		panic("runtime: Define called on global environment; use DefineGlobal")
	}
	if len(e.slots) >= MaxLocalSlots {
		return 0, ErrTooManyConstants
	}
	e.slots = append(e.slots, v)
	return len(e.slots) - 1, nil
}

// DefineAt sets a specific Local slot index, growing the slot array if
// needed. Used for the synthetic `this`/`super` slot-0 bindings, which
// the resolver always places at index 0 in a scope introduced purely to
// carry them.
func (e *Environment) DefineAt(slot int, v *Value) {
	for len(e.slots) <= slot {
		e.slots = append(e.slots, Nil)
	}
	e.slots[slot] = v
}

// ancestor walks depth enclosing links from e.
func (e *Environment) ancestor(depth int) *Environment {
	env := e
	for i := 0; i < depth; i++ {
		env = env.enclosing
	}
	return env
}

// GetAt returns the value at (depth, slot) relative to e, per the
// resolver's side-table contract (spec.md §6).
func (e *Environment) GetAt(depth, slot int) *Value {
	env := e.ancestor(depth)
	if slot < 0 || slot >= len(env.slots) {
		return Nil
	}
	return env.slots[slot]
}

// AssignAt overwrites the value at (depth, slot) relative to e.
func (e *Environment) AssignAt(depth, slot int, v *Value) {
	env := e.ancestor(depth)
	for len(env.slots) <= slot {
		env.slots = append(env.slots, Nil)
	}
	env.slots[slot] = v
}

// DefineGlobal binds or rebinds name in the global environment.
// Redefinition is explicitly allowed (spec.md §4.2).
func (e *Environment) DefineGlobal(name string, v *Value) {
	if idx, ok := e.names[name]; ok {
		e.slots[idx] = v
		return
	}
	e.names[name] = len(e.slots)
	e.slots = append(e.slots, v)
}

// GetGlobal looks up name in the global environment.
func (e *Environment) GetGlobal(name string) (*Value, bool) {
	idx, ok := e.names[name]
	if !ok {
		return nil, false
	}
	return e.slots[idx], true
}

// AssignGlobal overwrites an already-defined global; ok is false when
// name was never defined, which the evaluator turns into
// "Undefined variable 'name'."
func (e *Environment) AssignGlobal(name string, v *Value) bool {
	idx, ok := e.names[name]
	if !ok {
		return false
	}
	e.slots[idx] = v
	return true
}

// GlobalNames returns every currently bound global name, in map-iteration
// (unordered) order; callers that need a stable order (the env() native,
// spec.md §4.6) sort it themselves.
func (e *Environment) GlobalNames() []string {
	names := make([]string, 0, len(e.names))
	for name := range e.names {
		names = append(names, name)
	}
	return names
}
