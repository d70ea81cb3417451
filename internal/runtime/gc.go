package runtime

// Config carries the pacing and capacity knobs spec.md leaves as
// implementation surface (§4.3, §10) and SPEC_FULL.md §3 gives a
// concrete home in internal/config.
type Config struct {
	InitialThreshold int     // starting live-count threshold before the first collection
	GrowthFactor     float64 // pacing multiplier, spec.md's "2 ×"
	MaxPinDepth      int     // pin stack depth cap, default 4096
	MaxEnvironments  int     // environment count cap, default 31*1024
}

// DefaultConfig matches the reference configuration in spec.md §4.3.
func DefaultConfig() Config {
	return Config{
		InitialThreshold: 256,
		GrowthFactor:     2.0,
		MaxPinDepth:      4096,
		MaxEnvironments:  31 * 1024,
	}
}

// GC is the mark-and-sweep, stop-the-world, non-moving collector that
// owns every Value and Environment allocation (spec.md §4.3). It also
// owns the global Environment, since nothing in the interpreter ever
// needs a Value heap without one.
type GC struct {
	cfg Config

	globals *Environment

	values       []*Value
	environments []*Environment

	pool             valuePool
	freeEnvironments []*Environment

	pins []*Value

	visitedMark  int
	recycledMark int

	valueThreshold int
	envThreshold   int

	laundryFunctions []*Function
	laundryClasses   []*Class
	laundryInstances []*Instance
}

// New returns a GC configured by cfg, with a fresh global environment.
func New(cfg Config) *GC {
	gc := &GC{
		cfg:            cfg,
		valueThreshold: cfg.InitialThreshold,
		envThreshold:   cfg.InitialThreshold,
	}
	gc.globals = newGlobalEnvironment()
	gc.environments = append(gc.environments, gc.globals)
	return gc
}

// Globals returns the root environment.
func (gc *GC) Globals() *Environment {
	return gc.globals
}

// EnvironmentCount returns the number of environments currently tracked
// (live, not yet swept).
func (gc *GC) EnvironmentCount() int {
	return len(gc.environments)
}

// MaxEnvironments returns the configured environment cap.
func (gc *GC) MaxEnvironments() int {
	return gc.cfg.MaxEnvironments
}

// NewEnclosedEnvironment allocates a Local environment enclosed by
// parent and tracks it for the next collection. Callers at recursion-
// prone sites (function calls) should check EnvironmentCount() against
// MaxEnvironments() themselves first and raise "Stack overflow." rather
// than let this grow unbounded — see internal/interp's call protocol.
func (gc *GC) NewEnclosedEnvironment(parent *Environment) *Environment {
	var env *Environment
	if n := len(gc.freeEnvironments); n > 0 {
		env = gc.freeEnvironments[n-1]
		gc.freeEnvironments = gc.freeEnvironments[:n-1]
		*env = Environment{enclosing: parent, active: true}
	} else {
		env = newLocalEnvironment(parent)
	}
	gc.environments = append(gc.environments, env)
	return env
}

// ---- Value allocation ---------------------------------------------------

func (gc *GC) track(v *Value) *Value {
	gc.values = append(gc.values, v)
	return v
}

// NewNumber allocates a Number value.
func (gc *GC) NewNumber(f float64) *Value {
	v := gc.pool.allocate()
	v.Kind = KindNumber
	v.Number = f
	return gc.track(v)
}

// NewString allocates a String value. Lox strings are immutable; this
// always produces a fresh wrapper with its own copy of the payload,
// matching spec.md §3's "deep-copied payload for String" duplication
// rule trivially (Go strings are themselves immutable value types).
func (gc *GC) NewString(s string) *Value {
	v := gc.pool.allocate()
	v.Kind = KindString
	v.Str = s
	return gc.track(v)
}

// NewNativeValue wraps a Native in a fresh Value.
func (gc *GC) NewNativeValue(n *Native) *Value {
	v := gc.pool.allocate()
	v.Kind = KindNative
	v.Native = n
	return gc.track(v)
}

// NewFunctionValue wraps a Function payload in a fresh Value. Several
// wrappers may share the same Function (e.g. re-reading a global that
// holds it); each call here is a "duplication" in spec.md §3's sense.
func (gc *GC) NewFunctionValue(f *Function) *Value {
	v := gc.pool.allocate()
	v.Kind = KindFunction
	v.Func = f
	return gc.track(v)
}

// NewClassValue wraps a Class payload in a fresh Value.
func (gc *GC) NewClassValue(c *Class) *Value {
	v := gc.pool.allocate()
	v.Kind = KindClass
	v.Class = c
	return gc.track(v)
}

// NewInstanceValue wraps an Instance payload in a fresh Value.
func (gc *GC) NewInstanceValue(i *Instance) *Value {
	v := gc.pool.allocate()
	v.Kind = KindInstance
	v.Instance = i
	return gc.track(v)
}

// ---- Pin stack -----------------------------------------------------------

// Pin pushes v onto the pin stack, keeping it reachable across the next
// allocation even though nothing else currently references it (spec.md
// §4.3's pin stack discipline). Returns ErrStackOverflow at the
// configured depth cap.
func (gc *GC) Pin(v *Value) error {
	if len(gc.pins) >= gc.cfg.MaxPinDepth {
		return ErrStackOverflow
	}
	gc.pins = append(gc.pins, v)
	return nil
}

// Unpin pops the most recently pinned value. Every Pin on a given
// control-flow path must be matched by exactly one Unpin, including on
// error unwind (spec.md §3 invariant 5) — callers typically `defer
// gc.Unpin()` immediately after a successful Pin.
func (gc *GC) Unpin() {
	gc.pins = gc.pins[:len(gc.pins)-1]
}

// PinDepth reports the current pin stack depth, mainly for tests of the
// "pin stack empty after unwind" invariant (spec.md §8).
func (gc *GC) PinDepth() int {
	return len(gc.pins)
}

// ClearPins empties the pin stack. Called on runtime-error unwind
// (spec.md §4.5, §5): "the pin stack is cleared."
func (gc *GC) ClearPins() {
	gc.pins = gc.pins[:0]
}

// ---- Collection ------------------------------------------------------

// MaybeCollect runs a collection if either live-count threshold has been
// reached (spec.md §4.3 pacing). The interpreter calls this at
// allocation-adjacent points and at REPL iteration boundaries (spec.md
// §5).
func (gc *GC) MaybeCollect() {
	if len(gc.values) >= gc.valueThreshold || len(gc.environments) >= gc.envThreshold {
		gc.Collect()
	}
}

// Collect runs one mark-and-sweep cycle unconditionally.
func (gc *GC) Collect() {
	gc.mark()
	gc.sweep()
	gc.repace()
}

func (gc *GC) repace() {
	liveValues := len(gc.values)
	valueTotal := liveValues + len(gc.pool.free)
	gc.valueThreshold = maxInt(int(float64(liveValues)*gc.cfg.GrowthFactor), valueTotal)
	if gc.valueThreshold < gc.cfg.InitialThreshold {
		gc.valueThreshold = gc.cfg.InitialThreshold
	}

	liveEnvs := len(gc.environments)
	envTotal := liveEnvs + len(gc.freeEnvironments)
	gc.envThreshold = maxInt(int(float64(liveEnvs)*gc.cfg.GrowthFactor), envTotal)
	if gc.envThreshold < gc.cfg.InitialThreshold {
		gc.envThreshold = gc.cfg.InitialThreshold
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// mark implements spec.md §4.3's root definition: every pinned value,
// every active environment (transitively, through its enclosing chain
// and slots), and — reached through any of those — every Function's
// closure, Class's superclass/methods, and Instance's class/fields.
func (gc *GC) mark() {
	gc.visitedMark++

	for _, v := range gc.pins {
		gc.markValue(v)
	}
	for _, env := range gc.environments {
		if env.active {
			gc.markEnvironment(env)
		}
	}
}

func (gc *GC) markEnvironment(env *Environment) {
	if env == nil || env.gcMark == gc.visitedMark {
		return
	}
	env.gcMark = gc.visitedMark
	for _, v := range env.slots {
		gc.markValue(v)
	}
	gc.markEnvironment(env.enclosing)
}

func (gc *GC) markValue(v *Value) {
	if v == nil || v == Nil || v == Uninitialized || v == True || v == False {
		return // singletons are never collected
	}
	if v.gcMark == gc.visitedMark {
		return
	}
	v.gcMark = gc.visitedMark

	switch v.Kind {
	case KindFunction:
		gc.markFunction(v.Func)
	case KindClass:
		gc.markClass(v.Class)
	case KindInstance:
		gc.markInstance(v.Instance)
	}
}

func (gc *GC) markFunction(f *Function) {
	if f == nil || f.gcMark == gc.visitedMark {
		return
	}
	f.gcMark = gc.visitedMark
	gc.markEnvironment(f.Closure)
}

func (gc *GC) markClass(c *Class) {
	if c == nil || c.gcMark == gc.visitedMark {
		return
	}
	c.gcMark = gc.visitedMark
	for _, m := range c.Methods {
		gc.markFunction(m)
	}
	gc.markClass(c.Superclass)
}

func (gc *GC) markInstance(i *Instance) {
	if i == nil || i.gcMark == gc.visitedMark {
		return
	}
	i.gcMark = gc.visitedMark
	gc.markClass(i.Class)
	for _, v := range i.Fields {
		gc.markValue(v)
	}
}

// sweep implements spec.md §4.3's sweep: unmarked Value wrappers are
// released (with reference-kind payloads deferred to the laundry list so
// a payload shared by several wrappers is only queued once), and
// unmarked environments go onto the recyclable-environment free list.
func (gc *GC) sweep() {
	gc.recycledMark++

	live := gc.values[:0]
	for _, v := range gc.values {
		if v.gcMark == gc.visitedMark {
			live = append(live, v)
			continue
		}
		gc.releaseValue(v)
	}
	gc.values = live

	liveEnvs := gc.environments[:0]
	for _, env := range gc.environments {
		if env.gcMark == gc.visitedMark || env == gc.globals {
			liveEnvs = append(liveEnvs, env)
			continue
		}
		gc.freeEnvironments = append(gc.freeEnvironments, env)
	}
	gc.environments = liveEnvs

	gc.drainLaundry()
}

func (gc *GC) releaseValue(v *Value) {
	switch v.Kind {
	case KindFunction:
		gc.queueFunction(v.Func)
	case KindClass:
		gc.queueClass(v.Class)
	case KindInstance:
		gc.queueInstance(v.Instance)
	}
	gc.pool.recycle(v)
}

func (gc *GC) queueFunction(f *Function) {
	if f == nil || f.gcMark == gc.visitedMark || f.gcRecycled == gc.recycledMark {
		return
	}
	f.gcRecycled = gc.recycledMark
	gc.laundryFunctions = append(gc.laundryFunctions, f)
}

func (gc *GC) queueClass(c *Class) {
	if c == nil || c.gcMark == gc.visitedMark || c.gcRecycled == gc.recycledMark {
		return
	}
	c.gcRecycled = gc.recycledMark
	gc.laundryClasses = append(gc.laundryClasses, c)
}

func (gc *GC) queueInstance(i *Instance) {
	if i == nil || i.gcMark == gc.visitedMark || i.gcRecycled == gc.recycledMark {
		return
	}
	i.gcRecycled = gc.recycledMark
	gc.laundryInstances = append(gc.laundryInstances, i)
}

// drainLaundry frees the queued payloads' own references eagerly
// instead of waiting on Go's own collector, matching spec.md §4.3's
// "laundry list... drained by freeing payloads" once the main sweep
// pass has finished walking gc.values.
func (gc *GC) drainLaundry() {
	for _, f := range gc.laundryFunctions {
		f.Closure = nil
		f.Declaration = nil
	}
	gc.laundryFunctions = gc.laundryFunctions[:0]

	for _, c := range gc.laundryClasses {
		c.Superclass = nil
		c.Methods = nil
	}
	gc.laundryClasses = gc.laundryClasses[:0]

	for _, i := range gc.laundryInstances {
		i.Class = nil
		i.Fields = nil
	}
	gc.laundryInstances = gc.laundryInstances[:0]
}
