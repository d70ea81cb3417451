package runtime

import "testing"

func TestGlobalDefineAndGet(t *testing.T) {
	env := newGlobalEnvironment()
	env.DefineGlobal("a", &Value{Kind: KindNumber, Number: 1})

	v, ok := env.GetGlobal("a")
	if !ok {
		t.Fatal("expected 'a' to be defined")
	}
	if v.Number != 1 {
		t.Fatalf("got %v, want 1", v.Number)
	}

	if _, ok := env.GetGlobal("missing"); ok {
		t.Fatal("expected 'missing' to be undefined")
	}
}

func TestGlobalRedefinitionIsAllowed(t *testing.T) {
	env := newGlobalEnvironment()
	env.DefineGlobal("a", &Value{Kind: KindNumber, Number: 1})
	env.DefineGlobal("a", &Value{Kind: KindNumber, Number: 2})

	v, _ := env.GetGlobal("a")
	if v.Number != 2 {
		t.Fatalf("got %v, want 2 (redefinition should overwrite)", v.Number)
	}
}

func TestGlobalAssignUndefinedFails(t *testing.T) {
	env := newGlobalEnvironment()
	if env.AssignGlobal("missing", Nil) {
		t.Fatal("expected assigning an undefined global to fail")
	}
}

func TestLocalDefineAndGetAt(t *testing.T) {
	global := newGlobalEnvironment()
	local := newLocalEnvironment(global)

	slot, err := local.Define(&Value{Kind: KindNumber, Number: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot != 0 {
		t.Fatalf("got slot %d, want 0", slot)
	}

	v := local.GetAt(0, 0)
	if v.Number != 7 {
		t.Fatalf("got %v, want 7", v.Number)
	}
}

func TestGetAtWalksEnclosingChain(t *testing.T) {
	global := newGlobalEnvironment()
	outer := newLocalEnvironment(global)
	outer.Define(&Value{Kind: KindNumber, Number: 1})
	inner := newLocalEnvironment(outer)
	inner.Define(&Value{Kind: KindNumber, Number: 2})

	if got := inner.GetAt(0, 0).Number; got != 2 {
		t.Fatalf("GetAt(0,0) = %v, want 2", got)
	}
	if got := inner.GetAt(1, 0).Number; got != 1 {
		t.Fatalf("GetAt(1,0) = %v, want 1", got)
	}
}

func TestAssignAtOverwrites(t *testing.T) {
	global := newGlobalEnvironment()
	local := newLocalEnvironment(global)
	local.Define(&Value{Kind: KindNumber, Number: 1})

	local.AssignAt(0, 0, &Value{Kind: KindNumber, Number: 99})
	if got := local.GetAt(0, 0).Number; got != 99 {
		t.Fatalf("got %v, want 99", got)
	}
}

func TestLocalSlotCapacity(t *testing.T) {
	global := newGlobalEnvironment()
	local := newLocalEnvironment(global)
	for i := 0; i < MaxLocalSlots; i++ {
		if _, err := local.Define(Nil); err != nil {
			t.Fatalf("unexpected error defining slot %d: %v", i, err)
		}
	}
	if _, err := local.Define(Nil); err != ErrTooManyConstants {
		t.Fatalf("got err %v, want ErrTooManyConstants at the %dth slot", err, MaxLocalSlots)
	}
}

func TestDeactivate(t *testing.T) {
	global := newGlobalEnvironment()
	local := newLocalEnvironment(global)
	if !local.Active() {
		t.Fatal("expected a freshly created local environment to be active")
	}
	local.Deactivate()
	if local.Active() {
		t.Fatal("expected Deactivate to clear the active flag")
	}
}

func TestGlobalNames(t *testing.T) {
	env := newGlobalEnvironment()
	env.DefineGlobal("a", Nil)
	env.DefineGlobal("b", Nil)

	names := env.GlobalNames()
	if len(names) != 2 {
		t.Fatalf("got %d names, want 2", len(names))
	}
}
