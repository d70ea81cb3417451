package runtime

import (
	"errors"
	"testing"
)

var errNotAnInteger = errors.New("not an integer")

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    *Value
		want bool
	}{
		{"nil", Nil, false},
		{"false", False, false},
		{"true", True, true},
		{"zero is truthy", &Value{Kind: KindNumber, Number: 0}, true},
		{"empty string is truthy", &Value{Kind: KindString, Str: ""}, true},
	}
	for _, tt := range tests {
		if got := tt.v.Truthy(); got != tt.want {
			t.Errorf("%s: Truthy() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestEqualsStructuralKinds(t *testing.T) {
	a := &Value{Kind: KindNumber, Number: 1}
	b := &Value{Kind: KindNumber, Number: 1}
	if !a.Equals(b) {
		t.Fatal("expected two distinct Number wrappers with the same payload to be equal")
	}

	s1 := &Value{Kind: KindString, Str: "hi"}
	s2 := &Value{Kind: KindString, Str: "hi"}
	if !s1.Equals(s2) {
		t.Fatal("expected two distinct String wrappers with the same payload to be equal")
	}

	if !Nil.Equals(Nil) {
		t.Fatal("expected Nil to equal Nil")
	}
}

func TestEqualsIdentityKinds(t *testing.T) {
	f1 := &Function{}
	wrapA := &Value{Kind: KindFunction, Func: f1}
	wrapB := &Value{Kind: KindFunction, Func: f1}
	if !wrapA.Equals(wrapB) {
		t.Fatal("expected two wrappers sharing the same Function payload to be equal")
	}

	f2 := &Function{}
	wrapC := &Value{Kind: KindFunction, Func: f2}
	if wrapA.Equals(wrapC) {
		t.Fatal("expected wrappers over distinct Function payloads to be unequal")
	}
}

func TestEqualsAcrossKindsIsFalse(t *testing.T) {
	number := &Value{Kind: KindNumber, Number: 0}
	str := &Value{Kind: KindString, Str: "0"}
	if number.Equals(str) {
		t.Fatal("expected a Number and a String to never compare equal")
	}
}

func TestEqualsNaN(t *testing.T) {
	nan := &Value{Kind: KindNumber, Number: nanValue()}
	if nan.Equals(nan) {
		t.Fatal("expected NaN to not equal itself")
	}
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}

func TestEqualsReflexiveAndSymmetric(t *testing.T) {
	values := []*Value{
		Nil, True, False,
		{Kind: KindNumber, Number: 42},
		{Kind: KindString, Str: "hello"},
	}
	for _, v := range values {
		if !v.Equals(v) {
			t.Errorf("%s: expected Equals to be reflexive", v.String())
		}
	}
	for _, a := range values {
		for _, b := range values {
			if a.Equals(b) != b.Equals(a) {
				t.Errorf("Equals(%s, %s) is not symmetric", a.String(), b.String())
			}
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{3, "3"},
		{-3, "-3"},
		{3.5, "3.5"},
		{100, "100"},
	}
	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumberSignedZero(t *testing.T) {
	if got := formatNumber(negativeZero()); got != "-0" {
		t.Errorf("formatNumber(-0) = %q, want %q", got, "-0")
	}
}

func negativeZero() float64 {
	var zero float64
	return -zero
}

func TestStringifyRoundTrip(t *testing.T) {
	// spec.md §8: for all finite, integer-valued Numbers within int
	// range, stringify then parse back to the same value.
	ints := []int{0, 1, -1, 42, -42, 1000000}
	for _, i := range ints {
		v := &Value{Kind: KindNumber, Number: float64(i)}
		s := v.String()
		var parsed int
		if _, err := parseIntString(s, &parsed); err != nil {
			t.Fatalf("formatNumber(%d) produced %q, which failed to parse back: %v", i, s, err)
		}
		if parsed != i {
			t.Fatalf("round-trip mismatch: %d -> %q -> %d", i, s, parsed)
		}
	}
}

func parseIntString(s string, out *int) (int, error) {
	neg := false
	i := 0
	if len(s) > 0 && s[0] == '-' {
		neg = true
		i = 1
	}
	n := 0
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, errNotAnInteger
		}
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		n = -n
	}
	*out = n
	return n, nil
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    *Value
		want string
	}{
		{Nil, "nil"},
		{True, "true"},
		{False, "false"},
		{&Value{Kind: KindNumber, Number: 2}, "2"},
		{&Value{Kind: KindString, Str: "hi"}, "hi"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestUninitializedIsDistinctFromNil(t *testing.T) {
	if Uninitialized == Nil {
		t.Fatal("expected Uninitialized to be a distinct singleton from Nil")
	}
	if Uninitialized.Kind != KindNil {
		t.Fatal("expected Uninitialized to still be KindNil for stringification/truthiness purposes")
	}
	if Uninitialized.String() != Nil.String() {
		t.Fatal("expected Uninitialized and Nil to stringify identically")
	}
}
