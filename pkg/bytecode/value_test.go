package bytecode

import (
	"math"
	"testing"
)

func TestValueKindChecks(t *testing.T) {
	if !NullValue().IsNull() {
		t.Error("NullValue not null")
	}
	if !BoolValue(true).IsBool() || BoolValue(true).IsNumber() {
		t.Error("BoolValue kind wrong")
	}
	if !IntValue(1).IsInt() || !IntValue(1).IsNumber() {
		t.Error("IntValue kind wrong")
	}
	if !FloatValue(1).IsFloat() || !FloatValue(1).IsNumber() {
		t.Error("FloatValue kind wrong")
	}
	s := ObjectValue(StringObjectFrom("x"))
	if !s.IsString() || s.IsNumber() {
		t.Error("string value kind wrong")
	}
}

func TestValueEqualsReflexive(t *testing.T) {
	values := []Value{
		NullValue(),
		BoolValue(true),
		BoolValue(false),
		IntValue(-3),
		FloatValue(2.5),
		ObjectValue(StringObjectFrom("hi")),
	}
	for _, v := range values {
		if !v.Equals(v) {
			t.Errorf("%s not equal to itself", v)
		}
	}
}

func TestValueEqualsCrossShapeIsFalse(t *testing.T) {
	values := []Value{
		NullValue(),
		BoolValue(false),
		IntValue(0),
		FloatValue(0),
		ObjectValue(StringObjectFrom("")),
	}
	for i, a := range values {
		for j, b := range values {
			if i == j {
				continue
			}
			if a.Equals(b) {
				t.Errorf("%s (kind %s) equals %s (kind %s)", a, a.Kind, b, b.Kind)
			}
		}
	}
}

func TestStringEqualityIsStructural(t *testing.T) {
	a := ObjectValue(StringObjectFrom("same"))
	b := ObjectValue(StringObjectFrom("same"))
	if !a.Equals(b) {
		t.Error("distinct string objects with equal content must compare equal")
	}
	c := ObjectValue(StringObjectFrom("other"))
	if a.Equals(c) {
		t.Error("different contents must not compare equal")
	}
}

func TestValuePrinting(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{NullValue(), "null"},
		{BoolValue(true), "true"},
		{BoolValue(false), "false"},
		{IntValue(-5), "-5"},
		{FloatValue(0.5), "0.5"},
		{FloatValue(math.Inf(1)), "+Inf"},
		{ObjectValue(StringObjectFrom("abcd")), "abcd"},
	}
	for _, tc := range cases {
		if got := tc.v.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestFloatNaNNotEqualToItselfValue(t *testing.T) {
	nan := FloatValue(math.NaN())
	if nan.Equals(nan) {
		t.Error("NaN must not compare equal per IEEE-754")
	}
}
