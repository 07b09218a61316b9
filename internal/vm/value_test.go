package vm

import (
	"math"
	"testing"
)

func TestValuePrinting(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{NilVal(), "nil"},
		{BoolVal(true), "true"},
		{BoolVal(false), "false"},
		{NumberVal(7), "7"},
		{NumberVal(-0.5), "-0.5"},
		{NumberVal(1e21), "1e+21"},
		{NumberVal(math.Inf(1)), "inf"},
		{NumberVal(math.Inf(-1)), "-inf"},
		{NumberVal(math.NaN()), "nan"},
		{ObjVal(makeString("hello")), "hello"},
	}

	for _, tt := range tests {
		if got := tt.value.String(); got != tt.want {
			t.Errorf("String() got=%q, want=%q", got, tt.want)
		}
	}
}

func TestValueEquality(t *testing.T) {
	str := makeString("s")

	tests := []struct {
		a, b Value
		want bool
	}{
		{NilVal(), NilVal(), true},
		{NilVal(), BoolVal(false), false},
		{BoolVal(true), BoolVal(true), true},
		{BoolVal(true), BoolVal(false), false},
		{NumberVal(1), NumberVal(1), true},
		{NumberVal(1), NumberVal(2), false},
		{NumberVal(0), BoolVal(false), false},
		{ObjVal(str), ObjVal(str), true},
		{ObjVal(str), ObjVal(makeString("s")), false}, // identity, not content
		{NumberVal(math.NaN()), NumberVal(math.NaN()), false},
	}

	for i, tt := range tests {
		if got := tt.a.Equals(tt.b); got != tt.want {
			t.Errorf("case %d: Equals got=%t, want=%t", i, got, tt.want)
		}
	}
}

func TestFalseyness(t *testing.T) {
	falsey := []Value{NilVal(), BoolVal(false)}
	truthy := []Value{BoolVal(true), NumberVal(0), NumberVal(1), ObjVal(makeString(""))}

	for _, v := range falsey {
		if !v.IsFalsey() {
			t.Errorf("%s should be falsey", v)
		}
	}
	for _, v := range truthy {
		if v.IsFalsey() {
			t.Errorf("%s should be truthy", v)
		}
	}
}

func TestHashStringIsFNV1a(t *testing.T) {
	// reference values for the 32-bit FNV-1a
	tests := []struct {
		input string
		want  uint32
	}{
		{"", 2166136261},
		{"a", 0xe40c292c},
		{"foobar", 0xbf9cf968},
	}

	for _, tt := range tests {
		if got := HashString(tt.input); got != tt.want {
			t.Errorf("HashString(%q) got=%#x, want=%#x", tt.input, got, tt.want)
		}
	}
}
