package vm

import "testing"

func TestValueToStringIsTotal(t *testing.T) {
	values := []Value{
		IntValue(42),
		LongValue(-7),
		FloatValue(1.5),
		DoubleValue(2.0),
		BoolValue(true),
		BoolValue(false),
		CharValue('x'),
		StringValue("hi"),
		NullValue(),
		RefValue(3),
		ArrayValue(4, "int"),
		LambdaValue(5),
		{Kind: KindPrimitive, PType: PByte, I: 8},
		{Kind: KindPrimitive, PType: PShort, I: 9},
		{Kind: KindPrimitive, PType: PVoid},
		{},
	}
	for i, v := range values {
		if got := v.ToString(); got == "" && !v.IsString() {
			t.Errorf("value[%d] rendered empty: %#v", i, v)
		}
	}
}

func TestValueToStringRenderings(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{IntValue(42), "42"},
		{BoolValue(true), "true"},
		{BoolValue(false), "false"},
		{CharValue('A'), "A"},
		{DoubleValue(2), "2.0"},
		{DoubleValue(2.5), "2.5"},
		{StringValue("s"), "s"},
		{NullValue(), "null"},
		{RefValue(7), "ref@7"},
		{ArrayValue(9, "int"), "array@9"},
	}
	for _, tc := range tests {
		if got := tc.v.ToString(); got != tc.want {
			t.Errorf("ToString(%#v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestDefaultValues(t *testing.T) {
	tests := []struct {
		typ  string
		want string
	}{
		{"int", "0"},
		{"long", "0"},
		{"double", "0.0"},
		{"boolean", "false"},
		{"String", "null"},
		{"Object", "null"},
	}
	for _, tc := range tests {
		if got := DefaultValue(tc.typ).ToString(); got != tc.want {
			t.Errorf("DefaultValue(%q) = %q, want %q", tc.typ, got, tc.want)
		}
	}
}

func TestWrapInt32(t *testing.T) {
	tests := []struct {
		in   int64
		want int64
	}{
		{0, 0},
		{2147483647, 2147483647},
		{2147483648, -2147483648},
		{-2147483649, 2147483647},
	}
	for _, tc := range tests {
		if got := wrapInt32(tc.in); got != tc.want {
			t.Errorf("wrapInt32(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCastValueNarrows(t *testing.T) {
	if got := castValue(DoubleValue(3.7), "int"); got.AsInt() != 3 {
		t.Errorf("(int) 3.7 = %d, want 3", got.AsInt())
	}
	if got := castValue(IntValue(300), "byte"); got.AsInt() != 44 {
		t.Errorf("(byte) 300 = %d, want 44", got.AsInt())
	}
	if got := castValue(IntValue(65), "char"); got.ToString() != "A" {
		t.Errorf("(char) 65 = %q, want A", got.ToString())
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		op   Opcode
		a, b Value
		want bool
	}{
		{OpCmpEq, IntValue(1), IntValue(1), true},
		{OpCmpEq, IntValue(1), DoubleValue(1), true},
		{OpCmpLt, IntValue(1), IntValue(2), true},
		{OpCmpGe, IntValue(2), IntValue(2), true},
		{OpCmpEq, StringValue("a"), StringValue("a"), true},
		{OpCmpLt, StringValue("a"), StringValue("b"), true},
		{OpCmpEq, RefValue(1), RefValue(1), true},
		{OpCmpEq, RefValue(1), RefValue(2), false},
		{OpCmpNe, RefValue(1), RefValue(2), true},
		{OpCmpEq, NullValue(), NullValue(), true},
		{OpCmpLt, RefValue(1), RefValue(2), false},
		{OpCmpEq, BoolValue(true), BoolValue(true), true},
	}
	for _, tc := range tests {
		if got := compareValues(tc.op, tc.a, tc.b); got != tc.want {
			t.Errorf("compare(%v, %v, %v) = %t, want %t", tc.op, tc.a, tc.b, got, tc.want)
		}
	}
}
