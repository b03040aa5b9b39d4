package lang

import (
	"errors"
	"math"
	"testing"

	"github.com/tog-lang/tog/parser"
)

func TestEnvScopes(t *testing.T) {
	global := NewEnv(nil)
	global.Define("x", IntValue(1))
	inner := NewEnv(global)
	inner.Define("y", IntValue(2))

	if err := inner.Set("x", IntValue(10)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := global.Get("x"); got.Int() != 10 {
		t.Fatalf("Set must update the defining scope, got %v", got)
	}
	inner.Define("x", StringValue("shadow"))
	if got, _ := inner.Get("x"); got.Str() != "shadow" {
		t.Fatalf("expected shadowed binding, got %v", got)
	}
	if got, _ := global.Get("x"); got.Int() != 10 {
		t.Fatalf("shadowing must not touch the outer binding, got %v", got)
	}
	if _, ok := global.Lookup("y"); ok {
		t.Fatalf("inner binding leaked to the parent")
	}
	if inner.Parent() != global {
		t.Fatalf("unexpected parent")
	}

	err := inner.Set("missing", Unit)
	expectKind(t, err, NameError)
	_, err = inner.Get("missing")
	expectKind(t, err, NameError)
}

func TestValueString(t *testing.T) {
	ctx := NewContext()
	some, _ := ctx.NewVariant("Option", "Some", ArrayValue([]Value{StringValue("a")}))
	tests := []struct {
		val  Value
		want string
	}{
		{Unit, "none"},
		{BoolValue(false), "false"},
		{IntValue(-7), "-7"},
		{FloatValue(3.14), "3.14"},
		{FloatValue(2), "2"},
		{FloatValue(1e21), "1000000000000000000000"},
		{StringValue("plain"), "plain"},
		{ArrayValue(nil), "[]"},
		{ArrayValue([]Value{IntValue(1), StringValue("b"), ArrayValue([]Value{Unit})}), "[1, b, [none]]"},
		{RangeValue(0, 3), "range(0, 3)"},
		{some, "Option::Some([a])"},
		{FunctionValue(&Function{Name: "f"}), "<function f>"},
		{FunctionValue(&Function{}), "<function anonymous>"},
		{BuiltinValue(&Builtin{Name: "len"}), "<builtin len>"},
	}
	for _, tt := range tests {
		if got := tt.val.String(); got != tt.want {
			t.Fatalf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestTypeNames(t *testing.T) {
	ctx := NewContext()
	none, _ := ctx.NewVariant("Option", "None")
	tests := map[string]Value{
		"none":     Unit,
		"bool":     BoolValue(true),
		"int":      IntValue(1),
		"float":    FloatValue(1),
		"string":   StringValue(""),
		"array":    ArrayValue(nil),
		"range":    RangeValue(0, 1),
		"Option":   none,
		"function": FunctionValue(&Function{}),
	}
	for want, val := range tests {
		if got := val.TypeName(); got != want {
			t.Fatalf("TypeName() = %q, want %q", got, want)
		}
	}
}

func TestTruthiness(t *testing.T) {
	falsy := []Value{Unit, BoolValue(false)}
	truthy := []Value{BoolValue(true), IntValue(0), FloatValue(0), StringValue(""), ArrayValue(nil)}
	for _, v := range falsy {
		if IsTruthy(v) {
			t.Fatalf("%v should be falsy", v)
		}
	}
	for _, v := range truthy {
		if !IsTruthy(v) {
			t.Fatalf("%v should be truthy", v)
		}
	}
}

func TestEqual(t *testing.T) {
	shared := ArrayValue([]Value{IntValue(1)})
	tests := []struct {
		a, b Value
		want bool
	}{
		{IntValue(1), FloatValue(1), true},
		{IntValue(1), IntValue(2), false},
		{FloatValue(math.NaN()), FloatValue(math.NaN()), false},
		{StringValue("a"), StringValue("a"), true},
		{StringValue("1"), IntValue(1), false},
		{shared, shared, true},
		{shared, ArrayValue([]Value{FloatValue(1)}), true},
		{ArrayValue(nil), ArrayValue([]Value{Unit}), false},
		{RangeValue(0, 3), RangeValue(0, 3), true},
		{RangeValue(5, 2), RangeValue(9, 1), true},
		{RangeValue(0, 3), RangeValue(1, 4), false},
		{Unit, BoolValue(false), false},
	}
	for i, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Fatalf("case %d: Equal(%v, %v) = %v, want %v", i, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	if c, err := Compare(IntValue(1), FloatValue(1.5)); err != nil || c != -1 {
		t.Fatalf("Compare(1, 1.5) = %d, %v", c, err)
	}
	if c, err := Compare(StringValue("b"), StringValue("a")); err != nil || c != 1 {
		t.Fatalf("Compare(b, a) = %d, %v", c, err)
	}
	_, err := Compare(BoolValue(true), BoolValue(false))
	expectKind(t, err, TypeError)
}

func TestErrorFormatting(t *testing.T) {
	err := Errorf(NameError, "undefined name %s", "x")
	if err.Error() != "NameError: undefined name x" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	pos := parser.Position{Offset: 10, Line: 2, Column: 4}
	wrapped := withPos(err, pos)
	if wrapped.Error() != "2:4: NameError: undefined name x" {
		t.Fatalf("unexpected message %q", wrapped.Error())
	}
	withPos(err, parser.Position{Offset: 0, Line: 9, Column: 9})
	if err.Pos != pos {
		t.Fatalf("withPos must keep the first position, got %v", err.Pos)
	}
	if !IsKind(errors.Join(errors.New("context"), err), NameError) {
		t.Fatalf("IsKind must see through wrapping")
	}
	if IsKind(errors.New("plain"), NameError) {
		t.Fatalf("IsKind must reject foreign errors")
	}
}
