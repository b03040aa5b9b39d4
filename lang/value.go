package lang

import (
	"math"
	"strconv"
	"strings"

	"github.com/tog-lang/tog/parser"
)

// ValueType enumerates the different runtime value categories.
type ValueType int

const (
	TypeUnit ValueType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeArray
	TypeRange
	TypeStruct
	TypeEnum
	TypeFunction
	TypeBuiltin
)

// Value represents any runtime object in the interpreter.
type Value struct {
	Type    ValueType
	payload interface{}
}

// Array is the shared backing store of an array value.
type Array struct {
	Elems []Value
}

// Range is a lazy half-open integer interval [Start, End).
type Range struct {
	Start, End int64
}

// Len returns the number of integers in the range. Spans wider than
// math.MaxInt64 report math.MaxInt64.
func (r Range) Len() int64 {
	if r.End <= r.Start {
		return 0
	}
	if n := r.End - r.Start; n > 0 {
		return n
	}
	return math.MaxInt64
}

// Contains reports whether n lies in the range.
func (r Range) Contains(n int64) bool {
	return n >= r.Start && n < r.End
}

// StructInstance holds field values in declaration order.
type StructInstance struct {
	Def    *StructDef
	Fields []Value
}

// Field returns the named field value.
func (s *StructInstance) Field(name string) (Value, bool) {
	idx, ok := s.Def.index[name]
	if !ok {
		return Value{}, false
	}
	return s.Fields[idx], true
}

// EnumInstance is a constructed variant of an enum.
type EnumInstance struct {
	Def        *EnumDef
	Variant    int
	Payload    Value
	HasPayload bool
}

// VariantName returns the name of the instance's variant.
func (e *EnumInstance) VariantName() string {
	return e.Def.Variants[e.Variant].Name
}

// Primitive represents a built-in Go function exposed to the interpreter.
type Primitive func(*Evaluator, []Value) (Value, error)

// Builtin is a named primitive with an argument count range. MaxArgs < 0
// means variadic.
type Builtin struct {
	Name    string
	MinArgs int
	MaxArgs int
	Fn      Primitive
}

// Function is a user-defined function, method or closure.
type Function struct {
	Name       string
	Params     []parser.Param
	HasSelf    bool
	ReturnType *parser.TypeExpr
	Body       *parser.BlockExpr
	Env        *Env   // captured scope; nil means the global scope
	Receiver   string // type a method is attached to
	Posn       parser.Position
}

// Unit is the singleton none value.
var Unit = Value{Type: TypeUnit}

// BoolValue returns the boolean Value equivalent.
func BoolValue(b bool) Value {
	return Value{Type: TypeBool, payload: b}
}

// IntValue constructs an integer Value.
func IntValue(i int64) Value {
	return Value{Type: TypeInt, payload: i}
}

// FloatValue constructs a floating-point Value.
func FloatValue(f float64) Value {
	return Value{Type: TypeFloat, payload: f}
}

// StringValue constructs a string Value.
func StringValue(s string) Value {
	return Value{Type: TypeString, payload: s}
}

// ArrayValue wraps elems in a new shared array.
func ArrayValue(elems []Value) Value {
	return Value{Type: TypeArray, payload: &Array{Elems: elems}}
}

// RangeValue constructs a lazy range.
func RangeValue(start, end int64) Value {
	return Value{Type: TypeRange, payload: Range{Start: start, End: end}}
}

// StructValue wraps a struct instance.
func StructValue(s *StructInstance) Value {
	return Value{Type: TypeStruct, payload: s}
}

// EnumValue wraps an enum instance.
func EnumValue(e *EnumInstance) Value {
	return Value{Type: TypeEnum, payload: e}
}

// FunctionValue wraps a user function.
func FunctionValue(fn *Function) Value {
	return Value{Type: TypeFunction, payload: fn}
}

// BuiltinValue wraps a builtin.
func BuiltinValue(b *Builtin) Value {
	return Value{Type: TypeBuiltin, payload: b}
}

func (v Value) Bool() bool {
	if b, ok := v.payload.(bool); ok {
		return b
	}
	return false
}

func (v Value) Int() int64 {
	if i, ok := v.payload.(int64); ok {
		return i
	}
	return 0
}

func (v Value) Float() float64 {
	if f, ok := v.payload.(float64); ok {
		return f
	}
	return 0
}

// Number returns an int or float payload as float64.
func (v Value) Number() float64 {
	if v.Type == TypeInt {
		return float64(v.Int())
	}
	return v.Float()
}

// IsNumber reports whether v is an int or a float.
func (v Value) IsNumber() bool {
	return v.Type == TypeInt || v.Type == TypeFloat
}

func (v Value) Str() string {
	if s, ok := v.payload.(string); ok {
		return s
	}
	return ""
}

func (v Value) Array() *Array {
	if a, ok := v.payload.(*Array); ok {
		return a
	}
	return nil
}

// Elems returns the elements of an array value, or nil.
func (v Value) Elems() []Value {
	if a := v.Array(); a != nil {
		return a.Elems
	}
	return nil
}

func (v Value) Range() Range {
	if r, ok := v.payload.(Range); ok {
		return r
	}
	return Range{}
}

func (v Value) Struct() *StructInstance {
	if s, ok := v.payload.(*StructInstance); ok {
		return s
	}
	return nil
}

func (v Value) Enum() *EnumInstance {
	if e, ok := v.payload.(*EnumInstance); ok {
		return e
	}
	return nil
}

func (v Value) Function() *Function {
	if fn, ok := v.payload.(*Function); ok {
		return fn
	}
	return nil
}

func (v Value) Builtin() *Builtin {
	if b, ok := v.payload.(*Builtin); ok {
		return b
	}
	return nil
}

// IsCallable reports whether v can be applied to arguments.
func (v Value) IsCallable() bool {
	return v.Type == TypeFunction || v.Type == TypeBuiltin
}

// TypeName is the name method dispatch and annotations use for v.
func (v Value) TypeName() string {
	switch v.Type {
	case TypeUnit:
		return "none"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeRange:
		return "range"
	case TypeStruct:
		return v.Struct().Def.Name
	case TypeEnum:
		return v.Enum().Def.Name
	case TypeFunction, TypeBuiltin:
		return "function"
	default:
		return "unknown"
	}
}

// String renders the canonical text used by print and string concatenation.
func (v Value) String() string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch v.Type {
	case TypeUnit:
		b.WriteString("none")
	case TypeBool:
		b.WriteString(strconv.FormatBool(v.Bool()))
	case TypeInt:
		b.WriteString(strconv.FormatInt(v.Int(), 10))
	case TypeFloat:
		b.WriteString(FormatFloat(v.Float()))
	case TypeString:
		b.WriteString(v.Str())
	case TypeArray:
		b.WriteByte('[')
		for i, elem := range v.Elems() {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, elem)
		}
		b.WriteByte(']')
	case TypeRange:
		r := v.Range()
		b.WriteString("range(")
		b.WriteString(strconv.FormatInt(r.Start, 10))
		b.WriteString(", ")
		b.WriteString(strconv.FormatInt(r.End, 10))
		b.WriteByte(')')
	case TypeStruct:
		s := v.Struct()
		b.WriteString(s.Def.Name)
		if len(s.Def.Fields) == 0 {
			b.WriteString(" {}")
			break
		}
		b.WriteString(" { ")
		for i, field := range s.Def.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(field.Name)
			b.WriteString(": ")
			writeValue(b, s.Fields[i])
		}
		b.WriteString(" }")
	case TypeEnum:
		e := v.Enum()
		b.WriteString(e.Def.Name)
		b.WriteString("::")
		b.WriteString(e.VariantName())
		if e.HasPayload {
			b.WriteByte('(')
			writeValue(b, e.Payload)
			b.WriteByte(')')
		}
	case TypeFunction:
		name := v.Function().Name
		if name == "" {
			name = "anonymous"
		}
		b.WriteString("<function " + name + ">")
	case TypeBuiltin:
		b.WriteString("<builtin " + v.Builtin().Name + ">")
	default:
		b.WriteString("<unknown>")
	}
}

// FormatFloat renders f as the shortest decimal that round-trips, without
// an exponent.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// IsTruthy reports whether v counts as true in a condition. Only false and
// none are falsy.
func IsTruthy(v Value) bool {
	switch v.Type {
	case TypeUnit:
		return false
	case TypeBool:
		return v.Bool()
	default:
		return true
	}
}

// Equal reports structural equality. Ints and floats compare numerically.
func Equal(a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		if a.Type == TypeInt && b.Type == TypeInt {
			return a.Int() == b.Int()
		}
		return a.Number() == b.Number()
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeUnit:
		return true
	case TypeBool:
		return a.Bool() == b.Bool()
	case TypeString:
		return a.Str() == b.Str()
	case TypeArray:
		ae, be := a.Elems(), b.Elems()
		if len(ae) != len(be) {
			return false
		}
		for i := range ae {
			if !Equal(ae[i], be[i]) {
				return false
			}
		}
		return true
	case TypeRange:
		ar, br := a.Range(), b.Range()
		return ar.Len() == br.Len() && (ar.Len() == 0 || ar.Start == br.Start)
	case TypeStruct:
		as, bs := a.Struct(), b.Struct()
		if as == bs {
			return true
		}
		if as.Def != bs.Def {
			return false
		}
		for i := range as.Fields {
			if !Equal(as.Fields[i], bs.Fields[i]) {
				return false
			}
		}
		return true
	case TypeEnum:
		ae, be := a.Enum(), b.Enum()
		if ae.Def != be.Def || ae.Variant != be.Variant || ae.HasPayload != be.HasPayload {
			return false
		}
		return !ae.HasPayload || Equal(ae.Payload, be.Payload)
	case TypeFunction:
		return a.Function() == b.Function()
	case TypeBuiltin:
		return a.Builtin() == b.Builtin()
	}
	return false
}
