package lang

import (
	"fmt"
	"math"
)

func unaryOp(op string, v Value) (Value, error) {
	switch op {
	case "!":
		return BoolValue(!IsTruthy(v)), nil
	case "-":
		switch v.Type {
		case TypeInt:
			return IntValue(-v.Int()), nil
		case TypeFloat:
			return FloatValue(-v.Float()), nil
		}
		return Value{}, Errorf(TypeError, "cannot negate %s", v.TypeName())
	}
	return Value{}, Errorf(TypeError, "unknown unary operator %s", op)
}

func binaryOp(op string, l, r Value) (Value, error) {
	switch op {
	case "+":
		if l.Type == TypeString || r.Type == TypeString {
			return StringValue(l.String() + r.String()), nil
		}
		return arith(op, l, r)
	case "-", "*", "/", "%":
		return arith(op, l, r)
	case "==":
		return BoolValue(Equal(l, r)), nil
	case "!=":
		return BoolValue(!Equal(l, r)), nil
	case "<", "<=", ">", ">=":
		cmp, err := Compare(l, r)
		if err != nil {
			return Value{}, err
		}
		switch op {
		case "<":
			return BoolValue(cmp < 0), nil
		case "<=":
			return BoolValue(cmp <= 0), nil
		case ">":
			return BoolValue(cmp > 0), nil
		default:
			return BoolValue(cmp >= 0), nil
		}
	}
	return Value{}, Errorf(TypeError, "unknown operator %s", op)
}

func arith(op string, l, r Value) (Value, error) {
	if !l.IsNumber() || !r.IsNumber() {
		return Value{}, Errorf(TypeError, "unsupported operand types for %s: %s and %s", op, l.TypeName(), r.TypeName())
	}
	if l.Type == TypeInt && r.Type == TypeInt {
		a, b := l.Int(), r.Int()
		switch op {
		case "+":
			return IntValue(a + b), nil
		case "-":
			return IntValue(a - b), nil
		case "*":
			return IntValue(a * b), nil
		case "/":
			if b == 0 {
				return Value{}, Errorf(ArithmeticError, "integer division by zero")
			}
			return IntValue(a / b), nil
		case "%":
			if b == 0 {
				return Value{}, Errorf(ArithmeticError, "integer modulo by zero")
			}
			return IntValue(a % b), nil
		}
	}
	a, b := l.Number(), r.Number()
	switch op {
	case "+":
		return FloatValue(a + b), nil
	case "-":
		return FloatValue(a - b), nil
	case "*":
		return FloatValue(a * b), nil
	case "/":
		return FloatValue(a / b), nil
	case "%":
		return FloatValue(math.Mod(a, b)), nil
	}
	return Value{}, Errorf(TypeError, "unknown operator %s", op)
}

// Compare orders two numbers or two strings, returning -1, 0 or 1.
func Compare(l, r Value) (int, error) {
	switch {
	case l.Type == TypeInt && r.Type == TypeInt:
		return compareOrdered(l.Int(), r.Int()), nil
	case l.IsNumber() && r.IsNumber():
		return compareOrdered(l.Number(), r.Number()), nil
	case l.Type == TypeString && r.Type == TypeString:
		return compareOrdered(l.Str(), r.Str()), nil
	}
	return 0, Errorf(TypeError, "cannot compare %s with %s", l.TypeName(), r.TypeName())
}

func compareOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func getIndex(obj, idx Value) (Value, error) {
	if idx.Type != TypeInt {
		return Value{}, Errorf(TypeError, "index must be int, got %s", idx.TypeName())
	}
	i := idx.Int()
	switch obj.Type {
	case TypeArray:
		elems := obj.Elems()
		if i < 0 || i >= int64(len(elems)) {
			return Value{}, outOfBounds(i, len(elems))
		}
		return elems[i], nil
	case TypeRange:
		r := obj.Range()
		if i < 0 || i >= r.Len() {
			return Value{}, outOfBounds(i, int(r.Len()))
		}
		return IntValue(r.Start + i), nil
	case TypeString:
		runes := []rune(obj.Str())
		if i < 0 || i >= int64(len(runes)) {
			return Value{}, outOfBounds(i, len(runes))
		}
		return StringValue(string(runes[i])), nil
	}
	return Value{}, Errorf(TypeError, "cannot index %s", obj.TypeName())
}

func setIndex(obj, idx, val Value) error {
	if obj.Type != TypeArray {
		return Errorf(TypeError, "cannot assign to an element of %s", obj.TypeName())
	}
	if idx.Type != TypeInt {
		return Errorf(TypeError, "index must be int, got %s", idx.TypeName())
	}
	arr := obj.Array()
	i := idx.Int()
	if i < 0 || i >= int64(len(arr.Elems)) {
		return outOfBounds(i, len(arr.Elems))
	}
	arr.Elems[i] = val
	return nil
}

func outOfBounds(i int64, length int) error {
	return Errorf(IndexError, "index %d out of bounds for length %d", i, length)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func describeArity(minArgs, maxArgs int) string {
	switch {
	case maxArgs < 0:
		return fmt.Sprintf("at least %s", plural(minArgs, "argument"))
	case minArgs == maxArgs:
		return plural(minArgs, "argument")
	default:
		return fmt.Sprintf("%d to %d arguments", minArgs, maxArgs)
	}
}
