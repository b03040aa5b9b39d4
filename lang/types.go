package lang

import "github.com/tog-lang/tog/parser"

// checkType enforces an optional annotation when checks are enabled.
func (ev *Evaluator) checkType(v Value, t *parser.TypeExpr, what string) error {
	if t == nil || !ev.CheckAnnotations {
		return nil
	}
	if ev.conforms(v, t) {
		return nil
	}
	return Errorf(TypeError, "%s expects %s, got %s", what, t, v.TypeName())
}

// conforms reports whether v satisfies t. Ints satisfy float.
func (ev *Evaluator) conforms(v Value, t *parser.TypeExpr) bool {
	if t == nil {
		return true
	}
	switch t.Name {
	case "any":
		return true
	case "int":
		return v.Type == TypeInt
	case "float":
		return v.IsNumber()
	case "string":
		return v.Type == TypeString
	case "bool":
		return v.Type == TypeBool
	case "none":
		return v.Type == TypeUnit
	case "range":
		return v.Type == TypeRange
	case "fn", "function":
		return v.IsCallable()
	case "array":
		if v.Type != TypeArray {
			return false
		}
		if t.Elem == nil {
			return true
		}
		for _, elem := range v.Elems() {
			if !ev.conforms(elem, t.Elem) {
				return false
			}
		}
		return true
	}
	if !ev.ctx.IsType(t.Name) {
		// Placeholder payload types of the prelude enums.
		return true
	}
	return v.TypeName() == t.Name
}
