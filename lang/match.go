package lang

import "github.com/tog-lang/tog/parser"

// NewVariant constructs enum::variant, with payload when the variant
// carries one.
func (ctx *Context) NewVariant(enum, variant string, payload ...Value) (Value, error) {
	def, ok := ctx.Enums[enum]
	if !ok {
		return Value{}, Errorf(NameError, "unknown enum %s", enum)
	}
	if err := checkVariantArity(def, variant, len(payload), parser.Position{}); err != nil {
		return Value{}, err
	}
	idx, _ := def.VariantIndex(variant)
	inst := &EnumInstance{Def: def, Variant: idx}
	if len(payload) == 1 {
		inst.Payload = payload[0]
		inst.HasPayload = true
	}
	return EnumValue(inst), nil
}

// IsVariant reports whether v is the given variant of the given enum.
func IsVariant(v Value, enum, variant string) bool {
	e := v.Enum()
	return e != nil && e.Def.Name == enum && e.VariantName() == variant
}

func (ev *Evaluator) evalVariant(e *parser.VariantExpr, env *Env) (Value, flow, error) {
	args, fl, err := ev.evalList(e.Args, env)
	if err != nil || fl != flowNormal {
		return Value{}, fl, err
	}
	if _, ok := ev.ctx.Enums[e.Enum]; ok {
		val, err := ev.ctx.NewVariant(e.Enum, e.Variant, args...)
		return val, flowNormal, err
	}
	if ev.ctx.IsType(e.Enum) {
		val, err := ev.callAssociated(e.Enum, e.Variant, args)
		return val, flowNormal, err
	}
	return Value{}, flowNormal, Errorf(NameError, "unknown enum %s", e.Enum)
}

func (ev *Evaluator) evalMatch(m *parser.MatchExpr, env *Env) (Value, flow, error) {
	scrutinee, fl, err := ev.eval(m.Scrutinee, env)
	if err != nil || fl != flowNormal {
		return scrutinee, fl, err
	}
	for _, arm := range m.Arms {
		scope := NewEnv(env)
		ok, err := ev.matchPattern(arm.Pattern, scrutinee, scope)
		if err != nil {
			return Value{}, flowNormal, withPos(err, arm.Posn)
		}
		if ok {
			return ev.eval(arm.Body, scope)
		}
	}
	return Value{}, flowNormal, Errorf(MatchError, "no match arm for value %s", scrutinee)
}

// matchPattern tests v against pat, defining bindings in scope on success.
func (ev *Evaluator) matchPattern(pat parser.Pattern, v Value, scope *Env) (bool, error) {
	switch p := pat.(type) {
	case *parser.WildcardPattern:
		return true, nil
	case *parser.BindingPattern:
		scope.Define(p.Name, v)
		return true, nil
	case *parser.IntLit:
		return Equal(v, IntValue(p.Value)), nil
	case *parser.FloatLit:
		return Equal(v, FloatValue(p.Value)), nil
	case *parser.StringLit:
		return v.Type == TypeString && v.Str() == p.Value, nil
	case *parser.BoolLit:
		return v.Type == TypeBool && v.Bool() == p.Value, nil
	case *parser.NoneLit:
		return v.Type == TypeUnit, nil
	case *parser.VariantPattern:
		def, ok := ev.ctx.Enums[p.Enum]
		if !ok {
			return false, Errorf(NameError, "unknown enum %s", p.Enum)
		}
		argc := 0
		if p.HasPayload {
			argc = 1
		}
		if err := checkVariantArity(def, p.Variant, argc, p.Posn); err != nil {
			return false, err
		}
		e := v.Enum()
		if e == nil || e.Def != def || e.VariantName() != p.Variant {
			return false, nil
		}
		if p.HasPayload && p.Binder != "_" {
			scope.Define(p.Binder, e.Payload)
		}
		return true, nil
	}
	return false, Errorf(TypeError, "unsupported pattern %T", pat)
}
