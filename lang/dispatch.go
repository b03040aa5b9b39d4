package lang

import (
	"sort"
	"strings"
)

// ResolveMethod finds the method called for recv.method(...) on a value of
// typeName. Inherent methods win over trait methods; a trait method is used
// only when exactly one implemented trait provides it.
func (ev *Evaluator) ResolveMethod(typeName, method string) (*Function, error) {
	if fn, ok := ev.ctx.InherentMethod(typeName, method); ok {
		return fn, nil
	}
	impls := ev.ctx.TraitMethods(typeName, method)
	switch len(impls) {
	case 0:
		return nil, Errorf(MethodNotFoundError, "no method %s for type %s", method, typeName)
	case 1:
		for _, fn := range impls {
			return fn, nil
		}
	}
	traits := make([]string, 0, len(impls))
	for name := range impls {
		traits = append(traits, name)
	}
	sort.Strings(traits)
	return nil, Errorf(DispatchError, "method %s for type %s is ambiguous between traits %s",
		method, typeName, strings.Join(traits, ", "))
}

// CallMethod dispatches recv.method(args) with self bound to recv. A struct
// field holding a function is called when no method matches.
func (ev *Evaluator) CallMethod(recv Value, method string, args []Value) (Value, error) {
	fn, err := ev.ResolveMethod(recv.TypeName(), method)
	if err != nil {
		if IsKind(err, MethodNotFoundError) {
			if s := recv.Struct(); s != nil {
				if field, ok := s.Field(method); ok && field.IsCallable() {
					return ev.Apply(field, args)
				}
			}
		}
		return Value{}, err
	}
	return ev.callFunction(fn, &recv, args)
}

// callAssociated calls Type::name(args) for a non-enum type.
func (ev *Evaluator) callAssociated(typeName, name string, args []Value) (Value, error) {
	fn, err := ev.ResolveMethod(typeName, name)
	if err != nil {
		return Value{}, err
	}
	return ev.callFunction(fn, nil, args)
}
