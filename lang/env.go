package lang

// Env implements a lexical environment chain.
type Env struct {
	parent *Env
	values map[string]Value
}

// NewEnv creates an environment with optional parent.
func NewEnv(parent *Env) *Env {
	return &Env{
		parent: parent,
		values: make(map[string]Value),
	}
}

// Define binds name to value in the current scope, shadowing outer bindings.
func (e *Env) Define(name string, val Value) {
	e.values[name] = val
}

// Set updates the nearest existing binding.
func (e *Env) Set(name string, val Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = val
			return nil
		}
	}
	return Errorf(NameError, "assignment to undefined variable %s", name)
}

// Get retrieves a binding, searching parents if necessary.
func (e *Env) Get(name string) (Value, error) {
	val, ok := e.Lookup(name)
	if !ok {
		return Value{}, Errorf(NameError, "undefined variable %s", name)
	}
	return val, nil
}

// Lookup is Get without an error value.
func (e *Env) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if val, ok := env.values[name]; ok {
			return val, true
		}
	}
	return Value{}, false
}

// Parent returns the parent environment.
func (e *Env) Parent() *Env {
	return e.parent
}
