package evaluator

// Environment is a scope of variable bindings chained to its enclosing scope.
// Closures hold environments by pointer, so a scope lives as long as any
// function that captured it.
type Environment struct {
	bindings map[string]Value
	order    []string // declaration order, for module exports
	outer    *Environment
}

// NewEnvironment creates an environment with an optional enclosing scope.
func NewEnvironment(outer *Environment) *Environment {
	return &Environment{
		bindings: make(map[string]Value),
		outer:    outer,
	}
}

// Child creates a new scope whose parent is this environment.
func (e *Environment) Child() *Environment {
	return NewEnvironment(e)
}

// Outer returns the enclosing scope, or nil for a root environment.
func (e *Environment) Outer() *Environment {
	return e.outer
}

// Lookup finds name in this scope or the nearest enclosing one and returns
// the value together with the environment that owns the binding.
func (e *Environment) Lookup(name string) (Value, *Environment, bool) {
	for env := e; env != nil; env = env.outer {
		if val, ok := env.bindings[name]; ok {
			return val, env, true
		}
	}
	return nil, nil, false
}

// Get looks up a variable by name, traversing enclosing scopes.
func (e *Environment) Get(name string) (Value, bool) {
	val, _, ok := e.Lookup(name)
	return val, ok
}

// Declare binds name in this scope, shadowing any outer binding.
func (e *Environment) Declare(name string, val Value) {
	if _, ok := e.bindings[name]; !ok {
		e.order = append(e.order, name)
	}
	e.bindings[name] = val
}

// Assign updates an existing binding in the scope that owns it. It reports
// false, and changes nothing, when name was never declared.
func (e *Environment) Assign(name string, val Value) bool {
	_, owner, ok := e.Lookup(name)
	if !ok {
		return false
	}
	owner.bindings[name] = val
	return true
}

// Names returns the names bound directly in this scope, in declaration order.
func (e *Environment) Names() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}
