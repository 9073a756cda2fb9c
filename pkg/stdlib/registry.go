// Package stdlib provides the Orangutan builtin function registry and the
// pure builtins.
package stdlib

import (
	"sort"

	"github.com/orangutan-lang/orangutan/pkg/evaluator"
)

// Registry holds registered builtins. It is consulted by the evaluator after
// environment lookup fails.
type Registry struct {
	fns map[string]*evaluator.Builtin
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns: make(map[string]*evaluator.Builtin),
	}
}

// Register adds a builtin, replacing any previous one with the same name.
func (r *Registry) Register(name string, fn evaluator.BuiltinFunction) {
	r.fns[name] = &evaluator.Builtin{Name: name, Fn: fn}
}

// Lookup retrieves a builtin by name.
func (r *Registry) Lookup(name string) (*evaluator.Builtin, bool) {
	b, ok := r.fns[name]
	return b, ok
}

// Get retrieves a builtin by name, or nil.
func (r *Registry) Get(name string) *evaluator.Builtin {
	return r.fns[name]
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
