// Package tools provides the host builtins that reach outside the
// interpreter (files, HTTP) and gates them with a capability policy.
package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/orangutan-lang/orangutan/pkg/capabilities"
	"github.com/orangutan-lang/orangutan/pkg/evaluator"
	"github.com/orangutan-lang/orangutan/pkg/stdlib"
)

// Call carries what a tool needs from the calling program.
type Call struct {
	// Dir is the directory of the module making the call; relative paths
	// resolve against it.
	Dir  string
	Args []evaluator.Value
}

// Def represents a host builtin available to Orangutan programs.
type Def struct {
	Name         string
	CapabilityID string
	Arity        int
	Execute      func(ctx context.Context, call Call) (evaluator.Value, error)
}

// Registry holds registered tools.
type Registry struct {
	tools map[string]*Def
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Def),
	}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Def) {
	r.tools[tool.Name] = &tool
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) *Def {
	return r.tools[name]
}

// All returns the registered tools sorted by name.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.tools))
	for _, d := range r.tools {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RegisterDefaults adds all built-in tools.
func RegisterDefaults(r *Registry) {
	r.Register(readFileTool())
	r.Register(writeFileTool())
	r.Register(listDirTool())
	r.Register(existsTool())
	r.Register(httpGetTool())
	r.Register(httpPostTool())
}

// Install exposes every tool as a builtin. Each call checks policy first;
// a denied capability becomes an ErrorSignal rather than a host failure.
func (r *Registry) Install(builtins *stdlib.Registry, policy *capabilities.Policy) {
	for _, def := range r.All() {
		builtins.Register(def.Name, bind(def, policy))
	}
}

func bind(def *Def, policy *capabilities.Policy) evaluator.BuiltinFunction {
	return func(ev *evaluator.Evaluator, _ *evaluator.Environment, modulePath string, args ...evaluator.Value) evaluator.Value {
		if !policy.IsAllowed(def.CapabilityID) {
			return evaluator.NewError("capability denied: %s requires %q", def.Name, def.CapabilityID)
		}
		if len(args) != def.Arity {
			return evaluator.NewError("wrong number of arguments. got=%d, want=%d.", len(args), def.Arity)
		}
		val, err := def.Execute(ev.Context(), Call{Dir: moduleDir(modulePath), Args: args})
		if err != nil {
			return evaluator.NewError("%s", err.Error())
		}
		return val
	}
}

// moduleDir is the directory of the running file, or the working directory
// for sources without one (REPL, stdin).
func moduleDir(modulePath string) string {
	if modulePath != "" {
		return filepath.Dir(modulePath)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func stringArg(args []evaluator.Value, i int) (string, error) {
	s, ok := args[i].(evaluator.String)
	if !ok {
		return "", fmt.Errorf("wrong type of argument. expected=%s got=%s.", evaluator.StringType, args[i].Type())
	}
	return s.Value, nil
}
