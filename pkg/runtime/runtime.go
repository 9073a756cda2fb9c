// Package runtime provides the top-level Orangutan runtime orchestrator. It
// wires the parser, builtins, host tools, module loader and evaluator
// together.
package runtime

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/orangutan-lang/orangutan/pkg/ast"
	"github.com/orangutan-lang/orangutan/pkg/capabilities"
	"github.com/orangutan-lang/orangutan/pkg/diagnostics"
	"github.com/orangutan-lang/orangutan/pkg/evaluator"
	"github.com/orangutan-lang/orangutan/pkg/formatter"
	"github.com/orangutan-lang/orangutan/pkg/modules"
	"github.com/orangutan-lang/orangutan/pkg/parser"
	"github.com/orangutan-lang/orangutan/pkg/project"
	"github.com/orangutan-lang/orangutan/pkg/stdlib"
	"github.com/orangutan-lang/orangutan/pkg/tools"
	"github.com/orangutan-lang/orangutan/pkg/validator"
)

// Result holds the outcome of a program execution.
type Result struct {
	Value    evaluator.Value
	Duration time.Duration
}

// Runtime wires together all components for program execution.
type Runtime struct {
	tools  *tools.Registry
	policy *capabilities.Policy
	stdout io.Writer
	roots  []string
	logger *slog.Logger
	runID  string
	trace  func(event evaluator.TraceEvent)
	limits evaluator.Limits
	strict bool

	loader *modules.FileLoader
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithStdout sets where `puts` writes. Defaults to os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.stdout = w
	}
}

// WithTools sets the tools registry.
func WithTools(r *tools.Registry) Option {
	return func(rt *Runtime) {
		rt.tools = r
	}
}

// WithPolicy sets the capability policy.
func WithPolicy(p *capabilities.Policy) Option {
	return func(rt *Runtime) {
		rt.policy = p
	}
}

// WithUnsafeAllowAll sets the policy to allow all capabilities.
func WithUnsafeAllowAll() Option {
	return func(rt *Runtime) {
		rt.policy = capabilities.AllowAll()
	}
}

// WithModuleRoots adds directories searched by `use` after the importing
// file's own directory.
func WithModuleRoots(roots ...string) Option {
	return func(rt *Runtime) {
		rt.roots = append(rt.roots, roots...)
	}
}

// WithLogger sets the structured logger. Defaults to discarding output.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// WithLimits bounds call depth and loop iterations.
func WithLimits(l evaluator.Limits) Option {
	return func(rt *Runtime) {
		rt.limits = l
	}
}

// WithStrict runs the static validator before executing.
func WithStrict() Option {
	return func(rt *Runtime) {
		rt.strict = true
	}
}

// WithProject applies a manifest: its capability policy, lib directories and
// limits.
func WithProject(m *project.Manifest) Option {
	return func(rt *Runtime) {
		rt.policy = m.Policy()
		rt.roots = append(rt.roots, m.LibDirs()...)
		rt.limits = m.Limits
	}
}

// New creates a new Runtime with the given options.
// By default the host tools are registered and the policy only allows
// reading files.
func New(opts ...Option) *Runtime {
	toolsReg := tools.NewRegistry()
	tools.RegisterDefaults(toolsReg)

	rt := &Runtime{
		tools:  toolsReg,
		policy: capabilities.Default(),
		stdout: os.Stdout,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		runID:  "cli",
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Builtins builds the registry visible to programs: the pure builtins plus
// the host tools, gated by the policy.
func (rt *Runtime) Builtins() *stdlib.Registry {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg, rt.stdout)
	rt.tools.Install(reg, rt.policy)
	return reg
}

func (rt *Runtime) moduleLoader() (*modules.FileLoader, error) {
	if rt.loader != nil {
		return rt.loader, nil
	}
	l, err := modules.NewFileLoader(rt.roots...)
	if err != nil {
		return nil, err
	}
	rt.loader = l
	return l, nil
}

func (rt *Runtime) newEvaluator() (*evaluator.Evaluator, error) {
	loader, err := rt.moduleLoader()
	if err != nil {
		return nil, err
	}
	return evaluator.New(evaluator.Options{
		Builtins: rt.Builtins(),
		Loader:   loader,
		Trace:    rt.trace,
		RunID:    rt.runID,
		Limits:   rt.limits,
		Logger:   rt.logger,
	}), nil
}

// Run parses and executes a program. filename labels diagnostics and anchors
// relative paths; names like "<stdin>" resolve against the working directory.
func (rt *Runtime) Run(ctx context.Context, source, filename string) (*Result, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	if rt.strict {
		if vDiags := rt.validate(program); len(vDiags) > 0 {
			return nil, &DiagnosticError{Diagnostics: vDiags}
		}
	}

	ev, err := rt.newEvaluator()
	if err != nil {
		return nil, err
	}

	modulePath := modulePathFor(filename)
	start := time.Now()
	rt.logger.Debug("run", "file", filename, "strict", rt.strict, "capabilities", strings.Join(rt.policy.Allowed(), ","))

	val := ev.Run(ctx, program, evaluator.NewEnvironment(nil), modulePath)
	result := &Result{Value: val, Duration: time.Since(start)}

	if errSig, ok := val.(*evaluator.ErrorSignal); ok {
		rt.logger.Debug("run failed", "file", filename, "error", errSig.Message)
		return result, newRuntimeError(errSig)
	}
	rt.logger.Debug("run finished", "file", filename, "duration", result.Duration)
	return result, nil
}

// RunFile reads and executes a source file.
func (rt *Runtime) RunFile(ctx context.Context, path string) (*Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	return rt.Run(ctx, string(source), path)
}

// Check parses and validates a program without executing it.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return diags
	}
	return rt.validate(program)
}

func (rt *Runtime) validate(program *ast.Program) []diagnostics.Diagnostic {
	reg := rt.Builtins()
	return validator.Validate(program, func(name string) bool {
		_, ok := reg.Lookup(name)
		return ok
	})
}

// Format parses and formats a program.
func (rt *Runtime) Format(source, filename string) (string, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return formatter.Format(program), nil
}

func modulePathFor(filename string) string {
	if filename == "" || strings.HasPrefix(filename, "<") {
		return ""
	}
	abs, err := filepath.Abs(filename)
	if err != nil {
		return filename
	}
	return abs
}
