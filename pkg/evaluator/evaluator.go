package evaluator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/orangutan-lang/orangutan/pkg/ast"
	"github.com/orangutan-lang/orangutan/pkg/formatter"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart        TraceEventType = "run_start"
	TraceRunEnd          TraceEventType = "run_end"
	TraceFnCallStart     TraceEventType = "fn_call_start"
	TraceFnCallEnd       TraceEventType = "fn_call_end"
	TraceBuiltinCall     TraceEventType = "builtin_call"
	TraceModuleLoadStart TraceEventType = "module_load_start"
	TraceModuleLoadEnd   TraceEventType = "module_load_end"
	TraceError           TraceEventType = "error"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string            `json:"ts"`
	RunID     string            `json:"runId,omitempty"`
	Event     TraceEventType    `json:"event"`
	Span      *ast.Span         `json:"span,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// Builtins resolves names that are not bound in any environment.
type Builtins interface {
	Lookup(name string) (*Builtin, bool)
}

// ModuleLoader turns the argument of `use` into a parsed program. from is the
// path of the importing file ("" for sources without a file). The returned
// path is canonical and identifies the module for cycle detection.
type ModuleLoader interface {
	Load(from, requested string) (path string, program *ast.Program, err error)
}

// Options configures an Evaluator.
type Options struct {
	Builtins Builtins
	Loader   ModuleLoader
	Trace    func(event TraceEvent)
	RunID    string
	Limits   Limits
	Logger   *slog.Logger
}

// Evaluator walks an AST. It holds per-run state (call depth, the stack of
// modules being loaded) and must not be shared between goroutines.
type Evaluator struct {
	ctx     context.Context
	opts    Options
	log     *slog.Logger
	usage   usage
	loading []string
}

// New creates an Evaluator.
func New(opts Options) *Evaluator {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Evaluator{ctx: context.Background(), opts: opts, log: log}
}

// Context returns the context of the current run. Builtins that block use it.
func (ev *Evaluator) Context() context.Context {
	return ev.ctx
}

func (ev *Evaluator) emit(event TraceEventType, span *ast.Span, data map[string]string) {
	if ev.opts.Trace == nil {
		return
	}
	ev.opts.Trace(TraceEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RunID:     ev.opts.RunID,
		Event:     event,
		Span:      span,
		Data:      data,
	})
}

func newError(span ast.Span, format string, args ...any) *ErrorSignal {
	return &ErrorSignal{Message: fmt.Sprintf(format, args...), Span: &span}
}

// NewError builds an ErrorSignal for builtins. The evaluator fills in the
// position of the call.
func NewError(format string, args ...any) *ErrorSignal {
	return &ErrorSignal{Message: fmt.Sprintf(format, args...)}
}

// Run evaluates a whole program as the entry point of a run. A top-level
// return ends the program with its value; an ErrorSignal is returned as-is.
func (ev *Evaluator) Run(ctx context.Context, program *ast.Program, env *Environment, modulePath string) Value {
	if ctx == nil {
		ctx = context.Background()
	}
	ev.ctx = ctx
	if modulePath != "" {
		ev.loading = append(ev.loading, modulePath)
		defer func() { ev.loading = ev.loading[:len(ev.loading)-1] }()
	}

	span := program.Span
	ev.emit(TraceRunStart, &span, map[string]string{"file": modulePath})
	ev.log.Debug("run start", "file", modulePath, "statements", len(program.Statements))

	result := ev.evalProgram(program, env, modulePath)

	if errSig, ok := result.(*ErrorSignal); ok {
		ev.emit(TraceError, errSig.Span, map[string]string{"message": errSig.Message})
	}
	ev.emit(TraceRunEnd, &span, map[string]string{"type": string(result.Type())})
	return result
}

// Eval evaluates a single node in env. modulePath is the file the node came
// from. The result may be a ReturnSignal or ErrorSignal.
func (ev *Evaluator) Eval(node ast.Node, env *Environment, modulePath string) Value {
	switch n := node.(type) {
	case *ast.Program:
		return ev.evalProgram(n, env, modulePath)
	case ast.Stmt:
		return ev.evalStmt(n, env, modulePath)
	case ast.Expr:
		return ev.evalExpr(n, env, modulePath)
	}
	return NULL
}

func (ev *Evaluator) evalProgram(program *ast.Program, env *Environment, modulePath string) Value {
	var result Value = NULL
	for _, stmt := range program.Statements {
		val := ev.evalStmt(stmt, env, modulePath)
		if val == nil {
			continue
		}
		switch v := val.(type) {
		case *ReturnSignal:
			return v.Value
		case *ErrorSignal:
			return v
		}
		result = val
	}
	return result
}

// evalBlock stops at the first signal and hands it up unchanged.
func (ev *Evaluator) evalBlock(block *ast.BlockStmt, env *Environment, modulePath string) Value {
	var result Value = NULL
	for _, stmt := range block.Statements {
		val := ev.evalStmt(stmt, env, modulePath)
		if val == nil {
			continue
		}
		if isSignal(val) {
			return val
		}
		result = val
	}
	return result
}

// evalStmt returns nil for statements that produce no value (comments).
func (ev *Evaluator) evalStmt(stmt ast.Stmt, env *Environment, modulePath string) Value {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		return ev.evalExpr(s.Expr, env, modulePath)

	case *ast.LetStmt:
		var val Value = NULL
		if s.Value != nil {
			val = ev.evalExpr(s.Value, env, modulePath)
			if isSignal(val) {
				return val
			}
		}
		env.Declare(s.Name.Name, val)
		return val

	case *ast.ReturnStmt:
		if s.Value == nil {
			return &ReturnSignal{Value: NULL}
		}
		val := ev.evalExpr(s.Value, env, modulePath)
		if isSignal(val) {
			return val
		}
		return &ReturnSignal{Value: val}

	case *ast.BlockStmt:
		return ev.evalBlock(s, env, modulePath)

	case *ast.WhileStmt:
		return ev.evalWhile(s, env, modulePath)

	case *ast.CommentStmt:
		return nil
	}
	return newError(stmt.NodeSpan(), "unsupported statement: %s", stmt.Kind())
}

func (ev *Evaluator) evalWhile(s *ast.WhileStmt, env *Environment, modulePath string) Value {
	for {
		if err := ev.ctx.Err(); err != nil {
			return newError(s.Span, "evaluation cancelled: %v", err)
		}
		cond := ev.evalExpr(s.Condition, env, modulePath)
		if isSignal(cond) {
			return cond
		}
		if !Truthiness(cond) {
			return NULL
		}
		if errSig := ev.countIteration(); errSig != nil {
			errSig.Span = &s.Span
			return errSig
		}
		if val := ev.evalBlock(s.Body, env, modulePath); isSignal(val) {
			return val
		}
	}
}

func (ev *Evaluator) evalExpr(expr ast.Expr, env *Environment, modulePath string) Value {
	if expr == nil {
		return NULL
	}

	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return Integer{Value: e.Value}

	case *ast.NumberLiteral:
		return Number{Value: e.Value}

	case *ast.StringLiteral:
		return String{Value: e.Value}

	case *ast.BooleanLiteral:
		return NativeBool(e.Value)

	case *ast.NullLiteral:
		return NULL

	case *ast.Identifier:
		return ev.evalIdentifier(e, env)

	case *ast.PrefixExpr:
		right := ev.evalExpr(e.Right, env, modulePath)
		if isSignal(right) {
			return right
		}
		return evalPrefix(e, right)

	case *ast.InfixExpr:
		left := ev.evalExpr(e.Left, env, modulePath)
		if isSignal(left) {
			return left
		}
		right := ev.evalExpr(e.Right, env, modulePath)
		if isSignal(right) {
			return right
		}
		return evalInfix(e.Span, e.Operator, left, right)

	case *ast.IfExpr:
		return ev.evalIf(e, env, modulePath)

	case *ast.FunctionLiteral:
		return &Function{Parameters: e.Parameters, Body: e.Body, Env: env, ModulePath: modulePath}

	case *ast.CallExpr:
		return ev.evalCall(e, env, modulePath)

	case *ast.ArrayLiteral:
		elements, sig := ev.evalExpressions(e.Elements, env, modulePath)
		if sig != nil {
			return sig
		}
		return &Array{Elements: elements}

	case *ast.HashLiteral:
		return ev.evalHashLiteral(e, env, modulePath)

	case *ast.IndexExpr:
		left := ev.evalExpr(e.Left, env, modulePath)
		if isSignal(left) {
			return left
		}
		index := ev.evalExpr(e.Index, env, modulePath)
		if isSignal(index) {
			return index
		}
		return evalIndex(e.Span, left, index)

	case *ast.PropertyExpr:
		left := ev.evalExpr(e.Left, env, modulePath)
		if isSignal(left) {
			return left
		}
		return evalIndex(e.Span, left, String{Value: e.Property.Name})

	case *ast.AssignExpr:
		return ev.evalAssign(e, env, modulePath)

	case *ast.UseExpr:
		return ev.evalUse(e, env, modulePath)
	}

	return newError(expr.NodeSpan(), "unsupported expression: %s", expr.Kind())
}

func (ev *Evaluator) evalIdentifier(e *ast.Identifier, env *Environment) Value {
	if val, ok := env.Get(e.Name); ok {
		return val
	}
	if ev.opts.Builtins != nil {
		if b, ok := ev.opts.Builtins.Lookup(e.Name); ok {
			return b
		}
	}
	return newError(e.Span, "identifier not found: %s", e.Name)
}

// evalExpressions evaluates left to right and stops at the first signal.
func (ev *Evaluator) evalExpressions(exprs []ast.Expr, env *Environment, modulePath string) ([]Value, Value) {
	out := make([]Value, 0, len(exprs))
	for _, e := range exprs {
		val := ev.evalExpr(e, env, modulePath)
		if isSignal(val) {
			return nil, val
		}
		out = append(out, val)
	}
	return out, nil
}

func (ev *Evaluator) evalHashLiteral(e *ast.HashLiteral, env *Environment, modulePath string) Value {
	hash := NewHash()
	for _, pair := range e.Pairs {
		key := ev.evalExpr(pair.Key, env, modulePath)
		if isSignal(key) {
			return key
		}
		hk, ok := key.(Hashable)
		if !ok {
			return newError(pair.Key.NodeSpan(), "unusable as hash key: %s", key.Type())
		}
		val := ev.evalExpr(pair.Value, env, modulePath)
		if isSignal(val) {
			return val
		}
		hash.Set(hk, val)
	}
	return hash
}

func (ev *Evaluator) evalIf(e *ast.IfExpr, env *Environment, modulePath string) Value {
	cond := ev.evalExpr(e.Condition, env, modulePath)
	if isSignal(cond) {
		return cond
	}
	if Truthiness(cond) {
		return ev.evalBlock(e.Consequence, env, modulePath)
	}
	if e.Alternative != nil {
		return ev.evalBlock(e.Alternative, env, modulePath)
	}
	return NULL
}

// --- Operators ---

func evalPrefix(e *ast.PrefixExpr, right Value) Value {
	switch e.Operator {
	case "!":
		return NativeBool(!Truthiness(right))
	case "-":
		switch r := right.(type) {
		case Integer:
			return Integer{Value: -r.Value}
		case Number:
			return Number{Value: -r.Value}
		}
	}
	return newError(e.Span, "unknown operator: %s%s", e.Operator, right.Type())
}

func evalInfix(span ast.Span, op string, left, right Value) Value {
	switch {
	case left.Type() == IntegerType && right.Type() == IntegerType:
		return evalIntegerInfix(span, op, left.(Integer).Value, right.(Integer).Value)
	case isNumeric(left) && isNumeric(right):
		// an Integer paired with a Number is promoted
		return evalNumberInfix(span, op, toFloat(left), toFloat(right))
	case left.Type() == StringType && right.Type() == StringType:
		return evalStringInfix(span, op, left.(String).Value, right.(String).Value)
	case left.Type() == BooleanType && right.Type() == BooleanType:
		return evalBooleanInfix(span, op, left.(Boolean).Value, right.(Boolean).Value)
	case (op == "==" || op == "!=") && (left.Type() == NullType || right.Type() == NullType):
		same := left.Type() == right.Type()
		return NativeBool(same == (op == "=="))
	case left.Type() != right.Type():
		return newError(span, "type mismatch: %s %s %s", left.Type(), op, right.Type())
	case op == "==":
		return NativeBool(left == right)
	case op == "!=":
		return NativeBool(left != right)
	}
	return newError(span, "unknown operator: %s %s %s", left.Type(), op, right.Type())
}

func isNumeric(v Value) bool {
	t := v.Type()
	return t == IntegerType || t == NumberType
}

func toFloat(v Value) float64 {
	switch n := v.(type) {
	case Integer:
		return float64(n.Value)
	case Number:
		return n.Value
	}
	return 0
}

func evalIntegerInfix(span ast.Span, op string, l, r int64) Value {
	switch op {
	case "+":
		return Integer{Value: l + r}
	case "-":
		return Integer{Value: l - r}
	case "*":
		return Integer{Value: l * r}
	case "/":
		if r == 0 {
			return newError(span, "division by zero")
		}
		return Integer{Value: l / r}
	case "%":
		if r == 0 {
			return newError(span, "division by zero")
		}
		return Integer{Value: l % r}
	case "<":
		return NativeBool(l < r)
	case "<=":
		return NativeBool(l <= r)
	case ">":
		return NativeBool(l > r)
	case ">=":
		return NativeBool(l >= r)
	case "==":
		return NativeBool(l == r)
	case "!=":
		return NativeBool(l != r)
	}
	return newError(span, "unknown operator: INTEGER %s INTEGER", op)
}

func evalNumberInfix(span ast.Span, op string, l, r float64) Value {
	switch op {
	case "+":
		return Number{Value: l + r}
	case "-":
		return Number{Value: l - r}
	case "*":
		return Number{Value: l * r}
	case "/":
		if r == 0 {
			return newError(span, "division by zero")
		}
		return Number{Value: l / r}
	case "%":
		if r == 0 {
			return newError(span, "division by zero")
		}
		return Number{Value: math.Mod(l, r)}
	case "<":
		return NativeBool(l < r)
	case "<=":
		return NativeBool(l <= r)
	case ">":
		return NativeBool(l > r)
	case ">=":
		return NativeBool(l >= r)
	case "==":
		return NativeBool(l == r)
	case "!=":
		return NativeBool(l != r)
	}
	return newError(span, "unknown operator: NUMBER %s NUMBER", op)
}

func evalStringInfix(span ast.Span, op string, l, r string) Value {
	switch op {
	case "+":
		return String{Value: l + r}
	case "==":
		return NativeBool(l == r)
	case "!=":
		return NativeBool(l != r)
	}
	return newError(span, "unknown operator: STRING %s STRING", op)
}

func evalBooleanInfix(span ast.Span, op string, l, r bool) Value {
	switch op {
	case "&&":
		return NativeBool(l && r)
	case "||":
		return NativeBool(l || r)
	case "==":
		return NativeBool(l == r)
	case "!=":
		return NativeBool(l != r)
	}
	return newError(span, "unknown operator: BOOLEAN %s BOOLEAN", op)
}

// --- Indexing and assignment ---

func evalIndex(span ast.Span, left, index Value) Value {
	switch l := left.(type) {
	case *Array:
		i, ok := index.(Integer)
		if !ok {
			return newError(span, "index operator not supported: %s[%s]", left.Type(), index.Type())
		}
		if i.Value < 0 || i.Value >= int64(len(l.Elements)) {
			return NULL
		}
		return l.Elements[i.Value]
	case *Hash:
		key, ok := index.(Hashable)
		if !ok {
			return newError(span, "unusable as hash key: %s", index.Type())
		}
		if val, found := l.Get(key); found {
			return val
		}
		return NULL
	}
	return newError(span, "index operator not supported: %s", left.Type())
}

func (ev *Evaluator) evalAssign(e *ast.AssignExpr, env *Environment, modulePath string) Value {
	switch target := e.Target.(type) {
	case *ast.Identifier:
		val := ev.evalExpr(e.Value, env, modulePath)
		if isSignal(val) {
			return val
		}
		if !env.Assign(target.Name, val) {
			return newError(target.Span, "assignment to undeclared identifier: %s", target.Name)
		}
		return val

	case *ast.IndexExpr:
		left := ev.evalExpr(target.Left, env, modulePath)
		if isSignal(left) {
			return left
		}
		index := ev.evalExpr(target.Index, env, modulePath)
		if isSignal(index) {
			return index
		}
		return ev.storeIndexed(target.Span, left, index, e.Value, env, modulePath)

	case *ast.PropertyExpr:
		left := ev.evalExpr(target.Left, env, modulePath)
		if isSignal(left) {
			return left
		}
		if _, ok := left.(*Hash); !ok {
			return newError(target.Span, "index operator not supported: %s", left.Type())
		}
		return ev.storeIndexed(target.Span, left, String{Value: target.Property.Name}, e.Value, env, modulePath)
	}
	return newError(e.Span, "invalid assignment target: %s", formatter.FormatExpr(e.Target))
}

// storeIndexed validates the container and index before evaluating the
// right-hand side, then writes the element.
func (ev *Evaluator) storeIndexed(span ast.Span, left, index Value, valueExpr ast.Expr, env *Environment, modulePath string) Value {
	switch l := left.(type) {
	case *Array:
		i, ok := index.(Integer)
		if !ok {
			return newError(span, "index operator not supported: %s[%s]", left.Type(), index.Type())
		}
		if i.Value < 0 || i.Value >= int64(len(l.Elements)) {
			return newError(span, "index out of range: %d (len %d)", i.Value, len(l.Elements))
		}
		val := ev.evalExpr(valueExpr, env, modulePath)
		if isSignal(val) {
			return val
		}
		l.Elements[i.Value] = val
		return val
	case *Hash:
		key, ok := index.(Hashable)
		if !ok {
			return newError(span, "unusable as hash key: %s", index.Type())
		}
		val := ev.evalExpr(valueExpr, env, modulePath)
		if isSignal(val) {
			return val
		}
		l.Set(key, val)
		return val
	}
	return newError(span, "index operator not supported: %s", left.Type())
}

// --- Calls ---

func (ev *Evaluator) evalCall(e *ast.CallExpr, env *Environment, modulePath string) Value {
	fn := ev.evalExpr(e.Function, env, modulePath)
	if isSignal(fn) {
		return fn
	}
	args, sig := ev.evalExpressions(e.Arguments, env, modulePath)
	if sig != nil {
		return sig
	}
	return ev.apply(e.Span, calleeName(e.Function), env, modulePath, fn, args)
}

func calleeName(e ast.Expr) string {
	switch c := e.(type) {
	case *ast.Identifier:
		return c.Name
	case *ast.PropertyExpr:
		return calleeName(c.Left) + "." + c.Property.Name
	}
	return "<anonymous>"
}

// Apply calls fn with already evaluated arguments. Builtins such as `map`
// use it to call user functions.
func (ev *Evaluator) Apply(env *Environment, modulePath string, fn Value, args ...Value) Value {
	return ev.apply(ast.Span{File: modulePath}, "<callback>", env, modulePath, fn, args)
}

func (ev *Evaluator) apply(span ast.Span, name string, env *Environment, modulePath string, fn Value, args []Value) Value {
	switch f := fn.(type) {
	case *Function:
		if len(args) != len(f.Parameters) {
			return newError(span, "wrong number of arguments: want=%d, got=%d", len(f.Parameters), len(args))
		}
		if err := ev.ctx.Err(); err != nil {
			return newError(span, "evaluation cancelled: %v", err)
		}
		if errSig := ev.enterCall(); errSig != nil {
			errSig.Span = &span
			return errSig
		}
		defer ev.leaveCall()

		callEnv := f.Env.Child()
		for i, param := range f.Parameters {
			callEnv.Declare(param.Name, args[i])
		}
		bodyPath := f.ModulePath
		if bodyPath == "" {
			bodyPath = modulePath
		}

		ev.emit(TraceFnCallStart, &span, map[string]string{"fn": name})
		result := ev.evalBlock(f.Body, callEnv, bodyPath)
		ev.emit(TraceFnCallEnd, &span, map[string]string{"fn": name})

		if ret, ok := result.(*ReturnSignal); ok {
			return ret.Value
		}
		return result

	case *Builtin:
		ev.emit(TraceBuiltinCall, &span, map[string]string{"fn": f.Name})
		result := f.Fn(ev, env, modulePath, args...)
		if result == nil {
			return NULL
		}
		if errSig, ok := result.(*ErrorSignal); ok && errSig.Span == nil {
			errSig.Span = &span
		}
		return result
	}
	return newError(span, "not a function: %s", fn.Type())
}

// --- Modules ---

func (ev *Evaluator) evalUse(e *ast.UseExpr, env *Environment, modulePath string) Value {
	pathVal := ev.evalExpr(e.Path, env, modulePath)
	if isSignal(pathVal) {
		return pathVal
	}
	requested, ok := pathVal.(String)
	if !ok {
		return newError(e.Span, "module path must be a STRING, got %s", pathVal.Type())
	}
	if ev.opts.Loader == nil {
		return newError(e.Span, "module not found: %s", requested.Value)
	}

	resolved, program, err := ev.opts.Loader.Load(modulePath, requested.Value)
	if err != nil {
		return newError(e.Span, "%s", err.Error())
	}

	for i, p := range ev.loading {
		if p == resolved {
			chain := append(append([]string{}, ev.loading[i:]...), resolved)
			return newError(e.Span, "import cycle detected: %s", strings.Join(chain, " -> "))
		}
	}

	ev.loading = append(ev.loading, resolved)
	defer func() { ev.loading = ev.loading[:len(ev.loading)-1] }()

	ev.emit(TraceModuleLoadStart, &e.Span, map[string]string{"module": resolved})
	ev.log.Debug("loading module", "module", resolved, "from", modulePath)

	moduleEnv := env.Child()
	result := ev.evalProgram(program, moduleEnv, resolved)

	ev.emit(TraceModuleLoadEnd, &e.Span, map[string]string{"module": resolved})
	if IsError(result) {
		return result
	}

	exports := NewHash()
	for _, name := range moduleEnv.Names() {
		val, _ := moduleEnv.Get(name)
		exports.Set(String{Value: name}, val)
	}
	return exports
}
