package runtime_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/orangutan-lang/orangutan/pkg/diagnostics"
	"github.com/orangutan-lang/orangutan/pkg/evaluator"
	"github.com/orangutan-lang/orangutan/pkg/project"
	"github.com/orangutan-lang/orangutan/pkg/runtime"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func runtimeError(t *testing.T, err error) *runtime.RuntimeError {
	t.Helper()
	var rtErr *runtime.RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	return rtErr
}

func TestRunReturnsValueAndOutput(t *testing.T) {
	var out bytes.Buffer
	rt := runtime.New(runtime.WithStdout(&out))
	res, err := rt.Run(context.Background(), `puts("hi"); 1 + 2`, "<stdin>")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Value.Inspect() != "3" {
		t.Errorf("value = %s", res.Value.Inspect())
	}
	if out.String() != "hi\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunParseError(t *testing.T) {
	_, err := runtime.New().Run(context.Background(), `let = 1;`, "bad.ora")
	var diagErr *runtime.DiagnosticError
	if !errors.As(err, &diagErr) {
		t.Fatalf("expected DiagnosticError, got %v", err)
	}
	if diagErr.Diagnostics[0].Code != diagnostics.EParse {
		t.Errorf("code = %s", diagErr.Diagnostics[0].Code)
	}
}

func TestRunRuntimeError(t *testing.T) {
	res, err := runtime.New().Run(context.Background(), "let a = 1;\na + true;", "prog.ora")
	rtErr := runtimeError(t, err)
	if rtErr.Code != diagnostics.ERuntime || rtErr.Message != "type mismatch: INTEGER + BOOLEAN" {
		t.Errorf("error = %+v", rtErr)
	}
	if rtErr.Span == nil || rtErr.Span.Line != 2 {
		t.Errorf("span = %v", rtErr.Span)
	}
	if res == nil || !evaluator.IsError(res.Value) {
		t.Errorf("result should carry the error signal")
	}
}

func TestStrictModeValidates(t *testing.T) {
	src := `puts(undefinedThing);`
	_, err := runtime.New(runtime.WithStrict()).Run(context.Background(), src, "s.ora")
	var diagErr *runtime.DiagnosticError
	if !errors.As(err, &diagErr) || diagErr.Diagnostics[0].Code != diagnostics.EUnbound {
		t.Fatalf("expected E_UNBOUND, got %v", err)
	}

	_, err = runtime.New().Run(context.Background(), src, "s.ora")
	if rtErr := runtimeError(t, err); rtErr.Message != "identifier not found: undefinedThing" {
		t.Errorf("message = %q", rtErr.Message)
	}
}

func TestCheckKnowsHostBuiltins(t *testing.T) {
	diags := runtime.New().Check(`readFile("x"); nope;`, "c.ora")
	if len(diags) != 1 || !strings.Contains(diags[0].Message, "nope") {
		t.Errorf("diags = %v", diags)
	}
}

func TestCapabilityDenied(t *testing.T) {
	_, err := runtime.New().Run(context.Background(), `writeFile("x.txt", "y")`, "<stdin>")
	rtErr := runtimeError(t, err)
	if rtErr.Code != diagnostics.ECapDenied {
		t.Errorf("code = %s", rtErr.Code)
	}
	if rtErr.Diagnostic().Hint == "" {
		t.Errorf("expected a hint")
	}
}

func TestLimits(t *testing.T) {
	rt := runtime.New(runtime.WithLimits(evaluator.Limits{MaxCallDepth: 20}))
	_, err := rt.Run(context.Background(), `let f = fn() { f() }; f()`, "<stdin>")
	if rtErr := runtimeError(t, err); rtErr.Code != diagnostics.ELimitExceeded {
		t.Errorf("code = %s (%s)", rtErr.Code, rtErr.Message)
	}
}

func TestRunFileWithModules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "main.ora"), `
let util = use("util");
let shared = use("shared/strings");
util.double(21) + len(shared.greeting)
`)
	writeFile(t, filepath.Join(dir, "src", "util.ora"), `let double = fn(x) { x * 2 };`)
	writeFile(t, filepath.Join(dir, "vendor", "shared", "strings.ora"), `let greeting = "hey";`)

	rt := runtime.New(runtime.WithModuleRoots(filepath.Join(dir, "vendor")))
	res, err := rt.RunFile(context.Background(), filepath.Join(dir, "src", "main.ora"))
	if err != nil {
		t.Fatalf("RunFile: %v", err)
	}
	if res.Value.Inspect() != "45" {
		t.Errorf("value = %s", res.Value.Inspect())
	}
}

func TestRunFileImportCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.ora"), `use("b");`)
	writeFile(t, filepath.Join(dir, "b.ora"), `use("a");`)

	_, err := runtime.New().RunFile(context.Background(), filepath.Join(dir, "a.ora"))
	rtErr := runtimeError(t, err)
	if rtErr.Code != diagnostics.EModule || !strings.HasPrefix(rtErr.Message, "import cycle detected: ") {
		t.Errorf("error = %+v", rtErr)
	}
	if !strings.HasSuffix(rtErr.Message, "a.ora -> "+filepath.Join(dir, "b.ora")+" -> "+filepath.Join(dir, "a.ora")) {
		t.Errorf("cycle = %s", rtErr.Message)
	}
}

func TestRunFileMissing(t *testing.T) {
	_, err := runtime.New().RunFile(context.Background(), filepath.Join(t.TempDir(), "nope.ora"))
	var ioErr *runtime.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("IOError does not unwrap to ErrNotExist")
	}
}

func TestWithProject(t *testing.T) {
	dir, err := project.Scaffold("demo", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "lib", "greet.ora"), `let hello = fn(n) { "hello " + n };`)
	writeFile(t, filepath.Join(dir, "src", "app.ora"), `use("greet").hello("ora")`)
	m, err := project.Find(dir)
	if err != nil {
		t.Fatal(err)
	}

	res, err := runtime.New(runtime.WithProject(m)).RunFile(context.Background(), m.EntryPath())
	if err != nil {
		t.Fatalf("RunFile: %v", err)
	}
	if res.Value.Inspect() != "hello ora" {
		t.Errorf("value = %s", res.Value.Inspect())
	}
}

func TestTrace(t *testing.T) {
	var events []evaluator.TraceEvent
	rt := runtime.New(runtime.WithRunID("t1"), runtime.WithTrace(func(ev evaluator.TraceEvent) {
		events = append(events, ev)
	}))
	if _, err := rt.Run(context.Background(), `len([1])`, "<stdin>"); err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Event != evaluator.TraceRunStart || events[1].Data["fn"] != "len" || events[0].RunID != "t1" {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestFormat(t *testing.T) {
	out, err := runtime.New().Format("let x=1+2", "f.ora")
	if err != nil {
		t.Fatal(err)
	}
	if out != "let x = 1 + 2;\n" {
		t.Errorf("formatted = %q", out)
	}
}

func TestSessionKeepsBindings(t *testing.T) {
	s := runtime.New().NewSession("<repl>")
	ctx := context.Background()
	if _, err := s.Eval(ctx, "let x = 40;"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Eval(ctx, "let y = x + nope;"); err == nil {
		t.Fatal("expected an error")
	}
	val, err := s.Eval(ctx, "x + 2")
	if err != nil {
		t.Fatal(err)
	}
	if val.Inspect() != "42" {
		t.Errorf("value = %s", val.Inspect())
	}
	if got := strings.Join(s.Names(), ","); got != "x" {
		t.Errorf("names = %s", got)
	}
}

func TestSessionComplete(t *testing.T) {
	s := runtime.New().NewSession("<repl>")
	tests := map[string]bool{
		"let x = 1;":           true,
		"let f = fn(x) {":      false,
		"if (true) { 1 } else": false,
		"[1, 2":                false,
		"let = 1;":             true,
	}
	for src, want := range tests {
		if got := s.Complete(src); got != want {
			t.Errorf("Complete(%q) = %v, want %v", src, got, want)
		}
	}
}
