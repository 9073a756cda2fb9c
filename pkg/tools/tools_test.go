package tools_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/orangutan-lang/orangutan/pkg/capabilities"
	"github.com/orangutan-lang/orangutan/pkg/evaluator"
	"github.com/orangutan-lang/orangutan/pkg/parser"
	"github.com/orangutan-lang/orangutan/pkg/stdlib"
	"github.com/orangutan-lang/orangutan/pkg/tools"
)

// runIn evaluates src as if it were the file main.ora inside dir.
func runIn(t *testing.T, dir, src string, policy *capabilities.Policy) evaluator.Value {
	t.Helper()
	modulePath := filepath.Join(dir, "main.ora")
	prog, diags := parser.Parse(src, modulePath)
	if len(diags) > 0 {
		t.Fatalf("parse errors: %v", diags)
	}
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg, io.Discard)
	tr := tools.NewRegistry()
	tools.RegisterDefaults(tr)
	tr.Install(reg, policy)

	ev := evaluator.New(evaluator.Options{Builtins: reg})
	return ev.Run(context.Background(), prog, evaluator.NewEnvironment(nil), modulePath)
}

func mustString(t *testing.T, val evaluator.Value) string {
	t.Helper()
	s, ok := val.(evaluator.String)
	if !ok {
		t.Fatalf("expected String, got %s", val.Inspect())
	}
	return s.Value
}

func expectErrorContaining(t *testing.T, val evaluator.Value, want string) {
	t.Helper()
	errSig, ok := val.(*evaluator.ErrorSignal)
	if !ok {
		t.Fatalf("expected error containing %q, got %s", want, val.Inspect())
	}
	if !strings.Contains(errSig.Message, want) {
		t.Errorf("message = %q, want it to contain %q", errSig.Message, want)
	}
}

func TestReadFileRelativeToModule(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "data.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	got := mustString(t, runIn(t, dir, `readFile("data.txt")`, capabilities.Default()))
	if got != "hello" {
		t.Errorf("readFile = %q", got)
	}
}

func TestReadFileMissing(t *testing.T) {
	expectErrorContaining(t, runIn(t, t.TempDir(), `readFile("nope.txt")`, capabilities.Default()), "error reading file")
}

func TestWriteFileRequiresCapability(t *testing.T) {
	dir := t.TempDir()
	val := runIn(t, dir, `writeFile("out.txt", "x")`, capabilities.Default())
	expectErrorContaining(t, val, `capability denied: writeFile requires "fs.write"`)
	if _, err := os.Stat(filepath.Join(dir, "out.txt")); err == nil {
		t.Errorf("file was written despite denied capability")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	policy := capabilities.FromSpec(capabilities.Spec{Allow: []string{capabilities.FSWrite}})

	val := runIn(t, dir, `let r = writeFile("sub/out.txt", "hi"); [r.bytes, len(r.sha256)]`, policy)
	if got := val.Inspect(); got != "[2, 64]" {
		t.Errorf("result = %s", got)
	}
	data, err := os.ReadFile(filepath.Join(dir, "sub", "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hi" {
		t.Errorf("content = %q", data)
	}
}

func TestWriteFileSerializesValues(t *testing.T) {
	dir := t.TempDir()
	runIn(t, dir, `writeFile("out.json", {"a": [1, 2]})`, capabilities.AllowAll())
	data, err := os.ReadFile(filepath.Join(dir, "out.json"))
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"a\": [\n    1,\n    2\n  ]\n}"
	if string(data) != want {
		t.Errorf("content = %q, want %q", data, want)
	}
}

func TestListDirAndExists(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.ora"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	val := runIn(t, dir, `map(listDir("."), fn(e) { e.name + ":" + e.type })`, capabilities.Default())
	if got := val.Inspect(); got != `["a.ora:file", "lib:directory"]` {
		t.Errorf("listDir = %s", got)
	}
	if got := runIn(t, dir, `[exists("lib"), exists("missing")]`, capabilities.Default()).Inspect(); got != "[true, false]" {
		t.Errorf("exists = %s", got)
	}
}

func TestToolArgumentChecks(t *testing.T) {
	dir := t.TempDir()
	expectErrorContaining(t, runIn(t, dir, `readFile()`, capabilities.Default()), "wrong number of arguments. got=0, want=1.")
	expectErrorContaining(t, runIn(t, dir, `readFile(1)`, capabilities.Default()), "wrong type of argument. expected=STRING got=INTEGER.")
}

func TestHTTPGetAndPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, _ = io.WriteString(w, r.Method+" "+string(body))
	}))
	defer srv.Close()

	policy := capabilities.FromSpec(capabilities.Spec{Allow: []string{capabilities.HTTP}})
	dir := t.TempDir()

	if got := mustString(t, runIn(t, dir, `get("`+srv.URL+`")`, policy)); got != "GET " {
		t.Errorf("get = %q", got)
	}
	if got := mustString(t, runIn(t, dir, `post("`+srv.URL+`", "ping")`, policy)); got != "POST ping" {
		t.Errorf("post = %q", got)
	}
}

func TestHTTPDeniedByDefault(t *testing.T) {
	expectErrorContaining(t, runIn(t, t.TempDir(), `get("http://localhost")`, capabilities.Default()), "capability denied")
}

func TestHTTPGetDataURL(t *testing.T) {
	got := mustString(t, runIn(t, t.TempDir(), `get("data:text/plain,Hello%20World")`, capabilities.AllowAll()))
	if got != "Hello World" {
		t.Errorf("get = %q", got)
	}
}

func TestRegistryAll(t *testing.T) {
	r := tools.NewRegistry()
	tools.RegisterDefaults(r)
	var names []string
	for _, d := range r.All() {
		names = append(names, d.Name)
		if !capabilities.IsKnown(d.CapabilityID) {
			t.Errorf("%s uses unknown capability %q", d.Name, d.CapabilityID)
		}
	}
	if got := strings.Join(names, ","); got != "exists,get,listDir,post,readFile,writeFile" {
		t.Errorf("tools = %s", got)
	}
	if c := r.Get("writeFile").CapabilityID; c != capabilities.FSWrite {
		t.Errorf("writeFile capability = %s", c)
	}
}
