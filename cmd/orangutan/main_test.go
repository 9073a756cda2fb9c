package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	c := &cli{stdin: strings.NewReader(stdin), stdout: &out, stderr: &errOut}
	code := c.main(context.Background(), args)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func writeProgram(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.ora")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCommand(t *testing.T) {
	path := writeProgram(t, `puts("hello", 1); [1, 2] |> len`)
	res := runCLI(t, "", "run", path, "--print")
	if res.code != exitOK {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	if res.stdout != "hello 1\n2\n" {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestRunJSONResult(t *testing.T) {
	res := runCLI(t, `{"a": [1, 2.5, null]}`, "run", "-", "--json")
	if res.code != exitOK {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	if strings.TrimSpace(res.stdout) != `{"a":[1,2.5,null]}` {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		args []string
		code int
		diag string
	}{
		{"syntax", "let = 1;", nil, exitDiagnostic, "E_PARSE"},
		{"runtime", "1 + true", nil, exitRuntime, "E_RUNTIME"},
		{"capability", `writeFile("out.txt", "x")`, nil, exitRuntime, "E_CAP_DENIED"},
		{"strict", "nope", []string{"--strict"}, exitDiagnostic, "E_UNBOUND"},
		{"read error", `readFile("missing.txt")`, nil, exitIO, "E_IO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeProgram(t, tt.src)
			res := runCLI(t, "", append([]string{"run", path}, tt.args...)...)
			if res.code != tt.code {
				t.Errorf("exit = %d, want %d (%s)", res.code, tt.code, res.stderr)
			}
			if !strings.Contains(res.stderr, tt.diag) {
				t.Errorf("stderr %q does not mention %s", res.stderr, tt.diag)
			}
		})
	}
}

func TestRunUnsafeAllowAll(t *testing.T) {
	path := writeProgram(t, `writeFile("out.txt", "x").bytes`)
	res := runCLI(t, "", "run", path, "--unsafe-allow-all", "--print")
	if res.code != exitOK || res.stdout != "1\n" {
		t.Fatalf("exit %d stdout %q stderr %q", res.code, res.stdout, res.stderr)
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(path), "out.txt"))
	if err != nil || string(data) != "x" {
		t.Errorf("out.txt = %q, %v", data, err)
	}
}

func TestRunMissingFile(t *testing.T) {
	res := runCLI(t, "", "run", filepath.Join(t.TempDir(), "nope.ora"))
	if res.code != exitIO || !strings.Contains(res.stderr, "E_IO") {
		t.Errorf("exit %d: %s", res.code, res.stderr)
	}
}

func TestUsageErrors(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"frobnicate"},
		{"run", "a.ora", "--bogus"},
		{"check"},
		{"fmt", "a.ora", "b.ora"},
		{"trace", "--out"},
	} {
		if res := runCLI(t, "", args...); res.code != exitUsage {
			t.Errorf("%v: exit %d, want %d", args, res.code, exitUsage)
		}
	}
}

func TestCheckCommand(t *testing.T) {
	ok := runCLI(t, "", "check", writeProgram(t, `let x = 1; puts(x);`))
	if ok.code != exitOK || strings.TrimSpace(ok.stdout) != "[]" {
		t.Errorf("exit %d stdout %q", ok.code, ok.stdout)
	}

	bad := runCLI(t, "", "check", writeProgram(t, "let f = fn(a, a) { b };"), "--pretty")
	if bad.code != exitDiagnostic {
		t.Fatalf("exit %d", bad.code)
	}
	for _, want := range []string{"error[E_DUP_PARAM]", "error[E_UNBOUND]"} {
		if !strings.Contains(bad.stderr, want) {
			t.Errorf("stderr missing %s:\n%s", want, bad.stderr)
		}
	}
}

func TestFmtCommand(t *testing.T) {
	path := writeProgram(t, "let add=fn(a,b){a+b}\n// done\n")
	res := runCLI(t, "", "fmt", path)
	want := "let add = fn(a, b) {\n  a + b;\n};\n// done\n"
	if res.code != exitOK || res.stdout != want {
		t.Fatalf("exit %d stdout %q", res.code, res.stdout)
	}

	if res := runCLI(t, "", "fmt", path, "--write"); res.code != exitOK {
		t.Fatalf("fmt --write exit %d", res.code)
	}
	data, _ := os.ReadFile(path)
	if string(data) != want {
		t.Errorf("file = %q", data)
	}
}

func TestTokensCommand(t *testing.T) {
	res := runCLI(t, "let x = 5;", "tokens", "-", "--json")
	if res.code != exitOK {
		t.Fatalf("exit %d", res.code)
	}
	var toks []tokenJSON
	if err := json.Unmarshal([]byte(res.stdout), &toks); err != nil {
		t.Fatal(err)
	}
	var types []string
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	if got := strings.Join(types, " "); got != "LET IDENT = INT ; EOF" {
		t.Errorf("types = %s", got)
	}
}

func TestNewThenRun(t *testing.T) {
	parent := t.TempDir()
	res := runCLI(t, "", "new", "My App", "--dir", parent)
	if res.code != exitOK {
		t.Fatalf("new: exit %d: %s", res.code, res.stderr)
	}
	entry := filepath.Join(parent, "my-app", "src", "app.ora")
	run := runCLI(t, "", "run", entry)
	if run.code != exitOK || !strings.HasPrefix(run.stdout, "Welcome to Orangutan!\n") {
		t.Errorf("run: exit %d stdout %q stderr %q", run.code, run.stdout, run.stderr)
	}

	again := runCLI(t, "", "new", "My App", "--dir", parent)
	if again.code == exitOK {
		t.Errorf("expected scaffolding into an existing directory to fail")
	}
}

func TestRunRejectsBadManifest(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "orangutan.yml"), []byte("version: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "main.ora")
	if err := os.WriteFile(path, []byte("1"), 0o644); err != nil {
		t.Fatal(err)
	}
	res := runCLI(t, "", "run", path)
	if res.code != exitDiagnostic || !strings.Contains(res.stderr, "E_MANIFEST") {
		t.Errorf("exit %d: %s", res.code, res.stderr)
	}
}

func TestHelpCommand(t *testing.T) {
	if res := runCLI(t, "", "help"); res.code != exitOK || !strings.Contains(res.stdout, "TOPICS") {
		t.Errorf("help: exit %d", res.code)
	}
	if res := runCLI(t, "", "help", "caps"); res.code != exitOK || !strings.Contains(res.stdout, "fs.write") {
		t.Errorf("help caps: exit %d", res.code)
	}
	if res := runCLI(t, "", "help", "stdlib", "--index"); !strings.Contains(res.stdout, "Total:") {
		t.Errorf("help stdlib --index: %q", res.stdout)
	}
	if res := runCLI(t, "", "help", "nonsense"); res.code != exitUsage || !strings.Contains(res.stderr, "Available topics") {
		t.Errorf("help nonsense: exit %d", res.code)
	}
}

func TestTraceAndSummary(t *testing.T) {
	path := writeProgram(t, `let sq = fn(x) { x * x }; puts(len(str(sq(3))));`)
	tracePath := filepath.Join(t.TempDir(), "trace.jsonl")

	res := runCLI(t, "", "trace", path, "--out", tracePath)
	if res.code != exitOK || res.stdout != "1\n" {
		t.Fatalf("trace: exit %d stdout %q stderr %q", res.code, res.stdout, res.stderr)
	}

	sum := runCLI(t, "", "trace", "--summary", tracePath)
	if sum.code != exitOK {
		t.Fatalf("summary: exit %d", sum.code)
	}
	var s TraceSummary
	if err := json.Unmarshal([]byte(sum.stdout), &s); err != nil {
		t.Fatal(err)
	}
	if s.FnCalls != 1 || s.BuiltinCalls != 3 || s.BuiltinsByName["puts"] != 1 || s.RunID == "" {
		t.Errorf("summary = %+v", s)
	}
}

func TestComputeTraceSummary(t *testing.T) {
	input := strings.Join([]string{
		`{"ts":"2024-01-01T00:00:00Z","runId":"r1","event":"run_start"}`,
		`not json`,
		`{"ts":"2024-01-01T00:00:00.001Z","runId":"r1","event":"module_load_start","data":{"module":"/a.ora"}}`,
		`{"ts":"2024-01-01T00:00:00.002Z","runId":"r1","event":"error","data":{"message":"boom"}}`,
		``,
		`{"ts":"2024-01-01T00:00:00.005Z","runId":"r1","event":"run_end"}`,
	}, "\n")

	s := computeTraceSummary(strings.NewReader(input))
	if s.RunID != "r1" || s.TotalEvents != 4 || s.ModuleLoads != 1 {
		t.Errorf("summary = %+v", s)
	}
	if len(s.Errors) != 1 || s.Errors[0] != "boom" {
		t.Errorf("errors = %v", s.Errors)
	}
	if s.DurationMs != 5 {
		t.Errorf("duration = %v", s.DurationMs)
	}
}
