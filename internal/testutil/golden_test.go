package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	data := `{
  "cmd": ["run", "main.ora", "--pretty"],
  "policy": {"allow": ["fs.write"]},
  "limits": {"maxCallDepth": 10},
  "expect": {"exitCode": 4, "stdoutText": ""}
}`
	if err := os.WriteFile(filepath.Join(dir, "scenario.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.ora"), []byte("1"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadScenario(dir)
	if err != nil {
		t.Fatal(err)
	}
	if s.Command() != "run" || !s.HasFlag("--pretty") || s.HasFlag("--strict") {
		t.Errorf("cmd = %v", s.Cmd)
	}
	if s.Policy == nil || s.Policy.Allow[0] != "fs.write" || s.Limits.MaxCallDepth != 10 {
		t.Errorf("policy/limits = %+v %+v", s.Policy, s.Limits)
	}
	if s.Expect.StdoutText == nil || *s.Expect.StdoutText != "" {
		t.Errorf("stdoutText should be present and empty")
	}
	src, path, err := ReadProgramFile(dir, s)
	if err != nil || src != "1" || path != filepath.Join(dir, "main.ora") {
		t.Errorf("ReadProgramFile = %q, %q, %v", src, path, err)
	}
}

func TestLoadScenarioRejectsMissingProgram(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "scenario.json"), []byte(`{"cmd": ["run"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScenario(dir); err == nil {
		t.Error("expected error")
	}
}

func TestListScenarios(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b", "a", "empty"} {
		if err := os.MkdirAll(filepath.Join(root, name), 0o755); err != nil {
			t.Fatal(err)
		}
		if name != "empty" {
			if err := os.WriteFile(filepath.Join(root, name, "scenario.json"), []byte("{}"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}
	dirs, err := ListScenarios(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) != 2 || filepath.Base(dirs[0]) != "a" || filepath.Base(dirs[1]) != "b" {
		t.Errorf("dirs = %v", dirs)
	}
}

func TestIsSubset(t *testing.T) {
	tests := []struct {
		expected string
		actual   string
		want     bool
	}{
		{`{"code":"E_PARSE"}`, `{"code":"E_PARSE","message":"x"}`, true},
		{`{"code":"E_PARSE"}`, `{"code":"E_RUNTIME"}`, false},
		{`[{"code":"E_PARSE"}]`, `[{"code":"E_PARSE"},{"code":"E_UNBOUND"}]`, true},
		{`{"span":{"line":2}}`, `{"span":{"line":2,"column":5}}`, true},
		{`[1,2,3]`, `[1,2]`, false},
		{`null`, `null`, true},
		{`1`, `"1"`, false},
	}
	for _, tt := range tests {
		var e, a any
		if err := json.Unmarshal([]byte(tt.expected), &e); err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal([]byte(tt.actual), &a); err != nil {
			t.Fatal(err)
		}
		if got := IsSubset(e, a); got != tt.want {
			t.Errorf("IsSubset(%s, %s) = %v, want %v", tt.expected, tt.actual, got, tt.want)
		}
	}
}
