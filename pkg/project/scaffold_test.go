package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestKebabCase(t *testing.T) {
	tests := map[string]string{
		"demo":          "demo",
		"My Cool App":   "my-cool-app",
		"myCoolApp":     "my-cool-app",
		"snake_case_v2": "snake-case-v2",
		"  spaced  ":    "spaced",
		"!!!":           "",
	}
	for in, want := range tests {
		if got := KebabCase(in); got != want {
			t.Errorf("KebabCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestScaffold(t *testing.T) {
	parent := t.TempDir()
	dir, err := Scaffold("Hello World", parent)
	if err != nil {
		t.Fatalf("Scaffold: %v", err)
	}
	if dir != filepath.Join(parent, "hello-world") {
		t.Errorf("dir = %s", dir)
	}

	m, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("Load scaffolded manifest: %v", err)
	}
	if m.Name != "Hello World" {
		t.Errorf("Name = %q", m.Name)
	}
	src, err := os.ReadFile(m.EntryPath())
	if err != nil {
		t.Fatalf("entry file: %v", err)
	}
	if !strings.Contains(string(src), "Welcome to Orangutan!") {
		t.Errorf("unexpected entry file:\n%s", src)
	}
	if info, err := os.Stat(filepath.Join(dir, "lib")); err != nil || !info.IsDir() {
		t.Errorf("lib directory missing")
	}

	if _, err := Scaffold("Hello World", parent); err == nil {
		t.Errorf("second Scaffold into the same directory succeeded")
	}
}
