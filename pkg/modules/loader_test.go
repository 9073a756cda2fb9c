package modules

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
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

func newLoader(t *testing.T, roots ...string) *FileLoader {
	t.Helper()
	t.Setenv(EnvPath, "")
	l, err := NewFileLoader(roots...)
	if err != nil {
		t.Fatalf("NewFileLoader: %v", err)
	}
	return l
}

func TestResolveRelativeToImporter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "util.ora"), "let x = 1;")
	l := newLoader(t)

	for _, req := range []string{"util", "util.ora", "./util"} {
		got, err := l.Resolve(filepath.Join(dir, "src", "app.ora"), req)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", req, err)
		}
		if want := filepath.Join(dir, "src", "util.ora"); got != want {
			t.Errorf("Resolve(%q) = %s, want %s", req, got, want)
		}
	}
}

func TestResolveFallsBackToRoots(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib")
	writeFile(t, filepath.Join(lib, "math", "vec.ora"), "let x = 1;")
	l := newLoader(t, lib, lib)

	if len(l.Roots()) != 1 {
		t.Errorf("duplicate roots kept: %v", l.Roots())
	}
	got, err := l.Resolve(filepath.Join(dir, "src", "app.ora"), "math/vec")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := filepath.Join(lib, "math", "vec.ora"); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestResolveUsesEnvironmentRoots(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shared.ora"), "")
	t.Setenv(EnvPath, dir)
	l, err := NewFileLoader()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Resolve(filepath.Join(t.TempDir(), "app.ora"), "shared"); err != nil {
		t.Errorf("Resolve: %v", err)
	}
}

func TestResolveNotFound(t *testing.T) {
	l := newLoader(t)
	_, err := l.Resolve(filepath.Join(t.TempDir(), "app.ora"), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err.Error() != "module not found: missing" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestResolveSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "pkg"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "pkg.ora"), "")
	l := newLoader(t)
	got, err := l.Resolve(filepath.Join(dir, "app.ora"), "pkg")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "pkg.ora" {
		t.Errorf("resolved to %s", got)
	}
}

func TestLoadCachesPrograms(t *testing.T) {
	dir := t.TempDir()
	mod := filepath.Join(dir, "m.ora")
	writeFile(t, mod, "let five = 5;")
	l := newLoader(t)

	_, first, err := l.Load(filepath.Join(dir, "app.ora"), "m")
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, mod, "let six = 6;")
	path, second, err := l.Load(filepath.Join(dir, "app.ora"), "m.ora")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("second load re-parsed the file")
	}
	if path != mod {
		t.Errorf("path = %s", path)
	}
	if first.Statements[0].NodeSpan().File != mod {
		t.Errorf("spans do not carry the module path")
	}
}

func TestLoadReportsSyntaxErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.ora"), "let = 1;")
	l := newLoader(t)

	_, _, err := l.Load(filepath.Join(dir, "app.ora"), "bad")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if !strings.Contains(err.Error(), "expected next token to be IDENT") {
		t.Errorf("message = %q", err.Error())
	}
}
