// Package modules resolves and parses the files imported with `use`.
package modules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/orangutan-lang/orangutan/pkg/ast"
	"github.com/orangutan-lang/orangutan/pkg/diagnostics"
	"github.com/orangutan-lang/orangutan/pkg/parser"
)

// Ext is the source file extension added when an import omits it.
const Ext = ".ora"

// EnvPath names the environment variable holding extra search roots,
// separated like PATH.
const EnvPath = "ORANGUTAN_PATH"

// ErrNotFound is wrapped by every resolution failure.
var ErrNotFound = errors.New("module not found")

// ParseError reports syntax errors in an imported file.
type ParseError struct {
	Path        string
	Diagnostics []diagnostics.Diagnostic
}

func (e *ParseError) Error() string {
	if len(e.Diagnostics) == 0 {
		return fmt.Sprintf("module %s: syntax error", e.Path)
	}
	return fmt.Sprintf("module %s: %s", e.Path, e.Diagnostics[0].Error())
}

// FileLoader loads modules from disk. A request is tried relative to the
// importing file first, then against each search root. Parsed programs are
// cached by absolute path, so a module imported twice is read once.
type FileLoader struct {
	roots []string

	mu    sync.Mutex
	cache map[string]*ast.Program
}

// NewFileLoader constructs a loader. Roots are made absolute and
// de-duplicated; the roots listed in ORANGUTAN_PATH follow the given ones.
func NewFileLoader(roots ...string) (*FileLoader, error) {
	all := append(append([]string{}, roots...), filepath.SplitList(os.Getenv(EnvPath))...)
	unique := make([]string, 0, len(all))
	seen := make(map[string]struct{}, len(all))
	for _, r := range all {
		if r == "" {
			continue
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("loader: resolve search root %q: %w", r, err)
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		unique = append(unique, abs)
	}
	return &FileLoader{roots: unique, cache: make(map[string]*ast.Program)}, nil
}

// Roots returns the search roots in lookup order.
func (l *FileLoader) Roots() []string {
	return append([]string(nil), l.roots...)
}

// Resolve maps the argument of `use` to an absolute file path. from is the
// importing file, or "" to resolve against the working directory.
func (l *FileLoader) Resolve(from, requested string) (string, error) {
	if requested == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}

	var bases []string
	if filepath.IsAbs(requested) {
		bases = []string{""}
	} else {
		if from != "" {
			bases = append(bases, filepath.Dir(from))
		} else if wd, err := os.Getwd(); err == nil {
			bases = append(bases, wd)
		}
		bases = append(bases, l.roots...)
	}

	for _, base := range bases {
		for _, candidate := range candidates(requested) {
			p := candidate
			if base != "" {
				p = filepath.Join(base, candidate)
			}
			if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
				abs, err := filepath.Abs(p)
				if err != nil {
					return "", fmt.Errorf("loader: resolve %s: %w", p, err)
				}
				return abs, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, requested)
}

func candidates(requested string) []string {
	if strings.HasSuffix(requested, Ext) {
		return []string{requested}
	}
	return []string{requested, requested + Ext}
}

// Load resolves and parses a module. It satisfies evaluator.ModuleLoader.
func (l *FileLoader) Load(from, requested string) (string, *ast.Program, error) {
	path, err := l.Resolve(from, requested)
	if err != nil {
		return "", nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if prog, ok := l.cache[path]; ok {
		return path, prog, nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	prog, diags := parser.Parse(string(src), path)
	if len(diags) > 0 {
		return "", nil, &ParseError{Path: path, Diagnostics: diags}
	}
	l.cache[path] = prog
	return path, prog, nil
}
