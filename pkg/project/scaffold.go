package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const appTemplate = `let app = fn() {
  puts("Welcome to Orangutan!");
  puts("Replace me to get started!");
};

app();
`

// Scaffold creates a new project named name inside parent and returns its
// directory. The directory name is the kebab-case form of name; it must not
// exist yet.
func Scaffold(name, parent string) (string, error) {
	slug := KebabCase(name)
	if slug == "" {
		return "", fmt.Errorf("new: invalid project name %q", name)
	}
	dir := filepath.Join(parent, slug)
	if _, err := os.Stat(dir); err == nil {
		return "", fmt.Errorf("new: %s already exists", dir)
	}

	for _, sub := range []string{filepath.Dir(DefaultEntry), DefaultLib} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return "", fmt.Errorf("new: %w", err)
		}
	}

	m := &Manifest{
		Name:         name,
		Version:      "0.1.0",
		Entry:        DefaultEntry,
		Lib:          []string{DefaultLib},
		Dependencies: map[string]string{},
	}
	if err := m.Save(filepath.Join(dir, FileName)); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(DefaultEntry)), []byte(appTemplate), 0o644); err != nil {
		return "", fmt.Errorf("new: %w", err)
	}
	return dir, nil
}

// KebabCase turns "My Cool App" or "myCoolApp" into "my-cool-app".
func KebabCase(s string) string {
	var b strings.Builder
	prevLower := false
	pendingDash := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if b.Len() > 0 && (pendingDash || (unicode.IsUpper(r) && prevLower)) {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(unicode.ToLower(r))
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		default:
			pendingDash = true
			prevLower = false
		}
	}
	return b.String()
}
