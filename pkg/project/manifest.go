// Package project reads and writes orangutan.yml project manifests and
// scaffolds new projects.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/orangutan-lang/orangutan/pkg/capabilities"
	"github.com/orangutan-lang/orangutan/pkg/evaluator"
)

// FileName is the manifest file looked up by Find.
const FileName = "orangutan.yml"

// Defaults applied when the manifest leaves a field out.
const (
	DefaultEntry = "src/app.ora"
	DefaultLib   = "lib"
)

// ErrNoManifest is returned by Find when no directory up to the filesystem
// root contains a manifest.
var ErrNoManifest = errors.New("manifest: " + FileName + " not found")

// Manifest represents the parsed contents of orangutan.yml.
type Manifest struct {
	// Path is the absolute location of the manifest file; it is not part of
	// the YAML document.
	Path string `yaml:"-"`

	Name         string            `yaml:"name"`
	Version      string            `yaml:"version,omitempty"`
	Entry        string            `yaml:"entry,omitempty"`
	Lib          []string          `yaml:"lib,omitempty"`
	Capabilities capabilities.Spec `yaml:"capabilities,omitempty"`
	Limits       evaluator.Limits  `yaml:"limits,omitempty"`
	Dependencies map[string]string `yaml:"dependencies,omitempty"`
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load parses orangutan.yml from disk, returning a validated manifest with
// defaults filled in.
func Load(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	m, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", absPath, err)
	}
	m.Path = absPath
	return m, nil
}

// Decode reads a manifest document. Unknown keys are rejected.
func Decode(r io.Reader) (*Manifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var m Manifest
	if err := decoder.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("document is empty")
		}
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	m.applyDefaults()
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if m.Entry == "" {
		m.Entry = DefaultEntry
	}
	if len(m.Lib) == 0 {
		m.Lib = []string{DefaultLib}
	}
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if strings.TrimSpace(m.Name) == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.Entry != "" && filepath.IsAbs(m.Entry) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("entry %q must be relative to the project directory", m.Entry))
	}
	for i, dir := range m.Lib {
		if strings.TrimSpace(dir) == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("lib[%d] must be a non-empty path", i))
		}
	}
	for _, list := range []struct {
		field string
		caps  []string
	}{
		{"capabilities.allow", m.Capabilities.Allow},
		{"capabilities.deny", m.Capabilities.Deny},
	} {
		for _, c := range list.caps {
			if !capabilities.IsKnown(c) {
				errs.Issues = append(errs.Issues, fmt.Sprintf("%s: unknown capability %q", list.field, c))
			}
		}
	}
	if m.Limits.MaxCallDepth < 0 {
		errs.Issues = append(errs.Issues, "limits.maxCallDepth must not be negative")
	}
	if m.Limits.MaxLoopIterations < 0 {
		errs.Issues = append(errs.Issues, "limits.maxLoopIterations must not be negative")
	}
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.TrimSpace(m.Dependencies[name]) == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s must specify a version or source", name))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// Find walks up from dir looking for orangutan.yml and loads the first one.
func Find(dir string) (*Manifest, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", dir, err)
	}
	for {
		candidate := filepath.Join(abs, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return nil, ErrNoManifest
		}
		abs = parent
	}
}

// Dir is the project root, the directory holding the manifest.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// EntryPath is the absolute path of the program `run` starts from.
func (m *Manifest) EntryPath() string {
	return filepath.Join(m.Dir(), filepath.FromSlash(m.Entry))
}

// LibDirs returns the absolute module search roots.
func (m *Manifest) LibDirs() []string {
	out := make([]string, len(m.Lib))
	for i, dir := range m.Lib {
		out[i] = filepath.Join(m.Dir(), filepath.FromSlash(dir))
	}
	return out
}

// Policy builds the capability policy the manifest asks for.
func (m *Manifest) Policy() *capabilities.Policy {
	return capabilities.FromSpec(m.Capabilities)
}

// Marshal renders the manifest as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the manifest to path.
func (m *Manifest) Save(path string) error {
	data, err := m.Marshal()
	if err != nil {
		return fmt.Errorf("manifest: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("manifest: write %s: %w", path, err)
	}
	m.Path = path
	return nil
}
