// Package testutil provides shared test helpers for Orangutan Go tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/orangutan-lang/orangutan/pkg/capabilities"
	"github.com/orangutan-lang/orangutan/pkg/evaluator"
)

// ScenariosDir is the scenario root, relative to the module root.
const ScenariosDir = "testdata/scenarios"

// Scenario represents a test scenario loaded from a scenario.json file.
type Scenario struct {
	Cmd    []string           `json:"cmd"`
	Policy *capabilities.Spec `json:"policy,omitempty"`
	Limits *evaluator.Limits  `json:"limits,omitempty"`
	Meta   *ScenarioMeta      `json:"meta,omitempty"`
	Expect ExpectedResult     `json:"expect"`
}

// ScenarioMeta holds optional scenario metadata.
type ScenarioMeta struct {
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ExpectedResult describes the expected outcome of running a scenario.
// ValueJSON is compared against the JSON form of the program's final value.
type ExpectedResult struct {
	ExitCode         int             `json:"exitCode"`
	ValueJSON        json.RawMessage `json:"valueJson,omitempty"`
	StdoutJSON       json.RawMessage `json:"stdoutJson,omitempty"`
	StdoutText       *string         `json:"stdoutText,omitempty"`
	StdoutContains   string          `json:"stdoutContains,omitempty"`
	StderrJSONSubset json.RawMessage `json:"stderrJsonSubset,omitempty"`
	StderrContains   string          `json:"stderrContains,omitempty"`
}

// Command returns the scenario's subcommand ("run" or "check").
func (s *Scenario) Command() string {
	if len(s.Cmd) == 0 {
		return ""
	}
	return s.Cmd[0]
}

// HasFlag reports whether the scenario cmd carries flag.
func (s *Scenario) HasFlag(flag string) bool {
	for _, arg := range s.Cmd[1:] {
		if arg == flag {
			return true
		}
	}
	return false
}

// LoadScenario loads a scenario from a directory containing scenario.json.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scenario.json"))
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	if len(s.Cmd) < 2 {
		return nil, fmt.Errorf("%s: cmd needs a command and a program file", dir)
	}
	return &s, nil
}

// ListScenarios returns all scenario directories under the given root,
// sorted by name.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			scenarioPath := filepath.Join(root, e.Name(), "scenario.json")
			if _, err := os.Stat(scenarioPath); err == nil {
				dirs = append(dirs, filepath.Join(root, e.Name()))
			}
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ProgramPath returns the path of the program file referenced by the
// scenario cmd: the first argument that is not a flag.
func ProgramPath(scenarioDir string, s *Scenario) string {
	for _, arg := range s.Cmd[1:] {
		if len(arg) > 0 && arg[0] != '-' {
			return filepath.Join(scenarioDir, arg)
		}
	}
	return ""
}

// ReadProgramFile reads the program file referenced by the scenario cmd.
func ReadProgramFile(scenarioDir string, s *Scenario) (string, string, error) {
	path := ProgramPath(scenarioDir, s)
	if path == "" {
		return "", "", fmt.Errorf("%s: no program file in cmd", scenarioDir)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return string(source), path, nil
}

// IsSubset checks if expected is a subset of actual (for JSON comparison).
// Objects match when every expected key matches; arrays match element-wise
// on a prefix.
func IsSubset(expected, actual any) bool {
	switch e := expected.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, ev := range e {
			av, exists := a[k]
			if !exists || !IsSubset(ev, av) {
				return false
			}
		}
		return true

	case []any:
		a, ok := actual.([]any)
		if !ok || len(e) > len(a) {
			return false
		}
		for i, ev := range e {
			if !IsSubset(ev, a[i]) {
				return false
			}
		}
		return true

	case float64:
		af, ok := actual.(float64)
		return ok && e == af

	case string:
		as, ok := actual.(string)
		return ok && e == as

	case bool:
		ab, ok := actual.(bool)
		return ok && e == ab

	case nil:
		return actual == nil
	}
	return fmt.Sprintf("%v", expected) == fmt.Sprintf("%v", actual)
}
