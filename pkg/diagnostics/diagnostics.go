// Package diagnostics defines Orangutan diagnostic types for parse, validation
// and runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/orangutan-lang/orangutan/pkg/ast"
)

// Diagnostic code constants.
const (
	EParse         = "E_PARSE"
	EUnbound       = "E_UNBOUND"
	EDupParam      = "E_DUP_PARAM"
	EAssignTarget  = "E_ASSIGN_TARGET"
	EUsePath       = "E_USE_PATH"
	ERuntime       = "E_RUNTIME"
	EModule        = "E_MODULE"
	EManifest      = "E_MANIFEST"
	ECapDenied     = "E_CAP_DENIED"
	EIO            = "E_IO"
	ELimitExceeded = "E_LIMIT"
)

// Diagnostic represents a parse, validation, or runtime diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// Line returns the 1-based line of the diagnostic, or 0 when it has no span.
func (d Diagnostic) Line() int {
	if d.Span == nil {
		return 0
	}
	return d.Span.Line
}

// Column returns the 1-based column of the diagnostic, or 0 when it has no span.
func (d Diagnostic) Column() int {
	if d.Span == nil {
		return 0
	}
	return d.Span.Column
}

func (d Diagnostic) Error() string {
	if d.Span == nil {
		return d.Message
	}
	return fmt.Sprintf("%s (%s)", d.Message, d.Span)
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		loc = d.Span.String()
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
