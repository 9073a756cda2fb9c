package runtime

import (
	"fmt"
	"strings"

	"github.com/orangutan-lang/orangutan/pkg/ast"
	"github.com/orangutan-lang/orangutan/pkg/diagnostics"
	"github.com/orangutan-lang/orangutan/pkg/evaluator"
)

// DiagnosticError wraps parse or validation diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}

// RuntimeError is an ErrorSignal that reached the top of a run.
type RuntimeError struct {
	Code    string
	Message string
	Span    *ast.Span
}

func newRuntimeError(sig *evaluator.ErrorSignal) *RuntimeError {
	return &RuntimeError{Code: codeFor(sig.Message), Message: sig.Message, Span: sig.Span}
}

func (e *RuntimeError) Error() string {
	if e.Span == nil {
		return "ERROR: " + e.Message
	}
	return fmt.Sprintf("ERROR: %s (%s)", e.Message, e.Span)
}

// Diagnostic converts the error for diagnostics.FormatDiagnostics.
func (e *RuntimeError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Span, hintFor(e.Code))
}

// codeFor classifies a runtime error message. ErrorSignals carry only text,
// so the stable message prefixes decide the code.
func codeFor(message string) string {
	switch {
	case strings.HasPrefix(message, "capability denied"):
		return diagnostics.ECapDenied
	case strings.HasPrefix(message, "call depth exceeded"),
		strings.HasPrefix(message, "loop iteration limit exceeded"):
		return diagnostics.ELimitExceeded
	case strings.HasPrefix(message, "module "),
		strings.HasPrefix(message, "import cycle detected"),
		strings.HasPrefix(message, "loader:"):
		return diagnostics.EModule
	case strings.HasPrefix(message, "error reading file"),
		strings.HasPrefix(message, "error writing to file"),
		strings.HasPrefix(message, "error listing directory"):
		return diagnostics.EIO
	}
	return diagnostics.ERuntime
}

func hintFor(code string) string {
	switch code {
	case diagnostics.ECapDenied:
		return "allow it under capabilities in orangutan.yml or pass --unsafe-allow-all"
	case diagnostics.ELimitExceeded:
		return "raise the limit under limits in orangutan.yml"
	}
	return ""
}

// IOError reports a source file that could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot read file: %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
