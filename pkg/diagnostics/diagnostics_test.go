package diagnostics_test

import (
	"strings"
	"testing"

	"github.com/orangutan-lang/orangutan/pkg/ast"
	"github.com/orangutan-lang/orangutan/pkg/diagnostics"
)

func TestMakeDiag(t *testing.T) {
	span := &ast.Span{File: "test.ora", Line: 1, Column: 1}
	d := diagnostics.MakeDiag(diagnostics.EParse, "unexpected token", span, "check syntax")

	if d.Code != diagnostics.EParse {
		t.Errorf("got Code = %q, want %q", d.Code, diagnostics.EParse)
	}
	if d.Message != "unexpected token" {
		t.Errorf("got Message = %q, want %q", d.Message, "unexpected token")
	}
	if d.Line() != 1 || d.Column() != 1 {
		t.Errorf("got position %d:%d, want 1:1", d.Line(), d.Column())
	}
}

func TestPositionWithoutSpan(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.EIO, "disk full", nil, "")
	if d.Line() != 0 || d.Column() != 0 {
		t.Errorf("expected zero position, got %d:%d", d.Line(), d.Column())
	}
	if d.Error() != "disk full" {
		t.Errorf("Error() = %q", d.Error())
	}
}

func TestFormatDiagnosticPretty(t *testing.T) {
	span := &ast.Span{File: "test.ora", Line: 3, Column: 5}
	d := diagnostics.MakeDiag(diagnostics.EUnbound, "identifier never declared: x", span, "did you mean 'y'?")

	out := diagnostics.FormatDiagnostic(d, true)
	if !strings.Contains(out, "error[E_UNBOUND]") {
		t.Errorf("expected error code in output, got: %s", out)
	}
	if !strings.Contains(out, "test.ora:3:5") {
		t.Errorf("expected location in output, got: %s", out)
	}
	if !strings.Contains(out, "hint:") {
		t.Errorf("expected hint in output, got: %s", out)
	}
}

func TestFormatDiagnosticJSON(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.EParse, "bad token", &ast.Span{Line: 2, Column: 4}, "")
	out := diagnostics.FormatDiagnostic(d, false)
	if !strings.Contains(out, `"code":"E_PARSE"`) {
		t.Errorf("expected JSON code in output, got: %s", out)
	}
	if !strings.Contains(out, `"line":2`) || !strings.Contains(out, `"column":4`) {
		t.Errorf("expected JSON position in output, got: %s", out)
	}
}

func TestFormatDiagnosticsJoinsPretty(t *testing.T) {
	diags := []diagnostics.Diagnostic{
		diagnostics.MakeDiag(diagnostics.EParse, "first", nil, ""),
		diagnostics.MakeDiag(diagnostics.EParse, "second", nil, ""),
	}
	out := diagnostics.FormatDiagnostics(diags, true)
	if strings.Count(out, "error[E_PARSE]") != 2 {
		t.Errorf("expected two formatted diagnostics, got: %s", out)
	}
}
