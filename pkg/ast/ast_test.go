package ast_test

import (
	"testing"

	"github.com/orangutan-lang/orangutan/pkg/ast"
)

func TestNodeKinds(t *testing.T) {
	nodes := []ast.Node{
		&ast.IntegerLiteral{Value: 42},
		&ast.NumberLiteral{Value: 3.14},
		&ast.BooleanLiteral{Value: true},
		&ast.StringLiteral{Value: "hello"},
		&ast.NullLiteral{},
		&ast.Identifier{Name: "x"},
		&ast.HashLiteral{},
		&ast.ArrayLiteral{},
		&ast.UseExpr{Path: &ast.StringLiteral{Value: "m"}},
		&ast.WhileStmt{},
		&ast.CommentStmt{Text: " note"},
	}

	expected := []string{
		"IntegerLiteral", "NumberLiteral", "BooleanLiteral", "StringLiteral",
		"NullLiteral", "Identifier", "HashLiteral", "ArrayLiteral",
		"UseExpr", "WhileStmt", "CommentStmt",
	}

	for i, node := range nodes {
		if got := node.Kind(); got != expected[i] {
			t.Errorf("node %d: got Kind() = %q, want %q", i, got, expected[i])
		}
	}
}

func TestSpanString(t *testing.T) {
	tests := []struct {
		span ast.Span
		want string
	}{
		{ast.Span{Line: 3, Column: 1}, "3:1"},
		{ast.Span{File: "app.ora", Line: 10, Column: 7}, "app.ora:10:7"},
	}
	for _, tt := range tests {
		if got := tt.span.String(); got != tt.want {
			t.Errorf("Span.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestNodeSpanRoundTrip(t *testing.T) {
	span := ast.Span{File: "m.ora", Line: 2, Column: 5}
	var expr ast.Expr = &ast.InfixExpr{
		Span:     span,
		Operator: "+",
		Left:     &ast.IntegerLiteral{Value: 1},
		Right:    &ast.IntegerLiteral{Value: 2},
	}
	if expr.NodeSpan() != span {
		t.Errorf("NodeSpan() = %+v, want %+v", expr.NodeSpan(), span)
	}
}
