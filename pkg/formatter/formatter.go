// Package formatter implements the Orangutan source code formatter.
package formatter

import (
	"strconv"
	"strings"

	"github.com/orangutan-lang/orangutan/pkg/ast"
)

const indent = "  "

// Binding power of infix operators (higher = tighter binding). Mirrors the
// parser's table.
var precedence = map[string]int{
	"||": 2,
	"&&": 3,
	"==": 5, "!=": 5,
	"<": 6, "<=": 6, ">": 6, ">=": 6,
	"+": 7, "-": 7,
	"*": 8, "/": 8,
	"%": 9,
}

const (
	assignPrec = 4
	prefixPrec = 10
)

func exprPrec(e ast.Expr) int {
	switch n := e.(type) {
	case *ast.InfixExpr:
		return precedence[n.Operator]
	case *ast.AssignExpr:
		return assignPrec
	case *ast.PrefixExpr:
		return prefixPrec
	}
	return 100
}

// Format pretty-prints a program back to source code.
func Format(program *ast.Program) string {
	if len(program.Statements) == 0 {
		return ""
	}
	lines := make([]string, len(program.Statements))
	for i, s := range program.Statements {
		lines[i] = formatStmt(s, 0)
	}
	return strings.Join(lines, "\n") + "\n"
}

// FormatExpr prints a single expression at the top indentation level.
func FormatExpr(e ast.Expr) string {
	return formatExpr(e, 0)
}

func formatStmt(s ast.Stmt, depth int) string {
	prefix := strings.Repeat(indent, depth)
	switch stmt := s.(type) {
	case *ast.LetStmt:
		if stmt.Value == nil {
			return prefix + "let " + stmt.Name.Name + ";"
		}
		return prefix + "let " + stmt.Name.Name + " = " + formatExpr(stmt.Value, depth) + ";"
	case *ast.ReturnStmt:
		if stmt.Value == nil {
			return prefix + "return;"
		}
		return prefix + "return " + formatExpr(stmt.Value, depth) + ";"
	case *ast.ExprStmt:
		out := prefix + formatExpr(stmt.Expr, depth)
		if _, isIf := stmt.Expr.(*ast.IfExpr); isIf {
			return out
		}
		return out + ";"
	case *ast.CommentStmt:
		return prefix + "//" + stmt.Text
	case *ast.WhileStmt:
		return prefix + "while (" + formatExpr(stmt.Condition, depth) + ") " + formatBlock(stmt.Body, depth)
	case *ast.BlockStmt:
		return prefix + formatBlock(stmt, depth)
	}
	return ""
}

func formatBlock(block *ast.BlockStmt, depth int) string {
	if block == nil || len(block.Statements) == 0 {
		return "{}"
	}
	lines := make([]string, len(block.Statements))
	for i, s := range block.Statements {
		lines[i] = formatStmt(s, depth+1)
	}
	return "{\n" + strings.Join(lines, "\n") + "\n" + strings.Repeat(indent, depth) + "}"
}

func formatExpr(e ast.Expr, depth int) string {
	switch expr := e.(type) {
	case *ast.IntegerLiteral:
		return strconv.FormatInt(expr.Value, 10)
	case *ast.NumberLiteral:
		return formatNumber(expr.Value)
	case *ast.StringLiteral:
		return `"` + expr.Value + `"`
	case *ast.BooleanLiteral:
		if expr.Value {
			return "true"
		}
		return "false"
	case *ast.NullLiteral:
		return "null"
	case *ast.Identifier:
		return expr.Name

	case *ast.PrefixExpr:
		return expr.Operator + wrap(expr.Right, depth, exprPrec(expr.Right) < prefixPrec)

	case *ast.InfixExpr:
		p := precedence[expr.Operator]
		// left associative: a same-level operator on the right needs parens
		left := wrap(expr.Left, depth, exprPrec(expr.Left) < p)
		right := wrap(expr.Right, depth, exprPrec(expr.Right) <= p)
		return left + " " + expr.Operator + " " + right

	case *ast.AssignExpr:
		return wrap(expr.Target, depth, exprPrec(expr.Target) <= assignPrec) + " = " + formatExpr(expr.Value, depth)

	case *ast.CallExpr:
		args := make([]string, len(expr.Arguments))
		for i, a := range expr.Arguments {
			args[i] = formatExpr(a, depth)
		}
		return wrap(expr.Function, depth, exprPrec(expr.Function) <= prefixPrec) + "(" + strings.Join(args, ", ") + ")"

	case *ast.IndexExpr:
		return wrap(expr.Left, depth, exprPrec(expr.Left) <= prefixPrec) + "[" + formatExpr(expr.Index, depth) + "]"

	case *ast.PropertyExpr:
		return wrap(expr.Left, depth, exprPrec(expr.Left) <= prefixPrec) + "." + expr.Property.Name

	case *ast.ArrayLiteral:
		elems := make([]string, len(expr.Elements))
		for i, el := range expr.Elements {
			elems[i] = formatExpr(el, depth)
		}
		return "[" + strings.Join(elems, ", ") + "]"

	case *ast.HashLiteral:
		if len(expr.Pairs) == 0 {
			return "{}"
		}
		pairs := make([]string, len(expr.Pairs))
		for i, p := range expr.Pairs {
			pairs[i] = formatExpr(p.Key, depth) + ": " + formatExpr(p.Value, depth)
		}
		return "{" + strings.Join(pairs, ", ") + "}"

	case *ast.FunctionLiteral:
		params := make([]string, len(expr.Parameters))
		for i, p := range expr.Parameters {
			params[i] = p.Name
		}
		return "fn(" + strings.Join(params, ", ") + ") " + formatBlock(expr.Body, depth)

	case *ast.IfExpr:
		out := "if (" + formatExpr(expr.Condition, depth) + ") " + formatBlock(expr.Consequence, depth)
		if expr.Alternative == nil {
			return out
		}
		if nested, ok := elseIf(expr.Alternative); ok {
			return out + " else " + formatExpr(nested, depth)
		}
		return out + " else " + formatBlock(expr.Alternative, depth)

	case *ast.UseExpr:
		return "use(" + formatExpr(expr.Path, depth) + ")"
	}
	return ""
}

// elseIf recognizes the block an `else if` chain is parsed into.
func elseIf(block *ast.BlockStmt) (*ast.IfExpr, bool) {
	if len(block.Statements) != 1 {
		return nil, false
	}
	es, ok := block.Statements[0].(*ast.ExprStmt)
	if !ok {
		return nil, false
	}
	nested, ok := es.Expr.(*ast.IfExpr)
	return nested, ok
}

func wrap(e ast.Expr, depth int, parens bool) string {
	s := formatExpr(e, depth)
	if parens {
		return "(" + s + ")"
	}
	return s
}

// formatNumber always keeps a decimal point so the literal reads back as a
// Number, not an Integer.
func formatNumber(n float64) string {
	s := strconv.FormatFloat(n, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
