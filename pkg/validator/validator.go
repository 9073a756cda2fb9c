// Package validator implements static checks of Orangutan programs. It
// reports problems the evaluator would otherwise only find at run time.
package validator

import (
	"fmt"

	"github.com/orangutan-lang/orangutan/pkg/ast"
	"github.com/orangutan-lang/orangutan/pkg/diagnostics"
	"github.com/orangutan-lang/orangutan/pkg/formatter"
)

type validator struct {
	diags     []diagnostics.Diagnostic
	declared  map[string]bool
	isBuiltin func(name string) bool
}

// Validate performs semantic analysis on a program and returns diagnostics.
// isBuiltin reports the names resolvable without a declaration; nil means
// there are none.
//
// An identifier counts as declared when a let or a parameter anywhere in the
// program binds it. Closures may refer to names bound after them, so the
// check does not follow scopes.
func Validate(program *ast.Program, isBuiltin func(name string) bool) []diagnostics.Diagnostic {
	if isBuiltin == nil {
		isBuiltin = func(string) bool { return false }
	}
	v := &validator{
		declared:  make(map[string]bool),
		isBuiltin: isBuiltin,
	}

	for _, stmt := range program.Statements {
		v.collectStmt(stmt)
	}
	for _, stmt := range program.Statements {
		v.validateStmt(stmt)
	}
	return v.diags
}

func (v *validator) addDiag(code, msg string, span ast.Span, hint string) {
	v.diags = append(v.diags, diagnostics.MakeDiag(code, msg, &span, hint))
}

// --- declaration pass ---

func (v *validator) collectStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		v.declared[s.Name.Name] = true
		v.collectExpr(s.Value)
	case *ast.ReturnStmt:
		v.collectExpr(s.Value)
	case *ast.ExprStmt:
		v.collectExpr(s.Expr)
	case *ast.BlockStmt:
		v.collectBlock(s)
	case *ast.WhileStmt:
		v.collectExpr(s.Condition)
		v.collectBlock(s.Body)
	}
}

func (v *validator) collectBlock(block *ast.BlockStmt) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		v.collectStmt(stmt)
	}
}

func (v *validator) collectExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.FunctionLiteral:
		for _, p := range e.Parameters {
			v.declared[p.Name] = true
		}
		v.collectBlock(e.Body)
	case *ast.IfExpr:
		v.collectExpr(e.Condition)
		v.collectBlock(e.Consequence)
		v.collectBlock(e.Alternative)
	case *ast.PrefixExpr:
		v.collectExpr(e.Right)
	case *ast.InfixExpr:
		v.collectExpr(e.Left)
		v.collectExpr(e.Right)
	case *ast.AssignExpr:
		v.collectExpr(e.Target)
		v.collectExpr(e.Value)
	case *ast.CallExpr:
		v.collectExpr(e.Function)
		for _, a := range e.Arguments {
			v.collectExpr(a)
		}
	case *ast.IndexExpr:
		v.collectExpr(e.Left)
		v.collectExpr(e.Index)
	case *ast.PropertyExpr:
		v.collectExpr(e.Left)
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			v.collectExpr(el)
		}
	case *ast.HashLiteral:
		for _, p := range e.Pairs {
			v.collectExpr(p.Key)
			v.collectExpr(p.Value)
		}
	case *ast.UseExpr:
		v.collectExpr(e.Path)
	}
}

// --- checking pass ---

func (v *validator) validateStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		v.validateExpr(s.Value)
	case *ast.ReturnStmt:
		v.validateExpr(s.Value)
	case *ast.ExprStmt:
		v.validateExpr(s.Expr)
	case *ast.BlockStmt:
		v.validateBlock(s)
	case *ast.WhileStmt:
		v.validateExpr(s.Condition)
		v.validateBlock(s.Body)
	}
}

func (v *validator) validateBlock(block *ast.BlockStmt) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		v.validateStmt(stmt)
	}
}

func (v *validator) validateExpr(expr ast.Expr) {
	if expr == nil {
		return
	}

	switch e := expr.(type) {
	case *ast.IntegerLiteral, *ast.NumberLiteral, *ast.BooleanLiteral, *ast.StringLiteral, *ast.NullLiteral:
		// literals are always valid

	case *ast.Identifier:
		if !v.declared[e.Name] && !v.isBuiltin(e.Name) {
			v.addDiag(diagnostics.EUnbound, fmt.Sprintf("identifier '%s' is never declared", e.Name), e.Span,
				fmt.Sprintf("declare it with `let %s = ...;`", e.Name))
		}

	case *ast.FunctionLiteral:
		seen := make(map[string]bool, len(e.Parameters))
		for _, p := range e.Parameters {
			if seen[p.Name] {
				v.addDiag(diagnostics.EDupParam, fmt.Sprintf("duplicate parameter '%s'", p.Name), p.Span, "")
			}
			seen[p.Name] = true
		}
		v.validateBlock(e.Body)

	case *ast.AssignExpr:
		switch e.Target.(type) {
		case *ast.Identifier, *ast.IndexExpr, *ast.PropertyExpr:
			v.validateExpr(e.Target)
		default:
			v.addDiag(diagnostics.EAssignTarget, "invalid assignment target: "+formatter.FormatExpr(e.Target), e.Span,
				"only names, index expressions and properties can be assigned")
		}
		v.validateExpr(e.Value)

	case *ast.UseExpr:
		if _, ok := e.Path.(*ast.StringLiteral); !ok {
			v.addDiag(diagnostics.EUsePath, "use path must be a string literal", e.Span, "")
		}
		v.validateExpr(e.Path)

	case *ast.IfExpr:
		v.validateExpr(e.Condition)
		v.validateBlock(e.Consequence)
		v.validateBlock(e.Alternative)

	case *ast.PrefixExpr:
		v.validateExpr(e.Right)

	case *ast.InfixExpr:
		v.validateExpr(e.Left)
		v.validateExpr(e.Right)

	case *ast.CallExpr:
		v.validateExpr(e.Function)
		for _, a := range e.Arguments {
			v.validateExpr(a)
		}

	case *ast.IndexExpr:
		v.validateExpr(e.Left)
		v.validateExpr(e.Index)

	case *ast.PropertyExpr:
		// the property name is a key, not a reference
		v.validateExpr(e.Left)

	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			v.validateExpr(el)
		}

	case *ast.HashLiteral:
		for _, p := range e.Pairs {
			v.validateExpr(p.Key)
			v.validateExpr(p.Value)
		}
	}
}
