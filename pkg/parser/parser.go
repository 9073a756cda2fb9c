// Package parser implements the Orangutan language parser.
package parser

import (
	"fmt"
	"strconv"

	"github.com/orangutan-lang/orangutan/pkg/ast"
	"github.com/orangutan-lang/orangutan/pkg/diagnostics"
	"github.com/orangutan-lang/orangutan/pkg/lexer"
)

// Binding powers, lowest to highest.
const (
	_ int = iota
	LOWEST
	PIPE        // |>
	OR          // ||
	AND         // &&
	ASSIGN      // =
	EQUALS      // == !=
	LESSGREATER // < <= > >=
	SUM         // + -
	PRODUCT     // * /
	MODULO      // %
	PREFIX      // -x !x
	CALL        // f(x)
	INDEX       // a[i] a.b
)

var precedences = map[lexer.TokenType]int{
	lexer.TokPipe:     PIPE,
	lexer.TokOr:       OR,
	lexer.TokAnd:      AND,
	lexer.TokAssign:   ASSIGN,
	lexer.TokEq:       EQUALS,
	lexer.TokNotEq:    EQUALS,
	lexer.TokLt:       LESSGREATER,
	lexer.TokLtEq:     LESSGREATER,
	lexer.TokGt:       LESSGREATER,
	lexer.TokGtEq:     LESSGREATER,
	lexer.TokPlus:     SUM,
	lexer.TokMinus:    SUM,
	lexer.TokAsterisk: PRODUCT,
	lexer.TokSlash:    PRODUCT,
	lexer.TokModulo:   MODULO,
	lexer.TokLParen:   CALL,
	lexer.TokLBracket: INDEX,
	lexer.TokPeriod:   INDEX,
}

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(left ast.Expr) ast.Expr
)

// Parser pulls tokens from a Lexer with two tokens of lookahead and builds an
// AST, collecting diagnostics instead of stopping at the first error.
type Parser struct {
	l        *lexer.Lexer
	filename string
	diags    []diagnostics.Diagnostic

	cur  lexer.Token
	peek lexer.Token

	// incomplete is set when an error was caused by running out of input.
	incomplete bool

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// New creates a parser reading from l. filename is only used in spans.
func New(l *lexer.Lexer, filename string) *Parser {
	p := &Parser{l: l, filename: filename}

	p.prefixFns = map[lexer.TokenType]prefixParseFn{
		lexer.TokIdent:    p.parseIdentifier,
		lexer.TokInt:      p.parseIntegerLiteral,
		lexer.TokNumber:   p.parseNumberLiteral,
		lexer.TokString:   p.parseStringLiteral,
		lexer.TokTrue:     p.parseBoolean,
		lexer.TokFalse:    p.parseBoolean,
		lexer.TokNull:     p.parseNull,
		lexer.TokBang:     p.parsePrefixExpression,
		lexer.TokMinus:    p.parsePrefixExpression,
		lexer.TokLParen:   p.parseGroupedExpression,
		lexer.TokIf:       p.parseIfExpression,
		lexer.TokFunction: p.parseFunctionLiteral,
		lexer.TokLBracket: p.parseArrayLiteral,
		lexer.TokLBrace:   p.parseHashLiteral,
		lexer.TokUse:      p.parseUseExpression,
	}

	p.infixFns = make(map[lexer.TokenType]infixParseFn)
	for _, tt := range []lexer.TokenType{
		lexer.TokPlus, lexer.TokMinus, lexer.TokAsterisk, lexer.TokSlash, lexer.TokModulo,
		lexer.TokEq, lexer.TokNotEq, lexer.TokLt, lexer.TokLtEq, lexer.TokGt, lexer.TokGtEq,
		lexer.TokAnd, lexer.TokOr,
	} {
		p.infixFns[tt] = p.parseInfixExpression
	}
	p.infixFns[lexer.TokLParen] = p.parseCallExpression
	p.infixFns[lexer.TokLBracket] = p.parseIndexExpression
	p.infixFns[lexer.TokAssign] = p.parseAssignExpression
	p.infixFns[lexer.TokPeriod] = p.parsePropertyExpression
	p.infixFns[lexer.TokPipe] = p.parsePipeExpression

	// Read two tokens, so cur and peek are both set.
	p.nextToken()
	p.nextToken()
	return p
}

// Parse tokenizes and parses source. The program is always returned; it is
// only safe to evaluate when the diagnostics slice is empty.
func Parse(source, filename string) (*ast.Program, []diagnostics.Diagnostic) {
	p := New(lexer.New(source), filename)
	prog := p.ParseProgram()
	return prog, p.Errors()
}

// Errors returns the syntax errors collected so far.
func (p *Parser) Errors() []diagnostics.Diagnostic {
	return p.diags
}

// Incomplete reports whether parsing failed because the input ended early,
// e.g. an unclosed block. The REPL uses it to ask for more lines.
func (p *Parser) Incomplete() bool {
	return p.incomplete
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peek.Type == t }

func (p *Parser) span(tok lexer.Token) ast.Span {
	return ast.Span{File: p.filename, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) addError(tok lexer.Token, msg string) {
	if tok.Type == lexer.TokEOF {
		p.incomplete = true
	}
	span := p.span(tok)
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.EParse, msg, &span, ""))
}

// expectPeek advances when the peek token has type t and records an error
// positioned on the peek token otherwise.
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(p.peek, fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peek.Type))
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peek.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.cur.Type]; ok {
		return prec
	}
	return LOWEST
}

// --- Program ---

// ParseProgram parses statements until EOF. It never fails; statements that
// could not be parsed are dropped and reported through Errors.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{Span: p.span(p.cur)}
	for !p.curTokenIs(lexer.TokEOF) {
		before := len(p.diags)
		if stmt := p.parseStatement(); stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if len(p.diags) > before {
			p.synchronize()
		}
		p.nextToken()
	}
	return prog
}

// synchronize skips the rest of a broken statement. It stops at a ';', before
// a statement keyword, or before the first token on a later line.
func (p *Parser) synchronize() {
	for !p.curTokenIs(lexer.TokSemicolon) && !p.curTokenIs(lexer.TokEOF) {
		switch p.peek.Type {
		case lexer.TokLet, lexer.TokReturn, lexer.TokWhile:
			return
		}
		if p.peek.Line > p.cur.Line {
			return
		}
		p.nextToken()
	}
}

// --- Statements ---

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur.Type {
	case lexer.TokComment:
		return &ast.CommentStmt{Span: p.span(p.cur), Text: p.cur.Literal}
	case lexer.TokLet:
		return p.parseLetStatement()
	case lexer.TokReturn:
		return p.parseReturnStatement()
	case lexer.TokWhile:
		return p.parseWhileStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) skipSemicolon() {
	if p.peekTokenIs(lexer.TokSemicolon) {
		p.nextToken()
	}
}

func (p *Parser) parseLetStatement() ast.Stmt {
	start := p.cur
	if !p.expectPeek(lexer.TokIdent) {
		return nil
	}
	name := &ast.Identifier{Span: p.span(p.cur), Name: p.cur.Literal}

	// `let x;` declares x bound to null
	if p.peekTokenIs(lexer.TokSemicolon) || p.peekTokenIs(lexer.TokRBrace) || p.peekTokenIs(lexer.TokEOF) {
		p.skipSemicolon()
		return &ast.LetStmt{Span: p.span(start), Name: name}
	}
	if !p.expectPeek(lexer.TokAssign) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	p.skipSemicolon()
	return &ast.LetStmt{Span: p.span(start), Name: name, Value: value}
}

func (p *Parser) parseReturnStatement() ast.Stmt {
	start := p.cur
	if p.peekTokenIs(lexer.TokSemicolon) || p.peekTokenIs(lexer.TokRBrace) || p.peekTokenIs(lexer.TokEOF) {
		p.skipSemicolon()
		return &ast.ReturnStmt{Span: p.span(start)}
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	p.skipSemicolon()
	return &ast.ReturnStmt{Span: p.span(start), Value: value}
}

func (p *Parser) parseWhileStatement() ast.Stmt {
	start := p.cur
	if !p.expectPeek(lexer.TokLParen) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if cond == nil || !p.expectPeek(lexer.TokRParen) || !p.expectPeek(lexer.TokLBrace) {
		return nil
	}
	body := p.parseBlockStatement()
	if body == nil {
		return nil
	}
	p.skipSemicolon()
	return &ast.WhileStmt{Span: p.span(start), Condition: cond, Body: body}
}

func (p *Parser) parseExpressionStatement() ast.Stmt {
	start := p.cur
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	p.skipSemicolon()
	return &ast.ExprStmt{Span: p.span(start), Expr: expr}
}

// parseBlockStatement expects cur on '{' and leaves cur on the matching '}'.
func (p *Parser) parseBlockStatement() *ast.BlockStmt {
	block := &ast.BlockStmt{Span: p.span(p.cur)}
	p.nextToken()
	for !p.curTokenIs(lexer.TokRBrace) {
		if p.curTokenIs(lexer.TokEOF) {
			p.addError(p.cur, "expected next token to be }, got EOF instead")
			return nil
		}
		if stmt := p.parseStatement(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	return block
}

// --- Expressions ---

func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix := p.prefixFns[p.cur.Type]
	if prefix == nil {
		p.addError(p.cur, fmt.Sprintf("no prefix parse function for %s found", p.cur.Type))
		return nil
	}
	left := prefix()
	if left == nil {
		return nil
	}

	for !p.peekTokenIs(lexer.TokSemicolon) && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peek.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expr {
	return &ast.Identifier{Span: p.span(p.cur), Name: p.cur.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expr {
	v, err := strconv.ParseInt(p.cur.Literal, 10, 64)
	if err != nil {
		p.addError(p.cur, fmt.Sprintf("could not parse %q as integer", p.cur.Literal))
		return nil
	}
	return &ast.IntegerLiteral{Span: p.span(p.cur), Value: v}
}

func (p *Parser) parseNumberLiteral() ast.Expr {
	v, err := strconv.ParseFloat(p.cur.Literal, 64)
	if err != nil {
		p.addError(p.cur, fmt.Sprintf("could not parse %q as number", p.cur.Literal))
		return nil
	}
	return &ast.NumberLiteral{Span: p.span(p.cur), Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expr {
	return &ast.StringLiteral{Span: p.span(p.cur), Value: p.cur.Literal}
}

func (p *Parser) parseBoolean() ast.Expr {
	return &ast.BooleanLiteral{Span: p.span(p.cur), Value: p.curTokenIs(lexer.TokTrue)}
}

func (p *Parser) parseNull() ast.Expr {
	return &ast.NullLiteral{Span: p.span(p.cur)}
}

func (p *Parser) parsePrefixExpression() ast.Expr {
	start := p.cur
	p.nextToken()
	right := p.parseExpression(PREFIX)
	if right == nil {
		return nil
	}
	return &ast.PrefixExpr{Span: p.span(start), Operator: start.Literal, Right: right}
}

func (p *Parser) parseGroupedExpression() ast.Expr {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil || !p.expectPeek(lexer.TokRParen) {
		return nil
	}
	return expr
}

func (p *Parser) parseIfExpression() ast.Expr {
	start := p.cur
	if !p.expectPeek(lexer.TokLParen) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if cond == nil || !p.expectPeek(lexer.TokRParen) || !p.expectPeek(lexer.TokLBrace) {
		return nil
	}
	consequence := p.parseBlockStatement()
	if consequence == nil {
		return nil
	}

	var alternative *ast.BlockStmt
	if p.peekTokenIs(lexer.TokElse) {
		p.nextToken()
		if p.peekTokenIs(lexer.TokIf) {
			// else if (...) { } chains nest as a single-statement block
			p.nextToken()
			elseStart := p.cur
			nested := p.parseIfExpression()
			if nested == nil {
				return nil
			}
			alternative = &ast.BlockStmt{
				Span:       p.span(elseStart),
				Statements: []ast.Stmt{&ast.ExprStmt{Span: p.span(elseStart), Expr: nested}},
			}
		} else {
			if !p.expectPeek(lexer.TokLBrace) {
				return nil
			}
			alternative = p.parseBlockStatement()
			if alternative == nil {
				return nil
			}
		}
	}

	return &ast.IfExpr{
		Span:        p.span(start),
		Condition:   cond,
		Consequence: consequence,
		Alternative: alternative,
	}
}

func (p *Parser) parseFunctionLiteral() ast.Expr {
	start := p.cur
	if !p.expectPeek(lexer.TokLParen) {
		return nil
	}
	params, ok := p.parseFunctionParameters()
	if !ok || !p.expectPeek(lexer.TokLBrace) {
		return nil
	}
	body := p.parseBlockStatement()
	if body == nil {
		return nil
	}
	return &ast.FunctionLiteral{Span: p.span(start), Parameters: params, Body: body}
}

func (p *Parser) parseFunctionParameters() ([]*ast.Identifier, bool) {
	params := []*ast.Identifier{}
	if p.peekTokenIs(lexer.TokRParen) {
		p.nextToken()
		return params, true
	}
	if !p.expectPeek(lexer.TokIdent) {
		return nil, false
	}
	params = append(params, &ast.Identifier{Span: p.span(p.cur), Name: p.cur.Literal})
	for p.peekTokenIs(lexer.TokComma) {
		p.nextToken()
		if !p.expectPeek(lexer.TokIdent) {
			return nil, false
		}
		params = append(params, &ast.Identifier{Span: p.span(p.cur), Name: p.cur.Literal})
	}
	if !p.expectPeek(lexer.TokRParen) {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	start := p.cur
	elements, ok := p.parseExpressionList(lexer.TokRBracket)
	if !ok {
		return nil
	}
	return &ast.ArrayLiteral{Span: p.span(start), Elements: elements}
}

// parseExpressionList parses comma separated expressions up to end. A
// trailing comma is a syntax error.
func (p *Parser) parseExpressionList(end lexer.TokenType) ([]ast.Expr, bool) {
	list := []ast.Expr{}
	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}

	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil, false
	}
	list = append(list, expr)

	for p.peekTokenIs(lexer.TokComma) {
		p.nextToken()
		p.nextToken()
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil, false
		}
		list = append(list, expr)
	}

	if !p.expectPeek(end) {
		return nil, false
	}
	return list, true
}

func (p *Parser) parseHashLiteral() ast.Expr {
	hash := &ast.HashLiteral{Span: p.span(p.cur), Pairs: []ast.HashPair{}}

	for !p.peekTokenIs(lexer.TokRBrace) {
		p.nextToken()
		key := p.parseExpression(LOWEST)
		if key == nil || !p.expectPeek(lexer.TokColon) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		hash.Pairs = append(hash.Pairs, ast.HashPair{Key: key, Value: value})

		if !p.peekTokenIs(lexer.TokRBrace) && !p.expectPeek(lexer.TokComma) {
			return nil
		}
	}

	if !p.expectPeek(lexer.TokRBrace) {
		return nil
	}
	return hash
}

func (p *Parser) parseUseExpression() ast.Expr {
	start := p.cur
	if !p.expectPeek(lexer.TokLParen) {
		return nil
	}
	p.nextToken()
	path := p.parseExpression(LOWEST)
	if path == nil || !p.expectPeek(lexer.TokRParen) {
		return nil
	}
	return &ast.UseExpr{Span: p.span(start), Path: path}
}

func (p *Parser) parseInfixExpression(left ast.Expr) ast.Expr {
	op := p.cur.Literal
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &ast.InfixExpr{Span: left.NodeSpan(), Operator: op, Left: left, Right: right}
}

func (p *Parser) parseCallExpression(function ast.Expr) ast.Expr {
	args, ok := p.parseExpressionList(lexer.TokRParen)
	if !ok {
		return nil
	}
	return &ast.CallExpr{Span: function.NodeSpan(), Function: function, Arguments: args}
}

func (p *Parser) parseIndexExpression(left ast.Expr) ast.Expr {
	p.nextToken()
	index := p.parseExpression(LOWEST)
	if index == nil || !p.expectPeek(lexer.TokRBracket) {
		return nil
	}
	return &ast.IndexExpr{Span: left.NodeSpan(), Left: left, Index: index}
}

// parseAssignExpression is right associative: the value swallows the rest
// of the expression.
func (p *Parser) parseAssignExpression(target ast.Expr) ast.Expr {
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	return &ast.AssignExpr{Span: target.NodeSpan(), Target: target, Value: value}
}

func (p *Parser) parsePropertyExpression(left ast.Expr) ast.Expr {
	if !p.expectPeek(lexer.TokIdent) {
		return nil
	}
	prop := &ast.Identifier{Span: p.span(p.cur), Name: p.cur.Literal}
	return &ast.PropertyExpr{Span: left.NodeSpan(), Left: left, Property: prop}
}

// parsePipeExpression desugars `x |> f(a)` into `f(x, a)` and `x |> f`
// into `f(x)`.
func (p *Parser) parsePipeExpression(left ast.Expr) ast.Expr {
	p.nextToken()
	right := p.parseExpression(PIPE)
	if right == nil {
		return nil
	}
	if call, ok := right.(*ast.CallExpr); ok {
		args := make([]ast.Expr, 0, len(call.Arguments)+1)
		args = append(args, left)
		args = append(args, call.Arguments...)
		return &ast.CallExpr{Span: left.NodeSpan(), Function: call.Function, Arguments: args}
	}
	return &ast.CallExpr{Span: left.NodeSpan(), Function: right, Arguments: []ast.Expr{left}}
}
