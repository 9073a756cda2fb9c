// Package ast defines the Orangutan language AST node types.
package ast

import "fmt"

// Span is the source position of the token that starts a node.
type Span struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (s Span) String() string {
	if s.File == "" {
		return fmt.Sprintf("%d:%d", s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Literal Expressions ---

type IntegerLiteral struct {
	Span  Span
	Value int64
}

func (n *IntegerLiteral) Kind() string   { return "IntegerLiteral" }
func (n *IntegerLiteral) NodeSpan() Span { return n.Span }
func (n *IntegerLiteral) exprNode()      {}

type NumberLiteral struct {
	Span  Span
	Value float64
}

func (n *NumberLiteral) Kind() string   { return "NumberLiteral" }
func (n *NumberLiteral) NodeSpan() Span { return n.Span }
func (n *NumberLiteral) exprNode()      {}

type BooleanLiteral struct {
	Span  Span
	Value bool
}

func (n *BooleanLiteral) Kind() string   { return "BooleanLiteral" }
func (n *BooleanLiteral) NodeSpan() Span { return n.Span }
func (n *BooleanLiteral) exprNode()      {}

type StringLiteral struct {
	Span  Span
	Value string
}

func (n *StringLiteral) Kind() string   { return "StringLiteral" }
func (n *StringLiteral) NodeSpan() Span { return n.Span }
func (n *StringLiteral) exprNode()      {}

type NullLiteral struct {
	Span Span
}

func (n *NullLiteral) Kind() string   { return "NullLiteral" }
func (n *NullLiteral) NodeSpan() Span { return n.Span }
func (n *NullLiteral) exprNode()      {}

// --- Identifiers ---

type Identifier struct {
	Span Span
	Name string
}

func (n *Identifier) Kind() string   { return "Identifier" }
func (n *Identifier) NodeSpan() Span { return n.Span }
func (n *Identifier) exprNode()      {}

// --- Collections ---

type ArrayLiteral struct {
	Span     Span
	Elements []Expr
}

func (n *ArrayLiteral) Kind() string   { return "ArrayLiteral" }
func (n *ArrayLiteral) NodeSpan() Span { return n.Span }
func (n *ArrayLiteral) exprNode()      {}

// HashPair is one `key: value` entry of a hash literal.
type HashPair struct {
	Key   Expr
	Value Expr
}

// HashLiteral keeps its pairs in source order; duplicate keys are resolved
// by the evaluator (last write wins).
type HashLiteral struct {
	Span  Span
	Pairs []HashPair
}

func (n *HashLiteral) Kind() string   { return "HashLiteral" }
func (n *HashLiteral) NodeSpan() Span { return n.Span }
func (n *HashLiteral) exprNode()      {}

// --- Functions and calls ---

type FunctionLiteral struct {
	Span       Span
	Parameters []*Identifier
	Body       *BlockStmt
}

func (n *FunctionLiteral) Kind() string   { return "FunctionLiteral" }
func (n *FunctionLiteral) NodeSpan() Span { return n.Span }
func (n *FunctionLiteral) exprNode()      {}

type CallExpr struct {
	Span      Span
	Function  Expr
	Arguments []Expr
}

func (n *CallExpr) Kind() string   { return "CallExpr" }
func (n *CallExpr) NodeSpan() Span { return n.Span }
func (n *CallExpr) exprNode()      {}

type IndexExpr struct {
	Span  Span
	Left  Expr
	Index Expr
}

func (n *IndexExpr) Kind() string   { return "IndexExpr" }
func (n *IndexExpr) NodeSpan() Span { return n.Span }
func (n *IndexExpr) exprNode()      {}

// PropertyExpr is `left.property`; chains nest through Left.
type PropertyExpr struct {
	Span     Span
	Left     Expr
	Property *Identifier
}

func (n *PropertyExpr) Kind() string   { return "PropertyExpr" }
func (n *PropertyExpr) NodeSpan() Span { return n.Span }
func (n *PropertyExpr) exprNode()      {}

type UseExpr struct {
	Span Span
	Path Expr
}

func (n *UseExpr) Kind() string   { return "UseExpr" }
func (n *UseExpr) NodeSpan() Span { return n.Span }
func (n *UseExpr) exprNode()      {}

// --- Operators ---

type PrefixExpr struct {
	Span     Span
	Operator string
	Right    Expr
}

func (n *PrefixExpr) Kind() string   { return "PrefixExpr" }
func (n *PrefixExpr) NodeSpan() Span { return n.Span }
func (n *PrefixExpr) exprNode()      {}

type InfixExpr struct {
	Span     Span
	Operator string
	Left     Expr
	Right    Expr
}

func (n *InfixExpr) Kind() string   { return "InfixExpr" }
func (n *InfixExpr) NodeSpan() Span { return n.Span }
func (n *InfixExpr) exprNode()      {}

type AssignExpr struct {
	Span   Span
	Target Expr
	Value  Expr
}

func (n *AssignExpr) Kind() string   { return "AssignExpr" }
func (n *AssignExpr) NodeSpan() Span { return n.Span }
func (n *AssignExpr) exprNode()      {}

// --- Control Flow ---

type IfExpr struct {
	Span        Span
	Condition   Expr
	Consequence *BlockStmt
	Alternative *BlockStmt // nil when there is no else branch
}

func (n *IfExpr) Kind() string   { return "IfExpr" }
func (n *IfExpr) NodeSpan() Span { return n.Span }
func (n *IfExpr) exprNode()      {}

// --- Statements ---

type LetStmt struct {
	Span  Span
	Name  *Identifier
	Value Expr // nil for `let x;`
}

func (n *LetStmt) Kind() string   { return "LetStmt" }
func (n *LetStmt) NodeSpan() Span { return n.Span }
func (n *LetStmt) stmtNode()      {}

type ReturnStmt struct {
	Span  Span
	Value Expr // nil for a bare `return`
}

func (n *ReturnStmt) Kind() string   { return "ReturnStmt" }
func (n *ReturnStmt) NodeSpan() Span { return n.Span }
func (n *ReturnStmt) stmtNode()      {}

type ExprStmt struct {
	Span Span
	Expr Expr
}

func (n *ExprStmt) Kind() string   { return "ExprStmt" }
func (n *ExprStmt) NodeSpan() Span { return n.Span }
func (n *ExprStmt) stmtNode()      {}

type BlockStmt struct {
	Span       Span
	Statements []Stmt
}

func (n *BlockStmt) Kind() string   { return "BlockStmt" }
func (n *BlockStmt) NodeSpan() Span { return n.Span }
func (n *BlockStmt) stmtNode()      {}

// CommentStmt holds the text of a `//` line comment, without the slashes.
type CommentStmt struct {
	Span Span
	Text string
}

func (n *CommentStmt) Kind() string   { return "CommentStmt" }
func (n *CommentStmt) NodeSpan() Span { return n.Span }
func (n *CommentStmt) stmtNode()      {}

type WhileStmt struct {
	Span      Span
	Condition Expr
	Body      *BlockStmt
}

func (n *WhileStmt) Kind() string   { return "WhileStmt" }
func (n *WhileStmt) NodeSpan() Span { return n.Span }
func (n *WhileStmt) stmtNode()      {}

// --- Program ---

type Program struct {
	Span       Span
	Statements []Stmt
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }
