package ast

import (
	"github.com/kendroooo/rustic/internal/lexer"
	"github.com/kendroooo/rustic/internal/source"
)

type IntExpr struct {
	Span source.Span

	Value int64
}

type FloatExpr struct {
	Span source.Span

	Value float64
	Raw   string
}

type StringExpr struct {
	Span source.Span

	Value string
}

type BoolExpr struct {
	Span source.Span

	Value bool
}

type IdentExpr struct {
	Span source.Span

	Value string
}

type BinaryExpr struct {
	Span source.Span

	Left  Expr
	Op    lexer.TokenKind
	Right Expr
}

type PrefixExpr struct {
	Span source.Span

	Op      lexer.TokenKind
	Operand Expr
}

type CallExpr struct {
	Span source.Span

	Callee Expr
	Args   []Expr
}

type MemberAccessExpr struct {
	Span       source.Span
	MemberSpan source.Span

	Object Expr
	Member string
}

type ListExpr struct {
	Span source.Span

	Elems []Expr
}

type FieldInit struct {
	Span source.Span

	Value Expr
}

// StructInitExpr has no field order of its own. Consumers walk the
// struct's declared fields and look values up by name.
type StructInitExpr struct {
	Span     source.Span
	NameSpan source.Span

	Name   string
	Fields map[string]*FieldInit
}

func (*IntExpr) AstNode()          {}
func (*FloatExpr) AstNode()        {}
func (*StringExpr) AstNode()       {}
func (*BoolExpr) AstNode()         {}
func (*IdentExpr) AstNode()        {}
func (*BinaryExpr) AstNode()       {}
func (*PrefixExpr) AstNode()       {}
func (*CallExpr) AstNode()         {}
func (*MemberAccessExpr) AstNode() {}
func (*ListExpr) AstNode()         {}
func (*StructInitExpr) AstNode()   {}

func (*IntExpr) ExprNode()          {}
func (*FloatExpr) ExprNode()        {}
func (*StringExpr) ExprNode()       {}
func (*BoolExpr) ExprNode()         {}
func (*IdentExpr) ExprNode()        {}
func (*BinaryExpr) ExprNode()       {}
func (*PrefixExpr) ExprNode()       {}
func (*CallExpr) ExprNode()         {}
func (*MemberAccessExpr) ExprNode() {}
func (*ListExpr) ExprNode()         {}
func (*StructInitExpr) ExprNode()   {}

func (e *IntExpr) GetSpan() source.Span          { return e.Span }
func (e *FloatExpr) GetSpan() source.Span        { return e.Span }
func (e *StringExpr) GetSpan() source.Span       { return e.Span }
func (e *BoolExpr) GetSpan() source.Span         { return e.Span }
func (e *IdentExpr) GetSpan() source.Span        { return e.Span }
func (e *BinaryExpr) GetSpan() source.Span       { return e.Span }
func (e *PrefixExpr) GetSpan() source.Span       { return e.Span }
func (e *CallExpr) GetSpan() source.Span         { return e.Span }
func (e *MemberAccessExpr) GetSpan() source.Span { return e.Span }
func (e *ListExpr) GetSpan() source.Span         { return e.Span }
func (e *StructInitExpr) GetSpan() source.Span   { return e.Span }
