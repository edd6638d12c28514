package ast

import "github.com/kendroooo/rustic/internal/source"

type AstNode interface {
	AstNode()
	GetSpan() source.Span
}

// Program is one parsed module.
type Program struct {
	File    string
	Imports []*ImportDecl
	Items   []Item
}

type ImportDecl struct {
	Span source.Span

	Path string
}

type Stmt interface {
	AstNode
	StmtNode()
}

// Item is a top level declaration.
type Item interface {
	Stmt
	ItemNode()
}

type Expr interface {
	AstNode
	ExprNode()
}

func (i *ImportDecl) AstNode() {}
func (i *ImportDecl) GetSpan() source.Span {
	return i.Span
}
