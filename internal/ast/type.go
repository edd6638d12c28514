package ast

import (
	"fmt"

	"github.com/kendroooo/rustic/internal/source"
)

type TypeNode interface {
	TypeNode()
	TypeName() string
	GetSpan() source.Span
}

// IdentTypeNode is a builtin type keyword or a struct name.
type IdentTypeNode struct {
	Span source.Span

	Name string
}

type ListTypeNode struct {
	Span source.Span

	ElemType TypeNode
}

func (*IdentTypeNode) TypeNode() {}
func (*ListTypeNode) TypeNode()  {}

func (t *IdentTypeNode) TypeName() string {
	return t.Name
}
func (t *ListTypeNode) TypeName() string {
	return fmt.Sprintf("List<%s>", t.ElemType.TypeName())
}

func (t *IdentTypeNode) GetSpan() source.Span {
	return t.Span
}
func (t *ListTypeNode) GetSpan() source.Span {
	return t.Span
}
