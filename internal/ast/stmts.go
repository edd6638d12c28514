package ast

import "github.com/kendroooo/rustic/internal/source"

type ScopeStmt struct {
	Span source.Span

	Stmts []Stmt
}

type FuncDeclStmt struct {
	Span     source.Span
	NameSpan source.Span

	Name       string
	Params     []FuncParam
	ReturnType TypeNode
	Body       *ScopeStmt
}

type FuncParam struct {
	Span source.Span

	Name    string
	Type    TypeNode
	Default Expr
}

type StructDeclStmt struct {
	Span     source.Span
	NameSpan source.Span

	Name   string
	Fields []StructField
}

type StructField struct {
	Span source.Span

	Name string
	Type TypeNode
}

// VarDeclStmt is a `let` or `var` binding, at top level or inside a block.
type VarDeclStmt struct {
	Span     source.Span
	NameSpan source.Span

	Name    string
	Type    TypeNode
	Value   Expr
	Mutable bool
}

type ConstDeclStmt struct {
	Span     source.Span
	NameSpan source.Span

	Name  string
	Type  TypeNode
	Value Expr
}

type ExprStmt struct {
	Span source.Span

	Expr Expr
}

// AssignStmt assigns to an identifier or a member access chain.
type AssignStmt struct {
	Span source.Span

	Target Expr
	Value  Expr
}

type ElseIf struct {
	Span source.Span

	Cond Expr
	Body *ScopeStmt
}

type IfStmt struct {
	Span source.Span

	Cond    Expr
	Body    *ScopeStmt
	ElseIfs []ElseIf
	Else    *ScopeStmt
}

type ForStmt struct {
	Span    source.Span
	VarSpan source.Span

	Var      string
	Iterable Expr
	Body     *ScopeStmt
}

type CatchClause struct {
	Span     source.Span
	TypeSpan source.Span

	TypeName string
	Body     *ScopeStmt
}

type TryStmt struct {
	Span source.Span

	Body    *ScopeStmt
	Catches []CatchClause
}

type ReturnStmt struct {
	Span source.Span

	Value Expr
}

func (*ScopeStmt) AstNode()      {}
func (*FuncDeclStmt) AstNode()   {}
func (*StructDeclStmt) AstNode() {}
func (*VarDeclStmt) AstNode()    {}
func (*ConstDeclStmt) AstNode()  {}
func (*ExprStmt) AstNode()       {}
func (*AssignStmt) AstNode()     {}
func (*IfStmt) AstNode()         {}
func (*ForStmt) AstNode()        {}
func (*TryStmt) AstNode()        {}
func (*ReturnStmt) AstNode()     {}

func (*ScopeStmt) StmtNode()      {}
func (*FuncDeclStmt) StmtNode()   {}
func (*StructDeclStmt) StmtNode() {}
func (*VarDeclStmt) StmtNode()    {}
func (*ConstDeclStmt) StmtNode()  {}
func (*ExprStmt) StmtNode()       {}
func (*AssignStmt) StmtNode()     {}
func (*IfStmt) StmtNode()         {}
func (*ForStmt) StmtNode()        {}
func (*TryStmt) StmtNode()        {}
func (*ReturnStmt) StmtNode()     {}

func (*FuncDeclStmt) ItemNode()   {}
func (*StructDeclStmt) ItemNode() {}
func (*VarDeclStmt) ItemNode()    {}
func (*ConstDeclStmt) ItemNode()  {}

func (s *ScopeStmt) GetSpan() source.Span      { return s.Span }
func (s *FuncDeclStmt) GetSpan() source.Span   { return s.Span }
func (s *StructDeclStmt) GetSpan() source.Span { return s.Span }
func (s *VarDeclStmt) GetSpan() source.Span    { return s.Span }
func (s *ConstDeclStmt) GetSpan() source.Span  { return s.Span }
func (s *ExprStmt) GetSpan() source.Span       { return s.Span }
func (s *AssignStmt) GetSpan() source.Span     { return s.Span }
func (s *IfStmt) GetSpan() source.Span         { return s.Span }
func (s *ForStmt) GetSpan() source.Span        { return s.Span }
func (s *TryStmt) GetSpan() source.Span        { return s.Span }
func (s *ReturnStmt) GetSpan() source.Span     { return s.Span }

// Field looks up a declared field by name.
func (s *StructDeclStmt) Field(name string) (StructField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return StructField{}, false
}
