package semantic_analyzer

import (
	"github.com/kendroooo/rustic/internal/ast"
	"github.com/kendroooo/rustic/internal/types"
)

// Global is a top level let, var or const binding.
type Global struct {
	Name    string
	Type    types.Type
	Mutable bool
	Const   bool
	Decl    ast.Item
}

// Info is what the analyzer learned about a module. The AST itself is never modified.
type Info struct {
	Types map[ast.Expr]types.Type

	// GlobalRefs holds the identifiers that resolve to a top level binding.
	GlobalRefs map[*ast.IdentExpr]*Global

	Structs      []*types.StructType
	StructByName map[string]*types.StructType

	Functions  []*types.FunctionType
	FuncByName map[string]*types.FunctionType

	Globals      []*Global
	GlobalByName map[string]*Global

	UsesTry bool
}

func newInfo() *Info {
	return &Info{
		Types:        make(map[ast.Expr]types.Type),
		GlobalRefs:   make(map[*ast.IdentExpr]*Global),
		Structs:      make([]*types.StructType, 0),
		StructByName: make(map[string]*types.StructType),
		Functions:    make([]*types.FunctionType, 0),
		FuncByName:   make(map[string]*types.FunctionType),
		Globals:      make([]*Global, 0),
		GlobalByName: make(map[string]*Global),
	}
}

// TypeOf returns the static type recorded for expr.
func (i *Info) TypeOf(expr ast.Expr) types.Type {
	return i.Types[expr]
}

// Function looks up a user declared function or a builtin.
func (i *Info) Function(name string) (*types.FunctionType, bool) {
	if fn, ok := i.FuncByName[name]; ok {
		return fn, true
	}
	fn, ok := builtinFunctions[name]
	return fn, ok
}

// HasMain reports whether the module declares `fn main()` without parameters.
func (i *Info) HasMain() bool {
	fn, ok := i.FuncByName["main"]
	return ok && len(fn.Params) == 0 && fn.Return.SameAs(types.Void)
}

var builtinFunctions = map[string]*types.FunctionType{
	"print": {
		Name:    "print",
		Params:  []types.Param{{Name: "value", Type: types.Str}},
		Return:  types.Void,
		Builtin: true,
	},
}

// IsBuiltinFunction reports whether name is provided by the runtime rather than the module.
func IsBuiltinFunction(name string) bool {
	_, ok := builtinFunctions[name]
	return ok
}

// builtinExceptions are the failure kinds the generated runtime can classify.
var builtinExceptions = []string{"Exception", "DivisionByZero", "IndexOutOfBounds", "Overflow"}
