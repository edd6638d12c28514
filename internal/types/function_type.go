package types

import (
	"fmt"
	"strings"

	"github.com/kendroooo/rustic/internal/ast"
)

type Param struct {
	Name    string
	Type    Type
	Default ast.Expr
}

type FunctionType struct {
	Name    string
	Params  []Param
	Return  Type
	Builtin bool
}

func (f *FunctionType) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type.String()
	}
	return fmt.Sprintf("fn(%s) -> %s", strings.Join(params, ", "), f.Return.String())
}

func (f *FunctionType) SameAs(t Type) bool {
	other, ok := t.(*FunctionType)
	if !ok || len(f.Params) != len(other.Params) || !f.Return.SameAs(other.Return) {
		return false
	}
	for i := range f.Params {
		if !f.Params[i].Type.SameAs(other.Params[i].Type) {
			return false
		}
	}
	return true
}

// RequiredParams is the number of leading parameters without a default.
func (f *FunctionType) RequiredParams() int {
	for i, p := range f.Params {
		if p.Default != nil {
			return i
		}
	}
	return len(f.Params)
}
