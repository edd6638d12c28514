package semantic_analyzer

import (
	"slices"

	"github.com/kendroooo/rustic/internal/ast"
	"github.com/kendroooo/rustic/internal/types"
)

type TypeResolver struct {
	builtinTypesMap map[string]types.Type
	structTypesMap  map[string]*types.StructType
}

func (tr *TypeResolver) defineBuiltInTypes() {
	tr.builtinTypesMap["Int"] = types.Int
	tr.builtinTypesMap["Float"] = types.Float
	tr.builtinTypesMap["Str"] = types.Str
	tr.builtinTypesMap["Bool"] = types.Bool
	tr.builtinTypesMap["Void"] = types.Void
}

func NewTypeResolver() *TypeResolver {
	tr := &TypeResolver{
		builtinTypesMap: make(map[string]types.Type),
		structTypesMap:  make(map[string]*types.StructType),
	}
	tr.defineBuiltInTypes()
	return tr
}

// AddStruct registers an empty struct type so later declarations can refer to it.
// Fields are filled in once every struct name is known.
func (tr *TypeResolver) AddStruct(name string) (*types.StructType, bool) {
	if _, exists := tr.structTypesMap[name]; exists {
		return nil, false
	}
	structType := &types.StructType{Name: name, Fields: make([]types.Field, 0)}
	tr.structTypesMap[name] = structType
	return structType, true
}

func (tr *TypeResolver) GetStruct(name string) (*types.StructType, bool) {
	t, ok := tr.structTypesMap[name]
	return t, ok
}

func (tr *TypeResolver) IsBuiltInType(name string) bool {
	_, ok := tr.builtinTypesMap[name]
	return ok
}

// GetType resolves a written type. The second result names the first unknown type on failure.
func (tr *TypeResolver) GetType(typeNode ast.TypeNode) (types.Type, string) {
	if listType, ok := typeNode.(*ast.ListTypeNode); ok {
		elemType, unknown := tr.GetType(listType.ElemType)
		if elemType == nil {
			return nil, unknown
		}
		return &types.ListType{Elem: elemType}, ""
	}

	name := typeNode.TypeName()
	if t, ok := tr.builtinTypesMap[name]; ok {
		return t, ""
	}

	if t, ok := tr.structTypesMap[name]; ok {
		return t, ""
	}

	return nil, name
}

// FindCycles returns every by-value containment cycle between structs, each as
// the chain of struct names that closes on its first element. List fields are
// heap indirections and never form a cycle.
func (tr *TypeResolver) FindCycles(order []string) [][]string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(order))
	path := make([]string, 0)
	cycles := make([][]string, 0)

	var visit func(name string)
	visit = func(name string) {
		color[name] = gray
		path = append(path, name)

		structType := tr.structTypesMap[name]
		for _, field := range structType.Fields {
			dep, ok := field.Type.(*types.StructType)
			if !ok {
				continue
			}

			switch color[dep.Name] {
			case gray:
				start := slices.Index(path, dep.Name)
				cycle := append(slices.Clone(path[start:]), dep.Name)
				cycles = append(cycles, cycle)
			case white:
				visit(dep.Name)
			}
		}

		path = path[:len(path)-1]
		color[name] = black
	}

	for _, name := range order {
		if _, ok := tr.structTypesMap[name]; ok && color[name] == white {
			visit(name)
		}
	}

	return cycles
}
