package semantic_analyzer

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/kendroooo/rustic/internal/ast"
	"github.com/kendroooo/rustic/internal/lexer"
	"github.com/kendroooo/rustic/internal/types"
)

// analyzeExpr returns the static type of expr and records it in Info.Types.
// A nil result means an error has already been reported for expr.
func (sa *SemanticAnalyzer) analyzeExpr(expr ast.Expr) types.Type {
	var t types.Type

	switch e := expr.(type) {
	case *ast.IntExpr:
		t = types.Int
	case *ast.FloatExpr:
		t = types.Float
	case *ast.StringExpr:
		t = types.Str
	case *ast.BoolExpr:
		t = types.Bool
	case *ast.IdentExpr:
		t = sa.analyzeIdentExpr(e)
	case *ast.BinaryExpr:
		t = sa.analyzeBinaryExpr(e)
	case *ast.PrefixExpr:
		t = sa.analyzePrefixExpr(e)
	case *ast.CallExpr:
		t = sa.analyzeCallExpr(e)
	case *ast.MemberAccessExpr:
		t = sa.analyzeMemberAccessExpr(e)
	case *ast.ListExpr:
		t = sa.analyzeListExpr(e)
	case *ast.StructInitExpr:
		t = sa.analyzeStructInitExpr(e)
	default:
		panic("not implemented")
	}

	if t != nil {
		sa.info.Types[expr] = t
	}
	return t
}

func (sa *SemanticAnalyzer) analyzeIdentExpr(identExpr *ast.IdentExpr) types.Type {
	b, ok := sa.scope.lookup(identExpr.Value)
	if !ok {
		if _, isFunc := sa.info.Function(identExpr.Value); isFunc {
			sa.eh.Report(newSemanticError(identExpr.Span, "function '%s' cannot be used as a value", identExpr.Value))
			return nil
		}
		sa.eh.Report(newSemanticError(identExpr.Span, "undefined name '%s'", identExpr.Value))
		return nil
	}

	if b.global != nil {
		sa.info.GlobalRefs[identExpr] = b.global
	}
	return b.Type
}

func (sa *SemanticAnalyzer) analyzeBinaryExpr(binaryExpr *ast.BinaryExpr) types.Type {
	left := sa.analyzeExpr(binaryExpr.Left)
	right := sa.analyzeExpr(binaryExpr.Right)
	if left == nil || right == nil {
		return nil
	}

	invalid := func() types.Type {
		sa.eh.Report(newSemanticError(
			binaryExpr.Span,
			"invalid operands for '%s': %s and %s",
			binaryExpr.Op,
			left,
			right,
		))
		return nil
	}

	switch binaryExpr.Op {
	case lexer.PLUS:
		if left.SameAs(types.Str) && right.SameAs(types.Str) {
			return types.Str
		}
		fallthrough
	case lexer.MINUS, lexer.ASTERISK, lexer.SLASH, lexer.PERCENT:
		if types.IsNumeric(left) && left.SameAs(right) {
			return left
		}
		return invalid()

	case lexer.LT, lexer.LEQ, lexer.GT, lexer.GEQ:
		if (types.IsNumeric(left) || left.SameAs(types.Str)) && left.SameAs(right) {
			return types.Bool
		}
		return invalid()

	case lexer.EQ, lexer.NEQ:
		if containsVoid(left) || containsVoid(right) {
			return invalid()
		}
		operand := left
		switch {
		case types.AssignableTo(left, right):
			sa.refineListType(binaryExpr.Left, right)
			operand = right
		case types.AssignableTo(right, left):
			sa.refineListType(binaryExpr.Right, left)
		default:
			return invalid()
		}
		if !types.IsInferred(operand) {
			sa.reportUninferredList(binaryExpr.Span)
			return nil
		}
		return types.Bool

	case lexer.LAND, lexer.LOR:
		if left.SameAs(types.Bool) && right.SameAs(types.Bool) {
			return types.Bool
		}
		return invalid()
	}

	panic("analyzeBinaryExpr(): unknown operator " + binaryExpr.Op.String())
}

func (sa *SemanticAnalyzer) analyzePrefixExpr(prefixExpr *ast.PrefixExpr) types.Type {
	operand := sa.analyzeExpr(prefixExpr.Operand)
	if operand == nil {
		return nil
	}

	switch {
	case prefixExpr.Op == lexer.MINUS && types.IsNumeric(operand):
		return operand
	case prefixExpr.Op == lexer.XMARK && operand.SameAs(types.Bool):
		return types.Bool
	}

	sa.eh.Report(newSemanticError(
		prefixExpr.Span,
		"invalid operand for '%s': %s",
		prefixExpr.Op,
		operand,
	))
	return nil
}

func (sa *SemanticAnalyzer) analyzeCallExpr(callExpr *ast.CallExpr) types.Type {
	callee, ok := callExpr.Callee.(*ast.IdentExpr)
	if !ok {
		sa.eh.Report(newSemanticError(callExpr.Callee.GetSpan(), "only named functions can be called"))
		sa.analyzeArgs(callExpr.Args, nil)
		return nil
	}

	if _, isValue := sa.scope.lookup(callee.Value); isValue {
		sa.eh.Report(newSemanticError(callee.Span, "'%s' is not a function", callee.Value))
		sa.analyzeArgs(callExpr.Args, nil)
		return nil
	}

	fn, ok := sa.info.Function(callee.Value)
	if !ok {
		sa.eh.Report(newSemanticError(callee.Span, "undefined name '%s'", callee.Value))
		sa.analyzeArgs(callExpr.Args, nil)
		return nil
	}

	if len(callExpr.Args) > len(fn.Params) {
		sa.eh.Report(newSemanticError(
			callExpr.Span,
			"too many arguments to '%s': expected at most %d, found %d",
			fn.Name,
			len(fn.Params),
			len(callExpr.Args),
		))
	}

	sa.analyzeArgs(callExpr.Args, fn.Params)

	for i := len(callExpr.Args); i < len(fn.Params); i++ {
		if fn.Params[i].Default == nil {
			sa.eh.Report(newSemanticError(
				callExpr.Span,
				"missing argument for parameter '%s' of '%s'",
				fn.Params[i].Name,
				fn.Name,
			))
		}
	}

	return fn.Return
}

func (sa *SemanticAnalyzer) analyzeArgs(args []ast.Expr, params []types.Param) {
	for i, arg := range args {
		if i < len(params) {
			sa.checkValue(arg, params[i].Type)
			continue
		}
		sa.analyzeExpr(arg)
	}
}

func (sa *SemanticAnalyzer) analyzeMemberAccessExpr(memberAccessExpr *ast.MemberAccessExpr) types.Type {
	objectType := sa.analyzeExpr(memberAccessExpr.Object)
	if objectType == nil {
		return nil
	}

	structType, ok := objectType.(*types.StructType)
	if !ok {
		sa.eh.Report(newSemanticError(
			memberAccessExpr.MemberSpan,
			"cannot access field '%s' on value of type %s",
			memberAccessExpr.Member,
			objectType,
		))
		return nil
	}

	field, ok := structType.Field(memberAccessExpr.Member)
	if !ok {
		sa.eh.Report(newSemanticError(
			memberAccessExpr.MemberSpan,
			"struct '%s' has no field '%s'",
			structType.Name,
			memberAccessExpr.Member,
		))
		return nil
	}

	return field.Type
}

// analyzeListExpr widens the element type as it goes, so `[[], [1]]` is List<List<Int>>.
func (sa *SemanticAnalyzer) analyzeListExpr(listExpr *ast.ListExpr) types.Type {
	var elemType types.Type
	failed := false

	for _, elem := range listExpr.Elems {
		t := sa.analyzeExpr(elem)
		if t == nil {
			failed = true
			continue
		}

		switch {
		case elemType == nil:
			if containsVoid(t) {
				sa.eh.Report(newSemanticError(elem.GetSpan(), "Void is only allowed as a return type"))
				failed = true
				continue
			}
			elemType = t
		case types.AssignableTo(t, elemType):
		case types.AssignableTo(elemType, t):
			elemType = t
		default:
			sa.reportMismatch(elem.GetSpan(), elemType, t)
			failed = true
		}
	}

	if failed {
		return nil
	}
	for _, elem := range listExpr.Elems {
		sa.refineListType(elem, elemType)
	}
	return &types.ListType{Elem: elemType}
}

func (sa *SemanticAnalyzer) analyzeStructInitExpr(structInitExpr *ast.StructInitExpr) types.Type {
	structType, ok := sa.resolver.GetStruct(structInitExpr.Name)
	if !ok {
		sa.eh.Report(newSemanticError(structInitExpr.NameSpan, "unknown struct '%s'", structInitExpr.Name))
		for _, name := range sortedFieldNames(structInitExpr) {
			sa.analyzeExpr(structInitExpr.Fields[name].Value)
		}
		return nil
	}

	supplied := mapset.NewThreadUnsafeSet[string]()
	for name := range structInitExpr.Fields {
		supplied.Add(name)
	}
	declared := mapset.NewThreadUnsafeSet[string](structType.FieldNames()...)

	for _, field := range structType.Fields {
		init, ok := structInitExpr.Fields[field.Name]
		if !ok {
			sa.eh.Report(newSemanticError(
				structInitExpr.Span,
				"struct '%s' initializer is missing field '%s'",
				structType.Name,
				field.Name,
			))
			continue
		}
		sa.checkValue(init.Value, field.Type)
	}

	unknown := supplied.Difference(declared).ToSlice()
	sort.Strings(unknown)
	for _, name := range unknown {
		init := structInitExpr.Fields[name]
		sa.eh.Report(newSemanticError(init.Span, "struct '%s' has no field '%s'", structType.Name, name))
		sa.analyzeExpr(init.Value)
	}

	return structType
}

func sortedFieldNames(structInitExpr *ast.StructInitExpr) []string {
	names := make([]string, 0, len(structInitExpr.Fields))
	for name := range structInitExpr.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
