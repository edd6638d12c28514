package emitter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kendroooo/rustic/internal/ast"
	"github.com/kendroooo/rustic/internal/lexer"
	"github.com/kendroooo/rustic/internal/types"
)

// emitForExpr lowers expr as an owned value. Reads of non-Copy values are cloned.
func (e *Emitter) emitForExpr(expr ast.Expr) string {
	switch ex := expr.(type) {
	case *ast.IntExpr:
		if ex.Value == math.MinInt64 {
			return "i64::MIN"
		}
		return strconv.FormatInt(ex.Value, 10) + "i64"
	case *ast.FloatExpr:
		raw := ex.Raw
		if raw == "" {
			raw = strconv.FormatFloat(ex.Value, 'f', -1, 64)
		}
		return rustFloatLiteral(raw)
	case *ast.StringExpr:
		return fmt.Sprintf("String::from(%s)", rustStringLiteral(ex.Value))
	case *ast.BoolExpr:
		return strconv.FormatBool(ex.Value)
	case *ast.IdentExpr:
		return e.emitForIdentExpr(ex)
	case *ast.BinaryExpr:
		return e.emitForBinaryExpr(ex)
	case *ast.PrefixExpr:
		return fmt.Sprintf("(%s%s)", ex.Op, e.emitForExpr(ex.Operand))
	case *ast.CallExpr:
		return e.emitForCallExpr(ex)
	case *ast.MemberAccessExpr:
		return e.emitForMemberAccessExpr(ex)
	case *ast.ListExpr:
		return e.emitForListExpr(ex)
	case *ast.StructInitExpr:
		return e.emitForStructInitExpr(ex)
	}
	panic(fmt.Sprintf("emitForExpr(): unexpected expression %T", expr))
}

func cloneUnlessCopy(code string, t types.Type) string {
	if types.IsCopy(t) {
		return code
	}
	return code + ".clone()"
}

func (e *Emitter) emitForIdentExpr(identExpr *ast.IdentExpr) string {
	if global, ok := e.info.GlobalRefs[identExpr]; ok {
		return fmt.Sprintf("%s.with(|v| v.borrow().clone())", globalIdent(global.Name))
	}
	return cloneUnlessCopy(rustIdent(identExpr.Value), e.typeOf(identExpr))
}

func (e *Emitter) emitForBinaryExpr(binaryExpr *ast.BinaryExpr) string {
	left := e.emitForExpr(binaryExpr.Left)
	right := e.emitForExpr(binaryExpr.Right)

	if binaryExpr.Op == lexer.PLUS && e.typeOf(binaryExpr).SameAs(types.Str) {
		return fmt.Sprintf("format!(\"{}{}\", %s, %s)", left, right)
	}
	return fmt.Sprintf("(%s %s %s)", left, binaryExpr.Op, right)
}

// emitForCallExpr fills omitted trailing arguments with the parameter defaults.
func (e *Emitter) emitForCallExpr(callExpr *ast.CallExpr) string {
	callee := callExpr.Callee.(*ast.IdentExpr)
	fn, ok := e.info.Function(callee.Value)
	if !ok {
		panic(fmt.Sprintf("call to unknown function '%s'", callee.Value))
	}

	args := make([]string, 0, len(fn.Params))
	for _, arg := range callExpr.Args {
		args = append(args, e.emitForExpr(arg))
	}
	for _, param := range fn.Params[len(callExpr.Args):] {
		args = append(args, e.emitForExpr(param.Default))
	}

	if fn.Builtin {
		return e.emitForBuiltinCall(fn, args)
	}
	return fmt.Sprintf("%s(%s)", rustIdent(fn.Name), strings.Join(args, ", "))
}

func (e *Emitter) emitForBuiltinCall(fn *types.FunctionType, args []string) string {
	switch fn.Name {
	case "print":
		return fmt.Sprintf("println!(\"{}\", %s)", args[0])
	}
	panic(fmt.Sprintf("emitForBuiltinCall(): unknown builtin '%s'", fn.Name))
}

func (e *Emitter) emitForMemberAccessExpr(memberAccessExpr *ast.MemberAccessExpr) string {
	fieldType := e.typeOf(memberAccessExpr)

	root, path := placePath(memberAccessExpr)
	if root == nil {
		object := e.emitForExpr(memberAccessExpr.Object)
		return cloneUnlessCopy(fmt.Sprintf("(%s).%s", object, rustIdent(memberAccessExpr.Member)), fieldType)
	}

	fields := strings.Join(path, ".")
	if global, ok := e.info.GlobalRefs[root]; ok {
		return fmt.Sprintf(
			"%s.with(|v| %s)",
			globalIdent(global.Name),
			cloneUnlessCopy("v.borrow()."+fields, fieldType),
		)
	}
	return cloneUnlessCopy(rustIdent(root.Value)+"."+fields, fieldType)
}

func (e *Emitter) emitForListExpr(listExpr *ast.ListExpr) string {
	if len(listExpr.Elems) == 0 {
		listType, _ := e.typeOf(listExpr).(*types.ListType)
		if listType != nil && listType.Elem != nil {
			return fmt.Sprintf("Vec::<%s>::new()", rustType(listType.Elem))
		}
		return "Vec::new()"
	}

	elems := make([]string, len(listExpr.Elems))
	for i, elem := range listExpr.Elems {
		elems[i] = e.emitForExpr(elem)
	}
	return fmt.Sprintf("vec![%s]", strings.Join(elems, ", "))
}

// emitForStructInitExpr walks the declared fields, so the output does not
// depend on the order fields were written in.
func (e *Emitter) emitForStructInitExpr(structInitExpr *ast.StructInitExpr) string {
	structType := e.info.StructByName[structInitExpr.Name]
	if len(structType.Fields) == 0 {
		return rustIdent(structType.Name) + " {}"
	}

	fields := make([]string, len(structType.Fields))
	for i, field := range structType.Fields {
		init, ok := structInitExpr.Fields[field.Name]
		if !ok {
			panic(fmt.Sprintf("initializer of '%s' is missing field '%s'", structType.Name, field.Name))
		}
		fields[i] = fmt.Sprintf("%s: %s", rustIdent(field.Name), e.emitForExpr(init.Value))
	}
	return fmt.Sprintf("%s { %s }", rustIdent(structType.Name), strings.Join(fields, ", "))
}
