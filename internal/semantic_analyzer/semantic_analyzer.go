package semantic_analyzer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kendroooo/rustic/internal/ast"
	"github.com/kendroooo/rustic/internal/compiler_errors"
	"github.com/kendroooo/rustic/internal/source"
	"github.com/kendroooo/rustic/internal/types"
)

// ErrAnalysisFailed is returned when the module produced at least one error diagnostic.
var ErrAnalysisFailed = errors.New("semantic analysis failed")

type SemanticError struct {
	message  string
	span     source.Span
	severity compiler_errors.Severity
	notes    []string
}

func (se *SemanticError) GetMessage() string                    { return se.message }
func (se *SemanticError) GetSpan() source.Span                  { return se.span }
func (se *SemanticError) GetSeverity() compiler_errors.Severity { return se.severity }
func (se *SemanticError) GetStage() compiler_errors.Stage       { return compiler_errors.StageSemantic }
func (se *SemanticError) GetNotes() []string                    { return se.notes }
func (se *SemanticError) Error() string                         { return se.span.String() + ": " + se.message }

func newSemanticError(span source.Span, format string, args ...any) *SemanticError {
	return &SemanticError{
		message:  fmt.Sprintf(format, args...),
		span:     span,
		severity: compiler_errors.Error,
	}
}

func newSemanticWarning(span source.Span, format string, args ...any) *SemanticError {
	return &SemanticError{
		message:  fmt.Sprintf(format, args...),
		span:     span,
		severity: compiler_errors.Warning,
	}
}

func (se *SemanticError) withNote(format string, args ...any) *SemanticError {
	se.notes = append(se.notes, fmt.Sprintf(format, args...))
	return se
}

type SemanticAnalyzer struct {
	eh      compiler_errors.ErrorHandler
	program *ast.Program

	info     *Info
	resolver *TypeResolver

	globalScope *scope
	scope       *scope

	itemSpans   map[string]source.Span
	skipped     map[ast.Item]bool
	structDecls []*ast.StructDeclStmt
	funcDecls   []*ast.FuncDeclStmt

	currentFunc *types.FunctionType
}

func NewSemanticAnalyzer(eh compiler_errors.ErrorHandler, program *ast.Program) *SemanticAnalyzer {
	globalScope := newScope(nil)

	return &SemanticAnalyzer{
		eh:      eh,
		program: program,

		info:     newInfo(),
		resolver: NewTypeResolver(),

		globalScope: globalScope,
		scope:       globalScope,

		itemSpans: make(map[string]source.Span),
		skipped:   make(map[ast.Item]bool),
	}
}

func (sa *SemanticAnalyzer) enterScope() {
	sa.scope = newScope(sa.scope)
}

func (sa *SemanticAnalyzer) exitScope() {
	sa.scope = sa.scope.parent
}

// Analyze checks the whole module. Analysis keeps going after an error so that
// one run reports every problem; the returned Info is only fit for code
// generation when err is nil.
func (sa *SemanticAnalyzer) Analyze() (*Info, error) {
	errorsBefore := sa.eh.ErrorCount()

	sa.checkImports()
	sa.declareItems()
	sa.resolveStructFields()
	sa.checkStructCycles()
	sa.registerFunctions()
	sa.checkGlobals()
	sa.checkParamDefaults()
	sa.checkFunctionBodies()

	if sa.eh.ErrorCount() > errorsBefore {
		return sa.info, ErrAnalysisFailed
	}
	return sa.info, nil
}

func (sa *SemanticAnalyzer) checkImports() {
	seen := make(map[string]source.Span)
	for _, imp := range sa.program.Imports {
		if prev, ok := seen[imp.Path]; ok {
			sa.eh.Report(
				newSemanticWarning(imp.Span, "duplicate import '%s'", imp.Path).
					withNote("first imported at %s", prev),
			)
			continue
		}
		seen[imp.Path] = imp.Span
	}
}

func itemName(item ast.Item) (string, source.Span) {
	switch it := item.(type) {
	case *ast.FuncDeclStmt:
		return it.Name, it.NameSpan
	case *ast.StructDeclStmt:
		return it.Name, it.NameSpan
	case *ast.VarDeclStmt:
		return it.Name, it.NameSpan
	case *ast.ConstDeclStmt:
		return it.Name, it.NameSpan
	}
	panic(fmt.Sprintf("itemName(): unexpected item %T", item))
}

// declareItems reserves every top level name before anything else is resolved,
// so declarations may refer to items that come later in the file.
func (sa *SemanticAnalyzer) declareItems() {
	for _, item := range sa.program.Items {
		name, span := itemName(item)

		if IsBuiltinFunction(name) {
			sa.eh.Report(newSemanticError(span, "'%s' is a builtin and cannot be redeclared", name))
			sa.skipped[item] = true
			continue
		}

		if prev, ok := sa.itemSpans[name]; ok {
			sa.eh.Report(
				newSemanticError(span, "'%s' is already declared", name).
					withNote("previous declaration at %s", prev),
			)
			sa.skipped[item] = true
			continue
		}
		sa.itemSpans[name] = span

		switch it := item.(type) {
		case *ast.StructDeclStmt:
			sa.resolver.AddStruct(it.Name)
			sa.structDecls = append(sa.structDecls, it)
		case *ast.FuncDeclStmt:
			sa.funcDecls = append(sa.funcDecls, it)
		}
	}
}

// resolveType resolves a written type and reports unknown names. Void is
// rejected unless allowVoid is set.
func (sa *SemanticAnalyzer) resolveType(typeNode ast.TypeNode, allowVoid bool) types.Type {
	t, unknown := sa.resolver.GetType(typeNode)
	if t == nil {
		sa.eh.Report(newSemanticError(typeNode.GetSpan(), "unknown type '%s'", unknown))
		return nil
	}

	if containsVoid(t) && !(allowVoid && t.SameAs(types.Void)) {
		sa.eh.Report(newSemanticError(typeNode.GetSpan(), "Void is only allowed as a return type"))
		return nil
	}

	return t
}

func containsVoid(t types.Type) bool {
	switch tt := t.(type) {
	case *types.VoidType:
		return true
	case *types.ListType:
		return tt.Elem != nil && containsVoid(tt.Elem)
	}
	return false
}

func (sa *SemanticAnalyzer) resolveStructFields() {
	for _, decl := range sa.structDecls {
		structType, _ := sa.resolver.GetStruct(decl.Name)

		seen := make(map[string]source.Span)
		for _, field := range decl.Fields {
			if prev, ok := seen[field.Name]; ok {
				sa.eh.Report(
					newSemanticError(field.Span, "duplicate field '%s' in struct '%s'", field.Name, decl.Name).
						withNote("previous declaration at %s", prev),
				)
				continue
			}
			seen[field.Name] = field.Span

			structType.Fields = append(structType.Fields, types.Field{
				Name: field.Name,
				Type: sa.resolveType(field.Type, false),
			})
		}

		sa.info.Structs = append(sa.info.Structs, structType)
		sa.info.StructByName[structType.Name] = structType
	}
}

func (sa *SemanticAnalyzer) checkStructCycles() {
	order := make([]string, len(sa.structDecls))
	spans := make(map[string]source.Span, len(sa.structDecls))
	for i, decl := range sa.structDecls {
		order[i] = decl.Name
		spans[decl.Name] = decl.NameSpan
	}

	for _, cycle := range sa.resolver.FindCycles(order) {
		sa.eh.Report(newSemanticError(
			spans[cycle[0]],
			"struct '%s' recursively contains itself: %s",
			cycle[0],
			strings.Join(cycle, " -> "),
		))
	}
}

func (sa *SemanticAnalyzer) registerFunctions() {
	for _, decl := range sa.funcDecls {
		params := make([]types.Param, 0, len(decl.Params))
		seen := make(map[string]source.Span)
		sawDefault := false

		for _, param := range decl.Params {
			if prev, ok := seen[param.Name]; ok {
				sa.eh.Report(
					newSemanticError(param.Span, "duplicate parameter '%s' in function '%s'", param.Name, decl.Name).
						withNote("previous declaration at %s", prev),
				)
			}
			seen[param.Name] = param.Span

			if param.Default != nil {
				sawDefault = true
			} else if sawDefault {
				sa.eh.Report(newSemanticError(
					param.Span,
					"parameter '%s' without a default follows a parameter with a default",
					param.Name,
				))
			}

			params = append(params, types.Param{
				Name:    param.Name,
				Type:    sa.resolveType(param.Type, false),
				Default: param.Default,
			})
		}

		returnType := sa.resolveType(decl.ReturnType, true)
		if returnType == nil {
			returnType = types.Void
		}

		fnType := &types.FunctionType{
			Name:   decl.Name,
			Params: params,
			Return: returnType,
		}
		sa.info.Functions = append(sa.info.Functions, fnType)
		sa.info.FuncByName[decl.Name] = fnType
	}
}

func (sa *SemanticAnalyzer) checkGlobals() {
	for _, item := range sa.program.Items {
		if sa.skipped[item] {
			continue
		}

		var global *Global
		var span source.Span
		var typeNode ast.TypeNode
		var value ast.Expr

		switch it := item.(type) {
		case *ast.VarDeclStmt:
			global = &Global{Name: it.Name, Mutable: it.Mutable, Decl: it}
			span, typeNode, value = it.NameSpan, it.Type, it.Value
		case *ast.ConstDeclStmt:
			global = &Global{Name: it.Name, Const: true, Decl: it}
			span, typeNode, value = it.NameSpan, it.Type, it.Value
		default:
			continue
		}

		global.Type = sa.resolveType(typeNode, false)
		sa.checkValue(value, global.Type)

		sa.globalScope.define(global.Name, &binding{
			Kind:    globalBinding,
			Type:    global.Type,
			Mutable: global.Mutable,
			Span:    span,
			global:  global,
		})
		sa.info.Globals = append(sa.info.Globals, global)
		sa.info.GlobalByName[global.Name] = global
	}
}

// checkParamDefaults runs after the globals are known, since defaults may
// refer to top level constants.
func (sa *SemanticAnalyzer) checkParamDefaults() {
	for _, decl := range sa.funcDecls {
		fnType := sa.info.FuncByName[decl.Name]
		for _, param := range fnType.Params {
			if param.Default == nil {
				continue
			}

			if !sa.isConstExpr(param.Default) {
				sa.eh.Report(newSemanticError(
					param.Default.GetSpan(),
					"default value of parameter '%s' must be a constant expression",
					param.Name,
				))
				continue
			}

			sa.checkValue(param.Default, param.Type)
		}
	}
}

// isConstExpr reports whether expr can be evaluated again at every call site
// with the same result.
func (sa *SemanticAnalyzer) isConstExpr(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.IntExpr, *ast.FloatExpr, *ast.StringExpr, *ast.BoolExpr:
		return true
	case *ast.IdentExpr:
		b, ok := sa.globalScope.lookup(e.Value)
		return ok && b.global != nil && b.global.Const
	case *ast.PrefixExpr:
		return sa.isConstExpr(e.Operand)
	case *ast.BinaryExpr:
		return sa.isConstExpr(e.Left) && sa.isConstExpr(e.Right)
	case *ast.ListExpr:
		for _, elem := range e.Elems {
			if !sa.isConstExpr(elem) {
				return false
			}
		}
		return true
	case *ast.StructInitExpr:
		for _, field := range e.Fields {
			if !sa.isConstExpr(field.Value) {
				return false
			}
		}
		return true
	}
	return false
}

func (sa *SemanticAnalyzer) checkFunctionBodies() {
	for _, decl := range sa.funcDecls {
		fnType := sa.info.FuncByName[decl.Name]
		sa.analyzeFuncDeclStmt(decl, fnType)
	}
}

func (sa *SemanticAnalyzer) analyzeFuncDeclStmt(decl *ast.FuncDeclStmt, fnType *types.FunctionType) {
	sa.currentFunc = fnType
	sa.enterScope()
	defer func() {
		sa.exitScope()
		sa.currentFunc = nil
	}()

	for i, param := range decl.Params {
		sa.scope.define(param.Name, &binding{
			Kind: paramBinding,
			Type: fnType.Params[i].Type,
			Span: param.Span,
		})
	}

	sa.analyzeStmts(decl.Body.Stmts)

	if !fnType.Return.SameAs(types.Void) && !alwaysReturns(decl.Body.Stmts) {
		sa.eh.Report(newSemanticError(
			decl.NameSpan,
			"function '%s' must return a value of type %s on every path",
			decl.Name,
			fnType.Return,
		))
	}
}

// checkValue analyzes expr and checks that it fits the expected type.
// A nil expected type means the declaration itself was already reported.
func (sa *SemanticAnalyzer) checkValue(expr ast.Expr, expected types.Type) {
	actual := sa.analyzeExpr(expr)
	if actual == nil || expected == nil {
		return
	}

	if !types.AssignableTo(actual, expected) {
		sa.reportMismatch(expr.GetSpan(), expected, actual)
		return
	}
	sa.refineListType(expr, expected)
}

// refineListType records the contextual type of list literals that contain
// an empty list, so the generated code never has to guess an element type.
func (sa *SemanticAnalyzer) refineListType(expr ast.Expr, expected types.Type) {
	listExpr, ok := expr.(*ast.ListExpr)
	if !ok {
		return
	}
	listType, ok := expected.(*types.ListType)
	if !ok || listType.Elem == nil {
		return
	}

	sa.info.Types[listExpr] = listType
	for _, elem := range listExpr.Elems {
		sa.refineListType(elem, listType.Elem)
	}
}

func (sa *SemanticAnalyzer) reportUninferredList(span source.Span) {
	sa.eh.Report(newSemanticError(span, "cannot infer element type of empty list"))
}

func (sa *SemanticAnalyzer) reportMismatch(span source.Span, expected, actual types.Type) {
	sa.eh.Report(newSemanticError(span, "type mismatch: expected %s, found %s", expected, actual))
}
