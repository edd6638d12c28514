package emitter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kendroooo/rustic/internal/ast"
	"github.com/kendroooo/rustic/internal/compiler_errors"
	"github.com/kendroooo/rustic/internal/semantic_analyzer"
	"github.com/kendroooo/rustic/internal/source"
	"github.com/kendroooo/rustic/internal/types"
)

// ErrEmitFailed is returned when code generation hit an internal inconsistency.
var ErrEmitFailed = errors.New("code generation failed")

var allowedLints = []string{
	"arithmetic_overflow",
	"dead_code",
	"non_camel_case_types",
	"non_snake_case",
	"non_upper_case_globals",
	"path_statements",
	"unconditional_panic",
	"unreachable_code",
	"unused_assignments",
	"unused_mut",
	"unused_parens",
	"unused_variables",
}

type Emitter struct {
	eh         compiler_errors.ErrorHandler
	program    *ast.Program
	info       *semantic_analyzer.Info
	moduleName string

	w *codeWriter

	currentFunc *types.FunctionType
	tryDepth    int
}

// NewEmitter lowers an analyzed program. info must come from a successful analysis of program.
func NewEmitter(
	eh compiler_errors.ErrorHandler,
	program *ast.Program,
	info *semantic_analyzer.Info,
	moduleName string,
) *Emitter {
	return &Emitter{
		eh:         eh,
		program:    program,
		info:       info,
		moduleName: moduleName,

		w: &codeWriter{},
	}
}

// Emit returns the Rust source of the module. The output depends only on the
// program, never on map iteration order.
func (e *Emitter) Emit() (code string, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.eh.Report(compiler_errors.NewError(
				compiler_errors.StageEmitter,
				source.Span{File: e.program.File},
				"internal compiler error while generating module '%s': %v",
				e.moduleName,
				r,
			).WithNote("analysis accepted this module, so the code generator is at fault"))
			code, err = "", ErrEmitFailed
		}
	}()

	e.emitHeader()

	for _, item := range e.program.Items {
		e.w.blank()
		e.emitForItem(item)
	}

	if e.info.UsesTry {
		e.w.blank()
		e.w.raw(runtimeModule)
	}

	return e.w.String(), nil
}

func (e *Emitter) emitHeader() {
	e.w.line("// Code generated by rustic from %s. DO NOT EDIT.", filepath.Base(e.program.File))
	e.w.line("// Module: %s", e.moduleName)
	e.w.blank()
	e.w.line("#![allow(%s)]", strings.Join(allowedLints, ", "))

	if len(e.program.Imports) > 0 {
		e.w.blank()
		for _, imp := range e.program.Imports {
			e.w.line("// import %s", rustStringLiteral(imp.Path))
		}
	}
}

func (e *Emitter) emitForItem(item ast.Item) {
	switch it := item.(type) {
	case *ast.StructDeclStmt:
		e.emitForStructDeclStmt(it)
	case *ast.FuncDeclStmt:
		e.emitForFuncDeclStmt(it)
	case *ast.VarDeclStmt:
		e.emitForGlobal(it.Name, it.Value)
	case *ast.ConstDeclStmt:
		e.emitForGlobal(it.Name, it.Value)
	default:
		panic(fmt.Sprintf("emitForItem(): unexpected item %T", item))
	}
}

func (e *Emitter) emitForStructDeclStmt(structDeclStmt *ast.StructDeclStmt) {
	structType := e.info.StructByName[structDeclStmt.Name]

	e.w.line("#[derive(Debug, Clone, PartialEq)]")
	if len(structType.Fields) == 0 {
		e.w.line("pub struct %s {}", rustIdent(structType.Name))
		return
	}

	e.w.line("pub struct %s {", rustIdent(structType.Name))
	e.w.indent()
	for _, field := range structType.Fields {
		e.w.line("pub %s: %s,", rustIdent(field.Name), rustType(field.Type))
	}
	e.w.dedent()
	e.w.line("}")
}

// emitForGlobal lowers a top level binding to a lazily initialised thread local cell.
func (e *Emitter) emitForGlobal(name string, value ast.Expr) {
	global := e.info.GlobalByName[name]
	typeName := rustType(global.Type)

	e.w.line("thread_local! {")
	e.w.indent()
	e.w.line(
		"static %s: ::std::cell::RefCell<%s> = ::std::cell::RefCell::new(%s);",
		globalIdent(name),
		typeName,
		e.emitForExpr(value),
	)
	e.w.dedent()
	e.w.line("}")
}

func (e *Emitter) emitForFuncDeclStmt(funcDeclStmt *ast.FuncDeclStmt) {
	fnType := e.info.FuncByName[funcDeclStmt.Name]
	e.currentFunc = fnType
	defer func() { e.currentFunc = nil }()

	params := make([]string, len(fnType.Params))
	for i, param := range fnType.Params {
		params[i] = fmt.Sprintf("%s: %s", rustIdent(param.Name), rustType(param.Type))
	}

	signature := fmt.Sprintf("pub fn %s(%s)", rustIdent(fnType.Name), strings.Join(params, ", "))
	isVoid := fnType.Return.SameAs(types.Void)
	if !isVoid {
		signature += " -> " + rustType(fnType.Return)
	}

	e.w.line("%s {", signature)
	e.w.indent()
	e.emitForStmts(funcDeclStmt.Body.Stmts)
	if !isVoid && !endsInReturn(funcDeclStmt.Body.Stmts) {
		e.w.line("unreachable!()")
	}
	e.w.dedent()
	e.w.line("}")
}

func endsInReturn(stmts []ast.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	_, ok := stmts[len(stmts)-1].(*ast.ReturnStmt)
	return ok
}

func (e *Emitter) typeOf(expr ast.Expr) types.Type {
	t := e.info.TypeOf(expr)
	if t == nil {
		panic(fmt.Sprintf("no type recorded for expression at %s", expr.GetSpan()))
	}
	return t
}
