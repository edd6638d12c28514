package emitter

import (
	"fmt"
	"strings"

	"github.com/kendroooo/rustic/internal/ast"
	"github.com/kendroooo/rustic/internal/types"
)

const controlFlow = "::std::ops::ControlFlow"

func (e *Emitter) emitForStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		e.emitForStmt(stmt)
	}
}

func (e *Emitter) emitForStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ScopeStmt:
		e.w.line("{")
		e.emitForScopeBody(s)
		e.w.line("}")
	case *ast.VarDeclStmt:
		e.emitForVarDeclStmt(s)
	case *ast.ExprStmt:
		e.w.line("%s;", e.emitForExpr(s.Expr))
	case *ast.AssignStmt:
		e.emitForAssignStmt(s)
	case *ast.IfStmt:
		e.emitForIfStmt(s)
	case *ast.ForStmt:
		e.emitForForStmt(s)
	case *ast.TryStmt:
		e.emitForTryStmt(s)
	case *ast.ReturnStmt:
		e.emitForReturnStmt(s)
	default:
		panic(fmt.Sprintf("emitForStmt(): unexpected statement %T", stmt))
	}
}

func (e *Emitter) emitForScopeBody(scopeStmt *ast.ScopeStmt) {
	e.w.indent()
	e.emitForStmts(scopeStmt.Stmts)
	e.w.dedent()
}

func (e *Emitter) emitForVarDeclStmt(varDeclStmt *ast.VarDeclStmt) {
	keyword := "let"
	if varDeclStmt.Mutable {
		keyword = "let mut"
	}

	e.w.line(
		"%s %s: %s = %s;",
		keyword,
		rustIdent(varDeclStmt.Name),
		rustType(e.resolveTypeNode(varDeclStmt.Type)),
		e.emitForExpr(varDeclStmt.Value),
	)
}

// resolveTypeNode lowers a written type the analyzer has already validated.
func (e *Emitter) resolveTypeNode(typeNode ast.TypeNode) types.Type {
	switch tn := typeNode.(type) {
	case *ast.ListTypeNode:
		return &types.ListType{Elem: e.resolveTypeNode(tn.ElemType)}
	case *ast.IdentTypeNode:
		switch tn.Name {
		case "Int":
			return types.Int
		case "Float":
			return types.Float
		case "Str":
			return types.Str
		case "Bool":
			return types.Bool
		case "Void":
			return types.Void
		}
		if structType, ok := e.info.StructByName[tn.Name]; ok {
			return structType
		}
	}
	panic(fmt.Sprintf("resolveTypeNode(): unresolved type %s", typeNode.TypeName()))
}

func (e *Emitter) emitForAssignStmt(assignStmt *ast.AssignStmt) {
	root, path := placePath(assignStmt.Target)
	value := e.emitForExpr(assignStmt.Value)

	if global, ok := e.info.GlobalRefs[root]; ok {
		target := "*v.borrow_mut()"
		if len(path) > 0 {
			target = "v.borrow_mut()." + strings.Join(path, ".")
		}

		e.w.line("{")
		e.w.indent()
		e.w.line("let __value = %s;", value)
		e.w.line("%s.with(|v| %s = __value);", globalIdent(global.Name), target)
		e.w.dedent()
		e.w.line("}")
		return
	}

	target := rustIdent(root.Value)
	if len(path) > 0 {
		target += "." + strings.Join(path, ".")
	}
	e.w.line("%s = %s;", target, value)
}

// placePath splits an identifier or member access chain into its root
// identifier and the lowered field names below it.
func placePath(expr ast.Expr) (*ast.IdentExpr, []string) {
	switch ex := expr.(type) {
	case *ast.IdentExpr:
		return ex, nil
	case *ast.MemberAccessExpr:
		root, path := placePath(ex.Object)
		if root == nil {
			return nil, nil
		}
		return root, append(path, rustIdent(ex.Member))
	}
	return nil, nil
}

func (e *Emitter) emitForIfStmt(ifStmt *ast.IfStmt) {
	e.w.line("if %s {", e.emitForExpr(ifStmt.Cond))
	e.emitForScopeBody(ifStmt.Body)

	for _, elseIf := range ifStmt.ElseIfs {
		e.w.line("} else if %s {", e.emitForExpr(elseIf.Cond))
		e.emitForScopeBody(elseIf.Body)
	}

	if ifStmt.Else != nil {
		e.w.line("} else {")
		e.emitForScopeBody(ifStmt.Else)
	}
	e.w.line("}")
}

func (e *Emitter) emitForForStmt(forStmt *ast.ForStmt) {
	e.w.line("for %s in %s {", rustIdent(forStmt.Var), e.emitForExpr(forStmt.Iterable))
	e.emitForScopeBody(forStmt.Body)
	e.w.line("}")
}

func (e *Emitter) returnType() string {
	return rustType(e.currentFunc.Return)
}

// emitForTryStmt runs the body in a closure under the runtime's catch. A return
// inside the closure travels out as ControlFlow::Break and is re-issued here.
func (e *Emitter) emitForTryStmt(tryStmt *ast.TryStmt) {
	e.w.line("match __rustic_rt::catch(|| -> %s<%s> {", controlFlow, e.returnType())
	e.w.indent()
	e.tryDepth++
	e.emitForStmts(tryStmt.Body.Stmts)
	e.tryDepth--
	e.w.line("%s::Continue(())", controlFlow)
	e.w.dedent()
	e.w.line("}) {")
	e.w.indent()

	if e.tryDepth > 0 {
		e.w.line("Ok(%s::Break(__ret)) => return %s::Break(__ret),", controlFlow, controlFlow)
	} else {
		e.w.line("Ok(%s::Break(__ret)) => return __ret,", controlFlow)
	}
	e.w.line("Ok(%s::Continue(())) => {}", controlFlow)

	for _, catch := range tryStmt.Catches {
		e.w.line("Err(__failure) if __failure.is(%s) => {", rustStringLiteral(catch.TypeName))
		e.emitForScopeBody(catch.Body)
		e.w.line("}")
	}
	e.w.line("Err(__failure) => __failure.resume(),")

	e.w.dedent()
	e.w.line("}")
}

func (e *Emitter) emitForReturnStmt(returnStmt *ast.ReturnStmt) {
	value := ""
	if returnStmt.Value != nil {
		value = e.emitForExpr(returnStmt.Value)
	}

	if e.tryDepth > 0 {
		if value == "" {
			value = "()"
		}
		e.w.line("return %s::Break(%s);", controlFlow, value)
		return
	}

	if value == "" {
		e.w.line("return;")
		return
	}
	e.w.line("return %s;", value)
}
