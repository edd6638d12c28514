package semantic_analyzer

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/kendroooo/rustic/internal/ast"
	"github.com/kendroooo/rustic/internal/source"
	"github.com/kendroooo/rustic/internal/types"
)

// analyzeStmts checks a statement list in the current scope. The first
// statement after one that always returns is reported as unreachable.
func (sa *SemanticAnalyzer) analyzeStmts(stmts []ast.Stmt) {
	terminated := false
	warned := false

	for _, stmt := range stmts {
		if terminated && !warned {
			sa.eh.Report(newSemanticWarning(stmt.GetSpan(), "unreachable code"))
			warned = true
		}

		sa.analyzeStmt(stmt)

		if stmtAlwaysReturns(stmt) {
			terminated = true
		}
	}
}

func (sa *SemanticAnalyzer) analyzeScopeStmt(scopeStmt *ast.ScopeStmt) {
	sa.enterScope()
	defer sa.exitScope()

	sa.analyzeStmts(scopeStmt.Stmts)
}

func (sa *SemanticAnalyzer) analyzeStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ScopeStmt:
		sa.analyzeScopeStmt(s)
	case *ast.VarDeclStmt:
		sa.analyzeVarDeclStmt(s)
	case *ast.ExprStmt:
		if t := sa.analyzeExpr(s.Expr); t != nil && !types.IsInferred(t) {
			sa.reportUninferredList(s.Expr.GetSpan())
		}
	case *ast.AssignStmt:
		sa.analyzeAssignStmt(s)
	case *ast.IfStmt:
		sa.analyzeIfStmt(s)
	case *ast.ForStmt:
		sa.analyzeForStmt(s)
	case *ast.TryStmt:
		sa.analyzeTryStmt(s)
	case *ast.ReturnStmt:
		sa.analyzeReturnStmt(s)
	default:
		panic("not implemented")
	}
}

func (sa *SemanticAnalyzer) analyzeVarDeclStmt(varDeclStmt *ast.VarDeclStmt) {
	varType := sa.resolveType(varDeclStmt.Type, false)
	sa.checkValue(varDeclStmt.Value, varType)

	defined := sa.scope.define(varDeclStmt.Name, &binding{
		Kind:    localBinding,
		Type:    varType,
		Mutable: varDeclStmt.Mutable,
		Span:    varDeclStmt.NameSpan,
	})
	if !defined {
		prev, _ := sa.scope.lookup(varDeclStmt.Name)
		sa.eh.Report(
			newSemanticError(varDeclStmt.NameSpan, "'%s' is already declared in this scope", varDeclStmt.Name).
				withNote("previous declaration at %s", prev.Span),
		)
	}
}

func (sa *SemanticAnalyzer) analyzeAssignStmt(assignStmt *ast.AssignStmt) {
	targetType := sa.analyzeExpr(assignStmt.Target)

	if targetType != nil {
		root := rootIdent(assignStmt.Target)
		if b, ok := sa.scope.lookup(root.Value); ok && !b.Mutable {
			sa.eh.Report(
				newSemanticError(root.Span, "cannot assign to immutable binding '%s'", root.Value).
					withNote("'%s' is declared at %s", root.Value, b.Span),
			)
		}
	}

	sa.checkValue(assignStmt.Value, targetType)
}

// rootIdent returns the identifier an assignment target is rooted at.
func rootIdent(target ast.Expr) *ast.IdentExpr {
	switch t := target.(type) {
	case *ast.IdentExpr:
		return t
	case *ast.MemberAccessExpr:
		return rootIdent(t.Object)
	}
	panic("rootIdent(): invalid assignment target")
}

func (sa *SemanticAnalyzer) checkCondition(cond ast.Expr) {
	sa.checkValue(cond, types.Bool)
}

func (sa *SemanticAnalyzer) analyzeIfStmt(ifStmt *ast.IfStmt) {
	sa.checkCondition(ifStmt.Cond)
	sa.analyzeScopeStmt(ifStmt.Body)

	for _, elseIf := range ifStmt.ElseIfs {
		sa.checkCondition(elseIf.Cond)
		sa.analyzeScopeStmt(elseIf.Body)
	}

	if ifStmt.Else != nil {
		sa.analyzeScopeStmt(ifStmt.Else)
	}
}

func (sa *SemanticAnalyzer) analyzeForStmt(forStmt *ast.ForStmt) {
	var elemType types.Type

	iterableType := sa.analyzeExpr(forStmt.Iterable)
	if iterableType != nil {
		listType, ok := iterableType.(*types.ListType)
		switch {
		case !ok:
			sa.eh.Report(newSemanticError(
				forStmt.Iterable.GetSpan(),
				"for loop expects List<T>, found %s",
				iterableType,
			))
		case !types.IsInferred(listType):
			sa.reportUninferredList(forStmt.Iterable.GetSpan())
		default:
			elemType = listType.Elem
		}
	}

	sa.enterScope()
	defer sa.exitScope()

	sa.scope.define(forStmt.Var, &binding{
		Kind: loopBinding,
		Type: elemType,
		Span: forStmt.VarSpan,
	})
	sa.analyzeScopeStmt(forStmt.Body)
}

// isExceptionType reports whether name may appear in a catch clause.
func (sa *SemanticAnalyzer) isExceptionType(name string) bool {
	for _, builtin := range builtinExceptions {
		if name == builtin {
			return true
		}
	}

	if name == "List" || sa.resolver.IsBuiltInType(name) {
		return true
	}

	_, ok := sa.resolver.GetStruct(name)
	return ok
}

func (sa *SemanticAnalyzer) analyzeTryStmt(tryStmt *ast.TryStmt) {
	sa.info.UsesTry = true
	sa.analyzeScopeStmt(tryStmt.Body)

	seen := mapset.NewThreadUnsafeSet[string]()
	firstSpan := make(map[string]source.Span)
	for _, catch := range tryStmt.Catches {
		switch {
		case !sa.isExceptionType(catch.TypeName):
			sa.eh.Report(newSemanticError(catch.TypeSpan, "unknown exception type '%s'", catch.TypeName))
		case seen.Contains(catch.TypeName):
			sa.eh.Report(
				newSemanticError(catch.TypeSpan, "duplicate catch clause for '%s'", catch.TypeName).
					withNote("first handled at %s", firstSpan[catch.TypeName]),
			)
		default:
			seen.Add(catch.TypeName)
			firstSpan[catch.TypeName] = catch.TypeSpan
		}

		sa.analyzeScopeStmt(catch.Body)
	}
}

func (sa *SemanticAnalyzer) analyzeReturnStmt(returnStmt *ast.ReturnStmt) {
	fn := sa.currentFunc
	isVoid := fn.Return.SameAs(types.Void)

	switch {
	case returnStmt.Value == nil && !isVoid:
		sa.eh.Report(newSemanticError(
			returnStmt.Span,
			"function '%s' must return a value of type %s",
			fn.Name,
			fn.Return,
		))
	case returnStmt.Value != nil && isVoid:
		sa.analyzeExpr(returnStmt.Value)
		sa.eh.Report(newSemanticError(
			returnStmt.Value.GetSpan(),
			"function '%s' returns Void and cannot return a value",
			fn.Name,
		))
	case returnStmt.Value != nil:
		sa.checkValue(returnStmt.Value, fn.Return)
	}
}

func alwaysReturns(stmts []ast.Stmt) bool {
	for _, stmt := range stmts {
		if stmtAlwaysReturns(stmt) {
			return true
		}
	}
	return false
}

// stmtAlwaysReturns reports whether every path through stmt ends in a return.
// A try only qualifies when its body and all its handlers do, since an
// unmatched failure propagates out of the statement.
func stmtAlwaysReturns(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.ScopeStmt:
		return alwaysReturns(s.Stmts)
	case *ast.IfStmt:
		if s.Else == nil || !alwaysReturns(s.Body.Stmts) || !alwaysReturns(s.Else.Stmts) {
			return false
		}
		for _, elseIf := range s.ElseIfs {
			if !alwaysReturns(elseIf.Body.Stmts) {
				return false
			}
		}
		return true
	case *ast.TryStmt:
		if !alwaysReturns(s.Body.Stmts) {
			return false
		}
		for _, catch := range s.Catches {
			if !alwaysReturns(catch.Body.Stmts) {
				return false
			}
		}
		return true
	}
	return false
}
