package parser

import (
	"github.com/kendroooo/rustic/internal/ast"
	"github.com/kendroooo/rustic/internal/lexer"
)

func (p *Parser) parseStmt() ast.Stmt {
	switch p.curr.Kind {
	case lexer.LET, lexer.VAR:
		return p.parseVarDeclStmt()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.TRY:
		return p.parseTryStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.THROW:
		p.fail(&ParserError{
			Message: "throw statements are not supported",
			Span:    p.curr.Span,
		})
	}

	return p.parseExprOrAssignStmt()
}

func (p *Parser) parseScopeStmt() *ast.ScopeStmt {
	p.expect(lexer.LBRACE)
	startToken := p.curr
	p.read()

	stmts := make([]ast.Stmt, 0)
	for p.curr.Kind != lexer.RBRACE && p.curr.Kind != lexer.EOF {
		stmts = append(stmts, p.parseStmt())
	}

	p.expect(lexer.RBRACE)
	p.read()

	return &ast.ScopeStmt{
		Span: p.spanFrom(startToken),

		Stmts: stmts,
	}
}

func (p *Parser) parseVarDeclStmt() *ast.VarDeclStmt {
	p.expectAny(lexer.LET, lexer.VAR)
	startToken := p.curr
	mutable := p.curr.Kind == lexer.VAR
	p.read()

	p.expect(lexer.IDENT)
	nameToken := p.curr
	p.read()

	p.expect(lexer.COLON)
	p.read()
	varType := p.parseTypeIdentifier()

	p.expect(lexer.ASSIGN)
	p.read()
	value := p.parseExpr()

	p.expect(lexer.SEMICOLON)
	p.read()

	return &ast.VarDeclStmt{
		Span:     p.spanFrom(startToken),
		NameSpan: nameToken.Span,

		Name:    nameToken.Value,
		Type:    varType,
		Value:   value,
		Mutable: mutable,
	}
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	p.expect(lexer.IF)
	startToken := p.curr
	p.read()

	cond := p.parseHeadExpr()
	body := p.parseScopeStmt()

	elseIfs := make([]ast.ElseIf, 0)
	var elseBody *ast.ScopeStmt
	for p.curr.Kind == lexer.ELSE {
		startElseToken := p.curr
		p.read()

		if p.curr.Kind != lexer.IF {
			elseBody = p.parseScopeStmt()
			break
		}
		p.read()

		cond := p.parseHeadExpr()
		body := p.parseScopeStmt()
		elseIfs = append(elseIfs, ast.ElseIf{
			Span: p.spanFrom(startElseToken),

			Cond: cond,
			Body: body,
		})
	}

	return &ast.IfStmt{
		Span: p.spanFrom(startToken),

		Cond:    cond,
		Body:    body,
		ElseIfs: elseIfs,
		Else:    elseBody,
	}
}

func (p *Parser) parseForStmt() *ast.ForStmt {
	p.expect(lexer.FOR)
	startToken := p.curr
	p.read()

	p.expect(lexer.IDENT)
	varToken := p.curr
	p.read()

	p.expect(lexer.IN)
	p.read()

	iterable := p.parseHeadExpr()
	body := p.parseScopeStmt()

	return &ast.ForStmt{
		Span:    p.spanFrom(startToken),
		VarSpan: varToken.Span,

		Var:      varToken.Value,
		Iterable: iterable,
		Body:     body,
	}
}

func (p *Parser) parseTryStmt() *ast.TryStmt {
	p.expect(lexer.TRY)
	startToken := p.curr
	p.read()

	body := p.parseScopeStmt()

	catches := make([]ast.CatchClause, 0)
	for {
		p.expect(lexer.CATCH)
		catchToken := p.curr
		p.read()

		p.expect(lexer.LPAREN)
		p.read()

		p.expectAny(
			lexer.IDENT,
			lexer.INT_TYPE,
			lexer.FLOAT_TYPE,
			lexer.STR_TYPE,
			lexer.BOOL_TYPE,
			lexer.LIST_TYPE,
			lexer.VOID_TYPE,
		)
		typeToken := p.curr
		p.read()

		p.expect(lexer.RPAREN)
		p.read()

		catchBody := p.parseScopeStmt()
		catches = append(catches, ast.CatchClause{
			Span:     p.spanFrom(catchToken),
			TypeSpan: typeToken.Span,

			TypeName: typeToken.Value,
			Body:     catchBody,
		})

		if p.curr.Kind != lexer.CATCH {
			break
		}
	}

	return &ast.TryStmt{
		Span: p.spanFrom(startToken),

		Body:    body,
		Catches: catches,
	}
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	p.expect(lexer.RETURN)
	startToken := p.curr
	p.read()

	var value ast.Expr
	if p.curr.Kind != lexer.SEMICOLON {
		value = p.parseExpr()
	}

	p.expect(lexer.SEMICOLON)
	p.read()

	return &ast.ReturnStmt{
		Span: p.spanFrom(startToken),

		Value: value,
	}
}

func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	startToken := p.curr
	expr := p.parseExpr()

	if p.curr.Kind == lexer.ASSIGN {
		if !isAssignTarget(expr) {
			p.fail(&ParserError{
				Message: "invalid assignment target",
				Span:    expr.GetSpan(),
			})
		}
		p.read()

		value := p.parseExpr()

		p.expect(lexer.SEMICOLON)
		p.read()

		return &ast.AssignStmt{
			Span: p.spanFrom(startToken),

			Target: expr,
			Value:  value,
		}
	}

	p.expect(lexer.SEMICOLON)
	p.read()

	return &ast.ExprStmt{
		Span: p.spanFrom(startToken),

		Expr: expr,
	}
}

func isAssignTarget(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.IdentExpr:
		return true
	case *ast.MemberAccessExpr:
		return isAssignTarget(e.Object)
	}
	return false
}
