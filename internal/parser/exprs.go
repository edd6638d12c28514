package parser

import (
	"fmt"
	"math"
	"strconv"

	"github.com/kendroooo/rustic/internal/ast"
	"github.com/kendroooo/rustic/internal/lexer"
)

func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinaryExpr(0)
}

// parseHeadExpr parses the condition of an if or the iterable of a for,
// where a bare struct initializer would swallow the following block.
func (p *Parser) parseHeadExpr() ast.Expr {
	saved := p.noStructLit
	p.noStructLit = true
	defer func() { p.noStructLit = saved }()

	return p.parseExpr()
}

// parseNestedExpr parses an expression inside delimiters, where struct
// initializers are unambiguous again.
func (p *Parser) parseNestedExpr() ast.Expr {
	saved := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = saved }()

	return p.parseExpr()
}

func (p *Parser) parseBinaryExpr(bindingPower int) ast.Expr {
	left := p.parseUnaryExpr()

	for {
		op := p.curr
		currentBindingPower, ok := bindingPowerLookup[op.Kind]
		if !ok || currentBindingPower < bindingPower {
			return left
		}
		p.read()

		right := p.parseBinaryExpr(currentBindingPower + 1)

		left = &ast.BinaryExpr{
			Span: left.GetSpan().To(right.GetSpan()),

			Left:  left,
			Op:    op.Kind,
			Right: right,
		}
	}
}

// minIntMagnitude only fits in Int when negated.
const minIntMagnitude = "9223372036854775808"

func (p *Parser) parseUnaryExpr() ast.Expr {
	if !p.isCurrAny(lexer.MINUS, lexer.XMARK) {
		return p.parsePostfixExpr()
	}

	startToken := p.curr
	p.read()

	if startToken.Kind == lexer.MINUS && p.curr.Kind == lexer.INT && p.curr.Value == minIntMagnitude {
		intToken := p.curr
		p.read()
		return &ast.IntExpr{
			Span: startToken.Span.To(intToken.Span),

			Value: math.MinInt64,
		}
	}

	operand := p.parseUnaryExpr()

	return &ast.PrefixExpr{
		Span: startToken.Span.To(operand.GetSpan()),

		Op:      startToken.Kind,
		Operand: operand,
	}
}

func (p *Parser) parsePostfixExpr() ast.Expr {
	expr := p.parsePrimaryExpr()

	for {
		switch p.curr.Kind {
		case lexer.LPAREN:
			expr = p.parseCallExpr(expr)

		case lexer.DOT:
			p.read()
			p.expect(lexer.IDENT)
			memberToken := p.curr
			p.read()

			expr = &ast.MemberAccessExpr{
				Span:       expr.GetSpan().To(memberToken.Span),
				MemberSpan: memberToken.Span,

				Object: expr,
				Member: memberToken.Value,
			}

		default:
			return expr
		}
	}
}

func (p *Parser) parseCallExpr(callee ast.Expr) *ast.CallExpr {
	p.expect(lexer.LPAREN)
	p.read()

	args := make([]ast.Expr, 0)
	for p.curr.Kind != lexer.RPAREN {
		args = append(args, p.parseNestedExpr())

		if p.curr.Kind != lexer.COMMA {
			break
		}
		p.read()
	}

	p.expect(lexer.RPAREN)
	p.read()

	return &ast.CallExpr{
		Span: callee.GetSpan().To(p.prev.Span),

		Callee: callee,
		Args:   args,
	}
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	switch p.curr.Kind {
	case lexer.INT, lexer.FLOAT, lexer.BOOL, lexer.STRING:
		return p.parseLiteralExpr()

	case lexer.IDENT:
		if !p.noStructLit && p.scanner.Peek().Kind == lexer.LBRACE {
			return p.parseStructInitExpr()
		}
		return p.parseIdentExpr()

	case lexer.LPAREN:
		return p.parseParenExpr()

	case lexer.LBRACKET:
		return p.parseListExpr()
	}

	p.unexpected()
	panic("unreachable")
}

func (p *Parser) parseParenExpr() ast.Expr {
	p.expect(lexer.LPAREN)
	p.read()

	expr := p.parseNestedExpr()

	p.expect(lexer.RPAREN)
	p.read()

	return expr
}

func (p *Parser) parseListExpr() *ast.ListExpr {
	p.expect(lexer.LBRACKET)
	startToken := p.curr
	p.read()

	elems := make([]ast.Expr, 0)
	for p.curr.Kind != lexer.RBRACKET {
		elems = append(elems, p.parseNestedExpr())

		if p.curr.Kind != lexer.COMMA {
			break
		}
		p.read()
	}

	p.expect(lexer.RBRACKET)
	p.read()

	return &ast.ListExpr{
		Span: p.spanFrom(startToken),

		Elems: elems,
	}
}

func (p *Parser) parseStructInitExpr() *ast.StructInitExpr {
	p.expect(lexer.IDENT)
	nameToken := p.curr
	p.read()

	p.expect(lexer.LBRACE)
	p.read()

	fields := make(map[string]*ast.FieldInit)
	for p.curr.Kind != lexer.RBRACE {
		p.expect(lexer.IDENT)
		fieldToken := p.curr
		p.read()

		if _, ok := fields[fieldToken.Value]; ok {
			p.fail(&ParserError{
				Message: fmt.Sprintf("duplicate field '%s' in initializer of '%s'", fieldToken.Value, nameToken.Value),
				Span:    fieldToken.Span,
			})
		}

		p.expect(lexer.COLON)
		p.read()

		value := p.parseNestedExpr()
		fields[fieldToken.Value] = &ast.FieldInit{
			Span: p.spanFrom(fieldToken),

			Value: value,
		}

		if p.curr.Kind != lexer.COMMA {
			break
		}
		p.read()
	}

	p.expect(lexer.RBRACE)
	p.read()

	return &ast.StructInitExpr{
		Span:     p.spanFrom(nameToken),
		NameSpan: nameToken.Span,

		Name:   nameToken.Value,
		Fields: fields,
	}
}

func (p *Parser) parseIdentExpr() *ast.IdentExpr {
	p.expect(lexer.IDENT)
	startToken := p.curr
	p.read()

	return &ast.IdentExpr{
		Span: startToken.Span,

		Value: startToken.Value,
	}
}

func (p *Parser) parseLiteralExpr() ast.Expr {
	startToken := p.curr

	switch p.curr.Kind {
	case lexer.INT:
		value, err := strconv.ParseInt(p.curr.Value, 10, 64)
		if err != nil {
			p.fail(&ParserError{
				Message: "integer literal out of range",
				Span:    p.curr.Span,
			})
		}
		p.read()

		return &ast.IntExpr{
			Span: startToken.Span,

			Value: value,
		}

	case lexer.FLOAT:
		value, err := strconv.ParseFloat(p.curr.Value, 64)
		if err != nil {
			p.fail(&ParserError{
				Message: fmt.Sprintf("invalid float literal '%s'", p.curr.Value),
				Span:    p.curr.Span,
			})
		}
		p.read()

		return &ast.FloatExpr{
			Span: startToken.Span,

			Value: value,
			Raw:   startToken.Value,
		}

	case lexer.BOOL:
		p.read()

		return &ast.BoolExpr{
			Span: startToken.Span,

			Value: startToken.Value == "true",
		}

	case lexer.STRING:
		p.read()

		return &ast.StringExpr{
			Span: startToken.Span,

			Value: startToken.Value,
		}
	}

	p.unexpected()
	panic("unreachable")
}
