package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kendroooo/rustic/internal/ast"
	"github.com/kendroooo/rustic/internal/compiler_errors"
	"github.com/kendroooo/rustic/internal/lexer"
	"github.com/kendroooo/rustic/internal/source"
)

// ErrParseFailed is returned by Parse after the first syntax error has been reported.
var ErrParseFailed = errors.New("parsing failed")

func describe(tok *lexer.Token) string {
	switch tok.Kind {
	case lexer.EOF:
		return "end of file"
	case lexer.STRING:
		return fmt.Sprintf("%q", tok.Value)
	case lexer.INT, lexer.FLOAT, lexer.BOOL, lexer.IDENT:
		return tok.Value
	}
	return tok.Kind.String()
}

type UnexpectedExpectedError struct {
	Unexpected lexer.Token
	Expected   lexer.TokenKind
}

func (e *UnexpectedExpectedError) GetMessage() string {
	return fmt.Sprintf("unexpected token: '%s', expected: '%s'", describe(&e.Unexpected), e.Expected.String())
}

type UnexpectedExpectedManyError struct {
	Unexpected lexer.Token
	Expected   []lexer.TokenKind
}

func (e *UnexpectedExpectedManyError) GetMessage() string {
	expectedKinds := make([]string, len(e.Expected))
	for i, kind := range e.Expected {
		expectedKinds[i] = fmt.Sprintf("'%s'", kind.String())
	}
	return fmt.Sprintf("unexpected token: '%s', expected one of: %s", describe(&e.Unexpected), strings.Join(expectedKinds, ", "))
}

type UnexpectedError struct {
	Unexpected lexer.Token
}

func (e *UnexpectedError) GetMessage() string {
	return fmt.Sprintf("unexpected token: '%s'", describe(&e.Unexpected))
}

// ParserError is a structural syntax error that is not about a single expected token.
type ParserError struct {
	Message string
	Span    source.Span
}

func (e *ParserError) GetMessage() string {
	return e.Message
}

func (e *UnexpectedExpectedError) GetSpan() source.Span     { return e.Unexpected.Span }
func (e *UnexpectedExpectedManyError) GetSpan() source.Span { return e.Unexpected.Span }
func (e *UnexpectedError) GetSpan() source.Span             { return e.Unexpected.Span }
func (e *ParserError) GetSpan() source.Span                 { return e.Span }

func (*UnexpectedExpectedError) GetSeverity() compiler_errors.Severity     { return compiler_errors.Error }
func (*UnexpectedExpectedManyError) GetSeverity() compiler_errors.Severity { return compiler_errors.Error }
func (*UnexpectedError) GetSeverity() compiler_errors.Severity             { return compiler_errors.Error }
func (*ParserError) GetSeverity() compiler_errors.Severity                 { return compiler_errors.Error }

func (*UnexpectedExpectedError) GetStage() compiler_errors.Stage     { return compiler_errors.StageParser }
func (*UnexpectedExpectedManyError) GetStage() compiler_errors.Stage { return compiler_errors.StageParser }
func (*UnexpectedError) GetStage() compiler_errors.Stage             { return compiler_errors.StageParser }
func (*ParserError) GetStage() compiler_errors.Stage                 { return compiler_errors.StageParser }

// bailout unwinds the parser after the first reported error.
type bailout struct{}

type Parser struct {
	scanner lexer.TokenScanner
	eh      compiler_errors.ErrorHandler

	curr *lexer.Token
	prev *lexer.Token

	noStructLit bool
}

var bindingPowerLookup = map[lexer.TokenKind]int{
	lexer.LOR:      10,
	lexer.LAND:     20,
	lexer.EQ:       30,
	lexer.NEQ:      30,
	lexer.LT:       40,
	lexer.LEQ:      40,
	lexer.GT:       40,
	lexer.GEQ:      40,
	lexer.PLUS:     50,
	lexer.MINUS:    50,
	lexer.ASTERISK: 60,
	lexer.SLASH:    60,
	lexer.PERCENT:  60,
}

func NewParser(scanner lexer.TokenScanner, eh compiler_errors.ErrorHandler) *Parser {
	curr := scanner.Read()
	return &Parser{
		scanner: scanner,
		eh:      eh,
		curr:    curr,
		prev:    curr,
	}
}

// Parse parses a whole module. On the first syntax error it reports it
// and returns ErrParseFailed with no partial program.
func (p *Parser) Parse() (program *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			program, err = nil, ErrParseFailed
		}
	}()

	program = &ast.Program{
		File:    p.curr.Span.File,
		Imports: make([]*ast.ImportDecl, 0),
		Items:   make([]ast.Item, 0),
	}

	for p.curr.Kind == lexer.IMPORT {
		program.Imports = append(program.Imports, p.parseImportDecl())
	}

	for p.curr.Kind != lexer.EOF {
		program.Items = append(program.Items, p.parseItem())
	}

	return program, nil
}

func (p *Parser) parseImportDecl() *ast.ImportDecl {
	p.expect(lexer.IMPORT)
	startToken := p.curr
	p.read()

	p.expect(lexer.STRING)
	pathToken := p.curr
	p.read()

	if !isValidImportPath(pathToken.Value) {
		p.fail(&ParserError{
			Message: fmt.Sprintf("invalid import path '%s'", pathToken.Value),
			Span:    pathToken.Span,
		})
	}

	p.expect(lexer.SEMICOLON)
	p.read()

	return &ast.ImportDecl{
		Span: p.spanFrom(startToken),

		Path: pathToken.Value,
	}
}

func isValidImportPath(path string) bool {
	for _, segment := range strings.Split(path, "/") {
		if !isIdentifier(segment) {
			return false
		}
	}
	return true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		letter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
		if !letter && (i == 0 || c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func (p *Parser) parseItem() ast.Item {
	switch p.curr.Kind {
	case lexer.FN:
		return p.parseFuncDeclStmt()
	case lexer.STRUCT:
		return p.parseStructDeclStmt()
	case lexer.LET, lexer.VAR:
		return p.parseVarDeclStmt()
	case lexer.CONST:
		return p.parseConstDeclStmt()
	case lexer.IMPORT:
		p.fail(&ParserError{
			Message: "import declarations must come before other items",
			Span:    p.curr.Span,
		})
	}

	p.expectAny(lexer.FN, lexer.STRUCT, lexer.LET, lexer.VAR, lexer.CONST)
	panic("unreachable")
}

func (p *Parser) parseFuncDeclStmt() *ast.FuncDeclStmt {
	p.expect(lexer.FN)
	startToken := p.curr
	p.read()

	p.expect(lexer.IDENT)
	nameToken := p.curr
	p.read()

	p.expect(lexer.LPAREN)
	p.read()

	params := make([]ast.FuncParam, 0)
	for p.curr.Kind != lexer.RPAREN {
		params = append(params, p.parseFuncParam())

		if p.curr.Kind != lexer.COMMA {
			break
		}
		p.read()
	}

	p.expect(lexer.RPAREN)
	p.read()

	var returnType ast.TypeNode
	if p.curr.Kind == lexer.ARROW {
		p.read()
		returnType = p.parseTypeIdentifier()
	} else {
		returnType = &ast.IdentTypeNode{
			Span: p.prev.Span,

			Name: lexer.VOID_TYPE.String(),
		}
	}

	body := p.parseScopeStmt()

	return &ast.FuncDeclStmt{
		Span:     p.spanFrom(startToken),
		NameSpan: nameToken.Span,

		Name:       nameToken.Value,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
	}
}

func (p *Parser) parseFuncParam() ast.FuncParam {
	p.expect(lexer.IDENT)
	nameToken := p.curr
	p.read()

	p.expect(lexer.COLON)
	p.read()

	paramType := p.parseTypeIdentifier()

	var defaultValue ast.Expr
	if p.curr.Kind == lexer.ASSIGN {
		p.read()
		defaultValue = p.parseExpr()
	}

	return ast.FuncParam{
		Span: p.spanFrom(nameToken),

		Name:    nameToken.Value,
		Type:    paramType,
		Default: defaultValue,
	}
}

func (p *Parser) parseStructDeclStmt() *ast.StructDeclStmt {
	p.expect(lexer.STRUCT)
	startToken := p.curr
	p.read()

	p.expect(lexer.IDENT)
	nameToken := p.curr
	p.read()

	p.expect(lexer.LBRACE)
	p.read()

	fields := make([]ast.StructField, 0)
	for p.curr.Kind != lexer.RBRACE {
		p.expect(lexer.IDENT)
		fieldToken := p.curr
		p.read()

		p.expect(lexer.COLON)
		p.read()

		fieldType := p.parseTypeIdentifier()
		fields = append(fields, ast.StructField{
			Span: p.spanFrom(fieldToken),

			Name: fieldToken.Value,
			Type: fieldType,
		})

		if p.curr.Kind != lexer.COMMA {
			break
		}
		p.read()
	}

	p.expect(lexer.RBRACE)
	p.read()

	return &ast.StructDeclStmt{
		Span:     p.spanFrom(startToken),
		NameSpan: nameToken.Span,

		Name:   nameToken.Value,
		Fields: fields,
	}
}

func (p *Parser) parseConstDeclStmt() *ast.ConstDeclStmt {
	p.expect(lexer.CONST)
	startToken := p.curr
	p.read()

	p.expect(lexer.IDENT)
	nameToken := p.curr
	p.read()

	p.expect(lexer.COLON)
	p.read()
	constType := p.parseTypeIdentifier()

	p.expect(lexer.ASSIGN)
	p.read()
	value := p.parseExpr()

	p.expect(lexer.SEMICOLON)
	p.read()

	return &ast.ConstDeclStmt{
		Span:     p.spanFrom(startToken),
		NameSpan: nameToken.Span,

		Name:  nameToken.Value,
		Type:  constType,
		Value: value,
	}
}

func (p *Parser) parseTypeIdentifier() ast.TypeNode {
	startToken := p.curr

	switch p.curr.Kind {
	case lexer.INT_TYPE, lexer.FLOAT_TYPE, lexer.STR_TYPE, lexer.BOOL_TYPE, lexer.VOID_TYPE, lexer.IDENT:
		p.read()
		return &ast.IdentTypeNode{
			Span: startToken.Span,

			Name: startToken.Value,
		}

	case lexer.LIST_TYPE:
		p.read()
		p.expect(lexer.LT)
		p.read()

		elemType := p.parseTypeIdentifier()

		p.expect(lexer.GT)
		p.read()

		return &ast.ListTypeNode{
			Span: p.spanFrom(startToken),

			ElemType: elemType,
		}
	}

	p.expectAny(
		lexer.INT_TYPE,
		lexer.FLOAT_TYPE,
		lexer.STR_TYPE,
		lexer.BOOL_TYPE,
		lexer.VOID_TYPE,
		lexer.LIST_TYPE,
		lexer.IDENT,
	)
	panic("unreachable")
}

func (p *Parser) read() *lexer.Token {
	p.prev = p.curr
	p.curr = p.scanner.Read()
	return p.curr
}

// spanFrom covers everything from start to the last consumed token.
func (p *Parser) spanFrom(start *lexer.Token) source.Span {
	return start.Span.To(p.prev.Span)
}

func (p *Parser) fail(err compiler_errors.CompilerError) {
	p.eh.Report(err)
	panic(bailout{})
}

func (p *Parser) expect(kind lexer.TokenKind) {
	if p.curr.Kind != kind {
		p.fail(&UnexpectedExpectedError{
			Unexpected: *p.curr,
			Expected:   kind,
		})
	}
}

func (p *Parser) expectAny(kinds ...lexer.TokenKind) {
	if p.isCurrAny(kinds...) {
		return
	}

	p.fail(&UnexpectedExpectedManyError{
		Unexpected: *p.curr,
		Expected:   kinds,
	})
}

func (p *Parser) isCurrAny(kinds ...lexer.TokenKind) bool {
	for _, kind := range kinds {
		if p.curr.Kind == kind {
			return true
		}
	}
	return false
}

func (p *Parser) unexpected() {
	p.fail(&UnexpectedError{
		Unexpected: *p.curr,
	})
}
