package lexer

import (
	"fmt"

	"github.com/kendroooo/rustic/internal/source"
)

type TokenKind int

const (
	EOF TokenKind = iota

	INT
	FLOAT
	BOOL
	STRING

	IDENT

	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	PERCENT  // %

	ASSIGN // =

	LAND  // &&
	LOR   // ||
	XMARK // !

	EQ  // ==
	NEQ // !=
	LT  // <
	LEQ // <=
	GT  // >
	GEQ // >=

	LPAREN   // (
	LBRACKET // [
	LBRACE   // {

	RPAREN   // )
	RBRACKET // ]
	RBRACE   // }

	COLON     // :
	SEMICOLON // ;
	DOT       // .
	COMMA     // ,
	ARROW     // ->

	LET
	VAR
	CONST
	FN
	IF
	ELSE
	FOR
	IN
	TRY
	CATCH
	THROW
	RETURN
	IMPORT
	STRUCT

	INT_TYPE
	FLOAT_TYPE
	STR_TYPE
	BOOL_TYPE
	LIST_TYPE
	VOID_TYPE
)

var keywords = map[string]TokenKind{
	"let":    LET,
	"var":    VAR,
	"const":  CONST,
	"fn":     FN,
	"if":     IF,
	"else":   ELSE,
	"for":    FOR,
	"in":     IN,
	"try":    TRY,
	"catch":  CATCH,
	"throw":  THROW,
	"return": RETURN,
	"import": IMPORT,
	"struct": STRUCT,
	"true":   BOOL,
	"false":  BOOL,
	"Int":    INT_TYPE,
	"Float":  FLOAT_TYPE,
	"Str":    STR_TYPE,
	"Bool":   BOOL_TYPE,
	"List":   LIST_TYPE,
	"Void":   VOID_TYPE,
}

// LookupIdent classifies an identifier against the keyword table.
func LookupIdent(ident string) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENT
}

func (tk TokenKind) String() string {
	switch tk {
	case EOF:
		return "EOF"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case BOOL:
		return "BOOL"
	case STRING:
		return "STRING"
	case IDENT:
		return "IDENT"
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case ASTERISK:
		return "*"
	case SLASH:
		return "/"
	case PERCENT:
		return "%"
	case ASSIGN:
		return "="
	case LAND:
		return "&&"
	case LOR:
		return "||"
	case XMARK:
		return "!"
	case EQ:
		return "=="
	case NEQ:
		return "!="
	case LT:
		return "<"
	case LEQ:
		return "<="
	case GT:
		return ">"
	case GEQ:
		return ">="
	case LPAREN:
		return "("
	case LBRACKET:
		return "["
	case LBRACE:
		return "{"
	case RPAREN:
		return ")"
	case RBRACKET:
		return "]"
	case RBRACE:
		return "}"
	case COLON:
		return ":"
	case SEMICOLON:
		return ";"
	case DOT:
		return "."
	case COMMA:
		return ","
	case ARROW:
		return "->"
	case LET:
		return "let"
	case VAR:
		return "var"
	case CONST:
		return "const"
	case FN:
		return "fn"
	case IF:
		return "if"
	case ELSE:
		return "else"
	case FOR:
		return "for"
	case IN:
		return "in"
	case TRY:
		return "try"
	case CATCH:
		return "catch"
	case THROW:
		return "throw"
	case RETURN:
		return "return"
	case IMPORT:
		return "import"
	case STRUCT:
		return "struct"
	case INT_TYPE:
		return "Int"
	case FLOAT_TYPE:
		return "Float"
	case STR_TYPE:
		return "Str"
	case BOOL_TYPE:
		return "Bool"
	case LIST_TYPE:
		return "List"
	case VOID_TYPE:
		return "Void"
	default:
		panic(fmt.Sprintf("TokenKind.String(): received illegal token kind: %d", tk))
	}
}

// IsTypeKeyword reports whether the kind names a builtin type.
func (tk TokenKind) IsTypeKeyword() bool {
	switch tk {
	case INT_TYPE, FLOAT_TYPE, STR_TYPE, BOOL_TYPE, LIST_TYPE, VOID_TYPE:
		return true
	}
	return false
}

type Token struct {
	Kind  TokenKind
	Value string
	Span  source.Span
}

func (t *Token) hasActualValue() bool {
	switch t.Kind {
	case INT, FLOAT, BOOL, STRING, IDENT:
		return true
	}

	return false
}

func (t *Token) String() string {
	if !t.hasActualValue() {
		return fmt.Sprintf("%s()", t.Kind)
	}

	return fmt.Sprintf("%s(%s)", t.Kind, t.Value)
}
