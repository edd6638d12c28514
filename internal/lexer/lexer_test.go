package lexer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendroooo/rustic/internal/compiler_errors"
	"github.com/kendroooo/rustic/internal/source"
)

func tokenize(t *testing.T, src string) ([]Token, compiler_errors.ErrorHandler, error) {
	t.Helper()
	eh := compiler_errors.NewErrorHandler(&bytes.Buffer{})
	tokens, err := NewLexer([]byte(src), "test.rsc", eh).Tokenize()
	return tokens, eh, err
}

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeFunctionDeclaration(t *testing.T) {
	tokens, eh, err := tokenize(t, "fn add(a: Int, b: Int = 2) -> Int { return a + b; }")
	require.NoError(t, err)
	assert.False(t, eh.HasErrors())

	assert.Equal(t, []TokenKind{
		FN, IDENT, LPAREN, IDENT, COLON, INT_TYPE, COMMA, IDENT, COLON, INT_TYPE, ASSIGN, INT, RPAREN,
		ARROW, INT_TYPE, LBRACE, RETURN, IDENT, PLUS, IDENT, SEMICOLON, RBRACE, EOF,
	}, kinds(tokens))
	assert.Equal(t, "add", tokens[1].Value)
	assert.Equal(t, "2", tokens[11].Value)
}

func TestTokenizeTwoCharacterOperatorsAreGreedy(t *testing.T) {
	tokens, _, err := tokenize(t, "-> == != <= >= && || - = ! < >")
	require.NoError(t, err)

	assert.Equal(t, []TokenKind{ARROW, EQ, NEQ, LEQ, GEQ, LAND, LOR, MINUS, ASSIGN, XMARK, LT, GT, EOF}, kinds(tokens))
}

func TestTokenizeKeywordsAndIdentifiers(t *testing.T) {
	tokens, _, err := tokenize(t, "let var const if else for in try catch throw import struct true false List Void _x x1")
	require.NoError(t, err)

	assert.Equal(t, []TokenKind{
		LET, VAR, CONST, IF, ELSE, FOR, IN, TRY, CATCH, THROW, IMPORT, STRUCT, BOOL, BOOL, LIST_TYPE, VOID_TYPE,
		IDENT, IDENT, EOF,
	}, kinds(tokens))
	assert.Equal(t, "true", tokens[12].Value)
	assert.Equal(t, "false", tokens[13].Value)
}

func TestTokenizeNumbers(t *testing.T) {
	tokens, _, err := tokenize(t, "12 1.5 3.x")
	require.NoError(t, err)

	assert.Equal(t, []TokenKind{INT, FLOAT, INT, DOT, IDENT, EOF}, kinds(tokens))
	assert.Equal(t, "1.5", tokens[1].Value)
}

func TestTokenizeLeavesIntRangeToParser(t *testing.T) {
	tokens, _, err := tokenize(t, "-9223372036854775808")
	require.NoError(t, err)

	assert.Equal(t, []TokenKind{MINUS, INT, EOF}, kinds(tokens))
	assert.Equal(t, "9223372036854775808", tokens[1].Value)
}

func TestTokenizeStringEscapes(t *testing.T) {
	tokens, _, err := tokenize(t, `"a\nb\t\"q\"\\"`)
	require.NoError(t, err)

	require.Len(t, tokens, 2)
	assert.Equal(t, STRING, tokens[0].Kind)
	assert.Equal(t, "a\nb\t\"q\"\\", tokens[0].Value)
}

func TestTokenizeSkipsComments(t *testing.T) {
	tokens, _, err := tokenize(t, "// header\nlet x // trailing\n// last")
	require.NoError(t, err)

	assert.Equal(t, []TokenKind{LET, IDENT, EOF}, kinds(tokens))
}

func TestTokenSpansTrackLinesAndColumns(t *testing.T) {
	tokens, _, err := tokenize(t, "let x\n  \"a\nb\" y")
	require.NoError(t, err)

	assert.Equal(t, source.Span{File: "test.rsc", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 4}, tokens[0].Span)
	assert.Equal(t, source.Span{File: "test.rsc", StartLine: 2, StartCol: 3, EndLine: 3, EndCol: 3}, tokens[2].Span)
	assert.Equal(t, source.Span{File: "test.rsc", StartLine: 3, StartCol: 4, EndLine: 3, EndCol: 5}, tokens[3].Span)
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
		span    source.Span
	}{
		{
			name:    "unexpected character",
			src:     "let x = 1 # 2;",
			message: "unexpected character: '#'",
			span:    source.Span{File: "test.rsc", StartLine: 1, StartCol: 11, EndLine: 1, EndCol: 12},
		},
		{
			name:    "unterminated string",
			src:     "\"abc",
			message: "Unterminated string",
			span:    source.Span{File: "test.rsc", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 5},
		},
		{
			name:    "invalid escape",
			src:     `"a\qb"`,
			message: `invalid escape sequence: \q`,
			span:    source.Span{File: "test.rsc", StartLine: 1, StartCol: 3, EndLine: 1, EndCol: 5},
		},
		{
			name:    "single ampersand",
			src:     "a & b",
			message: "expected '&&', found ' '",
			span:    source.Span{File: "test.rsc", StartLine: 1, StartCol: 3, EndLine: 1, EndCol: 4},
		},
		{
			name:    "single pipe at end of file",
			src:     "a |",
			message: "expected '||', found 'end of file'",
			span:    source.Span{File: "test.rsc", StartLine: 1, StartCol: 3, EndLine: 1, EndCol: 4},
		},
		{
			name:    "integer overflow",
			src:     "99999999999999999999",
			message: "integer literal out of range",
			span:    source.Span{File: "test.rsc", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 21},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, eh, err := tokenize(t, tt.src)
			assert.ErrorIs(t, err, ErrLexFailed)
			assert.Nil(t, tokens)

			require.Equal(t, 1, eh.ErrorCount())
			diag := eh.Diagnostics()[0]
			assert.Equal(t, tt.message, diag.GetMessage())
			assert.Equal(t, tt.span, diag.GetSpan())
			assert.Equal(t, compiler_errors.StageLexer, diag.GetStage())
		})
	}
}

func TestTokenScannerReadPeek(t *testing.T) {
	tokens, _, err := tokenize(t, "a b")
	require.NoError(t, err)

	scanner := NewTokenScanner(tokens)
	assert.Equal(t, "a", scanner.Peek().Value)
	assert.Equal(t, "a", scanner.Read().Value)
	assert.Equal(t, "b", scanner.Peek().Value)
	assert.Equal(t, "b", scanner.Read().Value)
	assert.Equal(t, EOF, scanner.Peek().Kind)
	assert.Equal(t, EOF, scanner.Read().Kind)
	assert.Equal(t, EOF, scanner.Read().Kind)
}
