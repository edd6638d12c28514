package lexer

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/kendroooo/rustic/internal/compiler_errors"
	"github.com/kendroooo/rustic/internal/source"
)

// ErrLexFailed is returned by Tokenize after the first lexical error has been reported.
var ErrLexFailed = errors.New("lexing failed")

type LexerError struct {
	Message string
	Span    source.Span
}

func newUnexpectedError(unexpected rune) *LexerError {
	return &LexerError{
		Message: fmt.Sprintf("unexpected character: '%c'", unexpected),
	}
}

func newUnexpectedExpectedError(unexpected byte, expected string) *LexerError {
	found := string(unexpected)
	if unexpected == 0 {
		found = "end of file"
	}
	return &LexerError{
		Message: fmt.Sprintf("expected '%s', found '%s'", expected, found),
	}
}

func newUnterminatedStringError() *LexerError {
	return &LexerError{Message: "Unterminated string"}
}

func newInvalidEscapeError(escape byte) *LexerError {
	return &LexerError{
		Message: fmt.Sprintf("invalid escape sequence: \\%s", string(escape)),
	}
}

func newIntegerOutOfRangeError() *LexerError {
	return &LexerError{Message: "integer literal out of range"}
}

func (e *LexerError) GetMessage() string                    { return e.Message }
func (e *LexerError) GetSpan() source.Span                  { return e.Span }
func (e *LexerError) GetSeverity() compiler_errors.Severity { return compiler_errors.Error }
func (e *LexerError) GetStage() compiler_errors.Stage       { return compiler_errors.StageLexer }
func (e *LexerError) Error() string                         { return e.Span.String() + ": " + e.Message }

type position struct {
	pos, line, col int
}

type Lexer struct {
	buf      []byte
	fileName string
	pos      int

	line, col int

	eh compiler_errors.ErrorHandler
}

func NewLexer(buf []byte, fileName string, eh compiler_errors.ErrorHandler) *Lexer {
	return &Lexer{
		buf:      buf,
		fileName: fileName,
		pos:      0,

		line: 1,
		col:  1,

		eh: eh,
	}
}

// Tokenize turns the whole buffer into an EOF terminated token slice.
// It stops at the first error, reports it and returns ErrLexFailed.
func (l *Lexer) Tokenize() ([]Token, error) {
	tokens := make([]Token, 0)

	for l.hasChars() {
		if l.isCurrSkippable() {
			l.advance()
			continue
		}
		if l.read() == '/' && l.peek() == '/' {
			l.skipLineComment()
			continue
		}

		start := l.mark()

		var (
			token Token
			err   *LexerError
		)
		switch {
		case l.isCurrDigit():
			token, err = l.processNumber()

		case l.isCurrIdentifier():
			token = l.processIdentifier()

		case l.read() == '"':
			token, err = l.processStringLiteral(start)

		case l.isCurrPunctuation():
			token, err = l.processPunctuation()

		default:
			r, size := utf8.DecodeRune(l.buf[l.pos:])
			err = newUnexpectedError(r)
			for i := 0; i < size; i++ {
				l.advance()
			}
		}

		if err != nil {
			if !err.Span.IsValid() {
				err.Span = l.spanFrom(start)
			}
			l.eh.Report(err)
			return nil, ErrLexFailed
		}

		token.Span = l.spanFrom(start)
		tokens = append(tokens, token)
	}

	eof := l.mark()
	tokens = append(tokens, Token{
		Kind:  EOF,
		Value: EOF.String(),
		Span:  l.spanFrom(eof),
	})

	return tokens, nil
}

func (l *Lexer) mark() position {
	return position{pos: l.pos, line: l.line, col: l.col}
}

func (l *Lexer) spanFrom(start position) source.Span {
	return source.Span{
		File:      l.fileName,
		StartLine: start.line,
		StartCol:  start.col,
		EndLine:   l.line,
		EndCol:    l.col,
	}
}

func (l *Lexer) isCurrIdentifier() bool {
	return (l.read() >= 'a' && l.read() <= 'z') || (l.read() >= 'A' && l.read() <= 'Z') || l.read() == '_'
}

func (l *Lexer) isCurrDigit() bool {
	return isDigit(l.read())
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (l *Lexer) isCurrPunctuation() bool {
	switch l.read() {
	case '+', '-', '*', '/', '%', '=', '!', '<', '>', '&', '|', '(', ')', '[', ']', '{', '}', ':', ';', '.', ',':
		return true
	}
	return false
}

func (l *Lexer) isCurrSkippable() bool {
	switch l.read() {
	case ' ', '\t', '\n', '\r':
		return true
	}

	return false
}

func (l *Lexer) skipLineComment() {
	for l.hasChars() && l.read() != '\n' {
		l.advance()
	}
}

func (l *Lexer) processIdentifier() Token {
	start := l.pos
	for l.hasChars() && (l.isCurrIdentifier() || l.isCurrDigit()) {
		l.advance()
	}

	identifier := string(l.buf[start:l.pos])
	return Token{
		Kind:  LookupIdent(identifier),
		Value: identifier,
	}
}

func (l *Lexer) processNumber() (Token, *LexerError) {
	start := l.pos
	for l.hasChars() && l.isCurrDigit() {
		l.advance()
	}

	if l.read() == '.' && isDigit(l.peek()) {
		l.advance()
		for l.hasChars() && l.isCurrDigit() {
			l.advance()
		}

		return Token{
			Kind:  FLOAT,
			Value: string(l.buf[start:l.pos]),
		}, nil
	}

	// The parser narrows this to Int once it knows whether a minus applies.
	number := string(l.buf[start:l.pos])
	if _, err := strconv.ParseUint(number, 10, 64); err != nil {
		return Token{}, newIntegerOutOfRangeError()
	}

	return Token{
		Kind:  INT,
		Value: number,
	}, nil
}

func (l *Lexer) processStringLiteral(start position) (Token, *LexerError) {
	l.advance()

	stringBuf := make([]byte, 0)
	for {
		if !l.hasChars() {
			err := newUnterminatedStringError()
			err.Span = l.spanFrom(start)
			return Token{}, err
		}

		c := l.read()
		if c == '"' {
			l.advance()
			break
		}

		if c != '\\' {
			stringBuf = append(stringBuf, c)
			l.advance()
			continue
		}

		escapeStart := l.mark()
		l.advance()
		if !l.hasChars() {
			err := newUnterminatedStringError()
			err.Span = l.spanFrom(start)
			return Token{}, err
		}

		switch l.read() {
		case 'n':
			stringBuf = append(stringBuf, '\n')
		case 't':
			stringBuf = append(stringBuf, '\t')
		case 'r':
			stringBuf = append(stringBuf, '\r')
		case '\\':
			stringBuf = append(stringBuf, '\\')
		case '"':
			stringBuf = append(stringBuf, '"')
		default:
			err := newInvalidEscapeError(l.read())
			l.advance()
			err.Span = l.spanFrom(escapeStart)
			return Token{}, err
		}
		l.advance()
	}

	return Token{
		Kind:  STRING,
		Value: string(stringBuf),
	}, nil
}

func (l *Lexer) processPunctuation() (Token, *LexerError) {
	c := l.read()
	l.advance()

	single := func(kind TokenKind) (Token, *LexerError) {
		return Token{Kind: kind, Value: kind.String()}, nil
	}
	pair := func(next byte, double, otherwise TokenKind) (Token, *LexerError) {
		if l.hasChars() && l.read() == next {
			l.advance()
			return single(double)
		}
		return single(otherwise)
	}

	switch c {
	case '+':
		return single(PLUS)
	case '-':
		return pair('>', ARROW, MINUS)
	case '*':
		return single(ASTERISK)
	case '/':
		return single(SLASH)
	case '%':
		return single(PERCENT)
	case '=':
		return pair('=', EQ, ASSIGN)
	case '!':
		return pair('=', NEQ, XMARK)
	case '<':
		return pair('=', LEQ, LT)
	case '>':
		return pair('=', GEQ, GT)
	case '&':
		if l.hasChars() && l.read() == '&' {
			l.advance()
			return single(LAND)
		}
		return Token{}, newUnexpectedExpectedError(l.read(), "&&")
	case '|':
		if l.hasChars() && l.read() == '|' {
			l.advance()
			return single(LOR)
		}
		return Token{}, newUnexpectedExpectedError(l.read(), "||")
	case '(':
		return single(LPAREN)
	case ')':
		return single(RPAREN)
	case '[':
		return single(LBRACKET)
	case ']':
		return single(RBRACKET)
	case '{':
		return single(LBRACE)
	case '}':
		return single(RBRACE)
	case ':':
		return single(COLON)
	case ';':
		return single(SEMICOLON)
	case '.':
		return single(DOT)
	case ',':
		return single(COMMA)
	}

	return Token{}, newUnexpectedError(rune(c))
}

func (l *Lexer) hasChars() bool {
	return l.pos < len(l.buf)
}

// read returns the current byte, or 0 at end of input.
func (l *Lexer) read() byte {
	if !l.hasChars() {
		return 0
	}
	return l.buf[l.pos]
}

func (l *Lexer) peek() byte {
	if l.pos+1 >= len(l.buf) {
		return 0
	}
	return l.buf[l.pos+1]
}

func (l *Lexer) advance() {
	if !l.hasChars() {
		return
	}
	if l.buf[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}
