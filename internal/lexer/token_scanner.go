package lexer

type TokenScanner interface {
	Read() *Token
	Peek() *Token
}

type SimpleTokenScanner struct {
	tokens []Token

	pos int
}

// NewTokenScanner wraps an EOF terminated token slice.
func NewTokenScanner(tokens []Token) TokenScanner {
	return &SimpleTokenScanner{
		tokens: tokens,
	}
}

// Read returns the next token. Past the end it keeps returning the final EOF token.
func (s *SimpleTokenScanner) Read() *Token {
	if s.pos >= len(s.tokens) {
		return &s.tokens[len(s.tokens)-1]
	}
	token := &s.tokens[s.pos]
	s.pos++

	return token
}

// Peek returns the token Read would return, without consuming it.
func (s *SimpleTokenScanner) Peek() *Token {
	if s.pos >= len(s.tokens) {
		return &s.tokens[len(s.tokens)-1]
	}
	return &s.tokens[s.pos]
}
