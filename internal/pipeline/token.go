package pipeline

import (
	"fmt"
	"io"
)

// TokenKind identifies the kind of a Token.
type TokenKind int

const (
	TokenStart TokenKind = iota + 1 // element start
	TokenEnd                        // element end
	TokenText                       // character data
)

// String returns the token kind name.
func (k TokenKind) String() string {
	switch k {
	case TokenStart:
		return "start"
	case TokenEnd:
		return "end"
	case TokenText:
		return "text"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Attr is an element attribute with its namespace prefix stripped
// (l:href and xlink:href both arrive as "href").
type Attr struct {
	Name  string
	Value string
}

// Token is one item of the markup stream.
type Token struct {
	Kind  TokenKind
	Name  string // element local name (start/end)
	Attrs []Attr // start only
	Text  string // text only
	Line  int    // source line, 0 if unknown
}

// Attr returns the value of the named attribute.
func (t Token) Attr(name string) (string, bool) {
	for _, a := range t.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Scanner produces the token stream of one source document.
// Next returns io.EOF once the stream is exhausted; any other error is a
// lexical defect of the source.
type Scanner interface {
	Next() (Token, error)
}

// SliceScanner replays a fixed token slice. Useful for tests and for callers
// that tokenize up front.
type SliceScanner struct {
	tokens []Token
	pos    int
}

// NewSliceScanner creates a SliceScanner over tokens.
func NewSliceScanner(tokens []Token) *SliceScanner {
	return &SliceScanner{tokens: tokens}
}

// Next returns the next token or io.EOF.
func (s *SliceScanner) Next() (Token, error) {
	if s.pos >= len(s.tokens) {
		return Token{}, io.EOF
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok, nil
}

// Compile-time interface check.
var _ Scanner = (*SliceScanner)(nil)
