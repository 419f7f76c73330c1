package parser

import (
	"github.com/itu-lang/itu/internal/lexer"
)

// cursor is a bidirectional view over an owned token buffer whose last token
// is the EOF sentinel. Every prev is paired with an earlier next over the same
// span, so it never underflows.
type cursor struct {
	toks []lexer.Token
	pos  int
}

// newCursor wraps toks without copying.
func newCursor(toks []lexer.Token) *cursor {
	return &cursor{toks: toks}
}

func (c *cursor) current() lexer.Token {
	return c.toks[c.pos]
}

func (c *cursor) content() string {
	return c.toks[c.pos].Literal
}

// is reports whether the current token is the structural token text. Literal
// tokens never match, so a string literal "(" is not an opening paren.
func (c *cursor) is(text string) bool {
	return structural(c.toks[c.pos], text)
}

func (c *cursor) isType(tt lexer.TokenType) bool {
	return c.toks[c.pos].Type == tt
}

// next advances one token. It never moves past the sentinel.
func (c *cursor) next() {
	if c.pos < len(c.toks)-1 {
		c.pos++
	}
}

func (c *cursor) prev() {
	if c.pos > 0 {
		c.pos--
	}
}

// peekIs reports whether the token after the current one is text. The
// sentinel has no successor.
func (c *cursor) peekIs(text string) bool {
	if c.pos+1 >= len(c.toks) {
		return false
	}
	return structural(c.toks[c.pos+1], text)
}

func structural(tok lexer.Token, text string) bool {
	switch tok.Type {
	case lexer.SYMBOL, lexer.OPERATOR, lexer.KEYWORD, lexer.NEWLINE:
		return tok.Literal == text
	}
	return false
}

// remaining counts the tokens left including the sentinel: 1 means only the
// sentinel is left.
func (c *cursor) remaining() int {
	return len(c.toks) - c.pos
}

// expectContent fails unless the current token is text. It never consumes.
func (c *cursor) expectContent(text string) error {
	if !c.is(text) {
		return expectedError(text, c.current())
	}
	return nil
}
