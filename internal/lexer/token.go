package lexer

import "fmt"

// TokenType represents the category of a token. The parser dispatches on the
// category first and on the literal text second, so categories are coarse.
type TokenType string

// Span represents the source location of a token
type Span struct {
	Filename string // optional source filename for diagnostics
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Start    int    // index in []rune of the source
	End      int    // exclusive end index
}

// String renders the span as file:line:col (or line:col without a filename).
func (s Span) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsValid reports whether the span carries a position.
func (s Span) IsValid() bool {
	return s.Line > 0 && s.Column > 0
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string // decoded text (string and char literals without quotes)
	Raw     string // exact runes from source
	Span    Span
}

// Is reports whether the token has the given category and literal.
func (t Token) Is(tt TokenType, literal string) bool {
	return t.Type == tt && t.Literal == literal
}

func (t Token) String() string {
	switch t.Type {
	case NEWLINE, INDENT, EOF:
		return fmt.Sprintf("%s %s", t.Span, t.Type)
	}
	return fmt.Sprintf("%s %s %q", t.Span, t.Type, t.Literal)
}

// Token categories
const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	INT    TokenType = "INT"    // 1343456, 0xff, 0b1010
	FLOAT  TokenType = "FLOAT"  // 3.14, 1e9
	BOOL   TokenType = "BOOL"   // true, false
	STRING TokenType = "STRING" // "hello"
	CHAR   TokenType = "CHAR"   // 'a'

	IDENT TokenType = "IDENT" // add, foobar, x, y, ...

	SYMBOL   TokenType = "SYMBOL"   // ( ) [ ] { } , : ; =
	OPERATOR TokenType = "OPERATOR" // ^ * / % + - == != < > <= >=
	KEYWORD  TokenType = "KEYWORD"  // mut ->
	TYPE     TokenType = "TYPE"     // i32, f64, char, ...

	INDENT  TokenType = "INDENT"  // one indentation unit at the start of a line
	NEWLINE TokenType = "NEWLINE" // \n
)

// Literal text of the structural tokens the parser looks for.
const (
	KwMut   = "mut"
	KwArrow = "->"
	Newline = "\n"
)

var keywords = map[string]TokenType{
	KwMut:   KEYWORD,
	"true":  BOOL,
	"false": BOOL,

	"i08":  TYPE,
	"i16":  TYPE,
	"i32":  TYPE,
	"i64":  TYPE,
	"i128": TYPE,
	"u08":  TYPE,
	"u16":  TYPE,
	"u32":  TYPE,
	"u64":  TYPE,
	"u128": TYPE,
	"f32":  TYPE,
	"f64":  TYPE,
	"char": TYPE,
	"str":  TYPE,
	"bool": TYPE,
	"any":  TYPE,
}

// LookupIdent checks if the identifier is a keyword, type keyword or boolean.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
