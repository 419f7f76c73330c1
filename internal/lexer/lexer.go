package lexer

import (
	"strconv"
	"unicode"

	"github.com/itu-lang/itu/internal/diag"
)

type LexerErrorKind int

const (
	ErrUnterminatedString LexerErrorKind = iota
	ErrUnterminatedBlockComment
	ErrIllegalRune
	ErrInvalidChar
)

type LexerError struct {
	Kind    LexerErrorKind
	Message string
	Span    Span
}

func (e LexerError) Error() string {
	return e.Span.String() + ": " + e.Message
}

func (k LexerErrorKind) diagnosticCode() diag.Code {
	switch k {
	case ErrUnterminatedString:
		return diag.CodeLexerUnterminatedString
	case ErrUnterminatedBlockComment:
		return diag.CodeLexerUnterminatedBlockComment
	case ErrIllegalRune:
		return diag.CodeLexerIllegalRune
	case ErrInvalidChar:
		return diag.CodeLexerInvalidChar
	default:
		return diag.Code("LEXER_UNKNOWN_ERROR")
	}
}

// ToDiagnostic converts a lexer error into a shared diagnostic structure.
func (e LexerError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageLexer,
		Severity: diag.SeverityError,
		Code:     e.Kind.diagnosticCode(),
		Message:  e.Message,
		Span: diag.Span{
			Filename: e.Span.Filename,
			Line:     e.Span.Line,
			Column:   e.Span.Column,
			Start:    e.Span.Start,
			End:      e.Span.End,
		},
	}
}

// DefaultIndentWidth is the number of spaces that make up one INDENT token.
const DefaultIndentWidth = 4

// Option configures a Lexer.
type Option func(*Lexer)

// WithFilename attributes every emitted span to the provided filename.
func WithFilename(name string) Option {
	return func(l *Lexer) {
		l.filename = name
	}
}

// WithIndentWidth sets how many spaces count as one indentation unit. A tab is
// always one unit. Non-positive widths are ignored.
func WithIndentWidth(width int) Option {
	return func(l *Lexer) {
		if width > 0 {
			l.indentWidth = width
		}
	}
}

// Lexer represents the lexer state
type Lexer struct {
	input    []rune
	pos      int  // index of the current rune
	ch       rune // current rune (0 = EOF)
	line     int  // current line number (1-based)
	column   int  // current column number (1-based)
	filename string

	indentWidth    int
	atLineStart    bool
	pendingIndents int
	indentSpan     Span

	Errors []LexerError
}

func (l *Lexer) addError(kind LexerErrorKind, msg string, span Span) {
	span.Filename = l.filename
	l.Errors = append(l.Errors, LexerError{
		Kind:    kind,
		Message: msg,
		Span:    span,
	})
}

// New creates a new lexer for the given input.
func New(input string, opts ...Option) *Lexer {
	l := &Lexer{
		input:       []rune(input),
		pos:         -1, // start before first rune
		line:        1,
		column:      0, // will be 1 after first read()
		indentWidth: DefaultIndentWidth,
		atLineStart: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.read()
	return l
}

// SetFilename attributes subsequently emitted spans to name.
func (l *Lexer) SetFilename(name string) {
	l.filename = name
}

// Tokenize drains the lexer and returns every token including the trailing
// EOF sentinel.
func (l *Lexer) Tokenize() []Token {
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

// read advances the lexer to the next character.
// Line/column always reflect the position of the character at pos.
func (l *Lexer) read() {
	l.pos++
	prevPos := l.pos - 1
	inputLen := len(l.input)

	if l.pos >= inputLen {
		// Moved past the last rune; normalize position to virtual EOF.
		if prevPos >= 0 && prevPos < inputLen {
			if l.input[prevPos] == '\n' {
				l.line++
				l.column = 1
			} else {
				l.column++
			}
		} else if prevPos < 0 {
			l.column = 1
		}
		l.ch = 0
		return
	}

	l.ch = l.input[l.pos]

	if prevPos >= 0 && prevPos < inputLen && l.input[prevPos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
}

// peek returns the next character without advancing
func (l *Lexer) peek() rune {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func (l *Lexer) currentSpanStart() (line, column, pos int) {
	return l.line, l.column, l.pos
}

func (l *Lexer) makeToken(tokType TokenType, startLine, startColumn, startPos, endPos int, raw, value string) Token {
	return Token{
		Type:    tokType,
		Literal: value,
		Raw:     raw,
		Span: Span{
			Filename: l.filename,
			Line:     startLine,
			Column:   startColumn,
			Start:    startPos,
			End:      endPos,
		},
	}
}

// single emits a one-rune token of the given category.
func (l *Lexer) single(tokType TokenType) Token {
	startLine, startColumn, startPos := l.currentSpanStart()
	raw := string(l.ch)
	l.read()
	return l.makeToken(tokType, startLine, startColumn, startPos, l.pos, raw, raw)
}

// pair emits a two-rune token when the next rune is second, and a one-rune
// token of category one otherwise.
func (l *Lexer) pair(second rune, two, one TokenType) Token {
	startLine, startColumn, startPos := l.currentSpanStart()
	if l.peek() == second {
		raw := string(l.ch) + string(second)
		l.read()
		l.read()
		return l.makeToken(two, startLine, startColumn, startPos, l.pos, raw, raw)
	}
	raw := string(l.ch)
	l.read()
	return l.makeToken(one, startLine, startColumn, startPos, l.pos, raw, raw)
}

// scanIndent consumes the leading whitespace of a line and records how many
// INDENT tokens it is worth. Blank and comment-only lines carry no indentation.
func (l *Lexer) scanIndent() {
	startLine, startColumn, startPos := l.currentSpanStart()
	units, spaces := 0, 0
	for l.ch == ' ' || l.ch == '\t' {
		if l.ch == '\t' {
			units++
			spaces = 0
		} else {
			spaces++
			if spaces == l.indentWidth {
				units++
				spaces = 0
			}
		}
		l.read()
	}

	if l.restOfLineBlank() {
		return
	}

	l.pendingIndents = units
	l.indentSpan = Span{
		Filename: l.filename,
		Line:     startLine,
		Column:   startColumn,
		Start:    startPos,
		End:      l.pos,
	}
}

func (l *Lexer) restOfLineBlank() bool {
	switch l.ch {
	case 0, '\n':
		return true
	case '\r':
		return l.peek() == '\n' || l.peek() == 0
	case '/':
		return l.peek() == '/'
	}
	return false
}

func (l *Lexer) indentToken() Token {
	raw := string(l.input[l.indentSpan.Start:l.indentSpan.End])
	return Token{Type: INDENT, Raw: raw, Span: l.indentSpan}
}

// skipWhitespace skips blanks inside a line. Line breaks are significant and
// are left for NextToken.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.read()
	}
}

// skipLineComment reads up to, but not including, the line terminator.
func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.read()
	}
}

func (l *Lexer) skipBlockComment(startLine, startColumn, startPos int) {
	depth := 1
	for depth > 0 {
		if l.ch == 0 {
			l.addError(
				ErrUnterminatedBlockComment,
				"unterminated block comment",
				Span{Line: startLine, Column: startColumn, Start: startPos, End: l.pos},
			)
			return
		}
		if l.ch == '/' && l.peek() == '*' {
			l.read()
			l.read()
			depth++
		} else if l.ch == '*' && l.peek() == '/' {
			l.read()
			l.read()
			depth--
		} else {
			l.read()
		}
	}
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.read()
	}
	return string(l.input[start:l.pos])
}

// readNumber reads a number literal (decimal, hex 0x..., binary 0b..., float)
func (l *Lexer) readNumber() (string, TokenType) {
	start := l.pos
	l.read()

	if l.input[start] == '0' {
		switch l.ch {
		case 'x', 'X':
			l.read()
			for isHexDigit(l.ch) || l.ch == '_' {
				l.read()
			}
			return string(l.input[start:l.pos]), INT
		case 'b', 'B':
			l.read()
			for l.ch == '0' || l.ch == '1' || l.ch == '_' {
				l.read()
			}
			return string(l.input[start:l.pos]), INT
		}
	}

	for isDigit(l.ch) || l.ch == '_' {
		l.read()
	}

	tokType := INT
	if l.ch == '.' && isDigit(l.peek()) {
		tokType = FLOAT
		l.read()
		for isDigit(l.ch) || l.ch == '_' {
			l.read()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		tokType = FLOAT
		l.read()
		if l.ch == '+' || l.ch == '-' {
			l.read()
		}
		for isDigit(l.ch) || l.ch == '_' {
			l.read()
		}
	}

	return string(l.input[start:l.pos]), tokType
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	if l.atLineStart {
		l.atLineStart = false
		l.scanIndent()
	}
	if l.pendingIndents > 0 {
		l.pendingIndents--
		return l.indentToken()
	}

	for {
		l.skipWhitespace()

		switch l.ch {
		case 0:
			startLine, startColumn, startPos := l.currentSpanStart()
			return l.makeToken(EOF, startLine, startColumn, startPos, startPos, "", "")

		case '\n':
			tok := l.single(NEWLINE)
			l.atLineStart = true
			return tok

		case '=':
			return l.pair('=', OPERATOR, SYMBOL)

		case '<', '>':
			return l.pair('=', OPERATOR, OPERATOR)

		case '-':
			return l.pair('>', KEYWORD, OPERATOR)

		case '+', '*', '%', '^':
			return l.single(OPERATOR)

		case '!':
			if l.peek() == '=' {
				return l.pair('=', OPERATOR, OPERATOR)
			}
			tok := l.single(ILLEGAL)
			l.addError(ErrIllegalRune, "illegal character \"!\"", tok.Span)
			return tok

		case '/':
			startLine, startColumn, startPos := l.currentSpanStart()
			switch l.peek() {
			case '/':
				l.skipLineComment()
				continue
			case '*':
				l.read()
				l.read()
				l.skipBlockComment(startLine, startColumn, startPos)
				continue
			default:
				return l.single(OPERATOR)
			}

		case '(', ')', '[', ']', '{', '}', ',', ':', ';':
			return l.single(SYMBOL)

		case '"':
			startLine, startColumn, startPos := l.currentSpanStart()
			raw, value, terminated := l.readString(startLine, startColumn, startPos, '"')
			if !terminated {
				return l.makeToken(ILLEGAL, startLine, startColumn, startPos, l.pos, raw, raw)
			}
			return l.makeToken(STRING, startLine, startColumn, startPos, l.pos, raw, value)

		case '\'':
			startLine, startColumn, startPos := l.currentSpanStart()
			raw, value, terminated := l.readString(startLine, startColumn, startPos, '\'')
			if !terminated {
				return l.makeToken(ILLEGAL, startLine, startColumn, startPos, l.pos, raw, raw)
			}
			tok := l.makeToken(CHAR, startLine, startColumn, startPos, l.pos, raw, value)
			if len([]rune(value)) != 1 {
				tok.Type = ILLEGAL
				l.addError(ErrInvalidChar, "char literal must hold exactly one character: "+raw, tok.Span)
			}
			return tok

		default:
			if isLetter(l.ch) {
				startLine, startColumn, startPos := l.currentSpanStart()
				literal := l.readIdentifier()
				return l.makeToken(LookupIdent(literal), startLine, startColumn, startPos, l.pos, literal, literal)
			}
			if isDigit(l.ch) {
				startLine, startColumn, startPos := l.currentSpanStart()
				literal, tokType := l.readNumber()
				return l.makeToken(tokType, startLine, startColumn, startPos, l.pos, literal, literal)
			}
			tok := l.single(ILLEGAL)
			l.addError(ErrIllegalRune, "illegal character "+strconv.Quote(tok.Raw), tok.Span)
			return tok
		}
	}
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	// Numeric literals are restricted to ASCII digits.
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') ||
		(ch >= 'a' && ch <= 'f') ||
		(ch >= 'A' && ch <= 'F')
}

// readString reads a quoted literal, handling escape sequences.
// Returns both raw (with escapes) and decoded values, along with a flag
// indicating whether the literal was properly terminated.
func (l *Lexer) readString(startLine, startColumn, startPos int, quote rune) (raw string, value string, terminated bool) {
	var rawRunes []rune
	var decodedRunes []rune

	rawRunes = append(rawRunes, quote)
	l.read()

	for {
		if l.ch == 0 {
			l.addError(
				ErrUnterminatedString,
				"unterminated literal",
				Span{Line: startLine, Column: startColumn, Start: startPos, End: l.pos},
			)
			break
		}
		if l.ch == quote {
			rawRunes = append(rawRunes, quote)
			l.read()
			return string(rawRunes), string(decodedRunes), true
		}
		if l.ch == '\n' || l.ch == '\r' {
			l.addError(
				ErrUnterminatedString,
				"newline in literal",
				Span{Line: startLine, Column: startColumn, Start: startPos, End: l.pos},
			)
			break
		}
		if l.ch == '\\' {
			rawRunes = append(rawRunes, '\\')
			l.read()
			if l.ch != 0 {
				rawRunes = append(rawRunes, l.ch)
				switch l.ch {
				case 'n':
					decodedRunes = append(decodedRunes, '\n')
				case 't':
					decodedRunes = append(decodedRunes, '\t')
				case 'r':
					decodedRunes = append(decodedRunes, '\r')
				case '0':
					decodedRunes = append(decodedRunes, 0)
				case '\\', '"', '\'':
					decodedRunes = append(decodedRunes, l.ch)
				default:
					decodedRunes = append(decodedRunes, '\\', l.ch)
				}
				l.read()
			}
			continue
		}
		rawRunes = append(rawRunes, l.ch)
		decodedRunes = append(decodedRunes, l.ch)
		l.read()
	}

	return string(rawRunes), string(decodedRunes), false
}
