package parser

import (
	"context"
	"io"
	"log/slog"

	"github.com/itu-lang/itu/internal/ast"
	"github.com/itu-lang/itu/internal/lexer"
)

type Option func(*options)

type options struct {
	filename    string
	logger      *slog.Logger
	indentWidth int
}

// WithFilename configures the parser to attribute all emitted spans to the provided filename.
func WithFilename(name string) Option {
	return func(o *options) {
		o.filename = name
	}
}

// WithLogger routes parser debug records to logger. Parsing is silent by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithIndentWidth sets the number of spaces per indentation unit used by
// ParseString when it tokenizes source text.
func WithIndentWidth(width int) Option {
	return func(o *options) {
		o.indentWidth = width
	}
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Parser is a recursive-descent parser over an owned token slice.
// Invariants:
//   - The slice always ends with an EOF sentinel; the cursor never moves past
//     it, so current() is always valid.
//   - The first failure ends the parse. Productions return as soon as a callee
//     reports an error and never try to resynchronize.
//   - Indented blocks are parsed by a fresh Parser over a copy of their
//     tokens. Nothing but the returned statements flows back to the parent.
type Parser struct {
	cur  *cursor
	opts []Option

	filename string
	log      *slog.Logger
	depth    int // block nesting, for logging only
}

// New returns a parser over tokens. An EOF sentinel is appended when tokens
// does not already end with one.
func New(tokens []lexer.Token, opts ...Option) *Parser {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	toks := tokens
	if len(toks) == 0 || toks[len(toks)-1].Type != lexer.EOF {
		var span lexer.Span
		if len(toks) > 0 {
			last := toks[len(toks)-1].Span
			span = lexer.Span{Filename: last.Filename, Line: last.Line, Column: last.Column + (last.End - last.Start), Start: last.End, End: last.End}
		}
		toks = append(toks[:len(toks):len(toks)], lexer.Token{Type: lexer.EOF, Span: span})
	}

	p := &Parser{
		cur:      newCursor(toks),
		opts:     opts,
		filename: cfg.filename,
		log:      cfg.logger,
	}
	if p.log == nil {
		p.log = discardLogger
	}
	return p
}

// Parse parses tokens into a statement list.
func Parse(tokens []lexer.Token, opts ...Option) ([]ast.Stmt, error) {
	return New(tokens, opts...).Parse()
}

// ParseString tokenizes src with the reference lexer and parses the result.
// Lexer errors are reported before any parsing happens.
func ParseString(src string, opts ...Option) ([]ast.Stmt, error) {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var lexOpts []lexer.Option
	if cfg.filename != "" {
		lexOpts = append(lexOpts, lexer.WithFilename(cfg.filename))
	}
	if cfg.indentWidth > 0 {
		lexOpts = append(lexOpts, lexer.WithIndentWidth(cfg.indentWidth))
	}

	lx := lexer.New(src, lexOpts...)
	toks := lx.Tokenize()
	if len(lx.Errors) > 0 {
		return nil, lx.Errors[0]
	}
	return Parse(toks, opts...)
}

// Parse runs the parser to the end of its tokens. It returns either every
// statement or the first *ParseError.
func (p *Parser) Parse() ([]ast.Stmt, error) {
	var stmts []ast.Stmt

	for p.cur.remaining() > 1 {
		p.skipWhitespace()
		if p.cur.remaining() <= 1 {
			break
		}

		stmt, err := p.statement()
		if err != nil {
			return nil, p.withFilename(err)
		}
		stmts = append(stmts, stmt)
	}

	return stmts, nil
}

// skipWhitespace consumes line breaks and indentation markers.
func (p *Parser) skipWhitespace() {
	for p.cur.isType(lexer.NEWLINE) || p.cur.isType(lexer.INDENT) {
		p.cur.next()
		if p.cur.remaining() < 2 {
			break
		}
	}
}

// skipWhitespaceTo consumes line breaks and indentation only when they are
// followed by text. The cursor is left untouched otherwise.
func (p *Parser) skipWhitespaceTo(text string) bool {
	mark := p.cur.pos
	p.skipWhitespace()
	if p.cur.is(text) {
		return true
	}
	p.cur.pos = mark
	return false
}

// operatorAhead reports whether a binary operator follows, possibly on a
// continuation line. Whitespace is consumed only when it does.
func (p *Parser) operatorAhead() bool {
	mark := p.cur.pos
	p.skipWhitespace()
	if p.cur.isType(lexer.OPERATOR) {
		return true
	}
	p.cur.pos = mark
	return false
}

// expression parses a term and, when an operator follows, the whole operator
// chain it starts. At the end of input it returns the EOF sentinel.
func (p *Parser) expression() (ast.Expr, error) {
	p.skipWhitespace()

	expr, err := p.term()
	if err != nil {
		return nil, err
	}
	if ast.IsEOF(expr) {
		return expr, nil
	}

	if p.cur.remaining() > 1 && p.operatorAhead() {
		return p.operation(expr)
	}
	return expr, nil
}

// requiredExpression is expression for positions where the end of input is an
// error.
func (p *Parser) requiredExpression() (ast.Expr, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if ast.IsEOF(expr) {
		return nil, errorf(CauseExpectedExpression, p.cur.current(), "expected expression, found %s", describe(p.cur.current()))
	}
	return expr, nil
}

// body parses a lambda body: an indented block when the arrow ends the line,
// a single expression otherwise.
func (p *Parser) body() (ast.Expr, error) {
	if p.cur.is(lexer.Newline) {
		return p.block()
	}
	return p.requiredExpression()
}

func (p *Parser) withFilename(err error) error {
	if pe, ok := err.(*ParseError); ok && pe.Span.Filename == "" && p.filename != "" && pe.HasPosition() {
		pe.Span.Filename = p.filename
	}
	return err
}

func (p *Parser) debug(msg string, attrs ...slog.Attr) {
	if !p.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	attrs = append(attrs, slog.Int("depth", p.depth))
	p.log.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
}

// joinSpan covers from the start of a to the end of b.
func joinSpan(a, b lexer.Span) lexer.Span {
	if !a.IsValid() {
		return b
	}
	if b.IsValid() && b.End > a.End {
		a.End = b.End
	}
	return a
}
