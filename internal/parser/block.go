package parser

import (
	"log/slog"

	"github.com/itu-lang/itu/internal/ast"
	"github.com/itu-lang/itu/internal/lexer"
)

// block extracts the indented region that starts at the line break under the
// cursor and parses it with a fresh parser. One indentation marker is
// stripped from every line of the region:
//
//   - a line break followed by an indentation marker continues the block
//   - a line break followed by anything else ends it
//   - an indentation marker followed directly by a line break ends it
//
// Any other indentation marker is copied, so deeper lines keep all but one of
// theirs.
//
// Blank lines inside the region are kept when the next non-blank line is
// still indented. The cursor ends on the first token after the region.
func (p *Parser) block() (ast.Expr, error) {
	first := p.cur.current()
	last := first

	var toks []lexer.Token

	for {
		if p.cur.isType(lexer.INDENT) && p.cur.peekIs(lexer.Newline) {
			p.cur.next()
			p.cur.next()
			break
		} else if p.cur.is(lexer.Newline) {
			toks = append(toks, p.cur.current())
			p.cur.next()

			blank := 0
			for p.cur.is(lexer.Newline) {
				blank++
				p.cur.next()
			}
			if !p.cur.isType(lexer.INDENT) {
				for ; blank > 0; blank-- {
					p.cur.prev()
				}
				break
			}
			for i := blank; i > 0; i-- {
				toks = append(toks, p.cur.toks[p.cur.pos-i])
			}
			p.cur.next()
		}

		if p.cur.remaining() < 2 {
			break
		}

		last = p.cur.current()
		toks = append(toks, last)
		p.cur.next()
	}

	end := p.cur.current().Span
	toks = append(toks, lexer.Token{Type: lexer.EOF, Span: end})

	p.debug("parsing block", slog.String("at", first.Span.String()), slog.Int("tokens", len(toks)))

	nested := New(toks, p.opts...)
	nested.depth = p.depth + 1

	stmts, err := nested.Parse()
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			return nil, wrapNested(pe)
		}
		return nil, err
	}

	return ast.NewBlockExpr(stmts, joinSpan(first.Span, last.Span)), nil
}
