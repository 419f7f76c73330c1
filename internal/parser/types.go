package parser

import (
	"github.com/itu-lang/itu/internal/ast"
	"github.com/itu-lang/itu/internal/lexer"
)

// tryType parses a type annotation:
//
//	mut [inner]        -> MutType (inner may be omitted)
//	i32, str, any, ... -> PrimitiveType
//	T                  -> NamedType
//	[elem] / [elem; n] -> ArrayType
func (p *Parser) tryType() (ast.TypeExpr, error) {
	tok := p.cur.current()

	if p.cur.is(lexer.KwMut) {
		p.cur.next()

		var inner ast.TypeExpr
		if p.cur.is("[") {
			t, err := p.arrayType()
			if err != nil {
				return nil, err
			}
			inner = t
		} else if leaf := typeLeaf(p.cur.current()); leaf != nil {
			p.cur.next()
			inner = leaf
		}

		span := tok.Span
		if inner != nil {
			span = joinSpan(span, inner.Span())
		}
		return ast.NewMutType(inner, span), nil
	}

	if leaf := typeLeaf(tok); leaf != nil {
		p.cur.next()
		return leaf, nil
	}

	if p.cur.is("[") {
		return p.arrayType()
	}

	return nil, errorf(CauseExpectedType, tok, "expected type: %s", typeText(tok))
}

// arrayType parses `[elem]` or `[elem; len]` with the cursor on `[`. An
// element that does not resolve to a type is taken as any and left for the
// closing bracket check.
func (p *Parser) arrayType() (ast.TypeExpr, error) {
	open := p.cur.current()
	p.cur.next()

	var elem ast.TypeExpr
	if p.cur.is("[") {
		t, err := p.arrayType()
		if err != nil {
			return nil, err
		}
		elem = t
	} else if leaf := typeLeaf(p.cur.current()); leaf != nil {
		p.cur.next()
		elem = leaf
	} else {
		elem = ast.NewPrimitiveType(ast.Any, p.cur.current().Span)
	}

	var length ast.Expr
	if p.cur.is(";") {
		p.cur.next()

		n, err := p.term()
		if err != nil {
			return nil, err
		}
		if ast.IsEOF(n) {
			return nil, errorf(CauseExpectedExpression, p.cur.current(), "expected array length, found %s", describe(p.cur.current()))
		}
		length = n
	}

	if err := p.cur.expectContent("]"); err != nil {
		return nil, err
	}
	closing := p.cur.current()
	p.cur.next()

	return ast.NewArrayType(elem, length, joinSpan(open.Span, closing.Span)), nil
}

// typeLeaf resolves a type keyword or identifier, or returns nil.
func typeLeaf(tok lexer.Token) ast.TypeExpr {
	switch tok.Type {
	case lexer.TYPE:
		if kind, ok := ast.LookupPrimitive(tok.Literal); ok {
			return ast.NewPrimitiveType(kind, tok.Span)
		}
	case lexer.IDENT:
		return ast.NewNamedType(tok.Literal, tok.Span)
	}
	return nil
}

func typeText(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF, lexer.NEWLINE, lexer.INDENT:
		return describe(tok)
	}
	return tok.Literal
}
