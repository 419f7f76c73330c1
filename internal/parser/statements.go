package parser

import (
	"github.com/itu-lang/itu/internal/ast"
	"github.com/itu-lang/itu/internal/lexer"
)

// statement parses one statement. An identifier followed by `=` starts an
// assignment and one followed by `:` a definition; anything else, including
// an identifier that turns out to be neither, is an expression statement.
func (p *Parser) statement() (ast.Stmt, error) {
	p.skipWhitespace()

	if p.cur.isType(lexer.IDENT) {
		start := p.cur.pos
		tok := p.cur.current()
		name := ast.NewIdent(tok.Literal, tok.Span)
		p.cur.next()

		switch {
		case p.cur.is("="):
			return p.assignment(name)
		case p.cur.is(":"):
			return p.definition(name)
		case p.cur.is("["):
			// xs[i] = v. A bad index is reported again by the expression
			// parse after the rewind.
			if target, err := p.index(name); err == nil && p.cur.is("=") {
				return p.assignment(target)
			}
		}

		p.cur.pos = start
	}

	expr, err := p.requiredExpression()
	if err != nil {
		return nil, err
	}
	return ast.NewExprStmt(expr, expr.Span()), nil
}

// assignment parses the value of `target = value`; the cursor is on `=`.
func (p *Parser) assignment(target ast.Expr) (ast.Stmt, error) {
	p.cur.next()

	if p.cur.is(lexer.Newline) {
		return nil, errorf(CauseExpectedExpression, p.cur.current(), "expected expression, found %s", describe(p.cur.current()))
	}

	value, err := p.requiredExpression()
	if err != nil {
		return nil, err
	}
	return ast.NewAssignStmt(target, value, joinSpan(target.Span(), value.Span())), nil
}

// definition parses `name: type`, `name: type = value` and `name := value`;
// the cursor is on `:`.
func (p *Parser) definition(name *ast.Ident) (ast.Stmt, error) {
	if err := p.cur.expectContent(":"); err != nil {
		return nil, err
	}
	p.cur.next()
	p.skipWhitespace()

	span := name.Span()

	var typ ast.TypeExpr
	if !p.cur.is("=") {
		t, err := p.tryType()
		if err != nil {
			return nil, err
		}
		typ = t
		span = joinSpan(span, t.Span())

		if !p.skipWhitespaceTo("=") {
			return ast.NewDefinitionStmt(typ, name, nil, span), nil
		}
	}

	p.cur.next()

	value, err := p.requiredExpression()
	if err != nil {
		return nil, err
	}
	return ast.NewDefinitionStmt(typ, name, value, joinSpan(span, value.Span())), nil
}
