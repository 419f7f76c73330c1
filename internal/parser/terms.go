package parser

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/itu-lang/itu/internal/ast"
	"github.com/itu-lang/itu/internal/lexer"
)

// term parses a single operand: a literal, an identifier with its index or
// call, a parenthesised lambda or group, an array literal or an arrow lambda.
// With fewer than two tokens left it returns the EOF sentinel without
// consuming anything.
func (p *Parser) term() (ast.Expr, error) {
	if p.cur.remaining() < 2 {
		return ast.NewEOFExpr(p.cur.current().Span), nil
	}

	tok := p.cur.current()

	switch tok.Type {
	case lexer.INT, lexer.FLOAT:
		value, err := parseNumber(tok)
		if err != nil {
			return nil, err
		}
		p.cur.next()
		return ast.NewNumberLit(value, tok.Span), nil

	case lexer.BOOL:
		p.cur.next()
		return ast.NewBoolLit(tok.Literal == "true", tok.Span), nil

	case lexer.STRING:
		p.cur.next()
		return ast.NewStringLit(tok.Literal, tok.Span), nil

	case lexer.CHAR:
		r, _ := utf8.DecodeRuneInString(tok.Literal)
		if r == utf8.RuneError {
			return nil, unexpectedError(tok)
		}
		p.cur.next()
		return ast.NewCharLit(r, tok.Span), nil

	case lexer.IDENT:
		ident := ast.NewIdent(tok.Literal, tok.Span)
		p.cur.next()

		if p.cur.remaining() <= 1 {
			return ident, nil
		}
		switch {
		case p.cur.is(",") || p.cur.is(")"):
			return ident, nil
		case p.cur.is("["):
			return p.index(ident)
		}
		return p.tryCall(ident)

	case lexer.SYMBOL:
		switch tok.Literal {
		case "(":
			return p.parenthesised()
		case "{":
			return p.array()
		}

	case lexer.KEYWORD:
		if tok.Literal == lexer.KwArrow {
			p.cur.next()
			body, err := p.body()
			if err != nil {
				return nil, err
			}
			return ast.NewLambdaExpr(ast.NewPrimitiveType(ast.Any, tok.Span), nil, body, joinSpan(tok.Span, body.Span())), nil
		}
	}

	return nil, unexpectedError(tok)
}

// parseNumber reads INT and FLOAT literals. Only 0x and 0b switch the base; a
// leading zero is still decimal, so 010 is ten.
func parseNumber(tok lexer.Token) (float64, error) {
	lit := tok.Literal
	if tok.Type == lexer.INT {
		base := 10
		if hasRadixPrefix(lit) {
			base = 0
		} else {
			lit = strings.ReplaceAll(lit, "_", "")
		}

		n, err := strconv.ParseInt(lit, base, 64)
		if err == nil {
			return float64(n), nil
		}
		if !errors.Is(err, strconv.ErrRange) {
			return 0, errorf(CauseUnexpectedToken, tok, "invalid number literal: %s", tok.Literal)
		}
	}

	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, errorf(CauseUnexpectedToken, tok, "invalid number literal: %s", tok.Literal)
	}
	return f, nil
}

func hasRadixPrefix(lit string) bool {
	if len(lit) < 2 || lit[0] != '0' {
		return false
	}
	switch lit[1] {
	case 'x', 'X', 'b', 'B':
		return true
	}
	return false
}

// parenthesised handles everything that starts with `(`. The matching `)` is
// found first; the token after it decides between a typed lambda (`:`), an
// untyped lambda (`->`) and a grouped expression. Each form re-reads the
// parenthesised tokens from the start.
func (p *Parser) parenthesised() (ast.Expr, error) {
	open := p.cur.current()
	start := p.cur.pos
	p.cur.next()

	if p.cur.is(")") {
		return nil, newError(CauseEmptyClause, p.cur.current(), "empty clause '()'")
	}

	for depth := 1; depth != 0; {
		switch {
		case p.cur.isType(lexer.EOF):
			err := expectedError(")", open)
			err.Message = "expected ')' to close '('"
			return nil, err
		case p.cur.is("("):
			depth++
		case p.cur.is(")"):
			depth--
		}
		p.cur.next()
	}

	switch {
	case p.cur.is(":"):
		p.debug("lambda with return type", slog.String("at", open.Span.String()))
		p.cur.pos = start

		params, err := p.params()
		if err != nil {
			return nil, err
		}
		if err := p.cur.expectContent(":"); err != nil {
			return nil, err
		}
		p.cur.next()

		ret, err := p.tryType()
		if err != nil {
			return nil, err
		}
		return p.lambda(open, ret, params)

	case p.cur.is(lexer.KwArrow):
		p.debug("untyped lambda", slog.String("at", open.Span.String()))
		p.cur.pos = start

		params, err := p.params()
		if err != nil {
			return nil, err
		}
		return p.lambda(open, ast.NewPrimitiveType(ast.Any, open.Span), params)
	}

	p.cur.pos = start
	p.cur.next()

	inner, err := p.requiredExpression()
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()
	if err := p.cur.expectContent(")"); err != nil {
		return nil, err
	}
	p.cur.next()

	if p.cur.is("[") {
		return p.index(inner)
	}
	if p.cur.remaining() > 1 {
		return p.tryCall(inner)
	}
	return inner, nil
}

// lambda finishes a lambda once its parameters and return type are known; the
// cursor is on the arrow.
func (p *Parser) lambda(open lexer.Token, ret ast.TypeExpr, params []*ast.Param) (ast.Expr, error) {
	if err := p.cur.expectContent(lexer.KwArrow); err != nil {
		return nil, err
	}
	p.cur.next()

	body, err := p.body()
	if err != nil {
		return nil, err
	}
	return ast.NewLambdaExpr(ret, params, body, joinSpan(open.Span, body.Span())), nil
}

// params parses `(name[: type], ...)`. Parameters without a type are any.
func (p *Parser) params() ([]*ast.Param, error) {
	if err := p.cur.expectContent("("); err != nil {
		return nil, err
	}
	p.cur.next()

	var params []*ast.Param

	for !p.cur.is(")") {
		if p.cur.is(",") {
			p.cur.next()
		}

		tok := p.cur.current()
		if tok.Type != lexer.IDENT {
			return nil, errorf(CauseExpectedParameter, tok, "expected parameter: %s", typeText(tok))
		}
		name := ast.NewIdent(tok.Literal, tok.Span)
		p.cur.next()

		var typ ast.TypeExpr = ast.NewPrimitiveType(ast.Any, tok.Span)
		if p.cur.is(":") {
			p.cur.next()

			t, err := p.tryType()
			if err != nil {
				return nil, err
			}
			typ = t
		}

		params = append(params, ast.NewParam(typ, name, joinSpan(tok.Span, typ.Span())))
	}
	p.cur.next()

	return params, nil
}

// index parses `[expr]` suffixes after target. Suffixes chain: a[1][2].
func (p *Parser) index(target ast.Expr) (ast.Expr, error) {
	for p.cur.is("[") {
		p.cur.next()

		idx, err := p.requiredExpression()
		if err != nil {
			return nil, err
		}

		p.skipWhitespace()
		if err := p.cur.expectContent("]"); err != nil {
			return nil, err
		}
		closing := p.cur.current()
		p.cur.next()

		target = ast.NewIndexExpr(target, idx, joinSpan(target.Span(), closing.Span))
	}
	return target, nil
}

// array parses `{a, b, ...}`. A trailing comma before `}` is allowed.
func (p *Parser) array() (ast.Expr, error) {
	open := p.cur.current()
	p.cur.next()

	var elems []ast.Expr

	for first := true; !p.cur.is("}"); first = false {
		if p.cur.is(",") {
			p.cur.next()
			p.skipWhitespace()
			if p.cur.is("}") {
				break
			}
		} else if !first {
			p.skipWhitespace()
			break
		}

		elem, err := p.requiredExpression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}

	if err := p.cur.expectContent("}"); err != nil {
		return nil, err
	}
	closing := p.cur.current()
	p.cur.next()

	arr := ast.NewArrayLiteral(elems, joinSpan(open.Span, closing.Span))
	if p.cur.is("[") {
		return p.index(arr)
	}
	return arr, nil
}
