package parser

import (
	"github.com/itu-lang/itu/internal/ast"
	"github.com/itu-lang/itu/internal/lexer"
)

// tryCall applies callee to the following tokens when they can start an
// argument. Any other token leaves callee as it is.
func (p *Parser) tryCall(callee ast.Expr) (ast.Expr, error) {
	switch p.cur.current().Type {
	case lexer.INT, lexer.FLOAT, lexer.BOOL, lexer.STRING, lexer.CHAR, lexer.IDENT:
		return p.call(callee)
	case lexer.SYMBOL:
		if p.cur.is("(") || p.cur.is("{") {
			return p.call(callee)
		}
	}
	return callee, nil
}

// call collects arguments until a line break or the end of input. The first
// argument follows the callee directly; later ones need a comma. A token that
// is neither ends the call and is left for the caller.
func (p *Parser) call(callee ast.Expr) (ast.Expr, error) {
	var args []ast.Expr
	span := callee.Span()

	for first := true; !p.cur.is(lexer.Newline); first = false {
		if p.cur.is(",") {
			p.cur.next()
		} else if !first {
			break
		}

		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		if ast.IsEOF(arg) {
			break
		}

		args = append(args, arg)
		span = joinSpan(span, arg.Span())
	}

	return ast.NewCallExpr(callee, args, span), nil
}
