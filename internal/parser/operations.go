package parser

import (
	"github.com/itu-lang/itu/internal/ast"
	"github.com/itu-lang/itu/internal/lexer"
)

type pendingOp struct {
	op   ast.Operand
	rank int
}

// operation folds the operator chain that follows initial into a tree. It
// keeps an operand stack and an operator stack. Before an operator is pushed,
// every waiting operator of the same or a tighter rank is reduced, so
// tighter operators end up deeper and equal ranks group to the left.
//
//	1 + 2 * 3   ->  (+ 1 (* 2 3))
//	1 - 2 - 3   ->  (- (- 1 2) 3)
//
// The cursor is on the first operator.
func (p *Parser) operation(initial ast.Expr) (ast.Expr, error) {
	operands := []ast.Expr{initial}
	var ops []pendingOp

	reduce := func() {
		n := len(operands)
		left, right := operands[n-2], operands[n-1]
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		operands = append(operands[:n-2], ast.NewOperationExpr(left, top.op, right, joinSpan(left.Span(), right.Span())))
	}

	for first := true; first || p.operatorAhead(); first = false {
		next, err := p.operator()
		if err != nil {
			return nil, err
		}

		for len(ops) > 0 && ops[len(ops)-1].rank <= next.rank {
			reduce()
		}
		ops = append(ops, next)

		operand, err := p.term()
		if err != nil {
			return nil, err
		}
		if ast.IsEOF(operand) {
			return nil, errorf(CauseExpectedExpression, p.cur.current(), "expected expression after '%s', found %s", next.op, describe(p.cur.current()))
		}
		operands = append(operands, operand)
	}

	for len(ops) > 0 {
		reduce()
	}

	return operands[0], nil
}

// operator consumes the operator under the cursor and a single line break
// directly after it, together with that line's indentation.
func (p *Parser) operator() (pendingOp, error) {
	tok := p.cur.current()

	op, rank, ok := ast.LookupOperand(tok.Literal)
	if tok.Type != lexer.OPERATOR || !ok {
		return pendingOp{}, errorf(CauseUnexpectedToken, tok, "unknown operator: %s", typeText(tok))
	}
	p.cur.next()

	if p.cur.is(lexer.Newline) {
		p.cur.next()
		for p.cur.isType(lexer.INDENT) {
			p.cur.next()
		}
	}

	return pendingOp{op: op, rank: rank}, nil
}
