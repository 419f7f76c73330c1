package ast

import (
	"strconv"
	"strings"
)

// Format renders node as a compact S-expression. It is a debug aid, not a
// source printer: `1 + 2 * 3` comes out as `(+ 1 (* 2 3))`.
func Format(node Node) string {
	var b strings.Builder
	writeNode(&b, node)
	return b.String()
}

// FormatStmts renders each statement on its own line.
func FormatStmts(stmts []Stmt) string {
	var b strings.Builder
	for i, stmt := range stmts {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeNode(&b, stmt)
	}
	return b.String()
}

func writeNode(b *strings.Builder, node Node) {
	if isNil(node) {
		b.WriteString("_")
		return
	}

	switch n := node.(type) {
	case *BlockExpr:
		b.WriteString("(block")
		for _, stmt := range n.Stmts {
			b.WriteByte(' ')
			writeNode(b, stmt)
		}
		b.WriteByte(')')
	case *NumberLit:
		b.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *BoolLit:
		b.WriteString(strconv.FormatBool(n.Value))
	case *StringLit:
		b.WriteString(strconv.Quote(n.Value))
	case *CharLit:
		b.WriteString(strconv.QuoteRune(n.Value))
	case *Ident:
		b.WriteString(n.Name)
	case *OperationExpr:
		b.WriteByte('(')
		b.WriteString(n.Op.String())
		b.WriteByte(' ')
		writeNode(b, n.Left)
		b.WriteByte(' ')
		writeNode(b, n.Right)
		b.WriteByte(')')
	case *CallExpr:
		b.WriteString("(call ")
		writeNode(b, n.Callee)
		for _, arg := range n.Args {
			b.WriteByte(' ')
			writeNode(b, arg)
		}
		b.WriteByte(')')
	case *LambdaExpr:
		b.WriteString("(lambda (")
		for i, param := range n.Params {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeNode(b, param)
		}
		b.WriteString(") ")
		writeNode(b, n.ReturnType)
		b.WriteByte(' ')
		writeNode(b, n.Body)
		b.WriteByte(')')
	case *Param:
		b.WriteByte('(')
		writeNode(b, n.Name)
		b.WriteByte(' ')
		writeNode(b, n.Type)
		b.WriteByte(')')
	case *ArrayLiteral:
		b.WriteString("(array")
		for _, elem := range n.Elems {
			b.WriteByte(' ')
			writeNode(b, elem)
		}
		b.WriteByte(')')
	case *IndexExpr:
		b.WriteString("(index ")
		writeNode(b, n.Target)
		b.WriteByte(' ')
		writeNode(b, n.Index)
		b.WriteByte(')')
	case *EOFExpr:
		b.WriteString("<eof>")

	case *ExprStmt:
		writeNode(b, n.Expr)
	case *AssignStmt:
		b.WriteString("(= ")
		writeNode(b, n.Target)
		b.WriteByte(' ')
		writeNode(b, n.Value)
		b.WriteByte(')')
	case *DefinitionStmt:
		b.WriteString("(def ")
		writeNode(b, n.Name)
		b.WriteByte(' ')
		writeNode(b, n.Type)
		b.WriteByte(' ')
		writeNode(b, n.Value)
		b.WriteByte(')')

	case *PrimitiveType:
		b.WriteString(n.Kind.String())
	case *NamedType:
		b.WriteString(n.Name)
	case *MutType:
		b.WriteString("(mut")
		if n.Inner != nil {
			b.WriteByte(' ')
			writeNode(b, n.Inner)
		}
		b.WriteByte(')')
	case *ArrayType:
		b.WriteByte('[')
		writeNode(b, n.Elem)
		if n.Len != nil {
			b.WriteString("; ")
			writeNode(b, n.Len)
		}
		b.WriteByte(']')

	default:
		b.WriteString("<?>")
	}
}
