package ast

// Walk traverses the AST starting from node, calling fn for each node.
// If fn returns false, Walk stops traversing that branch.
func Walk(node Node, fn func(Node) bool) {
	if isNil(node) || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *BlockExpr:
		for _, stmt := range n.Stmts {
			Walk(stmt, fn)
		}

	case *OperationExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *CallExpr:
		Walk(n.Callee, fn)
		for _, arg := range n.Args {
			Walk(arg, fn)
		}

	case *LambdaExpr:
		for _, param := range n.Params {
			Walk(param, fn)
		}
		if n.ReturnType != nil {
			Walk(n.ReturnType, fn)
		}
		Walk(n.Body, fn)

	case *Param:
		if n.Type != nil {
			Walk(n.Type, fn)
		}
		if n.Name != nil {
			Walk(n.Name, fn)
		}

	case *ArrayLiteral:
		for _, elem := range n.Elems {
			Walk(elem, fn)
		}

	case *IndexExpr:
		Walk(n.Target, fn)
		Walk(n.Index, fn)

	case *ExprStmt:
		Walk(n.Expr, fn)

	case *AssignStmt:
		Walk(n.Target, fn)
		Walk(n.Value, fn)

	case *DefinitionStmt:
		if n.Type != nil {
			Walk(n.Type, fn)
		}
		if n.Name != nil {
			Walk(n.Name, fn)
		}
		if n.Value != nil {
			Walk(n.Value, fn)
		}

	case *MutType:
		if n.Inner != nil {
			Walk(n.Inner, fn)
		}

	case *ArrayType:
		Walk(n.Elem, fn)
		if n.Len != nil {
			Walk(n.Len, fn)
		}
	}
}

// Count returns the number of nodes reachable from stmts.
func Count(stmts []Stmt) int {
	n := 0
	for _, stmt := range stmts {
		Walk(stmt, func(Node) bool {
			n++
			return true
		})
	}
	return n
}
