package ast

// Equal reports whether a and b are structurally identical, ignoring spans.
// Nil nodes are equal only to nil.
func Equal(a, b Node) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}

	switch x := a.(type) {
	case *BlockExpr:
		y, ok := b.(*BlockExpr)
		return ok && equalStmts(x.Stmts, y.Stmts)
	case *NumberLit:
		y, ok := b.(*NumberLit)
		return ok && x.Value == y.Value
	case *BoolLit:
		y, ok := b.(*BoolLit)
		return ok && x.Value == y.Value
	case *StringLit:
		y, ok := b.(*StringLit)
		return ok && x.Value == y.Value
	case *CharLit:
		y, ok := b.(*CharLit)
		return ok && x.Value == y.Value
	case *Ident:
		y, ok := b.(*Ident)
		return ok && x.Name == y.Name
	case *OperationExpr:
		y, ok := b.(*OperationExpr)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *CallExpr:
		y, ok := b.(*CallExpr)
		return ok && Equal(x.Callee, y.Callee) && equalExprs(x.Args, y.Args)
	case *LambdaExpr:
		y, ok := b.(*LambdaExpr)
		if !ok || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if !Equal(x.Params[i], y.Params[i]) {
				return false
			}
		}
		return Equal(x.ReturnType, y.ReturnType) && Equal(x.Body, y.Body)
	case *Param:
		y, ok := b.(*Param)
		return ok && Equal(x.Type, y.Type) && Equal(x.Name, y.Name)
	case *ArrayLiteral:
		y, ok := b.(*ArrayLiteral)
		return ok && equalExprs(x.Elems, y.Elems)
	case *IndexExpr:
		y, ok := b.(*IndexExpr)
		return ok && Equal(x.Target, y.Target) && Equal(x.Index, y.Index)
	case *EOFExpr:
		_, ok := b.(*EOFExpr)
		return ok

	case *ExprStmt:
		y, ok := b.(*ExprStmt)
		return ok && Equal(x.Expr, y.Expr)
	case *AssignStmt:
		y, ok := b.(*AssignStmt)
		return ok && Equal(x.Target, y.Target) && Equal(x.Value, y.Value)
	case *DefinitionStmt:
		y, ok := b.(*DefinitionStmt)
		return ok && Equal(x.Type, y.Type) && Equal(x.Name, y.Name) && Equal(x.Value, y.Value)

	case *PrimitiveType:
		y, ok := b.(*PrimitiveType)
		return ok && x.Kind == y.Kind
	case *NamedType:
		y, ok := b.(*NamedType)
		return ok && x.Name == y.Name
	case *MutType:
		y, ok := b.(*MutType)
		return ok && Equal(x.Inner, y.Inner)
	case *ArrayType:
		y, ok := b.(*ArrayType)
		return ok && Equal(x.Elem, y.Elem) && Equal(x.Len, y.Len)
	}

	return false
}

func equalExprs(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalStmts(a, b []Stmt) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// isNil catches both untyped nil and typed nil pointers stored in an
// interface, which is how omitted optional children are represented.
func isNil(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *BlockExpr:
		return v == nil
	case *Ident:
		return v == nil
	case *MutType:
		return v == nil
	case *ArrayType:
		return v == nil
	case *PrimitiveType:
		return v == nil
	case *NamedType:
		return v == nil
	}
	return false
}
