package ast

import "github.com/itu-lang/itu/internal/lexer"

// Node represents any AST node with an associated source span.
//
// Nodes are built once by the parser through the New* constructors and are
// never mutated afterwards, so subtrees may be shared freely between parents.
type Node interface {
	Span() lexer.Span
}

// Expr represents an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// TypeExpr represents a type annotation expression.
type TypeExpr interface {
	Node
	typeNode()
}

// BlockExpr is an indentation-delimited sequence of statements.
type BlockExpr struct {
	Stmts []Stmt
	span  lexer.Span
}

// Span returns the block span.
func (b *BlockExpr) Span() lexer.Span { return b.span }

// NewBlockExpr constructs a block expression node.
func NewBlockExpr(stmts []Stmt, span lexer.Span) *BlockExpr {
	return &BlockExpr{Stmts: stmts, span: span}
}

func (*BlockExpr) exprNode() {}

// NumberLit is a numeric literal. Integer and float literals share the
// representation.
type NumberLit struct {
	Value float64
	span  lexer.Span
}

func (n *NumberLit) Span() lexer.Span { return n.span }

func NewNumberLit(value float64, span lexer.Span) *NumberLit {
	return &NumberLit{Value: value, span: span}
}

func (*NumberLit) exprNode() {}

type BoolLit struct {
	Value bool
	span  lexer.Span
}

func (b *BoolLit) Span() lexer.Span { return b.span }

func NewBoolLit(value bool, span lexer.Span) *BoolLit {
	return &BoolLit{Value: value, span: span}
}

func (*BoolLit) exprNode() {}

// StringLit holds the decoded string value (quotes and escapes removed).
type StringLit struct {
	Value string
	span  lexer.Span
}

func (s *StringLit) Span() lexer.Span { return s.span }

func NewStringLit(value string, span lexer.Span) *StringLit {
	return &StringLit{Value: value, span: span}
}

func (*StringLit) exprNode() {}

type CharLit struct {
	Value rune
	span  lexer.Span
}

func (c *CharLit) Span() lexer.Span { return c.span }

func NewCharLit(value rune, span lexer.Span) *CharLit {
	return &CharLit{Value: value, span: span}
}

func (*CharLit) exprNode() {}

// Ident represents an identifier.
type Ident struct {
	Name string
	span lexer.Span
}

// Span returns the identifier span.
func (i *Ident) Span() lexer.Span { return i.span }

// NewIdent constructs an identifier node.
func NewIdent(name string, span lexer.Span) *Ident {
	return &Ident{Name: name, span: span}
}

func (*Ident) exprNode() {}

// OperationExpr is a binary operation.
type OperationExpr struct {
	Left  Expr
	Op    Operand
	Right Expr
	span  lexer.Span
}

// Span returns the operation span.
func (o *OperationExpr) Span() lexer.Span { return o.span }

// NewOperationExpr constructs a binary operation node.
func NewOperationExpr(left Expr, op Operand, right Expr, span lexer.Span) *OperationExpr {
	return &OperationExpr{Left: left, Op: op, Right: right, span: span}
}

func (*OperationExpr) exprNode() {}

// CallExpr applies Callee to Args. Calls are written by juxtaposition, so a
// call never carries parentheses of its own.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	span   lexer.Span
}

// Span returns the call span.
func (c *CallExpr) Span() lexer.Span { return c.span }

// NewCallExpr constructs a call node.
func NewCallExpr(callee Expr, args []Expr, span lexer.Span) *CallExpr {
	return &CallExpr{Callee: callee, Args: args, span: span}
}

func (*CallExpr) exprNode() {}

// Param is a lambda parameter. Type is never nil: undeclared parameters are
// typed any.
type Param struct {
	Type TypeExpr
	Name *Ident
	span lexer.Span
}

// Span returns the parameter span.
func (p *Param) Span() lexer.Span { return p.span }

// NewParam constructs a parameter node.
func NewParam(typ TypeExpr, name *Ident, span lexer.Span) *Param {
	return &Param{Type: typ, Name: name, span: span}
}

// LambdaExpr is an anonymous function.
type LambdaExpr struct {
	ReturnType TypeExpr
	Params     []*Param
	Body       Expr
	span       lexer.Span
}

// Span returns the lambda span.
func (l *LambdaExpr) Span() lexer.Span { return l.span }

// NewLambdaExpr constructs a lambda node.
func NewLambdaExpr(returnType TypeExpr, params []*Param, body Expr, span lexer.Span) *LambdaExpr {
	return &LambdaExpr{ReturnType: returnType, Params: params, Body: body, span: span}
}

func (*LambdaExpr) exprNode() {}

// ArrayLiteral is a brace-delimited list of elements.
type ArrayLiteral struct {
	Elems []Expr
	span  lexer.Span
}

// Span returns the array literal span.
func (a *ArrayLiteral) Span() lexer.Span { return a.span }

// NewArrayLiteral constructs an array literal node.
func NewArrayLiteral(elems []Expr, span lexer.Span) *ArrayLiteral {
	return &ArrayLiteral{Elems: elems, span: span}
}

func (*ArrayLiteral) exprNode() {}

// IndexExpr is Target[Index].
type IndexExpr struct {
	Target Expr
	Index  Expr
	span   lexer.Span
}

// Span returns the index expression span.
func (i *IndexExpr) Span() lexer.Span { return i.span }

// NewIndexExpr constructs an index expression node.
func NewIndexExpr(target, index Expr, span lexer.Span) *IndexExpr {
	return &IndexExpr{Target: target, Index: index, span: span}
}

func (*IndexExpr) exprNode() {}

// EOFExpr is the end-of-stream sentinel produced while parsing lists. It never
// appears in a tree handed back to a caller.
type EOFExpr struct {
	span lexer.Span
}

func (e *EOFExpr) Span() lexer.Span { return e.span }

func NewEOFExpr(span lexer.Span) *EOFExpr {
	return &EOFExpr{span: span}
}

func (*EOFExpr) exprNode() {}

// IsEOF reports whether e is the end-of-stream sentinel.
func IsEOF(e Expr) bool {
	_, ok := e.(*EOFExpr)
	return ok
}

// ExprStmt is an expression evaluated for its value.
type ExprStmt struct {
	Expr Expr
	span lexer.Span
}

// Span returns the statement span.
func (s *ExprStmt) Span() lexer.Span { return s.span }

// NewExprStmt constructs an expression statement node.
func NewExprStmt(expr Expr, span lexer.Span) *ExprStmt {
	return &ExprStmt{Expr: expr, span: span}
}

func (*ExprStmt) stmtNode() {}

// AssignStmt represents `target = value`. Target is an *Ident or *IndexExpr.
type AssignStmt struct {
	Target Expr
	Value  Expr
	span   lexer.Span
}

// Span returns the assignment span.
func (s *AssignStmt) Span() lexer.Span { return s.span }

// NewAssignStmt constructs an assignment statement node.
func NewAssignStmt(target, value Expr, span lexer.Span) *AssignStmt {
	return &AssignStmt{Target: target, Value: value, span: span}
}

func (*AssignStmt) stmtNode() {}

// DefinitionStmt represents `name: type = value`. Type is nil when it was
// omitted (`name := value`); Value is nil when there is no initializer.
type DefinitionStmt struct {
	Type  TypeExpr
	Name  *Ident
	Value Expr
	span  lexer.Span
}

// Span returns the definition span.
func (s *DefinitionStmt) Span() lexer.Span { return s.span }

// NewDefinitionStmt constructs a definition statement node.
func NewDefinitionStmt(typ TypeExpr, name *Ident, value Expr, span lexer.Span) *DefinitionStmt {
	return &DefinitionStmt{Type: typ, Name: name, Value: value, span: span}
}

func (*DefinitionStmt) stmtNode() {}
