package ast

import "github.com/itu-lang/itu/internal/lexer"

// Primitive enumerates the built-in type leaves.
type Primitive int

const (
	I08 Primitive = iota
	I16
	I32
	I64
	I128
	U08
	U16
	U32
	U64
	U128
	F32
	F64
	Char
	Str
	Bool
	Any
)

var primitiveNames = [...]string{
	I08:  "i08",
	I16:  "i16",
	I32:  "i32",
	I64:  "i64",
	I128: "i128",
	U08:  "u08",
	U16:  "u16",
	U32:  "u32",
	U64:  "u64",
	U128: "u128",
	F32:  "f32",
	F64:  "f64",
	Char: "char",
	Str:  "str",
	Bool: "bool",
	Any:  "any",
}

var primitiveByName = func() map[string]Primitive {
	m := make(map[string]Primitive, len(primitiveNames))
	for p, name := range primitiveNames {
		m[name] = Primitive(p)
	}
	return m
}()

// LookupPrimitive maps a type keyword to its Primitive.
func LookupPrimitive(name string) (Primitive, bool) {
	p, ok := primitiveByName[name]
	return p, ok
}

func (p Primitive) String() string {
	if p < 0 || int(p) >= len(primitiveNames) {
		return "?"
	}
	return primitiveNames[p]
}

// PrimitiveType is a built-in type such as i32 or any.
type PrimitiveType struct {
	Kind Primitive
	span lexer.Span
}

// Span returns the type span.
func (t *PrimitiveType) Span() lexer.Span { return t.span }

// NewPrimitiveType constructs a primitive type node.
func NewPrimitiveType(kind Primitive, span lexer.Span) *PrimitiveType {
	return &PrimitiveType{Kind: kind, span: span}
}

func (*PrimitiveType) typeNode() {}

// NamedType is a nominal or generic type reference written as an identifier.
type NamedType struct {
	Name string
	span lexer.Span
}

// Span returns the type span.
func (t *NamedType) Span() lexer.Span { return t.span }

// NewNamedType constructs a named type node.
func NewNamedType(name string, span lexer.Span) *NamedType {
	return &NamedType{Name: name, span: span}
}

func (*NamedType) typeNode() {}

// MutType wraps an optional inner type as mutable. Inner is nil for a bare
// `mut`.
type MutType struct {
	Inner TypeExpr
	span  lexer.Span
}

// Span returns the type span.
func (t *MutType) Span() lexer.Span { return t.span }

// NewMutType constructs a mutability wrapper.
func NewMutType(inner TypeExpr, span lexer.Span) *MutType {
	return &MutType{Inner: inner, span: span}
}

func (*MutType) typeNode() {}

// ArrayType represents [Elem] or [Elem; Len].
type ArrayType struct {
	Elem TypeExpr
	Len  Expr
	span lexer.Span
}

// Span returns the array type span.
func (t *ArrayType) Span() lexer.Span { return t.span }

// NewArrayType constructs an array type node.
func NewArrayType(elem TypeExpr, len Expr, span lexer.Span) *ArrayType {
	return &ArrayType{Elem: elem, Len: len, span: span}
}

func (*ArrayType) typeNode() {}

// IsAny reports whether t is the any wildcard.
func IsAny(t TypeExpr) bool {
	p, ok := t.(*PrimitiveType)
	return ok && p.Kind == Any
}

// CompareTypes reports whether a and b are compatible. any on either side
// matches everything, otherwise the types must be structurally equal.
//
// The relation is reflexive and symmetric but not transitive: any matches
// both i32 and str while i32 does not match str. Only the outermost type is
// treated as a wildcard; [any] does not match [i32].
func CompareTypes(a, b TypeExpr) bool {
	if IsAny(a) || IsAny(b) {
		return true
	}
	return Equal(a, b)
}
