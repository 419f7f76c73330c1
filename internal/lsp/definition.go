package lsp

import (
	"encoding/json"
	"math"

	"github.com/itu-lang/itu/internal/ast"
)

// Binding is a name introduced by a definition or a lambda parameter,
// together with the rune offsets it is visible in.
type Binding struct {
	Name  *ast.Ident
	Type  ast.TypeExpr // nil for definitions without a declared type
	Value ast.Expr     // nil for parameters and definitions without initializer
	Param bool

	from, to int
}

// visible reports whether the binding is in scope at offset.
func (b Binding) visible(offset int) bool {
	return b.from <= offset && offset < b.to
}

// IndexBindings collects every binding of a parsed document. A definition is
// visible from its name to the end of the enclosing block (or the document);
// a parameter is visible inside its lambda.
func IndexBindings(stmts []ast.Stmt) []Binding {
	var out []Binding

	declare := func(list []ast.Stmt, end int) {
		for _, stmt := range list {
			def, ok := stmt.(*ast.DefinitionStmt)
			if !ok || def.Name == nil {
				continue
			}
			out = append(out, Binding{
				Name:  def.Name,
				Type:  def.Type,
				Value: def.Value,
				from:  def.Name.Span().Start,
				to:    end,
			})
		}
	}

	declare(stmts, math.MaxInt)
	for _, stmt := range stmts {
		ast.Walk(stmt, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.BlockExpr:
				declare(n.Stmts, n.Span().End)
			case *ast.LambdaExpr:
				for _, p := range n.Params {
					if p.Name == nil {
						continue
					}
					out = append(out, Binding{
						Name:  p.Name,
						Type:  p.Type,
						Param: true,
						from:  p.Span().Start,
						to:    n.Span().End,
					})
				}
			}
			return true
		})
	}
	return out
}

// Resolve returns the binding ident refers to: the innermost, latest binding
// of the same name visible where ident starts.
func Resolve(bindings []Binding, ident *ast.Ident) (Binding, bool) {
	var best Binding
	found := false
	at := ident.Span().Start

	for _, b := range bindings {
		if b.Name == ident {
			return b, true
		}
		if b.Name.Name != ident.Name || !b.visible(at) {
			continue
		}
		if !found || b.from > best.from {
			best, found = b, true
		}
	}
	return best, found
}

// DefinitionParams represents definition request parameters.
type DefinitionParams struct {
	TextDocumentPositionParams
}

// Location represents a location in a document.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

func (s *Server) handleDefinition(msg *jsonrpcMessage) *jsonrpcResponse {
	var params DefinitionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return invalidParams(msg, err)
	}

	doc, ok := s.document(params.TextDocument.URI)
	if !ok || doc.Stmts == nil {
		return result(msg, nil)
	}

	location := findDefinition(doc, params.Position)
	if location == nil {
		return result(msg, nil)
	}
	return result(msg, location)
}

func findDefinition(doc *Document, pos Position) *Location {
	ident := identAt(doc.Stmts, positionToOffset(doc.Content, pos))
	if ident == nil {
		return nil
	}

	b, ok := Resolve(doc.Bindings, ident)
	if !ok {
		return nil
	}
	return &Location{URI: doc.URI, Range: identRange(b.Name)}
}

func identRange(ident *ast.Ident) Range {
	span := ident.Span()
	return spanRange(span.Line, span.Column, span.End-span.Start)
}
