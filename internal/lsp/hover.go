package lsp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itu-lang/itu/internal/ast"
)

// HoverParams represents hover request parameters.
type HoverParams struct {
	TextDocumentPositionParams
}

// Hover represents hover information.
type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

func (s *Server) handleHover(msg *jsonrpcMessage) *jsonrpcResponse {
	var params HoverParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return invalidParams(msg, err)
	}

	doc, ok := s.document(params.TextDocument.URI)
	if !ok || doc.Stmts == nil {
		return result(msg, nil)
	}

	hover := getHover(doc, params.Position)
	if hover == nil {
		return result(msg, nil)
	}
	return result(msg, hover)
}

func getHover(doc *Document, pos Position) *Hover {
	ident := identAt(doc.Stmts, positionToOffset(doc.Content, pos))
	if ident == nil {
		return nil
	}

	b, ok := Resolve(doc.Bindings, ident)
	if !ok {
		return nil
	}

	r := identRange(ident)
	return &Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: fmt.Sprintf("```itu\n%s\n```", signature(b)),
		},
		Range: &r,
	}
}

// signature renders a binding the way it would be declared.
func signature(b Binding) string {
	name := b.Name.Name
	if lambda, ok := b.Value.(*ast.LambdaExpr); ok && b.Type == nil {
		return name + " := " + lambdaSignature(lambda)
	}
	if b.Type == nil {
		return name + " := " + ast.Format(b.Value)
	}

	sig := name + ": " + typeString(b.Type)
	if b.Param {
		sig += " (parameter)"
	}
	return sig
}

func lambdaSignature(l *ast.LambdaExpr) string {
	parts := make([]string, len(l.Params))
	for i, p := range l.Params {
		parts[i] = p.Name.Name + ": " + typeString(p.Type)
	}
	return "(" + strings.Join(parts, ", ") + "): " + typeString(l.ReturnType) + " -> ..."
}

func typeString(t ast.TypeExpr) string {
	if t == nil {
		return "any"
	}
	return ast.Format(t)
}

// identAt returns the identifier covering the rune offset, if any.
func identAt(stmts []ast.Stmt, offset int) *ast.Ident {
	var found *ast.Ident
	for _, stmt := range stmts {
		ast.Walk(stmt, func(n ast.Node) bool {
			if found != nil {
				return false
			}
			if ident, ok := n.(*ast.Ident); ok {
				span := ident.Span()
				if offset >= span.Start && offset < span.End {
					found = ident
					return false
				}
			}
			return true
		})
		if found != nil {
			break
		}
	}
	return found
}

// positionToOffset converts a 0-based line and character into a rune offset,
// which is what token spans count in. Characters past the end of a line clamp
// to the line break.
func positionToOffset(content string, pos Position) int {
	line, col := 0, 0
	offset := 0

	for _, r := range content {
		if line == pos.Line && (col == pos.Character || r == '\n') {
			return offset
		}
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
		offset++
	}
	return offset
}
