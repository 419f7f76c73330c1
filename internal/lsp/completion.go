package lsp

import (
	"encoding/json"
	"sort"

	"github.com/itu-lang/itu/internal/ast"
	"github.com/itu-lang/itu/internal/lexer"
)

// CompletionParams represents completion request parameters.
type CompletionParams struct {
	TextDocumentPositionParams
}

// TextDocumentPositionParams represents a position in a text document.
type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// CompletionList represents a list of completion items.
type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

type CompletionItem struct {
	Label  string `json:"label"`
	Kind   int    `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

const (
	completionKindFunction      = 3
	completionKindVariable      = 6
	completionKindKeyword       = 14
	completionKindTypeParameter = 25
)

func (s *Server) handleCompletion(msg *jsonrpcMessage) *jsonrpcResponse {
	var params CompletionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return invalidParams(msg, err)
	}

	var items []CompletionItem
	if doc, ok := s.document(params.TextDocument.URI); ok {
		items = getCompletions(doc, params.Position)
	} else {
		items = staticCompletions()
	}
	return result(msg, CompletionList{Items: items})
}

// getCompletions offers the names in scope at pos, then keywords and types.
// While the document does not parse only the static items are offered.
func getCompletions(doc *Document, pos Position) []CompletionItem {
	offset := positionToOffset(doc.Content, pos)

	// Later bindings shadow earlier ones of the same name.
	inScope := make(map[string]Binding)
	for _, b := range doc.Bindings {
		if !b.visible(offset) {
			continue
		}
		if prev, ok := inScope[b.Name.Name]; !ok || b.from > prev.from {
			inScope[b.Name.Name] = b
		}
	}

	items := make([]CompletionItem, 0, len(inScope))
	for name, b := range inScope {
		kind := completionKindVariable
		if _, ok := b.Value.(*ast.LambdaExpr); ok {
			kind = completionKindFunction
		}
		items = append(items, CompletionItem{Label: name, Kind: kind, Detail: signature(b)})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })

	return append(items, staticCompletions()...)
}

func staticCompletions() []CompletionItem {
	items := []CompletionItem{
		{Label: lexer.KwMut, Kind: completionKindKeyword},
		{Label: "true", Kind: completionKindKeyword},
		{Label: "false", Kind: completionKindKeyword},
	}
	for p := ast.I08; p <= ast.Any; p++ {
		items = append(items, CompletionItem{Label: p.String(), Kind: completionKindTypeParameter, Detail: "type"})
	}
	return items
}
