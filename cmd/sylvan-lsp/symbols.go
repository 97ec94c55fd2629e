package main

import (
	"context"

	"go.lsp.dev/protocol"

	"github.com/sylvanparse/sylvan/tree"
)

func (s *Server) DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]interface{}, error) {
	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil {
		return nil, nil
	}
	syms := symbolsFor(doc, doc.tree.RootNode())
	out := make([]interface{}, len(syms))
	for i := range syms {
		out[i] = syms[i]
	}
	return out, nil
}

func symbolsFor(doc *document, n tree.Node) []protocol.DocumentSymbol {
	var out []protocol.DocumentSymbol
	for i := 0; i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c.IsExtra() || c.IsError() {
			continue
		}
		out = append(out, protocol.DocumentSymbol{
			Name:           symbolName(doc, c),
			Detail:         c.Kind(),
			Kind:           symbolKind(c),
			Range:          rangeFor(doc.src, c),
			SelectionRange: rangeFor(doc.src, c),
			Children:       symbolsFor(doc, c),
		})
	}
	return out
}

func symbolName(doc *document, n tree.Node) string {
	if n.ChildCount() == 0 {
		if text := n.Text(doc.src); text != "" {
			return text
		}
	}
	return n.Kind()
}

func symbolKind(n tree.Node) protocol.SymbolKind {
	switch n.Kind() {
	case "identifier":
		return protocol.SymbolKindVariable
	case "number":
		return protocol.SymbolKindNumber
	default:
		return protocol.SymbolKindOperator
	}
}
