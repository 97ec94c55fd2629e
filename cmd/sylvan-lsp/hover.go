package main

import (
	"context"
	"fmt"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/sylvanparse/sylvan/tree"
)

func (s *Server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil {
		return nil, nil
	}

	off := offsetAt(doc.src, params.Position)
	pt := pointAt(doc.src, off)
	n := doc.tree.RootNode().NamedDescendantForPointRange(pt, pt)
	if n.IsNull() {
		return nil, nil
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("**Kind:** `%s`", n.Kind()))
	if f := fieldOf(n); f != "" {
		parts = append(parts, fmt.Sprintf("**Field:** `%s`", f))
	}
	sp, ep := n.StartPoint(), n.EndPoint()
	parts = append(parts, fmt.Sprintf("**Span:** (%d,%d)-(%d,%d)", sp.Row, sp.Column, ep.Row, ep.Column))
	if text := n.Text(doc.src); text != "" {
		if len(text) > 50 {
			text = text[:50] + "..."
		}
		parts = append(parts, fmt.Sprintf("**Text:** `%s`", text))
	}
	if n.IsMissing() {
		parts = append(parts, "inserted by error recovery")
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: strings.Join(parts, "\n\n"),
		},
	}, nil
}

func fieldOf(n tree.Node) string {
	p := n.Parent()
	if p.IsNull() {
		return ""
	}
	for i := 0; i < p.ChildCount(); i++ {
		if p.Child(i).Same(n) {
			return p.FieldNameForChild(i)
		}
	}
	return ""
}
