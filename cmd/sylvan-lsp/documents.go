package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"unicode/utf8"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/sylvanparse/sylvan/lang"
	"github.com/sylvanparse/sylvan/parse"
	"github.com/sylvanparse/sylvan/tree"
)

type Server struct {
	conn jsonrpc2.Conn
	log  *slog.Logger
	docs *documentStore
}

func NewServer(l *lang.Language, log *slog.Logger) (*Server, error) {
	p := parse.NewParser()
	if err := p.SetLanguage(l); err != nil {
		return nil, err
	}
	return &Server{
		log: log,
		docs: &documentStore{
			parser: p,
			docs:   make(map[string]*document),
		},
	}, nil
}

type document struct {
	uri     protocol.DocumentURI
	version int32
	src     []byte
	tree    *tree.Tree
}

// documentStore owns the server's single parser; the mutex serializes
// parses along with document access.
type documentStore struct {
	mu     sync.Mutex
	parser *parse.Parser
	docs   map[string]*document
}

func (ds *documentStore) get(uri string) *document {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.docs[uri]
}

func (ds *documentStore) open(uri protocol.DocumentURI, version int32, text string) (*document, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	src := []byte(text)
	t, err := ds.parser.Parse(src, nil)
	if err != nil {
		return nil, err
	}
	doc := &document{uri: uri, version: version, src: src, tree: t}
	if old := ds.docs[string(uri)]; old != nil {
		old.tree.Close()
	}
	ds.docs[string(uri)] = doc
	return doc, nil
}

func (ds *documentStore) change(uri protocol.DocumentURI, version int32, changes []protocol.TextDocumentContentChangeEvent) (*document, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	doc := ds.docs[string(uri)]
	if doc == nil {
		return nil, fmt.Errorf("change for unopened document %s", uri)
	}
	src := doc.src
	for _, ch := range changes {
		start := offsetAt(src, ch.Range.Start)
		end := offsetAt(src, ch.Range.End)
		if end < start {
			end = start
		}
		edit := tree.InputEdit{
			StartByte:   start,
			OldEndByte:  end,
			NewEndByte:  start + uint32(len(ch.Text)),
			StartPoint:  pointAt(src, start),
			OldEndPoint: pointAt(src, end),
		}
		next := make([]byte, 0, len(src)-int(end-start)+len(ch.Text))
		next = append(next, src[:start]...)
		next = append(next, ch.Text...)
		next = append(next, src[end:]...)
		src = next
		edit.NewEndPoint = pointAt(src, edit.NewEndByte)
		doc.tree.Edit(edit)
	}
	t, err := ds.parser.Parse(src, doc.tree)
	if err != nil {
		return nil, err
	}
	doc.tree.Close()
	doc.src, doc.tree, doc.version = src, t, version
	return doc, nil
}

func (ds *documentStore) close(uri protocol.DocumentURI) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if doc := ds.docs[string(uri)]; doc != nil {
		doc.tree.Close()
		delete(ds.docs, string(uri))
	}
}

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	td := params.TextDocument
	doc, err := s.docs.open(td.URI, td.Version, td.Text)
	if err != nil {
		s.log.Error("open failed", "uri", td.URI, "err", err)
		return err
	}
	s.publishDiagnostics(ctx, doc)
	return nil
}

func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	td := params.TextDocument
	doc, err := s.docs.change(td.URI, td.Version, params.ContentChanges)
	if err != nil {
		s.log.Error("change failed", "uri", td.URI, "err", err)
		return err
	}
	s.publishDiagnostics(ctx, doc)
	return nil
}

func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.docs.close(params.TextDocument.URI)
	return s.conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics,
		&protocol.PublishDiagnosticsParams{URI: params.TextDocument.URI})
}

func (s *Server) publishDiagnostics(ctx context.Context, doc *document) {
	diags := collectDiagnostics(doc)
	err := s.conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics,
		&protocol.PublishDiagnosticsParams{
			URI:         doc.uri,
			Version:     uint32(doc.version),
			Diagnostics: diags,
		})
	if err != nil {
		s.log.Error("publish diagnostics failed", "uri", doc.uri, "err", err)
	}
}

func collectDiagnostics(doc *document) []protocol.Diagnostic {
	diags := []protocol.Diagnostic{}
	root := doc.tree.RootNode()
	if !root.HasError() {
		return diags
	}
	cur := doc.tree.Walk()
	defer cur.Close()
	for done := false; !done; {
		n := cur.CurrentNode()
		switch {
		case n.IsError():
			diags = append(diags, protocol.Diagnostic{
				Range:    rangeFor(doc.src, n),
				Severity: protocol.DiagnosticSeverityError,
				Source:   lsName,
				Message:  fmt.Sprintf("unexpected %q", n.Text(doc.src)),
			})
		case n.IsMissing():
			diags = append(diags, protocol.Diagnostic{
				Range:    rangeFor(doc.src, n),
				Severity: protocol.DiagnosticSeverityError,
				Source:   lsName,
				Message:  fmt.Sprintf("missing %s", n.Kind()),
			})
		}
		// Clean subtrees hold no error or missing nodes.
		if n.HasError() && cur.GotoFirstChild() {
			continue
		}
		for !cur.GotoNextSibling() {
			if !cur.GotoParent() {
				done = true
				break
			}
		}
	}
	return diags
}

func rangeFor(src []byte, n tree.Node) protocol.Range {
	return protocol.Range{
		Start: positionFor(src, n.StartByte()),
		End:   positionFor(src, n.EndByte()),
	}
}

// offsetAt maps an LSP position, whose column counts UTF-16 code
// units, to a byte offset in src.
func offsetAt(src []byte, pos protocol.Position) uint32 {
	off := uint32(0)
	for line := uint32(0); line < pos.Line; line++ {
		i := bytes.IndexByte(src[off:], '\n')
		if i < 0 {
			return uint32(len(src))
		}
		off += uint32(i) + 1
	}
	for units := uint32(0); units < pos.Character && int(off) < len(src); {
		r, n := utf8.DecodeRune(src[off:])
		if r == '\n' {
			break
		}
		if r > 0xffff {
			units += 2
		} else {
			units++
		}
		off += uint32(n)
	}
	return off
}

// positionFor is the inverse of offsetAt.
func positionFor(src []byte, off uint32) protocol.Position {
	if int(off) > len(src) {
		off = uint32(len(src))
	}
	lineStart, row := uint32(0), uint32(0)
	for i := uint32(0); i < off; i++ {
		if src[i] == '\n' {
			row++
			lineStart = i + 1
		}
	}
	units := uint32(0)
	for rest := src[lineStart:off]; len(rest) > 0; {
		r, n := utf8.DecodeRune(rest)
		if r > 0xffff {
			units += 2
		} else {
			units++
		}
		rest = rest[n:]
	}
	return protocol.Position{Line: row, Character: units}
}

// pointAt computes the row and byte column of a byte offset, the
// coordinate system syntax trees use.
func pointAt(src []byte, off uint32) tree.Point {
	pre := src[:off]
	row := uint32(bytes.Count(pre, []byte{'\n'}))
	col := off
	if nl := bytes.LastIndexByte(pre, '\n'); nl >= 0 {
		col = off - uint32(nl) - 1
	}
	return tree.Point{Row: row, Column: col}
}
