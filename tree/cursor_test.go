package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type visit struct {
	Kind  string
	Field string
	Depth uint32
	Index uint32
}

func walkAll(c *TreeCursor) []visit {
	var out []visit
	for done := false; !done; {
		out = append(out, visit{
			Kind:  c.CurrentNode().Kind(),
			Field: c.FieldName(),
			Depth: c.Depth(),
			Index: c.DescendantIndex(),
		})
		if c.GotoFirstChild() {
			continue
		}
		for !c.GotoNextSibling() {
			if !c.GotoParent() {
				done = true
				break
			}
		}
	}
	return out
}

func TestCursorPreorder(t *testing.T) {
	tr := exprTree(t, testLang(t))
	c := tr.Walk()
	defer c.Close()

	want := []visit{
		{"source", "", 0, 0},
		{"binary_expression", "", 1, 1},
		{"identifier", "left", 2, 2},
		{"+", "operator", 2, 3},
		{"identifier", "right", 2, 4},
		{"comment", "", 1, 5},
	}
	if diff := cmp.Diff(want, walkAll(c)); diff != "" {
		t.Errorf("preorder walk (-want +got):\n%s", diff)
	}

	// The walk ends back on the traversal root.
	if c.CurrentNode().Kind() != "source" || c.Depth() != 0 {
		t.Errorf("cursor finished on %q depth %d", c.CurrentNode().Kind(), c.Depth())
	}
}

func TestCursorBoundaries(t *testing.T) {
	tr := exprTree(t, testLang(t))
	c := tr.Walk()
	defer c.Close()

	if c.GotoParent() || c.GotoNextSibling() {
		t.Error("moved above or beside the traversal root")
	}
	if c.FieldID() != 0 || c.FieldName() != "" {
		t.Error("root reports a field")
	}
	c.GotoFirstChild()
	c.GotoFirstChild() // left identifier
	if c.GotoFirstChild() {
		t.Error("descended below a leaf")
	}
	if got := c.CurrentNode().Kind(); got != "identifier" {
		t.Errorf("cursor on %q", got)
	}
}

func TestCursorGotoDescendant(t *testing.T) {
	tr := exprTree(t, testLang(t))
	c := tr.Walk()
	defer c.Close()

	// Enumerate once, then jump straight to each index.
	ref := walkAll(c)
	for i, want := range ref {
		if !c.GotoDescendant(uint32(i)) {
			t.Fatalf("GotoDescendant(%d) = false", i)
		}
		got := visit{
			Kind:  c.CurrentNode().Kind(),
			Field: c.FieldName(),
			Depth: c.Depth(),
			Index: c.DescendantIndex(),
		}
		if got != want {
			t.Errorf("descendant %d = %+v, want %+v", i, got, want)
		}
	}
	if c.GotoDescendant(uint32(len(ref))) {
		t.Error("jumped past the last descendant")
	}
}

func TestCursorChildForByte(t *testing.T) {
	tr := exprTree(t, testLang(t))
	c := tr.Walk()
	defer c.Close()

	if !c.GotoFirstChildForByte(6) {
		t.Fatal("no child reaches byte 6")
	}
	if got := c.CurrentNode().Kind(); got != "comment" {
		t.Errorf("child for byte 6 = %q", got)
	}

	c.Reset(tr.RootNode())
	c.GotoFirstChild() // binary_expression
	if !c.GotoFirstChildForPoint(Point{0, 3}) {
		t.Fatal("no child reaches (0,3)")
	}
	if got := c.CurrentNode().Kind(); got != "identifier" {
		t.Errorf("child for (0,3) = %q", got)
	}

	c.Reset(tr.RootNode())
	if c.GotoFirstChildForByte(50) {
		t.Error("found a child past the end of the document")
	}
}

func TestCursorCopyIsIndependent(t *testing.T) {
	tr := exprTree(t, testLang(t))
	c := tr.Walk()
	defer c.Close()
	c.GotoFirstChild()

	dup := c.Copy()
	defer dup.Close()
	dup.GotoFirstChild()

	if got := c.CurrentNode().Kind(); got != "binary_expression" {
		t.Errorf("original moved with the copy: %q", got)
	}
	if got := dup.CurrentNode().Kind(); got != "identifier" {
		t.Errorf("copy on %q", got)
	}
}

func TestCursorSubtreeRoot(t *testing.T) {
	tr := exprTree(t, testLang(t))
	bin := tr.RootNode().Child(0)
	c := bin.Walk()
	defer c.Close()

	// Depth and descendant indexes are relative to the construction
	// root, and the walk cannot escape it.
	want := []visit{
		{"binary_expression", "", 0, 0},
		{"identifier", "left", 1, 1},
		{"+", "operator", 1, 2},
		{"identifier", "right", 1, 3},
	}
	if diff := cmp.Diff(want, walkAll(c)); diff != "" {
		t.Errorf("subtree walk (-want +got):\n%s", diff)
	}
}
