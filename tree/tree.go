package tree

import (
	"sync/atomic"

	"github.com/sylvanparse/sylvan/lang"
)

// Tree is a snapshot of one full parse. It owns its node storage and a
// copy of the included ranges that produced it, and it retains its
// Language for its whole lifetime.
//
// Dupe gives O(1) handles over the same storage for sharing across
// goroutines; a tree must not be edited while any handle over the same
// storage is being read elsewhere.
type Tree struct {
	root   *NodeData
	lang   *lang.Language
	ranges []Range
	refs   *atomic.Int32
}

// New wraps a finished parse. The tree takes its own reference on l and
// keeps its own copy of ranges.
func New(root *NodeData, l *lang.Language, ranges []Range) *Tree {
	t := &Tree{
		root: root,
		lang: l.Retain(),
		refs: new(atomic.Int32),
	}
	if len(ranges) > 0 {
		t.ranges = make([]Range, len(ranges))
		copy(t.ranges, ranges)
	} else {
		t.ranges = []Range{WholeDocument}
	}
	t.refs.Store(1)
	return t
}

// Dupe returns a new handle sharing this tree's storage. Use it before
// handing the tree to another goroutine for reading.
func (t *Tree) Dupe() *Tree {
	t.refs.Add(1)
	return &Tree{root: t.root, lang: t.lang.Retain(), ranges: t.ranges, refs: t.refs}
}

// Close releases this handle. The language reference is dropped with
// it; storage is reclaimed once no handle or reused subtree points at
// it.
func (t *Tree) Close() {
	if t == nil || t.root == nil {
		return
	}
	t.lang.Release()
	t.refs.Add(-1)
	t.root = nil
}

// Language reports the grammar this tree was parsed with.
func (t *Tree) Language() *lang.Language { return t.lang }

// IncludedRanges reports the ranges the parser consumed to build this
// tree. A whole-document parse reports the single unbounded range.
func (t *Tree) IncludedRanges() []Range {
	out := make([]Range, len(t.ranges))
	copy(out, t.ranges)
	return out
}

// RootNode returns the root as a Node handle.
func (t *Tree) RootNode() Node {
	return Node{t: t, d: t.root}
}

// RootNodeWithOffset returns a root handle whose coordinates are
// shifted forward by the given offsets, for composing a sub-document
// parse into an enclosing document's coordinate space.
func (t *Tree) RootNodeWithOffset(byteOffset uint32, extent Point) Node {
	return Node{t: t, d: t.root, shift: byteOffset, shiftPt: extent}
}

// Walk returns a cursor positioned on the root.
func (t *Tree) Walk() *TreeCursor {
	return t.RootNode().Walk()
}

// Root exposes the root storage for automaton drivers.
func (t *Tree) Root() *NodeData { return t.root }
