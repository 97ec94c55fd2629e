package tree

import (
	"unsafe"

	"github.com/sylvanparse/sylvan/lang"
)

// Node is a value-type handle on one node: a tree reference plus an
// opaque storage token. Copying a Node copies nothing else; every
// operation is a read with no allocation. A Node's validity is scoped
// to the Tree it references: a handle obtained before an Edit observes
// the edited bookkeeping.
type Node struct {
	t *Tree
	d *NodeData

	// Coordinate shift inherited from RootNodeWithOffset.
	shift   uint32
	shiftPt Point
}

// IsNull reports whether this is the "no node" value returned at
// navigation boundaries.
func (n Node) IsNull() bool { return n.d == nil }

// Tree reports the tree this node belongs to.
func (n Node) Tree() *Tree { return n.t }

// ID is the node's opaque position token. Two nodes are identical iff
// they share a tree and an ID; a node whose storage was reused by an
// incremental parse keeps its ID in the new tree.
func (n Node) ID() uintptr { return uintptr(unsafe.Pointer(n.d)) }

// Equal reports node identity: same tree, same position token. Nodes
// from different trees are never equal, however similar their
// structure.
func (n Node) Equal(o Node) bool { return n.t == o.t && n.d == o.d }

// Same reports storage identity regardless of owning tree: true for a
// node carried into a new tree by subtree reuse.
func (n Node) Same(o Node) bool { return n.d != nil && n.d == o.d }

// KindID reports the node's grammar symbol.
func (n Node) KindID() lang.SymbolID { return n.d.sym }

// Kind reports the node's grammar symbol name.
func (n Node) Kind() string { return n.t.lang.SymbolName(n.d.sym) }

// IsNamed reports whether the node corresponds to a grammar rule
// rather than a literal token.
func (n Node) IsNamed() bool { return n.d.flags&flagNamed != 0 }

// IsMissing reports whether error recovery fabricated this zero-width
// node.
func (n Node) IsMissing() bool { return n.d.flags&flagMissing != 0 }

// IsExtra reports whether the node sits outside the grammar's required
// structure (a comment, say).
func (n Node) IsExtra() bool { return n.d.flags&flagExtra != 0 }

// IsError reports whether this node itself wraps unparsable input.
func (n Node) IsError() bool { return n.d.flags&flagError != 0 }

// HasError reports whether this node or any descendant is an error or
// missing node.
func (n Node) HasError() bool { return n.d.flags&flagHasError != 0 }

func (n Node) StartByte() uint32 { return n.d.startByte + n.shift }
func (n Node) EndByte() uint32   { return n.d.endByte + n.shift }

func (n Node) StartPoint() Point { return n.d.startPoint.shiftBy(n.shiftPt) }
func (n Node) EndPoint() Point   { return n.d.endPoint.shiftBy(n.shiftPt) }

// Range reports the node's full span.
func (n Node) Range() Range {
	return Range{
		StartByte:  n.StartByte(),
		EndByte:    n.EndByte(),
		StartPoint: n.StartPoint(),
		EndPoint:   n.EndPoint(),
	}
}

// DescendantCount reports the number of nodes in this subtree,
// including the node itself.
func (n Node) DescendantCount() uint32 { return n.d.descendants }

// Text slices the node's span out of the source the tree was parsed
// from. Offset shifts from RootNodeWithOffset are ignored: the slice is
// taken in the tree's own coordinates.
func (n Node) Text(source []byte) string {
	start, end := n.d.startByte, n.d.endByte
	if int(start) > len(source) {
		return ""
	}
	if int(end) > len(source) {
		end = uint32(len(source))
	}
	return string(source[start:end])
}

func (n Node) wrap(d *NodeData) Node {
	if d == nil {
		return Node{}
	}
	return Node{t: n.t, d: d, shift: n.shift, shiftPt: n.shiftPt}
}

// ChildCount reports the number of children, named and anonymous.
func (n Node) ChildCount() int { return len(n.d.children) }

// Child returns the i-th child, or the null node when i is out of
// range.
func (n Node) Child(i int) Node {
	if i < 0 || i >= len(n.d.children) {
		return Node{}
	}
	return n.wrap(n.d.children[i])
}

// NamedChildCount counts children that correspond to grammar rules.
func (n Node) NamedChildCount() int {
	count := 0
	for _, c := range n.d.children {
		if c.flags&flagNamed != 0 {
			count++
		}
	}
	return count
}

// NamedChild returns the i-th named child, skipping anonymous ones, or
// the null node when i is out of range.
func (n Node) NamedChild(i int) Node {
	if i < 0 {
		return Node{}
	}
	count := 0
	for _, c := range n.d.children {
		if c.flags&flagNamed == 0 {
			continue
		}
		if count == i {
			return n.wrap(c)
		}
		count++
	}
	return Node{}
}

// ChildByFieldID returns the first child occupying the given field, or
// the null node when the field is absent or optional and unfilled.
func (n Node) ChildByFieldID(id lang.FieldID) Node {
	if id == lang.NoField {
		return Node{}
	}
	for i, fid := range n.d.fieldIDs {
		if fid == id && i < len(n.d.children) {
			return n.wrap(n.d.children[i])
		}
	}
	return Node{}
}

// ChildByFieldName resolves the field name against the tree's language
// and returns the child occupying it, or the null node.
func (n Node) ChildByFieldName(name string) Node {
	id, ok := n.t.lang.FieldIDFor(name)
	if !ok {
		return Node{}
	}
	return n.ChildByFieldID(id)
}

// FieldNameForChild reports the field occupied by the i-th child, or
// "" when it has none.
func (n Node) FieldNameForChild(i int) string {
	if i < 0 || i >= len(n.d.fieldIDs) {
		return ""
	}
	return n.t.lang.FieldName(n.d.fieldIDs[i])
}

// Parent re-derives the node's parent by descending from the root.
// This is O(depth); use a TreeCursor for bulk upward traversal.
func (n Node) Parent() Node {
	if n.d == n.t.root {
		return Node{}
	}
	return n.wrap(findParent(n.t.root, n.d))
}

func findParent(root, target *NodeData) *NodeData {
	for _, c := range root.children {
		if c == target {
			return root
		}
		// Span containment prunes the descent; zero-width targets can
		// sit on a boundary shared by two siblings, so every
		// containing child is tried.
		if c.startByte <= target.startByte && c.endByte >= target.endByte {
			if p := findParent(c, target); p != nil {
				return p
			}
		}
	}
	return nil
}

func (n Node) childIndex() (Node, int) {
	parent := n.Parent()
	if parent.IsNull() {
		return Node{}, -1
	}
	for i, c := range parent.d.children {
		if c == n.d {
			return parent, i
		}
	}
	return Node{}, -1
}

// NextSibling returns the node's next sibling, or the null node at the
// end of the parent's children.
func (n Node) NextSibling() Node {
	parent, i := n.childIndex()
	if i < 0 || i+1 >= len(parent.d.children) {
		return Node{}
	}
	return n.wrap(parent.d.children[i+1])
}

// PrevSibling returns the node's previous sibling, or the null node.
func (n Node) PrevSibling() Node {
	parent, i := n.childIndex()
	if i <= 0 {
		return Node{}
	}
	return n.wrap(parent.d.children[i-1])
}

// NextNamedSibling returns the next sibling that is a named node.
func (n Node) NextNamedSibling() Node {
	parent, i := n.childIndex()
	if i < 0 {
		return Node{}
	}
	for _, c := range parent.d.children[i+1:] {
		if c.flags&flagNamed != 0 {
			return n.wrap(c)
		}
	}
	return Node{}
}

// PrevNamedSibling returns the previous sibling that is a named node.
func (n Node) PrevNamedSibling() Node {
	parent, i := n.childIndex()
	if i < 0 {
		return Node{}
	}
	for j := i - 1; j >= 0; j-- {
		if c := parent.d.children[j]; c.flags&flagNamed != 0 {
			return n.wrap(c)
		}
	}
	return Node{}
}

// DescendantForByteRange returns the smallest node whose span fully
// contains [start, end), or the null node when the range falls outside
// this node's own span.
func (n Node) DescendantForByteRange(start, end uint32) Node {
	return n.descendantForByteRange(start, end, false)
}

// NamedDescendantForByteRange is DescendantForByteRange restricted to
// named nodes.
func (n Node) NamedDescendantForByteRange(start, end uint32) Node {
	return n.descendantForByteRange(start, end, true)
}

func (n Node) descendantForByteRange(start, end uint32, namedOnly bool) Node {
	if start < n.shift || end < start {
		return Node{}
	}
	start -= n.shift
	end -= n.shift
	if n.d.startByte > start || n.d.endByte < end {
		return Node{}
	}
	best := n.d
	cur := n.d
descend:
	for {
		for _, c := range cur.children {
			if c.startByte <= start && c.endByte >= end {
				cur = c
				if !namedOnly || c.flags&flagNamed != 0 {
					best = c
				}
				continue descend
			}
		}
		return n.wrap(best)
	}
}

// DescendantForPointRange returns the smallest node whose point span
// fully contains [start, end], or the null node when the range falls
// outside this node's span.
func (n Node) DescendantForPointRange(start, end Point) Node {
	return n.descendantForPointRange(start, end, false)
}

// NamedDescendantForPointRange is DescendantForPointRange restricted
// to named nodes.
func (n Node) NamedDescendantForPointRange(start, end Point) Node {
	return n.descendantForPointRange(start, end, true)
}

func (n Node) descendantForPointRange(start, end Point, namedOnly bool) Node {
	if n.StartPoint().Cmp(start) > 0 || n.EndPoint().Cmp(end) < 0 || start.Cmp(end) > 0 {
		return Node{}
	}
	best := n.d
	cur := n.d
descend:
	for {
		for _, c := range cur.children {
			cs := c.startPoint.shiftBy(n.shiftPt)
			ce := c.endPoint.shiftBy(n.shiftPt)
			if cs.Cmp(start) <= 0 && ce.Cmp(end) >= 0 {
				cur = c
				if !namedOnly || c.flags&flagNamed != 0 {
					best = c
				}
				continue descend
			}
		}
		return n.wrap(best)
	}
}

// Walk returns a cursor rooted at this node.
func (n Node) Walk() *TreeCursor {
	return newCursor(n)
}
