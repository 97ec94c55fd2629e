package tree

import (
	"sync"

	"github.com/sylvanparse/sylvan/lang"
)

type cursorFrame struct {
	d *NodeData
	// childIdx is this node's index among its parent's children;
	// meaningless for the bottom frame.
	childIdx int
	// descIdx is the node's index in a preorder enumeration of the
	// cursor root's descendants.
	descIdx uint32
}

// TreeCursor walks a tree depth-first with O(1) amortized step cost.
// It keeps its own ancestor stack, which is what makes bulk traversal
// much cheaper than chaining Node.Parent and Node.Child calls: no
// ancestor state is ever re-derived.
//
// Depth and descendant indexes are relative to the node the cursor was
// constructed from, not the tree root. A cursor owns private state:
// share one across goroutines only via Copy, and Close it when done.
type TreeCursor struct {
	t       *Tree
	stack   []cursorFrame
	shift   uint32
	shiftPt Point
}

var cursorPool = sync.Pool{
	New: func() any {
		return &TreeCursor{stack: make([]cursorFrame, 0, 32)}
	},
}

func newCursor(n Node) *TreeCursor {
	c := cursorPool.Get().(*TreeCursor)
	c.Reset(n)
	return c
}

// Reset repositions the cursor on n, making n the new traversal root.
func (c *TreeCursor) Reset(n Node) {
	c.t = n.t
	c.shift = n.shift
	c.shiftPt = n.shiftPt
	c.stack = c.stack[:0]
	c.stack = append(c.stack, cursorFrame{d: n.d})
}

// Copy duplicates the cursor, traversal state included. Cursors never
// share state implicitly.
func (c *TreeCursor) Copy() *TreeCursor {
	dup := cursorPool.Get().(*TreeCursor)
	dup.t = c.t
	dup.shift = c.shift
	dup.shiftPt = c.shiftPt
	dup.stack = append(dup.stack[:0], c.stack...)
	return dup
}

// Close releases the cursor's traversal state. The cursor must not be
// used afterwards.
func (c *TreeCursor) Close() {
	if c == nil {
		return
	}
	c.t = nil
	c.stack = c.stack[:0]
	cursorPool.Put(c)
}

func (c *TreeCursor) top() *cursorFrame {
	return &c.stack[len(c.stack)-1]
}

// CurrentNode returns the node the cursor is on.
func (c *TreeCursor) CurrentNode() Node {
	return Node{t: c.t, d: c.top().d, shift: c.shift, shiftPt: c.shiftPt}
}

// Depth reports how far below the construction root the cursor is.
func (c *TreeCursor) Depth() uint32 {
	return uint32(len(c.stack) - 1)
}

// DescendantIndex reports the current node's index in a preorder
// enumeration of the construction root's descendants; the root itself
// is 0.
func (c *TreeCursor) DescendantIndex() uint32 {
	return c.top().descIdx
}

// FieldID reports the field the current node occupies on its parent,
// or NoField.
func (c *TreeCursor) FieldID() lang.FieldID {
	if len(c.stack) < 2 {
		return lang.NoField
	}
	parent := c.stack[len(c.stack)-2].d
	top := c.top()
	if top.childIdx < len(parent.fieldIDs) {
		return parent.fieldIDs[top.childIdx]
	}
	return lang.NoField
}

// FieldName reports the field name for the current node, or "".
func (c *TreeCursor) FieldName() string {
	return c.t.lang.FieldName(c.FieldID())
}

// GotoFirstChild descends to the current node's first child. It
// returns false, leaving the cursor in place, if there are none.
func (c *TreeCursor) GotoFirstChild() bool {
	top := c.top()
	if len(top.d.children) == 0 {
		return false
	}
	c.stack = append(c.stack, cursorFrame{
		d:        top.d.children[0],
		childIdx: 0,
		descIdx:  top.descIdx + 1,
	})
	return true
}

// GotoNextSibling moves to the next sibling, returning false at the
// end of the parent's children or on the traversal root.
func (c *TreeCursor) GotoNextSibling() bool {
	if len(c.stack) < 2 {
		return false
	}
	parent := c.stack[len(c.stack)-2].d
	top := c.top()
	next := top.childIdx + 1
	if next >= len(parent.children) {
		return false
	}
	c.stack[len(c.stack)-1] = cursorFrame{
		d:        parent.children[next],
		childIdx: next,
		descIdx:  top.descIdx + top.d.descendants,
	}
	return true
}

// GotoParent moves up one level, returning false on the traversal
// root.
func (c *TreeCursor) GotoParent() bool {
	if len(c.stack) < 2 {
		return false
	}
	c.stack = c.stack[:len(c.stack)-1]
	return true
}

// GotoFirstChildForByte descends to the first child whose span extends
// past the given byte offset, skipping earlier siblings without
// visiting them. Returns false, cursor unmoved, when no child reaches
// the offset.
func (c *TreeCursor) GotoFirstChildForByte(offset uint32) bool {
	if offset >= c.shift {
		offset -= c.shift
	} else {
		offset = 0
	}
	top := c.top()
	descIdx := top.descIdx + 1
	for i, child := range top.d.children {
		if child.endByte > offset {
			c.stack = append(c.stack, cursorFrame{d: child, childIdx: i, descIdx: descIdx})
			return true
		}
		descIdx += child.descendants
	}
	return false
}

// GotoFirstChildForPoint is GotoFirstChildForByte in point
// coordinates.
func (c *TreeCursor) GotoFirstChildForPoint(p Point) bool {
	top := c.top()
	descIdx := top.descIdx + 1
	for i, child := range top.d.children {
		if child.endPoint.shiftBy(c.shiftPt).Cmp(p) > 0 {
			c.stack = append(c.stack, cursorFrame{d: child, childIdx: i, descIdx: descIdx})
			return true
		}
		descIdx += child.descendants
	}
	return false
}

// GotoDescendant repositions the cursor on the idx-th node of a
// preorder enumeration of the construction root's descendants, where 0
// is the root itself. The jump costs O(depth), not a re-walk.
func (c *TreeCursor) GotoDescendant(idx uint32) bool {
	root := c.stack[0]
	if idx >= root.d.descendants {
		return false
	}
	c.stack = c.stack[:1]
	cur := root.d
	curIdx := uint32(0)
	for curIdx != idx {
		childDescIdx := curIdx + 1
		for i, child := range cur.children {
			if idx < childDescIdx+child.descendants {
				c.stack = append(c.stack, cursorFrame{d: child, childIdx: i, descIdx: childDescIdx})
				cur = child
				curIdx = childDescIdx
				break
			}
			childDescIdx += child.descendants
		}
	}
	return true
}
