package tree

// InputEdit describes a single text mutation, in both byte offsets and
// row/column points. It is the unit of incremental-update description:
// call Tree.Edit once per discrete change, in the order the changes
// happened, before handing the tree back to the parser as a reuse base.
type InputEdit struct {
	StartByte  uint32
	OldEndByte uint32
	NewEndByte uint32

	StartPoint  Point
	OldEndPoint Point
	NewEndPoint Point
}

// Edit adjusts every byte offset and point in the tree that sits at or
// after the edit, and marks the subtrees overlapping the edited region
// so the next incremental parse knows not to reuse them. It does not
// re-parse.
//
// Skipping Edit before an incremental parse silently produces wrong
// trees: the automaton trusts the positions it is given.
func (t *Tree) Edit(e InputEdit) {
	if t.root == nil {
		return
	}
	editData(t.root, e)
}

func addDelta(v uint32, delta int64) uint32 {
	next := int64(v) + delta
	if next < 0 {
		return 0
	}
	if next > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(next)
}

// shiftPointAfter moves a point that lies at or beyond the edit's old
// end. Rows shift by the edit's row delta; a column only moves when the
// point shared the old end's row.
func shiftPointAfter(q Point, e InputEdit) Point {
	if q.Row != e.OldEndPoint.Row {
		rowDelta := int64(e.NewEndPoint.Row) - int64(e.OldEndPoint.Row)
		return Point{Row: addDelta(q.Row, rowDelta), Column: q.Column}
	}
	return Point{
		Row:    e.NewEndPoint.Row,
		Column: addDelta(e.NewEndPoint.Column, int64(q.Column)-int64(e.OldEndPoint.Column)),
	}
}

func editData(d *NodeData, e InputEdit) {
	byteDelta := int64(e.NewEndByte) - int64(e.OldEndByte)

	// Entirely before the edit: untouched, and still safe to reuse.
	if d.endByte <= e.StartByte {
		return
	}

	// Entirely after the edited region: shift the whole subtree.
	if d.startByte >= e.OldEndByte {
		shiftSubtree(d, e, byteDelta)
		return
	}

	// Overlapping the edit: the subtree's structure can no longer be
	// trusted by the incremental parser.
	d.flags |= flagDirty
	if d.startByte > e.StartByte {
		// Starts inside the replaced region.
		d.startByte = e.NewEndByte
		d.startPoint = e.NewEndPoint
	}
	if d.endByte >= e.OldEndByte {
		d.endByte = addDelta(d.endByte, byteDelta)
		d.endPoint = shiftPointAfter(d.endPoint, e)
	} else {
		d.endByte = e.NewEndByte
		d.endPoint = e.NewEndPoint
	}
	if d.endByte < d.startByte {
		d.endByte = d.startByte
		d.endPoint = d.startPoint
	}
	for _, c := range d.children {
		editData(c, e)
	}
}

func shiftSubtree(d *NodeData, e InputEdit, byteDelta int64) {
	hasTail := byteDelta != 0 || e.NewEndPoint != e.OldEndPoint
	if !hasTail {
		return
	}
	stack := []*NodeData{d}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n.startByte = addDelta(n.startByte, byteDelta)
		n.endByte = addDelta(n.endByte, byteDelta)
		n.startPoint = shiftPointAfter(n.startPoint, e)
		n.endPoint = shiftPointAfter(n.endPoint, e)
		stack = append(stack, n.children...)
	}
}
