package tree

import "github.com/sylvanparse/sylvan/alloc"

// ChangedRanges compares this tree against a newer revision of the
// same document and reports the ranges where the tree's shape, the
// ancestor chain from root to leaf, differs. Text outside the
// returned ranges has identical node structure in both trees, which is
// what makes minimal re-analysis possible.
//
// other must be the tree produced by re-parsing the document after
// this tree was edited to match; diffing unrelated trees is
// caller-responsibility undefined behavior, not a detected error.
func (t *Tree) ChangedRanges(other *Tree) []Range {
	var buf rangeBuf
	defer buf.release()
	compareData(t.root, other.root, &buf)
	return buf.merged()
}

func compareData(a, b *NodeData, buf *rangeBuf) {
	if a == b {
		// Shared storage: the subtree was reused wholesale, spans
		// included. Nothing below it changed.
		return
	}
	if a.sym == b.sym && a.startByte == b.startByte && a.endByte == b.endByte &&
		a.flags&flagMissing == b.flags&flagMissing && len(a.children) == len(b.children) {
		for i := range a.children {
			compareData(a.children[i], b.children[i], buf)
		}
		return
	}
	buf.add(unionSpan(a, b))
}

func unionSpan(a, b *NodeData) Range {
	r := Range{
		StartByte:  a.startByte,
		EndByte:    a.endByte,
		StartPoint: a.startPoint,
		EndPoint:   a.endPoint,
	}
	if b.startByte < r.StartByte {
		r.StartByte = b.startByte
		r.StartPoint = b.startPoint
	}
	if b.endByte > r.EndByte {
		r.EndByte = b.endByte
		r.EndPoint = b.endPoint
	}
	return r
}

// rangeBuf accumulates ranges in registry-managed scratch memory; the
// merged result is copied out to an ordinary slice before release.
type rangeBuf struct {
	buf []Range
	n   int
}

func (b *rangeBuf) add(r Range) {
	if b.n == len(b.buf) {
		next := 16
		if len(b.buf) > 0 {
			next = len(b.buf) * 2
		}
		grown := alloc.Grow(b.buf, next)
		if grown == nil {
			// Allocation failure: degrade to the Go heap rather than
			// dropping a changed range.
			grown = make([]Range, next)
			copy(grown, b.buf[:b.n])
			alloc.ReleaseSlice(b.buf)
		}
		b.buf = grown
	}
	b.buf[b.n] = r
	b.n++
}

// merged coalesces overlapping and adjacent ranges. Ranges arrive in
// document order from the lockstep walk.
func (b *rangeBuf) merged() []Range {
	if b.n == 0 {
		return nil
	}
	out := make([]Range, 0, b.n)
	cur := b.buf[0]
	for _, r := range b.buf[1:b.n] {
		if r.StartByte <= cur.EndByte {
			if r.EndByte > cur.EndByte {
				cur.EndByte = r.EndByte
				cur.EndPoint = r.EndPoint
			}
			continue
		}
		out = append(out, cur)
		cur = r
	}
	return append(out, cur)
}

func (b *rangeBuf) release() {
	alloc.ReleaseSlice(b.buf)
	b.buf = nil
	b.n = 0
}
