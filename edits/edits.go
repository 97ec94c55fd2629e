// Package edits infers tree.InputEdit sequences from two revisions of
// a document's text, for callers that only have before/after buffers
// rather than a stream of editor deltas.
package edits

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/sylvanparse/sylvan/tree"
)

// Infer computes the text diff between two revisions and expresses it
// as InputEdits in document order. Each edit's coordinates assume the
// preceding edits have been applied, which is exactly the form
// Tree.Edit consumes.
func Infer(oldSrc, newSrc []byte) []tree.InputEdit {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(oldSrc), string(newSrc), true)

	var out []tree.InputEdit
	pos := uint32(0)
	pt := tree.Point{}
	for i := 0; i < len(diffs); i++ {
		d := diffs[i]
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pos, pt = advance(pos, pt, d.Text)
		case diffmatchpatch.DiffDelete:
			var ins string
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
				// delete immediately followed by insert is one replace
				ins = diffs[i+1].Text
				i++
			}
			out = append(out, edit(pos, pt, d.Text, ins))
			pos, pt = advance(pos, pt, ins)
		case diffmatchpatch.DiffInsert:
			out = append(out, edit(pos, pt, "", d.Text))
			pos, pt = advance(pos, pt, d.Text)
		}
	}
	return out
}

// Apply edits t in place so it can serve as the reuse base for parsing
// newSrc, and reports the edits it applied.
func Apply(t *tree.Tree, oldSrc, newSrc []byte) []tree.InputEdit {
	es := Infer(oldSrc, newSrc)
	for _, e := range es {
		t.Edit(e)
	}
	return es
}

func edit(pos uint32, pt tree.Point, deleted, inserted string) tree.InputEdit {
	oldEnd, oldPt := advance(pos, pt, deleted)
	newEnd, newPt := advance(pos, pt, inserted)
	return tree.InputEdit{
		StartByte:   pos,
		OldEndByte:  oldEnd,
		NewEndByte:  newEnd,
		StartPoint:  pt,
		OldEndPoint: oldPt,
		NewEndPoint: newPt,
	}
}

func advance(pos uint32, pt tree.Point, s string) (uint32, tree.Point) {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			pt.Row++
			pt.Column = 0
		} else {
			pt.Column++
		}
	}
	return pos + uint32(len(s)), pt
}
