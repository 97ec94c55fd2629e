package tree

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sylvanparse/sylvan/lang"
)

const (
	symEnd lang.SymbolID = iota
	symIdent
	symNumber
	symPlus
	symComment
	symBinary
	symSource
)

const (
	fieldLeft lang.FieldID = iota + 1
	fieldOperator
	fieldRight
)

func testLang(t *testing.T) *lang.Language {
	t.Helper()
	l, err := lang.New(lang.Config{
		Name: "toy",
		Symbols: []lang.Symbol{
			{Name: "end", Kind: lang.KindAuxiliary},
			{Name: "identifier", Kind: lang.KindNamed},
			{Name: "number", Kind: lang.KindNamed},
			{Name: "+", Kind: lang.KindAnonymous},
			{Name: "comment", Kind: lang.KindNamed, Extra: true},
			{Name: "binary_expression", Kind: lang.KindNamed},
			{Name: "source", Kind: lang.KindNamed},
		},
		Fields: []string{"", "left", "operator", "right"},
		Lex: func(s lang.Scanner, _ lang.StateID) lang.Token {
			return lang.Token{Sym: lang.EndSymbol}
		},
		Transition: func(lang.StateID, lang.SymbolID) lang.Action {
			return lang.Action{Type: lang.ActionAccept}
		},
		Root: symSource,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(l.Release)
	return l
}

func span(start, end uint32) Range {
	return Range{
		StartByte: start, EndByte: end,
		StartPoint: Point{Column: start}, EndPoint: Point{Column: end},
	}
}

// exprTree builds the tree for "a + b # c" by hand:
//
//	source
//	├── binary_expression
//	│   ├── left: identifier "a"      [0, 1)
//	│   ├── operator: "+"             [2, 3)
//	│   └── right: identifier "b"     [4, 5)
//	└── comment "# c"                 [6, 9)
func exprTree(t *testing.T, l *lang.Language) *Tree {
	t.Helper()
	binary := NewInternal(symBinary, true,
		[]*NodeData{
			NewLeaf(symIdent, true, span(0, 1)),
			NewLeaf(symPlus, false, span(2, 3)),
			NewLeaf(symIdent, true, span(4, 5)),
		},
		[]lang.FieldID{fieldLeft, fieldOperator, fieldRight})
	root := NewInternal(symSource, true,
		[]*NodeData{binary, NewExtraLeaf(symComment, true, span(6, 9))}, nil)
	tr := New(root, l, nil)
	t.Cleanup(tr.Close)
	return tr
}

func TestNodeNavigation(t *testing.T) {
	src := []byte("a + b # c")
	tr := exprTree(t, testLang(t))
	root := tr.RootNode()

	if got, want := root.Kind(), "source"; got != want {
		t.Fatalf("root kind = %q, want %q", got, want)
	}
	if got, want := root.DescendantCount(), uint32(6); got != want {
		t.Errorf("DescendantCount = %d, want %d", got, want)
	}
	if root.ChildCount() != 2 || root.NamedChildCount() != 2 {
		t.Errorf("root children = %d/%d named", root.ChildCount(), root.NamedChildCount())
	}

	bin := root.Child(0)
	if got, want := bin.Kind(), "binary_expression"; got != want {
		t.Fatalf("child 0 kind = %q, want %q", got, want)
	}
	if bin.NamedChildCount() != 2 {
		t.Errorf("binary named children = %d, want 2", bin.NamedChildCount())
	}
	if got := bin.NamedChild(1).StartByte(); got != 4 {
		t.Errorf("second named child starts at %d, want 4", got)
	}

	left := bin.ChildByFieldName("left")
	if left.IsNull() || left.Text(src) != "a" {
		t.Errorf("left field = %q", left.Text(src))
	}
	if got := bin.FieldNameForChild(1); got != "operator" {
		t.Errorf("FieldNameForChild(1) = %q", got)
	}
	if !bin.ChildByFieldID(fieldRight).Equal(bin.Child(2)) {
		t.Error("ChildByFieldID(right) != Child(2)")
	}
	if !bin.ChildByFieldName("nope").IsNull() {
		t.Error("unknown field is not null")
	}

	op := bin.Child(1)
	if op.IsNamed() || op.Kind() != "+" {
		t.Errorf("operator node: named=%v kind=%q", op.IsNamed(), op.Kind())
	}
	if !op.Parent().Equal(bin) {
		t.Error("operator parent != binary")
	}
	if !op.NextSibling().Equal(bin.Child(2)) || !op.PrevSibling().Equal(bin.Child(0)) {
		t.Error("sibling navigation broken")
	}
	if !left.NextNamedSibling().Equal(bin.Child(2)) {
		t.Error("NextNamedSibling skipped to wrong node")
	}
	if !bin.NextSibling().Equal(root.Child(1)) {
		t.Error("binary next sibling != comment")
	}
	if !root.Parent().IsNull() || !root.PrevSibling().IsNull() {
		t.Error("root has a parent or sibling")
	}

	if got := root.DescendantForByteRange(4, 5); !got.Equal(bin.Child(2)) {
		t.Errorf("DescendantForByteRange(4,5) = %s", got.Kind())
	}
	if got := root.NamedDescendantForPointRange(Point{0, 2}, Point{0, 3}); got.Kind() != "binary_expression" {
		t.Errorf("named descendant over operator = %q", got.Kind())
	}
	comment := root.Child(1)
	if !comment.IsExtra() || comment.Text(src) != "# c" {
		t.Errorf("comment: extra=%v text=%q", comment.IsExtra(), comment.Text(src))
	}

	want := Range{StartByte: 0, EndByte: 9, EndPoint: Point{0, 9}}
	if diff := cmp.Diff(want, root.Range()); diff != "" {
		t.Errorf("root range mismatch (-want +got):\n%s", diff)
	}
}

func TestSexp(t *testing.T) {
	tr := exprTree(t, testLang(t))
	want := `(source (binary_expression left: (identifier) operator: "+" right: (identifier)) (comment))`
	if got := tr.RootNode().String(); got != want {
		t.Errorf("sexp\n got %s\nwant %s", got, want)
	}
}

func TestSexpErrorAndMissing(t *testing.T) {
	l := testLang(t)
	root := NewInternal(symSource, true, []*NodeData{
		NewErrorLeaf(span(0, 1)),
		NewInternal(symBinary, true,
			[]*NodeData{
				NewLeaf(symIdent, true, span(2, 3)),
				NewLeaf(symPlus, false, span(4, 5)),
				NewMissing(symIdent, true, 5, Point{0, 5}),
			},
			[]lang.FieldID{fieldLeft, fieldOperator, fieldRight}),
	}, nil)
	tr := New(root, l, nil)
	defer tr.Close()

	want := `(source (ERROR) (binary_expression left: (identifier) operator: "+" right: (MISSING identifier)))`
	if got := tr.RootNode().String(); got != want {
		t.Errorf("sexp\n got %s\nwant %s", got, want)
	}
	if !tr.RootNode().HasError() {
		t.Error("root does not report the error below it")
	}
	missing := tr.RootNode().Child(1).Child(2)
	if !missing.IsMissing() || missing.StartByte() != missing.EndByte() {
		t.Error("missing node is not a zero-width missing leaf")
	}
}

func TestWriteDot(t *testing.T) {
	tr := exprTree(t, testLang(t))
	var sb strings.Builder
	if err := WriteDot(&sb, tr.RootNode()); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	for _, want := range []string{
		"digraph tree {",
		`label="source\n[0, 9)"`,
		`[label="left"]`,
		"style=filled",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dot output missing %q:\n%s", want, out)
		}
	}
}

func TestEditShiftsAndDirties(t *testing.T) {
	l := testLang(t)
	// "a+b": replace the operator with three bytes, "a***b".
	binary := NewInternal(symBinary, true,
		[]*NodeData{
			NewLeaf(symIdent, true, span(0, 1)),
			NewLeaf(symPlus, false, span(1, 2)),
			NewLeaf(symIdent, true, span(2, 3)),
		},
		[]lang.FieldID{fieldLeft, fieldOperator, fieldRight})
	tr := New(binary, l, nil)
	defer tr.Close()

	tr.Edit(InputEdit{
		StartByte: 1, OldEndByte: 2, NewEndByte: 4,
		StartPoint:  Point{0, 1},
		OldEndPoint: Point{0, 2},
		NewEndPoint: Point{0, 4},
	})

	root := tr.RootNode()
	if !tr.root.Dirty() {
		t.Error("root not marked dirty")
	}
	a, op, b := root.Child(0), root.Child(1), root.Child(2)
	if tr.root.children[0].Dirty() {
		t.Error("leaf before the edit marked dirty")
	}
	if got := a.Range(); got != span(0, 1) {
		t.Errorf("a moved to %v", got)
	}
	if !tr.root.children[1].Dirty() {
		t.Error("edited leaf not marked dirty")
	}
	if op.StartByte() != 1 || op.EndByte() != 4 {
		t.Errorf("operator span = [%d, %d)", op.StartByte(), op.EndByte())
	}
	if got := b.Range(); got != span(4, 5) {
		t.Errorf("b shifted to %v, want %v", got, span(4, 5))
	}
	if root.EndByte() != 5 {
		t.Errorf("root end = %d, want 5", root.EndByte())
	}
}

func TestEditAcrossNewline(t *testing.T) {
	l := testLang(t)
	// "a+b" with "\n" inserted after "a": points after the insertion
	// move down a row.
	binary := NewInternal(symBinary, true,
		[]*NodeData{
			NewLeaf(symIdent, true, span(0, 1)),
			NewLeaf(symPlus, false, span(1, 2)),
			NewLeaf(symIdent, true, span(2, 3)),
		}, nil)
	tr := New(binary, l, nil)
	defer tr.Close()

	tr.Edit(InputEdit{
		StartByte: 1, OldEndByte: 1, NewEndByte: 2,
		StartPoint:  Point{0, 1},
		OldEndPoint: Point{0, 1},
		NewEndPoint: Point{1, 0},
	})

	op := tr.RootNode().Child(1)
	if got := (Range{StartByte: 2, EndByte: 3, StartPoint: Point{1, 0}, EndPoint: Point{1, 1}}); op.Range() != got {
		t.Errorf("operator after newline insert = %v, want %v", op.Range(), got)
	}
	b := tr.RootNode().Child(2)
	if b.StartPoint() != (Point{1, 1}) || b.EndPoint() != (Point{1, 2}) {
		t.Errorf("b points = %v-%v", b.StartPoint(), b.EndPoint())
	}
}

func TestChangedRangesSharedStorage(t *testing.T) {
	l := testLang(t)
	a := NewLeaf(symIdent, true, span(0, 1))
	b := NewLeaf(symIdent, true, span(2, 3))
	oldOp := NewLeaf(symPlus, false, span(1, 2))
	newOp := NewLeaf(symNumber, true, span(1, 2))

	old := New(NewInternal(symBinary, true, []*NodeData{a, oldOp, b}, nil), l, nil)
	defer old.Close()
	// The new revision reuses a and b's storage but holds a different
	// middle child.
	next := New(NewInternal(symBinary, true, []*NodeData{a, newOp, b}, nil), l, nil)
	defer next.Close()

	want := []Range{span(1, 2)}
	if diff := cmp.Diff(want, old.ChangedRanges(next)); diff != "" {
		t.Errorf("changed ranges (-want +got):\n%s", diff)
	}

	// A tree diffed against a revision sharing its whole root reports
	// nothing.
	dupe := old.Dupe()
	defer dupe.Close()
	if got := old.ChangedRanges(dupe); got != nil {
		t.Errorf("self diff = %v, want nil", got)
	}
}

func TestChangedRangesMerge(t *testing.T) {
	l := testLang(t)
	mk := func(mid, rhs lang.SymbolID) *Tree {
		return New(NewInternal(symBinary, true, []*NodeData{
			NewLeaf(symIdent, true, span(0, 1)),
			NewLeaf(mid, false, span(1, 2)),
			NewLeaf(rhs, true, span(2, 3)),
		}, nil), l, nil)
	}
	old := mk(symPlus, symIdent)
	defer old.Close()
	next := mk(symEnd, symNumber)
	defer next.Close()

	// Two adjacent changed leaves coalesce into one range.
	want := []Range{span(1, 3)}
	if diff := cmp.Diff(want, old.ChangedRanges(next)); diff != "" {
		t.Errorf("changed ranges (-want +got):\n%s", diff)
	}
}

func TestRootNodeWithOffset(t *testing.T) {
	tr := exprTree(t, testLang(t))
	root := tr.RootNodeWithOffset(100, Point{2, 10})

	if root.StartByte() != 100 || root.EndByte() != 109 {
		t.Errorf("shifted span = [%d, %d)", root.StartByte(), root.EndByte())
	}
	// Row 0 positions shift by the extent's column.
	if got := root.Child(0).Child(0).StartPoint(); got != (Point{2, 10}) {
		t.Errorf("shifted start point = %v", got)
	}
	if got := root.Child(1).EndPoint(); got != (Point{2, 19}) {
		t.Errorf("shifted comment end = %v", got)
	}
	// Handles wrapped from a shifted root inherit the shift.
	if !root.Child(0).Parent().Equal(root) {
		t.Error("parent of shifted child != shifted root")
	}
}

func TestTreeHandles(t *testing.T) {
	l := testLang(t)
	refs := l.Refs()
	tr := exprTree(t, l)
	if l.Refs() != refs+1 {
		t.Errorf("tree did not retain its language: %d refs", l.Refs())
	}

	dupe := tr.Dupe()
	if l.Refs() != refs+2 {
		t.Errorf("dupe did not retain: %d refs", l.Refs())
	}
	if !dupe.RootNode().Same(tr.RootNode()) {
		t.Error("dupe does not share storage")
	}
	dupe.Close()
	if l.Refs() != refs+1 {
		t.Errorf("close did not release: %d refs", l.Refs())
	}

	want := []Range{WholeDocument}
	if diff := cmp.Diff(want, tr.IncludedRanges()); diff != "" {
		t.Errorf("default included ranges (-want +got):\n%s", diff)
	}
}
