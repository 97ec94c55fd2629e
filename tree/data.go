package tree

import "github.com/sylvanparse/sylvan/lang"

const (
	flagNamed uint8 = 1 << iota
	flagMissing
	flagExtra
	flagError    // this node is itself an error wrapper
	flagHasError // this node or a descendant is an error or missing node
	flagDirty    // span overlaps an edit applied since the last parse
)

// NodeData is a tree's internal node storage. The parser constructs it;
// everything else reads it through Node and TreeCursor handles. A
// NodeData may be shared by several trees when an incremental parse
// reuses a subtree, which is what keeps node identity stable across
// revisions.
type NodeData struct {
	sym        lang.SymbolID
	flags      uint8
	startByte  uint32
	endByte    uint32
	startPoint Point
	endPoint   Point

	children []*NodeData
	fieldIDs []lang.FieldID // parallel to children; nil when no fields

	// descendants counts this node plus everything below it, for
	// cursor descendant indexing.
	descendants uint32

	// lookahead records the terminal whose sight triggered this node's
	// reduce. Incremental reuse revalidates it before trusting the
	// subtree in a new right context.
	lookahead lang.SymbolID
}

// NewLeaf builds a terminal node covering r.
func NewLeaf(sym lang.SymbolID, named bool, r Range) *NodeData {
	d := &NodeData{
		sym:         sym,
		startByte:   r.StartByte,
		endByte:     r.EndByte,
		startPoint:  r.StartPoint,
		endPoint:    r.EndPoint,
		descendants: 1,
	}
	if named {
		d.flags |= flagNamed
	}
	return d
}

// NewMissing builds a zero-width node fabricated by error recovery at
// the given position.
func NewMissing(sym lang.SymbolID, named bool, atByte uint32, at Point) *NodeData {
	d := NewLeaf(sym, named, Range{
		StartByte: atByte, EndByte: atByte,
		StartPoint: at, EndPoint: at,
	})
	d.flags |= flagMissing | flagHasError
	return d
}

// NewErrorLeaf wraps an unparsable token span in an error node.
func NewErrorLeaf(r Range) *NodeData {
	d := NewLeaf(lang.InvalidSymbol, true, r)
	d.flags |= flagError | flagHasError
	return d
}

// NewExtraLeaf builds a leaf for an extra symbol (a comment, say).
func NewExtraLeaf(sym lang.SymbolID, named bool, r Range) *NodeData {
	d := NewLeaf(sym, named, r)
	d.flags |= flagExtra
	return d
}

// NewInternal builds a nonterminal over children, which must be in
// source order and non-empty. Fields, when non-nil, assigns a field id
// to each child in order. The span, descendant count and error flag
// derive from the children.
func NewInternal(sym lang.SymbolID, named bool, children []*NodeData, fieldIDs []lang.FieldID) *NodeData {
	d := &NodeData{
		sym:      sym,
		children: children,
		fieldIDs: fieldIDs,
	}
	if named {
		d.flags |= flagNamed
	}
	first, last := children[0], children[len(children)-1]
	d.startByte = first.startByte
	d.endByte = last.endByte
	d.startPoint = first.startPoint
	d.endPoint = last.endPoint
	d.descendants = 1
	for _, c := range children {
		d.descendants += c.descendants
		if c.flags&flagHasError != 0 {
			d.flags |= flagHasError
		}
	}
	return d
}

// NewEmpty builds a childless nonterminal for an empty document.
func NewEmpty(sym lang.SymbolID, named bool, atByte uint32, at Point) *NodeData {
	d := &NodeData{
		sym:         sym,
		startByte:   atByte,
		endByte:     atByte,
		startPoint:  at,
		endPoint:    at,
		descendants: 1,
	}
	if named {
		d.flags |= flagNamed
	}
	return d
}

// SetLookahead records the reduce-triggering terminal for reuse checks.
func (d *NodeData) SetLookahead(sym lang.SymbolID) { d.lookahead = sym }

// Lookahead reports the recorded reduce lookahead.
func (d *NodeData) Lookahead() lang.SymbolID { return d.lookahead }

// Sym reports the node's grammar symbol.
func (d *NodeData) Sym() lang.SymbolID { return d.sym }

// StartByte and EndByte report the node's byte span.
func (d *NodeData) StartByte() uint32 { return d.startByte }
func (d *NodeData) EndByte() uint32   { return d.endByte }

// StartPoint and EndPoint report the node's position span.
func (d *NodeData) StartPoint() Point { return d.startPoint }
func (d *NodeData) EndPoint() Point   { return d.endPoint }

// Children exposes the child storage for automaton drivers.
func (d *NodeData) Children() []*NodeData { return d.children }

// Dirty reports whether an edit touched this node's span since the
// last parse. Clean subtrees are reuse candidates.
func (d *NodeData) Dirty() bool { return d.flags&flagDirty != 0 }

// HasError reports whether this subtree contains an error or missing
// node.
func (d *NodeData) HasError() bool { return d.flags&flagHasError != 0 }

// IsMissing reports whether error recovery fabricated this node.
func (d *NodeData) IsMissing() bool { return d.flags&flagMissing != 0 }

// IsExtra reports whether this node is outside the grammar's required
// structure.
func (d *NodeData) IsExtra() bool { return d.flags&flagExtra != 0 }

// Leaf reports whether the node has no children.
func (d *NodeData) Leaf() bool { return len(d.children) == 0 }
