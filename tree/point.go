package tree

import "fmt"

// Point is a row/column position. Columns count bytes, not characters.
type Point struct {
	Row    uint32
	Column uint32
}

// MaxPoint is the "unbounded end" sentinel used in ranges that extend
// to the end of the document.
var MaxPoint = Point{Row: ^uint32(0), Column: ^uint32(0)}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Column)
}

// Cmp orders points by row, then column.
func (p Point) Cmp(o Point) int {
	switch {
	case p.Row < o.Row:
		return -1
	case p.Row > o.Row:
		return 1
	case p.Column < o.Column:
		return -1
	case p.Column > o.Column:
		return 1
	}
	return 0
}

// shiftBy composes an offset extent with a position inside the shifted
// subtree: rows add, and a column only shifts while still on the
// offset's own row.
func (p Point) shiftBy(off Point) Point {
	if p.Row == 0 {
		return Point{Row: off.Row, Column: off.Column + p.Column}
	}
	return Point{Row: off.Row + p.Row, Column: p.Column}
}

// Range is a byte interval and its matching point interval.
type Range struct {
	StartByte  uint32
	EndByte    uint32
	StartPoint Point
	EndPoint   Point
}

// WholeDocument is the unrestricted range: every parser starts with it
// until included ranges are set.
var WholeDocument = Range{
	EndByte:  ^uint32(0),
	EndPoint: MaxPoint,
}

func (r Range) String() string {
	return fmt.Sprintf("[%d-%d) %s-%s", r.StartByte, r.EndByte, r.StartPoint, r.EndPoint)
}
