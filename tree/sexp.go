package tree

import "strings"

// String renders the subtree as an S-expression, the conventional
// compact dump for syntax trees: named nodes appear as (kind ...),
// fields as field: prefixes, anonymous tokens as quoted literals, and
// fabricated nodes as (MISSING kind).
func (n Node) String() string {
	var sb strings.Builder
	writeSexp(&sb, n, "")
	return sb.String()
}

func writeSexp(sb *strings.Builder, n Node, field string) {
	if field != "" {
		sb.WriteString(field)
		sb.WriteString(": ")
	}
	switch {
	case n.IsError():
		sb.WriteString("(ERROR)")
		return
	case n.IsMissing():
		sb.WriteString("(MISSING ")
		sb.WriteString(n.Kind())
		sb.WriteByte(')')
		return
	case !n.IsNamed():
		sb.WriteByte('"')
		sb.WriteString(n.Kind())
		sb.WriteByte('"')
		return
	}
	sb.WriteByte('(')
	sb.WriteString(n.Kind())
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if !c.IsNamed() && !c.IsError() && n.FieldNameForChild(i) == "" {
			continue
		}
		sb.WriteByte(' ')
		writeSexp(sb, c, n.FieldNameForChild(i))
	}
	sb.WriteByte(')')
}
