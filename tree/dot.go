package tree

import (
	"fmt"
	"io"
)

// WriteDot emits the subtree under n as a DOT graph for debugging.
// The output format is best-effort and carries no stability contract;
// pipe it to dot(1) to render.
func WriteDot(w io.Writer, n Node) error {
	if _, err := fmt.Fprintln(w, "digraph tree {"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "  node [shape=box];"); err != nil {
		return err
	}
	if err := writeDotNode(w, n); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

func writeDotNode(w io.Writer, n Node) error {
	label := n.Kind()
	attrs := ""
	switch {
	case n.IsError():
		attrs = ", color=red"
	case n.IsMissing():
		attrs = ", style=dashed"
	case !n.IsNamed():
		attrs = ", style=filled, fillcolor=lightgrey"
	}
	_, err := fmt.Fprintf(w, "  n%d [label=\"%s\\n[%d, %d)\"%s];\n",
		n.ID(), label, n.StartByte(), n.EndByte(), attrs)
	if err != nil {
		return err
	}
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		edge := ""
		if f := n.FieldNameForChild(i); f != "" {
			edge = fmt.Sprintf(" [label=\"%s\"]", f)
		}
		if _, err := fmt.Fprintf(w, "  n%d -> n%d%s;\n", n.ID(), c.ID(), edge); err != nil {
			return err
		}
		if err := writeDotNode(w, c); err != nil {
			return err
		}
	}
	return nil
}
