package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/scott-cotton/cli"

	"github.com/sylvanparse/sylvan/tree"
)

func runNodes(cfg *NodesConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Nodes.Parse(cc, args)
	if err != nil {
		cfg.Nodes.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	var prg *vm.Program
	if cfg.Filter != "" {
		prg, err = expr.Compile(cfg.Filter, expr.Env(map[string]any{}), expr.AsBool())
		if err != nil {
			return fmt.Errorf("%w: bad filter: %v", cli.ErrUsage, err)
		}
	}
	l, err := cfg.language(context.Background())
	if err != nil {
		return err
	}
	defer l.Release()
	p, err := cfg.parser(l)
	if err != nil {
		return err
	}

	pal := newPalette(cfg.colors(cc.Out))
	for i, file := range args {
		if i > 0 {
			fmt.Fprintln(cc.Out, "---")
		}
		src, err := getSource(cc, file)
		if err != nil {
			return err
		}
		t, err := p.Parse(src, nil)
		if err != nil {
			return fmt.Errorf("error parsing %s: %w", file, err)
		}
		err = listNodes(cfg, cc, pal, t, src, prg)
		t.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func listNodes(cfg *NodesConfig, cc *cli.Context, pal *palette, t *tree.Tree, src []byte, prg *vm.Program) error {
	cur := t.Walk()
	defer cur.Close()
	for done := false; !done; {
		n := cur.CurrentNode()
		if n.IsNamed() || cfg.All {
			keep := true
			if prg != nil {
				out, err := expr.Run(prg, nodeEnv(cur, n, src))
				if err != nil {
					return fmt.Errorf("filter: %w", err)
				}
				keep = out.(bool)
			}
			if keep {
				printNode(cc, pal, cur, n, src)
			}
		}
		if cur.GotoFirstChild() {
			continue
		}
		for !cur.GotoNextSibling() {
			if !cur.GotoParent() {
				done = true
				break
			}
		}
	}
	return nil
}

func nodeEnv(cur *tree.TreeCursor, n tree.Node, src []byte) map[string]any {
	return map[string]any{
		"kind":    n.Kind(),
		"field":   cur.FieldName(),
		"named":   n.IsNamed(),
		"missing": n.IsMissing(),
		"error":   n.IsError(),
		"extra":   n.IsExtra(),
		"depth":   int(cur.Depth()),
		"start":   int(n.StartByte()),
		"end":     int(n.EndByte()),
		"row":     int(n.StartPoint().Row),
		"text":    n.Text(src),
	}
}

func printNode(cc *cli.Context, pal *palette, cur *tree.TreeCursor, n tree.Node, src []byte) {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", int(cur.Depth())))
	if f := cur.FieldName(); f != "" {
		sb.WriteString(pal.field("%s:", f))
		sb.WriteByte(' ')
	}
	kind := pal.kind
	if n.IsError() || n.IsMissing() {
		kind = pal.bad
	}
	sb.WriteString(kind("%s", n.Kind()))
	sp, ep := n.StartPoint(), n.EndPoint()
	sb.WriteByte(' ')
	sb.WriteString(pal.span("[%d, %d) (%d,%d)-(%d,%d)",
		n.StartByte(), n.EndByte(), sp.Row, sp.Column, ep.Row, ep.Column))
	if n.ChildCount() == 0 && n.EndByte() > n.StartByte() {
		sb.WriteByte('\t')
		sb.WriteString(n.Text(src))
	}
	fmt.Fprintln(cc.Out, sb.String())
}
