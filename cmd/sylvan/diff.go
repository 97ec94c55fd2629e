package main

import (
	"context"
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/sylvanparse/sylvan/edits"
)

func runDiff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	oldSrc, err := getSource(cc, args[0])
	if err != nil {
		return err
	}
	newSrc, err := getSource(cc, args[1])
	if err != nil {
		return err
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

	old, err := p.Parse(oldSrc, nil)
	if err != nil {
		return fmt.Errorf("error parsing %s: %w", args[0], err)
	}
	defer old.Close()
	edits.Apply(old, oldSrc, newSrc)
	next, err := p.Parse(newSrc, old)
	if err != nil {
		return fmt.Errorf("error re-parsing %s: %w", args[1], err)
	}
	defer next.Close()

	pal := newPalette(cfg.colors(cc.Out))
	changed := old.ChangedRanges(next)
	for _, r := range changed {
		snippet := ""
		if int(r.EndByte) <= len(newSrc) {
			snippet = string(newSrc[r.StartByte:r.EndByte])
		}
		fmt.Fprintf(cc.Out, "%s\t%s\n",
			pal.span("[%d, %d) (%d,%d)-(%d,%d)",
				r.StartByte, r.EndByte,
				r.StartPoint.Row, r.StartPoint.Column,
				r.EndPoint.Row, r.EndPoint.Column),
			pal.kind("%s", snippet))
	}
	if cfg.Tree {
		fmt.Fprintln(cc.Out, next.RootNode().String())
	}
	if len(changed) > 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}
