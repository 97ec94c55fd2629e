package main

import (
	"context"
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/sylvanparse/sylvan/tree"
)

func runParse(cfg *ParseConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Parse.Parse(cc, args)
	if err != nil {
		cfg.Parse.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		args = []string{"-"}
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

	bad := false
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
		root := t.RootNode()
		if cfg.Dot {
			if err := tree.WriteDot(cc.Out, root); err != nil {
				t.Close()
				return err
			}
		} else {
			fmt.Fprintln(cc.Out, root.String())
		}
		if root.HasError() {
			bad = true
		}
		t.Close()
	}
	if bad {
		return cli.ExitCodeErr(1)
	}
	return nil
}
