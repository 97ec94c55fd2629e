package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "sylvan").
		WithSynopsis("sylvan [opts] command [opts]").
		WithDescription("sylvan is a tool for parsing and re-parsing source text incrementally.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return sylvanMain(cfg, cc, args)
		}).
		WithSubs(
			ParseCommand(cfg),
			DiffCommand(cfg),
			NodesCommand(cfg))
}

func ParseCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ParseConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Parse, "parse").
		WithAliases("p", "pa").
		WithSynopsis("parse [opts] [files]").
		WithDescription("parse files and print their syntax trees").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return runParse(cfg, cc, args)
		})
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Diff, "diff").
		WithAliases("d", "di").
		WithSynopsis("diff <old> <new>").
		WithDescription("re-parse old as new incrementally and print the changed ranges").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return runDiff(cfg, cc, args)
		})
}

func NodesCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &NodesConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Nodes, "nodes").
		WithAliases("n", "ls").
		WithSynopsis("nodes [-filter expr] [files]").
		WithDescription(nodesDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return runNodes(cfg, cc, args)
		})
}

const nodesDescription = `nodes lists syntax tree nodes, one per line, in document order.

A -filter expression selects which nodes to list. The expression is
evaluated per node with these variables in scope:

  kind     string  node kind, eg "binary_expression"
  field    string  field the node occupies on its parent, or ""
  named    bool    named node (not an operator or punctuation token)
  missing  bool    zero-width node fabricated by error recovery
  error    bool    error node
  extra    bool    comment or other out-of-grammar node
  depth    int     depth below the root
  start    int     start byte offset
  end      int     end byte offset
  row      int     start row
  text     string  source text the node spans

Examples:

  sylvan nodes -filter 'kind == "identifier"' file.expr
  sylvan nodes -all -filter 'error or missing' file.expr
  sylvan nodes -filter 'depth < 2 and end - start > 10' file.expr`
