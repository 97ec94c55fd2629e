package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/sylvanparse/sylvan/debug"
	"github.com/sylvanparse/sylvan/grammar"
	"github.com/sylvanparse/sylvan/lang"
	"github.com/sylvanparse/sylvan/parse"
	"github.com/sylvanparse/sylvan/wasmlang"
)

type MainConfig struct {
	Grammar string `cli:"name=g aliases=grammar desc='grammar manifest file'"`
	Wasm    string `cli:"name=wasm desc='grammar bytecode module'"`
	Color   bool   `cli:"name=color desc='force colored output'"`
	Verbose bool   `cli:"name=v aliases=verbose desc='log parse steps to stderr'"`

	Main *cli.Command
}

// language builds the language to parse with: a bytecode module if
// -wasm is given, a manifest file if -g is given, the built-in
// arithmetic language otherwise.
func (cfg *MainConfig) language(ctx context.Context) (*lang.Language, error) {
	switch {
	case cfg.Wasm != "":
		bytecode, err := os.ReadFile(cfg.Wasm)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(cfg.Wasm), filepath.Ext(cfg.Wasm))
		return wasmlang.LoadLanguage(ctx, name, bytecode)
	case cfg.Grammar != "":
		manifest, err := os.ReadFile(cfg.Grammar)
		if err != nil {
			return nil, err
		}
		l, err := grammar.FromManifest(manifest)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Grammar, err)
		}
		return l, nil
	default:
		return grammar.Arithmetic()
	}
}

func (cfg *MainConfig) parser(l *lang.Language) (*parse.Parser, error) {
	p := parse.NewParser()
	if err := p.SetLanguage(l); err != nil {
		return nil, err
	}
	if cfg.Verbose || debug.Parse() || debug.Lex() {
		log := slog.New(slog.NewTextHandler(os.Stderr, nil))
		lexOn := cfg.Verbose || debug.Lex()
		p.SetLogger(func(kind parse.LogType, msg string) {
			if kind == parse.LogLex && !lexOn {
				return
			}
			log.Info(msg, "kind", kind.String())
		})
	}
	return p, nil
}

func (cfg *MainConfig) colors(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// palette holds the per-role sprintf funcs used for terminal output.
// The zero roles print plain.
type palette struct {
	kind  func(string, ...any) string
	field func(string, ...any) string
	span  func(string, ...any) string
	bad   func(string, ...any) string
}

func newPalette(on bool) *palette {
	if !on {
		return &palette{
			kind:  fmt.Sprintf,
			field: fmt.Sprintf,
			span:  fmt.Sprintf,
			bad:   fmt.Sprintf,
		}
	}
	return &palette{
		kind:  color.CyanString,
		field: color.RGB(196, 96, 16).SprintfFunc(),
		span:  color.HiBlackString,
		bad:   color.RedString,
	}
}

type ParseConfig struct {
	*MainConfig
	Dot bool `cli:"name=dot desc='emit graphviz dot instead of an s-expression'"`

	Parse *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Tree bool `cli:"name=tree desc='also print the re-parsed tree'"`

	Diff *cli.Command
}

type NodesConfig struct {
	*MainConfig
	Filter string `cli:"name=filter aliases=f desc='keep nodes where this expression is true'"`
	All    bool   `cli:"name=all aliases=a desc='include anonymous nodes'"`

	Nodes *cli.Command
}
