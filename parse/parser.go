package parse

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/sylvanparse/sylvan/lang"
	"github.com/sylvanparse/sylvan/tree"
)

// checkInterval bounds how many automaton steps run between
// cancellation, timeout and progress checks.
const checkInterval = 256

// Parser drives parses for one language at a time. It is not safe for
// concurrent use; give each goroutine its own Parser.
//
// The parser does not retain its Language; the caller keeps a
// reference for as long as the parser is configured with it. Trees
// take their own references.
type Parser struct {
	lang     *lang.Language
	included []tree.Range
	timeout  time.Duration
	cancel   *atomic.Bool
	logger   LogFunc

	// partial state of an interrupted parse
	r *run
}

// NewParser returns an idle parser with no language.
func NewParser() *Parser { return &Parser{} }

// SetLanguage makes l the grammar for subsequent parses. It fails when
// l targets an engine ABI outside the supported range. Any interrupted
// partial parse is discarded.
func (p *Parser) SetLanguage(l *lang.Language) error {
	if l != nil {
		v := l.Version()
		if v > lang.Version || v < lang.MinCompatibleVersion {
			return fmt.Errorf("%w: %q targets ABI %d, engine supports %d through %d",
				ErrIncompatibleVersion, l.Name(), v, lang.MinCompatibleVersion, lang.Version)
		}
	}
	p.lang = l
	p.Reset()
	return nil
}

// Language reports the active grammar, or nil.
func (p *Parser) Language() *lang.Language { return p.lang }

// SetIncludedRanges restricts subsequent parses to the given spans of
// the document, for embedded sub-languages. Ranges must be ordered by
// start byte and non-overlapping. An empty slice resets to parsing the
// whole document.
func (p *Parser) SetIncludedRanges(ranges []tree.Range) error {
	for i, r := range ranges {
		if r.EndByte < r.StartByte {
			return fmt.Errorf("%w: range %d ends before it starts", ErrRangeOverlap, i)
		}
		if i > 0 && r.StartByte < ranges[i-1].EndByte {
			return fmt.Errorf("%w: ranges %d and %d", ErrRangeOverlap, i-1, i)
		}
	}
	if len(ranges) == 0 {
		p.included = nil
	} else {
		p.included = make([]tree.Range, len(ranges))
		copy(p.included, ranges)
	}
	p.Reset()
	return nil
}

// IncludedRanges reports the active restriction. With none set it
// reports the single whole-document range.
func (p *Parser) IncludedRanges() []tree.Range {
	if len(p.included) == 0 {
		return []tree.Range{tree.WholeDocument}
	}
	out := make([]tree.Range, len(p.included))
	copy(out, p.included)
	return out
}

// SetTimeout bounds each Parse call's wall-clock time. Zero disables
// the bound. The timeout is checked at bounded intervals, not per
// character, so it is not a hard deadline.
func (p *Parser) SetTimeout(d time.Duration) { p.timeout = d }

// SetCancelFlag installs a flag the parse polls at bounded intervals.
// Setting the flag from another goroutine stops the parse with
// ErrCancelled.
func (p *Parser) SetCancelFlag(f *atomic.Bool) { p.cancel = f }

// SetLogger installs a per-step logging callback, or removes it with
// nil.
func (p *Parser) SetLogger(fn LogFunc) { p.logger = fn }

// Reset discards any interrupted partial parse, so the next Parse
// starts over from the beginning.
func (p *Parser) Reset() {
	if p.r != nil {
		p.r.close()
		p.r = nil
	}
}

// Parse parses a fixed buffer. With a non-nil old tree that has been
// kept in sync via Tree.Edit, unchanged subtrees are reused.
func (p *Parser) Parse(src []byte, old *tree.Tree) (*tree.Tree, error) {
	return p.ParseInput(BytesInput(src), old, nil)
}

// ParseInput parses from a pull source. When a previous call was
// cancelled or timed out, a call with identical arguments resumes it;
// Reset discards the partial state instead.
//
// The old tree's storage (and the input) must stay valid until the
// parse completes or is Reset.
func (p *Parser) ParseInput(in Input, old *tree.Tree, opts *Options) (*tree.Tree, error) {
	if p.lang == nil {
		return nil, ErrNoLanguage
	}
	if in.Read == nil {
		return nil, ErrNoInput
	}
	if in.Encoding == Custom && in.Decode == nil {
		return nil, ErrInvalidEncoding
	}
	r := p.r
	p.r = nil
	if r == nil {
		ranges := p.included
		if len(ranges) == 0 {
			ranges = []tree.Range{tree.WholeDocument}
		}
		r = &run{
			sc:    newScanner(in, ranges),
			ru:    newReuser(old),
			stack: []frame{{}},
		}
	}
	r.started = time.Now()

	t, err := p.drive(r, opts)
	if err != nil {
		p.r = r
		return nil, err
	}
	r.close()
	return t, nil
}

// frame is one parse-stack entry: the automaton state entered after
// node landed on the stack.
type frame struct {
	state lang.StateID
	node  *tree.NodeData
	// reused marks a subtree carried from the old tree whose shaping
	// lookahead has not been revalidated yet.
	reused bool
}

// item is one unit of parser intake: a subtree carried over from the
// old tree, or a freshly lexed token with its resolved range.
type item struct {
	node *tree.NodeData
	tok  lang.Token
	rng  tree.Range
}

type run struct {
	sc      *scanner
	ru      *reuser
	stack   []frame
	extras  []*tree.NodeData
	pending []item

	ops      int
	sawError bool
	started  time.Time
}

func (r *run) top() *frame { return &r.stack[len(r.stack)-1] }

func (r *run) close() { r.sc.close() }

func (p *Parser) drive(r *run, opts *Options) (*tree.Tree, error) {
	for {
		r.ops++
		if r.ops%checkInterval == 0 {
			if err := p.pulse(r, opts); err != nil {
				return nil, err
			}
		}

		it := r.next(p)

		if it.node != nil {
			if it.node.IsExtra() {
				r.extras = append(r.extras, it.node)
				continue
			}
			if !it.node.Leaf() {
				// Whole-subtree reuse: admissible iff the automaton
				// accepts the symbol here.
				st := r.top().state
				if next, ok := p.lang.Goto(st, it.node.Sym()); ok {
					p.logf(LogParse, "reuse %s [%d-%d) state %d",
						p.lang.SymbolName(it.node.Sym()), it.node.StartByte(), it.node.EndByte(), next)
					r.stack = append(r.stack, frame{state: next, node: it.node, reused: true})
				} else {
					r.breakdown(it.node, nil)
				}
				continue
			}
		}

		tok := it.tok
		if it.node == nil && p.lang.IsExtra(tok.Sym) {
			r.extras = append(r.extras, tree.NewExtraLeaf(tok.Sym, p.lang.IsNamed(tok.Sym), it.rng))
			continue
		}

		// A reused subtree is only sound if the terminal that follows
		// it matches the lookahead that shaped its reduce. Otherwise
		// break it into its children and replay them.
		if top := r.top(); top.reused && top.node.Lookahead() != tok.Sym {
			p.logf(LogParse, "breakdown %s: lookahead %s != %s",
				p.lang.SymbolName(top.node.Sym()),
				p.lang.SymbolName(top.node.Lookahead()), p.lang.SymbolName(tok.Sym))
			r.stack = r.stack[:len(r.stack)-1]
			r.breakdown(top.node, &it)
			continue
		}

		act := p.lang.Transition(r.top().state, tok.Sym)
		switch act.Type {
		case lang.ActionShift:
			nd := it.node
			if nd == nil {
				nd = tree.NewLeaf(tok.Sym, p.lang.IsNamed(tok.Sym), it.rng)
			}
			p.logf(LogParse, "shift %s [%d-%d) state %d",
				p.lang.SymbolName(tok.Sym), tok.Start, tok.End, act.Next)
			r.stack = append(r.stack, frame{state: act.Next, node: nd})

		case lang.ActionReduce:
			p.logf(LogParse, "reduce %s count %d", p.lang.SymbolName(act.Sym), act.Count)
			r.reduce(p, act, tok.Sym)
			r.pending = append([]item{it}, r.pending...)

		case lang.ActionAccept:
			return tree.New(r.finish(p), p.lang, p.included), nil

		default:
			if sym, ok := p.lang.Recover(r.top().state); ok {
				shift := p.lang.Transition(r.top().state, sym)
				if shift.Type == lang.ActionShift &&
					p.lang.Transition(shift.Next, tok.Sym).Type != lang.ActionError {
					p.logf(LogParse, "missing %s at %d", p.lang.SymbolName(sym), it.rng.StartByte)
					miss := tree.NewMissing(sym, p.lang.IsNamed(sym), it.rng.StartByte, it.rng.StartPoint)
					r.sawError = true
					r.stack = append(r.stack, frame{state: shift.Next, node: miss})
					r.pending = append([]item{it}, r.pending...)
					continue
				}
			}
			if tok.Sym == lang.EndSymbol {
				// No further progress is possible at end of input;
				// emit what we have.
				return tree.New(r.finish(p), p.lang, p.included), nil
			}
			p.logf(LogParse, "skip %s [%d-%d)", p.lang.SymbolName(tok.Sym), tok.Start, tok.End)
			r.sawError = true
			r.extras = append(r.extras, tree.NewErrorLeaf(it.rng))
		}
	}
}

// next produces the parser's next intake item: a replayed node from a
// broken-down subtree, a reuse candidate from the old tree, or a
// freshly lexed token.
func (r *run) next(p *Parser) item {
	if len(r.pending) > 0 {
		it := r.pending[0]
		r.pending = r.pending[1:]
		return it
	}

	pos := r.sc.Offset()
	for r.ru != nil {
		c := r.ru.current()
		if c == nil {
			break
		}
		switch {
		case c.EndByte() <= pos:
			r.ru.advance()
		case c.StartByte() < pos:
			r.ru.descend()
		case c.StartByte() > pos:
			// Gap before the next candidate: lex fresh text until the
			// parse catches up to it.
			goto lex
		case c.Dirty() || c.HasError():
			r.ru.descend()
		case c.IsExtra() && c.Leaf():
			r.extras = append(r.extras, c)
			r.sc.jump(c.EndByte(), c.EndPoint())
			pos = r.sc.Offset()
			r.ru.advance()
		default:
			r.sc.jump(c.EndByte(), c.EndPoint())
			r.ru.advance()
			return itemFor(c)
		}
	}
lex:
	tok := p.lang.Lex(r.sc, r.top().state)
	rng := tree.Range{
		StartByte:  tok.Start,
		EndByte:    tok.End,
		StartPoint: r.sc.pointAt(tok.Start),
		EndPoint:   r.sc.pointAt(tok.End),
	}
	if p.logger != nil {
		p.logf(LogLex, "token %s [%d-%d)", p.lang.SymbolName(tok.Sym), tok.Start, tok.End)
	}
	return item{tok: tok, rng: rng}
}

func itemFor(c *tree.NodeData) item {
	it := item{node: c}
	if c.Leaf() {
		it.tok = lang.Token{Sym: c.Sym(), Start: c.StartByte(), End: c.EndByte()}
		it.rng = tree.Range{
			StartByte: c.StartByte(), EndByte: c.EndByte(),
			StartPoint: c.StartPoint(), EndPoint: c.EndPoint(),
		}
	}
	return it
}

// breakdown replays a rejected subtree's children, followed by the
// terminal that exposed the mismatch.
func (r *run) breakdown(nd *tree.NodeData, tail *item) {
	cs := nd.Children()
	items := make([]item, 0, len(cs)+1)
	for _, c := range cs {
		items = append(items, itemFor(c))
	}
	if tail != nil {
		items = append(items, *tail)
	}
	r.pending = append(items, r.pending...)
}

func (r *run) reduce(p *Parser, act lang.Action, lookahead lang.SymbolID) {
	n := int(act.Count)
	if n > len(r.stack)-1 {
		n = len(r.stack) - 1
	}
	popped := r.stack[len(r.stack)-n:]
	children := make([]*tree.NodeData, 0, n)
	for _, f := range popped {
		children = append(children, f.node)
	}
	r.stack = r.stack[:len(r.stack)-n]

	children, fields := r.attachExtras(children, act.Fields)
	nd := tree.NewInternal(act.Sym, p.lang.IsNamed(act.Sym), children, fields)
	nd.SetLookahead(lookahead)

	base := r.top().state
	next, ok := p.lang.Goto(base, act.Sym)
	if !ok {
		next = base
	}
	r.stack = append(r.stack, frame{state: next, node: nd})
}

// attachExtras folds buffered extras that fall inside the reduced span
// into the child list, in source order, with no field.
func (r *run) attachExtras(children []*tree.NodeData, fields []lang.FieldID) ([]*tree.NodeData, []lang.FieldID) {
	if len(r.extras) == 0 || len(children) == 0 {
		return children, fields
	}
	lo := children[0].StartByte()
	hi := children[len(children)-1].EndByte()
	var take, keep []*tree.NodeData
	for _, e := range r.extras {
		if e.StartByte() >= lo && e.EndByte() <= hi {
			take = append(take, e)
		} else {
			keep = append(keep, e)
		}
	}
	if len(take) == 0 {
		return children, fields
	}
	r.extras = keep

	merged := make([]*tree.NodeData, 0, len(children)+len(take))
	var mf []lang.FieldID
	if fields != nil {
		mf = make([]lang.FieldID, 0, len(children)+len(take))
	}
	i, j := 0, 0
	for i < len(children) || j < len(take) {
		if j >= len(take) || (i < len(children) && children[i].StartByte() <= take[j].StartByte()) {
			merged = append(merged, children[i])
			if fields != nil {
				f := lang.NoField
				if i < len(fields) {
					f = fields[i]
				}
				mf = append(mf, f)
			}
			i++
		} else {
			merged = append(merged, take[j])
			if fields != nil {
				mf = append(mf, lang.NoField)
			}
			j++
		}
	}
	return merged, mf
}

// finish wraps everything on the stack, plus stray extras and error
// leaves, in the language's root symbol.
func (r *run) finish(p *Parser) *tree.NodeData {
	nodes := make([]*tree.NodeData, 0, len(r.stack)-1+len(r.extras))
	for _, f := range r.stack[1:] {
		nodes = append(nodes, f.node)
	}
	nodes = append(nodes, r.extras...)
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].StartByte() < nodes[j].StartByte()
	})
	root := p.lang.RootSymbol()
	named := p.lang.IsNamed(root)
	if len(nodes) == 0 {
		m := r.sc.Mark()
		return tree.NewEmpty(root, named, r.sc.Offset(), tree.Point{Row: m.Row, Column: m.Col})
	}
	return tree.NewInternal(root, named, nodes, nil)
}

func (p *Parser) pulse(r *run, opts *Options) error {
	if p.cancel != nil && p.cancel.Load() {
		return ErrCancelled
	}
	if p.timeout > 0 && time.Since(r.started) > p.timeout {
		return ErrTimedOut
	}
	if opts != nil && opts.Progress != nil {
		if opts.Progress(ProgressState{Offset: r.sc.Offset(), HasError: r.sawError}) {
			return ErrCancelled
		}
	}
	return nil
}

func (p *Parser) logf(t LogType, format string, args ...any) {
	if p.logger == nil {
		return
	}
	p.logger(t, fmt.Sprintf(format, args...))
}
