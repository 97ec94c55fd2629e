package lang

import (
	"fmt"
	"sync/atomic"
)

// Version is the ABI version languages built against this package carry.
// MinCompatibleVersion is the oldest version the parser still accepts.
const (
	Version              = 15
	MinCompatibleVersion = 13
)

// Config is the raw material for a Language. Symbols are indexed by
// SymbolID and entry 0 must be the end symbol; Fields are indexed by
// FieldID with entry 0 unused.
type Config struct {
	Name    string
	Version uint32

	Symbols []Symbol
	Fields  []string

	Lex        LexFunc
	Transition TransitionFunc
	Goto       GotoFunc
	Recover    RecoverFunc

	// Root is the symbol the parser wraps a finished parse in.
	Root SymbolID
}

// Language is an immutable grammar descriptor. It is reference counted:
// each Tree produced from it holds a reference for the Tree's lifetime,
// so the descriptor outlives every tree that points into it.
type Language struct {
	name    string
	version uint32

	symbols  []Symbol
	fields   []string
	fieldIDs map[string]FieldID

	lex        LexFunc
	transition TransitionFunc
	gotoFn     GotoFunc
	recover    RecoverFunc

	root SymbolID

	refs atomic.Int32
}

// New builds a Language from cfg. The returned language starts with one
// reference held by the caller.
func New(cfg Config) (*Language, error) {
	if len(cfg.Symbols) == 0 {
		return nil, ErrNoSymbols
	}
	if cfg.Symbols[0].Name != "end" {
		return nil, fmt.Errorf("%w: got %q", ErrBadEnd, cfg.Symbols[0].Name)
	}
	if cfg.Lex == nil {
		return nil, ErrNoLex
	}
	if cfg.Transition == nil {
		return nil, ErrNoTransition
	}
	if int(cfg.Root) >= len(cfg.Symbols) {
		return nil, fmt.Errorf("%w: %d", ErrBadRoot, cfg.Root)
	}
	version := cfg.Version
	if version == 0 {
		version = Version
	}
	l := &Language{
		name:       cfg.Name,
		version:    version,
		symbols:    cfg.Symbols,
		fields:     cfg.Fields,
		fieldIDs:   make(map[string]FieldID, len(cfg.Fields)),
		lex:        cfg.Lex,
		transition: cfg.Transition,
		gotoFn:     cfg.Goto,
		recover:    cfg.Recover,
		root:       cfg.Root,
	}
	for i, name := range cfg.Fields {
		if i == 0 || name == "" {
			continue
		}
		l.fieldIDs[name] = FieldID(i)
	}
	l.refs.Store(1)
	return l, nil
}

// Retain adds a reference and returns l for chaining.
func (l *Language) Retain() *Language {
	l.refs.Add(1)
	return l
}

// Release drops a reference. The language is dead once the count reaches
// zero; Go's collector reclaims the tables when nothing points at them.
func (l *Language) Release() {
	l.refs.Add(-1)
}

// Refs reports the current reference count.
func (l *Language) Refs() int { return int(l.refs.Load()) }

func (l *Language) Name() string    { return l.name }
func (l *Language) Version() uint32 { return l.version }

// RootSymbol is the symbol a completed parse is wrapped in.
func (l *Language) RootSymbol() SymbolID { return l.root }

// SymbolCount reports the size of the symbol table.
func (l *Language) SymbolCount() int { return len(l.symbols) }

// SymbolName resolves a symbol id to its grammar name.
func (l *Language) SymbolName(id SymbolID) string {
	if id == InvalidSymbol {
		return "ERROR"
	}
	if int(id) >= len(l.symbols) {
		return ""
	}
	return l.symbols[id].Name
}

// SymbolKind reports the kind of a symbol; out-of-range ids are auxiliary.
func (l *Language) SymbolKind(id SymbolID) SymbolKind {
	if int(id) >= len(l.symbols) {
		return KindAuxiliary
	}
	return l.symbols[id].Kind
}

// IsNamed reports whether the symbol corresponds to a grammar rule.
func (l *Language) IsNamed(id SymbolID) bool {
	return l.SymbolKind(id) == KindNamed
}

// IsExtra reports whether the symbol may appear outside the grammar's
// required structure.
func (l *Language) IsExtra(id SymbolID) bool {
	if int(id) >= len(l.symbols) {
		return false
	}
	return l.symbols[id].Extra
}

// FieldCount reports the number of field names, excluding the unused
// zero entry.
func (l *Language) FieldCount() int {
	if len(l.fields) == 0 {
		return 0
	}
	return len(l.fields) - 1
}

// FieldName resolves a field id, or "" for NoField and out-of-range ids.
func (l *Language) FieldName(id FieldID) string {
	if id == NoField || int(id) >= len(l.fields) {
		return ""
	}
	return l.fields[id]
}

// FieldIDFor looks up a field by name.
func (l *Language) FieldIDFor(name string) (FieldID, bool) {
	id, ok := l.fieldIDs[name]
	return id, ok
}

// Lex runs the language's lexer.
func (l *Language) Lex(s Scanner, state StateID) Token { return l.lex(s, state) }

// Transition consults the parse table.
func (l *Language) Transition(state StateID, sym SymbolID) Action {
	return l.transition(state, sym)
}

// Goto reports the post-reduce state for sym in state.
func (l *Language) Goto(state StateID, sym SymbolID) (StateID, bool) {
	if l.gotoFn == nil {
		return 0, false
	}
	return l.gotoFn(state, sym)
}

// Recover reports the missing symbol to fabricate in an error state.
func (l *Language) Recover(state StateID) (SymbolID, bool) {
	if l.recover == nil {
		return 0, false
	}
	return l.recover(state)
}
