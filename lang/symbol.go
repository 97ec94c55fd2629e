package lang

// SymbolID identifies a grammar symbol, terminal or nonterminal.
// Symbol 0 is always the end-of-input symbol.
type SymbolID uint16

const (
	// EndSymbol is the symbol returned by a lexer at end of input.
	EndSymbol SymbolID = 0
	// InvalidSymbol marks input the lexer could not recognize.
	InvalidSymbol SymbolID = 0xffff
)

// FieldID identifies a named field on a node's children.
// Field 0 means "no field".
type FieldID uint16

// NoField is the zero FieldID.
const NoField FieldID = 0

// StateID is a parse-state index in the automaton, not a parser
// lifecycle state.
type StateID uint16

// SymbolKind classifies a symbol in the grammar.
type SymbolKind uint8

const (
	// KindNamed symbols correspond to grammar rules.
	KindNamed SymbolKind = iota
	// KindAnonymous symbols are literal tokens.
	KindAnonymous
	// KindSupertype symbols are abstract groupings that never appear
	// in trees.
	KindSupertype
	// KindAuxiliary symbols are internal to the automaton.
	KindAuxiliary
)

func (k SymbolKind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindAnonymous:
		return "anonymous"
	case KindSupertype:
		return "supertype"
	case KindAuxiliary:
		return "auxiliary"
	}
	return "unknown"
}

// Symbol describes one entry in a language's symbol table.
type Symbol struct {
	Name string
	Kind SymbolKind
	// Extra symbols (comments, for example) may appear anywhere and are
	// interleaved into the tree outside the grammar's required structure.
	Extra bool
}
