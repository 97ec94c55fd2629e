package lang

// Token is one lexed terminal with its byte span in the source.
type Token struct {
	Sym        SymbolID
	Start, End uint32
}

// Mark is an opaque lexer position used to rewind after speculative scans.
type Mark struct {
	Off      uint32
	Row, Col uint32
}

// Scanner is the pull interface a LexFunc reads source text through.
// Peek reports the rune at the current position without consuming it;
// Next consumes it. Offsets are byte offsets in the source encoding.
type Scanner interface {
	Peek() (rune, bool)
	Next()
	Offset() uint32
	Mark() Mark
	Reset(Mark)
}

// ActionType discriminates parse actions.
type ActionType uint8

const (
	ActionError ActionType = iota
	ActionShift
	ActionReduce
	ActionAccept
)

// Action is the automaton's answer for a (state, lookahead) pair.
type Action struct {
	Type ActionType
	// Next is the target state for a shift.
	Next StateID
	// Sym and Count describe a reduce: Count stack entries become
	// children of a new Sym node. Fields, when present, assigns a
	// FieldID to each of those children in order.
	Sym    SymbolID
	Count  uint8
	Fields []FieldID
}

// LexFunc scans one token starting at the scanner's position, consuming
// any leading whitespace first. At end of input it returns a zero-width
// token with EndSymbol; for unrecognizable input it consumes one rune
// and returns InvalidSymbol.
type LexFunc func(s Scanner, state StateID) Token

// TransitionFunc is the parse-state transition table.
type TransitionFunc func(state StateID, sym SymbolID) Action

// GotoFunc reports the state entered after a reduced (or reused) symbol
// lands on the stack in the given state. The second result is false when
// the symbol cannot appear there, which doubles as the subtree-reuse
// admissibility check during incremental parsing.
type GotoFunc func(state StateID, sym SymbolID) (StateID, bool)

// RecoverFunc names a symbol the parser may fabricate as a zero-width
// "missing" node to get out of an error state, if the state allows one.
type RecoverFunc func(state StateID) (SymbolID, bool)
