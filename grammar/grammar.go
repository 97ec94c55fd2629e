package grammar

import (
	"fmt"
	"sort"

	"github.com/sylvanparse/sylvan/lang"
)

// Op is one binary operator: its literal token and its precedence
// level, starting at 1. Higher binds tighter; same level associates
// left.
type Op struct {
	Literal string
	Prec    int
}

// Def is a declarative grammar definition.
type Def struct {
	Name string

	// Version pins the engine ABI the grammar targets, for grammars
	// shipped in portable form. Zero means the current ABI.
	Version uint32

	// Atom kinds. At least one must be enabled.
	Identifiers bool
	Numbers     bool

	Operators []Op

	// LineComment, when set, lexes that prefix through end of line as
	// an extra "comment" node.
	LineComment string
}

// Build compiles the definition into a Language.
//
// The automaton's states come in pairs per precedence level k:
// state 2k expects an operand with a pending operator of precedence k
// on the stack (k=0 at the bottom), and state 2k+1 holds an operand in
// that context. An operator of precedence p shifts from 2k+1 when
// p > k and forces a binary_expression reduce otherwise, which yields
// precedence climbing with left associativity.
func (def Def) Build() (*lang.Language, error) {
	if !def.Identifiers && !def.Numbers {
		return nil, ErrNoAtoms
	}
	if len(def.Operators) == 0 {
		return nil, ErrNoOperators
	}

	symbols := []lang.Symbol{{Name: "end", Kind: lang.KindAuxiliary}}
	add := func(s lang.Symbol) lang.SymbolID {
		symbols = append(symbols, s)
		return lang.SymbolID(len(symbols) - 1)
	}

	var idSym, numSym lang.SymbolID
	if def.Identifiers {
		idSym = add(lang.Symbol{Name: "identifier", Kind: lang.KindNamed})
	}
	if def.Numbers {
		numSym = add(lang.Symbol{Name: "number", Kind: lang.KindNamed})
	}

	prec := make(map[lang.SymbolID]int, len(def.Operators))
	literals := make([]opLiteral, 0, len(def.Operators))
	seen := map[string]bool{}
	maxPrec := 0
	for _, op := range def.Operators {
		if op.Prec < 1 {
			return nil, fmt.Errorf("%w: %q has %d", ErrBadPrec, op.Literal, op.Prec)
		}
		if seen[op.Literal] {
			return nil, fmt.Errorf("%w: %q", ErrDupOperator, op.Literal)
		}
		seen[op.Literal] = true
		sym := add(lang.Symbol{Name: op.Literal, Kind: lang.KindAnonymous})
		prec[sym] = op.Prec
		literals = append(literals, opLiteral{text: op.Literal, sym: sym})
		if op.Prec > maxPrec {
			maxPrec = op.Prec
		}
	}
	// Longest literal first so multi-rune operators win over their
	// prefixes.
	sort.SliceStable(literals, func(i, j int) bool {
		return len(literals[i].text) > len(literals[j].text)
	})

	var commentSym lang.SymbolID
	if def.LineComment != "" {
		commentSym = add(lang.Symbol{Name: "comment", Kind: lang.KindNamed, Extra: true})
	}

	add(lang.Symbol{Name: "expression", Kind: lang.KindSupertype})
	binSym := add(lang.Symbol{Name: "binary_expression", Kind: lang.KindNamed})
	rootSym := add(lang.Symbol{Name: "source", Kind: lang.KindNamed})

	fields := []string{"", "left", "operator", "right"}
	binFields := []lang.FieldID{1, 2, 3}

	isAtom := func(sym lang.SymbolID) bool {
		return (def.Identifiers && sym == idSym) || (def.Numbers && sym == numSym)
	}

	transition := func(state lang.StateID, sym lang.SymbolID) lang.Action {
		if state%2 == 0 {
			// Expecting an operand.
			if isAtom(sym) {
				return lang.Action{Type: lang.ActionShift, Next: state + 1}
			}
			return lang.Action{Type: lang.ActionError}
		}
		// Holding an operand; k is the pending precedence.
		k := int(state-1) / 2
		if p, ok := prec[sym]; ok {
			if p > k {
				return lang.Action{Type: lang.ActionShift, Next: lang.StateID(2 * p)}
			}
			return lang.Action{Type: lang.ActionReduce, Sym: binSym, Count: 3, Fields: binFields}
		}
		if sym == lang.EndSymbol {
			if k == 0 {
				return lang.Action{Type: lang.ActionAccept}
			}
			return lang.Action{Type: lang.ActionReduce, Sym: binSym, Count: 3, Fields: binFields}
		}
		return lang.Action{Type: lang.ActionError}
	}

	gotoFn := func(state lang.StateID, sym lang.SymbolID) (lang.StateID, bool) {
		if state%2 != 0 {
			return 0, false
		}
		if isAtom(sym) || sym == binSym {
			return state + 1, true
		}
		return 0, false
	}

	recoverFn := func(state lang.StateID) (lang.SymbolID, bool) {
		if state%2 != 0 {
			return 0, false
		}
		if def.Identifiers {
			return idSym, true
		}
		return numSym, true
	}

	lx := &lexer{
		idSym:      idSym,
		numSym:     numSym,
		commentSym: commentSym,
		comment:    def.LineComment,
		hasID:      def.Identifiers,
		hasNum:     def.Numbers,
		literals:   literals,
	}

	return lang.New(lang.Config{
		Name:       def.Name,
		Version:    def.Version,
		Symbols:    symbols,
		Fields:     fields,
		Lex:        lx.lex,
		Transition: transition,
		Goto:       gotoFn,
		Recover:    recoverFn,
		Root:       rootSym,
	})
}
