// Package grammar builds lang.Language values for operator-precedence
// expression languages: atoms (identifiers, numbers), left-associative
// binary operators layered by precedence, and line comments as extras.
//
// The generated automaton encodes precedence climbing in its parse
// states, so the parser's generic shift/reduce loop needs no knowledge
// of the grammar. Definitions can be written in Go (Def) or loaded
// from a YAML manifest, which is also how the wasmlang bridge ships
// grammars inside bytecode modules.
package grammar
