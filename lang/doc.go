// Package lang defines the grammar descriptor consumed by the parser.
//
// A Language bundles the three tables an automaton needs (symbols, fields
// and parse-state transitions) behind an immutable, reference-counted
// value. Languages are produced by external factories (the grammar package,
// or the wasmlang bridge); the parsing core only ever consumes them.
package lang
