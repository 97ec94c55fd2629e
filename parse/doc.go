// Package parse drives a lang.Language automaton over source text and
// produces tree.Tree snapshots.
//
// A Parser is configured once (language, included ranges, timeout) and
// then run any number of times. Handing Parse the previous revision's
// tree, after describing the text changes to it with Tree.Edit, makes
// the parse incremental: subtrees the edits did not touch are carried
// into the new tree without re-lexing their text.
//
// Parsers are not safe for concurrent use. An interrupted parse
// (cancelled or timed out) keeps its partial progress; calling Parse
// again with the same arguments resumes it, and Reset discards it.
package parse
