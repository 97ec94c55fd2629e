package lang

import "errors"

var (
	ErrNoSymbols    = errors.New("language has no symbol table")
	ErrNoLex        = errors.New("language has no lex function")
	ErrNoTransition = errors.New("language has no transition function")
	ErrBadRoot      = errors.New("root symbol out of range")
	ErrBadEnd       = errors.New("symbol 0 must be the end symbol")
)
