package grammar

import "github.com/sylvanparse/sylvan/lang"

// Arithmetic builds the built-in arithmetic expression language:
// identifiers and numbers, + - at precedence 1, * / at precedence 2,
// and # line comments.
func Arithmetic() (*lang.Language, error) {
	return Def{
		Name:        "arithmetic",
		Identifiers: true,
		Numbers:     true,
		Operators: []Op{
			{Literal: "+", Prec: 1},
			{Literal: "-", Prec: 1},
			{Literal: "*", Prec: 2},
			{Literal: "/", Prec: 2},
		},
		LineComment: "#",
	}.Build()
}
