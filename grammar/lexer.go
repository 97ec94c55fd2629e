package grammar

import (
	"unicode"

	"github.com/sylvanparse/sylvan/lang"
)

type opLiteral struct {
	text string
	sym  lang.SymbolID
}

type lexer struct {
	idSym      lang.SymbolID
	numSym     lang.SymbolID
	commentSym lang.SymbolID
	comment    string
	hasID      bool
	hasNum     bool
	literals   []opLiteral
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func (lx *lexer) lex(s lang.Scanner, _ lang.StateID) lang.Token {
	for {
		r, ok := s.Peek()
		if !ok {
			off := s.Offset()
			return lang.Token{Sym: lang.EndSymbol, Start: off, End: off}
		}
		if !isSpace(r) {
			break
		}
		s.Next()
	}
	start := s.Offset()

	if lx.comment != "" && lx.match(s, lx.comment) {
		for {
			r, ok := s.Peek()
			if !ok || r == '\n' {
				break
			}
			s.Next()
		}
		return lang.Token{Sym: lx.commentSym, Start: start, End: s.Offset()}
	}

	r, _ := s.Peek()
	if lx.hasID && isIdentStart(r) {
		for {
			r, ok := s.Peek()
			if !ok || !isIdentPart(r) {
				break
			}
			s.Next()
		}
		return lang.Token{Sym: lx.idSym, Start: start, End: s.Offset()}
	}

	if lx.hasNum && r >= '0' && r <= '9' {
		lx.digits(s)
		mark := s.Mark()
		if dot, ok := s.Peek(); ok && dot == '.' {
			s.Next()
			if d, ok := s.Peek(); ok && d >= '0' && d <= '9' {
				lx.digits(s)
			} else {
				s.Reset(mark)
			}
		}
		return lang.Token{Sym: lx.numSym, Start: start, End: s.Offset()}
	}

	for _, lit := range lx.literals {
		if lx.match(s, lit.text) {
			return lang.Token{Sym: lit.sym, Start: start, End: s.Offset()}
		}
	}

	s.Next()
	return lang.Token{Sym: lang.InvalidSymbol, Start: start, End: s.Offset()}
}

func (lx *lexer) digits(s lang.Scanner) {
	for {
		r, ok := s.Peek()
		if !ok || r < '0' || r > '9' {
			return
		}
		s.Next()
	}
}

// match consumes text if it appears at the scanner's position,
// rewinding otherwise.
func (lx *lexer) match(s lang.Scanner, text string) bool {
	mark := s.Mark()
	for _, want := range text {
		r, ok := s.Peek()
		if !ok || r != want {
			s.Reset(mark)
			return false
		}
		s.Next()
	}
	return true
}
