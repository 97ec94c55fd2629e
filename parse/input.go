package parse

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/sylvanparse/sylvan/tree"
)

// Encoding names the byte encoding of an input source.
type Encoding uint8

const (
	UTF8 Encoding = iota
	UTF16LE
	UTF16BE
	// Custom requires Input.Decode to be set.
	Custom
)

// ReadFunc pulls a chunk of source text starting at the given byte
// offset. pt is the parser's position near that offset, for readers
// that index by line. An empty chunk signals end of document.
type ReadFunc func(offset uint32, pt tree.Point) []byte

// DecodeFunc decodes the first codepoint of b, reporting the rune and
// the number of bytes it occupies. It is only called with len(b) > 0
// and must report a size of at least 1.
type DecodeFunc func(b []byte) (r rune, size int)

// Input is a pull-based text source for the parser. Read is required;
// Decode is required iff Encoding is Custom.
type Input struct {
	Read     ReadFunc
	Encoding Encoding
	Decode   DecodeFunc
}

// BytesInput wraps a fixed buffer as an Input.
func BytesInput(src []byte) Input {
	return Input{Read: func(offset uint32, _ tree.Point) []byte {
		if int64(offset) >= int64(len(src)) {
			return nil
		}
		return src[offset:]
	}}
}

func (in Input) decoder() DecodeFunc {
	switch in.Encoding {
	case UTF16LE:
		return func(b []byte) (rune, int) { return decodeUTF16(b, true) }
	case UTF16BE:
		return func(b []byte) (rune, int) { return decodeUTF16(b, false) }
	case Custom:
		return in.Decode
	default:
		return decodeUTF8
	}
}

func decodeUTF8(b []byte) (rune, int) {
	return utf8.DecodeRune(b)
}

func decodeUTF16(b []byte, little bool) (rune, int) {
	if len(b) < 2 {
		return utf8.RuneError, len(b)
	}
	unit := func(i int) uint16 {
		if little {
			return uint16(b[i]) | uint16(b[i+1])<<8
		}
		return uint16(b[i])<<8 | uint16(b[i+1])
	}
	u1 := unit(0)
	if utf16.IsSurrogate(rune(u1)) && len(b) >= 4 {
		if r := utf16.DecodeRune(rune(u1), rune(unit(2))); r != utf8.RuneError {
			return r, 4
		}
	}
	return rune(u1), 2
}
