package parse

import (
	"github.com/sylvanparse/sylvan/alloc"
	"github.com/sylvanparse/sylvan/lang"
	"github.com/sylvanparse/sylvan/tree"
)

// scanner adapts a pull Input to the lang.Scanner interface, restricted
// to the parser's included ranges. It buffers pulled text in registry
// scratch and tracks the row/column position codepoint by codepoint;
// columns count bytes, rows count decoded newlines.
//
// Forward jumps (past a reused subtree, or into the next included
// range) may discard the buffer; the lexer's Mark/Reset pairs never
// span a jump, so rewinds always land in buffered text.
type scanner struct {
	read   ReadFunc
	dec    DecodeFunc
	ranges []tree.Range
	ri     int

	off uint32
	pt  tree.Point

	buf    []byte // capacity; bufLen bytes are valid
	bufOff uint32
	bufLen int
	heap   bool // scratch allocation failed; buf is plain Go heap
	eof    bool

	// decoded rune at off, when valid
	r     rune
	rn    int
	valid bool

	// anchor for pointAt queries
	aOff uint32
	aPt  tree.Point
}

func newScanner(in Input, ranges []tree.Range) *scanner {
	s := &scanner{read: in.Read, dec: in.decoder(), ranges: ranges}
	s.jump(ranges[0].StartByte, ranges[0].StartPoint)
	return s
}

func (s *scanner) Offset() uint32 { return s.off }

func (s *scanner) Mark() lang.Mark {
	return lang.Mark{Off: s.off, Row: s.pt.Row, Col: s.pt.Column}
}

func (s *scanner) Reset(m lang.Mark) {
	s.off = m.Off
	s.pt = tree.Point{Row: m.Row, Column: m.Col}
	s.valid = false
}

func (s *scanner) Peek() (rune, bool) {
	if s.valid {
		return s.r, true
	}
	for {
		if s.ri >= len(s.ranges) {
			return 0, false
		}
		rg := s.ranges[s.ri]
		if s.off >= rg.EndByte {
			s.ri++
			if s.ri >= len(s.ranges) {
				return 0, false
			}
			if next := s.ranges[s.ri]; next.StartByte > s.off {
				s.jump(next.StartByte, next.StartPoint)
			}
			continue
		}
		if !s.fill(utf8max) {
			return 0, false
		}
		r, n := s.dec(s.window())
		if n <= 0 {
			n = 1
		}
		s.r, s.rn, s.valid = r, n, true
		return r, true
	}
}

const utf8max = 4

func (s *scanner) Next() {
	if !s.valid {
		if _, ok := s.Peek(); !ok {
			return
		}
	}
	if s.r == '\n' {
		s.pt.Row++
		s.pt.Column = 0
	} else {
		s.pt.Column += uint32(s.rn)
	}
	s.off += uint32(s.rn)
	s.valid = false
}

// window is the buffered text at the current offset.
func (s *scanner) window() []byte {
	return s.buf[s.off-s.bufOff : s.bufLen]
}

// fill pulls chunks until min bytes are buffered at the current offset
// or the input runs out. Reports whether any byte is available.
func (s *scanner) fill(min int) bool {
	for s.bufLen-int(s.off-s.bufOff) < min && !s.eof {
		chunk := s.read(s.bufOff+uint32(s.bufLen), s.pt)
		if len(chunk) == 0 {
			s.eof = true
			break
		}
		s.ensure(s.bufLen + len(chunk))
		copy(s.buf[s.bufLen:], chunk)
		s.bufLen += len(chunk)
	}
	return s.bufLen > int(s.off-s.bufOff)
}

func (s *scanner) ensure(n int) {
	if n <= len(s.buf) {
		return
	}
	c := 2 * len(s.buf)
	if c < n {
		c = n
	}
	if c < 4096 {
		c = 4096
	}
	if !s.heap {
		if nb := alloc.Grow(s.buf, c); nb != nil {
			s.buf = nb
			return
		}
		s.heap = true
	}
	nb := make([]byte, c)
	copy(nb, s.buf[:s.bufLen])
	s.buf = nb
}

// jump repositions the scanner, keeping the buffer when the target is
// already buffered and starting fresh otherwise.
func (s *scanner) jump(off uint32, pt tree.Point) {
	if off > s.bufOff+uint32(s.bufLen) {
		s.releaseBuf()
		s.bufOff, s.bufLen, s.eof = off, 0, false
	}
	s.off, s.pt = off, pt
	s.aOff, s.aPt = off, pt
	s.valid = false
}

// pointAt reports the position of a buffered offset at or ahead of the
// previous query. Queries must be monotonic between jumps.
func (s *scanner) pointAt(off uint32) tree.Point {
	if off <= s.aOff {
		return s.aPt
	}
	start := int(s.aOff - s.bufOff)
	end := int(off - s.bufOff)
	if end > s.bufLen {
		end = s.bufLen
	}
	pt := s.aPt
	for start < end {
		r, n := s.dec(s.buf[start:end])
		if n <= 0 {
			n = 1
		}
		if r == '\n' {
			pt.Row++
			pt.Column = 0
		} else {
			pt.Column += uint32(n)
		}
		start += n
	}
	s.aOff, s.aPt = off, pt
	return pt
}

func (s *scanner) releaseBuf() {
	if s.buf == nil {
		return
	}
	if !s.heap {
		alloc.ReleaseSlice(s.buf)
	}
	s.buf = nil
}

func (s *scanner) close() { s.releaseBuf() }
