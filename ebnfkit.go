package ebnfkit

import "fmt"

// --- Spans ------------------------------------------------------------

// Span is a small type for capturing a run of input bytes. Every token
// lexeme, every AST node and every grammar fragment tracks which input
// positions it covers. A span denotes a start position and the position
// just behind the end. Spans reference the user's input buffer; the
// toolkit never copies input.
type Span [2]int // (x…y)

// MakeSpan creates a span from a start and an end position.
func MakeSpan(from, to int) Span {
	return Span{from, to}
}

// From returns the start value of a span.
func (s Span) From() int {
	return s[0]
}

// To returns the end value of a span.
func (s Span) To() int {
	return s[1]
}

// Len returns the length of (x…y)
func (s Span) Len() int {
	return s[1] - s[0]
}

func (s Span) IsNull() bool {
	return s == Span{}
}

func (s Span) Extend(other Span) Span {
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

// Bytes returns the run of input bytes the span covers.
// src must be the buffer the span was produced from.
func (s Span) Bytes(src []byte) []byte {
	return src[s[0]:s[1]]
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}

// --- Token categories -------------------------------------------------

// TokType is a category type for scanner tokens. Applications define their
// own token ids; a scanner hands them out as indices into its token table.
type TokType int

// Pseudo token types returned by scanners.
const (
	ErrorType TokType = -1 // no registered token matched
	EOFType   TokType = -2 // input exhausted
)
