package ebnfkit

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ebnfkit.core'.
func tracer() tracing.Trace {
	return tracing.Select("ebnfkit.core")
}

// Input is a cursor over an immutable byte view. Matchers, scanners and
// parsers all operate on a borrowed Input; within a single parse every
// token and literal match advances the one cursor. The buffer is owned by
// the caller and is never copied or modified.
type Input struct {
	Src []byte // the text being parsed
	C   int    // cursor
}

// NewInput wraps a byte buffer. The buffer is borrowed, not copied.
func NewInput(src []byte) *Input {
	return &Input{Src: src}
}

// NewStringInput wraps a string. The conversion is the only copy the
// toolkit ever makes of input text.
func NewStringInput(src string) *Input {
	return &Input{Src: []byte(src)}
}

// Finished is true if the cursor has passed the last byte of the view.
func (in *Input) Finished() bool {
	return in.C >= len(in.Src)
}

// Peek returns the byte under the cursor, or -1 at the end of the view.
func (in *Input) Peek() int {
	if in.Finished() {
		return -1
	}
	return int(in.Src[in.C])
}

// Take returns the byte under the cursor and advances, or returns -1 at
// the end of the view.
func (in *Input) Take() int {
	if in.Finished() {
		return -1
	}
	b := in.Src[in.C]
	in.C++
	return int(b)
}

// Advance moves the cursor one byte, without bounds checking.
func (in *Input) Advance() {
	in.C++
}

// Mark returns the current cursor for a later ResetTo.
func (in *Input) Mark() int {
	return in.C
}

// ResetTo rewinds (or forwards) the cursor to a previously marked position.
func (in *Input) ResetTo(mark int) {
	in.C = mark
}

// SpanFrom returns the span from a mark up to the current cursor.
func (in *Input) SpanFrom(mark int) Span {
	return Span{mark, in.C}
}

// Rest returns the unconsumed part of the view.
func (in *Input) Rest() []byte {
	if in.Finished() {
		return nil
	}
	return in.Src[in.C:]
}
