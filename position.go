package ebnfkit

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// Position is a line/column pair, both 1-based.
type Position struct {
	Line   int
	Column int
}

// NoPosition is returned for spans which do not lie within their source.
var NoPosition = Position{-1, -1}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// PositionOf locates the start of a span within a source buffer.
// offset is the span's From-value. Returns NoPosition if the offset does
// not lie within source.
func PositionOf(source []byte, offset int) Position {
	if offset < 0 || offset > len(source) {
		return NoPosition
	}
	line, column := 1, 1
	for i := 0; i < len(source); i++ {
		if i == offset {
			return Position{Line: line, Column: column}
		}
		if source[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	if offset == len(source) {
		return Position{Line: line, Column: column}
	}
	return NoPosition
}

// DumpContext prints the line containing the input's cursor with a caret
// under the cursor position, plus one line of context on either side.
// Output goes to the core tracer at the given level.
func (in *Input) DumpContext(L tracing.TraceLevel) {
	f := trace(L)
	lineno, caret := 1, 0
	lineStart := 0
	var prev []byte
	prevNo := 0
	for i := 0; i < in.C && i < len(in.Src); i++ {
		if in.Src[i] == '\n' {
			prev = in.Src[lineStart:i]
			prevNo = lineno
			lineno++
			lineStart = i + 1
		}
	}
	caret = in.C - lineStart
	lineEnd := lineStart
	for lineEnd < len(in.Src) && in.Src[lineEnd] != '\n' {
		lineEnd++
	}
	if prev != nil {
		f("line %3d: %s", prevNo, prev)
	}
	f("line %3d: %s", lineno, in.Src[lineStart:lineEnd])
	f("          %*s", caret+1, "^")
	if lineEnd < len(in.Src) {
		nextEnd := lineEnd + 1
		for nextEnd < len(in.Src) && in.Src[nextEnd] != '\n' {
			nextEnd++
		}
		f("line %3d: %s", lineno+1, in.Src[lineEnd+1:nextEnd])
	}
}

func trace(level tracing.TraceLevel) func(string, ...interface{}) {
	switch level {
	case tracing.LevelDebug:
		return tracer().Debugf
	case tracing.LevelInfo:
		return tracer().Infof
	case tracing.LevelError:
		return tracer().Errorf
	}
	return tracer().Debugf
}
