package regex

import (
	"github.com/npillmayer/ebnfkit"
)

// The DFS kernel. A state first consumes its byte (unless it is an
// epsilon state), then tries its outgoing edges in order. The progress
// marker stops a revisit of the same state at the same cursor, which is
// the only way the depth-first walk could fail to terminate on a cyclic
// automaton.

// matchAll succeeds only if the walk ends on a state without successors
// AND the input is exhausted.
func matchAll(d *state, in *ebnfkit.Input) bool {
	if !d.epsilon {
		if in.Finished() {
			return false
		}
		ch := byte(in.Take())
		if ch < d.lo || ch > d.hi {
			return false
		}
	}
	for _, next := range d.edges {
		pos := in.C
		if next.progress == pos { // no progress since the last visit
			continue
		}
		next.progress = pos
		if matchAll(next, in) {
			return true
		}
		in.C = pos
	}
	return in.Finished() && len(d.edges) == 0
}

// matchPartial succeeds on any walk ending on a state without successors,
// leaving the cursor behind the consumed prefix.
func matchPartial(d *state, in *ebnfkit.Input) bool {
	if !d.epsilon {
		if in.Finished() {
			return false
		}
		ch := byte(in.Take())
		if ch < d.lo || ch > d.hi {
			return false
		}
	}
	for _, next := range d.edges {
		pos := in.C
		if next.progress == pos {
			continue
		}
		next.progress = pos
		if matchPartial(next, in) {
			return true
		}
		in.C = pos
	}
	return len(d.edges) == 0
}

// reset clears the progress markers of all states reachable from d.
// It has to run before every top-level match.
func reset(d *state) {
	if d == nil {
		return
	}
	d.progress = -1
	for _, next := range d.edges {
		if next.progress == -1 {
			continue
		}
		reset(next)
	}
}

// MatchStrict reports whether the automaton consumes the whole input.
func (r *Regex) MatchStrict(input []byte) bool {
	in := ebnfkit.NewInput(input)
	reset(r.start)
	return matchAll(r.start, in)
}

// Match attempts a partial match at the input's current cursor. On success
// the cursor is advanced to the end of the match and the matched span is
// returned; on failure the cursor is left unchanged.
func (r *Regex) Match(in *ebnfkit.Input) (ebnfkit.Span, bool) {
	pos := in.C
	reset(r.start)
	if matchPartial(r.start, in) {
		return ebnfkit.MakeSpan(pos, in.C), true
	}
	in.C = pos
	return ebnfkit.Span{}, false
}

// MatchPrefix attempts a partial match anchored at the start of input.
func (r *Regex) MatchPrefix(input []byte) (ebnfkit.Span, bool) {
	in := ebnfkit.NewInput(input)
	reset(r.start)
	if matchPartial(r.start, in) {
		return ebnfkit.MakeSpan(0, in.C), true
	}
	return ebnfkit.Span{}, false
}

// Find returns the leftmost partial match, trying every offset in turn.
func (r *Regex) Find(input []byte) (ebnfkit.Span, bool) {
	in := ebnfkit.NewInput(input)
	for i := 0; i < len(input); i++ {
		reset(r.start)
		in.C = i
		if matchPartial(r.start, in) {
			return ebnfkit.MakeSpan(i, in.C), true
		}
	}
	return ebnfkit.Span{}, false
}

// Matches compiles pattern and strict-matches it against input. A pattern
// that fails to compile matches nothing.
func Matches(pattern, input string) bool {
	r, err := Compile(pattern)
	if err != nil {
		return false
	}
	return r.MatchStrict([]byte(input))
}
