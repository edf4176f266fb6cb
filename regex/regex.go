/*
Package regex implements a small byte-oriented regular-expression dialect,
compiled to nondeterministic finite automata.

The dialect supports literals, escapes (\n, \t, \d, identity otherwise),
character classes with ranges and negation, grouping, alternation, and the
postfix operators * + ? with lazy variants *? and +?. There are no anchors,
no back-references and no Unicode classes; input is treated as opaque
bytes.

Matching walks the automaton depth first. The order of outgoing edges
encodes greediness, and a per-state progress marker breaks epsilon cycles.
A consequence of keeping the marker in the state is that matching is not
reentrant: one Regex must not be used by two matches at the same time.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package regex

import (
	"fmt"

	"github.com/npillmayer/ebnfkit"
	"github.com/npillmayer/ebnfkit/arena"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ebnfkit.regex'.
func tracer() tracing.Trace {
	return tracing.Select("ebnfkit.regex")
}

// StringPattern matches a single- or double-quoted string with backslash
// escapes. It is the pattern grammars and token tables use for string
// literals.
const StringPattern = `'([^'\\]|\\.)*'|"([^"\\]|\\.)*"`

// state is a node of the automaton. A non-epsilon state accepts the
// inclusive byte range [lo,hi] and consumes one byte; an epsilon state
// consumes nothing. end points at the terminal state of the subgraph a
// state heads; a nil end means the state is its own terminal. progress
// holds the last cursor at which the state was visited and guards against
// unproductive revisits during matching.
type state struct {
	lo, hi   byte
	epsilon  bool
	edges    []*state
	end      *state
	progress int
}

// endState resolves the terminal state of a subgraph head.
func endState(s *state) *state {
	if s.end != nil {
		return s.end
	}
	return s
}

// Regex is a compiled expression. All states live in a pool owned by the
// Regex and share its lifetime.
type Regex struct {
	start *state
	src   []byte
	pool  *arena.Pool[state]
}

// Source returns the pattern the regex was compiled from.
func (r *Regex) Source() string {
	return string(r.src)
}

// SyntaxError reports why and where a pattern failed to compile.
type SyntaxError struct {
	Reason string
	Offset int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid regex at offset %d: %s", e.Offset, e.Reason)
}

// Compile translates a pattern into an automaton.
func Compile(pattern string) (*Regex, error) {
	return CompileBytes([]byte(pattern))
}

// CompileBytes is Compile for a byte-slice pattern. The pattern is copied;
// the compiled Regex does not alias the argument.
func CompileBytes(pattern []byte) (*Regex, error) {
	src := append([]byte(nil), pattern...)
	b := &builder{
		in:   ebnfkit.NewInput(src),
		pool: arena.NewPool[state](),
	}
	start := b.automaton(0)
	if b.err == nil && !b.in.Finished() {
		b.fail("parsing stopped before end of pattern")
	}
	if b.err != nil {
		tracer().Debugf("invalid regex %q: %v", src, b.err)
		return nil, b.err
	}
	r := &Regex{start: start, src: src, pool: b.pool}
	reset(r.start)
	return r, nil
}

// MustCompile is Compile for patterns known to be valid; it panics on a
// syntax error.
func MustCompile(pattern string) *Regex {
	r, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return r
}

// --- Compilation ------------------------------------------------------

type builder struct {
	in   *ebnfkit.Input
	pool *arena.Pool[state]
	err  error
}

func (b *builder) fail(format string, args ...interface{}) {
	if b.err == nil {
		b.err = &SyntaxError{
			Reason: fmt.Sprintf(format, args...),
			Offset: b.in.C,
		}
	}
}

func (b *builder) mkState(accept byte) *state {
	s := b.pool.Alloc()
	s.lo, s.hi = accept, accept
	return s
}

func (b *builder) mkEpsilon() *state {
	s := b.pool.Alloc()
	s.epsilon = true
	return s
}

func (b *builder) mkDot() *state {
	s := b.pool.Alloc()
	s.lo, s.hi = 0, 255
	return s
}

func (b *builder) mkDigit() *state {
	s := b.pool.Alloc()
	s.lo, s.hi = '0', '9'
	return s
}

// takeChar reads one symbol, resolving escapes. \n and \t map to their
// control bytes; any other escaped byte is itself.
func (b *builder) takeChar() (byte, bool) {
	if b.in.Finished() {
		return 0, false
	}
	ch := byte(b.in.Take())
	if ch == '\\' {
		if b.in.Finished() {
			b.fail("escape character at end of expression")
			return 0, false
		}
		ch = byte(b.in.Take())
		switch ch {
		case 'n':
			return '\n', true
		case 't':
			return '\t', true
		}
		return ch, true
	}
	return ch, true
}

// symbol matches a single input symbol at top level; class interiors read
// their bytes with takeChar directly, which is what makes metacharacters
// literal inside [].
func (b *builder) symbol() *state {
	if b.in.Finished() {
		return nil
	}
	escaped := b.in.Peek() == '\\'
	ch, ok := b.takeChar()
	if !ok {
		return nil
	}
	if escaped {
		if ch == 'd' {
			return b.mkDigit()
		}
		return b.mkState(ch)
	}
	switch ch {
	case '(', ')', '|', '+', '*', '?', '[', ']':
		b.in.C-- // put it back
		b.fail("unescaped literal %c", ch)
		return nil
	case '.':
		return b.mkDot()
	}
	return b.mkState(ch)
}

// class parses the interior of a [...] class. The accepted bytes are
// collected into a bitmap over 0..255, inverted for a leading ^, and
// lowered to one dispatch state with a child per maximal contiguous run.
func (b *builder) class() *state {
	var bitmap [256]bool
	negate := false

	if b.in.Peek() == '^' {
		negate = true
		b.in.Advance()
	}
	if b.in.Peek() == ']' {
		b.fail("empty character class")
		return nil
	}

	for b.in.Peek() != ']' && !b.in.Finished() {
		from, ok := b.takeChar()
		if !ok {
			return nil
		}
		to := from
		if b.in.Peek() == '-' {
			b.in.Advance()
			to, ok = b.takeChar()
			if !ok {
				return nil
			}
			if to < from {
				b.fail("range contains no values")
				return nil
			}
		}
		for ch := int(from); ch <= int(to); ch++ {
			bitmap[ch] = true
		}
	}

	if negate {
		for i := range bitmap {
			bitmap[i] = !bitmap[i]
		}
	}

	class := b.mkEpsilon()
	final := b.mkEpsilon()
	class.end = final

	for start := 0; start < 256; start++ {
		if !bitmap[start] {
			continue
		}
		end := start + 1
		for end < 256 && bitmap[end] {
			end++
		}
		run := b.mkState(byte(start))
		run.hi = byte(end - 1) // accept range is inclusive
		run.edges = append(run.edges, final)
		class.edges = append(class.edges, run)
		start = end
	}
	return class
}

// next parses the next elementary match: a class, a group, or a symbol.
func (b *builder) next(terminator byte) *state {
	switch ch := b.in.Peek(); ch {
	case '[':
		b.in.Advance()
		result := b.class()
		if result == nil {
			return nil
		}
		if b.in.Take() != ']' {
			b.fail("unterminated character class")
			return nil
		}
		return result
	case ']':
		if terminator != ']' {
			b.fail("unmatched class terminator")
		}
		return nil
	case ')':
		if terminator != ')' {
			b.fail("unmatched group terminator")
		}
		return nil
	case '(':
		b.in.Advance()
		result := b.automaton(')')
		if result == nil {
			return nil
		}
		if b.in.Take() != ')' {
			b.fail("unterminated group")
			return nil
		}
		return result
	}
	return b.symbol()
}

// automaton builds the machine for one regex, up to the terminator (0 for
// the whole pattern). Alternation is right-associative: its left subtree
// is the automaton built so far.
func (b *builder) automaton(terminator byte) *state {
	start := b.mkEpsilon()
	next := start

	for !b.in.Finished() {
		nw := b.next(terminator)
		if nw == nil {
			break
		}

		ch := b.in.Peek()
		if ch == '*' || ch == '+' || ch == '?' {
			b.in.Advance()

			greedy := true
			optional := ch == '*' || ch == '?'
			repeatable := ch == '*' || ch == '+'

			if repeatable && b.in.Peek() == '?' {
				greedy = false
				b.in.Advance()
			}

			loopStart := b.mkEpsilon()
			loopEnd := b.mkEpsilon()
			newEnd := endState(nw)

			next.edges = append(next.edges, loopStart)
			next = loopEnd

			// The matcher walks the automaton depth first, so the order of
			// outgoing edges decides between entering the loop again and
			// exiting it as early as possible.
			if greedy {
				if repeatable {
					newEnd.edges = append(newEnd.edges, loopStart)
				}
				newEnd.edges = append(newEnd.edges, loopEnd)
				loopStart.edges = append(loopStart.edges, nw)
				if optional {
					loopStart.edges = append(loopStart.edges, loopEnd)
				}
			} else {
				newEnd.edges = append(newEnd.edges, loopEnd)
				if repeatable {
					newEnd.edges = append(newEnd.edges, loopStart)
				}
				if optional {
					loopStart.edges = append(loopStart.edges, loopEnd)
				}
				loopStart.edges = append(loopStart.edges, nw)
			}
		} else {
			next.edges = append(next.edges, nw)
			next = endState(nw)
		}

		start.end = next

		if b.in.Peek() == '|' {
			b.in.Advance()
			left := start
			right := b.automaton(terminator)
			if right == nil {
				return nil
			}
			parent := b.mkEpsilon()
			parent.edges = append(parent.edges, left, right)
			start = parent
			next = b.mkEpsilon()
			endState(left).edges = append(endState(left).edges, next)
			endState(right).edges = append(endState(right).edges, next)
		}
	}

	start.end = endState(next)
	return start
}
