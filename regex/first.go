package regex

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/npillmayer/ebnfkit"
)

// First-byte export. The LL(1) analyzer expands token references into the
// set of bytes a token may begin with; that set is exactly the accept
// ranges reachable from the start state across epsilon edges only.

// FirstBytes collects the bytes the automaton may consume first into a
// 256-wide set.
func (r *Regex) FirstBytes() *bitset.BitSet {
	set := bitset.New(256)
	r.CollectFirstBytes(set)
	return set
}

// CollectFirstBytes adds the automaton's first bytes to an existing set.
func (r *Regex) CollectFirstBytes(set *bitset.BitSet) {
	if r == nil || r.start == nil {
		return
	}
	seen := make(map[*state]bool)
	firstBytes(r.start, set, seen)
}

func firstBytes(d *state, set *bitset.BitSet, seen map[*state]bool) {
	if d == nil || seen[d] {
		return
	}
	seen[d] = true
	if d.epsilon {
		for _, next := range d.edges {
			firstBytes(next, set, seen)
		}
		return
	}
	for ch := uint(d.lo); ch <= uint(d.hi); ch++ {
		set.Set(ch)
	}
}

// MatchesEmpty reports whether the automaton accepts the empty input.
// The analyzer uses this as the optionality predicate for tokens.
func (r *Regex) MatchesEmpty() bool {
	reset(r.start)
	return matchAll(r.start, ebnfkit.NewInput(nil))
}
