package ebnf

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/hashset"

	"github.com/npillmayer/ebnfkit/regex"
)

// The LL(1) analysis. FIRST sets are computed from the grammar's
// expression tree, FOLLOW sets from a single walk over the symbol graph.
// Both are vectors of follow descriptors which are expanded lazily into
// byte bitmaps when conflicts are checked:
//
//  1. Wherever a production occurs, the descriptor of the symbol that
//     follows it is included in its FOLLOW set.
//  2. If the production occurs at the end of a { repeat }, the
//     descriptors at the start of the repeated expression are included.
//  3. If the production occurs at the end of another production, the
//     FOLLOW set of the owning production is included.

type followKind int8

const (
	followChar   followKind = iota // a literal byte
	followSymbol                   // the first bytes of a token regex
	followFirst                    // FIRST(production)
	followFollow                   // FOLLOW(production)
)

// followEntry is one element of a FIRST or FOLLOW set. Entries are
// comparable, which the dedup checks below rely on.
type followEntry struct {
	kind followKind
	ch   byte
	rx   *regex.Regex
	prod *Production
}

// Conflict reports two productions competing for the same byte in the
// same decision point of the owning production.
type Conflict struct {
	A, B  *Production
	Byte  byte
	First bool // conflict in the FIRST sets; otherwise in FIRST∩FOLLOW
	Owner *Production
}

func (c Conflict) String() string {
	set := "follow"
	if c.First {
		set = "first"
	}
	return fmt.Sprintf("productions %s and %s are in conflict: both allow %q in the %s set of %s",
		c.A, c.B, c.Byte, set, c.Owner)
}

// --- Optionality ------------------------------------------------------

// factorOptional is true if the factor can derive the empty string.
// Tokens are optional iff their regex matches the empty input; literal
// strings never are.
func factorOptional(fac *factor) bool {
	switch fac.kind {
	case factorOptionalExpr, factorRepeatExpr:
		return true
	case factorParensExpr:
		return expressionOptional(&fac.expr)
	case factorIdentifier:
		return expressionOptional(&fac.prod.expr)
	case factorToken:
		return fac.tok.Pattern.MatchesEmpty()
	case factorString:
		return false
	}
	return false
}

// expressionOptional is true iff every factor of every term is optional.
func expressionOptional(expr *expression) bool {
	for _, t := range expr.terms {
		for _, f := range t.factors {
			if !factorOptional(f) {
				return false
			}
		}
	}
	return true
}

// --- FIRST ------------------------------------------------------------

// populateFirstTerm walks a term's factors left to right, appending one
// descriptor per factor, and stops at the first factor that cannot be
// skipped. It reports whether the whole term is optional.
func populateFirstTerm(h *Production, t *term) bool {
	for _, fac := range t.factors {
		switch fac.kind {
		case factorOptionalExpr, factorRepeatExpr:
			// these can be skipped, so the next factor belongs in the
			// first set as well
			populateFirstExpr(h, &fac.expr)
			continue
		case factorParensExpr:
			if populateFirstExpr(h, &fac.expr) || expressionOptional(&fac.expr) {
				continue
			}
			return false
		case factorIdentifier:
			id := fac.prod
			h.first = append(h.first, followEntry{kind: followFirst, prod: id})
			if expressionOptional(&id.expr) {
				continue
			}
			return false
		case factorString:
			h.first = append(h.first, followEntry{kind: followChar, ch: fac.str[0]})
			return false
		case factorToken:
			h.first = append(h.first, followEntry{kind: followSymbol, rx: fac.tok.Pattern})
			if fac.tok.Pattern.MatchesEmpty() {
				continue
			}
			return false
		}
	}
	return true
}

func populateFirstExpr(h *Production, e *expression) bool {
	allOptional := true
	for _, t := range e.terms {
		if !populateFirstTerm(h, t) {
			allOptional = false
		}
	}
	return allOptional
}

func populateFirst(h *Production) {
	if len(h.first) > 0 {
		return
	}
	populateFirstExpr(h, &h.expr)
}

// --- FOLLOW -----------------------------------------------------------

func containsEntry(entries []followEntry, f followEntry) bool {
	for _, e := range entries {
		if e == f {
			return true
		}
	}
	return false
}

// addSymbols walks the graph and adds all symbols within k steps to the
// follow set. Empty symbols do not count as a step; a small visited set
// keeps chains of them from cycling.
func addSymbols(start *symbol, k int, follows *[]followEntry, empties *hashset.Set) {
	if k <= 0 {
		return
	}
	for alt := start; alt != nil; alt = alt.alt {
		var f followEntry
		switch alt.kind {
		case errorSymbol:
			panic("ebnf: error symbol in graph")
		case emptySymbol:
			if !empties.Contains(alt) {
				empties.Add(alt)
				addSymbols(alt.next, k, follows, empties)
			}
			continue
		case nonterminalSymbol:
			f = followEntry{kind: followFirst, prod: alt.prod}
		case tokenSymbol:
			f = followEntry{kind: followSymbol, rx: alt.tok.Pattern}
		case stringSymbol:
			f = followEntry{kind: followChar, ch: alt.str[0]}
		}
		if !containsEntry(*follows, f) {
			*follows = append(*follows, f)
			addSymbols(alt.next, k-1, follows, empties)
		}
	}
}

// symbolAtEnd determines whether the end of the production a symbol
// occurs in is reachable within k consuming steps.
func symbolAtEnd(start *symbol, k int, empties *hashset.Set) bool {
	if k < 0 {
		return false
	}
	if start == nil {
		return true
	}
	for alt := start; alt != nil; alt = alt.alt {
		if alt.kind == nonterminalSymbol && expressionOptional(&alt.prod.expr) {
			return symbolAtEnd(alt.next, k, empties)
		}
		step := k - 1
		if alt.kind == emptySymbol {
			if empties.Contains(alt) {
				continue
			}
			empties.Add(alt)
			step = k
		}
		if symbolAtEnd(alt.next, step, empties) {
			return true
		}
	}
	return false
}

// megaFollowWalker visits every symbol once and collects follow
// descriptors for each non-terminal occurrence: lookahead-1 descriptors
// from the occurrence's continuation (rules 1 and 2), then FOLLOW of the
// owning production if the occurrence sits at its end (rule 3).
//
// Alt loops cannot arise by construction; next loops are expected and
// detected with the hare-and-tortoise pair.
func (p *Parser) megaFollowWalker(start *symbol, seen *hashset.Set, owner *Production) {
	const lookahead = 1
	for alt := start; alt != nil; alt = alt.alt {
		slow, fast := alt, alt
		for {
			if slow == nil {
				break
			}
			if !seen.Contains(slow) {
				seen.Add(slow)
				p.megaFollowWalker(slow, seen, owner)
				if slow.kind == nonterminalSymbol {
					prod := slow.prod
					// rules 1 and 2
					for this := slow.next; this != nil; this = this.alt {
						addSymbols(this, lookahead, &prod.follow, hashset.New())
					}
					// the production's own graph is walked as well
					p.megaFollowWalker(prod.sym, seen, prod)
					// rule 3
					if symbolAtEnd(slow, lookahead, hashset.New()) {
						prod.follow = append(prod.follow, followEntry{kind: followFollow, prod: owner})
					}
				}
			}
			slow = slow.next
			if fast != nil {
				fast = fast.next
			}
			if fast != nil {
				fast = fast.next
			}
			if slow == fast { // loop detected
				break
			}
		}
	}
}

func (p *Parser) populateFollow() {
	seen := hashset.New()
	for _, prod := range p.productions {
		p.megaFollowWalker(prod.sym, seen, prod)
	}
}

// analyze computes FIRST and FOLLOW for every production, once.
func (p *Parser) analyze() {
	if p.analyzed {
		return
	}
	p.analyzed = true
	for _, prod := range p.productions {
		populateFirst(prod)
	}
	p.populateFollow()
}

// --- Conflict detection -----------------------------------------------

// record pairs an expanded byte set with the production it came from.
type record struct {
	set  *bitset.BitSet
	prod *Production
}

// expandFirst expands a descriptor into the set of reachable bytes.
// FOLLOW references expand to nothing here; they are resolved at their
// owner's decision points.
func expandFirst(f followEntry, reachable *bitset.BitSet, seen map[followEntry]bool) {
	if seen[f] {
		return
	}
	seen[f] = true
	switch f.kind {
	case followSymbol:
		f.rx.CollectFirstBytes(reachable)
	case followFirst:
		for _, fst := range f.prod.first {
			expandFirst(fst, reachable, seen)
		}
	case followFollow:
	case followChar:
		reachable.Set(uint(f.ch))
	}
}

func (p *Parser) populateMaps(owner *Production, follows []followEntry) []record {
	var maps []record
	for _, f := range follows {
		r := record{set: bitset.New(256), prod: owner}
		switch f.kind {
		case followSymbol:
			f.rx.CollectFirstBytes(r.set)
		case followFollow, followFirst:
			r.prod = f.prod
			expandFirst(f, r.set, make(map[followEntry]bool))
		case followChar:
			r.set.Set(uint(f.ch))
		}
		maps = append(maps, r)
	}
	return maps
}

func checkIntersection(records []record, c *Conflict) bool {
	for i := uint(0); i < 256; i++ {
		var seen *Production
		for _, r := range records {
			if r.set.Test(i) {
				if seen != nil {
					c.A = seen
					c.B = r.prod
					c.Byte = byte(i)
					return true
				}
				seen = r.prod
			}
		}
	}
	return false
}

func firstExprHelper(expr *expression) []followEntry {
	tmp := &Production{}
	populateFirstExpr(tmp, expr)
	return tmp.first
}

// conflictsOf checks one production for LL(1) violations:
//
//  1. term0 | term1 — the terms must not share start symbols.
//  2. fac0 fac1 — if fac0 derives the empty sequence, the factors must
//     not share start symbols. (Both surface as FIRST intersections,
//     since every factor contributed its own descriptor.)
//  3. [exp] or {exp} at the end of a term — the start symbols of exp and
//     the symbols that may follow the production must be disjoint.
func (p *Parser) conflictsOf(h *Production) (Conflict, bool) {
	c := Conflict{Owner: h}

	firstMap := p.populateMaps(h, h.first)
	if checkIntersection(firstMap, &c) {
		c.First = true
		return c, true
	}

	followMap := p.populateMaps(h, h.follow)
	for _, t := range h.expr.terms {
		for i := len(t.factors) - 1; i >= 0; i-- {
			fac := t.factors[i]
			optional := false
			switch {
			case fac.kind == factorOptionalExpr || fac.kind == factorRepeatExpr ||
				(fac.kind == factorParensExpr && expressionOptional(&fac.expr)):
				optional = true
				map1 := p.populateMaps(h, firstExprHelper(&fac.expr))
				map1 = append(map1, followMap...)
				if checkIntersection(map1, &c) {
					return c, true
				}
			case fac.kind == factorIdentifier:
				if expressionOptional(&fac.prod.expr) {
					optional = true
					map1 := p.populateMaps(fac.prod, fac.prod.first)
					map1 = append(map1, followMap...)
					if checkIntersection(map1, &c) {
						return c, true
					}
				}
			case fac.kind == factorToken:
				if fac.tok.Pattern.MatchesEmpty() {
					optional = true
					tmp := followEntry{kind: followSymbol, rx: fac.tok.Pattern, prod: h}
					map1 := p.populateMaps(h, []followEntry{tmp})
					map1 = append(map1, followMap...)
					if checkIntersection(map1, &c) {
						return c, true
					}
				}
			}
			if !optional {
				break
			}
		}
	}
	return c, false
}

// Conflicts analyzes the grammar and returns its LL(1) conflicts, one per
// offending production, deduplicated. Analysis always completes; the
// result may be empty.
func (p *Parser) Conflicts() []Conflict {
	p.analyze()
	nts := p.nonterminals()
	var conflicts []Conflict
	reported := make(map[string]bool)
	it := nts.Iterator()
	for it.Next() {
		h := it.Value().(*Production)
		c, found := p.conflictsOf(h)
		if !found {
			continue
		}
		key := conflictKey(c)
		if reported[key] {
			continue
		}
		reported[key] = true
		tracer().Debugf("%s", c)
		conflicts = append(conflicts, c)
	}
	return conflicts
}

// IsLL1 reports whether the grammar is LL(1). The parser runs on non-LL(1)
// grammars as well, it merely backtracks.
func (p *Parser) IsLL1() bool {
	return len(p.Conflicts()) == 0
}

// nonterminals collects all productions of the grammar.
func (p *Parser) nonterminals() *arraylist.List {
	lst := arraylist.New()
	for _, prod := range p.productions {
		lst.Add(prod)
	}
	return lst
}

func conflictKey(c Conflict) string {
	key, err := structhash.Hash(struct {
		A, B, Owner int
		Ch          byte
		First       bool
	}{c.A.ID, c.B.ID, c.Owner.ID, c.Byte, c.First}, 1)
	if err != nil { // no reason for this to happen, but the API demands it
		panic(err)
	}
	return key
}

// FirstSet expands a production's FIRST descriptors into a byte set.
func (p *Parser) FirstSet(prod *Production) *bitset.BitSet {
	p.analyze()
	set := bitset.New(256)
	seen := make(map[followEntry]bool)
	for _, f := range prod.first {
		expandFirst(f, set, seen)
	}
	return set
}

// FollowSet expands a production's FOLLOW descriptors into a byte set,
// resolving FOLLOW-of-owner references transitively.
func (p *Parser) FollowSet(prod *Production) *bitset.BitSet {
	p.analyze()
	set := bitset.New(256)
	seen := make(map[followEntry]bool)
	var expand func(entries []followEntry)
	expand = func(entries []followEntry) {
		for _, f := range entries {
			if seen[f] {
				continue
			}
			if f.kind == followFollow {
				seen[f] = true
				expand(f.prod.follow)
				continue
			}
			expandFirst(f, set, seen)
		}
	}
	expand(prod.follow)
	return set
}

// Productions returns the parser's productions in rule-table order.
func (p *Parser) Productions() []*Production {
	return p.productions
}
