package ebnf_test

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/ebnfkit/ebnf"
	"github.com/npillmayer/ebnfkit/scanner"
)

func checkLL1(t *testing.T, expected bool, rules []ebnf.Rule, tokens []scanner.TokenDef) {
	t.Helper()
	p, err := ebnf.NewParser(rules, tokens)
	if err != nil {
		t.Fatalf("grammar failed to compile: %v", err)
	}
	if got := p.IsLL1(); got != expected {
		t.Errorf("IsLL1 = %v, want %v (rules %v, conflicts %v)", got, expected, rules, p.Conflicts())
	}
}

func TestLL1TermAlternatives(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.ebnf")
	defer teardown()
	// rule 1: the terms of an alternation must not share start symbols
	checkLL1(t, true, []ebnf.Rule{
		{Name: "A", RHS: "B | C"},
		{Name: "B", RHS: "'b'"},
		{Name: "C", RHS: "'c'"},
	}, nil)
	checkLL1(t, false, []ebnf.Rule{
		{Name: "A", RHS: "B | C"},
		{Name: "B", RHS: "'b'"},
		{Name: "C", RHS: "'b'"},
	}, nil)
	checkLL1(t, true, []ebnf.Rule{{Name: "A", RHS: "'b' | 'c'"}}, nil)
	checkLL1(t, false, []ebnf.Rule{{Name: "A", RHS: "'bc' | 'bb'"}}, nil)
}

func TestLL1EmptyPrefix(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.ebnf")
	defer teardown()
	// rule 2: if a factor derives the empty sequence, adjacent factors
	// must not share start symbols
	checkLL1(t, true, []ebnf.Rule{{Name: "A", RHS: "'b' 'b'"}}, nil)
	checkLL1(t, false, []ebnf.Rule{{Name: "A", RHS: "[ 'b' ] 'b' "}}, nil)
	checkLL1(t, true, []ebnf.Rule{
		{Name: "A", RHS: "B 'b'"},
		{Name: "B", RHS: "[ 'a' ] { 'd' }"},
	}, nil)
	checkLL1(t, false, []ebnf.Rule{
		{Name: "A", RHS: "B 'b'"},
		{Name: "B", RHS: "'a' { 'b' }"},
	}, nil)
	checkLL1(t, false, []ebnf.Rule{
		{Name: "A", RHS: "B 'b'"},
		{Name: "B", RHS: "[ 'a' ] { 'b' }"},
	}, nil)
}

func TestLL1OptionalTails(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.ebnf")
	defer teardown()
	// rule 3: the start symbols of an optional tail and the symbols that
	// may follow the production must be disjoint

	// scenario 1: a term ends with an optional
	checkLL1(t, false, []ebnf.Rule{
		{Name: "A", RHS: "B 'x'"},
		{Name: "B", RHS: "'b' { 'x' }"},
	}, nil)
	checkLL1(t, false, []ebnf.Rule{
		{Name: "A", RHS: "B 'x'"},
		{Name: "B", RHS: "'b' [ 'x' ]"},
	}, nil)
	checkLL1(t, false, []ebnf.Rule{
		{Name: "A", RHS: "B 'x'"},
		{Name: "B", RHS: "'b' { [ 'x' ] }"},
	}, nil)
	checkLL1(t, true, []ebnf.Rule{
		{Name: "A", RHS: "B 'x'"},
		{Name: "B", RHS: "'b' { [ 'x' ] } 'x' "},
	}, nil)
	checkLL1(t, true, []ebnf.Rule{
		{Name: "A", RHS: "B 'x'"},
		{Name: "B", RHS: "'b' 'x' "},
	}, nil)
	checkLL1(t, false, []ebnf.Rule{
		{Name: "A", RHS: "B 'x'"},
		{Name: "B", RHS: "{ 'x' } "},
	}, nil)

	// scenario 2: a term ends with a production deriving the empty set
	checkLL1(t, false, []ebnf.Rule{
		{Name: "A", RHS: "B 'x'"},
		{Name: "B", RHS: "'a' C"},
		{Name: "C", RHS: "{ 'x' }"},
	}, nil)
	checkLL1(t, true, []ebnf.Rule{
		{Name: "A", RHS: "B 'x'"},
		{Name: "B", RHS: "'a' C"},
		{Name: "C", RHS: "'x' { 'y' } 'x'"},
	}, nil)

	// scenario 3: a term ends with a token whose regex matches empty
	xTokens := []scanner.TokenDef{{Name: "X", Pattern: "x*"}}
	checkLL1(t, false, []ebnf.Rule{
		{Name: "A", RHS: "B 'x'"},
		{Name: "B", RHS: "'a' X"},
	}, xTokens)
	checkLL1(t, true, []ebnf.Rule{
		{Name: "A", RHS: "B 'x'"},
		{Name: "B", RHS: "'a' X 'x'"},
	}, xTokens)
}

func TestLL1DisjointAlternatives(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.ebnf")
	defer teardown()
	checkLL1(t, true, []ebnf.Rule{
		{Name: "dong", RHS: "'a' strong | 'g' string"},
		{Name: "string", RHS: `'"' alpha { alpha } '"'`},
		{Name: "strong", RHS: `'"' alpha { alpha } '"'`},
		{Name: "alpha", RHS: "'h' | 'n' | 'g'"},
	}, nil)
	checkLL1(t, false, []ebnf.Rule{
		{Name: "A", RHS: "B | C"},
		{Name: "B", RHS: "('a' | 'b' | 'c' | 'd' | 'e' | 'f') 'b'"},
		{Name: "C", RHS: "('e' | 'f' | 'g' | 'h' | 'i' | 'j') 'c'"},
	}, nil)
}

func TestConflictReport(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.ebnf")
	defer teardown()
	p, err := ebnf.NewParser([]ebnf.Rule{
		{Name: "A", RHS: "B | C"},
		{Name: "B", RHS: "'b'"},
		{Name: "C", RHS: "'b'"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	conflicts := p.Conflicts()
	if len(conflicts) == 0 {
		t.Fatal("expected a conflict report")
	}
	c := conflicts[0]
	if string(c.A.Identifier) != "B" || string(c.B.Identifier) != "C" {
		t.Errorf("conflict between %s and %s, want B and C", c.A, c.B)
	}
	if c.Byte != 'b' {
		t.Errorf("conflict byte %q, want 'b'", c.Byte)
	}
	if !c.First {
		t.Error("conflict should be in the first sets")
	}
	if string(c.Owner.Identifier) != "A" {
		t.Errorf("conflict owner %s, want A", c.Owner)
	}
}

func TestFirstFollowSets(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.ebnf")
	defer teardown()
	tokens := []scanner.TokenDef{{Name: "number", Pattern: `-?\d+`}}
	rules := []ebnf.Rule{
		{Name: "expression", RHS: "term {('+' | '-') term }"},
		{Name: "term", RHS: "factor {('*' | '/') factor }"},
		{Name: "factor", RHS: "digits | '(' expression ')'"},
		{Name: "digits", RHS: "number"},
	}
	p, err := ebnf.NewParser(rules, tokens)
	if err != nil {
		t.Fatal(err)
	}
	digits := p.FindProduction([]byte("digits"))
	first := p.FirstSet(digits)
	for _, b := range []byte("-0123456789") {
		if !first.Test(uint(b)) {
			t.Errorf("FIRST(digits) misses %q", b)
		}
	}
	if first.Test('+') {
		t.Error("FIRST(digits) contains '+'")
	}
	term := p.FindProduction([]byte("term"))
	follow := p.FollowSet(term)
	for _, b := range []byte("+-") {
		if !follow.Test(uint(b)) {
			t.Errorf("FOLLOW(term) misses %q", b)
		}
	}
	if follow.Test('*') {
		t.Error("FOLLOW(term) contains '*'")
	}
}
