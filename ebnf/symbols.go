package ebnf

import (
	"fmt"

	"github.com/emirpasic/gods/sets/hashset"

	"github.com/npillmayer/ebnfkit/scanner"
)

// The symbol graph. Each production's expression is lowered into symbol
// nodes connected by next (sequence) and alt (alternation) edges. Loops
// and optionals are encoded structurally: a repeat is a loop-head epsilon
// whose alt exits the loop and whose body links back to it; an optional
// gets an alt-terminated epsilon attached to every end-reachable node.
//
// Alt chains are constructed so that no cyclical alt list can arise; next
// chains are cyclic for repeats. Tail operations therefore run Floyd's
// hare-and-tortoise defensively; a detected alt cycle is a bug in the
// compiler and aborts.

type symbolKind int8

const (
	errorSymbol symbolKind = iota // sentinel, never part of a built graph
	emptySymbol
	nonterminalSymbol
	tokenSymbol
	stringSymbol
)

type symbol struct {
	kind symbolKind
	str  []byte // stringSymbol: the literal to match
	next *symbol
	alt  *symbol
	prod *Production
	tok  *scanner.Token
}

func (s *symbol) String() string {
	switch s.kind {
	case emptySymbol:
		return "ε"
	case nonterminalSymbol:
		return fmt.Sprintf("<%s>", s.prod.Identifier)
	case tokenSymbol:
		return fmt.Sprintf("tok(%s)", s.tok.Name)
	case stringSymbol:
		return fmt.Sprintf("'%s'", s.str)
	}
	return "?!"
}

func (p *Parser) mkSymbol(kind symbolKind) *symbol {
	s := p.pool.Alloc()
	s.kind = kind
	return s
}

// tailAlt finds the last symbol of an alt chain, or nil if the chain is
// circular.
func tailAlt(s *symbol) *symbol {
	slow, fast := s, s
	for {
		if fast.alt == nil {
			return fast
		}
		fast = fast.alt
		if fast.alt == nil {
			return fast
		}
		fast = fast.alt
		slow = slow.alt
		if slow == fast {
			return nil
		}
	}
}

// tailNext finds the last symbol of a next chain, or nil if the chain is
// circular.
func tailNext(s *symbol) *symbol {
	slow, fast := s, s
	for {
		if fast.next == nil {
			return fast
		}
		fast = fast.next
		if fast.next == nil {
			return fast
		}
		fast = fast.next
		slow = slow.next
		if slow == fast {
			return nil
		}
	}
}

func appendAlt(chain, newTail *symbol) bool {
	chain = tailAlt(chain)
	if chain != nil {
		chain.alt = newTail
	}
	return chain != nil
}

// appendAllNexts links tail as the continuation of every dead-end node
// reachable from head. This is the terminating-state consolidation the
// parser depends on: afterwards the subgraph has exactly one exit path.
func appendAllNexts(head, tail *symbol, seen *hashset.Set) {
	if seen.Contains(head) {
		return
	}
	seen.Add(head)
	for ; head != nil && head != tail; head = head.alt {
		if head.next == nil {
			head.next = tail
		} else {
			appendAllNexts(head.next, tail, seen)
		}
	}
}

// makeRepeatable wraps a subexpression into { … }: a loop head whose next
// is the body, whose alt exits, and to which every end of the body links
// back.
func (p *Parser) makeRepeatable(subexpression *symbol) *symbol {
	loop := p.mkSymbol(emptySymbol)

	// ensure that all nexts of the subexpression can repeat the loop
	seen := hashset.New()
	appendAllNexts(subexpression, loop, seen)

	loop.next = subexpression
	empty := p.mkSymbol(emptySymbol)
	loop.alt = empty
	return loop
}

// makeOptional wraps a subexpression into [ … ]: an alt-terminated
// epsilon reachable from every end of the body.
func (p *Parser) makeOptional(subexpression *symbol) *symbol {
	empty := p.mkSymbol(emptySymbol)

	// ensure that all nexts of the subexpression lead to whatever follows
	// this optional
	seen := hashset.New()
	appendAllNexts(subexpression, empty, seen)

	if !appendAlt(subexpression, empty) {
		panic("ebnf: circular alt chain prevents loop exit")
	}
	return subexpression
}

type factorSymbols struct {
	head *symbol
	tail *symbol
}

func (p *Parser) factorSymbol(f *factor) factorSymbols {
	switch f.kind {
	case factorOptionalExpr, factorRepeatExpr, factorParensExpr:
		subexpression := p.expressionSymbol(&f.expr)
		if f.kind == factorRepeatExpr {
			subexpression = p.makeRepeatable(subexpression)
		} else if f.kind == factorOptionalExpr {
			subexpression = p.makeOptional(subexpression)
		}

		// Expressions can have many terminating states. Consolidate them
		// in a single empty symbol.
		tail := p.mkSymbol(emptySymbol)
		seen := hashset.New()
		appendAllNexts(subexpression, tail, seen)

		return factorSymbols{head: subexpression, tail: tail}
	case factorIdentifier:
		if f.prod == nil {
			panic(fmt.Sprintf("ebnf: unresolved identifier %s", f.name))
		}
		prod := p.mkSymbol(nonterminalSymbol)
		prod.prod = f.prod
		return factorSymbols{prod, prod}
	case factorString:
		s := p.mkSymbol(stringSymbol)
		s.str = f.str
		return factorSymbols{s, s}
	case factorToken:
		s := p.mkSymbol(tokenSymbol)
		s.tok = f.tok
		return factorSymbols{s, s}
	}
	panic("ebnf: malformed factor tag")
}

func (p *Parser) termSymbol(t *term) *symbol {
	var head, tail *symbol
	for _, f := range t.factors {
		factors := p.factorSymbol(f)
		if head == nil {
			head = factors.head
		} else {
			tail.next = factors.head
		}
		tail = factors.tail
	}
	return head
}

func (p *Parser) expressionSymbol(expr *expression) *symbol {
	var newExpression *symbol
	for _, t := range expr.terms {
		newTerm := p.termSymbol(t)
		if newExpression == nil {
			newExpression = newTerm
		} else if !appendAlt(newExpression, newTerm) {
			panic("ebnf: circular alt chain")
		}
	}
	return newExpression
}
