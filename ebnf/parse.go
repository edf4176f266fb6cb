package ebnf

import (
	"github.com/npillmayer/ebnfkit"
	"github.com/npillmayer/ebnfkit/scanner"
)

// The parser driver walks the symbol graph depth first. Whenever a step
// matches and the symbol has an alternative, a frame is saved so the
// alternative can be tried later; a frame is resumed only while the
// cursor still sits where the frame was taken, so backtracking never
// re-reads consumed input. Backtracking is local to a production: a
// nested production that fails does not reset the cursor, it stays where
// the nested parse stopped, and the caller's own frame stack decides what
// to try next.

// parseFrame is a checkpoint for an untried alternative.
type parseFrame struct {
	cursor int     // input cursor at the checkpointed step
	symbol *symbol // the alternative to resume with
}

// parseProduction implements one production parse. It returns the
// production's AST subtree, or nil if the production does not match at
// the cursor.
func (p *Parser) parseProduction(prod *Production) *AST {
	in := p.scanner.Input()
	start := in.C
	node := &AST{Kind: prod.ID}
	insert := &node.FirstChild
	var stack []parseFrame
	matched := false

	x := prod.sym
	for x != nil {
		var nextChild *AST
		frame := parseFrame{cursor: in.C}

		switch x.kind {
		case errorSymbol:
			panic("ebnf: error symbol in graph")
		case emptySymbol:
			matched = true
		case nonterminalSymbol:
			nextChild = p.parseProduction(x.prod)
			matched = nextChild != nil
		case tokenSymbol:
			span, ok := p.scanner.MatchToken(x.tok.ID)
			matched = ok
			if ok {
				nextChild = &AST{
					Name:  []byte(x.tok.Name),
					Kind:  int(x.tok.ID),
					Range: span,
				}
			}
		case stringSymbol:
			span, ok := p.scanner.MatchLiteral(x.str)
			matched = ok
			if ok {
				nextChild = &AST{
					Name:  x.str,
					Kind:  KindString,
					Range: span,
				}
			}
		}

		if matched && nextChild != nil {
			*insert = nextChild
			insert = &nextChild.Next
		}

		// Pick the next state; if the 'next' edge is taken, remember the
		// alt edge so it can be tried instead later.
		next, alt := x.next, x.alt
		if alt != nil && matched {
			frame.symbol = alt
			stack = append(stack, frame)
		}
		if matched {
			x = next
		} else {
			x = alt
		}

		// A dead end without a match: resume a checkpoint, but only one
		// whose cursor still fits.
		if x == nil && !matched {
			if n := len(stack); n > 0 {
				f := stack[n-1]
				stack = stack[:n-1]
				if f.cursor == in.C {
					x = f.symbol
				}
			}
		}
	}

	if !matched {
		return nil
	}
	node.Range = in.SpanFrom(start)
	node.Name = prod.Identifier
	return node
}

// Parse parses input starting at the rule with the given table id. It
// succeeds only if the start rule matches and nothing but whitespace
// remains; on failure it returns (nil, false) and leaves the input cursor
// at the furthest progress, where Input.DumpContext can report it.
func (p *Parser) Parse(in *ebnfkit.Input, startRule int) (*AST, bool) {
	prod := p.ProductionByID(startRule)
	if prod == nil {
		tracer().Errorf("no production with id %d", startRule)
		return nil, false
	}
	p.scanner.SetInput(in)
	root := p.parseProduction(prod)
	if root == nil {
		return nil, false
	}
	if tok, _ := p.scanner.Next(nil); tok != scanner.EOF {
		tracer().Debugf("trailing input after %s", prod)
		return nil, false
	}
	return root, true
}
