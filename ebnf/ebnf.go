/*
Package ebnf compiles EBNF grammars into linked symbol graphs and parses
input with a backtracking top-down parser.

A grammar arrives either as plain EBNF text

	expression = term {('+' | '-' ) term } .
	term       = factor {('*' | '/') factor } .
	factor     = digits | '(' expression ')' .
	digits     = number .

or as a table of rule strings whose indices double as AST node kinds.
Identifiers on a right-hand side refer to other productions or, failing
that, to tokens of the scanner the parser was built with. Every
production's expression is lowered into a graph of symbol nodes connected
by next (sequence) and alt (alternation) edges; loops and optionals are
encoded structurally in the graph.

Parsing walks the symbol graph depth first with an explicit stack of
alternative branches and produces an AST of matched tokens and
sub-productions. The companion LL(1) analysis in this package computes
FIRST and FOLLOW sets over the same graph and reports conflicts; the
parser runs on non-LL(1) grammars as well, it merely backtracks.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package ebnf

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/ebnfkit"
	"github.com/npillmayer/ebnfkit/arena"
	"github.com/npillmayer/ebnfkit/regex"
	"github.com/npillmayer/ebnfkit/scanner"
)

// tracer traces with key 'ebnfkit.ebnf'.
func tracer() tracing.Trace {
	return tracing.Select("ebnfkit.ebnf")
}

// --- Errors -----------------------------------------------------------

// ErrorKind classifies grammar compilation failures.
type ErrorKind int

const (
	UnknownIdentifier ErrorKind = iota
	EmptyString
	Unbalanced
	UnexpectedEOF
	DuplicateProduction
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownIdentifier:
		return "unknown identifier"
	case EmptyString:
		return "empty string"
	case Unbalanced:
		return "unbalanced"
	case UnexpectedEOF:
		return "unexpected end of grammar"
	case DuplicateProduction:
		return "duplicate production"
	}
	return "unknown error"
}

// GrammarError is a grammar compilation failure, annotated with the
// position in the grammar source.
type GrammarError struct {
	Kind     ErrorKind
	Position ebnfkit.Position
	Detail   string
}

func (e *GrammarError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s at %s", e.Kind, e.Position)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Position, e.Detail)
}

// --- Grammar parse tree -----------------------------------------------

// The parse tree of the grammar source itself. It is kept after the
// symbol graph is built because the FIRST/FOLLOW analysis re-walks it.

type factorKind int8

const (
	factorOptionalExpr factorKind = iota // [ expression ]
	factorRepeatExpr                     // { expression }
	factorParensExpr                     // ( expression )
	factorIdentifier
	factorString
	factorToken
)

type factor struct {
	kind factorKind
	rng  []byte         // source range of the factor
	str  []byte         // factorString: the bytes between the quotes
	name []byte         // factorIdentifier: referenced name
	prod *Production    // resolved production reference
	tok  *scanner.Token // resolved token reference
	expr expression     // nested expression for (…), […], {…}
}

type term struct {
	rng     []byte
	factors []*factor
}

type expression struct {
	rng   []byte
	terms []*term
}

// Production is a named grammar rule. ID is the rule's position in the
// input rule table and doubles as the AST node kind.
type Production struct {
	Identifier []byte
	ID         int
	expr       expression
	sym        *symbol // start of the lowered symbol graph
	first      []followEntry
	follow     []followEntry
}

func (p *Production) String() string {
	return fmt.Sprintf("%s.%d", p.Identifier, p.ID)
}

// Parser owns a scanner, a set of productions and the arena the symbol
// graph is carved from.
type Parser struct {
	pool        *arena.Pool[symbol]
	scanner     *scanner.Scanner
	productions []*Production
	analyzed    bool
}

// Rule is one row of a rule table. A row with an empty name is a
// placeholder: it keeps its index (so rule ids can mirror a sparse enum)
// but defines no production.
type Rule struct {
	Name string
	RHS  string
}

// --- Built-in meta grammar --------------------------------------------

// The regexes for scanning EBNF text itself. They are compiled once per
// process and shared; regex matching resets its own state per match, and
// grammar compilation is single-threaded per parser.

type metaSet struct {
	whitespace  *regex.Regex
	assignment  *regex.Regex
	period      *regex.Regex
	alternation *regex.Regex
	identifier  *regex.Regex
	str         *regex.Regex
}

var metaOnce sync.Once
var meta *metaSet

func metaRegexes() *metaSet {
	metaOnce.Do(func() {
		meta = &metaSet{
			whitespace:  regex.MustCompile(`[ \n\t]*`),
			assignment:  regex.MustCompile(`[ \n\t]*=[ \n\t]*`),
			period:      regex.MustCompile(`[ \n\t]*\.`),
			alternation: regex.MustCompile(`[ \n\t]*\|[ \n\t]*`),
			identifier:  regex.MustCompile(`[a-zA-Z][a-zA-Z0-9]*`),
			str:         regex.MustCompile(regex.StringPattern),
		}
	})
	return meta
}

// --- Grammar source parsing -------------------------------------------

// grammarReader parses grammar text into the expression tree.
type grammarReader struct {
	in   *ebnfkit.Input
	meta *metaSet
}

func (g *grammarReader) fail(kind ErrorKind, format string, args ...interface{}) error {
	if g.in.Finished() && kind == Unbalanced {
		kind = UnexpectedEOF
	}
	return &GrammarError{
		Kind:     kind,
		Position: ebnfkit.PositionOf(g.in.Src, g.in.C),
		Detail:   fmt.Sprintf(format, args...),
	}
}

func (g *grammarReader) match(r *regex.Regex) bool {
	_, ok := r.Match(g.in)
	return ok
}

func (g *grammarReader) matchLiteral(literal byte) bool {
	if g.in.Peek() == int(literal) {
		g.in.Advance()
		return true
	}
	return false
}

// point returns the current cursor offset, for source-range bookkeeping.
func (g *grammarReader) point() int {
	return g.in.C
}

func (g *grammarReader) rng(from int) []byte {
	return g.in.Src[from:g.in.C]
}

// factor parses: identifier | string | "(" expression ")" |
// "[" expression "]" | "{" expression "}" .
// It returns (nil, nil) if no factor starts at the cursor.
func (g *grammarReader) factor() (*factor, error) {
	g.match(g.meta.whitespace)
	start := g.point()
	f := &factor{}
	switch ch := g.in.Peek(); ch {
	case '"', '\'':
		f.kind = factorString
		if !g.match(g.meta.str) {
			return nil, g.fail(Unbalanced, "expected string")
		}
		f.str = g.in.Src[start+1 : g.point()-1]
		if len(f.str) == 0 {
			return nil, g.fail(EmptyString, "string of length 0 in grammar")
		}
	case '(':
		f.kind = factorParensExpr
		g.in.Advance()
		if err := g.expression(&f.expr); err != nil {
			return nil, err
		}
		if !g.matchLiteral(')') {
			return nil, g.fail(Unbalanced, "unmatched ')' in factor")
		}
	case '[':
		f.kind = factorOptionalExpr
		g.in.Advance()
		if err := g.expression(&f.expr); err != nil {
			return nil, err
		}
		if !g.matchLiteral(']') {
			return nil, g.fail(Unbalanced, "unmatched ']' in factor")
		}
	case '{':
		f.kind = factorRepeatExpr
		g.in.Advance()
		if err := g.expression(&f.expr); err != nil {
			return nil, err
		}
		if !g.matchLiteral('}') {
			return nil, g.fail(Unbalanced, "unmatched '}' in factor")
		}
	default:
		if !g.match(g.meta.identifier) {
			return nil, nil // no factor here
		}
		f.kind = factorIdentifier
		f.name = g.rng(start)
	}
	f.rng = g.rng(start)
	return f, nil
}

// term parses: factor { factor } .
func (g *grammarReader) term() (*term, error) {
	start := g.point()
	f, err := g.factor()
	if err != nil || f == nil {
		return nil, err
	}
	t := &term{factors: []*factor{f}}
	for {
		f, err = g.factor()
		if err != nil {
			return nil, err
		}
		if f == nil {
			break
		}
		t.factors = append(t.factors, f)
	}
	t.rng = g.rng(start)
	return t, nil
}

// expression parses: term { "|" term } .
func (g *grammarReader) expression(e *expression) error {
	start := g.point()
	for {
		t, err := g.term()
		if err != nil {
			return err
		}
		if t == nil {
			return g.fail(Unbalanced, "expected term")
		}
		e.terms = append(e.terms, t)
		if !g.match(g.meta.alternation) {
			break
		}
	}
	e.rng = g.rng(start)
	return nil
}

// identifier parses a production name.
func (g *grammarReader) identifier() ([]byte, error) {
	start := g.point()
	if !g.match(g.meta.identifier) {
		return nil, g.fail(Unbalanced, "expected identifier")
	}
	return g.rng(start), nil
}

// production parses: identifier "=" expression "." .
func (g *grammarReader) production(p *Production) error {
	g.match(g.meta.whitespace)
	name, err := g.identifier()
	if err != nil {
		return err
	}
	if !g.match(g.meta.assignment) {
		return g.fail(Unbalanced, "expected '=' in production %s", name)
	}
	if err := g.expression(&p.expr); err != nil {
		return err
	}
	if !g.match(g.meta.period) {
		return g.fail(Unbalanced, "expected '.' in production %s", name)
	}
	p.Identifier = name
	return nil
}

// syntax parses: { production } .
func (g *grammarReader) syntax(parser *Parser) error {
	for {
		g.match(g.meta.whitespace)
		if g.in.Finished() {
			return nil
		}
		p := &Production{}
		if err := g.production(p); err != nil {
			return err
		}
		parser.productions = append(parser.productions, p)
	}
}

// --- Parser construction ----------------------------------------------

// NewParser compiles a rule table and a token table into a parser. Rule
// ids are table indices; placeholder rows (empty name) are skipped but
// keep their index, which lets ids mirror a sparse enum.
func NewParser(rules []Rule, tokens []scanner.TokenDef) (*Parser, error) {
	s, err := scanner.New(tokens)
	if err != nil {
		return nil, err
	}
	parser := &Parser{pool: arena.NewPool[symbol](), scanner: s}
	reader := &grammarReader{meta: metaRegexes()}
	for _, r := range rules {
		p := &Production{}
		if r.Name != "" {
			p.Identifier = []byte(r.Name)
			reader.in = ebnfkit.NewStringInput(r.RHS)
			if err := reader.expression(&p.expr); err != nil {
				return nil, fmt.Errorf("rule %s: %w", r.Name, err)
			}
		}
		parser.productions = append(parser.productions, p)
	}
	if err := parser.finalize(); err != nil {
		return nil, err
	}
	return parser, nil
}

// NewParserEBNF compiles grammar text into a parser. The token table may
// be empty for grammars made of literal strings only.
func NewParserEBNF(grammar string, tokens []scanner.TokenDef) (*Parser, error) {
	s, err := scanner.New(tokens)
	if err != nil {
		return nil, err
	}
	parser := &Parser{pool: arena.NewPool[symbol](), scanner: s}
	reader := &grammarReader{
		in:   ebnfkit.NewStringInput(grammar),
		meta: metaRegexes(),
	}
	if err := reader.syntax(parser); err != nil {
		return nil, err
	}
	if err := parser.finalize(); err != nil {
		return nil, err
	}
	return parser, nil
}

// finalize resolves identifier references, checks for duplicates and
// lowers every production to its symbol graph.
func (p *Parser) finalize() error {
	seen := make(map[string]bool)
	for i, prod := range p.productions {
		prod.ID = i
		if len(prod.Identifier) == 0 {
			continue // placeholder row
		}
		name := string(prod.Identifier)
		if seen[name] {
			return &GrammarError{Kind: DuplicateProduction, Position: ebnfkit.NoPosition, Detail: name}
		}
		seen[name] = true
	}
	for _, prod := range p.productions {
		if err := p.resolveExpression(&prod.expr); err != nil {
			return err
		}
	}
	for _, prod := range p.productions {
		if len(prod.Identifier) == 0 {
			continue
		}
		prod.sym = p.expressionSymbol(&prod.expr)
	}
	return nil
}

// resolveExpression links every identifier factor to a production of the
// grammar or, failing that, to a token of the scanner.
func (p *Parser) resolveExpression(e *expression) error {
	for _, t := range e.terms {
		for _, f := range t.factors {
			switch f.kind {
			case factorOptionalExpr, factorRepeatExpr, factorParensExpr:
				if err := p.resolveExpression(&f.expr); err != nil {
					return err
				}
			case factorIdentifier:
				if prod := p.FindProduction(f.name); prod != nil {
					f.prod = prod
					break
				}
				if tok := p.scanner.TokenByName(f.name); tok != nil {
					f.kind = factorToken
					f.tok = tok
					break
				}
				tracer().Errorf("production %q not found", f.name)
				return &GrammarError{Kind: UnknownIdentifier, Position: ebnfkit.NoPosition, Detail: string(f.name)}
			}
		}
	}
	return nil
}

// FindProduction returns the production with the given name, or nil.
func (p *Parser) FindProduction(name []byte) *Production {
	for _, prod := range p.productions {
		if bytes.Equal(prod.Identifier, name) {
			return prod
		}
	}
	return nil
}

// ProductionByID returns the production at a rule-table index, or nil.
func (p *Parser) ProductionByID(id int) *Production {
	if id < 0 || id >= len(p.productions) {
		return nil
	}
	return p.productions[id]
}

// Scanner returns the scanner the parser was built with.
func (p *Parser) Scanner() *scanner.Scanner {
	return p.scanner
}
