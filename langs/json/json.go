/*
Package json packages the standard JSON grammar as a reusable formatter.

The grammar is the one the toolkit's test suites exercise: objects, lists,
numbers, strings and booleans, tokenized by regexes and parsed with the
backtracking driver from package ebnf. A Formatter re-emits the parsed
token stream either minified or pretty-printed with two-space indents.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package json

import (
	"fmt"
	"io"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/ebnfkit"
	"github.com/npillmayer/ebnfkit/ebnf"
	"github.com/npillmayer/ebnfkit/regex"
	"github.com/npillmayer/ebnfkit/scanner"
)

// tracer traces with key 'ebnfkit.json'.
func tracer() tracing.Trace {
	return tracing.Select("ebnfkit.json")
}

// Node kinds of the JSON grammar. Token ids and rule ids share one id
// space; the rule table rows below a production id are placeholders.
const (
	String = iota
	Number
	Boolean
	Comma
	Colon
	Lsqbrk
	Rsqbrk
	Lcbrk
	Rcbrk
	Object
	List
	Keyvalues
	Keyvalue
)

// Tokens returns the JSON token table.
func Tokens() []scanner.TokenDef {
	return []scanner.TokenDef{
		{Name: "string", Pattern: regex.StringPattern},
		{Name: "number", Pattern: `-?(\d+|\d+\.\d*|\d*\.\d+)`},
		{Name: "boolean", Pattern: "true|false"},
		{Name: "comma", Pattern: ","},
		{Name: "colon", Pattern: ":"},
		{Name: "lsqbrk", Pattern: `\[`},
		{Name: "rsqbrk", Pattern: `\]`},
		{Name: "lcbrk", Pattern: "{"},
		{Name: "rcbrk", Pattern: "}"},
	}
}

// Rules returns the JSON rule table.
func Rules() []ebnf.Rule {
	rules := make([]ebnf.Rule, Keyvalue+1)
	rules[Object] = ebnf.Rule{Name: "object",
		RHS: "( lcbrk keyvalues rcbrk | lsqbrk list rsqbrk | number | string | boolean )"}
	rules[List] = ebnf.Rule{Name: "list", RHS: "[ object { comma object } ] "}
	rules[Keyvalues] = ebnf.Rule{Name: "keyvalues", RHS: "[ keyvalue { comma keyvalue } ]"}
	rules[Keyvalue] = ebnf.Rule{Name: "keyvalue", RHS: "string colon object"}
	return rules
}

// Formatter parses JSON with the toolkit's grammar and re-emits it.
type Formatter struct {
	parser *ebnf.Parser
	Pretty bool
}

// NewFormatter builds a formatter. The grammar is compiled once per
// formatter.
func NewFormatter() (*Formatter, error) {
	p, err := ebnf.NewParser(Rules(), Tokens())
	if err != nil {
		return nil, err
	}
	return &Formatter{parser: p}, nil
}

// Parser exposes the underlying JSON parser.
func (f *Formatter) Parser() *ebnf.Parser {
	return f.parser
}

// Parse parses a buffer as a JSON object.
func (f *Formatter) Parse(src []byte) (*ebnf.AST, bool) {
	in := ebnfkit.NewInput(src)
	ast, ok := f.parser.Parse(in, Object)
	if !ok {
		tracer().Debugf("input is not valid JSON")
		in.DumpContext(tracing.LevelError)
	}
	return ast, ok
}

// Format parses src and writes it to out, minified or pretty-printed
// depending on the Pretty flag.
func (f *Formatter) Format(src []byte, out io.Writer) error {
	ast, ok := f.Parse(src)
	if !ok {
		return fmt.Errorf("input is not valid JSON")
	}
	f.visit(ast, src, 0, out)
	if f.Pretty {
		io.WriteString(out, "\n")
	}
	return nil
}

// visit re-emits the token leaves of the AST, inserting layout around
// the structural tokens when pretty-printing.
func (f *Formatter) visit(a *ebnf.AST, src []byte, indent int, out io.Writer) {
	emit := func(node *ebnf.AST) {
		out.Write(node.Range.Bytes(src))
	}
	pretty := func(format string, args ...interface{}) {
		if f.Pretty {
			fmt.Fprintf(out, format, args...)
		}
	}
	for ; a != nil; a = a.Next {
		switch a.Kind {
		case String, Number, Boolean, Comma, Colon:
			emit(a)
			if a.Kind == Colon {
				pretty(" ")
			} else if a.Kind == Comma {
				pretty("\n%*s", indent, "")
			}
		case Lsqbrk, Lcbrk:
			indent += 2
			emit(a)
			pretty("\n%*s", indent, "")
		case Rsqbrk, Rcbrk:
			indent -= 2
			pretty("\n%*s", indent, "")
			emit(a)
		case Object, List, Keyvalues, Keyvalue:
			// containers carry no bytes of their own
		}
		if a.FirstChild != nil {
			f.visit(a.FirstChild, src, indent, out)
		}
	}
}
