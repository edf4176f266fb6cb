package ebnf

import (
	"bytes"
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/ebnfkit"
)

// KindString is the node kind of AST leaves produced by literal string
// symbols; tokens and productions carry their table ids instead.
const KindString = -1

// AST is a node of the abstract syntax tree a parse produces. Children
// form a singly-linked list in source order, headed by FirstChild and
// linked through Next. Range points into the input buffer; the tree stays
// valid only as long as that buffer does. Name is the production or token
// name; Kind is a production id, a token id, or KindString.
type AST struct {
	Range      ebnfkit.Span
	Name       []byte
	Kind       int
	FirstChild *AST
	Next       *AST
}

// NumChildren counts the direct children of a node.
func (a *AST) NumChildren() int {
	n := 0
	for c := a.FirstChild; c != nil; c = c.Next {
		n++
	}
	return n
}

// Child returns the i-th direct child, or nil.
func (a *AST) Child(i int) *AST {
	c := a.FirstChild
	for ; c != nil && i > 0; c = c.Next {
		i--
	}
	return c
}

// TreeString renders the subtree as an indented tree, with each node's
// name and the input bytes it covers. src must be the buffer the tree was
// parsed from.
func (a *AST) TreeString(src []byte) string {
	var buf bytes.Buffer
	var walk func(node *AST, prefix string)
	walk = func(node *AST, prefix string) {
		for ; node != nil; node = node.Next {
			connector := "├── "
			childPrefix := prefix + "│   "
			if node.Next == nil {
				connector = "└── "
				childPrefix = prefix + "    "
			}
			lexeme := node.Range.Bytes(src)
			if nl := bytes.IndexByte(lexeme, '\n'); nl >= 0 {
				lexeme = lexeme[:nl]
			}
			fmt.Fprintf(&buf, "%s%s%s '%s'\n", prefix, connector, node.Name, lexeme)
			walk(node.FirstChild, childPrefix)
		}
	}
	walk(a, "")
	return buf.String()
}

// Dump prints the subtree to the package tracer.
func (a *AST) Dump(src []byte, L tracing.TraceLevel) {
	f := traceAt(L)
	for _, line := range bytes.Split([]byte(a.TreeString(src)), []byte("\n")) {
		if len(line) > 0 {
			f("%s", line)
		}
	}
}

func traceAt(level tracing.TraceLevel) func(string, ...interface{}) {
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
