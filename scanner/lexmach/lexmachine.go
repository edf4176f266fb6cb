/*
Package lexmach adapts lexmachine as an alternative scanner backend.

The regex-backed scanner in package scanner re-matches its token table at
every cursor position, which is what a backtracking parser needs. For
straight-line tokenization of large inputs a DFA lexer is the better
tool. An Adapter compiles the same TokenDef table the scanner uses into a
lexmachine DFA and exposes the scanner's Tokenize contract: token ids are
the table indices, registration order decides ambiguous matches, and
whitespace between tokens is skipped.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package lexmach

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/npillmayer/ebnfkit"
	"github.com/npillmayer/ebnfkit/scanner"
)

// tracer traces with key 'ebnfkit.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("ebnfkit.scanner")
}

// Adapter holds a token table compiled into a DFA. Compilation happens
// once; Tokenize runs the machine over individual buffers.
type Adapter struct {
	lexer *lexmachine.Lexer
	names []string
}

// New compiles a token table into a lexmachine DFA. Token ids are the
// table indices. Lexemes are matched maximal-munch; when two patterns
// accept a match of the same length, the one registered first wins. This
// differs from the regex-backed scanner, where the first registered token
// that matches wins regardless of length ("truex" is one identifier here,
// but "true" followed by "x" there when the boolean token comes first).
func New(defs []scanner.TokenDef) (*Adapter, error) {
	a := &Adapter{lexer: lexmachine.NewLexer()}
	for i, def := range defs {
		id := i
		a.names = append(a.names, def.Name)
		a.lexer.Add([]byte(dfaPattern(def.Pattern)), func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
			return s.Token(id, string(m.Bytes), m), nil
		})
	}
	a.lexer.Add([]byte(`( |\t|\n)+`), skip)
	if err := a.lexer.Compile(); err != nil {
		tracer().Errorf("compiling DFA: %v", err)
		return nil, err
	}
	return a, nil
}

// skip drops a match; lexmachine continues with the next lexeme.
func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// dfaPattern rewrites a scanner pattern for lexmachine, which spells the
// digit shorthand as an explicit class. Lazy quantifiers have no DFA
// counterpart; a table relying on them belongs on the regex-backed
// scanner.
func dfaPattern(p string) string {
	return strings.ReplaceAll(p, `\d`, "[0-9]")
}

// TokenName returns the name a token id was registered under.
func (a *Adapter) TokenName(id ebnfkit.TokType) string {
	if id < 0 || int(id) >= len(a.names) {
		return ""
	}
	return a.names[id]
}

// Tokenize scans a whole buffer into lexemes, with the same contract as
// Scanner.Tokenize: whitespace between tokens is skipped, and the scan
// fails on the first stretch of input the machine cannot consume.
func (a *Adapter) Tokenize(body []byte) ([]scanner.Lexeme, error) {
	sc, err := a.lexer.Scanner(body)
	if err != nil {
		return nil, err
	}
	var lexemes []scanner.Lexeme
	for {
		tok, err, eof := sc.Next()
		if eof {
			return lexemes, nil
		}
		if err != nil {
			if ui, is := err.(*machines.UnconsumedInput); is {
				tracer().Debugf("no token matches at offset %d", ui.FailTC)
				return lexemes, fmt.Errorf("no token matches at offset %d", ui.FailTC)
			}
			return lexemes, err
		}
		token := tok.(*lexmachine.Token)
		lexemes = append(lexemes, scanner.Lexeme{
			ID:   ebnfkit.TokType(token.Type),
			Span: ebnfkit.MakeSpan(token.TC, token.TC+len(token.Lexeme)),
		})
	}
}
