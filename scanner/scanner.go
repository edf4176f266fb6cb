/*
Package scanner implements a priority-ordered token scanner.

A scanner owns a list of named tokens, each backed by a compiled regex
from package regex. Registration order defines priority: the first token
whose pattern matches at the cursor wins. The scanner operates on a
borrowed ebnfkit.Input which it shares with the parser driving it, and
skips whitespace (space, tab, newline) around token matches — but not
around raw literal matches, which belong to the grammar itself.

Sub-package lexmach provides an alternative scanner backend on top of
lexmachine.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package scanner

import (
	"bytes"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/ebnfkit"
	"github.com/npillmayer/ebnfkit/regex"
)

// tracer traces with key 'ebnfkit.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("ebnfkit.scanner")
}

// Pseudo token ids, replicated from the base package for practical
// reasons.
const (
	EOF     = ebnfkit.EOFType
	Invalid = ebnfkit.ErrorType
)

// TokenDef declares a token to register: a name and a regex pattern.
type TokenDef struct {
	Name    string
	Pattern string
}

// Token is a registered token. ID is the token's position in the
// registration order.
type Token struct {
	Name    string
	Pattern *regex.Regex
	ID      ebnfkit.TokType
}

// Lexeme is one recognized piece of input, as produced by Tokenize.
type Lexeme struct {
	ID   ebnfkit.TokType
	Span ebnfkit.Span
}

// Scanner holds an ordered token table and a borrowed input cursor.
type Scanner struct {
	tokens []Token
	in     *ebnfkit.Input
}

// New compiles a token table into a scanner. Token ids are the table
// indices.
func New(defs []TokenDef) (*Scanner, error) {
	s := &Scanner{}
	for i, def := range defs {
		r, err := regex.Compile(def.Pattern)
		if err != nil {
			return nil, fmt.Errorf("token %q: %w", def.Name, err)
		}
		s.tokens = append(s.tokens, Token{
			Name:    def.Name,
			Pattern: r,
			ID:      ebnfkit.TokType(i),
		})
	}
	return s, nil
}

// SetInput hands the scanner the cursor to operate on. The input is
// borrowed; parser and scanner advance the same cursor.
func (s *Scanner) SetInput(in *ebnfkit.Input) {
	s.in = in
}

// Input returns the borrowed cursor.
func (s *Scanner) Input() *ebnfkit.Input {
	return s.in
}

// TokenCount returns the number of registered tokens.
func (s *Scanner) TokenCount() int {
	return len(s.tokens)
}

// TokenByID returns the registered token for an id.
func (s *Scanner) TokenByID(id ebnfkit.TokType) *Token {
	if id < 0 || int(id) >= len(s.tokens) {
		return nil
	}
	return &s.tokens[id]
}

// TokenByName finds a registered token by name, or nil.
func (s *Scanner) TokenByName(name []byte) *Token {
	for i := range s.tokens {
		if bytes.Equal([]byte(s.tokens[i].Name), name) {
			return &s.tokens[i]
		}
	}
	return nil
}

func isSpace(b int) bool {
	return b == ' ' || b == '\t' || b == '\n'
}

func (s *Scanner) skipSpace() {
	for isSpace(s.in.Peek()) {
		s.in.Advance()
	}
}

// Next skips leading whitespace, then tries the tokens whose id is set in
// valid, in registration order; the first that matches wins. A nil mask
// accepts any token. Trailing whitespace is skipped as well. Returns EOF
// when the input is exhausted and Invalid when no token matches.
func (s *Scanner) Next(valid *bitset.BitSet) (ebnfkit.TokType, ebnfkit.Span) {
	tok := Invalid
	var lexeme ebnfkit.Span
	s.skipSpace()
	if s.in.Finished() {
		return EOF, ebnfkit.Span{}
	}
	for i := range s.tokens {
		if valid != nil && !valid.Test(uint(i)) {
			continue
		}
		if span, ok := s.tokens[i].Pattern.Match(s.in); ok {
			tok = s.tokens[i].ID
			lexeme = span
			break
		}
	}
	s.skipSpace()
	return tok, lexeme
}

// Peek is Next with the cursor restored before returning.
func (s *Scanner) Peek(valid *bitset.BitSet) (ebnfkit.TokType, ebnfkit.Span) {
	here := s.in.Mark()
	tok, lexeme := s.Next(valid)
	s.in.ResetTo(here)
	return tok, lexeme
}

// MatchToken attempts exactly one specific token at the cursor, with
// whitespace skipped before and after the token body. On failure the
// cursor is fully restored.
func (s *Scanner) MatchToken(id ebnfkit.TokType) (ebnfkit.Span, bool) {
	t := s.TokenByID(id)
	if t == nil {
		return ebnfkit.Span{}, false
	}
	here := s.in.Mark()
	s.skipSpace()
	span, ok := t.Pattern.Match(s.in)
	if !ok {
		s.in.ResetTo(here)
		return ebnfkit.Span{}, false
	}
	s.skipSpace()
	return span, true
}

// MatchLiteral matches a raw byte sequence at the cursor, without any
// whitespace handling, and advances on success.
func (s *Scanner) MatchLiteral(lit []byte) (ebnfkit.Span, bool) {
	if len(lit) == 0 || !bytes.HasPrefix(s.in.Rest(), lit) {
		return ebnfkit.Span{}, false
	}
	span := ebnfkit.MakeSpan(s.in.C, s.in.C+len(lit))
	s.in.C += len(lit)
	return span, true
}

// Rewind resets the cursor to the start of a previously returned span.
func (s *Scanner) Rewind(span ebnfkit.Span) {
	s.in.ResetTo(span.From())
}

// Tokenize scans a whole buffer into lexemes, skipping whitespace between
// tokens. It fails on the first stretch of input no token matches.
func (s *Scanner) Tokenize(body []byte) ([]Lexeme, error) {
	in := ebnfkit.NewInput(body)
	saved := s.in
	s.in = in
	defer func() { s.in = saved }()

	var lexemes []Lexeme
	for {
		s.skipSpace()
		if in.Finished() {
			return lexemes, nil
		}
		found := false
		for i := range s.tokens {
			if span, ok := s.tokens[i].Pattern.Match(in); ok {
				lexemes = append(lexemes, Lexeme{ID: s.tokens[i].ID, Span: span})
				found = true
				break
			}
		}
		if !found {
			tracer().Debugf("no token matches at offset %d", in.C)
			return lexemes, fmt.Errorf("no token matches at offset %d", in.C)
		}
	}
}
