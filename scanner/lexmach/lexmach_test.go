package lexmach

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/ebnfkit/scanner"
)

func exprDefs() []scanner.TokenDef {
	return []scanner.TokenDef{
		{Name: "bool", Pattern: "true|false"},
		{Name: "number", Pattern: `\d+`},
		{Name: "identifier", Pattern: "[a-zA-Z_][a-zA-Z_0-9]*"},
		{Name: "assign", Pattern: "="},
		{Name: "plus", Pattern: `\+`},
		{Name: "mult", Pattern: `\*`},
		{Name: "lpar", Pattern: `\(`},
		{Name: "rpar", Pattern: `\)`},
	}
}

func TestTokenize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.scanner")
	defer teardown()
	adapter, err := New(exprDefs())
	if err != nil {
		t.Fatalf("token table failed to compile: %v", err)
	}
	body := []byte("x = true + 303* (404+2)")
	lexemes, err := adapter.Tokenize(body)
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	want := []struct {
		name    string
		content string
	}{
		{"identifier", "x"},
		{"assign", "="},
		{"bool", "true"}, // not an identifier: equal length, registered first
		{"plus", "+"},
		{"number", "303"},
		{"mult", "*"},
		{"lpar", "("},
		{"number", "404"},
		{"plus", "+"},
		{"number", "2"},
		{"rpar", ")"},
	}
	if len(lexemes) != len(want) {
		t.Fatalf("got %d lexemes, want %d", len(lexemes), len(want))
	}
	for i, lx := range lexemes {
		if name := adapter.TokenName(lx.ID); name != want[i].name {
			t.Errorf("lexeme %d is %s, want %s", i, name, want[i].name)
		}
		if got := string(lx.Span.Bytes(body)); got != want[i].content {
			t.Errorf("lexeme %d covers %q, want %q", i, got, want[i].content)
		}
	}
}

func TestTokenizeMaximalMunch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.scanner")
	defer teardown()
	adapter, err := New(exprDefs())
	if err != nil {
		t.Fatal(err)
	}
	body := []byte("truex")
	lexemes, err := adapter.Tokenize(body)
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	if len(lexemes) != 1 || adapter.TokenName(lexemes[0].ID) != "identifier" {
		t.Errorf("expected one identifier lexeme, got %v", lexemes)
	}
}

func TestTokenizeRejectsGarbage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.scanner")
	defer teardown()
	adapter, err := New(exprDefs())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := adapter.Tokenize([]byte("12 §§")); err == nil {
		t.Error("tokenize accepted garbage")
	}
}
