package ebnf_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/ebnfkit"
	"github.com/npillmayer/ebnfkit/ebnf"
	"github.com/npillmayer/ebnfkit/regex"
	"github.com/npillmayer/ebnfkit/scanner"
)

// The standard JSON grammar. Token and rule ids share one id space, the
// way a client enum would lay them out; rows 0–8 of the rule table are
// placeholders holding the token ids' positions.
const (
	jString = iota
	jNumber
	jBoolean
	jComma
	jColon
	jLsqbrk
	jRsqbrk
	jLcbrk
	jRcbrk
	jObject
	jList
	jKeyvalues
	jKeyvalue
)

func jsonTokens() []scanner.TokenDef {
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

func jsonRules() []ebnf.Rule {
	rules := make([]ebnf.Rule, jKeyvalue+1)
	rules[jObject] = ebnf.Rule{Name: "object",
		RHS: "( lcbrk keyvalues rcbrk | lsqbrk list rsqbrk | number | string | boolean )"}
	rules[jList] = ebnf.Rule{Name: "list", RHS: "[ object { comma object } ] "}
	rules[jKeyvalues] = ebnf.Rule{Name: "keyvalues", RHS: "[ keyvalue { comma keyvalue } ]"}
	rules[jKeyvalue] = ebnf.Rule{Name: "keyvalue", RHS: "string colon object"}
	return rules
}

func jsonParser(t *testing.T) *ebnf.Parser {
	t.Helper()
	p, err := ebnf.NewParser(jsonRules(), jsonTokens())
	if err != nil {
		t.Fatalf("JSON grammar failed to compile: %v", err)
	}
	return p
}

func childKinds(a *ebnf.AST) []int {
	var kinds []int
	for c := a.FirstChild; c != nil; c = c.Next {
		kinds = append(kinds, c.Kind)
	}
	return kinds
}

func leavesOfKind(a *ebnf.AST, kind int, src []byte) []string {
	var out []string
	var walk func(n *ebnf.AST)
	walk = func(n *ebnf.AST) {
		for ; n != nil; n = n.Next {
			if n.Kind == kind && n.FirstChild == nil {
				out = append(out, string(n.Range.Bytes(src)))
			}
			walk(n.FirstChild)
		}
	}
	walk(a)
	return out
}

func TestJSONGrammarIsLL1(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.ebnf")
	defer teardown()
	p := jsonParser(t)
	if !p.IsLL1() {
		t.Errorf("expected JSON grammar to be LL(1), conflicts: %v", p.Conflicts())
	}
}

func TestJSONParser(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.ebnf")
	defer teardown()
	p := jsonParser(t)
	checkParses(t, p, jObject, []parseCase{
		{"", false},
		{"[1", false},
		{"[1,2,45,-3]", true},
		{"[1 , 2 , 45 , -3 ]", true},
		{`{"a":1}`, true},
		{`{"key one": [1,2,45,-3],"number":1,"obj":{ "v": "str"}}`, true},
	})
}

func TestJSONListAST(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.ebnf")
	defer teardown()
	p := jsonParser(t)
	src := []byte("[1,2,45,-3]")
	ast, ok := p.Parse(ebnfkit.NewInput(src), jObject)
	if !ok {
		t.Fatal("list did not parse")
	}
	if ast.Kind != jObject {
		t.Errorf("root kind = %d, want object", ast.Kind)
	}
	if diff := cmp.Diff([]int{jLsqbrk, jList, jRsqbrk}, childKinds(ast)); diff != "" {
		t.Errorf("object children mismatch (-want +got):\n%s", diff)
	}
	list := ast.Child(1)
	numbers := leavesOfKind(list, jNumber, src)
	if diff := cmp.Diff([]string{"1", "2", "45", "-3"}, numbers); diff != "" {
		t.Errorf("numeric leaves mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONObjectAST(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.ebnf")
	defer teardown()
	p := jsonParser(t)
	src := []byte(`{"a":1}`)
	ast, ok := p.Parse(ebnfkit.NewInput(src), jObject)
	if !ok {
		t.Fatal("object did not parse")
	}
	if diff := cmp.Diff([]int{jLcbrk, jKeyvalues, jRcbrk}, childKinds(ast)); diff != "" {
		t.Errorf("object children mismatch (-want +got):\n%s", diff)
	}
	keyvalues := ast.Child(1)
	kv := keyvalues.FirstChild
	if kv == nil || kv.Kind != jKeyvalue || kv.Next != nil {
		t.Fatalf("keyvalues should hold exactly one keyvalue, got %v", childKinds(keyvalues))
	}
	if diff := cmp.Diff([]int{jString, jColon, jObject}, childKinds(kv)); diff != "" {
		t.Errorf("keyvalue children mismatch (-want +got):\n%s", diff)
	}
	if got := string(kv.FirstChild.Range.Bytes(src)); got != `"a"` {
		t.Errorf("key lexeme = %q", got)
	}
	value := kv.Child(2)
	number := value.FirstChild
	if number == nil || number.Kind != jNumber {
		t.Fatalf("value object should hold a number, got %v", childKinds(value))
	}
	if got := string(number.Range.Bytes(src)); got != "1" {
		t.Errorf("value lexeme = %q", got)
	}
}

func TestJSONScalarAST(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.ebnf")
	defer teardown()
	p := jsonParser(t)
	src := []byte(" 1 ")
	ast, ok := p.Parse(ebnfkit.NewInput(src), jObject)
	if !ok {
		t.Fatal("scalar did not parse")
	}
	if ast.Kind != jObject || ast.Next != nil {
		t.Fatalf("unexpected root %v", ast)
	}
	// the production's range covers the whitespace its tokens consumed
	if got := string(ast.Range.Bytes(src)); got != " 1 " {
		t.Errorf("root range = %q, want %q", got, " 1 ")
	}
	child := ast.FirstChild
	if child == nil || child.Kind != jNumber {
		t.Fatal("scalar object should hold a number leaf")
	}
	if got := string(child.Range.Bytes(src)); got != "1" {
		t.Errorf("number range = %q", got)
	}
}

func TestJSONKeyvalueStart(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.ebnf")
	defer teardown()
	p := jsonParser(t)
	src := []byte(`"a":"b"`)
	ast, ok := p.Parse(ebnfkit.NewInput(src), jKeyvalue)
	if !ok {
		t.Fatal("keyvalue did not parse")
	}
	if diff := cmp.Diff([]int{jString, jColon, jObject}, childKinds(ast)); diff != "" {
		t.Errorf("keyvalue children mismatch (-want +got):\n%s", diff)
	}
	inner := ast.Child(2).FirstChild
	if inner == nil || inner.Kind != jString {
		t.Fatal("value should be a string leaf")
	}
	if got := string(inner.Range.Bytes(src)); got != `"b"` {
		t.Errorf("value lexeme = %q", got)
	}
}

func TestParseIdempotence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.ebnf")
	defer teardown()
	p := jsonParser(t)
	src := []byte(`{"key one": [1,2,45,-3],"number":1,"obj":{ "v": "str"}}`)
	first, ok := p.Parse(ebnfkit.NewInput(src), jObject)
	if !ok {
		t.Fatal("first parse failed")
	}
	second, ok := p.Parse(ebnfkit.NewInput(src), jObject)
	if !ok {
		t.Fatal("second parse failed")
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated parse differs (-first +second):\n%s", diff)
	}
}

func TestCalculator(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.ebnf")
	defer teardown()
	tokens := []scanner.TokenDef{
		{Name: "number", Pattern: `-?\d+`},
	}
	rules := []ebnf.Rule{
		{Name: "expression", RHS: "term {('+' | '-') term }"},
		{Name: "term", RHS: "factor {('*' | '/') factor }"},
		{Name: "factor", RHS: "digits | '(' expression ')'"},
		{Name: "digits", RHS: "number"},
	}
	p, err := ebnf.NewParser(rules, tokens)
	if err != nil {
		t.Fatalf("calculator grammar failed to compile: %v", err)
	}
	if !p.IsLL1() {
		t.Errorf("calculator grammar should be LL(1), conflicts: %v", p.Conflicts())
	}
	checkParses(t, p, 0, []parseCase{
		{"1+2*3", true},
		{"(1+2)*3", true},
		{"()", false},
	})
}

func TestTreeString(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ebnfkit.ebnf")
	defer teardown()
	p := jsonParser(t)
	src := []byte("[1,2]")
	ast, ok := p.Parse(ebnfkit.NewInput(src), jObject)
	if !ok {
		t.Fatal("parse failed")
	}
	tree := ast.TreeString(src)
	if tree == "" {
		t.Fatal("empty tree rendering")
	}
	for _, want := range []string{"object", "list", "number", "'1'", "'2'"} {
		if !strings.Contains(tree, want) {
			t.Errorf("tree rendering misses %q:\n%s", want, tree)
		}
	}
}
