package steno

import (
	"strings"
	"testing"
)

func testVocabulary(t *testing.T) *ResolvedVocabulary {
	t.Helper()
	vocab, warnings := NewExtensionRegistry(nil).Resolve(VocabConfig{})
	if len(warnings) != 0 {
		t.Fatalf("unexpected resolution warnings: %v", warnings)
	}
	return vocab
}

func TestTokenizeFullCommand(t *testing.T) {
	vocab := testVocabulary(t)
	tokens := Tokenize(`ch:login +rate-limit .ts:edge ^signup`, vocab)

	want := []Token{
		{Kind: TokenVerbTarget, Value: "ch", Qualifier: "login"},
		{Kind: TokenAddition, Value: "rate-limit"},
		{Kind: TokenFlag, Value: "ts", Qualifier: "edge"},
		{Kind: TokenPreviousRef, Value: "1", Qualifier: "signup"},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		got := tokens[i]
		if got.Kind != w.Kind || got.Value != w.Value || got.Qualifier != w.Qualifier {
			t.Fatalf("token %d: got %+v, want kind=%s value=%q qualifier=%q", i, got, w.Kind, w.Value, w.Qualifier)
		}
	}
}

func TestUnknownVerbColonIsOneFreeformChunk(t *testing.T) {
	vocab := testVocabulary(t)
	tokens := Tokenize("foo:bar", vocab)
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d: %+v", len(tokens), tokens)
	}
	if tokens[0].Kind != TokenFreeform || tokens[0].Value != "foo:bar" {
		t.Fatalf("expected freeform foo:bar, got %+v", tokens[0])
	}
}

func TestPrecisionMarkerBoundaries(t *testing.T) {
	vocab := testVocabulary(t)

	tests := []struct {
		input string
		kind  TokenKind
		value string
	}{
		{"~ x", TokenPrecision, "~"},
		{"!", TokenPrecision, "!"},
		{"? later", TokenPrecision, "?"},
		{"~deep", TokenDeepThinking, "deep"},
		{"~explore", TokenMode, "explore"},
		{"?plan", TokenMode, "plan"},
	}
	for _, tc := range tests {
		tokens := Tokenize(tc.input, vocab)
		if len(tokens) == 0 {
			t.Fatalf("%q: no tokens", tc.input)
		}
		if tokens[0].Kind != tc.kind || tokens[0].Value != tc.value {
			t.Fatalf("%q: got %+v, want kind=%s value=%q", tc.input, tokens[0], tc.kind, tc.value)
		}
	}
}

func TestUnknownDotModifierDegradesToAddition(t *testing.T) {
	vocab := testVocabulary(t)
	tokens := Tokenize("mk:api .nosuchflag", vocab)
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %+v", tokens)
	}
	if tokens[1].Kind != TokenAddition || tokens[1].Value != "nosuchflag" {
		t.Fatalf("expected addition nosuchflag, got %+v", tokens[1])
	}
	if tokens[1].Raw != ".nosuchflag" {
		t.Fatalf("raw should keep the dot, got %q", tokens[1].Raw)
	}
}

func TestFileAndNodeReferences(t *testing.T) {
	vocab := testVocabulary(t)

	tests := []struct {
		input    string
		kind     TokenKind
		value    string
		selector string
	}{
		{"@data.csv", TokenFileRef, "data.csv", ""},
		{"@data.csv.preview", TokenFileRef, "data.csv", "preview"},
		{"@node1", TokenNodeRef, "node1", ""},
		{"#getUserById", TokenSymbolRef, "getUserById", ""},
	}
	for _, tc := range tests {
		tokens := Tokenize(tc.input, vocab)
		if len(tokens) != 1 {
			t.Fatalf("%q: expected 1 token, got %+v", tc.input, tokens)
		}
		tok := tokens[0]
		if tok.Kind != tc.kind || tok.Value != tc.value || tok.Qualifier != tc.selector {
			t.Fatalf("%q: got %+v, want kind=%s value=%q selector=%q", tc.input, tok, tc.kind, tc.value, tc.selector)
		}
	}
}

func TestPreviousReferenceVariants(t *testing.T) {
	vocab := testVocabulary(t)

	tests := []struct {
		input     string
		count     string
		qualifier string
	}{
		{"^", "1", ""},
		{"^^", "2", ""},
		{"^signup", "1", "signup"},
		{"^^2", "2", "2"},
	}
	for _, tc := range tests {
		tokens := Tokenize(tc.input, vocab)
		if len(tokens) != 1 || tokens[0].Kind != TokenPreviousRef {
			t.Fatalf("%q: expected one previous ref, got %+v", tc.input, tokens)
		}
		if tokens[0].Value != tc.count || tokens[0].Qualifier != tc.qualifier {
			t.Fatalf("%q: got %+v, want count=%s qualifier=%q", tc.input, tokens[0], tc.count, tc.qualifier)
		}
	}
}

func TestQuotedStrings(t *testing.T) {
	vocab := testVocabulary(t)

	tokens := Tokenize(`mk:api "use the v2 spec"`, vocab)
	if len(tokens) != 2 || tokens[1].Kind != TokenQuoted {
		t.Fatalf("expected quoted token, got %+v", tokens)
	}
	if tokens[1].Value != "use the v2 spec" {
		t.Fatalf("unexpected quoted value %q", tokens[1].Value)
	}

	// Unterminated quotes degrade into freeform chunks.
	tokens = Tokenize(`mk:api "oops`, vocab)
	if tokens[1].Kind != TokenFreeform || tokens[1].Value != `"oops` {
		t.Fatalf("expected freeform fallback for unterminated quote, got %+v", tokens[1])
	}
}

// Tokenize must consume every non-whitespace byte: no silent drops and no
// chance of an infinite loop.
func TestTokenizeConsumesEverything(t *testing.T) {
	vocab := testVocabulary(t)

	inputs := []string{
		"ch:login +rate-limit .ts:edge ^signup",
		"dx:@data.csv +normalize .ts:edge",
		"?plan refactor-auth ~deep",
		"weird $$ input ### @@",
		"foo:bar .unknown -drop +add",
		"~ ! ?",
	}
	for _, input := range inputs {
		tokens := Tokenize(input, vocab)
		if len(tokens) == 0 {
			t.Fatalf("%q: no tokens", input)
		}
		consumed := 0
		for _, tok := range tokens {
			consumed += len(tok.Raw)
		}
		nonSpace := len(input) - strings.Count(input, " ")
		if consumed != nonSpace {
			t.Fatalf("%q: consumed %d bytes, input has %d non-space bytes (tokens %+v)", input, consumed, nonSpace, tokens)
		}
	}
}

func TestVerbTargetRequiresTarget(t *testing.T) {
	vocab := testVocabulary(t)
	tokens := Tokenize("mk: next", vocab)
	if tokens[0].Kind == TokenVerbTarget {
		t.Fatalf("mk: with no glued target must not lex as verb:target, got %+v", tokens[0])
	}
}
