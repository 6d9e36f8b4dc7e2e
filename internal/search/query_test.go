package search

import (
	"strings"
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"", ModeAll, true},
		{"all", ModeAll, true},
		{"text", ModeText, true},
		{"topic", ModeTopic, true},
		{"  TEXT  ", ModeText, true},
		{"Topic", ModeTopic, true},
		{"title", "", false},
		{"bm25", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseMode(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseMode(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestBuildMatch_TokenizesAndQuotes(t *testing.T) {
	got, ok := BuildMatch("60-character story", ModeAll)
	if !ok {
		t.Fatal("expected ok")
	}
	want := `"60" "character" "story"`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBuildMatch_LowercasesInput(t *testing.T) {
	got, ok := BuildMatch("Lighthouse KEEPER", ModeAll)
	if !ok {
		t.Fatal("expected ok")
	}
	if got != `"lighthouse" "keeper"` {
		t.Fatalf("unexpected expression: %q", got)
	}
}

func TestBuildMatch_ColumnFilters(t *testing.T) {
	cases := []struct {
		mode Mode
		want string
	}{
		{ModeAll, `"sea" "birds"`},
		{ModeText, `text : ("sea" "birds")`},
		{ModeTopic, `topic : ("sea" "birds")`},
	}
	for _, tc := range cases {
		got, ok := BuildMatch("sea birds", tc.mode)
		if !ok {
			t.Fatalf("mode %q: expected ok", tc.mode)
		}
		if got != tc.want {
			t.Errorf("mode %q: got %q, want %q", tc.mode, got, tc.want)
		}
	}
}

func TestBuildMatch_NeutralizesOperators(t *testing.T) {
	// FTS5 syntax in user input must come out as plain quoted tokens.
	for _, q := range []string{
		`fox AND hen`,
		`fox OR hen`,
		`NOT fox`,
		`text:fox`,
		`fox*`,
		`"fox" (hen)`,
	} {
		got, ok := BuildMatch(q, ModeAll)
		if !ok {
			t.Fatalf("query %q: expected ok", q)
		}
		for _, tok := range strings.Fields(got) {
			if !strings.HasPrefix(tok, `"`) || !strings.HasSuffix(tok, `"`) {
				t.Errorf("query %q: unquoted token %q in %q", q, tok, got)
			}
		}
	}
}

func TestBuildMatch_EmptyQueries(t *testing.T) {
	for _, q := range []string{"", "   ", "!!!", `"" ''`, "---"} {
		if expr, ok := BuildMatch(q, ModeAll); ok {
			t.Errorf("query %q: expected no expression, got %q", q, expr)
		}
	}
}

func TestBuildMatch_TruncatesLongQueries(t *testing.T) {
	words := make([]string, 0, maxQueryTokens+10)
	for i := 0; i < maxQueryTokens+10; i++ {
		words = append(words, "w"+strings.Repeat("x", i%3+1))
	}
	expr, ok := BuildMatch(strings.Join(words, " "), ModeAll)
	if !ok {
		t.Fatal("expected ok")
	}
	if n := len(strings.Fields(expr)); n != maxQueryTokens {
		t.Fatalf("expected %d tokens, got %d: %q", maxQueryTokens, n, expr)
	}
}

func TestBuildMatch_UnicodeTokens(t *testing.T) {
	got, ok := BuildMatch("café Bücher", ModeText)
	if !ok {
		t.Fatal("expected ok")
	}
	if got != `text : ("café" "bücher")` {
		t.Fatalf("unexpected expression: %q", got)
	}
}
