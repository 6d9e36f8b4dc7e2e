// Package search builds FTS5 MATCH expressions from free-form user queries.
// It is intentionally small and dependency-free, but engineered with
// production-grade ergonomics:
//
//   - No logging in the library (callers decide how/what to log)
//   - Unicode-aware tokenization matching the unicode61 tokenizer used by
//     the stories_fts shadow table
//   - Every token is emitted as a quoted FTS5 string, so user input can
//     never smuggle in query syntax (AND/OR/NOT/NEAR, column filters,
//     prefix stars)
//   - Deterministic output for identical input
//
// Ranking is not implemented here: the repository layer orders results by
// bm25() and this package only decides WHAT to match, never how to score.
package search

import (
	"regexp"
	"strings"
)

// Mode selects which indexed columns a query matches against.
type Mode string

const (
	// ModeAll matches against every indexed column (text and topic).
	ModeAll Mode = "all"
	// ModeText restricts matching to the story body.
	ModeText Mode = "text"
	// ModeTopic restricts matching to the story topic.
	ModeTopic Mode = "topic"
)

// ParseMode maps a user-supplied mode string to a Mode. The empty string
// defaults to ModeAll; unknown values return ok=false so callers can reject
// them explicitly instead of silently widening the search.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeAll):
		return ModeAll, true
	case string(ModeText):
		return ModeText, true
	case string(ModeTopic):
		return ModeTopic, true
	default:
		return "", false
	}
}

// maxQueryTokens caps how many tokens a single query contributes to the
// MATCH expression. Longer queries are truncated, not rejected: the first
// tokens carry the intent and an unbounded expression is a DoS vector.
const maxQueryTokens = 16

// tokenRE mirrors what unicode61 treats as a token: runs of letters and
// digits. Punctuation ("60-character", "don't") splits exactly like the
// indexer splits it, so quoted tokens line up with indexed tokens.
var tokenRE = regexp.MustCompile(`[\p{L}\p{N}]+`)

// BuildMatch turns a free-form query into a safe FTS5 MATCH expression for
// the given mode. Each token is double-quoted with embedded quotes doubled;
// adjacent quoted tokens combine with FTS5's implicit AND. Returns ok=false
// when the query contains no matchable tokens.
//
// Examples:
//
//	BuildMatch(`60-character story`, ModeAll)  => `"60" "character" "story"`
//	BuildMatch(`sea birds`, ModeTopic)         => `topic : ("sea" "birds")`
func BuildMatch(query string, mode Mode) (string, bool) {
	toks := tokenRE.FindAllString(strings.ToLower(query), -1)
	if len(toks) == 0 {
		return "", false
	}
	if len(toks) > maxQueryTokens {
		toks = toks[:maxQueryTokens]
	}

	var b strings.Builder
	for i, tok := range toks {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('"')
		// FTS5 escapes a quote inside a string by doubling it.
		b.WriteString(strings.ReplaceAll(tok, `"`, `""`))
		b.WriteByte('"')
	}
	phrase := b.String()

	switch mode {
	case ModeText:
		return "text : (" + phrase + ")", true
	case ModeTopic:
		return "topic : (" + phrase + ")", true
	default:
		return phrase, true
	}
}
