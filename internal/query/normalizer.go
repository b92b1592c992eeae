// Package query turns a raw search string into a NormalizedQuery: cleaned
// tokens, their lexicon expansions, candidate phrases and coarse intent flags.
package query

import (
	"strings"

	"github.com/gcbaptista/course-search-engine/internal/lexicon"
	"github.com/gcbaptista/course-search-engine/internal/tokenizer"
)

// halfCue is the token that asks for half-credit courses.
const halfCue = "half"

// scienceCue marks a broad science request when no narrower STEM keyword is present.
const scienceCue = "science"

// NormalizedQuery is the call-scoped, preprocessed form of a search string.
type NormalizedQuery struct {
	Raw     string
	Cleaned string
	// Tokens are the cleaned words with stop words removed, in query order.
	Tokens []string
	// Expansions maps a token to its abbreviation and synonym expansions.
	// Expansions are only used for lookups; Tokens is what the user typed.
	Expansions map[string][]string
	// Phrases are every contiguous 2- and 3-token run of Tokens.
	Phrases []string

	IntroIntent          bool
	STEMIntent           bool
	SocialScienceIntent  bool
	GeneralScienceIntent bool
}

// Normalize preprocesses raw with the given lexicon. It never fails: malformed
// input degrades to an empty token list.
func Normalize(raw string, lex *lexicon.Lexicon) NormalizedQuery {
	cleaned := tokenizer.Clean(raw)
	q := NormalizedQuery{
		Raw:        raw,
		Cleaned:    cleaned,
		Tokens:     make([]string, 0),
		Expansions: make(map[string][]string),
		Phrases:    make([]string, 0),
	}
	if cleaned == "" {
		return q
	}

	for _, word := range strings.Fields(cleaned) {
		if lex.IsStopWord(word) {
			continue
		}
		q.Tokens = append(q.Tokens, word)
		if _, done := q.Expansions[word]; done {
			continue
		}
		if expansions := lex.Expand(word); len(expansions) > 0 {
			q.Expansions[word] = expansions
		}
	}

	// Full forms typed out ("machine learning") also match their short form.
	for _, abbr := range lex.Abbreviations() {
		if !tokenizer.ContainsWord(cleaned, abbr.Full) {
			continue
		}
		anchor := lastWord(abbr.Full)
		if !q.HasToken(anchor) {
			continue
		}
		q.Expansions[anchor] = appendUnique(q.Expansions[anchor], abbr.Short)
	}

	q.Phrases = append(q.Phrases, tokenizer.NGrams(q.Tokens, 2)...)
	q.Phrases = append(q.Phrases, tokenizer.NGrams(q.Tokens, 3)...)

	q.detectIntent(lex)
	return q
}

func (q *NormalizedQuery) detectIntent(lex *lexicon.Lexicon) {
	for _, cue := range lex.IntroCues() {
		if strings.Contains(q.Cleaned, cue) {
			q.IntroIntent = true
			break
		}
	}

	for _, cue := range lex.SocialScienceQueryCues() {
		if strings.Contains(q.Cleaned, cue) {
			q.SocialScienceIntent = true
			break
		}
	}

	stemKeyword := false
	for _, keyword := range lex.STEMKeywords() {
		if strings.Contains(q.Cleaned, keyword) {
			stemKeyword = true
			break
		}
	}

	stemDepartment := false
	for _, token := range q.Tokens {
		if lex.IsSTEMDepartmentCode(token) || lex.IsSTEMDepartmentCode(tokenizer.LetterPrefix(token)) {
			stemDepartment = true
			break
		}
	}
	if !stemDepartment {
		for _, name := range lex.STEMDepartmentNames() {
			if tokenizer.ContainsWord(q.Cleaned, name) {
				stemDepartment = true
				break
			}
		}
	}

	q.STEMIntent = (stemKeyword || stemDepartment) && !q.SocialScienceIntent
	q.GeneralScienceIntent = strings.Contains(q.Cleaned, scienceCue) && !stemKeyword && !q.SocialScienceIntent
}

// IsEmpty reports whether no token survived normalization.
func (q NormalizedQuery) IsEmpty() bool {
	return len(q.Tokens) == 0
}

// Length is the number of characters in the cleaned query.
func (q NormalizedQuery) Length() int {
	return len([]rune(q.Cleaned))
}

// HasToken reports whether token is one of the query tokens.
func (q NormalizedQuery) HasToken(token string) bool {
	for _, t := range q.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// WantsHalfCredit reports whether the query asks for half-credit courses.
func (q NormalizedQuery) WantsHalfCredit() bool {
	return q.HasToken(halfCue)
}

// MatchTerms returns the tokens followed by their expansions, de-duplicated,
// in a stable order.
func (q NormalizedQuery) MatchTerms() []string {
	terms := make([]string, 0, len(q.Tokens))
	seen := make(map[string]struct{}, len(q.Tokens))
	add := func(term string) {
		if _, dup := seen[term]; dup {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	for _, token := range q.Tokens {
		add(token)
	}
	for _, token := range q.Tokens {
		for _, expansion := range q.Expansions[token] {
			add(expansion)
		}
	}
	return terms
}

// Text returns the tokens and expansions joined into one string, used as the
// query document for semantic scoring.
func (q NormalizedQuery) Text() string {
	return strings.Join(q.MatchTerms(), " ")
}

func lastWord(phrase string) string {
	fields := strings.Fields(phrase)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func appendUnique(items []string, item string) []string {
	for _, existing := range items {
		if existing == item {
			return items
		}
	}
	return append(items, item)
}
