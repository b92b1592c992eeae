// Package lexicon holds the static word tables used to normalize queries and
// classify courses: stop words, abbreviations, synonyms and subject sets.
// A Lexicon is immutable once built and safe for concurrent reads.
package lexicon

import (
	"sort"
	"strings"
	"sync"
)

// SubjectData lists the department codes, department names and cue words
// that identify a broad subject area.
type SubjectData struct {
	DepartmentCodes []string `yaml:"department_codes"`
	DepartmentNames []string `yaml:"department_names"`
	Keywords        []string `yaml:"keywords,omitempty"`   // Query words signalling the subject
	QueryCues       []string `yaml:"query_cues,omitempty"` // Phrases that mark an explicit subject request
	Indicators      []string `yaml:"indicators,omitempty"` // Phrases in course text that place a course in the subject
}

// Data is the plain, serializable form of a Lexicon.
type Data struct {
	StopWords     []string            `yaml:"stop_words"`
	Abbreviations map[string]string   `yaml:"abbreviations"` // short form -> full form
	Synonyms      map[string][]string `yaml:"synonyms"`      // word -> expansions (one direction)
	STEM          SubjectData         `yaml:"stem"`
	SocialScience SubjectData         `yaml:"social_science"`
	IntroCues     []string            `yaml:"intro_cues"`
}

// Abbreviation pairs a short form with its full form.
type Abbreviation struct {
	Short string
	Full  string
}

type subjectSet struct {
	codes      map[string]struct{}
	names      map[string]struct{}
	nameList   []string
	keywords   []string
	queryCues  []string
	indicators []string
}

// Lexicon provides deterministic lookups over the word tables.
type Lexicon struct {
	stopWords     map[string]struct{}
	abbreviations []Abbreviation // sorted by short form
	byShort       map[string]string
	byFull        map[string]string
	synonyms      map[string][]string
	stem          subjectSet
	social        subjectSet
	introCues     []string
}

var (
	defaultOnce    sync.Once
	defaultLexicon *Lexicon
)

// Default returns the process-wide lexicon built from DefaultData.
func Default() *Lexicon {
	defaultOnce.Do(func() {
		defaultLexicon = New(DefaultData())
	})
	return defaultLexicon
}

// New builds a Lexicon from data. Entries are lower-cased (department codes are
// upper-cased) and blank entries are ignored.
func New(data Data) *Lexicon {
	lex := &Lexicon{
		stopWords: make(map[string]struct{}, len(data.StopWords)),
		byShort:   make(map[string]string, len(data.Abbreviations)),
		byFull:    make(map[string]string, len(data.Abbreviations)),
		synonyms:  make(map[string][]string, len(data.Synonyms)),
		stem:      newSubjectSet(data.STEM),
		social:    newSubjectSet(data.SocialScience),
		introCues: normalizeList(data.IntroCues),
	}

	for _, word := range data.StopWords {
		if w := normalize(word); w != "" {
			lex.stopWords[w] = struct{}{}
		}
	}

	for short, full := range data.Abbreviations {
		s, f := normalize(short), normalize(full)
		if s == "" || f == "" {
			continue
		}
		lex.byShort[s] = f
		lex.byFull[f] = s
		lex.abbreviations = append(lex.abbreviations, Abbreviation{Short: s, Full: f})
	}
	sort.Slice(lex.abbreviations, func(i, j int) bool {
		return lex.abbreviations[i].Short < lex.abbreviations[j].Short
	})

	for word, expansions := range data.Synonyms {
		w := normalize(word)
		if w == "" {
			continue
		}
		lex.synonyms[w] = normalizeList(expansions)
	}

	return lex
}

func newSubjectSet(data SubjectData) subjectSet {
	set := subjectSet{
		codes:      make(map[string]struct{}, len(data.DepartmentCodes)),
		names:      make(map[string]struct{}, len(data.DepartmentNames)),
		nameList:   normalizeList(data.DepartmentNames),
		keywords:   normalizeList(data.Keywords),
		queryCues:  normalizeList(data.QueryCues),
		indicators: normalizeList(data.Indicators),
	}
	for _, code := range data.DepartmentCodes {
		if c := strings.ToUpper(strings.TrimSpace(code)); c != "" {
			set.codes[c] = struct{}{}
		}
	}
	for _, name := range set.nameList {
		set.names[name] = struct{}{}
	}
	return set
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		n := normalize(item)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// IsStopWord reports whether word is dropped before matching.
func (l *Lexicon) IsStopWord(word string) bool {
	_, ok := l.stopWords[word]
	return ok
}

// Expand returns the expansions of a single lower-cased token: the full form of
// an abbreviation, the short form of a full term, then its synonyms. The token
// itself is never included and the order is stable.
func (l *Lexicon) Expand(token string) []string {
	var expansions []string
	seen := map[string]struct{}{token: {}}
	add := func(term string) {
		if _, dup := seen[term]; dup {
			return
		}
		seen[term] = struct{}{}
		expansions = append(expansions, term)
	}

	if full, ok := l.byShort[token]; ok {
		add(full)
	}
	if short, ok := l.byFull[token]; ok {
		add(short)
	}
	for _, synonym := range l.synonyms[token] {
		add(synonym)
	}
	return expansions
}

// Abbreviations returns the abbreviation pairs sorted by short form.
func (l *Lexicon) Abbreviations() []Abbreviation {
	return append([]Abbreviation(nil), l.abbreviations...)
}

// IntroCues returns the words that signal a beginner-level request.
func (l *Lexicon) IntroCues() []string {
	return append([]string(nil), l.introCues...)
}

// STEMKeywords returns the query words that signal a STEM request.
func (l *Lexicon) STEMKeywords() []string {
	return append([]string(nil), l.stem.keywords...)
}

// STEMDepartmentNames returns the lower-cased STEM department names.
func (l *Lexicon) STEMDepartmentNames() []string {
	return append([]string(nil), l.stem.nameList...)
}

// SocialScienceQueryCues returns the phrases that mark an explicit social science request.
func (l *Lexicon) SocialScienceQueryCues() []string {
	return append([]string(nil), l.social.queryCues...)
}

// SocialScienceIndicators returns the phrases that place course text in the social sciences.
func (l *Lexicon) SocialScienceIndicators() []string {
	return append([]string(nil), l.social.indicators...)
}

// IsSTEMDepartmentCode reports whether code (any case) is a STEM department code.
func (l *Lexicon) IsSTEMDepartmentCode(code string) bool {
	_, ok := l.stem.codes[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// IsSTEMDepartmentName reports whether name (any case) is a STEM department name.
func (l *Lexicon) IsSTEMDepartmentName(name string) bool {
	_, ok := l.stem.names[normalize(name)]
	return ok
}

// IsSocialScienceDepartmentCode reports whether code (any case) is a social science department code.
func (l *Lexicon) IsSocialScienceDepartmentCode(code string) bool {
	_, ok := l.social.codes[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// IsSocialScienceDepartmentName reports whether name (any case) is a social science department name.
func (l *Lexicon) IsSocialScienceDepartmentName(name string) bool {
	_, ok := l.social.names[normalize(name)]
	return ok
}
