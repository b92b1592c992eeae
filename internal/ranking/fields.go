package ranking

import (
	"strings"
	"unicode/utf8"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/query"
	"github.com/gcbaptista/course-search-engine/internal/tokenizer"
	"github.com/gcbaptista/course-search-engine/model"
)

// preparedRecord holds the lower-cased field values of one course, computed
// once per ranking call.
type preparedRecord struct {
	name        string
	cleanedName string
	nameWords   map[string]struct{}
	codes       []string // normalized, e.g. "cosc111"
	codeNumbers []int
	deptNames   []string
	deptCodes   []string // upper-cased
	divisions   []string
	keywords    []string
	description string
	professors  []string
	locations   []string
	halfCredit  bool
}

func prepareRecord(course model.Course) preparedRecord {
	r := preparedRecord{
		name:        strings.ToLower(course.Name),
		nameWords:   make(map[string]struct{}),
		deptCodes:   course.DepartmentCodes(),
		divisions:   lowerAll(course.Divisions),
		keywords:    lowerAll(course.Keywords),
		description: strings.ToLower(course.Description),
		locations:   lowerAll(course.Locations()),
		halfCredit:  course.IsHalfCredit(),
	}

	r.cleanedName = tokenizer.Clean(course.Name)
	for _, word := range strings.Fields(r.cleanedName) {
		r.nameWords[word] = struct{}{}
	}
	for _, code := range course.Codes {
		if normalized := tokenizer.NormalizeCode(code); normalized != "" {
			r.codes = append(r.codes, normalized)
		}
		if number, ok := tokenizer.CodeNumber(code); ok {
			r.codeNumbers = append(r.codeNumbers, number)
		}
	}
	for _, dept := range course.Departments {
		if name := strings.ToLower(strings.TrimSpace(dept.Name)); name != "" {
			r.deptNames = append(r.deptNames, name)
		}
	}

	r.professors = lowerAll(course.Professors)
	for _, section := range course.Sections {
		if prof := strings.ToLower(strings.TrimSpace(section.Professor)); prof != "" {
			r.professors = append(r.professors, prof)
		}
	}
	return r
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// fieldMatcher computes the lexical part of a score.
type fieldMatcher struct {
	cfg   config.ScoringConfig
	q     query.NormalizedQuery
	terms []string

	// codeTerms are the normalized candidates for code comparison: every term
	// plus the whole query with punctuation and spaces removed ("cosc 111").
	codeTerms []string
	// deptCodeTerms are the upper-cased terms and department prefixes of code-like terms.
	deptCodeTerms map[string]struct{}
	// locationTerms are the terms that can name a building.
	locationTerms []string
}

func newFieldMatcher(cfg config.ScoringConfig, q query.NormalizedQuery) *fieldMatcher {
	m := &fieldMatcher{
		cfg:           cfg,
		q:             q,
		terms:         q.MatchTerms(),
		deptCodeTerms: make(map[string]struct{}),
	}

	seenCode := make(map[string]struct{})
	addCode := func(code string) {
		if code == "" {
			return
		}
		if _, dup := seenCode[code]; dup {
			return
		}
		seenCode[code] = struct{}{}
		m.codeTerms = append(m.codeTerms, code)
	}
	for _, term := range m.terms {
		addCode(tokenizer.NormalizeCode(term))
	}
	if !q.IsEmpty() {
		addCode(tokenizer.NormalizeCode(q.Cleaned))
	}

	for _, term := range m.terms {
		m.deptCodeTerms[strings.ToUpper(term)] = struct{}{}
		if tokenizer.LooksLikeCourseCode(term) {
			m.deptCodeTerms[strings.ToUpper(tokenizer.LetterPrefix(term))] = struct{}{}
		}

		if utf8.RuneCountInString(term) < cfg.MinLocationTermLength {
			continue
		}
		if tokenizer.IsNumeric(term) || tokenizer.LooksLikeCourseCode(term) {
			continue
		}
		m.locationTerms = append(m.locationTerms, term)
	}
	return m
}

// containsTerm matches short terms on word boundaries and longer terms as substrings.
func (m *fieldMatcher) containsTerm(text, term string) bool {
	if utf8.RuneCountInString(term) <= m.cfg.ShortTermMaxLength {
		return tokenizer.ContainsWord(text, term)
	}
	return strings.Contains(text, term)
}

func (m *fieldMatcher) anyTermIn(text string) bool {
	if text == "" {
		return false
	}
	for _, term := range m.terms {
		if m.containsTerm(text, term) {
			return true
		}
	}
	return false
}

func (m *fieldMatcher) anyTermInAny(values []string) bool {
	for _, v := range values {
		if m.anyTermIn(v) {
			return true
		}
	}
	return false
}

// score fills the lexical fields of b. Each field contributes its weight at
// most once per record; phrases contribute once per matched phrase.
func (m *fieldMatcher) score(r preparedRecord, b *Breakdown) {
	if len(m.terms) == 0 {
		return
	}
	cfg := m.cfg

	if m.anyTermIn(r.name) {
		b.CourseName = cfg.CourseNameWeight
		if m.nameExact(r) {
			b.CourseNameExact = cfg.CourseNameExactBonus
		}
	}

	partial, exact := m.matchCodes(r.codes)
	if partial {
		b.CourseCode = cfg.CourseCodeWeight
	}
	if exact {
		b.CourseCodeExact = cfg.CourseCodeExactBonus
	}

	for _, code := range r.deptCodes {
		if _, ok := m.deptCodeTerms[code]; ok {
			b.DepartmentCode = cfg.DepartmentCodeWeight
			break
		}
	}

	if m.anyTermInAny(r.deptNames) {
		b.DepartmentName = cfg.DepartmentNameWeight
	}
	if m.anyTermInAny(r.divisions) {
		b.Division = cfg.DivisionWeight
	}
	if m.anyTermInAny(r.keywords) {
		b.Keyword = cfg.KeywordWeight
	}
	if m.anyTermIn(r.description) {
		b.Description = cfg.DescriptionWeight
	}
	if m.anyTermInAny(r.professors) {
		b.Professor = cfg.ProfessorWeight
	}

	if m.matchLocation(r.locations) {
		b.Location = cfg.LocationWeight
	}

	if m.q.WantsHalfCredit() && r.halfCredit {
		b.HalfCredit = cfg.HalfCreditWeight
	}

	for _, phrase := range m.q.Phrases {
		if strings.Contains(r.name, phrase) || strings.Contains(r.description, phrase) {
			b.MatchedPhrases++
		}
	}
	b.Phrase = float64(b.MatchedPhrases) * cfg.PhraseWeight
}

// nameExact reports whether a term is a whole word of the name or the whole name.
func (m *fieldMatcher) nameExact(r preparedRecord) bool {
	for _, term := range m.terms {
		if _, ok := r.nameWords[term]; ok {
			return true
		}
		if term == r.cleanedName {
			return true
		}
	}
	return m.q.Cleaned == r.cleanedName
}

func (m *fieldMatcher) matchCodes(codes []string) (partial, exact bool) {
	for _, code := range codes {
		for _, term := range m.codeTerms {
			if code == term {
				return true, true
			}
			if strings.Contains(code, term) {
				partial = true
			}
		}
	}
	return partial, false
}

func (m *fieldMatcher) matchLocation(locations []string) bool {
	for _, loc := range locations {
		for _, term := range m.locationTerms {
			if strings.Contains(loc, term) {
				return true
			}
		}
	}
	return false
}
