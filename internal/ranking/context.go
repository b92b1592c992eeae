package ranking

import (
	"strings"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/lexicon"
	"github.com/gcbaptista/course-search-engine/internal/query"
	"github.com/gcbaptista/course-search-engine/internal/tokenizer"
)

// Markers that flag a course as introductory.
const (
	introNameMarker        = "intro"
	introDescriptionMarker = "introductory"
)

// contextAdjuster derives the multiplicative adjustments of a record.
type contextAdjuster struct {
	cfg config.ScoringConfig
	q   query.NormalizedQuery
	lex *lexicon.Lexicon
}

// adjust sets the three multipliers of b. They are applied in a fixed order:
// intro, subject, generic.
func (a contextAdjuster) adjust(r preparedRecord, b *Breakdown) {
	b.IntroMultiplier = 1
	b.SubjectMultiplier = 1
	b.GenericMultiplier = 1

	if a.q.IntroIntent && a.isIntroductory(r) {
		b.IntroMultiplier = a.cfg.IntroBoost
	}

	switch {
	case a.q.STEMIntent:
		if a.isSTEM(r) {
			b.SubjectMultiplier = a.cfg.STEMBoost
		}
	case a.q.GeneralScienceIntent:
		if a.isSTEM(r) {
			b.SubjectMultiplier = a.cfg.GeneralScienceBoost
		}
	}
	// A cross-listed STEM record with social-science content takes both.
	if a.q.STEMIntent && !a.q.GeneralScienceIntent && a.isSocialScience(r) {
		b.SubjectMultiplier *= a.cfg.SocialSciencePenalty
	}

	if distinctCount(r.divisions) >= a.cfg.GenericDivisionThreshold {
		b.GenericMultiplier = a.cfg.GenericPenalty
	}
}

func (a contextAdjuster) isIntroductory(r preparedRecord) bool {
	if strings.Contains(r.name, introNameMarker) || strings.Contains(r.description, introDescriptionMarker) {
		return true
	}
	for _, keyword := range r.keywords {
		if strings.Contains(keyword, introNameMarker) {
			return true
		}
	}
	for _, number := range r.codeNumbers {
		if number < a.cfg.IntroLevelCeiling {
			return true
		}
	}
	return false
}

func (a contextAdjuster) isSTEM(r preparedRecord) bool {
	for _, code := range r.deptCodes {
		if a.lex.IsSTEMDepartmentCode(code) {
			return true
		}
	}
	for _, code := range r.codes {
		if a.lex.IsSTEMDepartmentCode(tokenizer.LetterPrefix(code)) {
			return true
		}
	}
	for _, name := range r.deptNames {
		if a.lex.IsSTEMDepartmentName(name) {
			return true
		}
	}
	return false
}

func (a contextAdjuster) isSocialScience(r preparedRecord) bool {
	for _, code := range r.deptCodes {
		if a.lex.IsSocialScienceDepartmentCode(code) {
			return true
		}
	}
	for _, code := range r.codes {
		if a.lex.IsSocialScienceDepartmentCode(tokenizer.LetterPrefix(code)) {
			return true
		}
	}
	for _, name := range r.deptNames {
		if a.lex.IsSocialScienceDepartmentName(name) {
			return true
		}
	}

	for _, indicator := range a.lex.SocialScienceIndicators() {
		if strings.Contains(r.name, indicator) || strings.Contains(r.description, indicator) {
			return true
		}
		for _, value := range r.deptNames {
			if strings.Contains(value, indicator) {
				return true
			}
		}
		for _, value := range r.keywords {
			if strings.Contains(value, indicator) {
				return true
			}
		}
	}
	return false
}

func distinctCount(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
