package config

import (
	"fmt"

	"github.com/gcbaptista/course-search-engine/internal/errors"
)

// ScoringConfig holds every weight, multiplier and threshold used by the ranker.
// A config is fixed for the duration of a ranking call.
type ScoringConfig struct {
	// Field weights, added once per record when the field matches.
	CourseNameWeight      float64 `json:"course_name_weight" yaml:"course_name_weight"`
	CourseNameExactBonus  float64 `json:"course_name_exact_bonus" yaml:"course_name_exact_bonus"`
	CourseCodeWeight      float64 `json:"course_code_weight" yaml:"course_code_weight"`
	CourseCodeExactBonus  float64 `json:"course_code_exact_bonus" yaml:"course_code_exact_bonus"`
	DepartmentNameWeight  float64 `json:"department_name_weight" yaml:"department_name_weight"`
	DepartmentCodeWeight  float64 `json:"department_code_weight" yaml:"department_code_weight"`
	DivisionWeight        float64 `json:"division_weight" yaml:"division_weight"`
	KeywordWeight         float64 `json:"keyword_weight" yaml:"keyword_weight"`
	DescriptionWeight     float64 `json:"description_weight" yaml:"description_weight"`
	ProfessorWeight       float64 `json:"professor_weight" yaml:"professor_weight"`
	LocationWeight        float64 `json:"location_weight" yaml:"location_weight"`
	HalfCreditWeight      float64 `json:"half_credit_weight" yaml:"half_credit_weight"`
	PhraseWeight          float64 `json:"phrase_weight" yaml:"phrase_weight"` // per matched phrase
	SemanticWeight        float64 `json:"semantic_weight" yaml:"semantic_weight"`
	MinCharsForSemantic   int     `json:"min_chars_for_semantic" yaml:"min_chars_for_semantic"`
	ShortTermMaxLength    int     `json:"short_term_max_length" yaml:"short_term_max_length"` // terms this short match whole words only
	MinLocationTermLength int     `json:"min_location_term_length" yaml:"min_location_term_length"`

	// Multipliers applied after the additive signals.
	IntroBoost               float64 `json:"intro_boost" yaml:"intro_boost"`
	IntroLevelCeiling        int     `json:"intro_level_ceiling" yaml:"intro_level_ceiling"` // course numbers below this are introductory
	STEMBoost                float64 `json:"stem_boost" yaml:"stem_boost"`
	SocialSciencePenalty     float64 `json:"social_science_penalty" yaml:"social_science_penalty"`
	GeneralScienceBoost      float64 `json:"general_science_boost" yaml:"general_science_boost"`
	GenericPenalty           float64 `json:"generic_penalty" yaml:"generic_penalty"`
	GenericDivisionThreshold int     `json:"generic_division_threshold" yaml:"generic_division_threshold"`

	// Selection.
	ScoreCutoff float64 `json:"score_cutoff" yaml:"score_cutoff"` // fraction of the best score a result must reach
	MaxResults  int     `json:"max_results" yaml:"max_results"`
}

// DefaultScoringConfig returns the stock weights.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		CourseNameWeight:      100,
		CourseNameExactBonus:  150,
		CourseCodeWeight:      90,
		CourseCodeExactBonus:  300,
		DepartmentNameWeight:  120,
		DepartmentCodeWeight:  150,
		DivisionWeight:        8,
		KeywordWeight:         70,
		DescriptionWeight:     60,
		ProfessorWeight:       130,
		LocationWeight:        200,
		HalfCreditWeight:      200,
		PhraseWeight:          80,
		SemanticWeight:        120,
		MinCharsForSemantic:   3,
		ShortTermMaxLength:    3,
		MinLocationTermLength: 3,

		IntroBoost:               1.5,
		IntroLevelCeiling:        200,
		STEMBoost:                1.3,
		SocialSciencePenalty:     0.25,
		GeneralScienceBoost:      1.5,
		GenericPenalty:           0.5,
		GenericDivisionThreshold: 4,

		ScoreCutoff: 0.25,
		MaxResults:  100,
	}
}

// Validate rejects configurations the ranker cannot honour. The first problem
// found is returned as a *errors.ValidationError.
func (c ScoringConfig) Validate() error {
	weights := []struct {
		field string
		value float64
	}{
		{"course_name_weight", c.CourseNameWeight},
		{"course_name_exact_bonus", c.CourseNameExactBonus},
		{"course_code_weight", c.CourseCodeWeight},
		{"course_code_exact_bonus", c.CourseCodeExactBonus},
		{"department_name_weight", c.DepartmentNameWeight},
		{"department_code_weight", c.DepartmentCodeWeight},
		{"division_weight", c.DivisionWeight},
		{"keyword_weight", c.KeywordWeight},
		{"description_weight", c.DescriptionWeight},
		{"professor_weight", c.ProfessorWeight},
		{"location_weight", c.LocationWeight},
		{"half_credit_weight", c.HalfCreditWeight},
		{"phrase_weight", c.PhraseWeight},
		{"semantic_weight", c.SemanticWeight},
	}
	for _, w := range weights {
		if w.value < 0 {
			return errors.NewValidationError(w.field, fmt.Sprintf("must not be negative, got %g", w.value))
		}
	}

	multipliers := []struct {
		field string
		value float64
	}{
		{"intro_boost", c.IntroBoost},
		{"stem_boost", c.STEMBoost},
		{"social_science_penalty", c.SocialSciencePenalty},
		{"general_science_boost", c.GeneralScienceBoost},
		{"generic_penalty", c.GenericPenalty},
	}
	for _, m := range multipliers {
		if m.value <= 0 {
			return errors.NewValidationError(m.field, fmt.Sprintf("must be positive, got %g", m.value))
		}
	}

	if c.ScoreCutoff < 0 || c.ScoreCutoff > 1 {
		return errors.NewValidationError("score_cutoff", fmt.Sprintf("must be between 0 and 1, got %g", c.ScoreCutoff))
	}
	if c.MaxResults <= 0 {
		return errors.NewValidationError("max_results", fmt.Sprintf("must be positive, got %d", c.MaxResults))
	}
	if c.MinCharsForSemantic < 0 {
		return errors.NewValidationError("min_chars_for_semantic", "must not be negative")
	}
	if c.ShortTermMaxLength < 0 {
		return errors.NewValidationError("short_term_max_length", "must not be negative")
	}
	if c.MinLocationTermLength < 0 {
		return errors.NewValidationError("min_location_term_length", "must not be negative")
	}
	if c.IntroLevelCeiling < 0 {
		return errors.NewValidationError("intro_level_ceiling", "must not be negative")
	}
	if c.GenericDivisionThreshold < 1 {
		return errors.NewValidationError("generic_division_threshold", "must be at least 1")
	}
	return nil
}

// ScoringOverrides changes a subset of a ScoringConfig. Nil fields keep the
// base value.
type ScoringOverrides struct {
	CourseNameWeight      *float64 `json:"course_name_weight,omitempty" yaml:"course_name_weight,omitempty"`
	CourseNameExactBonus  *float64 `json:"course_name_exact_bonus,omitempty" yaml:"course_name_exact_bonus,omitempty"`
	CourseCodeWeight      *float64 `json:"course_code_weight,omitempty" yaml:"course_code_weight,omitempty"`
	CourseCodeExactBonus  *float64 `json:"course_code_exact_bonus,omitempty" yaml:"course_code_exact_bonus,omitempty"`
	DepartmentNameWeight  *float64 `json:"department_name_weight,omitempty" yaml:"department_name_weight,omitempty"`
	DepartmentCodeWeight  *float64 `json:"department_code_weight,omitempty" yaml:"department_code_weight,omitempty"`
	DivisionWeight        *float64 `json:"division_weight,omitempty" yaml:"division_weight,omitempty"`
	KeywordWeight         *float64 `json:"keyword_weight,omitempty" yaml:"keyword_weight,omitempty"`
	DescriptionWeight     *float64 `json:"description_weight,omitempty" yaml:"description_weight,omitempty"`
	ProfessorWeight       *float64 `json:"professor_weight,omitempty" yaml:"professor_weight,omitempty"`
	LocationWeight        *float64 `json:"location_weight,omitempty" yaml:"location_weight,omitempty"`
	HalfCreditWeight      *float64 `json:"half_credit_weight,omitempty" yaml:"half_credit_weight,omitempty"`
	PhraseWeight          *float64 `json:"phrase_weight,omitempty" yaml:"phrase_weight,omitempty"`
	SemanticWeight        *float64 `json:"semantic_weight,omitempty" yaml:"semantic_weight,omitempty"`
	MinCharsForSemantic   *int     `json:"min_chars_for_semantic,omitempty" yaml:"min_chars_for_semantic,omitempty"`
	ShortTermMaxLength    *int     `json:"short_term_max_length,omitempty" yaml:"short_term_max_length,omitempty"`
	MinLocationTermLength *int     `json:"min_location_term_length,omitempty" yaml:"min_location_term_length,omitempty"`

	IntroBoost               *float64 `json:"intro_boost,omitempty" yaml:"intro_boost,omitempty"`
	IntroLevelCeiling        *int     `json:"intro_level_ceiling,omitempty" yaml:"intro_level_ceiling,omitempty"`
	STEMBoost                *float64 `json:"stem_boost,omitempty" yaml:"stem_boost,omitempty"`
	SocialSciencePenalty     *float64 `json:"social_science_penalty,omitempty" yaml:"social_science_penalty,omitempty"`
	GeneralScienceBoost      *float64 `json:"general_science_boost,omitempty" yaml:"general_science_boost,omitempty"`
	GenericPenalty           *float64 `json:"generic_penalty,omitempty" yaml:"generic_penalty,omitempty"`
	GenericDivisionThreshold *int     `json:"generic_division_threshold,omitempty" yaml:"generic_division_threshold,omitempty"`

	ScoreCutoff *float64 `json:"score_cutoff,omitempty" yaml:"score_cutoff,omitempty"`
	MaxResults  *int     `json:"max_results,omitempty" yaml:"max_results,omitempty"`
}

// IsEmpty reports whether no field is overridden.
func (o *ScoringOverrides) IsEmpty() bool {
	return o == nil || *o == ScoringOverrides{}
}

// Apply returns base with every non-nil override copied over it. A nil
// receiver returns base unchanged. The result is not validated.
func (o *ScoringOverrides) Apply(base ScoringConfig) ScoringConfig {
	if o == nil {
		return base
	}
	setFloat(&base.CourseNameWeight, o.CourseNameWeight)
	setFloat(&base.CourseNameExactBonus, o.CourseNameExactBonus)
	setFloat(&base.CourseCodeWeight, o.CourseCodeWeight)
	setFloat(&base.CourseCodeExactBonus, o.CourseCodeExactBonus)
	setFloat(&base.DepartmentNameWeight, o.DepartmentNameWeight)
	setFloat(&base.DepartmentCodeWeight, o.DepartmentCodeWeight)
	setFloat(&base.DivisionWeight, o.DivisionWeight)
	setFloat(&base.KeywordWeight, o.KeywordWeight)
	setFloat(&base.DescriptionWeight, o.DescriptionWeight)
	setFloat(&base.ProfessorWeight, o.ProfessorWeight)
	setFloat(&base.LocationWeight, o.LocationWeight)
	setFloat(&base.HalfCreditWeight, o.HalfCreditWeight)
	setFloat(&base.PhraseWeight, o.PhraseWeight)
	setFloat(&base.SemanticWeight, o.SemanticWeight)
	setInt(&base.MinCharsForSemantic, o.MinCharsForSemantic)
	setInt(&base.ShortTermMaxLength, o.ShortTermMaxLength)
	setInt(&base.MinLocationTermLength, o.MinLocationTermLength)

	setFloat(&base.IntroBoost, o.IntroBoost)
	setInt(&base.IntroLevelCeiling, o.IntroLevelCeiling)
	setFloat(&base.STEMBoost, o.STEMBoost)
	setFloat(&base.SocialSciencePenalty, o.SocialSciencePenalty)
	setFloat(&base.GeneralScienceBoost, o.GeneralScienceBoost)
	setFloat(&base.GenericPenalty, o.GenericPenalty)
	setInt(&base.GenericDivisionThreshold, o.GenericDivisionThreshold)

	setFloat(&base.ScoreCutoff, o.ScoreCutoff)
	setInt(&base.MaxResults, o.MaxResults)
	return base
}

// Merge returns a copy of o with every non-nil field of next layered on top.
func (o *ScoringOverrides) Merge(next *ScoringOverrides) *ScoringOverrides {
	merged := ScoringOverrides{}
	if o != nil {
		merged = *o
	}
	if next == nil {
		return &merged
	}
	mergeFloat(&merged.CourseNameWeight, next.CourseNameWeight)
	mergeFloat(&merged.CourseNameExactBonus, next.CourseNameExactBonus)
	mergeFloat(&merged.CourseCodeWeight, next.CourseCodeWeight)
	mergeFloat(&merged.CourseCodeExactBonus, next.CourseCodeExactBonus)
	mergeFloat(&merged.DepartmentNameWeight, next.DepartmentNameWeight)
	mergeFloat(&merged.DepartmentCodeWeight, next.DepartmentCodeWeight)
	mergeFloat(&merged.DivisionWeight, next.DivisionWeight)
	mergeFloat(&merged.KeywordWeight, next.KeywordWeight)
	mergeFloat(&merged.DescriptionWeight, next.DescriptionWeight)
	mergeFloat(&merged.ProfessorWeight, next.ProfessorWeight)
	mergeFloat(&merged.LocationWeight, next.LocationWeight)
	mergeFloat(&merged.HalfCreditWeight, next.HalfCreditWeight)
	mergeFloat(&merged.PhraseWeight, next.PhraseWeight)
	mergeFloat(&merged.SemanticWeight, next.SemanticWeight)
	mergeInt(&merged.MinCharsForSemantic, next.MinCharsForSemantic)
	mergeInt(&merged.ShortTermMaxLength, next.ShortTermMaxLength)
	mergeInt(&merged.MinLocationTermLength, next.MinLocationTermLength)

	mergeFloat(&merged.IntroBoost, next.IntroBoost)
	mergeInt(&merged.IntroLevelCeiling, next.IntroLevelCeiling)
	mergeFloat(&merged.STEMBoost, next.STEMBoost)
	mergeFloat(&merged.SocialSciencePenalty, next.SocialSciencePenalty)
	mergeFloat(&merged.GeneralScienceBoost, next.GeneralScienceBoost)
	mergeFloat(&merged.GenericPenalty, next.GenericPenalty)
	mergeInt(&merged.GenericDivisionThreshold, next.GenericDivisionThreshold)

	mergeFloat(&merged.ScoreCutoff, next.ScoreCutoff)
	mergeInt(&merged.MaxResults, next.MaxResults)
	return &merged
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func mergeFloat(dst **float64, src *float64) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func mergeInt(dst **int, src *int) {
	if src != nil {
		v := *src
		*dst = &v
	}
}
