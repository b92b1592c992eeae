package ranking

import "github.com/gcbaptista/course-search-engine/model"

// ScoredResult is one ranked course with its final score.
type ScoredResult struct {
	Course    model.Course `json:"course"`
	Score     float64      `json:"score"`
	Breakdown Breakdown    `json:"breakdown"`
}

// Breakdown records every signal that contributed to a score.
//
// Score = (Lexical + Semantic) * IntroMultiplier * SubjectMultiplier * GenericMultiplier
type Breakdown struct {
	CourseName      float64 `json:"course_name,omitempty"`
	CourseNameExact float64 `json:"course_name_exact,omitempty"`
	CourseCode      float64 `json:"course_code,omitempty"`
	CourseCodeExact float64 `json:"course_code_exact,omitempty"`
	DepartmentName  float64 `json:"department_name,omitempty"`
	DepartmentCode  float64 `json:"department_code,omitempty"`
	Division        float64 `json:"division,omitempty"`
	Keyword         float64 `json:"keyword,omitempty"`
	Description     float64 `json:"description,omitempty"`
	Professor       float64 `json:"professor,omitempty"`
	Location        float64 `json:"location,omitempty"`
	HalfCredit      float64 `json:"half_credit,omitempty"`
	Phrase          float64 `json:"phrase,omitempty"`
	MatchedPhrases  int     `json:"matched_phrases,omitempty"`

	Lexical    float64 `json:"lexical"`
	Similarity float64 `json:"similarity"` // cosine similarity in [0,1]
	Semantic   float64 `json:"semantic"`   // Similarity * semantic weight

	IntroMultiplier   float64 `json:"intro_multiplier"`
	SubjectMultiplier float64 `json:"subject_multiplier"`
	GenericMultiplier float64 `json:"generic_multiplier"`
}

func (b *Breakdown) sumLexical() {
	b.Lexical = b.CourseName + b.CourseNameExact + b.CourseCode + b.CourseCodeExact +
		b.DepartmentName + b.DepartmentCode + b.Division + b.Keyword + b.Description +
		b.Professor + b.Location + b.HalfCredit + b.Phrase
}

// Multiplier is the product of the context adjustments.
func (b Breakdown) Multiplier() float64 {
	return b.IntroMultiplier * b.SubjectMultiplier * b.GenericMultiplier
}
