package ranking

import (
	"testing"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/lexicon"
	"github.com/gcbaptista/course-search-engine/internal/query"
	"github.com/gcbaptista/course-search-engine/model"
)

func lexicalBreakdown(raw string, course model.Course) Breakdown {
	q := query.Normalize(raw, lexicon.Default())
	var b Breakdown
	newFieldMatcher(config.DefaultScoringConfig(), q).score(prepareRecord(course), &b)
	b.sumLexical()
	return b
}

func TestFieldMatcher_ShortTermsNeedWordBoundaries(t *testing.T) {
	course := model.Course{
		Name:        "Garden Maintenance",
		Description: "Maintain a garden through the seasons.",
	}
	if b := lexicalBreakdown("ai", course); b.Lexical != 0 {
		t.Errorf("\"ai\" should not match inside \"maintain\", got %+v", b)
	}

	course.Description = "Ethics of AI systems."
	if b := lexicalBreakdown("ai", course); b.Description != 60 {
		t.Errorf("Description = %g, want 60 for a whole-word match", b.Description)
	}
}

func TestFieldMatcher_EachFieldCountsOnce(t *testing.T) {
	course := model.Course{
		Name:        "Machine Learning",
		Keywords:    []string{"machine learning", "learning theory"},
		Description: "Learning from data. Learning with kernels.",
	}
	b := lexicalBreakdown("machine learning", course)

	if b.CourseName != 100 {
		t.Errorf("CourseName = %g, want 100", b.CourseName)
	}
	if b.CourseNameExact != 150 {
		t.Errorf("CourseNameExact = %g, want 150", b.CourseNameExact)
	}
	if b.Keyword != 70 {
		t.Errorf("Keyword = %g, want 70 despite two matching keywords", b.Keyword)
	}
	if b.Description != 60 {
		t.Errorf("Description = %g, want 60", b.Description)
	}
	if b.Phrase != 80 {
		t.Errorf("Phrase = %g, want 80", b.Phrase)
	}
}

func TestFieldMatcher_Codes(t *testing.T) {
	course := model.Course{
		Codes:       []string{"COSC-111"},
		Departments: []model.Department{{Name: "Computer Science", Code: "COSC"}},
	}

	tests := []struct {
		query     string
		code      float64
		exact     float64
		deptCode  float64
		deptName  float64
		wantTotal float64
	}{
		{"COSC-111", 90, 300, 150, 0, 540},
		{"cosc111", 90, 300, 150, 0, 540},
		{"cosc", 90, 0, 150, 0, 240},
		{"math111", 0, 0, 0, 0, 0},
		{"computer science", 0, 0, 0, 120, 120},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			b := lexicalBreakdown(tt.query, course)
			if b.CourseCode != tt.code || b.CourseCodeExact != tt.exact {
				t.Errorf("code = %g/%g, want %g/%g", b.CourseCode, b.CourseCodeExact, tt.code, tt.exact)
			}
			if b.DepartmentCode != tt.deptCode {
				t.Errorf("DepartmentCode = %g, want %g", b.DepartmentCode, tt.deptCode)
			}
			if b.DepartmentName != tt.deptName {
				t.Errorf("DepartmentName = %g, want %g", b.DepartmentName, tt.deptName)
			}
			if b.Lexical != tt.wantTotal {
				t.Errorf("Lexical = %g, want %g", b.Lexical, tt.wantTotal)
			}
		})
	}
}

func TestFieldMatcher_DepartmentCodeFromCourseCodeTerm(t *testing.T) {
	course := model.Course{
		Codes:       []string{"MATH-271"},
		Departments: []model.Department{{Name: "Mathematics and Statistics", Code: "MATH"}},
	}
	b := lexicalBreakdown("math111", course)
	if b.DepartmentCode != 150 {
		t.Errorf("DepartmentCode = %g, want 150 from the MATH prefix", b.DepartmentCode)
	}
	if b.CourseCode != 0 {
		t.Errorf("CourseCode = %g, want 0 for a different course number", b.CourseCode)
	}
}

func TestFieldMatcher_Location(t *testing.T) {
	course := model.Course{
		Codes:    []string{"COSC-207"},
		Sections: []model.Section{{Number: 1, Location: "SMUD 207"}},
	}

	if b := lexicalBreakdown("smud", course); b.Location != 200 {
		t.Errorf("Location = %g, want 200", b.Location)
	}
	if b := lexicalBreakdown("207", course); b.Location != 0 {
		t.Errorf("numeric terms should not match locations, got %g", b.Location)
	}
	if b := lexicalBreakdown("cosc-207", course); b.Location != 0 {
		t.Errorf("course-code terms should not match locations, got %g", b.Location)
	}
	if b := lexicalBreakdown("sm", course); b.Location != 0 {
		t.Errorf("two-letter terms should not match locations, got %g", b.Location)
	}
}

func TestFieldMatcher_ProfessorsIncludeSectionInstructors(t *testing.T) {
	course := model.Course{
		Name:     "Painting I",
		Sections: []model.Section{{Number: 1, Location: "FAB 105", Professor: "Sonya Clark"}},
	}
	if b := lexicalBreakdown("clark", course); b.Professor != 130 {
		t.Errorf("Professor = %g, want 130", b.Professor)
	}
}

func TestFieldMatcher_DivisionAndHalfCredit(t *testing.T) {
	course := model.Course{
		Name:       "Jazz Ensemble",
		Divisions:  []string{"Arts"},
		HalfCredit: true,
	}
	b := lexicalBreakdown("half arts", course)
	if b.Division != 8 {
		t.Errorf("Division = %g, want 8", b.Division)
	}
	if b.HalfCredit != 200 {
		t.Errorf("HalfCredit = %g, want 200", b.HalfCredit)
	}

	course.HalfCredit = false
	if b := lexicalBreakdown("half", course); b.HalfCredit != 0 {
		t.Errorf("full-credit course got HalfCredit %g", b.HalfCredit)
	}
}

func TestFieldMatcher_MissingFieldsContributeNothing(t *testing.T) {
	b := lexicalBreakdown("anything at all", model.Course{ID: "bare"})
	if b.Lexical != 0 {
		t.Errorf("a course with no fields scored %g", b.Lexical)
	}
}
