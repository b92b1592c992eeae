package lexicon

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefault_IsShared(t *testing.T) {
	if Default() != Default() {
		t.Fatal("Default() should return the same instance on every call")
	}
}

func TestIsStopWord(t *testing.T) {
	lex := Default()
	for _, word := range []string{"the", "a", "of", "to", "don", "t"} {
		if !lex.IsStopWord(word) {
			t.Errorf("expected %q to be a stop word", word)
		}
	}
	for _, word := range []string{"computer", "intro", "half", "ai", "science"} {
		if lex.IsStopWord(word) {
			t.Errorf("did not expect %q to be a stop word", word)
		}
	}
}

func TestExpand(t *testing.T) {
	lex := Default()
	tests := []struct {
		name  string
		token string
		want  []string
	}{
		{"abbreviation to full form", "ai", []string{"artificial intelligence"}},
		{"synonyms in table order", "coding", []string{"programming", "computer science", "software"}},
		{"synonym list skips the token itself", "movies", []string{"film", "cinema"}},
		{"unknown token", "xyzzy", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lex.Expand(tt.token)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expand(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestExpand_FullFormMapsBackToShortForm(t *testing.T) {
	lex := New(Data{Abbreviations: map[string]string{"calc": "calculus"}})
	if got := lex.Expand("calculus"); !reflect.DeepEqual(got, []string{"calc"}) {
		t.Errorf("Expand(calculus) = %v, want [calc]", got)
	}
	if got := lex.Expand("calc"); !reflect.DeepEqual(got, []string{"calculus"}) {
		t.Errorf("Expand(calc) = %v, want [calculus]", got)
	}
}

func TestAbbreviations_SortedByShortForm(t *testing.T) {
	abbreviations := Default().Abbreviations()
	for i := 1; i < len(abbreviations); i++ {
		if abbreviations[i-1].Short >= abbreviations[i].Short {
			t.Fatalf("abbreviations not sorted: %q before %q", abbreviations[i-1].Short, abbreviations[i].Short)
		}
	}
}

func TestSubjectClassification(t *testing.T) {
	lex := Default()

	if !lex.IsSTEMDepartmentCode("cosc") {
		t.Error("expected COSC to be a STEM department code regardless of case")
	}
	if !lex.IsSTEMDepartmentName("Computer Science") {
		t.Error("expected Computer Science to be a STEM department name")
	}
	if !lex.IsSocialScienceDepartmentCode("ECON") {
		t.Error("expected ECON to be a social science department code")
	}
	if !lex.IsSocialScienceDepartmentName("Sociology") {
		t.Error("expected Sociology to be a social science department name")
	}
	if lex.IsSTEMDepartmentCode("ECON") {
		t.Error("ECON should not be a STEM department code")
	}
}

func TestNew_IgnoresBlankEntries(t *testing.T) {
	lex := New(Data{
		StopWords:     []string{"", "  ", "The"},
		Abbreviations: map[string]string{"": "nothing", "x": ""},
		IntroCues:     []string{"Intro", "intro", ""},
	})

	if !lex.IsStopWord("the") {
		t.Error("stop words should be lower-cased")
	}
	if len(lex.Abbreviations()) != 0 {
		t.Errorf("blank abbreviations should be ignored, got %v", lex.Abbreviations())
	}
	if got := lex.IntroCues(); !reflect.DeepEqual(got, []string{"intro"}) {
		t.Errorf("IntroCues() = %v, want [intro]", got)
	}
}

func TestParse_MergesOverlay(t *testing.T) {
	overlay := []byte(`
stop_words: [course]
abbreviations:
  ds: data science
synonyms:
  coding: [programming]
stem:
  department_codes: [ARCH]
intro_cues: [foundations]
`)

	lex, err := Parse(overlay)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !lex.IsStopWord("course") || !lex.IsStopWord("the") {
		t.Error("overlay stop words should extend the defaults")
	}
	if got := lex.Expand("ds"); !reflect.DeepEqual(got, []string{"data science"}) {
		t.Errorf("Expand(ds) = %v, want [data science]", got)
	}
	if got := lex.Expand("ai"); !reflect.DeepEqual(got, []string{"artificial intelligence"}) {
		t.Errorf("default abbreviations should survive the merge, got %v", got)
	}
	if got := lex.Expand("coding"); !reflect.DeepEqual(got, []string{"programming"}) {
		t.Errorf("overlay synonyms should replace the default entry, got %v", got)
	}
	if !lex.IsSTEMDepartmentCode("ARCH") || !lex.IsSTEMDepartmentCode("COSC") {
		t.Error("overlay department codes should extend the defaults")
	}
	cues := lex.IntroCues()
	if cues[len(cues)-1] != "foundations" {
		t.Errorf("overlay intro cues should be appended, got %v", cues)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("stop_words: [unclosed")); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	if err := os.WriteFile(path, []byte("synonyms:\n  maths: [mathematics]\n"), 0o600); err != nil {
		t.Fatalf("failed to write lexicon file: %v", err)
	}

	lex, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got := lex.Expand("maths"); !reflect.DeepEqual(got, []string{"mathematics"}) {
		t.Errorf("Expand(maths) = %v, want [mathematics]", got)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
