package engine

import (
	"context"
	stderrors "errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/errors"
	"github.com/gcbaptista/course-search-engine/internal/persistence"
	"github.com/gcbaptista/course-search-engine/model"
	"github.com/gcbaptista/course-search-engine/services"
)

// --- Test Helpers ---

func newTestEngine(t *testing.T, dataDir string) *Engine {
	t.Helper()
	if dataDir == "" {
		dataDir = t.TempDir()
	}
	e, err := NewEngine(Options{DataDir: dataDir, MaxJobWorkers: 2})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func sampleCourses() []model.Course {
	return []model.Course{
		{
			ID:          "cosc-111",
			Name:        "Introduction to Computer Science",
			Codes:       []string{"COSC-111"},
			Departments: []model.Department{{Name: "Computer Science", Code: "COSC"}},
			Divisions:   []string{"Science & Mathematics"},
			Description: "An introductory course in programming.",
		},
		{
			ID:          "econ-101",
			Name:        "Principles of Economics",
			Codes:       []string{"ECON-101"},
			Departments: []model.Department{{Name: "Economics", Code: "ECON"}},
			Divisions:   []string{"Social Sciences"},
		},
	}
}

func mustCreateCatalog(t *testing.T, e *Engine, name string) *CatalogInstance {
	t.Helper()
	if err := e.CreateCatalog(config.CatalogSettings{Name: name}); err != nil {
		t.Fatalf("CreateCatalog(%s) error = %v", name, err)
	}
	instance, err := e.instance(name)
	if err != nil {
		t.Fatalf("instance(%s) error = %v", name, err)
	}
	return instance
}

// --- Test Cases ---

func TestNewEngine_Validation(t *testing.T) {
	if _, err := NewEngine(Options{}); err == nil {
		t.Error("expected an error for an empty data directory")
	}

	bad := config.DefaultScoringConfig()
	bad.MaxResults = 0
	if _, err := NewEngine(Options{DataDir: t.TempDir(), BaseScoring: &bad}); !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("NewEngine(bad base scoring) error = %v, want ErrInvalidInput", err)
	}
}

func TestEngine_CreateCatalog(t *testing.T) {
	e := newTestEngine(t, "")

	if err := e.CreateCatalog(config.CatalogSettings{Name: " fall-2025 ", Description: "Fall"}); err != nil {
		t.Fatalf("CreateCatalog() error = %v", err)
	}
	settings, err := e.GetCatalogSettings("fall-2025")
	if err != nil {
		t.Fatalf("GetCatalogSettings() error = %v", err)
	}
	if settings.Description != "Fall" {
		t.Errorf("Description = %q, want Fall", settings.Description)
	}
	if _, err := os.Stat(filepath.Join(e.dataDir, "fall-2025", settingsFile)); err != nil {
		t.Errorf("settings file not written: %v", err)
	}

	err = e.CreateCatalog(config.CatalogSettings{Name: "fall-2025"})
	if !stderrors.Is(err, errors.ErrCatalogAlreadyExists) {
		t.Errorf("duplicate CreateCatalog() error = %v, want ErrCatalogAlreadyExists", err)
	}
}

func TestEngine_CreateCatalogRejectsInvalidSettings(t *testing.T) {
	e := newTestEngine(t, "")
	negative := -1.0

	tests := []struct {
		name     string
		settings config.CatalogSettings
	}{
		{"empty name", config.CatalogSettings{}},
		{"path traversal", config.CatalogSettings{Name: "../etc"}},
		{"negative weight", config.CatalogSettings{Name: "ok", Scoring: &config.ScoringOverrides{KeywordWeight: &negative}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.CreateCatalog(tt.settings); !stderrors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("CreateCatalog() error = %v, want ErrInvalidInput", err)
			}
		})
	}
	if got := e.ListCatalogs(); len(got) != 0 {
		t.Errorf("ListCatalogs() = %v, want none", got)
	}
}

func TestEngine_GetAndDeleteCatalog(t *testing.T) {
	e := newTestEngine(t, "")
	mustCreateCatalog(t, e, "spring-2026")
	mustCreateCatalog(t, e, "fall-2025")

	if got := e.ListCatalogs(); len(got) != 2 || got[0] != "fall-2025" || got[1] != "spring-2026" {
		t.Errorf("ListCatalogs() = %v, want sorted names", got)
	}

	if _, err := e.GetCatalog("missing"); !stderrors.Is(err, errors.ErrCatalogNotFound) {
		t.Errorf("GetCatalog(missing) error = %v, want ErrCatalogNotFound", err)
	}

	if err := e.DeleteCatalog("fall-2025"); err != nil {
		t.Fatalf("DeleteCatalog() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(e.dataDir, "fall-2025")); !os.IsNotExist(err) {
		t.Errorf("catalog directory should be removed, stat error = %v", err)
	}
	if err := e.DeleteCatalog("fall-2025"); !stderrors.Is(err, errors.ErrCatalogNotFound) {
		t.Errorf("second DeleteCatalog() error = %v, want ErrCatalogNotFound", err)
	}
}

func TestEngine_UpdateScoring(t *testing.T) {
	e := newTestEngine(t, "")
	mustCreateCatalog(t, e, "fall-2025")

	cutoff := 0.6
	if err := e.UpdateScoring("fall-2025", &config.ScoringOverrides{ScoreCutoff: &cutoff}); err != nil {
		t.Fatalf("UpdateScoring() error = %v", err)
	}
	effective, err := e.GetEffectiveScoring("fall-2025")
	if err != nil {
		t.Fatalf("GetEffectiveScoring() error = %v", err)
	}
	if effective.ScoreCutoff != 0.6 || effective.KeywordWeight != 70 {
		t.Errorf("effective scoring = %+v, want cutoff 0.6 with default weights", effective)
	}

	tooHigh := 1.5
	err = e.UpdateScoring("fall-2025", &config.ScoringOverrides{ScoreCutoff: &tooHigh})
	if !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("UpdateScoring(invalid) error = %v, want ErrInvalidInput", err)
	}
	if effective, _ := e.GetEffectiveScoring("fall-2025"); effective.ScoreCutoff != 0.6 {
		t.Errorf("a rejected update changed the cutoff to %g", effective.ScoreCutoff)
	}

	if err := e.UpdateScoring("fall-2025", nil); err != nil {
		t.Fatalf("UpdateScoring(nil) error = %v", err)
	}
	if effective, _ := e.GetEffectiveScoring("fall-2025"); effective.ScoreCutoff != 0.25 {
		t.Errorf("resetting overrides should restore the base cutoff, got %g", effective.ScoreCutoff)
	}

	if err := e.UpdateScoring("missing", nil); !stderrors.Is(err, errors.ErrCatalogNotFound) {
		t.Errorf("UpdateScoring(missing) error = %v, want ErrCatalogNotFound", err)
	}
}

func TestEngine_CatalogAccessor(t *testing.T) {
	e := newTestEngine(t, "")
	mustCreateCatalog(t, e, "fall-2025")

	catalog, err := e.GetCatalog("fall-2025")
	if err != nil {
		t.Fatalf("GetCatalog() error = %v", err)
	}

	added, updated, err := catalog.UpsertCourses(sampleCourses())
	if err != nil || added != 2 || updated != 0 {
		t.Fatalf("UpsertCourses() = %d, %d, %v; want 2, 0, nil", added, updated, err)
	}
	if _, _, err := catalog.UpsertCourses([]model.Course{{Name: "no id"}}); !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("UpsertCourses(no id) error = %v, want ErrInvalidInput", err)
	}

	course, err := catalog.GetCourse("econ-101")
	if err != nil || course.Name != "Principles of Economics" {
		t.Errorf("GetCourse() = %+v, %v", course, err)
	}
	if _, err := catalog.GetCourse("nope"); !stderrors.Is(err, errors.ErrCourseNotFound) {
		t.Errorf("GetCourse(nope) error = %v, want ErrCourseNotFound", err)
	}

	page, total := catalog.ListCourses(2, 1)
	if total != 2 || len(page) != 1 || page[0].ID != "econ-101" {
		t.Errorf("ListCourses(2, 1) = %v, %d", page, total)
	}
	if page, total := catalog.ListCourses(math.MaxInt/50, 100); total != 2 || len(page) != 0 {
		t.Errorf("ListCourses(huge page) = %v, %d; want no courses", page, total)
	}

	stats := catalog.Stats()
	if stats.CourseCount != 2 || stats.Divisions["social sciences"] != 1 {
		t.Errorf("Stats() = %+v", stats)
	}

	result, err := catalog.Search(context.Background(), services.SearchQuery{QueryString: "COSC-111"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(result.Hits) == 0 || result.Hits[0].Course.ID != "cosc-111" {
		t.Errorf("Search() hits = %+v, want cosc-111 first", result.Hits)
	}

	if err := catalog.DeleteCourse("cosc-111"); err != nil {
		t.Fatalf("DeleteCourse() error = %v", err)
	}
	if err := catalog.DeleteCourse("cosc-111"); !stderrors.Is(err, errors.ErrCourseNotFound) {
		t.Errorf("second DeleteCourse() error = %v, want ErrCourseNotFound", err)
	}
}

func TestEngine_PersistenceAcrossRestarts(t *testing.T) {
	dataDir := t.TempDir()

	first, err := NewEngine(Options{DataDir: dataDir})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	mustCreateCatalog(t, first, "fall-2025")
	catalog, _ := first.GetCatalog("fall-2025")
	if _, _, err := catalog.UpsertCourses(sampleCourses()); err != nil {
		t.Fatalf("UpsertCourses() error = %v", err)
	}
	zero := 0.0
	if err := first.UpdateScoring("fall-2025", &config.ScoringOverrides{DivisionWeight: &zero}); err != nil {
		t.Fatalf("UpdateScoring() error = %v", err)
	}
	if err := first.PersistCatalogData("fall-2025"); err != nil {
		t.Fatalf("PersistCatalogData() error = %v", err)
	}
	first.Close()

	second := newTestEngine(t, dataDir)
	reloaded, err := second.GetCatalog("fall-2025")
	if err != nil {
		t.Fatalf("catalog not reloaded: %v", err)
	}
	if got := reloaded.Stats().CourseCount; got != 2 {
		t.Errorf("reloaded course count = %d, want 2", got)
	}
	effective, _ := second.GetEffectiveScoring("fall-2025")
	if effective.DivisionWeight != 0 {
		t.Errorf("reloaded DivisionWeight = %g, want the zero override", effective.DivisionWeight)
	}
}

func TestEngine_LoadSkipsBrokenCatalogs(t *testing.T) {
	dataDir := t.TempDir()

	// Settings name does not match the directory.
	if err := persistence.SaveGob(filepath.Join(dataDir, "renamed", settingsFile), config.CatalogSettings{Name: "other"}); err != nil {
		t.Fatalf("SaveGob() error = %v", err)
	}
	// No settings file at all.
	if err := os.MkdirAll(filepath.Join(dataDir, "empty"), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	// Settings without a course store load as an empty catalog.
	if err := persistence.SaveGob(filepath.Join(dataDir, "fresh", settingsFile), config.CatalogSettings{Name: "fresh"}); err != nil {
		t.Fatalf("SaveGob() error = %v", err)
	}

	e := newTestEngine(t, dataDir)
	if got := e.ListCatalogs(); len(got) != 1 || got[0] != "fresh" {
		t.Errorf("ListCatalogs() = %v, want [fresh]", got)
	}
}
