package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/errors"
	"github.com/gcbaptista/course-search-engine/internal/lexicon"
	"github.com/gcbaptista/course-search-engine/internal/metrics"
	"github.com/gcbaptista/course-search-engine/internal/search"
	"github.com/gcbaptista/course-search-engine/model"
	"github.com/gcbaptista/course-search-engine/services"
	"github.com/gcbaptista/course-search-engine/store"
)

// CatalogInstance holds all components and services for a single course catalog.
// It implements the services.CatalogAccessor interface.
type CatalogInstance struct {
	mu          sync.RWMutex
	settings    config.CatalogSettings
	CourseStore *store.CourseStore
	searcher    *search.Service
}

// NewCatalogInstance creates a catalog with an empty course store, ranking
// with scoring (the catalog overrides already applied).
func NewCatalogInstance(settings config.CatalogSettings, courseStore *store.CourseStore, scoring config.ScoringConfig, lex *lexicon.Lexicon, searchOpts search.Options) (*CatalogInstance, error) {
	if settings.Name == "" {
		return nil, fmt.Errorf("catalog name cannot be empty in settings")
	}
	if courseStore == nil {
		courseStore = store.NewCourseStore()
	}

	searchService, err := search.NewService(settings.Name, courseStore, scoring, lex, searchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %w", err)
	}

	metrics.SetCatalogSize(settings.Name, courseStore.Len())
	return &CatalogInstance{
		settings:    settings,
		CourseStore: courseStore,
		searcher:    searchService,
	}, nil
}

// UpsertCourses adds new courses and replaces existing ones by ID.
func (i *CatalogInstance) UpsertCourses(courses []model.Course) (int, int, error) {
	if err := validateCourses(courses); err != nil {
		return 0, 0, err
	}
	added, updated := i.CourseStore.Upsert(courses)
	metrics.SetCatalogSize(i.name(), i.CourseStore.Len())
	return added, updated, nil
}

// ReplaceCourses swaps the whole corpus of the catalog.
func (i *CatalogInstance) ReplaceCourses(courses []model.Course) error {
	if err := validateCourses(courses); err != nil {
		return err
	}
	i.CourseStore.Replace(courses)
	metrics.SetCatalogSize(i.name(), i.CourseStore.Len())
	return nil
}

// DeleteCourse removes one course by ID.
func (i *CatalogInstance) DeleteCourse(courseID string) error {
	if !i.CourseStore.Delete(courseID) {
		return errors.NewCourseNotFoundError(courseID, i.name())
	}
	metrics.SetCatalogSize(i.name(), i.CourseStore.Len())
	return nil
}

// GetCourse returns one course by ID.
func (i *CatalogInstance) GetCourse(courseID string) (model.Course, error) {
	course, ok := i.CourseStore.Get(courseID)
	if !ok {
		return model.Course{}, errors.NewCourseNotFoundError(courseID, i.name())
	}
	return course, nil
}

// ListCourses returns one page of courses in insertion order plus the total count.
func (i *CatalogInstance) ListCourses(page, pageSize int) ([]model.Course, int) {
	if page <= 0 {
		page = 1
	}
	offset := 0
	if pageSize > 0 {
		offset = i.CourseStore.Len()
		if page-1 <= offset/pageSize {
			offset = (page - 1) * pageSize
		}
	}
	return i.CourseStore.Page(offset, pageSize)
}

// Stats summarizes the catalog contents.
func (i *CatalogInstance) Stats() services.CatalogStats {
	return services.CatalogStats{
		Name:        i.name(),
		CourseCount: i.CourseStore.Len(),
		Divisions:   i.CourseStore.DivisionHistogram(),
	}
}

// Search delegates to the underlying search service.
func (i *CatalogInstance) Search(ctx context.Context, query services.SearchQuery) (services.SearchResult, error) {
	return i.searcher.Search(ctx, query)
}

// MultiSearch delegates to the underlying search service.
func (i *CatalogInstance) MultiSearch(ctx context.Context, query services.MultiSearchQuery) (*services.MultiSearchResult, error) {
	return i.searcher.MultiSearch(ctx, query)
}

// Settings returns the configuration settings for this catalog.
func (i *CatalogInstance) Settings() config.CatalogSettings {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.settings
}

// Scoring returns the effective scoring configuration of the catalog.
func (i *CatalogInstance) Scoring() config.ScoringConfig {
	return i.searcher.Scoring()
}

func (i *CatalogInstance) name() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.settings.Name
}

// updateScoring installs new catalog overrides once the effective
// configuration has been validated.
func (i *CatalogInstance) updateScoring(overrides *config.ScoringOverrides, effective config.ScoringConfig) error {
	if err := i.searcher.UpdateScoring(effective); err != nil {
		return err
	}
	i.mu.Lock()
	i.settings.Scoring = overrides
	i.mu.Unlock()
	return nil
}

// validateCourses rejects batches with a missing ID. Repeated IDs are
// allowed; the last record wins.
func validateCourses(courses []model.Course) error {
	for idx, c := range courses {
		if strings.TrimSpace(c.ID) == "" {
			return errors.NewValidationError("id", fmt.Sprintf("course at position %d has no id", idx))
		}
	}
	return nil
}
