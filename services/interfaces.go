package services

import (
	"context"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/ranking"
	"github.com/gcbaptista/course-search-engine/model"
)

// HitResult is one ranked course with the signals that produced its score.
type HitResult struct {
	Course    model.Course      `json:"course"`
	Score     float64           `json:"score"`
	Breakdown ranking.Breakdown `json:"breakdown"`
}

type SearchResult struct {
	Hits             []HitResult `json:"hits"`
	Total            int         `json:"total"`
	Page             int         `json:"page"`
	PageSize         int         `json:"page_size"`
	Took             int64       `json:"took"`     // milliseconds
	QueryId          string      `json:"query_id"` // unique UUID for this search query
	MissingCourseIDs []string    `json:"missing_course_ids,omitempty"`
}

type SearchQuery struct {
	QueryString string                   `json:"query"`
	CourseIDs   []string                 `json:"course_ids,omitempty"` // Optional: rank only these courses
	Page        int                      `json:"page,omitempty"`
	PageSize    int                      `json:"page_size,omitempty"`
	Scoring     *config.ScoringOverrides `json:"scoring,omitempty"` // Optional: per-request weight overrides
}

// MultiSearchQuery represents a request to execute multiple named search queries
type MultiSearchQuery struct {
	Queries  []NamedSearchQuery `json:"queries"`
	Page     int                `json:"page,omitempty"`
	PageSize int                `json:"page_size,omitempty"`
}

// NamedSearchQuery represents a single named search query within a multi-search request
type NamedSearchQuery struct {
	Name      string                   `json:"name"`
	Query     string                   `json:"query"`
	CourseIDs []string                 `json:"course_ids,omitempty"`
	Scoring   *config.ScoringOverrides `json:"scoring,omitempty"`
}

// MultiSearchResult represents the response from a multi-search operation
type MultiSearchResult struct {
	Results          map[string]SearchResult `json:"results"`
	TotalQueries     int                     `json:"total_queries"`
	ProcessingTimeMs float64                 `json:"processing_time_ms"`
}

// CatalogStats summarizes the contents of one catalog.
type CatalogStats struct {
	Name        string         `json:"name"`
	CourseCount int            `json:"course_count"`
	Divisions   map[string]int `json:"divisions"`
}

// CourseWriter defines operations that change the courses of a catalog
type CourseWriter interface {
	UpsertCourses(courses []model.Course) (added, updated int, err error)
	ReplaceCourses(courses []model.Course) error
	DeleteCourse(courseID string) error
}

// CourseReader defines read access to the courses of a catalog
type CourseReader interface {
	GetCourse(courseID string) (model.Course, error)
	ListCourses(page, pageSize int) ([]model.Course, int)
	Stats() CatalogStats
}

// Searcher defines operations for ranking a catalog
type Searcher interface {
	Search(ctx context.Context, query SearchQuery) (SearchResult, error)
}

// MultiSearcher defines operations for performing multiple queries in a single request
type MultiSearcher interface {
	MultiSearch(ctx context.Context, query MultiSearchQuery) (*MultiSearchResult, error)
}

// CatalogAccessor is everything the HTTP layer needs from one catalog.
type CatalogAccessor interface {
	CourseWriter
	CourseReader
	Searcher
	MultiSearcher
	Settings() config.CatalogSettings
}

// CatalogManager manages the lifecycle of catalogs
type CatalogManager interface {
	CreateCatalog(settings config.CatalogSettings) error
	GetCatalog(name string) (CatalogAccessor, error)
	GetCatalogSettings(name string) (config.CatalogSettings, error)
	UpdateScoring(name string, overrides *config.ScoringOverrides) error
	DeleteCatalog(name string) error
	ListCatalogs() []string
	PersistCatalogData(name string) error
}

// AsyncCatalogManager extends CatalogManager with background job variants
type AsyncCatalogManager interface {
	CatalogManager
	CreateCatalogAsync(settings config.CatalogSettings) (string, error)
	DeleteCatalogAsync(name string) (string, error)
	UpsertCoursesAsync(name string, courses []model.Course) (string, error)
	ReplaceCoursesAsync(name string, courses []model.Course) (string, error)
	DeleteCourseAsync(name, courseID string) (string, error)
	GetJobManager() JobManager
}

// JobManager defines operations for managing background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(catalogName string, status *model.JobStatus) []*model.Job
}
