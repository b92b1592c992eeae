// Package testing provides utilities and helpers for testing the course search engine.
package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/engine"
	"github.com/gcbaptista/course-search-engine/model"
	"github.com/gcbaptista/course-search-engine/services"
)

// CreateTestEngine creates a new engine over a temporary data directory.
// The engine is closed when the test ends.
func CreateTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.NewEngine(engine.Options{
		DataDir:       t.TempDir(),
		MaxJobWorkers: 2,
	})
	require.NoError(t, err, "Failed to create test engine")
	t.Cleanup(eng.Close)
	return eng
}

// CreateTestCatalog creates a catalog with the stock scoring configuration
func CreateTestCatalog(t *testing.T, eng *engine.Engine, catalogName string) config.CatalogSettings {
	t.Helper()
	settings := config.CatalogSettings{
		Name:        catalogName,
		Description: "test catalog",
	}
	require.NoError(t, eng.CreateCatalog(settings), "Failed to create test catalog")
	return settings
}

// SampleCourses returns a small catalog covering the main ranking cues:
// intro courses, course codes, a half-credit course and several divisions.
func SampleCourses() []model.Course {
	return []model.Course{
		{
			ID:          "cosc-111",
			Name:        "Introduction to Computer Science I",
			Codes:       []string{"COSC-111"},
			Departments: []model.Department{{Name: "Computer Science", Code: "COSC"}},
			Divisions:   []string{"Science & Mathematics"},
			Keywords:    []string{"programming", "python"},
			Description: "An introduction to programming and the design of algorithms.",
			Professors:  []string{"Lee Spector"},
			Sections:    []model.Section{{Number: 1, Location: "SCCE A131", Professor: "Lee Spector"}},
			Credits:     4,
		},
		{
			ID:          "cosc-211",
			Name:        "Data Structures",
			Codes:       []string{"COSC-211"},
			Departments: []model.Department{{Name: "Computer Science", Code: "COSC"}},
			Divisions:   []string{"Science & Mathematics"},
			Description: "Fundamental data structures such as lists, trees and graphs, and the analysis of algorithms.",
			Credits:     4,
		},
		{
			ID:          "econ-111",
			Name:        "Introduction to Economics",
			Codes:       []string{"ECON-111"},
			Departments: []model.Department{{Name: "Economics", Code: "ECON"}},
			Divisions:   []string{"Social Sciences"},
			Description: "An introductory course on markets, prices and the economy.",
			Credits:     4,
		},
		{
			ID:          "musi-112",
			Name:        "Chamber Music Performance",
			Codes:       []string{"MUSI-112"},
			Departments: []model.Department{{Name: "Music", Code: "MUSI"}},
			Divisions:   []string{"Arts"},
			Description: "Rehearsal and performance of chamber music.",
			HalfCredit:  true,
			Credits:     2,
		},
		{
			ID:          "envs-120",
			Name:        "Climate and Society",
			Codes:       []string{"ENST-120"},
			Departments: []model.Department{{Name: "Environmental Studies", Code: "ENST"}},
			Divisions:   []string{"Social Sciences", "Science & Mathematics"},
			Keywords:    []string{"climate change", "sustainability"},
			Description: "How climate change shapes policy and everyday life.",
			Credits:     4,
		},
	}
}

// AddTestCourses stores SampleCourses in a catalog synchronously
func AddTestCourses(t *testing.T, eng *engine.Engine, catalogName string) []model.Course {
	t.Helper()
	catalog, err := eng.GetCatalog(catalogName)
	require.NoError(t, err, "Failed to get catalog accessor")

	courses := SampleCourses()
	added, updated, err := catalog.UpsertCourses(courses)
	require.NoError(t, err, "Failed to add test courses")
	require.Equal(t, len(courses), added+updated)
	return courses
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      10 * time.Second,
		PollInterval: 10 * time.Millisecond,
		LogProgress:  false,
	}
}

// WaitForJobCompletion polls a job until it completes or times out. A failed
// or cancelled job fails the test.
func WaitForJobCompletion(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	job := WaitForJob(t, jobManager, jobID, opts)
	require.Equal(t, model.JobStatusCompleted, job.Status, "Job %s ended as %s: %s", jobID, job.Status, job.Error)
	return job
}

// WaitForJob polls a job until it reaches a terminal status and returns it.
func WaitForJob(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not finish within %v timeout", jobID, opts.Timeout)
			return nil
		case <-ticker.C:
			job, err := jobManager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			if job.Status.IsTerminal() {
				return job
			}
			if opts.LogProgress && job.Progress != nil {
				t.Logf("Job %s progress: %d/%d - %s",
					jobID, job.Progress.Current, job.Progress.Total, job.Progress.Message)
			}
		}
	}
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType, expectedCatalog string) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.Equal(t, expectedCatalog, job.CatalogName, "Job catalog name should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}

// SearchTestCase represents a test case for search operations
type SearchTestCase struct {
	Name          string
	Query         services.SearchQuery
	ExpectedCount int    // -1 skips the count check
	ExpectedFirst string // Expected first result course ID
	ValidateFunc  func(t *testing.T, results *services.SearchResult)
}

// RunSearchTests runs a suite of search tests against a catalog
func RunSearchTests(t *testing.T, searcher services.Searcher, tests []SearchTestCase) {
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			results, err := searcher.Search(t.Context(), tt.Query)
			require.NoError(t, err, "Search should not fail")

			if tt.ExpectedCount >= 0 {
				assert.Equal(t, tt.ExpectedCount, results.Total, "Result count should match")
			}
			if tt.ExpectedFirst != "" {
				require.NotEmpty(t, results.Hits, "Expected at least one hit")
				assert.Equal(t, tt.ExpectedFirst, results.Hits[0].Course.ID, "First result should match expected")
			}
			if tt.ValidateFunc != nil {
				tt.ValidateFunc(t, &results)
			}
		})
	}
}
