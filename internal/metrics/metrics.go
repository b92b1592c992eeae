// Package metrics holds the Prometheus collectors of the search service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "course_search"

// Search metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of ranking requests",
		},
		[]string{"catalog", "outcome"}, // outcome: hit, empty, error
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time spent ranking one query",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"catalog"},
	)

	SearchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned by a ranking call",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"catalog"},
	)

	CatalogCourses = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_courses",
			Help:      "Number of courses held by a catalog",
		},
		[]string{"catalog"},
	)
)

// Job metrics.
var (
	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Background jobs by type and final status",
		},
		[]string{"type", "status"},
	)

	JobsRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_running",
			Help:      "Background jobs currently running",
		},
	)

	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Background job duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(CatalogCourses)
	prometheus.MustRegister(JobsTotal)
	prometheus.MustRegister(JobsRunning)
	prometheus.MustRegister(JobDuration)
}

// ObserveSearch records one ranking call.
func ObserveSearch(catalog string, took time.Duration, results int, err error) {
	outcome := "hit"
	switch {
	case err != nil:
		outcome = "error"
	case results == 0:
		outcome = "empty"
	}
	SearchRequestsTotal.WithLabelValues(catalog, outcome).Inc()
	if err != nil {
		return
	}
	SearchDuration.WithLabelValues(catalog).Observe(took.Seconds())
	SearchResults.WithLabelValues(catalog).Observe(float64(results))
}

// SetCatalogSize records the current course count of a catalog.
func SetCatalogSize(catalog string, courses int) {
	CatalogCourses.WithLabelValues(catalog).Set(float64(courses))
}

// ForgetCatalog drops the per-catalog series of a deleted catalog.
func ForgetCatalog(catalog string) {
	CatalogCourses.DeleteLabelValues(catalog)
	SearchDuration.DeleteLabelValues(catalog)
	SearchResults.DeleteLabelValues(catalog)
	for _, outcome := range []string{"hit", "empty", "error"} {
		SearchRequestsTotal.DeleteLabelValues(catalog, outcome)
	}
}
