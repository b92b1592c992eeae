package model

import "time"

// Search types recorded with every search event.
const (
	SearchTypeCourseCode = "course_code" // query names a course code such as "cosc 111"
	SearchTypeKeyword    = "keyword"
	SearchTypeRestricted = "restricted" // ranking limited to explicit course IDs
	SearchTypeEmpty      = "empty"
	SearchTypeMulti      = "multi_search"
)

// SearchEvent represents a single search event for analytics tracking
type SearchEvent struct {
	CatalogName  string        `json:"catalog_name"`
	Query        string        `json:"query"`
	SearchType   string        `json:"search_type"`
	ResponseTime time.Duration `json:"response_time"`
	ResultCount  int           `json:"result_count"`
	Timestamp    time.Time     `json:"timestamp"`
}

// PopularSearch represents aggregated data for popular search terms
type PopularSearch struct {
	Query       string `json:"query"`
	SearchCount int    `json:"search_count"`
	TrendChange string `json:"trend_change,omitempty"` // "up", "down", "stable", "new"
}

// CatalogUsage represents search traffic and size of one catalog
type CatalogUsage struct {
	CatalogName string `json:"catalog_name"`
	CourseCount int    `json:"course_count"`
	SearchCount int    `json:"search_count"`
	ZeroResults int    `json:"zero_result_searches"`
}

// ResponseTimeDistribution represents response time distribution buckets
type ResponseTimeDistribution struct {
	Bucket0To25ms     int     `json:"bucket_0_25ms"`
	Bucket25To50ms    int     `json:"bucket_25_50ms"`
	Bucket50To100ms   int     `json:"bucket_50_100ms"`
	Bucket100msPlus   int     `json:"bucket_100ms_plus"`
	Percentage0To25   float64 `json:"percentage_0_25"`
	Percentage25To50  float64 `json:"percentage_25_50"`
	Percentage50To100 float64 `json:"percentage_50_100"`
	Percentage100Plus float64 `json:"percentage_100_plus"`
}

// SearchTypeStats counts searches per search type
type SearchTypeStats struct {
	CourseCode  int `json:"course_code"`
	Keyword     int `json:"keyword"`
	Restricted  int `json:"restricted"`
	Empty       int `json:"empty"`
	MultiSearch int `json:"multi_search"`
}

// SearchPerformanceHourly represents hourly search performance data
type SearchPerformanceHourly struct {
	Hour            int   `json:"hour"`
	SearchCount     int   `json:"search_count"`
	AvgResponseTime int64 `json:"avg_response_time"` // in milliseconds
}

// SystemHealth represents runtime health of the process
type SystemHealth struct {
	MemoryUsage float64 `json:"memory_usage_percent"`
	HeapAllocMB float64 `json:"heap_alloc_mb"`
	Goroutines  int     `json:"goroutines"`
	CatalogsOK  int     `json:"catalogs_ok"`
}

// AnalyticsDashboard represents the complete analytics dashboard data
type AnalyticsDashboard struct {
	// Summary metrics
	TotalSearches         int     `json:"total_searches"`
	SearchesChangePercent float64 `json:"searches_change_percent"`
	AvgResponseTime       int64   `json:"avg_response_time"` // in milliseconds
	ResponseTimeChange    string  `json:"response_time_change"`
	ZeroResultRate        float64 `json:"zero_result_rate"`
	TotalCourses          int     `json:"total_courses"`
	ActiveCatalogs        int     `json:"active_catalogs"`

	// Detailed analytics
	SearchPerformance24h     []SearchPerformanceHourly `json:"search_performance_24h"`
	PopularSearches          []PopularSearch           `json:"popular_searches"`
	ZeroResultQueries        []PopularSearch           `json:"zero_result_queries"`
	CatalogUsage             []CatalogUsage            `json:"catalog_usage"`
	ResponseTimeDistribution ResponseTimeDistribution  `json:"response_time_distribution"`
	SearchTypes              SearchTypeStats           `json:"search_types"`
	SystemHealth             SystemHealth              `json:"system_health"`
}
