// Package analytics keeps a rolling window of search events and turns it
// into the dashboard served at /analytics.
package analytics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gcbaptista/course-search-engine/internal/logger"
	"github.com/gcbaptista/course-search-engine/internal/tokenizer"
	"github.com/gcbaptista/course-search-engine/model"
	"github.com/gcbaptista/course-search-engine/services"
)

const (
	maxEventsToKeep = 10000 // Keep last 10k events for performance
	popularLimit    = 5
)

// CatalogSource is the part of the engine the dashboard reads from.
type CatalogSource interface {
	ListCatalogs() []string
	GetCatalog(name string) (services.CatalogAccessor, error)
}

// Service implements analytics tracking and reporting
type Service struct {
	mutex        sync.RWMutex
	events       []model.SearchEvent
	catalogs     CatalogSource
	dataFilePath string
	log          *zap.Logger

	// One saver goroutine at most. Events recorded while it writes mark the
	// window dirty and are picked up by its next pass.
	saveState sync.Mutex
	saveIdle  *sync.Cond
	saving    bool
	dirty     bool
	save      func() error

	now func() time.Time
}

// NewService creates a new analytics service. Events are mirrored to
// dataFilePath as JSON; an empty path keeps them in memory only.
func NewService(catalogs CatalogSource, dataFilePath string, log *zap.Logger) *Service {
	service := &Service{
		events:       make([]model.SearchEvent, 0),
		catalogs:     catalogs,
		dataFilePath: dataFilePath,
		log:          logger.OrNop(log).Named("analytics"),
		now:          time.Now,
	}
	service.saveIdle = sync.NewCond(&service.saveState)
	service.save = service.saveData

	if err := service.loadData(); err != nil {
		service.log.Warn("failed to load analytics data", zap.String("path", dataFilePath), zap.Error(err))
	}
	return service
}

// ClassifySearch names the kind of search a request performs.
func ClassifySearch(query string, restricted bool) string {
	tokens := tokenizer.Tokenize(query)
	switch {
	case len(tokens) == 0:
		return model.SearchTypeEmpty
	case restricted:
		return model.SearchTypeRestricted
	}
	for i, tok := range tokens {
		if tokenizer.LooksLikeCourseCode(tok) {
			return model.SearchTypeCourseCode
		}
		// "cosc 111"
		if i+1 < len(tokens) && len(tok) == 4 && tokenizer.LetterPrefix(tok) == tok && tokenizer.IsNumeric(tokens[i+1]) {
			return model.SearchTypeCourseCode
		}
	}
	return model.SearchTypeKeyword
}

// TrackSearchEvent records a new search event. A zero timestamp is set to now.
func (s *Service) TrackSearchEvent(event model.SearchEvent) error {
	if event.CatalogName == "" {
		return fmt.Errorf("search event has no catalog name")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}

	s.mutex.Lock()
	s.events = append(s.events, event)
	// Keep only the latest events to prevent unbounded growth
	if len(s.events) > maxEventsToKeep {
		s.events = s.events[len(s.events)-maxEventsToKeep:]
	}
	s.mutex.Unlock()

	if s.dataFilePath == "" {
		return nil
	}
	s.saveState.Lock()
	s.dirty = true
	start := !s.saving
	s.saving = true
	s.saveState.Unlock()

	if start {
		go s.saveLoop()
	}
	return nil
}

// saveLoop writes the window until no event arrived during the last write.
func (s *Service) saveLoop() {
	for {
		s.saveState.Lock()
		if !s.dirty {
			s.saving = false
			s.saveIdle.Broadcast()
			s.saveState.Unlock()
			return
		}
		s.dirty = false
		s.saveState.Unlock()

		if err := s.save(); err != nil {
			s.log.Warn("failed to save analytics data", zap.Error(err))
		}
	}
}

// Flush blocks until every recorded event has been written.
func (s *Service) Flush() {
	s.saveState.Lock()
	for s.saving {
		s.saveIdle.Wait()
	}
	s.saveState.Unlock()
}

// EventCount returns the number of events held in the window.
func (s *Service) EventCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.events)
}

// GetDashboardData returns complete analytics dashboard data
func (s *Service) GetDashboardData() (model.AnalyticsDashboard, error) {
	s.mutex.RLock()
	events := make([]model.SearchEvent, len(s.events))
	copy(events, s.events)
	s.mutex.RUnlock()

	now := s.now()
	yesterday := now.Add(-24 * time.Hour)
	lastWeek := now.Add(-7 * 24 * time.Hour)

	last24hEvents := filterEventsByTimeRange(events, yesterday, now)
	prev24hEvents := filterEventsByTimeRange(events, yesterday.Add(-24*time.Hour), yesterday)
	lastWeekEvents := filterEventsByTimeRange(events, lastWeek, now)
	prevWeekEvents := filterEventsByTimeRange(events, lastWeek.Add(-7*24*time.Hour), lastWeek)

	usage, totalCourses := s.getCatalogUsage(lastWeekEvents)

	dashboard := model.AnalyticsDashboard{
		TotalSearches:            len(last24hEvents),
		SearchesChangePercent:    calculateChangePercent(len(last24hEvents), len(prev24hEvents)),
		AvgResponseTime:          calculateAvgResponseTime(last24hEvents),
		ResponseTimeChange:       calculateResponseTimeChange(last24hEvents, prev24hEvents),
		ZeroResultRate:           zeroResultRate(last24hEvents),
		TotalCourses:             totalCourses,
		ActiveCatalogs:           len(usage),
		SearchPerformance24h:     getHourlyPerformance(last24hEvents),
		PopularSearches:          getPopularSearches(lastWeekEvents, prevWeekEvents, false),
		ZeroResultQueries:        getPopularSearches(lastWeekEvents, prevWeekEvents, true),
		CatalogUsage:             usage,
		ResponseTimeDistribution: getResponseTimeDistribution(last24hEvents),
		SearchTypes:              getSearchTypeStats(last24hEvents),
		SystemHealth:             getSystemHealth(len(usage)),
	}
	return dashboard, nil
}

// filterEventsByTimeRange returns events in (start, end]
func filterEventsByTimeRange(events []model.SearchEvent, start, end time.Time) []model.SearchEvent {
	var filtered []model.SearchEvent
	for _, event := range events {
		if event.Timestamp.After(start) && !event.Timestamp.After(end) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// calculateChangePercent calculates percentage change between current and previous values
func calculateChangePercent(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100.0
		}
		return 0.0
	}
	return float64(current-previous) / float64(previous) * 100.0
}

// calculateAvgResponseTime calculates average response time for events in milliseconds
func calculateAvgResponseTime(events []model.SearchEvent) int64 {
	if len(events) == 0 {
		return 0
	}
	var total time.Duration
	for _, event := range events {
		total += event.ResponseTime
	}
	return (total / time.Duration(len(events))).Milliseconds()
}

func calculateResponseTimeChange(current, previous []model.SearchEvent) string {
	currentAvg := calculateAvgResponseTime(current)
	previousAvg := calculateAvgResponseTime(previous)
	if previousAvg == 0 {
		return "stable"
	}

	change := float64(currentAvg-previousAvg) / float64(previousAvg)
	switch {
	case change > 0.1:
		return "up"
	case change < -0.1:
		return "down"
	}
	return "stable"
}

func zeroResultRate(events []model.SearchEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	zero := 0
	for _, event := range events {
		if event.ResultCount == 0 {
			zero++
		}
	}
	return float64(zero) / float64(len(events))
}

// getCatalogUsage lists every loaded catalog with its size and search
// traffic. The second value is the course count across catalogs.
func (s *Service) getCatalogUsage(events []model.SearchEvent) ([]model.CatalogUsage, int) {
	searches := make(map[string]int)
	zero := make(map[string]int)
	for _, event := range events {
		searches[event.CatalogName]++
		if event.ResultCount == 0 {
			zero[event.CatalogName]++
		}
	}

	if s.catalogs == nil {
		return []model.CatalogUsage{}, 0
	}

	usage := make([]model.CatalogUsage, 0)
	total := 0
	for _, name := range s.catalogs.ListCatalogs() {
		catalog, err := s.catalogs.GetCatalog(name)
		if err != nil {
			// Deleted between the listing and the lookup
			continue
		}
		count := catalog.Stats().CourseCount
		total += count
		usage = append(usage, model.CatalogUsage{
			CatalogName: name,
			CourseCount: count,
			SearchCount: searches[name],
			ZeroResults: zero[name],
		})
	}
	return usage, total
}

// getHourlyPerformance returns hourly search performance for the last 24 hours
func getHourlyPerformance(events []model.SearchEvent) []model.SearchPerformanceHourly {
	hourlyData := make(map[int][]model.SearchEvent)
	for _, event := range events {
		hour := event.Timestamp.Hour()
		hourlyData[hour] = append(hourlyData[hour], event)
	}

	performance := make([]model.SearchPerformanceHourly, 0, 24)
	for hour := 0; hour < 24; hour++ {
		performance = append(performance, model.SearchPerformanceHourly{
			Hour:            hour,
			SearchCount:     len(hourlyData[hour]),
			AvgResponseTime: calculateAvgResponseTime(hourlyData[hour]),
		})
	}
	return performance
}

// getPopularSearches returns the most frequent queries of the current
// window, trending against the previous one. zeroOnly keeps only searches
// that returned nothing.
func getPopularSearches(current, previous []model.SearchEvent, zeroOnly bool) []model.PopularSearch {
	count := func(events []model.SearchEvent) map[string]int {
		counts := make(map[string]int)
		for _, event := range events {
			if zeroOnly && event.ResultCount > 0 {
				continue
			}
			q := tokenizer.Clean(event.Query)
			if q != "" {
				counts[q]++
			}
		}
		return counts
	}
	currentCounts := count(current)
	previousCounts := count(previous)

	popular := make([]model.PopularSearch, 0, len(currentCounts))
	for query, n := range currentCounts {
		popular = append(popular, model.PopularSearch{
			Query:       query,
			SearchCount: n,
			TrendChange: trend(n, previousCounts[query]),
		})
	}

	sort.Slice(popular, func(i, j int) bool {
		if popular[i].SearchCount != popular[j].SearchCount {
			return popular[i].SearchCount > popular[j].SearchCount
		}
		return popular[i].Query < popular[j].Query
	})
	if len(popular) > popularLimit {
		popular = popular[:popularLimit]
	}
	return popular
}

func trend(current, previous int) string {
	switch {
	case previous == 0:
		return "new"
	case current > previous:
		return "up"
	case current < previous:
		return "down"
	}
	return "stable"
}

// getResponseTimeDistribution returns response time distribution
func getResponseTimeDistribution(events []model.SearchEvent) model.ResponseTimeDistribution {
	dist := model.ResponseTimeDistribution{}
	total := len(events)
	if total == 0 {
		return dist
	}

	for _, event := range events {
		ms := event.ResponseTime.Milliseconds()
		switch {
		case ms <= 25:
			dist.Bucket0To25ms++
		case ms <= 50:
			dist.Bucket25To50ms++
		case ms <= 100:
			dist.Bucket50To100ms++
		default:
			dist.Bucket100msPlus++
		}
	}

	dist.Percentage0To25 = float64(dist.Bucket0To25ms) / float64(total) * 100
	dist.Percentage25To50 = float64(dist.Bucket25To50ms) / float64(total) * 100
	dist.Percentage50To100 = float64(dist.Bucket50To100ms) / float64(total) * 100
	dist.Percentage100Plus = float64(dist.Bucket100msPlus) / float64(total) * 100
	return dist
}

func getSearchTypeStats(events []model.SearchEvent) model.SearchTypeStats {
	stats := model.SearchTypeStats{}
	for _, event := range events {
		switch event.SearchType {
		case model.SearchTypeCourseCode:
			stats.CourseCode++
		case model.SearchTypeKeyword:
			stats.Keyword++
		case model.SearchTypeRestricted:
			stats.Restricted++
		case model.SearchTypeEmpty:
			stats.Empty++
		case model.SearchTypeMulti:
			stats.MultiSearch++
		}
	}
	return stats
}

func getSystemHealth(catalogs int) model.SystemHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	health := model.SystemHealth{
		HeapAllocMB: float64(m.HeapAlloc) / (1 << 20),
		Goroutines:  runtime.NumGoroutine(),
		CatalogsOK:  catalogs,
	}
	if m.Sys > 0 {
		health.MemoryUsage = float64(m.Alloc) / float64(m.Sys) * 100
	}
	return health
}

// loadData loads analytics data from file
func (s *Service) loadData() error {
	if s.dataFilePath == "" {
		return nil
	}

	data, err := os.ReadFile(s.dataFilePath)
	if os.IsNotExist(err) {
		return nil // File doesn't exist yet, that's okay
	}
	if err != nil {
		return fmt.Errorf("failed to read analytics file: %w", err)
	}

	var events []model.SearchEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return fmt.Errorf("failed to unmarshal analytics data: %w", err)
	}
	if len(events) > maxEventsToKeep {
		events = events[len(events)-maxEventsToKeep:]
	}
	s.events = events
	return nil
}

// saveData writes the current window to the data file through a temp file
// so a crash never leaves half a document behind.
func (s *Service) saveData() error {
	s.mutex.RLock()
	data, err := json.Marshal(s.events)
	s.mutex.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal analytics data: %w", err)
	}

	dir := filepath.Dir(s.dataFilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create analytics directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".analytics-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp analytics file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write analytics file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close analytics file: %w", err)
	}
	if err := os.Rename(tmpName, s.dataFilePath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace analytics file: %w", err)
	}
	return nil
}
