package analytics

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/engine"
	"github.com/gcbaptista/course-search-engine/model"
)

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, dataFile string) (*Service, *engine.Engine) {
	t.Helper()
	e, err := engine.NewEngine(engine.Options{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(e.Close)

	s := NewService(e, dataFile, nil)
	s.now = func() time.Time { return fixedNow }
	return s, e
}

func TestClassifySearch(t *testing.T) {
	tests := []struct {
		query      string
		restricted bool
		want       string
	}{
		{"", false, model.SearchTypeEmpty},
		{"  ?! ", true, model.SearchTypeEmpty},
		{"machine learning", true, model.SearchTypeRestricted},
		{"COSC-111", false, model.SearchTypeCourseCode},
		{"cosc 211 data structures", false, model.SearchTypeCourseCode},
		{"math111", false, model.SearchTypeCourseCode},
		{"intro to film", false, model.SearchTypeKeyword},
		{"film 2024", false, model.SearchTypeCourseCode}, // four letters then a number reads as a code
		{"ai 101", false, model.SearchTypeKeyword},
	}

	for _, tt := range tests {
		if got := ClassifySearch(tt.query, tt.restricted); got != tt.want {
			t.Errorf("ClassifySearch(%q, %v) = %q, want %q", tt.query, tt.restricted, got, tt.want)
		}
	}
}

func TestAnalyticsService_TrackSearchEvent(t *testing.T) {
	service, _ := newTestService(t, "")

	event := model.SearchEvent{
		CatalogName:  "amherst",
		Query:        "test query",
		SearchType:   model.SearchTypeKeyword,
		ResponseTime: 50 * time.Millisecond,
		ResultCount:  10,
	}
	if err := service.TrackSearchEvent(event); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if service.EventCount() != 1 {
		t.Fatalf("Expected 1 event, got %d", service.EventCount())
	}

	stored := service.events[0]
	if stored.CatalogName != event.CatalogName || stored.Query != event.Query {
		t.Errorf("stored event = %+v, want %+v", stored, event)
	}
	if !stored.Timestamp.Equal(fixedNow) {
		t.Errorf("Timestamp = %v, want %v", stored.Timestamp, fixedNow)
	}

	if err := service.TrackSearchEvent(model.SearchEvent{Query: "no catalog"}); err == nil {
		t.Error("expected an error for an event without a catalog")
	}
}

func TestAnalyticsService_EventWindowIsBounded(t *testing.T) {
	service, _ := newTestService(t, "")
	for i := 0; i < maxEventsToKeep+5; i++ {
		if err := service.TrackSearchEvent(model.SearchEvent{CatalogName: "c", Query: "q"}); err != nil {
			t.Fatalf("TrackSearchEvent() error = %v", err)
		}
	}
	if got := service.EventCount(); got != maxEventsToKeep {
		t.Errorf("EventCount() = %d, want %d", got, maxEventsToKeep)
	}
}

func TestAnalyticsService_GetDashboardData(t *testing.T) {
	service, e := newTestService(t, "")

	for _, name := range []string{"amherst", "smith"} {
		if err := e.CreateCatalog(config.CatalogSettings{Name: name}); err != nil {
			t.Fatalf("CreateCatalog(%s) error = %v", name, err)
		}
	}
	catalog, err := e.GetCatalog("amherst")
	if err != nil {
		t.Fatalf("GetCatalog() error = %v", err)
	}
	if _, _, err := catalog.UpsertCourses([]model.Course{{ID: "a"}, {ID: "b"}, {ID: "c"}}); err != nil {
		t.Fatalf("UpsertCourses() error = %v", err)
	}

	events := []model.SearchEvent{
		{CatalogName: "amherst", Query: "Machine Learning", SearchType: model.SearchTypeKeyword, ResponseTime: 30 * time.Millisecond, ResultCount: 5, Timestamp: fixedNow.Add(-1 * time.Hour)},
		{CatalogName: "amherst", Query: "machine learning", SearchType: model.SearchTypeKeyword, ResponseTime: 10 * time.Millisecond, ResultCount: 4, Timestamp: fixedNow.Add(-2 * time.Hour)},
		{CatalogName: "smith", Query: "cosc 111", SearchType: model.SearchTypeCourseCode, ResponseTime: 120 * time.Millisecond, ResultCount: 1, Timestamp: fixedNow.Add(-1 * time.Hour)},
		{CatalogName: "smith", Query: "xyzzy", SearchType: model.SearchTypeKeyword, ResponseTime: 40 * time.Millisecond, ResultCount: 0, Timestamp: fixedNow.Add(-1 * time.Hour)},
		// Previous day, counted for trends only
		{CatalogName: "amherst", Query: "xyzzy", SearchType: model.SearchTypeKeyword, ResponseTime: 40 * time.Millisecond, ResultCount: 0, Timestamp: fixedNow.Add(-30 * time.Hour)},
		// Older than two weeks, ignored
		{CatalogName: "amherst", Query: "ancient", SearchType: model.SearchTypeKeyword, ResultCount: 3, Timestamp: fixedNow.Add(-20 * 24 * time.Hour)},
	}
	for _, event := range events {
		if err := service.TrackSearchEvent(event); err != nil {
			t.Fatalf("TrackSearchEvent() error = %v", err)
		}
	}

	dashboard, err := service.GetDashboardData()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if dashboard.TotalSearches != 4 {
		t.Errorf("TotalSearches = %d, want 4", dashboard.TotalSearches)
	}
	if dashboard.SearchesChangePercent != 300 {
		t.Errorf("SearchesChangePercent = %v, want 300", dashboard.SearchesChangePercent)
	}
	if dashboard.AvgResponseTime != 50 {
		t.Errorf("AvgResponseTime = %d, want 50", dashboard.AvgResponseTime)
	}
	if dashboard.ZeroResultRate != 0.25 {
		t.Errorf("ZeroResultRate = %v, want 0.25", dashboard.ZeroResultRate)
	}
	if dashboard.ActiveCatalogs != 2 || dashboard.TotalCourses != 3 {
		t.Errorf("ActiveCatalogs = %d, TotalCourses = %d, want 2 and 3", dashboard.ActiveCatalogs, dashboard.TotalCourses)
	}
	if len(dashboard.SearchPerformance24h) != 24 {
		t.Errorf("Expected 24 hourly performance entries, got %d", len(dashboard.SearchPerformance24h))
	}
	if got := dashboard.SearchPerformance24h[14].SearchCount; got != 3 {
		t.Errorf("searches at 14:00 = %d, want 3", got)
	}

	if len(dashboard.PopularSearches) == 0 {
		t.Fatal("Expected some popular searches, got none")
	}
	top := dashboard.PopularSearches[0]
	if top.Query != "machine learning" || top.SearchCount != 2 || top.TrendChange != "new" {
		t.Errorf("top popular search = %+v, want machine learning x2 (new)", top)
	}
	for _, p := range dashboard.PopularSearches {
		if p.Query == "ancient" {
			t.Error("events older than the window must not be counted")
		}
	}

	if len(dashboard.ZeroResultQueries) != 1 || dashboard.ZeroResultQueries[0].Query != "xyzzy" {
		t.Fatalf("ZeroResultQueries = %+v, want only xyzzy", dashboard.ZeroResultQueries)
	}

	usage := map[string]model.CatalogUsage{}
	for _, u := range dashboard.CatalogUsage {
		usage[u.CatalogName] = u
	}
	if usage["amherst"].CourseCount != 3 || usage["amherst"].SearchCount != 3 {
		t.Errorf("amherst usage = %+v", usage["amherst"])
	}
	if usage["smith"].ZeroResults != 1 {
		t.Errorf("smith zero results = %d, want 1", usage["smith"].ZeroResults)
	}

	dist := dashboard.ResponseTimeDistribution
	if dist.Bucket0To25ms != 1 || dist.Bucket25To50ms != 2 || dist.Bucket100msPlus != 1 {
		t.Errorf("ResponseTimeDistribution = %+v", dist)
	}
	if dashboard.SearchTypes.Keyword != 3 || dashboard.SearchTypes.CourseCode != 1 {
		t.Errorf("SearchTypes = %+v", dashboard.SearchTypes)
	}
	if dashboard.SystemHealth.Goroutines == 0 {
		t.Error("SystemHealth.Goroutines should be populated")
	}
}

func TestAnalyticsService_PersistsEvents(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "analytics.json")
	service, e := newTestService(t, dataFile)

	for _, q := range []string{"film", "climate"} {
		if err := service.TrackSearchEvent(model.SearchEvent{CatalogName: "amherst", Query: q}); err != nil {
			t.Fatalf("TrackSearchEvent() error = %v", err)
		}
	}
	service.Flush()

	reloaded := NewService(e, dataFile, nil)
	if got := reloaded.EventCount(); got != 2 {
		t.Errorf("reloaded EventCount() = %d, want 2", got)
	}
}

func TestAnalyticsService_CoalescesSaves(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "analytics.json")
	service, _ := newTestService(t, dataFile)

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var saves atomic.Int32
	service.save = func() error {
		saves.Add(1)
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return service.saveData()
	}

	const events = 100
	if err := service.TrackSearchEvent(model.SearchEvent{CatalogName: "amherst", Query: "q0"}); err != nil {
		t.Fatalf("TrackSearchEvent() error = %v", err)
	}
	<-started
	for i := 1; i < events; i++ {
		if err := service.TrackSearchEvent(model.SearchEvent{CatalogName: "amherst", Query: fmt.Sprintf("q%d", i)}); err != nil {
			t.Fatalf("TrackSearchEvent() error = %v", err)
		}
	}
	close(release)
	service.Flush()

	// The first write was in flight for every later event, so they share one more.
	if got := saves.Load(); got != 2 {
		t.Errorf("saves = %d, want 2", got)
	}

	reloaded := NewService(nil, dataFile, nil)
	if got := reloaded.EventCount(); got != events {
		t.Errorf("reloaded EventCount() = %d, want %d", got, events)
	}
}

func TestAnalyticsService_FlushWithoutEvents(t *testing.T) {
	service, _ := newTestService(t, filepath.Join(t.TempDir(), "analytics.json"))
	done := make(chan struct{})
	go func() {
		service.Flush()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Flush() blocked with nothing to save")
	}
}
