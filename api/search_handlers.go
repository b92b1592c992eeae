package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/analytics"
	"github.com/gcbaptista/course-search-engine/model"
	"github.com/gcbaptista/course-search-engine/services"
)

// SearchRequest defines the structure for search queries.
type SearchRequest struct {
	Query     string                   `json:"query"`
	CourseIDs []string                 `json:"course_ids,omitempty"`
	Page      int                      `json:"page"`
	PageSize  int                      `json:"page_size"`
	Scoring   *config.ScoringOverrides `json:"scoring,omitempty"` // Optional: per-request weight overrides
}

// MultiSearchRequest represents the JSON request for multi-search
type MultiSearchRequest struct {
	Queries  []NamedSearchRequest `json:"queries"`
	Page     int                  `json:"page,omitempty"`
	PageSize int                  `json:"page_size,omitempty"`
}

// NamedSearchRequest represents a single named search query in the request
type NamedSearchRequest struct {
	Name      string                   `json:"name"`
	Query     string                   `json:"query"`
	CourseIDs []string                 `json:"course_ids,omitempty"`
	Scoring   *config.ScoringOverrides `json:"scoring,omitempty"`
}

// SearchHandler ranks the courses of a catalog against a query.
// Request Body: SearchRequest
func (api *API) SearchHandler(c *gin.Context) {
	startTime := time.Now()
	catalogName := c.Param("catalogName")
	if result := ValidateCatalogName(catalogName); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	catalog, err := api.engine.GetCatalog(catalogName)
	if err != nil {
		SendEngineError(c, "search", ErrorCodeSearchFailed, err)
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if req.Page < 0 || req.PageSize < 0 {
		result := &ValidationResult{Valid: true}
		result.AddError("page", "Page and page size cannot be negative")
		SendValidationError(c, result)
		return
	}

	results, err := catalog.Search(c.Request.Context(), services.SearchQuery{
		QueryString: req.Query,
		CourseIDs:   req.CourseIDs,
		Page:        req.Page,
		PageSize:    req.PageSize,
		Scoring:     req.Scoring,
	})
	if err != nil {
		SendEngineError(c, "search on catalog '"+catalogName+"'", ErrorCodeSearchFailed, err)
		return
	}

	api.track(model.SearchEvent{
		CatalogName:  catalogName,
		Query:        req.Query,
		SearchType:   analytics.ClassifySearch(req.Query, len(req.CourseIDs) > 0),
		ResponseTime: time.Since(startTime),
		ResultCount:  results.Total,
	})

	c.JSON(http.StatusOK, results)
}

// MultiSearchHandler runs several named queries against one catalog in parallel.
// Request Body: MultiSearchRequest
func (api *API) MultiSearchHandler(c *gin.Context) {
	startTime := time.Now()
	catalogName := c.Param("catalogName")
	if result := ValidateCatalogName(catalogName); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	catalog, err := api.engine.GetCatalog(catalogName)
	if err != nil {
		SendEngineError(c, "multi-search", ErrorCodeSearchFailed, err)
		return
	}

	var req MultiSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	multiSearchQuery := services.MultiSearchQuery{
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	queries := make(map[string]string, len(req.Queries))
	for _, namedReq := range req.Queries {
		multiSearchQuery.Queries = append(multiSearchQuery.Queries, services.NamedSearchQuery{
			Name:      namedReq.Name,
			Query:     namedReq.Query,
			CourseIDs: namedReq.CourseIDs,
			Scoring:   namedReq.Scoring,
		})
		queries[namedReq.Name] = namedReq.Query
	}

	results, err := catalog.MultiSearch(c.Request.Context(), multiSearchQuery)
	if err != nil {
		SendEngineError(c, "multi-search on catalog '"+catalogName+"'", ErrorCodeSearchFailed, err)
		return
	}

	responseTime := time.Since(startTime)
	for name, result := range results.Results {
		api.track(model.SearchEvent{
			CatalogName:  catalogName,
			Query:        queries[name],
			SearchType:   model.SearchTypeMulti,
			ResponseTime: responseTime,
			ResultCount:  result.Total,
		})
	}

	c.JSON(http.StatusOK, results)
}

func (api *API) track(event model.SearchEvent) {
	if err := api.analytics.TrackSearchEvent(event); err != nil {
		api.log.Warn("failed to track search event", zap.String("catalog", event.CatalogName), zap.Error(err))
	}
}
