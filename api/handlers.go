package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/analytics"
	"github.com/gcbaptista/course-search-engine/internal/jobs"
	"github.com/gcbaptista/course-search-engine/internal/logger"
	"github.com/gcbaptista/course-search-engine/internal/metrics"
	"github.com/gcbaptista/course-search-engine/services"
)

// CatalogEngine is what the HTTP layer needs from the engine.
type CatalogEngine interface {
	services.AsyncCatalogManager
	GetEffectiveScoring(name string) (config.ScoringConfig, error)
	GetJobMetrics() jobs.JobMetricsData
}

// Options configures the HTTP layer.
type Options struct {
	Logger       *zap.Logger
	Analytics    *analytics.Service // defaults to an in-memory service
	MaxBodyBytes int64              // 0 disables the limit
}

// API holds dependencies for API handlers, primarily the catalog engine.
type API struct {
	engine    CatalogEngine
	analytics *analytics.Service
	log       *zap.Logger
}

// NewAPI creates a new API handler structure.
func NewAPI(engine CatalogEngine, opts Options) *API {
	log := logger.OrNop(opts.Logger)
	tracker := opts.Analytics
	if tracker == nil {
		tracker = analytics.NewService(engine, "", log)
	}
	return &API{
		engine:    engine,
		analytics: tracker,
		log:       log.Named("api"),
	}
}

// NewRouter builds a gin engine with the middleware stack and every route.
func NewRouter(engine CatalogEngine, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(
		RequestIDMiddleware(),
		RecoveryMiddleware(opts.Logger),
		LoggingMiddleware(opts.Logger),
		metrics.Middleware(),
		CORSMiddleware(),
	)
	if opts.MaxBodyBytes > 0 {
		router.Use(RequestSizeLimitMiddleware(opts.MaxBodyBytes))
	}

	SetupRoutes(router, NewAPI(engine, opts))
	return router
}

// SetupRoutes defines all the API routes for the course search engine.
func SetupRoutes(router *gin.Engine, apiHandler *API) {
	router.GET("/health", apiHandler.HealthCheckHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/analytics", apiHandler.GetAnalyticsHandler)

	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler)
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)
	}

	catalogRoutes := router.Group("/catalogs")
	{
		catalogRoutes.POST("", apiHandler.CreateCatalogHandler)
		catalogRoutes.GET("", apiHandler.ListCatalogsHandler)
		catalogRoutes.GET("/:catalogName", apiHandler.GetCatalogHandler)
		catalogRoutes.DELETE("/:catalogName", apiHandler.DeleteCatalogHandler)
		catalogRoutes.PATCH("/:catalogName/scoring", apiHandler.UpdateScoringHandler)
		catalogRoutes.GET("/:catalogName/stats", apiHandler.GetCatalogStatsHandler)
		catalogRoutes.GET("/:catalogName/jobs", apiHandler.ListJobsHandler)

		courseRoutes := catalogRoutes.Group("/:catalogName/courses")
		{
			courseRoutes.PUT("", apiHandler.UpsertCoursesHandler)
			courseRoutes.POST("/_replace", apiHandler.ReplaceCoursesHandler)
			courseRoutes.GET("", apiHandler.ListCoursesHandler)
			courseRoutes.GET("/:courseId", apiHandler.GetCourseHandler)
			courseRoutes.DELETE("/:courseId", apiHandler.DeleteCourseHandler)
		}

		catalogRoutes.POST("/:catalogName/_search", apiHandler.SearchHandler)
		catalogRoutes.POST("/:catalogName/_multi_search", apiHandler.MultiSearchHandler)
	}
}
