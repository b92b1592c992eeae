// Package engine owns the catalogs of the service: their lifecycle, their
// persistence on disk and the background jobs that change them.
package engine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/errors"
	"github.com/gcbaptista/course-search-engine/internal/jobs"
	"github.com/gcbaptista/course-search-engine/internal/lexicon"
	"github.com/gcbaptista/course-search-engine/internal/logger"
	"github.com/gcbaptista/course-search-engine/internal/search"
	"github.com/gcbaptista/course-search-engine/model"
	"github.com/gcbaptista/course-search-engine/services"
)

// Options configures an Engine. Zero values fall back to sensible defaults.
type Options struct {
	DataDir            string
	BaseScoring        *config.ScoringConfig // defaults to config.DefaultScoringConfig()
	Lexicon            *lexicon.Lexicon      // defaults to lexicon.Default()
	MaxJobWorkers      int
	JobRetention       time.Duration
	MultiSearchWorkers int
	DefaultPageSize    int
	MaxPageSize        int
	MaxMultiQueries    int
	Logger             *zap.Logger
}

// Engine manages multiple course catalogs.
// It implements the services.AsyncCatalogManager interface.
type Engine struct {
	mu          sync.RWMutex
	catalogs    map[string]*CatalogInstance
	dataDir     string
	baseScoring config.ScoringConfig
	lex         *lexicon.Lexicon
	searchOpts  search.Options
	jobManager  *jobs.Manager
	pool        *ants.Pool
	log         *zap.Logger
	closeOnce   sync.Once
}

// NewEngine creates the catalog orchestrator, loads the catalogs found in
// the data directory and starts the job manager.
func NewEngine(opts Options) (*Engine, error) {
	if opts.DataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}
	log := logger.OrNop(opts.Logger).Named("engine")

	base := config.DefaultScoringConfig()
	if opts.BaseScoring != nil {
		base = *opts.BaseScoring
	}
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("invalid base scoring configuration: %w", err)
	}

	lex := opts.Lexicon
	if lex == nil {
		lex = lexicon.Default()
	}

	workers := opts.MultiSearchWorkers
	if workers <= 0 {
		workers = 8
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-search pool: %w", err)
	}

	e := &Engine{
		catalogs:    make(map[string]*CatalogInstance),
		dataDir:     opts.DataDir,
		baseScoring: base,
		lex:         lex,
		searchOpts: search.Options{
			DefaultPageSize: opts.DefaultPageSize,
			MaxPageSize:     opts.MaxPageSize,
			MaxMultiQueries: opts.MaxMultiQueries,
			Pool:            pool,
			Logger:          log,
		},
		jobManager: jobs.NewManager(opts.MaxJobWorkers, opts.JobRetention, log),
		pool:       pool,
		log:        log,
	}

	e.loadCatalogsFromDisk()
	e.jobManager.Start()
	return e, nil
}

// Close stops the job manager, waiting for running jobs, and releases the
// multi-search pool.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.jobManager.Stop()
		e.pool.Release()
	})
}

// GetCatalog retrieves a catalog by its name.
func (e *Engine) GetCatalog(name string) (services.CatalogAccessor, error) {
	instance, err := e.instance(name)
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// GetCatalogSettings retrieves the settings for a specific catalog.
func (e *Engine) GetCatalogSettings(name string) (config.CatalogSettings, error) {
	instance, err := e.instance(name)
	if err != nil {
		return config.CatalogSettings{}, err
	}
	return instance.Settings(), nil
}

// GetEffectiveScoring returns the scoring configuration a catalog searches with.
func (e *Engine) GetEffectiveScoring(name string) (config.ScoringConfig, error) {
	instance, err := e.instance(name)
	if err != nil {
		return config.ScoringConfig{}, err
	}
	return instance.Scoring(), nil
}

// BaseScoring returns the server-wide scoring configuration catalogs start from.
func (e *Engine) BaseScoring() config.ScoringConfig {
	return e.baseScoring
}

// ListCatalogs returns the names of all loaded catalogs, sorted.
func (e *Engine) ListCatalogs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.catalogs))
	for name := range e.catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetJobManager returns the job manager for external access.
func (e *Engine) GetJobManager() services.JobManager {
	return e.jobManager
}

// GetJob retrieves a job by ID.
func (e *Engine) GetJob(jobID string) (*model.Job, error) {
	return e.jobManager.GetJob(jobID)
}

// ListJobs returns the jobs of a catalog, optionally filtered by status.
func (e *Engine) ListJobs(catalogName string, status *model.JobStatus) []*model.Job {
	return e.jobManager.ListJobs(catalogName, status)
}

// GetJobMetrics returns the job counters.
func (e *Engine) GetJobMetrics() jobs.JobMetricsData {
	return e.jobManager.GetMetrics()
}

func (e *Engine) instance(name string) (*CatalogInstance, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	instance, exists := e.catalogs[name]
	if !exists {
		return nil, errors.NewCatalogNotFoundError(name)
	}
	return instance, nil
}
