// Package search serves ranking requests against the courses of one catalog.
package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/lexicon"
	"github.com/gcbaptista/course-search-engine/internal/logger"
	"github.com/gcbaptista/course-search-engine/internal/metrics"
	"github.com/gcbaptista/course-search-engine/internal/ranking"
	"github.com/gcbaptista/course-search-engine/model"
	"github.com/gcbaptista/course-search-engine/services"
	"github.com/gcbaptista/course-search-engine/store"
)

const (
	defaultPageSize        = 10
	defaultMaxPageSize     = 100
	defaultMaxMultiQueries = 10
)

// Options tunes a Service. Zero values fall back to the defaults above.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	MaxMultiQueries int
	// Pool runs multi-search queries. When nil each MultiSearch call
	// creates and releases its own pool.
	Pool   *ants.Pool
	Logger *zap.Logger
}

// Service implements the search logic for a single catalog.
// It fulfills services.Searcher and services.MultiSearcher.
type Service struct {
	catalogName string
	courseStore *store.CourseStore
	lex         *lexicon.Lexicon
	opts        Options
	log         *zap.Logger

	mu     sync.RWMutex
	ranker *ranking.Ranker
}

// NewService creates a search Service that ranks the courses of courseStore
// with the given scoring configuration.
func NewService(catalogName string, courseStore *store.CourseStore, scoring config.ScoringConfig, lex *lexicon.Lexicon, opts Options) (*Service, error) {
	if courseStore == nil {
		return nil, fmt.Errorf("course store cannot be nil")
	}
	if lex == nil {
		lex = lexicon.Default()
	}
	ranker, err := ranking.NewRanker(scoring, lex)
	if err != nil {
		return nil, fmt.Errorf("invalid scoring configuration for catalog '%s': %w", catalogName, err)
	}

	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = defaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = defaultMaxPageSize
	}
	if opts.DefaultPageSize > opts.MaxPageSize {
		opts.DefaultPageSize = opts.MaxPageSize
	}
	if opts.MaxMultiQueries <= 0 {
		opts.MaxMultiQueries = defaultMaxMultiQueries
	}

	return &Service{
		catalogName: catalogName,
		courseStore: courseStore,
		lex:         lex,
		opts:        opts,
		log:         logger.OrNop(opts.Logger).With(zap.String("catalog", catalogName)),
		ranker:      ranker,
	}, nil
}

// Scoring returns the scoring configuration searches currently use.
func (s *Service) Scoring() config.ScoringConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ranker.Config()
}

// UpdateScoring swaps the ranker for one built with scoring. Searches already
// running finish with the old configuration.
func (s *Service) UpdateScoring(scoring config.ScoringConfig) error {
	ranker, err := ranking.NewRanker(scoring, s.lex)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ranker = ranker
	s.mu.Unlock()
	return nil
}

// Search ranks the catalog, or the requested subset of it, against the query
// and returns one page of hits.
func (s *Service) Search(ctx context.Context, query services.SearchQuery) (result services.SearchResult, err error) {
	startTime := time.Now()
	defer func() {
		metrics.ObserveSearch(s.catalogName, time.Since(startTime), result.Total, err)
	}()

	page, pageSize := s.pagination(query.Page, query.PageSize)
	queryID := uuid.New().String()

	if err := ctx.Err(); err != nil {
		return services.SearchResult{}, fmt.Errorf("search cancelled: %w", err)
	}

	ranker, err := s.rankerFor(query.Scoring)
	if err != nil {
		return services.SearchResult{}, err
	}

	var corpus []model.Course
	var missing []string
	if len(query.CourseIDs) > 0 {
		corpus, missing = s.courseStore.Subset(query.CourseIDs)
	} else {
		corpus = s.courseStore.Snapshot()
	}

	ranked := ranker.Rank(query.QueryString, corpus)

	total := len(ranked)
	// Compare before multiplying so a huge page number cannot overflow.
	startIndex := total
	if page-1 <= total/pageSize {
		startIndex = min((page-1)*pageSize, total)
	}
	endIndex := startIndex + pageSize
	if endIndex > total {
		endIndex = total
	}

	hits := make([]services.HitResult, 0, endIndex-startIndex)
	for _, r := range ranked[startIndex:endIndex] {
		hits = append(hits, services.HitResult{
			Course:    r.Course,
			Score:     r.Score,
			Breakdown: r.Breakdown,
		})
	}

	took := time.Since(startTime)
	s.log.Debug("search completed",
		zap.String("query_id", queryID),
		zap.String("query", query.QueryString),
		zap.Int("corpus", len(corpus)),
		zap.Int("total", total),
		zap.Duration("took", took))

	return services.SearchResult{
		Hits:             hits,
		Total:            total,
		Page:             page,
		PageSize:         pageSize,
		Took:             took.Milliseconds(),
		QueryId:          queryID,
		MissingCourseIDs: missing,
	}, nil
}

// rankerFor returns the catalog ranker, or a one-off ranker when the request
// overrides part of the scoring configuration.
func (s *Service) rankerFor(overrides *config.ScoringOverrides) (*ranking.Ranker, error) {
	s.mu.RLock()
	ranker := s.ranker
	s.mu.RUnlock()

	if overrides.IsEmpty() {
		return ranker, nil
	}
	custom, err := ranking.NewRanker(overrides.Apply(ranker.Config()), s.lex)
	if err != nil {
		return nil, fmt.Errorf("invalid scoring overrides: %w", err)
	}
	return custom, nil
}

func (s *Service) pagination(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.opts.DefaultPageSize
	}
	if pageSize > s.opts.MaxPageSize {
		pageSize = s.opts.MaxPageSize
	}
	return page, pageSize
}
