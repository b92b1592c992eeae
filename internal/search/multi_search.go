package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/gcbaptista/course-search-engine/internal/errors"
	"github.com/gcbaptista/course-search-engine/services"
)

// MultiSearch executes multiple named search queries in parallel on the
// worker pool. The first failing query fails the whole request.
func (s *Service) MultiSearch(ctx context.Context, multiQuery services.MultiSearchQuery) (*services.MultiSearchResult, error) {
	startTime := time.Now()

	if err := s.validateMultiSearch(multiQuery); err != nil {
		return nil, err
	}

	pool := s.opts.Pool
	if pool == nil {
		p, err := ants.NewPool(len(multiQuery.Queries))
		if err != nil {
			return nil, fmt.Errorf("failed to create multi-search pool: %w", err)
		}
		defer p.Release()
		pool = p
	}

	type queryResult struct {
		name   string
		result services.SearchResult
		err    error
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultChan := make(chan queryResult, len(multiQuery.Queries))
	var wg sync.WaitGroup
	for _, namedQuery := range multiQuery.Queries {
		nq := namedQuery
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			result, err := s.Search(ctx, services.SearchQuery{
				QueryString: nq.Query,
				CourseIDs:   nq.CourseIDs,
				Page:        multiQuery.Page,
				PageSize:    multiQuery.PageSize,
				Scoring:     nq.Scoring,
			})
			resultChan <- queryResult{name: nq.Name, result: result, err: err}
		})
		if err != nil {
			wg.Done()
			cancel()
			wg.Wait()
			return nil, fmt.Errorf("failed to schedule query '%s': %w", nq.Name, err)
		}
	}

	results := make(map[string]services.SearchResult, len(multiQuery.Queries))
	for i := 0; i < len(multiQuery.Queries); i++ {
		select {
		case qr := <-resultChan:
			if qr.err != nil {
				cancel()
				wg.Wait()
				return nil, fmt.Errorf("error executing query '%s': %w", qr.name, qr.err)
			}
			results[qr.name] = qr.result
		case <-ctx.Done():
			wg.Wait()
			return nil, fmt.Errorf("multi-search cancelled: %w", ctx.Err())
		}
	}

	processingTime := time.Since(startTime)

	return &services.MultiSearchResult{
		Results:          results,
		TotalQueries:     len(multiQuery.Queries),
		ProcessingTimeMs: float64(processingTime.Nanoseconds()) / 1e6,
	}, nil
}

func (s *Service) validateMultiSearch(multiQuery services.MultiSearchQuery) error {
	if len(multiQuery.Queries) == 0 {
		return errors.NewValidationError("queries", "at least one query is required")
	}
	if len(multiQuery.Queries) > s.opts.MaxMultiQueries {
		return errors.NewValidationError("queries",
			fmt.Sprintf("at most %d queries are allowed, got %d", s.opts.MaxMultiQueries, len(multiQuery.Queries)))
	}

	seen := make(map[string]struct{}, len(multiQuery.Queries))
	for _, nq := range multiQuery.Queries {
		if nq.Name == "" {
			return errors.NewValidationError("name", "each query must have a non-empty name")
		}
		if _, dup := seen[nq.Name]; dup {
			return errors.NewValidationError("name", fmt.Sprintf("duplicate query name '%s'", nq.Name))
		}
		seen[nq.Name] = struct{}{}
	}
	return nil
}
