// Package ranking scores a catalog of courses against a free-text query.
//
// A ranking call is a pure function of the query, the corpus and the scoring
// configuration: the query is normalized, every course collects weighted
// lexical signals and a TF-IDF similarity, context multipliers are applied,
// and results below a cutoff relative to the best score are dropped.
// Nothing is kept between calls except the immutable lexicon, so one Ranker
// may be used from many goroutines at once.
package ranking

import (
	"sort"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/lexicon"
	"github.com/gcbaptista/course-search-engine/internal/query"
	"github.com/gcbaptista/course-search-engine/model"
)

// Ranker ranks courses with a fixed configuration.
type Ranker struct {
	cfg          config.ScoringConfig
	lex          *lexicon.Lexicon
	buildVectors VectorSpaceBuilder
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithVectorSpaceBuilder replaces the per-call TF-IDF build.
func WithVectorSpaceBuilder(builder VectorSpaceBuilder) Option {
	return func(r *Ranker) {
		if builder != nil {
			r.buildVectors = builder
		}
	}
}

// NewRanker validates cfg and returns a Ranker. A nil lexicon means lexicon.Default().
func NewRanker(cfg config.ScoringConfig, lex *lexicon.Lexicon, opts ...Option) (*Ranker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if lex == nil {
		lex = lexicon.Default()
	}

	r := &Ranker{cfg: cfg, lex: lex, buildVectors: NewTFIDFSpace}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Rank is the one-shot form of NewRanker(cfg, nil).Rank(q, corpus).
func Rank(q string, corpus []model.Course, cfg config.ScoringConfig) ([]ScoredResult, error) {
	r, err := NewRanker(cfg, nil)
	if err != nil {
		return nil, err
	}
	return r.Rank(q, corpus), nil
}

// Config returns the configuration the ranker was built with.
func (r *Ranker) Config() config.ScoringConfig {
	return r.cfg
}

// Rank returns the courses relevant to q, best first. The result is never
// nil; an empty query or corpus yields an empty slice.
func (r *Ranker) Rank(q string, corpus []model.Course) []ScoredResult {
	return r.selectResults(r.ScoreAll(q, corpus))
}

// ScoreAll scores every course without any cutoff, in corpus order.
func (r *Ranker) ScoreAll(raw string, corpus []model.Course) []ScoredResult {
	results := make([]ScoredResult, len(corpus))
	for i, course := range corpus {
		results[i] = ScoredResult{
			Course:    course,
			Breakdown: Breakdown{IntroMultiplier: 1, SubjectMultiplier: 1, GenericMultiplier: 1},
		}
	}

	q := query.Normalize(raw, r.lex)
	if q.IsEmpty() || len(corpus) == 0 {
		return results
	}

	records := make([]preparedRecord, len(corpus))
	for i, course := range corpus {
		records[i] = prepareRecord(course)
	}

	similarities := r.similarities(q, corpus)

	matcher := newFieldMatcher(r.cfg, q)
	adjuster := contextAdjuster{cfg: r.cfg, q: q, lex: r.lex}
	for i := range results {
		b := &results[i].Breakdown
		matcher.score(records[i], b)
		b.sumLexical()

		if similarities != nil {
			b.Similarity = similarities[i]
			b.Semantic = b.Similarity * r.cfg.SemanticWeight
		}

		adjuster.adjust(records[i], b)
		results[i].Score = (b.Lexical + b.Semantic) * b.Multiplier()
	}
	return results
}

// similarities returns nil when the query is too short to carry semantic signal.
func (r *Ranker) similarities(q query.NormalizedQuery, corpus []model.Course) []float64 {
	if q.Length() <= r.cfg.MinCharsForSemantic {
		return nil
	}

	documents := make([][]string, len(corpus))
	for i, course := range corpus {
		documents[i] = semanticDocument(course, r.lex)
	}
	space := r.buildVectors(documents)

	similarities := space.Similarities(semanticTerms(q.Text(), r.lex))
	if len(similarities) != len(corpus) {
		return nil
	}
	return similarities
}

// selectResults drops zero scores and scores below the relative cutoff, sorts
// best first keeping corpus order for ties, and truncates.
func (r *Ranker) selectResults(scored []ScoredResult) []ScoredResult {
	maxScore := 0.0
	for _, s := range scored {
		if s.Score > maxScore {
			maxScore = s.Score
		}
	}
	if maxScore <= 0 {
		return []ScoredResult{}
	}

	threshold := maxScore * r.cfg.ScoreCutoff
	selected := make([]ScoredResult, 0, len(scored))
	for _, s := range scored {
		if s.Score > 0 && s.Score >= threshold {
			selected = append(selected, s)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Score > selected[j].Score
	})

	if len(selected) > r.cfg.MaxResults {
		selected = selected[:r.cfg.MaxResults]
	}
	return selected
}
