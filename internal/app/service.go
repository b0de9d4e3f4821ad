// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/critics/internal/adapters/cache"
	"github.com/okian/critics/internal/adapters/dataset"
	"github.com/okian/critics/internal/domain/ratings"
	"github.com/okian/critics/internal/domain/recommend"
	"github.com/okian/critics/internal/domain/similarity"
	"github.com/okian/critics/internal/domain/types"
	"github.com/okian/critics/pkg/logger"
	"github.com/okian/critics/pkg/metrics"
)

// meteredPearson counts every pairwise score actually computed from the table.
var meteredPearson similarity.Scorer = similarity.ScorerFunc( //nolint:gochecknoglobals // stateless
	func(t ratings.Table, a, b string) (float64, error) {
		metrics.RecordSimilarityComputation()
		return similarity.Pearson(t, a, b)
	})

// Service answers similarity and recommendation queries over one ratings table.
type Service struct {
	mu sync.RWMutex

	// Core components
	table  ratings.Table
	cache  *cache.SimilarityCache
	scorer similarity.Scorer

	// Configuration
	datasetPath string
	parallelism int
	cacheSize   int
	defaultTopN int

	// State
	started  bool
	source   string
	loadedAt time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTable serves t instead of loading a dataset on Start.
func WithTable(t ratings.Table) Option {
	return func(s *Service) {
		if t != nil {
			s.table = t.Clone()
			s.source = "memory"
		}
	}
}

// WithDatasetPath sets the JSON or YAML file loaded on Start.
// Empty selects the embedded critics dataset.
func WithDatasetPath(path string) Option {
	return func(s *Service) {
		s.datasetPath = path
	}
}

// WithParallelism bounds the recommendation fan-out.
func WithParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithCacheSize sets the number of rater pairs memoised. 0 disables the cache.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.cacheSize = size
		}
	}
}

// WithDefaultTopN sets the match count used when callers pass n <= 0.
func WithDefaultTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultTopN = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		parallelism: runtime.NumCPU(),
		cacheSize:   4096,
		defaultTopN: similarity.DefaultTopN,
		scorer:      meteredPearson,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the ratings table, unless one was given, and builds the cache.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting recommender service...")

	if s.table == nil {
		t, err := dataset.Load(ctx, s.datasetPath)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		s.table = t
		s.source = dataset.SourceEmbedded
		if s.datasetPath != "" {
			s.source = s.datasetPath
		}
	} else if err := dataset.Validate(s.table); err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	if err := s.resetCache(); err != nil {
		return err
	}

	s.loadedAt = time.Now()
	s.started = true
	metrics.UpdateDatasetSize(s.table.Len(), len(s.table.Items()))

	s.logger.Info(ctx, "recommender service started",
		logger.String("dataset", s.source),
		logger.Int("raters", s.table.Len()),
		logger.Int("parallelism", s.parallelism),
		logger.Int("cacheSize", s.cacheSize),
	)

	return nil
}

// Stop releases the table and cache.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping recommender service...")

	if s.cache != nil {
		s.cache.Purge()
		metrics.UpdateSimilarityCacheEntries(0)
	}
	s.cache = nil
	s.scorer = meteredPearson

	s.started = false
	s.logger.Info(context.Background(), "recommender service stopped")
}

// resetCache installs a fresh similarity cache, or the plain scorer when
// caching is disabled. The caller holds mu.
func (s *Service) resetCache() error {
	s.cache = nil
	s.scorer = meteredPearson
	if s.cacheSize > 0 {
		c, err := cache.New(cache.WithSize(s.cacheSize), cache.WithScorer(meteredPearson))
		if err != nil {
			return err
		}
		s.cache = c
		s.scorer = c
	}
	metrics.UpdateSimilarityCacheEntries(0)
	return nil
}

// snapshot returns the table and scorer a query should use.
func (s *Service) snapshot() (ratings.Table, similarity.Scorer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.table, s.scorer, nil
}

// SetTable swaps in a new ratings table and drops every cached score.
func (s *Service) SetTable(ctx context.Context, t ratings.Table) error {
	if t == nil {
		return fmt.Errorf("%w: nil table", dataset.ErrFormat)
	}
	if err := dataset.Validate(t); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Queries already holding the old snapshot keep writing to the old cache.
	if s.started {
		if err := s.resetCache(); err != nil {
			return err
		}
	}
	s.table = t.Clone()
	s.source = "memory"
	s.loadedAt = time.Now()
	metrics.UpdateDatasetSize(s.table.Len(), len(s.table.Items()))

	if s.logger != nil {
		s.logger.Info(ctx, "ratings table replaced", logger.Int("raters", s.table.Len()))
	}
	return nil
}

// Similarity returns the Pearson score of raters a and b.
func (s *Service) Similarity(ctx context.Context, a, b string) (float64, error) {
	t, scorer, err := s.snapshot()
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	score, err := scorer.Score(t, a, b)
	if err != nil {
		s.observeError(err)
		return 0, err
	}
	return score, nil
}

// TopMatches returns the n raters most similar to rater.
// n <= 0 selects the configured default.
func (s *Service) TopMatches(ctx context.Context, rater string, n int) ([]types.Match, error) {
	t, scorer, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = s.defaultTopN
	}

	start := time.Now()
	matches, err := similarity.TopMatches(t, rater, n, similarity.WithScorer(scorer))
	metrics.RecordTopMatchesLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		s.observeError(err)
		return nil, err
	}
	s.updateCacheGauge()
	return matches, nil
}

// Recommend returns every item rater has not rated, best first.
func (s *Service) Recommend(ctx context.Context, rater string) ([]types.Recommendation, error) {
	t, scorer, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	recs, err := recommend.Recommend(ctx, t, rater,
		recommend.WithScorer(scorer),
		recommend.WithParallelism(s.parallelism),
	)
	metrics.RecordRecommendLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		s.observeError(err)
		return nil, err
	}
	metrics.RecordRecommendResultSize(len(recs))
	s.updateCacheGauge()

	s.logger.Debug(ctx, "recommendations computed",
		logger.String("rater", rater),
		logger.Int("items", len(recs)),
	)
	return recs, nil
}

// Raters lists every rater in the table in ascending order.
func (s *Service) Raters(_ context.Context) ([]string, error) {
	t, _, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return t.Raters(), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"parallelism": s.parallelism,
		"cacheSize":   s.cacheSize,
		"defaultTopN": s.defaultTopN,
	}

	if s.started {
		stats["source"] = s.source
		stats["raters"] = s.table.Len()
		stats["items"] = len(s.table.Items())
		stats["loadedAt"] = s.loadedAt.UTC().Format(time.RFC3339)
		if s.cache != nil {
			stats["cachedPairs"] = s.cache.Len()
			metrics.UpdateSimilarityCacheEntries(s.cache.Len())
		}
	}

	return stats
}

func (s *Service) updateCacheGauge() {
	s.mu.RLock()
	c := s.cache
	s.mu.RUnlock()
	if c != nil {
		metrics.UpdateSimilarityCacheEntries(c.Len())
	}
}

func (s *Service) observeError(err error) {
	if errors.Is(err, ratings.ErrUnknownRater) {
		metrics.RecordUnknownRater()
	}
}
