package cache

import "github.com/okian/critics/internal/domain/similarity"

// Option applies a configuration option to the SimilarityCache.
type Option func(*SimilarityCache)

// WithSize sets the maximum number of rater pairs kept.
func WithSize(size int) Option {
	return func(c *SimilarityCache) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithScorer sets the scorer consulted on a miss.
func WithScorer(s similarity.Scorer) Option {
	return func(c *SimilarityCache) {
		if s != nil {
			c.next = s
		}
	}
}
