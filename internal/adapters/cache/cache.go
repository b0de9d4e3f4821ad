// Package cache memoises pairwise similarity scores.
//
// A SimilarityCache belongs to one ratings table. Callers that replace the
// table must Purge the cache, otherwise scores from the old table are served.
package cache

import (
	"fmt"

	"github.com/okian/critics/internal/domain/ratings"
	"github.com/okian/critics/internal/domain/similarity"
	"github.com/okian/critics/pkg/metrics"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultSize = 4096

// pairKey is an unordered rater pair; a <= b.
type pairKey struct {
	a, b string
}

func keyOf(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// SimilarityCache is a similarity.Scorer that remembers scores of recently
// seen rater pairs. Scores are symmetric, so (a, b) and (b, a) share a slot.
type SimilarityCache struct {
	size  int
	next  similarity.Scorer
	cache *lru.Cache[pairKey, float64]
}

// New creates a cache in front of the Pearson scorer unless WithScorer says otherwise.
func New(opts ...Option) (*SimilarityCache, error) {
	c := &SimilarityCache{
		size: defaultSize,
		next: similarity.PearsonScorer,
	}
	for _, opt := range opts {
		opt(c)
	}

	l, err := lru.New[pairKey, float64](c.size)
	if err != nil {
		return nil, fmt.Errorf("create similarity cache: %w", err)
	}
	c.cache = l
	return c, nil
}

// Score returns the cached score for the pair or computes and stores it.
// Errors are never cached.
func (c *SimilarityCache) Score(t ratings.Table, a, b string) (float64, error) {
	k := keyOf(a, b)
	if v, ok := c.cache.Get(k); ok {
		metrics.RecordSimilarityCacheHit()
		return v, nil
	}
	metrics.RecordSimilarityCacheMiss()

	v, err := c.next.Score(t, k.a, k.b)
	if err != nil {
		return 0, err
	}
	c.cache.Add(k, v)
	return v, nil
}

// Purge drops every cached score.
func (c *SimilarityCache) Purge() {
	c.cache.Purge()
}

// Len returns the number of cached pairs.
func (c *SimilarityCache) Len() int {
	return c.cache.Len()
}
