// Package recommend produces similarity-weighted recommendations of items a
// rater has not rated yet.
//
// Every other rater that correlates positively with the target contributes
// its ratings, weighted by that correlation. Raters with zero or negative
// similarity are ignored entirely. An item counts as unrated by the target when it is missing from
// the target's ratings or recorded as ratings.Unrated.
package recommend

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/critics/internal/domain/ratings"
	"github.com/okian/critics/internal/domain/types"
	"golang.org/x/sync/errgroup"
)

// accumulator collects weighted ratings per item.
type accumulator struct {
	totals  map[string]float64
	simSums map[string]float64
}

func newAccumulator() *accumulator {
	return &accumulator{
		totals:  make(map[string]float64),
		simSums: make(map[string]float64),
	}
}

// add folds the ratings of one neighbour with similarity sim into the accumulator.
func (a *accumulator) add(t ratings.Table, target, other string, sim float64) {
	for item, rating := range t[other] {
		if t.HasRated(target, item) {
			continue
		}
		a.totals[item] += rating * sim
		a.simSums[item] += sim
	}
}

func (a *accumulator) merge(src *accumulator) {
	for item, v := range src.totals {
		a.totals[item] += v
	}
	for item, v := range src.simSums {
		a.simSums[item] += v
	}
}

// rankings normalises the totals into a sorted recommendation list.
// Every simSums entry is a sum of strictly positive similarities.
func (a *accumulator) rankings() []types.Recommendation {
	out := make([]types.Recommendation, 0, len(a.totals))
	for item, total := range a.totals {
		out = append(out, types.Recommendation{Score: total / a.simSums[item], Item: item})
	}
	types.SortRecommendations(out)
	return out
}

// Recommend ranks the items rater has not rated by the similarity-weighted
// average of the other raters' ratings, best first. The full list is
// returned; there is no count limit.
func Recommend(ctx context.Context, t ratings.Table, rater string, opts ...Option) ([]types.Recommendation, error) {
	if _, err := t.Ratings(rater); err != nil {
		return nil, err
	}
	st := newSettings(opts)

	others := make([]string, 0, len(t))
	for other := range t {
		if other != rater {
			others = append(others, other)
		}
	}
	// Fixed order keeps the sequential sums bit-identical between calls.
	sort.Strings(others)

	var (
		acc *accumulator
		err error
	)
	if st.parallelism > 1 && len(others) > 1 {
		acc, err = fanOut(ctx, t, rater, others, st)
	} else {
		acc, err = sequential(ctx, t, rater, others, st)
	}
	if err != nil {
		return nil, err
	}
	return acc.rankings(), nil
}

func sequential(ctx context.Context, t ratings.Table, rater string, others []string, st settings) (*accumulator, error) {
	acc := newAccumulator()
	for _, other := range others {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sim, err := st.scorer.Score(t, rater, other)
		if err != nil {
			return nil, err
		}
		if sim <= 0 {
			continue
		}
		acc.add(t, rater, other, sim)
	}
	return acc, nil
}

// fanOut scores neighbours concurrently. Each goroutine accumulates into a
// private partial that is merged under mu once the neighbour is done.
func fanOut(ctx context.Context, t ratings.Table, rater string, others []string, st settings) (*accumulator, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(st.parallelism)

	var mu sync.Mutex
	acc := newAccumulator()
	for _, other := range others {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sim, err := st.scorer.Score(t, rater, other)
			if err != nil {
				return err
			}
			if sim <= 0 {
				return nil
			}
			part := newAccumulator()
			part.add(t, rater, other, sim)

			mu.Lock()
			acc.merge(part)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return acc, nil
}
