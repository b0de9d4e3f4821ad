// Package similarity scores how alike two raters' tastes are.
//
// The score is the Pearson correlation of the two raters' ratings restricted
// to the items both have rated. Raters with nothing in common score 0, and so
// do pairs whose correlation is undefined because one side rated every common
// item identically (zero variance).
package similarity

import (
	"math"
	"sort"

	"github.com/okian/critics/internal/domain/ratings"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// Scorer computes the similarity of raters a and b in t.
type Scorer interface {
	Score(t ratings.Table, a, b string) (float64, error)
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(t ratings.Table, a, b string) (float64, error)

// Score calls f.
func (f ScorerFunc) Score(t ratings.Table, a, b string) (float64, error) { return f(t, a, b) }

// PearsonScorer is the uncached Scorer backed by Pearson.
var PearsonScorer Scorer = ScorerFunc(Pearson) //nolint:gochecknoglobals // stateless default

// Pearson returns the correlation of a's and b's ratings over their common items.
// Both raters must be present in t; otherwise the error wraps ratings.ErrUnknownRater.
func Pearson(t ratings.Table, a, b string) (float64, error) {
	ra, err := t.Ratings(a)
	if err != nil {
		return 0, err
	}
	rb, err := t.Ratings(b)
	if err != nil {
		return 0, err
	}

	common := CommonItems(ra, rb)
	if len(common) == 0 {
		return 0, nil
	}

	xs := make([]float64, len(common))
	ys := make([]float64, len(common))
	for i, item := range common {
		xs[i] = ra[item]
		ys[i] = rb[item]
	}
	meanA := stat.Mean(xs, nil)
	meanB := stat.Mean(ys, nil)

	var num, sumSqA, sumSqB float64
	for i := range xs {
		da := xs[i] - meanA
		db := ys[i] - meanB
		num += da * db
		sumSqA += da * da
		sumSqB += db * db
	}

	den := math.Sqrt(sumSqA * sumSqB)
	if den == 0 {
		return 0, nil
	}
	return num / den, nil
}

// CommonItems returns the items rated by both a and b in ascending order.
// The fixed order keeps floating-point sums identical across calls and
// across argument order.
func CommonItems(a, b map[string]float64) []string {
	common := lo.Intersect(lo.Keys(a), lo.Keys(b))
	sort.Strings(common)
	return common
}
