package similarity

import (
	"github.com/okian/critics/internal/domain/ratings"
	"github.com/okian/critics/internal/domain/types"
)

// DefaultTopN is the number of matches returned when the caller asks for n <= 0.
const DefaultTopN = 5

// TopMatches ranks every other rater in t by similarity to rater and returns
// at most n of them, best first. Ties are ordered by rater id descending.
func TopMatches(t ratings.Table, rater string, n int, opts ...Option) ([]types.Match, error) {
	if _, err := t.Ratings(rater); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultTopN
	}
	st := newSettings(opts)

	scores := make([]types.Match, 0, len(t))
	for other := range t {
		if other == rater {
			continue
		}
		sim, err := st.scorer.Score(t, rater, other)
		if err != nil {
			return nil, err
		}
		scores = append(scores, types.Match{Score: sim, Rater: other})
	}

	types.SortMatches(scores)
	if len(scores) > n {
		scores = scores[:n]
	}
	return scores, nil
}
