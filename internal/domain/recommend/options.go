package recommend

import "github.com/okian/critics/internal/domain/similarity"

// Option applies a configuration option to a Recommend call.
type Option func(*settings)

type settings struct {
	scorer      similarity.Scorer
	parallelism int
}

// WithScorer replaces the default Pearson scorer, e.g. with a caching one.
func WithScorer(s similarity.Scorer) Option {
	return func(st *settings) {
		if s != nil {
			st.scorer = s
		}
	}
}

// WithParallelism fans the per-rater loop out over n goroutines.
// Values below 2 keep the loop sequential.
func WithParallelism(n int) Option {
	return func(st *settings) {
		if n > 0 {
			st.parallelism = n
		}
	}
}

func newSettings(opts []Option) settings {
	st := settings{
		scorer:      similarity.PearsonScorer,
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(&st)
	}
	return st
}
