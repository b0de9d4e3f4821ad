package similarity

// Option applies a configuration option to a ranking call.
type Option func(*settings)

type settings struct {
	scorer Scorer
}

// WithScorer replaces the default Pearson scorer, e.g. with a caching one.
func WithScorer(s Scorer) Option {
	return func(st *settings) {
		if s != nil {
			st.scorer = s
		}
	}
}

func newSettings(opts []Option) settings {
	st := settings{scorer: PearsonScorer}
	for _, opt := range opts {
		opt(&st)
	}
	return st
}
