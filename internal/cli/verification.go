package cli

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/okian/critics/internal/domain/ratings"
	"github.com/okian/critics/internal/domain/recommend"
	"github.com/okian/critics/internal/domain/similarity"
	"github.com/okian/critics/internal/domain/types"
	"github.com/okian/critics/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// scoreTolerance absorbs float summation order differences in the server's fan-out.
const scoreTolerance = 1e-9

// Verify fetches matches and recommendations for every rater from the server
// at cfg.VerifyURL and compares them with a local computation over table.
// It returns ErrMismatch when any rater differs.
func Verify(ctx context.Context, cfg *Config, table ratings.Table) (*VerifyStats, error) {
	start := time.Now()
	client := newHTTPClient(cfg.VerifyURL, cfg.Timeout)
	n := cfg.TopN
	if n <= 0 {
		n = similarity.DefaultTopN
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var matchesSeen, itemsSeen, mismatches int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, rater := range table.Raters() {
		g.Go(func() error {
			escaped := url.PathEscape(rater)

			var gotMatches []types.Match
			if err := client.getJSON(gctx, fmt.Sprintf("/matches/%s?n=%d", escaped, n), &gotMatches); err != nil {
				return err
			}
			wantMatches, err := similarity.TopMatches(table, rater, n)
			if err != nil {
				return err
			}

			var gotRecs []types.Recommendation
			if err := client.getJSON(gctx, "/recommendations/"+escaped, &gotRecs); err != nil {
				return err
			}
			wantRecs, err := recommend.Recommend(gctx, table, rater)
			if err != nil {
				return err
			}

			atomic.AddInt64(&matchesSeen, int64(len(gotMatches)))
			atomic.AddInt64(&itemsSeen, int64(len(gotRecs)))

			if err := compareMatches(wantMatches, gotMatches); err != nil {
				atomic.AddInt64(&mismatches, 1)
				logger.Get().Warn(gctx, "matches differ", logger.String("rater", rater), logger.Error(err))
				return nil
			}
			if err := compareRecommendations(wantRecs, gotRecs); err != nil {
				atomic.AddInt64(&mismatches, 1)
				logger.Get().Warn(gctx, "recommendations differ", logger.String("rater", rater), logger.Error(err))
				return nil
			}
			if cfg.Verbose {
				logger.Get().Info(gctx, "rater verified",
					logger.String("rater", rater),
					logger.Int("matches", len(gotMatches)),
					logger.Int("items", len(gotRecs)),
				)
			}
			return nil
		})
	}
	err := g.Wait()

	stats := &VerifyStats{
		Raters:     table.Len(),
		Matches:    int(matchesSeen),
		Items:      int(itemsSeen),
		Mismatches: int(mismatches),
		Duration:   time.Since(start),
	}
	if err != nil {
		return stats, err
	}
	if stats.Mismatches > 0 {
		return stats, fmt.Errorf("%w: %d raters", ErrMismatch, stats.Mismatches)
	}
	return stats, nil
}

func compareMatches(want, got []types.Match) error {
	if len(want) != len(got) {
		return fmt.Errorf("got %d matches, want %d", len(got), len(want))
	}
	for i := range want {
		if want[i].Rater != got[i].Rater || !closeEnough(want[i].Score, got[i].Score) {
			return fmt.Errorf("match %d: got %s %.6f, want %s %.6f", i, got[i].Rater, got[i].Score, want[i].Rater, want[i].Score)
		}
	}
	return nil
}

func compareRecommendations(want, got []types.Recommendation) error {
	if len(want) != len(got) {
		return fmt.Errorf("got %d items, want %d", len(got), len(want))
	}
	for i := range want {
		if want[i].Item != got[i].Item || !closeEnough(want[i].Score, got[i].Score) {
			return fmt.Errorf("item %d: got %s %.6f, want %s %.6f", i, got[i].Item, got[i].Score, want[i].Item, want[i].Score)
		}
	}
	return nil
}

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) <= scoreTolerance
}
