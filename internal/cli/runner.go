package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/okian/critics/internal/adapters/dataset"
	"github.com/okian/critics/internal/domain/ratings"
	"github.com/okian/critics/internal/domain/recommend"
	"github.com/okian/critics/internal/domain/similarity"
	"github.com/okian/critics/pkg/logger"
)

// Run loads the table, prints the report for cfg.Rater to w and, when
// cfg.VerifyURL is set, checks the server at that URL.
func Run(ctx context.Context, cfg *Config, w io.Writer) error {
	table, err := dataset.Load(ctx, cfg.DataPath)
	if err != nil {
		return err
	}

	logger.Get().Debug(ctx, "ratings loaded",
		logger.String("data", cfg.DataPath),
		logger.Int("raters", table.Len()),
		logger.Int("items", len(table.Items())),
	)

	if cfg.Rater == "" {
		printRaters(w, table)
	} else if err := report(ctx, cfg, table, w); err != nil {
		return err
	}

	if cfg.VerifyURL == "" {
		return nil
	}
	stats, err := Verify(ctx, cfg, table)
	if stats != nil {
		fmt.Fprintf(w, "\nVerified %d raters (%d matches, %d items) against %s in %s, %d mismatches\n",
			stats.Raters, stats.Matches, stats.Items, cfg.VerifyURL, stats.Duration.Round(time.Millisecond), stats.Mismatches)
	}
	return err
}

func printRaters(w io.Writer, table ratings.Table) {
	fmt.Fprintf(w, "Raters (%d):\n", table.Len())
	for _, r := range table.Raters() {
		fmt.Fprintf(w, "  %s\n", r)
	}
}

func report(ctx context.Context, cfg *Config, table ratings.Table, w io.Writer) error {
	n := cfg.TopN
	if n <= 0 {
		n = similarity.DefaultTopN
	}

	matches, err := similarity.TopMatches(table, cfg.Rater, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Top %d matches for %s:\n", n, cfg.Rater)
	for _, m := range matches {
		fmt.Fprintf(w, "  %7.4f  %s\n", m.Score, m.Rater)
	}

	recs, err := recommend.Recommend(ctx, table, cfg.Rater)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Recommendations for %s:\n", cfg.Rater)
	if len(recs) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, r := range recs {
		fmt.Fprintf(w, "  %7.4f  %s\n", r.Score, r.Item)
	}

	if cfg.Pair == "" {
		return nil
	}
	score, err := similarity.Pearson(table, cfg.Rater, cfg.Pair)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Similarity %s ~ %s: %.4f\n", cfg.Rater, cfg.Pair, score)
	return nil
}
