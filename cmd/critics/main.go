package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/critics/internal/cli"
	"github.com/okian/critics/pkg/logger"
)

// Default configuration constants.
const (
	defaultTopN    = 5
	defaultTimeout = 10 * time.Second
)

func main() {
	var (
		dataPath  = flag.String("data", "", "JSON or YAML ratings file (default: embedded critics)")
		rater     = flag.String("rater", "", "Rater to report on (default: list raters)")
		topN      = flag.Int("n", defaultTopN, "Number of top matches to print")
		pair      = flag.String("pair", "", "Also print the similarity between -rater and this rater")
		verifyURL = flag.String("verify", "", "Base URL of a running server to verify")
		workers   = flag.Int("workers", runtime.NumCPU(), "Concurrent verification requests")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose   = flag.Bool("verbose", false, "Print every verified rater")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		cli.ShowHelp(os.Stdout)
		return
	}

	if err := logger.InitWithFormat(logger.FormatText, os.Stderr); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &cli.Config{
		DataPath:  *dataPath,
		Rater:     *rater,
		TopN:      *topN,
		Pair:      *pair,
		VerifyURL: *verifyURL,
		Workers:   *workers,
		Timeout:   *timeout,
		Verbose:   *verbose,
	}

	if err := cli.Run(ctx, cfg, os.Stdout); err != nil {
		logger.Get().Error(ctx, "critics failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}
