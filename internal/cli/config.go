package cli

import "time"

// Config holds the options of one critics run.
type Config struct {
	DataPath  string        // JSON or YAML ratings file; empty uses the embedded critics
	Rater     string        // rater to report on; empty lists raters
	TopN      int           // number of matches to print
	Pair      string        // optional second rater for a pairwise score
	VerifyURL string        // base URL of a running server to check against
	Workers   int           // concurrent verification requests
	Timeout   time.Duration // HTTP request timeout
	Verbose   bool          // print every verified rater
}

// VerifyStats summarises a verification run.
type VerifyStats struct {
	Raters     int
	Matches    int
	Items      int
	Mismatches int
	Duration   time.Duration
}
