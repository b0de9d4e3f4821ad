package cli

import (
	"io"
)

// ShowHelp prints usage information for the critics tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Critics
=======

Prints the most similar raters and weighted recommendations for a rater,
and optionally checks a running server against the same computation.

Usage:
  go run ./cmd/critics [options]

Options:
  -data string
        JSON or YAML ratings file (default: embedded movie critics)
  -rater string
        Rater to report on (default: list raters)
  -n int
        Number of top matches to print (default 5)
  -pair string
        Also print the similarity between -rater and this rater
  -verify string
        Base URL of a running server to verify, e.g. http://localhost:9080
  -workers int
        Concurrent verification requests (default CPU cores)
  -timeout duration
        HTTP request timeout (default 10s)
  -verbose
        Print every verified rater
  -help
        Show this help message

Examples:
  # Recommendations for Toby from the embedded dataset
  go run ./cmd/critics -rater Toby

  # Pairwise similarity from a custom file
  go run ./cmd/critics -data ratings.yaml -rater alice -pair bob

  # Check a running server
  go run ./cmd/critics -verify http://localhost:9080
`)
}
