package ratings

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownRater = errors.New("unknown rater")
)
