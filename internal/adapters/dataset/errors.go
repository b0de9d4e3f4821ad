package dataset

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrLoad   = errors.New("load dataset failed")
	ErrFormat = errors.New("invalid dataset")
)
