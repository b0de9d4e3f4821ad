package cli

import "errors"

// Sentinel errors for the critics tool.
var (
	ErrStatus   = errors.New("unexpected status")
	ErrMismatch = errors.New("server results differ from local computation")
)
