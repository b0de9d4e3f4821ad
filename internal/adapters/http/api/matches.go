package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// MatchesDependencies defines the interface for top matches.
type MatchesDependencies interface {
	TopMatches(ctx context.Context, rater string, n int) ([]Match, error)
}

// MatchesHandler handles matches requests.
type MatchesHandler struct {
	deps        MatchesDependencies
	defaultTopN int
	maxTopN     int
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchesDependencies, defaultTopN, maxTopN int) *MatchesHandler {
	if defaultTopN < 1 {
		defaultTopN = 5
	}
	if maxTopN < defaultTopN {
		maxTopN = defaultTopN
	}
	return &MatchesHandler{
		deps:        deps,
		defaultTopN: defaultTopN,
		maxTopN:     maxTopN,
	}
}

// HandleGetMatches handles GET /matches/{rater}?n=N requests.
func (h *MatchesHandler) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rater, ok := pathParam(r, "/matches/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing rater", ErrBadRequest))
		return
	}

	n := h.defaultTopN
	if s := r.URL.Query().Get("n"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: n must be a positive integer", ErrBadRequest))
			return
		}
		if v > h.maxTopN {
			writeError(w, http.StatusBadRequest, "limit_exceeded", fmt.Errorf("%w: n must not exceed %d", ErrBadRequest, h.maxTopN))
			return
		}
		n = v
	}

	matches, err := h.deps.TopMatches(r.Context(), rater, n)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	if matches == nil {
		matches = []Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}
