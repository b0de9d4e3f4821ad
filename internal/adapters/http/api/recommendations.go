package api

import (
	"context"
	"fmt"
	"net/http"
)

// RecommendationsDependencies defines the interface for recommendations.
type RecommendationsDependencies interface {
	Recommend(ctx context.Context, rater string) ([]Recommendation, error)
}

// RecommendationsHandler handles recommendation requests.
type RecommendationsHandler struct {
	deps RecommendationsDependencies
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(deps RecommendationsDependencies) *RecommendationsHandler {
	return &RecommendationsHandler{deps: deps}
}

// HandleGetRecommendations handles GET /recommendations/{rater} requests.
func (h *RecommendationsHandler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rater, ok := pathParam(r, "/recommendations/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing rater", ErrBadRequest))
		return
	}
	recs, err := h.deps.Recommend(r.Context(), rater)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	if recs == nil {
		recs = []Recommendation{}
	}
	writeJSON(w, http.StatusOK, recs)
}
