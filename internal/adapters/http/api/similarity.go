package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// SimilarityDependencies defines the interface for pairwise scores.
type SimilarityDependencies interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// SimilarityHandler handles similarity requests.
type SimilarityHandler struct {
	deps SimilarityDependencies
}

// NewSimilarityHandler creates a new similarity handler.
func NewSimilarityHandler(deps SimilarityDependencies) *SimilarityHandler {
	return &SimilarityHandler{deps: deps}
}

type similarityResponse struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Score float64 `json:"score"`
}

// HandleGetSimilarity handles GET /similarity?a=X&b=Y requests.
func (h *SimilarityHandler) HandleGetSimilarity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	a, b := q.Get("a"), q.Get("b")
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: a and b are required", ErrBadRequest))
		return
	}
	score, err := h.deps.Similarity(r.Context(), a, b)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, similarityResponse{A: a, B: b, Score: score})
}
