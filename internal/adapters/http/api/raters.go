package api

import (
	"context"
	"net/http"
)

// RatersDependencies lists the raters of the served table.
type RatersDependencies interface {
	Raters(ctx context.Context) ([]string, error)
}

// RatersHandler handles rater listing requests.
type RatersHandler struct {
	deps RatersDependencies
}

// NewRatersHandler creates a new raters handler.
func NewRatersHandler(deps RatersDependencies) *RatersHandler {
	return &RatersHandler{deps: deps}
}

// HandleGetRaters handles GET /raters requests.
func (h *RatersHandler) HandleGetRaters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raters, err := h.deps.Raters(r.Context())
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, raters)
}
