// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/okian/critics/internal/domain/ratings"
	"github.com/okian/critics/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SimilarityDependencies
	MatchesDependencies
	RecommendationsDependencies
	RatersDependencies
}

// Match mirrors the read shape returned by GET /matches.
type Match = types.Match

// Recommendation mirrors the read shape returned by GET /recommendations.
type Recommendation = types.Recommendation

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler          *HealthHandler
	statsHandler           *StatsHandler
	similarityHandler      *SimilarityHandler
	matchesHandler         *MatchesHandler
	recommendationsHandler *RecommendationsHandler
	ratersHandler          *RatersHandler
}

// NewServer creates a new API server with all handlers.
// defaultTopN and maxTopN bound GET /matches?n.
func NewServer(deps Dependencies, statsProvider StatsProvider, defaultTopN, maxTopN int) *Server {
	return &Server{
		healthHandler:          NewHealthHandler(),
		statsHandler:           NewStatsHandler(statsProvider),
		similarityHandler:      NewSimilarityHandler(deps),
		matchesHandler:         NewMatchesHandler(deps, defaultTopN, maxTopN),
		recommendationsHandler: NewRecommendationsHandler(deps),
		ratersHandler:          NewRatersHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleHealth, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/raters", MetricsMiddleware(s.ratersHandler.HandleGetRaters, "raters"))
	mux.HandleFunc("/similarity", MetricsMiddleware(s.similarityHandler.HandleGetSimilarity, "similarity"))
	mux.HandleFunc("/matches/", MetricsMiddleware(s.matchesHandler.HandleGetMatches, "matches"))
	mux.HandleFunc("/recommendations/", MetricsMiddleware(s.recommendationsHandler.HandleGetRecommendations, "recommendations"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeQueryError maps engine errors onto status codes.
func writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ratings.ErrUnknownRater):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// pathParam returns the single path segment after prefix, or false.
func pathParam(r *http.Request, prefix string) (string, bool) {
	v := strings.TrimPrefix(r.URL.Path, prefix)
	if v == "" || v == r.URL.Path || strings.Contains(v, "/") {
		return "", false
	}
	return v, true
}
