// Package types contains common types used across the application
package types

import (
	"cmp"
	"slices"
)

// Match is one neighbour of a rater, scored by similarity.
type Match struct {
	Score float64 `json:"score"`
	Rater string  `json:"rater"`
}

// Recommendation is an item the target has not rated, scored by the
// similarity-weighted average of its neighbours' ratings.
type Recommendation struct {
	Score float64 `json:"score"`
	Item  string  `json:"item"`
}

// SortMatches orders matches by score descending, ties by rater descending.
func SortMatches(m []Match) {
	slices.SortFunc(m, func(a, b Match) int {
		return compareDesc(a.Score, a.Rater, b.Score, b.Rater)
	})
}

// SortRecommendations orders recommendations by score descending, ties by item descending.
func SortRecommendations(r []Recommendation) {
	slices.SortFunc(r, func(a, b Recommendation) int {
		return compareDesc(a.Score, a.Item, b.Score, b.Item)
	})
}

// compareDesc is the reverse of the natural (score, id) tuple order, which is
// what sorting the pairs ascending and then reversing the slice produces.
func compareDesc(aScore float64, aID string, bScore float64, bID string) int {
	if c := cmp.Compare(bScore, aScore); c != 0 {
		return c
	}
	return cmp.Compare(bID, aID)
}
