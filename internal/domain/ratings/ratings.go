// Package ratings defines the read-only ratings table shared by the
// similarity and recommendation engines.
//
// A Table maps a rater identifier to the ratings that rater gave, keyed by
// item identifier. A rating of exactly Unrated (0) is treated as "not
// actually rated": the table cannot distinguish a true zero score from a
// missing one, and recommendations rely on that convention.
package ratings

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Unrated is the sentinel rating value meaning the rater has not really rated the item.
const Unrated = 0.0

// Table maps rater -> item -> rating. Operations never mutate it.
type Table map[string]map[string]float64

// Ratings returns the item ratings of rater, or ErrUnknownRater.
func (t Table) Ratings(rater string) (map[string]float64, error) {
	r, ok := t[rater]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRater, rater)
	}
	return r, nil
}

// Has reports whether rater is a key of the table.
func (t Table) Has(rater string) bool {
	_, ok := t[rater]
	return ok
}

// HasRated reports whether rater holds a non-sentinel rating for item.
// Absent raters have rated nothing.
func (t Table) HasRated(rater, item string) bool {
	v, ok := t[rater][item]
	return ok && v != Unrated
}

// Raters returns all rater identifiers in ascending order.
func (t Table) Raters() []string {
	raters := lo.Keys(t)
	sort.Strings(raters)
	return raters
}

// Items returns every item identifier rated by at least one rater, ascending.
func (t Table) Items() []string {
	seen := make(map[string]struct{})
	for _, items := range t {
		for item := range items {
			seen[item] = struct{}{}
		}
	}
	items := lo.Keys(seen)
	sort.Strings(items)
	return items
}

// Len returns the number of raters.
func (t Table) Len() int { return len(t) }

// Clone returns a deep copy so callers can hand the table to long-lived
// components without sharing the inner maps.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for rater, items := range t {
		out[rater] = lo.Assign(items)
	}
	return out
}
