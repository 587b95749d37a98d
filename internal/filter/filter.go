// Package filter derives views over the loaded record sets. A view is the
// subset of rows where every predicate holds: pure conjunction across
// filter dimensions, OR within a multi-select. Nothing here mutates the
// input slices.
package filter

import (
	"strings"
	"time"
)

// Searchable is any record exposing its full-row text for substring search.
type Searchable interface {
	RowText() string
}

// Predicate decides whether a single row stays in the view.
type Predicate[T any] func(T) bool

// Apply returns the rows for which all predicates hold. Evaluation order
// does not matter; O(rows x predicates), no index.
func Apply[T any](rows []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(rows))
rows:
	for _, row := range rows {
		for _, p := range preds {
			if !p(row) {
				continue rows
			}
		}
		out = append(out, row)
	}
	return out
}

// Membership keeps rows whose field value is in the selected set. A nil
// selection means the full domain (no constraint); a non-nil empty
// selection is a deliberate zero-row result.
func Membership[T any](get func(T) string, selected []string) Predicate[T] {
	if selected == nil {
		return func(T) bool { return true }
	}
	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		set[s] = struct{}{}
	}
	return func(row T) bool {
		_, ok := set[get(row)]
		return ok
	}
}

// DateRange keeps rows whose date falls in [from, to], both inclusive.
// Rows with an unknown date are excluded while a bound is active, matching
// how null dates fall out of a between check.
func DateRange[T any](get func(T) *time.Time, from, to *time.Time) Predicate[T] {
	if from == nil && to == nil {
		return func(T) bool { return true }
	}
	return func(row T) bool {
		d := get(row)
		if d == nil {
			return false
		}
		if from != nil && d.Before(*from) {
			return false
		}
		if to != nil && d.After(*to) {
			return false
		}
		return true
	}
}

// Search keeps rows whose concatenated fields contain the term,
// case-insensitively. An empty term matches everything.
func Search[T Searchable](term string) Predicate[T] {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return func(T) bool { return true }
	}
	return func(row T) bool {
		return strings.Contains(strings.ToLower(row.RowText()), term)
	}
}

// hasEmptySelection reports whether any selection is non-nil but empty,
// the case the UI should warn about instead of silently showing nothing.
func hasEmptySelection(selections ...[]string) bool {
	for _, s := range selections {
		if s != nil && len(s) == 0 {
			return true
		}
	}
	return false
}
