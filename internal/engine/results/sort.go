// Package results orders accumulated search results.
package results

import (
	"cmp"
	"slices"

	"github.com/rendis/restfinder/internal/model"
)

// Sort returns a reordered copy of items. The sort is stable, so items with
// equal keys keep their insertion order. Absent ratings and review counts
// compare as 0.
func Sort(items []model.ResultItem, order model.SortOrder) []model.ResultItem {
	out := slices.Clone(items)
	slices.SortStableFunc(out, compareFunc(order))
	return out
}

func compareFunc(order model.SortOrder) func(a, b model.ResultItem) int {
	switch order {
	case model.RatingAsc:
		return func(a, b model.ResultItem) int {
			return cmp.Compare(a.RatingValue(), b.RatingValue())
		}
	case model.ReviewCountDesc:
		return func(a, b model.ResultItem) int {
			return cmp.Compare(b.ReviewCountValue(), a.ReviewCountValue())
		}
	default:
		return func(a, b model.ResultItem) int {
			return cmp.Compare(b.RatingValue(), a.RatingValue())
		}
	}
}
