package model

import (
	"fmt"
	"strconv"
)

// ResultItem is one restaurant in the canonical shape. Nil numbers and
// empty strings mean the service did not send the field.
type ResultItem struct {
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Rating      *float64 `json:"rating"`
	ReviewCount *int     `json:"reviewCount"`
	Phone       string   `json:"phone"`
	MapURL      string   `json:"mapUrl"`
}

// RatingValue returns the rating, or 0 when absent.
func (r ResultItem) RatingValue() float64 {
	if r.Rating == nil {
		return 0
	}
	return *r.Rating
}

// ReviewCountValue returns the review count, or 0 when absent.
func (r ResultItem) ReviewCountValue() int {
	if r.ReviewCount == nil {
		return 0
	}
	return *r.ReviewCount
}

func (r ResultItem) RatingText() string {
	if r.Rating == nil {
		return "-"
	}
	return FormatRating(*r.Rating)
}

func (r ResultItem) ReviewCountText() string {
	if r.ReviewCount == nil {
		return "-"
	}
	return strconv.Itoa(*r.ReviewCount)
}

// FormatRating prints a rating with one decimal, e.g. 4.5.
func FormatRating(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// SortOrder selects how the accumulated results are ordered.
type SortOrder int

const (
	RatingDesc SortOrder = iota
	RatingAsc
	ReviewCountDesc
)

var sortOrderNames = map[SortOrder]string{
	RatingDesc:      "rating",
	RatingAsc:       "rating-asc",
	ReviewCountDesc: "reviews",
}

func (o SortOrder) String() string {
	if s, ok := sortOrderNames[o]; ok {
		return s
	}
	return fmt.Sprintf("SortOrder(%d)", int(o))
}

// ParseSortOrder accepts the names printed by String.
func ParseSortOrder(s string) (SortOrder, error) {
	for o, name := range sortOrderNames {
		if name == s {
			return o, nil
		}
	}
	return RatingDesc, fmt.Errorf("unknown sort order %q (want rating, rating-asc or reviews)", s)
}

// SortOrders lists all orders in display order.
func SortOrders() []SortOrder {
	return []SortOrder{RatingDesc, RatingAsc, ReviewCountDesc}
}
