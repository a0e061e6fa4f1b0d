package model

import "strings"

const (
	MinRatingFloor   = 1.0
	MinRatingCeiling = 5.0
	MinRatingStep    = 0.5
	DefaultMinRating = 4.5
)

// SearchCriteria is the filter set behind one search attempt.
type SearchCriteria struct {
	City          string  `json:"city"`
	District      string  `json:"district"`
	FoodCategory  string  `json:"foodType"`
	FreeTextName  string  `json:"restaurantName"`
	MinRating     float64 `json:"minRating"`
	PersistResult bool    `json:"saveToSheets"`
}

// Trimmed returns a copy with surrounding whitespace removed from every text field.
func (c SearchCriteria) Trimmed() SearchCriteria {
	c.City = strings.TrimSpace(c.City)
	c.District = strings.TrimSpace(c.District)
	c.FoodCategory = strings.TrimSpace(c.FoodCategory)
	c.FreeTextName = strings.TrimSpace(c.FreeTextName)
	return c
}

// HasNarrowingFilter reports whether at least one of district, food
// category or name is set.
func (c SearchCriteria) HasNarrowingFilter() bool {
	return c.District != "" || c.FoodCategory != "" || c.FreeTextName != ""
}

// Key returns the identity used to deduplicate history entries.
func (c SearchCriteria) Key() CriteriaKey {
	return CriteriaKey{
		City:         c.City,
		District:     c.District,
		FoodCategory: c.FoodCategory,
		FreeTextName: c.FreeTextName,
		MinRating:    c.MinRating,
	}
}

// Label renders the criteria the way the history list shows them.
func (c SearchCriteria) Label() string {
	parts := []string{c.City}
	if c.District != "" {
		parts = append(parts, c.District)
	}
	if c.FoodCategory != "" {
		parts = append(parts, c.FoodCategory)
	}
	label := strings.Join(parts, " - ")
	if c.FreeTextName != "" {
		label += ` - "` + c.FreeTextName + `"`
	}
	if c.MinRating > 0 {
		label += " - " + FormatRating(c.MinRating) + "+"
	}
	return label
}

// CriteriaKey is comparable with ==. PersistResult is deliberately not part of it.
type CriteriaKey struct {
	City         string
	District     string
	FoodCategory string
	FreeTextName string
	MinRating    float64
}

// RatingOptions lists the selectable minimum ratings, lowest first.
func RatingOptions() []float64 {
	var opts []float64
	for r := MinRatingFloor; r <= MinRatingCeiling; r += MinRatingStep {
		opts = append(opts, r)
	}
	return opts
}
