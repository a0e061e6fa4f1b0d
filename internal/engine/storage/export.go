package storage

import (
	"encoding/csv"
	"fmt"
	"io"
)

var csvHeader = []string{
	"name", "rating", "review_count", "address", "phone", "map_url",
	"city", "district", "food_type", "restaurant_name", "min_rating",
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []ArchivedResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range rows {
		rating := ""
		if r.Rating != nil {
			rating = r.RatingText()
		}
		reviews := ""
		if r.ReviewCount != nil {
			reviews = r.ReviewCountText()
		}
		err := cw.Write([]string{
			r.Name,
			rating,
			reviews,
			r.Address,
			r.Phone,
			r.MapURL,
			r.Criteria.City,
			r.Criteria.District,
			r.Criteria.FoodCategory,
			r.Criteria.FreeTextName,
			fmt.Sprintf("%.1f", r.Criteria.MinRating),
		})
		if err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
