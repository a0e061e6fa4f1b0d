package api

import (
	"encoding/json"

	"github.com/rendis/restfinder/internal/model"
)

const (
	DefaultBaseURL = "http://localhost:5001/api"
	DefaultPerPage = 20

	pathSearch        = "/search"
	pathSearchAndSave = "/search-and-save"
	pathCities        = "/cities"
	pathFoodTypes     = "/food-types"
	pathHealth        = "/health"
)

// SearchRequest is the JSON body of both search endpoints.
type SearchRequest struct {
	City           string  `json:"city"`
	District       string  `json:"district"`
	FoodType       string  `json:"foodType"`
	RestaurantName *string `json:"restaurantName"`
	MinRating      float64 `json:"minRating"`
	SaveToSheets   bool    `json:"saveToSheets"`
	Page           int     `json:"page"`
	PerPage        int     `json:"perPage"`
}

// NewSearchRequest builds the wire request for one page of c.
func NewSearchRequest(c model.SearchCriteria, page, perPage int) SearchRequest {
	req := SearchRequest{
		City:         c.City,
		District:     c.District,
		FoodType:     c.FoodCategory,
		MinRating:    c.MinRating,
		SaveToSheets: c.PersistResult,
		Page:         page,
		PerPage:      perPage,
	}
	if c.FreeTextName != "" {
		name := c.FreeTextName
		req.RestaurantName = &name
	}
	return req
}

// Endpoint returns the path the request must be posted to.
func (r SearchRequest) Endpoint() string {
	if r.SaveToSheets {
		return pathSearchAndSave
	}
	return pathSearch
}

type searchEnvelope struct {
	Success    bool                         `json:"success"`
	Data       []map[string]json.RawMessage `json:"data"`
	TotalCount *int                         `json:"totalCount"`
	HasMore    *bool                        `json:"hasMore"`
	SheetName  string                       `json:"sheetName"`
	Message    string                       `json:"message"`
	Error      string                       `json:"error"`
}

// Page is one normalized page of results.
type Page struct {
	Items []model.ResultItem
	// TotalCount is nil when the service did not report it.
	TotalCount *int
	HasMore    bool
	SheetName  string
	Message    string
}

// Health is the body of GET /health.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
