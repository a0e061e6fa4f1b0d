package results

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rendis/restfinder/internal/model"
)

func item(name string, rating float64, reviews int) model.ResultItem {
	return model.ResultItem{Name: name, Rating: &rating, ReviewCount: &reviews}
}

func names(items []model.ResultItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestSort_RatingDescIsStable(t *testing.T) {
	items := []model.ResultItem{item("1", 5, 10), item("2", 5, 99), item("3", 3, 1)}

	assert.Equal(t, []string{"1", "2", "3"}, names(Sort(items, model.RatingDesc)))
}

func TestSort_Orders(t *testing.T) {
	items := []model.ResultItem{
		item("a", 4.1, 300),
		item("b", 4.9, 20),
		item("c", 3.8, 1200),
		item("d", 4.9, 5),
	}

	tests := []struct {
		order model.SortOrder
		want  []string
	}{
		{model.RatingDesc, []string{"b", "d", "a", "c"}},
		{model.RatingAsc, []string{"c", "a", "b", "d"}},
		{model.ReviewCountDesc, []string{"c", "a", "b", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.order.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, names(Sort(items, tt.order)))
		})
	}
}

func TestSort_Idempotent(t *testing.T) {
	items := []model.ResultItem{item("a", 4, 1), item("b", 5, 1), item("c", 4, 2), item("d", 5, 0)}

	for _, order := range model.SortOrders() {
		once := Sort(items, order)
		assert.Equal(t, once, Sort(once, order), order.String())
	}
}

func TestSort_AbsentValuesCompareAsZero(t *testing.T) {
	items := []model.ResultItem{{Name: "unknown"}, item("rated", 1, 1)}

	assert.Equal(t, []string{"rated", "unknown"}, names(Sort(items, model.RatingDesc)))
	assert.Equal(t, []string{"unknown", "rated"}, names(Sort(items, model.RatingAsc)))
	assert.Equal(t, []string{"rated", "unknown"}, names(Sort(items, model.ReviewCountDesc)))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	items := []model.ResultItem{item("low", 1, 1), item("high", 5, 1)}

	_ = Sort(items, model.RatingDesc)
	assert.Equal(t, []string{"low", "high"}, names(items))
}

func TestSort_WholeSetNotPerPage(t *testing.T) {
	page1 := []model.ResultItem{item("p1-a", 4.0, 1), item("p1-b", 3.0, 1)}
	page2 := []model.ResultItem{item("p2-a", 4.5, 1), item("p2-b", 3.5, 1)}

	merged := append(Sort(page1, model.RatingDesc), page2...)
	assert.Equal(t, []string{"p2-a", "p1-a", "p2-b", "p1-b"}, names(Sort(merged, model.RatingDesc)))
}
