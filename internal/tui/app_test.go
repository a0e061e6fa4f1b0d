package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/restfinder/internal/engine/api"
	"github.com/rendis/restfinder/internal/engine/history"
	"github.com/rendis/restfinder/internal/engine/session"
	"github.com/rendis/restfinder/internal/engine/taxonomy"
	"github.com/rendis/restfinder/internal/model"
	"github.com/rendis/restfinder/internal/tui/views"
)

type stubSearcher struct {
	items []model.ResultItem
}

func (s stubSearcher) FetchPage(ctx context.Context, c model.SearchCriteria, page int) (*api.Page, error) {
	return &api.Page{Items: s.items, HasMore: page < 2}, nil
}

type offlineProvider struct{}

func (offlineProvider) Cities(context.Context) (map[string][]string, error) {
	return nil, errors.New("offline")
}

func (offlineProvider) FoodTypes(context.Context) ([]string, error) {
	return nil, errors.New("offline")
}

func ptr[T any](v T) *T { return &v }

func newTestApp(t *testing.T) App {
	t.Helper()
	hist := history.Open("", zerolog.Nop())
	items := []model.ResultItem{
		{Name: "Low", Rating: ptr(4.5)},
		{Name: "High", Rating: ptr(4.9)},
	}
	ctrl := session.New(stubSearcher{items: items}, session.Options{History: hist, Logger: zerolog.Nop()})
	return NewApp(context.Background(), Deps{
		Controller: ctrl,
		History:    hist,
		Taxonomy:   taxonomy.NewLoader(offlineProvider{}, zerolog.Nop()),
		Logger:     zerolog.Nop(),
		Version:    "test",
	})
}

var kadikoy = model.SearchCriteria{City: "İstanbul", District: "Kadıköy", MinRating: 4.5}

func TestApp_SearchRecordsHistory(t *testing.T) {
	a := newTestApp(t)

	msg := a.startSearch(kadikoy)()
	sm, ok := msg.(views.SessionMsg)
	require.True(t, ok)
	require.NoError(t, sm.Err)
	assert.Equal(t, "High", sm.Session.Items[0].Name)

	updated, _ := a.Update(sm)
	a = updated.(App)
	assert.Equal(t, 1, a.deps.History.Len())

	updated, _ = a.Update(views.NavigateToHistory{})
	a = updated.(App)
	assert.Equal(t, viewHistory, a.currentView)
	assert.Contains(t, a.View(), "Kadıköy")
}

func TestApp_StaleSessionIgnored(t *testing.T) {
	a := newTestApp(t)
	sm := a.startSearch(kadikoy)().(views.SessionMsg)
	updated, _ := a.Update(sm)
	a = updated.(App)
	before := a.View()

	updated, _ = a.Update(views.SessionMsg{Session: model.SearchSession{}, Err: session.ErrStale})
	assert.Equal(t, before, updated.(App).View())
}

func TestApp_SortAndLoadMore(t *testing.T) {
	a := newTestApp(t)
	updated, _ := a.Update(a.startSearch(kadikoy)())
	a = updated.(App)

	updated, _ = a.Update(views.SetSortMsg{Order: model.RatingAsc})
	a = updated.(App)
	snap := a.deps.Controller.Session()
	assert.Equal(t, "Low", snap.Items[0].Name)

	sm := a.loadMore()().(views.SessionMsg)
	require.NoError(t, sm.Err)
	assert.Len(t, sm.Session.Items, 4)
	assert.Equal(t, 2, sm.Session.Page)
	assert.False(t, sm.Session.HasMore)
}

func TestApp_EditSearchPrefillsFromSession(t *testing.T) {
	a := newTestApp(t)
	updated, _ := a.Update(a.startSearch(kadikoy)())
	a = updated.(App)

	updated, _ = a.Update(views.NavigateToSearch{})
	a = updated.(App)
	assert.Equal(t, viewSearch, a.currentView)
	assert.Equal(t, "Kadıköy", a.search.Criteria().District)
}

func TestApp_TaxonomyFallback(t *testing.T) {
	a := newTestApp(t)
	msg := a.loadTaxonomy(false)()
	updated, _ := a.Update(msg)
	a = updated.(App)
	assert.Equal(t, model.SourceFallback, a.tax.Source)
	assert.True(t, a.tax.HasCity("Ankara"))
}
