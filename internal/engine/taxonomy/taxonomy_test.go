package taxonomy

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/restfinder/internal/model"
)

type fakeProvider struct {
	cities    map[string][]string
	citiesErr error
	foods     []string
	foodsErr  error
}

func (f *fakeProvider) Cities(context.Context) (map[string][]string, error) {
	return f.cities, f.citiesErr
}

func (f *fakeProvider) FoodTypes(context.Context) ([]string, error) {
	return f.foods, f.foodsErr
}

func TestLoad_Remote(t *testing.T) {
	p := &fakeProvider{
		cities: map[string][]string{"Bursa": {"Nilüfer", "Osmangazi"}},
		foods:  []string{"iskender", "pideci"},
	}
	l := NewLoader(p, zerolog.Nop())

	got := l.Load(context.Background())
	assert.Equal(t, model.SourceRemote, got.Source)
	assert.Equal(t, p.cities, got.Cities)
	assert.Equal(t, p.foods, got.FoodCategories)
	assert.Equal(t, got, l.Current())
}

func TestLoad_FallbackOnAnyFailure(t *testing.T) {
	boom := errors.New("connection refused")
	cities := map[string][]string{"Bursa": {"Nilüfer"}}
	foods := []string{"iskender"}

	tests := []struct {
		name string
		p    *fakeProvider
	}{
		{"cities error", &fakeProvider{citiesErr: boom, foods: foods}},
		{"food types error", &fakeProvider{cities: cities, foodsErr: boom}},
		{"empty cities", &fakeProvider{cities: map[string][]string{}, foods: foods}},
		{"empty food types", &fakeProvider{cities: cities, foods: nil}},
		{"both fail", &fakeProvider{citiesErr: boom, foodsErr: boom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewLoader(tt.p, zerolog.Nop()).Load(context.Background())

			// Never a partial merge of remote and built-in data.
			assert.Equal(t, Fallback(), got)
			assert.False(t, got.HasCity("Bursa"))
		})
	}
}

func TestLoad_NilProvider(t *testing.T) {
	got := NewLoader(nil, zerolog.Nop()).Load(context.Background())
	assert.Equal(t, model.SourceFallback, got.Source)
}

func TestRefresh_ReplacesWholesale(t *testing.T) {
	p := &fakeProvider{
		cities: map[string][]string{"Bursa": {"Nilüfer"}},
		foods:  []string{"iskender"},
	}
	l := NewLoader(p, zerolog.Nop())
	l.Load(context.Background())

	p.cities = map[string][]string{"Antalya": {"Muratpaşa"}}
	got := l.Refresh(context.Background())
	assert.True(t, got.HasCity("Antalya"))
	assert.False(t, got.HasCity("Bursa"))

	p.citiesErr = errors.New("down")
	got = l.Refresh(context.Background())
	assert.Equal(t, model.SourceFallback, got.Source)
	assert.False(t, got.HasCity("Antalya"))
}

func TestCurrent_BeforeLoadIsFallback(t *testing.T) {
	l := NewLoader(&fakeProvider{}, zerolog.Nop())
	assert.Equal(t, Fallback(), l.Current())
}

func TestFallback_Contents(t *testing.T) {
	f := Fallback()
	require.Len(t, f.Cities, 3)
	assert.Len(t, f.Cities["İstanbul"], 39)
	assert.Len(t, f.Cities["Ankara"], 10)
	assert.Len(t, f.Cities["İzmir"], 10)
	assert.Len(t, f.FoodCategories, 23)

	// Callers may not corrupt later copies.
	f.Cities["Ankara"][0] = "x"
	assert.Equal(t, "Çankaya", Fallback().Cities["Ankara"][0])
}

func TestTaxonomy_TurkishOrdering(t *testing.T) {
	f := Fallback()
	assert.Equal(t, []string{"Ankara", "İstanbul", "İzmir"}, f.CityNames())

	districts := f.Districts("Ankara")
	require.Len(t, districts, 10)
	assert.Equal(t, []string{"Altındağ", "Çankaya", "Etimesgut"}, districts[:3])
	assert.Equal(t, "Yenimahalle", districts[9])

	// The source order is untouched.
	assert.Equal(t, "Çankaya", f.Cities["Ankara"][0])
	assert.Nil(t, f.Districts("Bursa"))
}

func TestFold(t *testing.T) {
	tests := map[string]string{
		"Kadıköy":   "kadikoy",
		"İstanbul":  "istanbul",
		"ŞİŞLİ":     "sisli",
		"çiğ köfte": "cig kofte",
		"Üsküdar":   "uskudar",
	}
	for in, want := range tests {
		assert.Equal(t, want, Fold(in), in)
	}
}

func TestSuggest(t *testing.T) {
	values := Fallback().Cities["İstanbul"]

	got := Suggest(values, "kad", 5)
	assert.Equal(t, []string{"Kadıköy"}, got)

	// Prefix matches come before substring matches.
	got = Suggest(values, "sul", 5)
	assert.Equal(t, []string{"Sultanbeyli", "Sultangazi", "Eyüpsultan"}, got)

	got = Suggest(values, "a", 3)
	assert.Len(t, got, 3)

	assert.Nil(t, Suggest(values, "   ", 5))
	assert.Empty(t, Suggest(values, "zzz", 5))
}

func TestResolve(t *testing.T) {
	values := Fallback().Cities["İstanbul"]

	got, ok := Resolve(values, "  kadikoy ")
	assert.True(t, ok)
	assert.Equal(t, "Kadıköy", got)

	_, ok = Resolve(values, "kadi")
	assert.False(t, ok)
}
