package model

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// TaxonomySource tells where a Taxonomy came from.
type TaxonomySource string

const (
	SourceRemote   TaxonomySource = "remote"
	SourceFallback TaxonomySource = "fallback"
)

// Taxonomy is the vocabulary the search form offers. It is always replaced
// as a whole.
type Taxonomy struct {
	Cities         map[string][]string
	FoodCategories []string
	Source         TaxonomySource
}

// HasCity reports whether city is a known city.
func (t Taxonomy) HasCity(city string) bool {
	_, ok := t.Cities[city]
	return ok
}

// CityNames returns the cities in Turkish alphabetical order.
func (t Taxonomy) CityNames() []string {
	names := make([]string, 0, len(t.Cities))
	for name := range t.Cities {
		names = append(names, name)
	}
	sortTurkish(names)
	return names
}

// Districts returns the districts of city in Turkish alphabetical order,
// or nil for an unknown city.
func (t Taxonomy) Districts(city string) []string {
	src, ok := t.Cities[city]
	if !ok {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	sortTurkish(out)
	return out
}

// sortTurkish sorts in place so that Ç follows C, Ş follows S and so on.
func sortTurkish(s []string) {
	collate.New(language.Turkish).SortStrings(s)
}
