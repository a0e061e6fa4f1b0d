// Package taxonomy loads the city, district and food category vocabularies.
package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rendis/restfinder/internal/model"
)

// Provider is the remote source of vocabularies. *api.Client implements it.
type Provider interface {
	Cities(ctx context.Context) (map[string][]string, error)
	FoodTypes(ctx context.Context) ([]string, error)
}

// Loader holds the current taxonomy. It never returns an error: any failure
// to fetch yields the built-in table.
type Loader struct {
	provider Provider
	log      zerolog.Logger

	mu      sync.RWMutex
	current model.Taxonomy
}

// NewLoader starts out with the built-in table until Load is called.
func NewLoader(provider Provider, logger zerolog.Logger) *Loader {
	return &Loader{
		provider: provider,
		log:      logger.With().Str("component", "taxonomy").Logger(),
		current:  Fallback(),
	}
}

// Load fetches both vocabularies. The remote taxonomy is used only when
// both fetches succeed with non-empty data; otherwise the whole built-in
// table replaces it.
func (l *Loader) Load(ctx context.Context) model.Taxonomy {
	t, err := l.fetch(ctx)
	if err != nil {
		l.log.Warn().Err(err).Msg("using built-in taxonomy")
		t = Fallback()
	} else {
		l.log.Debug().Int("cities", len(t.Cities)).Int("food_categories", len(t.FoodCategories)).
			Msg("taxonomy loaded")
	}

	l.mu.Lock()
	l.current = t
	l.mu.Unlock()
	return t
}

// Refresh reloads the taxonomy, replacing the current one wholesale.
func (l *Loader) Refresh(ctx context.Context) model.Taxonomy {
	return l.Load(ctx)
}

// Current returns the last loaded taxonomy.
func (l *Loader) Current() model.Taxonomy {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

var errEmpty = errors.New("empty response")

func (l *Loader) fetch(ctx context.Context) (model.Taxonomy, error) {
	if l.provider == nil {
		return model.Taxonomy{}, errors.New("no taxonomy provider")
	}

	cities, err := l.provider.Cities(ctx)
	if err != nil {
		return model.Taxonomy{}, fmt.Errorf("fetching cities: %w", err)
	}
	if len(cities) == 0 {
		return model.Taxonomy{}, fmt.Errorf("fetching cities: %w", errEmpty)
	}

	foods, err := l.provider.FoodTypes(ctx)
	if err != nil {
		return model.Taxonomy{}, fmt.Errorf("fetching food types: %w", err)
	}
	if len(foods) == 0 {
		return model.Taxonomy{}, fmt.Errorf("fetching food types: %w", errEmpty)
	}

	return model.Taxonomy{
		Cities:         cities,
		FoodCategories: foods,
		Source:         model.SourceRemote,
	}, nil
}
