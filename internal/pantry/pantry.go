package pantry

import (
	"context"
	"errors"
	"fmt"
	"log"

	"MetricRecipes/internal/model"
)

// MockSource serves fixed in-memory series for development and testing.
type MockSource struct {
	Data map[string]model.Series
	Err  error
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) FetchSeries(_ context.Context, name string) (model.Series, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	s, ok := m.Data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s, nil
}

// Pantry gathers the ingredient lists recipes are evaluated against.
type Pantry struct {
	Source Source
}

// New creates a new Pantry.
func New(source Source) *Pantry {
	return &Pantry{Source: source}
}

// Gather fetches every ingredient a recipe definition names, in definition
// order. An ingredient the source does not know gets an empty series, so its
// dates resolve as unknown; any other fetch failure aborts.
func (p *Pantry) Gather(ctx context.Context, def model.RecipeDef) ([]model.Ingredient, error) {
	ingredients := make([]model.Ingredient, len(def.Ingredients))
	fetched := make(map[string]model.Series, len(def.Ingredients))

	for i, name := range def.Ingredients {
		series, ok := fetched[name]
		if !ok {
			var err error
			series, err = p.Source.FetchSeries(ctx, name)
			switch {
			case errors.Is(err, ErrNotFound):
				log.Printf("[WARN] %s: ingredient %q not found in %s source, treating as unrecorded", def.Name, name, p.Source.Name())
				series = model.Series{}
			case err != nil:
				return nil, fmt.Errorf("fetch %q: %w", name, err)
			}
			fetched[name] = series
		}
		ingredients[i] = model.Ingredient{Name: name, Values: series}
	}
	return ingredients, nil
}
