package pantry

import (
	"context"
	"errors"

	"MetricRecipes/internal/model"
)

// ErrNotFound is returned by a Source that has no series for an ingredient.
var ErrNotFound = errors.New("ingredient not found")

// Source defines the interface for fetching ingredient series.
type Source interface {
	FetchSeries(ctx context.Context, name string) (model.Series, error)
	Name() string
}
