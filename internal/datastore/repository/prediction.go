package repository

import (
	"context"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
)

// Prediction list limits.
const (
	DefaultPredictionLimit = 100
	MaxPredictionLimit     = 1000
)

// PredictionRepository provides access to the predictions table.
type PredictionRepository interface {
	// Create inserts prediction. When BatchID is set the batch must exist.
	Create(ctx context.Context, prediction *entities.Prediction) error

	// List returns up to limit predictions, newest first. The limit is
	// clamped to [1, MaxPredictionLimit]; zero selects the default.
	List(ctx context.Context, limit int) ([]*entities.Prediction, error)

	// Count returns the number of predictions.
	Count(ctx context.Context) (int64, error)
}
