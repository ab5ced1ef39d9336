package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
)

const tablePredictions = "predictions"

type predictionRepository struct {
	db *gorm.DB
}

// NewPredictionRepository creates a new PredictionRepository.
func NewPredictionRepository(db *gorm.DB) PredictionRepository {
	return &predictionRepository{db: db}
}

func (r *predictionRepository) Create(ctx context.Context, prediction *entities.Prediction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if prediction.BatchID != nil {
			if err := checkExists(ctx, tx, &entities.Batch{}, tableBatches, ErrBatchNotFound, *prediction.BatchID); err != nil {
				return err
			}
		}
		return dbError("create", tablePredictions, tx.Create(prediction).Error)
	})
}

func (r *predictionRepository) List(ctx context.Context, limit int) ([]*entities.Prediction, error) {
	switch {
	case limit <= 0:
		limit = DefaultPredictionLimit
	case limit > MaxPredictionLimit:
		limit = MaxPredictionLimit
	}

	var predictions []*entities.Prediction
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&predictions).Error
	return predictions, dbError("list", tablePredictions, err)
}

func (r *predictionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Prediction{}).Count(&count).Error
	return count, dbError("count", tablePredictions, err)
}
