package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

const tableBatches = "batches"

type batchRepository struct {
	db *gorm.DB
}

// NewBatchRepository creates a new BatchRepository.
func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &batchRepository{db: db}
}

// checkRefs verifies the food item and supplier of batch exist.
func (r *batchRepository) checkRefs(ctx context.Context, tx *gorm.DB, batch *entities.Batch) error {
	if err := checkExists(ctx, tx, &entities.FoodItem{}, tableFoodItems, ErrFoodItemNotFound, batch.FoodItemID); err != nil {
		return err
	}
	return checkExists(ctx, tx, &entities.Supplier{}, tableSuppliers, ErrSupplierNotFound, batch.SupplierID)
}

func (r *batchRepository) Create(ctx context.Context, batch *entities.Batch) error {
	if batch.Status == "" {
		batch.Status = entities.BatchStatusActive
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.checkRefs(ctx, tx, batch); err != nil {
			return err
		}
		return dbError("create", tableBatches, tx.Create(batch).Error)
	})
}

func (r *batchRepository) GetByID(ctx context.Context, id uint) (*entities.Batch, error) {
	var batch entities.Batch
	err := r.db.WithContext(ctx).First(&batch, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(ErrBatchNotFound, id)
	}
	if err != nil {
		return nil, dbError("get", tableBatches, err)
	}
	return &batch, nil
}

func (r *batchRepository) GetAll(ctx context.Context) ([]*entities.Batch, error) {
	var batches []*entities.Batch
	err := r.db.WithContext(ctx).Order("id ASC").Find(&batches).Error
	return batches, dbError("list", tableBatches, err)
}

func (r *batchRepository) Update(ctx context.Context, batch *entities.Batch) error {
	if batch.Status == "" {
		batch.Status = entities.BatchStatusActive
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkExists(ctx, tx, &entities.Batch{}, tableBatches, ErrBatchNotFound, batch.ID); err != nil {
			return err
		}
		if err := r.checkRefs(ctx, tx, batch); err != nil {
			return err
		}
		err := tx.Model(&entities.Batch{}).
			Where("id = ?", batch.ID).
			Updates(map[string]any{
				"food_item_id":    batch.FoodItemID,
				"supplier_id":     batch.SupplierID,
				"quantity":        batch.Quantity,
				"production_date": batch.ProductionDate,
				"expiry_date":     batch.ExpiryDate,
				"status":          batch.Status,
			}).Error
		return dbError("update", tableBatches, err)
	})
}

func (r *batchRepository) UpdateStatus(ctx context.Context, id uint, status entities.BatchStatus) error {
	result := r.db.WithContext(ctx).Model(&entities.Batch{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return dbError("update", tableBatches, result.Error)
	}
	if result.RowsAffected == 0 {
		return checkExists(ctx, r.db, &entities.Batch{}, tableBatches, ErrBatchNotFound, id)
	}
	return nil
}

func (r *batchRepository) LatestActive(ctx context.Context) (*entities.Batch, error) {
	var batch entities.Batch
	err := r.db.WithContext(ctx).
		Where("status = ?", entities.BatchStatusActive).
		Order("created_at DESC, id DESC").
		First(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New(ErrNoActiveBatch).
			Component(component).
			Category(errors.CategoryNotFound).
			Build()
	}
	if err != nil {
		return nil, dbError("get", tableBatches, err)
	}
	return &batch, nil
}

func (r *batchRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		refs, err := countRefs(tx, &entities.QualityTest{}, "batch_id", id)
		if err != nil {
			return dbError("delete", tableBatches, err)
		}
		if refs > 0 {
			return inUse("batch", id, refs, "quality tests")
		}

		if err := tx.Model(&entities.Prediction{}).
			Where("batch_id = ?", id).
			Update("batch_id", nil).Error; err != nil {
			return dbError("delete", tableBatches, err)
		}

		result := tx.Delete(&entities.Batch{}, id)
		if result.Error != nil {
			return dbError("delete", tableBatches, result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound(ErrBatchNotFound, id)
		}
		return nil
	})
}

func (r *batchRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Batch{}).Count(&count).Error
	return count, dbError("count", tableBatches, err)
}
