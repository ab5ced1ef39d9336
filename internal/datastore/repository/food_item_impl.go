package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

const tableFoodItems = "food_items"

type foodItemRepository struct {
	db *gorm.DB
}

// NewFoodItemRepository creates a new FoodItemRepository.
func NewFoodItemRepository(db *gorm.DB) FoodItemRepository {
	return &foodItemRepository{db: db}
}

func (r *foodItemRepository) Create(ctx context.Context, item *entities.FoodItem) error {
	return dbError("create", tableFoodItems, r.db.WithContext(ctx).Create(item).Error)
}

func (r *foodItemRepository) GetByID(ctx context.Context, id uint) (*entities.FoodItem, error) {
	var item entities.FoodItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(ErrFoodItemNotFound, id)
	}
	if err != nil {
		return nil, dbError("get", tableFoodItems, err)
	}
	return &item, nil
}

func (r *foodItemRepository) GetAll(ctx context.Context) ([]*entities.FoodItem, error) {
	var items []*entities.FoodItem
	err := r.db.WithContext(ctx).Order("id ASC").Find(&items).Error
	return items, dbError("list", tableFoodItems, err)
}

func (r *foodItemRepository) Update(ctx context.Context, item *entities.FoodItem) error {
	result := r.db.WithContext(ctx).Model(&entities.FoodItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"name":        item.Name,
			"category":    item.Category,
			"description": item.Description,
		})
	if result.Error != nil {
		return dbError("update", tableFoodItems, result.Error)
	}
	if result.RowsAffected == 0 {
		return checkExists(ctx, r.db, &entities.FoodItem{}, tableFoodItems, ErrFoodItemNotFound, item.ID)
	}
	return nil
}

func (r *foodItemRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		refs, err := countRefs(tx, &entities.Batch{}, "food_item_id", id)
		if err != nil {
			return dbError("delete", tableFoodItems, err)
		}
		if refs > 0 {
			return inUse("food item", id, refs, "batches")
		}

		result := tx.Delete(&entities.FoodItem{}, id)
		if result.Error != nil {
			return dbError("delete", tableFoodItems, result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound(ErrFoodItemNotFound, id)
		}
		return nil
	})
}

func (r *foodItemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.FoodItem{}).Count(&count).Error
	return count, dbError("count", tableFoodItems, err)
}
