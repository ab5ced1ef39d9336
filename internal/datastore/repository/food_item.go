package repository

import (
	"context"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
)

// FoodItemRepository provides access to the food_items table.
type FoodItemRepository interface {
	// Create inserts item and sets its ID.
	Create(ctx context.Context, item *entities.FoodItem) error

	// GetByID returns ErrFoodItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id uint) (*entities.FoodItem, error)

	// GetAll returns every item ordered by ID.
	GetAll(ctx context.Context) ([]*entities.FoodItem, error)

	// Update replaces the editable fields of item.
	Update(ctx context.Context, item *entities.FoodItem) error

	// Delete removes an item. Items used by batches cannot be deleted.
	Delete(ctx context.Context, id uint) error

	// Count returns the number of items.
	Count(ctx context.Context) (int64, error)
}
