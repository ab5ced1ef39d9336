package repository

import (
	"context"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
)

// BatchRepository provides access to the batches table.
type BatchRepository interface {
	// Create inserts batch. The referenced food item and supplier must exist,
	// otherwise ErrFoodItemNotFound or ErrSupplierNotFound is returned.
	// An empty status defaults to Active.
	Create(ctx context.Context, batch *entities.Batch) error

	// GetByID returns ErrBatchNotFound if the batch does not exist.
	GetByID(ctx context.Context, id uint) (*entities.Batch, error)

	// GetAll returns every batch ordered by ID.
	GetAll(ctx context.Context) ([]*entities.Batch, error)

	// Update replaces the editable fields of batch, checking references
	// like Create.
	Update(ctx context.Context, batch *entities.Batch) error

	// UpdateStatus sets the status of one batch.
	UpdateStatus(ctx context.Context, id uint, status entities.BatchStatus) error

	// LatestActive returns the most recently created Active batch, or
	// ErrNoActiveBatch.
	LatestActive(ctx context.Context) (*entities.Batch, error)

	// Delete removes a batch. Batches with quality tests cannot be deleted;
	// predictions referencing the batch are detached.
	Delete(ctx context.Context, id uint) error

	// Count returns the number of batches.
	Count(ctx context.Context) (int64, error)
}
