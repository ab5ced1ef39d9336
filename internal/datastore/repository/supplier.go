package repository

import (
	"context"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
)

// SupplierRepository provides access to the suppliers table.
type SupplierRepository interface {
	// Create inserts supplier and sets its ID. Duplicate names fail with
	// ErrDuplicateKey.
	Create(ctx context.Context, supplier *entities.Supplier) error

	// GetByID returns ErrSupplierNotFound if the supplier does not exist.
	GetByID(ctx context.Context, id uint) (*entities.Supplier, error)

	// GetAll returns every supplier ordered by name.
	GetAll(ctx context.Context) ([]*entities.Supplier, error)

	// Update replaces the editable fields of supplier. Renaming onto an
	// existing name fails with ErrDuplicateKey.
	Update(ctx context.Context, supplier *entities.Supplier) error

	// Delete removes a supplier. Suppliers with batches cannot be deleted.
	Delete(ctx context.Context, id uint) error

	// Count returns the number of suppliers.
	Count(ctx context.Context) (int64, error)
}
