package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

const component = "datastore"

// Sentinel errors for repository operations.
var (
	// ErrFoodItemNotFound indicates the requested food item does not exist.
	ErrFoodItemNotFound = errors.NewStd("food item not found")

	// ErrSupplierNotFound indicates the requested supplier does not exist.
	ErrSupplierNotFound = errors.NewStd("supplier not found")

	// ErrBatchNotFound indicates the requested batch does not exist.
	ErrBatchNotFound = errors.NewStd("batch not found")

	// ErrInspectorNotFound indicates the requested inspector does not exist.
	ErrInspectorNotFound = errors.NewStd("inspector not found")

	// ErrQualityTestNotFound indicates the requested quality test does not exist.
	ErrQualityTestNotFound = errors.NewStd("quality test not found")

	// ErrNoActiveBatch indicates there is no batch to auto-test.
	ErrNoActiveBatch = errors.NewStd("no active batch")

	// ErrDuplicateKey indicates a unique constraint violation.
	ErrDuplicateKey = errors.NewStd("duplicate key")

	// ErrInUse indicates the row is still referenced by other rows.
	ErrInUse = errors.NewStd("record is referenced by other records")
)

func notFound(sentinel error, id uint) error {
	return errors.New(sentinel).
		Component(component).
		Category(errors.CategoryNotFound).
		Context("id", id).
		Build()
}

func inUse(what string, id uint, refs int64, by string) error {
	return errors.New(fmt.Errorf("%s %d is referenced by %d %s: %w", what, id, refs, by, ErrInUse)).
		Component(component).
		Category(errors.CategoryConflict).
		Build()
}

// dbError classifies a GORM error. Duplicate keys and foreign key violations
// become conflicts, everything else a database error carrying the operation.
func dbError(op, table string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.New(fmt.Errorf("%s: %w", table, ErrDuplicateKey)).
			Component(component).
			Category(errors.CategoryConflict).
			Context("operation", op).
			Build()
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.New(fmt.Errorf("%s: %w", table, ErrInUse)).
			Component(component).
			Category(errors.CategoryConflict).
			Context("operation", op).
			Build()
	}
	return errors.New(fmt.Errorf("%s %s: %w", op, table, err)).
		Component(component).
		Category(errors.CategoryDatabase).
		Context("operation", op).
		Context("table", table).
		Build()
}
