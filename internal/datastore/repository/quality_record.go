package repository

import (
	"context"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
)

// QualityTestRepository provides access to the quality_tests table. Tests are
// immutable records, so there is no update or delete.
type QualityTestRepository interface {
	// Create inserts test after checking that its batch and, when set, its
	// inspector exist. A zero TestDate is set to the current time.
	Create(ctx context.Context, test *entities.QualityTest) error

	// GetByID returns ErrQualityTestNotFound if the test does not exist.
	GetByID(ctx context.Context, id uint) (*entities.QualityTest, error)

	// List returns tests newest first with food, supplier and inspector names.
	List(ctx context.Context, filter QualityTestFilter) ([]QualityTestRow, error)

	// Count returns the number of tests.
	Count(ctx context.Context) (int64, error)
}
