package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

const tableQualityTests = "quality_tests"

// qualityRowSelect is shared by every query that returns QualityTestRow.
const qualityRowSelect = "qt.id, qt.batch_id, qt.inspector_id, qt.ph, qt.moisture_pct, qt.bacteria_count, " +
	"qt.result, qt.notes, qt.test_date, f.name AS food_name, s.id AS supplier_id, s.name AS supplier_name, " +
	"i.name AS inspector_name"

type qualityTestRepository struct {
	db *gorm.DB
}

// NewQualityTestRepository creates a new QualityTestRepository.
func NewQualityTestRepository(db *gorm.DB) QualityTestRepository {
	return &qualityTestRepository{db: db}
}

// joinedQualityRows starts a query over quality tests joined with their
// batch, food item, supplier and optional inspector.
func joinedQualityRows(db *gorm.DB) *gorm.DB {
	return db.Table("quality_tests AS qt").
		Select(qualityRowSelect).
		Joins("JOIN batches AS b ON b.id = qt.batch_id").
		Joins("JOIN food_items AS f ON f.id = b.food_item_id").
		Joins("JOIN suppliers AS s ON s.id = b.supplier_id").
		Joins("LEFT JOIN inspectors AS i ON i.id = qt.inspector_id")
}

func (r *qualityTestRepository) Create(ctx context.Context, test *entities.QualityTest) error {
	if test.TestDate.IsZero() {
		test.TestDate = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkExists(ctx, tx, &entities.Batch{}, tableBatches, ErrBatchNotFound, test.BatchID); err != nil {
			return err
		}
		if test.InspectorID != nil {
			if err := checkExists(ctx, tx, &entities.Inspector{}, tableInspectors, ErrInspectorNotFound, *test.InspectorID); err != nil {
				return err
			}
		}
		return dbError("create", tableQualityTests, tx.Create(test).Error)
	})
}

func (r *qualityTestRepository) GetByID(ctx context.Context, id uint) (*entities.QualityTest, error) {
	var test entities.QualityTest
	err := r.db.WithContext(ctx).First(&test, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(ErrQualityTestNotFound, id)
	}
	if err != nil {
		return nil, dbError("get", tableQualityTests, err)
	}
	return &test, nil
}

func (r *qualityTestRepository) List(ctx context.Context, filter QualityTestFilter) ([]QualityTestRow, error) {
	query := joinedQualityRows(r.db.WithContext(ctx))
	if filter.BatchID > 0 {
		query = query.Where("qt.batch_id = ?", filter.BatchID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []QualityTestRow
	err := query.Order("qt.test_date DESC, qt.id DESC").Scan(&rows).Error
	return rows, dbError("list", tableQualityTests, err)
}

func (r *qualityTestRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.QualityTest{}).Count(&count).Error
	return count, dbError("count", tableQualityTests, err)
}
