package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

const tableInspectors = "inspectors"

type inspectorRepository struct {
	db *gorm.DB
}

// NewInspectorRepository creates a new InspectorRepository.
func NewInspectorRepository(db *gorm.DB) InspectorRepository {
	return &inspectorRepository{db: db}
}

func (r *inspectorRepository) Create(ctx context.Context, inspector *entities.Inspector) error {
	return dbError("create", tableInspectors, r.db.WithContext(ctx).Create(inspector).Error)
}

func (r *inspectorRepository) GetByID(ctx context.Context, id uint) (*entities.Inspector, error) {
	var inspector entities.Inspector
	err := r.db.WithContext(ctx).First(&inspector, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(ErrInspectorNotFound, id)
	}
	if err != nil {
		return nil, dbError("get", tableInspectors, err)
	}
	return &inspector, nil
}

func (r *inspectorRepository) GetAll(ctx context.Context) ([]*entities.Inspector, error) {
	var inspectors []*entities.Inspector
	err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&inspectors).Error
	return inspectors, dbError("list", tableInspectors, err)
}

// Delete detaches quality tests explicitly rather than relying on ON DELETE
// SET NULL, which SQLite only honours when the constraint existed at table
// creation.
func (r *inspectorRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.QualityTest{}).
			Where("inspector_id = ?", id).
			Update("inspector_id", nil).Error; err != nil {
			return dbError("delete", tableInspectors, err)
		}

		result := tx.Delete(&entities.Inspector{}, id)
		if result.Error != nil {
			return dbError("delete", tableInspectors, result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound(ErrInspectorNotFound, id)
		}
		return nil
	})
}
