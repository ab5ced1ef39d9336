package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

const tableSuppliers = "suppliers"

type supplierRepository struct {
	db *gorm.DB
}

// NewSupplierRepository creates a new SupplierRepository.
func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) Create(ctx context.Context, supplier *entities.Supplier) error {
	return dbError("create", tableSuppliers, r.db.WithContext(ctx).Create(supplier).Error)
}

func (r *supplierRepository) GetByID(ctx context.Context, id uint) (*entities.Supplier, error) {
	var supplier entities.Supplier
	err := r.db.WithContext(ctx).First(&supplier, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(ErrSupplierNotFound, id)
	}
	if err != nil {
		return nil, dbError("get", tableSuppliers, err)
	}
	return &supplier, nil
}

func (r *supplierRepository) GetAll(ctx context.Context) ([]*entities.Supplier, error) {
	var suppliers []*entities.Supplier
	err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&suppliers).Error
	return suppliers, dbError("list", tableSuppliers, err)
}

func (r *supplierRepository) Update(ctx context.Context, supplier *entities.Supplier) error {
	result := r.db.WithContext(ctx).Model(&entities.Supplier{}).
		Where("id = ?", supplier.ID).
		Updates(map[string]any{
			"name":         supplier.Name,
			"contact_name": supplier.ContactName,
			"phone":        supplier.Phone,
			"email":        supplier.Email,
			"address":      supplier.Address,
		})
	if result.Error != nil {
		return dbError("update", tableSuppliers, result.Error)
	}
	if result.RowsAffected == 0 {
		return checkExists(ctx, r.db, &entities.Supplier{}, tableSuppliers, ErrSupplierNotFound, supplier.ID)
	}
	return nil
}

func (r *supplierRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		refs, err := countRefs(tx, &entities.Batch{}, "supplier_id", id)
		if err != nil {
			return dbError("delete", tableSuppliers, err)
		}
		if refs > 0 {
			return inUse("supplier", id, refs, "batches")
		}

		result := tx.Delete(&entities.Supplier{}, id)
		if result.Error != nil {
			return dbError("delete", tableSuppliers, result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound(ErrSupplierNotFound, id)
		}
		return nil
	})
}

func (r *supplierRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Supplier{}).Count(&count).Error
	return count, dbError("count", tableSuppliers, err)
}
