package repository

import (
	"context"

	"gorm.io/gorm"
)

// checkExists returns a not-found error when no row of model has id. Updates
// that write identical values affect zero rows on MySQL, so a zero
// RowsAffected alone does not prove the row is missing.
func checkExists(ctx context.Context, db *gorm.DB, model any, table string, sentinel error, id uint) error {
	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return dbError("get", table, err)
	}
	if count == 0 {
		return notFound(sentinel, id)
	}
	return nil
}

// countRefs counts rows of model whose column equals id.
func countRefs(tx *gorm.DB, model any, column string, id uint) (int64, error) {
	var refs int64
	err := tx.Model(model).Where(column+" = ?", id).Count(&refs).Error
	return refs, err
}
