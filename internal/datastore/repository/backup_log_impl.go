package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
)

const tableBackupLogs = "backup_logs"

type backupLogRepository struct {
	db *gorm.DB
}

// NewBackupLogRepository creates a new BackupLogRepository.
func NewBackupLogRepository(db *gorm.DB) BackupLogRepository {
	return &backupLogRepository{db: db}
}

func (r *backupLogRepository) Create(ctx context.Context, entry *entities.BackupLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	return dbError("create", tableBackupLogs, r.db.WithContext(ctx).Create(entry).Error)
}

func (r *backupLogRepository) List(ctx context.Context, limit int) ([]*entities.BackupLog, error) {
	query := r.db.WithContext(ctx).Order("timestamp DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []*entities.BackupLog
	err := query.Find(&entries).Error
	return entries, dbError("list", tableBackupLogs, err)
}
