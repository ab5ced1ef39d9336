package repository

import (
	"context"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
)

// BackupLogRepository provides access to the backup audit log.
type BackupLogRepository interface {
	// Create appends an audit entry. A zero Timestamp is set to now.
	Create(ctx context.Context, entry *entities.BackupLog) error

	// List returns up to limit entries newest first, all when limit is zero.
	List(ctx context.Context, limit int) ([]*entities.BackupLog, error)
}
