package repository

import (
	"context"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
)

// InspectorRepository provides access to the inspectors table.
type InspectorRepository interface {
	Create(ctx context.Context, inspector *entities.Inspector) error

	// GetByID returns ErrInspectorNotFound if the inspector does not exist.
	GetByID(ctx context.Context, id uint) (*entities.Inspector, error)

	// GetAll returns every inspector ordered by name.
	GetAll(ctx context.Context) ([]*entities.Inspector, error)

	// Delete removes an inspector and detaches their quality tests.
	Delete(ctx context.Context, id uint) error
}
