package datastore

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

// PostgresManager handles a PostgreSQL database through pgx.
type PostgresManager struct {
	*baseManager
}

// NewPostgresManager connects to the PostgreSQL server described by cfg.
func NewPostgresManager(cfg *conf.SQLServerSettings, opts Options) (*PostgresManager, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, sslMode)

	db, err := gorm.Open(postgres.Open(dsn), newGormConfig(opts))
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to open PostgreSQL database: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("host", cfg.Host).
			Build()
	}
	if err := configurePool(db); err != nil {
		return nil, err
	}

	base, err := newBaseManager(db, conf.DBTypePostgres, fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database), opts)
	if err != nil {
		return nil, err
	}
	return &PostgresManager{baseManager: base}, nil
}
