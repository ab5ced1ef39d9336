// Package datastore opens the EatSafe database and manages its schema.
//
// A Manager owns one GORM connection for SQLite, MySQL or PostgreSQL. Data
// access goes through the repository subpackage.
package datastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
	"github.com/ayushbarthwal/eatsafe/internal/observability/metrics"
)

// Manager defines the interface for database lifecycle operations.
type Manager interface {
	// Initialize creates or updates the schema.
	Initialize(ctx context.Context) error
	// DB returns the underlying GORM database.
	DB() *gorm.DB
	// Type returns conf.DBTypeSQLite, conf.DBTypeMySQL or conf.DBTypePostgres.
	Type() string
	// Path returns the database location (file path for SQLite, host:port/database otherwise).
	Path() string
	// Ping checks the connection and refreshes pool metrics.
	Ping(ctx context.Context) error
	// Close closes the database connection.
	Close() error
}

// Options holds settings shared by every manager.
type Options struct {
	// Logger receives SQL traces, slow queries and errors.
	Logger logger.Logger
	// SlowThreshold marks queries to log at WARN; zero disables.
	SlowThreshold time.Duration
	// Metrics records per-operation counters when set.
	Metrics *metrics.DatastoreMetrics
}

// Open creates the manager for the configured database type.
func Open(settings *conf.DatabaseSettings, opts Options) (Manager, error) {
	switch settings.Type {
	case conf.DBTypeSQLite, "":
		return NewSQLiteManager(settings.SQLite.Path, opts)
	case conf.DBTypeMySQL:
		return NewMySQLManager(&settings.MySQL, opts)
	case conf.DBTypePostgres:
		return NewPostgresManager(&settings.Postgres, opts)
	}
	return nil, errors.Newf("unsupported database type %q", settings.Type).
		Component("datastore").
		Category(errors.CategoryConfiguration).
		Build()
}

func managerLogger(opts Options) logger.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return logger.Global().Module("datastore")
}

func newGormConfig(opts Options) *gorm.Config {
	log := managerLogger(opts)
	return &gorm.Config{
		Logger:         logger.NewGormLoggerAdapter(log, opts.SlowThreshold),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// baseManager implements the parts of Manager shared by every dialect.
type baseManager struct {
	db       *gorm.DB
	dbType   string
	location string
	metrics  *metrics.DatastoreMetrics
}

func newBaseManager(db *gorm.DB, dbType, location string, opts Options) (*baseManager, error) {
	if err := RegisterMetricsCallbacks(db, opts.Metrics); err != nil {
		return nil, fmt.Errorf("failed to register metrics callbacks: %w", err)
	}
	return &baseManager{
		db:       db,
		dbType:   dbType,
		location: location,
		metrics:  opts.Metrics,
	}, nil
}

// Initialize runs AutoMigrate for every entity.
func (m *baseManager) Initialize(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(entities.All()...); err != nil {
		return errors.New(fmt.Errorf("failed to migrate schema: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("db_type", m.dbType).
			Build()
	}
	return nil
}

// DB returns the underlying GORM database.
func (m *baseManager) DB() *gorm.DB {
	return m.db
}

// Type returns the database type.
func (m *baseManager) Type() string {
	return m.dbType
}

// Path returns the database location.
func (m *baseManager) Path() string {
	return m.location
}

// Ping checks the connection and refreshes the pool gauges.
func (m *baseManager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.New(fmt.Errorf("database ping failed: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	stats := sqlDB.Stats()
	m.metrics.UpdateConnectionMetrics(stats.OpenConnections, stats.InUse)
	return nil
}

// Close closes the database connection.
func (m *baseManager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	return sqlDB.Close()
}

// SQLiteManager handles the embedded SQLite database.
type SQLiteManager struct {
	*baseManager
}

// NewSQLiteManager opens or creates the SQLite database at dbPath, creating
// its directory if needed.
func NewSQLiteManager(dbPath string, opts Options) (*SQLiteManager, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, errors.New(fmt.Errorf("failed to create database directory: %w", err)).
				Component("datastore").
				Category(errors.CategoryFileIO).
				Context("path", dir).
				Build()
		}
	}

	// Build DSN with recommended SQLite pragmas
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON", dbPath)

	db, err := gorm.Open(sqlite.Open(dsn), newGormConfig(opts))
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to open SQLite database: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("path", dbPath).
			Build()
	}

	base, err := newBaseManager(db, conf.DBTypeSQLite, dbPath, opts)
	if err != nil {
		return nil, err
	}

	libVersion, _, _ := sqlite3.Version()
	managerLogger(opts).Debug("opened sqlite database",
		logger.String("path", dbPath),
		logger.String("sqlite_version", libVersion))
	return &SQLiteManager{baseManager: base}, nil
}

// VacuumInto writes a consistent copy of the database to dest, which must
// not exist yet.
func (m *SQLiteManager) VacuumInto(ctx context.Context, dest string) error {
	if err := m.db.WithContext(ctx).Exec("VACUUM INTO ?", dest).Error; err != nil {
		return errors.New(fmt.Errorf("vacuum into %s failed: %w", dest, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return nil
}
