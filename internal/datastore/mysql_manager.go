package datastore

import (
	"fmt"
	"net"
	"strconv"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

// Connection pool limits for server databases.
const (
	maxIdleConns    = 10
	maxOpenConns    = 50
	connMaxLifetime = time.Hour
)

// MySQLManager handles a MySQL database.
type MySQLManager struct {
	*baseManager
}

// NewMySQLManager connects to the MySQL server described by cfg.
func NewMySQLManager(cfg *conf.SQLServerSettings, opts Options) (*MySQLManager, error) {
	db, err := gorm.Open(mysql.Open(mysqlDSN(cfg)), newGormConfig(opts))
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to open MySQL database: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("host", cfg.Host).
			Build()
	}
	if err := configurePool(db); err != nil {
		return nil, err
	}

	base, err := newBaseManager(db, conf.DBTypeMySQL, fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database), opts)
	if err != nil {
		return nil, err
	}
	return &MySQLManager{baseManager: base}, nil
}

// mysqlDSN builds the driver DSN. Credentials are escaped by the driver.
func mysqlDSN(cfg *conf.SQLServerSettings) string {
	dc := mysqldriver.NewConfig()
	dc.User = cfg.Username
	dc.Passwd = cfg.Password
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dc.DBName = cfg.Database
	dc.ParseTime = true
	dc.Loc = time.UTC
	dc.Params = map[string]string{"charset": "utf8mb4"}
	return dc.FormatDSN()
}

func configurePool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	return nil
}
