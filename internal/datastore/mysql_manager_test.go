package datastore

import (
	"testing"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
)

func TestMySQLDSNEscapesCredentials(t *testing.T) {
	dsn := mysqlDSN(&conf.SQLServerSettings{
		Host:     "db.internal",
		Port:     3307,
		Username: "eatsafe",
		Password: "p@ss:w/rd",
		Database: "eatsafe",
	})

	parsed, err := mysqldriver.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "eatsafe", parsed.User)
	assert.Equal(t, "p@ss:w/rd", parsed.Passwd)
	assert.Equal(t, "db.internal:3307", parsed.Addr)
	assert.Equal(t, "eatsafe", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, time.UTC, parsed.Loc)
}

// TestMySQLManagerIntegration runs the schema and seed against a real MySQL
// server. It needs Docker and is skipped in short mode.
func TestMySQLManagerIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MySQL container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := t.Context()
	ctr, err := tcmysql.Run(ctx, "mysql:8.0",
		tcmysql.WithDatabase("eatsafe"),
		tcmysql.WithUsername("eatsafe"),
		tcmysql.WithPassword("eatsafe"),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	mgr, err := NewMySQLManager(&conf.SQLServerSettings{
		Host:     host,
		Port:     port.Int(),
		Username: "eatsafe",
		Password: "eatsafe",
		Database: "eatsafe",
	}, Options{Logger: logger.NewDiscardLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	require.NoError(t, mgr.Initialize(ctx))
	require.NoError(t, mgr.Ping(ctx))
	assert.Equal(t, conf.DBTypeMySQL, mgr.Type())

	inserted, err := Seed(ctx, mgr.DB())
	require.NoError(t, err)
	assert.True(t, inserted)

	var count int64
	require.NoError(t, mgr.DB().Model(&entities.Batch{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}
