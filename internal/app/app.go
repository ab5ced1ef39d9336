// Package app assembles the EatSafe components from settings. The CLI
// commands build an App, use the parts they need and close it.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/ayushbarthwal/eatsafe/internal/alerts"
	"github.com/ayushbarthwal/eatsafe/internal/backup"
	"github.com/ayushbarthwal/eatsafe/internal/backup/sources"
	"github.com/ayushbarthwal/eatsafe/internal/backup/targets"
	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/datastore"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/repository"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
	"github.com/ayushbarthwal/eatsafe/internal/observability"
	"github.com/ayushbarthwal/eatsafe/internal/quality"
	"github.com/ayushbarthwal/eatsafe/internal/telemetry"
)

// App holds the long-lived components shared by the commands.
type App struct {
	Settings *conf.Settings
	Log      logger.Logger
	Metrics  *observability.Metrics
	Store    datastore.Manager
	Repos    *repository.Repositories

	central  *logger.CentralLogger
	reporter *telemetry.Reporter
	alerts   *alerts.Dispatcher
}

// InitLogging installs the central logger configured in settings. Debug mode
// lowers the default level.
func InitLogging(settings *conf.Settings) (*logger.CentralLogger, error) {
	cfg := settings.Logging
	if settings.Debug {
		cfg.DefaultLevel = "debug"
	}
	cl, err := logger.NewCentralLogger(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetGlobal(cl)
	return cl, nil
}

// New initializes logging, telemetry and metrics, then opens and migrates
// the database. Demo rows are inserted when seeding is enabled.
func New(ctx context.Context, settings *conf.Settings) (*App, error) {
	central, err := InitLogging(settings)
	if err != nil {
		return nil, err
	}
	a := &App{
		Settings: settings,
		Log:      central.Module("main"),
		central:  central,
	}

	a.reporter, err = telemetry.New(&settings.Telemetry.Sentry, settings.Version,
		telemetry.WithLogger(central.Module("telemetry")))
	if err != nil {
		_ = central.Close()
		return nil, err
	}
	a.reporter.Install()

	a.Metrics, err = observability.NewMetrics()
	if err != nil {
		a.closeAll()
		return nil, err
	}

	a.Store, err = datastore.Open(&settings.Database, datastore.Options{
		Logger:        central.Module("datastore"),
		SlowThreshold: settings.Database.SlowThreshold,
		Metrics:       a.Metrics.Datastore,
	})
	if err != nil {
		a.closeAll()
		return nil, err
	}
	if err := a.Store.Initialize(ctx); err != nil {
		a.closeAll()
		return nil, err
	}
	a.Log.Info("database ready",
		logger.String("type", a.Store.Type()),
		logger.String("location", a.Store.Path()))

	if settings.Database.Seed {
		seeded, err := datastore.Seed(ctx, a.Store.DB())
		if err != nil {
			a.closeAll()
			return nil, errors.New(err).
				Component("datastore").
				Category(errors.CategoryDatabase).
				Context("operation", "seed").
				Build()
		}
		if seeded {
			a.Log.Info("inserted demo data")
		}
	}

	a.Repos = repository.New(a.Store.DB())
	return a, nil
}

// QualityService builds the quality service together with the alert
// dispatcher it reports to. The dispatcher is closed by Close.
func (a *App) QualityService() (*quality.Service, error) {
	source, err := quality.NewReadingSource(&a.Settings.Quality, a.central.Module("sensor"))
	if err != nil {
		return nil, err
	}

	opts := []quality.Option{
		quality.WithMetrics(a.Metrics.Quality),
		quality.WithCacheTTL(a.Settings.Cache.DashboardTTL),
		quality.WithLogger(a.central.Module("quality")),
	}

	if a.alerts == nil {
		a.alerts, err = alerts.NewFromSettings(&a.Settings.Alerts, a.Metrics.Alerts, a.central.Module("alerts"))
		if err != nil {
			return nil, err
		}
	}
	if a.alerts != nil {
		opts = append(opts, quality.WithAlerts(a.alerts))
	}

	return quality.NewService(a.Repos, source, opts...), nil
}

// BackupManager builds a backup manager for the configured database and
// targets. SQLite is snapshotted with VACUUM INTO; other databases are
// exported table by table.
func (a *App) BackupManager(ctx context.Context) (*backup.Manager, error) {
	var source backup.Source
	if v, ok := a.Store.(sources.Vacuumer); ok && a.Store.Type() == conf.DBTypeSQLite {
		source = sources.NewSQLiteSource(v)
	} else {
		source = sources.NewJSONExportSource(a.Store.DB(), a.Store.Type())
	}

	log := a.central.Module("backup")
	tgts, err := targets.FromSettings(ctx, &a.Settings.Backup, log)
	if err != nil {
		return nil, err
	}

	return backup.NewManager(source, tgts,
		backup.WithRetention(a.Settings.Backup.Retention),
		backup.WithSettings(a.Settings),
		backup.WithAuditLog(a.Repos.BackupLogs),
		backup.WithMetrics(a.Metrics.Backup),
		backup.WithLogger(log),
		backup.WithTempDir(os.TempDir()),
	)
}

// Logger returns a module logger from the central logger.
func (a *App) Logger(module string) logger.Logger {
	return a.central.Module(module)
}

// Close shuts the alert dispatcher, the database and telemetry down, in that
// order, and flushes the logs.
func (a *App) Close() error {
	return a.closeAll()
}

func (a *App) closeAll() error {
	var errs []error
	if err := a.alerts.Close(); err != nil {
		errs = append(errs, fmt.Errorf("alert dispatcher: %w", err))
	}
	a.alerts = nil

	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
		a.Store = nil
	}

	if a.reporter != nil {
		a.reporter.Close()
		a.reporter = nil
	}

	if a.central != nil {
		if err := a.central.Flush(); err != nil {
			errs = append(errs, fmt.Errorf("logger: %w", err))
		}
	}
	return errors.Join(errs...)
}
