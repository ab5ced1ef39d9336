package app

import (
	"context"
	"path/filepath"

	"github.com/ayushbarthwal/eatsafe/internal/api"
	v1 "github.com/ayushbarthwal/eatsafe/internal/api/v1"
	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
)

// Server builds the HTTP server with every API route mounted.
func (a *App) Server(ctx context.Context) (*api.Server, error) {
	svc, err := a.QualityService()
	if err != nil {
		return nil, err
	}

	opts := []v1.Option{
		v1.WithPinger(a.Store),
		v1.WithLogger(a.Logger("api")),
		v1.WithDataDir(a.dataDir()),
	}
	if a.Settings.Backup.Enabled {
		mgr, err := a.BackupManager(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, v1.WithBackups(mgr))
		a.Log.Info("backups enabled", logger.Int("targets", len(mgr.Targets())))
	}

	controller := v1.New(svc, a.Repos, a.Settings, opts...)
	return api.New(a.Settings,
		api.WithLogger(a.Logger("http")),
		api.WithMetrics(a.Metrics),
		api.WithRoutes(controller))
}

// Serve runs the HTTP API until ctx is cancelled or a termination signal
// arrives.
func (a *App) Serve(ctx context.Context) error {
	srv, err := a.Server(ctx)
	if err != nil {
		return err
	}
	a.Log.Info("starting eatsafe",
		logger.String("version", a.Settings.Version),
		logger.String("address", srv.Config().Address()))
	return srv.StartWithGracefulShutdown(ctx)
}

func (a *App) dataDir() string {
	if a.Store.Type() == conf.DBTypeSQLite {
		if dir := filepath.Dir(a.Store.Path()); dir != "" {
			return dir
		}
	}
	return "."
}
