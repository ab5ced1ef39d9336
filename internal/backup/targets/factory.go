package targets

import (
	"context"
	"strings"

	"github.com/ayushbarthwal/eatsafe/internal/backup"
	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
)

// FromSettings creates the targets named in settings.Targets. Local is used
// when none are named.
func FromSettings(ctx context.Context, settings *conf.BackupSettings, log logger.Logger) ([]backup.Target, error) {
	names := settings.Targets
	if len(names) == 0 {
		names = []string{conf.BackupTargetLocal}
	}

	seen := make(map[string]bool, len(names))
	out := make([]backup.Target, 0, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if seen[name] {
			continue
		}
		seen[name] = true

		var (
			t   backup.Target
			err error
		)
		switch name {
		case conf.BackupTargetLocal:
			t, err = NewLocalTarget(settings.Local.Path)
		case conf.BackupTargetSFTP:
			t, err = NewSFTPTarget(&settings.SFTP, log)
		case conf.BackupTargetS3:
			t, err = NewS3Target(ctx, &settings.S3)
		default:
			err = errors.Newf("unknown backup target %q", raw).
				Component(component).
				Category(errors.CategoryConfiguration).
				Build()
		}
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
