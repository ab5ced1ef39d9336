// Package backup provides the backup command for EatSafe
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayushbarthwal/eatsafe/internal/app"
	"github.com/ayushbarthwal/eatsafe/internal/backup"
	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

const backupTimeout = 10 * time.Minute

// Command creates and returns the backup command
func Command(settings *conf.Settings) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Perform an immediate backup of the database and configuration",
		Long:  `Backup command uses the configured backup settings to archive the database and a sanitized copy of the configuration to every backup target.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(cmd.Context(), cmd.OutOrStdout(), settings, user)
		},
	}

	cmd.Flags().StringVar(&user, "user", defaultUser(), "Name recorded in the backup audit log")
	return cmd
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "cli"
}

func runBackup(ctx context.Context, out io.Writer, settings *conf.Settings, user string) error {
	if !settings.Backup.Enabled {
		return errors.Newf("backup functionality is not enabled in configuration").
			Component("backup").
			Category(errors.CategoryConfiguration).
			Build()
	}

	a, err := app.New(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	manager, err := a.BackupManager(ctx)
	if err != nil {
		return fmt.Errorf("failed to create backup manager: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, backupTimeout)
	defer cancel()

	report, err := manager.RunBackup(ctx, backup.RunOptions{Action: entities.BackupActionManual, User: user})
	if report != nil {
		printReport(out, report)
	}
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	_, _ = fmt.Fprintln(out, "Backup completed successfully")
	return nil
}

func printReport(out io.Writer, report *backup.Report) {
	_, _ = fmt.Fprintf(out, "Backup %s (%d bytes, sha256 %s)\n",
		report.Metadata.ID, report.Metadata.Size, report.Metadata.Checksum)
	for _, res := range report.Results {
		if res.Err != nil {
			_, _ = fmt.Fprintf(out, "  %-6s FAILED  %v\n", res.Target, res.Err)
			continue
		}
		_, _ = fmt.Fprintf(out, "  %-6s ok      %s\n", res.Target, res.Location)
	}
}
