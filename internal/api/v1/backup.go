package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	mw "github.com/ayushbarthwal/eatsafe/internal/api/middleware"
	"github.com/ayushbarthwal/eatsafe/internal/backup"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
)

// defaultAuditLogLimit bounds the audit log returned without ?limit=.
const defaultAuditLogLimit = 500

// BackupAuditLog handles GET /api/backup-auditlog
func (c *Controller) BackupAuditLog(ctx echo.Context) error {
	limit := defaultAuditLogLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.HandleError(ctx, errors.ValidationError("limit must be a positive integer"), "Invalid limit")
		}
		limit = n
	}

	entries, err := c.Repos.BackupLogs.List(ctx.Request().Context(), limit)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list backup audit log")
	}
	return ctx.JSON(http.StatusOK, mapSlice(entries, newBackupLogResponse))
}

// CreateBackupSnapshot handles POST /api/create-backup-snapshot. The caller
// is taken from the X-User header. The run is reported as failed only when
// no target stored the archive.
func (c *Controller) CreateBackupSnapshot(ctx echo.Context) error {
	if c.Backups == nil {
		return c.HandleError(ctx, echo.NewHTTPError(http.StatusServiceUnavailable, "backups are disabled"),
			"Backups are disabled")
	}

	user := strings.TrimSpace(ctx.Request().Header.Get(mw.HeaderUser))
	if user == "" {
		user = "system"
	}

	report, err := c.Backups.RunBackup(ctx.Request().Context(), backup.RunOptions{
		Action: entities.BackupActionSnapshot,
		User:   user,
	})
	if report == nil || len(report.Failed()) == len(report.Results) {
		if err == nil {
			err = errors.Newf("backup produced no archive").Category(errors.CategoryBackup).Build()
		}
		return c.HandleError(ctx, err, "Failed to create backup snapshot")
	}
	if err != nil {
		c.log.WithContext(ctx.Request().Context()).Warn("backup stored on some targets only",
			logger.String("backup_id", report.Metadata.ID),
			logger.Int("failed", len(report.Failed())))
	}

	resp := BackupSnapshotResponse{
		BackupID:  report.Metadata.ID,
		Timestamp: report.Metadata.Timestamp,
		SizeBytes: report.Metadata.Size,
		Checksum:  report.Metadata.Checksum,
	}
	for _, res := range report.Results {
		r := BackupTargetResult{Target: res.Target, Location: res.Location}
		if res.Err != nil {
			r.Error = res.Err.Error()
		}
		resp.Targets = append(resp.Targets, r)
	}
	return ctx.JSON(http.StatusCreated, resp)
}
