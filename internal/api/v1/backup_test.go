package v1

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ayushbarthwal/eatsafe/internal/backup"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

func TestCreateBackupSnapshotDisabled(t *testing.T) {
	env := setupTestEnvironment(t)
	rec := env.do(http.MethodPost, "/api/create-backup-snapshot", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCreateBackupSnapshot(t *testing.T) {
	report := &backup.Report{
		Metadata: backup.Metadata{ID: "b-1", Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Size: 2048, Checksum: "abc"},
		Results: []backup.TargetResult{
			{Target: "local", Location: "/var/backups/eatsafe-backup-x.tar.gz"},
			{Target: "s3", Err: errors.NewStd("access denied")},
		},
	}

	tests := []struct {
		name     string
		header   []string
		wantUser string
		report   *backup.Report
		err      error
		wantCode int
	}{
		{"user from header", []string{"X-User", "alice"}, "alice", report, errors.NewStd("s3: access denied"), http.StatusCreated},
		{"defaults to system", nil, "system", report, nil, http.StatusCreated},
		{"source failure", nil, "system", nil,
			errors.Newf("failed to snapshot").Category(errors.CategoryDatabase).Build(), http.StatusInternalServerError},
		{"all targets failed", nil, "system", &backup.Report{Results: []backup.TargetResult{{Target: "local", Err: errors.NewStd("full")}}},
			errors.Newf("local: full").Category(errors.CategoryBackup).Build(), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &MockBackupRunner{}
			runner.On("RunBackup", mock.Anything, backup.RunOptions{Action: entities.BackupActionSnapshot, User: tt.wantUser}).
				Return(tt.report, tt.err)
			env := setupTestEnvironment(t, WithBackups(runner))

			rec := env.do(http.MethodPost, "/api/create-backup-snapshot", "", tt.header...)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			runner.AssertExpectations(t)

			if tt.wantCode == http.StatusCreated {
				resp := decode[BackupSnapshotResponse](t, rec)
				assert.Equal(t, "b-1", resp.BackupID)
				assert.Equal(t, int64(2048), resp.SizeBytes)
				require.Len(t, resp.Targets, 2)
				assert.Empty(t, resp.Targets[0].Error)
				assert.Equal(t, "access denied", resp.Targets[1].Error)
			}
		})
	}
}

func TestBackupAuditLog(t *testing.T) {
	env := setupTestEnvironment(t)
	ctx := t.Context()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 3 {
		require.NoError(t, env.repos.BackupLogs.Create(ctx, &entities.BackupLog{
			BackupID:  "id",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Action:    entities.BackupActionSnapshot,
			User:      "system",
			Target:    "local",
			Status:    entities.BackupStatusSuccess,
		}))
	}

	rec := env.do(http.MethodGet, "/api/backup-auditlog", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entries := decode[[]BackupLogResponse](t, rec)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp))
	assert.Equal(t, "system", entries[0].User)

	rec = env.do(http.MethodGet, "/api/backup-auditlog?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]BackupLogResponse](t, rec), 1)

	rec = env.do(http.MethodGet, "/api/backup-auditlog?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
