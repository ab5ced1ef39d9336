// Package backup snapshots the database into a tar.gz archive and stores it
// on one or more targets.
//
// An archive contains the database snapshot, a manifest.yaml describing it
// and a sanitized copy of the running configuration.
package backup

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/repository"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
	"github.com/ayushbarthwal/eatsafe/internal/observability/metrics"
)

const (
	// ArchivePrefix starts every archive file name.
	ArchivePrefix = "eatsafe-backup-"
	// ArchiveSuffix ends every archive file name.
	ArchiveSuffix = ".tar.gz"

	archiveTimeLayout   = "20060102T150405Z"
	defaultStoreTimeout = 15 * time.Minute
	component           = "backup"
)

// Source produces a consistent copy of the database.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	// Type is recorded in the manifest, e.g. "sqlite" or "mysql".
	Type() string
	// Dump writes the snapshot into dir and returns the file path.
	Dump(ctx context.Context, dir string) (string, error)
}

// Target stores archives.
type Target interface {
	// Name identifies the target in logs, metrics and the audit log.
	Name() string
	// Store copies the archive at archivePath and returns where it was stored.
	Store(ctx context.Context, archivePath string, meta *Metadata) (string, error)
	// List returns the archives held by the target.
	List(ctx context.Context) ([]ArchiveInfo, error)
	// Delete removes one archive by file name.
	Delete(ctx context.Context, name string) error
}

// ArchiveInfo describes one stored archive.
type ArchiveInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// IsArchiveName reports whether name looks like an archive this package
// created. Targets only list and prune such files.
func IsArchiveName(name string) bool {
	return strings.HasPrefix(name, ArchivePrefix) && strings.HasSuffix(name, ArchiveSuffix) &&
		!strings.ContainsAny(name, `/\`)
}

// RunOptions describes who asked for a backup.
type RunOptions struct {
	Action string // entities.BackupActionSnapshot or entities.BackupActionManual
	User   string
}

// TargetResult is the outcome on one target.
type TargetResult struct {
	Target   string
	Location string
	Err      error
}

// Report summarises one backup run.
type Report struct {
	Metadata Metadata
	Results  []TargetResult
}

// Failed returns the targets that could not store the archive.
func (r *Report) Failed() []TargetResult {
	var out []TargetResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Manager runs backups.
type Manager struct {
	source       Source
	targets      []Target
	retention    int
	settings     *conf.Settings
	logs         repository.BackupLogRepository
	metrics      *metrics.BackupMetrics
	log          logger.Logger
	tempDir      string
	storeTimeout time.Duration
	now          func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithRetention keeps the newest n archives per target; 0 keeps all.
func WithRetention(n int) Option {
	return func(m *Manager) { m.retention = n }
}

// WithSettings includes a sanitized copy of settings in every archive and
// records settings.Version in the manifest.
func WithSettings(s *conf.Settings) Option {
	return func(m *Manager) { m.settings = s }
}

// WithAuditLog records one BackupLog row per target.
func WithAuditLog(r repository.BackupLogRepository) Option {
	return func(m *Manager) { m.logs = r }
}

// WithMetrics records archive sizes and uploads.
func WithMetrics(bm *metrics.BackupMetrics) Option {
	return func(m *Manager) { m.metrics = bm }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithTempDir sets where snapshots and archives are staged.
func WithTempDir(dir string) Option {
	return func(m *Manager) { m.tempDir = dir }
}

// WithStoreTimeout bounds Store on each target.
func WithStoreTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.storeTimeout = d
		}
	}
}

// NewManager creates a manager backing up source to targets.
func NewManager(source Source, targets []Target, opts ...Option) (*Manager, error) {
	if source == nil {
		return nil, errors.Newf("backup source is required").
			Component(component).
			Category(errors.CategoryConfiguration).
			Build()
	}
	if len(targets) == 0 {
		return nil, errors.Newf("at least one backup target is required").
			Component(component).
			Category(errors.CategoryConfiguration).
			Build()
	}

	m := &Manager{
		source:       source,
		targets:      targets,
		log:          logger.Global().Module(component),
		storeTimeout: defaultStoreTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Targets returns the names of the configured targets.
func (m *Manager) Targets() []string {
	names := make([]string, 0, len(m.targets))
	for _, t := range m.targets {
		names = append(names, t.Name())
	}
	return names
}

// RunBackup snapshots the database, builds the archive and stores it on every
// target. A failing target does not stop the others; their errors are joined
// into the returned error and the report is still returned.
func (m *Manager) RunBackup(ctx context.Context, opts RunOptions) (*Report, error) {
	if opts.Action == "" {
		opts.Action = entities.BackupActionManual
	}
	if opts.User == "" {
		opts.User = "system"
	}

	now := m.now()
	meta := Metadata{
		Version:    metadataVersion,
		ID:         uuid.NewString(),
		Timestamp:  now,
		SourceType: m.source.Type(),
	}
	if m.settings != nil {
		meta.AppVersion = m.settings.Version
	}
	archiveName := ArchivePrefix + now.Format(archiveTimeLayout) + "-" + meta.ID[:8] + ArchiveSuffix

	workDir, err := os.MkdirTemp(m.tempDir, "eatsafe-backup-*")
	if err != nil {
		return nil, m.fail(ctx, opts, &meta, fmt.Errorf("failed to create staging directory: %w", err), errors.CategoryFileIO)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			m.log.Warn("failed to remove staging directory", logger.String("path", workDir), logger.Error(err))
		}
	}()

	m.log.Info("starting backup",
		logger.String("backup_id", meta.ID),
		logger.String("source", m.source.Name()),
		logger.String("action", opts.Action),
		logger.String("user", opts.User))

	snapshot, err := m.source.Dump(ctx, workDir)
	if err != nil {
		return nil, m.fail(ctx, opts, &meta, fmt.Errorf("failed to snapshot %s: %w", m.source.Name(), err), errors.CategoryDatabase)
	}

	archivePath, err := buildArchive(ctx, workDir, archiveName, snapshot, &meta, m.settings)
	if err != nil {
		return nil, m.fail(ctx, opts, &meta, err, errors.CategoryFileIO)
	}
	m.metrics.RecordArchive(meta.Size)

	report := &Report{Metadata: meta}
	var errs []error
	for _, target := range m.targets {
		res := m.store(ctx, target, archivePath, &meta)
		report.Results = append(report.Results, res)
		m.audit(ctx, opts, &meta, res)
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", target.Name(), res.Err))
			continue
		}
		if m.retention > 0 {
			if err := m.Prune(ctx, target); err != nil {
				m.log.Warn("failed to prune old archives",
					logger.String("target", target.Name()),
					logger.Error(err))
			}
		}
	}

	if len(errs) > 0 {
		return report, errors.New(errors.Join(errs...)).
			Component(component).
			Category(errors.CategoryBackup).
			Context("backup_id", meta.ID).
			Context("failed_targets", len(errs)).
			Build()
	}

	m.log.Info("backup completed",
		logger.String("backup_id", meta.ID),
		logger.Int64("size_bytes", meta.Size),
		logger.Int("targets", len(m.targets)))
	return report, nil
}

func (m *Manager) store(ctx context.Context, target Target, archivePath string, meta *Metadata) TargetResult {
	start := time.Now()
	storeCtx, cancel := context.WithTimeout(ctx, m.storeTimeout)
	defer cancel()

	location, err := target.Store(storeCtx, archivePath, meta)
	m.metrics.RecordUpload(target.Name(), err, time.Since(start))
	if err != nil {
		m.log.Error("failed to store backup",
			logger.String("target", target.Name()),
			logger.String("backup_id", meta.ID),
			logger.Error(err))
		return TargetResult{Target: target.Name(), Err: err}
	}

	m.log.Info("backup stored",
		logger.String("target", target.Name()),
		logger.String("location", location),
		logger.Duration("duration", time.Since(start)))
	return TargetResult{Target: target.Name(), Location: location}
}

// fail records a run that failed before any target was reached.
func (m *Manager) fail(ctx context.Context, opts RunOptions, meta *Metadata, err error, category errors.ErrorCategory) error {
	for _, target := range m.targets {
		m.audit(ctx, opts, meta, TargetResult{Target: target.Name(), Err: err})
	}
	return errors.New(err).
		Component(component).
		Category(category).
		Context("backup_id", meta.ID).
		Build()
}

func (m *Manager) audit(ctx context.Context, opts RunOptions, meta *Metadata, res TargetResult) {
	if m.logs == nil {
		return
	}
	entry := &entities.BackupLog{
		BackupID:  meta.ID,
		Timestamp: meta.Timestamp,
		Action:    opts.Action,
		User:      opts.User,
		Target:    res.Target,
		Location:  res.Location,
		SizeBytes: meta.Size,
		Status:    entities.BackupStatusSuccess,
	}
	if res.Err != nil {
		entry.Status = entities.BackupStatusFailed
		entry.Error = res.Err.Error()
	}
	if err := m.logs.Create(context.WithoutCancel(ctx), entry); err != nil {
		m.log.Error("failed to write backup audit log",
			logger.String("backup_id", meta.ID),
			logger.Error(err))
	}
}

// Prune deletes all but the newest retention archives on target. Archive
// names embed their creation time, so name order is age order.
func (m *Manager) Prune(ctx context.Context, target Target) error {
	if m.retention <= 0 {
		return nil
	}

	archives, err := target.List(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(archives))
	for _, a := range archives {
		if IsArchiveName(a.Name) {
			names = append(names, a.Name)
		}
	}
	if len(names) <= m.retention {
		return nil
	}

	slices.Sort(names)
	slices.Reverse(names)

	var errs []error
	for _, name := range names[m.retention:] {
		if err := target.Delete(ctx, name); err != nil {
			errs = append(errs, err)
			continue
		}
		m.log.Debug("pruned old archive",
			logger.String("target", target.Name()),
			logger.String("archive", name))
	}
	return errors.Join(errs...)
}
