package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
)

type fileSource struct {
	content string
	err     error
}

func (s *fileSource) Name() string { return "test" }
func (s *fileSource) Type() string { return conf.DBTypeSQLite }

func (s *fileSource) Dump(_ context.Context, dir string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	p := filepath.Join(dir, "snapshot.db")
	return p, os.WriteFile(p, []byte(s.content), 0o600)
}

// memTarget keeps stored archives in memory.
type memTarget struct {
	name     string
	storeErr error

	mu    sync.Mutex
	files map[string][]byte
}

func newMemTarget(name string) *memTarget {
	return &memTarget{name: name, files: make(map[string][]byte)}
}

func (t *memTarget) Name() string { return t.name }

func (t *memTarget) Store(_ context.Context, archivePath string, _ *Metadata) (string, error) {
	if t.storeErr != nil {
		return "", t.storeErr
	}
	data, err := os.ReadFile(archivePath)
	if err != nil {
		return "", err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	name := filepath.Base(archivePath)
	t.files[name] = data
	return "mem://" + t.name + "/" + name, nil
}

func (t *memTarget) List(context.Context) ([]ArchiveInfo, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []ArchiveInfo
	for name, data := range t.files {
		out = append(out, ArchiveInfo{Name: name, Size: int64(len(data))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (t *memTarget) Delete(_ context.Context, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.files, name)
	return nil
}

func (t *memTarget) names() []string {
	list, _ := t.List(context.Background())
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Name)
	}
	return out
}

type recordingLog struct {
	mu      sync.Mutex
	entries []*entities.BackupLog
}

func (r *recordingLog) Create(_ context.Context, e *entities.BackupLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *recordingLog) List(context.Context, int) ([]*entities.BackupLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries, nil
}

func newTestManager(t *testing.T, src Source, targets []Target, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{WithLogger(logger.NewDiscardLogger()), WithTempDir(t.TempDir())}, opts...)
	m, err := NewManager(src, targets, opts...)
	require.NoError(t, err)
	return m
}

// readArchive returns the entries of a tar.gz archive by name.
func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	p := filepath.Join(t.TempDir(), "a.tar.gz")
	require.NoError(t, os.WriteFile(p, data, 0o600))
	f, err := os.Open(p)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)
	out := make(map[string][]byte)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		b, err := io.ReadAll(tr)
		require.NoError(t, err)
		out[hdr.Name] = b
	}
}

func TestNewManagerValidation(t *testing.T) {
	_, err := NewManager(nil, []Target{newMemTarget("a")})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))

	_, err = NewManager(&fileSource{}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestRunBackupWritesArchive(t *testing.T) {
	target := newMemTarget("mem")
	settings := &conf.Settings{Version: "1.2.3"}
	settings.Backup.S3.SecretAccessKey = "super-secret"
	audit := &recordingLog{}

	m := newTestManager(t, &fileSource{content: "database bytes"}, []Target{target},
		WithSettings(settings), WithAuditLog(audit))

	report, err := m.RunBackup(t.Context(), RunOptions{Action: entities.BackupActionManual, User: "alice"})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Empty(t, report.Failed())
	assert.Equal(t, "1.2.3", report.Metadata.AppVersion)
	assert.Equal(t, int64(len("database bytes")), report.Metadata.SnapshotSize)
	assert.Positive(t, report.Metadata.Size)
	assert.Len(t, report.Metadata.Checksum, 64)

	names := target.names()
	require.Len(t, names, 1)
	assert.True(t, IsArchiveName(names[0]))
	assert.Contains(t, names[0], report.Metadata.ID[:8])

	entries := readArchive(t, target.files[names[0]])
	assert.Equal(t, "database bytes", string(entries["snapshot.db"]))
	assert.Contains(t, string(entries[manifestName]), report.Metadata.ID)
	require.Contains(t, entries, configName)
	assert.NotContains(t, string(entries[configName]), "super-secret")

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.Equal(t, report.Metadata.ID, entry.BackupID)
	assert.Equal(t, "alice", entry.User)
	assert.Equal(t, entities.BackupActionManual, entry.Action)
	assert.Equal(t, entities.BackupStatusSuccess, entry.Status)
	assert.Equal(t, "mem", entry.Target)
	assert.Equal(t, report.Metadata.Size, entry.SizeBytes)
}

func TestRunBackupDefaults(t *testing.T) {
	audit := &recordingLog{}
	m := newTestManager(t, &fileSource{content: "x"}, []Target{newMemTarget("mem")}, WithAuditLog(audit))

	_, err := m.RunBackup(t.Context(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "system", audit.entries[0].User)
	assert.Equal(t, entities.BackupActionManual, audit.entries[0].Action)
}

func TestRunBackupContinuesAfterTargetFailure(t *testing.T) {
	broken := newMemTarget("broken")
	broken.storeErr = fmt.Errorf("disk full")
	healthy := newMemTarget("healthy")
	audit := &recordingLog{}

	m := newTestManager(t, &fileSource{content: "x"}, []Target{broken, healthy}, WithAuditLog(audit))
	report, err := m.RunBackup(t.Context(), RunOptions{User: "bob"})

	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryBackup))
	assert.Contains(t, err.Error(), "disk full")
	require.NotNil(t, report)
	require.Len(t, report.Failed(), 1)
	assert.Equal(t, "broken", report.Failed()[0].Target)
	assert.Len(t, healthy.names(), 1)

	require.Len(t, audit.entries, 2)
	assert.Equal(t, entities.BackupStatusFailed, audit.entries[0].Status)
	assert.Equal(t, "disk full", audit.entries[0].Error)
	assert.Equal(t, entities.BackupStatusSuccess, audit.entries[1].Status)
}

func TestRunBackupSourceFailure(t *testing.T) {
	target := newMemTarget("mem")
	audit := &recordingLog{}
	m := newTestManager(t, &fileSource{err: fmt.Errorf("locked")}, []Target{target}, WithAuditLog(audit))

	report, err := m.RunBackup(t.Context(), RunOptions{Action: entities.BackupActionSnapshot})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.IsCategory(err, errors.CategoryDatabase))
	assert.Empty(t, target.names())

	require.Len(t, audit.entries, 1)
	assert.Equal(t, entities.BackupStatusFailed, audit.entries[0].Status)
	assert.Equal(t, entities.BackupActionSnapshot, audit.entries[0].Action)
}

func TestRunBackupPrunesOldArchives(t *testing.T) {
	target := newMemTarget("mem")
	target.files[ArchivePrefix+"20200101T000000Z-aaaaaaaa"+ArchiveSuffix] = []byte("old")
	target.files[ArchivePrefix+"20210101T000000Z-bbbbbbbb"+ArchiveSuffix] = []byte("older")
	target.files["unrelated.txt"] = []byte("keep")

	m := newTestManager(t, &fileSource{content: "x"}, []Target{target}, WithRetention(2))
	m.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	_, err := m.RunBackup(t.Context(), RunOptions{})
	require.NoError(t, err)

	names := target.names()
	require.Len(t, names, 3)
	assert.Contains(t, names, "unrelated.txt")
	assert.Contains(t, names, ArchivePrefix+"20210101T000000Z-bbbbbbbb"+ArchiveSuffix)
	assert.NotContains(t, names, ArchivePrefix+"20200101T000000Z-aaaaaaaa"+ArchiveSuffix)
}

func TestPruneWithoutRetentionKeepsAll(t *testing.T) {
	target := newMemTarget("mem")
	for i := range 3 {
		target.files[fmt.Sprintf("%s2020010%dT000000Z-aaaaaaaa%s", ArchivePrefix, i+1, ArchiveSuffix)] = nil
	}
	m := newTestManager(t, &fileSource{}, []Target{target})
	require.NoError(t, m.Prune(t.Context(), target))
	assert.Len(t, target.names(), 3)
}

func TestReadManifest(t *testing.T) {
	dir := t.TempDir()
	snap := filepath.Join(dir, "snap.db")
	require.NoError(t, os.WriteFile(snap, []byte("abc"), 0o600))

	meta := &Metadata{Version: metadataVersion, ID: "id-1", SourceType: conf.DBTypeSQLite, Timestamp: time.Now().UTC()}
	path, err := buildArchive(t.Context(), dir, "x"+ArchiveSuffix, snap, meta, nil)
	require.NoError(t, err)

	got, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, "snap.db", got.SourceFile)
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", got.Checksum)
	assert.Equal(t, int64(3), got.SnapshotSize)
}

func TestIsArchiveName(t *testing.T) {
	assert.True(t, IsArchiveName("eatsafe-backup-20250101T000000Z-abcdef12.tar.gz"))
	assert.False(t, IsArchiveName("eatsafe-backup-x.zip"))
	assert.False(t, IsArchiveName("other.tar.gz"))
	assert.False(t, IsArchiveName("eatsafe-backup-../x.tar.gz"))
}
