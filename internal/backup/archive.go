package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayushbarthwal/eatsafe/internal/conf"
)

const (
	metadataVersion = 1

	manifestName = "manifest.yaml"
	configName   = "config.yaml"
)

// Metadata describes one archive. It is stored as manifest.yaml inside the
// archive and passed to targets.
type Metadata struct {
	Version      int       `yaml:"version"`
	ID           string    `yaml:"id"`
	Timestamp    time.Time `yaml:"timestamp"`
	SourceType   string    `yaml:"source_type"`
	SourceFile   string    `yaml:"source_file"`
	SnapshotSize int64     `yaml:"snapshot_size"`
	Checksum     string    `yaml:"checksum"`
	AppVersion   string    `yaml:"app_version,omitempty"`

	// Size is the archive size in bytes, known only after the archive is written.
	Size int64 `yaml:"-"`
}

// buildArchive writes dir/name containing the snapshot, the manifest and,
// when settings is non-nil, the sanitized configuration. It fills in the
// checksum and sizes of meta.
func buildArchive(ctx context.Context, dir, name, snapshot string, meta *Metadata, settings *conf.Settings) (path string, err error) {
	sum, size, err := fileChecksum(snapshot)
	if err != nil {
		return "", err
	}
	meta.SourceFile = filepath.Base(snapshot)
	meta.Checksum = sum
	meta.SnapshotSize = size

	path = filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close archive: %w", cerr)
		}
	}()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	manifest, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := writeEntry(tw, manifestName, manifest, meta.Timestamp); err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := addFile(tw, snapshot, meta.SourceFile, meta.Timestamp); err != nil {
		return "", err
	}

	if settings != nil {
		cfg, err := settings.MarshalSanitizedYAML()
		if err != nil {
			return "", fmt.Errorf("failed to marshal configuration: %w", err)
		}
		if err := writeEntry(tw, configName, cfg, meta.Timestamp); err != nil {
			return "", err
		}
	}

	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("failed to close gzip writer: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat archive: %w", err)
	}
	meta.Size = info.Size()
	return path, nil
}

func writeEntry(tw *tar.Writer, name string, data []byte, modTime time.Time) error {
	hdr := &tar.Header{
		Name:    name,
		Mode:    0o600,
		Size:    int64(len(data)),
		ModTime: modTime,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func addFile(tw *tar.Writer, path, name string, modTime time.Time) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat snapshot: %w", err)
	}
	hdr := &tar.Header{
		Name:    name,
		Mode:    0o600,
		Size:    info.Size(),
		ModTime: modTime,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func fileChecksum(path string) (sum string, size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	size, err = io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("failed to hash snapshot: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}

// ReadManifest returns the manifest of the archive at path.
func ReadManifest(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("%s not found in archive", manifestName)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read archive: %w", err)
		}
		if hdr.Name != manifestName {
			continue
		}
		var meta Metadata
		if err := yaml.NewDecoder(tr).Decode(&meta); err != nil {
			return nil, fmt.Errorf("failed to decode manifest: %w", err)
		}
		return &meta, nil
	}
}
