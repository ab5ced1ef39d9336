// Package targets provides backup storage targets.
package targets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ayushbarthwal/eatsafe/internal/backup"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

const component = "backup-target"

// LocalTarget stores archives in a directory on the local filesystem.
type LocalTarget struct {
	path string
}

// NewLocalTarget creates a target writing to dir, creating it if needed.
func NewLocalTarget(dir string) (*LocalTarget, error) {
	if dir == "" {
		return nil, configError("local backup path is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, configError(fmt.Sprintf("invalid local backup path: %v", err))
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, errors.New(fmt.Errorf("failed to create backup directory: %w", err)).
			Component(component).
			Category(errors.CategoryFileIO).
			Context("path", abs).
			Build()
	}
	return &LocalTarget{path: abs}, nil
}

// Name returns the name of this target.
func (t *LocalTarget) Name() string { return "local" }

// Store copies the archive into the backup directory. The copy is written
// to a temporary file and renamed, so a partial archive is never visible.
func (t *LocalTarget) Store(ctx context.Context, archivePath string, _ *backup.Metadata) (string, error) {
	name := filepath.Base(archivePath)
	if !backup.IsArchiveName(name) {
		return "", invalidName(name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer src.Close()

	dest := filepath.Join(t.path, name)
	err = atomicWriteFile(dest, ".tmp-"+name+"-*", 0o600, func(f *os.File) error {
		if _, err := io.Copy(f, src); err != nil {
			return fmt.Errorf("failed to copy archive: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", errors.New(err).
			Component(component).
			Category(errors.CategoryFileIO).
			Context("path", dest).
			Build()
	}
	return dest, nil
}

// List returns the archives in the backup directory, oldest first.
func (t *LocalTarget) List(ctx context.Context) ([]backup.ArchiveInfo, error) {
	entries, err := os.ReadDir(t.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var out []backup.ArchiveInfo
	for _, e := range entries {
		if e.IsDir() || !backup.IsArchiveName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, backup.ArchiveInfo{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, ctx.Err()
}

// Delete removes one archive.
func (t *LocalTarget) Delete(_ context.Context, name string) error {
	if !backup.IsArchiveName(name) {
		return invalidName(name)
	}
	if err := os.Remove(filepath.Join(t.path, name)); err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// atomicWriteFile writes targetPath through a temporary file in the same
// directory followed by a rename.
func atomicWriteFile(targetPath, tempPattern string, perm os.FileMode, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(targetPath), tempPattern)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}
	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, targetPath); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	success = true
	return nil
}

func configError(msg string) error {
	return errors.Newf("%s", msg).
		Component(component).
		Category(errors.CategoryConfiguration).
		Build()
}

func invalidName(name string) error {
	return errors.Newf("invalid archive name %q", name).
		Component(component).
		Category(errors.CategoryValidation).
		Build()
}
