package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
)

const exportVersion = 1

// Export is the document written by JSONExportSource.
type Export struct {
	Version    int                         `json:"version"`
	ExportedAt time.Time                   `json:"exportedAt"`
	Dialect    string                      `json:"dialect"`
	Tables     map[string][]map[string]any `json:"tables"`
}

// JSONExportSource dumps every table to a JSON document. It is used for
// MySQL and PostgreSQL, which have no file to copy.
type JSONExportSource struct {
	db     *gorm.DB
	dbType string
	now    func() time.Time
}

// NewJSONExportSource creates a source exporting db. dbType is recorded in
// the manifest.
func NewJSONExportSource(db *gorm.DB, dbType string) *JSONExportSource {
	return &JSONExportSource{db: db, dbType: dbType, now: func() time.Time { return time.Now().UTC() }}
}

// Name returns the name of this source.
func (s *JSONExportSource) Name() string { return s.dbType + "-export" }

// Type returns the database type.
func (s *JSONExportSource) Type() string { return s.dbType }

// Dump reads all tables inside one transaction and writes them to dir.
func (s *JSONExportSource) Dump(ctx context.Context, dir string) (string, error) {
	export := Export{
		Version:    exportVersion,
		ExportedAt: s.now(),
		Dialect:    s.db.Dialector.Name(),
		Tables:     make(map[string][]map[string]any),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range entities.All() {
			stmt := &gorm.Statement{DB: tx}
			if err := stmt.Parse(model); err != nil {
				return fmt.Errorf("failed to parse %T: %w", model, err)
			}
			table := stmt.Schema.Table

			rows := make([]map[string]any, 0)
			if err := tx.Table(table).Order("id").Find(&rows).Error; err != nil {
				return fmt.Errorf("failed to export %s: %w", table, err)
			}
			export.Tables[table] = rows
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	dest := filepath.Join(dir, fmt.Sprintf("eatsafe-%s.json", export.ExportedAt.Format("20060102150405")))
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&export); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}
	return dest, nil
}
