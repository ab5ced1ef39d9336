// Package sources provides backup sources.
package sources

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ayushbarthwal/eatsafe/internal/conf"
)

// Vacuumer writes a consistent copy of a SQLite database.
// *datastore.SQLiteManager implements it.
type Vacuumer interface {
	VacuumInto(ctx context.Context, dest string) error
}

// SQLiteSource snapshots SQLite with VACUUM INTO, which is safe while the
// database is in use.
type SQLiteSource struct {
	db  Vacuumer
	now func() time.Time
}

// NewSQLiteSource creates a source snapshotting db.
func NewSQLiteSource(db Vacuumer) *SQLiteSource {
	return &SQLiteSource{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Name returns the name of this source.
func (s *SQLiteSource) Name() string { return "sqlite" }

// Type returns conf.DBTypeSQLite.
func (s *SQLiteSource) Type() string { return conf.DBTypeSQLite }

// Dump writes the snapshot into dir.
func (s *SQLiteSource) Dump(ctx context.Context, dir string) (string, error) {
	dest := filepath.Join(dir, fmt.Sprintf("eatsafe-%s.db", s.now().Format("20060102150405")))
	if err := s.db.VacuumInto(ctx, dest); err != nil {
		return "", err
	}
	return dest, nil
}
