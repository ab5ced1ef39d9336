package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/observability/metrics"
)

const metricsStartKey = "eatsafe:metrics_start"

// RegisterMetricsCallbacks records every GORM statement in m. A nil m
// registers nothing.
func RegisterMetricsCallbacks(db *gorm.DB, m *metrics.DatastoreMetrics) error {
	if m == nil {
		return nil
	}

	before := func(tx *gorm.DB) {
		tx.InstanceSet(metricsStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(metricsStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			err := tx.Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				err = nil
			}
			m.RecordDbOperation(operation, tx.Statement.Table, err, time.Since(start))
		}
	}

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("eatsafe:metrics_before_create", before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("eatsafe:metrics_after_create", after(metrics.OpCreate)); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("eatsafe:metrics_before_query", before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("eatsafe:metrics_after_query", after(metrics.OpQuery)); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("eatsafe:metrics_before_update", before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("eatsafe:metrics_after_update", after(metrics.OpUpdate)); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("eatsafe:metrics_before_delete", before); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("eatsafe:metrics_after_delete", after(metrics.OpDelete)); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("eatsafe:metrics_before_row", before); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("eatsafe:metrics_after_row", after(metrics.OpQuery)); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("eatsafe:metrics_before_raw", before); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("eatsafe:metrics_after_raw", after(metrics.OpRaw))
}
