package repository

import (
	"context"

	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

// ReportRepository runs the read-only aggregate queries behind reports and
// dashboards.
type ReportRepository interface {
	// QualityReport returns every quality test ordered by bacteria count
	// descending, then test ID descending.
	QualityReport(ctx context.Context) ([]QualityTestRow, error)

	// SupplierVerdicts returns the verdict of every test attributed to the
	// supplier of the tested batch.
	SupplierVerdicts(ctx context.Context) ([]safety.SupplierVerdict, error)

	// VerdictCounts returns the number of tests per verdict.
	VerdictCounts(ctx context.Context) (map[safety.Verdict]int64, error)

	// BacteriaCounts returns the number of tests per distinct bacteria count,
	// so callers can bucket them with safety.ClassifyRisk.
	BacteriaCounts(ctx context.Context) (map[int]int64, error)
}
