package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) QualityReport(ctx context.Context) ([]QualityTestRow, error) {
	var rows []QualityTestRow
	err := joinedQualityRows(r.db.WithContext(ctx)).
		Order("qt.bacteria_count DESC, qt.id DESC").
		Scan(&rows).Error
	return rows, dbError("report", tableQualityTests, err)
}

func (r *reportRepository) SupplierVerdicts(ctx context.Context) ([]safety.SupplierVerdict, error) {
	var rows []struct {
		SupplierID   uint
		SupplierName string
		Result       safety.Verdict
	}
	err := r.db.WithContext(ctx).Table("quality_tests AS qt").
		Select("s.id AS supplier_id, s.name AS supplier_name, qt.result").
		Joins("JOIN batches AS b ON b.id = qt.batch_id").
		Joins("JOIN suppliers AS s ON s.id = b.supplier_id").
		Scan(&rows).Error
	if err != nil {
		return nil, dbError("report", tableQualityTests, err)
	}

	verdicts := make([]safety.SupplierVerdict, 0, len(rows))
	for _, row := range rows {
		verdicts = append(verdicts, safety.SupplierVerdict{
			Supplier: safety.SupplierRef{ID: row.SupplierID, Name: row.SupplierName},
			Verdict:  row.Result,
		})
	}
	return verdicts, nil
}

func (r *reportRepository) VerdictCounts(ctx context.Context) (map[safety.Verdict]int64, error) {
	var rows []struct {
		Result safety.Verdict
		Total  int64
	}
	err := r.db.WithContext(ctx).Table(tableQualityTests).
		Select("result, COUNT(*) AS total").
		Group("result").
		Scan(&rows).Error
	if err != nil {
		return nil, dbError("report", tableQualityTests, err)
	}

	counts := make(map[safety.Verdict]int64, len(rows))
	for _, row := range rows {
		counts[row.Result] += row.Total
	}
	return counts, nil
}

func (r *reportRepository) BacteriaCounts(ctx context.Context) (map[int]int64, error) {
	var rows []struct {
		BacteriaCount int
		Total         int64
	}
	err := r.db.WithContext(ctx).Table(tableQualityTests).
		Select("bacteria_count, COUNT(*) AS total").
		Group("bacteria_count").
		Scan(&rows).Error
	if err != nil {
		return nil, dbError("report", tableQualityTests, err)
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.BacteriaCount] = row.Total
	}
	return counts, nil
}
