package repository

import "gorm.io/gorm"

// Repositories bundles every repository over one database handle.
type Repositories struct {
	FoodItems    FoodItemRepository
	Suppliers    SupplierRepository
	Batches      BatchRepository
	Inspectors   InspectorRepository
	QualityTests QualityTestRepository
	Predictions  PredictionRepository
	BackupLogs   BackupLogRepository
	Reports      ReportRepository
}

// New creates all repositories on db.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		FoodItems:    NewFoodItemRepository(db),
		Suppliers:    NewSupplierRepository(db),
		Batches:      NewBatchRepository(db),
		Inspectors:   NewInspectorRepository(db),
		QualityTests: NewQualityTestRepository(db),
		Predictions:  NewPredictionRepository(db),
		BackupLogs:   NewBackupLogRepository(db),
		Reports:      NewReportRepository(db),
	}
}
