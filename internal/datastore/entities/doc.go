// Package entities defines the GORM entity models for the EatSafe schema.
//
// # Catalogue
//
//   - FoodItem: products that are produced in batches
//   - Supplier: producers that deliver batches (unique by name)
//   - Inspector: staff that run lab tests
//
// # Production and quality
//
//   - Batch: one production run of a food item by a supplier
//   - QualityTest: an immutable lab measurement of a batch with its verdict
//   - Prediction: a contamination forecast from storage conditions
//
// # Operations
//
//   - BackupLog: audit trail of backup snapshots per target
package entities
