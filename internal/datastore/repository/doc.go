// Package repository provides repository interfaces and GORM implementations
// for the EatSafe schema.
//
// Every method takes a context and runs on db.WithContext(ctx). Missing rows
// are reported as not-found EnhancedErrors wrapping a package sentinel, so
// callers can test with errors.Is(err, ErrBatchNotFound) or by category.
// Deleting a row that is still referenced fails with a conflict error.
//
// # Joins
//
// Report queries join explicitly with Table/Joins and scan into flat row
// structs. The entity relation fields exist only so AutoMigrate creates
// foreign keys and are never preloaded.
package repository
