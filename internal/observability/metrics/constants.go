// Package metrics provides constants used across metric definitions.
package metrics

// Namespace prefixes every metric name.
const Namespace = "eatsafe"

// Status label values.
const (
	// StatusSuccess marks a completed operation.
	StatusSuccess = "success"
	// StatusError marks a failed operation.
	StatusError = "error"
	// StatusSkipped marks an operation that was not attempted.
	StatusSkipped = "skipped"
)

// Database operation label values.
const (
	// OpCreate represents row creation.
	OpCreate = "create"
	// OpQuery represents reads.
	OpQuery = "query"
	// OpUpdate represents updates.
	OpUpdate = "update"
	// OpDelete represents deletes.
	OpDelete = "delete"
	// OpRaw represents raw SQL statements.
	OpRaw = "raw"
)

// Histogram bucket configuration constants.
const (
	// BucketStart1ms is the starting bucket for 1ms histograms.
	BucketStart1ms = 0.001
	// BucketStart100ms is the starting bucket for 100ms histograms.
	BucketStart100ms = 0.1
	// BucketStart1KB is the starting bucket for 1KB histograms.
	BucketStart1KB = 1024.0

	// BucketFactor2 is the common exponential growth factor.
	BucketFactor2 = 2
	// BucketFactor4 is used for wide byte ranges.
	BucketFactor4 = 4

	// BucketCount10 defines 10 exponential buckets.
	BucketCount10 = 10
	// BucketCount12 defines 12 exponential buckets.
	BucketCount12 = 12
	// BucketCount15 defines 15 exponential buckets.
	BucketCount15 = 15
)

func statusFor(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
