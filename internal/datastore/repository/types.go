package repository

import (
	"time"

	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

// QualityTestRow is a quality test joined with the names of its food item,
// supplier and inspector.
type QualityTestRow struct {
	ID            uint
	BatchID       uint
	InspectorID   *uint
	PH            float64 `gorm:"column:ph"`
	MoisturePct   float64
	BacteriaCount int
	Result        safety.Verdict
	Notes         string
	TestDate      time.Time
	FoodName      string
	SupplierID    uint
	SupplierName  string
	InspectorName *string
}

// QualityTestFilter narrows List. Zero values match everything.
type QualityTestFilter struct {
	BatchID uint
	Limit   int
}
