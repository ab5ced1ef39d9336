package entities

import (
	"time"

	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

// QualityTest is a lab measurement of a batch. Rows are never updated or
// deleted; removing an inspector only detaches them.
type QualityTest struct {
	ID            uint           `gorm:"primaryKey"`
	BatchID       uint           `gorm:"not null;index"`
	Batch         *Batch         `gorm:"foreignKey:BatchID;constraint:OnDelete:RESTRICT"`
	InspectorID   *uint          `gorm:"index"`
	Inspector     *Inspector     `gorm:"foreignKey:InspectorID;constraint:OnDelete:SET NULL"`
	PH            float64        `gorm:"column:ph;not null"`
	MoisturePct   float64        `gorm:"not null"`
	BacteriaCount int            `gorm:"not null;index"`
	Result        safety.Verdict `gorm:"type:varchar(8);not null;index"`
	Notes         string         `gorm:"type:text"`
	TestDate      time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for GORM.
func (QualityTest) TableName() string {
	return "quality_tests"
}

// Prediction is a stored contamination forecast.
type Prediction struct {
	ID          uint             `gorm:"primaryKey"`
	BatchID     *uint            `gorm:"index"`
	Batch       *Batch           `gorm:"foreignKey:BatchID;constraint:OnDelete:SET NULL"`
	Temperature float64          `gorm:"not null"`
	Humidity    float64          `gorm:"not null"`
	CFU         int              `gorm:"column:cfu;not null"`
	Risk        safety.RiskLabel `gorm:"type:varchar(16);not null;index"`
	CreatedAt   time.Time        `gorm:"autoCreateTime;index"`
}

// TableName returns the table name for GORM.
func (Prediction) TableName() string {
	return "predictions"
}
