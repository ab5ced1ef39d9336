package entities

import (
	"strconv"
	"strings"
	"time"

	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

// BatchStatus marks whether a batch is still in circulation.
type BatchStatus string

const (
	BatchStatusActive   BatchStatus = "Active"
	BatchStatusInactive BatchStatus = "Inactive"
)

// ParseBatchStatus accepts "active" or "inactive" in any case.
func ParseBatchStatus(s string) (BatchStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return BatchStatusActive, nil
	case "inactive":
		return BatchStatusInactive, nil
	}
	return "", errors.ValidationError("status must be Active or Inactive, got " + strconv.Quote(s))
}

// Batch is one production run of a food item by a supplier.
// FoodItem and Supplier exist for foreign key creation and are not loaded.
type Batch struct {
	ID             uint        `gorm:"primaryKey"`
	FoodItemID     uint        `gorm:"not null;index"`
	FoodItem       *FoodItem   `gorm:"foreignKey:FoodItemID;constraint:OnDelete:RESTRICT"`
	SupplierID     uint        `gorm:"not null;index"`
	Supplier       *Supplier   `gorm:"foreignKey:SupplierID;constraint:OnDelete:RESTRICT"`
	Quantity       int         `gorm:"not null;default:0"`
	ProductionDate *time.Time  `gorm:"type:date"`
	ExpiryDate     *time.Time  `gorm:"type:date"`
	Status         BatchStatus `gorm:"type:varchar(16);not null;default:Active;index"`
	CreatedAt      time.Time   `gorm:"autoCreateTime;index"`
}

// TableName returns the table name for GORM.
func (Batch) TableName() string {
	return "batches"
}
