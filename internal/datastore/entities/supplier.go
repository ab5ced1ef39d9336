package entities

import "time"

// Supplier produces batches. Names are unique.
type Supplier struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_supplier_name"`
	ContactName string    `gorm:"type:varchar(200)"`
	Phone       string    `gorm:"type:varchar(50)"`
	Email       string    `gorm:"type:varchar(200)"`
	Address     string    `gorm:"type:varchar(500)"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM.
func (Supplier) TableName() string {
	return "suppliers"
}
