package entities

import "time"

// FoodItem is a product tracked by the service.
type FoodItem struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"type:varchar(200);not null;index"`
	Category    string    `gorm:"type:varchar(100)"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM.
func (FoodItem) TableName() string {
	return "food_items"
}
