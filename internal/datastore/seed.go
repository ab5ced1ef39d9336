package datastore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ayushbarthwal/eatsafe/internal/datastore/entities"
)

// Seed inserts a small demo catalogue when the database has no food items.
// It reports whether anything was inserted.
func Seed(ctx context.Context, db *gorm.DB) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&entities.FoodItem{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count food items: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	foods := []*entities.FoodItem{
		{Name: "Whole Milk", Category: "Dairy", Description: "Pasteurised whole milk, 1 L"},
		{Name: "Chicken Breast", Category: "Poultry", Description: "Fresh boneless chicken breast"},
		{Name: "Basmati Rice", Category: "Grains", Description: "Long grain rice, 5 kg sack"},
	}
	suppliers := []*entities.Supplier{
		{Name: "Green Valley Farms", ContactName: "R. Mehta", Email: "orders@greenvalley.example"},
		{Name: "Coastal Poultry Co", ContactName: "S. Iyer", Email: "supply@coastalpoultry.example"},
		{Name: "Himalaya Grains", ContactName: "A. Negi", Email: "sales@himalayagrains.example"},
	}
	inspectors := []*entities.Inspector{
		{Name: "Priya Sharma", Email: "priya.sharma@eatsafe.example"},
		{Name: "Daniel Okafor", Email: "daniel.okafor@eatsafe.example"},
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(foods).Error; err != nil {
			return err
		}
		if err := tx.Create(suppliers).Error; err != nil {
			return err
		}
		if err := tx.Create(inspectors).Error; err != nil {
			return err
		}

		now := time.Now().UTC().Truncate(24 * time.Hour)
		batches := make([]*entities.Batch, 0, len(foods))
		for i, food := range foods {
			produced := now.AddDate(0, 0, -(i + 1))
			expires := produced.AddDate(0, 0, 7*(i+1))
			batches = append(batches, &entities.Batch{
				FoodItemID:     food.ID,
				SupplierID:     suppliers[i].ID,
				Quantity:       100 * (i + 1),
				ProductionDate: &produced,
				ExpiryDate:     &expires,
				Status:         entities.BatchStatusActive,
			})
		}
		return tx.Create(batches).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed demo data: %w", err)
	}
	return true, nil
}
