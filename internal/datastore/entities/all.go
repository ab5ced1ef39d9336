package entities

// All returns one value of every entity in dependency order, for migrations
// and exports.
func All() []any {
	return []any{
		&FoodItem{},
		&Supplier{},
		&Inspector{},
		&Batch{},
		&QualityTest{},
		&Prediction{},
		&BackupLog{},
	}
}
