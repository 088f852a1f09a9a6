package models

// Ingredient is a catalog entry recipes refer to by id.
type Ingredient struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"uniqueIndex;type:varchar(200);not null" validate:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" gorm:"type:varchar(200);not null" validate:"required,max=200"`
}
